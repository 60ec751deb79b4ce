package exchange

//
// APIError generically provides an interface to objects that represent a failed call against a
// cryptocurrency exchange's API – either a non-200 HTTP response or a first-class error envelope
// in an otherwise successful one.
//
type APIError interface {
	error

	//
	// RequestURL returns the full URL (including query string) of the request that failed.
	//
	RequestURL() string

	//
	// StatusCode returns the HTTP status code the exchange responded with.
	//
	StatusCode() int

	//
	// ResponseBody returns the raw response body text.
	//
	ResponseBody() string
}
