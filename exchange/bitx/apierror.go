package bitx

import (
	"encoding/json"
	"fmt"
)

//
// APIError implements the exchange.APIError interface for failed BitX API calls. It is produced
// whenever the HTTP status is not 200 or the decoded body carries an "error" field – BitX reports
// some errors (e.g. an invalid pair) with a 200 status.
//
type APIError struct {
	URL  string
	Code int
	Body string

	// Populated from the {"error": ..., "error_code": ...} envelope when the body has one.
	Message   string
	ErrorCode string
}

func NewAPIError(url string, code int, body []byte) *APIError {
	o := &APIError{
		URL:  url,
		Code: code,
		Body: string(body),
	}

	var envelope struct {
		Error     string `json:"error"`
		ErrorCode string `json:"error_code"`
	}

	if err := json.Unmarshal(body, &envelope); err == nil {
		o.Message = envelope.Error
		o.ErrorCode = envelope.ErrorCode
	}

	return o
}

func (o *APIError) RequestURL() string {
	return o.URL
}

func (o *APIError) StatusCode() int {
	return o.Code
}

func (o *APIError) ResponseBody() string {
	return o.Body
}

func (o *APIError) Error() string {
	return fmt.Sprintf("BitX request %s failed with %d: %s", o.URL, o.Code, o.Body)
}
