package exchange

import (
	"encoding/json"
	"fmt"
)

//
// Response represents the decoded result of a successful call to an exchange's API endpoint. The
// payload is kept in its generic JSON form (maps, slices, and scalars) so that it can be handed
// back to the caller unchanged.
//
type Response struct {
	url        string
	statusCode int
	payload    interface{}
}

func NewResponse(url string, statusCode int, payload interface{}) *Response {
	return &Response{
		url:        url,
		statusCode: statusCode,
		payload:    payload,
	}
}

//
// URL returns the full URL (including query string) that the response was received from.
//
func (o *Response) URL() string {
	return o.url
}

func (o *Response) StatusCode() int {
	return o.statusCode
}

//
// Payload returns the decoded JSON value.
//
func (o *Response) Payload() interface{} {
	return o.payload
}

//
// Map returns the payload as a JSON object, or nil if the payload was something else (an array or
// a scalar).
//
func (o *Response) Map() map[string]interface{} {
	m, _ := o.payload.(map[string]interface{})

	return m
}

//
// Decode re-encodes the generic payload and unmarshals it into the provided value, which is
// usually one of an exchange package's typed models.
//
func (o *Response) Decode(v interface{}) error {
	raw, err := json.Marshal(o.payload)
	if err != nil {
		return fmt.Errorf("failed to re-encode payload from %s: %w", o.url, err)
	}

	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("failed to decode payload from %s into %T: %w", o.url, v, err)
	}

	return nil
}
