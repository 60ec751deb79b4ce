package exchange

import (
	"errors"
	"fmt"
	"time"
)

//
// ErrTimeout is matched (via errors.Is) by every TimeoutError.
//
var ErrTimeout = errors.New("request timed out")

//
// TimeoutError represents a request that did not complete within the client's configured timeout.
// The exchange never answered, so it never satisfies APIError.
//
type TimeoutError struct {
	URL   string
	After time.Duration
}

func NewTimeoutError(url string, after time.Duration) *TimeoutError {
	return &TimeoutError{
		URL:   url,
		After: after,
	}
}

func (o *TimeoutError) Error() string {
	return fmt.Sprintf("request %s did not complete within %s", o.URL, o.After)
}

func (o *TimeoutError) Is(target error) bool {
	return target == ErrTimeout
}
