package hec

import "fmt"

// DeliveryError is returned once every permitted attempt has failed. It
// carries the last collector response, or the transport error when no
// response was received.
type DeliveryError struct {
	Endpoint   string
	Attempts   int
	StatusCode int
	Body       string
	Err        error
}

func (e *DeliveryError) Error() string {
	msg := fmt.Sprintf("failed to send event to %s after %d attempt(s)", e.Endpoint, e.Attempts)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(": Splunk HEC responded with status code %d: %s", e.StatusCode, e.Body)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}
