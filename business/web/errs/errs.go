// Package errs carries the HTTP status of an expected handler error and,
// when a transaction or chain was rejected by validation, the result code
// the client can act on.
package errs

import (
	"errors"

	"github.com/ardanlabs/poichain/foundation/blockchain/validation"
)

// Response is the form used for API responses from failures in the API.
type Response struct {
	Error  string            `json:"error"`
	Result string            `json:"result,omitempty"`
	Fields map[string]string `json:"fields,omitempty"`
}

// Trusted is an expected error with the status to respond with. Result is
// set when the error is a validation rejection.
type Trusted struct {
	Err    error
	Status int
	Result validation.Result
}

// NewTrusted wraps a provided error with an HTTP status code. This
// function should be used when handlers encounter expected errors.
func NewTrusted(err error, status int) error {
	return &Trusted{Err: err, Status: status}
}

// NewRejected wraps an error raised because validation returned result.
func NewRejected(err error, result validation.Result, status int) error {
	return &Trusted{Err: err, Status: status, Result: result}
}

// Error implements the error interface. It uses the default message of the
// wrapped error. This is what will be shown in the services' logs.
func (te *Trusted) Error() string {
	return te.Err.Error()
}

// Unwrap returns the wrapped error.
func (te *Trusted) Unwrap() error {
	return te.Err
}

// IsRejected reports whether the error carries a validation result.
func (te *Trusted) IsRejected() bool {
	return te.Result != validation.Success
}

// IsTrusted checks if an error of type Trusted exists.
func IsTrusted(err error) bool {
	var te *Trusted
	return errors.As(err, &te)
}

// GetTrusted returns a copy of the Trusted pointer.
func GetTrusted(err error) *Trusted {
	var te *Trusted
	if !errors.As(err, &te) {
		return nil
	}
	return te
}
