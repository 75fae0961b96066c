package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedFilter signals a filter token that matches no operator grammar.
	ErrMalformedFilter = errors.New("malformed filter")
	// ErrInvalidGeoFilter signals an unusable geo constraint.
	ErrInvalidGeoFilter = errors.New("invalid geo filter")
	// ErrInvalidRequest signals a widget request that cannot be translated.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrBackend signals a failed batch search call.
	ErrBackend = errors.New("backend error")
)

// MessageRadiusRequired is returned verbatim when aroundLatLng comes without a usable radius.
const MessageRadiusRequired = "filtering around a lat/lng also requires a numerical radius"

// MalformedFilterError wraps ErrMalformedFilter with the offending token.
type MalformedFilterError struct {
	Token  string
	Reason string
}

func (e *MalformedFilterError) Error() string {
	return fmt.Sprintf("%s %q: %s", ErrMalformedFilter.Error(), e.Token, e.Reason)
}

func (e *MalformedFilterError) Unwrap() error { return ErrMalformedFilter }

// NewMalformedFilter creates a malformed filter error.
func NewMalformedFilter(token, reason string) error {
	return &MalformedFilterError{Token: token, Reason: reason}
}

// GeoFilterError wraps ErrInvalidGeoFilter with a user-facing message.
type GeoFilterError struct {
	Message string
}

func (e *GeoFilterError) Error() string { return e.Message }

func (e *GeoFilterError) Unwrap() error { return ErrInvalidGeoFilter }

// NewGeoFilterError creates an invalid geo filter error carrying msg as its text.
func NewGeoFilterError(msg string) error {
	return &GeoFilterError{Message: msg}
}
