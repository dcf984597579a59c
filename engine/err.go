package engine

import (
	"errors"
	"fmt"

	"github.com/sarchlab/pipeviz/translate"
)

var f = translate.From

var (
	// ErrInvalidText is returned when the engine reports INVALID_TEXT.
	ErrInvalidText = errors.New(f(translate.InvalidText))

	ErrEngine            = errors.New(f("engine error"))
	ErrMalformedResponse = errors.New(f("malformed engine response"))
)

// StatusError is returned for a non-2xx engine response.
type StatusError struct {
	Path   string
	Code   int
	Status string
	Body   string
}

func (err *StatusError) Error() string {
	if err.Body == "" {
		return fmt.Sprintf("engine %s: %s", err.Path, err.Status)
	}
	return fmt.Sprintf("engine %s: %s: %s", err.Path, err.Status, err.Body)
}
