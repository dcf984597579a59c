package web

import (
	"errors"

	"github.com/sarchlab/pipeviz/translate"
)

var f = translate.From

var (
	ErrUnknownCommand = errors.New(f("unknown command"))
	ErrBadCommand     = errors.New(f("malformed command"))
)
