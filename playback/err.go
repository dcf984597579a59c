package playback

import (
	"errors"

	"github.com/sarchlab/pipeviz/translate"
)

var f = translate.From

var (
	ErrEmptySequence = errors.New(f("snapshot sequence is empty"))
	ErrNotLoaded     = errors.New(f("no snapshot sequence loaded"))
	ErrOutOfRange    = errors.New(f("position out of range"))
	ErrLoopStopped   = errors.New(f("loop is not running"))
)
