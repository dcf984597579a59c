package snapshot

import (
	"errors"

	"github.com/sarchlab/pipeviz/translate"
)

var f = translate.From

var (
	ErrFlagsNotObject     = errors.New(f("flags must be a JSON object"))
	ErrPipelineShape      = errors.New(f("pipeline must be an array or an object"))
	ErrRegistersShape     = errors.New(f("registers must be an array or an object"))
	ErrMemoryWriteShape   = errors.New(f("memory write must be an array or an object"))
	ErrUnknownPipelineKey = errors.New(f("unknown pipeline stage"))
)

// ClockGapError reports a sequence whose clocks do not advance by one.
type ClockGapError struct {
	Index int
	Prev  int
	Clock int
}

func (err *ClockGapError) Error() string {
	return f("snapshot %d has clock %d after clock %d", err.Index, err.Clock, err.Prev)
}
