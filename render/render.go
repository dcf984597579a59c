// Package render turns snapshots into Frames, the display model applied by
// presenters. Rendering never touches playback state.
package render

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sarchlab/pipeviz/snapshot"
)

// Option is a functional option for configuring the Renderer.
type Option func(*Renderer)

// WithCache memoizes the history-independent part of frames by position in
// a sets x ways LRU cache. Zero sets disables the cache.
func WithCache(sets, ways int) Option {
	return func(r *Renderer) {
		if sets > 0 && ways > 0 {
			r.cache = newFrameCache(sets, ways)
		}
	}
}

// Renderer builds frames. It remembers the register values it last
// displayed so that changes can be highlighted.
type Renderer struct {
	displayed map[string]string
	cache     *frameCache
}

// New creates a renderer with no displayed registers.
func New(opts ...Option) *Renderer {
	r := &Renderer{
		displayed: make(map[string]string),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Render builds the frame for the snapshot at position in a sequence whose
// final index is last.
func (r *Renderer) Render(snap *snapshot.Snapshot, position, last int) Frame {
	var fr Frame
	if cached, ok := r.cache.get(position); ok {
		fr = *cached
	} else {
		fr = Frame{
			Position: position,
			Scalars:  ScalarFields(snap),
			Pipeline: PipelineSlots(&snap.Pipeline),
			Memory:   MemoryCells(snap.Memory),
			Progress: ProgressOf(snap.Clock, last),
		}
		stored := fr
		r.cache.put(position, &stored)
	}

	fr.Registers = r.Registers(snap.Registers)
	return fr
}

// Registers renders every register in natural order and records the values
// as displayed. A register is flagged Changed when its value differs from
// the one displayed for it before; a register never displayed is neutral.
func (r *Renderer) Registers(regs snapshot.Registers) []RegisterCell {
	cells := make([]RegisterCell, 0, len(regs))
	for _, name := range regs.Names() {
		value := regs[name].String()
		prev, seen := r.displayed[name]
		cells = append(cells, RegisterCell{
			Name:    name,
			Value:   value,
			Changed: seen && prev != value,
		})
		r.displayed[name] = value
	}
	return cells
}

// Reset forgets the displayed register values.
func (r *Renderer) Reset() {
	r.displayed = make(map[string]string)
}

// Invalidate drops every cached frame. It must be called whenever the
// sequence behind the positions changes.
func (r *Renderer) Invalidate() {
	r.cache.reset()
}

// CacheStats returns the frame cache statistics.
func (r *Renderer) CacheStats() CacheStats {
	if r.cache == nil {
		return CacheStats{}
	}
	return r.cache.stats
}

// ScalarFields renders clock, pc, completed instructions and throughput,
// the latter with exactly two decimals.
func ScalarFields(snap *snapshot.Snapshot) Scalars {
	return Scalars{
		Clock:                 strconv.Itoa(snap.Clock),
		PC:                    snap.PC.String(),
		InstructionsCompleted: strconv.Itoa(snap.InstructionsCompleted),
		Throughput:            strconv.FormatFloat(snap.Throughput, 'f', 2, 64),
	}
}

// PipelineSlots renders the five stage slots in order.
func PipelineSlots(p *snapshot.Pipeline) [snapshot.NumStages]StageCell {
	var cells [snapshot.NumStages]StageCell
	for s := snapshot.StageFetch; s < snapshot.NumStages; s++ {
		slot := p.Slot(s)
		cells[s] = StageCell{
			Stage: s.String(),
			Text:  slot.Text.String(),
			Flags: FlagListing(slot.Flags),
		}
	}
	return cells
}

// FlagListing renders one "name: value" line per flag with lower-cased
// names.
func FlagListing(flags snapshot.Flags) string {
	lines := make([]string, 0, len(flags))
	for _, fl := range flags {
		lines = append(lines, strings.ToLower(fl.Name)+": "+fl.Value.String())
	}
	return strings.Join(lines, "\n")
}

// MemoryCells renders the recent-write slots. Slots without an entry are
// blank.
func MemoryCells(writes snapshot.MemoryWrites) [snapshot.MaxMemoryWrites]MemoryCell {
	var cells [snapshot.MaxMemoryWrites]MemoryCell
	for i := 0; i < len(writes) && i < snapshot.MaxMemoryWrites; i++ {
		cells[i] = MemoryCell{
			Tag:     writes[i].Tag.String(),
			Address: writes[i].Address.String(),
			Value:   writes[i].Value.String(),
		}
	}
	return cells
}

// ProgressOf renders the progress indicator for clock within [0, last].
func ProgressOf(clock, last int) Progress {
	if last < 0 {
		last = 0
	}

	value := clock
	if value < 0 {
		value = 0
	}
	if value > last {
		value = last
	}

	return Progress{
		Value: value,
		Max:   last,
		Label: fmt.Sprintf("%d / %d", clock, last),
	}
}
