// Package snapshot defines the per-cycle records delivered by the
// simulation engine and decodes them from the engine's JSON payloads.
package snapshot

// Stage identifies one of the fixed pipeline slots.
type Stage int

const (
	// StageFetch is instruction fetch (IF).
	StageFetch Stage = iota
	// StageDecode is instruction decode (ID).
	StageDecode
	// StageExecute is execute (EX).
	StageExecute
	// StageMemory is memory access (MEM).
	StageMemory
	// StageWriteback is register writeback (WB).
	StageWriteback

	// NumStages is the number of pipeline slots in every snapshot.
	NumStages
)

var stageNames = [NumStages]string{"IF", "ID", "EX", "MEM", "WB"}

func (s Stage) String() string {
	if s < 0 || s >= NumStages {
		return "?"
	}
	return stageNames[s]
}

// MaxMemoryWrites is the number of recent memory writes kept per snapshot.
const MaxMemoryWrites = 4

// Slot is the content of one pipeline stage during a cycle.
type Slot struct {
	// Text is the instruction label.
	Text Value `json:"text"`
	// Flags are the control signals of the instruction, in engine order.
	Flags Flags `json:"flags"`
}

// MemoryWrite is one recent memory access.
type MemoryWrite struct {
	Tag     Value `json:"tag"`
	Address Value `json:"address"`
	Value   Value `json:"value"`
}

// Snapshot is one simulation cycle as delivered by the engine. Snapshots are
// never modified after decoding.
type Snapshot struct {
	// Clock is the cycle index.
	Clock int `json:"clock"`

	// PC is the formatted program counter.
	PC Value `json:"pc"`

	// InstructionsCompleted counts retired instructions so far.
	InstructionsCompleted int `json:"instructions_completed"`

	// Throughput is instructions completed per cycle so far.
	Throughput float64 `json:"throughput"`

	Registers Registers    `json:"registers"`
	Pipeline  Pipeline     `json:"pipeline"`
	Memory    MemoryWrites `json:"memory"`
}

// Sequence is the ordered timeline returned by one execution request.
type Sequence []Snapshot

// Len returns the number of snapshots.
func (s Sequence) Len() int {
	return len(s)
}

// Last returns the index of the final snapshot, or -1 when empty.
func (s Sequence) Last() int {
	return len(s) - 1
}

// At returns the snapshot at index i.
func (s Sequence) At(i int) (*Snapshot, bool) {
	if i < 0 || i >= len(s) {
		return nil, false
	}
	return &s[i], true
}

// Validate checks that clocks advance by exactly one per snapshot.
func (s Sequence) Validate() error {
	for i := 1; i < len(s); i++ {
		if s[i].Clock != s[i-1].Clock+1 {
			return &ClockGapError{Index: i, Prev: s[i-1].Clock, Clock: s[i].Clock}
		}
	}
	return nil
}
