package render

import "github.com/sarchlab/pipeviz/snapshot"

// Scalars are the single-value display fields of a cycle.
type Scalars struct {
	Clock                 string `json:"clock"`
	PC                    string `json:"pc"`
	InstructionsCompleted string `json:"instructions_completed"`
	Throughput            string `json:"throughput"`
}

// RegisterCell is one register as it should be displayed.
type RegisterCell struct {
	Name  string `json:"name"`
	Value string `json:"value"`
	// Changed is set when Value differs from what was displayed before.
	Changed bool `json:"changed"`
}

// StageCell is one pipeline slot as it should be displayed.
type StageCell struct {
	Stage string `json:"stage"`
	Text  string `json:"text"`
	// Flags holds one "name: value" line per flag.
	Flags string `json:"flags"`
}

// MemoryCell is one recent-write slot. All fields are empty when the
// snapshot has no entry for the slot.
type MemoryCell struct {
	Tag     string `json:"tag"`
	Address string `json:"address"`
	Value   string `json:"value"`
}

// Progress is the position indicator of the replay.
type Progress struct {
	// Value is the clock bounded to [0, Max].
	Value int    `json:"value"`
	Max   int    `json:"max"`
	Label string `json:"label"`
}

// Frame is the complete display update for one snapshot. Presenters apply it
// as a whole.
type Frame struct {
	Position int `json:"position"`
	Scalars
	Registers []RegisterCell                       `json:"registers"`
	Pipeline  [snapshot.NumStages]StageCell        `json:"pipeline"`
	Memory    [snapshot.MaxMemoryWrites]MemoryCell `json:"memory"`
	Progress  Progress                             `json:"progress"`
}

// ChangedRegisters returns the names of highlighted registers.
func (fr *Frame) ChangedRegisters() []string {
	var names []string
	for _, cell := range fr.Registers {
		if cell.Changed {
			names = append(names, cell.Name)
		}
	}
	return names
}
