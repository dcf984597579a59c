package snapshot

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode"
)

// Value is an opaque display value. It decodes from any JSON scalar:
// strings lose their quotes, numbers and booleans keep their literal text and
// null becomes empty.
type Value string

// UnmarshalJSON implements json.Unmarshaler.
func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*v = ""
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = Value(s)
	default:
		var buf bytes.Buffer
		if err := json.Compact(&buf, data); err != nil {
			return err
		}
		*v = Value(buf.String())
	}
	return nil
}

func (v Value) String() string {
	return string(v)
}

// Flag is a single named control signal.
type Flag struct {
	Name  string
	Value Value
}

// Flags keeps the engine's key order, which a Go map would lose.
type Flags []Flag

// UnmarshalJSON implements json.Unmarshaler.
func (fl *Flags) UnmarshalJSON(data []byte) error {
	if isNull(data) {
		*fl = nil
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return ErrFlagsNotObject
	}

	out := Flags{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		name, _ := keyTok.(string)

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("flag %q: %w", name, err)
		}

		var v Value
		if err := v.UnmarshalJSON(raw); err != nil {
			return fmt.Errorf("flag %q: %w", name, err)
		}
		out = append(out, Flag{Name: name, Value: v})
	}

	*fl = out
	return nil
}

// Get returns the value of the named flag.
func (fl Flags) Get(name string) (Value, bool) {
	for _, f := range fl {
		if f.Name == name {
			return f.Value, true
		}
	}
	return "", false
}

// Registers maps register identifiers to their formatted values.
type Registers map[string]Value

// UnmarshalJSON accepts either an array, where index i becomes "r<i>", or an
// object keyed by register name.
func (r *Registers) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case isNull(data):
		*r = nil
	case data[0] == '[':
		var values []Value
		if err := json.Unmarshal(data, &values); err != nil {
			return err
		}
		out := make(Registers, len(values))
		for i, v := range values {
			out["r"+strconv.Itoa(i)] = v
		}
		*r = out
	case data[0] == '{':
		var values map[string]Value
		if err := json.Unmarshal(data, &values); err != nil {
			return err
		}
		*r = Registers(values)
	default:
		return ErrRegistersShape
	}
	return nil
}

// Names returns the register identifiers in natural order, so "r2" sorts
// before "r10".
func (r Registers) Names() []string {
	names := make([]string, 0, len(r))
	for name := range r {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		return naturalLess(names[i], names[j])
	})
	return names
}

// naturalLess compares a trailing decimal suffix numerically when the
// prefixes match.
func naturalLess(a, b string) bool {
	pa, na, okA := splitNumber(a)
	pb, nb, okB := splitNumber(b)
	if okA && okB && pa == pb && na != nb {
		return na < nb
	}
	return a < b
}

func splitNumber(s string) (string, int, bool) {
	i := strings.LastIndexFunc(s, func(c rune) bool { return !unicode.IsDigit(c) }) + 1
	if i == len(s) {
		return s, 0, false
	}
	n, err := strconv.Atoi(s[i:])
	if err != nil {
		return s, 0, false
	}
	return s[:i], n, true
}

// Pipeline is the fixed set of stage slots in fetch-to-writeback order.
type Pipeline [NumStages]Slot

var pipelineKeys = map[string]Stage{
	"if":  StageFetch,
	"id":  StageDecode,
	"ex":  StageExecute,
	"mem": StageMemory,
	"wb":  StageWriteback,
}

// UnmarshalJSON accepts the five-element array form and the older object
// form keyed by "if", "id", "ex", "mem" and "wb". Missing slots stay empty
// and array elements past the fifth are ignored.
func (p *Pipeline) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	*p = Pipeline{}

	switch {
	case isNull(data):
		return nil
	case data[0] == '[':
		var slots []Slot
		if err := json.Unmarshal(data, &slots); err != nil {
			return err
		}
		for i := 0; i < len(slots) && i < int(NumStages); i++ {
			p[i] = slots[i]
		}
		return nil
	case data[0] == '{':
		var slots map[string]Slot
		if err := json.Unmarshal(data, &slots); err != nil {
			return err
		}
		for key, slot := range slots {
			stage, ok := pipelineKeys[strings.ToLower(key)]
			if !ok {
				return fmt.Errorf("%w: %q", ErrUnknownPipelineKey, key)
			}
			p[stage] = slot
		}
		return nil
	default:
		return ErrPipelineShape
	}
}

// Slot returns the slot for a stage.
func (p *Pipeline) Slot(s Stage) Slot {
	return p[s]
}

// UnmarshalJSON accepts the [tag, address, value] triple and the object form.
func (m *MemoryWrite) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case isNull(data):
		*m = MemoryWrite{}
	case data[0] == '[':
		var parts []Value
		if err := json.Unmarshal(data, &parts); err != nil {
			return err
		}
		*m = MemoryWrite{}
		fields := []*Value{&m.Tag, &m.Address, &m.Value}
		for i := 0; i < len(parts) && i < len(fields); i++ {
			*fields[i] = parts[i]
		}
	case data[0] == '{':
		type plain MemoryWrite
		var p plain
		if err := json.Unmarshal(data, &p); err != nil {
			return err
		}
		*m = MemoryWrite(p)
	default:
		return ErrMemoryWriteShape
	}
	return nil
}

// MemoryWrites holds at most MaxMemoryWrites entries, oldest first.
type MemoryWrites []MemoryWrite

// UnmarshalJSON keeps only the most recent MaxMemoryWrites entries.
func (mw *MemoryWrites) UnmarshalJSON(data []byte) error {
	if isNull(data) {
		*mw = nil
		return nil
	}

	var all []MemoryWrite
	if err := json.Unmarshal(data, &all); err != nil {
		return err
	}
	if len(all) > MaxMemoryWrites {
		all = all[len(all)-MaxMemoryWrites:]
	}
	*mw = all
	return nil
}

// ParseSequence decodes a JSON array of snapshots.
func ParseSequence(data []byte) (Sequence, error) {
	var seq Sequence
	if err := json.Unmarshal(data, &seq); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot sequence: %w", err)
	}
	return seq, nil
}

func isNull(data []byte) bool {
	data = bytes.TrimSpace(data)
	return len(data) == 0 || bytes.Equal(data, []byte("null"))
}
