package snapshot_test

import (
	"encoding/json"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/pipeviz/snapshot"
)

const engineCycle = `{
	"clock": 3,
	"pc": 12,
	"instructions_completed": 1,
	"throughput": 0.3333333,
	"registers": [0, 5, 7],
	"pipeline": [
		{"text": "add $3, $1, $2", "flags": {"REG_DST": 1, "ALU_SRC": 0, "EXT_OP": null}},
		{"text": "nop", "flags": {}},
		{"text": "lw $1, 0($0)", "flags": {"MEM_TO_REG": 1}},
		{"text": "nop", "flags": {}},
		{"text": "nop", "flags": {}}
	],
	"memory": [["sw", 0, 1], ["sw", 4, 2], ["lw", 0, 1], ["sw", 8, 3], ["lw", 8, 3]]
}`

var _ = Describe("Snapshot", func() {
	Describe("Stage", func() {
		It("should name the five stages in order", func() {
			var names []string
			for s := snapshot.StageFetch; s < snapshot.NumStages; s++ {
				names = append(names, s.String())
			}
			Expect(names).To(Equal([]string{"IF", "ID", "EX", "MEM", "WB"}))
		})

		It("should not panic on an unknown stage", func() {
			Expect(snapshot.Stage(9).String()).To(Equal("?"))
		})
	})

	Describe("decoding an engine cycle", func() {
		var snap snapshot.Snapshot

		BeforeEach(func() {
			Expect(json.Unmarshal([]byte(engineCycle), &snap)).To(Succeed())
		})

		It("should decode the scalar fields", func() {
			Expect(snap.Clock).To(Equal(3))
			Expect(snap.PC).To(Equal(snapshot.Value("12")))
			Expect(snap.InstructionsCompleted).To(Equal(1))
			Expect(snap.Throughput).To(BeNumerically("~", 0.3333, 0.001))
		})

		It("should name array registers r<i>", func() {
			Expect(snap.Registers).To(HaveLen(3))
			Expect(snap.Registers["r1"]).To(Equal(snapshot.Value("5")))
			Expect(snap.Registers["r2"]).To(Equal(snapshot.Value("7")))
		})

		It("should keep flag order as delivered", func() {
			flags := snap.Pipeline[snapshot.StageFetch].Flags
			Expect(flags).To(HaveLen(3))
			Expect(flags[0].Name).To(Equal("REG_DST"))
			Expect(flags[1].Name).To(Equal("ALU_SRC"))
			Expect(flags[2].Name).To(Equal("EXT_OP"))
			Expect(flags[2].Value).To(Equal(snapshot.Value("")))

			v, ok := flags.Get("REG_DST")
			Expect(ok).To(BeTrue())
			Expect(v).To(Equal(snapshot.Value("1")))
		})

		It("should place pipeline slots by position", func() {
			Expect(snap.Pipeline.Slot(snapshot.StageExecute).Text).To(Equal(snapshot.Value("lw $1, 0($0)")))
			Expect(snap.Pipeline[snapshot.StageDecode].Flags).To(BeEmpty())
		})

		It("should keep only the four most recent memory writes", func() {
			Expect(snap.Memory).To(HaveLen(snapshot.MaxMemoryWrites))
			Expect(snap.Memory[0]).To(Equal(snapshot.MemoryWrite{Tag: "sw", Address: "4", Value: "2"}))
			Expect(snap.Memory[3]).To(Equal(snapshot.MemoryWrite{Tag: "lw", Address: "8", Value: "3"}))
		})
	})

	Describe("alternative shapes", func() {
		It("should accept registers as an object", func() {
			var regs snapshot.Registers
			Expect(json.Unmarshal([]byte(`{"pc": "0x10", "r1": 4}`), &regs)).To(Succeed())
			Expect(regs["pc"]).To(Equal(snapshot.Value("0x10")))
			Expect(regs["r1"]).To(Equal(snapshot.Value("4")))
		})

		It("should accept the named-stage pipeline object", func() {
			var p snapshot.Pipeline
			data := `{"if": {"text": "a", "flags": {}}, "WB": {"text": "e", "flags": {}}}`
			Expect(json.Unmarshal([]byte(data), &p)).To(Succeed())
			Expect(p[snapshot.StageFetch].Text).To(Equal(snapshot.Value("a")))
			Expect(p[snapshot.StageWriteback].Text).To(Equal(snapshot.Value("e")))
			Expect(p[snapshot.StageExecute].Text).To(BeEmpty())
		})

		It("should reject unknown pipeline stages", func() {
			var p snapshot.Pipeline
			err := json.Unmarshal([]byte(`{"xx": {"text": "a"}}`), &p)
			Expect(errors.Is(err, snapshot.ErrUnknownPipelineKey)).To(BeTrue())
		})

		It("should accept memory writes as objects", func() {
			var m snapshot.MemoryWrites
			Expect(json.Unmarshal([]byte(`[{"tag": "sw", "address": 16, "value": 9}]`), &m)).To(Succeed())
			Expect(m).To(Equal(snapshot.MemoryWrites{{Tag: "sw", Address: "16", Value: "9"}}))
		})

		It("should reject flags that are not an object", func() {
			var fl snapshot.Flags
			err := json.Unmarshal([]byte(`[1, 2]`), &fl)
			Expect(err).To(MatchError(snapshot.ErrFlagsNotObject))
		})
	})

	Describe("Registers.Names", func() {
		It("should sort numeric suffixes naturally", func() {
			regs := snapshot.Registers{"r10": "0", "r2": "0", "r1": "0", "hi": "0", "lo": "0"}
			Expect(regs.Names()).To(Equal([]string{"hi", "lo", "r1", "r2", "r10"}))
		})
	})

	Describe("Sequence", func() {
		It("should parse an array of snapshots", func() {
			seq, err := snapshot.ParseSequence([]byte(`[{"clock":0},{"clock":1},{"clock":2}]`))
			Expect(err).NotTo(HaveOccurred())
			Expect(seq.Len()).To(Equal(3))
			Expect(seq.Last()).To(Equal(2))
			Expect(seq.Validate()).To(Succeed())
		})

		It("should report an empty sequence as having no last index", func() {
			Expect(snapshot.Sequence{}.Last()).To(Equal(-1))
		})

		It("should bound At", func() {
			seq := snapshot.Sequence{{Clock: 0}}
			_, ok := seq.At(1)
			Expect(ok).To(BeFalse())
			s, ok := seq.At(0)
			Expect(ok).To(BeTrue())
			Expect(s.Clock).To(Equal(0))
		})

		It("should detect a clock gap", func() {
			seq := snapshot.Sequence{{Clock: 0}, {Clock: 2}}
			var gap *snapshot.ClockGapError
			Expect(errors.As(seq.Validate(), &gap)).To(BeTrue())
			Expect(gap.Index).To(Equal(1))
		})

		It("should wrap parse failures", func() {
			_, err := snapshot.ParseSequence([]byte(`{`))
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("failed to parse snapshot sequence"))
		})
	})
})
