package engine_test

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/onsi/gomega/ghttp"

	"github.com/sarchlab/pipeviz/engine"
	"github.com/sarchlab/pipeviz/snapshot"
)

const twoCycles = `{"text": "add $1, $2, $3", "result": [
	{"clock": 0, "pc": 0, "instructions_completed": 0, "throughput": 0,
	 "registers": [0, 5], "memory": [],
	 "pipeline": [{"text": "add $1, $2, $3", "flags": {"REG_DST": 1}}, {}, {}, {}, {}]},
	{"clock": 1, "pc": 4, "instructions_completed": 0, "throughput": 0,
	 "registers": [0, 5], "memory": [["sw", 8, 3]],
	 "pipeline": [{}, {"text": "add $1, $2, $3", "flags": {"REG_DST": 1}}, {}, {}, {}]}
]}`

var _ = Describe("Client", func() {
	var (
		server  *ghttp.Server
		client  *engine.Client
		ctx     context.Context
		release chan struct{}
	)

	BeforeEach(func() {
		release = make(chan struct{})
		server = ghttp.NewServer()
		client = engine.NewClient(server.URL() + "/mips/")
		ctx = context.Background()
	})

	AfterEach(func() {
		// Unblock handlers still waiting so Close can return.
		close(release)
		server.Close()
	})

	It("should default to the local engine URL", func() {
		Expect(engine.NewClient("").BaseURL()).To(Equal(engine.DefaultURL))
	})

	Describe("Execute", func() {
		It("should post the text and forwarding flag as a form", func() {
			server.AppendHandlers(ghttp.CombineHandlers(
				ghttp.VerifyRequest(http.MethodPost, "/mips/execute"),
				ghttp.VerifyContentType("application/x-www-form-urlencoded"),
				ghttp.VerifyForm(url.Values{
					"text":            {"add $1, $2, $3"},
					"data_forwarding": {"1"},
				}),
				ghttp.RespondWith(http.StatusOK, twoCycles),
			))

			seq, err := client.Execute(ctx, "add $1, $2, $3", true)
			Expect(err).NotTo(HaveOccurred())
			Expect(seq).To(HaveLen(2))
			Expect(seq[1].PC).To(Equal(snapshot.Value("4")))
			Expect(seq[1].Registers).To(HaveKeyWithValue("r1", snapshot.Value("5")))
			Expect(seq[1].Memory).To(HaveLen(1))
			Expect(seq[0].Pipeline[snapshot.StageFetch].Text).To(Equal(snapshot.Value("add $1, $2, $3")))
		})

		It("should send 0 when forwarding is off", func() {
			server.AppendHandlers(ghttp.CombineHandlers(
				ghttp.VerifyForm(url.Values{"data_forwarding": {"0"}}),
				ghttp.RespondWith(http.StatusOK, twoCycles),
			))

			_, err := client.Execute(ctx, "nop", false)
			Expect(err).NotTo(HaveOccurred())
		})

		It("should map INVALID_TEXT to ErrInvalidText", func() {
			server.AppendHandlers(ghttp.RespondWith(http.StatusOK, `{"error": "INVALID_TEXT"}`))

			_, err := client.Execute(ctx, "", false)
			Expect(err).To(MatchError(engine.ErrInvalidText))
		})

		It("should wrap other engine errors", func() {
			server.AppendHandlers(ghttp.RespondWith(http.StatusOK, `{"error": "BOOM"}`))

			_, err := client.Execute(ctx, "x", false)
			Expect(errors.Is(err, engine.ErrEngine)).To(BeTrue())
			Expect(err.Error()).To(ContainSubstring("BOOM"))
		})

		It("should reject a response without result", func() {
			server.AppendHandlers(ghttp.RespondWith(http.StatusOK, `{"text": "x"}`))

			_, err := client.Execute(ctx, "x", false)
			Expect(err).To(MatchError(engine.ErrMalformedResponse))
		})

		It("should reject an undecodable sequence", func() {
			server.AppendHandlers(ghttp.RespondWith(http.StatusOK, `{"result": [{"pipeline": 3}]}`))

			_, err := client.Execute(ctx, "x", false)
			Expect(err).To(MatchError(engine.ErrMalformedResponse))
		})

		It("should return a StatusError for non-2xx responses", func() {
			server.AppendHandlers(ghttp.RespondWith(http.StatusInternalServerError, "traceback"))

			_, err := client.Execute(ctx, "x", false)
			var statusErr *engine.StatusError
			Expect(errors.As(err, &statusErr)).To(BeTrue())
			Expect(statusErr.Code).To(Equal(http.StatusInternalServerError))
			Expect(statusErr.Path).To(Equal("/execute"))
			Expect(statusErr.Body).To(Equal("traceback"))
		})

		It("should cut a long error body on a rune boundary", func() {
			server.AppendHandlers(ghttp.RespondWith(http.StatusBadGateway, strings.Repeat("€", 200)))

			_, err := client.Execute(ctx, "x", false)
			var statusErr *engine.StatusError
			Expect(errors.As(err, &statusErr)).To(BeTrue())
			Expect(utf8.ValidString(statusErr.Body)).To(BeTrue())
			Expect(statusErr.Body).To(HaveSuffix("..."))
			Expect(len(statusErr.Body)).To(BeNumerically("<=", 256+len("...")))
		})

		It("should give up after the timeout", func() {
			server.AppendHandlers(func(w http.ResponseWriter, r *http.Request) {
				select {
				case <-r.Context().Done():
				case <-release:
				}
			})
			client = engine.NewClient(server.URL()+"/mips", engine.WithTimeout(20*time.Millisecond))

			_, err := client.Execute(ctx, "x", false)
			Expect(errors.Is(err, context.DeadlineExceeded)).To(BeTrue())
		})
	})

	Describe("Compile", func() {
		It("should return the assembled text", func() {
			server.AppendHandlers(ghttp.CombineHandlers(
				ghttp.VerifyRequest(http.MethodPost, "/mips/compile"),
				ghttp.VerifyForm(url.Values{"text": {"add $1, $2, $3"}}),
				ghttp.RespondWithJSONEncoded(http.StatusOK, map[string]string{
					"result": "00000000010000110000100000100000",
				}),
			))

			out, err := client.Compile(ctx, "add $1, $2, $3")
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(Equal("00000000010000110000100000100000"))
		})

		It("should accept an empty assembly", func() {
			server.AppendHandlers(ghttp.RespondWith(http.StatusOK, `{"result": ""}`))

			out, err := client.Compile(ctx, "")
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(BeEmpty())
		})
	})

	Describe("Compare", func() {
		It("should decode both summaries", func() {
			server.AppendHandlers(ghttp.CombineHandlers(
				ghttp.VerifyRequest(http.MethodPost, "/mips/compare"),
				ghttp.RespondWith(http.StatusOK, `{
					"slower_mips": {"clocks": 20, "throughput": 1.5},
					"faster_mips": {"clocks": 10, "throughput": 3}
				}`),
			))

			cmp, err := client.Compare(ctx, "x")
			Expect(err).NotTo(HaveOccurred())
			Expect(cmp.Slower).To(Equal(engine.Summary{Clocks: 20, Throughput: 1.5}))
			Expect(cmp.Faster).To(Equal(engine.Summary{Clocks: 10, Throughput: 3}))
		})

		It("should accept the short field names", func() {
			server.AppendHandlers(ghttp.RespondWith(http.StatusOK,
				`{"slower": {"clocks": 7, "throughput": 0.5}, "faster": {"clocks": 6, "throughput": 0.6}}`))

			cmp, err := client.Compare(ctx, "x")
			Expect(err).NotTo(HaveOccurred())
			Expect(cmp.Slower.Clocks).To(Equal(7))
			Expect(cmp.Faster.Clocks).To(Equal(6))
		})

		It("should reject a response with one summary", func() {
			server.AppendHandlers(ghttp.RespondWith(http.StatusOK,
				`{"slower_mips": {"clocks": 7, "throughput": 0.5}}`))

			_, err := client.Compare(ctx, "x")
			Expect(err).To(MatchError(engine.ErrMalformedResponse))
		})
	})
})
