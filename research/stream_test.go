package research_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"enquirysync/config"
	"enquirysync/research"
)

var _ = Describe("StreamExecutor", func() {
	var (
		server   *httptest.Server
		reply    string
		status   int
		received map[string]any
	)

	BeforeEach(func() {
		status = http.StatusOK
		received = nil
		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer GinkgoRecover()
			Expect(r.Method).To(Equal(http.MethodPost))
			Expect(r.Header.Get("Content-Type")).To(Equal("application/json"))
			body, err := io.ReadAll(r.Body)
			Expect(err).NotTo(HaveOccurred())
			Expect(json.Unmarshal(body, &received)).To(Succeed())

			w.WriteHeader(status)
			fmt.Fprint(w, reply)
		}))
		DeferCleanup(server.Close)
	})

	newExecutor := func() *research.StreamExecutor {
		return research.NewStreamExecutor(&config.ExecutorConfig{
			Kind: config.ExecutorStream,
			URL:  server.URL,
		}, nil)
	}

	It("concatenates content fragments in order", func() {
		reply = "event: message_chunk\n" +
			"data: {\"content\":\"Sushi \"}\n\n" +
			"data: {\"content\":\"Saito\"}\n"

		answer, err := newExecutor().Research(context.Background(), research.Request{Query: "best sushi in tokyo"})
		Expect(err).NotTo(HaveOccurred())
		Expect(answer).To(Equal("Sushi Saito"))
	})

	It("trims the assembled answer", func() {
		reply = "data: {\"content\":\"\\n  Maido  \"}\n"
		answer, err := newExecutor().Research(context.Background(), research.Request{Query: "q"})
		Expect(err).NotTo(HaveOccurred())
		Expect(answer).To(Equal("Maido"))
	})

	It("reads a final line without a trailing newline", func() {
		reply = "data: {\"content\":\"a\"}\ndata: {\"content\":\"b\"}"
		answer, err := newExecutor().Research(context.Background(), research.Request{Query: "q"})
		Expect(err).NotTo(HaveOccurred())
		Expect(answer).To(Equal("ab"))
	})

	It("skips malformed data lines", func() {
		reply = "data: {\"content\":\"one \"}\n" +
			"data: not json\n" +
			"data: [DONE]\n" +
			"data: {\"content\":\"two\"}\n"

		answer, err := newExecutor().Research(context.Background(), research.Request{Query: "q"})
		Expect(err).NotTo(HaveOccurred())
		Expect(answer).To(Equal("one two"))
	})

	It("treats fragments without content as empty", func() {
		reply = "data: {\"role\":\"assistant\"}\ndata: {\"content\":\"x\"}\n"
		answer, err := newExecutor().Research(context.Background(), research.Request{Query: "q"})
		Expect(err).NotTo(HaveOccurred())
		Expect(answer).To(Equal("x"))
	})

	It("echoes every non-empty line", func() {
		reply = "event: message_chunk\ndata: {\"content\":\"x\"}\n\n"
		var lines []string
		_, err := newExecutor().Research(context.Background(), research.Request{
			Query:  "q",
			OnLine: func(line string) { lines = append(lines, line) },
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(lines).To(Equal([]string{"event: message_chunk", `data: {"content":"x"}`}))
	})

	It("returns a TransportError on a non-2xx status", func() {
		status = http.StatusBadGateway
		reply = "upstream down"

		_, err := newExecutor().Research(context.Background(), research.Request{Query: "q"})
		var te *research.TransportError
		Expect(errors.As(err, &te)).To(BeTrue())
		Expect(te.StatusCode).To(Equal(http.StatusBadGateway))
		Expect(te.Body).To(Equal("upstream down"))
	})

	It("returns an error when the endpoint is unreachable", func() {
		exec := newExecutor()
		server.Close()
		_, err := exec.Research(context.Background(), research.Request{Query: "q"})
		Expect(err).To(HaveOccurred())
	})

	It("sends the research payload with its defaults", func() {
		reply = "data: {\"content\":\"ok\"}\n"
		_, err := newExecutor().Research(context.Background(), research.Request{Query: "beach clubs in bali"})
		Expect(err).NotTo(HaveOccurred())

		Expect(received).To(HaveKeyWithValue("messages", []any{
			map[string]any{"role": "user", "content": "beach clubs in bali"},
		}))
		Expect(received).To(HaveKeyWithValue("thread_id", "_default_"))
		Expect(received).To(HaveKeyWithValue("max_plan_iterations", BeNumerically("==", 5)))
		Expect(received).To(HaveKeyWithValue("max_step_num", BeNumerically("==", 5)))
		Expect(received).To(HaveKeyWithValue("auto_accepted_plan", true))
		Expect(received).To(HaveKeyWithValue("interrupt_feedback", ""))
		Expect(received).To(HaveKeyWithValue("enable_background_investigation", true))
		Expect(received).To(HaveKeyWithValue("debug", false))

		mcp, ok := received["mcp_settings"].(map[string]any)
		Expect(ok).To(BeTrue())
		Expect(mcp).To(HaveKey("role"))
		Expect(mcp["tools"]).To(ContainElement("web_search"))
		Expect(mcp["preferred_sources"]).To(ContainElement("TripAdvisor"))
	})

	It("does not modify the caller's config", func() {
		cfg := &config.ExecutorConfig{Kind: config.ExecutorStream, URL: server.URL}
		research.NewStreamExecutor(cfg, nil)
		Expect(cfg.ThreadID).To(BeEmpty())
		Expect(cfg.MCPSettings).To(BeNil())
	})
})
