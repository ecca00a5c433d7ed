package devserver_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/Birmingham-AI/willAIam/pkg/devserver"
	"github.com/Birmingham-AI/willAIam/pkg/logger"
	"github.com/Birmingham-AI/willAIam/pkg/sse"
)

const testCorpus = `default_answer = "Ask me about meetups."

[[answer]]
match = "rag"
text = """RAG pairs retrieval with generation.
Bring your own documents."""

[[answer]]
match = "when"
text = "Third Tuesday of the month."
`

var _ = Describe("Server", func() {
	var (
		server     *devserver.Server
		corpusPath string
	)

	postJSON := func(path string, payload any) *http.Response {
		GinkgoHelper()
		body, err := json.Marshal(payload)
		Expect(err).NotTo(HaveOccurred())

		req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")

		resp, err := server.App().Test(req, -1)
		Expect(err).NotTo(HaveOccurred())
		return resp
	}

	ask := func(question string) *http.Response {
		GinkgoHelper()
		return postJSON("/api/ask", map[string]any{
			"question": question,
			"messages": []any{},
		})
	}

	// drain decodes a full answer stream into its trace id and content.
	drain := func(resp *http.Response) (string, string) {
		GinkgoHelper()
		defer resp.Body.Close()

		reader := sse.NewReader(resp.Body)
		var traceID string
		var content strings.Builder
		for {
			ev, err := reader.Next()
			Expect(err).NotTo(HaveOccurred())
			if ev == nil {
				break
			}
			switch ev.Type {
			case sse.TraceIDEvent:
				traceID = ev.Data
			case sse.DefaultEvent:
				content.WriteString(ev.Data)
			}
		}
		Expect(reader.Done()).To(BeTrue())
		return traceID, content.String()
	}

	BeforeEach(func() {
		corpusPath = filepath.Join(GinkgoT().TempDir(), "corpus.toml")
		Expect(os.WriteFile(corpusPath, []byte(testCorpus), 0o600)).To(Succeed())

		var err error
		server, err = devserver.NewServer(devserver.Config{
			ListenAddr: ":0",
			CorpusPath: corpusPath,
		}, logger.NewLoggerWithWriters(false, GinkgoWriter))
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		Expect(server.Shutdown()).To(Succeed())
	})

	Describe("/ping", func() {
		It("answers pong", func() {
			req := httptest.NewRequest(http.MethodGet, "/ping", nil)
			resp, err := server.App().Test(req, -1)
			Expect(err).NotTo(HaveOccurred())
			defer resp.Body.Close()

			Expect(resp.StatusCode).To(Equal(http.StatusOK))
		})
	})

	Describe("/api/ask", func() {
		It("streams a matched answer with a trace id and sentinel", func() {
			resp := ask("when is the next one?")
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			Expect(resp.Header.Get("Content-Type")).To(ContainSubstring("text/event-stream"))

			traceID, content := drain(resp)
			Expect(uuid.Validate(traceID)).To(Succeed())
			Expect(content).To(Equal("Third Tuesday of the month."))
		})

		It("escapes and restores newlines across the wire", func() {
			traceID, content := drain(ask("tell me about RAG"))
			Expect(traceID).NotTo(BeEmpty())
			Expect(content).To(Equal("RAG pairs retrieval with generation.\nBring your own documents."))
		})

		It("falls back to the corpus default answer", func() {
			_, content := drain(ask("something unrelated"))
			Expect(content).To(Equal("Ask me about meetups."))
		})

		It("issues a fresh trace id per answer", func() {
			first, _ := drain(ask("tell me about RAG"))
			second, _ := drain(ask("tell me about RAG"))
			Expect(first).NotTo(Equal(second))
		})

		It("rejects an empty question", func() {
			resp := ask("")
			defer resp.Body.Close()
			Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("/v1/feedback", func() {
		It("acknowledges valid feedback", func() {
			resp := postJSON("/v1/feedback", map[string]any{
				"trace_id": "abc123",
				"rating":   "like",
				"comment":  "useful",
			})
			defer resp.Body.Close()

			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			var ack map[string]any
			Expect(json.NewDecoder(resp.Body).Decode(&ack)).To(Succeed())
			Expect(ack["success"]).To(Equal(true))
			Expect(ack["message"]).NotTo(BeEmpty())
		})

		It("rejects an unknown rating", func() {
			resp := postJSON("/v1/feedback", map[string]any{
				"trace_id": "abc123",
				"rating":   "meh",
			})
			defer resp.Body.Close()
			Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
		})

		It("rejects a missing trace id", func() {
			resp := postJSON("/v1/feedback", map[string]any{
				"rating": "like",
			})
			defer resp.Body.Close()
			Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("corpus hot reload", func() {
		It("serves updated answers after the corpus file changes", func() {
			_, content := drain(ask("when is the next one?"))
			Expect(content).To(Equal("Third Tuesday of the month."))

			updated := strings.Replace(testCorpus, "Third Tuesday", "First Thursday", 1)
			Expect(os.WriteFile(corpusPath, []byte(updated), 0o600)).To(Succeed())

			Eventually(func() string {
				_, content := drain(ask("when is the next one?"))
				return content
			}).Should(Equal("First Thursday of the month."))
		})
	})
})
