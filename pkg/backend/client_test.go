package backend_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/Birmingham-AI/willAIam/pkg/backend"
	"github.com/Birmingham-AI/willAIam/pkg/chat"
	"github.com/Birmingham-AI/willAIam/pkg/sse"
)

var _ = Describe("Client", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
	})

	Describe("Stream", func() {
		It("posts the question with prior turns as messages", func() {
			var captured map[string]any
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				Expect(r.Method).To(Equal(http.MethodPost))
				Expect(r.URL.Path).To(Equal("/api/ask"))
				Expect(r.Header.Get("Content-Type")).To(Equal("application/json"))

				Expect(json.NewDecoder(r.Body).Decode(&captured)).To(Succeed())
				w.Write([]byte("data: ok\ndata: [DONE]\n"))
			}))
			defer server.Close()

			client := backend.NewClient(backend.Config{BaseURL: server.URL})

			history := []chat.Turn{
				*chat.NewUserTurn("what is the meetup about?"),
				{Role: chat.RoleAssistant, Content: "RAG pipelines.", Status: chat.StatusComplete},
			}
			body, err := client.Stream(ctx, "when does it start?", history)
			Expect(err).NotTo(HaveOccurred())
			defer body.Close()

			Expect(captured["question"]).To(Equal("when does it start?"))
			Expect(captured["enable_web_search"]).To(Equal(false))

			messages := captured["messages"].([]any)
			Expect(messages).To(HaveLen(2))
			first := messages[0].(map[string]any)
			Expect(first["role"]).To(Equal("user"))
			Expect(first["content"]).To(Equal("what is the meetup about?"))
			second := messages[1].(map[string]any)
			Expect(second["role"]).To(Equal("assistant"))
		})

		It("returns a body that decodes as an event stream", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte("event: trace_id\ndata: abc123\n\ndata: Hello\ndata: [DONE]\n"))
			}))
			defer server.Close()

			client := backend.NewClient(backend.Config{BaseURL: server.URL})

			body, err := client.Stream(ctx, "hi", nil)
			Expect(err).NotTo(HaveOccurred())
			defer body.Close()

			reader := sse.NewReader(body)

			ev, err := reader.Next()
			Expect(err).NotTo(HaveOccurred())
			Expect(ev.Type).To(Equal(sse.TraceIDEvent))
			Expect(ev.Data).To(Equal("abc123"))

			ev, err = reader.Next()
			Expect(err).NotTo(HaveOccurred())
			Expect(ev.Data).To(Equal("Hello"))

			ev, err = reader.Next()
			Expect(err).NotTo(HaveOccurred())
			Expect(ev).To(BeNil())
			Expect(reader.Done()).To(BeTrue())
		})

		It("forwards the web-search flag when enabled", func() {
			var captured map[string]any
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				Expect(json.NewDecoder(r.Body).Decode(&captured)).To(Succeed())
				w.Write([]byte("data: [DONE]\n"))
			}))
			defer server.Close()

			client := backend.NewClient(backend.Config{BaseURL: server.URL, EnableWebSearch: true})

			body, err := client.Stream(ctx, "hi", nil)
			Expect(err).NotTo(HaveOccurred())
			body.Close()

			Expect(captured["enable_web_search"]).To(Equal(true))
		})

		It("returns a TransportError for a non-200 status", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "model overloaded", http.StatusServiceUnavailable)
			}))
			defer server.Close()

			client := backend.NewClient(backend.Config{BaseURL: server.URL})

			_, err := client.Stream(ctx, "hi", nil)
			var transportErr *backend.TransportError
			Expect(errors.As(err, &transportErr)).To(BeTrue())
			Expect(transportErr.Status).To(Equal(http.StatusServiceUnavailable))
			Expect(transportErr.Body).To(ContainSubstring("model overloaded"))
		})

		It("returns a TransportError when the backend is unreachable", func() {
			client := backend.NewClient(backend.Config{BaseURL: "http://127.0.0.1:1"})

			_, err := client.Stream(ctx, "hi", nil)
			var transportErr *backend.TransportError
			Expect(errors.As(err, &transportErr)).To(BeTrue())
			Expect(transportErr.Cause).To(HaveOccurred())
		})

		It("aborts an open stream when the context is cancelled", func() {
			release := make(chan struct{})
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
				w.(http.Flusher).Flush()
				<-release
			}))
			defer server.Close()
			defer close(release)

			streamCtx, cancel := context.WithCancel(ctx)
			client := backend.NewClient(backend.Config{BaseURL: server.URL})

			body, err := client.Stream(streamCtx, "hi", nil)
			Expect(err).NotTo(HaveOccurred())
			defer body.Close()

			cancel()

			_, err = io.ReadAll(body)
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("Ping", func() {
		It("succeeds against a healthy backend", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				Expect(r.URL.Path).To(Equal("/ping"))
				w.Write([]byte("pong"))
			}))
			defer server.Close()

			client := backend.NewClient(backend.Config{BaseURL: server.URL})
			Expect(client.Ping(ctx)).To(Succeed())
		})

		It("reports a non-200 status", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
			}))
			defer server.Close()

			client := backend.NewClient(backend.Config{BaseURL: server.URL})

			err := client.Ping(ctx)
			var transportErr *backend.TransportError
			Expect(errors.As(err, &transportErr)).To(BeTrue())
			Expect(transportErr.Status).To(Equal(http.StatusBadGateway))
		})
	})
})
