package sse

import (
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func drainEvents(r *Reader) []Event {
	var events []Event
	for {
		ev, err := r.Next()
		Expect(err).NotTo(HaveOccurred())
		if ev == nil {
			return events
		}
		events = append(events, *ev)
	}
}

var _ = Describe("Reader", func() {
	Describe("Next", func() {
		It("decodes a default-event content frame", func() {
			r := NewReader(strings.NewReader("data: hello world\n"))

			ev, err := r.Next()
			Expect(err).NotTo(HaveOccurred())
			Expect(ev.Type).To(Equal(DefaultEvent))
			Expect(ev.Data).To(Equal("hello world"))

			ev, err = r.Next()
			Expect(err).NotTo(HaveOccurred())
			Expect(ev).To(BeNil())
			Expect(r.Done()).To(BeFalse())
		})

		It("emits one frame per data line", func() {
			r := NewReader(strings.NewReader("data: first\ndata: second\n"))

			events := drainEvents(r)
			Expect(events).To(HaveLen(2))
			Expect(events[0].Data).To(Equal("first"))
			Expect(events[1].Data).To(Equal("second"))
		})

		It("names the next data frame from an event line", func() {
			r := NewReader(strings.NewReader("event: trace_id\ndata: abc123\n"))

			ev, err := r.Next()
			Expect(err).NotTo(HaveOccurred())
			Expect(ev.Type).To(Equal("trace_id"))
			Expect(ev.Data).To(Equal("abc123"))
		})

		It("resets the event name after every emitted frame", func() {
			r := NewReader(strings.NewReader("event: trace_id\ndata: abc123\ndata: Hi\n"))

			events := drainEvents(r)
			Expect(events).To(HaveLen(2))
			Expect(events[0].Type).To(Equal("trace_id"))
			Expect(events[1].Type).To(Equal(DefaultEvent))
			Expect(events[1].Data).To(Equal("Hi"))
		})

		It("resets the event name on a blank line", func() {
			r := NewReader(strings.NewReader("event: trace_id\n\ndata: Hi\n"))

			ev, err := r.Next()
			Expect(err).NotTo(HaveOccurred())
			Expect(ev.Type).To(Equal(DefaultEvent))
			Expect(ev.Data).To(Equal("Hi"))
		})

		It("unescapes literal \\n sequences into real newlines", func() {
			r := NewReader(strings.NewReader(`data: Line1\nLine2` + "\n"))

			ev, err := r.Next()
			Expect(err).NotTo(HaveOccurred())
			Expect(ev.Data).To(Equal("Line1\nLine2"))
		})

		It("preserves payload bytes beyond the single separator space", func() {
			r := NewReader(strings.NewReader("data:  leading and trailing \n"))

			ev, err := r.Next()
			Expect(err).NotTo(HaveOccurred())
			Expect(ev.Data).To(Equal(" leading and trailing "))
		})

		It("does not reject payloads containing colons or the word data", func() {
			r := NewReader(strings.NewReader("data: key: value, see data: fields\n"))

			ev, err := r.Next()
			Expect(err).NotTo(HaveOccurred())
			Expect(ev.Data).To(Equal("key: value, see data: fields"))
		})

		It("emits an empty frame for an empty payload", func() {
			r := NewReader(strings.NewReader("data: \n"))

			ev, err := r.Next()
			Expect(err).NotTo(HaveOccurred())
			Expect(ev).NotTo(BeNil())
			Expect(ev.Data).To(Equal(""))
		})

		It("skips lines outside the grammar", func() {
			r := NewReader(strings.NewReader("retry: 500\n: comment\nnonsense line\ndata: Hi\n"))

			events := drainEvents(r)
			Expect(events).To(HaveLen(1))
			Expect(events[0].Data).To(Equal("Hi"))
		})
	})

	Describe("terminal sentinel", func() {
		It("ends the stream on a default-event [DONE]", func() {
			r := NewReader(strings.NewReader("data: Hello\ndata: [DONE]\ndata: after\n"))

			events := drainEvents(r)
			Expect(events).To(HaveLen(1))
			Expect(events[0].Data).To(Equal("Hello"))
			Expect(r.Done()).To(BeTrue())
		})

		It("treats [DONE] under a named event as an ordinary frame", func() {
			r := NewReader(strings.NewReader("event: trace_id\ndata: [DONE]\n"))

			ev, err := r.Next()
			Expect(err).NotTo(HaveOccurred())
			Expect(ev).NotTo(BeNil())
			Expect(ev.Type).To(Equal("trace_id"))
			Expect(ev.Data).To(Equal(DoneSentinel))
			Expect(r.Done()).To(BeFalse())
		})

		It("keeps returning nil after the sentinel", func() {
			r := NewReader(strings.NewReader("data: [DONE]\n"))

			for range 3 {
				ev, err := r.Next()
				Expect(err).NotTo(HaveOccurred())
				Expect(ev).To(BeNil())
			}
		})
	})

	Describe("chunk-boundary invariance", func() {
		It("decodes an identical frame sequence for any fragmentation", func() {
			const stream = "event: trace_id\ndata: abc123\n\n" +
				`data: Hello\nthere` + "\ndata:  world\ndata: [DONE]\n"

			whole := drainEvents(NewReader(strings.NewReader(stream)))
			Expect(whole).To(HaveLen(3))

			for _, size := range []int{1, 2, 3, 4, 6, 11, 100} {
				src := &fragmentReader{fragments: splitEvery(stream, size)}
				r := NewReader(src)
				Expect(drainEvents(r)).To(Equal(whole),
					"fragment size %d must not change the decoded frames", size)
				Expect(r.Done()).To(BeTrue())
			}
		})

		It("assembles split content exactly once", func() {
			src := &fragmentReader{fragments: []string{
				"data: Hello",
				" world\n",
				"data: [DONE]\n",
			}}
			r := NewReader(src)

			ev, err := r.Next()
			Expect(err).NotTo(HaveOccurred())
			Expect(ev.Data).To(Equal("Hello world"))

			ev, err = r.Next()
			Expect(err).NotTo(HaveOccurred())
			Expect(ev).To(BeNil())
			Expect(r.Done()).To(BeTrue())
		})
	})
})
