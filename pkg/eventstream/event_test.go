package eventstream_test

import (
	"encoding/json"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/Birmingham-AI/willAIam/pkg/chat"
	"github.com/Birmingham-AI/willAIam/pkg/eventstream"
)

var _ = Describe("Event", func() {
	It("marshals TurnCompletedEvent with expected top-level keys", func() {
		now := time.Unix(1735689600, 0).UTC()
		event := eventstream.TurnCompletedEvent{
			SchemaVersion: eventstream.SchemaVersionV1,
			EventType:     eventstream.EventTypeTurnCompleted,
			EventID:       "evt_123",
			EmittedAt:     now,
			Source: eventstream.EventSource{
				Client:  "willaiam",
				Version: "1.0.0",
			},
			Turn: chat.Turn{
				ID:      "turn_123",
				Role:    chat.RoleAssistant,
				Content: "hi",
				Status:  chat.StatusComplete,
				TraceID: "abc123",
			},
		}

		payload, err := json.Marshal(event)
		Expect(err).NotTo(HaveOccurred())

		var got map[string]any
		Expect(json.Unmarshal(payload, &got)).To(Succeed())

		Expect(got).To(HaveKey("schema_version"))
		Expect(got).To(HaveKey("event_type"))
		Expect(got).To(HaveKey("event_id"))
		Expect(got).To(HaveKey("emitted_at"))
		Expect(got).To(HaveKey("source"))
		Expect(got).To(HaveKey("turn"))
	})

	It("defines stable event constants", func() {
		Expect(eventstream.SchemaVersionV1).To(BeNumerically(">", 0))
		Expect(eventstream.EventTypeTurnCompleted).To(Equal("willaiam.turn.completed"))
	})

	It("stamps new events with identity and emission time", func() {
		turn := chat.Turn{ID: "turn_123", Role: chat.RoleAssistant, Status: chat.StatusComplete}

		event := eventstream.NewTurnCompletedEvent(eventstream.EventSource{Client: "willaiam"}, turn)

		Expect(event.SchemaVersion).To(Equal(eventstream.SchemaVersionV1))
		Expect(event.EventType).To(Equal(eventstream.EventTypeTurnCompleted))
		Expect(event.EventID).NotTo(BeEmpty())
		Expect(event.EmittedAt).To(BeTemporally("~", time.Now().UTC(), time.Minute))
		Expect(event.Turn.ID).To(Equal("turn_123"))
	})

	It("provides ErrNilTurnEvent for nil payload validation", func() {
		Expect(eventstream.ErrNilTurnEvent).NotTo(BeNil())
		Expect(eventstream.ErrNilTurnEvent).To(MatchError("nil turn event"))
	})
})
