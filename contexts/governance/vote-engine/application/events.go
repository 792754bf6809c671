package application

import (
	"encoding/json"
	"time"

	"daotools/contexts/governance/vote-engine/ports"
)

// NewEnvelope builds the context's canonical event envelope. Events are
// partitioned by vote so vote-scoped consumers observe a stable order.
func NewEnvelope(
	eventID string,
	eventType string,
	voteID string,
	occurredAt time.Time,
	data map[string]any,
) (ports.EventEnvelope, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return ports.EventEnvelope{}, err
	}
	return ports.EventEnvelope{
		EventID:          eventID,
		EventType:        eventType,
		OccurredAt:       occurredAt.UTC(),
		SourceService:    "vote-engine",
		TraceID:          eventID,
		SchemaVersion:    1,
		PartitionKeyPath: "vote_id",
		PartitionKey:     voteID,
		Data:             payload,
	}, nil
}
