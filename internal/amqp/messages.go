package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

// Message kinds carried on the work queue.
const (
	KindGoalAck       = "goal.ack"
	KindSummaryExport = "summary.export"
)

// Envelope wraps every queue message with its kind so one queue can carry
// both acknowledgements and export requests.
type Envelope struct {
	Kind      string          `json:"kind"`
	Payload   json.RawMessage `json:"payload"`
	Timestamp time.Time       `json:"timestamp"`
}

// GoalAckMessage asks the worker to persist a goal acknowledgement.
type GoalAckMessage struct {
	UserID string `json:"user_id"`
	GoalID string `json:"goal_id"`
}

// SummaryExportMessage asks the worker to export one month's summary to the
// configured spreadsheet. The worker recomputes the summary itself so the
// exported numbers always come from the canonical aggregator.
type SummaryExportMessage struct {
	UserID string `json:"user_id"`
	Month  int    `json:"month"`
	Year   int    `json:"year"`
}

// NewEnvelope wraps a payload of the given kind.
func NewEnvelope(kind string, payload any) (*Envelope, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", kind, err)
	}
	return &Envelope{Kind: kind, Payload: raw, Timestamp: time.Now()}, nil
}

// ToJSON converts the envelope to JSON bytes.
func (e *Envelope) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// EnvelopeFromJSON parses an envelope from JSON bytes.
func EnvelopeFromJSON(data []byte) (*Envelope, error) {
	var e Envelope
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	if e.Kind == "" {
		return nil, fmt.Errorf("envelope missing kind")
	}
	return &e, nil
}

// GoalAck decodes the payload as a goal acknowledgement.
func (e *Envelope) GoalAck() (*GoalAckMessage, error) {
	var msg GoalAckMessage
	if err := json.Unmarshal(e.Payload, &msg); err != nil {
		return nil, fmt.Errorf("decode %s payload: %w", e.Kind, err)
	}
	return &msg, nil
}

// SummaryExport decodes the payload as a summary export request.
func (e *Envelope) SummaryExport() (*SummaryExportMessage, error) {
	var msg SummaryExportMessage
	if err := json.Unmarshal(e.Payload, &msg); err != nil {
		return nil, fmt.Errorf("decode %s payload: %w", e.Kind, err)
	}
	return &msg, nil
}
