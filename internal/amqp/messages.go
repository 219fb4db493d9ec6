package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

// LedgerSyncMessage announces that a session saved its documents. It carries
// only the document names and the session revision; the worker reads the
// data itself from the shared store.
type LedgerSyncMessage struct {
	Documents []string  `json:"documents"`
	Revision  int64     `json:"revision"`
	Timestamp time.Time `json:"timestamp"`
}

func NewLedgerSyncMessage(revision int64, documents ...string) *LedgerSyncMessage {
	return &LedgerSyncMessage{
		Documents: documents,
		Revision:  revision,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *LedgerSyncMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// LedgerSyncMessageFromJSON decodes a message. A message without documents
// is rejected.
func LedgerSyncMessageFromJSON(data []byte) (*LedgerSyncMessage, error) {
	var msg LedgerSyncMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if len(msg.Documents) == 0 {
		return nil, fmt.Errorf("ledger sync message without documents")
	}
	return &msg, nil
}
