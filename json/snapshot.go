// Package json persists chat sessions as JSON text in a single
// key-value slot.
package json

import (
	"encoding/json"
	"fmt"

	"github.com/lokalku/lokalku"
)

// snapshotDTO is the wire format of a persisted session.
type snapshotDTO struct {
	Messages     []messageDTO `json:"messages"`
	MessageCount int          `json:"messageCount"`
}

type messageDTO struct {
	ID        string `json:"id"`
	Role      string `json:"role"`
	Content   string `json:"content"`
	Timestamp int64  `json:"timestamp"`
}

// MarshalSnapshot serializes a Snapshot to JSON.
func MarshalSnapshot(s lokalku.Snapshot) ([]byte, error) {
	dto := snapshotDTO{
		Messages:     make([]messageDTO, len(s.Messages)),
		MessageCount: s.MessageCount,
	}
	for i, m := range s.Messages {
		if !m.Role.Valid() {
			return nil, fmt.Errorf("message %d: unknown role %q: %w", i, m.Role, lokalku.ErrValidation)
		}
		dto.Messages[i] = messageDTO{
			ID:        m.ID,
			Role:      string(m.Role),
			Content:   m.Content,
			Timestamp: m.Timestamp,
		}
	}
	return json.Marshal(dto)
}

// UnmarshalSnapshot deserializes a Snapshot from JSON.
func UnmarshalSnapshot(data []byte) (lokalku.Snapshot, error) {
	var dto snapshotDTO
	if err := json.Unmarshal(data, &dto); err != nil {
		return lokalku.Snapshot{}, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	if dto.MessageCount < 0 {
		return lokalku.Snapshot{}, fmt.Errorf("negative messageCount %d: %w", dto.MessageCount, lokalku.ErrValidation)
	}
	msgs := make([]lokalku.Message, len(dto.Messages))
	for i, m := range dto.Messages {
		role := lokalku.Role(m.Role)
		if !role.Valid() {
			return lokalku.Snapshot{}, fmt.Errorf("message %d: unknown role %q: %w", i, m.Role, lokalku.ErrValidation)
		}
		msgs[i] = lokalku.Message{
			ID:        m.ID,
			Role:      role,
			Content:   m.Content,
			Timestamp: m.Timestamp,
		}
	}
	return lokalku.Snapshot{Messages: msgs, MessageCount: dto.MessageCount}, nil
}
