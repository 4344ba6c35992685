// Package domain contains entity without logic, just meta-data
package domain

import "errors"

const MaxDisplayNameLen = 36

var (
	ErrNameEmpty   = errors.New("display name empty")
	ErrNameTooLong = errors.New("display name too long")
)

// ParticipantID is the id of one live connection; unique within a room.
type ParticipantID string

type Participant struct {
	ID   ParticipantID `json:"id"`
	Name string        `json:"name"`
}

// NewParticipant is a tiny helper to avoid ad-hoc struct literals in adapters.
func NewParticipant(id ParticipantID, name string) (*Participant, error) {
	if err := ValidateDisplayName(name); err != nil {
		return nil, err
	}
	return &Participant{ID: id, Name: name}, nil
}

func ValidateDisplayName(name string) error {
	if len(name) == 0 {
		return ErrNameEmpty
	}
	if len(name) > MaxDisplayNameLen {
		return ErrNameTooLong
	}
	return nil
}
