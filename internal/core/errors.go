package core

import "errors"

var (
	ErrRoomNotFound       = errors.New("room not found")
	ErrNotHost            = errors.New("only the host may start a session")
	ErrInvalidPhase       = errors.New("operation not allowed in current phase")
	ErrUnknownCandidate   = errors.New("candidate is not part of the active session")
	ErrNotMember          = errors.New("participant is not a member of the room")
	ErrCatalogUnavailable = errors.New("catalog unavailable")
	ErrNoCandidates       = errors.New("candidate list is empty")
)
