package app

import (
	"time"

	"filmbox/internal/domain"
)

// Inbound events, one per protocol action plus the internal ones the
// dispatch loop posts to itself. All room mutation happens while one
// of these is being handled.
type event interface{ isEvent() }

type evConnect struct {
	sid    domain.ParticipantID
	sender Sender
}

type evDisconnect struct {
	sid domain.ParticipantID
}

type evCreateRoom struct {
	sid  domain.ParticipantID
	name string
}

type evJoinRoom struct {
	sid    domain.ParticipantID
	roomID string
	name   string
}

type evLeaveRoom struct {
	sid domain.ParticipantID
}

type evStartSession struct {
	sid     domain.ParticipantID
	restart bool
}

type evSubmitVote struct {
	sid     domain.ParticipantID
	movieID domain.MovieID
	like    bool
}

// evCandidatesReady carries a finished catalog fetch back into the
// loop so the session start applies in a single synchronous step.
type evCandidatesReady struct {
	sid     domain.ParticipantID
	roomID  domain.RoomID
	restart bool
	movies  []domain.Movie
	err     error
}

// evSnapshot answers a read-only room probe over the reply channel;
// nil means not found. The channel must be buffered.
type evSnapshot struct {
	roomID string
	reply  chan *RoomSnapshot
}

type evSweep struct {
	now time.Time
}

func (evConnect) isEvent()         {}
func (evDisconnect) isEvent()      {}
func (evCreateRoom) isEvent()      {}
func (evJoinRoom) isEvent()        {}
func (evLeaveRoom) isEvent()       {}
func (evStartSession) isEvent()    {}
func (evSubmitVote) isEvent()      {}
func (evCandidatesReady) isEvent() {}
func (evSnapshot) isEvent()        {}
func (evSweep) isEvent()           {}
