package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"filmbox/internal/catalog"
	"filmbox/internal/core"
	"filmbox/internal/domain"
	"filmbox/internal/message"

	"github.com/rs/zerolog/log"
)

func (c *Coordinator) dispatch(ev event) {
	switch ev := ev.(type) {
	case evConnect:
		c.reg.bind(ev.sid, ev.sender)
	case evDisconnect:
		c.leaveCurrentRoom(ev.sid)
		c.reg.unbind(ev.sid)
	case evCreateRoom:
		c.handleCreateRoom(ev)
	case evJoinRoom:
		c.handleJoinRoom(ev)
	case evLeaveRoom:
		c.leaveCurrentRoom(ev.sid)
	case evStartSession:
		c.handleStartSession(ev)
	case evCandidatesReady:
		c.handleCandidatesReady(ev)
	case evSubmitVote:
		c.handleSubmitVote(ev)
	case evSnapshot:
		c.handleSnapshot(ev)
	case evSweep:
		c.handleSweep(ev)
	default:
		log.Warn().Str("module", "app.coordinator").Msgf("unknown event %T", ev)
	}
}

func (c *Coordinator) handleCreateRoom(ev evCreateRoom) {
	st := c.reg.get(ev.sid)
	if st == nil {
		return
	}
	p, err := domain.NewParticipant(ev.sid, ev.name)
	if err != nil {
		c.send(ev.sid, message.NewError(message.KindInvalidName, err.Error()))
		return
	}

	// creating implies leaving whatever room the connection is in
	c.leaveCurrentRoom(ev.sid)

	room := c.store.Create()
	room.AddParticipant(p)
	st.roomID = room.ID()
	c.touch(room.ID())

	c.send(ev.sid, message.NewRoomCreated(string(room.ID()), *p))
	log.Info().Str("module", "app.coordinator").Str("room", string(room.ID())).Str("sid", string(ev.sid)).Msg("room created")
}

func (c *Coordinator) handleJoinRoom(ev evJoinRoom) {
	st := c.reg.get(ev.sid)
	if st == nil {
		return
	}
	if _, ok := c.store.Get(ev.roomID); !ok {
		c.send(ev.sid, message.NewRoomNotFound(fmt.Sprintf("room %q does not exist", ev.roomID)))
		return
	}
	p, err := domain.NewParticipant(ev.sid, ev.name)
	if err != nil {
		c.send(ev.sid, message.NewError(message.KindInvalidName, err.Error()))
		return
	}

	c.leaveCurrentRoom(ev.sid)
	// leaving may have emptied and deleted the target room itself
	room, ok := c.store.Get(ev.roomID)
	if !ok {
		c.send(ev.sid, message.NewRoomNotFound(fmt.Sprintf("room %q does not exist", ev.roomID)))
		return
	}

	room.AddParticipant(p)
	st.roomID = room.ID()
	c.touch(room.ID())

	joined := message.RoomJoined{
		Type:         message.TypeRoomJoined,
		RoomID:       string(room.ID()),
		Participant:  *p,
		Participants: room.Participants(),
		HostID:       string(room.HostID()),
		Phase:        string(room.Phase()),
	}
	switch room.Phase() {
	case core.PhaseVoting:
		joined.Movies = room.Candidates()
	case core.PhaseConcluded:
		joined.Matches = room.Matches()
	}
	c.send(ev.sid, joined)

	c.broadcastExcept(room, ev.sid, message.UserJoined{
		Type:        message.TypeUserJoined,
		Participant: *p,
		HostID:      string(room.HostID()),
		Count:       room.Size(),
	})
	log.Info().Str("module", "app.coordinator").Str("room", string(room.ID())).Str("sid", string(ev.sid)).Int("count", room.Size()).Msg("participant joined")
}

// leaveCurrentRoom removes the connection from its room (if any),
// deletes the room when it empties, and otherwise broadcasts the
// departure plus any conclusion the departure triggered.
func (c *Coordinator) leaveCurrentRoom(sid domain.ParticipantID) {
	st := c.reg.get(sid)
	if st == nil || st.roomID == "" {
		return
	}
	roomID := st.roomID
	st.roomID = ""

	room, ok := c.store.Get(string(roomID))
	if !ok {
		return
	}
	removed, concluded := room.RemoveParticipant(sid)
	if !removed {
		return
	}
	if room.Empty() {
		c.store.Delete(room.ID())
		delete(c.activity, room.ID())
		return
	}
	c.touch(roomID)
	c.broadcast(room, message.UserLeft{
		Type:          message.TypeUserLeft,
		ParticipantID: string(sid),
		HostID:        string(room.HostID()),
		Count:         room.Size(),
	})
	if concluded {
		c.broadcast(room, message.NewSessionEnded(room.Matches()))
	}
}

func (c *Coordinator) handleStartSession(ev evStartSession) {
	st := c.reg.get(ev.sid)
	if st == nil {
		return
	}
	if st.roomID == "" {
		c.send(ev.sid, message.NewError(message.KindNotInRoom, "join a room first"))
		return
	}
	room, ok := c.store.Get(string(st.roomID))
	if !ok {
		c.send(ev.sid, message.NewError(message.KindRoomNotFound, "room is gone"))
		return
	}
	// pre-validate so a doomed start never hits the catalog
	if room.HostID() != ev.sid {
		c.send(ev.sid, message.NewError(message.KindUnauthorized, "you are not the host"))
		return
	}
	if !ev.restart && room.Phase() == core.PhaseVoting {
		c.send(ev.sid, message.NewError(message.KindInvalidPhase, "session already running, use restart"))
		return
	}

	// The fetch happens outside the loop; the mutation applies when
	// evCandidatesReady comes back, atomically and re-validated.
	go c.fetchCandidates(ev.sid, room.ID(), ev.restart)
}

func (c *Coordinator) fetchCandidates(sid domain.ParticipantID, roomID domain.RoomID, restart bool) {
	ctx, cancel := context.WithTimeout(context.Background(), c.opts.FetchTimeout)
	defer cancel()
	movies, err := c.catalog.Fetch(ctx, catalog.Request{Size: c.opts.SessionSize})
	c.post(context.Background(), evCandidatesReady{
		sid:     sid,
		roomID:  roomID,
		restart: restart,
		movies:  movies,
		err:     err,
	})
}

func (c *Coordinator) handleCandidatesReady(ev evCandidatesReady) {
	if ev.err != nil {
		log.Warn().Err(ev.err).Str("module", "app.coordinator").Str("room", string(ev.roomID)).Msg("catalog fetch failed")
		c.send(ev.sid, message.NewError(message.KindCatalogFailure, "could not load movies, try again"))
		return
	}
	room, ok := c.store.Get(string(ev.roomID))
	if !ok {
		c.send(ev.sid, message.NewRoomNotFound("room is gone"))
		return
	}

	// the room may have changed while the fetch was in flight
	var err error
	if ev.restart {
		err = room.Restart(ev.sid, ev.movies)
	} else {
		err = room.Start(ev.sid, ev.movies)
	}
	if err != nil {
		c.send(ev.sid, message.NewError(errorKind(err), err.Error()))
		return
	}
	c.touch(room.ID())
	c.broadcast(room, message.NewSessionStarted(room.Candidates()))
}

func (c *Coordinator) handleSubmitVote(ev evSubmitVote) {
	st := c.reg.get(ev.sid)
	if st == nil {
		return
	}
	if st.roomID == "" {
		c.send(ev.sid, message.NewError(message.KindNotInRoom, "join a room first"))
		return
	}
	room, ok := c.store.Get(string(st.roomID))
	if !ok {
		c.send(ev.sid, message.NewError(message.KindRoomNotFound, "room is gone"))
		return
	}

	out, err := room.SubmitVote(ev.sid, ev.movieID, ev.like)
	if err != nil {
		c.send(ev.sid, message.NewError(errorKind(err), err.Error()))
		return
	}
	c.touch(room.ID())

	// votes are not broadcast live: only the voter is acknowledged,
	// keeping the reveal simultaneous
	c.send(ev.sid, message.NewVoteAccepted(int(ev.movieID)))
	if out.FinishedVoting {
		c.send(ev.sid, message.NewVotingFinished(out.Liked))
	}
	if out.Concluded {
		c.broadcast(room, message.NewSessionEnded(room.Matches()))
	}
}

func (c *Coordinator) handleSnapshot(ev evSnapshot) {
	room, ok := c.store.Get(ev.roomID)
	if !ok {
		ev.reply <- nil
		return
	}
	ev.reply <- &RoomSnapshot{
		RoomID:       string(room.ID()),
		Phase:        room.Phase(),
		HostID:       string(room.HostID()),
		Participants: room.Participants(),
		Candidates:   len(room.Candidates()),
		Matches:      room.Matches(),
	}
}

func (c *Coordinator) handleSweep(ev evSweep) {
	for _, room := range c.store.Rooms() {
		last, ok := c.activity[room.ID()]
		if !ok {
			c.activity[room.ID()] = ev.now
			continue
		}
		if ev.now.Sub(last) < c.opts.IdleTTL {
			continue
		}
		log.Info().Str("module", "app.coordinator").Str("room", string(room.ID())).Msg("evicting idle room")
		c.broadcast(room, message.NewRoomClosed("room closed after inactivity"))
		for _, p := range room.Participants() {
			if st := c.reg.get(p.ID); st != nil && st.roomID == room.ID() {
				st.roomID = ""
			}
		}
		c.store.Delete(room.ID())
		delete(c.activity, room.ID())
	}
}

func (c *Coordinator) touch(roomID domain.RoomID) {
	c.activity[roomID] = time.Now()
}

func (c *Coordinator) send(sid domain.ParticipantID, v any) {
	st := c.reg.get(sid)
	if st == nil {
		return
	}
	if err := st.sender.TrySend(v); err != nil {
		log.Warn().Err(err).Str("module", "app.coordinator").Str("sid", string(sid)).Msg("frame dropped")
	}
}

func (c *Coordinator) broadcast(room *core.Room, v any) {
	c.broadcastExcept(room, "", v)
}

func (c *Coordinator) broadcastExcept(room *core.Room, skip domain.ParticipantID, v any) {
	for _, p := range room.Participants() {
		if p.ID == skip {
			continue
		}
		c.send(p.ID, v)
	}
}

func errorKind(err error) string {
	switch {
	case errors.Is(err, core.ErrNotHost):
		return message.KindUnauthorized
	case errors.Is(err, core.ErrInvalidPhase):
		return message.KindInvalidPhase
	case errors.Is(err, core.ErrUnknownCandidate):
		return message.KindUnknownCandidate
	case errors.Is(err, core.ErrNotMember):
		return message.KindNotInRoom
	case errors.Is(err, core.ErrRoomNotFound):
		return message.KindRoomNotFound
	case errors.Is(err, core.ErrNoCandidates):
		return message.KindCatalogFailure
	default:
		return message.KindInternal
	}
}
