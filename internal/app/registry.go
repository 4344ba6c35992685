package app

import (
	"filmbox/internal/domain"

	"github.com/rs/zerolog/log"
)

// Sender delivers outbound protocol frames to one connection without
// blocking the dispatch loop. A full outbound buffer is an error; the
// frame is then dropped, never queued unboundedly.
type Sender interface {
	TrySend(v any) error
}

type connState struct {
	sender Sender
	roomID domain.RoomID // "" while not in a room
}

// registry maps each live connection to its sender and the room it
// currently belongs to (at most one). It is owned by the coordinator's
// dispatch goroutine, so unlike a shared session table it needs no
// lock.
type registry struct {
	conns map[domain.ParticipantID]*connState
}

func newRegistry() *registry {
	return &registry{conns: make(map[domain.ParticipantID]*connState)}
}

func (r *registry) bind(sid domain.ParticipantID, sender Sender) {
	r.conns[sid] = &connState{sender: sender}
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Msg("connection bound")
}

func (r *registry) unbind(sid domain.ParticipantID) {
	delete(r.conns, sid)
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Msg("connection unbound")
}

func (r *registry) get(sid domain.ParticipantID) *connState {
	return r.conns[sid]
}
