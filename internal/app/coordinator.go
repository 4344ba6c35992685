// Package app hosts the session coordinator: the single-threaded
// dispatcher that owns every room and turns protocol events into room
// mutations and broadcasts.
package app

import (
	"context"
	"time"

	"filmbox/internal/catalog"
	"filmbox/internal/core"
	"filmbox/internal/domain"

	"github.com/rs/zerolog/log"
)

type Options struct {
	// SessionSize is the number of candidates fetched per session.
	SessionSize int
	// IdleTTL evicts rooms with no event activity for this long.
	// Zero disables the reaper.
	IdleTTL time.Duration
	// SweepInterval is how often the reaper checks; defaults to
	// IdleTTL/2 when unset.
	SweepInterval time.Duration
	// FetchTimeout bounds one catalog fetch.
	FetchTimeout time.Duration
}

func (o Options) withDefaults() Options {
	if o.SessionSize <= 0 {
		o.SessionSize = 20
	}
	if o.FetchTimeout <= 0 {
		o.FetchTimeout = 15 * time.Second
	}
	if o.SweepInterval <= 0 {
		o.SweepInterval = o.IdleTTL / 2
	}
	return o
}

// Coordinator serializes all room mutations: every inbound event is
// handled one at a time by Run's goroutine, so rooms and the store
// need no locks. Anything needing an external result (the catalog
// fetch) is resolved outside the loop and re-enters it as an event.
type Coordinator struct {
	store    *core.RoomStore
	catalog  catalog.Provider
	opts     Options
	events   chan event
	reg      *registry
	activity map[domain.RoomID]time.Time
	quit     chan struct{}
}

func NewCoordinator(store *core.RoomStore, provider catalog.Provider, opts Options) *Coordinator {
	return &Coordinator{
		store:    store,
		catalog:  provider,
		opts:     opts.withDefaults(),
		events:   make(chan event, 256),
		reg:      newRegistry(),
		activity: make(map[domain.RoomID]time.Time),
		quit:     make(chan struct{}),
	}
}

// Run drains the event queue until ctx is canceled. It is the only
// goroutine that touches rooms, the store or the registry.
func (c *Coordinator) Run(ctx context.Context) {
	defer close(c.quit)

	var sweep <-chan time.Time
	if c.opts.IdleTTL > 0 {
		ticker := time.NewTicker(c.opts.SweepInterval)
		defer ticker.Stop()
		sweep = ticker.C
	}

	log.Info().Str("module", "app.coordinator").Msg("coordinator loop started")
	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "app.coordinator").Msg("coordinator loop stopped")
			return
		case ev := <-c.events:
			c.dispatch(ev)
		case now := <-sweep:
			c.dispatch(evSweep{now: now})
		}
	}
}

// post hands an event to the loop, giving up when the caller or the
// loop goes away.
func (c *Coordinator) post(ctx context.Context, ev event) {
	select {
	case c.events <- ev:
	case <-c.quit:
	case <-ctx.Done():
	}
}

// Connect registers a live connection and its outbound sender.
func (c *Coordinator) Connect(ctx context.Context, sid domain.ParticipantID, sender Sender) {
	c.post(ctx, evConnect{sid: sid, sender: sender})
}

// Disconnect reconciles an unannounced disappearance: it is treated
// exactly like an explicit leave of the connection's current room.
func (c *Coordinator) Disconnect(ctx context.Context, sid domain.ParticipantID) {
	c.post(ctx, evDisconnect{sid: sid})
}

func (c *Coordinator) CreateRoom(ctx context.Context, sid domain.ParticipantID, name string) {
	c.post(ctx, evCreateRoom{sid: sid, name: name})
}

func (c *Coordinator) JoinRoom(ctx context.Context, sid domain.ParticipantID, roomID, name string) {
	c.post(ctx, evJoinRoom{sid: sid, roomID: roomID, name: name})
}

func (c *Coordinator) LeaveRoom(ctx context.Context, sid domain.ParticipantID) {
	c.post(ctx, evLeaveRoom{sid: sid})
}

func (c *Coordinator) StartSession(ctx context.Context, sid domain.ParticipantID) {
	c.post(ctx, evStartSession{sid: sid})
}

func (c *Coordinator) RestartSession(ctx context.Context, sid domain.ParticipantID) {
	c.post(ctx, evStartSession{sid: sid, restart: true})
}

func (c *Coordinator) SubmitVote(ctx context.Context, sid domain.ParticipantID, movieID int, like bool) {
	c.post(ctx, evSubmitVote{sid: sid, movieID: domain.MovieID(movieID), like: like})
}

// RoomSnapshot is a read-only view served to HTTP probes.
type RoomSnapshot struct {
	RoomID       string               `json:"roomId"`
	Phase        core.Phase           `json:"phase"`
	HostID       string               `json:"hostId"`
	Participants []domain.Participant `json:"participants"`
	Candidates   int                  `json:"candidates"`
	Matches      []domain.Movie       `json:"matches,omitempty"`
}

// Snapshot asks the loop for a room's current state. The read runs
// inside the dispatch goroutine, never interleaved with a mutation.
func (c *Coordinator) Snapshot(ctx context.Context, roomID string) (*RoomSnapshot, bool) {
	reply := make(chan *RoomSnapshot, 1)
	c.post(ctx, evSnapshot{roomID: roomID, reply: reply})
	select {
	case snap := <-reply:
		return snap, snap != nil
	case <-ctx.Done():
		return nil, false
	case <-c.quit:
		return nil, false
	}
}
