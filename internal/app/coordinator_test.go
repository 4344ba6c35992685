package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"filmbox/internal/catalog"
	"filmbox/internal/core"
	"filmbox/internal/domain"
	"filmbox/internal/message"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	frames chan any
}

func newFakeSender() *fakeSender {
	return &fakeSender{frames: make(chan any, 64)}
}

func (s *fakeSender) TrySend(v any) error {
	select {
	case s.frames <- v:
		return nil
	default:
		return errors.New("outbound buffer full")
	}
}

// next waits for the sender's next frame and requires it to have the
// expected payload type.
func next[T any](t *testing.T, s *fakeSender) T {
	t.Helper()
	select {
	case v := <-s.frames:
		typed, ok := v.(T)
		var want T
		require.Truef(t, ok, "expected %T, got %T: %+v", want, v, v)
		return typed
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for frame")
	}
	panic("unreachable")
}

func noFrame(t *testing.T, s *fakeSender) {
	t.Helper()
	select {
	case v := <-s.frames:
		t.Fatalf("unexpected frame %T: %+v", v, v)
	case <-time.After(100 * time.Millisecond):
	}
}

type failingCatalog struct{}

func (failingCatalog) Fetch(context.Context, catalog.Request) ([]domain.Movie, error) {
	return nil, errors.New("upstream down")
}

func startCoordinator(t *testing.T, provider catalog.Provider, opts Options) (*Coordinator, context.Context) {
	t.Helper()
	c := NewCoordinator(core.NewRoomStore(), provider, opts)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go c.Run(ctx)
	return c, ctx
}

func twoMovies() []domain.Movie {
	return []domain.Movie{
		{ID: 1, Title: "Alpha"},
		{ID: 2, Title: "Beta"},
	}
}

// connectAndCreate wires a fake client, creates a room and returns the
// room id.
func connectAndCreate(t *testing.T, ctx context.Context, c *Coordinator, sid, name string) (*fakeSender, string) {
	t.Helper()
	s := newFakeSender()
	c.Connect(ctx, domain.ParticipantID(sid), s)
	c.CreateRoom(ctx, domain.ParticipantID(sid), name)
	created := next[message.RoomCreated](t, s)
	return s, created.RoomID
}

func connectAndJoin(t *testing.T, ctx context.Context, c *Coordinator, sid, name, roomID string) *fakeSender {
	t.Helper()
	s := newFakeSender()
	c.Connect(ctx, domain.ParticipantID(sid), s)
	c.JoinRoom(ctx, domain.ParticipantID(sid), roomID, name)
	next[message.RoomJoined](t, s)
	return s
}

func TestCoordinator_FullMatchFlow(t *testing.T) {
	t.Parallel()
	c, ctx := startCoordinator(t, &catalog.Static{Movies: twoMovies()}, Options{SessionSize: 2})

	alice, roomID := connectAndCreate(t, ctx, c, "a", "alice")
	bob := connectAndJoin(t, ctx, c, "b", "bob", roomID)

	joinNotice := next[message.UserJoined](t, alice)
	assert.Equal(t, "bob", joinNotice.Participant.Name)
	assert.Equal(t, 2, joinNotice.Count)
	assert.Equal(t, "a", joinNotice.HostID)

	c.StartSession(ctx, "a")
	started := next[message.SessionStarted](t, alice)
	require.Len(t, started.Movies, 2)
	next[message.SessionStarted](t, bob)

	// alice likes both
	c.SubmitVote(ctx, "a", 1, true)
	next[message.VoteAccepted](t, alice)
	c.SubmitVote(ctx, "a", 2, true)
	next[message.VoteAccepted](t, alice)
	finished := next[message.VotingFinished](t, alice)
	assert.Len(t, finished.Liked, 2)

	// bob likes Alpha, dislikes Beta
	c.SubmitVote(ctx, "b", 1, true)
	next[message.VoteAccepted](t, bob)
	c.SubmitVote(ctx, "b", 2, false)
	next[message.VoteAccepted](t, bob)
	next[message.VotingFinished](t, bob)

	for _, s := range []*fakeSender{alice, bob} {
		ended := next[message.SessionEnded](t, s)
		require.Len(t, ended.Matches, 1)
		assert.Equal(t, "Alpha", ended.Matches[0].Title)
	}
}

func TestCoordinator_SessionEndedExactlyOnce(t *testing.T) {
	t.Parallel()
	c, ctx := startCoordinator(t, &catalog.Static{Movies: twoMovies()[:1]}, Options{SessionSize: 1})

	alice, roomID := connectAndCreate(t, ctx, c, "a", "alice")
	bob := connectAndJoin(t, ctx, c, "b", "bob", roomID)
	next[message.UserJoined](t, alice)

	c.StartSession(ctx, "a")
	next[message.SessionStarted](t, alice)
	next[message.SessionStarted](t, bob)

	c.SubmitVote(ctx, "a", 1, true)
	next[message.VoteAccepted](t, alice)
	next[message.VotingFinished](t, alice)
	c.SubmitVote(ctx, "b", 1, true)
	next[message.VoteAccepted](t, bob)
	next[message.VotingFinished](t, bob)
	next[message.SessionEnded](t, alice)
	next[message.SessionEnded](t, bob)

	// a vote after conclusion is a rejected no-op, not a re-broadcast
	c.SubmitVote(ctx, "a", 1, false)
	rejected := next[message.Error](t, alice)
	assert.Equal(t, message.KindInvalidPhase, rejected.Kind)
	noFrame(t, alice)
	noFrame(t, bob)
}

func TestCoordinator_JoinUnknownRoom(t *testing.T) {
	t.Parallel()
	c, ctx := startCoordinator(t, &catalog.Static{Movies: twoMovies()}, Options{})

	s := newFakeSender()
	c.Connect(ctx, "x", s)
	c.JoinRoom(ctx, "x", "NOPE42", "xavier")
	notFound := next[message.RoomNotFound](t, s)
	assert.Contains(t, notFound.Message, "NOPE42")
}

func TestCoordinator_NonHostStartRejected(t *testing.T) {
	t.Parallel()
	c, ctx := startCoordinator(t, &catalog.Static{Movies: twoMovies()}, Options{})

	alice, roomID := connectAndCreate(t, ctx, c, "a", "alice")
	bob := connectAndJoin(t, ctx, c, "b", "bob", roomID)
	next[message.UserJoined](t, alice)

	c.StartSession(ctx, "b")
	rejected := next[message.Error](t, bob)
	assert.Equal(t, message.KindUnauthorized, rejected.Kind)

	snap, ok := c.Snapshot(ctx, roomID)
	require.True(t, ok)
	assert.Equal(t, core.PhaseLobby, snap.Phase)
	assert.Zero(t, snap.Candidates)
}

func TestCoordinator_CatalogFailureLeavesRoomUntouched(t *testing.T) {
	t.Parallel()
	c, ctx := startCoordinator(t, failingCatalog{}, Options{})

	alice, roomID := connectAndCreate(t, ctx, c, "a", "alice")
	c.StartSession(ctx, "a")
	rejected := next[message.Error](t, alice)
	assert.Equal(t, message.KindCatalogFailure, rejected.Kind)

	snap, ok := c.Snapshot(ctx, roomID)
	require.True(t, ok)
	assert.Equal(t, core.PhaseLobby, snap.Phase)
}

func TestCoordinator_DisconnectConcludesRoom(t *testing.T) {
	t.Parallel()
	c, ctx := startCoordinator(t, &catalog.Static{Movies: twoMovies()[:1]}, Options{SessionSize: 1})

	alice, roomID := connectAndCreate(t, ctx, c, "a", "alice")
	bob := connectAndJoin(t, ctx, c, "b", "bob", roomID)
	next[message.UserJoined](t, alice)

	c.StartSession(ctx, "a")
	next[message.SessionStarted](t, alice)
	next[message.SessionStarted](t, bob)

	c.SubmitVote(ctx, "a", 1, true)
	next[message.VoteAccepted](t, alice)
	next[message.VotingFinished](t, alice)

	// bob silently disappears before voting: alice's finished set now
	// covers everyone present and her like is unanimous
	c.Disconnect(ctx, "b")
	left := next[message.UserLeft](t, alice)
	assert.Equal(t, "b", left.ParticipantID)
	assert.Equal(t, "a", left.HostID)
	ended := next[message.SessionEnded](t, alice)
	require.Len(t, ended.Matches, 1)
	assert.Equal(t, "Alpha", ended.Matches[0].Title)
}

func TestCoordinator_EmptyRoomIsDeleted(t *testing.T) {
	t.Parallel()
	c, ctx := startCoordinator(t, &catalog.Static{Movies: twoMovies()}, Options{})

	_, roomID := connectAndCreate(t, ctx, c, "a", "alice")
	_, ok := c.Snapshot(ctx, roomID)
	require.True(t, ok)

	c.LeaveRoom(ctx, "a")
	_, ok = c.Snapshot(ctx, roomID)
	assert.False(t, ok)
}

func TestCoordinator_HostHandoffOnLeave(t *testing.T) {
	t.Parallel()
	c, ctx := startCoordinator(t, &catalog.Static{Movies: twoMovies()}, Options{})

	alice, roomID := connectAndCreate(t, ctx, c, "a", "alice")
	bob := connectAndJoin(t, ctx, c, "b", "bob", roomID)
	next[message.UserJoined](t, alice)

	c.LeaveRoom(ctx, "a")
	left := next[message.UserLeft](t, bob)
	assert.Equal(t, "a", left.ParticipantID)
	assert.Equal(t, "b", left.HostID, "earliest remaining participant becomes host")

	// and the new host may start
	c.StartSession(ctx, "b")
	next[message.SessionStarted](t, bob)
	noFrame(t, alice)
}

func TestCoordinator_VoteWithoutRoom(t *testing.T) {
	t.Parallel()
	c, ctx := startCoordinator(t, &catalog.Static{Movies: twoMovies()}, Options{})

	s := newFakeSender()
	c.Connect(ctx, "x", s)
	c.SubmitVote(ctx, "x", 1, true)
	rejected := next[message.Error](t, s)
	assert.Equal(t, message.KindNotInRoom, rejected.Kind)
}

func TestCoordinator_RestartAfterConclusion(t *testing.T) {
	t.Parallel()
	c, ctx := startCoordinator(t, &catalog.Static{Movies: twoMovies()[:1]}, Options{SessionSize: 1})

	alice, roomID := connectAndCreate(t, ctx, c, "a", "alice")
	c.StartSession(ctx, "a")
	next[message.SessionStarted](t, alice)
	c.SubmitVote(ctx, "a", 1, true)
	next[message.VoteAccepted](t, alice)
	next[message.VotingFinished](t, alice)
	next[message.SessionEnded](t, alice)

	c.RestartSession(ctx, "a")
	next[message.SessionStarted](t, alice)

	snap, ok := c.Snapshot(ctx, roomID)
	require.True(t, ok)
	assert.Equal(t, core.PhaseVoting, snap.Phase)
	assert.Empty(t, snap.Matches)
}

func TestCoordinator_IdleRoomReaped(t *testing.T) {
	t.Parallel()
	c, ctx := startCoordinator(t, &catalog.Static{Movies: twoMovies()}, Options{
		IdleTTL:       50 * time.Millisecond,
		SweepInterval: 10 * time.Millisecond,
	})

	alice, roomID := connectAndCreate(t, ctx, c, "a", "alice")
	closed := next[message.RoomClosed](t, alice)
	assert.Contains(t, closed.Reason, "inactivity")

	_, ok := c.Snapshot(ctx, roomID)
	assert.False(t, ok)

	// the evicted connection is free to create a fresh room
	c.CreateRoom(ctx, "a", "alice")
	next[message.RoomCreated](t, alice)
}
