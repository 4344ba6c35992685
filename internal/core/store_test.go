package core

import (
	"testing"

	"filmbox/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoomStore_CreateAndLookup(t *testing.T) {
	t.Parallel()
	s := NewRoomStore()
	room := s.Create()

	require.Len(t, string(room.ID()), codeLength)
	assert.Equal(t, PhaseLobby, room.Phase())
	assert.True(t, room.Empty())

	got, ok := s.Get(string(room.ID()))
	require.True(t, ok)
	assert.Same(t, room, got)
}

func TestRoomStore_LookupIsCaseInsensitive(t *testing.T) {
	t.Parallel()
	s := NewRoomStoreWithGenerator(func() domain.RoomID { return "AB23CD" })
	room := s.Create()

	got, ok := s.Get("ab23cd")
	require.True(t, ok)
	assert.Same(t, room, got)

	got, ok = s.Get("  Ab23Cd ")
	require.True(t, ok)
	assert.Same(t, room, got)
}

func TestRoomStore_CreateRetriesOnCollision(t *testing.T) {
	t.Parallel()
	codes := []domain.RoomID{"AAAAAA", "AAAAAA", "BBBBBB"}
	i := 0
	s := NewRoomStoreWithGenerator(func() domain.RoomID {
		code := codes[i%len(codes)]
		i++
		return code
	})

	first := s.Create()
	second := s.Create()
	assert.Equal(t, domain.RoomID("AAAAAA"), first.ID())
	assert.Equal(t, domain.RoomID("BBBBBB"), second.ID())
	assert.Equal(t, 2, s.Len())
}

func TestRoomStore_DeleteIsIdempotent(t *testing.T) {
	t.Parallel()
	s := NewRoomStore()
	room := s.Create()

	s.Delete(room.ID())
	_, ok := s.Get(string(room.ID()))
	assert.False(t, ok)

	s.Delete(room.ID())
	assert.Equal(t, 0, s.Len())
}
