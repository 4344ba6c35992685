package core

import (
	"math/rand"

	"filmbox/internal/domain"

	"github.com/rs/zerolog/log"
)

// codeAlphabet deliberately omits 0/O/1/I so codes survive being read
// out loud.
const (
	codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	codeLength   = 6
)

// CodeGenerator produces candidate room codes. Injectable for tests.
type CodeGenerator func() domain.RoomID

func randomCode() domain.RoomID {
	buf := make([]byte, codeLength)
	for i := range buf {
		buf[i] = codeAlphabet[rand.Intn(len(codeAlphabet))]
	}
	return domain.RoomID(buf)
}

// RoomStore is the process-wide table of live rooms. Like Room it is
// owned by the coordinator's dispatch goroutine and holds no locks.
type RoomStore struct {
	rooms map[domain.RoomID]*Room
	gen   CodeGenerator
}

func NewRoomStore() *RoomStore {
	return NewRoomStoreWithGenerator(randomCode)
}

func NewRoomStoreWithGenerator(gen CodeGenerator) *RoomStore {
	return &RoomStore{
		rooms: make(map[domain.RoomID]*Room),
		gen:   gen,
	}
}

// Create inserts an empty lobby-phase room under a code unique among
// currently-live rooms, retrying generation on collision.
func (s *RoomStore) Create() *Room {
	var id domain.RoomID
	for {
		id = domain.NormalizeRoomID(string(s.gen()))
		if _, taken := s.rooms[id]; !taken {
			break
		}
	}
	room := NewRoom(id)
	s.rooms[id] = room
	log.Info().Str("module", "core.store").Str("room", string(id)).Msg("room created")
	return room
}

// Get looks a room up case-insensitively.
func (s *RoomStore) Get(raw string) (*Room, bool) {
	room, ok := s.rooms[domain.NormalizeRoomID(raw)]
	return room, ok
}

// Delete is a no-op when the room is absent.
func (s *RoomStore) Delete(id domain.RoomID) {
	if _, ok := s.rooms[id]; !ok {
		return
	}
	delete(s.rooms, id)
	log.Info().Str("module", "core.store").Str("room", string(id)).Msg("room deleted")
}

func (s *RoomStore) Len() int { return len(s.rooms) }

// Rooms returns the live room set; used by the idle reaper sweep.
func (s *RoomStore) Rooms() []*Room {
	out := make([]*Room, 0, len(s.rooms))
	for _, r := range s.rooms {
		out = append(out, r)
	}
	return out
}
