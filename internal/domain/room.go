package domain

import "strings"

// RoomID is a short shared code. Comparison is case-insensitive, so
// ids are always stored and looked up in their normalized form.
type RoomID string

func NormalizeRoomID(raw string) RoomID {
	return RoomID(strings.ToUpper(strings.TrimSpace(raw)))
}
