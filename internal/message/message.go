// Package message holds the wire types of the room event protocol.
// Every frame is a JSON object whose "type" field selects the payload.
package message

import "filmbox/internal/domain"

// Envelope is the minimal decode used to route an inbound frame.
type Envelope struct {
	Type string `json:"type"`
}

// Inbound payloads. RoomID fields mirror the wire format the swipe
// client sends; routing is by connection membership, joinRoom aside.

type CreateRoom struct {
	Name string `json:"name"`
}

type JoinRoom struct {
	RoomID string `json:"roomId"`
	Name   string `json:"name"`
}

type SubmitVote struct {
	RoomID  string `json:"roomId,omitempty"`
	MovieID int    `json:"movieId"`
	Like    bool   `json:"like"`
}

// Outbound payloads.

type RoomCreated struct {
	Type        string             `json:"type"`
	RoomID      string             `json:"roomId"`
	Participant domain.Participant `json:"participant"`
}

func NewRoomCreated(roomID string, p domain.Participant) RoomCreated {
	return RoomCreated{Type: TypeRoomCreated, RoomID: roomID, Participant: p}
}

type RoomJoined struct {
	Type         string               `json:"type"`
	RoomID       string               `json:"roomId"`
	Participant  domain.Participant   `json:"participant"`
	Participants []domain.Participant `json:"participants"`
	HostID       string               `json:"hostId"`
	Phase        string               `json:"phase"`
	Movies       []domain.Movie       `json:"movies,omitempty"`
	Matches      []domain.Movie       `json:"matches,omitempty"`
}

type RoomNotFound struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

func NewRoomNotFound(msg string) RoomNotFound {
	return RoomNotFound{Type: TypeRoomNotFound, Message: msg}
}

type UserJoined struct {
	Type        string             `json:"type"`
	Participant domain.Participant `json:"participant"`
	HostID      string             `json:"hostId"`
	Count       int                `json:"count"`
}

type UserLeft struct {
	Type          string `json:"type"`
	ParticipantID string `json:"participantId"`
	HostID        string `json:"hostId"`
	Count         int    `json:"count"`
}

type SessionStarted struct {
	Type   string         `json:"type"`
	Movies []domain.Movie `json:"movies"`
}

func NewSessionStarted(movies []domain.Movie) SessionStarted {
	return SessionStarted{Type: TypeSessionStarted, Movies: movies}
}

type VoteAccepted struct {
	Type    string `json:"type"`
	MovieID int    `json:"movieId"`
}

func NewVoteAccepted(movieID int) VoteAccepted {
	return VoteAccepted{Type: TypeVoteAccepted, MovieID: movieID}
}

type VotingFinished struct {
	Type  string         `json:"type"`
	Liked []domain.Movie `json:"liked"`
}

func NewVotingFinished(liked []domain.Movie) VotingFinished {
	return VotingFinished{Type: TypeVotingFinished, Liked: liked}
}

type SessionEnded struct {
	Type    string         `json:"type"`
	Matches []domain.Movie `json:"matches"`
}

func NewSessionEnded(matches []domain.Movie) SessionEnded {
	return SessionEnded{Type: TypeSessionEnded, Matches: matches}
}

type RoomClosed struct {
	Type   string `json:"type"`
	Reason string `json:"reason"`
}

func NewRoomClosed(reason string) RoomClosed {
	return RoomClosed{Type: TypeRoomClosed, Reason: reason}
}

type Error struct {
	Type    string `json:"type"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

func NewError(kind, msg string) Error {
	return Error{Type: TypeError, Kind: kind, Message: msg}
}

type Pong struct {
	Type string `json:"type"`
}

func NewPong() Pong { return Pong{Type: TypePong} }
