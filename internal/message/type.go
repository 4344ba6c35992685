package message

// Client → server event types.
const (
	TypeCreateRoom     = "createRoom"
	TypeJoinRoom       = "joinRoom"
	TypeLeaveRoom      = "leaveRoom"
	TypeStartSession   = "startSession"
	TypeRestartSession = "restartSession"
	TypeSubmitVote     = "submitVote"
	TypePing           = "ping"
)

// Server → client event types.
const (
	TypeRoomCreated    = "roomCreated"
	TypeRoomJoined     = "roomJoined"
	TypeRoomNotFound   = "roomNotFound"
	TypeUserJoined     = "userJoined"
	TypeUserLeft       = "userLeft"
	TypeSessionStarted = "sessionStarted"
	TypeVoteAccepted   = "voteAccepted"
	TypeVotingFinished = "votingFinished"
	TypeSessionEnded   = "sessionEnded"
	TypeRoomClosed     = "roomClosed"
	TypeError          = "error"
	TypePong           = "pong"
)

// Error kinds, so clients can explain why an action was rejected.
const (
	KindBadPayload       = "badPayload"
	KindInvalidName      = "invalidName"
	KindRoomNotFound     = "roomNotFound"
	KindNotInRoom        = "notInRoom"
	KindUnauthorized     = "unauthorized"
	KindInvalidPhase     = "invalidPhase"
	KindUnknownCandidate = "unknownCandidate"
	KindCatalogFailure   = "catalogFailure"
	KindInternal         = "internal"
)
