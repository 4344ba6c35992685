package core

import (
	"filmbox/internal/domain"

	"github.com/rs/zerolog/log"
)

type Phase string

const (
	PhaseLobby     Phase = "lobby"
	PhaseVoting    Phase = "voting"
	PhaseConcluded Phase = "concluded"
)

// Room is the aggregate for one swipe session: ordered membership, the
// active candidate list, the per-candidate vote ledger and the session
// phase. A Room holds no locks; it is mutated only by the coordinator's
// dispatch goroutine.
type Room struct {
	id           domain.RoomID
	participants []*domain.Participant
	candidates   []domain.Movie
	ballots      map[domain.MovieID]Ballot
	finished     map[domain.ParticipantID]struct{}
	phase        Phase
	matches      []domain.Movie
}

func NewRoom(id domain.RoomID) *Room {
	return &Room{
		id:       id,
		ballots:  make(map[domain.MovieID]Ballot),
		finished: make(map[domain.ParticipantID]struct{}),
		phase:    PhaseLobby,
	}
}

func (r *Room) ID() domain.RoomID { return r.id }
func (r *Room) Phase() Phase      { return r.phase }
func (r *Room) Empty() bool       { return len(r.participants) == 0 }
func (r *Room) Size() int         { return len(r.participants) }

// Host is the earliest-joined participant still present, recomputed
// implicitly on every departure. Nil for an empty room.
func (r *Room) Host() *domain.Participant {
	if len(r.participants) == 0 {
		return nil
	}
	return r.participants[0]
}

func (r *Room) HostID() domain.ParticipantID {
	if h := r.Host(); h != nil {
		return h.ID
	}
	return ""
}

func (r *Room) Participants() []domain.Participant {
	out := make([]domain.Participant, 0, len(r.participants))
	for _, p := range r.participants {
		out = append(out, *p)
	}
	return out
}

func (r *Room) Candidates() []domain.Movie {
	out := make([]domain.Movie, len(r.candidates))
	copy(out, r.candidates)
	return out
}

// Matches is the ordered subsequence of candidates every participant
// present at conclusion liked. Empty until the room concludes.
func (r *Room) Matches() []domain.Movie {
	out := make([]domain.Movie, len(r.matches))
	copy(out, r.matches)
	return out
}

func (r *Room) Ballot(id domain.MovieID) Ballot { return r.ballots[id] }

func (r *Room) member(id domain.ParticipantID) *domain.Participant {
	for _, p := range r.participants {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// AddParticipant appends a member. Membership changes are allowed in
// any phase; a joiner during voting must cover all candidates like
// anyone else before the room can conclude.
func (r *Room) AddParticipant(p *domain.Participant) {
	if r.member(p.ID) != nil {
		return
	}
	r.participants = append(r.participants, p)
	log.Debug().Str("module", "core.room").Str("room", string(r.id)).Str("pid", string(p.ID)).Msg("participant added")
}

// RemoveParticipant drops a member, purges their votes from every
// ballot and re-evaluates completion: removing the only non-finished
// participant can make the remaining set unanimous-finished.
func (r *Room) RemoveParticipant(id domain.ParticipantID) (removed, concluded bool) {
	idx := -1
	for i, p := range r.participants {
		if p.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false, false
	}
	r.participants = append(r.participants[:idx], r.participants[idx+1:]...)
	delete(r.finished, id)
	for mid, b := range r.ballots {
		r.ballots[mid] = b.WithoutVoter(id)
	}
	log.Debug().Str("module", "core.room").Str("room", string(r.id)).Str("pid", string(id)).Msg("participant removed")
	if len(r.participants) == 0 {
		// An emptied room is deleted by its owner, never concluded.
		return true, false
	}
	return true, r.concludeIfComplete()
}

// Start installs a fresh candidate list and enters the voting phase.
// Only the host may start, and only from lobby or concluded.
func (r *Room) Start(by domain.ParticipantID, candidates []domain.Movie) error {
	if r.HostID() != by {
		return ErrNotHost
	}
	if r.phase == PhaseVoting {
		return ErrInvalidPhase
	}
	if len(candidates) == 0 {
		return ErrNoCandidates
	}
	r.install(candidates)
	return nil
}

// Restart is Start without the phase restriction: the host may discard
// an in-flight session at any time.
func (r *Room) Restart(by domain.ParticipantID, candidates []domain.Movie) error {
	if r.HostID() != by {
		return ErrNotHost
	}
	if len(candidates) == 0 {
		return ErrNoCandidates
	}
	r.install(candidates)
	return nil
}

func (r *Room) install(candidates []domain.Movie) {
	r.candidates = make([]domain.Movie, len(candidates))
	copy(r.candidates, candidates)
	r.ballots = make(map[domain.MovieID]Ballot, len(candidates))
	r.finished = make(map[domain.ParticipantID]struct{})
	r.matches = nil
	r.phase = PhaseVoting
	log.Info().Str("module", "core.room").Str("room", string(r.id)).Int("candidates", len(candidates)).Msg("session started")
}

// VoteOutcome reports what a recorded vote changed beyond the ballot
// itself.
type VoteOutcome struct {
	// FinishedVoting is set the first time this vote completes the
	// participant's coverage of the candidate list.
	FinishedVoting bool
	// Liked holds the participant's liked candidates, in candidate
	// order, when FinishedVoting is set.
	Liked []domain.Movie
	// Concluded is set when this vote made every present participant
	// finished and the room transitioned to PhaseConcluded.
	Concluded bool
}

// SubmitVote idempotently records one participant's vote for one
// candidate. Re-voting replaces the earlier vote, never appends.
func (r *Room) SubmitVote(by domain.ParticipantID, movie domain.MovieID, like bool) (VoteOutcome, error) {
	var out VoteOutcome
	if r.phase != PhaseVoting {
		return out, ErrInvalidPhase
	}
	if r.member(by) == nil {
		return out, ErrNotMember
	}
	if !r.hasCandidate(movie) {
		return out, ErrUnknownCandidate
	}
	r.ballots[movie] = r.ballots[movie].WithVote(by, like)

	_, wasFinished := r.finished[by]
	if r.coverage(by) == len(r.candidates) {
		r.finished[by] = struct{}{}
		if !wasFinished {
			out.FinishedVoting = true
			out.Liked = r.likedBy(by)
		}
	}
	out.Concluded = r.concludeIfComplete()
	return out, nil
}

func (r *Room) hasCandidate(id domain.MovieID) bool {
	for _, m := range r.candidates {
		if m.ID == id {
			return true
		}
	}
	return false
}

// coverage counts the candidates this participant has voted on.
func (r *Room) coverage(id domain.ParticipantID) int {
	n := 0
	for _, m := range r.candidates {
		if r.ballots[m.ID].Voted(id) {
			n++
		}
	}
	return n
}

func (r *Room) likedBy(id domain.ParticipantID) []domain.Movie {
	out := make([]domain.Movie, 0)
	for _, m := range r.candidates {
		if r.ballots[m.ID].Liked(id) {
			out = append(out, m)
		}
	}
	return out
}

// concludeIfComplete transitions to PhaseConcluded once every present
// participant is finished, computing the unanimous-like match set. The
// transition fires at most once per session, so the conclusion
// broadcast cannot repeat.
func (r *Room) concludeIfComplete() bool {
	if r.phase != PhaseVoting {
		return false
	}
	if len(r.participants) == 0 || len(r.finished) != len(r.participants) {
		return false
	}
	matches := make([]domain.Movie, 0)
	for _, m := range r.candidates {
		if r.ballots[m.ID].LikeCount() == len(r.participants) {
			matches = append(matches, m)
		}
	}
	r.matches = matches
	r.phase = PhaseConcluded
	log.Info().Str("module", "core.room").Str("room", string(r.id)).Int("matches", len(matches)).Msg("session concluded")
	return true
}
