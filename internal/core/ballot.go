package core

import "filmbox/internal/domain"

// Ballot is the like/dislike split recorded for one candidate. It is a
// value type: every mutation returns a fresh Ballot with freshly
// allocated slices, so ballots stored in a room are never aliased.
type Ballot struct {
	Likes    []domain.ParticipantID `json:"likes"`
	Dislikes []domain.ParticipantID `json:"dislikes"`
}

// WithVote records a vote, replacing any earlier vote by the same
// participant for this candidate.
func (b Ballot) WithVote(id domain.ParticipantID, like bool) Ballot {
	next := b.WithoutVoter(id)
	if like {
		next.Likes = append(next.Likes, id)
	} else {
		next.Dislikes = append(next.Dislikes, id)
	}
	return next
}

// WithoutVoter drops every vote cast by the given participant.
func (b Ballot) WithoutVoter(id domain.ParticipantID) Ballot {
	next := Ballot{
		Likes:    make([]domain.ParticipantID, 0, len(b.Likes)),
		Dislikes: make([]domain.ParticipantID, 0, len(b.Dislikes)),
	}
	for _, v := range b.Likes {
		if v != id {
			next.Likes = append(next.Likes, v)
		}
	}
	for _, v := range b.Dislikes {
		if v != id {
			next.Dislikes = append(next.Dislikes, v)
		}
	}
	return next
}

func (b Ballot) Voted(id domain.ParticipantID) bool {
	return b.Liked(id) || b.Disliked(id)
}

func (b Ballot) Liked(id domain.ParticipantID) bool {
	for _, v := range b.Likes {
		if v == id {
			return true
		}
	}
	return false
}

func (b Ballot) Disliked(id domain.ParticipantID) bool {
	for _, v := range b.Dislikes {
		if v == id {
			return true
		}
	}
	return false
}

func (b Ballot) LikeCount() int { return len(b.Likes) }
