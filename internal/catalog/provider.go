// Package catalog supplies candidate movie lists for swipe sessions.
package catalog

import (
	"context"
	"errors"

	"filmbox/internal/domain"
)

var ErrNoResults = errors.New("catalog returned no movies")

type Request struct {
	// Size is the number of candidates wanted for one session.
	Size int
}

// Provider returns an ordered candidate list for a session request.
// Implementations may fail; session start then fails as a whole.
type Provider interface {
	Fetch(ctx context.Context, req Request) ([]domain.Movie, error)
}
