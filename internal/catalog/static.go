package catalog

import (
	"context"
	"math/rand"

	"filmbox/internal/domain"
)

// Static serves a fixed movie pool. It backs tests and runs the server
// without a TMDB key.
type Static struct {
	Movies []domain.Movie
	// Shuffle randomizes the served order; tests leave it off.
	Shuffle bool
}

func (s *Static) Fetch(_ context.Context, req Request) ([]domain.Movie, error) {
	if len(s.Movies) == 0 {
		return nil, ErrNoResults
	}
	out := make([]domain.Movie, len(s.Movies))
	copy(out, s.Movies)
	if s.Shuffle {
		rand.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	}
	if req.Size > 0 && len(out) > req.Size {
		out = out[:req.Size]
	}
	return out, nil
}

// BuiltinMovies is the offline fallback pool.
func BuiltinMovies() []domain.Movie {
	return []domain.Movie{
		{ID: 27205, Title: "Inception", Year: 2010, Genres: []string{"Action", "Science Fiction", "Adventure"}, Overview: "A thief who steals corporate secrets through dream-sharing technology is given the inverse task of planting an idea.", Poster: placeholderPoster},
		{ID: 603, Title: "The Matrix", Year: 1999, Genres: []string{"Action", "Science Fiction"}, Overview: "A hacker learns the truth about his reality and his role in the war against its controllers.", Poster: placeholderPoster},
		{ID: 680, Title: "Pulp Fiction", Year: 1994, Genres: []string{"Thriller", "Crime"}, Overview: "The lives of two mob hitmen, a boxer and a pair of diner bandits intertwine.", Poster: placeholderPoster},
		{ID: 129, Title: "Spirited Away", Year: 2001, Genres: []string{"Animation", "Family", "Fantasy"}, Overview: "A girl wanders into a world ruled by gods and witches where humans are changed into beasts.", Poster: placeholderPoster},
		{ID: 155, Title: "The Dark Knight", Year: 2008, Genres: []string{"Drama", "Action", "Crime"}, Overview: "Batman raises the stakes in his war on crime as the Joker plunges Gotham into anarchy.", Poster: placeholderPoster},
		{ID: 496243, Title: "Parasite", Year: 2019, Genres: []string{"Comedy", "Thriller", "Drama"}, Overview: "A poor family schemes to become employed by a wealthy household.", Poster: placeholderPoster},
		{ID: 278, Title: "The Shawshank Redemption", Year: 1994, Genres: []string{"Drama", "Crime"}, Overview: "Two imprisoned men bond over a number of years, finding solace and eventual redemption.", Poster: placeholderPoster},
		{ID: 550, Title: "Fight Club", Year: 1999, Genres: []string{"Drama"}, Overview: "An insomniac office worker and a soap maker form an underground fight club.", Poster: placeholderPoster},
		{ID: 120, Title: "The Lord of the Rings: The Fellowship of the Ring", Year: 2001, Genres: []string{"Adventure", "Fantasy", "Action"}, Overview: "A young hobbit sets out to destroy the One Ring.", Poster: placeholderPoster},
		{ID: 313369, Title: "La La Land", Year: 2016, Genres: []string{"Comedy", "Drama", "Romance"}, Overview: "An aspiring actress and a jazz musician chase their dreams in Los Angeles.", Poster: placeholderPoster},
		{ID: 419430, Title: "Get Out", Year: 2017, Genres: []string{"Mystery", "Thriller", "Horror"}, Overview: "A young man visits his girlfriend's parents and uncovers a disturbing secret.", Poster: placeholderPoster},
		{ID: 76341, Title: "Mad Max: Fury Road", Year: 2015, Genres: []string{"Action", "Adventure", "Science Fiction"}, Overview: "A woman rebels against a tyrannical ruler in a post-apocalyptic wasteland.", Poster: placeholderPoster},
	}
}
