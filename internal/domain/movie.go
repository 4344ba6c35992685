package domain

// MaxGenres caps the genre tags carried per movie.
const MaxGenres = 3

type MovieID int

// Movie is one candidate offered for voting. Immutable once assigned
// to a room's session.
type Movie struct {
	ID       MovieID  `json:"id"`
	Title    string   `json:"title"`
	Year     int      `json:"year"`
	Genres   []string `json:"genres"`
	Overview string   `json:"overview"`
	Poster   string   `json:"poster"`
}
