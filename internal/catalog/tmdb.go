package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"filmbox/internal/domain"

	"github.com/rs/zerolog/log"
)

const placeholderPoster = "/static/placeholder.png"

type TMDBOptions struct {
	APIKey       string
	BaseURL      string // e.g. https://api.themoviedb.org/3
	ImageBaseURL string // e.g. https://image.tmdb.org/t/p/w500
	Language     string
	Pages        int
	Timeout      time.Duration
}

// TMDB pulls popular movies from themoviedb.org and maps them into
// domain candidates. The genre table is fetched once and cached for
// the process lifetime.
type TMDB struct {
	opts   TMDBOptions
	client *http.Client

	mu     sync.Mutex
	genres map[int]string
}

func NewTMDB(opts TMDBOptions) *TMDB {
	if opts.Pages <= 0 {
		opts.Pages = 3
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	return &TMDB{
		opts:   opts,
		client: &http.Client{Timeout: opts.Timeout},
	}
}

type tmdbGenre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type tmdbMovie struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	Overview    string `json:"overview"`
	PosterPath  string `json:"poster_path"`
	ReleaseDate string `json:"release_date"`
	GenreIDs    []int  `json:"genre_ids"`
}

// Fetch aggregates several popular-movie pages into a shuffled pool
// and returns up to req.Size candidates. A single failed page is
// skipped; only an empty pool is an error.
func (t *TMDB) Fetch(ctx context.Context, req Request) ([]domain.Movie, error) {
	genres, err := t.genreMap(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch genres: %w", err)
	}

	pool := make([]domain.Movie, 0, req.Size*t.opts.Pages)
	seen := make(map[int]struct{})
	for page := 1; page <= t.opts.Pages; page++ {
		var body struct {
			Results []tmdbMovie `json:"results"`
		}
		if err := t.getJSON(ctx, "/movie/popular", url.Values{"page": {strconv.Itoa(page)}}, &body); err != nil {
			log.Warn().Err(err).Str("module", "catalog.tmdb").Int("page", page).Msg("popular page failed, skipping")
			continue
		}
		for _, m := range body.Results {
			if _, dup := seen[m.ID]; dup {
				continue
			}
			seen[m.ID] = struct{}{}
			pool = append(pool, t.toDomain(m, genres))
		}
	}
	if len(pool) == 0 {
		return nil, ErrNoResults
	}

	rand.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	if req.Size > 0 && len(pool) > req.Size {
		pool = pool[:req.Size]
	}
	log.Info().Str("module", "catalog.tmdb").Int("movies", len(pool)).Msg("candidate list fetched")
	return pool, nil
}

func (t *TMDB) toDomain(m tmdbMovie, genres map[int]string) domain.Movie {
	year := 0
	if len(m.ReleaseDate) >= 4 {
		year, _ = strconv.Atoi(m.ReleaseDate[:4])
	}
	tags := make([]string, 0, domain.MaxGenres)
	for _, id := range m.GenreIDs {
		if len(tags) == domain.MaxGenres {
			break
		}
		if name, ok := genres[id]; ok {
			tags = append(tags, name)
		}
	}
	poster := placeholderPoster
	if m.PosterPath != "" {
		poster = t.opts.ImageBaseURL + m.PosterPath
	}
	return domain.Movie{
		ID:       domain.MovieID(m.ID),
		Title:    m.Title,
		Year:     year,
		Genres:   tags,
		Overview: m.Overview,
		Poster:   poster,
	}
}

func (t *TMDB) genreMap(ctx context.Context) (map[int]string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.genres != nil {
		return t.genres, nil
	}
	var body struct {
		Genres []tmdbGenre `json:"genres"`
	}
	if err := t.getJSON(ctx, "/genre/movie/list", nil, &body); err != nil {
		return nil, err
	}
	genres := make(map[int]string, len(body.Genres))
	for _, g := range body.Genres {
		genres[g.ID] = g.Name
	}
	t.genres = genres
	return genres, nil
}

func (t *TMDB) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	if query == nil {
		query = url.Values{}
	}
	query.Set("api_key", t.opts.APIKey)
	if t.opts.Language != "" {
		query.Set("language", t.opts.Language)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.opts.BaseURL+path+"?"+query.Encode(), nil)
	if err != nil {
		return err
	}
	resp, err := t.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("tmdb %s: status %d", path, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
