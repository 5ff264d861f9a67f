package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/and161185/movie-admin/internal/errs"
	"github.com/and161185/movie-admin/internal/model"
)

// ListMovies returns active movies.
func (c *Client) ListMovies(ctx context.Context) ([]model.Movie, error) {
	var out []model.Movie
	err := c.getJSON(ctx, "/peliculas", &out)
	return out, err
}

// ListInactiveMovies returns deactivated movies.
func (c *Client) ListInactiveMovies(ctx context.Context) ([]model.Movie, error) {
	var out []model.Movie
	err := c.getJSON(ctx, "/peliculas/inactivas", &out)
	return out, err
}

// GetMovie returns one movie.
func (c *Client) GetMovie(ctx context.Context, id int64) (model.Movie, error) {
	var out model.Movie
	err := c.getJSON(ctx, fmt.Sprintf("/peliculas/%d", id), &out)
	return out, err
}

// CreateMovie validates p and uploads it with an optional poster.
func (c *Client) CreateMovie(ctx context.Context, p model.MoviePayload, poster *File) (model.Movie, error) {
	var out model.Movie
	if err := ValidateMovie(p); err != nil {
		return out, err
	}
	err := c.sendMultipart(ctx, http.MethodPost, "/peliculas", "pelicula", normalize(p), "imagen", poster, &out)
	return out, err
}

// UpdateMovie replaces movie id; a nil poster keeps the current one.
func (c *Client) UpdateMovie(ctx context.Context, id int64, p model.MoviePayload, poster *File) (model.Movie, error) {
	var out model.Movie
	if err := ValidateMovie(p); err != nil {
		return out, err
	}
	err := c.sendMultipart(ctx, http.MethodPut, fmt.Sprintf("/peliculas/%d", id), "pelicula", normalize(p), "imagen", poster, &out)
	return out, err
}

// ActivateMovie puts a deactivated movie back in the catalog.
func (c *Client) ActivateMovie(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodPut, fmt.Sprintf("/peliculas/%d/activar", id), nil, "", nil)
}

// DeactivateMovie hides a movie without deleting it.
func (c *Client) DeactivateMovie(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/peliculas/%d/eliminar", id), nil, "", nil)
}

// DeleteMovie removes a movie permanently.
func (c *Client) DeleteMovie(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/peliculas/%d/eliminarCompleto", id), nil, "", nil)
}

// ValidateMovie rejects payloads the backend would refuse.
func ValidateMovie(p model.MoviePayload) error {
	var missing []string
	if strings.TrimSpace(p.Titulo) == "" {
		missing = append(missing, "titulo")
	}
	if strings.TrimSpace(p.Sinopsis) == "" {
		missing = append(missing, "sinopsis")
	}
	if p.DuracionMinutos <= 0 {
		missing = append(missing, "duracionMinutos")
	}
	if _, err := time.Parse(time.DateOnly, p.FechaEstreno); err != nil {
		missing = append(missing, "fechaEstreno")
	}
	if p.DirectorID <= 0 {
		missing = append(missing, "directorId")
	}
	for _, e := range p.Elenco {
		if e.PersonaID <= 0 || strings.TrimSpace(e.Personaje) == "" {
			missing = append(missing, "elenco")
			break
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: invalid %s", errs.ErrValidation, strings.Join(missing, ", "))
	}
	return nil
}

// normalize trims text and renumbers the cast order from 1.
func normalize(p model.MoviePayload) model.MoviePayload {
	p.Titulo = strings.TrimSpace(p.Titulo)
	p.Sinopsis = strings.TrimSpace(p.Sinopsis)
	if p.GenerosIDs == nil {
		p.GenerosIDs = []int64{}
	}
	if p.PlataformasIDs == nil {
		p.PlataformasIDs = []int64{}
	}
	cast := make([]model.CastEntry, len(p.Elenco))
	for i, e := range p.Elenco {
		cast[i] = model.CastEntry{PersonaID: e.PersonaID, Personaje: strings.TrimSpace(e.Personaje), Orden: i + 1}
	}
	p.Elenco = cast
	return p
}
