package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/and161185/movie-admin/internal/errs"
	"github.com/and161185/movie-admin/internal/model"
)

type namePayload struct {
	Nombre string `json:"nombre"`
}

func validName(name string) (namePayload, error) {
	n := strings.TrimSpace(name)
	if n == "" {
		return namePayload{}, fmt.Errorf("%w: nombre is required", errs.ErrValidation)
	}
	return namePayload{Nombre: n}, nil
}

// ListGenres returns all genres.
func (c *Client) ListGenres(ctx context.Context) ([]model.Genre, error) {
	var out []model.Genre
	err := c.getJSON(ctx, "/generos", &out)
	return out, err
}

// CreateGenre adds a genre.
func (c *Client) CreateGenre(ctx context.Context, name string) (model.Genre, error) {
	var out model.Genre
	p, err := validName(name)
	if err != nil {
		return out, err
	}
	err = c.sendJSON(ctx, http.MethodPost, "/generos", p, &out)
	return out, err
}

// UpdateGenre renames a genre.
func (c *Client) UpdateGenre(ctx context.Context, id int64, name string) (model.Genre, error) {
	var out model.Genre
	p, err := validName(name)
	if err != nil {
		return out, err
	}
	err = c.sendJSON(ctx, http.MethodPut, fmt.Sprintf("/generos/%d", id), p, &out)
	return out, err
}

// DeleteGenre removes a genre.
func (c *Client) DeleteGenre(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/generos/%d", id), nil, "", nil)
}

// ListPlatforms returns all platforms.
func (c *Client) ListPlatforms(ctx context.Context) ([]model.Platform, error) {
	var out []model.Platform
	err := c.getJSON(ctx, "/plataformas", &out)
	return out, err
}

// CreatePlatform adds a platform with an optional logo.
func (c *Client) CreatePlatform(ctx context.Context, name string, logo *File) (model.Platform, error) {
	var out model.Platform
	p, err := validName(name)
	if err != nil {
		return out, err
	}
	err = c.sendMultipart(ctx, http.MethodPost, "/plataformas", "plataforma", p, "logo", logo, &out)
	return out, err
}

// UpdatePlatform renames a platform; a nil logo keeps the current one.
func (c *Client) UpdatePlatform(ctx context.Context, id int64, name string, logo *File) (model.Platform, error) {
	var out model.Platform
	p, err := validName(name)
	if err != nil {
		return out, err
	}
	err = c.sendMultipart(ctx, http.MethodPut, fmt.Sprintf("/plataformas/%d", id), "plataforma", p, "logo", logo, &out)
	return out, err
}

// DeletePlatform removes a platform.
func (c *Client) DeletePlatform(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/plataformas/%d", id), nil, "", nil)
}

// ListDirectors returns all directors.
func (c *Client) ListDirectors(ctx context.Context) ([]model.Director, error) {
	var out []model.Director
	err := c.getJSON(ctx, "/personas/directores", &out)
	return out, err
}

// CreateDirector adds a director with an optional portrait.
func (c *Client) CreateDirector(ctx context.Context, name string, img *File) (model.Director, error) {
	var out model.Director
	p, err := validName(name)
	if err != nil {
		return out, err
	}
	err = c.sendMultipart(ctx, http.MethodPost, "/personas/directores", "director", p, "imagen", img, &out)
	return out, err
}

// UpdateDirector renames a director; a nil image keeps the current one.
func (c *Client) UpdateDirector(ctx context.Context, id int64, name string, img *File) (model.Director, error) {
	var out model.Director
	p, err := validName(name)
	if err != nil {
		return out, err
	}
	err = c.sendMultipart(ctx, http.MethodPut, fmt.Sprintf("/personas/directores/%d", id), "director", p, "imagen", img, &out)
	return out, err
}

// DeleteDirector removes a director.
func (c *Client) DeleteDirector(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/personas/directores/%d", id), nil, "", nil)
}

// ListActors returns all actors.
func (c *Client) ListActors(ctx context.Context) ([]model.Actor, error) {
	var out []model.Actor
	err := c.getJSON(ctx, "/personas/actores", &out)
	return out, err
}

// CreateActor adds an actor with an optional portrait.
func (c *Client) CreateActor(ctx context.Context, name string, img *File) (model.Actor, error) {
	var out model.Actor
	p, err := validName(name)
	if err != nil {
		return out, err
	}
	err = c.sendMultipart(ctx, http.MethodPost, "/personas/actores", "actor", p, "imagen", img, &out)
	return out, err
}
