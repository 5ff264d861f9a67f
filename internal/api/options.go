package api

import (
	"context"
	"strconv"
	"strings"

	"github.com/and161185/movie-admin/internal/combobox"
	"github.com/and161185/movie-admin/internal/model"
)

// The backend has no name search, so fetchers list and filter client side.

// DirectorOptions searches directors by name.
func (c *Client) DirectorOptions() combobox.Fetcher {
	return func(ctx context.Context, q string) ([]combobox.Option, error) {
		ds, err := c.ListDirectors(ctx)
		if err != nil {
			return nil, err
		}
		return matching(ds, q, func(d model.Director) (int64, string) { return d.ID, d.Nombre }), nil
	}
}

// ActorOptions searches actors by name.
func (c *Client) ActorOptions() combobox.Fetcher {
	return func(ctx context.Context, q string) ([]combobox.Option, error) {
		as, err := c.ListActors(ctx)
		if err != nil {
			return nil, err
		}
		return matching(as, q, func(a model.Actor) (int64, string) { return a.ID, a.Nombre }), nil
	}
}

// GenreOptions searches genres by name.
func (c *Client) GenreOptions() combobox.Fetcher {
	return func(ctx context.Context, q string) ([]combobox.Option, error) {
		gs, err := c.ListGenres(ctx)
		if err != nil {
			return nil, err
		}
		return matching(gs, q, func(g model.Genre) (int64, string) { return g.ID, g.Nombre }), nil
	}
}

// PlatformOptions searches platforms by name.
func (c *Client) PlatformOptions() combobox.Fetcher {
	return func(ctx context.Context, q string) ([]combobox.Option, error) {
		ps, err := c.ListPlatforms(ctx)
		if err != nil {
			return nil, err
		}
		return matching(ps, q, func(p model.Platform) (int64, string) { return p.ID, p.Nombre }), nil
	}
}

func matching[T any](items []T, q string, key func(T) (int64, string)) []combobox.Option {
	q = strings.ToLower(strings.TrimSpace(q))
	out := make([]combobox.Option, 0, len(items))
	for _, it := range items {
		id, name := key(it)
		if q != "" && !strings.Contains(strings.ToLower(name), q) {
			continue
		}
		out = append(out, combobox.Option{Value: strconv.FormatInt(id, 10), Label: name})
	}
	return out
}
