package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/and161185/movie-admin/internal/api"
	"github.com/and161185/movie-admin/internal/model"
	"github.com/and161185/movie-admin/internal/tui"
)

func newMoviesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "movies",
		Aliases: []string{"movie"},
		Short:   "Browse and manage the movie catalog",
	}
	cmd.AddCommand(
		newMoviesListCmd(a),
		newMoviesGetCmd(a),
		newMovieCreateCmd(a),
		newMovieEditCmd(a),
		newMovieActionCmd(a, "activate", "Put a deactivated movie back in the catalog", "/movies/:id/edit", (*api.Client).ActivateMovie),
		newMovieActionCmd(a, "deactivate", "Hide a movie without deleting it", "/movies/:id/delete", (*api.Client).DeactivateMovie),
		newMovieActionCmd(a, "delete", "Delete a movie permanently", "/movies/:id/delete", (*api.Client).DeleteMovie),
	)
	return cmd
}

func movieRows(ms []model.Movie) [][]string {
	rows := make([][]string, 0, len(ms))
	for _, m := range ms {
		director := ""
		if m.Director != nil {
			director = m.Director.Nombre
		}
		rows = append(rows, []string{itoa(m.ID), m.Titulo, m.FechaEstreno, strconv.Itoa(m.DuracionMinutos) + "m", director})
	}
	return rows
}

var movieHeader = []string{"id", "title", "release", "length", "director"}

func newMoviesListCmd(a *app) *cobra.Command {
	var inactive bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List active movies, or deactivated ones with --inactive",
		Args:  cobra.NoArgs,
		Annotations: map[string]string{
			annRoute:         "/movies",
			annRouteInactive: "/movies/inactives",
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			list := a.client.ListMovies
			if inactive {
				list = a.client.ListInactiveMovies
			}
			ms, err := list(cmd.Context())
			if err != nil {
				return err
			}
			return a.emit(ms, movieHeader, movieRows(ms))
		},
	}
	cmd.Flags().BoolVar(&inactive, "inactive", false, "list deactivated movies")
	return cmd
}

func newMoviesGetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:         "get <id>",
		Short:       "Show one movie",
		Args:        cobra.ExactArgs(1),
		Annotations: routed("/movies/:id"),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			m, err := a.client.GetMovie(cmd.Context(), id)
			if err != nil {
				return err
			}
			if a.output == "json" {
				return printJSON(a.out, m)
			}
			rows := [][]string{
				{"id", itoa(m.ID)},
				{"title", m.Titulo},
				{"synopsis", m.Sinopsis},
				{"length", strconv.Itoa(m.DuracionMinutos) + "m"},
				{"release", m.FechaEstreno},
				{"active", strconv.FormatBool(m.Activa)},
			}
			if m.Director != nil {
				rows = append(rows, []string{"director", m.Director.Nombre})
			}
			if len(m.Generos) > 0 {
				names := make([]string, len(m.Generos))
				for i, g := range m.Generos {
					names[i] = g.Nombre
				}
				rows = append(rows, []string{"genres", strings.Join(names, ", ")})
			}
			if len(m.Plataformas) > 0 {
				names := make([]string, len(m.Plataformas))
				for i, p := range m.Plataformas {
					names[i] = p.Nombre
				}
				rows = append(rows, []string{"platforms", strings.Join(names, ", ")})
			}
			for _, c := range m.Elenco {
				rows = append(rows, []string{"cast", c.NombrePersona + " as " + c.Personaje})
			}
			return a.emit(m, []string{"field", "value"}, rows)
		},
	}
}

// movieFlags are shared by create and edit.
type movieFlags struct {
	title     string
	synopsis  string
	minutes   int
	release   string
	director  int64
	genres    []int64
	platforms []int64
	cast      []string
	poster    string
}

func (f *movieFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&f.title, "title", "", "title")
	fs.StringVar(&f.synopsis, "synopsis", "", "synopsis")
	fs.IntVar(&f.minutes, "minutes", 0, "duration in minutes")
	fs.StringVar(&f.release, "release", "", "release date (YYYY-MM-DD)")
	fs.Int64Var(&f.director, "director", 0, "director id (picked interactively when empty)")
	fs.Int64SliceVar(&f.genres, "genre", nil, "genre id (repeatable)")
	fs.Int64SliceVar(&f.platforms, "platform", nil, "platform id (repeatable)")
	fs.StringArrayVar(&f.cast, "cast", nil, "cast entry as <actorID>:<character> (repeatable)")
	fs.StringVar(&f.poster, "poster", "", "poster image file, - for stdin")
}

// apply copies the flags the user set onto p.
func (f *movieFlags) apply(cmd *cobra.Command, p *model.MoviePayload) error {
	fs := cmd.Flags()
	if fs.Changed("title") {
		p.Titulo = f.title
	}
	if fs.Changed("synopsis") {
		p.Sinopsis = f.synopsis
	}
	if fs.Changed("minutes") {
		p.DuracionMinutos = f.minutes
	}
	if fs.Changed("release") {
		p.FechaEstreno = f.release
	}
	if fs.Changed("director") {
		p.DirectorID = f.director
	}
	if fs.Changed("genre") {
		p.GenerosIDs = f.genres
	}
	if fs.Changed("platform") {
		p.PlataformasIDs = f.platforms
	}
	if fs.Changed("cast") {
		cast, err := parseCast(f.cast)
		if err != nil {
			return err
		}
		p.Elenco = cast
	}
	return nil
}

func parseCast(entries []string) ([]model.CastEntry, error) {
	out := make([]model.CastEntry, 0, len(entries))
	for i, e := range entries {
		idPart, role, ok := strings.Cut(e, ":")
		if !ok {
			return nil, fmt.Errorf("cast %q: want <actorID>:<character>", e)
		}
		id, err := parseID(strings.TrimSpace(idPart))
		if err != nil {
			return nil, fmt.Errorf("cast %q: %w", e, err)
		}
		out = append(out, model.CastEntry{PersonaID: id, Personaje: strings.TrimSpace(role), Orden: i + 1})
	}
	return out, nil
}

// completeMovie prompts for missing text fields and picks a director when none is set.
func (a *app) completeMovie(cmd *cobra.Command, p *model.MoviePayload) error {
	ctx := cmd.Context()
	if err := tui.PromptMovie(ctx, p); err != nil {
		return err
	}
	if p.DirectorID > 0 {
		return nil
	}
	opt, err := a.pick(cmd, kindDirectors)
	if err != nil {
		return err
	}
	id, err := parseID(opt.Value)
	if err != nil {
		return err
	}
	p.DirectorID = id
	return nil
}

func newMovieCreateCmd(a *app) *cobra.Command {
	var f movieFlags
	cmd := &cobra.Command{
		Use:         "create",
		Short:       "Add a movie",
		Args:        cobra.NoArgs,
		Annotations: routed("/new-movie"),
		RunE: func(cmd *cobra.Command, _ []string) error {
			var p model.MoviePayload
			if err := f.apply(cmd, &p); err != nil {
				return err
			}
			if err := a.completeMovie(cmd, &p); err != nil {
				return err
			}
			poster, closePoster, err := a.openUpload(f.poster)
			if err != nil {
				return err
			}
			defer closePoster()

			m, err := a.client.CreateMovie(cmd.Context(), p, poster)
			if err != nil {
				return err
			}
			return a.done("created movie %d %q", m.ID, m.Titulo)
		},
	}
	f.register(cmd)
	return cmd
}

// payloadOf turns a fetched movie back into an editable payload.
func payloadOf(m model.Movie) model.MoviePayload {
	p := model.MoviePayload{
		Titulo:          m.Titulo,
		Sinopsis:        m.Sinopsis,
		DuracionMinutos: m.DuracionMinutos,
		FechaEstreno:    m.FechaEstreno,
		GenerosIDs:      make([]int64, 0, len(m.Generos)),
		PlataformasIDs:  make([]int64, 0, len(m.Plataformas)),
		Elenco:          make([]model.CastEntry, 0, len(m.Elenco)),
	}
	if m.Director != nil {
		p.DirectorID = m.Director.ID
	}
	for _, g := range m.Generos {
		p.GenerosIDs = append(p.GenerosIDs, g.ID)
	}
	for _, pl := range m.Plataformas {
		p.PlataformasIDs = append(p.PlataformasIDs, pl.ID)
	}
	for _, c := range m.Elenco {
		p.Elenco = append(p.Elenco, model.CastEntry{PersonaID: c.ID, Personaje: c.Personaje, Orden: c.Orden})
	}
	return p
}

func newMovieEditCmd(a *app) *cobra.Command {
	var f movieFlags
	cmd := &cobra.Command{
		Use:         "edit <id>",
		Short:       "Change a movie; unset flags keep current values",
		Args:        cobra.ExactArgs(1),
		Annotations: routed("/movies/:id/edit"),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			cur, err := a.client.GetMovie(cmd.Context(), id)
			if err != nil {
				return err
			}
			p := payloadOf(cur)
			if err := f.apply(cmd, &p); err != nil {
				return err
			}
			if err := a.completeMovie(cmd, &p); err != nil {
				return err
			}
			poster, closePoster, err := a.openUpload(f.poster)
			if err != nil {
				return err
			}
			defer closePoster()

			m, err := a.client.UpdateMovie(cmd.Context(), id, p, poster)
			if err != nil {
				return err
			}
			return a.done("updated movie %d %q", m.ID, m.Titulo)
		},
	}
	f.register(cmd)
	return cmd
}

func newMovieActionCmd(a *app, use, short, route string, action func(*api.Client, context.Context, int64) error) *cobra.Command {
	return &cobra.Command{
		Use:         use + " <id>",
		Short:       short,
		Args:        cobra.ExactArgs(1),
		Annotations: routed(route),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := action(a.client, cmd.Context(), id); err != nil {
				return err
			}
			return a.done("%sd movie %d", use, id)
		},
	}
}
