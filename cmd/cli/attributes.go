package main

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/and161185/movie-admin/internal/api"
	"github.com/and161185/movie-admin/internal/model"
	"github.com/and161185/movie-admin/internal/tui"
)

// named is a listed catalog attribute.
type named struct {
	ID     int64  `json:"id"`
	Nombre string `json:"nombre"`
	Image  string `json:"image,omitempty"`
}

// attribute describes one catalog attribute kind for the generic commands.
// Nil funcs leave the matching subcommand out.
type attribute struct {
	use      string
	singular string
	route    string
	fileFlag string

	list   func(ctx context.Context, c *api.Client) ([]named, error)
	create func(ctx context.Context, c *api.Client, name string, f *api.File) (named, error)
	update func(ctx context.Context, c *api.Client, id int64, name string, f *api.File) (named, error)
	remove func(c *api.Client, ctx context.Context, id int64) error
}

func newAttributeCmd(a *app, at attribute) *cobra.Command {
	cmd := &cobra.Command{
		Use:   at.use,
		Short: "Manage " + at.use,
	}

	cmd.AddCommand(&cobra.Command{
		Use:         "list",
		Short:       "List " + at.use,
		Args:        cobra.NoArgs,
		Annotations: routed(at.route),
		RunE: func(cmd *cobra.Command, _ []string) error {
			items, err := at.list(cmd.Context(), a.client)
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(items))
			for _, it := range items {
				rows = append(rows, []string{itoa(it.ID), it.Nombre})
			}
			return a.emit(items, []string{"id", "name"}, rows)
		},
	})

	if at.create != nil {
		var file string
		create := &cobra.Command{
			Use:         "create [name]",
			Short:       "Add a " + at.singular,
			Args:        cobra.MaximumNArgs(1),
			Annotations: routed(at.route),
			RunE: func(cmd *cobra.Command, args []string) error {
				name := strings.Join(args, "")
				if err := tui.PromptName(cmd.Context(), "Name of the new "+at.singular, &name); err != nil {
					return err
				}
				f, closeFile, err := a.openUpload(file)
				if err != nil {
					return err
				}
				defer closeFile()
				it, err := at.create(cmd.Context(), a.client, name, f)
				if err != nil {
					return err
				}
				return a.done("created %s %d %q", at.singular, it.ID, it.Nombre)
			},
		}
		if at.fileFlag != "" {
			create.Flags().StringVar(&file, at.fileFlag, "", at.fileFlag+" image file, - for stdin")
		}
		cmd.AddCommand(create)
	}

	if at.update != nil {
		var file string
		update := &cobra.Command{
			Use:         "update <id> <name>",
			Short:       "Rename a " + at.singular,
			Args:        cobra.ExactArgs(2),
			Annotations: routed(at.route),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := parseID(args[0])
				if err != nil {
					return err
				}
				f, closeFile, err := a.openUpload(file)
				if err != nil {
					return err
				}
				defer closeFile()
				it, err := at.update(cmd.Context(), a.client, id, args[1], f)
				if err != nil {
					return err
				}
				return a.done("updated %s %d %q", at.singular, it.ID, it.Nombre)
			},
		}
		if at.fileFlag != "" {
			update.Flags().StringVar(&file, at.fileFlag, "", "new "+at.fileFlag+" image file, - for stdin")
		}
		cmd.AddCommand(update)
	}

	if at.remove != nil {
		var yes bool
		del := &cobra.Command{
			Use:         "delete <id>",
			Short:       "Delete a " + at.singular,
			Args:        cobra.ExactArgs(1),
			Annotations: routed(at.route),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := parseID(args[0])
				if err != nil {
					return err
				}
				if !yes {
					ok, err := tui.PromptConfirm(cmd.Context(), "Delete "+at.singular+" "+args[0]+"?")
					if err != nil {
						return err
					}
					if !ok {
						return a.done("kept %s %d", at.singular, id)
					}
				}
				if err := at.remove(a.client, cmd.Context(), id); err != nil {
					return err
				}
				return a.done("deleted %s %d", at.singular, id)
			},
		}
		del.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
		cmd.AddCommand(del)
	}
	return cmd
}

func newGenresCmd(a *app) *cobra.Command {
	return newAttributeCmd(a, attribute{
		use: "genres", singular: "genre", route: "/attributes/genres",
		list: func(ctx context.Context, c *api.Client) ([]named, error) {
			gs, err := c.ListGenres(ctx)
			return mapNamed(gs, func(g model.Genre) named { return named{ID: g.ID, Nombre: g.Nombre} }), err
		},
		create: func(ctx context.Context, c *api.Client, name string, _ *api.File) (named, error) {
			g, err := c.CreateGenre(ctx, name)
			return named{ID: g.ID, Nombre: g.Nombre}, err
		},
		update: func(ctx context.Context, c *api.Client, id int64, name string, _ *api.File) (named, error) {
			g, err := c.UpdateGenre(ctx, id, name)
			return named{ID: g.ID, Nombre: g.Nombre}, err
		},
		remove: (*api.Client).DeleteGenre,
	})
}

func newPlatformsCmd(a *app) *cobra.Command {
	return newAttributeCmd(a, attribute{
		use: "platforms", singular: "platform", route: "/attributes/platforms", fileFlag: "logo",
		list: func(ctx context.Context, c *api.Client) ([]named, error) {
			ps, err := c.ListPlatforms(ctx)
			return mapNamed(ps, func(p model.Platform) named { return named{ID: p.ID, Nombre: p.Nombre, Image: p.LogoURL} }), err
		},
		create: func(ctx context.Context, c *api.Client, name string, f *api.File) (named, error) {
			p, err := c.CreatePlatform(ctx, name, f)
			return named{ID: p.ID, Nombre: p.Nombre, Image: p.LogoURL}, err
		},
		update: func(ctx context.Context, c *api.Client, id int64, name string, f *api.File) (named, error) {
			p, err := c.UpdatePlatform(ctx, id, name, f)
			return named{ID: p.ID, Nombre: p.Nombre, Image: p.LogoURL}, err
		},
		remove: (*api.Client).DeletePlatform,
	})
}

func newDirectorsCmd(a *app) *cobra.Command {
	return newAttributeCmd(a, attribute{
		use: "directors", singular: "director", route: "/attributes/directors", fileFlag: "image",
		list: func(ctx context.Context, c *api.Client) ([]named, error) {
			ds, err := c.ListDirectors(ctx)
			return mapNamed(ds, func(d model.Director) named { return named{ID: d.ID, Nombre: d.Nombre, Image: d.Imagen} }), err
		},
		create: func(ctx context.Context, c *api.Client, name string, f *api.File) (named, error) {
			d, err := c.CreateDirector(ctx, name, f)
			return named{ID: d.ID, Nombre: d.Nombre, Image: d.Imagen}, err
		},
		update: func(ctx context.Context, c *api.Client, id int64, name string, f *api.File) (named, error) {
			d, err := c.UpdateDirector(ctx, id, name, f)
			return named{ID: d.ID, Nombre: d.Nombre, Image: d.Imagen}, err
		},
		remove: (*api.Client).DeleteDirector,
	})
}

func newActorsCmd(a *app) *cobra.Command {
	return newAttributeCmd(a, attribute{
		use: "actors", singular: "actor", route: "/attributes/actors", fileFlag: "image",
		list: func(ctx context.Context, c *api.Client) ([]named, error) {
			as, err := c.ListActors(ctx)
			return mapNamed(as, func(x model.Actor) named { return named{ID: x.ID, Nombre: x.Nombre, Image: x.ImagenURL} }), err
		},
		create: func(ctx context.Context, c *api.Client, name string, f *api.File) (named, error) {
			x, err := c.CreateActor(ctx, name, f)
			return named{ID: x.ID, Nombre: x.Nombre, Image: x.ImagenURL}, err
		},
	})
}

func mapNamed[T any](items []T, fn func(T) named) []named {
	out := make([]named, 0, len(items))
	for _, it := range items {
		out = append(out, fn(it))
	}
	return out
}
