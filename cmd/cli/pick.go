package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/and161185/movie-admin/internal/combobox"
	"github.com/and161185/movie-admin/internal/tui"
)

// Picker kinds.
const (
	kindDirectors = "directors"
	kindActors    = "actors"
	kindGenres    = "genres"
	kindPlatforms = "platforms"
)

func (a *app) fetcher(kind string) (combobox.Fetcher, string, error) {
	switch kind {
	case kindDirectors:
		return a.client.DirectorOptions(), "Director", nil
	case kindActors:
		return a.client.ActorOptions(), "Actor", nil
	case kindGenres:
		return a.client.GenreOptions(), "Genre", nil
	case kindPlatforms:
		return a.client.PlatformOptions(), "Platform", nil
	default:
		return nil, "", fmt.Errorf("unknown picker %q", kind)
	}
}

// pick runs the search picker for kind until the user confirms a value.
func (a *app) pick(cmd *cobra.Command, kind string) (*combobox.Option, error) {
	fetch, label, err := a.fetcher(kind)
	if err != nil {
		return nil, err
	}
	return tui.Run(cmd.Context(), combobox.Config{
		Label:       label,
		Placeholder: fmt.Sprintf("type at least %d characters", a.cfg.Picker.MinChars),
		Fetcher:     fetch,
		MinChars:    a.cfg.Picker.MinChars,
		Debounce:    a.cfg.Picker.Debounce,
		Logger:      a.log.Named("combobox"),
	}, tea.WithInput(a.in))
}

func newPickCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:         "pick {directors|actors|genres|platforms}",
		Short:       "Search interactively and print the chosen id",
		Args:        cobra.ExactArgs(1),
		ValidArgs:   []string{kindDirectors, kindActors, kindGenres, kindPlatforms},
		Annotations: routed("/movies"),
		RunE: func(cmd *cobra.Command, args []string) error {
			opt, err := a.pick(cmd, args[0])
			if err != nil {
				return err
			}
			if a.output == "json" {
				return printJSON(a.out, opt)
			}
			_, err = fmt.Fprintln(a.out, opt.Value)
			return err
		},
	}
}
