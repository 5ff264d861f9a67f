package tui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/huh"

	"github.com/and161185/movie-admin/internal/model"
)

func required(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", field)
		}
		return nil
	}
}

func run(ctx context.Context, fields ...huh.Field) error {
	if len(fields) == 0 {
		return nil
	}
	err := huh.NewForm(huh.NewGroup(fields...)).RunWithContext(ctx)
	if errors.Is(err, huh.ErrUserAborted) {
		return ErrAborted
	}
	if err != nil {
		return fmt.Errorf("prompt failed: %w", err)
	}
	return nil
}

// PromptCredentials asks for whichever of username and password is empty.
// The password is never echoed.
func PromptCredentials(ctx context.Context, creds *model.Credentials) error {
	var fields []huh.Field
	if creds.Username == "" {
		fields = append(fields, huh.NewInput().
			Title("Username").
			Value(&creds.Username).
			Validate(required("username")))
	}
	if creds.Password == "" {
		fields = append(fields, huh.NewInput().
			Title("Password").
			EchoMode(huh.EchoModePassword).
			Value(&creds.Password).
			Validate(required("password")))
	}
	return run(ctx, fields...)
}

// PromptConfirm asks a yes/no question.
func PromptConfirm(ctx context.Context, message string) (bool, error) {
	var ok bool
	err := run(ctx, huh.NewConfirm().Title(message).Value(&ok))
	return ok, err
}

// PromptName asks for a catalog attribute name.
func PromptName(ctx context.Context, title string, name *string) error {
	if strings.TrimSpace(*name) != "" {
		return nil
	}
	return run(ctx, huh.NewInput().Title(title).Value(name).Validate(required("name")))
}

// PromptMovie fills the text fields of p that are still empty.
func PromptMovie(ctx context.Context, p *model.MoviePayload) error {
	var fields []huh.Field
	if p.Titulo == "" {
		fields = append(fields, huh.NewInput().Title("Title").Value(&p.Titulo).Validate(required("title")))
	}
	if p.Sinopsis == "" {
		fields = append(fields, huh.NewText().Title("Synopsis").Value(&p.Sinopsis).Validate(required("synopsis")))
	}
	var minutes string
	if p.DuracionMinutos <= 0 {
		fields = append(fields, huh.NewInput().Title("Duration (minutes)").Value(&minutes).Validate(validMinutes))
	}
	if p.FechaEstreno == "" {
		fields = append(fields, huh.NewInput().Title("Release date").Placeholder("YYYY-MM-DD").
			Value(&p.FechaEstreno).Validate(validDate))
	}
	if err := run(ctx, fields...); err != nil {
		return err
	}
	if minutes != "" {
		p.DuracionMinutos, _ = strconv.Atoi(strings.TrimSpace(minutes))
	}
	return nil
}

func validMinutes(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n <= 0 {
		return errors.New("enter a positive number of minutes")
	}
	return nil
}

func validDate(s string) error {
	if _, err := time.Parse(time.DateOnly, strings.TrimSpace(s)); err != nil {
		return errors.New("use YYYY-MM-DD")
	}
	return nil
}
