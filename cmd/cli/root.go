package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/and161185/movie-admin/internal/api"
	"github.com/and161185/movie-admin/internal/authz"
	"github.com/and161185/movie-admin/internal/config"
	"github.com/and161185/movie-admin/internal/errs"
	"github.com/and161185/movie-admin/internal/logging"
	"github.com/and161185/movie-admin/internal/session"
	"github.com/and161185/movie-admin/internal/storage"
)

// Command annotations read by the pre-run hook.
const (
	// annRoute is the console route a command stands for; ":id" is the first arg.
	annRoute = "route"
	// annRouteInactive replaces annRoute when --inactive is set.
	annRouteInactive = "route.inactive"
	// annNoSession skips config and session setup entirely.
	annNoSession = "no-session"
)

// app carries what the pre-run hook builds for the command being executed.
type app struct {
	in     io.Reader
	out    io.Writer
	errOut io.Writer

	cfgPath string
	output  string

	cfg    *config.Config
	log    *zap.Logger
	client *api.Client
	store  *session.Store
	rdb    *redis.Client
}

func newApp(in io.Reader, out, errOut io.Writer) *app {
	return &app{
		in:      in,
		out:     out,
		errOut:  errOut,
		cfgPath: config.DefaultPath(storage.ConfigDir()),
		log:     zap.NewNop(),
	}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:               "ma",
		Short:             "Movie catalog admin client",
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}
	root.SetIn(a.in)
	root.SetOut(a.out)
	root.SetErr(a.errOut)
	root.PersistentFlags().StringVar(&a.cfgPath, "config", a.cfgPath, "config file")
	root.PersistentFlags().StringVarP(&a.output, "output", "o", "text", "output format: text|json")

	root.AddCommand(
		newVersionCmd(a),
		newLoginCmd(a),
		newLogoutCmd(a),
		newWhoamiCmd(a),
		newMoviesCmd(a),
		newGenresCmd(a),
		newPlatformsCmd(a),
		newDirectorsCmd(a),
		newActorsCmd(a),
		newPickCmd(a),
	)
	return root
}

// setup loads config, restores the session and runs the gate for the command's route.
func (a *app) setup(cmd *cobra.Command, args []string) error {
	if _, skip := cmd.Annotations[annNoSession]; skip {
		return nil
	}
	switch a.output {
	case "text", "json":
	default:
		return fmt.Errorf("unknown output format %q", a.output)
	}

	cfg, err := config.Load(a.cfgPath)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	log, err := logging.New(cfg.Log)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	a.cfg, a.log = cfg, log

	st, err := a.openStorage()
	if err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	client, err := api.New(cfg.API.BaseURL,
		api.WithTimeout(cfg.API.Timeout),
		api.WithLogger(log.Named("api")),
	)
	if err != nil {
		return err
	}
	store := session.NewStore(client, st, session.WithLogger(log.Named("session")))
	client.SetTokenSource(store.Token)
	a.client, a.store = client, store

	ctx := cmd.Context()
	store.Validate(ctx)
	cmd.SetContext(session.WithStore(ctx, store))

	return a.authorize(cmd, args)
}

func (a *app) openStorage() (session.Storage, error) {
	sc := a.cfg.Storage
	if sc.Driver == config.DriverRedis {
		a.rdb = redis.NewClient(&redis.Options{Addr: sc.Redis.Addr, Password: sc.Redis.Password, DB: sc.Redis.DB})
		return storage.NewRedisStorage(a.rdb, sc.Profile), nil
	}
	dir := sc.Dir
	if dir == "" {
		dir = storage.ConfigDir()
	}
	return storage.NewFileStorage(dir, a.log.Named("storage"))
}

// authorize refuses the command unless the gate renders its route.
func (a *app) authorize(cmd *cobra.Command, args []string) error {
	path, ok := routeOf(cmd, args)
	if !ok {
		return nil
	}
	store := session.FromContext(cmd.Context())
	d := authz.DefaultGate.Decide(authz.DefaultRoutes, path, store.Status(), store.Permissions())
	a.log.Debug("gate", zap.String("route", path), zap.Stringer("outcome", d.Outcome), zap.String("target", d.Target))

	switch d.Outcome {
	case authz.OutcomeRender:
		return nil
	case authz.OutcomeLoading:
		return errors.New("session is still being checked")
	}
	if r, found := authz.DefaultRoutes.Lookup(path); found && r.Access == authz.AccessPublic {
		who := ""
		if u := store.User(); u != nil {
			who = " as " + u.Email
		}
		return fmt.Errorf("already logged in%s; run \"ma logout\" first", who)
	}
	if d.Target == authz.DefaultGate.LoginPath {
		return fmt.Errorf("%w: run \"ma login\"", errs.ErrNoSession)
	}
	return fmt.Errorf("%w: %q needs permissions you do not have", errs.ErrForbidden, cmd.CommandPath())
}

func routeOf(cmd *cobra.Command, args []string) (string, bool) {
	route, ok := cmd.Annotations[annRoute]
	if !ok {
		return "", false
	}
	if alt, ok := cmd.Annotations[annRouteInactive]; ok {
		if inactive, err := cmd.Flags().GetBool("inactive"); err == nil && inactive {
			route = alt
		}
	}
	id := "_"
	if len(args) > 0 && args[0] != "" {
		id = args[0]
	}
	return strings.ReplaceAll(route, ":id", id), true
}

func (a *app) close() {
	if a.rdb != nil {
		_ = a.rdb.Close()
	}
	_ = a.log.Sync()
}

func routed(route string) map[string]string { return map[string]string{annRoute: route} }

func newVersionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "Print the client version",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{annNoSession: ""},
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(a.out, "ma %s (%s)\n", version, buildDate)
		},
	}
}
