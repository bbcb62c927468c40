package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"

	"github.com/detox-community/detox/internal/config"
	"github.com/detox-community/detox/internal/db"
	"github.com/detox-community/detox/internal/services"
	"github.com/detox-community/detox/internal/utils"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

const (
	exitOK       = 0
	exitFailure  = 1
	exitInvalid  = 2
	exitNotFound = 3
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// cmdEnv carries what every subcommand needs.
type cmdEnv struct {
	cfg    *config.Config
	logger *slog.Logger
	locale string
	out    io.Writer
	app    *app
}

type command struct {
	name    string
	summary string
	// storage controls whether the database is opened and migrated first.
	storage storageMode
	run     func(ctx context.Context, env *cmdEnv, args []string) error
}

type storageMode int

const (
	noStorage storageMode = iota
	openOnly
	openMigrated
)

func commands() []command {
	return []command{
		{"migrate", "apply schema migrations and optionally import a legacy snapshot", openOnly, cmdMigrate},
		{"import", "validate and store questionnaire documents from a JSON file", openMigrated, cmdImport},
		{"seed", "submit generated fake respondents", openMigrated, cmdSeed},
		{"schema", "print the intake JSON Schema", noStorage, cmdSchema},
		{"profile", "score and classify one respondent", openMigrated, cmdProfile},
		{"compare", "compare two respondents", openMigrated, cmdCompare},
		{"matches", "list a respondent's best matches", openMigrated, cmdMatches},
		{"recompute", "recompute stored compatibilities", openMigrated, cmdRecompute},
		{"export", "write pseudonymised scores or compatibilities as CSV", openMigrated, cmdExport},
		{"stats", "print aggregate statistics as JSON", openMigrated, cmdStats},
		{"audit", "list recent audit log entries", openMigrated, cmdAudit},
		{"version", "print the build version", noStorage, cmdVersion},
	}
}

func usage(w io.Writer, fs *flag.FlagSet) {
	fmt.Fprintln(w, "usage: detox [-config path] [-lang code] <command> [flags]")
	fmt.Fprintln(w, "\ncommands:")
	cmds := commands()
	sort.Slice(cmds, func(i, j int) bool { return cmds[i].name < cmds[j].name })
	for _, c := range cmds {
		fmt.Fprintf(w, "  %-10s %s\n", c.name, c.summary)
	}
	fmt.Fprintln(w, "\nglobal flags:")
	fs.SetOutput(w)
	fs.PrintDefaults()
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("detox", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	configPath := fs.String("config", os.Getenv("DETOX_CONFIG"), "path to config YAML file")
	lang := fs.String("lang", "", "output language (en, zh)")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintln(stderr, err)
		usage(stderr, fs)
		return exitInvalid
	}
	if fs.NArg() == 0 {
		usage(stderr, fs)
		return exitInvalid
	}
	var cmd *command
	for _, c := range commands() {
		if c.name == fs.Arg(0) {
			cmd = &c
			break
		}
	}
	if cmd == nil {
		fmt.Fprintf(stderr, "unknown command %q\n", fs.Arg(0))
		usage(stderr, fs)
		return exitInvalid
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(stderr, "load config: %v\n", err)
		return exitFailure
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(stderr, "invalid config: %v\n", err)
		return exitInvalid
	}
	logger := newLogger(cfg.Log, stderr)
	slog.SetDefault(logger)

	env := &cmdEnv{
		cfg:    cfg,
		logger: logger,
		locale: utils.DetermineLocale(*lang, os.Getenv("LANG"), utils.SupportedLocales(), cfg.Locale),
		out:    stdout,
	}
	if cmd.storage != noStorage {
		a, err := openApp(ctx, cfg, logger, cmd.storage == openMigrated)
		if err != nil {
			logger.Error("open storage", "err", err)
			return exitFailure
		}
		defer func() {
			if err := a.close(); err != nil {
				logger.Warn("close storage", "err", err)
			}
		}()
		env.app = a
	}

	if err := cmd.run(ctx, env, fs.Args()[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitInvalid
		}
		logger.Error(cmd.name+" failed", "err", err)
		fmt.Fprintf(stderr, "detox %s: %v\n", cmd.name, err)
		return exitCode(err)
	}
	return exitOK
}

func exitCode(err error) int {
	var ve *services.ValidationError
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, flag.ErrHelp), errors.As(err, &ve), services.IsInvalidInput(err):
		return exitInvalid
	}
	if se, ok := services.AsServiceError(err); ok {
		switch se.Code {
		case services.ErrorInvalid:
			return exitInvalid
		case services.ErrorNotFound:
			return exitNotFound
		}
	}
	var ue usageError
	if errors.As(err, &ue) {
		return exitInvalid
	}
	return exitFailure
}

// usageError marks bad command-line input.
type usageError string

func (e usageError) Error() string { return string(e) }

func newLogger(cfg config.LogConfig, w io.Writer) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.ToLower(cfg.Format) == "text" {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

// app wires the store into the services.
type app struct {
	db        *db.DB
	store     *db.SQLStore
	intake    *services.IntakeService
	match     *services.MatchService
	analytics *services.AnalyticsService
	export    *services.ExportService
}

func openApp(ctx context.Context, cfg *config.Config, logger *slog.Logger, migrate bool) (*app, error) {
	d, err := db.Connect(ctx, cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return nil, err
	}
	if migrate {
		applied, err := db.RunMigrations(ctx, d, cfg.Database.MigrationsDir)
		if err != nil {
			_ = d.Close()
			return nil, fmt.Errorf("run migrations: %w", err)
		}
		if len(applied) > 0 {
			logger.Info("migrations applied", "files", applied)
		}
	}
	store, err := db.NewSQLStore(d, logger)
	if err != nil {
		_ = d.Close()
		return nil, err
	}
	salt := cfg.Privacy.PseudonymSalt
	intake, err := services.NewIntakeService(store, logger, salt)
	if err != nil {
		_ = d.Close()
		return nil, err
	}
	return &app{
		db:        d,
		store:     store,
		intake:    intake,
		match:     services.NewMatchService(store, logger, salt),
		analytics: services.NewAnalyticsService(store),
		export:    services.NewExportService(store, logger, salt),
	}, nil
}

func (a *app) close() error { return a.db.Close() }
