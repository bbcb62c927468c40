package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/detox-community/detox/internal/seed"
	"github.com/detox-community/detox/internal/services"
)

func newFlagSet(env *cmdEnv, name string) *flag.FlagSet {
	fs := flag.NewFlagSet("detox "+name, flag.ContinueOnError)
	fs.SetOutput(env.out)
	return fs
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func required(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return usageError("-" + name + " is required")
	}
	return nil
}

func cmdMigrate(ctx context.Context, env *cmdEnv, args []string) error {
	fs := newFlagSet(env, "migrate")
	snapshot := fs.String("snapshot", os.Getenv("DETOX_SNAPSHOT"), "legacy JSON snapshot imported once into an empty database")
	if err := fs.Parse(args); err != nil {
		return err
	}
	applied, err := runMigrations(ctx, env)
	if err != nil {
		return err
	}
	fmt.Fprintf(env.out, "migrations applied: %d\n", len(applied))
	res, err := MigrateIfNeeded(ctx, env.app.store, *snapshot, env.logger)
	if err != nil {
		return err
	}
	if res != nil {
		fmt.Fprintf(env.out, "snapshot imported: %d respondents, %d compatibilities, %d skipped\n", res.Responses, res.Compatibilities, res.Skipped)
	}
	return nil
}

func cmdImport(ctx context.Context, env *cmdEnv, args []string) error {
	fs := newFlagSet(env, "import")
	file := fs.String("file", "", "JSON file holding one questionnaire or an array of them (- for stdin)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := required("file", *file); err != nil {
		return err
	}
	var r io.Reader = os.Stdin
	if *file != "-" {
		f, err := os.Open(*file)
		if err != nil {
			return err
		}
		defer f.Close()
		r = f
	}
	res, err := env.app.intake.Import(ctx, r)
	if err != nil {
		return err
	}
	return writeJSON(env.out, res)
}

func cmdSeed(ctx context.Context, env *cmdEnv, args []string) error {
	fs := newFlagSet(env, "seed")
	count := fs.Int("count", 20, "number of respondents")
	seedValue := fs.Int64("seed", 1, "random seed")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *count < 1 {
		return usageError("-count must be positive")
	}
	docs, err := json.Marshal(seed.New(*seedValue).Responses(*count))
	if err != nil {
		return err
	}
	res, err := env.app.intake.Import(ctx, bytes.NewReader(docs))
	if err != nil {
		return err
	}
	fmt.Fprintf(env.out, "seeded %d respondents (%d rejected)\n", len(res.Accepted), len(res.Rejected))
	return nil
}

func cmdSchema(ctx context.Context, env *cmdEnv, args []string) error {
	raw, err := services.IntakeSchema()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(env.out, string(raw))
	return err
}

func cmdProfile(ctx context.Context, env *cmdEnv, args []string) error {
	fs := newFlagSet(env, "profile")
	email := fs.String("email", "", "respondent email")
	asJSON := fs.Bool("json", false, "print JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := required("email", *email); err != nil {
		return err
	}
	p, err := env.app.match.Profile(ctx, *email)
	if err != nil {
		return err
	}
	if *asJSON {
		return writeJSON(env.out, p)
	}
	return renderProfile(env.out, env.locale, p)
}

func cmdCompare(ctx context.Context, env *cmdEnv, args []string) error {
	fs := newFlagSet(env, "compare")
	a := fs.String("a", "", "first respondent email")
	b := fs.String("b", "", "second respondent email")
	asJSON := fs.Bool("json", false, "print JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := required("a", *a); err != nil {
		return err
	}
	if err := required("b", *b); err != nil {
		return err
	}
	c, err := env.app.match.Compare(ctx, *a, *b)
	if err != nil {
		return err
	}
	if *asJSON {
		return writeJSON(env.out, c)
	}
	return renderComparison(env.out, env.locale, c)
}

func cmdMatches(ctx context.Context, env *cmdEnv, args []string) error {
	fs := newFlagSet(env, "matches")
	email := fs.String("email", "", "respondent email")
	limit := fs.Int("limit", env.cfg.Matching.DefaultLimit, "maximum number of matches")
	stored := fs.Bool("stored", false, "read persisted compatibilities instead of scoring live")
	asJSON := fs.Bool("json", false, "print JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := required("email", *email); err != nil {
		return err
	}
	var (
		ms  []services.Match
		err error
	)
	if *stored {
		ms, err = env.app.match.StoredMatches(ctx, *email, *limit)
	} else {
		ms, err = env.app.match.TopMatches(ctx, *email, *limit)
	}
	if err != nil {
		return err
	}
	if *asJSON {
		return writeJSON(env.out, ms)
	}
	return renderMatches(env.out, env.locale, ms)
}

func cmdRecompute(ctx context.Context, env *cmdEnv, args []string) error {
	fs := newFlagSet(env, "recompute")
	email := fs.String("email", "", "only recompute pairs involving this respondent")
	workers := fs.Int("workers", env.cfg.Matching.Workers, "concurrent workers")
	batch := fs.Int("batch-size", env.cfg.Matching.BatchSize, "respondents between progress logs")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *email != "" {
		n, err := env.app.match.UpdateFor(ctx, *email)
		if err != nil {
			return err
		}
		fmt.Fprintf(env.out, "updated %d pairs\n", n)
		return nil
	}
	report, err := env.app.match.RecomputeAll(ctx, services.RecomputeOptions{Workers: *workers, BatchSize: *batch})
	if report != nil {
		if werr := writeJSON(env.out, report); werr != nil && err == nil {
			err = werr
		}
	}
	return err
}

func cmdExport(ctx context.Context, env *cmdEnv, args []string) error {
	fs := newFlagSet(env, "export")
	kind := fs.String("kind", services.ExportScores, "scores or compatibilities")
	out := fs.String("out", "", "output file (defaults to stdout)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	res, err := env.app.export.Export(ctx, *kind)
	if err != nil {
		return err
	}
	if *out == "" {
		_, err = env.out.Write(res.Data)
		return err
	}
	if err := os.WriteFile(*out, res.Data, 0o600); err != nil {
		return err
	}
	fmt.Fprintf(env.out, "wrote %d rows to %s\n", res.Rows, *out)
	return nil
}

func cmdStats(ctx context.Context, env *cmdEnv, args []string) error {
	fs := newFlagSet(env, "stats")
	asText := fs.Bool("text", false, "print a short localized summary instead of JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}
	summary, err := env.app.analytics.Summary(ctx)
	if err != nil {
		return err
	}
	if *asText {
		return renderStats(env.out, env.locale, summary)
	}
	return writeJSON(env.out, summary)
}

func cmdAudit(ctx context.Context, env *cmdEnv, args []string) error {
	fs := newFlagSet(env, "audit")
	limit := fs.Int("limit", 20, "number of entries, newest first")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *limit < 1 {
		return usageError("-limit must be positive")
	}
	entries, err := env.app.store.ListAudit(ctx, *limit)
	if err != nil {
		return err
	}
	return renderAudit(env.out, entries)
}

func cmdVersion(ctx context.Context, env *cmdEnv, args []string) error {
	_, err := fmt.Fprintf(env.out, "detox %s (built %s)\n", version, buildTime)
	return err
}
