package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/detox-community/detox/internal/db"
	"github.com/detox-community/detox/internal/models"
	"github.com/detox-community/detox/internal/services"
)

// legacySnapshot is the JSON dump produced by the previous deployment.
type legacySnapshot struct {
	Responses       []*models.QuestionnaireResponse `json:"responses"`
	Compatibilities []services.CompatibilityRecord  `json:"compatibilities"`
}

type snapshotResult struct {
	Responses       int
	Compatibilities int
	Skipped         int
}

func runMigrations(ctx context.Context, env *cmdEnv) ([]string, error) {
	applied, err := db.RunMigrations(ctx, env.app.db, env.cfg.Database.MigrationsDir)
	if err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	if len(applied) > 0 {
		env.logger.Info("migrations applied", "files", applied)
	}
	return applied, nil
}

// MigrateIfNeeded copies a legacy snapshot into an empty database. It is a
// no-op when no snapshot is given, the file is missing, or the database
// already holds questionnaires.
func MigrateIfNeeded(ctx context.Context, store *db.SQLStore, snapshotPath string, logger *slog.Logger) (*snapshotResult, error) {
	if strings.TrimSpace(snapshotPath) == "" {
		return nil, nil
	}
	n, err := store.CountResponses(ctx)
	if err != nil {
		return nil, err
	}
	if n > 0 {
		logger.Info("database already populated, skipping snapshot", "responses", n)
		return nil, nil
	}
	raw, err := os.ReadFile(snapshotPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read legacy snapshot: %w", err)
	}
	var snap legacySnapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, fmt.Errorf("decode legacy snapshot: %w", err)
	}

	logger.Info("first run detected, importing legacy snapshot", "path", snapshotPath, "responses", len(snap.Responses))
	res := &snapshotResult{}
	imported := map[string]struct{}{}
	now := time.Now().UTC()
	for _, r := range snap.Responses {
		if r == nil {
			continue
		}
		r.Canonicalize()
		if r.ID == "" {
			r.ID = strings.ReplaceAll(uuid.NewString(), "-", "")
		}
		if r.SubmittedAt.IsZero() {
			r.SubmittedAt = now
		}
		if _, err := services.ComputeScores(r); err != nil {
			res.Skipped++
			logger.Warn("skipping legacy respondent", "id", r.ID, "err", err)
			continue
		}
		if err := store.InsertResponse(ctx, r); err != nil {
			if se, ok := services.AsServiceError(err); ok && se.Code == services.ErrorConflict {
				res.Skipped++
				logger.Warn("skipping duplicate legacy respondent", "id", r.ID)
				continue
			}
			return res, fmt.Errorf("copy respondent %s: %w", r.ID, err)
		}
		imported[r.ID] = struct{}{}
		res.Responses++
	}

	var recs []services.CompatibilityRecord
	for _, rec := range snap.Compatibilities {
		_, ok1 := imported[rec.User1ID]
		_, ok2 := imported[rec.User2ID]
		if !ok1 || !ok2 || rec.User1ID == rec.User2ID {
			res.Skipped++
			continue
		}
		if rec.CalculatedAt.IsZero() {
			rec.CalculatedAt = now
		}
		recs = append(recs, rec)
	}
	if err := store.UpsertCompatibilities(ctx, recs); err != nil {
		return res, fmt.Errorf("copy compatibilities: %w", err)
	}
	res.Compatibilities = len(recs)
	if err := store.AddAudit(ctx, services.AuditEntry{Time: now, Actor: "system", Action: "legacy_snapshot_imported", Note: fmt.Sprintf("%d responses, %d compatibilities", res.Responses, res.Compatibilities)}); err != nil {
		logger.Warn("audit write failed", "err", err)
	}
	logger.Info("legacy snapshot imported", "responses", res.Responses, "compatibilities", res.Compatibilities, "skipped", res.Skipped)
	return res, nil
}
