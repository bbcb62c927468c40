package services

import (
	"context"
	"fmt"
	"log/slog"
)

const (
	ExportScores          = "scores"
	ExportCompatibilities = "compatibilities"
)

type ExportResult struct {
	Filename    string
	ContentType string
	Rows        int
	Data        []byte
}

// ExportService renders stored data as CSV. Respondents are identified by
// pseudonym only.
type ExportService struct {
	store  ExportStore
	logger *slog.Logger
	salt   string
}

func NewExportService(store ExportStore, logger *slog.Logger, salt string) *ExportService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExportService{store: store, logger: logger, salt: salt}
}

func (s *ExportService) Export(ctx context.Context, kind string) (*ExportResult, error) {
	if s.store == nil {
		return nil, ErrStoreUnavailable
	}
	if kind == "" {
		kind = ExportScores
	}
	responses, err := s.store.ListResponses(ctx)
	if err != nil {
		return nil, err
	}
	switch kind {
	case ExportScores:
		rows := make([]ScoreRow, 0, len(responses))
		for _, r := range responses {
			sc, err := ComputeScores(r)
			if err != nil {
				s.logger.Warn("export skips unscorable respondent", "id", r.ID, "err", err)
				continue
			}
			rows = append(rows, ScoreRow{Key: Pseudonym(s.salt, r.Email), Scores: sc, Archetype: ClassifyProfile(sc), SubmittedAt: r.SubmittedAt})
		}
		b, err := ExportScoresCSV(rows)
		if err != nil {
			return nil, err
		}
		return &ExportResult{Filename: "scores.csv", ContentType: "text/csv; charset=utf-8", Rows: len(rows), Data: b}, nil
	case ExportCompatibilities:
		keys := make(map[string]string, len(responses))
		for _, r := range responses {
			keys[r.ID] = Pseudonym(s.salt, r.Email)
		}
		recs, err := s.store.ListAllCompatibilities(ctx)
		if err != nil {
			return nil, err
		}
		rows := make([]CompatibilityRow, 0, len(recs))
		for _, rec := range recs {
			a, okA := keys[rec.User1ID]
			b, okB := keys[rec.User2ID]
			if !okA || !okB {
				continue
			}
			rows = append(rows, CompatibilityRow{KeyA: a, KeyB: b, Score: rec.Score, Flags: rec.Flags, CalculatedAt: rec.CalculatedAt})
		}
		b, err := ExportCompatibilitiesCSV(rows)
		if err != nil {
			return nil, err
		}
		return &ExportResult{Filename: "compatibilities.csv", ContentType: "text/csv; charset=utf-8", Rows: len(rows), Data: b}, nil
	default:
		return nil, NewInvalidError(fmt.Sprintf("unknown export kind %q", kind))
	}
}
