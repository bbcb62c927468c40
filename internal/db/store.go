package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	sqlite3 "github.com/mattn/go-sqlite3"
	"modernc.org/sqlite"

	"github.com/detox-community/detox/internal/models"
	"github.com/detox-community/detox/internal/services"
)

// SQLStore persists questionnaires, compatibilities and the audit trail.
type SQLStore struct {
	db     *DB
	logger *slog.Logger
}

func NewSQLStore(d *DB, logger *slog.Logger) (*SQLStore, error) {
	if d == nil || d.SQL == nil {
		return nil, errors.New("nil db")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SQLStore{db: d, logger: logger.With("component", "store", "dialect", string(d.Dialect))}, nil
}

func (s *SQLStore) q(query string) string { return s.db.Dialect.Rebind(query) }

func (s *SQLStore) logErr(prefix string, err error) {
	if err != nil {
		s.logger.Error(prefix, "err", err)
	}
}

const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// formatTime stores UTC with a fixed width so text ordering matches time order.
func formatTime(t time.Time) string { return t.UTC().Format(timeLayout) }

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t.UTC()
}

func boolToInt64(v bool) int64 {
	if v {
		return 1
	}
	return 0
}

func int64ToBool(v int64) bool { return v != 0 }

func encodeJSON(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// isUniqueViolation recognises duplicate-key errors from every supported driver.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == 1062
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.ExtendedCode == sqlite3.ErrConstraintUnique || liteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	var mcErr *sqlite.Error
	if errors.As(err, &mcErr) {
		// SQLITE_CONSTRAINT_UNIQUE, SQLITE_CONSTRAINT_PRIMARYKEY
		return mcErr.Code() == 2067 || mcErr.Code() == 1555
	}
	return false
}

func (s *SQLStore) InsertResponse(ctx context.Context, r *models.QuestionnaireResponse) error {
	if r == nil {
		return errors.New("nil response")
	}
	answers, err := encodeJSON(r.Answers())
	if err != nil {
		return fmt.Errorf("encode answers: %w", err)
	}
	_, err = s.db.SQL.ExecContext(ctx, s.q(`INSERT INTO questionnaire_responses
  (id, email, first_name, last_name, invitation_code, answers_json, submitted_at)
VALUES (?, ?, ?, ?, ?, ?, ?)`),
		r.ID, strings.ToLower(r.Email), r.FirstName, r.LastName, r.InvitationCode, answers, formatTime(r.SubmittedAt))
	if err != nil {
		if isUniqueViolation(err) {
			return services.NewConflictError("a questionnaire for this email already exists")
		}
		return fmt.Errorf("insert response: %w", err)
	}
	return nil
}

const responseColumns = `id, email, first_name, last_name, invitation_code, answers_json, submitted_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func (s *SQLStore) scanResponse(row rowScanner) (*models.QuestionnaireResponse, error) {
	var (
		r                  models.QuestionnaireResponse
		answers, submitted string
	)
	if err := row.Scan(&r.ID, &r.Email, &r.FirstName, &r.LastName, &r.InvitationCode, &answers, &submitted); err != nil {
		return nil, err
	}
	r.SubmittedAt = parseTime(submitted)
	var m map[string]string
	if err := json.Unmarshal([]byte(answers), &m); err != nil {
		return nil, fmt.Errorf("decode answers of %s: %w", r.ID, err)
	}
	for field, v := range m {
		if !r.SetAnswer(field, v) {
			s.logger.Warn("dropping unknown answer field", "id", r.ID, "field", field)
		}
	}
	return &r, nil
}

func (s *SQLStore) getOne(ctx context.Context, where string, arg any) (*models.QuestionnaireResponse, error) {
	row := s.db.SQL.QueryRowContext(ctx, s.q(`SELECT `+responseColumns+` FROM questionnaire_responses WHERE `+where), arg)
	r, err := s.scanResponse(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get response: %w", err)
	}
	return r, nil
}

func (s *SQLStore) GetResponse(ctx context.Context, id string) (*models.QuestionnaireResponse, error) {
	return s.getOne(ctx, "id = ?", id)
}

func (s *SQLStore) GetResponseByEmail(ctx context.Context, email string) (*models.QuestionnaireResponse, error) {
	return s.getOne(ctx, "email = ?", strings.ToLower(strings.TrimSpace(email)))
}

func (s *SQLStore) ListResponses(ctx context.Context) ([]*models.QuestionnaireResponse, error) {
	rows, err := s.db.SQL.QueryContext(ctx, `SELECT `+responseColumns+` FROM questionnaire_responses ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list responses: %w", err)
	}
	defer rows.Close()
	var out []*models.QuestionnaireResponse
	for rows.Next() {
		r, err := s.scanResponse(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLStore) CountResponses(ctx context.Context) (int, error) {
	var n int
	if err := s.db.SQL.QueryRowContext(ctx, `SELECT COUNT(*) FROM questionnaire_responses`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count responses: %w", err)
	}
	return n, nil
}

// UpsertCompatibilities writes all records in one transaction.
func (s *SQLStore) UpsertCompatibilities(ctx context.Context, recs []services.CompatibilityRecord) error {
	if len(recs) == 0 {
		return nil
	}
	return WithTx(ctx, s.db, nil, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, s.db.Dialect.upsertCompatibility())
		if err != nil {
			return fmt.Errorf("prepare upsert: %w", err)
		}
		defer func() { s.logErr("close upsert statement", stmt.Close()) }()
		for _, rec := range recs {
			u1, u2 := services.OrderedPair(rec.User1ID, rec.User2ID)
			if _, err := stmt.ExecContext(ctx, u1, u2, rec.Score,
				boolToInt64(rec.Flags.Empathy), boolToInt64(rec.Flags.Growth),
				boolToInt64(rec.Flags.Relationships), boolToInt64(rec.Flags.Values),
				formatTime(rec.CalculatedAt)); err != nil {
				return fmt.Errorf("upsert %s/%s: %w", u1, u2, err)
			}
		}
		return nil
	})
}

const compatibilityColumns = `user1_id, user2_id, score, shared_empathy, shared_growth, shared_relationships, shared_values, calculated_at`

func scanCompatibility(row rowScanner) (services.CompatibilityRecord, error) {
	var (
		rec              services.CompatibilityRecord
		emp, gro, rel, v int64
		at               string
	)
	if err := row.Scan(&rec.User1ID, &rec.User2ID, &rec.Score, &emp, &gro, &rel, &v, &at); err != nil {
		return rec, err
	}
	rec.Flags = services.SharedFlags{
		Empathy:       int64ToBool(emp),
		Growth:        int64ToBool(gro),
		Relationships: int64ToBool(rel),
		Values:        int64ToBool(v),
	}
	rec.CalculatedAt = parseTime(at)
	return rec, nil
}

func (s *SQLStore) listCompatibilities(ctx context.Context, query string, args ...any) ([]services.CompatibilityRecord, error) {
	rows, err := s.db.SQL.QueryContext(ctx, s.q(query), args...)
	if err != nil {
		return nil, fmt.Errorf("list compatibilities: %w", err)
	}
	defer rows.Close()
	var out []services.CompatibilityRecord
	for rows.Next() {
		rec, err := scanCompatibility(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// ListCompatibilities returns the best stored pairs involving responseID.
func (s *SQLStore) ListCompatibilities(ctx context.Context, responseID string, limit int) ([]services.CompatibilityRecord, error) {
	if limit <= 0 {
		limit = services.DefaultMatchLimit
	}
	return s.listCompatibilities(ctx, `SELECT `+compatibilityColumns+` FROM user_compatibilities
WHERE user1_id = ? OR user2_id = ?
ORDER BY score DESC, calculated_at DESC
LIMIT ?`, responseID, responseID, limit)
}

func (s *SQLStore) ListAllCompatibilities(ctx context.Context) ([]services.CompatibilityRecord, error) {
	return s.listCompatibilities(ctx, `SELECT `+compatibilityColumns+` FROM user_compatibilities ORDER BY user1_id, user2_id`)
}

func (s *SQLStore) AddAudit(ctx context.Context, e services.AuditEntry) error {
	if e.Time.IsZero() {
		e.Time = time.Now()
	}
	_, err := s.db.SQL.ExecContext(ctx, s.q(`INSERT INTO audit_log (logged_at, actor, action, target, note) VALUES (?, ?, ?, ?, ?)`),
		formatTime(e.Time), e.Actor, e.Action, e.Target, e.Note)
	if err != nil {
		return fmt.Errorf("add audit: %w", err)
	}
	return nil
}

// ListAudit returns the most recent entries first.
func (s *SQLStore) ListAudit(ctx context.Context, limit int) ([]services.AuditEntry, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.SQL.QueryContext(ctx, s.q(`SELECT logged_at, actor, action, target, note FROM audit_log ORDER BY id DESC LIMIT ?`), limit)
	if err != nil {
		return nil, fmt.Errorf("list audit: %w", err)
	}
	defer rows.Close()
	var out []services.AuditEntry
	for rows.Next() {
		var (
			e  services.AuditEntry
			at string
		)
		if err := rows.Scan(&at, &e.Actor, &e.Action, &e.Target, &e.Note); err != nil {
			return nil, err
		}
		e.Time = parseTime(at)
		out = append(out, e)
	}
	return out, rows.Err()
}

var (
	_ services.IntakeStore    = (*SQLStore)(nil)
	_ services.MatchStore     = (*SQLStore)(nil)
	_ services.AnalyticsStore = (*SQLStore)(nil)
	_ services.ExportStore    = (*SQLStore)(nil)
)
