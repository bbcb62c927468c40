package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/qri-io/jsonschema"

	"github.com/detox-community/detox/internal/models"
)

const maxNameLength = 200

// IntakeSchema builds the JSON Schema every submitted questionnaire document
// must satisfy. Categorical questions are restricted to their codes (legacy
// codes included); free-text questions to non-empty bounded strings.
func IntakeSchema() ([]byte, error) {
	props := map[string]any{
		"id":              map[string]any{"type": "string"},
		"first_name":      map[string]any{"type": "string", "minLength": 1, "maxLength": maxNameLength},
		"last_name":       map[string]any{"type": "string", "minLength": 1, "maxLength": maxNameLength},
		"email":           map[string]any{"type": "string", "maxLength": 254, "pattern": `^\s*[^@\s]+@[^@\s]+\.[^@\s]+\s*$`},
		"invitation_code": map[string]any{"type": "string", "maxLength": 64},
		"submitted_at":    map[string]any{"type": "string"},
	}
	required := []string{"first_name", "last_name", "email"}
	for _, q := range models.Questions() {
		if q.Required {
			required = append(required, q.Field)
		}
		if q.FreeText {
			minLen := 0
			if q.Required {
				minLen = 1
			}
			props[q.Field] = map[string]any{"type": "string", "minLength": minLen, "maxLength": models.MaxFreeTextLength}
			continue
		}
		enum := append(q.Codes(), models.LegacyCodes(q.Field)...)
		if !q.Required {
			enum = append(enum, "")
		}
		props[q.Field] = map[string]any{"type": "string", "enum": enum}
	}
	doc := map[string]any{
		"title":                "detox questionnaire response",
		"type":                 "object",
		"properties":           props,
		"required":             required,
		"additionalProperties": false,
	}
	return json.MarshalIndent(doc, "", "  ")
}

// ValidationError lists the schema violations of one document.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "questionnaire failed validation: " + strings.Join(e.Problems, "; ")
}

// IntakeService validates and stores questionnaire submissions.
type IntakeService struct {
	store       IntakeStore
	schema      *jsonschema.Schema
	logger      *slog.Logger
	salt        string
	now         func() time.Time
	idGenerator func() string
}

func NewIntakeService(store IntakeStore, logger *slog.Logger, salt string) (*IntakeService, error) {
	raw, err := IntakeSchema()
	if err != nil {
		return nil, fmt.Errorf("build intake schema: %w", err)
	}
	rs := &jsonschema.Schema{}
	if err := json.Unmarshal(raw, rs); err != nil {
		return nil, fmt.Errorf("compile intake schema: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &IntakeService{
		store:       store,
		schema:      rs,
		logger:      logger,
		salt:        salt,
		now:         func() time.Time { return time.Now().UTC() },
		idGenerator: defaultResponseID,
	}, nil
}

func defaultResponseID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// Validate checks a raw document against the intake schema without storing it.
func (s *IntakeService) Validate(ctx context.Context, raw []byte) (*models.QuestionnaireResponse, error) {
	verrs, err := s.schema.ValidateBytes(ctx, raw)
	if err != nil {
		return nil, NewInvalidError(fmt.Sprintf("invalid json: %v", err))
	}
	if len(verrs) > 0 {
		ve := &ValidationError{}
		for _, v := range verrs {
			ve.Problems = append(ve.Problems, strings.TrimSpace(v.PropertyPath+" "+v.Message))
		}
		return nil, ve
	}
	var r models.QuestionnaireResponse
	if err := json.Unmarshal(raw, &r); err != nil {
		return nil, NewInvalidError(fmt.Sprintf("decode questionnaire: %v", err))
	}
	r.Canonicalize()
	var bad []string
	for _, q := range models.Questions() {
		if v := q.Get(&r); v != "" && !q.Allows(v) {
			bad = append(bad, q.Field+" is not an accepted answer")
		}
	}
	if len(bad) > 0 {
		return nil, &ValidationError{Problems: bad}
	}
	if _, err := ComputeScores(&r); err != nil {
		return nil, err
	}
	return &r, nil
}

// Submit validates and stores one questionnaire document.
func (s *IntakeService) Submit(ctx context.Context, raw []byte) (*models.QuestionnaireResponse, error) {
	if s.store == nil {
		return nil, ErrStoreUnavailable
	}
	r, err := s.Validate(ctx, raw)
	if err != nil {
		return nil, err
	}
	existing, err := s.store.GetResponseByEmail(ctx, r.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, NewConflictError("a questionnaire for this email already exists")
	}
	r.ID = s.idGenerator()
	if r.SubmittedAt.IsZero() {
		r.SubmittedAt = s.now()
	}
	if err := s.store.InsertResponse(ctx, r); err != nil {
		return nil, err
	}
	who := Pseudonym(s.salt, r.Email)
	if err := s.store.AddAudit(ctx, AuditEntry{Time: s.now(), Actor: who, Action: "questionnaire_submitted", Target: r.ID}); err != nil {
		s.logger.Warn("audit write failed", "respondent", who, "err", err)
	}
	s.logger.Info("questionnaire stored", "respondent", who, "id", r.ID)
	return r, nil
}

// ImportFailure records why one document of an import was rejected.
type ImportFailure struct {
	Index      int    `json:"index"`
	Respondent string `json:"respondent,omitempty"`
	Reason     string `json:"reason"`
}

type ImportResult struct {
	Accepted []string        `json:"accepted"`
	Rejected []ImportFailure `json:"rejected"`
}

// Import submits every document of a JSON array. Rejected documents are
// collected; only a malformed array or a store outage aborts the run.
func (s *IntakeService) Import(ctx context.Context, r io.Reader) (*ImportResult, error) {
	body, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read import: %w", err)
	}
	body = bytes.TrimSpace(body)
	var docs []json.RawMessage
	if len(body) > 0 && body[0] == '{' {
		docs = []json.RawMessage{body}
	} else if err := json.Unmarshal(body, &docs); err != nil {
		return nil, NewInvalidError(fmt.Sprintf("import must be a JSON array of questionnaires: %v", err))
	}
	res := &ImportResult{Accepted: []string{}, Rejected: []ImportFailure{}}
	for i, doc := range docs {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		stored, err := s.Submit(ctx, doc)
		if err == nil {
			res.Accepted = append(res.Accepted, stored.ID)
			continue
		}
		if !isRecordError(err) {
			return res, err
		}
		res.Rejected = append(res.Rejected, ImportFailure{Index: i, Respondent: Pseudonym(s.salt, peekEmail(doc)), Reason: err.Error()})
	}
	s.logger.Info("import finished", "accepted", len(res.Accepted), "rejected", len(res.Rejected))
	return res, nil
}

func isRecordError(err error) bool {
	var ve *ValidationError
	if errors.As(err, &ve) || IsInvalidInput(err) {
		return true
	}
	if se, ok := AsServiceError(err); ok {
		return se.Code == ErrorInvalid || se.Code == ErrorConflict
	}
	return false
}

func peekEmail(doc []byte) string {
	var probe struct {
		Email string `json:"email"`
	}
	_ = json.Unmarshal(doc, &probe)
	return probe.Email
}
