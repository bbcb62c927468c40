package services

import (
	"context"
	"time"

	"github.com/detox-community/detox/internal/models"
)

// CompatibilityRecord is a persisted compatibility between two respondents.
// User1ID is always the lexically smaller response ID.
type CompatibilityRecord struct {
	User1ID      string      `json:"user1_id"`
	User2ID      string      `json:"user2_id"`
	Score        float64     `json:"score"`
	Flags        SharedFlags `json:"flags"`
	CalculatedAt time.Time   `json:"calculated_at"`
}

// Other returns the ID on the opposite side of the pair from id.
func (c CompatibilityRecord) Other(id string) string {
	if c.User1ID == id {
		return c.User2ID
	}
	return c.User1ID
}

// OrderedPair returns a and b sorted so the smaller ID comes first.
func OrderedPair(a, b string) (string, string) {
	if b < a {
		return b, a
	}
	return a, b
}

type AuditEntry struct {
	Time   time.Time
	Actor  string
	Action string
	Target string
	Note   string
}

// ResponseReader is the read side shared by every service.
type ResponseReader interface {
	GetResponse(ctx context.Context, id string) (*models.QuestionnaireResponse, error)
	GetResponseByEmail(ctx context.Context, email string) (*models.QuestionnaireResponse, error)
	ListResponses(ctx context.Context) ([]*models.QuestionnaireResponse, error)
}

// IntakeStore persists new questionnaire responses.
type IntakeStore interface {
	GetResponseByEmail(ctx context.Context, email string) (*models.QuestionnaireResponse, error)
	InsertResponse(ctx context.Context, r *models.QuestionnaireResponse) error
	AddAudit(ctx context.Context, e AuditEntry) error
}

// MatchStore backs MatchService.
type MatchStore interface {
	ResponseReader
	UpsertCompatibilities(ctx context.Context, recs []CompatibilityRecord) error
	ListCompatibilities(ctx context.Context, responseID string, limit int) ([]CompatibilityRecord, error)
}

type AnalyticsStore interface {
	ListResponses(ctx context.Context) ([]*models.QuestionnaireResponse, error)
}

type ExportStore interface {
	ListResponses(ctx context.Context) ([]*models.QuestionnaireResponse, error)
	ListAllCompatibilities(ctx context.Context) ([]CompatibilityRecord, error)
}
