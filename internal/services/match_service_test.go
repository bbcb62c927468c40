package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/detox-community/detox/internal/models"
	"github.com/detox-community/detox/internal/seed"
)

// memStore is an in-memory store satisfying every store interface.
type memStore struct {
	mu        sync.Mutex
	responses []*models.QuestionnaireResponse
	compat    []CompatibilityRecord
	audit     []AuditEntry
	upsertErr func(recs []CompatibilityRecord) error
	upserts   int
}

func newMemStore() *memStore { return &memStore{} }

func (s *memStore) add(rs ...*models.QuestionnaireResponse) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.responses = append(s.responses, rs...)
}

func (s *memStore) GetResponse(ctx context.Context, id string) (*models.QuestionnaireResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.responses {
		if r.ID == id {
			cp := *r
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *memStore) GetResponseByEmail(ctx context.Context, email string) (*models.QuestionnaireResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.responses {
		if strings.EqualFold(r.Email, email) {
			cp := *r
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *memStore) ListResponses(ctx context.Context) ([]*models.QuestionnaireResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*models.QuestionnaireResponse, 0, len(s.responses))
	for _, r := range s.responses {
		cp := *r
		out = append(out, &cp)
	}
	return out, nil
}

func (s *memStore) InsertResponse(ctx context.Context, r *models.QuestionnaireResponse) error {
	s.add(r)
	return nil
}

func (s *memStore) AddAudit(ctx context.Context, e AuditEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.audit = append(s.audit, e)
	return nil
}

func (s *memStore) UpsertCompatibilities(ctx context.Context, recs []CompatibilityRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.upserts++
	if s.upsertErr != nil {
		if err := s.upsertErr(recs); err != nil {
			return err
		}
	}
	for _, rec := range recs {
		replaced := false
		for i := range s.compat {
			if s.compat[i].User1ID == rec.User1ID && s.compat[i].User2ID == rec.User2ID {
				s.compat[i] = rec
				replaced = true
			}
		}
		if !replaced {
			s.compat = append(s.compat, rec)
		}
	}
	return nil
}

func (s *memStore) ListCompatibilities(ctx context.Context, id string, limit int) ([]CompatibilityRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []CompatibilityRecord
	for _, rec := range s.compat {
		if rec.User1ID == id || rec.User2ID == id {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *memStore) ListAllCompatibilities(ctx context.Context) ([]CompatibilityRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]CompatibilityRecord(nil), s.compat...), nil
}

func seededStore(t *testing.T, n int) *memStore {
	t.Helper()
	store := newMemStore()
	for i, r := range seed.New(99).Responses(n) {
		r.ID = fmt.Sprintf("id%03d", i)
		store.add(r)
	}
	return store
}

func newTestMatchService(store MatchStore) *MatchService {
	svc := NewMatchService(store, nil, "pepper")
	svc.now = func() time.Time { return time.Date(2025, 9, 17, 0, 0, 0, 0, time.UTC) }
	svc.runID = func() string { return "run-1" }
	return svc
}

func TestProfileAndCompare(t *testing.T) {
	store := newMemStore()
	a := generousResponse()
	a.ID = "a"
	b := neutralResponse()
	b.ID = "b"
	store.add(a, b)
	svc := newTestMatchService(store)

	p, err := svc.Profile(context.Background(), "  GENEROUS@example.com ")
	if err != nil {
		t.Fatalf("Profile: %v", err)
	}
	if p.Archetype != EmpathicGrower || p.Scores.EmpathyLevel != 10 {
		t.Fatalf("unexpected profile: %+v", p)
	}
	cmp, err := svc.Compare(context.Background(), a.Email, b.Email)
	if err != nil {
		t.Fatalf("Compare: %v", err)
	}
	want, _ := Compatibility(a, b)
	if cmp.Score != want {
		t.Fatalf("Compare score=%v, want %v", cmp.Score, want)
	}
	if len(cmp.Shared) != 10 {
		t.Fatalf("expected 10 shared values, got %d", len(cmp.Shared))
	}
}

func TestProfileErrors(t *testing.T) {
	svc := newTestMatchService(newMemStore())
	_, err := svc.Profile(context.Background(), "missing@example.com")
	if se, ok := AsServiceError(err); !ok || se.Code != ErrorNotFound {
		t.Fatalf("expected not_found, got %v", err)
	}
	if strings.Contains(err.Error(), "missing@example.com") {
		t.Fatalf("error leaks the email: %v", err)
	}
	_, err = svc.Profile(context.Background(), " ")
	if se, ok := AsServiceError(err); !ok || se.Code != ErrorInvalid {
		t.Fatalf("expected invalid, got %v", err)
	}
	if _, err := NewMatchService(nil, nil, "").Profile(context.Background(), "x@y.z"); !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
}

func TestTopMatchesSortedAndLimited(t *testing.T) {
	store := seededStore(t, 30)
	svc := newTestMatchService(store)
	self := store.responses[0]
	matches, err := svc.TopMatches(context.Background(), self.Email, 5)
	if err != nil {
		t.Fatalf("TopMatches: %v", err)
	}
	if len(matches) != 5 {
		t.Fatalf("expected 5 matches, got %d", len(matches))
	}
	for i, m := range matches {
		if m.ID == self.ID {
			t.Fatalf("respondent matched with themselves")
		}
		if i > 0 && matches[i-1].Score < m.Score {
			t.Fatalf("matches not sorted: %v before %v", matches[i-1].Score, m.Score)
		}
	}
	all, _ := svc.TopMatches(context.Background(), self.Email, 0)
	if len(all) != DefaultMatchLimit {
		t.Fatalf("default limit not applied: %d", len(all))
	}
	if all[0].Score != matches[0].Score {
		t.Fatalf("best match differs between limits")
	}
}

func TestUpdateForWritesOrderedPairs(t *testing.T) {
	store := seededStore(t, 6)
	svc := newTestMatchService(store)
	self := store.responses[3]
	n, err := svc.UpdateFor(context.Background(), self.Email)
	if err != nil {
		t.Fatalf("UpdateFor: %v", err)
	}
	if n != 5 || len(store.compat) != 5 {
		t.Fatalf("expected 5 pairs, got n=%d stored=%d", n, len(store.compat))
	}
	for _, rec := range store.compat {
		if rec.User1ID >= rec.User2ID {
			t.Fatalf("pair not ordered: %s,%s", rec.User1ID, rec.User2ID)
		}
		if rec.User1ID != self.ID && rec.User2ID != self.ID {
			t.Fatalf("unrelated pair stored: %+v", rec)
		}
	}
	// Running again upserts rather than duplicating.
	if _, err := svc.UpdateFor(context.Background(), self.Email); err != nil {
		t.Fatalf("UpdateFor again: %v", err)
	}
	if len(store.compat) != 5 {
		t.Fatalf("upsert duplicated rows: %d", len(store.compat))
	}

	stored, err := svc.StoredMatches(context.Background(), self.Email, 3)
	if err != nil {
		t.Fatalf("StoredMatches: %v", err)
	}
	if len(stored) != 3 {
		t.Fatalf("expected 3 stored matches, got %d", len(stored))
	}
	live, _ := svc.TopMatches(context.Background(), self.Email, 3)
	for i := range stored {
		if stored[i].Score != live[i].Score {
			t.Fatalf("stored and live scores diverge at %d: %v vs %v", i, stored[i].Score, live[i].Score)
		}
	}
}

func TestRecomputeAllCoversEveryPairOnce(t *testing.T) {
	store := seededStore(t, 12)
	broken := neutralResponse()
	broken.ID = "zzz"
	broken.Email = "broken@example.com"
	broken.FairnessBelief = ""
	store.add(broken)
	svc := newTestMatchService(store)

	report, err := svc.RecomputeAll(context.Background(), RecomputeOptions{Workers: 3, BatchSize: 4})
	if err != nil {
		t.Fatalf("RecomputeAll: %v", err)
	}
	if report.Respondents != 12 || report.Skipped != 1 {
		t.Fatalf("unexpected report: %+v", report)
	}
	if report.Pairs != 66 || len(store.compat) != 66 {
		t.Fatalf("expected 66 pairs, got report=%d stored=%d", report.Pairs, len(store.compat))
	}
	seen := map[string]bool{}
	for _, rec := range store.compat {
		key := rec.User1ID + "|" + rec.User2ID
		if seen[key] {
			t.Fatalf("pair %s written twice", key)
		}
		seen[key] = true
	}
	if report.RunID != "run-1" {
		t.Fatalf("run id not propagated: %s", report.RunID)
	}
}

func TestRecomputeAllCountsFailures(t *testing.T) {
	store := seededStore(t, 5)
	store.upsertErr = func(recs []CompatibilityRecord) error {
		if recs[0].User1ID == "id001" {
			return errors.New("disk full")
		}
		return nil
	}
	svc := newTestMatchService(store)
	report, err := svc.RecomputeAll(context.Background(), RecomputeOptions{Workers: 2})
	if err != nil {
		t.Fatalf("RecomputeAll: %v", err)
	}
	if report.Failed != 1 || report.Pairs != 10-3 {
		t.Fatalf("unexpected report: %+v", report)
	}
}

func TestRecomputeAllHonoursCancellation(t *testing.T) {
	store := seededStore(t, 8)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	svc := newTestMatchService(store)
	if _, err := svc.RecomputeAll(ctx, RecomputeOptions{Workers: 2}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
