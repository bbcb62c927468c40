package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/detox-community/detox/internal/models"
)

func mustDoc(t *testing.T, r *models.QuestionnaireResponse) []byte {
	t.Helper()
	b, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return b
}

func newTestIntake(t *testing.T, store IntakeStore) *IntakeService {
	t.Helper()
	svc, err := NewIntakeService(store, nil, "pepper")
	if err != nil {
		t.Fatalf("NewIntakeService: %v", err)
	}
	svc.now = func() time.Time { return time.Date(2025, 9, 17, 12, 0, 0, 0, time.UTC) }
	n := 0
	svc.idGenerator = func() string {
		n++
		return fmt.Sprintf("resp-%03d", n)
	}
	return svc
}

func TestIntakeSchemaIsValidJSON(t *testing.T) {
	raw, err := IntakeSchema()
	if err != nil {
		t.Fatalf("IntakeSchema: %v", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("schema is not JSON: %v", err)
	}
	required, _ := doc["required"].([]any)
	if len(required) != 3+len(models.RequiredFields()) {
		t.Fatalf("required=%d, want %d", len(required), 3+len(models.RequiredFields()))
	}
}

func TestSubmitStoresAndAudits(t *testing.T) {
	store := newMemStore()
	svc := newTestIntake(t, store)
	in := neutralResponse()
	in.Email = "Nia@Example.com"
	in.LearningCultures = "ACTIVELY_CURIOS"

	if _, err := svc.Submit(context.Background(), mustDoc(t, in)); err == nil {
		t.Fatalf("expected schema to reject an upper-cased legacy code")
	}
	in.LearningCultures = "actively_curios"
	got, err := svc.Submit(context.Background(), mustDoc(t, in))
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if got.ID == "" || !got.SubmittedAt.Equal(svc.now()) {
		t.Fatalf("id or timestamp not assigned: %+v", got)
	}
	if got.Email != "nia@example.com" || got.LearningCultures != "actively_curious" {
		t.Fatalf("response not canonicalized: email=%q learning=%q", got.Email, got.LearningCultures)
	}
	if len(store.responses) != 1 || len(store.audit) != 1 {
		t.Fatalf("responses=%d audit=%d, want 1 and 1", len(store.responses), len(store.audit))
	}
	if a := store.audit[0]; a.Action != "questionnaire_submitted" || a.Actor != Pseudonym("pepper", "nia@example.com") || a.Target != got.ID {
		t.Fatalf("unexpected audit entry: %+v", a)
	}

	_, err = svc.Submit(context.Background(), mustDoc(t, in))
	if se, ok := AsServiceError(err); !ok || se.Code != ErrorConflict {
		t.Fatalf("expected conflict on duplicate email, got %v", err)
	}
}

func TestValidateTrimsEmailAndCountsCharacters(t *testing.T) {
	svc := newTestIntake(t, newMemStore())
	r := neutralResponse()
	r.Email = "  Pad@Example.com "
	r.EmpathyDefinition = strings.Repeat("é", models.MaxFreeTextLength-42)
	got, err := svc.Validate(context.Background(), mustDoc(t, r))
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if got.Email != "pad@example.com" {
		t.Fatalf("email not canonicalized: %q", got.Email)
	}
	if _, err := svc.Submit(context.Background(), mustDoc(t, r)); err != nil {
		t.Fatalf("Submit: %v", err)
	}
}

func TestValidateRejections(t *testing.T) {
	svc := newTestIntake(t, newMemStore())
	cases := []struct {
		name   string
		mutate func(r *models.QuestionnaireResponse)
	}{
		{"unknown code", func(r *models.QuestionnaireResponse) { r.FairnessBelief = "maybe" }},
		{"missing required", func(r *models.QuestionnaireResponse) { r.CopingFailure = "" }},
		{"bad email", func(r *models.QuestionnaireResponse) { r.Email = "not-an-email" }},
		{"free text too long", func(r *models.QuestionnaireResponse) {
			r.HelpMotivation = strings.Repeat("é", models.MaxFreeTextLength+1)
		}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			r := neutralResponse()
			c.mutate(r)
			_, err := svc.Validate(context.Background(), mustDoc(t, r))
			var ve *ValidationError
			if !errors.As(err, &ve) || len(ve.Problems) == 0 {
				t.Fatalf("expected ValidationError, got %v", err)
			}
		})
	}

	extra := []byte(`{"first_name":"a","last_name":"b","email":"a@b.io","favourite_colour":"blue"}`)
	if _, err := svc.Validate(context.Background(), extra); err == nil {
		t.Fatalf("expected unknown property to be rejected")
	}
	if _, err := svc.Validate(context.Background(), []byte(`{`)); err == nil {
		t.Fatalf("expected malformed json to be rejected")
	}
}

func TestValidateRejectsBlankFreeText(t *testing.T) {
	svc := newTestIntake(t, newMemStore())
	r := neutralResponse()
	r.EmpathyDefinition = "   "
	_, err := svc.Validate(context.Background(), mustDoc(t, r))
	if !IsInvalidInput(err) {
		t.Fatalf("expected InvalidInputError for blank free text, got %v", err)
	}
}

func TestImportCollectsRejections(t *testing.T) {
	store := newMemStore()
	svc := newTestIntake(t, store)
	good := neutralResponse()
	other := generousResponse()
	bad := neutralResponse()
	bad.Email = "bad@example.com"
	bad.ValuesConflict = "whatever"
	dupe := neutralResponse()

	docs := []json.RawMessage{mustDoc(t, good), mustDoc(t, bad), mustDoc(t, other), mustDoc(t, dupe)}
	body, _ := json.Marshal(docs)
	res, err := svc.Import(context.Background(), strings.NewReader(string(body)))
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if len(res.Accepted) != 2 || len(res.Rejected) != 2 {
		t.Fatalf("accepted=%d rejected=%d, want 2 and 2", len(res.Accepted), len(res.Rejected))
	}
	if res.Rejected[0].Index != 1 || res.Rejected[1].Index != 3 {
		t.Fatalf("unexpected rejected indices: %+v", res.Rejected)
	}
	if res.Rejected[0].Respondent != Pseudonym("pepper", "bad@example.com") {
		t.Fatalf("rejection should carry a pseudonym, got %q", res.Rejected[0].Respondent)
	}

	single, err := svc.Import(context.Background(), strings.NewReader(`  `+string(mustDoc(t, func() *models.QuestionnaireResponse {
		r := neutralResponse()
		r.Email = "single@example.com"
		return r
	}()))))
	if err != nil || len(single.Accepted) != 1 {
		t.Fatalf("single object import: res=%+v err=%v", single, err)
	}

	if _, err := svc.Import(context.Background(), strings.NewReader(`"nope"`)); err == nil {
		t.Fatalf("expected error for non-array import")
	}
}

func TestSubmitWithoutStore(t *testing.T) {
	svc := newTestIntake(t, nil)
	if _, err := svc.Submit(context.Background(), mustDoc(t, neutralResponse())); !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
}
