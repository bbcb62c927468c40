package services

import (
	"strings"

	"github.com/detox-community/detox/internal/models"
)

// ClampScore limits a summed rule total to [MinScore, MaxScore].
func ClampScore(v int) int {
	if v < MinScore {
		return MinScore
	}
	if v > MaxScore {
		return MaxScore
	}
	return v
}

// ComputeScores derives the ten dimension scores of a questionnaire response.
// A nil response or a blank required answer yields an *InvalidInputError.
// Unknown codes and blank optional answers contribute nothing.
func ComputeScores(r *models.QuestionnaireResponse) (PersonalityScores, error) {
	if r == nil {
		return PersonalityScores{}, &InvalidInputError{Reason: "response is nil"}
	}
	if err := checkRequired(r); err != nil {
		return PersonalityScores{}, err
	}
	c := *r
	c.Canonicalize()

	var out PersonalityScores
	for _, rl := range scoringRules {
		if rl.matches(&c) {
			*out.slot(rl.dim) += rl.points
		}
	}
	for _, d := range ScoredDimensions() {
		p := out.slot(d)
		*p = ClampScore(*p)
	}
	out.SuccessDefinition = c.SuccessDefinition
	return out, nil
}

func checkRequired(r *models.QuestionnaireResponse) error {
	for _, q := range models.Questions() {
		if q.Required && strings.TrimSpace(q.Get(r)) == "" {
			return &InvalidInputError{Field: q.Field, Reason: "required answer is missing"}
		}
	}
	return nil
}
