package services

import (
	"math"

	"github.com/detox-community/detox/internal/models"
)

type weightedDimension struct {
	dim    Dimension
	weight int
}

// compatibilityWeights partitions the nine scored dimensions into weight tiers.
var compatibilityWeights = []weightedDimension{
	{EmpathyLevel, 3},
	{GrowthOrientation, 3},
	{AuthenticityLevel, 3},
	{RelationshipFocus, 2},
	{HelpMotivation, 2},
	{FairnessOrientation, 2},
	{OpennessChange, 1},
	{ResilienceLevel, 1},
	{CulturalCuriosity, 1},
}

// TotalCompatibilityWeight is the sum of weight*MaxScore over every tier (180).
var TotalCompatibilityWeight = func() int {
	total := 0
	for _, w := range compatibilityWeights {
		total += w.weight * MaxScore
	}
	return total
}()

// Compatibility scores two responses as a percentage in [0, 100] rounded to
// one decimal. InvalidInputError from either side is returned unchanged.
func Compatibility(a, b *models.QuestionnaireResponse) (float64, error) {
	sa, err := ComputeScores(a)
	if err != nil {
		return 0, err
	}
	sb, err := ComputeScores(b)
	if err != nil {
		return 0, err
	}
	return CompatibilityFromScores(sa, sb), nil
}

// CompatibilityFromScores is Compatibility over already computed scores.
func CompatibilityFromScores(a, b PersonalityScores) float64 {
	sum := 0
	for _, w := range compatibilityWeights {
		diff := a.Score(w.dim) - b.Score(w.dim)
		if diff < 0 {
			diff = -diff
		}
		sum += (MaxScore - diff) * w.weight
	}
	return math.Round(float64(sum*1000)/float64(TotalCompatibilityWeight)) / 10
}

// MatchLevel grades how close two respondents are on one dimension.
type MatchLevel string

const (
	MatchStrong    MatchLevel = "strong"
	MatchModerate  MatchLevel = "moderate"
	MatchDifferent MatchLevel = "different"
)

// Shared reports whether the level counts as a shared value.
func (m MatchLevel) Shared() bool { return m == MatchStrong || m == MatchModerate }

type SharedValue struct {
	Dimension Dimension  `json:"dimension"`
	Level     MatchLevel `json:"level"`
	Diff      int        `json:"diff"`
}

// SharedValues grades every dimension: a difference of at most 2 is strong,
// at most 4 moderate. success_definition is strong only when both answers match.
// It has no numeric score, so grading it as a zero difference would mark it
// strong for every pair and set SharedFlags.Values unconditionally.
func SharedValues(a, b PersonalityScores) []SharedValue {
	out := make([]SharedValue, 0, 10)
	for _, d := range AllDimensions() {
		if d == SuccessDefinition {
			lvl := MatchDifferent
			if a.SuccessDefinition != "" && a.SuccessDefinition == b.SuccessDefinition {
				lvl = MatchStrong
			}
			out = append(out, SharedValue{Dimension: d, Level: lvl})
			continue
		}
		diff := a.Score(d) - b.Score(d)
		if diff < 0 {
			diff = -diff
		}
		lvl := MatchDifferent
		switch {
		case diff <= 2:
			lvl = MatchStrong
		case diff <= 4:
			lvl = MatchModerate
		}
		out = append(out, SharedValue{Dimension: d, Level: lvl, Diff: diff})
	}
	return out
}

// SharedFlags summarises SharedValues into the flags stored with a compatibility.
type SharedFlags struct {
	Empathy       bool `json:"shared_empathy"`
	Growth        bool `json:"shared_growth"`
	Relationships bool `json:"shared_relationships"`
	Values        bool `json:"shared_values"`
}

func FlagsFromShared(values []SharedValue) SharedFlags {
	var f SharedFlags
	for _, v := range values {
		if !v.Level.Shared() {
			continue
		}
		f.Values = true
		switch v.Dimension {
		case EmpathyLevel:
			f.Empathy = true
		case GrowthOrientation:
			f.Growth = true
		case RelationshipFocus:
			f.Relationships = true
		}
	}
	return f
}
