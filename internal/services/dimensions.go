package services

import "encoding/json"

// Dimension names one personality axis.
type Dimension string

const (
	EmpathyLevel        Dimension = "empathy_level"
	GrowthOrientation   Dimension = "growth_orientation"
	RelationshipFocus   Dimension = "relationship_focus"
	OpennessChange      Dimension = "openness_change"
	HelpMotivation      Dimension = "help_motivation"
	FairnessOrientation Dimension = "fairness_orientation"
	SuccessDefinition   Dimension = "success_definition"
	ResilienceLevel     Dimension = "resilience_level"
	CulturalCuriosity   Dimension = "cultural_curiosity"
	AuthenticityLevel   Dimension = "authenticity_level"
)

const (
	MinScore = 0
	MaxScore = 10
)

// AllDimensions lists the ten dimensions in their canonical report order.
func AllDimensions() []Dimension {
	return []Dimension{
		EmpathyLevel, GrowthOrientation, RelationshipFocus, OpennessChange, HelpMotivation,
		FairnessOrientation, SuccessDefinition, ResilienceLevel, CulturalCuriosity, AuthenticityLevel,
	}
}

// ScoredDimensions lists the nine numeric dimensions, excluding the
// pass-through success_definition.
func ScoredDimensions() []Dimension {
	return []Dimension{
		EmpathyLevel, GrowthOrientation, RelationshipFocus, OpennessChange, HelpMotivation,
		FairnessOrientation, ResilienceLevel, CulturalCuriosity, AuthenticityLevel,
	}
}

// PersonalityScores holds the derived dimension scores of one response.
type PersonalityScores struct {
	EmpathyLevel        int
	GrowthOrientation   int
	RelationshipFocus   int
	OpennessChange      int
	HelpMotivation      int
	FairnessOrientation int
	ResilienceLevel     int
	CulturalCuriosity   int
	AuthenticityLevel   int
	// SuccessDefinition is the raw categorical answer, carried through unscored.
	SuccessDefinition string
}

func (s *PersonalityScores) slot(d Dimension) *int {
	switch d {
	case EmpathyLevel:
		return &s.EmpathyLevel
	case GrowthOrientation:
		return &s.GrowthOrientation
	case RelationshipFocus:
		return &s.RelationshipFocus
	case OpennessChange:
		return &s.OpennessChange
	case HelpMotivation:
		return &s.HelpMotivation
	case FairnessOrientation:
		return &s.FairnessOrientation
	case ResilienceLevel:
		return &s.ResilienceLevel
	case CulturalCuriosity:
		return &s.CulturalCuriosity
	case AuthenticityLevel:
		return &s.AuthenticityLevel
	}
	return nil
}

// Score returns the numeric score for d; success_definition and unknown
// dimensions report 0.
func (s PersonalityScores) Score(d Dimension) int {
	if p := s.slot(d); p != nil {
		return *p
	}
	return 0
}

// Vector returns the nine numeric scores in ScoredDimensions order.
func (s PersonalityScores) Vector() []float64 {
	dims := ScoredDimensions()
	out := make([]float64, len(dims))
	for i, d := range dims {
		out[i] = float64(s.Score(d))
	}
	return out
}

// Map returns every dimension keyed by name. success_definition maps to its raw code.
func (s PersonalityScores) Map() map[string]any {
	out := make(map[string]any, 10)
	for _, d := range ScoredDimensions() {
		out[string(d)] = s.Score(d)
	}
	out[string(SuccessDefinition)] = s.SuccessDefinition
	return out
}

func (s PersonalityScores) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Map())
}

func (s *PersonalityScores) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	var out PersonalityScores
	for _, d := range ScoredDimensions() {
		if v, ok := raw[string(d)]; ok {
			if err := json.Unmarshal(v, out.slot(d)); err != nil {
				return err
			}
		}
	}
	if v, ok := raw[string(SuccessDefinition)]; ok {
		if err := json.Unmarshal(v, &out.SuccessDefinition); err != nil {
			return err
		}
	}
	*s = out
	return nil
}
