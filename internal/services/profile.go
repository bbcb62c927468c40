package services

// Archetype is one of the seven personality profile labels.
type Archetype string

const (
	EmpathicGrower     Archetype = "Empathic_Grower"
	RelationalEmpath   Archetype = "Relational_Empath"
	OpenExplorer       Archetype = "Open_Explorer"
	ResilientAuthentic Archetype = "Resilient_Authentic"
	AltruisticAdvocate Archetype = "Altruistic_Advocate"
	MindfulGrower      Archetype = "Mindful_Grower"
	BalancedIndividual Archetype = "Balanced_Individual"
)

// Archetypes lists every label in classification priority order.
func Archetypes() []Archetype {
	out := make([]Archetype, 0, len(profileRules)+1)
	for _, pr := range profileRules {
		out = append(out, pr.label)
	}
	return append(out, BalancedIndividual)
}

type profileRule struct {
	label Archetype
	match func(PersonalityScores) bool
}

// Order matters: several archetypes can hold at once and the first wins.
var profileRules = []profileRule{
	{EmpathicGrower, func(s PersonalityScores) bool { return s.EmpathyLevel >= 7 && s.GrowthOrientation >= 7 }},
	{RelationalEmpath, func(s PersonalityScores) bool { return s.RelationshipFocus >= 7 && s.EmpathyLevel >= 6 }},
	{OpenExplorer, func(s PersonalityScores) bool { return s.OpennessChange >= 7 && s.CulturalCuriosity >= 6 }},
	{ResilientAuthentic, func(s PersonalityScores) bool { return s.ResilienceLevel >= 7 && s.AuthenticityLevel >= 6 }},
	{AltruisticAdvocate, func(s PersonalityScores) bool { return s.HelpMotivation >= 7 && s.FairnessOrientation >= 6 }},
	{MindfulGrower, func(s PersonalityScores) bool { return s.GrowthOrientation >= 6 && s.AuthenticityLevel >= 6 }},
}

// ClassifyProfile maps scores onto an archetype. It is total: scores that
// satisfy no rule fall back to Balanced_Individual.
func ClassifyProfile(s PersonalityScores) Archetype {
	for _, pr := range profileRules {
		if pr.match(s) {
			return pr.label
		}
	}
	return BalancedIndividual
}
