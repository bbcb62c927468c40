package services

import (
	"strings"

	"github.com/detox-community/detox/internal/models"
)

type answer func(*models.QuestionnaireResponse) string

type ruleKind int

const (
	ruleEquals ruleKind = iota
	ruleContains
)

// rule awards points to one dimension when an answer matches. Equals rules
// match any of values exactly; contains rules match values[0] as a
// case-insensitive substring.
type rule struct {
	dim    Dimension
	field  string
	get    answer
	kind   ruleKind
	values []string
	points int
}

func (r rule) matches(resp *models.QuestionnaireResponse) bool {
	v := r.get(resp)
	if v == "" {
		return false
	}
	switch r.kind {
	case ruleEquals:
		for _, want := range r.values {
			if v == want {
				return true
			}
		}
	case ruleContains:
		return strings.Contains(strings.ToLower(v), strings.ToLower(r.values[0]))
	}
	return false
}

func equals(d Dimension, field string, get answer, points int, codes ...string) rule {
	return rule{dim: d, field: field, get: get, kind: ruleEquals, values: codes, points: points}
}

func contains(d Dimension, field string, get answer, keyword string, points int) rule {
	return rule{dim: d, field: field, get: get, kind: ruleContains, values: []string{keyword}, points: points}
}

type qr = models.QuestionnaireResponse

var (
	personalStruggle   answer = func(r *qr) string { return r.ResponsePersonalStruggle }
	empathyDefinition  answer = func(r *qr) string { return r.EmpathyDefinition }
	strugglingThoughts answer = func(r *qr) string { return r.StrugglingThoughts }
	longTermGoals      answer = func(r *qr) string { return r.LongTermGoals }
	successDefinition  answer = func(r *qr) string { return r.SuccessDefinition }
	growthDefinition   answer = func(r *qr) string { return r.PersonalGrowthDefinition }
	selfReflection     answer = func(r *qr) string { return r.SelfReflectionFrequency }
	lifeMeaning        answer = func(r *qr) string { return r.LifeMeaning }
	trustDefinition    answer = func(r *qr) string { return r.TrustDefinition }
	boundaries         answer = func(r *qr) string { return r.BoundariesApproach }
	changeResponse     answer = func(r *qr) string { return r.ChangeResponse }
	uncertainty        answer = func(r *qr) string { return r.UncertaintyResponse }
	changeMind         answer = func(r *qr) string { return r.ChangeMindFrequency }
	helpMotivation     answer = func(r *qr) string { return r.HelpMotivation }
	strangerMotivation answer = func(r *qr) string { return r.StrangerInteractionMotivation }
	fairnessBelief     answer = func(r *qr) string { return r.FairnessBelief }
	unfairTreatment    answer = func(r *qr) string { return r.ResponseUnfairTreatment }
	copingFailure      answer = func(r *qr) string { return r.CopingFailure }
	forgivenessRole    answer = func(r *qr) string { return r.ForgivenessRole }
	emotionProcessing  answer = func(r *qr) string { return r.EmotionProcessing }
	learningCultures   answer = func(r *qr) string { return r.LearningCultures }
	authenticFeeling   answer = func(r *qr) string { return r.MostAuthenticFeeling }
	vulnerability      answer = func(r *qr) string { return r.VulnerabilityStrength }
	admitFault         answer = func(r *qr) string { return r.AdmitFaultFrequency }
)

// scoringRules is the complete rule table. Contributions are additive and
// the per-dimension sum is clamped to [MinScore, MaxScore].
var scoringRules = []rule{
	equals(EmpathyLevel, "response_personal_struggle", personalStruggle, 3, "emotional_support"),
	equals(EmpathyLevel, "response_personal_struggle", personalStruggle, 2, "share_experiences"),
	contains(EmpathyLevel, "empathy_definition", empathyDefinition, "sharing", 2),
	contains(EmpathyLevel, "empathy_definition", empathyDefinition, "compassion", 2),
	equals(EmpathyLevel, "struggling_thoughts", strugglingThoughts, 3, "want_to_help"),
	equals(EmpathyLevel, "struggling_thoughts", strugglingThoughts, 2, "learn_experience"),

	equals(GrowthOrientation, "long_term_goals", longTermGoals, 3, "positive_impact"),
	equals(GrowthOrientation, "long_term_goals", longTermGoals, 3, "personal_growth"),
	equals(GrowthOrientation, "success_definition", successDefinition, 3, "personal_growth"),
	equals(GrowthOrientation, "success_definition", successDefinition, 2, "positive_impact"),
	equals(GrowthOrientation, "personal_growth_definition", growthDefinition, 3, "continuous_improvement"),
	equals(GrowthOrientation, "personal_growth_definition", growthDefinition, 2, "overcome_challenges", "emotional_maturity"),
	equals(GrowthOrientation, "self_reflection_frequency", selfReflection, 3, "daily"),
	equals(GrowthOrientation, "self_reflection_frequency", selfReflection, 2, "weekly"),

	equals(RelationshipFocus, "success_definition", successDefinition, 3, "relationships"),
	equals(RelationshipFocus, "life_meaning", lifeMeaning, 3, "relationships"),
	equals(RelationshipFocus, "trust_definition", trustDefinition, 2, "shared_values"),
	equals(RelationshipFocus, "trust_definition", trustDefinition, 2, "emotional_safety"),
	equals(RelationshipFocus, "boundaries_approach", boundaries, 2, "clearly_communicate"),

	equals(OpennessChange, "change_response", changeResponse, 3, "embrace_opportunity"),
	equals(OpennessChange, "change_response", changeResponse, 3, "reinvent_myself"),
	equals(OpennessChange, "uncertainty_response", uncertainty, 3, "embrace_growth"),
	equals(OpennessChange, "change_mind_frequency", changeMind, 3, "frequently"),
	equals(OpennessChange, "change_mind_frequency", changeMind, 2, "sometimes"),

	contains(HelpMotivation, "help_motivation", helpMotivation, "difference", 2),
	contains(HelpMotivation, "help_motivation", helpMotivation, "duty", 2),
	equals(HelpMotivation, "stranger_interaction_motivation", strangerMotivation, 3, "all_above"),
	equals(HelpMotivation, "stranger_interaction_motivation", strangerMotivation, 2, "inherent_worth", "positive_effects"),

	equals(FairnessOrientation, "fairness_belief", fairnessBelief, 3, "equal_opportunities"),
	equals(FairnessOrientation, "fairness_belief", fairnessBelief, 2, "effort_merit"),
	equals(FairnessOrientation, "response_unfair_treatment", unfairTreatment, 3, "speak_up"),
	equals(FairnessOrientation, "response_unfair_treatment", unfairTreatment, 2, "assess_situation"),

	equals(ResilienceLevel, "coping_failure", copingFailure, 3, "analyze_learn"),
	equals(ResilienceLevel, "coping_failure", copingFailure, 2, "seek_support"),
	equals(ResilienceLevel, "forgiveness_role", forgivenessRole, 2, "forgive_easily"),
	equals(ResilienceLevel, "forgiveness_role", forgivenessRole, 1, "takes_time"),
	equals(ResilienceLevel, "emotion_processing", emotionProcessing, 2, "talk_trusted", "write_journal"),

	equals(CulturalCuriosity, "learning_cultures", learningCultures, 3, "actively_curious"),
	equals(CulturalCuriosity, "most_authentic_feeling", authenticFeeling, 1, "being_creative"),

	equals(AuthenticityLevel, "most_authentic_feeling", authenticFeeling, 2, "when_alone"),
	equals(AuthenticityLevel, "vulnerability_strength", vulnerability, 3, "sign_true_strength"),
	equals(AuthenticityLevel, "vulnerability_strength", vulnerability, 2, "can_coexist"),
	equals(AuthenticityLevel, "admit_fault_frequency", admitFault, 3, "always"),
	equals(AuthenticityLevel, "admit_fault_frequency", admitFault, 2, "often"),
}
