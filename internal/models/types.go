package models

import (
	"strings"
	"time"
)

// QuestionnaireResponse represents one respondent's answers. It is created once
// at intake and never edited afterwards.
type QuestionnaireResponse struct {
	ID             string    `json:"id,omitempty"`
	FirstName      string    `json:"first_name"`
	LastName       string    `json:"last_name"`
	Email          string    `json:"email"`
	InvitationCode string    `json:"invitation_code,omitempty"` // opaque; lifecycle handled elsewhere
	SubmittedAt    time.Time `json:"submitted_at,omitempty"`

	// Required answers.
	MotivationHelpOthers     string `json:"motivation_help_others"`
	HumanNatureView          string `json:"human_nature_view"`
	FairnessBelief           string `json:"fairness_belief"`
	LongTermGoals            string `json:"long_term_goals"`
	ResponsePersonalStruggle string `json:"response_personal_struggle"`
	ResponseUnfairTreatment  string `json:"response_unfair_treatment"`
	SuccessDefinition        string `json:"success_definition"`
	ForgivenessRole          string `json:"forgiveness_role"`
	CopingFailure            string `json:"coping_failure"`
	LearningCultures         string `json:"learning_cultures"`
	EmpathyDefinition        string `json:"empathy_definition"`
	ValuesConflict           string `json:"values_conflict"`
	HelpMotivation           string `json:"help_motivation"`

	// Optional answers.
	HomeConcept                     string `json:"home_concept,omitempty"`
	UncertaintyResponse             string `json:"uncertainty_response,omitempty"`
	GratitudeRole                   string `json:"gratitude_role,omitempty"`
	FeedbackApproach                string `json:"feedback_approach,omitempty"`
	LifeBalance                     string `json:"life_balance,omitempty"`
	TrustDefinition                 string `json:"trust_definition,omitempty"`
	StrugglingThoughts              string `json:"struggling_thoughts,omitempty"`
	DifficultConversations          string `json:"difficult_conversations,omitempty"`
	LifeMeaning                     string `json:"life_meaning,omitempty"`
	ChangeResponse                  string `json:"change_response,omitempty"`
	EmotionProcessing               string `json:"emotion_processing,omitempty"`
	BoundariesApproach              string `json:"boundaries_approach,omitempty"`
	VulnerabilityStrength           string `json:"vulnerability_strength,omitempty"`
	SelfReflectionFrequency         string `json:"self_reflection_frequency,omitempty"`
	ChangeMindFrequency             string `json:"change_mind_frequency,omitempty"`
	AdmitFaultFrequency             string `json:"admit_fault_frequency,omitempty"`
	ActiveListeningDefinition       string `json:"active_listening_definition,omitempty"`
	HumanBeingDefinition            string `json:"human_being_definition,omitempty"`
	SelfLoveLevel                   string `json:"self_love_level,omitempty"`
	TrueHappinessKnowledge          string `json:"true_happiness_knowledge,omitempty"`
	EmotionalIntelligenceDefinition string `json:"emotional_intelligence_definition,omitempty"`
	PersonalGrowthDefinition        string `json:"personal_growth_definition,omitempty"`
	MostAuthenticFeeling            string `json:"most_authentic_feeling,omitempty"`
	StrangerInteractionMotivation   string `json:"stranger_interaction_motivation,omitempty"`
}

// FullName joins first and last name.
func (r *QuestionnaireResponse) FullName() string {
	return strings.TrimSpace(strings.TrimSpace(r.FirstName) + " " + strings.TrimSpace(r.LastName))
}

// Canonicalize trims every answer and rewrites legacy codes in place.
func (r *QuestionnaireResponse) Canonicalize() {
	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.InvitationCode = strings.TrimSpace(r.InvitationCode)
	for _, q := range catalogue {
		p := q.ptr(r)
		*p = CanonicalCode(q.Field, strings.TrimSpace(*p))
	}
}

// Answers returns the populated answer fields keyed by field name.
func (r *QuestionnaireResponse) Answers() map[string]string {
	out := make(map[string]string, len(catalogue))
	for _, q := range catalogue {
		if v := q.Get(r); v != "" {
			out[q.Field] = v
		}
	}
	return out
}

// SetAnswer writes value into the named answer field. It reports false for
// unknown field names.
func (r *QuestionnaireResponse) SetAnswer(field, value string) bool {
	q, ok := LookupQuestion(field)
	if !ok {
		return false
	}
	*q.ptr(r) = value
	return true
}
