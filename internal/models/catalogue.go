package models

import (
	"sort"
	"strings"
	"unicode/utf8"
)

// MaxFreeTextLength bounds free-text answers accepted at intake.
const MaxFreeTextLength = 200

// Choice is one selectable answer code with its English label.
type Choice struct {
	Code  string `json:"code"`
	Label string `json:"label"`
}

// Question describes one answer field of the questionnaire.
type Question struct {
	Field    string
	Required bool
	// FreeText questions accept any non-empty text; Choices are suggestions.
	FreeText bool
	Choices  []Choice

	ptr func(*QuestionnaireResponse) *string
}

// Get returns the answer recorded for q on r.
func (q Question) Get(r *QuestionnaireResponse) string {
	if r == nil {
		return ""
	}
	return *q.ptr(r)
}

// Codes lists the choice codes in catalogue order.
func (q Question) Codes() []string {
	out := make([]string, 0, len(q.Choices))
	for _, c := range q.Choices {
		out = append(out, c.Code)
	}
	return out
}

// Allows reports whether code is an acceptable answer for q.
func (q Question) Allows(code string) bool {
	code = strings.TrimSpace(code)
	if code == "" {
		return false
	}
	if q.FreeText {
		return utf8.RuneCountInString(code) <= MaxFreeTextLength
	}
	code = CanonicalCode(q.Field, code)
	for _, c := range q.Choices {
		if c.Code == code {
			return true
		}
	}
	return false
}

// Label returns the English label for code, or code itself when unknown.
func (q Question) Label(code string) string {
	for _, c := range q.Choices {
		if c.Code == code {
			return c.Label
		}
	}
	return code
}

var legacyCodes = map[string]map[string]string{
	"learning_cultures":               {"actively_curios": "actively_curious"},
	"stranger_interaction_motivation": {"all_above_stranger": "all_above"},
}

// CanonicalCode maps codes written by older questionnaire versions onto the
// current code set. Unknown codes pass through unchanged.
func CanonicalCode(field, code string) string {
	if m, ok := legacyCodes[field]; ok {
		if v, ok := m[code]; ok {
			return v
		}
	}
	return code
}

// LegacyCodes lists the older codes still accepted for field.
func LegacyCodes(field string) []string {
	var out []string
	for code := range legacyCodes[field] {
		out = append(out, code)
	}
	sort.Strings(out)
	return out
}

// Questions returns the questionnaire catalogue in presentation order.
func Questions() []Question {
	out := make([]Question, len(catalogue))
	copy(out, catalogue)
	return out
}

// RequiredFields lists the answer fields that must be present.
func RequiredFields() []string {
	var out []string
	for _, q := range catalogue {
		if q.Required {
			out = append(out, q.Field)
		}
	}
	return out
}

// LookupQuestion finds a question by its field name.
func LookupQuestion(field string) (Question, bool) {
	q, ok := byField[field]
	return q, ok
}

var byField = func() map[string]Question {
	m := make(map[string]Question, len(catalogue))
	for _, q := range catalogue {
		m[q.Field] = q
	}
	return m
}()

func ch(pairs ...string) []Choice {
	out := make([]Choice, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, Choice{Code: pairs[i], Label: pairs[i+1]})
	}
	return out
}

var catalogue = []Question{
	{Field: "motivation_help_others", Required: true, ptr: func(r *QuestionnaireResponse) *string { return &r.MotivationHelpOthers }, Choices: ch(
		"personal_growth", "Personal growth and self-actualization",
		"helping_others", "Helping others and making a difference",
		"financial_security", "Achieving financial security",
		"social_status", "Gaining social status and recognition",
	)},
	{Field: "human_nature_view", Required: true, ptr: func(r *QuestionnaireResponse) *string { return &r.HumanNatureView }, Choices: ch(
		"unpredictable", "People are unpredictable and complex",
		"environment", "People are shaped by their environment",
		"inherently_good", "People are inherently good",
		"self_interested", "People are self-interested by nature",
	)},
	{Field: "fairness_belief", Required: true, ptr: func(r *QuestionnaireResponse) *string { return &r.FairnessBelief }, Choices: ch(
		"equal_outcomes", "Fairness means equal outcomes for everyone",
		"equal_opportunities", "Fairness means equal opportunities for everyone",
		"subjective", "Fairness is subjective and context-dependent",
		"effort_merit", "Fairness depends on effort and merit",
	)},
	{Field: "long_term_goals", Required: true, ptr: func(r *QuestionnaireResponse) *string { return &r.LongTermGoals }, Choices: ch(
		"security", "Security and stability",
		"recognition", "Recognition and status",
		"achievement", "Need for personal achievement",
		"positive_impact", "Desire to make a positive impact",
		"personal_growth", "Personal growth and self-discovery",
	)},
	{Field: "response_personal_struggle", Required: true, ptr: func(r *QuestionnaireResponse) *string { return &r.ResponsePersonalStruggle }, Choices: ch(
		"emotional_support", "I listen actively and offer emotional support",
		"practical_solutions", "I try to provide practical solutions or advice",
		"share_experiences", "I share similar experiences I've had",
		"uncomfortable", "I feel uncomfortable and change the subject",
	)},
	{Field: "response_unfair_treatment", Required: true, ptr: func(r *QuestionnaireResponse) *string { return &r.ResponseUnfairTreatment }, Choices: ch(
		"speak_up", "Speak up immediately, even if it's uncomfortable",
		"assess_situation", "Assess the situation and choose the right moment to intervene",
		"private_support", "Support the person privately after the incident",
		"own_responsibilities", "Focus on my own responsibilities and avoid involvement",
	)},
	{Field: "success_definition", Required: true, ptr: func(r *QuestionnaireResponse) *string { return &r.SuccessDefinition }, Choices: ch(
		"financial_security", "Achieving financial security and material comfort",
		"relationships", "Building meaningful relationships and connections",
		"positive_impact", "Making a positive impact on others and society",
		"personal_growth", "Personal growth and self-actualization",
	)},
	{Field: "forgiveness_role", Required: true, ptr: func(r *QuestionnaireResponse) *string { return &r.ForgivenessRole }, Choices: ch(
		"forgive_easily", "I forgive easily and don't hold grudges",
		"takes_time", "I forgive but it takes time and effort",
		"difficult", "I find it difficult to forgive serious betrayals",
		"situational", "Forgiveness depends on the situation and the person's remorse",
	)},
	{Field: "coping_failure", Required: true, ptr: func(r *QuestionnaireResponse) *string { return &r.CopingFailure }, Choices: ch(
		"analyze_learn", "I analyze what went wrong and learn from it",
		"seek_support", "I seek support from friends or family",
		"process_emotions", "I give myself time to process emotions",
		"dwell", "I tend to dwell on it and find it hard to move forward",
	)},
	{Field: "learning_cultures", Required: true, ptr: func(r *QuestionnaireResponse) *string { return &r.LearningCultures }, Choices: ch(
		"actively_curious", "I'm actively curious and seek out diverse experiences",
		"opportunities", "I learn when opportunities present themselves",
		"stick_known", "I prefer to stick to what I know and understand",
		"challenging", "I find it challenging but recognize its importance",
	)},
	{Field: "empathy_definition", Required: true, FreeText: true, ptr: func(r *QuestionnaireResponse) *string { return &r.EmpathyDefinition }, Choices: ch(
		"understanding", "Understanding and sharing the feelings of others",
		"compassion", "Feeling compassion and wanting to help",
		"perspective_taking", "Seeing things from another's perspective",
		"emotional_resonance", "Feeling a deep emotional connection with others",
	)},
	{Field: "values_conflict", Required: true, ptr: func(r *QuestionnaireResponse) *string { return &r.ValuesConflict }, Choices: ch(
		"open_dialogue", "I engage in open dialogue to understand different perspectives",
		"avoid_conflict", "I avoid conflict and try to keep the peace",
		"assertive", "I assert my values while respecting others",
		"flexible", "I adapt my values based on the situation",
	)},
	{Field: "help_motivation", Required: true, FreeText: true, ptr: func(r *QuestionnaireResponse) *string { return &r.HelpMotivation }, Choices: ch(
		"intrinsic", "I help others because it feels intrinsically rewarding",
		"extrinsic", "I help others to gain recognition or rewards",
		"social", "I help others to strengthen social bonds",
		"obligation", "I help others out of a sense of duty",
	)},
	{Field: "home_concept", ptr: func(r *QuestionnaireResponse) *string { return &r.HomeConcept }, Choices: ch(
		"physical_place", "A physical place where I live",
		"belonging_security", "A feeling of belonging and security",
		"loved_ones", "Where my loved ones are located",
		"state_of_mind", "A state of mind rather than a location",
	)},
	{Field: "uncertainty_response", ptr: func(r *QuestionnaireResponse) *string { return &r.UncertaintyResponse }, Choices: ch(
		"gather_info", "I gather information and make a plan",
		"seek_advice", "I seek advice from trusted people",
		"feel_anxious", "I feel anxious and prefer to avoid it",
		"embrace_growth", "I embrace it as an opportunity for growth",
	)},
	{Field: "gratitude_role", ptr: func(r *QuestionnaireResponse) *string { return &r.GratitudeRole }, Choices: ch(
		"regularly_express", "I regularly express thanks for what I have",
		"notice_positive", "I notice positive aspects but don't always express it",
		"focus_lacking", "I focus more on what's lacking than what's present",
		"maintain_perspective", "Gratitude helps me maintain perspective during challenges",
	)},
	{Field: "feedback_approach", ptr: func(r *QuestionnaireResponse) *string { return &r.FeedbackApproach }, Choices: ch(
		"give_constructive", "I give constructive feedback thoughtfully",
		"receive_openly", "I receive feedback openly and use it for growth",
		"giving_difficult", "I find giving feedback difficult",
		"receiving_challenging", "I find receiving feedback challenging",
	)},
	{Field: "life_balance", ptr: func(r *QuestionnaireResponse) *string { return &r.LifeBalance }, Choices: ch(
		"equal_time", "Equal time spent on work, relationships, and self-care",
		"harmony", "Harmony between different aspects of life",
		"juggle_responsibilities", "The ability to juggle multiple responsibilities",
		"know_priorities", "Knowing when to prioritize different areas",
	)},
	{Field: "trust_definition", ptr: func(r *QuestionnaireResponse) *string { return &r.TrustDefinition }, Choices: ch(
		"reliability", "Reliability and keeping promises",
		"emotional_safety", "Emotional safety and vulnerability",
		"shared_values", "Shared values and mutual respect",
		"time_consistency", "Time and consistency in actions",
	)},
	{Field: "struggling_thoughts", ptr: func(r *QuestionnaireResponse) *string { return &r.StrugglingThoughts }, Choices: ch(
		"want_to_help", "I want to help them through this",
		"learn_experience", "I wonder what I can learn from their experience",
		"feel_grateful", "I feel grateful that I'm not in their situation",
		"feel_overwhelmed", "I feel overwhelmed and unsure how to help",
	)},
	{Field: "difficult_conversations", ptr: func(r *QuestionnaireResponse) *string { return &r.DifficultConversations }, Choices: ch(
		"prepare_carefully", "I prepare thoroughly and choose words carefully",
		"speak_from_heart", "I speak from the heart and express emotions",
		"avoid_when_possible", "I avoid them when possible",
		"address_directly", "I address issues directly and honestly",
	)},
	{Field: "life_meaning", ptr: func(r *QuestionnaireResponse) *string { return &r.LifeMeaning }, Choices: ch(
		"career_success", "Career achievements and professional success",
		"relationships", "Relationships and connections with others",
		"personal_growth", "Personal growth and self-discovery",
		"contribute_larger", "Contributing to something larger than myself",
	)},
	{Field: "change_response", ptr: func(r *QuestionnaireResponse) *string { return &r.ChangeResponse }, Choices: ch(
		"embrace_opportunity", "I embrace it as an opportunity for new experiences",
		"adapt_gradually", "I adapt gradually and give myself time",
		"resist_stability", "I resist it and prefer stability",
		"reinvent_myself", "I see it as a chance to reinvent myself",
	)},
	{Field: "emotion_processing", ptr: func(r *QuestionnaireResponse) *string { return &r.EmotionProcessing }, Choices: ch(
		"talk_trusted", "I talk about them with trusted people",
		"write_journal", "I write or journal about my feelings",
		"physical_activity", "I engage in physical activity or hobbies",
		"suppress_later", "I suppress them until I can deal with them later",
	)},
	{Field: "boundaries_approach", ptr: func(r *QuestionnaireResponse) *string { return &r.BoundariesApproach }, Choices: ch(
		"clearly_communicate", "I clearly communicate my limits and needs",
		"difficult_important", "I find it difficult but know it's important",
		"prioritize_others", "I tend to prioritize others' needs over mine",
		"set_feel_guilty", "I set boundaries but feel guilty about it",
	)},
	{Field: "vulnerability_strength", ptr: func(r *QuestionnaireResponse) *string { return &r.VulnerabilityStrength }, Choices: ch(
		"sign_true_strength", "Vulnerability is a sign of true strength",
		"never_show", "Strength means never showing vulnerability",
		"can_coexist", "They can coexist - being strong includes being vulnerable",
		"makes_weak", "Vulnerability makes you weak in others' eyes",
	)},
	{Field: "self_reflection_frequency", ptr: func(r *QuestionnaireResponse) *string { return &r.SelfReflectionFrequency }, Choices: ch(
		"daily", "Daily - it's a regular practice for me",
		"weekly", "Weekly - when I have time to think deeply",
		"occasionally", "Occasionally - during significant life events",
		"rarely", "Rarely - I prefer to stay busy and active",
		"never", "Never - I don't see the value in it",
	)},
	{Field: "change_mind_frequency", ptr: func(r *QuestionnaireResponse) *string { return &r.ChangeMindFrequency }, Choices: ch(
		"frequently", "Frequently - I'm open to new information",
		"sometimes", "Sometimes - when presented with compelling evidence",
		"rarely", "Rarely - I tend to stick to my initial decisions",
		"never", "Never - once I decide, that's it",
	)},
	{Field: "admit_fault_frequency", ptr: func(r *QuestionnaireResponse) *string { return &r.AdmitFaultFrequency }, Choices: ch(
		"always", "Always - accountability is important to me",
		"often", "Often - when I'm clearly in the wrong",
		"sometimes", "Sometimes - depends on the situation",
		"rarely", "Rarely - I find it difficult to admit mistakes",
		"never", "Never - I prefer to avoid confrontation",
	)},
	{Field: "active_listening_definition", ptr: func(r *QuestionnaireResponse) *string { return &r.ActiveListeningDefinition }, Choices: ch(
		"focus_speaker", "Fully focusing on the speaker without distractions",
		"understand_words_emotions", "Understanding both words and emotions being conveyed",
		"ask_questions", "Asking clarifying questions to ensure comprehension",
		"remember_details", "Remembering details for future reference",
		"all_above", "All of the above",
	)},
	{Field: "human_being_definition", ptr: func(r *QuestionnaireResponse) *string { return &r.HumanBeingDefinition }, Choices: ch(
		"imperfect_learning", "Being imperfect and learning from mistakes",
		"connect_emotionally", "Connecting with others on an emotional level",
		"experience_emotions", "Experiencing the full range of emotions",
		"seek_meaning", "Seeking meaning and purpose in life",
		"all_above_human", "All of the above",
	)},
	{Field: "self_love_level", ptr: func(r *QuestionnaireResponse) *string { return &r.SelfLoveLevel }, Choices: ch(
		"completely_unconditionally", "Yes, completely and unconditionally",
		"working_on_it", "Yes, but I'm still working on it",
		"sometimes", "Sometimes, it depends on the day",
		"struggle", "No, I struggle with self-acceptance",
		"not_sure", "I'm not sure what that means",
	)},
	{Field: "true_happiness_knowledge", ptr: func(r *QuestionnaireResponse) *string { return &r.TrueHappinessKnowledge }, Choices: ch(
		"content_peace", "I feel content and at peace with my life",
		"joy_everyday", "I experience joy in everyday moments",
		"purpose_fulfillment", "I have a sense of purpose and fulfillment",
		"express_gratitude", "I can express gratitude for what I have",
		"all_above_happy", "All of the above",
	)},
	{Field: "emotional_intelligence_definition", ptr: func(r *QuestionnaireResponse) *string { return &r.EmotionalIntelligenceDefinition }, Choices: ch(
		"aware_emotions", "Being aware of your own emotions and others'",
		"manage_effectively", "Managing emotions effectively in difficult situations",
		"understand_dynamics", "Understanding social dynamics and relationships",
		"guide_decisions", "Using emotions to guide decision-making",
		"all_above_ei", "All of the above",
	)},
	{Field: "personal_growth_definition", ptr: func(r *QuestionnaireResponse) *string { return &r.PersonalGrowthDefinition }, Choices: ch(
		"learn_skills", "Learning new skills and knowledge",
		"emotional_maturity", "Developing emotional maturity",
		"better_relationships", "Building better relationships",
		"overcome_challenges", "Overcoming personal challenges",
		"continuous_improvement", "Continuous self-improvement in all areas",
	)},
	{Field: "most_authentic_feeling", ptr: func(r *QuestionnaireResponse) *string { return &r.MostAuthenticFeeling }, Choices: ch(
		"when_alone", "When I'm alone and can be myself",
		"with_close_ones", "When I'm with close friends or family",
		"pursuing_passions", "When I'm pursuing my passions",
		"helping_others", "When I'm helping others",
		"being_creative", "When I'm being creative or expressive",
	)},
	{Field: "stranger_interaction_motivation", ptr: func(r *QuestionnaireResponse) *string { return &r.StrangerInteractionMotivation }, Choices: ch(
		"right_thing", "It's the right thing to do",
		"inherent_worth", "I believe in the inherent worth of all people",
		"positive_effects", "Kindness creates positive ripple effects",
		"feel_good", "It makes me feel good about myself",
		"all_above", "All of the above",
	)},
}
