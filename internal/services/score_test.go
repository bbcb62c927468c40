package services

import (
	"reflect"
	"testing"

	"github.com/detox-community/detox/internal/models"
)

// neutralResponse answers every required question with a code no rule rewards.
func neutralResponse() *models.QuestionnaireResponse {
	return &models.QuestionnaireResponse{
		Email:                    "neutral@example.com",
		FirstName:                "Nia",
		LastName:                 "Neutral",
		MotivationHelpOthers:     "financial_security",
		HumanNatureView:          "unpredictable",
		FairnessBelief:           "equal_outcomes",
		LongTermGoals:            "security",
		ResponsePersonalStruggle: "practical_solutions",
		ResponseUnfairTreatment:  "own_responsibilities",
		SuccessDefinition:        "financial_security",
		ForgivenessRole:          "difficult",
		CopingFailure:            "dwell",
		LearningCultures:         "stick_known",
		EmpathyDefinition:        "perspective_taking",
		ValuesConflict:           "flexible",
		HelpMotivation:           "extrinsic",
	}
}

// generousResponse picks the highest scoring answer for every question.
func generousResponse() *models.QuestionnaireResponse {
	r := neutralResponse()
	r.Email = "generous@example.com"
	r.ResponsePersonalStruggle = "emotional_support"
	r.EmpathyDefinition = "Compassion and sharing the feelings of others"
	r.StrugglingThoughts = "want_to_help"
	r.LongTermGoals = "positive_impact"
	r.SuccessDefinition = "personal_growth"
	r.PersonalGrowthDefinition = "continuous_improvement"
	r.SelfReflectionFrequency = "daily"
	r.LifeMeaning = "relationships"
	r.TrustDefinition = "shared_values"
	r.BoundariesApproach = "clearly_communicate"
	r.ChangeResponse = "embrace_opportunity"
	r.UncertaintyResponse = "embrace_growth"
	r.ChangeMindFrequency = "frequently"
	r.HelpMotivation = "a duty to make a difference"
	r.StrangerInteractionMotivation = "all_above"
	r.FairnessBelief = "equal_opportunities"
	r.ResponseUnfairTreatment = "speak_up"
	r.CopingFailure = "analyze_learn"
	r.ForgivenessRole = "forgive_easily"
	r.EmotionProcessing = "talk_trusted"
	r.LearningCultures = "actively_curious"
	r.MostAuthenticFeeling = "when_alone"
	r.VulnerabilityStrength = "sign_true_strength"
	r.AdmitFaultFrequency = "always"
	return r
}

func TestClampScore(t *testing.T) {
	cases := []struct {
		in, want int
	}{
		{-3, 0},
		{0, 0},
		{7, 7},
		{10, 10},
		{14, 10},
	}
	for _, c := range cases {
		if got := ClampScore(c.in); got != c.want {
			t.Fatalf("ClampScore(%d)=%d, want %d", c.in, got, c.want)
		}
	}
}

func TestComputeScoresNeutralIsZero(t *testing.T) {
	s, err := ComputeScores(neutralResponse())
	if err != nil {
		t.Fatalf("ComputeScores: %v", err)
	}
	for _, d := range ScoredDimensions() {
		if s.Score(d) != 0 {
			t.Fatalf("%s=%d, want 0", d, s.Score(d))
		}
	}
	if s.SuccessDefinition != "financial_security" {
		t.Fatalf("success_definition not carried through: %q", s.SuccessDefinition)
	}
}

func TestComputeScoresEmpathyScenario(t *testing.T) {
	r := neutralResponse()
	r.ResponsePersonalStruggle = "emotional_support"
	r.StrugglingThoughts = "want_to_help"
	r.EmpathyDefinition = "understanding and sharing feelings"
	s, err := ComputeScores(r)
	if err != nil {
		t.Fatalf("ComputeScores: %v", err)
	}
	if s.EmpathyLevel != 8 {
		t.Fatalf("empathy_level=%d, want 8", s.EmpathyLevel)
	}
}

func TestComputeScoresClampsAdditiveRules(t *testing.T) {
	s, err := ComputeScores(generousResponse())
	if err != nil {
		t.Fatalf("ComputeScores: %v", err)
	}
	want := map[Dimension]int{
		EmpathyLevel:        10, // 3+2+2+3
		GrowthOrientation:   10, // 3+3+3+3
		RelationshipFocus:   7,  // 3+2+2
		OpennessChange:      9,
		HelpMotivation:      7,
		FairnessOrientation: 6,
		ResilienceLevel:     7,
		CulturalCuriosity:   3,
		AuthenticityLevel:   8,
	}
	for d, w := range want {
		if got := s.Score(d); got != w {
			t.Fatalf("%s=%d, want %d", d, got, w)
		}
	}
}

func TestComputeScoresKeywordsAreCaseInsensitive(t *testing.T) {
	r := neutralResponse()
	r.EmpathyDefinition = "COMPASSION"
	r.HelpMotivation = "Out Of DUTY"
	s, err := ComputeScores(r)
	if err != nil {
		t.Fatalf("ComputeScores: %v", err)
	}
	if s.EmpathyLevel != 2 || s.HelpMotivation != 2 {
		t.Fatalf("keyword rules missed: empathy=%d help=%d", s.EmpathyLevel, s.HelpMotivation)
	}
}

func TestComputeScoresLegacyCodes(t *testing.T) {
	r := neutralResponse()
	r.LearningCultures = "actively_curios"
	r.StrangerInteractionMotivation = "all_above_stranger"
	s, err := ComputeScores(r)
	if err != nil {
		t.Fatalf("ComputeScores: %v", err)
	}
	if s.CulturalCuriosity != 3 || s.HelpMotivation != 3 {
		t.Fatalf("legacy codes not scored: cultural=%d help=%d", s.CulturalCuriosity, s.HelpMotivation)
	}
	if r.LearningCultures != "actively_curios" {
		t.Fatalf("input mutated: %q", r.LearningCultures)
	}
}

func TestComputeScoresUnknownCodesContributeNothing(t *testing.T) {
	r := neutralResponse()
	r.ChangeResponse = "teleport"
	r.AdmitFaultFrequency = "ALWAYS"
	s, err := ComputeScores(r)
	if err != nil {
		t.Fatalf("unknown codes must not fail: %v", err)
	}
	if s.OpennessChange != 0 || s.AuthenticityLevel != 0 {
		t.Fatalf("unknown codes contributed: %+v", s)
	}
}

func TestComputeScoresMissingRequired(t *testing.T) {
	r := neutralResponse()
	r.CopingFailure = "  "
	_, err := ComputeScores(r)
	if !IsInvalidInput(err) {
		t.Fatalf("expected InvalidInputError, got %v", err)
	}
	ie := err.(*InvalidInputError)
	if ie.Field != "coping_failure" {
		t.Fatalf("field=%q, want coping_failure", ie.Field)
	}
	if _, err := ComputeScores(nil); !IsInvalidInput(err) {
		t.Fatalf("nil response should be invalid, got %v", err)
	}
}

func TestComputeScoresDeterministic(t *testing.T) {
	r := generousResponse()
	a, _ := ComputeScores(r)
	b, _ := ComputeScores(r)
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("non-deterministic scores: %+v vs %+v", a, b)
	}
}

func TestScoringRulesMatchCatalogue(t *testing.T) {
	var probe models.QuestionnaireResponse
	for _, q := range models.Questions() {
		probe.SetAnswer(q.Field, q.Field)
	}
	for _, rl := range scoringRules {
		q, ok := models.LookupQuestion(rl.field)
		if !ok {
			t.Fatalf("rule references unknown field %s", rl.field)
		}
		if got := rl.get(&probe); got != rl.field {
			t.Fatalf("rule for %s reads field %s", rl.field, got)
		}
		if rl.kind != ruleEquals {
			continue
		}
		for _, code := range rl.values {
			if !q.Allows(code) {
				t.Fatalf("rule code %s is not a choice of %s", code, rl.field)
			}
		}
	}
}

func TestPersonalityScoresJSON(t *testing.T) {
	s, _ := ComputeScores(generousResponse())
	m := s.Map()
	if len(m) != 10 {
		t.Fatalf("expected 10 keys, got %d", len(m))
	}
	b, err := s.MarshalJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var back PersonalityScores
	if err := back.UnmarshalJSON(b); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !reflect.DeepEqual(s, back) {
		t.Fatalf("json mismatch: %+v vs %+v", s, back)
	}
}

// rulePoints is the scoring table written out independently of scoringRules:
// the points one answer contributes to one dimension on its own.
var rulePoints = []struct {
	field string
	value string
	dim   Dimension
	want  int
}{
	{"response_personal_struggle", "emotional_support", EmpathyLevel, 3},
	{"response_personal_struggle", "share_experiences", EmpathyLevel, 2},
	{"empathy_definition", "sharing the load", EmpathyLevel, 2},
	{"empathy_definition", "compassion", EmpathyLevel, 2},
	{"struggling_thoughts", "want_to_help", EmpathyLevel, 3},
	{"struggling_thoughts", "learn_experience", EmpathyLevel, 2},

	{"long_term_goals", "positive_impact", GrowthOrientation, 3},
	{"long_term_goals", "personal_growth", GrowthOrientation, 3},
	{"success_definition", "personal_growth", GrowthOrientation, 3},
	{"success_definition", "positive_impact", GrowthOrientation, 2},
	{"personal_growth_definition", "continuous_improvement", GrowthOrientation, 3},
	{"personal_growth_definition", "overcome_challenges", GrowthOrientation, 2},
	{"personal_growth_definition", "emotional_maturity", GrowthOrientation, 2},
	{"self_reflection_frequency", "daily", GrowthOrientation, 3},
	{"self_reflection_frequency", "weekly", GrowthOrientation, 2},

	{"success_definition", "relationships", RelationshipFocus, 3},
	{"life_meaning", "relationships", RelationshipFocus, 3},
	{"trust_definition", "shared_values", RelationshipFocus, 2},
	{"trust_definition", "emotional_safety", RelationshipFocus, 2},
	{"boundaries_approach", "clearly_communicate", RelationshipFocus, 2},

	{"change_response", "embrace_opportunity", OpennessChange, 3},
	{"change_response", "reinvent_myself", OpennessChange, 3},
	{"uncertainty_response", "embrace_growth", OpennessChange, 3},
	{"change_mind_frequency", "frequently", OpennessChange, 3},
	{"change_mind_frequency", "sometimes", OpennessChange, 2},

	{"help_motivation", "to make a difference", HelpMotivation, 2},
	{"help_motivation", "a sense of duty", HelpMotivation, 2},
	{"stranger_interaction_motivation", "all_above", HelpMotivation, 3},
	{"stranger_interaction_motivation", "inherent_worth", HelpMotivation, 2},
	{"stranger_interaction_motivation", "positive_effects", HelpMotivation, 2},

	{"fairness_belief", "equal_opportunities", FairnessOrientation, 3},
	{"fairness_belief", "effort_merit", FairnessOrientation, 2},
	{"response_unfair_treatment", "speak_up", FairnessOrientation, 3},
	{"response_unfair_treatment", "assess_situation", FairnessOrientation, 2},

	{"coping_failure", "analyze_learn", ResilienceLevel, 3},
	{"coping_failure", "seek_support", ResilienceLevel, 2},
	{"forgiveness_role", "forgive_easily", ResilienceLevel, 2},
	{"forgiveness_role", "takes_time", ResilienceLevel, 1},
	{"emotion_processing", "talk_trusted", ResilienceLevel, 2},
	{"emotion_processing", "write_journal", ResilienceLevel, 2},

	{"learning_cultures", "actively_curious", CulturalCuriosity, 3},
	{"most_authentic_feeling", "being_creative", CulturalCuriosity, 1},

	{"most_authentic_feeling", "when_alone", AuthenticityLevel, 2},
	{"vulnerability_strength", "sign_true_strength", AuthenticityLevel, 3},
	{"vulnerability_strength", "can_coexist", AuthenticityLevel, 2},
	{"admit_fault_frequency", "always", AuthenticityLevel, 3},
	{"admit_fault_frequency", "often", AuthenticityLevel, 2},
}

func TestComputeScoresSingleAnswerPoints(t *testing.T) {
	for _, c := range rulePoints {
		t.Run(c.field+"="+c.value, func(t *testing.T) {
			r := neutralResponse()
			if !r.SetAnswer(c.field, c.value) {
				t.Fatalf("unknown field %s", c.field)
			}
			s, err := ComputeScores(r)
			if err != nil {
				t.Fatalf("ComputeScores: %v", err)
			}
			for _, d := range ScoredDimensions() {
				want := 0
				if d == c.dim {
					want = c.want
				}
				if got := s.Score(d); got != want {
					t.Fatalf("%s=%d, want %d", d, got, want)
				}
			}
		})
	}
}

func TestScoringRulesAllHaveExpectedPoints(t *testing.T) {
	type key struct {
		field string
		dim   Dimension
	}
	covered := map[key]int{}
	for _, c := range rulePoints {
		covered[key{c.field, c.dim}]++
	}
	seen := map[key]int{}
	for _, rl := range scoringRules {
		k := key{rl.field, rl.dim}
		if covered[k] == 0 {
			t.Fatalf("rule %s -> %s has no expected points", rl.field, rl.dim)
		}
		if rl.kind == ruleEquals {
			seen[k] += len(rl.values)
		} else {
			seen[k]++
		}
	}
	for k, n := range covered {
		if seen[k] != n {
			t.Fatalf("%s -> %s: %d expected answers, %d rule values", k.field, k.dim, n, seen[k])
		}
	}
}
