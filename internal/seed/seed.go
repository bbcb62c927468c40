// Package seed generates plausible fake questionnaire respondents for local
// development, demos and property tests.
package seed

import (
	"fmt"
	"strings"

	"github.com/brianvoe/gofakeit/v6"

	"github.com/detox-community/detox/internal/models"
)

// Generator produces deterministic fake respondents for a given seed.
type Generator struct {
	faker *gofakeit.Faker
	// OptionalRate is the probability that an optional question is skipped.
	OptionalRate float64
	// FreeTextRate is the probability that a free-text question gets a label
	// (a sentence) instead of a bare code.
	FreeTextRate float64

	emails map[string]struct{}
}

func New(seed int64) *Generator {
	return &Generator{
		faker:        gofakeit.New(seed),
		OptionalRate: 0.25,
		FreeTextRate: 0.5,
		emails:       map[string]struct{}{},
	}
}

// Response returns one fully answered questionnaire with a unique email.
func (g *Generator) Response() *models.QuestionnaireResponse {
	f := g.faker
	r := &models.QuestionnaireResponse{
		FirstName:      f.FirstName(),
		LastName:       f.LastName(),
		InvitationCode: strings.ToUpper(f.LetterN(8)),
	}
	r.Email = g.uniqueEmail(r.FirstName, r.LastName)
	for _, q := range models.Questions() {
		if !q.Required && f.Float64Range(0, 1) < g.OptionalRate {
			continue
		}
		c := q.Choices[f.Number(0, len(q.Choices)-1)]
		v := c.Code
		if q.FreeText && f.Float64Range(0, 1) < g.FreeTextRate {
			v = c.Label
		}
		r.SetAnswer(q.Field, v)
	}
	return r
}

// Responses returns n respondents.
func (g *Generator) Responses(n int) []*models.QuestionnaireResponse {
	out := make([]*models.QuestionnaireResponse, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, g.Response())
	}
	return out
}

func (g *Generator) uniqueEmail(first, last string) string {
	local := strings.ToLower(first + "." + last)
	local = strings.Map(func(r rune) rune {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '.' {
			return r
		}
		return -1
	}, local)
	domain := g.faker.DomainName()
	email := fmt.Sprintf("%s@%s", local, domain)
	for i := 2; ; i++ {
		if _, taken := g.emails[email]; !taken {
			break
		}
		email = fmt.Sprintf("%s%d@%s", local, i, domain)
	}
	g.emails[email] = struct{}{}
	return email
}
