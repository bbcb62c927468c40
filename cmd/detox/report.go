package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/detox-community/detox/internal/services"
	"github.com/detox-community/detox/internal/utils"
)

func dimensionLabel(locale string, d services.Dimension) string {
	return utils.T(locale, "dimension."+string(d))
}

func archetypeLabel(locale string, a services.Archetype) string {
	return utils.T(locale, "archetype."+string(a))
}

func renderProfile(w io.Writer, locale string, p *services.ProfileView) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "%s:\t%s <%s>\n", utils.T(locale, "report.profile"), p.Name, p.Email)
	fmt.Fprintf(tw, "%s:\t%s\n", utils.T(locale, "report.archetype"), archetypeLabel(locale, p.Archetype))
	for _, d := range services.ScoredDimensions() {
		fmt.Fprintf(tw, "  %s\t%d/10\n", dimensionLabel(locale, d), p.Scores.Score(d))
	}
	fmt.Fprintf(tw, "  %s\t%s\n", dimensionLabel(locale, services.SuccessDefinition), p.Scores.SuccessDefinition)
	return tw.Flush()
}

func renderComparison(w io.Writer, locale string, c *services.Comparison) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "%s:\t%.1f%%\t%s / %s\n", utils.T(locale, "report.compatibility"), c.Score, c.A.Name, c.B.Name)
	fmt.Fprintf(tw, "%s:\n", utils.T(locale, "report.shared_values"))
	for _, sv := range c.Shared {
		fmt.Fprintf(tw, "  %s\t%s\n", dimensionLabel(locale, sv.Dimension), utils.T(locale, "match."+string(sv.Level)))
	}
	return tw.Flush()
}

func renderMatches(w io.Writer, locale string, ms []services.Match) error {
	if len(ms) == 0 {
		_, err := fmt.Fprintln(w, utils.T(locale, "report.no_matches"))
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "%s:\n", utils.T(locale, "report.matches"))
	for i, m := range ms {
		fmt.Fprintf(tw, "%d.\t%s\t%s\t%.1f%%\t%s\n", i+1, m.Name, m.Email, m.Score, archetypeLabel(locale, m.Archetype))
	}
	return tw.Flush()
}

func renderStats(w io.Writer, locale string, s *services.AnalyticsSummary) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "%s:\t%d\n", utils.T(locale, "report.respondents"), s.TotalResponses)
	fmt.Fprintf(tw, "%s:\t%d\n", utils.T(locale, "report.scored"), s.Scored)
	fmt.Fprintf(tw, "%s:\t%.3f\n", utils.T(locale, "report.alpha"), s.Alpha)
	for _, a := range services.Archetypes() {
		fmt.Fprintf(tw, "  %s\t%d\n", archetypeLabel(locale, a), s.Archetypes[a])
	}
	for _, d := range s.Dimensions {
		fmt.Fprintf(tw, "  %s\t%.2f\n", dimensionLabel(locale, d.Dimension), d.Mean)
	}
	return tw.Flush()
}

func renderAudit(w io.Writer, entries []services.AuditEntry) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", e.Time.Format(time.RFC3339), e.Action, e.Actor, e.Target, e.Note)
	}
	return tw.Flush()
}
