package services

import (
	"bytes"
	"encoding/csv"
	"sort"
	"strconv"
	"time"
)

// ScoreRow is one respondent in the scores export. Key is a pseudonym.
type ScoreRow struct {
	Key         string
	Scores      PersonalityScores
	Archetype   Archetype
	SubmittedAt time.Time
}

// CompatibilityRow is one stored pair in the compatibilities export.
type CompatibilityRow struct {
	KeyA         string
	KeyB         string
	Score        float64
	Flags        SharedFlags
	CalculatedAt time.Time
}

// ExportScoresCSV renders one row per respondent with every dimension score.
func ExportScoresCSV(rows []ScoreRow) ([]byte, error) {
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Key < rows[j].Key })
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	header := []string{"respondent"}
	for _, d := range ScoredDimensions() {
		header = append(header, string(d))
	}
	header = append(header, string(SuccessDefinition), "archetype", "submitted_at")
	_ = w.Write(header)
	for _, r := range rows {
		rec := make([]string, 0, len(header))
		rec = append(rec, r.Key)
		for _, d := range ScoredDimensions() {
			rec = append(rec, strconv.Itoa(r.Scores.Score(d)))
		}
		rec = append(rec, r.Scores.SuccessDefinition, string(r.Archetype), formatTime(r.SubmittedAt))
		if err := w.Write(rec); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

// ExportCompatibilitiesCSV renders stored pairs, highest score first.
func ExportCompatibilitiesCSV(rows []CompatibilityRow) ([]byte, error) {
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Score == rows[j].Score {
			if rows[i].KeyA == rows[j].KeyA {
				return rows[i].KeyB < rows[j].KeyB
			}
			return rows[i].KeyA < rows[j].KeyA
		}
		return rows[i].Score > rows[j].Score
	})
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	_ = w.Write([]string{"respondent_a", "respondent_b", "score", "shared_empathy", "shared_growth", "shared_relationships", "shared_values", "calculated_at"})
	for _, r := range rows {
		rec := []string{
			r.KeyA,
			r.KeyB,
			strconv.FormatFloat(r.Score, 'f', 1, 64),
			strconv.FormatBool(r.Flags.Empathy),
			strconv.FormatBool(r.Flags.Growth),
			strconv.FormatBool(r.Flags.Relationships),
			strconv.FormatBool(r.Flags.Values),
			formatTime(r.CalculatedAt),
		}
		if err := w.Write(rec); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
