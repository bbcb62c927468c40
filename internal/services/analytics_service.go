package services

import (
	"context"
	"sort"
)

type AnalyticsService struct {
	store AnalyticsStore
}

type AnalyticsDimension struct {
	Dimension Dimension `json:"dimension"`
	Histogram []int     `json:"histogram"` // index = score, 0..10
	Mean      float64   `json:"mean"`
}

type AnalyticsTimeseries struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

type AnalyticsSummary struct {
	TotalResponses int                   `json:"total_responses"`
	Scored         int                   `json:"scored"`
	Archetypes     map[Archetype]int     `json:"archetypes"`
	SuccessAnswers map[string]int        `json:"success_definition"`
	Dimensions     []AnalyticsDimension  `json:"dimensions"`
	Timeseries     []AnalyticsTimeseries `json:"timeseries"`
	Alpha          float64               `json:"alpha"`
}

func NewAnalyticsService(store AnalyticsStore) *AnalyticsService {
	return &AnalyticsService{store: store}
}

func (s *AnalyticsService) Summary(ctx context.Context) (*AnalyticsSummary, error) {
	if s.store == nil {
		return nil, ErrStoreUnavailable
	}
	responses, err := s.store.ListResponses(ctx)
	if err != nil {
		return nil, err
	}
	archetypes := map[Archetype]int{}
	for _, a := range Archetypes() {
		archetypes[a] = 0
	}
	success := map[string]int{}
	countsByDay := map[string]int{}
	dims := buildAnalyticsDimensions()
	var matrix [][]float64
	for _, r := range responses {
		day := r.SubmittedAt.UTC().Format("2006-01-02")
		countsByDay[day]++
		sc, err := ComputeScores(r)
		if err != nil {
			continue
		}
		archetypes[ClassifyProfile(sc)]++
		success[sc.SuccessDefinition]++
		for i := range dims {
			dims[i].Histogram[sc.Score(dims[i].Dimension)]++
		}
		matrix = append(matrix, sc.Vector())
	}
	n := len(matrix)
	for i := range dims {
		if n == 0 {
			break
		}
		total := 0
		for v, c := range dims[i].Histogram {
			total += v * c
		}
		dims[i].Mean = float64(total) / float64(n)
	}
	return &AnalyticsSummary{
		TotalResponses: len(responses),
		Scored:         n,
		Archetypes:     archetypes,
		SuccessAnswers: success,
		Dimensions:     dims,
		Timeseries:     buildTimeseries(countsByDay),
		Alpha:          CronbachAlpha(matrix),
	}, nil
}

func buildAnalyticsDimensions() []AnalyticsDimension {
	out := make([]AnalyticsDimension, 0, 9)
	for _, d := range ScoredDimensions() {
		out = append(out, AnalyticsDimension{Dimension: d, Histogram: make([]int, MaxScore+1)})
	}
	return out
}

func buildTimeseries(counts map[string]int) []AnalyticsTimeseries {
	days := make([]string, 0, len(counts))
	for d := range counts {
		days = append(days, d)
	}
	sort.Strings(days)
	out := make([]AnalyticsTimeseries, 0, len(days))
	for _, d := range days {
		out = append(out, AnalyticsTimeseries{Date: d, Count: counts[d]})
	}
	return out
}
