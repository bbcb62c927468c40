package services

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/detox-community/detox/internal/models"
)

const DefaultMatchLimit = 10

// ProfileView is the scored profile of one respondent.
type ProfileView struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	Email     string            `json:"email"`
	Scores    PersonalityScores `json:"scores"`
	Archetype Archetype         `json:"archetype"`
}

// Match is one candidate in a ranked match list.
type Match struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Email     string      `json:"email"`
	Score     float64     `json:"score"`
	Archetype Archetype   `json:"archetype"`
	Flags     SharedFlags `json:"flags"`
}

// Comparison is the live result of comparing two respondents.
type Comparison struct {
	A      ProfileView   `json:"a"`
	B      ProfileView   `json:"b"`
	Score  float64       `json:"score"`
	Shared []SharedValue `json:"shared_values"`
	Flags  SharedFlags   `json:"flags"`
}

type RecomputeOptions struct {
	Workers   int
	BatchSize int
}

type RecomputeReport struct {
	RunID       string        `json:"run_id"`
	Respondents int           `json:"respondents"`
	Skipped     int           `json:"skipped"`
	Pairs       int64         `json:"pairs"`
	Failed      int64         `json:"failed"`
	Duration    time.Duration `json:"duration"`
}

// MatchService ranks and persists compatibilities between respondents.
type MatchService struct {
	store  MatchStore
	logger *slog.Logger
	salt   string
	now    func() time.Time
	runID  func() string
}

func NewMatchService(store MatchStore, logger *slog.Logger, salt string) *MatchService {
	if logger == nil {
		logger = slog.Default()
	}
	return &MatchService{
		store:  store,
		logger: logger,
		salt:   salt,
		now:    func() time.Time { return time.Now().UTC() },
		runID:  uuid.NewString,
	}
}

type scored struct {
	resp   *models.QuestionnaireResponse
	scores PersonalityScores
}

func (s *MatchService) lookup(ctx context.Context, email string) (*scored, error) {
	if s.store == nil {
		return nil, ErrStoreUnavailable
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, NewInvalidError("email is required")
	}
	r, err := s.store.GetResponseByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, NewNotFoundError("no questionnaire for respondent " + Pseudonym(s.salt, email))
	}
	sc, err := ComputeScores(r)
	if err != nil {
		return nil, err
	}
	return &scored{resp: r, scores: sc}, nil
}

func viewOf(x *scored) ProfileView {
	return ProfileView{
		ID:        x.resp.ID,
		Name:      x.resp.FullName(),
		Email:     x.resp.Email,
		Scores:    x.scores,
		Archetype: ClassifyProfile(x.scores),
	}
}

// Profile scores and classifies one respondent.
func (s *MatchService) Profile(ctx context.Context, email string) (*ProfileView, error) {
	x, err := s.lookup(ctx, email)
	if err != nil {
		return nil, err
	}
	v := viewOf(x)
	return &v, nil
}

// Compare computes a live comparison between two respondents.
func (s *MatchService) Compare(ctx context.Context, emailA, emailB string) (*Comparison, error) {
	a, err := s.lookup(ctx, emailA)
	if err != nil {
		return nil, err
	}
	b, err := s.lookup(ctx, emailB)
	if err != nil {
		return nil, err
	}
	shared := SharedValues(a.scores, b.scores)
	return &Comparison{
		A:      viewOf(a),
		B:      viewOf(b),
		Score:  CompatibilityFromScores(a.scores, b.scores),
		Shared: shared,
		Flags:  FlagsFromShared(shared),
	}, nil
}

// TopMatches scans every other respondent and returns the limit best matches,
// highest score first. Respondents whose answers cannot be scored are skipped.
func (s *MatchService) TopMatches(ctx context.Context, email string, limit int) ([]Match, error) {
	self, err := s.lookup(ctx, email)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultMatchLimit
	}
	all, err := s.store.ListResponses(ctx)
	if err != nil {
		return nil, err
	}
	matches := make([]Match, 0, len(all))
	for _, other := range all {
		if other == nil || other.ID == self.resp.ID {
			continue
		}
		theirs, err := ComputeScores(other)
		if err != nil {
			s.logger.Debug("skipping unscorable respondent", "id", other.ID, "err", err)
			continue
		}
		matches = append(matches, Match{
			ID:        other.ID,
			Name:      other.FullName(),
			Email:     other.Email,
			Score:     CompatibilityFromScores(self.scores, theirs),
			Archetype: ClassifyProfile(theirs),
			Flags:     FlagsFromShared(SharedValues(self.scores, theirs)),
		})
	}
	sortMatches(matches)
	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

func sortMatches(ms []Match) {
	sort.SliceStable(ms, func(i, j int) bool {
		if ms[i].Score == ms[j].Score {
			return ms[i].Email < ms[j].Email
		}
		return ms[i].Score > ms[j].Score
	})
}

// StoredMatches returns the best persisted compatibilities of a respondent.
func (s *MatchService) StoredMatches(ctx context.Context, email string, limit int) ([]Match, error) {
	self, err := s.lookup(ctx, email)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultMatchLimit
	}
	recs, err := s.store.ListCompatibilities(ctx, self.resp.ID, limit)
	if err != nil {
		return nil, err
	}
	out := make([]Match, 0, len(recs))
	for _, rec := range recs {
		other, err := s.store.GetResponse(ctx, rec.Other(self.resp.ID))
		if err != nil {
			return nil, err
		}
		if other == nil {
			continue
		}
		m := Match{ID: other.ID, Name: other.FullName(), Email: other.Email, Score: rec.Score, Flags: rec.Flags}
		if theirs, err := ComputeScores(other); err == nil {
			m.Archetype = ClassifyProfile(theirs)
		}
		out = append(out, m)
	}
	sortMatches(out)
	return out, nil
}

func (s *MatchService) record(a, b *scored, at time.Time) CompatibilityRecord {
	u1, u2 := OrderedPair(a.resp.ID, b.resp.ID)
	return CompatibilityRecord{
		User1ID:      u1,
		User2ID:      u2,
		Score:        CompatibilityFromScores(a.scores, b.scores),
		Flags:        FlagsFromShared(SharedValues(a.scores, b.scores)),
		CalculatedAt: at,
	}
}

func (s *MatchService) scoreAll(ctx context.Context) ([]*scored, int, error) {
	all, err := s.store.ListResponses(ctx)
	if err != nil {
		return nil, 0, err
	}
	out := make([]*scored, 0, len(all))
	skipped := 0
	for _, r := range all {
		if r == nil {
			continue
		}
		sc, err := ComputeScores(r)
		if err != nil {
			skipped++
			s.logger.Warn("respondent cannot be scored", "id", r.ID, "err", err)
			continue
		}
		out = append(out, &scored{resp: r, scores: sc})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].resp.ID < out[j].resp.ID })
	return out, skipped, nil
}

// UpdateFor recomputes and stores a respondent's compatibility with every
// other respondent. It returns the number of pairs written.
func (s *MatchService) UpdateFor(ctx context.Context, email string) (int, error) {
	self, err := s.lookup(ctx, email)
	if err != nil {
		return 0, err
	}
	all, _, err := s.scoreAll(ctx)
	if err != nil {
		return 0, err
	}
	at := s.now()
	recs := make([]CompatibilityRecord, 0, len(all))
	for _, other := range all {
		if other.resp.ID == self.resp.ID {
			continue
		}
		recs = append(recs, s.record(self, other, at))
	}
	if err := s.store.UpsertCompatibilities(ctx, recs); err != nil {
		return 0, err
	}
	s.logger.Info("compatibilities updated", "respondent", Pseudonym(s.salt, self.resp.Email), "pairs", len(recs))
	return len(recs), nil
}

// RecomputeAll recomputes every unordered pair once. Each respondent's pairs
// with later respondents form one task; tasks run on a bounded worker group.
// A failed write is counted and logged without stopping the run.
func (s *MatchService) RecomputeAll(ctx context.Context, opts RecomputeOptions) (*RecomputeReport, error) {
	if s.store == nil {
		return nil, ErrStoreUnavailable
	}
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = 50
	}
	started := s.now()
	report := &RecomputeReport{RunID: s.runID()}
	logger := s.logger.With("run", report.RunID)

	all, skipped, err := s.scoreAll(ctx)
	if err != nil {
		return nil, err
	}
	report.Respondents = len(all)
	report.Skipped = skipped
	logger.Info("recompute started", "respondents", len(all), "workers", opts.Workers)

	var pairs, failed, done atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)
	for i := range all {
		if gctx.Err() != nil {
			break
		}
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			at := s.now()
			recs := make([]CompatibilityRecord, 0, len(all)-i-1)
			for j := i + 1; j < len(all); j++ {
				recs = append(recs, s.record(all[i], all[j], at))
			}
			if len(recs) > 0 {
				if err := s.store.UpsertCompatibilities(gctx, recs); err != nil {
					if gctx.Err() != nil {
						return gctx.Err()
					}
					failed.Add(1)
					logger.Error("store compatibilities", "id", all[i].resp.ID, "err", err)
				} else {
					pairs.Add(int64(len(recs)))
				}
			}
			if n := done.Add(1); n%int64(opts.BatchSize) == 0 {
				logger.Info("recompute progress", "processed", n, "total", len(all))
			}
			return nil
		})
	}
	err = g.Wait()
	if err == nil {
		err = ctx.Err()
	}
	report.Pairs = pairs.Load()
	report.Failed = failed.Load()
	report.Duration = s.now().Sub(started)
	if err != nil {
		logger.Warn("recompute interrupted", "pairs", report.Pairs, "err", err)
		return report, err
	}
	logger.Info("recompute finished", "pairs", report.Pairs, "failed", report.Failed, "skipped", report.Skipped)
	return report, nil
}
