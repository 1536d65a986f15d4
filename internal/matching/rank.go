package matching

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"github.com/spigell/vkinder/internal/logger"
	"github.com/spigell/vkinder/internal/profile"
	"github.com/spigell/vkinder/internal/tokenizer"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultWorkers = 4
	DefaultTimeout = 15 * time.Second
)

// FriendLookup returns the number of mutual friends of two users.
type FriendLookup func(ctx context.Context, requesterID, candidateID int64) (int, error)

// GroupLookup returns the ids of groups a user belongs to.
type GroupLookup func(ctx context.Context, userID int64) ([]int64, error)

type RankerConfig struct {
	Weights Weights
	Workers int
	// Timeout bounds a whole ranking call. Zero disables it.
	Timeout time.Duration
}

type RankerDeps struct {
	Logger    *zap.Logger
	Friends   FriendLookup
	Groups    GroupLookup
	StopWords tokenizer.StopWords
}

// Ranker orders candidates by similarity to a requester. It keeps no state between calls.
type Ranker struct {
	weights Weights
	workers int
	timeout time.Duration

	friends FriendLookup
	groups  GroupLookup
	stop    tokenizer.StopWords
	logger  *zap.Logger
}

// Scored pairs a candidate with its aggregate score.
type Scored struct {
	Profile *profile.Profile
	Score   int
}

func NewRanker(cfg *RankerConfig, deps *RankerDeps) *Ranker {
	if cfg == nil {
		cfg = &RankerConfig{Weights: DefaultWeights(), Workers: DefaultWorkers, Timeout: DefaultTimeout}
	}
	if deps == nil {
		deps = &RankerDeps{}
	}

	workers := cfg.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}

	return &Ranker{
		weights: cfg.Weights,
		workers: workers,
		timeout: cfg.Timeout,
		friends: deps.Friends,
		groups:  deps.Groups,
		stop:    deps.StopWords,
		logger:  logger.WithFields(deps.Logger),
	}
}

// Rank returns candidates ordered by descending score. Equal scores keep input order.
func (r *Ranker) Rank(ctx context.Context, requester *profile.Profile, candidates []*profile.Profile) []*profile.Profile {
	scored, _ := r.Score(ctx, requester, candidates)
	return r.toProfiles(scored)
}

func (r *Ranker) toProfiles(scored []Scored) []*profile.Profile {
	ordered := make([]*profile.Profile, 0, len(scored))
	for _, s := range scored {
		ordered = append(ordered, s.Profile)
	}
	return ordered
}

// Score is Rank with scores kept. The flag is false when the timeout hit before
// every relation lookup finished. Profile fields are still scored then, and
// relation points cover only the candidates whose lookups completed.
func (r *Ranker) Score(ctx context.Context, requester *profile.Profile, candidates []*profile.Profile) ([]Scored, bool) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	relations, complete := r.lookupRelations(ctx, requester.ID, candidates)
	if !complete {
		r.logger.Warn("ranking timed out, relation scores are partial",
			zap.Int("candidates", len(candidates)),
			zap.Int("looked_up", countDone(relations)),
			zap.Duration("timeout", r.timeout),
		)
	}

	base := r.featuresOf(requester)
	scored := make([]Scored, len(candidates))
	for i, c := range candidates {
		score := r.score(base, requester, c) + relations[i].score()
		scored[i] = Scored{Profile: c, Score: score}
		r.logger.Debug("candidate scored",
			zap.Int64("candidate_id", c.ID),
			zap.Int("score", score),
			zap.Int("mutual_friends", relations[i].friends),
			zap.Int("mutual_groups", len(relations[i].groups)),
		)
	}

	slices.SortStableFunc(scored, func(a, b Scored) int {
		return cmp.Compare(b.Score, a.Score)
	})
	return scored, complete
}

type relation struct {
	done    bool
	friends int
	groups  map[int64]struct{}
}

func (rel relation) score() int {
	if !rel.done {
		return 0
	}
	return EvaluateMutualFriends(rel.friends) + EvaluateMutualGroups(rel.groups)
}

func countDone(relations []relation) int {
	n := 0
	for _, rel := range relations {
		if rel.done {
			n++
		}
	}
	return n
}

// relationSlots collects lookup results from workers that may outlive the ranking call.
type relationSlots struct {
	mu    sync.Mutex
	slots []relation
}

func (s *relationSlots) set(i int, rel relation) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rel.done = true
	s.slots[i] = rel
}

func (s *relationSlots) snapshot() []relation {
	s.mu.Lock()
	defer s.mu.Unlock()

	return slices.Clone(s.slots)
}

// lookupRelations fans out the external lookups. It returns false when ctx
// expires first, with only the finished slots marked done.
func (r *Ranker) lookupRelations(ctx context.Context, requesterID int64, candidates []*profile.Profile) ([]relation, bool) {
	results := &relationSlots{slots: make([]relation, len(candidates))}
	if r.friends == nil && r.groups == nil {
		for i := range candidates {
			results.set(i, relation{})
		}
		return results.snapshot(), true
	}

	done := make(chan struct{})
	go func() {
		defer close(done)

		own := r.groupSet(ctx, requesterID)

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(r.workers)
		for i, c := range candidates {
			g.Go(func() error {
				results.set(i, relation{
					friends: r.mutualFriends(gctx, requesterID, c.ID),
					groups:  r.mutualGroups(gctx, own, c.ID),
				})
				return nil
			})
		}
		_ = g.Wait()
	}()

	select {
	case <-done:
		return results.snapshot(), true
	case <-ctx.Done():
		select {
		case <-done:
			return results.snapshot(), true
		default:
			return results.snapshot(), false
		}
	}
}

func (r *Ranker) mutualFriends(ctx context.Context, requesterID, candidateID int64) int {
	if r.friends == nil {
		return 0
	}
	n, err := r.friends(ctx, requesterID, candidateID)
	if err != nil {
		r.logger.Warn("mutual friends lookup failed",
			zap.Int64("candidate_id", candidateID),
			zap.Error(err),
		)
		return 0
	}
	return n
}

func (r *Ranker) groupSet(ctx context.Context, userID int64) map[int64]struct{} {
	if r.groups == nil {
		return nil
	}
	ids, err := r.groups(ctx, userID)
	if err != nil {
		r.logger.Warn("groups lookup failed",
			zap.Int64("user_id", userID),
			zap.Error(err),
		)
		return nil
	}
	set := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

func (r *Ranker) mutualGroups(ctx context.Context, own map[int64]struct{}, candidateID int64) map[int64]struct{} {
	if len(own) == 0 {
		return nil
	}
	theirs := r.groupSet(ctx, candidateID)
	common := make(map[int64]struct{})
	for id := range theirs {
		if _, ok := own[id]; ok {
			common[id] = struct{}{}
		}
	}
	return common
}

// features are the tokenized free-text fields of one profile.
type features struct {
	activities, interests, inspiredBy tokenizer.Set
	music, movies, tv, books, games   tokenizer.Set
}

func (r *Ranker) featuresOf(p *profile.Profile) features {
	words := func(s *string) tokenizer.Set {
		if s == nil {
			return nil
		}
		return tokenizer.Words(*s, r.stop)
	}
	phrases := func(s *string) tokenizer.Set {
		if s == nil {
			return nil
		}
		return tokenizer.Phrases(*s)
	}

	return features{
		activities: words(p.Activities),
		interests:  words(p.Interests),
		inspiredBy: words(p.InspiredBy),
		music:      phrases(p.Music),
		movies:     phrases(p.Movies),
		tv:         phrases(p.TV),
		books:      phrases(p.Books),
		games:      phrases(p.Games),
	}
}

func (r *Ranker) score(base features, requester, c *profile.Profile) int {
	f := r.featuresOf(c)
	w := r.weights

	return CompareAge(requester.Age, c.Age) +
		CompareCity(requester.CityID, c.CityID) +
		EvaluateRelations(c.Relation) +
		CompareLanguages(requester.Languages, c.Languages) +
		overlap(base.activities, f.activities, w.Activities) +
		overlap(base.interests, f.interests, w.Interests) +
		overlap(base.inspiredBy, f.inspiredBy, w.InspiredBy) +
		overlap(base.music, f.music, w.Music) +
		overlap(base.movies, f.movies, w.Movies) +
		overlap(base.tv, f.tv, w.TV) +
		overlap(base.books, f.books, w.Books) +
		overlap(base.games, f.games, w.Games) +
		CompareMainThings(requester.Political, c.Political) +
		CompareMainThings(requester.ReligionID, c.ReligionID) +
		CompareMainThings(requester.LifeMain, c.LifeMain) +
		CompareMainThings(requester.PeopleMain, c.PeopleMain) +
		CompareSmokingAlcohol(requester.Smoking, c.Smoking) +
		CompareSmokingAlcohol(requester.Alcohol, c.Alcohol)
}
