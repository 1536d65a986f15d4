package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/spigell/vkinder/internal/filtering"
	"github.com/spigell/vkinder/internal/lists"
	"github.com/spigell/vkinder/internal/logger"
	"github.com/spigell/vkinder/internal/matching"
	"github.com/spigell/vkinder/internal/profile"
	"github.com/spigell/vkinder/internal/secrets"
	"github.com/spigell/vkinder/internal/session"
	"github.com/spigell/vkinder/internal/tokenizer"
	"github.com/spigell/vkinder/internal/vkontakte"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	PromptNext           = "Next"
	PromptFavourite      = "Add to favourites"
	PromptBlock          = "Block"
	PromptShowFavourites = "Show favourites"
	PromptExit           = "Exit"

	maxInterestsLogLength = 80
)

var errExit = errors.New("exit requested")

var prompt = promptui.Select{
	Label: "What next?",
	Items: []string{PromptNext, PromptFavourite, PromptBlock, PromptShowFavourites, PromptExit},
}

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search for candidates and page through them, best matches first",
	Run: func(cmd *cobra.Command, _ []string) {
		search(cmd)
	},
}

func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().String("city", "", "city id or name to search in (default is the requester's city)")
	searchCmd.Flags().Int("age", 0, "age of candidates (default is the requester's age)")
	searchCmd.Flags().Int("count", 0, "how many users to request from VK (1..1000)")
	searchCmd.Flags().Bool("with-closed", false, "keep closed profiles in results")
	searchCmd.Flags().Int("min-photos", filtering.DefaultMinPhotos, "profile photos a candidate needs to be shown (0 turns the check off)")
	searchCmd.Flags().BoolP("auto", "y", false, "print the ranked list without prompting")

	viper.BindPFlag("search.city", searchCmd.Flags().Lookup("city"))
	viper.BindPFlag("search.age", searchCmd.Flags().Lookup("age"))
	viper.BindPFlag("search.count", searchCmd.Flags().Lookup("count"))
	viper.BindPFlag("search.with-closed", searchCmd.Flags().Lookup("with-closed"))
	viper.BindPFlag("search.min-photos", searchCmd.Flags().Lookup("min-photos"))
}

// search is the main command for the cli.
func search(cmd *cobra.Command) {
	ctx := context.Background()

	logger, err := newLogger()
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the vkinder", zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	vk := newClient(config, logger)

	requester, err := vk.GetUser(ctx, config.RequesterID)
	if err != nil {
		logger.Fatal("getting requester profile", zap.Error(err))
	}

	params, err := searchParams(requester, config.Search)
	if err != nil {
		logger.Fatal("preparing search", zap.Error(err), zap.String("hint", "use --city and --age to fill missing profile data"))
	}

	logger.Info("starting the search",
		zap.Int64("requester_id", requester.ID),
		zap.Int("city", params.City),
		zap.Int("age", params.AgeFrom),
		zap.Stringer("sex", params.Sex),
	)

	found, err := vk.SearchUsers(ctx, params)
	if err != nil {
		logger.Fatal("searching candidates", zap.Error(err))
	}

	logger.Info("got candidates", zap.Int("count", found.Len()))

	stored, err := lists.FromFile(config.ListsFile)
	if err != nil {
		logger.Fatal("reading lists file", zap.Error(err), zap.String("path", config.ListsFile))
	}

	filters := prepareFilters(config, requester, stored, vk, logger)
	found, err = filters.RunFilters(ctx, found)
	if err != nil {
		logger.Fatal("filtering failed", zap.Error(err))
	}

	if found.Len() == 0 {
		logger.Info("exiting", zap.String("reason", "no candidates left after filters"))
		return
	}

	ranker, err := newRanker(config, vk, logger)
	if err != nil {
		logger.Fatal("preparing ranking", zap.Error(err))
	}

	scored, ranked := ranker.Score(ctx, requester, found.Items)
	if !ranked {
		logger.Warn("some relation lookups did not finish, ranking by profile fields for the rest")
	}

	store := session.NewStore()
	s := store.Start(requester.ID, profilesOf(scored))
	pager := &pager{
		session: s,
		store:   store,
		lists:   stored,
		config:  config,
		scores:  scoresOf(scored),
		logger:  sessionLogger(logger, requester.ID, s.ID),
	}

	if cmd.Flag("auto").Value.String() == "true" {
		pager.printAll()
		return
	}

	if err := pager.run(); err != nil && !errors.Is(err, errExit) {
		logger.Fatal("exiting", zap.Error(err))
	}
}

func newClient(config *Config, logger *zap.Logger) *vkontakte.Client {
	token, err := resolveToken(config)
	if err != nil {
		logger.Fatal(
			"loading vk token",
			zap.Error(err),
			zap.String("hint", "set VK_TOKEN_FILE or VK_TOKEN environment variable or the 'token-file' key in the configuration file"),
		)
	}

	vk, err := vkontakte.New(logger, token, config.API)
	if err != nil {
		logger.Fatal("creating vk client", zap.Error(err))
	}
	return vk
}

func resolveToken(config *Config) (string, error) {
	if config == nil {
		return "", errors.New("config is required")
	}

	tokenFile := strings.TrimSpace(config.TokenFile)
	if tokenFile == "" {
		tokenFile = strings.TrimSpace(viper.GetString("token-file"))
	}

	return secrets.Load(secrets.Source{
		Name:  "vk token",
		File:  tokenFile,
		Env:   "VK_TOKEN",
		Value: config.Token,
	})
}

// searchParams derives the demographic filter from the requester. Config values override it.
func searchParams(requester *profile.Profile, cfg *SearchConfig) (*vkontakte.SearchParams, error) {
	if requester.Sex == nil || *requester.Sex == profile.SexUnknown {
		return nil, errors.New("requester sex is unknown")
	}

	var city int
	switch {
	case strings.TrimSpace(cfg.City) != "":
		id, ok := vkontakte.CityID(cfg.City)
		if !ok {
			return nil, fmt.Errorf("unknown city %q, use a numeric VK city id", cfg.City)
		}
		city = id
	case requester.CityID != nil:
		city = *requester.CityID
	default:
		return nil, errors.New("requester city is unknown")
	}

	age := cfg.Age
	if age == 0 {
		if requester.Age == nil {
			return nil, errors.New("requester age is unknown")
		}
		age = *requester.Age
	}

	return &vkontakte.SearchParams{
		City:     city,
		Sex:      requester.Sex.Opposite(),
		AgeFrom:  age,
		AgeTo:    age,
		HasPhoto: true,
		Count:    cfg.Count,
	}, nil
}

func prepareFilters(config *Config, requester *profile.Profile, stored *lists.Lists, vk *vkontakte.Client, logger *zap.Logger) *filtering.Filtering {
	deps := &filtering.ListDeps{
		Lists:       stored,
		RequesterID: requester.ID,
		Logger:      logger,
	}

	filters := filtering.New([]filtering.Filter{
		filtering.NewSelf(requester.ID),
		filtering.NewClosed(logger),
		filtering.NewBlacklist(deps),
		filtering.NewFavourites(deps),
		// last, it costs one API call per candidate
		filtering.NewPhotos(&filtering.PhotoDeps{
			Photos: vk.ProfilePhotos,
			Min:    config.Search.MinPhotos,
			Logger: logger,
		}),
	}, logger)

	if config.Search.WithClosed {
		filters.DisableByName("closed", "with-closed is set")
	}
	if config.Search.MinPhotos == 0 {
		filters.DisableByName("photos", "min-photos is 0")
	}

	return filters
}

func newRanker(config *Config, vk *vkontakte.Client, logger *zap.Logger) (*matching.Ranker, error) {
	if err := config.Ranking.Weights.Validate(); err != nil {
		return nil, err
	}

	stop, err := tokenizer.LoadStopWords(config.Ranking.StopWordsFile)
	if err != nil {
		return nil, err
	}

	logger.Debug("ranking prepared",
		zap.Int("stop_words", stop.Len()),
		zap.Int("workers", config.Ranking.Workers),
		zap.Duration("timeout", config.rankingTimeout()),
	)

	return matching.NewRanker(&matching.RankerConfig{
		Weights: config.Ranking.Weights,
		Workers: config.Ranking.Workers,
		Timeout: config.rankingTimeout(),
	}, &matching.RankerDeps{
		Logger:    logger,
		Friends:   vk.MutualFriendCount,
		Groups:    vk.Groups,
		StopWords: stop,
	}), nil
}

func sessionLogger(l *zap.Logger, requesterID int64, sessionID string) *zap.Logger {
	return logger.WithSession(l, requesterID, sessionID)
}

func profilesOf(scored []matching.Scored) []*profile.Profile {
	result := make([]*profile.Profile, 0, len(scored))
	for _, s := range scored {
		result = append(result, s.Profile)
	}
	return result
}

func scoresOf(scored []matching.Scored) map[int64]int {
	result := make(map[int64]int, len(scored))
	for _, s := range scored {
		result[s.Profile.ID] = s.Score
	}
	return result
}

type pager struct {
	session *session.Session
	store   *session.Store
	lists   *lists.Lists
	config  *Config
	scores  map[int64]int
	logger  *zap.Logger
}

func (p *pager) run() error {
	defer p.finish()

	current, err := p.session.Current()
	if err != nil {
		return p.exhausted(err)
	}
	p.show(current)

	for {
		_, action, err := prompt.Run()
		if err != nil {
			return err
		}

		if p.expired() {
			p.logger.Info("exiting", zap.String("reason", "session expired"))
			return errExit
		}

		current, err = p.handleAction(action, current)
		if err != nil {
			return p.exhausted(err)
		}
	}
}

// expired drops idle sessions and reports whether ours was one of them.
func (p *pager) expired() bool {
	if p.config.Search.IdleTimeout <= 0 {
		return false
	}
	p.store.Sweep(p.config.Search.IdleTimeout)
	_, err := p.store.Get(p.session.RequesterID)
	return errors.Is(err, session.ErrNotFound)
}

func (p *pager) handleAction(action string, current *profile.Profile) (*profile.Profile, error) {
	switch action {
	case PromptNext:
	case PromptFavourite:
		if err := p.addTo(lists.Favourites, current); err != nil {
			return nil, err
		}
	case PromptBlock:
		if err := p.addTo(lists.Blacklist, current); err != nil {
			return nil, err
		}
	case PromptShowFavourites:
		p.showFavourites()
		return current, nil
	case PromptExit:
		p.logger.Info("exiting", zap.String("reason", "got exit from prompt"))
		return nil, errExit
	default:
		return nil, fmt.Errorf("invalid action: %s", action)
	}

	next, err := p.session.Next()
	if err != nil {
		return nil, err
	}
	p.show(next)
	return next, nil
}

func (p *pager) addTo(kind lists.Kind, candidate *profile.Profile) error {
	added, err := p.lists.Add(p.session.RequesterID, kind, lists.NewEntry(candidate))
	if err != nil {
		return err
	}

	if err := p.lists.ToFile(p.config.ListsFile); err != nil {
		return fmt.Errorf("saving lists: %w", err)
	}

	p.logger.Info("list updated",
		zap.String("list", string(kind)),
		zap.Int64("candidate_id", candidate.ID),
		zap.Bool("added", added),
	)
	return nil
}

func (p *pager) show(candidate *profile.Profile) {
	fields := []zap.Field{
		zap.Int("position", p.session.Position()+1),
		zap.Int("total", p.session.Len()),
		zap.String("name", candidate.Name()),
		zap.String("url", candidate.URL()),
		zap.Int("score", p.scores[candidate.ID]),
	}
	if candidate.Age != nil {
		fields = append(fields, zap.Int("age", *candidate.Age))
	}
	if candidate.CityTitle != "" {
		fields = append(fields, zap.String("city", candidate.CityTitle))
	}
	if len(candidate.Photos) > 0 {
		urls := make([]string, 0, len(candidate.Photos))
		for _, photo := range candidate.Photos {
			urls = append(urls, photo.URL)
		}
		fields = append(fields, zap.Strings("photos", urls))
	}
	p.logger.Info("candidate", fields...)

	if candidate.Interests != nil {
		p.logger.Debug("candidate interests",
			zap.String("interests", logger.TruncateForLog(*candidate.Interests, maxInterestsLogLength)),
		)
	}
}

func (p *pager) showFavourites() {
	entries := p.lists.Entries(p.session.RequesterID, lists.Favourites)
	if len(entries) == 0 {
		p.logger.Info("favourites list is empty")
		return
	}
	for _, e := range entries {
		p.logger.Info("favourite", zap.String("name", e.Name), zap.String("url", e.URL))
	}
}

func (p *pager) printAll() {
	defer p.finish()

	for current, err := p.session.Current(); err == nil; current, err = p.session.Next() {
		p.show(current)
	}
}

func (p *pager) exhausted(err error) error {
	if errors.Is(err, session.ErrExhausted) {
		p.logger.Info("exiting", zap.String("reason", "no more candidates"))
		return errExit
	}
	return err
}

func (p *pager) finish() {
	if err := p.store.Finish(p.session.RequesterID); err == nil {
		p.logger.Info("search finished",
			zap.Int("shown", min(p.session.Position()+1, p.session.Len())),
			zap.Int("total", p.session.Len()),
			zap.Int("favourites", len(p.lists.IDs(p.session.RequesterID, lists.Favourites))),
		)
	}
}
