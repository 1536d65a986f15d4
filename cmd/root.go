package cmd

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spigell/vkinder/internal/filtering"
	"github.com/spigell/vkinder/internal/logger"
	"github.com/spigell/vkinder/internal/matching"
	"github.com/spigell/vkinder/internal/vkontakte"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	app = "vkinder"

	defaultListsFile   = "vkinder-lists.json"
	defaultSearchCount = 100
	defaultIdleTimeout = 30 * time.Minute
)

type Config struct {
	TokenFile string `mapstructure:"token-file"`
	// Token is an inline token. TokenFile and VK_TOKEN take precedence.
	Token       string            `mapstructure:"token"`
	RequesterID int64             `mapstructure:"requester-id" validate:"gte=0"`
	ListsFile   string            `mapstructure:"lists-file" validate:"required"`
	API         *vkontakte.Config `mapstructure:"api" validate:"required"`
	Search      *SearchConfig     `mapstructure:"search" validate:"required"`
	Ranking     *RankingConfig    `mapstructure:"ranking" validate:"required"`
}

type SearchConfig struct {
	// City is a VK city id or a known city name. Empty means the requester's city.
	City string `mapstructure:"city"`
	// Age of candidates. Zero means the requester's age.
	Age         int           `mapstructure:"age" validate:"gte=0,lte=120"`
	Count       int           `mapstructure:"count" validate:"gte=1,lte=1000"`
	WithClosed  bool          `mapstructure:"with-closed"`
	// MinPhotos a candidate needs in the profile album. Zero turns the check off.
	MinPhotos int `mapstructure:"min-photos" validate:"gte=0,lte=10"`
	IdleTimeout time.Duration `mapstructure:"idle-timeout"`
}

type RankingConfig struct {
	// Timeout bounds ranking. Zero derives it from search.count and api.throttle.
	Timeout       time.Duration    `mapstructure:"timeout"`
	Workers       int              `mapstructure:"workers" validate:"gte=1,lte=64"`
	StopWordsFile string           `mapstructure:"stop-words-file"`
	Weights       matching.Weights `mapstructure:"weights"`
}

// Validate checks the config against its struct tags.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.API.Throttle < 0 || c.API.Timeout < 0 || c.Ranking.Timeout < 0 || c.Search.IdleTimeout < 0 {
		return errors.New("invalid config: durations must not be negative")
	}
	if need := c.lookupBudget(); c.Ranking.Timeout > 0 && c.Ranking.Timeout < need {
		return fmt.Errorf("invalid config: ranking.timeout %s is shorter than %s needed to look up %d candidates at api.throttle %s",
			c.Ranking.Timeout, need, c.Search.Count, c.API.Throttle)
	}
	return nil
}

// lookupBudget is how long the relation lookups of a full result page take at
// the API throttle: two calls per candidate plus the requester's groups.
func (c *Config) lookupBudget() time.Duration {
	return time.Duration(2*c.Search.Count+1) * c.API.Throttle
}

// rankingTimeout is ranking.timeout, or the lookup budget plus some slack when unset.
func (c *Config) rankingTimeout() time.Duration {
	if c.Ranking.Timeout > 0 {
		return c.Ranking.Timeout
	}
	return c.lookupBudget() + matching.DefaultTimeout
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "vkinder searches VK for people with similar interests and shows the best matches first",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	if err := viper.BindEnv("token-file", "VK_TOKEN_FILE"); err != nil {
		log.Fatalf("binding VK_TOKEN_FILE environment variable: %v", err)
	}

	setDefaults()

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is vkinder.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")
	rootCmd.PersistentFlags().String("log-output", "stdout", "where to write logs: stdout, stderr or a file path")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	viper.BindPFlag("log-output", rootCmd.PersistentFlags().Lookup("log-output"))
}

func newLogger() (*zap.Logger, error) {
	return logger.Build(logger.Options{
		JSON:   viper.GetBool("json"),
		Debug:  viper.GetBool("debug"),
		Output: viper.GetString("log-output"),
	})
}

func setDefaults() {
	viper.SetDefault("lists-file", defaultListsFile)

	viper.SetDefault("api.version", vkontakte.DefaultVersion)
	viper.SetDefault("api.throttle", vkontakte.DefaultThrottle)
	viper.SetDefault("api.timeout", vkontakte.DefaultTimeout)

	viper.SetDefault("search.count", defaultSearchCount)
	viper.SetDefault("search.idle-timeout", defaultIdleTimeout)
	viper.SetDefault("search.min-photos", filtering.DefaultMinPhotos)

	viper.SetDefault("ranking.workers", matching.DefaultWorkers)

	w := matching.DefaultWeights()
	for name, tiers := range map[string]matching.Tiers{
		"activities":  w.Activities,
		"interests":   w.Interests,
		"inspired-by": w.InspiredBy,
		"music":       w.Music,
		"movies":      w.Movies,
		"tv":          w.TV,
		"books":       w.Books,
		"games":       w.Games,
	} {
		key := "ranking.weights." + name
		viper.SetDefault(key+".one", tiers.One)
		viper.SetDefault(key+".few", tiers.Few)
		viper.SetDefault(key+".many", tiers.Many)
	}
}

func initConfig() {
	// Only commands talking to VK need a config.
	if searchCmd.CalledAs() == "" && favouritesCmd.CalledAs() == "" {
		return
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	err := viper.ReadInConfig()
	if err == nil {
		return
	}

	// Defaults and environment are enough without the default config file.
	var notFound viper.ConfigFileNotFoundError
	if cfgFile == "" && errors.As(err, &notFound) {
		return
	}

	// We can't proceed if the config file parsed with error.
	log.Fatal(err)
}

func getConfig() (*Config, error) {
	var config *Config
	if err := viper.Unmarshal(&config); err != nil {
		return config, err
	}

	if config == nil {
		return nil, errors.New("config is empty")
	}

	if err := config.Validate(); err != nil {
		return config, err
	}

	return config, nil
}
