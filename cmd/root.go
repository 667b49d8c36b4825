package cmd

import (
	"errors"
	"log"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/spigell/critique-matcher/internal/matching"
)

const (
	app = "critique-matcher"
)

type Config struct {
	Snapshot string         `mapstructure:"snapshot"`
	Output   string         `mapstructure:"output"`
	Matcher  *MatcherConfig `mapstructure:"matcher"`
	Filters  *FiltersConfig `mapstructure:"filters"`
	AI       *AIConfig      `mapstructure:"ai"`
}

type MatcherConfig struct {
	Generations          int     `mapstructure:"generations"`
	PopulationSize       int     `mapstructure:"population-size"`
	CrossoverProbability float64 `mapstructure:"crossover-probability"`
	MutationProbability  float64 `mapstructure:"mutation-probability"`
	AffinityBonus        float64 `mapstructure:"affinity-bonus"`
	Seed                 int64   `mapstructure:"seed"`
}

type FiltersConfig struct {
	ExcludedUsers []string `mapstructure:"excluded-users"`
	ExcludeFile   string   `mapstructure:"exclude-file"`
	Disabled      []string `mapstructure:"disabled"`
}

type AIConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	Provider        string        `mapstructure:"provider"`
	MinimumFitScore float64       `mapstructure:"minimum-fit-score"`
	Gemini          *GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKeyFile   string `mapstructure:"api-key-file"`
	Model        string `mapstructure:"model"`
	MaxRetries   int    `mapstructure:"max-retries"`
	MaxLogLength int    `mapstructure:"max-log-length"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "critique-matcher pairs resumes waiting for a critique with volunteer critiquers",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	if err := viper.BindEnv("snapshot", "CRITIQUE_MATCHER_SNAPSHOT"); err != nil {
		log.Fatalf("binding CRITIQUE_MATCHER_SNAPSHOT environment variable: %v", err)
	}
	if err := viper.BindEnv("ai.gemini.api-key-file", "GEMINI_API_KEY_FILE"); err != nil {
		log.Fatalf("binding GEMINI_API_KEY_FILE environment variable: %v", err)
	}

	viper.SetDefault("matcher.generations", matching.DefaultGenerations)
	viper.SetDefault("matcher.population-size", matching.DefaultPopulationSize)
	viper.SetDefault("matcher.crossover-probability", matching.DefaultCrossoverProbability)
	viper.SetDefault("matcher.mutation-probability", matching.DefaultMutationProbability)
	viper.SetDefault("matcher.affinity-bonus", matching.DefaultAffinityBonus)

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is critique-matcher.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	// Config needed only for match command. If there is no config, we can skip initialization
	if matchCmd.CalledAs() == "" {
		return
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
	}

	// Everything can be passed with flags, so only an explicit config is required to exist.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile == "" && errors.As(err, &notFound) {
			return
		}
		log.Fatal(err)
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	return config, nil
}

func (c *MatcherConfig) options() matching.Options {
	opts := matching.DefaultOptions()
	if c == nil {
		return opts
	}

	opts.Generations = c.Generations
	opts.PopulationSize = c.PopulationSize
	opts.CrossoverProbability = c.CrossoverProbability
	opts.MutationProbability = c.MutationProbability
	opts.AffinityBonus = c.AffinityBonus
	opts.Seed = c.Seed
	return opts
}
