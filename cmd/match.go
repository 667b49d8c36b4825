package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/critique-matcher/internal/ai"
	"github.com/spigell/critique-matcher/internal/ai/gemini"
	"github.com/spigell/critique-matcher/internal/filtering"
	"github.com/spigell/critique-matcher/internal/logger"
	"github.com/spigell/critique-matcher/internal/matching"
	"github.com/spigell/critique-matcher/internal/queue"
	"github.com/spigell/critique-matcher/internal/secrets"
	"github.com/spigell/critique-matcher/internal/utils"
)

const (
	PromptYes                 = "Yes"
	PromptNo                  = "No"
	PromptBack                = "back"
	PromptReportByIndustry    = "Report by industry"
	PromptManualAssign        = "Assign matches in manual mode"
	PromptAppendToExcludeFile = "Append all critiques to exclude file"
	PromptMatchesToFile       = "Dump matches to file"
)

var errExit = errors.New("exit requested")

var prompt = promptui.Select{
	Label: "Procced?",
	Items: []string{PromptYes, PromptNo, PromptReportByIndustry, PromptManualAssign, PromptMatchesToFile},
}

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Pair pending critiques with critiquer requests",
	Run: func(cmd *cobra.Command, _ []string) {
		match(cmd)
	},
}

func init() {
	rootCmd.AddCommand(matchCmd)

	matchCmd.Flags().BoolP("auto-approve", "y", false, "do not ask for confirmation and assign the found matches")
	matchCmd.Flags().StringP("snapshot", "s", "", "queue snapshot file (json or yaml)")
	matchCmd.Flags().StringP("output", "o", "", "where to write the updated snapshot. Default is the snapshot itself.")
	matchCmd.Flags().Int64("seed", 0, "seed for a reproducible matching run. Default is random.")

	viper.BindPFlag("snapshot", matchCmd.Flags().Lookup("snapshot"))
	viper.BindPFlag("output", matchCmd.Flags().Lookup("output"))
	viper.BindPFlag("matcher.seed", matchCmd.Flags().Lookup("seed"))
}

// match is the main command for the cli.
func match(cmd *cobra.Command) {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	if config == nil || strings.TrimSpace(config.Snapshot) == "" {
		logger.Fatal("snapshot is required",
			zap.String("hint", "set --snapshot, CRITIQUE_MATCHER_SNAPSHOT or the 'snapshot' key in the configuration file"),
		)
	}

	logger.Info("starting the critique-matcher", zap.String("version", resolveVersion()))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	snapshot, err := queue.LoadSnapshot(config.Snapshot)
	if err != nil {
		logger.Fatal("loading snapshot", zap.Error(err))
	}

	batch := snapshot.Pending()
	logger.Info("getting pending queue",
		zap.Int("critiques", len(batch.Critiques)),
		zap.Int("critiquer_requests", len(batch.Requests)),
	)

	batch, err = filtering.Run(ctx, filtersConfig(config.Filters), filtering.Deps{Logger: logger}, prepareFilters(config.Filters), batch)
	if err != nil {
		logger.Fatal("filtering failed", zap.Error(err))
	}

	if len(batch.Critiques) == 0 || len(batch.Requests) == 0 {
		logger.Info("exiting", zap.String("reason", "nothing to match after filters"))
		return
	}

	matches, err := findMatches(config, batch, logger)
	if err != nil {
		logger.Fatal("matching failed", zap.Error(err))
	}

	if reviewer, err := newAIReviewer(ctx, config.AI, logger); err != nil {
		logger.Warn("skipping AI review", zap.Error(err))
	} else if reviewer != nil {
		matches, err = filtering.ReviewMatches(ctx, logger, reviewer, matches)
		if err != nil {
			logger.Fatal("AI review failed", zap.Error(err))
		}
	}

	if matches.Len() == 0 {
		logger.Info("exiting", zap.String("reason", "no matches found"))
		return
	}

	output := strings.TrimSpace(config.Output)
	if output == "" {
		output = config.Snapshot
	}

	action := PromptYes
	for {
		var err error
		if cmd.Flag("auto-approve").Value.String() == "false" {
			_, action, err = prompt.Run()
			if err != nil {
				logger.Fatal("exiting", zap.Error(err))
			}
		}

		logger.Info("current list of matches", zap.Int("count", matches.Len()))

		if err := handleAction(action, logger, config, snapshot, &matches, output); err != nil {
			if errors.Is(err, errExit) {
				return
			}
			logger.Fatal("exiting", zap.Error(err))
		}
	}
}

func handleAction(action string, logger *zap.Logger, config *Config, snapshot *queue.Snapshot, matches *queue.Matches, output string) error {
	switch action {
	case PromptYes:
		if err := assign(logger, snapshot, *matches, output); err != nil {
			return err
		}
		return errExit
	case PromptNo:
		logger.Info("exiting", zap.String("reason", "got no from prompt"))
		return errExit
	case PromptManualAssign:
		return manualAssign(logger, config, snapshot, matches, output)
	case PromptReportByIndustry:
		pretty, _ := json.MarshalIndent(matches.ReportByIndustry(), "", "  ")
		logger.Info(string(pretty), zap.Int("matches count", matches.Len()))
		return nil
	case PromptMatchesToFile:
		filename, err := matches.DumpToTmpFile()
		if err != nil {
			return fmt.Errorf("dump results to file: %w", err)
		}
		logger.Info("dumping result to file", zap.String("filename", filename))
		return nil
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

func manualAssign(logger *zap.Logger, config *Config, snapshot *queue.Snapshot, matches *queue.Matches, output string) error {
	excludeFile := ""
	if config.Filters != nil {
		excludeFile = strings.TrimSpace(config.Filters.ExcludeFile)
	}

	for {
		if matches.Len() == 0 {
			return errExit
		}

		items := make([]string, 0, matches.Len()+2)
		for _, m := range *matches {
			items = append(items, fmt.Sprintf("%s %s <- %s / %s / %.2f",
				m.Critique.ID, m.Critique.Industries(), m.Request.ID, m.Request.Industries, m.Fitness,
			))
		}

		if excludeFile != "" {
			items = append(items, PromptAppendToExcludeFile)
		}

		matchPrompt := promptui.Select{
			Label: "Choose a match and press ENTER",
			Items: append(items, PromptBack),
		}

		_, selected, err := matchPrompt.Run()
		if err != nil {
			return err
		}

		switch selected {
		case PromptBack:
			return nil
		case PromptAppendToExcludeFile:
			if err := filtering.AppendExcluded(excludeFile, *matches, "rejected in manual mode"); err != nil {
				return err
			}

			logger.Info("appended to exclude file", zap.String("filename", excludeFile))
			*matches = nil
		default:
			critiqueID := strings.Split(selected, " ")[0]

			chosen, rest := splitByCritique(*matches, critiqueID)
			if chosen == nil {
				return fmt.Errorf("there is no such critique id %s", critiqueID)
			}

			if err := assign(logger, snapshot, queue.Matches{chosen}, output); err != nil {
				return err
			}

			*matches = rest
		}
	}
}

func splitByCritique(matches queue.Matches, critiqueID string) (*queue.Match, queue.Matches) {
	var chosen *queue.Match
	rest := make(queue.Matches, 0, len(matches))
	for _, m := range matches {
		if chosen == nil && m.Critique.ID == critiqueID {
			chosen = m
			continue
		}
		rest = append(rest, m)
	}
	return chosen, rest
}

// assign commits the matches into the snapshot and writes it out atomically.
func assign(logger *zap.Logger, snapshot *queue.Snapshot, matches queue.Matches, output string) error {
	assignments, err := snapshot.Assign(matches, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("assigning matches: %w", err)
	}

	if err := snapshot.WriteFile(output); err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}

	for _, a := range assignments {
		logger.Info("critique matched",
			zap.String("critique_id", a.CritiqueID),
			zap.String("resume_id", a.ResumeID),
			zap.String("critiquer_id", a.CritiquerID),
		)
	}

	logger.Info("successfully matched critiques",
		zap.Int("count", len(assignments)),
		zap.String("snapshot", output),
	)
	return nil
}

func findMatches(config *Config, batch *queue.Batch, base *zap.Logger) (queue.Matches, error) {
	opts := config.Matcher.options()

	matchLogger := logger.WithFields(base, logger.MatchFields(config.Snapshot, opts.Seed)...)

	matcher, err := matching.New(opts, matchLogger)
	if err != nil {
		return nil, err
	}

	report, err := matcher.Run(batch.RequestItems(), batch.CounterpartItems())
	if err != nil {
		return nil, err
	}

	matches, err := batch.Resolve(report.Pairs)
	if err != nil {
		return nil, err
	}

	critiques := make([]string, 0, matches.Len())
	for _, m := range matches {
		critiques = append(critiques, m.Critique.ID)
	}

	matchLogger.Info("matches found",
		zap.Int("count", matches.Len()),
		zap.Float64("best_fitness", report.BestFitness),
		zap.Bool("short_circuit", report.ShortCircuit),
		zap.String("critiques", utils.PreviewIDs(critiques, 10)),
	)

	return matches, nil
}

func filtersConfig(cfg *FiltersConfig) *filtering.Config {
	if cfg == nil {
		return &filtering.Config{}
	}
	return &filtering.Config{
		ExcludedUsers: cfg.ExcludedUsers,
		ExcludeFile:   cfg.ExcludeFile,
	}
}

func prepareFilters(cfg *FiltersConfig) []filtering.Filter {
	steps := filtering.Default()
	if cfg != nil {
		for _, name := range cfg.Disabled {
			filtering.DisableByName(steps, strings.TrimSpace(name), "disabled in config")
		}
	}
	return steps
}

func newAIReviewer(ctx context.Context, cfg *AIConfig, base *zap.Logger) (ai.Reviewer, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, nil
	}

	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))
	if provider != "" && provider != "gemini" {
		return nil, fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}

	if cfg.Gemini == nil {
		return nil, fmt.Errorf("gemini configuration is required when ai review is enabled")
	}
	if strings.TrimSpace(cfg.Gemini.Model) == "" {
		return nil, fmt.Errorf("gemini model is required when ai review is enabled")
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name: "gemini api key",
		File: cfg.Gemini.APIKeyFile,
		Env:  "GEMINI_API_KEY",
	})
	if err != nil {
		return nil, fmt.Errorf("%w (set ai.gemini.api-key-file, GEMINI_API_KEY_FILE or GEMINI_API_KEY)", err)
	}

	aiLogger := logger.WithFields(base, logger.AIFields("gemini", cfg.Gemini.Model)...)

	generator, err := gemini.NewGenerator(ctx, apiKey, cfg.Gemini.Model, cfg.Gemini.MaxRetries,
		aiLogger.With(zap.Int("ai_retry_attempts", cfg.Gemini.MaxRetries)),
	)
	if err != nil {
		return nil, err
	}

	minScore := cfg.MinimumFitScore
	if minScore < 0 {
		minScore = 0
	}

	aiLogger.Info("AI review enabled", zap.Float64("minimum_fit_score", minScore))

	return gemini.NewReviewer(generator, minScore, cfg.Gemini.MaxLogLength, aiLogger), nil
}
