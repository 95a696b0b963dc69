package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/talentops/shortlister/internal/ai"
	"github.com/talentops/shortlister/internal/ai/gemini"
	"github.com/talentops/shortlister/internal/airtable"
	"github.com/talentops/shortlister/internal/applicant"
	"github.com/talentops/shortlister/internal/currency"
	"github.com/talentops/shortlister/internal/geocode"
	"github.com/talentops/shortlister/internal/logger"
	"github.com/talentops/shortlister/internal/secrets"
	"github.com/talentops/shortlister/internal/shortlist"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	PromptYes = "Yes"
	PromptNo  = "No"
)

var prompt = promptui.Select{
	Label: "Proceed?",
	Items: []string{PromptYes, PromptNo},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Evaluate pending applicants and record shortlist verdicts",
	Run: func(cmd *cobra.Command, _ []string) {
		run(cmd)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().BoolP("auto-approve", "y", false, "do not ask for confirmation before writing verdicts")
}

// run is the main command for the cli.
func run(cmd *cobra.Command) {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the shortlister", zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	if config == nil {
		logger.Fatal("config is required")
	}

	if config.Airtable.BaseID == "" {
		logger.Fatal("airtable base id is required under airtable.base-id")
	}

	directory := buildDirectory(config, logger)

	classifier := buildClassifier(ctx, config, logger)

	exchangeKey, err := secrets.Load(secrets.Source{
		Name: "exchange rate api key",
		File: config.Exchange.APIKeyFile,
	})
	if err != nil {
		logger.Fatal(
			"loading exchange rate api key",
			zap.Error(err),
			zap.String("hint", "set EXCHANGE_RATE_API_KEY_FILE or the 'exchange.api-key-file' key in the configuration file"),
		)
	}

	// The rate snapshot is loaded once and shared read-only for the whole
	// batch. A failed fetch aborts the run before anything is written.
	rates, err := currency.NewClient(exchangeKey, logger).FetchLatest(ctx, baseCurrency)
	if err != nil {
		logger.Fatal("fetching currency rate snapshot", zap.Error(err))
	}

	geocoder := geocode.NewClient(config.Geocode.UserAgent, logger)
	if config.Geocode.Endpoint != "" {
		geocoder.Endpoint = config.Geocode.Endpoint
	}

	criteria := []shortlist.Criterion{
		shortlist.NewExperience(directory, classifier, config.Shortlist.MinYearsExperience, logger),
		shortlist.NewCompensation(directory, rates, config.Shortlist.MaxRateUSD, config.Shortlist.MinAvailabilityHrs, logger),
		shortlist.NewLocation(directory, geocoder, classifier, config.Shortlist.AllowedLocations, logger),
	}

	engine := shortlist.NewEngine(directory, criteria, config.Shortlist.SettleDelay, logger)

	pending, err := directory.Pending(ctx)
	if err != nil {
		logger.Fatal("listing pending applicants", zap.Error(err))
	}

	if len(pending) == 0 {
		logger.Info("exiting", zap.String("reason", "no applicants to review"))
		return
	}

	logger.Info("pending applicants found", zap.Int("count", len(pending)))

	if cmd.Flag("auto-approve").Value.String() == "false" {
		_, action, err := prompt.Run()
		if err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}
		if action != PromptYes {
			logger.Info("exiting", zap.String("reason", "got no from prompt"))
			return
		}
	}

	summary, err := engine.Run(ctx)
	if err != nil {
		logger.Fatal("shortlisting batch failed", zap.Error(err))
	}

	logger.Info("done",
		zap.Int("reviewed", summary.Reviewed),
		zap.Int("shortlisted", summary.Shortlisted),
		zap.Int("failed", summary.Failed),
	)
}

func buildDirectory(config *Config, logger *zap.Logger) *applicant.Directory {
	airtableKey, err := secrets.Load(secrets.Source{
		Name: "airtable api key",
		File: config.Airtable.APIKeyFile,
	})
	if err != nil {
		logger.Fatal(
			"loading airtable api key",
			zap.Error(err),
			zap.String("hint", "set AIRTABLE_API_KEY_FILE or the 'airtable.api-key-file' key in the configuration file"),
		)
	}

	client := airtable.New(config.Airtable.BaseID, airtableKey, logger)

	return applicant.NewDirectory(client, config.Airtable.Tables, logger)
}

func buildClassifier(ctx context.Context, config *Config, logger *zap.Logger) ai.Classifier {
	geminiKey, err := secrets.Load(secrets.Source{
		Name: "gemini api key",
		File: config.Gemini.APIKeyFile,
	})
	if err != nil {
		logger.Fatal(
			"loading gemini api key",
			zap.Error(err),
			zap.String("hint", "set GEMINI_API_KEY_FILE or the 'gemini.api-key-file' key in the configuration file"),
		)
	}

	generator, err := gemini.NewGenerator(ctx, gemini.Config{
		APIKey:          geminiKey,
		Model:           config.Gemini.Model,
		MaxRetries:      config.Gemini.MaxRetries,
		BackoffBase:     config.Gemini.BackoffBase,
		MaxOutputTokens: config.Gemini.MaxOutputTokens,
	}, logger.With(zap.String("llm_model", config.Gemini.Model)))
	if err != nil {
		logger.Fatal("building gemini generator", zap.Error(err))
	}

	return generator
}
