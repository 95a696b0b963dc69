package cmd

import (
	"log"
	"time"

	"github.com/talentops/shortlister/internal/applicant"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	app = "shortlister"

	baseCurrency = "USD"
)

type Config struct {
	Airtable  *AirtableConfig  `mapstructure:"airtable"`
	Gemini    *GeminiConfig    `mapstructure:"gemini"`
	Exchange  *ExchangeConfig  `mapstructure:"exchange"`
	Geocode   *GeocodeConfig   `mapstructure:"geocode"`
	Shortlist *ShortlistConfig `mapstructure:"shortlist"`
}

type AirtableConfig struct {
	BaseID     string           `mapstructure:"base-id"`
	APIKeyFile string           `mapstructure:"api-key-file"`
	Tables     applicant.Tables `mapstructure:"tables"`
}

type GeminiConfig struct {
	APIKeyFile      string  `mapstructure:"api-key-file"`
	Model           string  `mapstructure:"model"`
	MaxRetries      int     `mapstructure:"max-retries"`
	BackoffBase     float64 `mapstructure:"backoff-base"`
	MaxOutputTokens int32   `mapstructure:"max-output-tokens"`
	MaxLogLength    int     `mapstructure:"max-log-length"`
}

type ExchangeConfig struct {
	APIKeyFile string `mapstructure:"api-key-file"`
}

type GeocodeConfig struct {
	UserAgent string `mapstructure:"user-agent"`
	Endpoint  string `mapstructure:"endpoint"`
}

type ShortlistConfig struct {
	AllowedLocations   []string      `mapstructure:"allowed-locations"`
	MinAvailabilityHrs float64       `mapstructure:"min-availability-hrs"`
	MaxRateUSD         float64       `mapstructure:"max-rate-usd"`
	MinYearsExperience float64       `mapstructure:"min-years-experience"`
	SettleDelay        time.Duration `mapstructure:"settle-delay"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "shortlister evaluates job applicants against eligibility criteria and records verdicts",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	if err := viper.BindEnv("airtable.api-key-file", "AIRTABLE_API_KEY_FILE"); err != nil {
		log.Fatalf("binding AIRTABLE_API_KEY_FILE environment variable: %v", err)
	}
	if err := viper.BindEnv("gemini.api-key-file", "GEMINI_API_KEY_FILE"); err != nil {
		log.Fatalf("binding GEMINI_API_KEY_FILE environment variable: %v", err)
	}
	if err := viper.BindEnv("exchange.api-key-file", "EXCHANGE_RATE_API_KEY_FILE"); err != nil {
		log.Fatalf("binding EXCHANGE_RATE_API_KEY_FILE environment variable: %v", err)
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is shortlister.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	// Secrets file paths may come from a .env file, like the original
	// Airtable automation did. A missing .env is not an error.
	_ = godotenv.Load()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app + ".yaml")
	}

	// We can't proceed if the config file parsed with error.
	if err := viper.ReadInConfig(); err != nil {
		log.Fatal(err)
	}
}

func getConfig() (*Config, error) {
	var config *Config
	if err := viper.Unmarshal(&config); err != nil {
		return config, err
	}

	if config != nil {
		applyDefaults(config)
	}

	return config, nil
}

func applyDefaults(config *Config) {
	if config.Airtable == nil {
		config.Airtable = &AirtableConfig{}
	}
	if config.Airtable.Tables == (applicant.Tables{}) {
		config.Airtable.Tables = applicant.DefaultTables()
	}

	if config.Gemini == nil {
		config.Gemini = &GeminiConfig{}
	}

	if config.Exchange == nil {
		config.Exchange = &ExchangeConfig{}
	}

	if config.Geocode == nil {
		config.Geocode = &GeocodeConfig{}
	}
	if config.Geocode.UserAgent == "" {
		config.Geocode.UserAgent = app
	}

	if config.Shortlist == nil {
		config.Shortlist = &ShortlistConfig{}
	}
	if len(config.Shortlist.AllowedLocations) == 0 {
		config.Shortlist.AllowedLocations = []string{"India", "United States", "Canada", "UK", "Germany"}
	}
	if config.Shortlist.MinAvailabilityHrs == 0 {
		config.Shortlist.MinAvailabilityHrs = 20
	}
	if config.Shortlist.MaxRateUSD == 0 {
		config.Shortlist.MaxRateUSD = 100
	}
	if config.Shortlist.MinYearsExperience == 0 {
		config.Shortlist.MinYearsExperience = 4
	}
	if config.Shortlist.SettleDelay == 0 {
		config.Shortlist.SettleDelay = 5 * time.Second
	}
}
