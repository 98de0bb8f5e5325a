package cmd

import (
	"log"

	"github.com/spigell/fit-screener/internal/candidate"
	"github.com/spigell/fit-screener/internal/store"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	app = "fit-screener"
)

type Config struct {
	Job      *candidate.Job `mapstructure:"job"`
	PoolFile string         `mapstructure:"pool-file"`
	Scan     *ScanConfig    `mapstructure:"scan"`
	Store    *StoreConfig   `mapstructure:"store"`
	Import   *ImportConfig  `mapstructure:"import"`
	AI       *AIConfig      `mapstructure:"ai"`
}

type ScanConfig struct {
	Budget        int  `mapstructure:"budget"`
	OracleDelayMs int  `mapstructure:"oracle-delay-ms"`
	PacingDelayMs int  `mapstructure:"pacing-delay-ms"`
	NoDelays      bool `mapstructure:"no-delays"`
}

type StoreConfig struct {
	// Type selects the durable store: memory (default), file or redis.
	Type  string             `mapstructure:"type"`
	Path  string             `mapstructure:"path"`
	Redis *store.RedisConfig `mapstructure:"redis"`
}

type ImportConfig struct {
	Tiers      []string `mapstructure:"tiers"`
	OutputFile string   `mapstructure:"output-file"`
}

type AIConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Provider string        `mapstructure:"provider"`
	Gemini   *GeminiConfig `mapstructure:"gemini"`
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
		Short: "fit-screener screens a candidate pool against a job with a cheap prescreen and a budgeted AI fit analysis",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	if err := viper.BindEnv("ai.gemini.api-key-file", "GEMINI_API_KEY_FILE"); err != nil {
		log.Fatalf("binding GEMINI_API_KEY_FILE environment variable: %v", err)
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is fit-screener.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	// Config needed only for the scan command now. If there is no config, we can skip initialization.
	if scanCmd.CalledAs() == "" {
		return
	}

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
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	return config, nil
}
