package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/spigell/fit-screener/internal/ai"
	"github.com/spigell/fit-screener/internal/ai/gemini"
	"github.com/spigell/fit-screener/internal/cache"
	"github.com/spigell/fit-screener/internal/candidate"
	"github.com/spigell/fit-screener/internal/logger"
	"github.com/spigell/fit-screener/internal/match"
	"github.com/spigell/fit-screener/internal/scan"
	"github.com/spigell/fit-screener/internal/secrets"
	"github.com/spigell/fit-screener/internal/store"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	PromptImport       = "Import candidates from tiers"
	PromptReport       = "Report by tier"
	PromptDumpToFile   = "Dump full results to file"
	PromptExit         = "Exit"
	PromptBack         = "back"
	PromptShortlist    = "excellent + good"
	PromptTopThree     = "excellent + good + moderate"
	PromptExcellent    = "excellent only"
	demoPoolLoadedFlag = "demo:pool-loaded"
)

var errExit = errors.New("exit requested")

var actionPrompt = promptui.Select{
	Label: "What next?",
	Items: []string{PromptImport, PromptReport, PromptDumpToFile, PromptExit},
}

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan the candidate pool against the configured job",
	Run: func(cmd *cobra.Command, _ []string) {
		runScan(cmd)
	},
}

func init() {
	rootCmd.AddCommand(scanCmd)

	scanCmd.Flags().BoolP("auto-approve", "y", false, "import the configured tiers without prompting")
	scanCmd.Flags().StringP("pool-file", "p", "", "JSON file with the candidate pool. Default is the built-in demo pool.")

	viper.BindPFlag("pool-file", scanCmd.Flags().Lookup("pool-file"))
}

// runScan is the main command for the cli.
func runScan(cmd *cobra.Command) {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the fit-screener", zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	if config == nil {
		logger.Fatal("config is required")
	}

	job := config.Job
	if job == nil || strings.TrimSpace(job.Title) == "" {
		logger.Fatal("a job title is required under the job section")
	}
	if job.ID == "" {
		job.ID = slugify(job.Title)
	}
	if len(job.RequiredSkills) == 0 {
		logger.Warn("job lists no required skills; skill overlap contributes nothing to heuristic scores")
	}

	kv := buildStore(ctx, config.Store, logger)

	pool, err := loadPool(ctx, config, kv, logger)
	if err != nil {
		logger.Fatal("loading candidate pool", zap.Error(err))
	}

	if pool.Len() == 0 {
		logger.Info("exiting", zap.String("reason", "candidate pool is empty"))
		return
	}

	logger.Info("loaded candidate pool", zap.Int("count", pool.Len()))

	oracle, err := prepareOracle(ctx, config.AI, logger)
	if err != nil {
		logger.Warn("running without AI analysis", zap.Error(err))
	}

	scanner := scan.New(scan.Deps{
		Oracle: oracle,
		Cache:  cache.New(kv, logger),
		Logger: logger,
	}, scanOptions(config.Scan))

	logger.Info("starting the scan", zap.String("job_title", job.Title))

	results, err := scanner.Scan(ctx, job, pool, progressLogger(logger))
	if err != nil {
		logger.Fatal("scan failed", zap.Error(err))
	}

	reportByTier(logger, results)

	action := PromptImport
	for {
		var err error
		if cmd.Flag("auto-approve").Value.String() == "false" {
			_, action, err = actionPrompt.Run()
			if err != nil {
				logger.Fatal("exiting", zap.Error(err))
			}
		}

		if err := handleAction(action, logger, config, job, results); err != nil {
			if errors.Is(err, errExit) {
				return
			}
			logger.Fatal("exiting", zap.Error(err))
		}

		if cmd.Flag("auto-approve").Value.String() == "true" {
			return
		}
	}
}

func handleAction(action string, logger *zap.Logger, config *Config, job *candidate.Job, results *match.ResultSet) error {
	switch action {
	case PromptImport:
		return importTiers(logger, config, job, results)
	case PromptReport:
		reportByTier(logger, results)
		return nil
	case PromptDumpToFile:
		filename, err := dumpToTmpFile(results)
		if err != nil {
			return fmt.Errorf("dump results to file: %w", err)
		}
		logger.Info("dumped results to file", zap.String("filename", filename))
		return nil
	case PromptExit:
		logger.Info("exiting", zap.String("reason", "got exit from prompt"))
		return errExit
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

// importTiers materializes the chosen tiers and writes them to the configured
// output file. Tiers come from the config when set, otherwise from a prompt.
func importTiers(logger *zap.Logger, config *Config, job *candidate.Job, results *match.ResultSet) error {
	tiers, err := selectTiers(config)
	if err != nil {
		return err
	}
	if len(tiers) == 0 {
		return nil
	}

	selected := match.Materialize(results, job, tiers)
	if len(selected) == 0 {
		logger.Info("nothing to import", zap.Any("tiers", tiers))
		return nil
	}

	output := ""
	if config.Import != nil {
		output = config.Import.OutputFile
	}

	filename, err := writeImport(output, selected)
	if err != nil {
		return fmt.Errorf("writing imported candidates: %w", err)
	}

	logger.Info("imported candidates",
		zap.Int("count", len(selected)),
		zap.Any("tiers", tiers),
		zap.String("filename", filename),
	)
	return nil
}

func selectTiers(config *Config) ([]match.Tier, error) {
	if config.Import != nil && len(config.Import.Tiers) > 0 {
		var tiers []match.Tier
		for _, name := range config.Import.Tiers {
			tier, ok := match.ParseTier(strings.ToLower(strings.TrimSpace(name)))
			if !ok {
				return nil, fmt.Errorf("unknown tier in import config: %s", name)
			}
			tiers = append(tiers, tier)
		}
		return tiers, nil
	}

	tierPrompt := promptui.Select{
		Label: "Which tiers should be imported?",
		Items: []string{PromptExcellent, PromptShortlist, PromptTopThree, PromptBack},
	}

	_, choice, err := tierPrompt.Run()
	if err != nil {
		return nil, err
	}

	switch choice {
	case PromptExcellent:
		return []match.Tier{match.TierExcellent}, nil
	case PromptShortlist:
		return []match.Tier{match.TierExcellent, match.TierGood}, nil
	case PromptTopThree:
		return []match.Tier{match.TierExcellent, match.TierGood, match.TierModerate}, nil
	default:
		return nil, nil
	}
}

func writeImport(path string, selected []*candidate.Profile) (string, error) {
	if strings.TrimSpace(path) == "" {
		file, err := os.CreateTemp("", "imported_candidates_*.json")
		if err != nil {
			return "", err
		}
		defer file.Close()

		enc := json.NewEncoder(file)
		enc.SetIndent("", "  ")
		if err := enc.Encode(selected); err != nil {
			return "", err
		}
		return file.Name(), nil
	}

	data, err := json.MarshalIndent(selected, "", "  ")
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return "", err
	}
	return path, nil
}

func dumpToTmpFile(results *match.ResultSet) (string, error) {
	file, err := os.CreateTemp("", "scan_results_*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(results); err != nil {
		return "", err
	}
	return file.Name(), nil
}

func reportByTier(logger *zap.Logger, results *match.ResultSet) {
	for _, tier := range match.Tiers() {
		scored := results.ByTier(tier)
		names := make([]string, 0, len(scored))
		for _, s := range scored {
			names = append(names, fmt.Sprintf("%s (%d)", s.Profile.Name, s.Score))
		}
		logger.Info("tier report",
			zap.String("tier", string(tier)),
			zap.Int("count", len(scored)),
			zap.Strings("candidates", names),
		)
	}
}

// progressLogger adapts scan progress events to log lines. Events without a
// score announce the step; events with one carry the outcome.
func progressLogger(logger *zap.Logger) scan.ProgressFunc {
	return func(p scan.Progress) {
		fields := []zap.Field{
			zap.Int("current", p.Current),
			zap.Int("total", p.Total),
			zap.String("candidate", p.CandidateName),
			zap.Bool("ai_analysis", p.Oracle),
		}

		if p.Score == nil {
			logger.Debug("analyzing candidate", fields...)
			return
		}

		logger.Info("scored candidate", append(fields, zap.Int("score", *p.Score))...)
	}
}

// buildStore selects the durable store from the config. An unavailable store
// degrades to the in-memory one: the scan must still complete, only caching
// suffers.
func buildStore(ctx context.Context, cfg *StoreConfig, logger *zap.Logger) store.KV {
	if cfg == nil {
		return store.NewMemory()
	}

	switch strings.ToLower(strings.TrimSpace(cfg.Type)) {
	case "", "memory":
		return store.NewMemory()
	case "file":
		kv, err := store.NewFile(cfg.Path)
		if err != nil {
			logger.Warn("file store unavailable, falling back to memory", zap.Error(err))
			return store.NewMemory()
		}
		return kv
	case "redis":
		kv, err := store.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logger.Warn("redis store unavailable, falling back to memory", zap.Error(err))
			return store.NewMemory()
		}
		return kv
	default:
		logger.Warn("unknown store type, falling back to memory", zap.String("type", cfg.Type))
		return store.NewMemory()
	}
}

// loadPool reads the configured pool file, or falls back to the built-in
// demo pool and records that it has been handed out at least once.
func loadPool(ctx context.Context, config *Config, kv store.KV, logger *zap.Logger) (*candidate.Pool, error) {
	if path := strings.TrimSpace(config.PoolFile); path != "" {
		return candidate.LoadPool(path)
	}

	pool, err := candidate.DemoPool()
	if err != nil {
		return nil, err
	}

	if _, loaded, err := kv.Get(ctx, demoPoolLoadedFlag); err == nil && !loaded {
		if err := kv.Set(ctx, demoPoolLoadedFlag, time.Now().UTC().Format(time.RFC3339)); err != nil {
			logger.Debug("recording demo pool flag failed", zap.Error(err))
		}
	}

	logger.Info("no pool file configured, using the built-in demo pool")
	return pool, nil
}

func prepareOracle(ctx context.Context, cfg *AIConfig, log *zap.Logger) (ai.Scorer, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, errors.New("ai analysis is disabled in the config")
	}

	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))
	if provider != "" && provider != "gemini" {
		return nil, fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}

	if cfg.Gemini == nil {
		return nil, errors.New("gemini configuration is required when ai analysis is enabled")
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name: "gemini api key",
		File: cfg.Gemini.APIKeyFile,
		Env:  "GEMINI_API_KEY",
	})
	if err != nil {
		return nil, fmt.Errorf("%w (set ai.gemini.api-key-file or GEMINI_API_KEY)", err)
	}

	genLogger := logger.WithOracleFields(log, "gemini", cfg.Gemini.Model)

	generator, err := gemini.NewGenerator(ctx, apiKey, cfg.Gemini.Model, cfg.Gemini.MaxRetries, genLogger)
	if err != nil {
		return nil, err
	}

	return gemini.NewScorer(generator, cfg.Gemini.MaxLogLength, genLogger), nil
}

func scanOptions(cfg *ScanConfig) scan.Options {
	if cfg == nil {
		return scan.Options{}
	}

	return scan.Options{
		Budget:      cfg.Budget,
		OracleDelay: time.Duration(cfg.OracleDelayMs) * time.Millisecond,
		PacingDelay: time.Duration(cfg.PacingDelayMs) * time.Millisecond,
		NoDelays:    cfg.NoDelays,
	}
}

func slugify(title string) string {
	slug := strings.ToLower(strings.TrimSpace(title))
	return strings.Join(strings.Fields(slug), "-")
}
