// Command sanjeevani is the medicinal-plant question answering CLI and
// server.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"sanjeevani/internal/agents"
	"sanjeevani/internal/botany"
	"sanjeevani/internal/config"
	"sanjeevani/internal/embedding"
	"sanjeevani/internal/imagery"
	"sanjeevani/internal/llm"
	"sanjeevani/internal/logging"
	"sanjeevani/internal/orchestrator"
	"sanjeevani/internal/store"
)

var (
	// Global flags
	configPath string
	verbose    bool
	limit      int

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "sanjeevani",
	Short: "Sanjeevani - multi-agent medicinal plant knowledge assistant",
	Long: `Sanjeevani answers questions about medicinal plants by routing them
through domain agents for research, geographic distribution and
conservation status, then synthesizing one structured answer.

Run without arguments to start an interactive chat session.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Secrets come from the environment; a .env file is a
		// convenience for local runs.
		_ = godotenv.Load()

		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		if verbose {
			cfg.Logging.Debug = true
			cfg.Logging.Level = "debug"
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}

		zapCfg := zap.NewProductionConfig()
		if verbose {
			zapCfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		logger, err = zapCfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		dataDir := filepath.Dir(cfg.Store.DatabasePath)
		return logging.Initialize(dataDir, logging.Options{
			Debug:      cfg.Logging.Debug,
			Categories: cfg.Logging.Categories,
			Level:      cfg.Logging.Level,
			JSONFormat: cfg.Logging.JSONFormat,
		})
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.CloseAll()
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runChat(cmd)
	},
}

// app bundles the wired pipeline for one command invocation.
type app struct {
	kb        *store.Store
	orch      *orchestrator.Orchestrator
	agentList []agents.Agent
}

// buildApp opens the knowledge base and wires the full pipeline.
func buildApp() (*app, error) {
	embedder, err := embedding.NewEngine(embedding.Config{
		Provider: cfg.Embedding.Provider,
		APIKey:   cfg.Embedding.APIKey,
		Model:    cfg.Embedding.Model,
		Endpoint: cfg.Embedding.BaseURL,
	})
	if err != nil {
		return nil, fmt.Errorf("embedding engine: %w", err)
	}

	kb, err := store.Open(cfg.Store.DatabasePath, embedder)
	if err != nil {
		return nil, fmt.Errorf("knowledge base: %w", err)
	}

	timeout, err := cfg.LLMTimeout()
	if err != nil {
		kb.Close()
		return nil, err
	}
	client, err := llm.New(llm.Config{
		Provider: cfg.LLM.Provider,
		APIKey:   cfg.LLM.APIKey,
		BaseURL:  cfg.LLM.BaseURL,
		Model:    cfg.LLM.SynthModel,
		Timeout:  timeout,
	})
	if err != nil {
		kb.Close()
		return nil, fmt.Errorf("completion client: %w", err)
	}

	dict := botany.DefaultDictionary()
	if path := cfg.Orchestrator.AliasDictionary; path != "" {
		dict, err = botany.LoadDictionary(path)
		if err != nil {
			kb.Close()
			return nil, fmt.Errorf("alias dictionary: %w", err)
		}
	}
	extractor := botany.NewExtractor(dict)

	research := agents.NewResearchAgent(kb, cfg.Store.ResearchCollection, extractor)
	geography := agents.NewGeographyAgent(kb, extractor)
	conservation := agents.NewConservationAgent(kb, cfg.Store.ConservationCollection, extractor)

	orch := orchestrator.New(orchestrator.Deps{
		Research:     research,
		Geography:    geography,
		Conservation: conservation,
		Planner:      orchestrator.NewPlanner(client, cfg.LLM.PlanModel),
		Router:       orchestrator.NewRouter(orchestrator.NewLLMClassifier(client, cfg.LLM.RouteModel)),
		Synthesizer:  orchestrator.NewSynthesizer(client, cfg.LLM.SynthModel, cfg.Orchestrator.MaxContextChars),
		Images:       imagery.NewFetcher(),
	}, orchestrator.Options{
		MaxRetriesPerStep: cfg.Orchestrator.MaxRetriesPerStep,
		MaxContextChars:   cfg.Orchestrator.MaxContextChars,
		HistoryLimit:      cfg.Orchestrator.HistoryLimit,
		DefaultLimit:      limit,
	})

	logging.Boot("pipeline ready (db=%s embedder=%s)", cfg.Store.DatabasePath, embedder.Name())
	return &app{
		kb:        kb,
		orch:      orch,
		agentList: []agents.Agent{research, geography, conservation},
	}, nil
}

func (a *app) close() {
	if a.kb != nil {
		_ = a.kb.Close()
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "sanjeevani.yaml", "path to configuration file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().IntVar(&limit, "limit", 5, "maximum records per agent query")

	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(seedCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
