package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/Littlesheepxy/sourcing-copilot-go/internal/browser"
	"github.com/Littlesheepxy/sourcing-copilot-go/internal/candidate"
	"github.com/Littlesheepxy/sourcing-copilot-go/internal/config"
	"github.com/Littlesheepxy/sourcing-copilot-go/internal/evaluate"
	"github.com/Littlesheepxy/sourcing-copilot-go/internal/evaluate/gemini"
	"github.com/Littlesheepxy/sourcing-copilot-go/internal/logger"
	"github.com/Littlesheepxy/sourcing-copilot-go/internal/orchestrator"
	"github.com/Littlesheepxy/sourcing-copilot-go/internal/screening"
	"github.com/Littlesheepxy/sourcing-copilot-go/internal/secrets"
	"github.com/Littlesheepxy/sourcing-copilot-go/internal/store"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	PromptYes = "Yes"
	PromptNo  = "No"

	defaultListURL = "https://www.zhipin.com/web/chat/recommend"
	defaultDBFile  = "sourcing-copilot.db"
)

var prompt = promptui.Select{
	Label: "Start screening?",
	Items: []string{PromptYes, PromptNo},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the sourcing-copilot main command",
	Run: func(cmd *cobra.Command, _ []string) {
		run(cmd)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().BoolP("auto-approve", "y", false, "do not ask for confirmation before screening starts")
	runCmd.Flags().Bool("rescan", false, "reset the dedup ledger and reconsider every visible candidate")
	runCmd.Flags().String("page-url", defaultListURL, "candidate list page to open")
	runCmd.Flags().String("remote-url", "", "attach to a running Chrome via its websocket URL instead of launching one")
	runCmd.Flags().Bool("headless", false, "launch the local Chrome headless")
	runCmd.Flags().String("db", defaultDBFile, "path to the decision log database")

	viper.BindPFlag("remote-url", runCmd.Flags().Lookup("remote-url"))
	viper.BindPFlag("headless", runCmd.Flags().Lookup("headless"))
	viper.BindPFlag("db", runCmd.Flags().Lookup("db"))
}

// run is the main command for the cli.
func run(cmd *cobra.Command) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	cfg, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the sourcing-copilot",
		zap.String("version", version),
		zap.String("mode", cfg.EffectiveMode().String()),
	)

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(cfg, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	if cfg.UnrelatedPrefixesFile != "" {
		if err := screening.LoadUnrelatedPrefixes(cfg.UnrelatedPrefixesFile); err != nil {
			logger.Fatal("loading the unrelated-prefix table", zap.Error(err))
		}
	}

	scorer, err := newScorer(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("building the scoring service",
			zap.Error(err),
			zap.String("hint", "set ai.gemini.api-key-file or GEMINI_API_KEY_FILE"),
		)
	}

	decisionLog, err := store.Open(viper.GetString("db"), logger)
	if err != nil {
		logger.Fatal("opening the decision log", zap.Error(err))
	}
	defer decisionLog.Close()

	manager := browser.NewManager(browser.Config{
		RemoteURL: viper.GetString("remote-url"),
		Headless:  viper.GetBool("headless"),
		Stealth:   true,
		Logger:    logger,
	})
	if err := manager.Connect(ctx); err != nil {
		logger.Fatal("connecting to the browser", zap.Error(err))
	}
	defer manager.Close()

	pageURL := cmd.Flag("page-url").Value.String()
	surface, err := manager.OpenPage(ctx, pageURL)
	if err != nil {
		logger.Fatal("opening the candidate list page", zap.Error(err))
	}

	if cmd.Flag("auto-approve").Value.String() == "false" && !cfg.AutoMode {
		_, action, err := prompt.Run()
		if err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}
		if action != PromptYes {
			logger.Info("exiting", zap.String("reason", "got no from prompt"))
			return
		}
	}

	orch := orchestrator.New(cfg, scorer, decisionLog, logger)

	if cmd.Flag("rescan").Value.String() == "true" {
		orch.Ledger().Reset()
		logger.Info("full rescan requested, dedup ledger cleared")
	}

	started := time.Now()

	stream, err := orch.Start(ctx, surface)
	if err != nil {
		logger.Fatal("starting the screening run", zap.Error(err))
	}

	var greeted, skipped int
	for decision := range stream {
		switch decision.Action {
		case candidate.ActionGreet:
			greeted++
		default:
			skipped++
		}
	}

	if err := orch.Err(); err != nil {
		logger.Fatal("screening run failed", zap.Error(err))
	}

	summary, err := decisionLog.Summarize(started)
	if err != nil {
		logger.Warn("summarizing the decision log", zap.Error(err))
	}

	logger.Info("screening run complete",
		zap.Int("greeted", greeted),
		zap.Int("skipped", skipped),
		zap.Int("fail_open_passes", summary.FailOpen),
		zap.Duration("elapsed", time.Since(started).Round(time.Second)),
	)
}

// newScorer builds the stage-3 scoring service, or nil when AI is not
// configured. Keyword-only setups never touch the network.
func newScorer(ctx context.Context, cfg *config.Config, logger *zap.Logger) (evaluate.ScoringService, error) {
	if !cfg.AIEnabled() {
		return nil, nil
	}

	ai := cfg.AI
	provider := strings.TrimSpace(strings.ToLower(ai.Provider))
	if provider != "" && provider != "gemini" {
		return nil, fmt.Errorf("unsupported ai provider: %s", ai.Provider)
	}

	if ai.Gemini == nil {
		return nil, fmt.Errorf("gemini configuration is required when ai is enabled")
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name: "gemini api key",
		File: ai.Gemini.APIKeyFile,
	})
	if err != nil {
		return nil, err
	}

	client, err := gemini.New(ctx, apiKey, ai.Gemini.Model)
	if err != nil {
		return nil, err
	}

	logger.Info("scoring service ready",
		zap.String("provider", "gemini"),
		zap.String("model", client.Model()),
	)

	return client, nil
}
