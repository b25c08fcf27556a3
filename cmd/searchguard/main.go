// Command searchguard serves search control-plane tools over stdio with a
// reliability layer: classified failures, write verification, response
// governance, and parameter elicitation.
package main

import (
	"flag"
	"fmt"
	stdlog "log"
	"os"

	"github.com/mark3labs/mcp-go/server"

	"github.com/user/searchguard/pkg/config"
	"github.com/user/searchguard/pkg/elicit"
	"github.com/user/searchguard/pkg/govern"
	"github.com/user/searchguard/pkg/insight"
	"github.com/user/searchguard/pkg/log"
	"github.com/user/searchguard/pkg/search"
	"github.com/user/searchguard/pkg/tools"
	"github.com/user/searchguard/pkg/verify"
)

const serverVersion = "0.1.0"

func main() {
	configPath := flag.String("config", os.Getenv("SEARCHGUARD_CONFIG"), "path to the YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		stdlog.Fatalf("searchguard: %v", err)
	}

	logConfig, auditConfig := log.LoadFromEnv()
	logger := log.NewLogger(logConfig)
	audit := log.NewAuditLogger(auditConfig)
	defer audit.Close()

	// The summarizer is optional. Without an Anthropic key, oversized
	// responses degrade to deterministic truncation.
	var summarizer govern.Summarizer = govern.Noop{}
	if apiKey := os.Getenv("ANTHROPIC_API_KEY"); apiKey != "" {
		summarizer = govern.NewClaudeSummarizer(apiKey, cfg.SummarizerModel)
		logger.Info("server", "summarization enabled",
			log.F("model", cfg.SummarizerModel))
	} else {
		logger.Info("server", "no ANTHROPIC_API_KEY set, oversized responses will be truncated")
	}

	deps := tools.Deps{
		Search:     search.NewClient(cfg.Endpoint, cfg.APIKey, logger),
		Classifier: insight.NewClassifier(logger),
		Governor: govern.NewGovernor(govern.Budget{
			MaxRawBytes:      cfg.Budget.MaxRawBytes,
			MaxChars:         cfg.Budget.MaxChars,
			MaxListItems:     cfg.Budget.MaxListItems,
			SummarizeTimeout: cfg.SummarizeTimeout(),
		}, summarizer, logger),
		Elicitor: elicit.NewCoordinator(elicit.NoopSurface{}, cfg.ElicitTimeout(), logger),
		Poll: verify.PollConfig{
			Interval: cfg.PollInterval(),
			Timeout:  cfg.PollTimeout(),
			Logger:   logger,
		},
		Audit: audit,
		Log:   logger,
	}

	s := server.NewMCPServer(
		"searchguard",
		serverVersion,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions("Tools for managing a search service. Every response is a JSON envelope: check `ok`, and on failure read `insight.code` and `insight.recommendation` instead of retrying blindly."),
	)
	handlers := tools.All(deps)
	for _, tool := range handlers {
		s.AddTool(tool.Definition(), tool.Handle)
		logger.Debug("server", "registered tool", log.F("tool", tool.Name()))
	}

	logger.Info("server", "serving on stdio",
		log.F("endpoint", cfg.Endpoint), log.F("tools", len(handlers)))
	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "searchguard: %v\n", err)
		os.Exit(1)
	}
}
