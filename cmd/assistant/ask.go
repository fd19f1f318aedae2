package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/nats-io/nats.go"
	"github.com/spf13/cobra"

	"github.com/jainds/agentic-ai-mcp-workflows-sub001/backends"
	"github.com/jainds/agentic-ai-mcp-workflows-sub001/capability"
	"github.com/jainds/agentic-ai-mcp-workflows-sub001/config"
	"github.com/jainds/agentic-ai-mcp-workflows-sub001/llm"
	"github.com/jainds/agentic-ai-mcp-workflows-sub001/pipeline"
)

// loadAssistantConfig loads configuration via the layered loader, or from an
// explicit file when --config is given.
func loadAssistantConfig(opts *rootOptions, logger *slog.Logger) (*config.Config, error) {
	if opts.configPath != "" {
		fileCfg, err := config.LoadFromFile(opts.configPath)
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		cfg := config.DefaultConfig()
		cfg.Merge(fileCfg)
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("invalid configuration: %w", err)
		}
		return cfg, nil
	}
	return config.NewLoader(logger).Load()
}

// buildRegistry wires the capability provider table, connecting to NATS when
// the table has remote providers. The returned cleanup closes the connection.
func buildRegistry(cfg *config.Config, logger *slog.Logger) (*capability.Registry, func(), error) {
	var conn capability.NATSConn
	cleanup := func() {}

	needsNATS := false
	for _, p := range cfg.Providers {
		if p.Kind == config.ProviderKindNATS {
			needsNATS = true
			break
		}
	}
	if needsNATS {
		nc, err := nats.Connect(cfg.NATS.URL, nats.Name(appName))
		if err != nil {
			return nil, nil, fmt.Errorf("connect to NATS at %s: %w", cfg.NATS.URL, err)
		}
		conn = nc
		cleanup = nc.Close
		logger.Info("Connected to NATS", "url", cfg.NATS.URL)
	}

	reg, err := backends.BuildRegistry(cfg.Providers, conn, logger)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return reg, cleanup, nil
}

// buildPipeline assembles the turn pipeline. With stub enabled the
// deterministic keyword classifier and template composer are used instead of
// a live LLM.
func buildPipeline(cfg *config.Config, reg *capability.Registry, stub bool, logger *slog.Logger, popts ...pipeline.Option) *pipeline.Pipeline {
	var (
		classifier pipeline.Classifier
		generator  pipeline.Generator
	)

	if stub {
		classifier = backends.NewKeywordClassifier()
		// Nil generator: the composer renders its deterministic template.
	} else {
		client := llm.NewClient(cfg.ModelRegistry(), llm.WithLogger(logger))
		classifier = pipeline.NewLLMClassifier(client)
		generator = pipeline.NewLLMGenerator(client)
	}

	popts = append(popts, pipeline.WithLogger(logger))
	return pipeline.New(classifier, generator, reg, popts...)
}

func askCmd(opts *rootOptions) *cobra.Command {
	var (
		customerID string
		stub       bool
		asJSON     bool
	)

	cmd := &cobra.Command{
		Use:   "ask \"message\"",
		Short: "Run a single assistant turn",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := setupLogging(opts.logLevel)

			cfg, err := loadAssistantConfig(opts, logger)
			if err != nil {
				return err
			}

			reg, cleanup, err := buildRegistry(cfg, logger)
			if err != nil {
				return err
			}
			defer cleanup()

			p := buildPipeline(cfg, reg, stub, logger)

			result, err := p.HandleTurn(cmd.Context(), args[0], customerID)
			if err != nil {
				if pipeline.IsClassificationError(err) {
					fmt.Println("Sorry, I couldn't understand that request. Could you rephrase it?")
					return nil
				}
				return err
			}

			if asJSON {
				return printJSON(result)
			}
			fmt.Println(result.Response)
			return nil
		},
	}

	cmd.Flags().StringVar(&customerID, "customer", "", "Customer ID for this turn (e.g. CUST-1)")
	cmd.Flags().BoolVar(&stub, "stub", false, "Use the deterministic keyword classifier instead of a live LLM")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the full turn result as JSON, including the trace")

	return cmd
}

func providersCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "providers",
		Short: "List registered capability providers",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := setupLogging(opts.logLevel)

			cfg, err := loadAssistantConfig(opts, logger)
			if err != nil {
				return err
			}

			reg, cleanup, err := buildRegistry(cfg, logger)
			if err != nil {
				return err
			}
			defer cleanup()

			kinds := make(map[string]config.ProviderKind, len(cfg.Providers))
			for _, p := range cfg.Providers {
				kinds[p.Name] = p.Kind
			}
			for _, name := range reg.List() {
				fmt.Printf("%-20s %s\n", name, kinds[name])
			}
			return nil
		},
	}
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
