package main

import (
	"bufio"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"sync/atomic"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/jainds/agentic-ai-mcp-workflows-sub001/config"
	"github.com/jainds/agentic-ai-mcp-workflows-sub001/pipeline"
)

// connCleanups tracks the registry teardown func across hot reloads. The
// watcher goroutine swaps while the REPL loop may be reading, so access is
// serialized.
type connCleanups struct {
	mu   sync.Mutex
	last func()
}

// swap installs the next teardown and runs the previous one.
func (c *connCleanups) swap(next func()) {
	c.mu.Lock()
	prev := c.last
	c.last = next
	c.mu.Unlock()
	if prev != nil {
		prev()
	}
}

// close runs the current teardown, if any.
func (c *connCleanups) close() { c.swap(nil) }

func chatCmd(opts *rootOptions) *cobra.Command {
	var (
		customerID  string
		stub        bool
		metricsAddr string
	)

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Interactive assistant session (reads turns from stdin)",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := setupLogging(opts.logLevel)

			cfg, err := loadAssistantConfig(opts, logger)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			promReg := prometheus.NewRegistry()
			metrics := pipeline.NewMetrics(promReg)
			if metricsAddr != "" {
				mux := http.NewServeMux()
				mux.Handle("/metrics", promhttp.HandlerFor(promReg, promhttp.HandlerOpts{}))
				go func() {
					if err := http.ListenAndServe(metricsAddr, mux); err != nil {
						logger.Warn("Metrics server stopped", "error", err)
					}
				}()
				logger.Info("Serving metrics", "addr", metricsAddr)
			}

			// The active pipeline is swapped wholesale on config reload so
			// in-flight turns keep the registry they started with. Each swap
			// releases the previous build's connection.
			var (
				active   atomic.Pointer[pipeline.Pipeline]
				cleanups connCleanups
			)
			defer cleanups.close()

			rebuild := func(cfg *config.Config) error {
				reg, cleanup, err := buildRegistry(cfg, logger)
				if err != nil {
					return err
				}
				active.Store(buildPipeline(cfg, reg, stub, logger, pipeline.WithMetrics(metrics)))
				cleanups.swap(cleanup)
				return nil
			}
			if err := rebuild(cfg); err != nil {
				return err
			}

			// Hot-reload the provider table when a project config exists.
			if path := config.NewLoader(logger).FindProjectConfig(); path != "" {
				watcher, err := config.NewWatcher(path, func(next *config.Config) {
					if err := rebuild(next); err != nil {
						logger.Warn("Config reload rejected", "error", err)
					}
				}, logger)
				if err != nil {
					return fmt.Errorf("create config watcher: %w", err)
				}
				if err := watcher.Start(ctx); err != nil {
					return fmt.Errorf("start config watcher: %w", err)
				}
				defer func() { _ = watcher.Stop() }()
			}

			fmt.Printf("%s v%s — type a message, or \"exit\" to quit.\n", appName, Version)

			scanner := bufio.NewScanner(os.Stdin)
			for {
				fmt.Print("> ")
				if !scanner.Scan() {
					break
				}
				line := strings.TrimSpace(scanner.Text())
				if line == "" {
					continue
				}
				if line == "exit" || line == "quit" {
					break
				}

				result, err := active.Load().HandleTurn(ctx, line, customerID)
				switch {
				case ctx.Err() != nil:
					return nil
				case err != nil && pipeline.IsClassificationError(err):
					fmt.Println("Sorry, I couldn't understand that request. Could you rephrase it?")
				case err != nil:
					fmt.Printf("Something went wrong: %v\n", err)
				default:
					fmt.Println(result.Response)
				}
			}
			return scanner.Err()
		},
	}

	cmd.Flags().StringVar(&customerID, "customer", "", "Customer ID for the session (e.g. CUST-1)")
	cmd.Flags().BoolVar(&stub, "stub", false, "Use the deterministic keyword classifier instead of a live LLM")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address (e.g. :9102)")

	return cmd
}
