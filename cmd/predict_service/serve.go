package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonathan/predict-service/internal/config"
	"github.com/jonathan/predict-service/internal/server"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Service selectors accepted by --service.
const (
	serviceBankruptcy = "bankruptcy"
	serviceLead       = "lead"
	serviceAll        = "all"
)

var (
	serveService string
	servePort    int
	serveBundle  string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the prediction HTTP services",
	Long: `Start the bankruptcy service, the lead service, or both. Models are loaded before any
listener opens; a bundle that fails to load aborts startup. SIGINT or SIGTERM shuts the servers
down gracefully.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveService, "service", serviceAll, "Service to run: bankruptcy, lead or all")
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port override (single service only)")
	serveCmd.Flags().StringVar(&serveBundle, "bundle", "", "Model bundle override (single service only)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := loadSettings()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	if err := applyServeFlags(&cfg, serveService, servePort, serveBundle); err != nil {
		return err
	}

	servers, err := buildServers(cfg, serveService, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runServers(ctx, servers)
}

// applyServeFlags folds the single-service overrides into cfg.
func applyServeFlags(cfg *config.Config, service string, port int, bundle string) error {
	var target *config.ServiceConfig
	switch service {
	case serviceBankruptcy:
		target = &cfg.Bankruptcy
	case serviceLead:
		target = &cfg.Lead
	case serviceAll:
		if port != 0 || bundle != "" {
			return fmt.Errorf("--port and --bundle need --service bankruptcy or --service lead")
		}
		return nil
	default:
		return fmt.Errorf("unknown service %q: expected bankruptcy, lead or all", service)
	}

	if port != 0 {
		target.Port = port
	}
	if bundle != "" {
		target.Bundle = bundle
	}
	return cfg.Validate()
}

// buildServers loads every selected model and creates its server.
func buildServers(cfg config.Config, service string, logger *zap.Logger) ([]*server.Server, error) {
	var servers []*server.Server

	if service == serviceBankruptcy || service == serviceAll {
		svc, err := loadBankruptcy(cfg.Bankruptcy.Bundle, cfg.Server.KeyCacheSize)
		if err != nil {
			return nil, fmt.Errorf("failed to load bankruptcy model: %w", err)
		}
		logBundle(logger, serviceBankruptcy, svc.bundle, svc.predictor.Threshold())

		api := server.NewBankruptcyAPI(svc.gate, svc.predictor, logger)
		servers = append(servers, server.New(serverConfig(cfg.Server, cfg.Bankruptcy.Port), api, logger))
	}

	if service == serviceLead || service == serviceAll {
		svc, err := loadLead(cfg.Lead.Bundle)
		if err != nil {
			return nil, fmt.Errorf("failed to load lead model: %w", err)
		}
		logBundle(logger, serviceLead, svc.bundle, svc.predictor.Threshold())

		api := server.NewLeadAPI(svc.bundle.DictVectorizer(), svc.predictor, logger)
		servers = append(servers, server.New(serverConfig(cfg.Server, cfg.Lead.Port), api, logger))
	}

	return servers, nil
}

// runServers runs all servers until ctx is cancelled or one of them fails, which stops the rest.
func runServers(ctx context.Context, servers []*server.Server) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, srv := range servers {
		g.Go(func() error {
			return srv.Run(gctx)
		})
	}
	return g.Wait()
}
