package main

import (
	"fmt"

	"github.com/jonathan/predict-service/internal/config"
	"github.com/jonathan/predict-service/internal/features"
	"github.com/jonathan/predict-service/internal/inference"
	"github.com/jonathan/predict-service/internal/logging"
	"github.com/jonathan/predict-service/internal/model"
	"github.com/jonathan/predict-service/internal/server"
	"go.uber.org/zap"
)

// leadThreshold only matters for the predictor's validation; the lead API returns probabilities.
const leadThreshold = 0.5

// loadSettings builds the effective configuration and logger for a command.
func loadSettings() (config.Config, *zap.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return config.Config{}, nil, err
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return cfg, logger, nil
}

// bankruptcyService is everything needed to score bankruptcy requests.
type bankruptcyService struct {
	bundle    *model.Bundle
	gate      *features.Gate
	predictor *inference.Predictor
}

// loadBankruptcy loads the bundle at path and wires the gate and predictor around it. Bundles
// without their own feature list use the built-in bankruptcy schema.
func loadBankruptcy(path string, cacheSize int) (*bankruptcyService, error) {
	bundle, err := model.LoadBundle(path)
	if err != nil {
		return nil, err
	}

	schema := bundle.Schema()
	if schema == nil {
		schema = features.BankruptcySchema()
	}
	if width := bundle.Classifier().Width(); width != schema.Len() {
		return nil, fmt.Errorf("bundle %s: model expects %d features but the schema has %d", bundle.Path(), width, schema.Len())
	}

	threshold, ok := bundle.DecisionThreshold()
	if !ok {
		return nil, fmt.Errorf("bundle %s: no decision threshold", bundle.Path())
	}
	predictor, err := inference.NewPredictor(bundle.Classifier(), threshold)
	if err != nil {
		return nil, fmt.Errorf("bundle %s: %w", bundle.Path(), err)
	}

	canon, err := features.NewCanonicalizer(cacheSize)
	if err != nil {
		return nil, err
	}

	return &bankruptcyService{
		bundle:    bundle,
		gate:      features.NewGate(schema, canon),
		predictor: predictor,
	}, nil
}

// leadService is everything needed to score lead requests.
type leadService struct {
	bundle    *model.Bundle
	predictor *inference.Predictor
}

// loadLead loads a lead bundle, which must carry a vectorizer.
func loadLead(path string) (*leadService, error) {
	bundle, err := model.LoadBundle(path)
	if err != nil {
		return nil, err
	}
	if bundle.DictVectorizer() == nil {
		return nil, fmt.Errorf("bundle %s: lead models need a vectorizer", bundle.Path())
	}

	threshold, ok := bundle.DecisionThreshold()
	if !ok {
		threshold = leadThreshold
	}
	predictor, err := inference.NewPredictor(bundle.Classifier(), threshold)
	if err != nil {
		return nil, fmt.Errorf("bundle %s: %w", bundle.Path(), err)
	}
	return &leadService{bundle: bundle, predictor: predictor}, nil
}

func logBundle(logger *zap.Logger, service string, b *model.Bundle, threshold float64) {
	logger.Info("model loaded",
		zap.String("service", service),
		zap.String("name", b.Name),
		zap.String("version", b.Version),
		zap.String("type", b.Model.Type),
		zap.String("path", b.Path()),
		zap.Int("inputs", b.Classifier().Width()),
		zap.Float64("threshold", threshold),
	)
}

func serverConfig(s config.ServerConfig, port int) server.Config {
	return server.Config{
		Port:            port,
		ReadTimeout:     s.ReadTimeout,
		WriteTimeout:    s.WriteTimeout,
		IdleTimeout:     s.IdleTimeout,
		ShutdownTimeout: s.ShutdownTimeout,
		MaxBodyBytes:    s.MaxBodyBytes,
		CORSOrigin:      s.CORSOrigin,
	}
}
