package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jonathan/predict-service/internal/config"
	"github.com/jonathan/predict-service/internal/features"
	"github.com/jonathan/predict-service/internal/model"
	"github.com/jonathan/predict-service/internal/observability"
	"github.com/jonathan/predict-service/internal/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	bankruptcyBundlePath = "../../data/bankruptcy_model.json"
	leadBundlePath       = "../../data/lead_model.json"
)

const twoFeatureXGBModel = `{
  "learner": {
    "feature_names": ["debt_ratio", "current_ratio"],
    "learner_model_param": {"base_score": "[2E-1]", "num_feature": "2"},
    "objective": {"name": "binary:logistic"},
    "gradient_booster": {
      "name": "gbtree",
      "model": {
        "trees": [
          {
            "left_children": [1, -1, -1],
            "right_children": [2, -1, -1],
            "split_indices": [0, 0, 0],
            "split_conditions": [0.6, -0.4, 0.9],
            "default_left": [1, 0, 0]
          }
        ]
      }
    }
  }
}`

func testConfig() config.Config {
	cfg := config.Default()
	cfg.Bankruptcy.Bundle = bankruptcyBundlePath
	cfg.Lead.Bundle = leadBundlePath
	return cfg
}

func fullBankruptcyRequest(t *testing.T) []byte {
	t.Helper()
	row := make(map[string]float64)
	for _, name := range features.BankruptcySchema().Names() {
		row[name] = 0.1
	}
	body, err := json.Marshal(row)
	require.NoError(t, err)
	return body
}

func TestNormalizeLabels_Args(t *testing.T) {
	var out bytes.Buffer
	err := normalizeLabels(strings.NewReader(""), &out, []string{"Debt Ratio %", " ROA(C) before interest", "%%"}, false)
	require.NoError(t, err)
	assert.Equal(t, "debt_ratio\nroa_c_before_interest\n\n", out.String())
}

func TestNormalizeLabels_Stdin(t *testing.T) {
	var out bytes.Buffer
	err := normalizeLabels(strings.NewReader("Current Ratio\nCash/Total Assets\n"), &out, nil, true)
	require.NoError(t, err)
	assert.Equal(t, "Current Ratio\tcurrent_ratio\nCash/Total Assets\tcash_total_assets\n", out.String())
}

func TestRootCommand_Normalize(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"normalize", "Net Income Flag"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})

	require.NoError(t, rootCmd.Execute())
	assert.Equal(t, "net_income_flag\n", out.String())
}

func TestApplyServeFlags(t *testing.T) {
	cfg := testConfig()
	require.NoError(t, applyServeFlags(&cfg, serviceLead, 8100, "other.json"))
	assert.Equal(t, 8100, cfg.Lead.Port)
	assert.Equal(t, "other.json", cfg.Lead.Bundle)
	assert.Equal(t, 9696, cfg.Bankruptcy.Port)

	cfg = testConfig()
	require.NoError(t, applyServeFlags(&cfg, serviceBankruptcy, 0, ""))
	assert.Equal(t, testConfig(), cfg)

	cfg = testConfig()
	require.NoError(t, applyServeFlags(&cfg, serviceAll, 0, ""))
}

func TestApplyServeFlags_Errors(t *testing.T) {
	tests := []struct {
		name    string
		service string
		port    int
		bundle  string
	}{
		{"unknown service", "fraud", 0, ""},
		{"port with all", serviceAll, 9000, ""},
		{"bundle with all", serviceAll, 0, "x.json"},
		{"port collides", serviceBankruptcy, 8000, ""},
		{"port out of range", serviceLead, 70000, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			assert.Error(t, applyServeFlags(&cfg, tt.service, tt.port, tt.bundle))
		})
	}
}

func TestBuildServers(t *testing.T) {
	cfg := testConfig()

	servers, err := buildServers(cfg, serviceAll, zap.NewNop())
	require.NoError(t, err)
	require.Len(t, servers, 2)
	assert.Equal(t, ":9696", servers[0].Addr())
	assert.Equal(t, ":8000", servers[1].Addr())

	servers, err = buildServers(cfg, serviceLead, zap.NewNop())
	require.NoError(t, err)
	require.Len(t, servers, 1)
	assert.Equal(t, ":8000", servers[0].Addr())
}

func TestBuildServers_BadBundle(t *testing.T) {
	cfg := testConfig()
	cfg.Bankruptcy.Bundle = filepath.Join(t.TempDir(), "missing.json")

	_, err := buildServers(cfg, serviceAll, zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bankruptcy")

	// The lead model is too narrow for the bankruptcy schema.
	cfg = testConfig()
	cfg.Bankruptcy.Bundle = leadBundlePath
	_, err = buildServers(cfg, serviceBankruptcy, zap.NewNop())
	assert.Error(t, err)
}

func TestRunServers_StopsOnCancel(t *testing.T) {
	svc, err := loadLead(leadBundlePath)
	require.NoError(t, err)

	api := server.NewLeadAPI(svc.bundle.DictVectorizer(), svc.predictor, zap.NewNop())
	srv := server.New(server.Config{Port: 0, ShutdownTimeout: time.Second}, api, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- runServers(ctx, []*server.Server{srv}) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("servers did not stop")
	}
}

func TestRunServers_ListenFailureStopsOthers(t *testing.T) {
	ln, err := net.Listen("tcp", ":0")
	require.NoError(t, err)
	defer ln.Close()
	busyPort := ln.Addr().(*net.TCPAddr).Port

	svc, err := loadLead(leadBundlePath)
	require.NoError(t, err)
	api := server.NewLeadAPI(svc.bundle.DictVectorizer(), svc.predictor, zap.NewNop())

	healthy := server.New(server.Config{Port: 0, ShutdownTimeout: time.Second}, api, zap.NewNop())
	broken := server.New(server.Config{Port: busyPort, ShutdownTimeout: time.Second}, api, zap.NewNop())

	done := make(chan error, 1)
	go func() { done <- runServers(context.Background(), []*server.Server{healthy, broken}) }()

	select {
	case err := <-done:
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to listen")
	case <-time.After(5 * time.Second):
		t.Fatal("listen failure did not stop the group")
	}
}

func TestScoreRequest(t *testing.T) {
	svc, err := loadBankruptcy(bankruptcyBundlePath, 16)
	require.NoError(t, err)

	var summary bytes.Buffer
	result, err := scoreRequest(svc, fullBankruptcyRequest(t), observability.NewPrinter(&summary))
	require.NoError(t, err)
	assert.Equal(t, 0.28, result.Threshold)
	assert.GreaterOrEqual(t, result.Probability, 0.0)
	assert.LessOrEqual(t, result.Probability, 1.0)
	assert.Equal(t, result.Probability >= result.Threshold, result.Bankrupt)
	assert.NotEmpty(t, summary.String())
}

func TestScoreRequest_Missing(t *testing.T) {
	svc, err := loadBankruptcy(bankruptcyBundlePath, 16)
	require.NoError(t, err)

	var summary bytes.Buffer
	_, err = scoreRequest(svc, []byte(`{"Debt Ratio %": 0.5}`), observability.NewPrinter(&summary))
	var missingErr *features.MissingFeaturesError
	require.ErrorAs(t, err, &missingErr)
	assert.NotContains(t, missingErr.Missing, "debt_ratio")
	assert.NotEmpty(t, summary.String())

	_, err = scoreRequest(svc, []byte(`{}`), nil)
	var noData *server.ErrNoData
	assert.ErrorAs(t, err, &noData)
}

func TestReadInput(t *testing.T) {
	data, err := readInput(strings.NewReader(`{"a": 1}`), "-")
	require.NoError(t, err)
	assert.Equal(t, `{"a": 1}`, string(data))

	path := filepath.Join(t.TempDir(), "request.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"b": 2}`), 0644))
	data, err = readInput(nil, path)
	require.NoError(t, err)
	assert.Equal(t, `{"b": 2}`, string(data))

	_, err = readInput(nil, filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestCheckBundle(t *testing.T) {
	bundle, err := checkBundle(bankruptcyBundlePath, "")
	require.NoError(t, err)
	assert.Equal(t, model.TypeTreeEnsemble, bundle.Model.Type)

	_, err = checkBundle(bankruptcyBundlePath, serviceBankruptcy)
	assert.NoError(t, err)

	_, err = checkBundle(leadBundlePath, serviceLead)
	assert.NoError(t, err)

	_, err = checkBundle(bankruptcyBundlePath, serviceLead)
	assert.Error(t, err)

	_, err = checkBundle(leadBundlePath, "churn")
	assert.Error(t, err)
}

func TestImportXGBoost(t *testing.T) {
	dir := t.TempDir()
	modelPath := filepath.Join(dir, "model.json")
	outPath := filepath.Join(dir, "bundles", "bankruptcy.json")
	require.NoError(t, os.WriteFile(modelPath, []byte(twoFeatureXGBModel), 0644))

	threshold := 0.4
	bundle, err := importXGBoost(modelPath, outPath, model.ConvertOptions{Name: "imported", Threshold: &threshold})
	require.NoError(t, err)
	assert.Equal(t, "imported", bundle.Name)
	assert.Equal(t, []string{"debt_ratio", "current_ratio"}, bundle.Features)

	loaded, err := checkBundle(outPath, serviceBankruptcy)
	require.NoError(t, err)
	assert.Equal(t, bundle.Features, loaded.Features)
	require.NotNil(t, loaded.Threshold)
	assert.Equal(t, 0.4, *loaded.Threshold)
}

func TestImportXGBoost_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := importXGBoost(filepath.Join(dir, "missing.json"), filepath.Join(dir, "out.json"), model.ConvertOptions{})
	assert.Error(t, err)

	modelPath := filepath.Join(dir, "model.json")
	require.NoError(t, os.WriteFile(modelPath, []byte(`{"learner": {"objective": {"name": "multi:softprob"}}}`), 0644))
	_, err = importXGBoost(modelPath, filepath.Join(dir, "out.json"), model.ConvertOptions{})
	assert.Error(t, err)
	assert.NoFileExists(t, filepath.Join(dir, "out.json"))
}
