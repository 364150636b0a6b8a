package config

import "testing"

func TestCanonicalizeEnvKey_UsesExistingCamelCaseKeys(t *testing.T) {
	existing := map[string]any{
		"postgres": map[string]any{
			"sslMode": "disable",
			"master": map[string]any{
				"userName": "user",
			},
		},
		"pubsub": map[string]any{
			"topicId": "",
		},
		"ledger": map[string]any{
			"confirmTimeout": "5m",
			"rpcUrl":         "",
		},
	}

	tests := []struct {
		envKey string
		want   string
	}{
		{envKey: "POSTGRES_SSLMODE", want: "postgres.sslMode"},
		{envKey: "POSTGRES_MASTER_USERNAME", want: "postgres.master.userName"},
		{envKey: "PUBSUB_TOPICID", want: "pubsub.topicId"},
		{envKey: "LEDGER_CONFIRMTIMEOUT", want: "ledger.confirmTimeout"},
		{envKey: "LEDGER_RPCURL", want: "ledger.rpcUrl"},
		{envKey: "NEW_FEATURE_FLAG", want: "new.feature.flag"},
	}

	for _, tt := range tests {
		t.Run(tt.envKey, func(t *testing.T) {
			if got := canonicalizeEnvKey(tt.envKey, existing); got != tt.want {
				t.Fatalf("canonicalizeEnvKey(%q) = %q, want %q", tt.envKey, got, tt.want)
			}
		})
	}
}

func TestApplyDefaults_FillsMissingSections(t *testing.T) {
	cfg := &Config{}
	applyDefaults(cfg)

	if cfg.HTTP.MaxRequestBodySize != defaultMaxRequestBodySize {
		t.Fatalf("MaxRequestBodySize = %q, want %q", cfg.HTTP.MaxRequestBodySize, defaultMaxRequestBodySize)
	}
	if cfg.Ledger.Provider != defaultLedgerProvider {
		t.Fatalf("Ledger.Provider = %q, want %q", cfg.Ledger.Provider, defaultLedgerProvider)
	}
	if cfg.Ledger.ConfirmTimeout != defaultConfirmTimeout {
		t.Fatalf("Ledger.ConfirmTimeout = %s, want %s", cfg.Ledger.ConfirmTimeout, defaultConfirmTimeout)
	}
	if cfg.Backend.BaseURL != defaultBackendURL {
		t.Fatalf("Backend.BaseURL = %q, want %q", cfg.Backend.BaseURL, defaultBackendURL)
	}
	if cfg.Prediction.Workers != defaultPredictionWorkers {
		t.Fatalf("Prediction.Workers = %d, want %d", cfg.Prediction.Workers, defaultPredictionWorkers)
	}
}

func TestApplyDefaults_KeepsConfiguredValues(t *testing.T) {
	cfg := &Config{
		Ledger:     &LedgerConfig{Provider: "memory"},
		Prediction: &PredictionConfig{Workers: 9},
	}
	applyDefaults(cfg)

	if cfg.Ledger.Provider != "memory" {
		t.Fatalf("Ledger.Provider = %q, want memory", cfg.Ledger.Provider)
	}
	if cfg.Prediction.Workers != 9 {
		t.Fatalf("Prediction.Workers = %d, want 9", cfg.Prediction.Workers)
	}
}
