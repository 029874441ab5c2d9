package config

import (
	"os"
	"testing"
)

func TestLoad(t *testing.T) {
	// Create a temporary config file
	configContent := `
server:
  port: 9090
log:
  level: "debug"
  format: "json"
auth:
  jwt_secret: "test-secret"
  token_expire_hours: 48
store:
  backend: "memory"
  max_contracts: 50
mail:
  api_url: "https://mail.stagelink.test"
  api_token: "test-token"
  from_address: "noreply@stagelink.test"
  from_name: "StageLink"
archive:
  enabled: true
  endpoint: "localhost:9000"
  access_key: "minioadmin"
  secret_key: "minioadmin"
  bucket: "signatures"
  use_ssl: false
  expire_days: 14
reminders:
  offset_days: [14, 7, 3, 1]
  certificate_validity_years: 5
  signing_deadline_days: 10
users:
  - username: "testuser"
    password: "testpass"
    account: "test-account"
`
	tmpFile, err := os.CreateTemp("", "config-*.yaml")
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	defer os.Remove(tmpFile.Name())

	if _, err := tmpFile.WriteString(configContent); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	tmpFile.Close()

	// Test loading config
	cfg, err := Load(tmpFile.Name())
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("Expected port 9090, got %d", cfg.Server.Port)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Expected log level debug, got %s", cfg.Log.Level)
	}
	if cfg.Auth.TokenExpireHours != 48 {
		t.Errorf("Expected token expire 48h, got %d", cfg.Auth.TokenExpireHours)
	}
	if cfg.Store.MaxContracts != 50 {
		t.Errorf("Expected max contracts 50, got %d", cfg.Store.MaxContracts)
	}
	if cfg.Mail.FromAddress != "noreply@stagelink.test" {
		t.Errorf("Unexpected mail from address: %s", cfg.Mail.FromAddress)
	}
	if !cfg.Archive.Enabled || cfg.Archive.ExpireDays != 14 {
		t.Errorf("Unexpected archive config: %+v", cfg.Archive)
	}
	if len(cfg.Reminders.OffsetDays) != 4 || cfg.Reminders.OffsetDays[0] != 14 {
		t.Errorf("Unexpected reminder offsets: %v", cfg.Reminders.OffsetDays)
	}
	if cfg.Reminders.CertificateValidityYears != 5 {
		t.Errorf("Expected certificate validity 5 years, got %d", cfg.Reminders.CertificateValidityYears)
	}

	user := cfg.FindUser("testuser")
	if user == nil {
		t.Fatal("Expected to find testuser")
	}
	if user.Account != "test-account" {
		t.Errorf("Expected account test-account, got %s", user.Account)
	}
	if cfg.FindUser("missing") != nil {
		t.Error("Expected nil for unknown user")
	}
}

func TestLoadDefaults(t *testing.T) {
	configContent := `
auth:
  jwt_secret: "s"
`
	tmpFile, err := os.CreateTemp("", "config-*.yaml")
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	defer os.Remove(tmpFile.Name())

	if _, err := tmpFile.WriteString(configContent); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	tmpFile.Close()

	cfg, err := Load(tmpFile.Name())
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("Expected default port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Auth.TokenExpireHours != 24 {
		t.Errorf("Expected default token expire 24h, got %d", cfg.Auth.TokenExpireHours)
	}
	if cfg.Store.Backend != "memory" {
		t.Errorf("Expected default store backend memory, got %s", cfg.Store.Backend)
	}
	if len(cfg.Reminders.OffsetDays) != 3 ||
		cfg.Reminders.OffsetDays[0] != 7 ||
		cfg.Reminders.OffsetDays[1] != 3 ||
		cfg.Reminders.OffsetDays[2] != 1 {
		t.Errorf("Expected default offsets [7 3 1], got %v", cfg.Reminders.OffsetDays)
	}
	if cfg.Reminders.CertificateValidityYears != 10 {
		t.Errorf("Expected default certificate validity 10 years, got %d", cfg.Reminders.CertificateValidityYears)
	}
	if cfg.Reminders.SigningDeadlineDays != 7 {
		t.Errorf("Expected default signing deadline 7 days, got %d", cfg.Reminders.SigningDeadlineDays)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("nonexistent-config.yaml"); err == nil {
		t.Error("Expected error for missing config file")
	}
}
