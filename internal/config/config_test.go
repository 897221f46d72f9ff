package config

import (
	"os"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	os.Unsetenv("PORT")
	os.Unsetenv("AI_API_KEY")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Port != "8000" {
		t.Errorf("expected default port 8000, got %s", cfg.Port)
	}

	if cfg.Env != "development" {
		t.Errorf("expected default env development, got %s", cfg.Env)
	}

	if cfg.AIModel != "gemini-1.5-flash" {
		t.Errorf("expected default AI model, got %s", cfg.AIModel)
	}

	if cfg.AITimeoutSecs != 30 {
		t.Errorf("expected default AI timeout 30, got %d", cfg.AITimeoutSecs)
	}

	if cfg.AIEnabled() {
		t.Error("expected AI to be disabled without AI_API_KEY")
	}
}

func TestLoad_OverridesFromEnv(t *testing.T) {
	os.Setenv("PORT", "9191")
	os.Setenv("AI_API_KEY", "test-key")
	defer os.Unsetenv("PORT")
	defer os.Unsetenv("AI_API_KEY")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Port != "9191" {
		t.Errorf("expected port 9191, got %s", cfg.Port)
	}

	if !cfg.AIEnabled() {
		t.Error("expected AI to be enabled with AI_API_KEY set")
	}
}

func TestConfig_IsDev(t *testing.T) {
	c := &Config{Env: "development"}
	if !c.IsDev() {
		t.Error("expected IsDev() to return true for development")
	}

	c.Env = "production"
	if c.IsDev() {
		t.Error("expected IsDev() to return false for production")
	}
	if !c.IsProduction() {
		t.Error("expected IsProduction() to return true for production")
	}
}
