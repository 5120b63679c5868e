package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	t.Run("missing file yields defaults", func(t *testing.T) {
		cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if cfg.Summarize.Model != "gemma3" {
			t.Fatalf("expected default model, got %q", cfg.Summarize.Model)
		}
		if len(cfg.Summarize.Levels) != 10 {
			t.Fatalf("expected 10 default levels, got %d", len(cfg.Summarize.Levels))
		}
		if cfg.Index.Output != "index.html" {
			t.Fatalf("expected index.html, got %q", cfg.Index.Output)
		}
	})

	t.Run("file overrides defaults", func(t *testing.T) {
		path := writeTempConfig(t, "summarize:\n  model: llama3\n  concurrency: 4\n  timeout: 30s\nscenes:\n  asset_root: /srv/assets\n  seeds:\n    speech-to-python: 7\n")
		cfg, err := Load(path)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if cfg.Summarize.Model != "llama3" {
			t.Fatalf("expected llama3, got %q", cfg.Summarize.Model)
		}
		if cfg.Summarize.Concurrency != 4 {
			t.Fatalf("expected concurrency 4, got %d", cfg.Summarize.Concurrency)
		}
		if cfg.Summarize.Timeout != 30*time.Second {
			t.Fatalf("expected 30s timeout, got %v", cfg.Summarize.Timeout)
		}
		if cfg.Scenes.Seeds["speech-to-python"] != 7 {
			t.Fatalf("expected seed 7, got %v", cfg.Scenes.Seeds)
		}
		if cfg.Index.Extension != ".html" {
			t.Fatalf("expected untouched index defaults, got %q", cfg.Index.Extension)
		}
	})

	t.Run("environment overrides file", func(t *testing.T) {
		t.Setenv("SCRATCHPAD_MODEL", "mistral")
		t.Setenv("SCRATCHPAD_ASSET_ROOT", "/tmp/assets")
		cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if cfg.Summarize.Model != "mistral" {
			t.Fatalf("expected mistral, got %q", cfg.Summarize.Model)
		}
		if cfg.Scenes.AssetRoot != "/tmp/assets" {
			t.Fatalf("expected asset root override, got %q", cfg.Scenes.AssetRoot)
		}
	})

	t.Run("unknown provider", func(t *testing.T) {
		path := writeTempConfig(t, "summarize:\n  provider: carrier-pigeon\n")
		if _, err := Load(path); err == nil {
			t.Fatalf("expected error")
		}
	})

	t.Run("unknown policy", func(t *testing.T) {
		path := writeTempConfig(t, "summarize:\n  policy: yolo\n")
		if _, err := Load(path); err == nil {
			t.Fatalf("expected error")
		}
	})

	t.Run("zero concurrency", func(t *testing.T) {
		path := writeTempConfig(t, "summarize:\n  concurrency: 0\n")
		if _, err := Load(path); err == nil {
			t.Fatalf("expected error")
		}
	})

	t.Run("duplicate level names", func(t *testing.T) {
		path := writeTempConfig(t, "summarize:\n  levels:\n    - { name: tldr, instruction: a }\n    - { name: tldr, instruction: b }\n")
		if _, err := Load(path); err == nil {
			t.Fatalf("expected error")
		}
	})

	t.Run("level without instruction", func(t *testing.T) {
		path := writeTempConfig(t, "summarize:\n  levels:\n    - { name: tldr }\n")
		if _, err := Load(path); err == nil {
			t.Fatalf("expected error")
		}
	})

	t.Run("extension without dot", func(t *testing.T) {
		path := writeTempConfig(t, "index:\n  extension: html\n")
		if _, err := Load(path); err == nil {
			t.Fatalf("expected error")
		}
	})

	t.Run("invalid yaml", func(t *testing.T) {
		path := writeTempConfig(t, "summarize: [\n")
		if _, err := Load(path); err == nil {
			t.Fatalf("expected error")
		}
	})
}

func TestDefaultLevelsOrder(t *testing.T) {
	want := []string{"tldr", "headline", "micro", "mini", "brief", "concise", "standard", "detailed", "comprehensive", "full"}
	levels := DefaultLevels()
	if len(levels) != len(want) {
		t.Fatalf("expected %d levels, got %d", len(want), len(levels))
	}
	for i, name := range want {
		if levels[i].Name != name {
			t.Errorf("level %d: expected %s, got %s", i, name, levels[i].Name)
		}
	}
}

func writeTempConfig(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "scratchpad.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("writing temp config: %v", err)
	}
	return path
}
