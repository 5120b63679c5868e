// Package config loads the scratchpad configuration file and environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultPath is the config file looked up when --config is not given.
const DefaultPath = "scratchpad.yaml"

// Config is the whole tool configuration. Every former hard-coded parameter lives here.
type Config struct {
	Index     IndexConfig     `yaml:"index"`
	Summarize SummarizeConfig `yaml:"summarize"`
	Scenes    ScenesConfig    `yaml:"scenes"`
	Store     StoreConfig     `yaml:"store"`
	Log       LogConfig       `yaml:"log"`
}

type IndexConfig struct {
	Dir       string   `yaml:"dir"`
	Output    string   `yaml:"output"`
	Extension string   `yaml:"extension"`
	Exclude   []string `yaml:"exclude"`
	SiteTitle string   `yaml:"site_title"`
	Subtitle  string   `yaml:"subtitle"`
	Footer    string   `yaml:"footer"`
	Links     []Link   `yaml:"links"`
	Addr      string   `yaml:"addr"`
}

type Link struct {
	Label string `yaml:"label"`
	Href  string `yaml:"href"`
}

type SummarizeConfig struct {
	Provider      string        `yaml:"provider"`
	Model         string        `yaml:"model"`
	BaseURL       string        `yaml:"base_url"`
	APIKey        string        `yaml:"api_key"`
	Input         string        `yaml:"input"`
	Output        string        `yaml:"output"`
	Policy        string        `yaml:"policy"`
	Concurrency   int           `yaml:"concurrency"`
	Retries       int           `yaml:"retries"`
	MaxInputChars int           `yaml:"max_input_chars"`
	Timeout       time.Duration `yaml:"timeout"`
	Levels        []Level       `yaml:"levels"`
}

type Level struct {
	Name        string `yaml:"name"`
	Instruction string `yaml:"instruction"`
}

type ScenesConfig struct {
	AssetRoot string           `yaml:"asset_root"`
	OutputDir string           `yaml:"output_dir"`
	Formats   []string         `yaml:"formats"`
	Seeds     map[string]int64 `yaml:"seeds"`
}

type StoreConfig struct {
	Path string `yaml:"path"`
}

type LogConfig struct {
	JSON bool `yaml:"json"`
}

// Known completion providers and failure policies.
var (
	Providers = []string{"ollama", "openai", "anthropic", "gemini"}
	Policies  = []string{"fail-fast", "isolate"}
)

// Default returns the configuration that reproduces the original scripts.
func Default() *Config {
	return &Config{
		Index: IndexConfig{
			Dir:       ".",
			Output:    "index.html",
			Extension: ".html",
			Exclude:   []string{"index.html", "colophon.html"},
			SiteTitle: "Vibe Coding Experiments",
			Subtitle:  "A collection of HTML/JavaScript experiments built through AI-assisted coding",
			Footer:    "Built with vibe coding • Powered by AI assistance",
			Links: []Link{
				{Label: "View Colophon (Commit History)", Href: "colophon.html"},
				{Label: "GitHub Repository", Href: "https://github.com/EnkrateiaLucca/vibe-coding-experiments"},
			},
			Addr: ":8080",
		},
		Summarize: SummarizeConfig{
			Provider:    "ollama",
			Model:       "gemma3",
			Input:       "file.txt",
			Output:      "summaries.json",
			Policy:      "isolate",
			Concurrency: 1,
			Timeout:     5 * time.Minute,
			Levels:      DefaultLevels(),
		},
		Scenes: ScenesConfig{
			AssetRoot: "assets",
			OutputDir: "renders",
			Formats:   []string{"svg", "json"},
		},
	}
}

// DefaultLevels is the fixed shortest-to-longest level list.
func DefaultLevels() []Level {
	return []Level{
		{Name: "tldr", Instruction: "Provide a one-sentence TLDR summary."},
		{Name: "headline", Instruction: "Create a headline-style summary (5-7 words)."},
		{Name: "micro", Instruction: "Summarize in 2-3 bullet points."},
		{Name: "mini", Instruction: "Write a 2-3 sentence summary."},
		{Name: "brief", Instruction: "Create a 3-4 sentence summary."},
		{Name: "concise", Instruction: "Write a 4-5 sentence summary."},
		{Name: "standard", Instruction: "Provide a 5-7 sentence summary."},
		{Name: "detailed", Instruction: "Write a 7-9 sentence summary."},
		{Name: "comprehensive", Instruction: "Create a 9-11 sentence summary."},
		{Name: "full", Instruction: "Write a complete summary (12+ sentences)."},
	}
}

// Load reads path on top of the defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	// Optional .env; a missing file is fine.
	_ = godotenv.Load()

	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("loading config: %w", err)
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("SCRATCHPAD_PROVIDER"); v != "" {
		cfg.Summarize.Provider = v
	}
	if v := os.Getenv("SCRATCHPAD_MODEL"); v != "" {
		cfg.Summarize.Model = v
	}
	if v := os.Getenv("SCRATCHPAD_ASSET_ROOT"); v != "" {
		cfg.Scenes.AssetRoot = v
	}
	if v := os.Getenv("SCRATCHPAD_DB"); v != "" {
		cfg.Store.Path = v
	}
	if v := os.Getenv("SCRATCHPAD_CONCURRENCY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Summarize.Concurrency = n
		}
	}
}

// Validate checks the invariants every entry point relies on.
func (c *Config) Validate() error {
	if !strings.HasPrefix(c.Index.Extension, ".") {
		return fmt.Errorf("index extension %q must start with '.'", c.Index.Extension)
	}
	if strings.TrimSpace(c.Index.Output) == "" {
		return fmt.Errorf("index output is required")
	}

	s := c.Summarize
	if !contains(Providers, s.Provider) {
		return fmt.Errorf("unknown provider: %s", s.Provider)
	}
	if !contains(Policies, s.Policy) {
		return fmt.Errorf("unknown failure policy: %s", s.Policy)
	}
	if strings.TrimSpace(s.Model) == "" {
		return fmt.Errorf("summarize model is required")
	}
	if s.Concurrency < 1 {
		return fmt.Errorf("concurrency must be at least 1, got %d", s.Concurrency)
	}
	if s.Retries < 0 {
		return fmt.Errorf("retries must not be negative")
	}
	if len(s.Levels) == 0 {
		return fmt.Errorf("at least one level is required")
	}
	seen := make(map[string]struct{})
	for i, l := range s.Levels {
		name := strings.TrimSpace(l.Name)
		if name == "" {
			return fmt.Errorf("level %d name is required", i)
		}
		if strings.TrimSpace(l.Instruction) == "" {
			return fmt.Errorf("level %s instruction is required", l.Name)
		}
		if _, dup := seen[name]; dup {
			return fmt.Errorf("duplicate level name: %s", l.Name)
		}
		seen[name] = struct{}{}
	}
	return nil
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
