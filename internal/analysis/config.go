package analysis

import (
	"embed"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/lecturelens-backend/internal/platform/logger"
)

const configEnv = "ANALYSIS_CONFIG_YAML"

//go:embed analysis.yaml
var configFS embed.FS

type Segment struct {
	Name    string `yaml:"name" json:"name"`
	Keyword string `yaml:"keyword" json:"keyword"`
	Weight  int    `yaml:"weight" json:"weight"`
}

type Config struct {
	Version int `yaml:"version"`
	Models  struct {
		Transcript []string `yaml:"transcript"`
		Analysis   []string `yaml:"analysis"`
	} `yaml:"models"`
	Segments []Segment `yaml:"segments"`
}

func (c *Config) TranscriptModels() []string { return c.Models.Transcript }
func (c *Config) AnalysisModels() []string   { return c.Models.Analysis }

// used when the YAML is missing or invalid
var fallbackConfig = func() *Config {
	c := &Config{Version: 1}
	c.Models.Transcript = []string{"gemini-2.5-flash", "gemini-2.0-flash", "gemini-1.5-flash"}
	c.Models.Analysis = []string{"gemini-2.5-pro", "gemini-2.5-flash", "gemini-1.5-pro"}
	c.Segments = []Segment{
		{Name: "Concepts", Keyword: "Concept", Weight: 25},
		{Name: "Delivery", Keyword: "Delivery", Weight: 20},
		{Name: "Language", Keyword: "Language", Weight: 15},
		{Name: "Resources", Keyword: "Resource", Weight: 10},
		{Name: "Time Utilisation", Keyword: "Time", Weight: 15},
		{Name: "Plan Adherence", Keyword: "Plan", Weight: 15},
	}
	return c
}()

var (
	configOnce  sync.Once
	configCache *Config
	configErr   error
)

// CurrentConfig loads the analysis config once. A load failure is logged and the built-in defaults are used.
func CurrentConfig(log *logger.Logger) *Config {
	configOnce.Do(func() {
		configCache, configErr = LoadConfig()
	})
	if configErr != nil {
		if log != nil {
			log.Warn("analysis: config load failed; using fallback", "error", configErr)
		}
		return fallbackConfig
	}
	return configCache
}

func LoadConfig() (*Config, error) {
	data, err := readConfig()
	if err != nil {
		return nil, err
	}
	return ParseConfig(data)
}

func ParseConfig(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Models.Transcript = cleanList(cfg.Models.Transcript)
	cfg.Models.Analysis = cleanList(cfg.Models.Analysis)
	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func readConfig() ([]byte, error) {
	if path := strings.TrimSpace(os.Getenv(configEnv)); path != "" {
		return os.ReadFile(path)
	}
	return configFS.ReadFile("analysis.yaml")
}

func validateConfig(cfg *Config) error {
	if len(cfg.Models.Transcript) == 0 {
		return errors.New("models.transcript is empty")
	}
	if len(cfg.Models.Analysis) == 0 {
		return errors.New("models.analysis is empty")
	}
	if len(cfg.Segments) == 0 {
		return errors.New("no segments defined")
	}
	seen := map[string]bool{}
	total := 0
	for i := range cfg.Segments {
		s := &cfg.Segments[i]
		s.Name = strings.TrimSpace(s.Name)
		s.Keyword = strings.TrimSpace(s.Keyword)
		if s.Name == "" {
			return errors.New("segment name is required")
		}
		if s.Keyword == "" {
			s.Keyword = s.Name
		}
		if seen[strings.ToLower(s.Name)] {
			return fmt.Errorf("duplicate segment: %s", s.Name)
		}
		seen[strings.ToLower(s.Name)] = true
		if s.Weight < 0 {
			return fmt.Errorf("segment %s: negative weight", s.Name)
		}
		total += s.Weight
	}
	if total != 100 {
		return fmt.Errorf("segment weights sum to %d, want 100", total)
	}
	return nil
}

func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	seen := map[string]bool{}
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
