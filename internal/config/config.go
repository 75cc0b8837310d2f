// Package config loads javagraph's TOML configuration, following the
// teacher's load-then-override-from-env pattern (§10.1 of SPEC_FULL.md).
package config

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Analyzer AnalyzerConfig `toml:"analyzer"`
	Output   OutputConfig   `toml:"output"`
	Database DatabaseConfig `toml:"database"`
	Server   ServerConfig   `toml:"server"`
}

// AnalyzerConfig controls stages A-G.
type AnalyzerConfig struct {
	ExcludePatterns   []string `toml:"exclude_patterns"`
	Workers           int      `toml:"workers"`
	WatcherDebounceMs int      `toml:"watcher_debounce_ms"`
}

// OutputConfig controls the §6.2 output streams.
type OutputConfig struct {
	Dir           string `toml:"dir"`
	NodesFile     string `toml:"nodes_file"`
	EdgesFile     string `toml:"edges_file"`
	SymbolsFile   string `toml:"symbols_file"`
	PrettySymbols bool   `toml:"pretty_symbols"`
}

// DatabaseConfig controls the optional SurrealDB persistence layer
// (§11.3), additive to the frozen output streams.
type DatabaseConfig struct {
	Enabled   bool            `toml:"enabled"`
	Backend   string          `toml:"backend"`
	SurrealDB SurrealDBConfig `toml:"surrealdb"`
}

type SurrealDBConfig struct {
	URL       string `toml:"url"`
	Namespace string `toml:"namespace"`
	Database  string `toml:"database"`
	Username  string `toml:"username"`
	Password  string `toml:"password"`
}

// ServerConfig controls the read-only MCP query surface (§11.5).
type ServerConfig struct {
	Mode      string `toml:"mode"`
	Port      int    `toml:"port"`
	TimeoutMs int    `toml:"timeout_ms"`
}

// Load reads path, falling back to DefaultConfig() plus a search of the
// well-known locations when path is empty, then applies environment
// overrides.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, err
		}
	} else {
		locations := []string{
			".javagraph/config.toml",
			filepath.Join(os.Getenv("HOME"), ".javagraph/config.toml"),
			"/etc/javagraph/config.toml",
		}
		for _, loc := range locations {
			if _, err := os.Stat(loc); err == nil {
				if _, err := toml.DecodeFile(loc, cfg); err == nil {
					break
				}
			}
		}
	}

	applyEnvOverrides(cfg)
	return cfg, nil
}

func DefaultConfig() *Config {
	return &Config{
		Analyzer: AnalyzerConfig{
			ExcludePatterns:   []string{".git", "target", "build", "out", "node_modules", ".javagraph"},
			Workers:           4,
			WatcherDebounceMs: 200,
		},
		Output: OutputConfig{
			Dir:         ".javagraph",
			NodesFile:   "nodes.jsonl",
			EdgesFile:   "edges.jsonl",
			SymbolsFile: "symbols.json",
		},
		Database: DatabaseConfig{
			Enabled: false,
			Backend: "surrealdb",
			SurrealDB: SurrealDBConfig{
				URL:       "ws://localhost:8000",
				Namespace: "javagraph",
				Database:  "main",
				Username:  "root",
				Password:  "root",
			},
		},
		Server: ServerConfig{
			Mode:      "stdio",
			Port:      7433,
			TimeoutMs: 60000,
		},
	}
}

// Validate returns non-fatal warnings about implausible settings,
// mirroring the teacher's validation pass.
func Validate(cfg *Config) []string {
	var warnings []string

	if cfg.Analyzer.Workers < 1 {
		warnings = append(warnings, "analyzer workers must be at least 1")
	}
	if cfg.Analyzer.WatcherDebounceMs < 10 {
		warnings = append(warnings, "watcher debounce must be at least 10ms")
	}
	if cfg.Analyzer.WatcherDebounceMs > 60000 {
		warnings = append(warnings, "watcher debounce exceeds reasonable maximum (60000ms)")
	}
	if cfg.Output.Dir == "" {
		warnings = append(warnings, "output dir cannot be empty")
	}

	if cfg.Database.Enabled && cfg.Database.Backend == "surrealdb" {
		if cfg.Database.SurrealDB.URL == "" {
			warnings = append(warnings, "surrealdb URL cannot be empty")
		}
		if cfg.Database.SurrealDB.Namespace == "" {
			warnings = append(warnings, "surrealdb namespace cannot be empty")
		}
		if cfg.Database.SurrealDB.Database == "" {
			warnings = append(warnings, "surrealdb database cannot be empty")
		}
	}

	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		warnings = append(warnings, "server port must be between 1 and 65535")
	}
	if cfg.Server.TimeoutMs < 1000 {
		warnings = append(warnings, "server timeout must be at least 1 second")
	}

	return warnings
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("JAVAGRAPH_OUTPUT_DIR"); v != "" {
		cfg.Output.Dir = v
	}
	if v := os.Getenv("JAVAGRAPH_WORKERS"); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			cfg.Analyzer.Workers = i
		}
	}
	if v := os.Getenv("JAVAGRAPH_SURREALDB_URL"); v != "" {
		cfg.Database.SurrealDB.URL = v
	}
	if v := os.Getenv("JAVAGRAPH_SURREALDB_USER"); v != "" {
		cfg.Database.SurrealDB.Username = v
	}
	if v := os.Getenv("JAVAGRAPH_SURREALDB_PASSWORD"); v != "" {
		cfg.Database.SurrealDB.Password = v
	}
	if v := os.Getenv("JAVAGRAPH_SERVER_PORT"); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = i
		}
	}
}
