package config

import (
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hpungsan/capitol/internal/congress"
)

// Config holds application configuration.
type Config struct {
	// BaseDir is the capitol home (~/.capitol or CAPITOL_HOME). Set at startup, never read from file.
	BaseDir string `json:"-"`

	// APIBaseURL is the congress.gov API root. CONGRESS_API_BASE_URL overrides it.
	APIBaseURL string `json:"api_base_url,omitempty"`

	// PageLimit is the page size requested from paged per-bill endpoints.
	PageLimit int `json:"page_limit,omitempty"`

	// SubjectsLimit is the single-request limit for the subjects endpoint.
	SubjectsLimit int `json:"subjects_limit,omitempty"`

	// ListLimit is the page size used when listing bills for a sync.
	ListLimit int `json:"list_limit,omitempty"`

	// RequestTimeoutSeconds bounds each HTTP request to the upstream.
	RequestTimeoutSeconds int `json:"request_timeout_seconds,omitempty"`

	// AllowedPaths is an allowlist of directories for export and import.
	// Paths outside <BaseDir>/exports require either being in this list or AllowUnsafePaths=true.
	// Paths should be absolute (relative paths are ignored).
	AllowedPaths []string `json:"allowed_paths,omitempty"`

	// AllowUnsafePaths disables directory restrictions for export and import.
	// When true, any directory is allowed (but symlink and extension checks still apply).
	AllowUnsafePaths bool `json:"allow_unsafe_paths,omitempty"`

	// DBMaxOpenConns limits the maximum number of open database connections.
	// If set to 1, all database access is serialized (reduces "database is locked" errors).
	// 0 means use sql.DB default (unlimited).
	DBMaxOpenConns int `json:"db_max_open_conns,omitempty"`

	// DBMaxIdleConns limits the maximum number of idle database connections.
	// 0 means use sql.DB default. Typically set equal to DBMaxOpenConns.
	DBMaxIdleConns int `json:"db_max_idle_conns,omitempty"`

	// DisabledTools is a list of MCP tool names to exclude from registration.
	// Unknown tool names are logged as warnings.
	DisabledTools []string `json:"disabled_tools,omitempty"`

	// DisabledTypes is a list of type names to disable entirely.
	// Known types: "bill", "sync", "congress". Unknown type names are logged as warnings.
	DisabledTypes []string `json:"disabled_types,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		APIBaseURL:            congress.DefaultBaseURL,
		PageLimit:             congress.DefaultPageLimit,
		SubjectsLimit:         congress.DefaultSubjectsLimit,
		ListLimit:             congress.DefaultListLimit,
		RequestTimeoutSeconds: int(congress.DefaultTimeout / time.Second),
	}
}

// RequestTimeout returns RequestTimeoutSeconds as a duration.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

// ClientOptions builds congress client options from the config.
func (c *Config) ClientOptions(apiKey string, log *slog.Logger) congress.Options {
	return congress.Options{
		BaseURL:       c.APIBaseURL,
		APIKey:        apiKey,
		PageLimit:     c.PageLimit,
		SubjectsLimit: c.SubjectsLimit,
		Timeout:       c.RequestTimeout(),
		Logger:        log,
	}
}

// Load loads configuration from baseDir/config.json.
// Returns default config if the file doesn't exist.
// The baseDir parameter allows tests to use t.TempDir() instead of ~/.capitol.
func Load(baseDir string) (*Config, error) {
	return loadFile(filepath.Join(baseDir, "config.json"))
}

// LoadWithRepo loads configuration from both global (~/.capitol) and repo (.capitol) directories.
// Repo config is found by walking upward from startDir to find the nearest .capitol/config.json.
// Repo config takes precedence for scalar values; arrays are merged (deduplicated).
// Either or both configs may be missing.
func LoadWithRepo(globalDir, startDir string) (*Config, error) {
	global, err := loadFileRaw(filepath.Join(globalDir, "config.json"))
	if err != nil {
		return nil, err
	}

	repo, err := loadFileRaw(FindRepoConfig(startDir))
	if err != nil {
		return nil, err
	}

	return Merge(Merge(DefaultConfig(), global), repo), nil
}

// FindRepoConfig walks upward from startDir to find the nearest .capitol/config.json.
// Returns the path if found, or empty string if not found.
func FindRepoConfig(startDir string) string {
	if startDir == "" {
		return ""
	}
	dir := startDir
	for {
		configPath := filepath.Join(dir, ".capitol", "config.json")
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// loadFileRaw returns a zero-valued config (not defaults) if the file doesn't exist.
func loadFileRaw(configPath string) (*Config, error) {
	if configPath == "" {
		return &Config{}, nil
	}
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadFile(configPath string) (*Config, error) {
	cfg, err := loadFileRaw(configPath)
	if err != nil {
		return nil, err
	}
	return Merge(DefaultConfig(), cfg), nil
}

// Merge combines base and overlay configs.
// Overlay values take precedence for scalars; arrays are merged and deduplicated.
func Merge(base, overlay *Config) *Config {
	result := &Config{
		BaseDir:               pick(overlay.BaseDir, base.BaseDir),
		APIBaseURL:            pick(overlay.APIBaseURL, base.APIBaseURL),
		PageLimit:             pick(overlay.PageLimit, base.PageLimit),
		SubjectsLimit:         pick(overlay.SubjectsLimit, base.SubjectsLimit),
		ListLimit:             pick(overlay.ListLimit, base.ListLimit),
		RequestTimeoutSeconds: pick(overlay.RequestTimeoutSeconds, base.RequestTimeoutSeconds),
		DBMaxOpenConns:        pick(overlay.DBMaxOpenConns, base.DBMaxOpenConns),
		DBMaxIdleConns:        pick(overlay.DBMaxIdleConns, base.DBMaxIdleConns),
	}

	// Booleans: overlay wins if true, else base
	result.AllowUnsafePaths = base.AllowUnsafePaths || overlay.AllowUnsafePaths

	result.AllowedPaths = mergeStringSlice(base.AllowedPaths, overlay.AllowedPaths)
	result.DisabledTools = mergeStringSlice(base.DisabledTools, overlay.DisabledTools)
	result.DisabledTypes = mergeStringSlice(base.DisabledTypes, overlay.DisabledTypes)

	return result
}

// pick returns overlay unless it is the zero value.
func pick[T comparable](overlay, base T) T {
	var zero T
	if overlay != zero {
		return overlay
	}
	return base
}

// mergeStringSlice combines two slices, trims whitespace, and removes duplicates.
func mergeStringSlice(a, b []string) []string {
	seen := make(map[string]bool)
	result := make([]string, 0, len(a)+len(b))

	for _, s := range append(append([]string{}, a...), b...) {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}

	if len(result) == 0 {
		return nil
	}
	return result
}
