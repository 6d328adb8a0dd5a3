package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains local directory configuration.
type Paths struct {
	WorkDir      string `toml:"work_dir"`
	CacheDir     string `toml:"cache_dir"`
	LogDir       string `toml:"log_dir"`
	StateDir     string `toml:"state_dir"`
	JinglePath   string `toml:"jingle_path"`
	TemplatePath string `toml:"template_path"`
}

// Source contains configuration for discovering the day's articles.
type Source struct {
	Kind           string `toml:"kind"`
	BaseURL        string `toml:"base_url"`
	FeedURL        string `toml:"feed_url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	UserAgent      string `toml:"user_agent"`
}

// Audio contains configuration for decoding and encoding audio with ffmpeg.
type Audio struct {
	FFmpegBinary           string `toml:"ffmpeg_binary"`
	FFprobeBinary          string `toml:"ffprobe_binary"`
	SampleRate             int    `toml:"sample_rate"`
	Channels               int    `toml:"channels"`
	Bitrate                string `toml:"bitrate"`
	DownloadTimeoutSeconds int    `toml:"download_timeout_seconds"`
	CacheRetentionDays     int    `toml:"cache_retention_days"`
}

// Store contains configuration for the durable object store.
type Store struct {
	Backend string `toml:"backend"`
	Bucket  string `toml:"bucket"`
	Dir     string `toml:"dir"`
}

// Feed contains configuration for the published episode and article feeds.
type Feed struct {
	BaseURL             string `toml:"base_url"`
	Name                string `toml:"name"`
	Description         string `toml:"description"`
	Language            string `toml:"language"`
	Category            string `toml:"category"`
	Subcategory         string `toml:"subcategory"`
	TitleFormat         string `toml:"title_format"`
	ArticleFeedName     string `toml:"article_feed_name"`
	EpisodeLimit        int    `toml:"episode_limit"`
	ArticleLimit        int    `toml:"article_limit"`
	ArticleHistoryLimit int    `toml:"article_history_limit"`
	HeadTimeoutSeconds  int    `toml:"head_timeout_seconds"`
}

// Notifications contains configuration for ntfy push notifications.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format        string `toml:"format"`
	Level         string `toml:"level"`
	RetentionDays int    `toml:"retention_days"`
}

// Config encapsulates all configuration values for digestcast.
//
// Configuration sections by subsystem:
//   - Paths: local work, cache, log, and state directories
//   - Source: where the day's articles come from (html scrape or rss)
//   - Audio: ffmpeg/ffprobe binaries and the in-memory PCM format
//   - Store: object store backend (gcs bucket or local directory)
//   - Feed: public feed metadata and history caps
//   - Notifications: ntfy push notification settings
//   - Logging: log format and level
type Config struct {
	Paths         Paths         `toml:"paths"`
	Source        Source        `toml:"source"`
	Audio         Audio         `toml:"audio"`
	Store         Store         `toml:"store"`
	Feed          Feed          `toml:"feed"`
	Notifications Notifications `toml:"notifications"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/digestcast/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("digestcast.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the local directories a run writes into.
func (c *Config) EnsureDirectories() error {
	dirs := []string{
		c.Paths.WorkDir,
		c.EpisodesDir(),
		c.HTMLDir(),
		c.Paths.CacheDir,
		c.Paths.LogDir,
		c.Paths.StateDir,
	}
	if c.Store.Backend == StoreBackendDir {
		dirs = append(dirs, c.Store.Dir)
	}
	for _, dir := range dirs {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// EpisodesDir returns the local directory holding exported composites and records.
func (c *Config) EpisodesDir() string {
	return filepath.Join(c.Paths.WorkDir, "episodes")
}

// HTMLDir returns the local directory holding rendered transcript pages.
func (c *Config) HTMLDir() string {
	return filepath.Join(c.Paths.WorkDir, "htmls")
}

// LedgerPath returns the SQLite run ledger location.
func (c *Config) LedgerPath() string {
	return filepath.Join(c.Paths.StateDir, "runs.db")
}

// LockPath returns the path of the single-run lock file.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.StateDir, "digestcast.lock")
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
