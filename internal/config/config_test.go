package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"digestcast/internal/config"
)

func TestLoadDefaultConfigUsesEnvBucketAndExpandsPaths(t *testing.T) {
	t.Setenv("DIGESTCAST_BUCKET", "voa.example.net")
	t.Setenv("NTFY_TOPIC", "")
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantWork := filepath.Join(tempHome, ".local", "share", "digestcast")
	if cfg.Paths.WorkDir != wantWork {
		t.Fatalf("unexpected work dir: got %q want %q", cfg.Paths.WorkDir, wantWork)
	}
	if cfg.Paths.CacheDir != filepath.Join(tempHome, ".cache", "digestcast", "audios") {
		t.Fatalf("unexpected cache dir: %q", cfg.Paths.CacheDir)
	}
	if cfg.Store.Bucket != "voa.example.net" {
		t.Fatalf("expected bucket from env, got %q", cfg.Store.Bucket)
	}
	if cfg.Store.Backend != config.StoreBackendGCS {
		t.Fatalf("expected gcs backend by default, got %q", cfg.Store.Backend)
	}
	if cfg.Feed.EpisodeLimit != 30 {
		t.Fatalf("expected episode limit 30, got %d", cfg.Feed.EpisodeLimit)
	}
	if cfg.Feed.ArticleLimit != 100 {
		t.Fatalf("expected article limit 100, got %d", cfg.Feed.ArticleLimit)
	}
	if cfg.Feed.BaseURL != "https://voa.snnm.net/" {
		t.Fatalf("unexpected feed base url: %q", cfg.Feed.BaseURL)
	}
	if cfg.Source.Kind != config.SourceKindHTML {
		t.Fatalf("expected html source by default, got %q", cfg.Source.Kind)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}

	for _, dir := range []string{cfg.Paths.WorkDir, cfg.EpisodesDir(), cfg.HTMLDir(), cfg.Paths.CacheDir, cfg.Paths.LogDir, cfg.Paths.StateDir} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %q to be directory", dir)
		}
	}
}

func TestLoadCustomPath(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "digestcast.toml")

	type payload struct {
		Store struct {
			Backend string `toml:"backend"`
			Dir     string `toml:"dir"`
		} `toml:"store"`
		Feed struct {
			BaseURL      string `toml:"base_url"`
			EpisodeLimit int    `toml:"episode_limit"`
			ArticleLimit int    `toml:"article_limit"`
		} `toml:"feed"`
	}
	custom := payload{}
	custom.Store.Backend = "dir"
	custom.Store.Dir = filepath.Join(tempDir, "bucket")
	custom.Feed.BaseURL = "https://example.com/pod"
	custom.Feed.EpisodeLimit = 7
	custom.Feed.ArticleLimit = 12
	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected exists to be true")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, configPath)
	}
	if cfg.Store.Backend != config.StoreBackendDir {
		t.Fatalf("expected dir backend, got %q", cfg.Store.Backend)
	}
	if cfg.Store.Dir != filepath.Join(tempDir, "bucket") {
		t.Fatalf("unexpected store dir: %q", cfg.Store.Dir)
	}
	if cfg.Feed.BaseURL != "https://example.com/pod/" {
		t.Fatalf("expected trailing slash on feed base url, got %q", cfg.Feed.BaseURL)
	}
	if cfg.Feed.EpisodeLimit != 7 || cfg.Feed.ArticleLimit != 12 {
		t.Fatalf("unexpected limits: %d %d", cfg.Feed.EpisodeLimit, cfg.Feed.ArticleLimit)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{"missing bucket", "[store]\nbackend = \"gcs\"\nbucket = \"\"\n", "store.bucket"},
		{"unknown backend", "[store]\nbackend = \"s3\"\n", "store.backend"},
		{"unknown source", "[store]\nbackend = \"dir\"\n[source]\nkind = \"atom\"\n", "source.kind"},
		{"rss without feed url", "[store]\nbackend = \"dir\"\n[source]\nkind = \"rss\"\n", "source.feed_url"},
		{"bad language", "[store]\nbackend = \"dir\"\n[feed]\nlanguage = \"not a tag\"\n", "feed.language"},
		{"title without date", "[store]\nbackend = \"dir\"\n[feed]\ntitle_format = \"Digest\"\n", "{date}"},
		{"zero article limit", "[store]\nbackend = \"dir\"\n[feed]\narticle_limit = 0\n", "feed.article_limit"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("DIGESTCAST_BUCKET", "")
			path := filepath.Join(t.TempDir(), "digestcast.toml")
			if err := os.WriteFile(path, []byte(tt.body), 0o644); err != nil {
				t.Fatalf("write config: %v", err)
			}
			_, _, _, err := config.Load(path)
			if err == nil {
				t.Fatalf("expected error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestCreateSampleIsLoadable(t *testing.T) {
	t.Setenv("DIGESTCAST_BUCKET", "sample-bucket")
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load sample: %v", err)
	}
	if !exists {
		t.Fatal("expected sample file to exist")
	}
	if cfg.Feed.TitleFormat != "VOA digest of {date}" {
		t.Fatalf("unexpected title format: %q", cfg.Feed.TitleFormat)
	}
}
