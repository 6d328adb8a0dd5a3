package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/text/language"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateSource(); err != nil {
		return err
	}
	if err := c.validateAudio(); err != nil {
		return err
	}
	if err := c.validateStore(); err != nil {
		return err
	}
	if err := c.validateFeed(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateSource() error {
	switch c.Source.Kind {
	case SourceKindHTML:
		if err := validateHTTPURL("source.base_url", c.Source.BaseURL); err != nil {
			return err
		}
	case SourceKindRSS:
		if strings.TrimSpace(c.Source.FeedURL) == "" {
			return errors.New("source.feed_url must be set when source.kind is \"rss\"")
		}
		if err := validateHTTPURL("source.feed_url", c.Source.FeedURL); err != nil {
			return err
		}
	default:
		return fmt.Errorf("source.kind: unsupported value %q (expected %q or %q)", c.Source.Kind, SourceKindHTML, SourceKindRSS)
	}
	return nil
}

func (c *Config) validateAudio() error {
	if c.Audio.SampleRate <= 0 {
		return errors.New("audio.sample_rate must be positive")
	}
	if c.Audio.Channels <= 0 || c.Audio.Channels > 2 {
		return errors.New("audio.channels must be 1 or 2")
	}
	return nil
}

func (c *Config) validateStore() error {
	switch c.Store.Backend {
	case StoreBackendGCS:
		if c.Store.Bucket == "" {
			defaultPath, err := DefaultConfigPath()
			if err != nil {
				defaultPath = "~/.config/digestcast/config.toml"
			}
			return fmt.Errorf("store.bucket is required for the gcs backend. Set DIGESTCAST_BUCKET or edit %s (create with 'digestcast config init')", defaultPath)
		}
	case StoreBackendDir:
		if strings.TrimSpace(c.Store.Dir) == "" {
			return errors.New("store.dir must be set when store.backend is \"dir\"")
		}
	default:
		return fmt.Errorf("store.backend: unsupported value %q (expected %q or %q)", c.Store.Backend, StoreBackendGCS, StoreBackendDir)
	}
	return nil
}

func (c *Config) validateFeed() error {
	if err := validateHTTPURL("feed.base_url", c.Feed.BaseURL); err != nil {
		return err
	}
	if _, err := language.Parse(c.Feed.Language); err != nil {
		return fmt.Errorf("feed.language: %q is not a valid BCP 47 tag: %w", c.Feed.Language, err)
	}
	if !strings.Contains(c.Feed.TitleFormat, "{date}") {
		return errors.New("feed.title_format must contain the {date} placeholder")
	}
	if c.Feed.ArticleLimit <= 0 {
		return errors.New("feed.article_limit must be positive")
	}
	return nil
}

func validateHTTPURL(field, raw string) error {
	parsed, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s: %w", field, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("%s must be an http(s) URL, got %q", field, raw)
	}
	if parsed.Host == "" {
		return fmt.Errorf("%s must include a host, got %q", field, raw)
	}
	return nil
}
