package config

const (
	StoreBackendGCS = "gcs"
	StoreBackendDir = "dir"

	SourceKindHTML = "html"
	SourceKindRSS  = "rss"
)

const (
	defaultWorkDir                = "~/.local/share/digestcast"
	defaultCacheDir               = "~/.cache/digestcast/audios"
	defaultLogDir                 = "~/.local/share/digestcast/logs"
	defaultStateDir               = "~/.local/state/digestcast"
	defaultJinglePath             = "~/.config/digestcast/jingle.mp3"
	defaultSourceKind             = SourceKindHTML
	defaultSourceBaseURL          = "https://learningenglish.voanews.com"
	defaultSourceTimeoutSeconds   = 30
	defaultSourceUserAgent        = "digestcast/0.1"
	defaultFFmpegBinary           = "ffmpeg"
	defaultFFprobeBinary          = "ffprobe"
	defaultSampleRate             = 44100
	defaultChannels               = 2
	defaultBitrate                = "128k"
	defaultDownloadTimeoutSeconds = 300
	defaultCacheRetentionDays     = 30
	defaultStoreBackend           = StoreBackendGCS
	defaultStoreDir               = "~/.local/share/digestcast/store"
	defaultFeedBaseURL            = "https://voa.snnm.net/"
	defaultFeedName               = "VOA pod cast with transcript"
	defaultFeedDescription        = "VOA pod cast with full transcript links"
	defaultFeedLanguage           = "en"
	defaultFeedCategory           = "Education"
	defaultFeedSubcategory        = "Language Courses"
	defaultFeedTitleFormat        = "VOA digest of {date}"
	defaultArticleFeedName        = "VOA articles with transcript"
	defaultEpisodeLimit           = 30
	defaultArticleLimit           = 100
	defaultHeadTimeoutSeconds     = 10
	defaultNotifyRequestTimeout   = 10
	defaultLogFormat              = "console"
	defaultLogLevel               = "info"
	defaultLogRetentionDays       = 60
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			WorkDir:    defaultWorkDir,
			CacheDir:   defaultCacheDir,
			LogDir:     defaultLogDir,
			StateDir:   defaultStateDir,
			JinglePath: defaultJinglePath,
		},
		Source: Source{
			Kind:           defaultSourceKind,
			BaseURL:        defaultSourceBaseURL,
			TimeoutSeconds: defaultSourceTimeoutSeconds,
			UserAgent:      defaultSourceUserAgent,
		},
		Audio: Audio{
			FFmpegBinary:           defaultFFmpegBinary,
			FFprobeBinary:          defaultFFprobeBinary,
			SampleRate:             defaultSampleRate,
			Channels:               defaultChannels,
			Bitrate:                defaultBitrate,
			DownloadTimeoutSeconds: defaultDownloadTimeoutSeconds,
			CacheRetentionDays:     defaultCacheRetentionDays,
		},
		Store: Store{
			Backend: defaultStoreBackend,
			Dir:     defaultStoreDir,
		},
		Feed: Feed{
			BaseURL:            defaultFeedBaseURL,
			Name:               defaultFeedName,
			Description:        defaultFeedDescription,
			Language:           defaultFeedLanguage,
			Category:           defaultFeedCategory,
			Subcategory:        defaultFeedSubcategory,
			TitleFormat:        defaultFeedTitleFormat,
			ArticleFeedName:    defaultArticleFeedName,
			EpisodeLimit:       defaultEpisodeLimit,
			ArticleLimit:       defaultArticleLimit,
			HeadTimeoutSeconds: defaultHeadTimeoutSeconds,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyRequestTimeout,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
