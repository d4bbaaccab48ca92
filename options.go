package beheader

import "log/slog"

type buildConfig struct {
	logger            *slog.Logger
	limits            Limits
	patchChunkOffsets bool
	ffmpegPath        string
	ffprobePath       string
}

type Option func(*buildConfig)

func newBuildConfig(opts []Option) buildConfig {
	cfg := buildConfig{
		logger:      slog.Default(),
		limits:      defaultLimits(),
		ffmpegPath:  "ffmpeg",
		ffprobePath: "ffprobe",
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	cfg.limits = cfg.limits.withDefaults()
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}
	return cfg
}

// WithLogger routes skip warnings and degrade notices through l. Fatal
// errors are returned, never logged.
func WithLogger(l *slog.Logger) Option {
	return func(c *buildConfig) { c.logger = l }
}

func WithLimits(l Limits) Option {
	return func(c *buildConfig) { c.limits = l }
}

// WithChunkOffsetPatch shifts stco/co64 tables in the media remainder to
// account for the bytes prepended before it. The remainder is otherwise
// passed through untouched.
func WithChunkOffsetPatch(v bool) Option {
	return func(c *buildConfig) { c.patchChunkOffsets = v }
}

func WithFFmpegPath(p string) Option {
	return func(c *buildConfig) { c.ffmpegPath = p }
}

func WithFFprobePath(p string) Option {
	return func(c *buildConfig) { c.ffprobePath = p }
}
