package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

func getenv(key, def string) string {
	val := os.Getenv(key)
	if val == "" {
		return def
	}
	return val
}

func mustAtoi64(s string) int64 {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return v
}

func atoiDefault(s string, def int) int {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return def
	}
	return v
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func LoadConfig() (*Config, error) {
	// CACHE_LIMIT is a plain byte count; decoded PCM is large, 256MB holds a few surahs.
	cacheLimit := getenv("CACHE_LIMIT", "268435456")
	cfg := &Config{
		ListenAddr:         getenv("LISTEN_ADDR", ":8501"),
		LogLevel:           strings.ToLower(getenv("LOG_LEVEL", "info")),
		AllowedOrigins:     splitList(os.Getenv("ALLOWED_ORIGINS")),
		CacheLimitBytes:    mustAtoi64(cacheLimit),
		LoadTimeout:        time.Duration(atoiDefault(getenv("LOAD_TIMEOUT", "30"), 30)) * time.Second,
		ProgressInterval:   time.Duration(atoiDefault(getenv("PROGRESS_INTERVAL_MS", "250"), 250)) * time.Millisecond,
		DefaultFrameHeight: atoiDefault(getenv("DEFAULT_FRAME_HEIGHT", "220"), 220),
		FrameMargin:        atoiDefault(getenv("FRAME_MARGIN", "8"), 8),
		APIVersion:         atoiDefault(getenv("API_VERSION", "1"), 1),
		SampleRate:         atoiDefault(getenv("SAMPLE_RATE", "48000"), 48000),
		ResolvePages:       getenv("RESOLVE_PAGES", "false") == "true",
		DefaultMode:        getenv("DEFAULT_MODE", "Arabic (Mishary Rashid)"),
	}

	if cfg.ListenAddr == "" {
		return nil, ErrConfig("LISTEN_ADDR required")
	}
	if cfg.CacheLimitBytes <= 0 {
		return nil, ErrConfig("CACHE_LIMIT must be a positive byte count")
	}
	if cfg.SampleRate <= 0 {
		return nil, ErrConfig("SAMPLE_RATE must be positive")
	}
	if cfg.ProgressInterval <= 0 {
		cfg.ProgressInterval = 250 * time.Millisecond
	}
	if _, err := ParseLevel(cfg.LogLevel); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ParseLevel maps LOG_LEVEL values onto slog levels.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, ErrConfig("unknown LOG_LEVEL " + strconv.Quote(s))
}

// OriginAllowed reports whether a WebSocket origin may connect. An empty
// allow list accepts any origin.
func (c *Config) OriginAllowed(origin string) bool {
	if len(c.AllowedOrigins) == 0 {
		return true
	}
	for _, o := range c.AllowedOrigins {
		if strings.EqualFold(o, origin) {
			return true
		}
	}
	return false
}

type ErrConfig string

func (e ErrConfig) Error() string { return string(e) }
