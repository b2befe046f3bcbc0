package config

import "time"

type Config struct {
	ListenAddr         string
	LogLevel           string // debug/info/warn/error
	AllowedOrigins     []string
	CacheLimitBytes    int64
	LoadTimeout        time.Duration
	ProgressInterval   time.Duration
	DefaultFrameHeight int
	FrameMargin        int
	APIVersion         int
	SampleRate         int
	ResolvePages       bool // resolve non-audio page URLs through yt-dlp
	DefaultMode        string
}
