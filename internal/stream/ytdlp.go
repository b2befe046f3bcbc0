package stream

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"
	"sync"

	ytdlp "github.com/lrstanley/go-ytdlp"
)

var ErrNoPlayableURL = errors.New("yt-dlp returned no playable url")

type YTDLPFormat struct {
	Url string `json:"url"`
}

type YTDLPInfo struct {
	Id               string        `json:"id"`
	Title            string        `json:"title"`
	Duration         float64       `json:"duration"`
	WebpageUrl       string        `json:"webpage_url"`
	Url              string        `json:"url"`
	Formats          []YTDLPFormat `json:"formats"`
	RequestedFormats []YTDLPFormat `json:"requested_formats"`
}

var (
	installOnce sync.Once
	installErr  error
)

var audioExts = map[string]bool{
	".mp3": true, ".m4a": true, ".aac": true, ".ogg": true, ".oga": true,
	".opus": true, ".wav": true, ".flac": true, ".webm": true,
}

// IsDirectAudio reports whether u already points at an audio file and can be
// handed to the decoder without resolving it first.
func IsDirectAudio(u string) bool {
	parsed, err := url.Parse(u)
	if err != nil {
		return false
	}
	if parsed.Scheme == "" || parsed.Scheme == "file" {
		return true
	}
	return audioExts[strings.ToLower(path.Ext(parsed.Path))]
}

func s(ptr *string) string {
	if ptr == nil {
		return ""
	}
	return *ptr
}

func f(ptr *float64) float64 {
	if ptr == nil {
		return 0
	}
	return *ptr
}

func mapFormats(fs []*ytdlp.ExtractedFormat) []YTDLPFormat {
	if len(fs) == 0 {
		return nil
	}
	out := make([]YTDLPFormat, 0, len(fs))
	for _, f := range fs {
		if f == nil {
			continue
		}
		out = append(out, YTDLPFormat{Url: f.URL})
	}
	return out
}

// YtdlpGetInfo runs yt-dlp -J -f bestaudio/best URL.
func YtdlpGetInfo(ctx context.Context, url string) (*YTDLPInfo, error) {
	installOnce.Do(func() {
		_, installErr = ytdlp.Install(ctx, nil)
	})
	if installErr != nil {
		return nil, fmt.Errorf("yt-dlp install: %w", installErr)
	}

	cmd := ytdlp.New().
		Format("ba[ext=m4a]/ba[ext=mp3]/bestaudio/best").
		NoCheckCertificates().
		NoPlaylist().
		DumpJSON()

	res, err := cmd.Run(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("yt-dlp run: %w", err)
	}

	infos, err := res.GetExtractedInfo()
	if err != nil {
		return nil, fmt.Errorf("parse yt-dlp json: %w", err)
	}
	if len(infos) == 0 || infos[0] == nil {
		return nil, fmt.Errorf("parse yt-dlp json: no info returned")
	}
	ext := infos[0]
	return &YTDLPInfo{
		Id:               ext.ID,
		Title:            s(ext.Title),
		Duration:         f(ext.Duration),
		WebpageUrl:       s(ext.WebpageURL),
		Url:              s(ext.URL),
		Formats:          mapFormats(ext.Formats),
		RequestedFormats: mapFormats(ext.RequestedFormats),
	}, nil
}

// YtdlpAudioURL returns the best playable URL.
// Preferred order: requested_formats, top-level url, then the last of formats[]
// (yt-dlp sorts formats worst to best).
func YtdlpAudioURL(info *YTDLPInfo) string {
	if info == nil {
		return ""
	}
	for _, rf := range info.RequestedFormats {
		if strings.HasPrefix(rf.Url, "http") {
			return rf.Url
		}
	}
	if strings.HasPrefix(info.Url, "http") {
		return info.Url
	}
	for i := len(info.Formats) - 1; i >= 0; i-- {
		if strings.HasPrefix(info.Formats[i].Url, "http") {
			return info.Formats[i].Url
		}
	}
	return ""
}

// ResolveAudioURL turns a page URL into a direct media URL. Direct audio URLs
// are returned unchanged.
func ResolveAudioURL(ctx context.Context, u string) (string, error) {
	if IsDirectAudio(u) {
		return u, nil
	}
	info, err := YtdlpGetInfo(ctx, u)
	if err != nil {
		return "", err
	}
	media := YtdlpAudioURL(info)
	if media == "" {
		return "", fmt.Errorf("%s: %w", u, ErrNoPlayableURL)
	}
	return media, nil
}
