package utils

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"strings"
)

func RandomUserAgent() string {
	// Target Chrome major versions roughly within last ~6 months
	const minMajor = 132
	const maxMajor = 138

	major := rand.IntN(maxMajor-minMajor+1) + minMajor
	return fmt.Sprintf(
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/%d.0.0.0 Safari/537.36",
		major,
	)
}

func canonHeader(k string) string {
	k = strings.TrimSpace(k)
	switch strings.ToLower(k) {
	case "user-agent":
		return "User-Agent"
	case "referer":
		return "Referer"
	case "accept":
		return "Accept"
	case "accept-language":
		return "Accept-Language"
	case "origin":
		return "Origin"
	case "cookie":
		return "Cookie"
	case "range":
		return "Range"
	case "authorization":
		return "Authorization"
	default:
		if len(k) == 0 {
			return k
		}
		return strings.ToUpper(k[:1]) + k[1:]
	}
}

// BuildFFmpegHeaders builds a CRLF-joined header string for the AVFormat
// "headers" option. An empty map yields no headers at all; otherwise a
// User-Agent and Accept are filled in when missing.
func BuildFFmpegHeaders(base map[string]string) string {
	if len(base) == 0 {
		return ""
	}

	h := make(map[string]string, len(base)+2)
	for k, v := range base {
		if k = canonHeader(k); k != "" {
			h[k] = strings.TrimSpace(v)
		}
	}
	if _, ok := h["User-Agent"]; !ok {
		h["User-Agent"] = RandomUserAgent()
	}
	if _, ok := h["Accept"]; !ok {
		h["Accept"] = "*/*"
	}

	keys := make([]string, 0, len(h))
	for k := range h {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, strings.Compare)

	var b strings.Builder
	for _, k := range keys {
		// FFmpeg wants CRLF separators; no trailing extra CRLF needed
		fmt.Fprintf(&b, "%s: %s\r\n", k, h[k])
	}
	return b.String()
}
