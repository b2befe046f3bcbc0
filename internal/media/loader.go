package media

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/sonroyaalmerol/tilawa/internal/cache"
	"github.com/sonroyaalmerol/tilawa/internal/config"
	"github.com/sonroyaalmerol/tilawa/internal/stream"
	"github.com/sonroyaalmerol/tilawa/internal/utils"
)

type (
	DecodeFunc  func(ctx context.Context, url, headers string, rate int) (*stream.Clip, error)
	ResolveFunc func(ctx context.Context, url string) (string, error)
)

// Loader turns resource URLs into clips. Concurrent loads of the same URL
// share one decode, and finished clips are kept in the cache, so the
// standby preload and a later reload of the same URL cost one fetch.
type Loader struct {
	cache   *cache.ClipCache
	group   singleflight.Group
	decode  DecodeFunc
	resolve ResolveFunc
	rate    int
	timeout time.Duration
}

func NewLoader(cfg *config.Config, c *cache.ClipCache) *Loader {
	l := &Loader{
		cache:   c,
		decode:  stream.DecodeClip,
		rate:    cfg.SampleRate,
		timeout: cfg.LoadTimeout,
	}
	if cfg.ResolvePages {
		l.resolve = stream.ResolveAudioURL
	}
	return l
}

// Load returns the clip for url. Cancelling ctx abandons the wait but not
// the shared decode, whose result still lands in the cache.
func (l *Loader) Load(ctx context.Context, url string) (*stream.Clip, error) {
	if l.cache != nil {
		if clip, ok := l.cache.Get(url); ok {
			return clip, nil
		}
	}

	ch := l.group.DoChan(url, func() (any, error) {
		return l.fetch(url)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*stream.Clip), nil
	}
}

func (l *Loader) fetch(url string) (*stream.Clip, error) {
	ctx := context.Background()
	if l.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}

	src := url
	if l.resolve != nil {
		resolved, err := l.resolve(ctx, url)
		if err != nil {
			return nil, fmt.Errorf("resolve %s: %w", url, err)
		}
		src = resolved
	}

	start := time.Now()
	headers := utils.BuildFFmpegHeaders(map[string]string{"user-agent": utils.RandomUserAgent()})
	clip, err := l.decode(ctx, src, headers, l.rate)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", url, err)
	}
	slog.Debug("clip decoded", "url", url, "duration", clip.Duration(), "took", time.Since(start))

	if l.cache != nil {
		l.cache.Put(url, clip)
	}
	return clip, nil
}
