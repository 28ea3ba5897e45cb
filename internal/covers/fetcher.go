// Package covers downloads, decodes and caches book cover images.
package covers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"time"

	"github.com/h2non/filetype"
	lru "github.com/hashicorp/golang-lru/v2"
	gobreaker "github.com/sony/gobreaker/v2"

	"bookrec/internal/domain"
	"bookrec/internal/logging"
	"bookrec/internal/metrics"
)

const breakerName = "cover-images"

// Options configure a Fetcher. Zero values fall back to DefaultOptions.
type Options struct {
	Timeout   time.Duration
	MaxBytes  int64
	CacheSize int
	// ConsecutiveFailures trips the breaker; it stays open for OpenTimeout.
	ConsecutiveFailures uint32
	OpenTimeout         time.Duration
	Client              *http.Client
}

func DefaultOptions() Options {
	return Options{
		Timeout:             10 * time.Second,
		MaxBytes:            5 << 20,
		CacheSize:           128,
		ConsecutiveFailures: 5,
		OpenTimeout:         30 * time.Second,
	}
}

// Fetcher retrieves cover images over HTTP. It is safe for concurrent use.
type Fetcher struct {
	client   *http.Client
	timeout  time.Duration
	maxBytes int64
	cb       *gobreaker.CircuitBreaker[[]byte]
	cache    *lru.Cache[string, image.Image]
}

func NewFetcher(opts Options) (*Fetcher, error) {
	def := DefaultOptions()
	if opts.Timeout <= 0 {
		opts.Timeout = def.Timeout
	}
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = def.MaxBytes
	}
	if opts.CacheSize <= 0 {
		opts.CacheSize = def.CacheSize
	}
	if opts.ConsecutiveFailures == 0 {
		opts.ConsecutiveFailures = def.ConsecutiveFailures
	}
	if opts.OpenTimeout <= 0 {
		opts.OpenTimeout = def.OpenTimeout
	}
	if opts.Client == nil {
		opts.Client = &http.Client{}
	}
	cache, err := lru.New[string, image.Image](opts.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create cover cache: %w", err)
	}

	metrics.CircuitBreakerState.WithLabelValues(breakerName).Set(0)
	cb := gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 1,
		Timeout:     opts.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= opts.ConsecutiveFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.WithComponent("covers").Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("circuit breaker state transition")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
		},
	})

	return &Fetcher{
		client:   opts.Client,
		timeout:  opts.Timeout,
		maxBytes: opts.MaxBytes,
		cb:       cb,
		cache:    cache,
	}, nil
}

// Fetch returns the decoded image at url. Transport, HTTP status and open-breaker failures
// wrap domain.ErrCoverFetch; payloads that are not a supported image wrap domain.ErrCoverDecode.
func (f *Fetcher) Fetch(ctx context.Context, url string) (image.Image, error) {
	if img, ok := f.cache.Get(url); ok {
		metrics.CoverCacheHits.Inc()
		return img, nil
	}
	metrics.CoverCacheMisses.Inc()

	data, err := f.cb.Execute(func() ([]byte, error) {
		return f.download(ctx, url)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.CoverFetches.WithLabelValues("circuit_open").Inc()
			return nil, fmt.Errorf("%w: %s: %w", domain.ErrCoverFetch, url, err)
		}
		metrics.CoverFetches.WithLabelValues("network").Inc()
		if errors.Is(err, domain.ErrCoverFetch) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrCoverFetch, url, err)
	}

	img, err := Decode(data)
	if err != nil {
		metrics.CoverFetches.WithLabelValues("decode").Inc()
		return nil, fmt.Errorf("%s: %w", url, err)
	}
	metrics.CoverFetches.WithLabelValues("ok").Inc()
	f.cache.Add(url, img)
	return img, nil
}

func (f *Fetcher) download(ctx context.Context, url string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "image/*")
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s: unexpected status %d", domain.ErrCoverFetch, url, resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > f.maxBytes {
		return nil, fmt.Errorf("%w: %s: larger than %d bytes", domain.ErrCoverFetch, url, f.maxBytes)
	}
	return data, nil
}

// Decode sniffs the payload type before handing it to the image decoders.
func Decode(data []byte) (image.Image, error) {
	kind, err := filetype.Match(data)
	if err != nil || kind == filetype.Unknown {
		return nil, fmt.Errorf("%w: unrecognized content", domain.ErrCoverDecode)
	}
	switch kind.MIME.Value {
	case "image/jpeg", "image/png", "image/gif":
	default:
		return nil, fmt.Errorf("%w: unsupported type %s", domain.ErrCoverDecode, kind.MIME.Value)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrCoverDecode, err)
	}
	return img, nil
}

// State reports the breaker state, e.g. "closed" or "open".
func (f *Fetcher) State() string { return f.cb.State().String() }

func stateToFloat(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}
