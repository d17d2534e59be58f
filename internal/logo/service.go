package logo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/retain-dental/retain/internal/metrics"
)

const (
	cacheKeyPrefix  = "clinic-logo:"
	maxLogoBytes    = 2 << 20
	defaultCacheTTL = time.Hour
	defaultTimeout  = 5 * time.Second
)

// ErrUpstream is returned when the logo host cannot serve the image.
var ErrUpstream = errors.New("logo upstream unavailable")

// Image is a fetched logo ready to pass through to the client.
type Image struct {
	ContentType string
	Body        []byte
}

// Config tunes the logo service.
type Config struct {
	CacheTTL     time.Duration
	FetchTimeout time.Duration
}

// Service resolves clinic logos, caching slug lookups in Redis.
type Service struct {
	directory Directory
	cache     *redis.Client
	http      *http.Client
	ttl       time.Duration
	logger    *slog.Logger
	metrics   *metrics.Metrics
}

// NewService builds a logo service. cache may be nil, in which case every
// request goes to the directory.
func NewService(directory Directory, cache *redis.Client, cfg Config, logger *slog.Logger, m *metrics.Metrics) *Service {
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = defaultCacheTTL
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = defaultTimeout
	}
	return &Service{
		directory: directory,
		cache:     cache,
		http:      &http.Client{Timeout: cfg.FetchTimeout},
		ttl:       cfg.CacheTTL,
		logger:    logger,
		metrics:   m,
	}
}

// Resolve returns the logo URL for slug.
func (s *Service) Resolve(ctx context.Context, slug string) (string, error) {
	key := cacheKeyPrefix + slug
	if s.cache != nil {
		url, err := s.cache.Get(ctx, key).Result()
		switch {
		case err == nil:
			s.metrics.IncLogoCache(true)
			return url, nil
		case !errors.Is(err, redis.Nil):
			s.logger.Warn("logo cache read failed", "slug", slug, "error", err)
		}
		s.metrics.IncLogoCache(false)
	}

	url, err := s.directory.FindClinicLogoBySlug(ctx, slug)
	if err != nil {
		return "", err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, url, s.ttl).Err(); err != nil {
			s.logger.Warn("logo cache write failed", "slug", slug, "error", err)
		}
	}
	return url, nil
}

// Fetch resolves slug and downloads the logo image.
func (s *Service) Fetch(ctx context.Context, slug string) (Image, error) {
	url, err := s.Resolve(ctx, slug)
	if err != nil {
		return Image{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Image{}, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	resp, err := s.http.Do(req)
	if err != nil {
		return Image{}, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Image{}, fmt.Errorf("%w: status %d", ErrUpstream, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxLogoBytes+1))
	if err != nil {
		return Image{}, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	if len(body) > maxLogoBytes {
		return Image{}, fmt.Errorf("%w: logo exceeds %d bytes", ErrUpstream, maxLogoBytes)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(body)
	}
	if !isImage(contentType) {
		return Image{}, fmt.Errorf("%w: content type %q is not an image", ErrUpstream, contentType)
	}
	return Image{ContentType: contentType, Body: body}, nil
}

func isImage(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	return err == nil && strings.HasPrefix(mediaType, "image/")
}
