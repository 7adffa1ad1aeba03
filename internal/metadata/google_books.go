package metadata

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
	"google.golang.org/api/books/v1"
	"google.golang.org/api/option"
)

const defaultGoogleBooksTimeout = 10 * time.Second

type GoogleBooksConfig struct {
	Enabled  bool
	APIKey   string
	Endpoint string
	Timeout  time.Duration
}

type GoogleBooksClient struct {
	enabled bool
	timeout time.Duration
	svc     *books.Service
}

func NewGoogleBooksClient(ctx context.Context, cfg GoogleBooksConfig) (*GoogleBooksClient, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultGoogleBooksTimeout
	}
	opts := []option.ClientOption{}
	if cfg.APIKey != "" {
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	} else {
		opts = append(opts, option.WithoutAuthentication())
	}
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.Endpoint))
	}
	svc, err := books.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("init google books service: %w", err)
	}
	return &GoogleBooksClient{
		enabled: cfg.Enabled,
		timeout: timeout,
		svc:     svc,
	}, nil
}

func (c *GoogleBooksClient) Name() string {
	return SourceGoogleBooks
}

func (c *GoogleBooksClient) Enabled() bool {
	return c != nil && c.enabled
}

func (c *GoogleBooksClient) Lookup(ctx context.Context, isbn string) LookupResult {
	if !c.Enabled() {
		return disabled(SourceGoogleBooks)
	}
	clean := CleanISBN(isbn)
	if clean == "" {
		return absent(SourceGoogleBooks)
	}
	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.svc.Volumes.List("isbn:" + clean).Context(reqCtx).Do()
	if err != nil {
		logutil.GetLogger(ctx).Warn("google books lookup failed", zap.String("isbn", clean), zap.Error(err))
		return failed(SourceGoogleBooks, err)
	}
	if resp == nil || resp.TotalItems == 0 || len(resp.Items) == 0 {
		return absent(SourceGoogleBooks)
	}
	item := resp.Items[0]
	if item == nil || item.VolumeInfo == nil {
		return failed(SourceGoogleBooks, errors.New("google books volume has no volume info"))
	}
	return found(SourceGoogleBooks, normalizeGoogleVolume(item.VolumeInfo, clean))
}
