package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
)

const (
	defaultOpenLibraryBaseURL       = "https://openlibrary.org"
	defaultOpenLibraryTimeout       = 10 * time.Second
	defaultOpenLibraryAuthorTimeout = 5 * time.Second
)

type OpenLibraryConfig struct {
	Enabled       bool
	BaseURL       string
	Timeout       time.Duration
	AuthorTimeout time.Duration
}

type OpenLibraryClient struct {
	enabled       bool
	baseURL       string
	client        *http.Client
	authorTimeout time.Duration
}

func NewOpenLibraryClient(cfg OpenLibraryConfig) *OpenLibraryClient {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultOpenLibraryBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultOpenLibraryTimeout
	}
	authorTimeout := cfg.AuthorTimeout
	if authorTimeout <= 0 {
		authorTimeout = defaultOpenLibraryAuthorTimeout
	}
	return &OpenLibraryClient{
		enabled:       cfg.Enabled,
		baseURL:       baseURL,
		client:        &http.Client{Timeout: timeout},
		authorTimeout: authorTimeout,
	}
}

func (c *OpenLibraryClient) Name() string {
	return SourceOpenLibrary
}

func (c *OpenLibraryClient) Enabled() bool {
	return c != nil && c.enabled
}

func (c *OpenLibraryClient) Lookup(ctx context.Context, isbn string) LookupResult {
	if !c.Enabled() {
		return disabled(SourceOpenLibrary)
	}
	clean := CleanISBN(isbn)
	if clean == "" {
		return absent(SourceOpenLibrary)
	}
	var raw rawObject
	status, err := c.getJSON(ctx, c.client, c.baseURL+"/isbn/"+clean+".json", &raw)
	if status == http.StatusNotFound {
		return absent(SourceOpenLibrary)
	}
	if err != nil {
		logutil.GetLogger(ctx).Warn("open library lookup failed", zap.String("isbn", clean), zap.Error(err))
		return failed(SourceOpenLibrary, err)
	}
	if raw == nil {
		return failed(SourceOpenLibrary, fmt.Errorf("open library returned empty edition for %s", clean))
	}
	return found(SourceOpenLibrary, normalizeOpenLibraryEdition(ctx, raw, clean, c.authorName))
}

// authorName fetches one author record. Errors are returned to the
// normalizer, which drops that author and keeps going.
func (c *OpenLibraryClient) authorName(ctx context.Context, key string) (string, error) {
	if !strings.HasPrefix(key, "/") {
		key = "/" + key
	}
	reqCtx, cancel := context.WithTimeout(ctx, c.authorTimeout)
	defer cancel()
	var author struct {
		Name         string `json:"name"`
		PersonalName string `json:"personal_name"`
	}
	if _, err := c.getJSON(reqCtx, c.client, c.baseURL+key+".json", &author); err != nil {
		logutil.GetLogger(ctx).Debug("open library author lookup failed", zap.String("key", key), zap.Error(err))
		return "", err
	}
	if author.Name != "" {
		return author.Name, nil
	}
	return author.PersonalName, nil
}

func (c *OpenLibraryClient) getJSON(ctx context.Context, client *http.Client, url string, out interface{}) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp.StatusCode, fmt.Errorf("open library status %d for %s", resp.StatusCode, url)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return resp.StatusCode, fmt.Errorf("decode open library payload: %w", err)
	}
	return resp.StatusCode, nil
}
