// Package upstream retrieves the character profile and scenario name tables
// and converts them into reconciliation inputs.
package upstream

import (
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/agentstation/rollcall/pkg/assets"
	"github.com/agentstation/rollcall/pkg/constants"
	"github.com/agentstation/rollcall/pkg/errors"
	"github.com/agentstation/rollcall/pkg/logging"
	"github.com/agentstation/rollcall/pkg/reconciler"
)

// Client downloads upstream tables into a cache directory. A table on disk
// younger than TTL is reused; decoded bytes are memoized in memory.
//
// With an empty BaseURL the client reads tables from CacheDir only.
type Client struct {
	BaseURL  string
	CacheDir string
	TTL      time.Duration
	Client   *http.Client

	memo *gocache.Cache
}

// NewClient creates a client for tables published under baseURL.
func NewClient(baseURL, cacheDir string) *Client {
	return &Client{
		BaseURL:  strings.TrimSuffix(baseURL, "/"),
		CacheDir: cacheDir,
		TTL:      constants.CacheTTL,
		Client:   &http.Client{Timeout: constants.DefaultHTTPTimeout},
		memo:     gocache.New(constants.CacheTTL, constants.CacheCleanupInterval),
	}
}

// Path returns the cache path of table.
func (c *Client) Path(table Table) string {
	return filepath.Join(c.CacheDir, string(table))
}

// Fetch returns the raw bytes of table, downloading it when the cached copy
// is missing or stale.
func (c *Client) Fetch(ctx context.Context, table Table) ([]byte, error) {
	if c.memo != nil {
		if data, ok := c.memo.Get(string(table)); ok {
			return data.([]byte), nil
		}
	}

	logger := logging.FromContext(ctx).With().Str("table", string(table)).Logger()
	path := c.Path(table)

	if c.BaseURL != "" && !c.isCacheValid(path) {
		logger.Info().Str("url", c.url(table)).Msg("Downloading upstream table")
		if err := c.download(ctx, table); err != nil {
			return nil, err
		}
	} else {
		logger.Debug().Str("path", path).Msg("Using cached upstream table")
	}

	data, err := os.ReadFile(path) //nolint:gosec // cache path is built from a fixed table name
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewResourceError("load", "table", string(table), err)
		}
		return nil, errors.WrapIO("read", path, err)
	}

	if c.memo != nil {
		c.memo.Set(string(table), data, gocache.DefaultExpiration)
	}
	return data, nil
}

// FetchAll downloads every table a build needs.
func (c *Client) FetchAll(ctx context.Context) error {
	for _, table := range Tables {
		if _, err := c.Fetch(ctx, table); err != nil {
			return err
		}
	}
	return nil
}

// Profiles fetches and parses the profile table.
func (c *Client) Profiles(ctx context.Context) ([]reconciler.Profile, error) {
	data, err := c.Fetch(ctx, ProfileTable)
	if err != nil {
		return nil, err
	}
	return ParseProfiles(data)
}

// Labels fetches and parses the scenario name table.
func (c *Client) Labels(ctx context.Context) ([]assets.Label, error) {
	data, err := c.Fetch(ctx, LabelTable)
	if err != nil {
		return nil, err
	}
	return ParseLabels(data)
}

// Invalidate drops memoized tables so the next Fetch rereads the cache
// directory.
func (c *Client) Invalidate() {
	if c.memo != nil {
		c.memo.Flush()
	}
}

// Cleanup removes the cache directory.
func (c *Client) Cleanup() error {
	c.Invalidate()
	if _, err := os.Stat(c.CacheDir); os.IsNotExist(err) {
		return nil
	}
	return os.RemoveAll(c.CacheDir)
}

func (c *Client) url(table Table) string {
	return c.BaseURL + "/" + string(table)
}

func (c *Client) download(ctx context.Context, table Table) error {
	if err := os.MkdirAll(c.CacheDir, constants.DirPermissions); err != nil {
		return errors.WrapIO("create", "cache directory", err)
	}

	url := c.url(table)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return errors.WrapResource("create", "request", url, err)
	}
	resp, err := c.Client.Do(req)
	if err != nil {
		return &errors.APIError{
			Source:   "upstream",
			Endpoint: url,
			Message:  "failed to download " + string(table),
			Err:      err,
		}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return &errors.APIError{
			Source:     "upstream",
			Endpoint:   url,
			StatusCode: resp.StatusCode,
			Message:    resp.Status,
		}
	}

	tempFile, err := os.CreateTemp(c.CacheDir, "table_*.json")
	if err != nil {
		return errors.WrapIO("create", "temp file", err)
	}
	tempPath := tempFile.Name()

	if _, err := io.Copy(tempFile, resp.Body); err != nil {
		_ = tempFile.Close()
		_ = os.Remove(tempPath)
		return errors.WrapIO("write", string(table), err)
	}
	if err := tempFile.Close(); err != nil {
		_ = os.Remove(tempPath)
		return errors.WrapIO("write", string(table), err)
	}

	// Atomically move temp file to final location
	if err := os.Rename(tempPath, c.Path(table)); err != nil {
		_ = os.Remove(tempPath)
		return errors.WrapIO("move", string(table), err)
	}
	return nil
}

// isCacheValid checks if the cached table is recent enough.
func (c *Client) isCacheValid(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return time.Since(info.ModTime()) < c.TTL
}
