package erp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sync"
	"time"
)

// Client defines the source-system operations the sync engine needs.
type Client interface {
	// FetchChangedItems returns the pending items for one store, ordered
	// by parent key so the engine can group them without a second pass.
	FetchChangedItems(ctx context.Context, storeID string) ([]Item, error)
	// WriteBack updates confirmation fields on an item after a successful
	// reconciliation (storefront IDs, normalized prices, sync timestamp).
	WriteBack(ctx context.Context, code string, fields map[string]any) error
}

// serviceClient talks to the ERP service layer over HTTP with a session
// cookie established by Login. Sessions expire server-side; the client
// re-logs-in once on a 401 and replays the request.
type serviceClient struct {
	cfg  Config
	http *http.Client

	mu       sync.Mutex
	loggedIn bool
}

// NewClient creates an ERP service-layer client based on the configuration.
func NewClient(cfg Config) (Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("erp: base_url is required")
	}

	timeout := cfg.TimeoutSeconds
	if timeout <= 0 {
		timeout = 30
	}
	timeoutDuration := time.Duration(timeout) * time.Second

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("erp: failed to create cookie jar: %w", err)
	}

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   timeoutDuration,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   timeoutDuration,
		ResponseHeaderTimeout: timeoutDuration,
	}

	return &serviceClient{
		cfg: cfg,
		http: &http.Client{
			Transport: transport,
			Jar:       jar,
			Timeout:   timeoutDuration,
		},
	}, nil
}

func (c *serviceClient) login(ctx context.Context) error {
	body, _ := json.Marshal(map[string]string{
		"CompanyDB": c.cfg.Company,
		"UserName":  c.cfg.User,
		"Password":  c.cfg.Password,
	})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/Login", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("erp login: network error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("erp login failed: status %d: %s", resp.StatusCode, string(payload))
	}

	c.loggedIn = true
	return nil
}

// do performs an authenticated request, logging in lazily and retrying once
// on session expiry.
func (c *serviceClient) do(ctx context.Context, method, path string, payload any) (*http.Response, error) {
	c.mu.Lock()
	if !c.loggedIn {
		if err := c.login(ctx); err != nil {
			c.mu.Unlock()
			return nil, err
		}
	}
	c.mu.Unlock()

	build := func() (*http.Request, error) {
		var body io.Reader
		if payload != nil {
			raw, err := json.Marshal(payload)
			if err != nil {
				return nil, err
			}
			body = bytes.NewReader(raw)
		}
		req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, body)
		if err != nil {
			return nil, err
		}
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		return req, nil
	}

	req, err := build()
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("erp: network error: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		resp.Body.Close()
		c.mu.Lock()
		c.loggedIn = false
		err = c.login(ctx)
		c.mu.Unlock()
		if err != nil {
			return nil, err
		}
		req, err = build()
		if err != nil {
			return nil, err
		}
		resp, err = c.http.Do(req)
		if err != nil {
			return nil, fmt.Errorf("erp: network error: %w", err)
		}
	}

	return resp, nil
}

func (c *serviceClient) FetchChangedItems(ctx context.Context, storeID string) ([]Item, error) {
	batch := c.cfg.BatchSize
	if batch <= 0 {
		batch = 200
	}

	// Pending = flagged for sync and scoped to the requested store.
	// Ordering by parent key keeps each group contiguous in the batch.
	filter := fmt.Sprintf("U_Store eq '%s' and U_SyncPending eq 'Y'", storeID)
	path := fmt.Sprintf("/Items?$filter=%s&$orderby=U_ParentKey,ItemCode&$top=%d",
		url.QueryEscape(filter), batch)

	resp, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("erp fetch items: status %d: %s", resp.StatusCode, string(payload))
	}

	var envelope struct {
		Value []Item `json:"value"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("erp fetch items: decode failed: %w", err)
	}

	return envelope.Value, nil
}

func (c *serviceClient) WriteBack(ctx context.Context, code string, fields map[string]any) error {
	path := fmt.Sprintf("/Items('%s')", url.PathEscape(code))

	resp, err := c.do(ctx, http.MethodPatch, path, fields)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		payload, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("erp write-back for %s: status %d: %s", code, resp.StatusCode, string(payload))
	}

	return nil
}
