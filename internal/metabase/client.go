// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package metabase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/canonical/utill/internal/logging"
	"github.com/canonical/utill/internal/monitoring"
	"github.com/canonical/utill/internal/tracing"
)

const (
	apiKeyHeader = "x-api-key"
	maxErrorBody = 4096
)

type Config struct {
	BaseURL string
	APIKey  string
}

// Client is a thin JSON client for the BI server REST API.
type Client struct {
	baseURL *url.URL
	apiKey  string
	http    *http.Client

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func (c *Client) do(ctx context.Context, method Method, endpoint string, body, out any) error {
	resp, err := c.send(ctx, method, endpoint, body, "application/json")
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to decode %s %s response: %w", method, endpoint, err)
	}
	return nil
}

// stream copies the raw response body of a successful call into w.
func (c *Client) stream(ctx context.Context, method Method, endpoint string, body any, w io.Writer) (int64, error) {
	resp, err := c.send(ctx, method, endpoint, body, "*/*")
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return n, fmt.Errorf("failed to read %s %s response: %w", method, endpoint, err)
	}
	return n, nil
}

func (c *Client) send(ctx context.Context, method Method, endpoint string, body any, accept string) (*http.Response, error) {
	if !method.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrUnknownMethod, method)
	}

	route, _, _ := strings.Cut(endpoint, "?")
	ctx, span := c.tracer.Start(ctx, "metabase.Client."+method.String()+" "+route)
	defer span.End()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode %s %s payload: %w", method, endpoint, err)
		}
		reader = bytes.NewReader(payload)
	}

	target, err := c.baseURL.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid endpoint %q: %w", endpoint, err)
	}

	req, err := http.NewRequestWithContext(ctx, method.String(), target.String(), reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set(apiKeyHeader, c.apiKey)
	req.Header.Set("Accept", accept)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.logger.Debugf("%s %s", method, endpoint)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		_ = c.monitor.SetDependencyAvailability(map[string]string{"component": "metabase"}, 0)
		return nil, fmt.Errorf("%w: %s %s: %v", ErrRemoteCallFailed, method, endpoint, err)
	}
	_ = c.monitor.SetDependencyAvailability(map[string]string{"component": "metabase"}, 1)
	_ = c.monitor.SetResponseTimeMetric(
		map[string]string{"route": method.String() + " " + route, "status": strconv.Itoa(resp.StatusCode)},
		time.Since(start).Seconds(),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &RemoteError{
			Method:     method,
			Endpoint:   endpoint,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(msg)),
		}
	}

	return resp, nil
}

// NewClient builds a client for cfg.BaseURL. The API key is sent on every request.
func NewClient(cfg Config, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) (*Client, error) {
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid metabase url %q: %w", cfg.BaseURL, err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid metabase url %q: scheme and host are required", cfg.BaseURL)
	}
	if !strings.HasSuffix(base.Path, "/") {
		base.Path += "/"
	}

	c := new(Client)
	c.baseURL = base
	c.apiKey = cfg.APIKey
	c.http = &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)}

	c.tracer = tracer
	c.monitor = monitor
	c.logger = logger

	return c, nil
}
