// Copyright (c) 2026 the msalgo authors
// SPDX-License-Identifier: MPL-2.0

package oauth

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/hashicorp/go-cleanhttp"
	"github.com/hashicorp/go-hclog"
)

// Standard client-identification header names. Each is attached only when a
// value for it was configured, so they are independently toggleable.
const (
	HeaderClientSKU     = "x-client-SKU"
	HeaderClientVersion = "x-client-VER"
	HeaderClientOS      = "x-client-OS"
	HeaderClientCPU     = "x-client-CPU"
)

// Invoker issues the POST against a token endpoint and applies the
// telemetry-cache-clear rule to the response status. It performs no retries;
// retry policy belongs to the transport.
type Invoker struct {
	client        *http.Client
	telemetry     TelemetryManager
	clientHeaders map[string]string
	logger        hclog.Logger
}

// NewInvoker creates an Invoker reporting into the given telemetry manager.
//
// Supported options: WithHTTPClient, WithClientHeaders, WithLogger.
func NewInvoker(telemetry TelemetryManager, opt ...Option) (*Invoker, error) {
	const op = "oauth.NewInvoker"
	if telemetry == nil {
		return nil, fmt.Errorf("%s: telemetry manager is nil: %w", op, ErrNilParameter)
	}
	opts := getInvokerOpts(opt...)
	client := opts.withHTTPClient
	if client == nil {
		client = cleanhttp.DefaultPooledClient()
	}
	return &Invoker{
		client:        client,
		telemetry:     telemetry,
		clientHeaders: opts.withClientHeaders,
		logger:        opts.withLogger,
	}, nil
}

// PostToTokenEndpoint sends the pre-encoded form body to the token endpoint
// with the given extra headers and decodes the JSON payload. The returned
// response may itself carry a server error triple; classifying it is
// ValidateTokenResponse's job, not the transport's.
//
// A status below 500 and other than 429 means the server has acknowledged
// the request's telemetry headers, so the accumulated telemetry cache is
// cleared; on 429 and 5xx it is kept for the next request.
func (i *Invoker) PostToTokenEndpoint(ctx context.Context, endpoint, body string, headers map[string]string) (*TokenResponse, int, error) {
	const op = "oauth.Invoker.PostToTokenEndpoint"
	if endpoint == "" {
		return nil, 0, fmt.Errorf("%s: endpoint is empty: %w", op, ErrInvalidParameter)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(body))
	if err != nil {
		return nil, 0, fmt.Errorf("%s: unable to create request: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for name, value := range i.clientHeaders {
		req.Header.Set(name, value)
	}
	for name, value := range headers {
		req.Header.Set(name, value)
	}

	httpResp, err := i.client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: token endpoint request failed: %w", op, err)
	}
	defer httpResp.Body.Close()

	status := httpResp.StatusCode
	if status < http.StatusInternalServerError && status != http.StatusTooManyRequests {
		i.telemetry.ClearTelemetryCache()
	} else {
		i.logger.Debug("token endpoint did not acknowledge telemetry", "status", status)
	}

	payload, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, status, fmt.Errorf("%s: unable to read response body: %w", op, err)
	}
	resp, err := ParseTokenResponse(payload)
	if err != nil {
		return nil, status, fmt.Errorf("%s: %w", op, err)
	}
	return resp, status, nil
}
