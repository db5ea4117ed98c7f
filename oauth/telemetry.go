// Copyright (c) 2026 the msalgo authors
// SPDX-License-Identifier: MPL-2.0

package oauth

import (
	"fmt"
	"strings"
	"sync"
)

// TelemetryManager accumulates the current/last request telemetry the client
// attaches to token requests. Once a server acknowledges the telemetry
// headers the accumulated state is cleared; until then it rides along on the
// next request.
type TelemetryManager interface {
	// CurrentRequestHeader renders the header value describing the request
	// about to be sent.
	CurrentRequestHeader(apiID, correlationID string) string

	// LastRequestHeader renders the header value describing requests the
	// server has not yet acknowledged.
	LastRequestHeader() string

	// RecordFailedRequest notes a failed request for inclusion in the next
	// last-request header.
	RecordFailedRequest(apiID, correlationID, errorCode string)

	// ClearTelemetryCache drops the accumulated last-request state.
	ClearTelemetryCache()
}

const telemetrySchemaVersion = "2"

// InMemoryTelemetryManager is the default TelemetryManager, safe for
// concurrent use.
type InMemoryTelemetryManager struct {
	mu             sync.Mutex
	cacheHits      int
	failedRequests []string
}

var _ TelemetryManager = (*InMemoryTelemetryManager)(nil)

// NewInMemoryTelemetryManager creates an empty telemetry manager.
func NewInMemoryTelemetryManager() *InMemoryTelemetryManager {
	return &InMemoryTelemetryManager{}
}

// CurrentRequestHeader implements TelemetryManager.
func (m *InMemoryTelemetryManager) CurrentRequestHeader(apiID, correlationID string) string {
	return fmt.Sprintf("%s|%s,%s|", telemetrySchemaVersion, apiID, correlationID)
}

// LastRequestHeader implements TelemetryManager.
func (m *InMemoryTelemetryManager) LastRequestHeader() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fmt.Sprintf("%s|%d|%s|", telemetrySchemaVersion, m.cacheHits, strings.Join(m.failedRequests, ","))
}

// RecordFailedRequest implements TelemetryManager.
func (m *InMemoryTelemetryManager) RecordFailedRequest(apiID, correlationID, errorCode string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failedRequests = append(m.failedRequests, fmt.Sprintf("%s,%s,%s", apiID, correlationID, errorCode))
}

// RecordCacheHit notes that a request was served from the cache.
func (m *InMemoryTelemetryManager) RecordCacheHit() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cacheHits++
}

// ClearTelemetryCache implements TelemetryManager.
func (m *InMemoryTelemetryManager) ClearTelemetryCache() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cacheHits = 0
	m.failedRequests = nil
}
