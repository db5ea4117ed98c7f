// Copyright (c) 2026 the msalgo authors
// SPDX-License-Identifier: MPL-2.0

package authority

import (
	"fmt"
	"strings"
	"sync"
)

// The trusted host registry is configured once per process, at client
// construction, and read-only afterward. Re-initialization from another call
// site is an error rather than an ambient mutation.
var trustedHosts = struct {
	sync.RWMutex
	hosts       map[string]struct{}
	initialized bool
}{
	hosts: map[string]struct{}{},
}

// InitTrustedHosts sets the process-wide list of hosts trusted to act as
// authorities. It may be called exactly once; later calls fail with
// ErrAlreadyInitialized and leave the registry unchanged.
func InitTrustedHosts(hosts []string) error {
	const op = "authority.InitTrustedHosts"
	if len(hosts) == 0 {
		return fmt.Errorf("%s: no hosts provided: %w", op, ErrInvalidParameter)
	}
	trustedHosts.Lock()
	defer trustedHosts.Unlock()
	if trustedHosts.initialized {
		return fmt.Errorf("%s: %w", op, ErrAlreadyInitialized)
	}
	for _, h := range hosts {
		h = strings.ToLower(strings.TrimSpace(h))
		if h == "" {
			continue
		}
		trustedHosts.hosts[h] = struct{}{}
	}
	trustedHosts.initialized = true
	return nil
}

// IsTrustedHost reports whether host is in the trusted registry. Before
// InitTrustedHosts is called every host is untrusted.
func IsTrustedHost(host string) bool {
	trustedHosts.RLock()
	defer trustedHosts.RUnlock()
	_, ok := trustedHosts.hosts[strings.ToLower(host)]
	return ok
}

// resetTrustedHosts clears the registry. Tests only.
func resetTrustedHosts() {
	trustedHosts.Lock()
	defer trustedHosts.Unlock()
	trustedHosts.hosts = map[string]struct{}{}
	trustedHosts.initialized = false
}
