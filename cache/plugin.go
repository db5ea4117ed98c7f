// Copyright (c) 2026 the msalgo authors
// SPDX-License-Identifier: MPL-2.0

package cache

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-multierror"
)

// PersistencePlugin is implemented by an external token-cache persistence
// layer. BeforeCacheAccess is invoked before the engine touches the store and
// typically deserializes external state into it; AfterCacheAccess is invoked
// after the access window closes, on every exit path, and typically
// serializes the store back out when it changed.
type PersistencePlugin interface {
	BeforeCacheAccess(ctx context.Context, cache *SerializableCache) error
	AfterCacheAccess(ctx context.Context, cache *SerializableCache) error
}

// SerializableCache is the view of the store handed to a PersistencePlugin
// during an access window. The plugin moves bytes in and out through
// Storage.Serialize/Deserialize and flags HasChanged when the engine wrote to
// the store inside the window.
type SerializableCache struct {
	Storage    StorageManager
	HasChanged bool
}

// WithCacheAccess runs accessFn inside a plugin access window: the before
// hook fires first, and the after hook fires on every exit path, including
// when accessFn fails. An after-hook failure is appended to accessFn's error
// rather than replacing it. A nil plugin degrades to calling accessFn
// directly.
func WithCacheAccess(ctx context.Context, plugin PersistencePlugin, cache *SerializableCache, accessFn func() error) (err error) {
	const op = "cache.WithCacheAccess"
	if plugin == nil {
		return accessFn()
	}
	if cache == nil {
		return fmt.Errorf("%s: serializable cache is nil: %w", op, ErrNilParameter)
	}
	if err := plugin.BeforeCacheAccess(ctx, cache); err != nil {
		return fmt.Errorf("%s: before-cache-access hook failed: %w", op, err)
	}
	defer func() {
		if afterErr := plugin.AfterCacheAccess(ctx, cache); afterErr != nil {
			err = multierror.Append(err, fmt.Errorf("%s: after-cache-access hook failed: %w", op, afterErr)).ErrorOrNil()
		}
	}()
	return accessFn()
}
