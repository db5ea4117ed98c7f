// Copyright (c) 2026 the msalgo authors
// SPDX-License-Identifier: MPL-2.0

package cache

import "errors"

var (
	// ErrInvalidParameter is an invalid parameter error
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrNilParameter is a nil parameter error
	ErrNilParameter = errors.New("nil parameter")
)
