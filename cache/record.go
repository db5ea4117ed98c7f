// Copyright (c) 2026 the msalgo authors
// SPDX-License-Identifier: MPL-2.0

package cache

// Record is the transactional bundle of entities produced from a single
// server response. Every slot is optional; a record built from a
// refresh-token-only response carries nothing but the RefreshToken slot.
// A Record is written to a StorageManager as one logical unit.
type Record struct {
	Account      *Account
	IDToken      *IDToken
	AccessToken  *AccessToken
	RefreshToken *RefreshToken
	AppMetadata  *AppMetadata
}

// IsEmpty reports whether the record carries no entities at all.
func (r *Record) IsEmpty() bool {
	if r == nil {
		return true
	}
	return r.Account == nil &&
		r.IDToken == nil &&
		r.AccessToken == nil &&
		r.RefreshToken == nil &&
		r.AppMetadata == nil
}
