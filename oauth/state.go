// Copyright (c) 2026 the msalgo authors
// SPDX-License-Identifier: MPL-2.0

package oauth

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/hashicorp/go-uuid"
)

// stateSeparator joins the library-encoded payload and the caller's own
// state inside the wire "state" parameter.
const stateSeparator = "|"

// RequestState is the round-tripped request metadata carried through the
// OAuth "state" parameter: a library payload (unique id plus the timestamp
// used to baseline token expirations) and the caller's opaque UserState.
type RequestState struct {
	ID        string            `json:"id"`
	Timestamp int64             `json:"ts"`
	Meta      map[string]string `json:"meta,omitempty"`

	UserState string `json:"-"`
}

// NewRequestState creates a RequestState with a generated id and the current
// timestamp. userState may be empty.
//
// Supported options: WithNow, WithMeta.
func NewRequestState(userState string, opt ...Option) (*RequestState, error) {
	const op = "oauth.NewRequestState"
	opts := getStateOpts(opt...)
	id, err := uuid.GenerateUUID()
	if err != nil {
		return nil, fmt.Errorf("%s: unable to generate state id: %w", op, err)
	}
	return &RequestState{
		ID:        id,
		Timestamp: opts.withNow().Unix(),
		Meta:      opts.withMeta,
		UserState: userState,
	}, nil
}

// Encode renders the state for the wire: base64url(JSON payload), with the
// caller's state appended after a separator when present.
func (s *RequestState) Encode() (string, error) {
	const op = "oauth.RequestState.Encode"
	if s == nil {
		return "", fmt.Errorf("%s: state is nil: %w", op, ErrNilParameter)
	}
	payload, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("%s: unable to marshal state: %w", op, err)
	}
	encoded := base64.RawURLEncoding.EncodeToString(payload)
	if s.UserState != "" {
		encoded += stateSeparator + s.UserState
	}
	return encoded, nil
}

// ParseRequestState decodes a wire state value. A value that carries no
// library payload (it did not originate from NewRequestState) is returned
// whole as UserState with a zero Timestamp rather than rejected; expiration
// baselining then falls back to the current time.
func ParseRequestState(encoded string) (*RequestState, error) {
	const op = "oauth.ParseRequestState"
	if encoded == "" {
		return nil, fmt.Errorf("%s: state is empty: %w", op, ErrStateNotFound)
	}
	libraryPart, userPart, found := strings.Cut(encoded, stateSeparator)
	payload, err := base64.RawURLEncoding.DecodeString(libraryPart)
	if err != nil {
		return &RequestState{UserState: encoded}, nil
	}
	var state RequestState
	if err := json.Unmarshal(payload, &state); err != nil {
		return &RequestState{UserState: encoded}, nil
	}
	if found {
		state.UserState = userPart
	}
	return &state, nil
}

// BaselineTime returns the timestamp to baseline token expirations against:
// the state's timestamp when it carries one, otherwise now.
func (s *RequestState) BaselineTime(now time.Time) time.Time {
	if s == nil || s.Timestamp <= 0 {
		return now
	}
	return time.Unix(s.Timestamp, 0)
}
