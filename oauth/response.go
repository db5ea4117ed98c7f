// Copyright (c) 2026 the msalgo authors
// SPDX-License-Identifier: MPL-2.0

package oauth

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Seconds is a duration-in-seconds wire field. Some authorities send these
// as JSON numbers and some as quoted strings; both decode.
type Seconds int64

// UnmarshalJSON implements json.Unmarshaler.
func (s *Seconds) UnmarshalJSON(data []byte) error {
	const op = "oauth.Seconds.UnmarshalJSON"
	data = bytes.Trim(data, `"`)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*s = 0
		return nil
	}
	v, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return fmt.Errorf("%s: %q is not a number of seconds: %w", op, data, err)
	}
	*s = Seconds(v)
	return nil
}

// TokenResponse is the raw payload returned by the token endpoint. Optional
// fields are pointers so absence is distinguishable from an empty value; it
// is immutable once received.
type TokenResponse struct {
	AccessToken  *string  `json:"access_token,omitempty"`
	TokenType    *string  `json:"token_type,omitempty"`
	ExpiresIn    *Seconds `json:"expires_in,omitempty"`
	ExtExpiresIn *Seconds `json:"ext_expires_in,omitempty"`
	RefreshToken *string  `json:"refresh_token,omitempty"`
	IDToken      *string  `json:"id_token,omitempty"`
	Scope        *string  `json:"scope,omitempty"`
	ClientInfo   *string  `json:"client_info,omitempty"`
	FamilyID     *string  `json:"foci,omitempty"`

	Error            string  `json:"error,omitempty"`
	ErrorDescription string  `json:"error_description,omitempty"`
	ErrorCodes       []int64 `json:"error_codes,omitempty"`
	SubError         string  `json:"suberror,omitempty"`

	Timestamp     string `json:"timestamp,omitempty"`
	TraceID       string `json:"trace_id,omitempty"`
	CorrelationID string `json:"correlation_id,omitempty"`
}

// ParseTokenResponse decodes a token endpoint JSON body.
func ParseTokenResponse(body []byte) (*TokenResponse, error) {
	const op = "oauth.ParseTokenResponse"
	var resp TokenResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%s: unable to parse token response: %w", op, err)
	}
	return &resp, nil
}

// AuthCodeResponse is the raw payload returned on the authorization-code
// redirect.
type AuthCodeResponse struct {
	Code       string `json:"code,omitempty"`
	State      string `json:"state,omitempty"`
	ClientInfo string `json:"client_info,omitempty"`

	Error            string `json:"error,omitempty"`
	ErrorDescription string `json:"error_description,omitempty"`
	SubError         string `json:"suberror,omitempty"`
}
