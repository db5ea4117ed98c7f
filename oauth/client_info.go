// Copyright (c) 2026 the msalgo authors
// SPDX-License-Identifier: MPL-2.0

package oauth

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
)

// ClientInfo is the decoded client_info parameter: an opaque (uid, utid)
// pair used to derive the stable home account identifier that partitions the
// credential cache for an identity.
type ClientInfo struct {
	UID  string `json:"uid"`
	UTID string `json:"utid"`
}

// DecodeClientInfo decodes the base64url-encoded client_info JSON. Padding
// is tolerated since some authorities emit it and some do not.
func DecodeClientInfo(raw string) (*ClientInfo, error) {
	const op = "oauth.DecodeClientInfo"
	if raw == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrClientInfoEmpty)
	}
	data, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(raw, "="))
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %v", op, ErrClientInfoDecoding, err)
	}
	var info ClientInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, fmt.Errorf("%s: %w: %v", op, ErrClientInfoDecoding, err)
	}
	return &info, nil
}

// HomeAccountID derives the "{uid}.{utid}" home account identifier. It is
// empty only when the pair carries no usable legs.
func (c *ClientInfo) HomeAccountID() string {
	if c == nil || (c.UID == "" && c.UTID == "") {
		return ""
	}
	return c.UID + "." + c.UTID
}
