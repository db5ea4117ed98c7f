// Copyright (c) 2026 the msalgo authors
// SPDX-License-Identifier: MPL-2.0

// Package oauth is the response-processing engine of the client library: it
// validates raw authorization-server responses, maps a token response into
// credential cache entities, sequences persistence through a pluggable store
// with before/after lifecycle hooks, and assembles the caller-facing
// authentication result (including proof-of-possession signing).
//
// The engine only processes responses already returned by a server. Authority
// discovery and trust validation, id_token signature verification, transport
// retry policy and the concrete cryptographic primitives are external
// collaborators consumed through capability interfaces.
package oauth
