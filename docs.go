// Copyright (c) 2026 the msalgo authors
// SPDX-License-Identifier: MPL-2.0

// msalgo provides the response-processing and credential-cache engine of an
// OAuth 2.0 / OpenID Connect client: the oauth package validates
// authorization and token responses and turns them into cache entities, the
// cache package stores those entities behind a pluggable StorageManager, and
// the authority package models the issuing identity provider.
package msalgo
