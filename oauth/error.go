// Copyright (c) 2026 the msalgo authors
// SPDX-License-Identifier: MPL-2.0

package oauth

import (
	"errors"
	"fmt"

	"github.com/jballar/msalgo/sdk/strutils"
)

var (
	ErrInvalidParameter        = errors.New("invalid parameter")
	ErrNilParameter            = errors.New("nil parameter")
	ErrStateMismatch           = errors.New("response state does not match cached state")
	ErrNonceMismatch           = errors.New("id_token nonce does not match cached nonce")
	ErrClientInfoEmpty         = errors.New("client_info is empty")
	ErrClientInfoDecoding      = errors.New("unable to decode client_info")
	ErrInvalidCacheEnvironment = errors.New("invalid cache environment")
	ErrStateNotFound           = errors.New("state not found")
)

// ServerError is a protocol error echoed from the authorization server. It is
// fatal to the current call and never retried by this engine.
type ServerError struct {
	Code          string
	Description   string
	SubError      string
	CorrelationID string
}

func (e *ServerError) Error() string {
	msg := fmt.Sprintf("server error %s: %s", e.Code, e.Description)
	if e.SubError != "" {
		msg = fmt.Sprintf("%s (suberror %s)", msg, e.SubError)
	}
	return msg
}

// InteractionRequiredError is a ServerError signaling that the caller must
// re-prompt the user before the request can succeed. It is a distinct type so
// callers can branch with errors.As instead of matching code strings.
type InteractionRequiredError struct {
	ServerError
}

// Unwrap exposes the underlying ServerError so generic server-error handling
// still matches interaction-required failures.
func (e *InteractionRequiredError) Unwrap() error {
	return &e.ServerError
}

var (
	interactionRequiredCodes = []string{
		"interaction_required",
		"consent_required",
		"login_required",
	}
	interactionRequiredSubErrors = []string{
		"message_only",
		"additional_action",
		"basic_action",
		"user_password_expired",
		"consent_required",
	}
)

// checkServerError classifies the error triple carried by a server response.
// It returns nil when the triple is empty, an *InteractionRequiredError when
// the code or suberror carries a known interaction-required signature, and a
// generic *ServerError otherwise.
func checkServerError(code, description, subError, correlationID string) error {
	if code == "" && description == "" && subError == "" {
		return nil
	}
	serverErr := ServerError{
		Code:          code,
		Description:   description,
		SubError:      subError,
		CorrelationID: correlationID,
	}
	if strutils.StrListContains(interactionRequiredCodes, code) ||
		strutils.StrListContains(interactionRequiredSubErrors, subError) {
		return &InteractionRequiredError{ServerError: serverErr}
	}
	return &serverErr
}
