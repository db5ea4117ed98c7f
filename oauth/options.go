// Copyright (c) 2026 the msalgo authors
// SPDX-License-Identifier: MPL-2.0

package oauth

import (
	"net/http"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/jballar/msalgo/cache"
)

// Option defines a common functional options type
type Option func(interface{})

// ApplyOpts takes a pointer to the options struct as a set of default options
// and applies the slice of opts as overrides.
func ApplyOpts(opts interface{}, opt ...Option) {
	for _, o := range opt {
		o(opts)
	}
}

// WithNow provides an optional time source override for: Handler,
// RequestState. Mostly useful in tests.
func WithNow(now func() time.Time) Option {
	return func(o interface{}) {
		if now == nil {
			return
		}
		switch v := o.(type) {
		case *handlerOptions:
			v.withNow = now
		case *stateOptions:
			v.withNow = now
		}
	}
}

// WithLogger provides an optional hclog logger for: Handler, Invoker.
func WithLogger(l hclog.Logger) Option {
	return func(o interface{}) {
		if l == nil {
			return
		}
		switch v := o.(type) {
		case *handlerOptions:
			v.withLogger = l
		case *invokerOptions:
			v.withLogger = l
		}
	}
}

// WithPersistencePlugin provides an optional external cache persistence
// plugin for: Handler. When set, every cache access runs inside the plugin's
// before/after hooks.
func WithPersistencePlugin(p cache.PersistencePlugin) Option {
	return func(o interface{}) {
		if v, ok := o.(*handlerOptions); ok {
			v.withPlugin = p
		}
	}
}

// WithTokenDecoder provides an optional id_token decoder override for:
// Handler.
func WithTokenDecoder(d TokenDecoder) Option {
	return func(o interface{}) {
		if v, ok := o.(*handlerOptions); ok && d != nil {
			v.withDecoder = d
		}
	}
}

// WithPoPSigner provides an optional proof-of-possession signer for:
// Handler. Without one, responses carrying pop-type access tokens fail at
// result assembly.
func WithPoPSigner(s PoPSigner) Option {
	return func(o interface{}) {
		if v, ok := o.(*handlerOptions); ok {
			v.withPoPSigner = s
		}
	}
}

// WithMeta provides optional caller metadata carried inside a RequestState's
// library payload for: NewRequestState.
func WithMeta(meta map[string]string) Option {
	return func(o interface{}) {
		if v, ok := o.(*stateOptions); ok {
			v.withMeta = meta
		}
	}
}

// WithHTTPClient provides an optional http client override for: Invoker.
func WithHTTPClient(c *http.Client) Option {
	return func(o interface{}) {
		if v, ok := o.(*invokerOptions); ok && c != nil {
			v.withHTTPClient = c
		}
	}
}

// WithClientHeaders provides the optional client-identification headers
// (SKU, version, OS, CPU) for: Invoker. Each header is independently
// toggleable by simply omitting it from the map.
func WithClientHeaders(headers map[string]string) Option {
	return func(o interface{}) {
		if v, ok := o.(*invokerOptions); ok {
			v.withClientHeaders = headers
		}
	}
}

// handlerOptions is the set of available options for NewHandler.
type handlerOptions struct {
	withLogger    hclog.Logger
	withPlugin    cache.PersistencePlugin
	withDecoder   TokenDecoder
	withPoPSigner PoPSigner
	withNow       func() time.Time
}

func handlerDefaults() handlerOptions {
	return handlerOptions{
		withLogger:  hclog.NewNullLogger(),
		withDecoder: NewJoseTokenDecoder(),
		withNow:     time.Now,
	}
}

func getHandlerOpts(opt ...Option) handlerOptions {
	opts := handlerDefaults()
	ApplyOpts(&opts, opt...)
	return opts
}

// stateOptions is the set of available options for NewRequestState.
type stateOptions struct {
	withNow  func() time.Time
	withMeta map[string]string
}

func stateDefaults() stateOptions {
	return stateOptions{
		withNow: time.Now,
	}
}

func getStateOpts(opt ...Option) stateOptions {
	opts := stateDefaults()
	ApplyOpts(&opts, opt...)
	return opts
}

// invokerOptions is the set of available options for NewInvoker.
type invokerOptions struct {
	withLogger        hclog.Logger
	withHTTPClient    *http.Client
	withClientHeaders map[string]string
}

func invokerDefaults() invokerOptions {
	return invokerOptions{
		withLogger: hclog.NewNullLogger(),
	}
}

func getInvokerOpts(opt ...Option) invokerOptions {
	opts := invokerDefaults()
	ApplyOpts(&opts, opt...)
	return opts
}
