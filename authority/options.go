// Copyright (c) 2026 the msalgo authors
// SPDX-License-Identifier: MPL-2.0

package authority

// Option defines a common functional options type
type Option func(interface{})

// getOpts gets the defaults and applies the opt overrides passed in
func getOpts(opt ...Option) options {
	opts := options{}
	for _, o := range opt {
		o(&opts)
	}
	return opts
}

// options is the set of available options for New
type options struct {
	withProtocol Protocol
}

// WithProtocol overrides the protocol an authority is assumed to speak. Used
// for AAD-type authorities operating in generic OIDC mode, which never return
// client_info.
func WithProtocol(p Protocol) Option {
	return func(o interface{}) {
		if v, ok := o.(*options); ok {
			v.withProtocol = p
		}
	}
}
