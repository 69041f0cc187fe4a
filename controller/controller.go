/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package controller

import (
	"github.com/trustbloc/sectoken-go/claimset"
	"github.com/trustbloc/sectoken-go/controller/command"
	cmdtoken "github.com/trustbloc/sectoken-go/controller/command/token"
	"github.com/trustbloc/sectoken-go/controller/rest"
	resttoken "github.com/trustbloc/sectoken-go/controller/rest/token"
	"github.com/trustbloc/sectoken-go/jwt"
)

type allOpts struct {
	parseOpts []jwt.ParseOpt
}

// Opt represents a controller option.
type Opt func(opts *allOpts)

// WithMaxTokenSize is an option allowing for the serialized token size limit to be set.
func WithMaxTokenSize(size int) Opt {
	return func(opts *allOpts) {
		opts.parseOpts = append(opts.parseOpts, jwt.WithMaxTokenSize(size))
	}
}

// WithMaxActorDepth is an option allowing for the actor chain depth limit to be set.
func WithMaxActorDepth(depth int) Opt {
	return func(opts *allOpts) {
		opts.parseOpts = append(opts.parseOpts, jwt.WithMaxActorDepth(depth))
	}
}

// WithIssuer is an option allowing for the default identity issuer to be set.
func WithIssuer(issuer string) Opt {
	return func(opts *allOpts) {
		opts.parseOpts = append(opts.parseOpts, jwt.WithIssuer(issuer))
	}
}

// WithViewClaimSets is an option switching claim set parsing to the read-only view implementation.
func WithViewClaimSets() Opt {
	return func(opts *allOpts) {
		opts.parseOpts = append(opts.parseOpts, jwt.WithClaimSetParser(claimset.ParseView))
	}
}

// GetRESTHandlers returns all REST handlers provided by controller.
func GetRESTHandlers(opts ...Opt) []rest.Handler {
	restAPIOpts := &allOpts{}
	// Apply options
	for _, opt := range opts {
		opt(restAPIOpts)
	}

	// token REST operation
	tokenOp := resttoken.New(restAPIOpts.parseOpts...)

	// create handlers from all operations
	var allHandlers []rest.Handler
	allHandlers = append(allHandlers, tokenOp.GetRESTHandlers()...)

	return allHandlers
}

// GetCommandHandlers returns all command handlers provided by controller.
func GetCommandHandlers(opts ...Opt) []command.Handler {
	cmdOpts := &allOpts{}
	// Apply options
	for _, opt := range opts {
		opt(cmdOpts)
	}

	// token command operation
	tokencmd := cmdtoken.New(cmdOpts.parseOpts...)

	var allHandlers []command.Handler
	allHandlers = append(allHandlers, tokencmd.GetHandlers()...)

	return allHandlers
}
