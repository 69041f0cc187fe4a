/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package token

import (
	"io"
	"net/http"

	"github.com/trustbloc/sectoken-go/controller/command"
	cmdtoken "github.com/trustbloc/sectoken-go/controller/command/token"
	"github.com/trustbloc/sectoken-go/controller/internal/cmdutil"
	"github.com/trustbloc/sectoken-go/controller/rest"
	"github.com/trustbloc/sectoken-go/jwt"
)

// constants for token operations.
const (
	TokenOperationID = "/token"
	DecodePath       = TokenOperationID + "/decode"
	ProjectPath      = TokenOperationID + "/project"
)

type tokenCommand interface {
	Decode(rw io.Writer, req io.Reader) command.Error
	Project(rw io.Writer, req io.Reader) command.Error
}

// Operation contains token inspection operations provided by controller REST API.
type Operation struct {
	handlers []rest.Handler
	command  tokenCommand
}

// New returns new token inspection rest operation instance. opts apply to
// every token parse served by this operation.
func New(opts ...jwt.ParseOpt) *Operation {
	o := &Operation{command: cmdtoken.New(opts...)}
	o.registerHandler()

	return o
}

// GetRESTHandlers get all controller API handler available for this service.
func (o *Operation) GetRESTHandlers() []rest.Handler {
	return o.handlers
}

// registerHandler register handlers to be exposed from this service as REST API endpoints.
func (o *Operation) registerHandler() {
	o.handlers = []rest.Handler{
		cmdutil.NewHTTPHandler(DecodePath, http.MethodPost, o.Decode),
		cmdutil.NewHTTPHandler(ProjectPath, http.MethodPost, o.Project),
	}
}

// Decode swagger:route POST /token/decode token decodeTokenReq
//
// Decodes a compact token without verifying it.
//
// Responses:
//    default: genericError
//        200: decodeTokenRes
func (o *Operation) Decode(rw http.ResponseWriter, req *http.Request) {
	rest.Execute(o.command.Decode, rw, req.Body)
}

// Project swagger:route POST /token/project token projectTokenReq
//
// Projects token payload claims into an identity tree, resolving nested
// actor tokens.
//
// Responses:
//    default: genericError
//        200: projectTokenRes
func (o *Operation) Project(rw http.ResponseWriter, req *http.Request) {
	rest.Execute(o.command.Project, rw, req.Body)
}
