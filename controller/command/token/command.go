/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package token provides controller commands for inspecting compact security
// tokens: structural decode and claims projection. No cryptographic
// verification happens here.
package token

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/hyperledger/aries-framework-go/component/log"

	"github.com/trustbloc/sectoken-go/claims"
	"github.com/trustbloc/sectoken-go/controller/command"
	"github.com/trustbloc/sectoken-go/controller/internal/cmdutil"
	"github.com/trustbloc/sectoken-go/internal/logutil"
	"github.com/trustbloc/sectoken-go/jwt"
)

var logger = log.New("sectoken-go/command/token")

// Error codes.
const (
	// InvalidRequestErrorCode is typically a code for invalid requests.
	InvalidRequestErrorCode = command.Code(iota + command.Token)
	// DecodeTokenErrorCode is for failures while parsing the token string.
	DecodeTokenErrorCode
	// ProjectTokenErrorCode is for failures while projecting token claims.
	ProjectTokenErrorCode
)

// constants for token commands.
const (
	// command name.
	CommandName = "token"

	// command methods.
	DecodeCommandMethod  = "Decode"
	ProjectCommandMethod = "Project"

	// error messages.
	errEmptyToken = "token is mandatory"
)

// Command contains command operations for token inspection.
type Command struct {
	cache     *jwt.ParseCache
	parseOpts []jwt.ParseOpt
}

// New returns new token inspection command instance. opts apply to every
// parse; parsed tokens are memoized in an LRU cache.
func New(opts ...jwt.ParseOpt) *Command {
	return &Command{
		cache:     jwt.NewParseCache(0, opts...),
		parseOpts: opts,
	}
}

// GetHandlers returns list of all commands supported by this controller command.
func (o *Command) GetHandlers() []command.Handler {
	return []command.Handler{
		cmdutil.NewCommandHandler(CommandName, DecodeCommandMethod, o.Decode),
		cmdutil.NewCommandHandler(CommandName, ProjectCommandMethod, o.Project),
	}
}

// Decode parses a compact token and reports its structure: format, decoded
// header and payload documents and the registered claim shortcuts.
func (o *Command) Decode(rw io.Writer, req io.Reader) command.Error {
	var request DecodeRequest

	err := json.NewDecoder(req).Decode(&request)
	if err != nil {
		logutil.LogInfo(logger, CommandName, DecodeCommandMethod, err.Error())

		return command.NewValidationError(InvalidRequestErrorCode, fmt.Errorf("failed request decode : %w", err))
	}

	if request.Token == "" {
		logutil.LogDebug(logger, CommandName, DecodeCommandMethod, errEmptyToken)

		return command.NewValidationError(InvalidRequestErrorCode, fmt.Errorf(errEmptyToken))
	}

	token, err := o.cache.Parse(request.Token)
	if err != nil {
		logutil.LogInfo(logger, CommandName, DecodeCommandMethod, err.Error())

		return command.NewExecuteError(DecodeTokenErrorCode, err)
	}

	command.WriteNillableResponse(rw, decodeReport(token), logger)

	logutil.LogDebug(logger, CommandName, DecodeCommandMethod, "success")

	return nil
}

// Project parses a compact token and projects its payload claims into the
// identity tree, resolving nested actor tokens.
func (o *Command) Project(rw io.Writer, req io.Reader) command.Error {
	var request ProjectRequest

	err := json.NewDecoder(req).Decode(&request)
	if err != nil {
		logutil.LogInfo(logger, CommandName, ProjectCommandMethod, err.Error())

		return command.NewValidationError(InvalidRequestErrorCode, fmt.Errorf("failed request decode : %w", err))
	}

	if request.Token == "" {
		logutil.LogDebug(logger, CommandName, ProjectCommandMethod, errEmptyToken)

		return command.NewValidationError(InvalidRequestErrorCode, fmt.Errorf(errEmptyToken))
	}

	token, err := o.parseForProjection(&request)
	if err != nil {
		logutil.LogInfo(logger, CommandName, ProjectCommandMethod, err.Error())

		return command.NewExecuteError(DecodeTokenErrorCode, err)
	}

	identity, err := token.Identity()
	if err != nil {
		logutil.LogError(logger, CommandName, ProjectCommandMethod, err.Error())

		return command.NewExecuteError(ProjectTokenErrorCode, err)
	}

	command.WriteNillableResponse(rw, &ProjectResponse{Identity: identityReport(identity)}, logger)

	logutil.LogDebug(logger, CommandName, ProjectCommandMethod, "success")

	return nil
}

// parseForProjection picks the cached parse for plain requests. A request
// with an issuer override changes the projection result, so it bypasses the
// shared cache.
func (o *Command) parseForProjection(request *ProjectRequest) (*jwt.SecurityToken, error) {
	if request.Issuer == "" {
		return o.cache.Parse(request.Token)
	}

	opts := make([]jwt.ParseOpt, 0, len(o.parseOpts)+1)
	opts = append(opts, o.parseOpts...)
	opts = append(opts, jwt.WithIssuer(request.Issuer))

	return jwt.Parse(request.Token, opts...)
}

func decodeReport(token *jwt.SecurityToken) *DecodeResponse {
	response := &DecodeResponse{
		Format:   token.Format().String(),
		Unsigned: token.IsUnsigned(),
		Header:   json.RawMessage(token.HeaderSet().Bytes()),
	}

	if token.IsSigned() {
		response.Payload = json.RawMessage(token.PayloadSet().Bytes())
		response.Claims = registeredReport(token)
	}

	return response
}

func registeredReport(token *jwt.SecurityToken) *RegisteredClaims {
	registered := &RegisteredClaims{
		Issuer:   token.Issuer(),
		Subject:  token.Subject(),
		Audience: token.Audience(),
		ID:       token.ID(),
	}

	if expiry := token.Expiry(); !expiry.IsZero() {
		registered.Expiry = expiry.Unix()
	}

	if notBefore := token.NotBefore(); !notBefore.IsZero() {
		registered.NotBefore = notBefore.Unix()
	}

	if issuedAt := token.IssuedAt(); !issuedAt.IsZero() {
		registered.IssuedAt = issuedAt.Unix()
	}

	return registered
}

func identityReport(identity *claims.Identity) *IdentityReport {
	report := &IdentityReport{}

	for _, c := range identity.Claims() {
		report.Claims = append(report.Claims, ClaimDetail{
			Name:           c.Name,
			Value:          c.Value,
			ValueType:      c.ValueType,
			Issuer:         c.Issuer,
			OriginalIssuer: c.OriginalIssuer,
			Properties:     c.Properties,
		})
	}

	if actor := identity.Actor(); actor != nil {
		report.Actor = identityReport(actor)
	}

	return report
}
