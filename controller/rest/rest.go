/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package rest

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/hyperledger/aries-framework-go/component/log"

	"github.com/trustbloc/sectoken-go/controller/command"
)

var logger = log.New("sectoken-go/controller/rest")

// Handler http handler for each controller API endpoint.
type Handler interface {
	Path() string
	Method() string
	Handle() http.HandlerFunc
}

// Execute executes given controller command with args provided by the request
// reader and writes the command result to the response writer.
func Execute(exec command.Exec, rw http.ResponseWriter, req io.Reader) {
	rw.Header().Set("Content-Type", "application/json")

	if err := exec(rw, req); err != nil {
		SendError(rw, err)
	}
}

// SendError sends given command error to response writer. Validation errors
// map to bad request, execution errors to internal server error.
func SendError(rw http.ResponseWriter, err command.Error) {
	if err.Type() == command.ValidationError {
		SendHTTPStatusError(rw, http.StatusBadRequest, err.Code(), err)

		return
	}

	SendHTTPStatusError(rw, http.StatusInternalServerError, err.Code(), err)
}

// SendHTTPStatusError sends given http status code to response with generic error body.
func SendHTTPStatusError(rw http.ResponseWriter, statusCode int, code command.Code, err error) {
	rw.WriteHeader(statusCode)

	if encodeErr := json.NewEncoder(rw).Encode(genericErrorBody{
		Code:    code,
		Message: err.Error(),
	}); encodeErr != nil {
		logger.Errorf("Unable to send error response, %s", encodeErr)
	}
}

// genericErrorBody model for rest api error response body.
type genericErrorBody struct {
	Code    command.Code `json:"code"`
	Message string       `json:"message"`
}
