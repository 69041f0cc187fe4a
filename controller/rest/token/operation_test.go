/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package token

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"

	"github.com/trustbloc/sectoken-go/controller/command"
	cmdtoken "github.com/trustbloc/sectoken-go/controller/command/token"
	"github.com/trustbloc/sectoken-go/controller/rest"
	"github.com/trustbloc/sectoken-go/jwt"
)

func TestNew(t *testing.T) {
	t.Run("test new operation - success", func(t *testing.T) {
		op := New()
		require.NotNil(t, op)
		require.Equal(t, 2, len(op.GetRESTHandlers()))
	})
}

func TestDecode(t *testing.T) {
	t.Run("test decode - success", func(t *testing.T) {
		op := New()

		raw := compactToken(`{"alg":"none"}`, `{"iss":"issuer.example.com"}`)

		reqBytes, err := json.Marshal(cmdtoken.DecodeRequest{Token: raw})
		require.NoError(t, err)

		handler := lookupHandler(t, op, DecodePath)

		buf, code, err := sendRequestToHandler(handler, bytes.NewBuffer(reqBytes), DecodePath)
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, code)

		response := cmdtoken.DecodeResponse{}
		require.NoError(t, json.Unmarshal(buf.Bytes(), &response))
		require.Equal(t, "JWS", response.Format)
		require.Equal(t, "issuer.example.com", response.Claims.Issuer)
	})

	t.Run("test decode - malformed token", func(t *testing.T) {
		op := New()

		reqBytes, err := json.Marshal(cmdtoken.DecodeRequest{Token: "one segment"})
		require.NoError(t, err)

		handler := lookupHandler(t, op, DecodePath)

		buf, code, err := sendRequestToHandler(handler, bytes.NewBuffer(reqBytes), DecodePath)
		require.NoError(t, err)
		require.Equal(t, http.StatusInternalServerError, code)
		verifyError(t, cmdtoken.DecodeTokenErrorCode, "bad segment count", buf.Bytes())
	})

	t.Run("test decode - empty token", func(t *testing.T) {
		op := New()

		reqBytes, err := json.Marshal(cmdtoken.DecodeRequest{})
		require.NoError(t, err)

		handler := lookupHandler(t, op, DecodePath)

		buf, code, err := sendRequestToHandler(handler, bytes.NewBuffer(reqBytes), DecodePath)
		require.NoError(t, err)
		require.Equal(t, http.StatusBadRequest, code)
		verifyError(t, cmdtoken.InvalidRequestErrorCode, "token is mandatory", buf.Bytes())
	})

	t.Run("test decode - command error passthrough", func(t *testing.T) {
		op := New()
		op.command = &mockTokenCommand{
			decodeErr: command.NewExecuteError(cmdtoken.DecodeTokenErrorCode, fmt.Errorf("decode failed")),
		}

		handler := lookupHandler(t, op, DecodePath)

		buf, code, err := sendRequestToHandler(handler, bytes.NewBufferString("{}"), DecodePath)
		require.NoError(t, err)
		require.Equal(t, http.StatusInternalServerError, code)
		verifyError(t, cmdtoken.DecodeTokenErrorCode, "decode failed", buf.Bytes())
	})
}

func TestProject(t *testing.T) {
	t.Run("test project - success", func(t *testing.T) {
		op := New()

		raw := compactToken(`{"alg":"none"}`, `{"iss":"me","sub":"alice"}`)

		reqBytes, err := json.Marshal(cmdtoken.ProjectRequest{Token: raw})
		require.NoError(t, err)

		handler := lookupHandler(t, op, ProjectPath)

		buf, code, err := sendRequestToHandler(handler, bytes.NewBuffer(reqBytes), ProjectPath)
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, code)

		response := cmdtoken.ProjectResponse{}
		require.NoError(t, json.Unmarshal(buf.Bytes(), &response))
		require.NotNil(t, response.Identity)
		require.Len(t, response.Identity.Claims, 2)
	})

	t.Run("test project - operation options apply", func(t *testing.T) {
		op := New(jwt.WithMaxTokenSize(5))

		reqBytes, err := json.Marshal(cmdtoken.ProjectRequest{
			Token: compactToken(`{"alg":"none"}`, `{}`),
		})
		require.NoError(t, err)

		handler := lookupHandler(t, op, ProjectPath)

		buf, code, err := sendRequestToHandler(handler, bytes.NewBuffer(reqBytes), ProjectPath)
		require.NoError(t, err)
		require.Equal(t, http.StatusInternalServerError, code)
		verifyError(t, cmdtoken.DecodeTokenErrorCode, "exceeds maximum", buf.Bytes())
	})
}

func lookupHandler(t *testing.T, op *Operation, path string) rest.Handler {
	t.Helper()

	handlers := op.GetRESTHandlers()
	require.NotEmpty(t, handlers)

	for _, h := range handlers {
		if h.Path() == path && h.Method() == http.MethodPost {
			return h
		}
	}

	require.Fail(t, "unable to find handler")

	return nil
}

// sendRequestToHandler reads response from given http handle func.
func sendRequestToHandler(handler rest.Handler, requestBody io.Reader, path string) (*bytes.Buffer, int, error) {
	// prepare request
	req, err := http.NewRequest(handler.Method(), path, requestBody)
	if err != nil {
		return nil, 0, err
	}

	// prepare router
	router := mux.NewRouter()

	router.HandleFunc(handler.Path(), handler.Handle()).Methods(handler.Method())

	// create a ResponseRecorder (which satisfies http.ResponseWriter) to record the response.
	rr := httptest.NewRecorder()

	// serve http on given response and request
	router.ServeHTTP(rr, req)

	return rr.Body, rr.Code, nil
}

func verifyError(t *testing.T, expectedCode command.Code, expectedMsg string, data []byte) {
	t.Helper()

	errResponse := struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	}{}
	err := json.Unmarshal(data, &errResponse)
	require.NoError(t, err)

	require.EqualValues(t, expectedCode, errResponse.Code)
	require.NotEmpty(t, errResponse.Message)

	if expectedMsg != "" {
		require.Contains(t, errResponse.Message, expectedMsg)
	}
}

type mockTokenCommand struct {
	decodeErr  command.Error
	projectErr command.Error
}

func (m *mockTokenCommand) Decode(rw io.Writer, req io.Reader) command.Error {
	return m.decodeErr
}

func (m *mockTokenCommand) Project(rw io.Writer, req io.Reader) command.Error {
	return m.projectErr
}

func compactToken(header, payload string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(header)) + "." +
		base64.RawURLEncoding.EncodeToString([]byte(payload)) + "."
}
