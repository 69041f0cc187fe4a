/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package controller

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/trustbloc/sectoken-go/controller/command"
	cmdtoken "github.com/trustbloc/sectoken-go/controller/command/token"
)

func TestGetRESTHandlers(t *testing.T) {
	handlers := GetRESTHandlers()
	require.Equal(t, 2, len(handlers))
}

func TestGetCommandHandlers(t *testing.T) {
	handlers := GetCommandHandlers()
	require.Equal(t, 2, len(handlers))
}

func TestWithOptions(t *testing.T) {
	handlers := GetCommandHandlers(
		WithMaxTokenSize(5),
		WithMaxActorDepth(2),
		WithIssuer("configured-issuer"),
		WithViewClaimSets(),
	)
	require.Equal(t, 2, len(handlers))

	var decode command.Exec

	for _, h := range handlers {
		if h.Method() == cmdtoken.DecodeCommandMethod {
			decode = h.Handle()
		}
	}

	require.NotNil(t, decode)

	reqBytes, err := json.Marshal(cmdtoken.DecodeRequest{Token: "eyJhbGciOiJub25lIn0.e30."})
	require.NoError(t, err)

	var b bytes.Buffer

	cmdErr := decode(&b, bytes.NewBuffer(reqBytes))
	require.Error(t, cmdErr)
	require.Contains(t, cmdErr.Error(), "exceeds maximum")
}
