/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package token

import (
	"github.com/trustbloc/sectoken-go/controller/command/token"
)

// decodeTokenReq model
//
// This is used for decode token request.
//
// swagger:parameters decodeTokenReq
type decodeTokenReq struct { // nolint: unused,deadcode
	// Params for decoding a compact token
	//
	// in: body
	token.DecodeRequest
}

// decodeTokenRes model
//
// This is used for returning the decode token response.
//
// swagger:response decodeTokenRes
type decodeTokenRes struct { // nolint: unused,deadcode
	// in: body
	token.DecodeResponse
}

// projectTokenReq model
//
// This is used for project token request.
//
// swagger:parameters projectTokenReq
type projectTokenReq struct { // nolint: unused,deadcode
	// Params for projecting token claims
	//
	// in: body
	token.ProjectRequest
}

// projectTokenRes model
//
// This is used for returning the project token response.
//
// swagger:response projectTokenRes
type projectTokenRes struct { // nolint: unused,deadcode
	// in: body
	token.ProjectResponse
}
