/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package sectoken provides structural parsing and inspection of compact
// security tokens (JWT/JWS/JWE serializations) without cryptographic
// verification.
//
// Packages for end developer usage
//
// jwt: The main package. Parses compact tokens into SecurityToken values,
// projects payload claims into identities with nested actor chains, and builds
// unsecured tokens.
// Reference: https://pkg.go.dev/github.com/trustbloc/sectoken-go/jwt
//
// claimset: Claim set implementations backing token headers and payloads, a
// document form with decoded values and a read-only view over the raw JSON.
// Reference: https://pkg.go.dev/github.com/trustbloc/sectoken-go/claimset
//
// claims: Claim and Identity types produced by projection.
// Reference: https://pkg.go.dev/github.com/trustbloc/sectoken-go/claims
//
// controller: REST/command controller exposing token decode and project
// operations, served by cmd/sectoken-rest.
// Reference: https://pkg.go.dev/github.com/trustbloc/sectoken-go/controller
//
// Basic workflow
//
//      1) Parse a compact token with jwt.Parse.
//      2) Inspect format, headers and claims through the token's accessors.
//      3) Call Identity() to project payload claims, including actor tokens.
package sectoken
