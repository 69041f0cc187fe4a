/*
Copyright SecureKey Technologies Inc. All Rights Reserved.
SPDX-License-Identifier: Apache-2.0
*/

package startcmd

import (
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/hyperledger/aries-framework-go/component/log"
	spi "github.com/hyperledger/aries-framework-go/spi/log"
)

type mockServer struct{}

const (
	serverUnexpectedExitErrMsg = "server exited unexpectedly"
	unsecuredToken             = "eyJhbGciOiJub25lIn0.e30."
)

func (s *mockServer) ListenAndServe(host string, handler http.Handler, certFile, keyFile string) error {
	return nil
}

func randomURL() string {
	return fmt.Sprintf("localhost:%d", mustGetRandomPort(3))
}

func mustGetRandomPort(n int) int {
	for ; n > 0; n-- {
		port, err := getRandomPort()
		if err != nil {
			continue
		}

		return port
	}
	panic("cannot acquire the random port")
}

func getRandomPort() (int, error) {
	const network = "tcp"

	addr, err := net.ResolveTCPAddr(network, "localhost:0")
	if err != nil {
		return 0, err
	}

	listener, err := net.ListenTCP(network, addr)
	if err != nil {
		return 0, err
	}

	err = listener.Close()
	if err != nil {
		return 0, err
	}

	return listener.Addr().(*net.TCPAddr).Port, nil
}

func TestStartCmdContents(t *testing.T) {
	startCmd, err := Cmd(&mockServer{})
	require.NoError(t, err)

	require.Equal(t, "start", startCmd.Use)
	require.Equal(t, "Start a token inspection server", startCmd.Short)
	require.Equal(t, "Start a security token inspection server", startCmd.Long)

	checkFlagPropertiesCorrect(t, startCmd, hostFlagName, hostFlagShorthand, hostFlagUsage, "")
	checkFlagPropertiesCorrect(t, startCmd, tokenFlagName, tokenFlagShorthand, tokenFlagUsage, "")
	checkFlagPropertiesCorrect(t, startCmd, maxTokenSizeFlagName, maxTokenSizeFlagShorthand, maxTokenSizeFlagUsage, "")
}

func checkFlagPropertiesCorrect(t *testing.T, cmd *cobra.Command, flagName,
	flagShorthand, flagUsage, expectedVal string) {
	flag := cmd.Flag(flagName)

	require.NotNil(t, flag)
	require.Equal(t, flagName, flag.Name)
	require.Equal(t, flagShorthand, flag.Shorthand)
	require.Equal(t, flagUsage, flag.Usage)
	require.Equal(t, expectedVal, flag.Value.String())

	flagAnnotations := flag.Annotations
	require.Nil(t, flagAnnotations)
}

func TestStartCmdWithBlankHostArg(t *testing.T) {
	startCmd, err := Cmd(&mockServer{})
	require.NoError(t, err)

	args := []string{"--" + hostFlagName, ""}
	startCmd.SetArgs(args)

	err = startCmd.Execute()

	require.Equal(t, errMissingHost.Error(), err.Error())
}

func TestStartCmdWithMissingHostArg(t *testing.T) {
	startCmd, err := Cmd(&mockServer{})
	require.NoError(t, err)

	err = startCmd.Execute()

	require.Equal(t,
		"Neither api-host (command line flag) nor SECTOKEN_API_HOST (environment variable) have been set.",
		err.Error())
}

func TestStartServiceWithBlankHost(t *testing.T) {
	parameters := &serverParameters{server: &mockServer{}}

	err := startService(parameters)
	require.NotNil(t, err)
	require.Equal(t, errMissingHost, err)
}

func TestStartCmdValidArgs(t *testing.T) {
	startCmd, err := Cmd(&mockServer{})
	require.NoError(t, err)

	args := []string{
		"--" + hostFlagName,
		randomURL(),
		"--" + tokenFlagName,
		"ABCD",
		"--" + maxTokenSizeFlagName,
		"8192",
		"--" + maxActorDepthFlagName,
		"2",
		"--" + claimIssuerFlagName,
		"LOCAL AUTHORITY",
		"--" + readOnlyClaimsFlagName,
		"true",
	}
	startCmd.SetArgs(args)

	err = startCmd.Execute()

	require.Nil(t, err)
}

// nolint: errcheck,gosec
func TestStartCmdValidArgsEnvVar(t *testing.T) {
	startCmd, err := Cmd(&mockServer{})
	require.NoError(t, err)

	os.Setenv(hostEnvKey, randomURL())
	defer os.Unsetenv(hostEnvKey)

	os.Setenv(maxTokenSizeEnvKey, "8192")
	defer os.Unsetenv(maxTokenSizeEnvKey)

	err = startCmd.Execute()

	require.Nil(t, err)
}

func TestStartCmdWithInvalidMaxTokenSize(t *testing.T) {
	startCmd, err := Cmd(&mockServer{})
	require.NoError(t, err)

	args := []string{
		"--" + hostFlagName,
		randomURL(),
		"--" + maxTokenSizeFlagName,
		"invalid",
	}
	startCmd.SetArgs(args)

	err = startCmd.Execute()
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to parse max-token-size")
}

func TestStartCmdWithInvalidReadOnlyClaims(t *testing.T) {
	startCmd, err := Cmd(&mockServer{})
	require.NoError(t, err)

	args := []string{
		"--" + hostFlagName,
		randomURL(),
		"--" + readOnlyClaimsFlagName,
		"INVALID",
	}
	startCmd.SetArgs(args)

	err = startCmd.Execute()
	require.Error(t, err)
	require.Contains(t, err.Error(), "invalid syntax")
}

func TestStartCmdWithLogLevel(t *testing.T) {
	t.Run("start with log level - success", func(t *testing.T) {
		startCmd, err := Cmd(&mockServer{})
		require.NoError(t, err)

		args := []string{
			"--" + hostFlagName,
			randomURL(),
			"--" + logLevelFlagName,
			"DEBUG",
		}
		startCmd.SetArgs(args)

		err = startCmd.Execute()
		require.NoError(t, err)
	})

	t.Run("start with log level - invalid", func(t *testing.T) {
		startCmd, err := Cmd(&mockServer{})
		require.NoError(t, err)

		args := []string{
			"--" + logLevelFlagName,
			"INVALID",
		}
		startCmd.SetArgs(args)

		err = startCmd.Execute()
		require.Error(t, err)
		require.Contains(t, err.Error(), "invalid log level")
	})

	t.Run("validate log level", func(t *testing.T) {
		err := setLogLevel("DEBUG")
		require.NoError(t, err)
		require.Equal(t, spi.DEBUG, log.GetLevel(""))

		err = setLogLevel("WARNING")
		require.NoError(t, err)
		require.Equal(t, spi.WARNING, log.GetLevel(""))

		err = setLogLevel("CRITICAL")
		require.NoError(t, err)
		require.Equal(t, spi.CRITICAL, log.GetLevel(""))

		err = setLogLevel("ERROR")
		require.NoError(t, err)
		require.Equal(t, spi.ERROR, log.GetLevel(""))

		err = setLogLevel("INFO")
		require.NoError(t, err)
		require.Equal(t, spi.INFO, log.GetLevel(""))

		err = setLogLevel("")
		require.NoError(t, err)
		require.Equal(t, spi.INFO, log.GetLevel(""))

		err = setLogLevel("INVALID")
		require.Error(t, err)
		require.Contains(t, err.Error(), "invalid log level")
	})
}

func TestStartServiceRequests(t *testing.T) {
	testHostURL := randomURL()

	go func() {
		parameters := &serverParameters{
			server: &HTTPServer{},
			host:   testHostURL,
		}
		err := startService(parameters)
		require.FailNow(t, serverUnexpectedExitErrMsg+": "+err.Error())
	}()

	waitForServerToStart(t, testHostURL)

	validateRequests(t, testHostURL, "")
}

func TestStartServiceWithAuthorization(t *testing.T) {
	const (
		goodToken = "ABCD"
		badToken  = "BCDE"
	)

	testHostURL := randomURL()

	go func() {
		parameters := &serverParameters{
			server: &HTTPServer{},
			host:   testHostURL,
			token:  goodToken,
		}

		err := startService(parameters)
		require.FailNow(t, serverUnexpectedExitErrMsg+": "+err.Error())
	}()

	waitForServerToStart(t, testHostURL)

	t.Run("use good authorization token", func(t *testing.T) {
		authorizationHdr := "Bearer " + goodToken
		validateRequests(t, testHostURL, authorizationHdr)
	})

	t.Run("use bad authorization token", func(t *testing.T) {
		authorizationHdr := "Bearer " + badToken
		validateUnauthorized(t, testHostURL, authorizationHdr)
	})

	t.Run("use no authorization token", func(t *testing.T) {
		authorizationHdr := "Bearer"
		validateUnauthorized(t, testHostURL, authorizationHdr)
	})

	t.Run("use no authorization header", func(t *testing.T) {
		authorizationHdr := ""
		validateUnauthorized(t, testHostURL, authorizationHdr)
	})
}

func TestStartServiceTLS(t *testing.T) {
	parameters := &serverParameters{
		server:      &HTTPServer{},
		host:        ":0",
		tlsCertFile: "invalid",
		tlsKeyFile:  "invalid",
	}

	err := startService(parameters)
	require.EqualError(t, errors.Cause(err), "open invalid: no such file or directory")
}

func listenFor(host string) error {
	timeout := time.After(10 * time.Second)

	for {
		select {
		case <-timeout:
			return fmt.Errorf("timeout: %s is not available", host)
		default:
			conn, err := net.Dial("tcp", host)
			if err != nil {
				continue
			}

			return conn.Close()
		}
	}
}

type requestTestParams struct {
	name               string //nolint:structcheck
	r                  *http.Request
	expectedStatus     int
	expectResponseData bool
}

func runRequestTests(t *testing.T, tests []requestTestParams) {
	for _, tt := range tests {
		resp, err := http.DefaultClient.Do(tt.r)
		if err != nil {
			t.Fatal(err)
		}

		defer func() {
			e := resp.Body.Close()
			if e != nil {
				panic(err)
			}
		}()

		require.Equal(t, tt.expectedStatus, resp.StatusCode)

		if tt.expectResponseData {
			require.NotEmpty(t, resp.Body)

			response, err := ioutil.ReadAll(resp.Body)
			if err != nil {
				t.Fatal(err)
			}

			require.NotEmpty(t, response)
			require.True(t, isJSON(response))
		}
	}
}

func validateRequests(t *testing.T, testHostURL, authorizationHdr string) {
	tests := []requestTestParams{
		// controller API test
		{
			name:               "1: testing decode",
			r:                  newreq(t, http.MethodPost, fmt.Sprintf("http://%s/token/decode", testHostURL), authorizationHdr),
			expectedStatus:     http.StatusOK,
			expectResponseData: true,
		},

		// controller API test
		{
			name:               "2: testing project",
			r:                  newreq(t, http.MethodPost, fmt.Sprintf("http://%s/token/project", testHostURL), authorizationHdr),
			expectedStatus:     http.StatusOK,
			expectResponseData: true,
		},
	}

	runRequestTests(t, tests)
}

func validateUnauthorized(t *testing.T, testHostURL, authorizationHdr string) {
	tests := []requestTestParams{
		// controller API test
		{
			name:               "1: testing decode",
			r:                  newreq(t, http.MethodPost, fmt.Sprintf("http://%s/token/decode", testHostURL), authorizationHdr),
			expectedStatus:     http.StatusUnauthorized,
			expectResponseData: false,
		},
	}

	runRequestTests(t, tests)
}

func newreq(t *testing.T, method, url, authorizationHdr string) *http.Request {
	body := strings.NewReader(fmt.Sprintf(`{"token":%q}`, unsecuredToken))

	r, err := http.NewRequest(method, url, body)
	if err != nil {
		t.Fatal(err)
	}

	r.Header.Add("Content-Type", "application/json")

	if authorizationHdr != "" {
		r.Header.Add("Authorization", authorizationHdr)
	}

	return r
}

// isJSON checks if response is json.
func isJSON(res []byte) bool {
	var js map[string]interface{}
	return json.Unmarshal(res, &js) == nil
}

func waitForServerToStart(t *testing.T, host string) {
	if err := listenFor(host); err != nil {
		t.Fatal(err)
	}
}
