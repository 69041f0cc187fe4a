/*
Copyright SecureKey Technologies Inc. All Rights Reserved.
SPDX-License-Identifier: Apache-2.0
*/

package startcmd

import (
	"crypto/subtle"
	"net/http"
	"os"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/rs/cors"
	"github.com/spf13/cobra"

	"github.com/hyperledger/aries-framework-go/component/log"

	"github.com/trustbloc/sectoken-go/controller"
)

const (
	// api host flag.
	hostFlagName      = "api-host"
	hostEnvKey        = "SECTOKEN_API_HOST"
	hostFlagShorthand = "a"
	hostFlagUsage     = "Host Name:Port." +
		" Alternatively, this can be set with the following environment variable: " + hostEnvKey

	// api token flag.
	tokenFlagName      = "api-token"
	tokenEnvKey        = "SECTOKEN_API_TOKEN" // nolint:gosec
	tokenFlagShorthand = "t"
	tokenFlagUsage     = "Check for bearer token in the authorization header (optional)." +
		" Alternatively, this can be set with the following environment variable: " + tokenEnvKey

	tlsCertFileFlagName      = "tls-cert-file"
	tlsCertFileEnvKey        = "TLS_CERT_FILE"
	tlsCertFileFlagShorthand = "c"
	tlsCertFileFlagUsage     = "tls certificate file." +
		" Alternatively, this can be set with the following environment variable: " + tlsCertFileEnvKey

	tlsKeyFileFlagName      = "tls-key-file"
	tlsKeyFileEnvKey        = "TLS_KEY_FILE"
	tlsKeyFileFlagShorthand = "k"
	tlsKeyFileFlagUsage     = "tls key file." +
		" Alternatively, this can be set with the following environment variable: " + tlsKeyFileEnvKey

	// log level.
	logLevelFlagName  = "log-level"
	logLevelEnvKey    = "SECTOKEN_LOG_LEVEL"
	logLevelFlagUsage = "Log level." +
		" Possible values [INFO] [DEBUG] [ERROR] [WARNING] [CRITICAL] . Defaults to INFO if not set." +
		" Alternatively, this can be set with the following environment variable: " + logLevelEnvKey

	// max token size flag.
	maxTokenSizeFlagName      = "max-token-size"
	maxTokenSizeEnvKey        = "SECTOKEN_MAX_TOKEN_SIZE"
	maxTokenSizeFlagShorthand = "s"
	maxTokenSizeFlagUsage     = "Maximum accepted length in bytes of a compact token." +
		" Defaults to unbounded if not set." +
		" Alternatively, this can be set with the following environment variable: " + maxTokenSizeEnvKey

	// max actor depth flag.
	maxActorDepthFlagName  = "max-actor-depth"
	maxActorDepthEnvKey    = "SECTOKEN_MAX_ACTOR_DEPTH"
	maxActorDepthFlagUsage = "Maximum depth of nested actor tokens to project. Zero disables actor projection." +
		" Defaults to 8 if not set." +
		" Alternatively, this can be set with the following environment variable: " + maxActorDepthEnvKey

	// claim issuer flag.
	claimIssuerFlagName      = "claim-issuer"
	claimIssuerEnvKey        = "SECTOKEN_CLAIM_ISSUER"
	claimIssuerFlagShorthand = "i"
	claimIssuerFlagUsage     = "Issuer name attributed to projected claims." +
		" Defaults to the token's iss claim if not set." +
		" Alternatively, this can be set with the following environment variable: " + claimIssuerEnvKey

	// read only claims flag.
	readOnlyClaimsFlagName  = "read-only-claims"
	readOnlyClaimsEnvKey    = "SECTOKEN_READ_ONLY_CLAIMS"
	readOnlyClaimsFlagUsage = "Back token claim sets by the read-only view implementation." +
		" Possible values [true] [false]. Defaults to false if not set." +
		" Alternatively, this can be set with the following environment variable: " + readOnlyClaimsEnvKey
)

var (
	errMissingHost = errors.New("host not provided")
	logger         = log.New("sectoken-go/sectoken-rest")
)

type serverParameters struct {
	server         server
	host           string
	token          string
	tlsCertFile    string
	tlsKeyFile     string
	maxTokenSize   int
	maxActorDepth  int
	claimIssuer    string
	readOnlyClaims bool
}

type server interface {
	ListenAndServe(host string, router http.Handler, certFile, keyFile string) error
}

// HTTPServer represents an actual server implementation.
type HTTPServer struct{}

// ListenAndServe starts the server using the standard Go HTTP server implementation.
func (s *HTTPServer) ListenAndServe(host string, router http.Handler, certFile, keyFile string) error {
	if certFile != "" && keyFile != "" {
		return http.ListenAndServeTLS(host, certFile, keyFile, router)
	}

	return http.ListenAndServe(host, router)
}

// Cmd returns the Cobra start command.
func Cmd(server server) (*cobra.Command, error) {
	startCmd := createStartCMD(server)

	createFlags(startCmd)

	return startCmd, nil
}

func createStartCMD(server server) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start a token inspection server",
		Long:  `Start a security token inspection server`,
		RunE: func(cmd *cobra.Command, args []string) error {
			// log level
			logLevel, err := getUserSetVar(cmd, logLevelFlagName, logLevelEnvKey, true)
			if err != nil {
				return err
			}

			err = setLogLevel(logLevel)
			if err != nil {
				return err
			}

			host, err := getUserSetVar(cmd, hostFlagName, hostEnvKey, false)
			if err != nil {
				return err
			}

			token, err := getUserSetVar(cmd, tokenFlagName, tokenEnvKey, true)
			if err != nil {
				return err
			}

			tlsCertFile, err := getUserSetVar(cmd, tlsCertFileFlagName, tlsCertFileEnvKey, true)
			if err != nil {
				return err
			}

			tlsKeyFile, err := getUserSetVar(cmd, tlsKeyFileFlagName, tlsKeyFileEnvKey, true)
			if err != nil {
				return err
			}

			maxTokenSize, err := getIntValue(cmd, maxTokenSizeFlagName, maxTokenSizeEnvKey, 0)
			if err != nil {
				return err
			}

			maxActorDepth, err := getIntValue(cmd, maxActorDepthFlagName, maxActorDepthEnvKey, -1)
			if err != nil {
				return err
			}

			claimIssuer, err := getUserSetVar(cmd, claimIssuerFlagName, claimIssuerEnvKey, true)
			if err != nil {
				return err
			}

			readOnlyClaims, err := getReadOnlyClaimsValue(cmd)
			if err != nil {
				return err
			}

			parameters := &serverParameters{
				server:         server,
				host:           host,
				token:          token,
				tlsCertFile:    tlsCertFile,
				tlsKeyFile:     tlsKeyFile,
				maxTokenSize:   maxTokenSize,
				maxActorDepth:  maxActorDepth,
				claimIssuer:    claimIssuer,
				readOnlyClaims: readOnlyClaims,
			}

			return startService(parameters)
		},
	}
}

func getIntValue(cmd *cobra.Command, flagName, envKey string, defaultVal int) (int, error) {
	v, err := getUserSetVar(cmd, flagName, envKey, true)
	if err != nil {
		return 0, err
	}

	if v == "" {
		return defaultVal, nil
	}

	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, errors.Wrapf(err, "failed to parse %s %s", flagName, v)
	}

	return n, nil
}

func getReadOnlyClaimsValue(cmd *cobra.Command) (bool, error) {
	v, err := getUserSetVar(cmd, readOnlyClaimsFlagName, readOnlyClaimsEnvKey, true)
	if err != nil {
		return false, err
	}

	if v == "" {
		return false, nil
	}

	return strconv.ParseBool(v)
}

func createFlags(startCmd *cobra.Command) {
	// api host flag
	startCmd.Flags().StringP(hostFlagName, hostFlagShorthand, "", hostFlagUsage)

	// api token flag
	startCmd.Flags().StringP(tokenFlagName, tokenFlagShorthand, "", tokenFlagUsage)

	// tls cert file
	startCmd.Flags().StringP(tlsCertFileFlagName, tlsCertFileFlagShorthand, "", tlsCertFileFlagUsage)

	// tls key file
	startCmd.Flags().StringP(tlsKeyFileFlagName, tlsKeyFileFlagShorthand, "", tlsKeyFileFlagUsage)

	// log level
	startCmd.Flags().StringP(logLevelFlagName, "", "", logLevelFlagUsage)

	// max token size
	startCmd.Flags().StringP(maxTokenSizeFlagName, maxTokenSizeFlagShorthand, "", maxTokenSizeFlagUsage)

	// max actor depth
	startCmd.Flags().StringP(maxActorDepthFlagName, "", "", maxActorDepthFlagUsage)

	// claim issuer
	startCmd.Flags().StringP(claimIssuerFlagName, claimIssuerFlagShorthand, "", claimIssuerFlagUsage)

	// read only claims
	startCmd.Flags().StringP(readOnlyClaimsFlagName, "", "", readOnlyClaimsFlagUsage)
}

func getUserSetVar(cmd *cobra.Command, flagName, envKey string, isOptional bool) (string, error) {
	if cmd.Flags().Changed(flagName) {
		value, err := cmd.Flags().GetString(flagName)
		if err != nil {
			return "", errors.Wrapf(err, "%s flag not found", flagName)
		}

		return value, nil
	}

	value, isSet := os.LookupEnv(envKey)

	if isOptional || isSet {
		return value, nil
	}

	return "", errors.New("Neither " + flagName + " (command line flag) nor " + envKey +
		" (environment variable) have been set.")
}

func setLogLevel(logLevel string) error {
	if logLevel != "" {
		level, err := log.ParseLevel(logLevel)
		if err != nil {
			return errors.Wrapf(err, "failed to parse log level '%s'", logLevel)
		}

		log.SetLevel("", level)

		logger.Infof("logger level set to %s", logLevel)
	}

	return nil
}

func validateAuthorizationBearerToken(w http.ResponseWriter, r *http.Request, token string) bool {
	actHdr := r.Header.Get("Authorization")
	expHdr := "Bearer " + token

	if subtle.ConstantTimeCompare([]byte(actHdr), []byte(expHdr)) != 1 {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte("Unauthorised.\n")) // nolint:gosec,errcheck

		return false
	}

	return true
}

func authorizationMiddleware(token string) mux.MiddlewareFunc {
	middleware := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if validateAuthorizationBearerToken(w, r, token) {
				next.ServeHTTP(w, r)
			}
		})
	}

	return middleware
}

func controllerOpts(parameters *serverParameters) []controller.Opt {
	var opts []controller.Opt

	if parameters.maxTokenSize > 0 {
		opts = append(opts, controller.WithMaxTokenSize(parameters.maxTokenSize))
	}

	if parameters.maxActorDepth >= 0 {
		opts = append(opts, controller.WithMaxActorDepth(parameters.maxActorDepth))
	}

	if parameters.claimIssuer != "" {
		opts = append(opts, controller.WithIssuer(parameters.claimIssuer))
	}

	if parameters.readOnlyClaims {
		opts = append(opts, controller.WithViewClaimSets())
	}

	return opts
}

func startService(parameters *serverParameters) error {
	if parameters.host == "" {
		return errMissingHost
	}

	// get all HTTP REST API handlers available for controller API
	handlers := controller.GetRESTHandlers(controllerOpts(parameters)...)

	router := mux.NewRouter()

	if parameters.token != "" {
		router.Use(authorizationMiddleware(parameters.token))
	}

	for _, handler := range handlers {
		router.HandleFunc(handler.Path(), handler.Handle()).Methods(handler.Method())
	}

	logger.Infof("Starting sectoken rest server on host [%s]", parameters.host)
	// start server on given port and serve using given handlers
	handler := cors.New(
		cors.Options{
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodHead},
			AllowedHeaders: []string{"Origin", "Accept", "Content-Type", "X-Requested-With", "Authorization"},
		},
	).Handler(router)

	err := parameters.server.ListenAndServe(parameters.host, handler, parameters.tlsCertFile, parameters.tlsKeyFile)
	if err != nil {
		return errors.Wrapf(err, "failed to start sectoken rest server on port [%s]", parameters.host)
	}

	return nil
}
