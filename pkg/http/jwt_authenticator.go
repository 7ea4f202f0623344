package http

import (
	"crypto/x509"
	"encoding/pem"
	"net/http"
	"strings"

	"github.com/buildbarn/bb-ed2k/pkg/clock"
	"github.com/buildbarn/bb-ed2k/pkg/util"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"gopkg.in/square/go-jose.v2"
	"gopkg.in/square/go-jose.v2/jwt"
)

// Authenticator decides whether an HTTP request is permitted to access
// the hashing service.
type Authenticator interface {
	Authenticate(r *http.Request) error
}

// JWTKeyConfig holds a key that may be used to verify the signature of
// a JSON Web Token.
type JWTKeyConfig struct {
	Key interface{}
}

type jwtAuthenticator struct {
	verifyKeys []JWTKeyConfig
	clock      clock.Clock
}

// LoadJWTVerificationKey loads a verification key from PEM, DER or JWK
// encoded data. Symmetric keys need to be provided as a JWK of type
// "oct".
func LoadJWTVerificationKey(data []byte) (JWTKeyConfig, error) {
	input := data
	if block, _ := pem.Decode(data); block != nil {
		input = block.Bytes
	}

	pub, errPKIX := x509.ParsePKIXPublicKey(input)
	if errPKIX == nil {
		return JWTKeyConfig{Key: pub}, nil
	}
	cert, errCertificate := x509.ParseCertificate(input)
	if errCertificate == nil {
		return JWTKeyConfig{Key: cert.PublicKey}, nil
	}
	var jwk jose.JSONWebKey
	errJWK := jwk.UnmarshalJSON(data)
	if errJWK == nil {
		return JWTKeyConfig{Key: &jwk}, nil
	}
	return JWTKeyConfig{}, status.Errorf(codes.InvalidArgument, "Key is not a public key (%s), a certificate (%s) or a JWK (%s)", errPKIX, errCertificate, errJWK)
}

// NewJWTAuthenticator creates an Authenticator that only grants access
// in case a validly signed JWT is passed as a Bearer token in the
// request's "Authorization" header.
func NewJWTAuthenticator(keys []JWTKeyConfig, clock clock.Clock) Authenticator {
	return &jwtAuthenticator{
		verifyKeys: keys,
		clock:      clock,
	}
}

func (a *jwtAuthenticator) Authenticate(r *http.Request) error {
	authHeader := r.Header.Values("Authorization")
	if len(authHeader) < 1 {
		return status.Error(codes.Unauthenticated, "Authorization required")
	}
	if len(authHeader) > 1 {
		return status.Error(codes.Unauthenticated, "Multiple authorization headers are not supported")
	}
	if !strings.HasPrefix(authHeader[0], "Bearer ") {
		return status.Error(codes.Unauthenticated, "Authorization required")
	}

	tok, err := jwt.ParseSigned(strings.TrimPrefix(authHeader[0], "Bearer "))
	if err != nil {
		return util.StatusWrapWithCode(err, codes.Unauthenticated, "Authorization required")
	}

	// Try each of the verification keys in order. Time related
	// claims are only validated against the key that matches.
	for _, verifyKey := range a.verifyKeys {
		var claims jwt.Claims
		if err := tok.Claims(verifyKey.Key, &claims); err == nil {
			if err := claims.Validate(jwt.Expected{Time: a.clock.Now()}); err != nil {
				return util.StatusWrapWithCode(err, codes.Unauthenticated, "Authorization required")
			}
			return nil
		}
	}
	return status.Error(codes.Unauthenticated, "Authorization required")
}

// NewAuthenticationMiddleware creates a middleware that rejects
// requests for which the Authenticator returns an error.
func NewAuthenticationMiddleware(authenticator Authenticator, logger log.FieldLogger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := authenticator.Authenticate(r); err != nil {
				requestLogger := logger.WithFields(log.Fields{
					"method": r.Method,
					"url":    r.URL.String(),
				})
				requestLogger.WithError(err).Warn("Rejected unauthenticated request")
				w.Header().Set("WWW-Authenticate", "Bearer")
				writeResponseAsJSON(requestLogger, w, http.StatusUnauthorized, errorResponse{
					Error: status.Convert(err).Message(),
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
