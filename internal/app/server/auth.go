package server

import (
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/big"
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	"github.com/seabattle-vn/slbattle/pkg/logging"
	"go.uber.org/zap"
)

// Struct for Cognito's JWKS JSON response
type jwk struct {
	Kid string `json:"kid"`
	N   string `json:"n"`
	E   string `json:"e"`
}

type jwks struct {
	Keys []jwk `json:"keys"`
}

func (s *server) loadCognitoPublicKeys() {
	url := fmt.Sprintf(
		"https://cognito-idp.%s.amazonaws.com/%s/.well-known/jwks.json",
		s.config.AwsRegion,
		s.config.CognitoUserPoolId,
	)

	resp, err := http.Get(url)
	if err != nil {
		logging.Error("failed to load cognito public key", zap.Error(err))
		return
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	var jwks jwks
	json.Unmarshal(body, &jwks)

	for _, key := range jwks.Keys {
		nBytes, _ := base64.RawURLEncoding.DecodeString(key.N)
		eBytes, _ := base64.RawURLEncoding.DecodeString(key.E)

		n := new(big.Int).SetBytes(nBytes)
		e := int(new(big.Int).SetBytes(eBytes).Int64())

		s.cognitoPublicKeys[key.Kid] = &rsa.PublicKey{N: n, E: e}
	}
	logging.Info("cognito public key loaded")
}

func (s *server) validateJWT(tokenString string) (*jwt.Token, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		kid, ok := token.Header["kid"].(string)
		if !ok {
			return nil, errors.New("invalid token: missing kid")
		}
		if key, found := s.cognitoPublicKeys[kid]; found {
			return key, nil
		}
		return nil, errors.New("invalid token: unknown kid")
	}, jwt.WithIssuer(fmt.Sprintf(
		"https://cognito-idp.%s.amazonaws.com/%s",
		s.config.AwsRegion,
		s.config.CognitoUserPoolId,
	)))
	if err != nil {
		return nil, err
	}
	return token, nil
}

// auth authenticates the request and extracts the player identity. Without
// a configured user pool the identity is taken from the playerId query
// parameter, for local development only.
func (s *server) auth(r *http.Request) (string, error) {
	if s.config.CognitoUserPoolId == "" {
		playerId := r.URL.Query().Get("playerId")
		if playerId == "" {
			return "", fmt.Errorf("no player id")
		}
		return playerId, nil
	}

	token := r.Header.Get("Authorization")
	if token == "" {
		return "", fmt.Errorf("no authorization")
	}
	validToken, err := s.validateJWT(token)
	if err != nil || !validToken.Valid {
		return "", fmt.Errorf("invalid token: %w", err)
	}
	mapClaims, ok := validToken.Claims.(jwt.MapClaims)
	if !ok {
		return "", fmt.Errorf("invalid map claims")
	}
	v, ok := mapClaims["sub"]
	if !ok {
		return "", fmt.Errorf("user id not found")
	}
	playerId, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("invalid user id")
	}
	return playerId, nil
}
