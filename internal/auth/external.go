package auth

import (
	"crypto/rsa"
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/aura-survey/backend/internal/models"
)

// ExternalVerifier checks RS256 tokens minted by a hosted identity provider.
type ExternalVerifier struct {
	key  *rsa.PublicKey
	opts []jwt.ParserOption
}

// NewExternalVerifier parses the provider's PEM public key. An empty issuer skips the iss check.
func NewExternalVerifier(publicKeyPEM []byte, issuer string, opts ...jwt.ParserOption) (*ExternalVerifier, error) {
	key, err := jwt.ParseRSAPublicKeyFromPEM(publicKeyPEM)
	if err != nil {
		return nil, fmt.Errorf("parse provider public key: %w", err)
	}
	parserOpts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}), jwt.WithExpirationRequired()}
	if issuer != "" {
		parserOpts = append(parserOpts, jwt.WithIssuer(issuer))
	}
	return &ExternalVerifier{key: key, opts: append(parserOpts, opts...)}, nil
}

// IssueToken always fails; the provider issues tokens.
func (v *ExternalVerifier) IssueToken(*models.User) (string, error) {
	return "", ErrIssueUnsupported
}

// VerifyToken validates signature, expiry and issuer. The user_id claim is ignored.
func (v *ExternalVerifier) VerifyToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return v.key, nil
	}, v.opts...)
	if err != nil {
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	claims.UserID = 0
	return claims, nil
}
