package jwtinfra

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/herbal-remedy-api/internal/config"
	"github.com/herbal-remedy-api/internal/domain"
)

// Provider signs and verifies RS256 bearer tokens whose only claim of interest is the subject.
type Provider struct {
	privateKey *rsa.PrivateKey
	publicKey  *rsa.PublicKey
	expiry     time.Duration
	now        func() time.Time
}

func NewProvider(cfg *config.Config) (*Provider, error) {
	privBytes, err := os.ReadFile(cfg.JWTPrivateKeyPath)
	if err != nil {
		return nil, fmt.Errorf("read private key: %w", err)
	}
	privKey, err := jwt.ParseRSAPrivateKeyFromPEM(privBytes)
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}

	pubBytes, err := os.ReadFile(cfg.JWTPublicKeyPath)
	if err != nil {
		return nil, fmt.Errorf("read public key: %w", err)
	}
	pubKey, err := jwt.ParseRSAPublicKeyFromPEM(pubBytes)
	if err != nil {
		return nil, fmt.Errorf("parse public key: %w", err)
	}

	expiry := cfg.JWTExpiry
	if expiry <= 0 {
		expiry = 30 * time.Minute
	}
	return &Provider{privateKey: privKey, publicKey: pubKey, expiry: expiry, now: time.Now}, nil
}

// Issue returns a signed token for subject that expires after the configured duration.
func (p *Provider) Issue(subject string) (string, error) {
	now := p.now()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(now.Add(p.expiry)),
		IssuedAt:  jwt.NewNumericDate(now),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	signed, err := token.SignedString(p.privateKey)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify returns the subject of a valid token. Every failure maps to domain.ErrInvalidToken.
func (p *Provider) Verify(tokenStr string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return p.publicKey, nil
	}, jwt.WithTimeFunc(p.now), jwt.WithExpirationRequired())
	if err != nil {
		return "", fmt.Errorf("%s: %w", err.Error(), domain.ErrInvalidToken)
	}
	if !token.Valid || claims.Subject == "" {
		return "", fmt.Errorf("token has no subject: %w", domain.ErrInvalidToken)
	}
	return claims.Subject, nil
}
