package utils // package utils provides helper functions for token creation and hashing

import (
    "errors" // sentinel errors for token parsing
    "time"   // time utilities for generating expirations

    "github.com/golang-jwt/jwt/v5" // JWT library for creating signed tokens
)

// ErrInvalidToken is returned for any token that cannot be trusted: bad
// signature, wrong algorithm, expired, or missing the identity claims.
var ErrInvalidToken = errors.New("invalid token")

// TokenUser is the identity embedded in every auth token.  It mirrors the
// public user shape so clients can read it without another request.
type TokenUser struct {
    ID       string `json:"id"`
    Username string `json:"username"`
    Fullname string `json:"fullname,omitempty"`
}

// Claims is the JWT payload.  Subject always equals User.Username.
type Claims struct {
    User TokenUser `json:"user"`
    jwt.RegisteredClaims
}

// AuthToken is a signed token and its expiry.
type AuthToken struct {
    Token string    // the serialized JWT string
    Exp   time.Time // the UTC expiration time
}

// NewAuthToken builds and signs an HS256 JWT for a user.  The token expires
// ttl after now; there is no refresh, clients log in again.
func NewAuthToken(secret string, u TokenUser, ttl time.Duration) (AuthToken, error) {
    now := time.Now().UTC()
    exp := now.Add(ttl)
    claims := Claims{
        User: u,
        RegisteredClaims: jwt.RegisteredClaims{
            Subject:   u.Username,
            IssuedAt:  jwt.NewNumericDate(now),
            ExpiresAt: jwt.NewNumericDate(exp),
        },
    }
    t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
    signed, err := t.SignedString([]byte(secret))
    if err != nil {
        return AuthToken{}, err
    }
    return AuthToken{Token: signed, Exp: exp}, nil
}

// ParseAuthToken verifies signature, algorithm and expiry and returns the
// claims.  Every failure is reported as ErrInvalidToken.
func ParseAuthToken(secret, raw string) (*Claims, error) {
    var claims Claims
    tok, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (interface{}, error) {
        // Type assert the signing method to HMAC; reject others.
        if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
            return nil, ErrInvalidToken
        }
        return []byte(secret), nil
    }, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
    if err != nil || !tok.Valid {
        return nil, ErrInvalidToken
    }
    if claims.User.ID == "" || claims.Subject == "" || claims.Subject != claims.User.Username {
        return nil, ErrInvalidToken
    }
    return &claims, nil
}
