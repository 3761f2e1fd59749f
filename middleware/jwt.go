//
// Copyright (c) 2021 The redant Authors
//
// This file is licensed to you under your choice of the GNU Lesser
// General Public License, version 3 or any later version (LGPLv3 or
// later), or the GNU General Public License, version 2 (GPLv2), in all
// cases as published by the Free Software Foundation.
//

package middleware

import (
	"fmt"
	"net/http"

	jwtmiddleware "github.com/auth0/go-jwt-middleware"
	jwt "github.com/golang-jwt/jwt"
)

const AdminIssuer = "admin"

var (
	requiredClaims = []string{"iss", "exp"}
)

// JwtAuth checks that every request carries a bearer token signed
// with HS256 by the admin key.
type JwtAuth struct {
	adminKey []byte
}

func NewJwtAuth(adminKey string) *JwtAuth {
	return &JwtAuth{adminKey: []byte(adminKey)}
}

func (j *JwtAuth) keyFunc(token *jwt.Token) (interface{}, error) {
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("Unable to parse token claims")
	}

	// Error if required claims are not sent by Client
	for _, claimName := range requiredClaims {
		if _, claimOk := claims[claimName]; !claimOk {
			return nil, fmt.Errorf("Token missing %s claim", claimName)
		}
	}

	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("Unexpected signing method: %v", token.Header["alg"])
	}

	if iss, _ := claims["iss"].(string); iss != AdminIssuer {
		return nil, fmt.Errorf("Unknown user %v", claims["iss"])
	}

	return j.adminKey, nil
}

func (j *JwtAuth) ServeHTTP(w http.ResponseWriter, r *http.Request, next http.HandlerFunc) {
	raw, err := jwtmiddleware.FromAuthHeader(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}
	if raw == "" {
		http.Error(w, "'Authorization' header is required", http.StatusUnauthorized)
		return
	}

	token, err := jwt.Parse(raw, j.keyFunc)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}
	if !token.Valid {
		http.Error(w, "Invalid token", http.StatusUnauthorized)
		return
	}

	next(w, r)
}
