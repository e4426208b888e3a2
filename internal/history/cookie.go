// Recipe Web App - Recipe Discovery and Favourites Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/nivremi/recipe-web-app

package history

import (
	"net/http"
	"time"
)

// Jar moves history tokens in and out of HTTP cookies.
type Jar struct {
	Name string
	TTL  time.Duration
}

// DefaultJar returns a Jar using CookieName and TTL.
func DefaultJar() Jar {
	return Jar{Name: CookieName, TTL: TTL}
}

// NewJar returns a Jar for the given cookie name and lifetime.
// Zero values fall back to the defaults.
func NewJar(name string, ttl time.Duration) Jar {
	j := DefaultJar()
	if name != "" {
		j.Name = name
	}
	if ttl > 0 {
		j.TTL = ttl
	}
	return j
}

// FromRequest returns the token carried by r, or nil when the cookie is absent.
func (j Jar) FromRequest(r *http.Request) *Token {
	c, err := r.Cookie(j.Name)
	if err != nil {
		return nil
	}
	t := Token(c.Value)
	return &t
}

// Cookie builds the cookie that stores token on the client.
func (j Jar) Cookie(token Token, secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     j.Name,
		Value:    string(token),
		Path:     CookiePath,
		MaxAge:   int(j.TTL / time.Second),
		Expires:  time.Now().Add(j.TTL),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// ClearCookie expresses a ClearInstruction as an empty, already expired cookie.
func (j Jar) ClearCookie(ci ClearInstruction, secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     j.Name,
		Value:    "",
		Path:     ci.Path,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// FromRequest reads the default history cookie.
func FromRequest(r *http.Request) *Token {
	return DefaultJar().FromRequest(r)
}

// Cookie builds the default history cookie for token.
func Cookie(token Token, secure bool) *http.Cookie {
	return DefaultJar().Cookie(token, secure)
}

// ClearCookie builds the default cookie that removes the history.
func ClearCookie(secure bool) *http.Cookie {
	return DefaultJar().ClearCookie(Clear(), secure)
}
