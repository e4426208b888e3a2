// Recipe Web App - Recipe Discovery and Favourites Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/nivremi/recipe-web-app

package auth

import (
	"errors"
	"fmt"
	"strings"
)

// ErrWeakPassword is returned when a signup password fails the policy.
var ErrWeakPassword = errors.New("password does not meet policy")

// maxBcryptPasswordBytes is the longest input bcrypt accepts.
const maxBcryptPasswordBytes = 72

// PasswordPolicy holds the signup password rules. Length is counted in bytes
// because that is what bcrypt consumes.
type PasswordPolicy struct {
	MinLength int

	// MaxConsecutiveRepeats is the longest allowed run of one character (0 = unlimited).
	MaxConsecutiveRepeats int

	ForbidCommonPasswords    bool
	ForbidUsernameSimilarity bool
}

// DefaultPasswordPolicy returns the policy applied at signup.
func DefaultPasswordPolicy() PasswordPolicy {
	return PasswordPolicy{
		MinLength:                8,
		MaxConsecutiveRepeats:    4,
		ForbidCommonPasswords:    true,
		ForbidUsernameSimilarity: true,
	}
}

// Check returns every rule password breaks, or nil.
func (p PasswordPolicy) Check(password, username string) []string {
	var problems []string

	if len(password) < p.MinLength {
		problems = append(problems, fmt.Sprintf("password must be at least %d characters", p.MinLength))
	}
	if len(password) > maxBcryptPasswordBytes {
		problems = append(problems, fmt.Sprintf("password must be at most %d bytes", maxBcryptPasswordBytes))
	}
	if p.MaxConsecutiveRepeats > 0 && longestRun(password) > p.MaxConsecutiveRepeats {
		problems = append(problems,
			fmt.Sprintf("password cannot repeat a character more than %d times in a row", p.MaxConsecutiveRepeats))
	}
	if p.ForbidCommonPasswords && isCommonPassword(password) {
		problems = append(problems, "password is too common and easily guessable")
	}
	if p.ForbidUsernameSimilarity && username != "" && isSimilarToUsername(password, username) {
		problems = append(problems, "password is too similar to username")
	}
	return problems
}

// Validate returns ErrWeakPassword describing every broken rule, or nil.
func (p PasswordPolicy) Validate(password, username string) error {
	if problems := p.Check(password, username); len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrWeakPassword, strings.Join(problems, "; "))
	}
	return nil
}

func longestRun(s string) int {
	longest, current := 0, 0
	var last rune
	for i, r := range s {
		if i > 0 && r == last {
			current++
		} else {
			current = 1
		}
		if current > longest {
			longest = current
		}
		last = r
	}
	return longest
}

var commonPasswords = map[string]struct{}{
	"123456": {}, "password": {}, "123456789": {}, "12345678": {}, "1234567890": {},
	"qwerty": {}, "qwerty123": {}, "qwertyuiop": {}, "abc123": {}, "abcd1234": {},
	"password1": {}, "password123": {}, "passw0rd": {}, "p@ssw0rd": {}, "letmein": {},
	"welcome": {}, "welcome1": {}, "iloveyou": {}, "sunshine": {}, "princess": {},
	"football": {}, "baseball": {}, "dragon": {}, "monkey": {}, "shadow": {},
	"superman": {}, "trustno1": {}, "111111": {}, "000000": {}, "11111111": {},
	"1q2w3e4r": {}, "1qaz2wsx": {}, "changeme": {}, "secret": {}, "default": {},
	"asdfghjkl": {}, "zxcvbnm": {}, "987654321": {}, "123123123": {}, "testing123": {},
	// Domain words people reach for on a recipe site.
	"recipes": {}, "recipe123": {}, "cooking": {}, "cooking1": {}, "foodie": {},
	"foodie123": {}, "chocolate": {}, "cupcake": {}, "cheesecake": {}, "pancakes": {},
	"spaghetti": {}, "delicious": {}, "yummy123": {}, "mealdb": {}, "chef1234": {},
}

func isCommonPassword(password string) bool {
	_, ok := commonPasswords[strings.ToLower(password)]
	return ok
}

// isSimilarToUsername matches the username as a substring, reversed, or with
// common leetspeak substitutions.
func isSimilarToUsername(password, username string) bool {
	lowerPass := strings.ToLower(password)
	lowerUser := strings.ToLower(username)

	if strings.Contains(lowerPass, lowerUser) || strings.Contains(lowerUser, lowerPass) {
		return true
	}
	if strings.Contains(lowerPass, reverseString(lowerUser)) {
		return true
	}

	substituted := strings.Map(func(r rune) rune {
		switch r {
		case 'a':
			return '@'
		case 'e':
			return '3'
		case 'i':
			return '1'
		case 'o':
			return '0'
		case 's':
			return '$'
		case 't':
			return '7'
		}
		return r
	}, lowerUser)
	return strings.Contains(lowerPass, substituted)
}

func reverseString(s string) string {
	runes := []rune(s)
	for i, j := 0, len(runes)-1; i < j; i, j = i+1, j-1 {
		runes[i], runes[j] = runes[j], runes[i]
	}
	return string(runes)
}
