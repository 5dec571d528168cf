package auth

import (
	"context"
	"errors"

	"golang.org/x/oauth2"
)

// ErrNoToken is returned by a TokenStore that holds no token.
var ErrNoToken = errors.New("no stored token")

// StoredToken is what gets persisted after a login. Access tokens are never
// stored; they are minted from the refresh token on each run.
type StoredToken struct {
	RefreshToken string `json:"refresh_token"`
	Scope        string `json:"scope,omitempty"`
	TokenType    string `json:"token_type,omitempty"`
}

// NewStoredToken keeps the long-lived parts of an exchanged token.
func NewStoredToken(tok *oauth2.Token) *StoredToken {
	stored := &StoredToken{
		RefreshToken: tok.RefreshToken,
		TokenType:    tok.TokenType,
	}
	if scope, ok := tok.Extra("scope").(string); ok {
		stored.Scope = scope
	}
	return stored
}

// OAuth2 returns a token the oauth2 TokenSource will refresh before first use.
func (t *StoredToken) OAuth2() *oauth2.Token {
	return &oauth2.Token{
		RefreshToken: t.RefreshToken,
		TokenType:    t.TokenType,
	}
}

// TokenStore persists the refresh token between runs.
type TokenStore interface {
	// Load returns the token and a description of where it was found.
	Load(ctx context.Context) (*StoredToken, string, error)
	// Save persists the token and returns where it was written.
	Save(ctx context.Context, tok *StoredToken) (string, error)
	// Remove deletes every stored copy and returns what was removed.
	Remove(ctx context.Context) ([]string, error)
	// Location describes where Save would write.
	Location() string
}
