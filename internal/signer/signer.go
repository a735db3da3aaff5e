// Package signer authenticates the hop between the ERP-side caller and the
// sync service with an HMAC-SHA256 digest over a canonical JSON body.
package signer

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"

	"salesrep_sync/platform/apperr"
	"salesrep_sync/platform/secrets"

	"github.com/gowebpki/jcs"
)

// Sign returns the base64 HMAC-SHA256 of body keyed by secret.
func Sign(secret string, body []byte) (string, error) {
	if secret == "" {
		return "", apperr.Configuration("signing secret is empty")
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil)), nil
}

// Verify checks a base64 HMAC-SHA256 digest over the raw body.
func Verify(secret string, body []byte, provided string) bool {
	if secret == "" || provided == "" {
		return false
	}
	got, err := base64.StdEncoding.DecodeString(provided)
	if err != nil {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hmac.Equal(mac.Sum(nil), got)
}

// Canonical serializes v as RFC 8785 canonical JSON.
func Canonical(v any) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return jcs.Transform(raw)
}

// Signer signs and verifies bodies with a secret resolved by reference.
type Signer struct {
	store secrets.Store
	ref   string
}

// New creates a Signer resolving its key from store under ref.
func New(store secrets.Store, ref string) *Signer {
	return &Signer{store: store, ref: ref}
}

func (s *Signer) secret(ctx context.Context) (string, error) {
	if s == nil || s.store == nil {
		return "", apperr.Configuration("no secret store configured")
	}
	return s.store.Resolve(ctx, s.ref)
}

// SignJSON canonicalizes v and returns the body bytes with their digest.
func (s *Signer) SignJSON(ctx context.Context, v any) ([]byte, string, error) {
	secret, err := s.secret(ctx)
	if err != nil {
		return nil, "", err
	}
	body, err := Canonical(v)
	if err != nil {
		return nil, "", apperr.Wrap(apperr.KindBadRequest, "encode body", err)
	}
	digest, err := Sign(secret, body)
	if err != nil {
		return nil, "", err
	}
	return body, digest, nil
}

// VerifyBody checks provided against the digest of the raw body.
func (s *Signer) VerifyBody(ctx context.Context, body []byte, provided string) error {
	secret, err := s.secret(ctx)
	if err != nil {
		return err
	}
	if !Verify(secret, body, provided) {
		return apperr.Unauthorized("invalid signature")
	}
	return nil
}
