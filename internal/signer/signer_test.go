package signer

import (
	"context"
	"testing"

	"salesrep_sync/platform/apperr"
	"salesrep_sync/platform/secrets"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSign_KnownVector(t *testing.T) {
	// RFC 4231 test case 2, base64 encoded.
	digest, err := Sign("Jefe", []byte("what do ya want for nothing?"))
	require.NoError(t, err)
	assert.Equal(t, "W9zBRr9gdU5qBCQmCJV1x1oAPwidJzmDnexYuWTsOEM=", digest)
}

func TestSign_EmptySecretIsConfigurationError(t *testing.T) {
	_, err := Sign("", []byte("{}"))
	assert.True(t, apperr.Is(err, apperr.KindConfiguration))
}

func TestSign_Deterministic(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("same input gives the same digest", prop.ForAll(
		func(secret, body string) bool {
			a, errA := Sign("k"+secret, []byte(body))
			b, errB := Sign("k"+secret, []byte(body))
			return errA == nil && errB == nil && a == b
		},
		gen.AlphaString(),
		gen.AnyString(),
	))

	properties.Property("changing one byte changes the digest", prop.ForAll(
		func(body string) bool {
			raw := []byte("x" + body)
			a, _ := Sign("secret", raw)
			raw[0] = 'y'
			b, _ := Sign("secret", raw)
			return a != b
		},
		gen.AnyString(),
	))

	properties.TestingRun(t)
}

func TestVerify(t *testing.T) {
	body := []byte(`{"customerEmail":"a@b.com","salesRep":"Jane"}`)
	digest, err := Sign("secret", body)
	require.NoError(t, err)

	assert.True(t, Verify("secret", body, digest))
	assert.False(t, Verify("other", body, digest))
	assert.False(t, Verify("secret", append(body, ' '), digest))
	assert.False(t, Verify("secret", body, "not base64!"))
	assert.False(t, Verify("secret", body, ""))
}

func TestCanonical_SortsKeys(t *testing.T) {
	body, err := Canonical(map[string]any{"salesRep": "Jane", "customerEmail": "a@b.com"})
	require.NoError(t, err)
	assert.Equal(t, `{"customerEmail":"a@b.com","salesRep":"Jane"}`, string(body))
}

func TestSigner_RoundTrip(t *testing.T) {
	s := New(secrets.Static{"ref": "secret"}, "ref")

	body, digest, err := s.SignJSON(context.Background(), struct {
		CustomerEmail string `json:"customerEmail"`
		SalesRep      string `json:"salesRep"`
	}{"a@b.com", "Jane"})
	require.NoError(t, err)

	require.NoError(t, s.VerifyBody(context.Background(), body, digest))
	err = s.VerifyBody(context.Background(), []byte(`{}`), digest)
	assert.True(t, apperr.Is(err, apperr.KindUnauthorized))
}

func TestSigner_MissingSecret(t *testing.T) {
	s := New(secrets.Static{}, "ref")

	_, _, err := s.SignJSON(context.Background(), map[string]string{})
	assert.True(t, apperr.Is(err, apperr.KindConfiguration))
}
