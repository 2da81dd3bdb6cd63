// Package signature implements the optional HMAC authenticity check on
// inbound webhook payloads.
package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"strings"
)

// Verifier checks hex-encoded HMAC-SHA256 signatures over raw request
// bodies. It is a pure function over (secret, body, header): no state,
// no side effects.
type Verifier struct {
	secret []byte
}

// New returns a Verifier for the given shared secret. An empty secret
// disables enforcement: every request verifies as valid.
func New(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

// Enabled reports whether a secret is configured.
func (v *Verifier) Enabled() bool {
	return len(v.secret) > 0
}

// Verify reports whether the request is acceptable.
//
// With no secret configured every request is valid. With a secret
// configured but no signature header present the request is still
// accepted; legacy senders do not sign. Only a present-but-wrong
// signature is rejected.
func (v *Verifier) Verify(body []byte, signatureHeader string) bool {
	if !v.Enabled() {
		return true
	}
	if signatureHeader == "" {
		return true
	}

	// Tolerate the sha256= prefix used by GitHub-style senders.
	hexSignature := strings.TrimPrefix(signatureHeader, "sha256=")

	signatureBytes, err := hex.DecodeString(hexSignature)
	if err != nil {
		return false
	}

	mac := hmac.New(sha256.New, v.secret)
	mac.Write(body)
	expected := mac.Sum(nil)

	return subtle.ConstantTimeCompare(expected, signatureBytes) == 1
}

// Sign computes the hex-encoded HMAC-SHA256 of body with the configured
// secret. Used by tests and by senders that share this package.
func (v *Verifier) Sign(body []byte) string {
	mac := hmac.New(sha256.New, v.secret)
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}
