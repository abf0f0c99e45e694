package httptransport

import (
	"bytes"
	"crypto/ed25519"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
)

const (
	headerSignature = "X-Signature-Ed25519"
	headerTimestamp = "X-Signature-Timestamp"
)

// maxInteractionBody bounds inbound payloads; interaction events are
// small and anything larger is hostile.
const maxInteractionBody = 1 << 20

// ParsePublicKey decodes the hex-encoded ed25519 verification key the
// platform publishes for the application.
func ParsePublicKey(hexKey string) (ed25519.PublicKey, error) {
	raw, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, fmt.Errorf("decode public key: %w", err)
	}
	if len(raw) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("public key must be %d bytes, got %d", ed25519.PublicKeySize, len(raw))
	}
	return ed25519.PublicKey(raw), nil
}

// verifySignature authenticates interaction webhooks. The platform signs
// timestamp+body with the application's key; anything that fails to
// verify is rejected before it reaches a handler.
func verifySignature(key ed25519.PublicKey) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sigHex := r.Header.Get(headerSignature)
			timestamp := r.Header.Get(headerTimestamp)
			if sigHex == "" || timestamp == "" {
				http.Error(w, "missing signature", http.StatusUnauthorized)
				return
			}

			sig, err := hex.DecodeString(sigHex)
			if err != nil || len(sig) != ed25519.SignatureSize {
				http.Error(w, "malformed signature", http.StatusUnauthorized)
				return
			}

			body, err := io.ReadAll(io.LimitReader(r.Body, maxInteractionBody))
			if err != nil {
				http.Error(w, "unreadable body", http.StatusBadRequest)
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))

			if !ed25519.Verify(key, append([]byte(timestamp), body...), sig) {
				http.Error(w, "invalid signature", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
