package utils

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"strconv"
	"strings"
	"time"
)

// Rejection reasons, surfaced in the 401 body for observability.
var (
	ErrMissingSecret      = errors.New("missing_secret")
	ErrMissingHeaders     = errors.New("missing_headers")
	ErrBadSignatureFormat = errors.New("bad_signature_format")
	ErrTimestampSkew      = errors.New("timestamp_out_of_tolerance")
	ErrSignatureMismatch  = errors.New("signature_mismatch")
)

// structuredTolerance bounds how stale a webhook-timestamp may be.
const structuredTolerance = 5 * time.Minute

// VerifyStructured checks the provider's multi-field header scheme:
// HMAC-SHA256 over "{id}.{timestamp}.{body}" keyed with the shared secret
// (base64 after an optional "whsec_" prefix), compared against any of the
// space-separated "v1,<base64>" entries in the signature header.
func VerifyStructured(rawBody []byte, msgID, timestamp, signature, secret string) error {
	if secret == "" {
		return ErrMissingSecret
	}
	if msgID == "" || timestamp == "" || signature == "" {
		return ErrMissingHeaders
	}

	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return ErrBadSignatureFormat
	}
	skew := time.Since(time.Unix(ts, 0))
	if skew > structuredTolerance || skew < -structuredTolerance {
		return ErrTimestampSkew
	}

	key, err := structuredKey(secret)
	if err != nil {
		return ErrBadSignatureFormat
	}

	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(msgID))
	mac.Write([]byte("."))
	mac.Write([]byte(timestamp))
	mac.Write([]byte("."))
	mac.Write(rawBody)
	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	for _, entry := range strings.Fields(signature) {
		version, sig, found := strings.Cut(entry, ",")
		if !found || version != "v1" {
			continue
		}
		if constantTimeEqual(expected, sig) {
			return nil
		}
	}
	return ErrSignatureMismatch
}

// VerifyLegacy checks the fallback scheme: HMAC-SHA256 over
// "{timestamp}.{body}" with the raw secret, base64-encoded, optionally
// prefixed with "v1,".
func VerifyLegacy(rawBody []byte, timestamp, signature, secret string) error {
	if secret == "" {
		return ErrMissingSecret
	}
	if timestamp == "" || signature == "" {
		return ErrMissingHeaders
	}

	provided := strings.TrimSpace(signature)
	if strings.Contains(provided, ",") {
		parts := strings.SplitN(provided, ",", 2)
		if strings.TrimSpace(parts[0]) != "v1" {
			return ErrBadSignatureFormat
		}
		provided = strings.TrimSpace(parts[1])
	}
	if provided == "" {
		return ErrBadSignatureFormat
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestamp))
	mac.Write([]byte("."))
	mac.Write(rawBody)
	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	if !constantTimeEqual(expected, provided) {
		return ErrSignatureMismatch
	}
	return nil
}

func structuredKey(secret string) ([]byte, error) {
	if encoded, ok := strings.CutPrefix(secret, "whsec_"); ok {
		return base64.StdEncoding.DecodeString(encoded)
	}
	return []byte(secret), nil
}

// constantTimeEqual treats a length mismatch as a plain mismatch; hmac.Equal
// handles the constant-time comparison for equal lengths.
func constantTimeEqual(expected, provided string) bool {
	a := []byte(expected)
	b := []byte(provided)
	if len(a) != len(b) {
		return false
	}
	return hmac.Equal(a, b)
}
