package utils

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"testing"
	"time"
)

const testSecret = "test-webhook-secret"

func legacySign(body []byte, timestamp, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestamp + "."))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func structuredSign(body []byte, msgID, timestamp string, key []byte) string {
	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(msgID + "." + timestamp + "."))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func TestVerifyLegacyValid(t *testing.T) {
	body := []byte(`{"type":"invoice.paid"}`)
	ts := "1700000000"
	sig := legacySign(body, ts, testSecret)

	if err := VerifyLegacy(body, ts, sig, testSecret); err != nil {
		t.Fatalf("valid signature rejected: %v", err)
	}
	if err := VerifyLegacy(body, ts, "v1,"+sig, testSecret); err != nil {
		t.Fatalf("v1-prefixed signature rejected: %v", err)
	}
}

func TestVerifyLegacyRejections(t *testing.T) {
	body := []byte(`{}`)
	ts := "1700000000"
	sig := legacySign(body, ts, testSecret)

	cases := []struct {
		name      string
		body      []byte
		ts, sig   string
		secret    string
		wantError error
	}{
		{"missing secret", body, ts, sig, "", ErrMissingSecret},
		{"missing timestamp", body, "", sig, testSecret, ErrMissingHeaders},
		{"missing signature", body, ts, "", testSecret, ErrMissingHeaders},
		{"wrong version tag", body, ts, "v2," + sig, testSecret, ErrBadSignatureFormat},
		{"empty after tag", body, ts, "v1,", testSecret, ErrBadSignatureFormat},
		{"wrong secret", body, ts, legacySign(body, ts, "other"), testSecret, ErrSignatureMismatch},
		{"tampered body", []byte(`{"x":1}`), ts, sig, testSecret, ErrSignatureMismatch},
		{"truncated signature", body, ts, sig[:10], testSecret, ErrSignatureMismatch},
	}

	for _, c := range cases {
		err := VerifyLegacy(c.body, c.ts, c.sig, c.secret)
		if !errors.Is(err, c.wantError) {
			t.Fatalf("%s: got %v, want %v", c.name, err, c.wantError)
		}
	}
}

func TestVerifyStructuredValid(t *testing.T) {
	body := []byte(`{"type":"payment.succeeded"}`)
	msgID := "msg_test_1"
	ts := strconv.FormatInt(time.Now().Unix(), 10)
	sig := structuredSign(body, msgID, ts, []byte(testSecret))

	if err := VerifyStructured(body, msgID, ts, "v1,"+sig, testSecret); err != nil {
		t.Fatalf("valid structured signature rejected: %v", err)
	}
}

func TestVerifyStructuredWhsecPrefix(t *testing.T) {
	key := []byte("raw-key-material-here")
	secret := "whsec_" + base64.StdEncoding.EncodeToString(key)

	body := []byte(`{"type":"invoice.paid"}`)
	msgID := "msg_test_2"
	ts := strconv.FormatInt(time.Now().Unix(), 10)
	sig := structuredSign(body, msgID, ts, key)

	if err := VerifyStructured(body, msgID, ts, "v1,"+sig, secret); err != nil {
		t.Fatalf("whsec-prefixed secret rejected: %v", err)
	}
}

func TestVerifyStructuredMultipleEntries(t *testing.T) {
	body := []byte(`{}`)
	msgID := "msg_test_3"
	ts := strconv.FormatInt(time.Now().Unix(), 10)
	good := structuredSign(body, msgID, ts, []byte(testSecret))

	header := fmt.Sprintf("v1,%s v1,%s", base64.StdEncoding.EncodeToString([]byte("not-it-not-it-not-it-not-it-xx")), good)
	if err := VerifyStructured(body, msgID, ts, header, testSecret); err != nil {
		t.Fatalf("any-match over entries failed: %v", err)
	}
}

func TestVerifyStructuredRejections(t *testing.T) {
	body := []byte(`{}`)
	msgID := "msg_test_4"
	ts := strconv.FormatInt(time.Now().Unix(), 10)
	sig := structuredSign(body, msgID, ts, []byte(testSecret))

	if err := VerifyStructured(body, msgID, ts, "v1,"+sig, ""); !errors.Is(err, ErrMissingSecret) {
		t.Fatalf("missing secret: got %v", err)
	}
	if err := VerifyStructured(body, "", ts, "v1,"+sig, testSecret); !errors.Is(err, ErrMissingHeaders) {
		t.Fatalf("missing id: got %v", err)
	}
	if err := VerifyStructured(body, msgID, "not-a-number", "v1,"+sig, testSecret); !errors.Is(err, ErrBadSignatureFormat) {
		t.Fatalf("bad timestamp: got %v", err)
	}
	if err := VerifyStructured(body, msgID, ts, "v1,AAAA"+sig[4:], testSecret); !errors.Is(err, ErrSignatureMismatch) {
		t.Fatalf("tampered signature: got %v", err)
	}

	stale := strconv.FormatInt(time.Now().Add(-time.Hour).Unix(), 10)
	staleSig := structuredSign(body, msgID, stale, []byte(testSecret))
	if err := VerifyStructured(body, msgID, stale, "v1,"+staleSig, testSecret); !errors.Is(err, ErrTimestampSkew) {
		t.Fatalf("stale timestamp: got %v", err)
	}
}
