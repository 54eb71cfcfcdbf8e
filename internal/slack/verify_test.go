package slack

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"testing"
	"time"
)

const testSecret = "8f742231b10e8888abcd99yyyzzz85a5"

func sign(t *testing.T, body []byte, timestamp, secret string) string {
	t.Helper()
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "v0:%s:%s", timestamp, body)
	return "v0=" + hex.EncodeToString(mac.Sum(nil))
}

func TestVerifySignatureAccepts(t *testing.T) {
	now := time.Unix(1737297000, 0)
	body := []byte("text=hi&response_url=https%3A%2F%2Fhooks.slack.com%2Fx")
	ts := strconv.FormatInt(now.Unix(), 10)

	if err := VerifySignature(body, ts, sign(t, body, ts, testSecret), testSecret, now); err != nil {
		t.Fatalf("VerifySignature: %v", err)
	}
}

func TestVerifySignatureRejectsTamperedBody(t *testing.T) {
	now := time.Unix(1737297000, 0)
	ts := strconv.FormatInt(now.Unix(), 10)
	sig := sign(t, []byte("text=original"), ts, testSecret)

	err := VerifySignature([]byte("text=tampered"), ts, sig, testSecret, now)
	if err == nil {
		t.Fatal("expected verification failure")
	}
}

func TestVerifySignatureRejectsWrongSecret(t *testing.T) {
	now := time.Unix(1737297000, 0)
	body := []byte("text=hi")
	ts := strconv.FormatInt(now.Unix(), 10)
	sig := sign(t, body, ts, "some-other-secret")

	if err := VerifySignature(body, ts, sig, testSecret, now); err == nil {
		t.Fatal("expected verification failure")
	}
}

func TestVerifySignatureRejectsStaleTimestamp(t *testing.T) {
	now := time.Unix(1737297000, 0)
	body := []byte("text=hi")

	for _, offset := range []time.Duration{-301 * time.Second, 301 * time.Second} {
		ts := strconv.FormatInt(now.Add(offset).Unix(), 10)
		sig := sign(t, body, ts, testSecret)
		if err := VerifySignature(body, ts, sig, testSecret, now); err == nil {
			t.Errorf("offset %v: expected rejection", offset)
		}
	}

	// Exactly at the boundary is still acceptable.
	ts := strconv.FormatInt(now.Add(-300*time.Second).Unix(), 10)
	if err := VerifySignature(body, ts, sign(t, body, ts, testSecret), testSecret, now); err != nil {
		t.Errorf("300s-old request rejected: %v", err)
	}
}

func TestVerifySignatureRejectsGarbageTimestamp(t *testing.T) {
	if err := VerifySignature([]byte("x"), "not-a-number", "v0=00", testSecret, time.Now()); err == nil {
		t.Fatal("expected rejection")
	}
}
