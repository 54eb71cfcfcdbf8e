// Package slack implements the slash-command gateway: request signature
// verification, command parsing, Block Kit rendering, and deferred delivery
// to the command's response_url.
package slack

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"time"
)

// maxTimestampSkew bounds how old (or future-dated) a signed request may be.
const maxTimestampSkew = 5 * time.Minute

// SignatureError reports a request that failed signature verification.
type SignatureError struct {
	Reason string
}

func (e *SignatureError) Error() string {
	return "slack: signature verification failed: " + e.Reason
}

// VerifySignature checks a Slack request signature (version v0). body is the
// raw request body, timestamp and signature come from the
// X-Slack-Request-Timestamp and X-Slack-Signature headers. Requests older
// than five minutes are rejected before any signature math to blunt replays.
func VerifySignature(body []byte, timestamp, signature, signingSecret string, now time.Time) error {
	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return &SignatureError{Reason: "invalid timestamp"}
	}

	skew := now.Unix() - ts
	if skew < 0 {
		skew = -skew
	}
	if time.Duration(skew)*time.Second > maxTimestampSkew {
		return &SignatureError{Reason: "request timestamp too old"}
	}

	mac := hmac.New(sha256.New, []byte(signingSecret))
	fmt.Fprintf(mac, "v0:%s:%s", timestamp, body)
	expected := "v0=" + hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return &SignatureError{Reason: "invalid signature"}
	}
	return nil
}
