package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Webhook signatures are HMAC-SHA256 over "<timestamp>.<raw payload>",
// delivered as "t=<unix>,v1=<hex digest>". Verification runs against the
// raw request bytes, before any JSON decoding, so upstream normalization
// can neither invalidate nor forge a signature. The timestamp bounds
// replay of captured deliveries.

// DefaultSignatureTolerance is how far a delivery timestamp may drift
// from the verifier's clock.
const DefaultSignatureTolerance = 5 * time.Minute

var (
	ErrMalformedSignature = errors.New("malformed signature header")
	ErrSignatureMismatch  = errors.New("signature mismatch")
	ErrSignatureExpired   = errors.New("signature timestamp outside tolerance")
)

// Sign computes the signature header for a payload at the given time.
// The gateway side of the scheme; used here by tests and local tooling.
func Sign(payload []byte, secret string, at time.Time) string {
	ts := strconv.FormatInt(at.Unix(), 10)
	return fmt.Sprintf("t=%s,v1=%s", ts, digest(payload, secret, ts))
}

// VerifySignature checks the signature header against the raw payload.
func VerifySignature(payload []byte, header, secret string, tolerance time.Duration) error {
	ts, sig, err := parseHeader(header)
	if err != nil {
		return err
	}

	issued, err := strconv.ParseInt(ts, 10, 64)
	if err != nil {
		return ErrMalformedSignature
	}
	drift := time.Since(time.Unix(issued, 0))
	if drift < 0 {
		drift = -drift
	}
	if drift > tolerance {
		return ErrSignatureExpired
	}

	expected := digest(payload, secret, ts)
	if !hmac.Equal([]byte(expected), []byte(sig)) {
		return ErrSignatureMismatch
	}
	return nil
}

func parseHeader(header string) (timestamp, signature string, err error) {
	for _, part := range strings.Split(header, ",") {
		k, v, found := strings.Cut(strings.TrimSpace(part), "=")
		if !found {
			return "", "", ErrMalformedSignature
		}
		switch k {
		case "t":
			timestamp = v
		case "v1":
			signature = v
		}
	}
	if timestamp == "" || signature == "" {
		return "", "", ErrMalformedSignature
	}
	return timestamp, signature, nil
}

func digest(payload []byte, secret, timestamp string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestamp))
	mac.Write([]byte("."))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}
