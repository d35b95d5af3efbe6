// Package totp generates Steam two-factor codes and the related derived
// values (confirmation keys, device identifiers) from an account's shared
// secret. Steam codes use a 26-character alphabet over a standard 30 second
// TOTP window rather than RFC 6238 digits, so the derivation is implemented
// directly on crypto/hmac instead of a generic TOTP library.
package totp

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// codeAlphabet is the character set Steam codes are drawn from.
const codeAlphabet = "23456789BCDFGHJKMNPQRTVWXY"

// codeLength is the number of characters in a Steam code.
const codeLength = 5

// period is the code rotation interval.
const period = 30 * time.Second

// GenerateCode derives the 5-character code for the given time from a
// base64-encoded shared secret.
func GenerateCode(sharedSecret string, at time.Time) (string, error) {
	secret, err := base64.StdEncoding.DecodeString(sharedSecret)
	if err != nil {
		return "", fmt.Errorf("totp: decode shared secret failed: %w", err)
	}

	var counter [8]byte
	binary.BigEndian.PutUint64(counter[:], uint64(at.Unix())/uint64(period.Seconds()))

	mac := hmac.New(sha1.New, secret)
	mac.Write(counter[:])
	digest := mac.Sum(nil)

	// RFC 4226 dynamic truncation, then base-26 encoding into Steam's alphabet.
	offset := digest[len(digest)-1] & 0x0f
	value := binary.BigEndian.Uint32(digest[offset:offset+4]) & 0x7fffffff

	code := make([]byte, codeLength)
	for i := range code {
		code[i] = codeAlphabet[value%uint32(len(codeAlphabet))]
		value /= uint32(len(codeAlphabet))
	}
	return string(code), nil
}

// GenerateConfirmationKey derives the key that authorizes a mobile
// confirmation request for the given tag ("conf", "allow", "cancel", ...).
func GenerateConfirmationKey(identitySecret, tag string, at time.Time) (string, error) {
	secret, err := base64.StdEncoding.DecodeString(identitySecret)
	if err != nil {
		return "", fmt.Errorf("totp: decode identity secret failed: %w", err)
	}

	payload := make([]byte, 8, 8+len(tag))
	binary.BigEndian.PutUint64(payload, uint64(at.Unix()))
	payload = append(payload, tag...)

	mac := hmac.New(sha1.New, secret)
	mac.Write(payload)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil)), nil
}

// NewDeviceID produces a device identifier in the format the official Android
// app registers with.
func NewDeviceID() string {
	return "android:" + uuid.NewString()
}
