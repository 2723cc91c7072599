package client

import (
	"context"
	"unicode/utf8"
)

// CredentialCapacity is the size of each credential field, terminator
// included. Longer values are truncated to CredentialCapacity-1 bytes.
const CredentialCapacity = 64

// CredentialSource supplies credentials for a client identifier at connect time.
type CredentialSource interface {
	Credentials(ctx context.Context, clientID string) (username, password string, err error)
}

// credentials stores a username and password in fixed-capacity fields.
type credentials struct {
	username [CredentialCapacity]byte
	password [CredentialCapacity]byte
}

func (c *credentials) set(username, password string) {
	storeField(c.username[:], username)
	storeField(c.password[:], password)
}

func (c *credentials) get() (username, password string) {
	return loadField(c.username[:]), loadField(c.password[:])
}

// storeField copies s into dst, truncated so a zero byte always fits after
// it. The cut never splits a UTF-8 sequence.
func storeField(dst []byte, s string) {
	n := len(s)
	if n > len(dst)-1 {
		n = len(dst) - 1
		for n > 0 && !utf8.RuneStart(s[n]) {
			n--
		}
	}
	copy(dst, s[:n])
	clear(dst[n:])
}

func loadField(src []byte) string {
	for i, b := range src {
		if b == 0 {
			return string(src[:i])
		}
	}
	return string(src)
}
