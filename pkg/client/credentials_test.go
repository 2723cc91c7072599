package client

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestStoreFieldTruncation(t *testing.T) {
	limit := CredentialCapacity - 1

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"short", "user", "user"},
		{"exactly limit", strings.Repeat("a", limit), strings.Repeat("a", limit)},
		{"one over", strings.Repeat("a", limit+1), strings.Repeat("a", limit)},
		{"long", strings.Repeat("b", 200), strings.Repeat("b", limit)},
		{"rune on boundary", strings.Repeat("a", limit-1) + "é", strings.Repeat("a", limit-1)},
		{"rune fits", strings.Repeat("a", limit-2) + "é", strings.Repeat("a", limit-2) + "é"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var field [CredentialCapacity]byte
			storeField(field[:], tt.in)
			got := loadField(field[:])
			if got != tt.want {
				t.Errorf("stored %q (%d bytes), want %d bytes", got, len(got), len(tt.want))
			}
			if !utf8.ValidString(got) {
				t.Errorf("stored %q is not valid UTF-8", got)
			}
		})
	}
}

func TestSetAuthOverwrites(t *testing.T) {
	var creds credentials
	creds.set(strings.Repeat("x", 40), "longpassword")
	creds.set("u", "p")

	username, password := creds.get()
	if username != "u" || password != "p" {
		t.Errorf("get() = %q, %q, want u, p", username, password)
	}
}
