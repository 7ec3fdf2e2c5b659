// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

func newTestCodec(t *testing.T) *ShareCodec {
	t.Helper()
	codec, err := NewShareCodec("test-share-secret")
	if err != nil {
		t.Fatalf("NewShareCodec() error = %v", err)
	}
	return codec
}

func TestNewID(t *testing.T) {
	id1 := NewID()
	id2 := NewID()

	if _, err := uuid.Parse(id1); err != nil {
		t.Errorf("NewID() = %q is not a UUID: %v", id1, err)
	}
	if id1 == id2 {
		t.Error("NewID() produced duplicate IDs (extremely unlikely)")
	}
}

func TestNewShareCodecRequiresSecret(t *testing.T) {
	if _, err := NewShareCodec(""); !errors.Is(err, ErrMissingSecret) {
		t.Errorf("NewShareCodec(\"\") error = %v, want ErrMissingSecret", err)
	}
}

func TestShareTokenRoundTrip(t *testing.T) {
	codec := newTestCodec(t)

	ids := []string{NewID(), NewID(), "e", strings.Repeat("x", 200)}
	for _, id := range ids {
		token, err := codec.Encode(id)
		if err != nil {
			t.Fatalf("Encode(%q) error = %v", id, err)
		}

		got, err := codec.Decode(token)
		if err != nil {
			t.Fatalf("Decode() error = %v", err)
		}
		if got != id {
			t.Errorf("Decode(Encode(%q)) = %q", id, got)
		}
	}
}

func TestShareTokenIsURLSafe(t *testing.T) {
	codec := newTestCodec(t)

	for i := 0; i < 50; i++ {
		token, err := codec.Encode(NewID())
		if err != nil {
			t.Fatalf("Encode() error = %v", err)
		}
		for _, c := range token {
			isAlnum := (c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
			if !isAlnum && c != '-' && c != '_' {
				t.Fatalf("token %q contains non URL-safe char %q", token, c)
			}
		}
	}
}

func TestShareTokenEveryCharacterFlipFails(t *testing.T) {
	codec := newTestCodec(t)
	token, err := codec.Encode(NewID())
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_"
	for i := range token {
		for _, replacement := range alphabet {
			if byte(replacement) == token[i] {
				continue
			}
			tampered := token[:i] + string(replacement) + token[i+1:]
			if _, err := codec.Decode(tampered); err == nil {
				t.Fatalf("Decode() accepted token with position %d changed to %q", i, replacement)
			}
		}
	}
}

func TestShareTokenTruncationFails(t *testing.T) {
	codec := newTestCodec(t)
	token, _ := codec.Encode(NewID())

	for _, cut := range []int{1, 2, 10, len(token) / 2, len(token) - 1} {
		if _, err := codec.Decode(token[:len(token)-cut]); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("Decode() of token truncated by %d error = %v, want ErrInvalidToken", cut, err)
		}
	}
	if _, err := codec.Decode(""); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Decode(\"\") error = %v, want ErrInvalidToken", err)
	}
}

func TestShareTokenWrongSecretFails(t *testing.T) {
	codec := newTestCodec(t)
	other, _ := NewShareCodec("another-secret")

	token, _ := codec.Encode(NewID())
	if _, err := other.Decode(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Decode() with different secret error = %v, want ErrInvalidToken", err)
	}
}

func TestShareTokensDifferPerEncode(t *testing.T) {
	codec := newTestCodec(t)
	id := NewID()

	t1, _ := codec.Encode(id)
	t2, _ := codec.Encode(id)
	if t1 == t2 {
		t.Error("Encode() produced identical tokens for two calls")
	}
	if !TokensEqual(t1, t1) || TokensEqual(t1, t2) {
		t.Error("TokensEqual() gave wrong answer")
	}
}

func TestSessionRoundTrip(t *testing.T) {
	verifier := NewSessionVerifier("session-secret")

	token, err := IssueSession("user-42", "session-secret", time.Hour)
	if err != nil {
		t.Fatalf("IssueSession() error = %v", err)
	}

	userID, err := verifier.Verify(token)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if userID != "user-42" {
		t.Errorf("Verify() = %q, want user-42", userID)
	}
}

func TestSessionRejected(t *testing.T) {
	verifier := NewSessionVerifier("session-secret")

	wrongSecret, _ := IssueSession("user-42", "other-secret", time.Hour)
	expired, _ := IssueSession("user-42", "session-secret", -time.Minute)
	noSubject, _ := IssueSession("", "session-secret", time.Hour)

	tests := []struct {
		name  string
		token string
	}{
		{"wrong secret", wrongSecret},
		{"expired", expired},
		{"missing subject", noSubject},
		{"garbage", "not.a.jwt"},
		{"empty", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := verifier.Verify(tt.token); !errors.Is(err, ErrInvalidSession) {
				t.Errorf("Verify() error = %v, want ErrInvalidSession", err)
			}
		})
	}
}
