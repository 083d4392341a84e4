package app

import (
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestCredentialVerifierPlain(t *testing.T) {
	v, err := NewCredentialVerifier(" Admin@College.edu ", "s3cret!", "")
	if err != nil {
		t.Fatalf("NewCredentialVerifier: %v", err)
	}

	tests := []struct {
		identity, secret string
		want             bool
	}{
		{"admin@college.edu", "s3cret!", true},
		{"ADMIN@college.edu", "s3cret!", true},
		{"admin@college.edu", "s3cret", false},
		{"other@college.edu", "s3cret!", false},
		{"", "", false},
	}
	for _, tt := range tests {
		if got := v.Verify(tt.identity, tt.secret); got != tt.want {
			t.Errorf("Verify(%q, %q) = %v, want %v", tt.identity, tt.secret, got, tt.want)
		}
	}
	if v.Identity() != "admin@college.edu" {
		t.Errorf("Identity = %q", v.Identity())
	}
}

func TestCredentialVerifierHash(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("hashed-secret"), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	v, err := NewCredentialVerifier("admin@college.edu", "ignored-plain", string(hash))
	if err != nil {
		t.Fatalf("NewCredentialVerifier: %v", err)
	}
	if !v.Verify("admin@college.edu", "hashed-secret") {
		t.Error("hashed secret should verify")
	}
	if v.Verify("admin@college.edu", "ignored-plain") {
		t.Error("plain secret must be ignored when a hash is configured")
	}
}

func TestCredentialVerifierMisconfigured(t *testing.T) {
	cases := []struct{ identity, secret, hash string }{
		{"", "x", ""},
		{"admin@college.edu", "", ""},
		{"admin@college.edu", "", "not-a-bcrypt-hash"},
	}
	for _, c := range cases {
		if _, err := NewCredentialVerifier(c.identity, c.secret, c.hash); !errors.Is(err, ErrCredentialMisconfigured) {
			t.Errorf("NewCredentialVerifier(%q, %q, %q) err = %v", c.identity, c.secret, c.hash, err)
		}
	}
}
