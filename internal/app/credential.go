package app

import (
	"crypto/subtle"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// CredentialVerifier checks a login against the single configured
// administrator account.
type CredentialVerifier struct {
	identity   string
	secret     []byte
	secretHash []byte
}

// NewCredentialVerifier prefers secretHash (bcrypt) when both forms are set.
func NewCredentialVerifier(identity, secret, secretHash string) (*CredentialVerifier, error) {
	identity = normalizeIdentity(identity)
	if identity == "" {
		return nil, fmt.Errorf("%w: identity is empty", ErrCredentialMisconfigured)
	}
	if secret == "" && secretHash == "" {
		return nil, fmt.Errorf("%w: secret is empty", ErrCredentialMisconfigured)
	}
	v := &CredentialVerifier{identity: identity}
	if secretHash != "" {
		if _, err := bcrypt.Cost([]byte(secretHash)); err != nil {
			return nil, fmt.Errorf("%w: secret hash is not bcrypt: %v", ErrCredentialMisconfigured, err)
		}
		v.secretHash = []byte(secretHash)
		return v, nil
	}
	v.secret = []byte(secret)
	return v, nil
}

func (v *CredentialVerifier) Identity() string {
	return v.identity
}

// Verify never errors on bad input; any mismatch is simply false.
func (v *CredentialVerifier) Verify(identity, secret string) bool {
	identityOK := subtle.ConstantTimeCompare([]byte(normalizeIdentity(identity)), []byte(v.identity)) == 1
	var secretOK bool
	if v.secretHash != nil {
		secretOK = bcrypt.CompareHashAndPassword(v.secretHash, []byte(secret)) == nil
	} else {
		secretOK = subtle.ConstantTimeCompare([]byte(secret), v.secret) == 1
	}
	return identityOK && secretOK
}

func normalizeIdentity(identity string) string {
	return strings.ToLower(strings.TrimSpace(identity))
}
