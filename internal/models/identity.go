package models

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Identity scopes every cache partition and pooled connection.
type Identity struct {
	Email    string `json:"email"`
	Password string `json:"-"`
}

func (i Identity) Key() string {
	return strings.ToLower(strings.TrimSpace(i.Email))
}

// Fingerprint identifies the credential without holding it in clear text.
func (i Identity) Fingerprint() string {
	sum := sha256.Sum256([]byte(i.Password))
	return hex.EncodeToString(sum[:])
}

func (i Identity) IsEmpty() bool {
	return i.Key() == "" || i.Password == ""
}
