// Package id generates run identifiers.
package id

import (
	"encoding/base32"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

var encoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// NewRunID returns a random 26-character lowercase base32 identifier built
// from a version 4 UUID.
func NewRunID() (string, error) {
	u, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("generate run id: %w", err)
	}
	return strings.ToLower(encoding.EncodeToString(u[:])), nil
}
