// Package common defines shared sentinel errors used across farmkeeper
// components. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Lookup errors.
	ErrNotFound = errors.New("not found")

	// Step-input errors (recoverable, the flow re-prompts the same step).
	ErrValidation = errors.New("validation error")

	// Vault errors: ciphertext failed AEAD authentication, or the master
	// secret does not match the one it was produced under.
	ErrDecryptFailed = errors.New("decrypt failed")
)
