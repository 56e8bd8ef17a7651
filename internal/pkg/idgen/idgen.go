// Package idgen provides short, URL-safe alert IDs backed by nanoid.
package idgen

import (
	"fmt"

	nanoid "github.com/matoous/go-nanoid/v2"
)

// AlertPrefix is prepended to every alert ID.
const AlertPrefix = "al-"

const (
	alphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	length   = 10
)

// NewAlertID returns a fresh alert identifier.
func NewAlertID() (string, error) {
	id, err := nanoid.Generate(alphabet, length)
	if err != nil {
		return "", fmt.Errorf("idgen: %w", err)
	}
	return AlertPrefix + id, nil
}
