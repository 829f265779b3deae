// Package ident generates opaque unique identifiers for creatures and messages.
package ident

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// New returns a type-prefixed opaque unique ID, e.g. "slime-1b9d6bcd-1700000000".
// Uniqueness is the only contract callers may rely on.
func New(prefix string) string {
	u := uuid.New()
	return fmt.Sprintf("%s-%s-%d", prefix, u.String()[:8], time.Now().UnixMilli())
}
