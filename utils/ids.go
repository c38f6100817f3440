// Package utils contains id generation and calendar key helpers
package utils

import "github.com/oklog/ulid/v2"

// GenerateULID returns a new lexicographically sortable event id.
func GenerateULID() string {
	return ulid.Make().String()
}
