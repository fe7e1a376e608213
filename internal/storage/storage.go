// Package storage moves processed avatars from the staging area into
// permanent storage
package storage

import "context"

// Storage relocates a staged file into permanent storage. Implementations
// must remove the staged file on success so the staging area drains on
// every request
type Storage interface {
	// Store relocates the staged file at src into permanent storage under
	// name and returns the location to put on the user record
	Store(ctx context.Context, src, name string) (string, error)
}
