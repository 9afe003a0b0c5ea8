package utils

import "github.com/google/uuid"

// NewFileID returns a time-ordered unique identifier. It serves as both the
// database key and the blob storage key.
func NewFileID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
