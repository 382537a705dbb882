package storage

import (
	"strings"

	"github.com/google/uuid"
)

// UserPrefix is the key prefix every object uploaded by userID lives under.
func UserPrefix(userID string) string {
	return "users/" + userID + "/"
}

// NewUserKey returns a fresh object key under userID's prefix.
func NewUserKey(userID string) string {
	return UserPrefix(userID) + uuid.NewString()
}

// OwnedBy reports whether key sits directly under userID's prefix.
func OwnedBy(userID, key string) bool {
	if userID == "" {
		return false
	}
	rest, ok := strings.CutPrefix(key, UserPrefix(userID))
	return ok && rest != "" && !strings.Contains(rest, "/") && !strings.Contains(rest, "..")
}
