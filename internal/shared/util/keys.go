package util

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"path"
	"strings"
	"unicode"

	"github.com/google/uuid"
)

const maxFileNameLen = 128

// ErrInvalidFileName reports an upload name that cannot be stored.
var ErrInvalidFileName = errors.New("invalid file name")

// SanitizeFileName flattens separators, drops control characters and caps
// the length while keeping the extension.
func SanitizeFileName(name string) (string, error) {
	if strings.Contains(name, "..") {
		return "", ErrInvalidFileName
	}
	s := strings.Map(func(r rune) rune {
		switch {
		case r == '/' || r == '\\':
			return '_'
		case unicode.IsControl(r):
			return -1
		}
		return r
	}, strings.TrimSpace(name))
	if s == "" {
		return "", ErrInvalidFileName
	}

	runes := []rune(s)
	if len(runes) > maxFileNameLen {
		ext := []rune(path.Ext(s))
		if len(ext) >= maxFileNameLen {
			ext = nil
		}
		runes = append(runes[:maxFileNameLen-len(ext)], ext...)
	}
	return string(runes), nil
}

// HashUserKey returns a path-safe namespace for a user ID.
func HashUserKey(userID string) string {
	sum := sha256.Sum256([]byte(userID))
	return hex.EncodeToString(sum[:])
}

// ObjectKey builds the storage key for a user's upload: the hashed user
// namespace, then a random prefix and the sanitized name.
func ObjectKey(userID, fileName string) (string, error) {
	name, err := SanitizeFileName(fileName)
	if err != nil {
		return "", err
	}
	return path.Join(HashUserKey(userID), uuid.NewString()+"_"+name), nil
}
