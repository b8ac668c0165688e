package usercopy

import (
	"context"
	"errors"
	"net/url"
	"strings"
)

// DefaultKeyPrefix namespaces user copies in shared key-value stores.
const DefaultKeyPrefix = "labhub_usercode"

// ErrClosed is returned by operations on a closed store.
var ErrClosed = errors.New("usercopy: store is closed")

// Store persists one user-edited source per (subject, program) pair.
// Saves overwrite unconditionally; the last write wins.
type Store interface {
	// Load returns the saved copy. ok is false when nothing was saved.
	Load(ctx context.Context, subjectID, programID string) (code string, ok bool, err error)
	// Save creates or overwrites the copy.
	Save(ctx context.Context, subjectID, programID, code string) error
	// Backend names the storage backend.
	Backend() string
	Close() error
}

// Key derives the storage key for a pair. Both identifiers are
// query-escaped, so neither part can contain the ':' separator and distinct
// pairs never share a key.
func Key(prefix, subjectID, programID string) string {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return prefix + ":" + url.QueryEscape(subjectID) + ":" + url.QueryEscape(programID)
}

// ParseKey reverses Key.
func ParseKey(key string) (prefix, subjectID, programID string, err error) {
	parts := strings.Split(key, ":")
	if len(parts) != 3 {
		return "", "", "", errors.New("usercopy: malformed key")
	}
	if subjectID, err = url.QueryUnescape(parts[1]); err != nil {
		return "", "", "", err
	}
	if programID, err = url.QueryUnescape(parts[2]); err != nil {
		return "", "", "", err
	}
	return parts[0], subjectID, programID, nil
}
