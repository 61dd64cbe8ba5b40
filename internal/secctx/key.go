package secctx

import (
	"encoding/hex"
	"strings"

	"golang.org/x/crypto/blake2b"
)

// GlobalRefreshKey is used when neither a session nor a user identity is
// available.
const GlobalRefreshKey = "global"

// RefreshKey derives the single-flight key for a principal. The session id
// wins over the user id so that two browser sessions of one user refresh
// independently.
func RefreshKey(sessionID, userID string) string {
	if s := strings.TrimSpace(sessionID); s != "" {
		return "session:" + s
	}
	if u := strings.TrimSpace(userID); u != "" {
		return "user:" + u
	}
	return GlobalRefreshKey
}

// keyFingerprint returns a short stable digest of key, safe to log.
func keyFingerprint(key string) string {
	sum := blake2b.Sum256([]byte(key))
	return hex.EncodeToString(sum[:8])
}
