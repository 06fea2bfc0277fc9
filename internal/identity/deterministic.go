package identity

import (
	"strconv"
	"strings"

	hashid "github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
)

// UUID derives a deterministic UUID from a stable key using go-hashid.
//
// Callers must ensure key construction prevents cross-entity collisions
// (prefix by domain/type).
func UUID(key string) uuid.UUID {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return uuid.Nil
	}
	uid, err := hashid.NewUUID(trimmed, hashid.WithHashAlgorithm(hashid.SHA256), hashid.WithNormalization(true))
	if err != nil || uid == uuid.Nil {
		return uuid.NewSHA1(uuid.NameSpaceOID, []byte(trimmed))
	}
	return uid
}

// ReferenceUUID identifies one image reference occurrence within a document.
// The occurrence index keeps repeated embeds of the same path distinct.
func ReferenceUUID(documentPath, rawMatch string, occurrence int) uuid.UUID {
	return UUID("vaultmedia:reference:" + strings.TrimSpace(documentPath) + ":" + rawMatch + ":" + strconv.Itoa(occurrence))
}

// UploadUUID identifies a completed upload in the ledger.
func UploadUUID(localPath, remoteURL string) uuid.UUID {
	return UUID("vaultmedia:upload:" + strings.TrimSpace(localPath) + ":" + strings.TrimSpace(remoteURL))
}

// CacheEntryUUID identifies a cached generated or downloaded image.
func CacheEntryUUID(cachePath string) uuid.UUID {
	return UUID("vaultmedia:cache:" + strings.TrimSpace(cachePath))
}
