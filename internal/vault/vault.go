// Package vault builds filesystem paths into the content-addressed local
// storage for remote (Makapix) artworks, sharded by the first three bytes
// of SHA256(storage_key) (§4.5, §6, GLOSSARY "Vault"). SHA-256 itself is an
// external primitive this package consumes from crypto/sha256 rather than
// reimplementing, per spec §1.
package vault

import (
	"crypto/sha256"
	"fmt"
	"path/filepath"

	"github.com/google/uuid"
)

// LocalPath builds the filesystem path for an SD-card entry:
// <animationsDir>/<filename>.
func LocalPath(animationsDir, filename string) string {
	return filepath.Join(animationsDir, filename)
}

// RemotePath builds the sharded vault path for a remote entry:
// <vault>/<sha[0]>/<sha[1]>/<sha[2]>/<storageKey>.<ext>, where the shard
// bytes are two lowercase hex digits each, computed over the storage key's
// UUID string form.
func RemotePath(vaultDir string, storageKey uuid.UUID, ext string) string {
	sum := sha256.Sum256([]byte(storageKey.String()))
	shard0 := fmt.Sprintf("%02x", sum[0])
	shard1 := fmt.Sprintf("%02x", sum[1])
	shard2 := fmt.Sprintf("%02x", sum[2])

	filename := fmt.Sprintf("%s.%s", storageKey.String(), ext)
	return filepath.Join(vaultDir, shard0, shard1, shard2, filename)
}

// LTFPath builds the load-tracker file path for a storage key: the same
// shard prefix as RemotePath, with a .ltf extension instead of the asset
// extension (§6 "LTF").
func LTFPath(vaultDir string, storageKey uuid.UUID) string {
	sum := sha256.Sum256([]byte(storageKey.String()))
	shard0 := fmt.Sprintf("%02x", sum[0])
	shard1 := fmt.Sprintf("%02x", sum[1])
	shard2 := fmt.Sprintf("%02x", sum[2])

	filename := storageKey.String() + ".ltf"
	return filepath.Join(vaultDir, shard0, shard1, shard2, filename)
}
