package evidence

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
)

var hashPattern = regexp.MustCompile(`^[a-f0-9]{64}$`)

// FSStore persists evidence records as content-addressed JSON files.
// Records live at {basePath}/objects/{hash[:2]}/{hash}.json.
type FSStore struct {
	basePath string
}

// NewFSStore constructs an fs-backed evidence store rooted at basePath.
func NewFSStore(basePath string) *FSStore {
	return &FSStore{basePath: basePath}
}

// PutImmutable writes the payload under its sha256 content address. Writing
// an already-stored payload is a no-op returning the existing hash.
func (s *FSStore) PutImmutable(ctx context.Context, payload any) (string, error) {
	if s == nil {
		return "", errors.New("evidence store not configured")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal evidence payload: %w", err)
	}

	sum := sha256.Sum256(data)
	hash := hex.EncodeToString(sum[:])
	target := s.objectPath(hash)

	if _, err := os.Stat(target); err == nil {
		// Content-addressed: an existing object is by definition identical.
		return hash, nil
	}

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", err
	}

	tmp := target + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return "", err
	}
	if err := os.Rename(tmp, target); err != nil {
		return "", err
	}
	return hash, nil
}

// VerifyStored reports whether an object with the given hash is present.
func (s *FSStore) VerifyStored(ctx context.Context, hash string) (bool, error) {
	if s == nil {
		return false, errors.New("evidence store not configured")
	}
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if !hashPattern.MatchString(hash) {
		return false, fmt.Errorf("malformed evidence hash %q", hash)
	}
	if _, err := os.Stat(s.objectPath(hash)); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Load reads a stored record back into payload (primarily for audit tooling and tests).
func (s *FSStore) Load(hash string, payload any) error {
	if !hashPattern.MatchString(hash) {
		return fmt.Errorf("malformed evidence hash %q", hash)
	}
	f, err := os.Open(s.objectPath(hash))
	if err != nil {
		return err
	}
	defer f.Close()
	return json.NewDecoder(f).Decode(payload)
}

func (s *FSStore) objectPath(hash string) string {
	return filepath.Join(s.basePath, "objects", hash[:2], hash+".json")
}
