package wallet

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"walletledger/internal/services/slip"

	"github.com/google/uuid"
)

// DiskProofStore writes slip images under a directory as
// slip_<transaction id>_<8 hex chars><ext>.
type DiskProofStore struct {
	dir string
}

func NewDiskProofStore(dir string) *DiskProofStore {
	if dir == "" {
		dir = DefaultUploadDir
	}
	return &DiskProofStore{dir: dir}
}

func (s *DiskProofStore) Save(ctx context.Context, transactionID uint, proof slip.Proof) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := os.MkdirAll(s.dir, 0o750); err != nil {
		return "", fmt.Errorf("failed to create upload dir: %w", err)
	}

	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	name := fmt.Sprintf("slip_%d_%s%s", transactionID, suffix, safeExt(proof.Filename))
	path := filepath.Join(s.dir, name)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o640)
	if err != nil {
		return "", fmt.Errorf("failed to create slip file: %w", err)
	}
	if _, err := f.Write(proof.Data); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("failed to write slip file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to close slip file: %w", err)
	}
	return path, nil
}

// safeExt keeps a short alphanumeric extension from the client filename.
func safeExt(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if len(ext) < 2 || len(ext) > 6 {
		return ""
	}
	for _, r := range ext[1:] {
		if !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9') {
			return ""
		}
	}
	return ext
}
