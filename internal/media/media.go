// Package media stores user uploads on the local filesystem.
package media

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/atharvakonge/portfolio-ledger/internal/config"
)

var (
	ErrUnsupportedType = errors.New("unsupported file format")
	ErrTooLarge        = errors.New("file too large")
)

// avatarTypes maps accepted content types to the stored extension.
var avatarTypes = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/webp": ".webp",
}

const avatarDir = "avatars"

// Store writes files under Root and reports them under URL.
type Store struct {
	root     string
	url      string
	maxBytes int64
}

func New(cfg config.MediaConfig) *Store {
	return &Store{
		root:     cfg.Root,
		url:      strings.TrimRight(cfg.URL, "/"),
		maxBytes: cfg.MaxAvatarBytes,
	}
}

// Root is the directory served at URL.
func (s *Store) Root() string { return s.root }

// URL is the public prefix of stored files.
func (s *Store) URL() string { return s.url }

// SaveAvatar validates and stores an avatar for userID and returns its
// public URL. The declared content type must be an accepted image type and
// agree with the sniffed one.
func (s *Store) SaveAvatar(userID uuid.UUID, contentType string, r io.Reader) (string, error) {
	ext, ok := avatarTypes[strings.ToLower(strings.TrimSpace(contentType))]
	if !ok {
		return "", ErrUnsupportedType
	}

	data, err := io.ReadAll(io.LimitReader(r, s.maxBytes+1))
	if err != nil {
		return "", fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > s.maxBytes {
		return "", ErrTooLarge
	}
	if _, ok := avatarTypes[http.DetectContentType(data)]; !ok {
		return "", ErrUnsupportedType
	}

	dir := filepath.Join(s.root, avatarDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create media dir: %w", err)
	}

	nonce := uuid.New()
	name := userID.String() + "-" + hex.EncodeToString(nonce[:]) + ext
	if err := writeFile(filepath.Join(dir, name), data); err != nil {
		return "", err
	}
	return s.url + "/" + path.Join(avatarDir, name), nil
}

// writeFile writes through a temp file so readers never see a partial upload.
func writeFile(dst string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(dst), ".upload-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, bytes.NewReader(data)); err != nil {
		tmp.Close()
		return fmt.Errorf("write upload: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write upload: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), dst)
}
