package docstore

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// MaxDocumentSize caps uploads at 10 MiB.
const MaxDocumentSize = 10 << 20

var (
	ErrInvalidFormat = errors.New("unsupported document format")
	ErrTooLarge      = errors.New("document exceeds size limit")
)

// Format is a detected file format.
type Format string

const (
	FormatPDF  Format = "pdf"
	FormatJPEG Format = "jpeg"
	FormatPNG  Format = "png"
	FormatWEBP Format = "webp"
)

// Metadata travels with the stored blob.
type Metadata struct {
	DoctorID int64
	Kind     string
}

// Store persists verification artifacts and hands back an opaque reference.
type Store interface {
	Save(data []byte, meta Metadata) (string, error)
}

// DetectFormat inspects the leading bytes and returns the format, or
// ErrInvalidFormat when no known signature matches.
func DetectFormat(data []byte) (Format, error) {
	switch {
	case bytes.HasPrefix(data, []byte{0x25, 0x50, 0x44, 0x46}):
		return FormatPDF, nil
	case bytes.HasPrefix(data, []byte{0xFF, 0xD8}):
		return FormatJPEG, nil
	case bytes.HasPrefix(data, []byte{0x89, 0x50, 0x4E, 0x47}):
		return FormatPNG, nil
	case len(data) >= 12 &&
		bytes.Equal(data[0:4], []byte("RIFF")) &&
		bytes.Equal(data[8:12], []byte("WEBP")):
		return FormatWEBP, nil
	}
	return "", ErrInvalidFormat
}

// DiskStore writes blobs under a root directory, one file per reference.
type DiskStore struct {
	Root string
}

func NewDiskStore(root string) (*DiskStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, err
	}
	return &DiskStore{Root: root}, nil
}

var _ Store = (*DiskStore)(nil)

func (s *DiskStore) Save(data []byte, meta Metadata) (string, error) {
	if len(data) > MaxDocumentSize {
		return "", ErrTooLarge
	}
	format, err := DetectFormat(data)
	if err != nil {
		return "", err
	}

	ref := fmt.Sprintf("%s.%s", uuid.NewString(), format)
	path := filepath.Join(s.Root, ref)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return ref, nil
}
