// Package receipts stores uploaded receipt files under a single directory.
// Files are addressed by a generated flat name; nested paths are never
// produced or accepted.
package receipts

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/spf13/afero"
)

var (
	// ErrNotFound is returned when the named receipt does not exist.
	ErrNotFound = errors.New("receipt not found")
	// ErrInvalidName is returned for names that could escape the store
	// directory or that the store could never have generated.
	ErrInvalidName = errors.New("invalid receipt name")
)

const (
	timestampLayout = "20060102_150405"
	maxStemLength   = 64
	fallbackStem    = "receipt"
)

var (
	unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]`)
	storedName  = regexp.MustCompile(`^[A-Za-z0-9_-][A-Za-z0-9._-]*$`)
)

// Store saves and serves receipt files from dir on fs.
type Store struct {
	fs     afero.Fs
	dir    string
	random io.Reader
}

// NewStore creates a Store rooted at dir. Use afero.NewOsFs() in production
// and afero.NewMemMapFs() in tests.
func NewStore(fs afero.Fs, dir string) *Store {
	return &Store{fs: fs, dir: dir, random: rand.Reader}
}

// Init creates the store directory if it is missing.
func (s *Store) Init() error {
	if err := s.fs.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create receipt dir %s: %w", s.dir, err)
	}
	return nil
}

// Dir returns the directory receipts are stored in.
func (s *Store) Dir() string { return s.dir }

// Save writes r under a name derived from original and stamped with at, and
// returns that name.
func (s *Store) Save(original string, at time.Time, r io.Reader) (string, error) {
	name, err := s.GenerateName(original, at)
	if err != nil {
		return "", err
	}
	if err := s.Init(); err != nil {
		return "", err
	}

	p := path.Join(s.dir, name)
	f, err := s.fs.OpenFile(p, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create receipt %s: %w", name, err)
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = s.fs.Remove(p)
		return "", fmt.Errorf("write receipt %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		_ = s.fs.Remove(p)
		return "", fmt.Errorf("close receipt %s: %w", name, err)
	}
	return name, nil
}

// Open returns the receipt called name for reading. The caller closes it.
func (s *Store) Open(name string) (afero.File, error) {
	if !ValidName(name) {
		return nil, ErrInvalidName
	}
	f, err := s.fs.Open(path.Join(s.dir, name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("open receipt %s: %w", name, err)
	}
	return f, nil
}

// Remove deletes the receipt called name. A missing file is not an error.
func (s *Store) Remove(name string) error {
	if !ValidName(name) {
		return ErrInvalidName
	}
	err := s.fs.Remove(path.Join(s.dir, name))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove receipt %s: %w", name, err)
	}
	return nil
}

// GenerateName builds "<stem>_<YYYYMMDD_HHMMSS>_<6 hex><ext>" from the
// sanitised original filename and at.
func (s *Store) GenerateName(original string, at time.Time) (string, error) {
	suffix := make([]byte, 3)
	if _, err := io.ReadFull(s.random, suffix); err != nil {
		return "", fmt.Errorf("generate receipt suffix: %w", err)
	}
	stem, ext := Sanitize(original)
	return fmt.Sprintf("%s_%s_%s%s", stem, at.Format(timestampLayout), hex.EncodeToString(suffix), ext), nil
}

// Sanitize reduces an uploaded filename to a safe stem and extension. Only
// the base name is kept, characters outside [A-Za-z0-9._-] become '_', and
// leading dots are stripped. An empty stem becomes "receipt".
func Sanitize(original string) (stem, ext string) {
	base := original
	if i := strings.LastIndexAny(base, `/\`); i >= 0 {
		base = base[i+1:]
	}
	base = unsafeChars.ReplaceAllString(base, "_")
	base = strings.TrimLeft(base, ".")

	ext = path.Ext(base)
	stem = strings.TrimSuffix(base, ext)
	if len(stem) > maxStemLength {
		stem = stem[:maxStemLength]
	}
	if stem == "" {
		stem = fallbackStem
	}
	return stem, strings.ToLower(ext)
}

// ValidName reports whether name is a flat filename the store could have
// produced.
func ValidName(name string) bool {
	return storedName.MatchString(name)
}
