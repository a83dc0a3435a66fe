package service

import (
	"context"
	"crypto/rand"
	"math/big"
	"strings"

	"emperror.dev/errors"
)

const (
	NameLength      = 10
	MaxNameAttempts = 64

	maxNameBytes = 255
	nameAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
)

// NameGenerator mints random alphanumeric names that have no blob on disk yet.
type NameGenerator struct {
	Blobs       BlobStore
	MaxAttempts int
}

func NewNameGenerator(blobs BlobStore, maxAttempts int) *NameGenerator {
	if maxAttempts <= 0 {
		maxAttempts = MaxNameAttempts
	}
	return &NameGenerator{
		Blobs:       blobs,
		MaxAttempts: maxAttempts,
	}
}

// Generate probes the blob store until it finds a free name. It never creates anything.
func (g *NameGenerator) Generate(ctx context.Context) (string, error) {
	for attempt := 0; attempt < g.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		name, err := randomAlphaNumeric(NameLength)
		if err != nil {
			return "", errors.Wrap(err, "reading random bytes")
		}

		exists, err := g.Blobs.Exists(ctx, name)
		if err != nil {
			return "", errors.WrapWithDetails(err, "probing blob store", "name", name)
		}
		if !exists {
			return name, nil
		}
	}

	return "", errors.WithDetails(ErrExhausted, "attempts", g.MaxAttempts)
}

func randomAlphaNumeric(n int) (string, error) {
	max := big.NewInt(int64(len(nameAlphabet)))

	var sb strings.Builder
	sb.Grow(n)
	for i := 0; i < n; i++ {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		sb.WriteByte(nameAlphabet[idx.Int64()])
	}
	return sb.String(), nil
}

// ValidateName enforces the name discipline shared by every blob store backend:
// a single path segment made of [A-Za-z0-9_.-].
func ValidateName(name string) error {
	if name == "" {
		return errors.WithDetails(ErrInvalidName, "reason", "empty name")
	}

	if len(name) > maxNameBytes {
		return errors.WithDetails(ErrInvalidName, "reason", "name too long")
	}

	if strings.Contains(name, "..") {
		return errors.WithDetails(ErrInvalidName, "reason", "relative path traversal")
	}

	// dot-names are reserved for backend bookkeeping such as the disk temp dir
	if strings.HasPrefix(name, ".") {
		return errors.WithDetails(ErrInvalidName, "reason", "hidden name")
	}

	for i, r := range name {
		if !isValidNameChar(r) {
			return errors.WithDetails(ErrInvalidName, "reason", "invalid character", "position", i)
		}
	}

	return nil
}

func isValidNameChar(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') ||
		r == '-' || r == '_' || r == '.'
}
