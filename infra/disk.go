package infra

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"emperror.dev/errors"

	"github.com/tnqbao/gau-filestore-service/service"
)

const diskTempDir = ".tmp"

// DiskBlobStore keeps each blob as one file directly under root.
type DiskBlobStore struct {
	root string
}

// NewDiskBlobStore creates root and its temp directory if missing.
func NewDiskBlobStore(root string) (*DiskBlobStore, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, errors.WrapWithDetails(err, "resolving storage root", "root", root)
	}

	if err := os.MkdirAll(filepath.Join(abs, diskTempDir), 0o755); err != nil {
		return nil, errors.WrapWithDetails(err, "creating storage root", "root", abs)
	}

	return &DiskBlobStore{root: abs}, nil
}

func (d *DiskBlobStore) Root() string {
	return d.root
}

// Path resolves name to a file inside root.
func (d *DiskBlobStore) Path(name string) (string, error) {
	if err := service.ValidateName(name); err != nil {
		return "", err
	}

	p := filepath.Join(d.root, name)
	if filepath.Dir(p) != d.root {
		return "", errors.WithDetails(service.ErrInvalidName, "reason", "escapes storage root")
	}
	return p, nil
}

// Create writes into the temp dir and hard-links the result into place. The link fails
// if the name is taken, so a reader never sees a partial file and nothing is overwritten.
func (d *DiskBlobStore) Create(_ context.Context, name string, data []byte) error {
	target, err := d.Path(name)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Join(d.root, diskTempDir), name+"-*")
	if err != nil {
		return errors.WrapWithDetails(err, "creating temp file", "name", name)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.WrapWithDetails(err, "writing temp file", "name", name)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return errors.WrapWithDetails(err, "syncing temp file", "name", name)
	}
	if err := tmp.Close(); err != nil {
		return errors.WrapWithDetails(err, "closing temp file", "name", name)
	}

	if err := os.Link(tmpPath, target); err != nil {
		if os.IsExist(err) {
			return errors.WithDetails(service.ErrBlobExists, "name", name)
		}
		return errors.WrapWithDetails(err, "committing blob", "name", name)
	}
	return nil
}

func (d *DiskBlobStore) Exists(_ context.Context, name string) (bool, error) {
	p, err := d.Path(name)
	if err != nil {
		return false, err
	}

	info, err := os.Stat(p)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, errors.WrapWithDetails(err, "stat blob", "name", name)
	}
	return info.Mode().IsRegular(), nil
}

func (d *DiskBlobStore) Open(_ context.Context, name string) (io.ReadCloser, error) {
	p, err := d.Path(name)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(p)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.WithDetails(service.ErrNotFound, "name", name)
		}
		return nil, errors.WrapWithDetails(err, "opening blob", "name", name)
	}
	return f, nil
}

func (d *DiskBlobStore) Remove(_ context.Context, name string) error {
	p, err := d.Path(name)
	if err != nil {
		return err
	}

	if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
		return errors.WrapWithDetails(err, "removing blob", "name", name)
	}
	return nil
}

func (d *DiskBlobStore) Names(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(d.root)
	if err != nil {
		return nil, errors.WrapWithDetails(err, "reading storage root", "root", d.root)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.Type().IsRegular() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		names = append(names, e.Name())
	}
	return names, nil
}
