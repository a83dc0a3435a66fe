package service

import (
	"context"
	"io"

	"github.com/tnqbao/gau-filestore-service/entity"
)

// BlobStore holds file contents under generated names.
type BlobStore interface {
	// Create stores data under name and fails with ErrBlobExists when the name is taken.
	Create(ctx context.Context, name string, data []byte) error
	Exists(ctx context.Context, name string) (bool, error)
	// Open fails with ErrNotFound when no blob exists under name.
	Open(ctx context.Context, name string) (io.ReadCloser, error)
	// Remove is idempotent.
	Remove(ctx context.Context, name string) error
	Names(ctx context.Context) ([]string, error)
}

// MetadataStore holds one FileRecord per stored blob.
type MetadataStore interface {
	Create(ctx context.Context, record *entity.FileRecord) error
	FindByName(ctx context.Context, name string) (*entity.FileRecord, error)
	ListAll(ctx context.Context) ([]entity.FileRecord, error)
	// DeleteByName removes the record and commits only if then succeeds.
	DeleteByName(ctx context.Context, name string, then func() error) error
}

// Locker serialises operations on a single name.
type Locker interface {
	Lock(ctx context.Context, name string) (unlock func(), err error)
}

type EventPublisher interface {
	PublishFileEvent(ctx context.Context, event entity.FileEvent, record entity.FileRecord) error
}

type Logger interface {
	InfoWithContextf(ctx context.Context, format string, args ...interface{})
	WarningWithContextf(ctx context.Context, format string, args ...interface{})
	ErrorWithContextf(ctx context.Context, err error, format string, args ...interface{})
}

type noopPublisher struct{}

func (noopPublisher) PublishFileEvent(context.Context, entity.FileEvent, entity.FileRecord) error {
	return nil
}

type noopLogger struct{}

func (noopLogger) InfoWithContextf(context.Context, string, ...interface{})         {}
func (noopLogger) WarningWithContextf(context.Context, string, ...interface{})      {}
func (noopLogger) ErrorWithContextf(context.Context, error, string, ...interface{}) {}
