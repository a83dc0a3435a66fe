package service

import (
	"context"
	"io"
	"net/url"
	"slices"
	"strings"
	"time"

	"emperror.dev/errors"
	"github.com/tnqbao/gau-filestore-service/entity"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
)

const (
	DefaultDescription  = "no description"
	instrumentationName = "github.com/tnqbao/gau-filestore-service/service"

	rollbackTimeout = 30 * time.Second
)

type Options struct {
	Blobs   BlobStore
	Records MetadataStore
	Locker  Locker
	Events  EventPublisher
	Logger  Logger

	// BaseURL prefixes the fetch path of every list entry.
	BaseURL      string
	NameAttempts int
}

// StorageService is the only writer of the blob store and the metadata store and keeps
// the two in 1:1 correspondence.
type StorageService struct {
	blobs   BlobStore
	records MetadataStore
	locker  Locker
	events  EventPublisher
	log     Logger
	names   *NameGenerator
	baseURL string

	tracer trace.Tracer
	ops    metric.Int64Counter
}

type StoreInput struct {
	Description  *string
	OriginalName *string
	ContentType  *string
	Data         []byte
}

type FetchResult struct {
	Record  entity.FileRecord
	Content io.ReadCloser
}

type ListEntry struct {
	Path         string  `json:"path"`
	OriginalName *string `json:"originalName,omitempty"`
	InternalName string  `json:"internalName"`
	Description  string  `json:"description"`
	Size         int64   `json:"size"`
}

// ListResult sets Empty when the store holds no records at all.
type ListResult struct {
	Entries []ListEntry
	Empty   bool
}

func NewStorageService(opts Options) *StorageService {
	if opts.Blobs == nil || opts.Records == nil {
		panic("storage service requires a blob store and a metadata store")
	}
	if opts.Locker == nil {
		opts.Locker = NewLocalLocker()
	}
	if opts.Events == nil {
		opts.Events = noopPublisher{}
	}
	if opts.Logger == nil {
		opts.Logger = noopLogger{}
	}

	ops, err := otel.Meter(instrumentationName).Int64Counter(
		"filestore.operations",
		metric.WithDescription("Storage operations by name and outcome"),
	)
	if err != nil {
		ops = noop.Int64Counter{}
	}

	return &StorageService{
		blobs:   opts.Blobs,
		records: opts.Records,
		locker:  opts.Locker,
		events:  opts.Events,
		log:     opts.Logger,
		names:   NewNameGenerator(opts.Blobs, opts.NameAttempts),
		baseURL: strings.TrimSuffix(opts.BaseURL, "/"),
		tracer:  otel.Tracer(instrumentationName),
		ops:     ops,
	}
}

// Store writes the blob first and the record second. A record is durable only once
// its insert returns; a failed insert removes the blob again.
func (s *StorageService) Store(ctx context.Context, in StoreInput) (name string, err error) {
	ctx, span := s.tracer.Start(ctx, "StorageService.Store",
		trace.WithAttributes(attribute.Int("filestore.size", len(in.Data))))
	defer func() { s.finish(ctx, span, "store", err) }()

	if len(in.Data) == 0 || in.Description == nil {
		return "", ErrBadRequest
	}

	name, unlock, err := s.createBlob(ctx, in.Data)
	if err != nil {
		return "", err
	}
	defer unlock()

	record := &entity.FileRecord{
		Name:         name,
		Size:         int64(len(in.Data)),
		Description:  in.Description,
		OriginalName: in.OriginalName,
		ContentType:  in.ContentType,
	}

	if err := s.records.Create(ctx, record); err != nil {
		if rmErr := s.rollbackBlob(ctx, name); rmErr != nil {
			s.log.ErrorWithContextf(ctx, rmErr, "[Storage] FATAL inconsistency: metadata insert for '%s' failed (%v) and the blob could not be removed, orphan blob left behind", name, err)
			return "", errors.Combine(err, errors.WrapWithDetails(rmErr, "rolling back blob", "name", name))
		}
		s.log.WarningWithContextf(ctx, "[Storage] Metadata insert for '%s' failed, blob rolled back: %v", name, err)
		return "", err
	}

	s.log.InfoWithContextf(ctx, "[Storage] Stored file '%s' (%d bytes)", name, record.Size)
	s.publish(ctx, entity.FileEventStored, *record)
	return name, nil
}

// rollbackBlob outlives the request ctx: a cancelled caller must not leave the blob behind.
func (s *StorageService) rollbackBlob(ctx context.Context, name string) error {
	rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), rollbackTimeout)
	defer cancel()

	return s.blobs.Remove(rctx, name)
}

// createBlob reserves a fresh name by exclusive create and returns it still locked.
func (s *StorageService) createBlob(ctx context.Context, data []byte) (string, func(), error) {
	for attempt := 0; attempt < s.names.MaxAttempts; attempt++ {
		name, err := s.names.Generate(ctx)
		if err != nil {
			return "", nil, err
		}

		unlock, err := s.locker.Lock(ctx, name)
		if err != nil {
			return "", nil, err
		}

		err = s.blobs.Create(ctx, name, data)
		if err == nil {
			return name, unlock, nil
		}
		unlock()

		if !errors.Is(err, ErrBlobExists) {
			return "", nil, err
		}
		s.log.WarningWithContextf(ctx, "[Storage] Name '%s' was taken between probe and create, retrying", name)
	}

	return "", nil, errors.WithDetails(ErrExhausted, "attempts", s.names.MaxAttempts)
}

// Fetch returns a stream over the blob. Callers must close Content.
func (s *StorageService) Fetch(ctx context.Context, name string) (res *FetchResult, err error) {
	ctx, span := s.tracer.Start(ctx, "StorageService.Fetch",
		trace.WithAttributes(attribute.String("filestore.name", name)))
	defer func() { s.finish(ctx, span, "fetch", err) }()

	if err := ValidateName(name); err != nil {
		return nil, err
	}

	unlock, err := s.locker.Lock(ctx, name)
	if err != nil {
		return nil, err
	}
	defer unlock()

	record, err := s.lookup(ctx, name)
	if err != nil {
		return nil, err
	}

	content, err := s.blobs.Open(ctx, name)
	if err != nil {
		return nil, err
	}

	return &FetchResult{Record: *record, Content: content}, nil
}

// Delete removes the blob and its record together. The record delete only commits
// once the blob is gone.
func (s *StorageService) Delete(ctx context.Context, name string) (err error) {
	ctx, span := s.tracer.Start(ctx, "StorageService.Delete",
		trace.WithAttributes(attribute.String("filestore.name", name)))
	defer func() { s.finish(ctx, span, "delete", err) }()

	if err := ValidateName(name); err != nil {
		return err
	}

	unlock, err := s.locker.Lock(ctx, name)
	if err != nil {
		return err
	}
	defer unlock()

	record, err := s.lookup(ctx, name)
	if err != nil {
		return err
	}

	err = s.records.DeleteByName(ctx, name, func() error {
		return s.blobs.Remove(ctx, name)
	})
	if err != nil {
		return err
	}

	s.log.InfoWithContextf(ctx, "[Storage] Deleted file '%s'", name)
	s.publish(ctx, entity.FileEventDeleted, *record)
	return nil
}

// lookup requires both the record and the blob. Either missing yields ErrNotFound.
func (s *StorageService) lookup(ctx context.Context, name string) (*entity.FileRecord, error) {
	record, err := s.records.FindByName(ctx, name)
	if err != nil {
		return nil, err
	}

	exists, err := s.blobs.Exists(ctx, name)
	if err != nil {
		return nil, err
	}
	if !exists {
		s.log.WarningWithContextf(ctx, "[Storage] Record '%s' has no blob", name)
		return nil, errors.WithDetails(ErrNotFound, "name", name)
	}

	return record, nil
}

func (s *StorageService) List(ctx context.Context) (res *ListResult, err error) {
	ctx, span := s.tracer.Start(ctx, "StorageService.List")
	defer func() { s.finish(ctx, span, "list", err) }()

	records, err := s.records.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	if len(records) == 0 {
		return &ListResult{Entries: []ListEntry{}, Empty: true}, nil
	}

	slices.SortStableFunc(records, func(l, r entity.FileRecord) int {
		return strings.Compare(deref(l.Description), deref(r.Description))
	})

	entries := make([]ListEntry, 0, len(records))
	for _, record := range records {
		description := deref(record.Description)
		if description == "" {
			description = DefaultDescription
		}

		entries = append(entries, ListEntry{
			Path:         s.baseURL + "/fetch/" + url.PathEscape(record.Name),
			OriginalName: record.OriginalName,
			InternalName: record.Name,
			Description:  description,
			Size:         record.Size,
		})
	}

	return &ListResult{Entries: entries}, nil
}

func (s *StorageService) publish(ctx context.Context, event entity.FileEvent, record entity.FileRecord) {
	if err := s.events.PublishFileEvent(ctx, event, record); err != nil {
		s.log.ErrorWithContextf(ctx, err, "[Storage] Failed to publish %s event for '%s': %v", event, record.Name, err)
	}
}

func (s *StorageService) finish(ctx context.Context, span trace.Span, op string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	s.ops.Add(ctx, 1, metric.WithAttributes(
		attribute.String("op", op),
		attribute.String("outcome", outcome),
	))
	span.End()
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
