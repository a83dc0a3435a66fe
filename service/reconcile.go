package service

import (
	"context"
	"sort"

	"emperror.dev/errors"
)

// ReconcileReport lists the names whose blob and record have drifted apart.
type ReconcileReport struct {
	Records        int      `json:"records"`
	Blobs          int      `json:"blobs"`
	MissingBlobs   []string `json:"missing_blobs"`
	OrphanBlobs    []string `json:"orphan_blobs"`
	RemovedOrphans []string `json:"removed_orphans"`
}

func (r *ReconcileReport) Consistent() bool {
	return len(r.MissingBlobs) == 0 && len(r.OrphanBlobs) == len(r.RemovedOrphans)
}

// Reconcile compares both stores. Records without a blob are only reported because they
// already read as not found; orphan blobs are removed when removeOrphans is set.
func (s *StorageService) Reconcile(ctx context.Context, removeOrphans bool) (report *ReconcileReport, err error) {
	ctx, span := s.tracer.Start(ctx, "StorageService.Reconcile")
	defer func() { s.finish(ctx, span, "reconcile", err) }()

	names, err := s.blobs.Names(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "listing blobs")
	}

	records, err := s.records.ListAll(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "listing records")
	}

	blobSet := make(map[string]struct{}, len(names))
	for _, name := range names {
		blobSet[name] = struct{}{}
	}

	recordSet := make(map[string]struct{}, len(records))
	report = &ReconcileReport{
		Records:        len(records),
		Blobs:          len(names),
		MissingBlobs:   []string{},
		OrphanBlobs:    []string{},
		RemovedOrphans: []string{},
	}

	for _, record := range records {
		recordSet[record.Name] = struct{}{}
		if _, ok := blobSet[record.Name]; !ok {
			report.MissingBlobs = append(report.MissingBlobs, record.Name)
		}
	}

	for _, name := range names {
		if _, ok := recordSet[name]; !ok {
			report.OrphanBlobs = append(report.OrphanBlobs, name)
		}
	}

	sort.Strings(report.MissingBlobs)
	sort.Strings(report.OrphanBlobs)

	for _, name := range report.MissingBlobs {
		s.log.WarningWithContextf(ctx, "[Reconcile] Record '%s' has no blob", name)
	}

	for _, name := range report.OrphanBlobs {
		if !removeOrphans {
			s.log.WarningWithContextf(ctx, "[Reconcile] Blob '%s' has no record", name)
			continue
		}

		removed, err := s.removeOrphan(ctx, name)
		if err != nil {
			s.log.ErrorWithContextf(ctx, err, "[Reconcile] Failed to remove orphan blob '%s': %v", name, err)
			continue
		}
		if removed {
			report.RemovedOrphans = append(report.RemovedOrphans, name)
		}
	}

	s.log.InfoWithContextf(ctx, "[Reconcile] %d records, %d blobs, %d missing blobs, %d orphan blobs, %d removed",
		report.Records, report.Blobs, len(report.MissingBlobs), len(report.OrphanBlobs), len(report.RemovedOrphans))
	return report, nil
}

// removeOrphan re-checks under the name lock so an in-flight Store is never undone.
func (s *StorageService) removeOrphan(ctx context.Context, name string) (bool, error) {
	unlock, err := s.locker.Lock(ctx, name)
	if err != nil {
		return false, err
	}
	defer unlock()

	_, err = s.records.FindByName(ctx, name)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return false, err
	}

	if err := s.blobs.Remove(ctx, name); err != nil {
		return false, err
	}

	s.log.InfoWithContextf(ctx, "[Reconcile] Removed orphan blob '%s'", name)
	return true, nil
}
