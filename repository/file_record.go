package repository

import (
	"context"
	"strings"

	"emperror.dev/errors"
	"github.com/tnqbao/gau-filestore-service/entity"
	"github.com/tnqbao/gau-filestore-service/service"
	"gorm.io/gorm"
)

type FileRecordRepository struct {
	db *gorm.DB
}

func NewFileRecordRepository(db *gorm.DB) *FileRecordRepository {
	return &FileRecordRepository{db: db}
}

func (r *FileRecordRepository) Create(ctx context.Context, record *entity.FileRecord) error {
	err := r.db.WithContext(ctx).Create(record).Error
	if err == nil {
		return nil
	}
	if isUniqueViolation(err) {
		return errors.WithDetails(service.ErrConflict, "name", record.Name)
	}
	return errors.WrapWithDetails(err, "inserting file record", "name", record.Name)
}

func (r *FileRecordRepository) FindByName(ctx context.Context, name string) (*entity.FileRecord, error) {
	var record entity.FileRecord
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.WithDetails(service.ErrNotFound, "name", name)
		}
		return nil, errors.WrapWithDetails(err, "finding file record", "name", name)
	}
	return &record, nil
}

func (r *FileRecordRepository) ListAll(ctx context.Context) ([]entity.FileRecord, error) {
	var records []entity.FileRecord
	err := r.db.WithContext(ctx).Order("id asc").Find(&records).Error
	if err != nil {
		return nil, errors.Wrap(err, "listing file records")
	}
	return records, nil
}

// DeleteByName deletes the row and runs then before the transaction commits.
func (r *FileRecordRepository) DeleteByName(ctx context.Context, name string, then func() error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("name = ?", name).Delete(&entity.FileRecord{})
		if res.Error != nil {
			return errors.WrapWithDetails(res.Error, "deleting file record", "name", name)
		}
		if res.RowsAffected == 0 {
			return errors.WithDetails(service.ErrNotFound, "name", name)
		}

		if then != nil {
			if err := then(); err != nil {
				return errors.WrapWithDetails(err, "removing blob", "name", name)
			}
		}
		return nil
	})
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate key")
}
