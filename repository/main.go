package repository

import (
	"github.com/tnqbao/gau-filestore-service/entity"
	"gorm.io/gorm"
)

type Repository struct {
	FileRecordRepo *FileRecordRepository
}

func InitRepository(db *gorm.DB) *Repository {
	return &Repository{
		FileRecordRepo: NewFileRecordRepository(db),
	}
}

func (r *Repository) WithTransaction(tx *gorm.DB) *Repository {
	return &Repository{
		FileRecordRepo: NewFileRecordRepository(tx),
	}
}

// Migrate creates or updates the tables. Safe to run on every start.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&entity.FileRecord{})
}
