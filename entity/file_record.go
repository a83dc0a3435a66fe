package entity

import "time"

// FileRecord is the metadata row for one stored blob. Name joins it to the blob store.
type FileRecord struct {
	ID           uint      `json:"-" gorm:"primaryKey;autoIncrement"`
	Name         string    `json:"name" gorm:"type:varchar(255);not null;uniqueIndex"`
	OriginalName *string   `json:"originalName,omitempty" gorm:"type:varchar(512)"`
	Description  *string   `json:"description,omitempty" gorm:"type:text"`
	ContentType  *string   `json:"contentType,omitempty" gorm:"type:varchar(255)"`
	Size         int64     `json:"size" gorm:"not null"`
	CreatedAt    time.Time `json:"created_at" gorm:"not null;autoCreateTime"`
}

func (FileRecord) TableName() string {
	return "file_records"
}
