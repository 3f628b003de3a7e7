package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Page struct {
	Id          uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId      uuid.UUID      `gorm:"type:uuid;not null;index"`
	Title       string         `gorm:"type:varchar(255);not null"`
	Strokes     datatypes.JSON `gorm:"type:jsonb;not null"`
	ImageData   *string        `gorm:"type:text"`
	IsScanned   bool           `gorm:"not null;default:false"`
	OcrText     *string        `gorm:"type:text"`
	OcrLanguage *string        `gorm:"type:varchar(16)"`
	CreatedAt   time.Time      `gorm:"autoCreateTime"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime"`
	DeletedAt   gorm.DeletedAt `gorm:"index"`
}

func (Page) TableName() string {
	return "pages"
}
