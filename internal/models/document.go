package models

import (
	"time"

	"gorm.io/datatypes"
)

// DefaultDocumentID is the fixed row key holding the dataset.
const DefaultDocumentID = 1

// DatasetDocument is the single relational row that stores the whole dataset
// as jsonb.
type DatasetDocument struct {
	ID        int            `json:"id" gorm:"primaryKey;autoIncrement:false"`
	Payload   datatypes.JSON `json:"payload" gorm:"type:jsonb;not null"`
	UpdatedAt time.Time      `json:"updated_at"`
}

func (DatasetDocument) TableName() string {
	return "app_state"
}
