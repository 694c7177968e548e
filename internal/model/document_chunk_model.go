package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

type DocumentChunk struct {
	Id         uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	DocumentId string     `gorm:"type:varchar(255);not null;index"`
	CorpusId   string     `gorm:"type:varchar(255);not null;index"`
	UserId     *uuid.UUID `gorm:"type:uuid;index"`
	Title      string     `gorm:"type:varchar(255)"`
	Content    string     `gorm:"type:text;not null"`
	ChunkIndex int        `gorm:"not null;default:0"`
	Embedding  pgvector.Vector `gorm:"type:vector(768)"`
	Metadata   datatypes.JSONMap
	CreatedAt  time.Time `gorm:"autoCreateTime"`
}

func (DocumentChunk) TableName() string {
	return "document_chunks"
}
