package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type User struct {
	Id          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ExternalId  string    `gorm:"type:varchar(255);uniqueIndex;not null"`
	Name        string    `gorm:"type:varchar(255)"`
	Email       string    `gorm:"type:varchar(255)"`
	Preferences datatypes.JSONMap
	CreatedAt   time.Time `gorm:"autoCreateTime"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime"`
}

func (User) TableName() string {
	return "users"
}
