package models

type Blob struct {
	BaseModel
	ContentType string `json:"contentType" gorm:"type:varchar(255);not null"`
	Size        int64  `json:"size" gorm:"not null;default:0"`
	StoragePath string `json:"-" gorm:"type:text;not null"`
}

func (Blob) TableName() string {
	return "blobs"
}
