package models

import "github.com/google/uuid"

// Message belongs to a group by id only; the group is not required to exist.
// File holds a blob id when stored and a fetchable URL once resolved for reading.
type Message struct {
	BaseModel
	Content string    `json:"content" gorm:"type:text;not null;default:''"`
	GroupID uuid.UUID `json:"group_id" gorm:"type:uuid;not null;index"`
	User    string    `json:"user" gorm:"type:text;not null;default:''"`
	File    *string   `json:"file,omitempty" gorm:"type:text"`
}

func (Message) TableName() string {
	return "messages"
}

func (m *Message) HasFile() bool {
	return m.File != nil && *m.File != ""
}
