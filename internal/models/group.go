package models

// Group is a named chat room. Nothing about it is unique or required.
type Group struct {
	BaseModel
	Name        string `json:"name" gorm:"type:text;not null;default:''"`
	Description string `json:"description" gorm:"type:text;not null;default:''"`
	IconURL     string `json:"icon_url" gorm:"type:text;not null;default:''"`
}

func (Group) TableName() string {
	return "groups"
}
