package api

import "time"

// Group mirrors the backend group record.
type Group struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	IconURL     string    `json:"icon_url"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Message mirrors a listed message. File, when set, is a fetchable URL.
type Message struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	GroupID   string    `json:"group_id"`
	User      string    `json:"user"`
	File      *string   `json:"file,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// VersionInfo is returned by GET /api/version.
type VersionInfo struct {
	Version       string   `json:"version"`
	APIVersion    string   `json:"apiVersion"`
	Storage       string   `json:"storage,omitempty"`
	LiveUpdates   string   `json:"liveUpdates,omitempty"`
	UploadLimitMB int      `json:"uploadLimitMb,omitempty"`
	Functions     []string `json:"functions,omitempty"`
}
