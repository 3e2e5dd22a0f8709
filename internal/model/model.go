package model

import (
	"strings"
	"time"
)

// Provider represents a cloud storage provider
type Provider string

const (
	ProviderGoogle    Provider = "Google"
	ProviderMicrosoft Provider = "Microsoft"
	ProviderLocal     Provider = "Local"
)

// User represents a configured cloud storage account
type User struct {
	Provider     Provider `json:"provider"`
	Email        string   `json:"email"`
	IsMain       bool     `json:"is_main"`
	RefreshToken string   `json:"refresh_token"`
}

// Item is a remote file or folder as returned by a search or listing.
type Item struct {
	ID        string    `json:"id"`
	AccountID string    `json:"account_id"`
	Provider  Provider  `json:"provider"`
	Name      string    `json:"name"`
	Path      string    `json:"path"`
	ParentID  string    `json:"parent_id"`
	MimeType  string    `json:"mime_type"`
	Size      int64     `json:"size"`
	ModTime   time.Time `json:"mod_time"`
	IsFolder  bool      `json:"is_folder"`
	Starred   bool      `json:"starred"`
	Shared    bool      `json:"shared"`
}

// Key returns an identifier that is unique across accounts.
func (i Item) Key() string {
	return string(i.Provider) + ":" + i.AccountID + ":" + i.ID
}

// IsMedia reports whether the item is an image or a video.
func (i Item) IsMedia() bool {
	return strings.HasPrefix(i.MimeType, "image/") || strings.HasPrefix(i.MimeType, "video/")
}

