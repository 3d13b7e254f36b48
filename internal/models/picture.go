package models

import "time"

// Picture represents a trackable unit of media (film or series)
type Picture struct {
	ID   uint64      `gorm:"primaryKey"`
	Name string      `gorm:"size:256;index"`
	Type PictureType `gorm:"size:1;default:F"`

	Links    []Link        `gorm:"constraint:OnDelete:CASCADE"`
	Statuses []WatchStatus `gorm:"constraint:OnDelete:CASCADE"`
}

// Link is one playable source URL for one episode/film instance of a Picture
type Link struct {
	ID      uint64 `gorm:"primaryKey"`
	Source  string `gorm:"size:512"`
	Season  int    `gorm:"default:1"`
	Episode int    `gorm:"default:1"`

	PictureID uint64
	Picture   Picture `gorm:"constraint:OnDelete:CASCADE"`
}

// WatchStatus is a per-user progress marker for a Picture/season/episode.
// A fresh row is inserted every time the user opens a listing; the newest
// row is the one finish-episode operates on.
type WatchStatus struct {
	ID       uint64 `gorm:"primaryKey"`
	Season   int    `gorm:"default:1"`
	Episode  int    `gorm:"default:1"`
	Finished bool   `gorm:"default:false"`

	PictureID uint64
	Picture   Picture `gorm:"constraint:OnDelete:CASCADE"`
	UserID    uint64
	User      User `gorm:"constraint:OnDelete:CASCADE"`

	CreatedAt time.Time
}
