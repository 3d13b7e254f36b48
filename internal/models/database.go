package models

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// ErrNotFound is returned when a requested record does not exist
var ErrNotFound = gorm.ErrRecordNotFound

// Database wraps the gorm connection
type Database struct {
	gorm *gorm.DB
}

// NewDatabase opens the sqlite database and migrates the schema
func NewDatabase(path string) (*Database, error) {
	dsn := path
	if !strings.Contains(dsn, "?") {
		// sqlite does not enforce foreign keys unless asked to
		dsn += "?_fk=1"
	}

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.AutoMigrate(
		&User{},
		&AuthToken{},
		&SocialIdentity{},
		&Picture{},
		&Link{},
		&WatchStatus{},
	); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &Database{gorm: db}, nil
}

// Close closes the database connection
func (db *Database) Close() error {
	sqlDB, err := db.gorm.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Picture operations

// GetPictureByID retrieves a picture by ID
func (db *Database) GetPictureByID(id uint64) (*Picture, error) {
	var picture Picture
	if err := db.gorm.First(&picture, id).Error; err != nil {
		return nil, err
	}
	return &picture, nil
}

// GetOrCreatePicture returns the picture with the given name and type,
// creating it if it does not exist yet
func (db *Database) GetOrCreatePicture(name string, pictureType PictureType) (*Picture, error) {
	picture := Picture{Name: name, Type: pictureType}
	err := db.gorm.Where(&Picture{Name: name, Type: pictureType}).FirstOrCreate(&picture).Error
	if err != nil {
		return nil, err
	}
	return &picture, nil
}

// GetPicturesWatchedBy retrieves pictures with the given name that the user
// has watch statuses for, with only that user's statuses attached
func (db *Database) GetPicturesWatchedBy(userID uint64, name string) ([]*Picture, error) {
	var pictures []*Picture
	err := db.gorm.
		Preload("Statuses", "user_id = ?", userID).
		Joins("JOIN watch_statuses ON watch_statuses.picture_id = pictures.id").
		Where("watch_statuses.user_id = ? AND pictures.name = ?", userID, name).
		Group("pictures.id").
		Find(&pictures).Error
	return pictures, err
}

// DeletePicture deletes a picture; its links and watch statuses cascade
func (db *Database) DeletePicture(id uint64) error {
	return db.gorm.Delete(&Picture{}, id).Error
}

// Link operations

// CreateLinks bulk-creates links
func (db *Database) CreateLinks(links []*Link) error {
	if len(links) == 0 {
		return nil
	}
	return db.gorm.Create(&links).Error
}

// GetLinksByPictureName retrieves all links whose picture has the given name
func (db *Database) GetLinksByPictureName(name string) ([]*Link, error) {
	var links []*Link
	err := db.gorm.Joins("Picture").
		Where("Picture.name = ?", name).
		Find(&links).Error
	return links, err
}

// GetFilmLinks retrieves links for a film picture with the given name
func (db *Database) GetFilmLinks(name string) ([]*Link, error) {
	var links []*Link
	err := db.gorm.Joins("Picture").
		Where("Picture.name = ? AND Picture.type = ?", name, PictureTypeFilm).
		Find(&links).Error
	return links, err
}

// GetSeriesLinks retrieves links for a series picture filtered by season and episode
func (db *Database) GetSeriesLinks(name string, season, episode int) ([]*Link, error) {
	var links []*Link
	err := db.gorm.Joins("Picture").
		Where("Picture.name = ? AND Picture.type = ?", name, PictureTypeSeries).
		Where("links.season = ? AND links.episode = ?", season, episode).
		Find(&links).Error
	return links, err
}

// WatchStatus operations

// CreateWatchStatus creates a new watch status row
func (db *Database) CreateWatchStatus(status *WatchStatus) error {
	status.CreatedAt = time.Now()
	return db.gorm.Create(status).Error
}

// GetLastWatchStatus retrieves the most recently created watch status for
// (user, picture name, season, episode)
func (db *Database) GetLastWatchStatus(userID uint64, name string, season, episode int) (*WatchStatus, error) {
	var status WatchStatus
	err := db.gorm.Joins("Picture").
		Where("watch_statuses.user_id = ? AND Picture.name = ?", userID, name).
		Where("watch_statuses.season = ? AND watch_statuses.episode = ?", season, episode).
		Order("watch_statuses.id DESC").
		First(&status).Error
	if err != nil {
		return nil, err
	}
	return &status, nil
}

// FinishWatchStatus marks a watch status as finished, leaving other fields untouched
func (db *Database) FinishWatchStatus(status *WatchStatus) error {
	if err := db.gorm.Model(status).Update("finished", true).Error; err != nil {
		return err
	}
	status.Finished = true
	return nil
}

// GetUnfinishedStatusesBefore retrieves unfinished watch statuses created before the cutoff
func (db *Database) GetUnfinishedStatusesBefore(cutoff time.Time) ([]*WatchStatus, error) {
	var statuses []*WatchStatus
	err := db.gorm.
		Where("finished = ? AND created_at < ?", false, cutoff).
		Order("id ASC").
		Find(&statuses).Error
	return statuses, err
}

// DeleteWatchStatus deletes a watch status by ID
func (db *Database) DeleteWatchStatus(id uint64) error {
	return db.gorm.Delete(&WatchStatus{}, id).Error
}

// CountWatchStatuses returns the total number of watch status rows
func (db *Database) CountWatchStatuses() (int64, error) {
	var count int64
	err := db.gorm.Model(&WatchStatus{}).Count(&count).Error
	return count, err
}

// User operations

// CreateUser creates a new user
func (db *Database) CreateUser(user *User) error {
	user.CreatedAt = time.Now()
	return db.gorm.Create(user).Error
}

// GetUserByUsername retrieves a user by username
func (db *Database) GetUserByUsername(username string) (*User, error) {
	var user User
	if err := db.gorm.Where("username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByID retrieves a user by ID
func (db *Database) GetUserByID(id uint64) (*User, error) {
	var user User
	if err := db.gorm.First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// CountPictures returns the total number of pictures
func (db *Database) CountPictures() (int64, error) {
	var count int64
	err := db.gorm.Model(&Picture{}).Count(&count).Error
	return count, err
}

// CountLinks returns the total number of links
func (db *Database) CountLinks() (int64, error) {
	var count int64
	err := db.gorm.Model(&Link{}).Count(&count).Error
	return count, err
}

// Token operations

// GetOrCreateToken returns the user's auth token, issuing one if needed
func (db *Database) GetOrCreateToken(userID uint64) (*AuthToken, error) {
	var token AuthToken
	err := db.gorm.Where("user_id = ?", userID).First(&token).Error
	if err == nil {
		return &token, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	key, err := generateTokenKey()
	if err != nil {
		return nil, err
	}
	token = AuthToken{Key: key, UserID: userID, CreatedAt: time.Now()}
	if err := db.gorm.Create(&token).Error; err != nil {
		return nil, err
	}
	return &token, nil
}

// GetTokenUser resolves a token key to its user
func (db *Database) GetTokenUser(key string) (*User, error) {
	var token AuthToken
	err := db.gorm.Joins("User").Where("auth_tokens.key = ?", key).First(&token).Error
	if err != nil {
		return nil, err
	}
	return &token.User, nil
}

// generateTokenKey produces a 40-character hex token key
func generateTokenKey() (string, error) {
	buf := make([]byte, 20)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate token key: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// Social identity operations

// GetSocialIdentity retrieves the latest identity row for (social type, social user id)
func (db *Database) GetSocialIdentity(socialType, socialUserID string) (*SocialIdentity, error) {
	var identity SocialIdentity
	err := db.gorm.
		Where("social_type = ? AND social_user_id = ?", socialType, socialUserID).
		Order("id DESC").
		First(&identity).Error
	if err != nil {
		return nil, err
	}
	return &identity, nil
}

// CreateSocialIdentity creates a new social identity row
func (db *Database) CreateSocialIdentity(identity *SocialIdentity) error {
	return db.gorm.Create(identity).Error
}
