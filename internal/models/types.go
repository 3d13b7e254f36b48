package models

// PictureType represents the kind of picture (film or series)
type PictureType string

const (
	PictureTypeFilm   PictureType = "F"
	PictureTypeSeries PictureType = "S"
)
