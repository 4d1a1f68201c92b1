package model

import "time"

// Note is one uploaded PDF document plus its metadata and engagement counters.
// Likes must equal the number of NoteLike rows for the note; both are written
// inside one transaction.
type Note struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Title         string    `gorm:"size:255;not null" json:"title"`
	Subject       string    `gorm:"size:128;not null;index" json:"subject"`
	FileKey       string    `gorm:"size:512;not null" json:"-"`
	FileURL       string    `gorm:"size:1024;not null" json:"file_url"`
	UserID        uint      `gorm:"not null;index" json:"user_id"`
	UploaderEmail string    `gorm:"size:128" json:"uploader_email"`
	Likes         int64     `gorm:"not null;default:0" json:"likes"`
	Views         int64     `gorm:"not null;default:0" json:"views"`
	Summary       string    `gorm:"type:text" json:"summary,omitempty"`
	Points        string    `gorm:"type:text" json:"points,omitempty"`
	CreatedAt     time.Time `gorm:"index" json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`

	LikedBy []uint `gorm:"-" json:"liked_by,omitempty"`
}

// NoteLike is one element of a note's liked-by set.
type NoteLike struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	NoteID    uint      `gorm:"not null;uniqueIndex:uk_note_user,priority:1" json:"note_id"`
	UserID    uint      `gorm:"not null;uniqueIndex:uk_note_user,priority:2" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// SummaryJob is the wire payload for asynchronous AI summary generation.
type SummaryJob struct {
	NoteID uint   `json:"note_id"`
	PDFURL string `json:"pdf_url"`
}
