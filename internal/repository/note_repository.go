package repository

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"noteally/internal/model"
)

type NoteRepository struct {
	db *gorm.DB
}

func NewNoteRepository(db *gorm.DB) *NoteRepository {
	return &NoteRepository{db: db}
}

func (r *NoteRepository) Create(note *model.Note) error {
	if err := r.db.Create(note).Error; err != nil {
		return fmt.Errorf("create note failed: %w", err)
	}
	return nil
}

func (r *NoteRepository) GetByID(id uint) (*model.Note, error) {
	var note model.Note
	if err := r.db.First(&note, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("query note by id failed: %w", err)
	}
	return &note, nil
}

// ListShared returns all shared notes, newest first. subject narrows to one
// subject; search matches title or subject as a case-insensitive substring.
func (r *NoteRepository) ListShared(subject, search string) ([]model.Note, error) {
	query := r.db.Model(&model.Note{})
	if subject != "" {
		query = query.Where("subject = ?", subject)
	}
	if search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(subject) LIKE ?", pattern, pattern)
	}

	var notes []model.Note
	if err := query.Order("created_at DESC").Find(&notes).Error; err != nil {
		return nil, fmt.Errorf("list notes failed: %w", err)
	}
	return notes, nil
}

func (r *NoteRepository) ListByUserID(userID uint) ([]model.Note, error) {
	var notes []model.Note
	if err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&notes).Error; err != nil {
		return nil, fmt.Errorf("list user notes failed: %w", err)
	}
	return notes, nil
}

func (r *NoteRepository) Delete(noteID uint) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("note_id = ?", noteID).Delete(&model.NoteLike{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Note{}, noteID).Error
	})
	if err != nil {
		return fmt.Errorf("delete note failed: %w", err)
	}
	return nil
}

func (r *NoteRepository) HasLiked(noteID, userID uint) (bool, error) {
	var count int64
	if err := r.db.Model(&model.NoteLike{}).
		Where("note_id = ? AND user_id = ?", noteID, userID).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("query like failed: %w", err)
	}
	return count > 0, nil
}

// AddLike inserts the liked-by row and bumps the counter in one transaction so
// the counter always equals the row count.
func (r *NoteRepository) AddLike(noteID, userID uint) (int64, error) {
	var likes int64
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&model.NoteLike{NoteID: noteID, UserID: userID}).Error; err != nil {
			return err
		}
		if err := tx.Model(&model.Note{}).Where("id = ?", noteID).
			UpdateColumn("likes", gorm.Expr("likes + 1")).Error; err != nil {
			return err
		}
		return tx.Model(&model.Note{}).Where("id = ?", noteID).
			Pluck("likes", &likes).Error
	})
	if err != nil {
		return 0, fmt.Errorf("add like failed: %w", err)
	}
	return likes, nil
}

func (r *NoteRepository) RemoveLike(noteID, userID uint) (int64, error) {
	var likes int64
	err := r.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Where("note_id = ? AND user_id = ?", noteID, userID).Delete(&model.NoteLike{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected > 0 {
			if err := tx.Model(&model.Note{}).Where("id = ? AND likes > 0", noteID).
				UpdateColumn("likes", gorm.Expr("likes - 1")).Error; err != nil {
				return err
			}
		}
		return tx.Model(&model.Note{}).Where("id = ?", noteID).
			Pluck("likes", &likes).Error
	})
	if err != nil {
		return 0, fmt.Errorf("remove like failed: %w", err)
	}
	return likes, nil
}

func (r *NoteRepository) ListLikedUserIDs(noteID uint) ([]uint, error) {
	var userIDs []uint
	if err := r.db.Model(&model.NoteLike{}).
		Where("note_id = ?", noteID).
		Order("created_at ASC").
		Pluck("user_id", &userIDs).Error; err != nil {
		return nil, fmt.Errorf("list liked users failed: %w", err)
	}
	return userIDs, nil
}

func (r *NoteRepository) IncrementViews(noteID uint) error {
	if err := r.db.Model(&model.Note{}).Where("id = ?", noteID).
		UpdateColumn("views", gorm.Expr("views + 1")).Error; err != nil {
		return fmt.Errorf("increment views failed: %w", err)
	}
	return nil
}

func (r *NoteRepository) SetSummary(noteID uint, summary, points string) error {
	if err := r.db.Model(&model.Note{}).Where("id = ?", noteID).
		Updates(map[string]interface{}{"summary": summary, "points": points}).Error; err != nil {
		return fmt.Errorf("set summary failed: %w", err)
	}
	return nil
}

func (r *NoteRepository) DistinctSubjects() ([]string, error) {
	var subjects []string
	if err := r.db.Model(&model.Note{}).
		Distinct("subject").
		Order("subject ASC").
		Pluck("subject", &subjects).Error; err != nil {
		return nil, fmt.Errorf("list subjects failed: %w", err)
	}
	return subjects, nil
}
