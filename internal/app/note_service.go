package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"time"

	"noteally/internal/model"
)

var (
	ErrNoteNotFound = errors.New("note not found")
	ErrNotOwner     = errors.New("only the owner can delete a note")
	ErrUploadFailed = errors.New("file upload failed")
	ErrJobEnqueue   = errors.New("summary job enqueue failed")
)

type NoteStore interface {
	Create(note *model.Note) error
	GetByID(id uint) (*model.Note, error)
	ListShared(subject, search string) ([]model.Note, error)
	ListByUserID(userID uint) ([]model.Note, error)
	Delete(noteID uint) error
	HasLiked(noteID, userID uint) (bool, error)
	AddLike(noteID, userID uint) (int64, error)
	RemoveLike(noteID, userID uint) (int64, error)
	ListLikedUserIDs(noteID uint) ([]uint, error)
	IncrementViews(noteID uint) error
	SetSummary(noteID uint, summary, points string) error
	DistinctSubjects() ([]string, error)
}

type NoteFiles interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
	Remove(ctx context.Context, key string) error
}

type FeedCache interface {
	GetFeed(ctx context.Context) ([]model.Note, bool, error)
	SetFeed(ctx context.Context, notes []model.Note) error
	Invalidate(ctx context.Context) error
}

type Summarizer interface {
	Summarize(ctx context.Context, input SummarizeInput) (*SummarizeResult, error)
}

type SummaryJobPublisher interface {
	Publish(ctx context.Context, job model.SummaryJob) error
}

type NoteService struct {
	store      NoteStore
	files      NoteFiles
	cache      FeedCache
	publisher  SummaryJobPublisher
	summarizer Summarizer
}

type CreateNoteInput struct {
	UserID        uint
	UploaderEmail string
	Title         string
	Subject       string
	Filename      string
	Data          []byte
}

type DayCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

type DashboardResult struct {
	Notes        []model.Note `json:"notes"`
	TotalLikes   int64        `json:"total_likes"`
	TotalViews   int64        `json:"total_views"`
	UploadsByDay []DayCount   `json:"uploads_by_day"`
}

type LikeResult struct {
	Liked bool  `json:"liked"`
	Likes int64 `json:"likes"`
}

func NewNoteService(
	store NoteStore,
	files NoteFiles,
	cache FeedCache,
	publisher SummaryJobPublisher,
	summarizer Summarizer,
) *NoteService {
	return &NoteService{
		store:      store,
		files:      files,
		cache:      cache,
		publisher:  publisher,
		summarizer: summarizer,
	}
}

// Create uploads the PDF to blob storage, inserts the note record, then tries
// to generate the AI summary inline. A summarize failure leaves the note
// without a summary but does not fail the upload.
func (s *NoteService) Create(ctx context.Context, input CreateNoteInput) (*model.Note, error) {
	title := strings.TrimSpace(input.Title)
	subject := strings.TrimSpace(input.Subject)
	if input.UserID == 0 || title == "" || subject == "" || len(input.Data) == 0 {
		return nil, ErrInvalidInput
	}

	key := fmt.Sprintf("notes/%d/%d_%s", input.UserID, time.Now().UnixMilli(), sanitizeFilename(input.Filename))
	fileURL, err := s.files.Upload(ctx, key, input.Data, "application/pdf")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}

	note := &model.Note{
		Title:         title,
		Subject:       subject,
		FileKey:       key,
		FileURL:       fileURL,
		UserID:        input.UserID,
		UploaderEmail: input.UploaderEmail,
	}
	if err := s.store.Create(note); err != nil {
		return nil, err
	}
	s.invalidateFeed(ctx)

	if s.summarizer != nil {
		result, sumErr := s.summarizer.Summarize(ctx, SummarizeInput{Data: input.Data})
		if sumErr != nil {
			log.Printf("inline summary for note %d skipped: %v", note.ID, sumErr)
		} else if err := s.store.SetSummary(note.ID, result.Summary, result.Points); err != nil {
			log.Printf("save inline summary for note %d failed: %v", note.ID, err)
		} else {
			note.Summary = result.Summary
			note.Points = result.Points
			s.invalidateFeed(ctx)
		}
	}

	return note, nil
}

// ListShared returns the shared feed, newest first. The unfiltered feed is
// served from cache when clean; filtered queries always hit the database.
func (s *NoteService) ListShared(ctx context.Context, subject, search string) ([]model.Note, error) {
	unfiltered := subject == "" && search == ""
	if unfiltered && s.cache != nil {
		if cached, hit, err := s.cache.GetFeed(ctx); err == nil && hit {
			return cached, nil
		}
	}

	notes, err := s.store.ListShared(subject, search)
	if err != nil {
		return nil, err
	}
	for i := range notes {
		likedBy, likeErr := s.store.ListLikedUserIDs(notes[i].ID)
		if likeErr != nil {
			return nil, likeErr
		}
		notes[i].LikedBy = likedBy
	}

	if unfiltered && s.cache != nil {
		if err := s.cache.SetFeed(ctx, notes); err != nil {
			log.Printf("cache feed failed: %v", err)
		}
	}
	return notes, nil
}

func (s *NoteService) Subjects(ctx context.Context) ([]string, error) {
	return s.store.DistinctSubjects()
}

func (s *NoteService) Get(noteID uint) (*model.Note, error) {
	if noteID == 0 {
		return nil, ErrInvalidInput
	}
	note, err := s.store.GetByID(noteID)
	if err != nil {
		return nil, err
	}
	if note == nil {
		return nil, ErrNoteNotFound
	}
	likedBy, err := s.store.ListLikedUserIDs(note.ID)
	if err != nil {
		return nil, err
	}
	note.LikedBy = likedBy
	return note, nil
}

func (s *NoteService) Dashboard(userID uint) (*DashboardResult, error) {
	if userID == 0 {
		return nil, ErrInvalidInput
	}
	notes, err := s.store.ListByUserID(userID)
	if err != nil {
		return nil, err
	}

	result := &DashboardResult{
		Notes:        notes,
		UploadsByDay: make([]DayCount, 0, 7),
	}
	for _, note := range notes {
		result.TotalLikes += note.Likes
		result.TotalViews += note.Views
	}

	today := time.Now().Truncate(24 * time.Hour)
	counts := make(map[string]int, 7)
	for _, note := range notes {
		day := note.CreatedAt.Truncate(24 * time.Hour).Format("2006-01-02")
		counts[day]++
	}
	for i := 6; i >= 0; i-- {
		day := today.AddDate(0, 0, -i).Format("2006-01-02")
		result.UploadsByDay = append(result.UploadsByDay, DayCount{Date: day, Count: counts[day]})
	}
	return result, nil
}

func (s *NoteService) Delete(ctx context.Context, userID, noteID uint) error {
	if userID == 0 || noteID == 0 {
		return ErrInvalidInput
	}
	note, err := s.store.GetByID(noteID)
	if err != nil {
		return err
	}
	if note == nil {
		return ErrNoteNotFound
	}
	if note.UserID != userID {
		return ErrNotOwner
	}

	if err := s.store.Delete(noteID); err != nil {
		return err
	}
	s.invalidateFeed(ctx)

	if s.files != nil && note.FileKey != "" {
		if err := s.files.Remove(ctx, note.FileKey); err != nil {
			log.Printf("remove blob %q for note %d failed: %v", note.FileKey, noteID, err)
		}
	}
	return nil
}

// ToggleLike likes the note for userID, or removes the like if it already
// exists. Row and counter move together, so likes always equals the size of
// the liked-by set.
func (s *NoteService) ToggleLike(ctx context.Context, noteID, userID uint) (*LikeResult, error) {
	if noteID == 0 || userID == 0 {
		return nil, ErrInvalidInput
	}
	note, err := s.store.GetByID(noteID)
	if err != nil {
		return nil, err
	}
	if note == nil {
		return nil, ErrNoteNotFound
	}

	liked, err := s.store.HasLiked(noteID, userID)
	if err != nil {
		return nil, err
	}

	var likes int64
	if liked {
		likes, err = s.store.RemoveLike(noteID, userID)
	} else {
		likes, err = s.store.AddLike(noteID, userID)
	}
	if err != nil {
		return nil, err
	}
	s.invalidateFeed(ctx)

	return &LikeResult{Liked: !liked, Likes: likes}, nil
}

// RegisterView bumps the view counter by one. Repeated views by the same user
// all count; there is no dedup by viewer.
func (s *NoteService) RegisterView(ctx context.Context, noteID uint) error {
	if noteID == 0 {
		return ErrInvalidInput
	}
	note, err := s.store.GetByID(noteID)
	if err != nil {
		return err
	}
	if note == nil {
		return ErrNoteNotFound
	}
	if err := s.store.IncrementViews(noteID); err != nil {
		return err
	}
	s.invalidateFeed(ctx)
	return nil
}

// RequestSummary enqueues asynchronous AI summary generation for the note.
// The worker writes the result back onto the record when it completes.
func (s *NoteService) RequestSummary(ctx context.Context, noteID uint) error {
	if noteID == 0 {
		return ErrInvalidInput
	}
	note, err := s.store.GetByID(noteID)
	if err != nil {
		return err
	}
	if note == nil {
		return ErrNoteNotFound
	}
	if s.publisher == nil {
		return ErrJobEnqueue
	}
	if err := s.publisher.Publish(ctx, model.SummaryJob{NoteID: note.ID, PDFURL: note.FileURL}); err != nil {
		return fmt.Errorf("%w: %v", ErrJobEnqueue, err)
	}
	return nil
}

// CompleteSummary persists a finished summary onto the note. Used by the
// summary worker as its completion callback.
func (s *NoteService) CompleteSummary(ctx context.Context, noteID uint, result *SummarizeResult) error {
	if noteID == 0 || result == nil {
		return ErrInvalidInput
	}
	if err := s.store.SetSummary(noteID, result.Summary, result.Points); err != nil {
		return err
	}
	s.invalidateFeed(ctx)
	return nil
}

func (s *NoteService) invalidateFeed(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		log.Printf("invalidate feed cache failed: %v", err)
	}
}

func sanitizeFilename(name string) string {
	base := filepath.Base(strings.TrimSpace(name))
	if base == "" || base == "." || base == string(filepath.Separator) {
		return "note.pdf"
	}
	return strings.ReplaceAll(base, " ", "_")
}
