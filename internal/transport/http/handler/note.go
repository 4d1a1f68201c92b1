package handler

import (
	"errors"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"noteally/internal/app"
	"noteally/internal/transport/http/response"
)

const maxPDFSize = 10 << 20 // 10 MB

type NoteHandler struct {
	noteService *app.NoteService
	authService *app.AuthService
}

func NewNoteHandler(noteService *app.NoteService, authService *app.AuthService) *NoteHandler {
	return &NoteHandler{
		noteService: noteService,
		authService: authService,
	}
}

func (h *NoteHandler) List(c *gin.Context) {
	subject := strings.TrimSpace(c.Query("subject"))
	search := strings.TrimSpace(c.Query("search"))

	notes, err := h.noteService.ListShared(c.Request.Context(), subject, search)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "list notes failed")
		return
	}
	response.OK(c, notes)
}

func (h *NoteHandler) Get(c *gin.Context) {
	noteID, err := parseUintParam(c, "id")
	if err != nil || noteID == 0 {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid note id")
		return
	}

	note, err := h.noteService.Get(noteID)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrNoteNotFound):
			response.Error(c, http.StatusNotFound, response.CodeNoteNotFound, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "fetch note failed")
		}
		return
	}
	response.OK(c, note)
}

func (h *NoteHandler) Subjects(c *gin.Context) {
	subjects, err := h.noteService.Subjects(c.Request.Context())
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "list subjects failed")
		return
	}
	response.OK(c, subjects)
}

// Create accepts a multipart form with "title", "subject" and "file" (PDF).
func (h *NoteHandler) Create(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	title := strings.TrimSpace(c.PostForm("title"))
	subject := strings.TrimSpace(c.PostForm("subject"))
	if title == "" || subject == "" {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "title and subject are required")
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "missing file")
		return
	}
	if file.Size > maxPDFSize {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "file too large (max 10MB)")
		return
	}
	if strings.ToLower(filepath.Ext(file.Filename)) != ".pdf" {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "only PDF files are allowed")
		return
	}

	data, err := readMultipartFile(file)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "failed to read file")
		return
	}

	uploaderEmail := ""
	if user, userErr := h.authService.GetUserByID(userID); userErr == nil && user != nil {
		uploaderEmail = user.Email
	}

	note, err := h.noteService.Create(c.Request.Context(), app.CreateNoteInput{
		UserID:        userID,
		UploaderEmail: uploaderEmail,
		Title:         title,
		Subject:       subject,
		Filename:      file.Filename,
		Data:          data,
	})
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		case errors.Is(err, app.ErrUploadFailed):
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "file upload failed")
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "create note failed")
		}
		return
	}

	response.OK(c, note)
}

func (h *NoteHandler) Mine(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	dashboard, err := h.noteService.Dashboard(userID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "load dashboard failed")
		return
	}
	response.OK(c, dashboard)
}

func (h *NoteHandler) Delete(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	noteID, err := parseUintParam(c, "id")
	if err != nil || noteID == 0 {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid note id")
		return
	}

	if err := h.noteService.Delete(c.Request.Context(), userID, noteID); err != nil {
		switch {
		case errors.Is(err, app.ErrNoteNotFound):
			response.Error(c, http.StatusNotFound, response.CodeNoteNotFound, err.Error())
		case errors.Is(err, app.ErrNotOwner):
			response.Error(c, http.StatusForbidden, response.CodeForbidden, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "delete note failed")
		}
		return
	}

	response.OK(c, gin.H{"deleted_note_id": noteID})
}

func (h *NoteHandler) ToggleLike(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	noteID, err := parseUintParam(c, "id")
	if err != nil || noteID == 0 {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid note id")
		return
	}

	result, err := h.noteService.ToggleLike(c.Request.Context(), noteID, userID)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrNoteNotFound):
			response.Error(c, http.StatusNotFound, response.CodeNoteNotFound, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "update like failed")
		}
		return
	}

	response.OK(c, result)
}

// RegisterView counts one download-link activation. No auth and no dedup.
func (h *NoteHandler) RegisterView(c *gin.Context) {
	noteID, err := parseUintParam(c, "id")
	if err != nil || noteID == 0 {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid note id")
		return
	}

	if err := h.noteService.RegisterView(c.Request.Context(), noteID); err != nil {
		switch {
		case errors.Is(err, app.ErrNoteNotFound):
			response.Error(c, http.StatusNotFound, response.CodeNoteNotFound, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "update view count failed")
		}
		return
	}

	response.OK(c, gin.H{"note_id": noteID})
}

// RequestSummary queues asynchronous AI summary generation for a note.
func (h *NoteHandler) RequestSummary(c *gin.Context) {
	if _, ok := getUserIDFromContext(c); !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	noteID, err := parseUintParam(c, "id")
	if err != nil || noteID == 0 {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid note id")
		return
	}

	if err := h.noteService.RequestSummary(c.Request.Context(), noteID); err != nil {
		switch {
		case errors.Is(err, app.ErrNoteNotFound):
			response.Error(c, http.StatusNotFound, response.CodeNoteNotFound, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "queue summary failed")
		}
		return
	}

	c.JSON(http.StatusAccepted, response.APIResponse{
		Code:    response.CodeOK,
		Message: "ok",
		Data:    gin.H{"note_id": noteID, "status": "queued"},
	})
}
