package handler

import (
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"noteally/internal/app"
	"noteally/internal/transport/http/response"
)

// Summarizer runs the PDF summarization pipeline.
type Summarizer interface {
	Summarize(ctx context.Context, input app.SummarizeInput) (*app.SummarizeResult, error)
}

type SummarizeHandler struct {
	summarizer Summarizer
}

type SummarizeRequest struct {
	PDFURL string `json:"pdf_url" binding:"required,url"`
}

func NewSummarizeHandler(summarizer Summarizer) *SummarizeHandler {
	return &SummarizeHandler{summarizer: summarizer}
}

// Summarize accepts either JSON {"pdf_url": ...} or a multipart form with a
// "file" field, and holds the request open for the whole pipeline.
func (h *SummarizeHandler) Summarize(c *gin.Context) {
	var input app.SummarizeInput

	if strings.HasPrefix(c.ContentType(), "multipart/form-data") {
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
		input.Data = data
	} else {
		var req SummarizeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "no pdf url provided")
			return
		}
		input.PDFURL = req.PDFURL
	}

	result, err := h.summarizer.Summarize(c.Request.Context(), input)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "no pdf url provided")
		case errors.Is(err, app.ErrDownloadFailed):
			response.Error(c, http.StatusBadRequest, response.CodeDownloadFailed, "failed to download pdf")
		case errors.Is(err, app.ErrUnreadablePDF):
			response.Error(c, http.StatusBadRequest, response.CodeUnreadablePDF, "pdf cannot be parsed")
		case errors.Is(err, app.ErrInsufficientText):
			response.Error(c, http.StatusBadRequest, response.CodeInsufficientText, "could not extract text or pdf is too short")
		case errors.Is(err, app.ErrGenerationFailed):
			response.Error(c, http.StatusBadGateway, response.CodeGenerationFailed, "ai generation failed")
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "summarize failed")
		}
		return
	}

	response.OK(c, result)
}

func readMultipartFile(file *multipart.FileHeader) ([]byte, error) {
	f, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}
