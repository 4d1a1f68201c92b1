package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"noteally/internal/app"
	"noteally/internal/transport/http/response"
)

type mockSummarizer struct {
	mock.Mock
}

func (m *mockSummarizer) Summarize(ctx context.Context, input app.SummarizeInput) (*app.SummarizeResult, error) {
	args := m.Called(ctx, input)
	if result := args.Get(0); result != nil {
		return result.(*app.SummarizeResult), args.Error(1)
	}
	return nil, args.Error(1)
}

func newSummarizeRouter(summarizer Summarizer) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/api/v1/summarize", NewSummarizeHandler(summarizer).Summarize)
	return router
}

func postJSON(t *testing.T, router *gin.Engine, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/summarize", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) response.APIResponse {
	t.Helper()
	var envelope response.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	return envelope
}

func TestSummarizeHandlerJSONURL(t *testing.T) {
	summarizer := new(mockSummarizer)
	summarizer.On("Summarize", mock.Anything, app.SummarizeInput{PDFURL: "https://files.example.com/notes.pdf"}).
		Return(&app.SummarizeResult{Summary: "- bullet", Points: "1. Q?"}, nil)
	router := newSummarizeRouter(summarizer)

	w := postJSON(t, router, `{"pdf_url":"https://files.example.com/notes.pdf"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	envelope := decodeEnvelope(t, w)
	assert.Equal(t, response.CodeOK, envelope.Code)
	data, ok := envelope.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "- bullet", data["summary"])
	assert.Equal(t, "1. Q?", data["points"])
	summarizer.AssertExpectations(t)
}

func TestSummarizeHandlerMissingURL(t *testing.T) {
	summarizer := new(mockSummarizer)
	router := newSummarizeRouter(summarizer)

	w := postJSON(t, router, `{}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, response.CodeBadRequest, decodeEnvelope(t, w).Code)
	summarizer.AssertNotCalled(t, "Summarize", mock.Anything, mock.Anything)
}

func TestSummarizeHandlerInvalidURL(t *testing.T) {
	summarizer := new(mockSummarizer)
	router := newSummarizeRouter(summarizer)

	w := postJSON(t, router, `{"pdf_url":"not-a-url"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	summarizer.AssertNotCalled(t, "Summarize", mock.Anything, mock.Anything)
}

func TestSummarizeHandlerErrorMapping(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   int
	}{
		{"download failed", app.ErrDownloadFailed, http.StatusBadRequest, response.CodeDownloadFailed},
		{"unreadable pdf", app.ErrUnreadablePDF, http.StatusBadRequest, response.CodeUnreadablePDF},
		{"insufficient text", app.ErrInsufficientText, http.StatusBadRequest, response.CodeInsufficientText},
		{"generation failed", fmt.Errorf("%w: provider 500", app.ErrGenerationFailed), http.StatusBadGateway, response.CodeGenerationFailed},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			summarizer := new(mockSummarizer)
			summarizer.On("Summarize", mock.Anything, mock.Anything).Return(nil, tc.err)
			router := newSummarizeRouter(summarizer)

			w := postJSON(t, router, `{"pdf_url":"https://files.example.com/notes.pdf"}`)

			assert.Equal(t, tc.wantStatus, w.Code)
			assert.Equal(t, tc.wantCode, decodeEnvelope(t, w).Code)
		})
	}
}

func TestSummarizeHandlerMultipartUpload(t *testing.T) {
	payload := []byte("%PDF-1.4 stub")
	summarizer := new(mockSummarizer)
	summarizer.On("Summarize", mock.Anything, app.SummarizeInput{Data: payload}).
		Return(&app.SummarizeResult{Summary: "s", Points: "p"}, nil)
	router := newSummarizeRouter(summarizer)

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", "notes.pdf")
	require.NoError(t, err)
	_, err = part.Write(payload)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/summarize", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, response.CodeOK, decodeEnvelope(t, w).Code)
	summarizer.AssertExpectations(t)
}

func TestSummarizeHandlerMultipartRejectsNonPDF(t *testing.T) {
	summarizer := new(mockSummarizer)
	router := newSummarizeRouter(summarizer)

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", "notes.txt")
	require.NoError(t, err)
	_, err = part.Write([]byte("plain text"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/summarize", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	summarizer.AssertNotCalled(t, "Summarize", mock.Anything, mock.Anything)
}
