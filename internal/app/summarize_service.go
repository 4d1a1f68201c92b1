package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"noteally/internal/pkg/pdfextract"
)

const (
	// minExtractedChars guards against image-only/scanned PDFs with no text
	// layer, which cannot usefully be summarized. No OCR fallback.
	minExtractedChars = 50
	// promptCharBudget bounds cost and latency of the generative call.
	// Truncating mid-sentence is accepted.
	promptCharBudget = 6000

	maxPDFBytes = 10 << 20 // 10 MB
)

var (
	ErrDownloadFailed   = errors.New("failed to download pdf")
	ErrUnreadablePDF    = errors.New("pdf cannot be parsed")
	ErrInsufficientText = errors.New("could not extract text or pdf is too short")
	ErrGenerationFailed = errors.New("text generation failed")
)

// Generator sends one prompt to the generative text provider.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type SummarizeInput struct {
	PDFURL string
	Data   []byte
}

type SummarizeResult struct {
	Summary string `json:"summary"`
	Points  string `json:"points"`
}

// SummarizeService runs the pipeline: obtain bytes, extract text, truncate,
// then two sequential generation calls. All-or-nothing: either both fields
// come back or the whole call fails.
type SummarizeService struct {
	generator   Generator
	extractText func(data []byte) (string, error)
	httpClient  *http.Client
}

func NewSummarizeService(generator Generator) *SummarizeService {
	return &SummarizeService{
		generator:   generator,
		extractText: pdfextract.ExtractText,
		httpClient:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (s *SummarizeService) Summarize(ctx context.Context, input SummarizeInput) (*SummarizeResult, error) {
	data := input.Data
	if len(data) == 0 {
		url := strings.TrimSpace(input.PDFURL)
		if url == "" {
			return nil, ErrInvalidInput
		}
		downloaded, err := s.download(ctx, url)
		if err != nil {
			return nil, err
		}
		data = downloaded
	}

	text, err := s.extractText(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadablePDF, err)
	}
	text = strings.TrimSpace(text)
	if len(text) < minExtractedChars {
		return nil, ErrInsufficientText
	}

	summary, err := s.generator.Generate(ctx, buildSummaryPrompt(text))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}
	points, err := s.generator.Generate(ctx, buildQuestionsPrompt(text))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}

	return &SummarizeResult{Summary: summary, Points: points}, nil
}

func (s *SummarizeService) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDownloadFailed, err)
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDownloadFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: status %d", ErrDownloadFailed, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxPDFBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDownloadFailed, err)
	}
	if len(data) > maxPDFBytes {
		return nil, fmt.Errorf("%w: file exceeds %d bytes", ErrDownloadFailed, maxPDFBytes)
	}
	return data, nil
}

func buildSummaryPrompt(text string) string {
	return fmt.Sprintf("Summarize the following study notes in 3-5 bullet points:\n-----\n%s\n-----", truncateForPrompt(text))
}

func buildQuestionsPrompt(text string) string {
	return fmt.Sprintf("Generate 4-6 possible exam questions based on these notes:\n-----\n%s\n-----", truncateForPrompt(text))
}

func truncateForPrompt(text string) string {
	if len(text) <= promptCharBudget {
		return text
	}
	return text[:promptCharBudget]
}
