package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubGenerator struct {
	prompts   []string
	responses []string
	failAt    int // 1-based call index that fails; 0 means never
}

func (g *stubGenerator) Generate(_ context.Context, prompt string) (string, error) {
	g.prompts = append(g.prompts, prompt)
	call := len(g.prompts)
	if g.failAt != 0 && call == g.failAt {
		return "", errors.New("provider unavailable")
	}
	if call <= len(g.responses) {
		return g.responses[call-1], nil
	}
	return fmt.Sprintf("generated-%d", call), nil
}

func newStubbedService(gen Generator, text string, extractErr error) *SummarizeService {
	s := NewSummarizeService(gen)
	s.extractText = func(data []byte) (string, error) {
		if extractErr != nil {
			return "", extractErr
		}
		return text, nil
	}
	return s
}

func TestSummarizeEndToEnd(t *testing.T) {
	text := strings.Repeat("lorem ipsum dolor sit amet ", 8) // well over 50 chars, under budget
	gen := &stubGenerator{responses: []string{"- point A\n- point B", "1. Q?\n2. Q?"}}
	s := newStubbedService(gen, text, nil)

	result, err := s.Summarize(context.Background(), SummarizeInput{Data: []byte("%PDF-stub")})
	require.NoError(t, err)
	assert.Equal(t, "- point A\n- point B", result.Summary)
	assert.Equal(t, "1. Q?\n2. Q?", result.Points)

	require.Len(t, gen.prompts, 2)
	assert.Contains(t, gen.prompts[0], strings.TrimSpace(text))
	assert.Contains(t, gen.prompts[1], strings.TrimSpace(text))
	assert.Contains(t, gen.prompts[0], "3-5 bullet points")
	assert.Contains(t, gen.prompts[1], "exam questions")
}

func TestSummarizeInsufficientText(t *testing.T) {
	gen := &stubGenerator{}
	s := newStubbedService(gen, "too short", nil)

	_, err := s.Summarize(context.Background(), SummarizeInput{Data: []byte("%PDF-stub")})
	assert.ErrorIs(t, err, ErrInsufficientText)
	assert.Empty(t, gen.prompts, "no generation call should be made for sparse text")
}

func TestSummarizeUnreadablePDF(t *testing.T) {
	gen := &stubGenerator{}
	s := newStubbedService(gen, "", errors.New("bad xref table"))

	_, err := s.Summarize(context.Background(), SummarizeInput{Data: []byte("not a pdf")})
	assert.ErrorIs(t, err, ErrUnreadablePDF)
	assert.Empty(t, gen.prompts)
}

func TestSummarizeMissingInput(t *testing.T) {
	s := newStubbedService(&stubGenerator{}, "", nil)

	_, err := s.Summarize(context.Background(), SummarizeInput{})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestSummarizeDownloadFailed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	extracted := false
	gen := &stubGenerator{}
	s := NewSummarizeService(gen)
	s.extractText = func(data []byte) (string, error) {
		extracted = true
		return "", nil
	}

	_, err := s.Summarize(context.Background(), SummarizeInput{PDFURL: server.URL + "/missing.pdf"})
	assert.ErrorIs(t, err, ErrDownloadFailed)
	assert.False(t, extracted, "extraction must not run when the download fails")
	assert.Empty(t, gen.prompts)
}

func TestSummarizeUnreachableURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {}))
	server.Close()

	s := newStubbedService(&stubGenerator{}, "", nil)
	_, err := s.Summarize(context.Background(), SummarizeInput{PDFURL: server.URL + "/notes.pdf"})
	assert.ErrorIs(t, err, ErrDownloadFailed)
}

func TestSummarizeDownloadsFromURL(t *testing.T) {
	payload := []byte("%PDF-1.4 fake body")
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write(payload)
	}))
	defer server.Close()

	text := strings.Repeat("network notes ", 10)
	var seen []byte
	gen := &stubGenerator{responses: []string{"s", "p"}}
	s := NewSummarizeService(gen)
	s.extractText = func(data []byte) (string, error) {
		seen = data
		return text, nil
	}

	result, err := s.Summarize(context.Background(), SummarizeInput{PDFURL: server.URL + "/notes.pdf"})
	require.NoError(t, err)
	assert.Equal(t, payload, seen)
	assert.Equal(t, "s", result.Summary)
	assert.Equal(t, "p", result.Points)
}

func TestSummarizeAllOrNothing(t *testing.T) {
	text := strings.Repeat("abc ", 50)
	gen := &stubGenerator{responses: []string{"- point A"}, failAt: 2}
	s := newStubbedService(gen, text, nil)

	result, err := s.Summarize(context.Background(), SummarizeInput{Data: []byte("%PDF-stub")})
	assert.ErrorIs(t, err, ErrGenerationFailed)
	assert.Nil(t, result, "no partial result when the second call fails")
	assert.Len(t, gen.prompts, 2)
}

func TestSummarizeFirstCallFailureSkipsSecond(t *testing.T) {
	text := strings.Repeat("abc ", 50)
	gen := &stubGenerator{failAt: 1}
	s := newStubbedService(gen, text, nil)

	_, err := s.Summarize(context.Background(), SummarizeInput{Data: []byte("%PDF-stub")})
	assert.ErrorIs(t, err, ErrGenerationFailed)
	assert.Len(t, gen.prompts, 1)
}

func TestPromptTruncation(t *testing.T) {
	long := strings.Repeat("x", promptCharBudget+1000)
	prompt := buildSummaryPrompt(long)

	assert.Contains(t, prompt, long[:promptCharBudget])
	assert.NotContains(t, prompt, strings.Repeat("x", promptCharBudget+1))
}

func TestPromptUnderBudgetKeptVerbatim(t *testing.T) {
	text := strings.Repeat("y", 200)
	assert.Contains(t, buildSummaryPrompt(text), text)
	assert.Contains(t, buildQuestionsPrompt(text), text)
}

func TestPromptBuildingIsDeterministic(t *testing.T) {
	text := strings.Repeat("thermodynamics ", 100)
	assert.Equal(t, buildSummaryPrompt(text), buildSummaryPrompt(text))
	assert.Equal(t, buildQuestionsPrompt(text), buildQuestionsPrompt(text))
}
