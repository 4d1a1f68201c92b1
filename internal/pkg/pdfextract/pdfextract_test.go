package pdfextract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractTextEmptyInput(t *testing.T) {
	text, err := ExtractText(nil)
	assert.NoError(t, err)
	assert.Empty(t, text)

	text, err = ExtractText([]byte{})
	assert.NoError(t, err)
	assert.Empty(t, text)
}

func TestExtractTextGarbageInput(t *testing.T) {
	_, err := ExtractText([]byte("this is definitely not a pdf document"))
	assert.Error(t, err)
}

func TestExtractTextTruncatedHeader(t *testing.T) {
	_, err := ExtractText([]byte("%PDF-1.7"))
	assert.Error(t, err)
}
