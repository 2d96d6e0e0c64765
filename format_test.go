package ycd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtension(t *testing.T) {
	tests := []struct {
		mime string
		want string
	}{
		{"application/json", "json"},
		{"text/csv", "csv"},
		{"text/html", "html"},
		{"text/plain", "txt"},
		{"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", "xlsx"},
		{"application/zip", "zip"},
		{"text/csv; charset=utf-8", "csv"},
		{"Application/JSON", "json"},
		{"application/octet-stream", DefaultExtension},
		{"", DefaultExtension},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Extension(tt.mime), tt.mime)
	}
}

func TestParseFileFormat(t *testing.T) {
	tests := map[string]FileFormat{
		"csv":       FormatCSV,
		"text/csv":  FormatCSV,
		"xlsx":      FormatExcel,
		"excel":     FormatExcel,
		"HTML":      FormatHTML,
		"json":      FormatJSON,
		"txt":       FormatText,
		"text":      FormatText,
		"text/html": FormatHTML,
	}

	for in, want := range tests {
		got, err := ParseFileFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseFileFormat("zip")
	assert.ErrorIs(t, err, InvalidFileFormat)
	assert.False(t, FormatZip.Valid())
}

func TestAttachmentName(t *testing.T) {
	assert.Equal(t, "download_abc.zip", attachmentName("abc", "zip"))
	assert.Equal(t, "v1/downloads/a%2Fb/save", downloadPath("a/b", "save"))
	assert.Equal(t, "v1/downloads/12", downloadPath("12"))
}
