package ycd

import (
	"mime"
	"strings"
)

//////////////////////////////////////////////////

// ReturnFormat selects how a finished download is handed back.
type ReturnFormat string

const (
	// ReturnJSON parses the comments into one item per comment.
	ReturnJSON ReturnFormat = "json"
	// ReturnFile attaches the result as a binary file.
	ReturnFile ReturnFormat = "file"
)

func (f ReturnFormat) Valid() bool {
	return f == ReturnJSON || f == ReturnFile
}

//////////////////////////////////////////////////

// FileFormat is the MIME type requested through the Accept header.
type FileFormat string

const (
	FormatCSV   FileFormat = "text/csv"
	FormatExcel FileFormat = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	FormatHTML  FileFormat = "text/html"
	FormatJSON  FileFormat = "application/json"
	FormatText  FileFormat = "text/plain"
	FormatZip   FileFormat = "application/zip"
)

// FileFormats lists the formats a caller may request. Zip is only ever
// returned by the server, for bulk content kinds.
var FileFormats = []FileFormat{
	FormatCSV,
	FormatExcel,
	FormatHTML,
	FormatJSON,
	FormatText,
}

func (f FileFormat) Valid() bool {
	for _, ff := range FileFormats {
		if f == ff {
			return true
		}
	}

	return false
}

func (f FileFormat) String() string {
	return string(f)
}

// DefaultExtension is used for MIME types missing from the table.
const DefaultExtension = "bin"

var extensions = map[string]string{
	string(FormatJSON):  "json",
	string(FormatCSV):   "csv",
	string(FormatHTML):  "html",
	string(FormatText):  "txt",
	string(FormatExcel): "xlsx",
	string(FormatZip):   "zip",
}

// Extension maps a MIME type to the file extension used for attachment names.
// Parameters such as charset are ignored.
func Extension(mimeType string) string {
	mt := strings.ToLower(strings.TrimSpace(mimeType))
	if parsed, _, err := mime.ParseMediaType(mt); err == nil {
		mt = parsed
	}

	if ext, ok := extensions[mt]; ok {
		return ext
	}

	return DefaultExtension
}

// ParseFileFormat accepts either a MIME type or a short name (csv, xlsx, html,
// json, txt).
func ParseFileFormat(s string) (FileFormat, error) {
	s = strings.ToLower(strings.TrimSpace(s))

	for _, f := range FileFormats {
		if s == string(f) || s == extensions[string(f)] {
			return f, nil
		}
	}

	switch s {
	case "excel":
		return FormatExcel, nil
	case "text":
		return FormatText, nil
	}

	return "", InvalidFileFormat
}

func isJSONContentType(contentType string) bool {
	return strings.Contains(contentType, "application/json")
}

func isZipContentType(contentType string) bool {
	return strings.Contains(contentType, "zip")
}
