package ycd

import (
	"errors"
	"net/url"
	"strings"
)

//////////////////////////////////////////////////

var (
	InvalidURL          = errors.New("invalid URL")
	InvalidContentKind  = errors.New("invalid content type")
	InvalidFileFormat   = errors.New("invalid file format")
	InvalidReturnFormat = errors.New("invalid return format")
	InvalidDownloadID   = errors.New("invalid download ID")
	InvalidOperation    = errors.New("invalid operation")
)

func isValidHTTPURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}

	return u.Host != ""
}

func downloadPath(id DownloadID, suffix ...string) string {
	var s strings.Builder
	s.WriteString("v1/downloads/")
	s.WriteString(url.PathEscape(id.String()))

	for _, part := range suffix {
		s.WriteRune('/')
		s.WriteString(part)
	}

	return s.String()
}

func attachmentName(id DownloadID, ext string) string {
	return "download_" + id.String() + "." + ext
}
