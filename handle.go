package ycd

import (
	"strconv"
	"strings"

	"github.com/rubpy/crawly"
)

//////////////////////////////////////////////////

// Handle identifies something a Watcher tracks: either an existing job, or a
// source URL for which a job is created on first pass.
type Handle struct {
	Type  HandleType
	Value string
	Kind  ContentKind
}

func (h Handle) Valid() bool {
	if h.Type == 0 || h.Value == "" {
		return false
	}

	if h.Type == HandleSourceURL && !h.Kind.Valid() {
		return false
	}

	return true
}

func (h Handle) Equal(handle crawly.Handle) bool {
	if hh, ok := handle.(Handle); ok {
		return hh == h
	}

	return false
}

func (h Handle) String() string {
	var s strings.Builder
	s.WriteRune('{')
	s.WriteString(h.Type.String())
	s.WriteString(":")
	s.WriteString(strconv.Quote(h.Value))
	if h.Kind != "" {
		s.WriteString(":")
		s.WriteString(h.Kind.String())
	}
	s.WriteRune('}')

	return s.String()
}

type HandleType uint

const (
	HandleDownloadID HandleType = (iota + 1)
	HandleSourceURL
)

func (ht HandleType) String() string {
	switch ht {
	case HandleDownloadID:
		return "DownloadID"
	case HandleSourceURL:
		return "SourceURL"
	}

	return ""
}

//////////////////////////////////////////////////

func JobID(id DownloadID) Handle {
	return Handle{Type: HandleDownloadID, Value: id.String()}
}

func SourceURL(sourceURL string, kind ContentKind) Handle {
	return Handle{Type: HandleSourceURL, Value: strings.TrimSpace(sourceURL), Kind: kind}
}
