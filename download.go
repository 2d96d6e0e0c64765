package ycd

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
)

//////////////////////////////////////////////////

// Status is the remote state of a download job.
type Status string

const (
	StatusCreated     Status = "created"
	StatusDownloading Status = "downloading"
	StatusFinished    Status = "finished"
	StatusError       Status = "error"
)

// Pending reports whether the job is still being worked on remotely.
func (s Status) Pending() bool {
	return s == StatusCreated || s == StatusDownloading
}

// Terminal reports whether polling must stop.
func (s Status) Terminal() bool {
	return s == StatusFinished || s == StatusError
}

func (s Status) String() string {
	return string(s)
}

//////////////////////////////////////////////////

// ContentKind names the kind of YouTube content a job downloads comments from.
type ContentKind string

const (
	ContentChannel         ContentKind = "channel"
	ContentChannelDetails  ContentKind = "channel-details"
	ContentCommunity       ContentKind = "community"
	ContentCommunityImages ContentKind = "community-images"
	ContentCustomList      ContentKind = "custom-list"
	ContentLive            ContentKind = "live"
	ContentPlaylist        ContentKind = "playlist"
	ContentShort           ContentKind = "short"
	ContentVideo           ContentKind = "video"
)

var ContentKinds = []ContentKind{
	ContentChannel,
	ContentChannelDetails,
	ContentCommunity,
	ContentCommunityImages,
	ContentCustomList,
	ContentLive,
	ContentPlaylist,
	ContentShort,
	ContentVideo,
}

func (k ContentKind) Valid() bool {
	for _, kk := range ContentKinds {
		if k == kk {
			return true
		}
	}

	return false
}

func (k ContentKind) String() string {
	return string(k)
}

// ParseContentKind accepts a kind name case-insensitively.
func ParseContentKind(s string) (ContentKind, error) {
	k := ContentKind(strings.ToLower(strings.TrimSpace(s)))
	if !k.Valid() {
		return "", InvalidContentKind
	}

	return k, nil
}

//////////////////////////////////////////////////

// DownloadID is the opaque job identifier. The API is free to send it as a
// JSON string or number.
type DownloadID string

func (id *DownloadID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}

	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}

		*id = DownloadID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return errors.New("download id is neither a string nor a number")
	}

	*id = DownloadID(n.String())
	return nil
}

func (id DownloadID) String() string {
	return string(id)
}

// Download is a remote download job. Raw keeps every field the API returned,
// including the ones not mapped onto the struct.
type Download struct {
	ID          DownloadID  `json:"id"`
	Status      Status      `json:"status"`
	URL         string      `json:"url,omitempty"`
	ContentType ContentKind `json:"contentType,omitempty"`

	Raw map[string]any `json:"-"`
}

type createDownloadRequest struct {
	URL         string      `json:"url"`
	ContentType ContentKind `json:"contentType"`
}

type listDownloadsResponse struct {
	Data []json.RawMessage `json:"data"`
}

func decodeDownload(b []byte) (*Download, error) {
	var dl Download
	if err := json.Unmarshal(b, &dl); err != nil {
		return nil, err
	}

	if err := json.Unmarshal(b, &dl.Raw); err != nil {
		return nil, err
	}

	return &dl, nil
}
