// Package ytlink inspects YouTube URLs: it tells which kind of content a link
// points to and resolves channel pages to canonical channel IDs.
package ytlink

import (
	"errors"
	"net/url"
	"strconv"
	"strings"
)

//////////////////////////////////////////////////

type Kind string

const (
	KindVideo     Kind = "video"
	KindShort     Kind = "short"
	KindLive      Kind = "live"
	KindPlaylist  Kind = "playlist"
	KindChannel   Kind = "channel"
	KindCommunity Kind = "community"
)

func (k Kind) String() string {
	return string(k)
}

// Link is a parsed YouTube URL. For channels, ID may be a handle ("@name") or a
// legacy custom name instead of a channel ID; Resolver maps those to an ID.
type Link struct {
	Kind Kind
	ID   string
	URL  string
}

func (l Link) String() string {
	var s strings.Builder
	s.WriteString("{Link:[kind:")
	s.WriteString(l.Kind.String())
	s.WriteString(", id:")
	s.WriteString(strconv.Quote(l.ID))
	s.WriteString("]}")

	return s.String()
}

// HasChannelID reports whether ID is a canonical channel ID rather than a
// handle or custom name.
func (l Link) HasChannelID() bool {
	return (l.Kind == KindChannel || l.Kind == KindCommunity) && IsValidChannelID(l.ID) && strings.HasPrefix(l.ID, "UC")
}

var (
	InvalidURL        = errors.New("invalid URL")
	UnsupportedHost   = errors.New("not a YouTube URL")
	UnsupportedPath   = errors.New("unsupported YouTube URL")
	InvalidVideoID    = errors.New("invalid video ID")
	InvalidChannelID  = errors.New("invalid channel ID")
	InvalidPlaylistID = errors.New("invalid playlist ID")
	InvalidHandle     = errors.New("invalid channel handle")
)

var hosts = map[string]bool{
	"youtube.com":       true,
	"www.youtube.com":   true,
	"m.youtube.com":     true,
	"music.youtube.com": true,
	"youtu.be":          true,
	"www.youtu.be":      true,
}

// Parse classifies a YouTube URL. A missing scheme is accepted.
func Parse(rawURL string) (link Link, err error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		err = InvalidURL
		return
	}

	if !strings.Contains(rawURL, "://") {
		rawURL = "https://" + rawURL
	}

	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		err = InvalidURL
		return
	}

	host := strings.ToLower(u.Hostname())
	if !hosts[host] {
		err = UnsupportedHost
		return
	}

	link.URL = u.String()
	segments := pathSegments(u.Path)

	if host == "youtu.be" || host == "www.youtu.be" {
		if len(segments) == 0 {
			err = UnsupportedPath
			return
		}

		return videoLink(link, KindVideo, segments[0])
	}

	if len(segments) == 0 {
		err = UnsupportedPath
		return
	}

	head := segments[0]
	switch {
	case head == "watch":
		return videoLink(link, KindVideo, u.Query().Get("v"))

	case head == "shorts" && len(segments) > 1:
		return videoLink(link, KindShort, segments[1])

	case head == "live" && len(segments) > 1:
		return videoLink(link, KindLive, segments[1])

	case head == "embed" && len(segments) > 1:
		return videoLink(link, KindVideo, segments[1])

	case head == "playlist":
		id := u.Query().Get("list")
		if !IsValidPlaylistID(id) {
			err = InvalidPlaylistID
			return
		}

		link.Kind, link.ID = KindPlaylist, id
		return

	case head == "post" && len(segments) > 1:
		link.Kind, link.ID = KindCommunity, segments[1]
		return

	case strings.HasPrefix(head, "@"):
		if !IsValidHandle(head) {
			err = InvalidHandle
			return
		}

		link.Kind, link.ID = channelKind(segments[1:]), head
		return

	case head == "channel" && len(segments) > 1:
		if !IsValidChannelID(segments[1]) {
			err = InvalidChannelID
			return
		}

		link.Kind, link.ID = channelKind(segments[2:]), segments[1]
		return

	case (head == "c" || head == "user") && len(segments) > 1:
		link.Kind, link.ID = channelKind(segments[2:]), segments[1]
		return
	}

	err = UnsupportedPath
	return
}

func videoLink(link Link, kind Kind, id string) (Link, error) {
	if !IsValidVideoID(id) {
		return Link{}, InvalidVideoID
	}

	link.Kind, link.ID = kind, id
	return link, nil
}

func channelKind(rest []string) Kind {
	if len(rest) > 0 && (rest[0] == "community" || rest[0] == "posts") {
		return KindCommunity
	}

	return KindChannel
}

func pathSegments(p string) (segments []string) {
	for _, s := range strings.Split(p, "/") {
		if s != "" {
			segments = append(segments, s)
		}
	}

	return
}

// Infer returns the content kind name a link should be downloaded as.
func Infer(rawURL string) (kind Kind, err error) {
	link, err := Parse(rawURL)
	if err != nil {
		return
	}

	return link.Kind, nil
}
