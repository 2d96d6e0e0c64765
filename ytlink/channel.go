package ytlink

import (
	"bytes"
	"encoding/xml"
	"errors"
	"strings"
	"time"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

//////////////////////////////////////////////////

var NoChannelID = errors.New("no channel ID found in page")

// ParseChannelPage extracts the channel ID from the <link> tags of a channel
// page (canonical URL, or the RSS alternate link).
func ParseChannelPage(b []byte) (channelID string, err error) {
	if len(b) == 0 {
		return "", errors.New("b is empty")
	}

	root, err := html.Parse(bytes.NewReader(b))
	if err != nil {
		return "", err
	}

	var walk func(n *html.Node) bool
	walk = func(n *html.Node) bool {
		if n.Type == html.ElementNode && n.DataAtom == atom.Link {
			if id := channelIDFromLinkTag(n.Attr); id != "" {
				channelID = id
				return true
			}
		}

		if n.Type == html.ElementNode && n.DataAtom == atom.Body {
			return false
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if walk(c) {
				return true
			}
		}

		return false
	}

	if !walk(root) {
		return "", NoChannelID
	}

	return channelID, nil
}

func channelIDFromLinkTag(attrs []html.Attribute) string {
	var rel, itemprop, typ, href string
	for _, attr := range attrs {
		switch strings.ToLower(attr.Key) {
		case "rel":
			rel = strings.ToLower(attr.Val)
		case "itemprop":
			itemprop = strings.ToLower(attr.Val)
		case "type":
			typ = strings.ToLower(attr.Val)
		case "href":
			href = strings.TrimSpace(attr.Val)
		}
	}

	var candidate string
	switch {
	case rel == "canonical" || itemprop == "url":
		candidate = after(href, "channel/", "/")
	case rel == "alternate" && strings.Contains(typ, "rss"):
		candidate = after(href, "channel_id=", "&")
	}

	if IsValidChannelID(candidate) {
		return candidate
	}

	return ""
}

func after(s string, marker string, terminator string) string {
	pos := strings.Index(s, marker)
	if pos < 0 {
		return ""
	}

	s = s[pos+len(marker):]
	if pos = strings.Index(s, terminator); pos >= 0 {
		s = s[:pos]
	}

	return s
}

//////////////////////////////////////////////////

type feedEntry struct {
	VideoID   string `xml:"videoId"`
	ChannelID string `xml:"channelId"`
	Title     string `xml:"title"`
	Published string `xml:"published"`
}

type feed struct {
	XMLName xml.Name    `xml:"feed"`
	Title   string      `xml:"title"`
	Entries []feedEntry `xml:"entry"`
}

// FeedVideo is one entry of a channel's uploads feed.
type FeedVideo struct {
	ID        string
	ChannelID string
	Title     string
	Published time.Time
}

// ParseChannelFeed reads the Atom uploads feed of a channel
// (feeds/videos.xml). Duplicate entries are dropped.
func ParseChannelFeed(b []byte) (videos []FeedVideo, err error) {
	if len(b) == 0 {
		return nil, errors.New("b is empty")
	}

	var f feed
	if err = xml.Unmarshal(b, &f); err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(f.Entries))
	videos = make([]FeedVideo, 0, len(f.Entries))
	for _, e := range f.Entries {
		if !IsValidVideoID(e.VideoID) || seen[e.VideoID] {
			continue
		}
		seen[e.VideoID] = true

		published, _ := time.Parse(time.RFC3339, e.Published)
		videos = append(videos, FeedVideo{
			ID:        e.VideoID,
			ChannelID: e.ChannelID,
			Title:     e.Title,
			Published: published,
		})
	}

	return
}
