package ytlink

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/rubpy/crawly/cclient"
	"github.com/rubpy/crawly/csync"
)

//////////////////////////////////////////////////

const DefaultFeedURL = "https://www.youtube.com/feeds/videos.xml"

// Resolver fetches YouTube pages to turn handles and custom names into channel
// IDs. Resolved IDs are cached per URL.
type Resolver struct {
	client cclient.Client

	// Uploads feed endpoint; overridable for tests.
	FeedURL string

	channelIDCache csync.Map[string, string]
}

func NewResolver(client cclient.Client) (r *Resolver, err error) {
	if client == nil {
		var bc *cclient.BasicClient
		bc, err = cclient.NewClient()
		if err != nil {
			return nil, fmt.Errorf("cclient.NewClient: %w", err)
		}

		// Request writes into the default header map; every call passes its own.
		bc.SetDefaultHeader(nil)
		client = bc
	}

	return &Resolver{
		client:  client,
		FeedURL: DefaultFeedURL,
	}, nil
}

func (r *Resolver) get(ctx context.Context, rawURL string) (body []byte, err error) {
	header := cclient.DefaultClientHeader.Clone()
	header.Set("Cookie", consentCookie)

	resp, err := r.client.Request(ctx, "GET", rawURL, nil, header)
	if err != nil {
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &cclient.APIError{
			Code:   resp.StatusCode,
			Header: http.Header(resp.Header),
		}
	}

	return io.ReadAll(resp.Body)
}

// ChannelID returns the channel ID behind a channel or community link.
func (r *Resolver) ChannelID(ctx context.Context, link Link) (channelID string, err error) {
	if link.Kind != KindChannel && link.Kind != KindCommunity {
		err = UnsupportedPath
		return
	}

	if link.HasChannelID() {
		return link.ID, nil
	}

	if channelID, ok := r.channelIDCache.Load(link.URL); ok {
		return channelID, nil
	}

	if ctx == nil {
		ctx = context.Background()
	} else {
		if err = ctx.Err(); err != nil {
			return
		}
	}

	body, err := r.get(ctx, link.URL)
	if err != nil {
		return
	}

	channelID, err = ParseChannelPage(body)
	if err != nil {
		return
	}

	r.channelIDCache.Store(link.URL, channelID)
	return
}

// RecentVideos lists the latest uploads of a channel from its public feed.
func (r *Resolver) RecentVideos(ctx context.Context, channelID string) (videos []FeedVideo, err error) {
	if !IsValidChannelID(channelID) {
		err = InvalidChannelID
		return
	}

	if ctx == nil {
		ctx = context.Background()
	} else {
		if err = ctx.Err(); err != nil {
			return
		}
	}

	u, err := url.Parse(r.FeedURL)
	if err != nil {
		return
	}
	q := u.Query()
	q.Set("channel_id", channelID)
	u.RawQuery = q.Encode()

	body, err := r.get(ctx, u.String())
	if err != nil {
		return
	}

	return ParseChannelFeed(body)
}

// Skips the EU consent interstitial.
const consentCookie = "SOCS=CAESEwgDEgk0ODE3Nzk3MjQaAmVuIAEaBgiA_LyaBg"
