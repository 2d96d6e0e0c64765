// Package ytdata reads public statistics from the YouTube Data API so a
// download can be sized before a job is created.
package ytdata

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"github.com/rubpy/ycd-go/ytlink"
)

//////////////////////////////////////////////////

var (
	NilService    = errors.New("service is nil")
	NotFound      = errors.New("resource not found")
	NotEstimable  = errors.New("link kind cannot be estimated")
	MissingAPIKey = errors.New("YouTube Data API key is empty")
)

type Estimator struct {
	service  *youtube.Service
	resolver *ytlink.Resolver

	// Number of recent uploads summed up for channel estimates.
	RecentVideos int
}

// NewEstimator builds an Estimator from an existing service. resolver may be
// nil, in which case channel links must carry a channel ID.
func NewEstimator(service *youtube.Service, resolver *ytlink.Resolver) (*Estimator, error) {
	if service == nil {
		return nil, NilService
	}

	return &Estimator{
		service:      service,
		resolver:     resolver,
		RecentVideos: 15,
	}, nil
}

// NewService creates a YouTube Data API client authenticated with an API key.
func NewService(ctx context.Context, apiKey string, opts ...option.ClientOption) (*youtube.Service, error) {
	if apiKey == "" {
		return nil, MissingAPIKey
	}

	opts = append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	svc, err := youtube.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("youtube.NewService: %w", err)
	}

	return svc, nil
}

//////////////////////////////////////////////////

type VideoStats struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	ChannelID    string `json:"channelId"`
	CommentCount uint64 `json:"commentCount"`
	ViewCount    uint64 `json:"viewCount"`
}

func (e *Estimator) VideoStats(ctx context.Context, videoIDs ...string) (stats []VideoStats, err error) {
	for _, id := range videoIDs {
		if !ytlink.IsValidVideoID(id) {
			err = ytlink.InvalidVideoID
			return
		}
	}

	if ctx == nil {
		ctx = context.Background()
	} else {
		if err = ctx.Err(); err != nil {
			return
		}
	}

	// videos.list accepts at most 50 IDs per call.
	for start := 0; start < len(videoIDs); start += 50 {
		end := min(start+50, len(videoIDs))

		call := e.service.Videos.List([]string{"snippet", "statistics"})
		call.Context(ctx)
		call.Id(videoIDs[start:end]...)

		resp, err := call.Do()
		if err != nil {
			return nil, fmt.Errorf("youtube.VideosService.List: %w", err)
		}

		for _, item := range resp.Items {
			vs := VideoStats{ID: item.Id}
			if item.Snippet != nil {
				vs.Title = item.Snippet.Title
				vs.ChannelID = item.Snippet.ChannelId
			}
			if item.Statistics != nil {
				vs.CommentCount = item.Statistics.CommentCount
				vs.ViewCount = item.Statistics.ViewCount
			}

			stats = append(stats, vs)
		}
	}

	return
}

type ChannelStats struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	VideoCount uint64 `json:"videoCount"`
}

func (e *Estimator) ChannelStats(ctx context.Context, channelID string) (stats *ChannelStats, err error) {
	if !ytlink.IsValidChannelID(channelID) {
		err = ytlink.InvalidChannelID
		return
	}

	if ctx == nil {
		ctx = context.Background()
	} else {
		if err = ctx.Err(); err != nil {
			return
		}
	}

	call := e.service.Channels.List([]string{"snippet", "statistics"})
	call.Context(ctx)
	call.Id(channelID)

	resp, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("youtube.ChannelsService.List: %w", err)
	}

	for _, item := range resp.Items {
		if item.Id != channelID {
			continue
		}

		stats = &ChannelStats{ID: item.Id}
		if item.Snippet != nil {
			stats.Title = item.Snippet.Title
		}
		if item.Statistics != nil {
			stats.VideoCount = item.Statistics.VideoCount
		}

		return
	}

	return nil, NotFound
}

//////////////////////////////////////////////////

// Estimate is the expected size of a download.
type Estimate struct {
	Link ytlink.Link `json:"link"`

	Title    string `json:"title"`
	Comments uint64 `json:"comments"`

	// Channel estimates only cover the most recent uploads.
	Videos        uint64 `json:"videos,omitempty"`
	SampledVideos int    `json:"sampledVideos,omitempty"`
}

func (e *Estimator) Estimate(ctx context.Context, link ytlink.Link) (est *Estimate, err error) {
	switch link.Kind {
	case ytlink.KindVideo, ytlink.KindShort, ytlink.KindLive:
		var stats []VideoStats
		stats, err = e.VideoStats(ctx, link.ID)
		if err != nil {
			return
		}
		if len(stats) == 0 {
			return nil, NotFound
		}

		return &Estimate{
			Link:     link,
			Title:    stats[0].Title,
			Comments: stats[0].CommentCount,
		}, nil

	case ytlink.KindChannel:
		return e.estimateChannel(ctx, link)
	}

	err = NotEstimable
	return
}

func (e *Estimator) estimateChannel(ctx context.Context, link ytlink.Link) (est *Estimate, err error) {
	channelID := link.ID
	if !link.HasChannelID() {
		if e.resolver == nil {
			return nil, ytlink.InvalidChannelID
		}

		channelID, err = e.resolver.ChannelID(ctx, link)
		if err != nil {
			return nil, fmt.Errorf("ytlink.Resolver.ChannelID: %w", err)
		}
	}

	channel, err := e.ChannelStats(ctx, channelID)
	if err != nil {
		return
	}

	est = &Estimate{
		Link:   link,
		Title:  channel.Title,
		Videos: channel.VideoCount,
	}

	if e.resolver == nil || e.RecentVideos < 1 {
		return
	}

	recent, err := e.resolver.RecentVideos(ctx, channelID)
	if err != nil {
		return nil, fmt.Errorf("ytlink.Resolver.RecentVideos: %w", err)
	}
	if len(recent) > e.RecentVideos {
		recent = recent[:e.RecentVideos]
	}

	ids := make([]string, 0, len(recent))
	for _, v := range recent {
		ids = append(ids, v.ID)
	}

	stats, err := e.VideoStats(ctx, ids...)
	if err != nil {
		return
	}

	for _, vs := range stats {
		est.Comments += vs.CommentCount
	}
	est.SampledVideos = len(stats)

	return
}
