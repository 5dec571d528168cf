package google

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

type SearchItem struct {
	Kind         string `json:"kind"`
	ID           string `json:"id"`
	Title        string `json:"title,omitempty"`
	Description  string `json:"description,omitempty"`
	ChannelID    string `json:"channelId,omitempty"`
	ChannelTitle string `json:"channelTitle,omitempty"`
	PublishedAt  string `json:"publishedAt,omitempty"`
	Thumbnail    string `json:"thumbnail,omitempty"`
}

type Video struct {
	ID           string   `json:"id"`
	Title        string   `json:"title,omitempty"`
	Description  string   `json:"description,omitempty"`
	ChannelID    string   `json:"channelId,omitempty"`
	ChannelTitle string   `json:"channelTitle,omitempty"`
	PublishedAt  string   `json:"publishedAt,omitempty"`
	Duration     string   `json:"duration,omitempty"`
	Tags         []string `json:"tags,omitempty"`
	ViewCount    uint64   `json:"viewCount"`
	LikeCount    uint64   `json:"likeCount"`
	CommentCount uint64   `json:"commentCount"`
	Thumbnail    string   `json:"thumbnail,omitempty"`
}

type Channel struct {
	ID                string `json:"id"`
	Title             string `json:"title,omitempty"`
	Description       string `json:"description,omitempty"`
	CustomURL         string `json:"customUrl,omitempty"`
	PublishedAt       string `json:"publishedAt,omitempty"`
	SubscriberCount   uint64 `json:"subscriberCount"`
	VideoCount        uint64 `json:"videoCount"`
	ViewCount         uint64 `json:"viewCount"`
	UploadsPlaylistID string `json:"uploadsPlaylistId,omitempty"`
	Thumbnail         string `json:"thumbnail,omitempty"`
}

type Playlist struct {
	ID          string `json:"id"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	ItemCount   int64  `json:"itemCount"`
	PublishedAt string `json:"publishedAt,omitempty"`
	Thumbnail   string `json:"thumbnail,omitempty"`
}

type PlaylistItem struct {
	VideoID      string `json:"videoId"`
	Title        string `json:"title,omitempty"`
	Description  string `json:"description,omitempty"`
	Position     int64  `json:"position"`
	PublishedAt  string `json:"publishedAt,omitempty"`
	ChannelTitle string `json:"channelTitle,omitempty"`
	Thumbnail    string `json:"thumbnail,omitempty"`
}

type Comment struct {
	ID          string `json:"id"`
	Author      string `json:"author,omitempty"`
	Text        string `json:"text"`
	LikeCount   int64  `json:"likeCount"`
	PublishedAt string `json:"publishedAt,omitempty"`
	ReplyCount  int64  `json:"replyCount"`
}

// ChannelQuery selects a channel by exactly one of ID, Handle or Mine.
type ChannelQuery struct {
	ID     string
	Handle string
	Mine   bool
}

// Validate checks that exactly one way of naming the channel is set.
func (q ChannelQuery) Validate() error {
	n := 0
	if q.ID != "" {
		n++
	}
	if q.Handle != "" {
		n++
	}
	if q.Mine {
		n++
	}
	if n != 1 {
		return errors.New("specify exactly one of a channel ID, --handle or --mine")
	}
	return nil
}

func (q ChannelQuery) String() string {
	switch {
	case q.ID != "":
		return q.ID
	case q.Handle != "":
		return q.Handle
	default:
		return "mine"
	}
}

type YouTube struct {
	service *youtube.Service
	ctx     context.Context
}

func NewYouTube(ctx context.Context, opts ...option.ClientOption) (*YouTube, error) {
	service, err := youtube.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create youtube service: %w", err)
	}
	return &YouTube{service: service, ctx: ctx}, nil
}

// Search returns one page of results. kind is video, channel, playlist, or
// empty for all three.
func (g *YouTube) Search(query, kind, order string, maxResults int64) ([]SearchItem, error) {
	if strings.TrimSpace(query) == "" {
		return nil, errors.New("search query is required")
	}
	call := g.service.Search.List([]string{"snippet"}).Q(query)
	if kind != "" {
		call = call.Type(kind)
	}
	if order != "" {
		call = call.Order(order)
	}
	if maxResults > 0 {
		call = call.MaxResults(maxResults)
	}

	resp, err := call.Context(g.ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to search: %w", WrapError(err))
	}

	result := make([]SearchItem, 0, len(resp.Items))
	for _, item := range resp.Items {
		si := SearchItem{}
		if item.Id != nil {
			si.Kind = item.Id.Kind
			switch {
			case item.Id.VideoId != "":
				si.ID = item.Id.VideoId
			case item.Id.ChannelId != "":
				si.ID = item.Id.ChannelId
			default:
				si.ID = item.Id.PlaylistId
			}
		}
		if s := item.Snippet; s != nil {
			si.Title = s.Title
			si.Description = s.Description
			si.ChannelID = s.ChannelId
			si.ChannelTitle = s.ChannelTitle
			si.PublishedAt = s.PublishedAt
			si.Thumbnail = thumbnail(s.Thumbnails)
		}
		result = append(result, si)
	}
	return result, nil
}

func (g *YouTube) Video(videoID string) (*Video, error) {
	resp, err := g.service.Videos.List([]string{"snippet", "statistics", "contentDetails"}).
		Id(videoID).
		Context(g.ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get video: %w", WrapError(err))
	}
	if len(resp.Items) == 0 {
		return nil, fmt.Errorf("%w: video not found: %s", ErrNotFound, videoID)
	}

	item := resp.Items[0]
	v := &Video{ID: item.Id}
	if s := item.Snippet; s != nil {
		v.Title = s.Title
		v.Description = s.Description
		v.ChannelID = s.ChannelId
		v.ChannelTitle = s.ChannelTitle
		v.PublishedAt = s.PublishedAt
		v.Tags = s.Tags
		v.Thumbnail = thumbnail(s.Thumbnails)
	}
	if st := item.Statistics; st != nil {
		v.ViewCount = st.ViewCount
		v.LikeCount = st.LikeCount
		v.CommentCount = st.CommentCount
	}
	if cd := item.ContentDetails; cd != nil {
		v.Duration = cd.Duration
	}
	return v, nil
}

func (g *YouTube) Channel(q ChannelQuery) (*Channel, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	call := g.service.Channels.List([]string{"snippet", "statistics", "contentDetails"})
	switch {
	case q.ID != "":
		call = call.Id(q.ID)
	case q.Handle != "":
		call = call.ForHandle(q.Handle)
	default:
		call = call.Mine(true)
	}

	resp, err := call.Context(g.ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get channel: %w", WrapError(err))
	}
	if len(resp.Items) == 0 {
		return nil, fmt.Errorf("%w: channel not found: %s", ErrNotFound, q)
	}

	item := resp.Items[0]
	c := &Channel{ID: item.Id}
	if s := item.Snippet; s != nil {
		c.Title = s.Title
		c.Description = s.Description
		c.CustomURL = s.CustomUrl
		c.PublishedAt = s.PublishedAt
		c.Thumbnail = thumbnail(s.Thumbnails)
	}
	if st := item.Statistics; st != nil {
		c.SubscriberCount = st.SubscriberCount
		c.VideoCount = st.VideoCount
		c.ViewCount = st.ViewCount
	}
	if cd := item.ContentDetails; cd != nil && cd.RelatedPlaylists != nil {
		c.UploadsPlaylistID = cd.RelatedPlaylists.Uploads
	}
	return c, nil
}

// ChannelVideos resolves the channel's uploads playlist, then lists it.
func (g *YouTube) ChannelVideos(q ChannelQuery, maxResults int64) (*Channel, []PlaylistItem, error) {
	channel, err := g.Channel(q)
	if err != nil {
		return nil, nil, err
	}
	if channel.UploadsPlaylistID == "" {
		return nil, nil, fmt.Errorf("channel %s has no uploads playlist", channel.ID)
	}
	items, err := g.PlaylistItems(channel.UploadsPlaylistID, maxResults)
	if err != nil {
		return nil, nil, err
	}
	return channel, items, nil
}

// Playlists lists a channel's playlists, or the user's own when mine is set.
func (g *YouTube) Playlists(channelID string, mine bool, maxResults int64) ([]Playlist, error) {
	if (channelID == "") == !mine {
		return nil, errors.New("specify exactly one of a channel ID or --mine")
	}
	call := g.service.Playlists.List([]string{"snippet", "contentDetails"})
	if mine {
		call = call.Mine(true)
	} else {
		call = call.ChannelId(channelID)
	}
	if maxResults > 0 {
		call = call.MaxResults(maxResults)
	}

	resp, err := call.Context(g.ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list playlists: %w", WrapError(err))
	}

	result := make([]Playlist, 0, len(resp.Items))
	for _, item := range resp.Items {
		p := Playlist{ID: item.Id}
		if s := item.Snippet; s != nil {
			p.Title = s.Title
			p.Description = s.Description
			p.PublishedAt = s.PublishedAt
			p.Thumbnail = thumbnail(s.Thumbnails)
		}
		if item.ContentDetails != nil {
			p.ItemCount = item.ContentDetails.ItemCount
		}
		result = append(result, p)
	}
	return result, nil
}

func (g *YouTube) PlaylistItems(playlistID string, maxResults int64) ([]PlaylistItem, error) {
	call := g.service.PlaylistItems.List([]string{"snippet", "contentDetails"}).PlaylistId(playlistID)
	if maxResults > 0 {
		call = call.MaxResults(maxResults)
	}

	resp, err := call.Context(g.ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list playlist items: %w", WrapError(err))
	}

	result := make([]PlaylistItem, 0, len(resp.Items))
	for _, item := range resp.Items {
		pi := PlaylistItem{}
		if s := item.Snippet; s != nil {
			pi.Title = s.Title
			pi.Description = s.Description
			pi.Position = s.Position
			pi.PublishedAt = s.PublishedAt
			pi.ChannelTitle = s.VideoOwnerChannelTitle
			pi.Thumbnail = thumbnail(s.Thumbnails)
			if s.ResourceId != nil {
				pi.VideoID = s.ResourceId.VideoId
			}
		}
		if cd := item.ContentDetails; cd != nil {
			if pi.VideoID == "" {
				pi.VideoID = cd.VideoId
			}
			if cd.VideoPublishedAt != "" {
				pi.PublishedAt = cd.VideoPublishedAt
			}
		}
		result = append(result, pi)
	}
	return result, nil
}

func (g *YouTube) Comments(videoID, order string, maxResults int64) ([]Comment, error) {
	call := g.service.CommentThreads.List([]string{"snippet"}).
		VideoId(videoID).
		TextFormat("plainText")
	if order != "" {
		call = call.Order(order)
	}
	if maxResults > 0 {
		call = call.MaxResults(maxResults)
	}

	resp, err := call.Context(g.ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", WrapError(err))
	}

	result := make([]Comment, 0, len(resp.Items))
	for _, thread := range resp.Items {
		c := Comment{ID: thread.Id}
		if s := thread.Snippet; s != nil {
			c.ReplyCount = s.TotalReplyCount
			if top := s.TopLevelComment; top != nil && top.Snippet != nil {
				c.Author = top.Snippet.AuthorDisplayName
				c.Text = top.Snippet.TextDisplay
				c.LikeCount = top.Snippet.LikeCount
				c.PublishedAt = top.Snippet.PublishedAt
			}
		}
		result = append(result, c)
	}
	return result, nil
}

func thumbnail(t *youtube.ThumbnailDetails) string {
	if t == nil {
		return ""
	}
	var high, medium, def string
	if t.High != nil {
		high = t.High.Url
	}
	if t.Medium != nil {
		medium = t.Medium.Url
	}
	if t.Default != nil {
		def = t.Default.Url
	}
	return thumbnailURL(high, medium, def)
}
