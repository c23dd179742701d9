package ytvideodata

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

const (
	defaultOEmbedUrl    = "https://www.youtube.com/oembed"
	defaultWatchUrl     = "https://www.youtube.com/watch"
	defaultThumbnailUrl = "https://i.ytimg.com/vi"
)

type VideoData struct {
	VideoId      string `json:"video_id"`
	Title        string `json:"title"`
	AuthorName   string `json:"author_name"`
	ThumbnailUrl string `json:"thumbnail_url"`
}

type Client struct {
	httpClient   *http.Client
	oEmbedUrl    string
	watchUrl     string
	thumbnailUrl string
}

type Option func(*Client)

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithBaseUrl points both lookups at one host, used in tests.
func WithBaseUrl(baseUrl string) Option {
	return func(c *Client) {
		c.oEmbedUrl = baseUrl + "/oembed"
		c.watchUrl = baseUrl + "/watch"
	}
}

func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient:   &http.Client{Timeout: 5 * time.Second},
		oEmbedUrl:    defaultOEmbedUrl,
		watchUrl:     defaultWatchUrl,
		thumbnailUrl: defaultThumbnailUrl,
	}
	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Get resolves metadata through oEmbed and falls back to the watch page for
// videos that disable embedding.
func (c Client) Get(ctx context.Context, videoUrl string) (*VideoData, error) {
	videoId, err := ParseVideoId(videoUrl)
	if err != nil {
		return nil, err
	}

	videoData, err := c.getWithEmbed(ctx, videoId)
	if err != nil {
		if !errors.Is(err, ErrVideoNotEmbeddable) {
			return nil, fmt.Errorf("failed to get video data with embed: %w", err)
		}

		videoData, err = c.getFromPage(ctx, videoId)
		if err != nil {
			return nil, fmt.Errorf("failed to get video data from page: %w", err)
		}
	}
	videoData.VideoId = videoId

	return videoData, nil
}
