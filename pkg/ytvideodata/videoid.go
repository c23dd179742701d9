package ytvideodata

import (
	"errors"
	"net/url"
	"regexp"
	"strings"
)

var ErrInvalidUrl = errors.New("not a youtube video url")

var videoIdRe = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

// ParseVideoId accepts watch, short, embed and shorts links as well as a bare
// video id.
func ParseVideoId(rawUrl string) (string, error) {
	rawUrl = strings.TrimSpace(rawUrl)
	if videoIdRe.MatchString(rawUrl) {
		return rawUrl, nil
	}

	u, err := url.Parse(rawUrl)
	if err != nil {
		return "", ErrInvalidUrl
	}

	var videoId string
	host := strings.TrimPrefix(u.Hostname(), "www.")
	switch host {
	case "youtu.be":
		videoId = strings.TrimPrefix(u.Path, "/")
	case "youtube.com", "m.youtube.com", "music.youtube.com", "youtube-nocookie.com":
		switch {
		case u.Path == "/watch":
			videoId = u.Query().Get("v")
		case strings.HasPrefix(u.Path, "/embed/"):
			videoId = strings.TrimPrefix(u.Path, "/embed/")
		case strings.HasPrefix(u.Path, "/shorts/"):
			videoId = strings.TrimPrefix(u.Path, "/shorts/")
		}
	}

	if !videoIdRe.MatchString(videoId) {
		return "", ErrInvalidUrl
	}

	return videoId, nil
}
