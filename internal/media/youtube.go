package media

import (
	"errors"
	"net/url"
	"regexp"
	"strings"
)

var youtubeIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

var ErrInvalidYouTubeURL = errors.New("invalid YouTube URL or video ID")

// ParseYouTubeID extracts the 11-character video id from a watch URL, a
// youtu.be short link, an embed URL, or a raw id. No network calls.
func ParseYouTubeID(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ErrInvalidYouTubeURL
	}
	if youtubeIDPattern.MatchString(raw) {
		return raw, nil
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", ErrInvalidYouTubeURL
	}

	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	switch host {
	case "youtube.com", "m.youtube.com":
		if id := u.Query().Get("v"); youtubeIDPattern.MatchString(id) {
			return id, nil
		}
		for _, prefix := range []string{"/embed/", "/shorts/", "/live/"} {
			if strings.HasPrefix(u.Path, prefix) {
				id := strings.SplitN(strings.TrimPrefix(u.Path, prefix), "/", 2)[0]
				if youtubeIDPattern.MatchString(id) {
					return id, nil
				}
			}
		}
	case "youtu.be":
		id := strings.SplitN(strings.TrimPrefix(u.Path, "/"), "/", 2)[0]
		if youtubeIDPattern.MatchString(id) {
			return id, nil
		}
	}
	return "", ErrInvalidYouTubeURL
}

// WatchURL builds the canonical playback URL for a video id.
func WatchURL(id string) string {
	return "https://www.youtube.com/watch?v=" + id
}
