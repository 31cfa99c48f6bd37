package usecase

import (
	"regexp"

	"tubetext/internal/apperr"
)

const invalidLinkMessage = "Please paste a valid YouTube link (e.g. youtube.com/watch?v=...)"

var videoLinkPattern = regexp.MustCompile(`^https?://(www\.)?(youtube\.com/watch\?v=|youtu\.be/|youtube\.com/shorts/)`)

// validateLink rejects anything that is not a watch, short or youtu.be link.
func validateLink(videoURL string) error {
	if !videoLinkPattern.MatchString(videoURL) {
		return &apperr.ValidationError{Field: "video_url", Message: invalidLinkMessage}
	}
	return nil
}
