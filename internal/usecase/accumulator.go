package usecase

import (
	"strings"

	"tubetext/internal/domain"
)

// translationAccumulator collects streamed fragments, each followed by a
// blank line.
type translationAccumulator struct {
	text strings.Builder
}

func (a *translationAccumulator) Add(fragment string) {
	a.text.WriteString(fragment)
	a.text.WriteString("\n\n")
}

func (a *translationAccumulator) String() string {
	return a.text.String()
}

// joinSegments renders a transcript as one line of text for summarization.
func joinSegments(segments []domain.Segment) string {
	texts := make([]string, 0, len(segments))
	for _, segment := range segments {
		texts = append(texts, segment.Text)
	}
	return strings.Join(texts, " ")
}
