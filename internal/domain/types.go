package domain

// Mode selects which view of the active video is shown.
type Mode string

const (
	ModeTranscription Mode = "transcription"
	ModePro           Mode = "pro"
	ModeSummary       Mode = "summary"
	ModeTranslate     Mode = "translate"
)

// Valid reports whether m is one of the known modes.
func (m Mode) Valid() bool {
	switch m {
	case ModeTranscription, ModePro, ModeSummary, ModeTranslate:
		return true
	default:
		return false
	}
}

// Segment is one caption unit of a transcript, in playback order.
type Segment struct {
	Timestamp string `json:"timestamp"`
	Text      string `json:"text"`
}

// TranscriptResult is the payload of a primary transcript fetch.
type TranscriptResult struct {
	Success   bool      `json:"success"`
	Error     string    `json:"error,omitempty"`
	VideoID   string    `json:"video_id,omitempty"`
	Source    string    `json:"source,omitempty"`
	Language  string    `json:"language,omitempty"`
	Segments  []Segment `json:"segments"`
	WordCount int       `json:"word_count,omitempty"`
}

// TranslationEvent is one decoded unit of the translation stream.
type TranslationEvent struct {
	Translation *string `json:"translation,omitempty"`
	Done        bool    `json:"done,omitempty"`
}

// Fragment returns the carried translation text, or "" when absent.
func (e TranslationEvent) Fragment() string {
	if e.Translation == nil {
		return ""
	}
	return *e.Translation
}

// User is the signed-in account as reported by the backend session.
type User struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url,omitempty"`
	Tier      string `json:"tier"`
}

// Premium reports whether the account holds a premium subscription.
func (u User) Premium() bool {
	return u.Tier == "premium"
}
