package ingestion

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// MeetingInfo is the transcript file's meeting-level metadata.
type MeetingInfo struct {
	Title string `json:"title"`
	Date  string `json:"date"`
	URL   string `json:"url"`
}

// TranscriptChunk is one chunk of transcript text as produced by the
// upstream transcription pipeline. Agenda is the label assigned by the
// agenda-boundary extractor; it may be empty when extraction failed for
// that span.
type TranscriptChunk struct {
	Text    string `json:"text"`
	Speaker string `json:"speaker"`
	Agenda  string `json:"agenda"`
}

// Meeting is one parsed transcript file.
type Meeting struct {
	Info   MeetingInfo       `json:"meeting_info"`
	Chunks []TranscriptChunk `json:"chunks"`
}

// LoadMeetingFile parses a transcript JSON file. The meeting id is the
// file name without its extension, e.g. "session_332.json" →
// "session_332".
func LoadMeetingFile(path string) (string, *Meeting, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", nil, fmt.Errorf("failed to read meeting file: %w", err)
	}

	var meeting Meeting
	if err := json.Unmarshal(data, &meeting); err != nil {
		return "", nil, fmt.Errorf("%w: %s: %w", ErrMalformedMeeting, path, err)
	}

	base := filepath.Base(path)
	meetingID := strings.TrimSuffix(base, filepath.Ext(base))
	if meetingID == "" {
		return "", nil, ErrEmptyMeetingID
	}
	return meetingID, &meeting, nil
}
