package mediatypes

import "testing"

func TestFromMime(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		mime     string
		expected MediaType
	}{
		{"audio mpeg", "audio/mpeg", MediaAudio},
		{"audio flac", "audio/flac", MediaAudio},
		{"video mp4", "video/mp4", MediaVideo},
		{"video matroska", "video/x-matroska", MediaVideo},
		{"uppercase", "AUDIO/MPEG", MediaAudio},
		{"surrounding whitespace", "  video/mp4 ", MediaVideo},
		{"image", "image/png", MediaNone},
		{"document", "application/pdf", MediaNone},
		{"empty", "", MediaNone},
		{"bare word", "audio", MediaNone},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := FromMime(tt.mime); got != tt.expected {
				t.Errorf("FromMime(%q) = %q, want %q", tt.mime, got, tt.expected)
			}
		})
	}
}

func TestSynthesizeName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		mediaType     MediaType
		messageID     int64
		withExtension bool
		expected      string
	}{
		{"audio with extension", MediaAudio, 42, true, "audio_42.mp3"},
		{"video with extension", MediaVideo, 7, true, "video_7.mp4"},
		{"audio document", MediaAudio, 42, false, "audio_42"},
		{"video document", MediaVideo, 99, false, "video_99"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := SynthesizeName(tt.mediaType, tt.messageID, tt.withExtension)
			if got != tt.expected {
				t.Errorf("SynthesizeName(%q, %d, %v) = %q, want %q",
					tt.mediaType, tt.messageID, tt.withExtension, got, tt.expected)
			}
		})
	}
}
