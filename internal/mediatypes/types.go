package mediatypes

import (
	"fmt"
	"strings"
)

// MediaType classifies an indexed media item.
type MediaType string

const (
	// MediaAudio represents an audio file.
	MediaAudio MediaType = "audio"
	// MediaVideo represents a video file.
	MediaVideo MediaType = "video"
	// MediaNone represents a message that carries no indexable media.
	MediaNone MediaType = ""
)

// FromMime classifies a declared content type. Generic attachments whose
// MIME type starts with audio/ or video/ qualify; everything else does not.
func FromMime(mime string) MediaType {
	mime = strings.ToLower(strings.TrimSpace(mime))
	switch {
	case strings.HasPrefix(mime, "audio/"):
		return MediaAudio
	case strings.HasPrefix(mime, "video/"):
		return MediaVideo
	default:
		return MediaNone
	}
}

// DefaultExtensions maps media types to the extension used when a file
// name has to be synthesized for a native audio/video attachment.
var DefaultExtensions = map[MediaType]string{
	MediaAudio: ".mp3",
	MediaVideo: ".mp4",
}

// SynthesizeName builds a placeholder file name for an attachment that
// carries none. Native attachments get a default extension
// ("audio_<id>.mp3", "video_<id>.mp4"); generic documents stay bare
// ("audio_<id>") since their real container format is unknown.
func SynthesizeName(t MediaType, messageID int64, withExtension bool) string {
	ext := ""
	if withExtension {
		ext = DefaultExtensions[t]
	}
	return fmt.Sprintf("%s_%d%s", t, messageID, ext)
}

// Emoji returns the pictogram used when rendering a result line.
func Emoji(t MediaType) string {
	if t == MediaAudio {
		return "🎵"
	}
	return "🎬"
}
