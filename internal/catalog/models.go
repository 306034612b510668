package catalog

import (
	"time"

	"media-search-bot/internal/mediatypes"
)

// MediaRecord is one indexed media item. Records are created once on
// first successful classification and never mutated afterwards; the
// (ChatID, MessageID) pair is unique across the catalog.
type MediaRecord struct {
	ID        int64                `json:"id"`
	FileRef   string               `json:"fileRef"`
	FileName  string               `json:"fileName"`
	MessageID int64                `json:"messageId"`
	ChatID    int64                `json:"chatId"`
	SenderID  int64                `json:"senderId"`
	Timestamp time.Time            `json:"timestamp"`
	MediaType mediatypes.MediaType `json:"mediaType"`
	FileSize  int64                `json:"fileSize,omitempty"`
	Duration  int                  `json:"duration,omitempty"`
	IndexedAt time.Time            `json:"indexedAt"`
}

// Stats summarizes the catalog contents.
type Stats struct {
	TotalRecords int       `json:"totalRecords"`
	TotalAudio   int       `json:"totalAudio"`
	TotalVideo   int       `json:"totalVideo"`
	TotalChats   int       `json:"totalChats"`
	LastIndexed  time.Time `json:"lastIndexed,omitempty"`
}
