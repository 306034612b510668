package transport

// Chat identifies a group chat on the messaging platform.
type Chat struct {
	ID    int64  `json:"id"`
	Title string `json:"title,omitempty"`
	Type  string `json:"type,omitempty"`
}

// User identifies a platform user.
type User struct {
	ID        int64  `json:"id"`
	IsBot     bool   `json:"is_bot,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	Username  string `json:"username,omitempty"`
}

// MediaAttachment describes an audio/video/document payload attached to
// a message. FileID is the opaque handle the platform hands back for
// later retrieval.
type MediaAttachment struct {
	FileID   string `json:"file_id"`
	FileName string `json:"file_name,omitempty"`
	MimeType string `json:"mime_type,omitempty"`
	FileSize int64  `json:"file_size,omitempty"`
	Duration int    `json:"duration,omitempty"`
}

// Message is one inbound chat message event.
type Message struct {
	ID             int64            `json:"message_id"`
	Chat           Chat             `json:"chat"`
	From           *User            `json:"from,omitempty"`
	Date           int64            `json:"date"`
	Text           string           `json:"text,omitempty"`
	Audio          *MediaAttachment `json:"audio,omitempty"`
	Video          *MediaAttachment `json:"video,omitempty"`
	Document       *MediaAttachment `json:"document,omitempty"`
	NewChatMembers []User           `json:"new_chat_members,omitempty"`
}

// SenderID returns the sending user's ID, or 0 if unknown.
func (m *Message) SenderID() int64 {
	if m.From == nil {
		return 0
	}
	return m.From.ID
}

// CallbackQuery is a button-press event referencing a rendered message.
type CallbackQuery struct {
	ID      string   `json:"id"`
	From    User     `json:"from"`
	Message *Message `json:"message,omitempty"`
	Data    string   `json:"data,omitempty"`
}

// Update is one inbound event delivered by the platform.
type Update struct {
	UpdateID      int64          `json:"update_id"`
	Message       *Message       `json:"message,omitempty"`
	CallbackQuery *CallbackQuery `json:"callback_query,omitempty"`
}

// Button is one interactive control on a rendered message.
type Button struct {
	Text         string `json:"text"`
	CallbackData string `json:"callback_data,omitempty"`
}

// Markup is the control layout attached to a rendered message.
type Markup struct {
	InlineKeyboard [][]Button `json:"inline_keyboard"`
}

// MessageRef identifies one rendered message; it doubles as the search
// session key.
type MessageRef struct {
	ChatID    int64
	MessageID int64
}
