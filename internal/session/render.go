package session

import (
	"fmt"
	"strings"

	"media-search-bot/internal/catalog"
	"media-search-bot/internal/mediatypes"
	"media-search-bot/internal/transport"
)

// originLink builds a deep link to the original message. Supergroup
// chat IDs carry a -100 prefix on the wire that the link format omits.
func originLink(chatID, messageID int64) string {
	id := fmt.Sprintf("%d", chatID)
	id = strings.TrimPrefix(id, "-100")
	id = strings.TrimPrefix(id, "-")
	return fmt.Sprintf("https://t.me/c/%s/%d", id, messageID)
}

// formatResults renders one page of matches as Markdown. Numbering is
// continuous across pages so readers can tell where they are in the
// full result set.
func formatResults(query string, page Page, records []catalog.MediaRecord) string {
	var b strings.Builder

	fmt.Fprintf(&b, "🔎 Results for *%s* (%d found)\n\n", escapeMarkdown(query), page.Total)

	if len(records) == 0 {
		b.WriteString("Nothing on this page.\n")
		return b.String()
	}

	for i, rec := range records {
		n := page.Offset() + i + 1
		fmt.Fprintf(&b, "%d. %s [%s](%s)\n",
			n,
			mediatypes.Emoji(rec.MediaType),
			escapeMarkdown(rec.FileName),
			originLink(rec.ChatID, rec.MessageID),
		)
	}

	fmt.Fprintf(&b, "\nPage %d of %d", page.Number, page.TotalPages)
	return b.String()
}

// escapeMarkdown neutralizes the characters that would break the link
// syntax in legacy Markdown mode.
func escapeMarkdown(s string) string {
	r := strings.NewReplacer("[", "(", "]", ")", "*", "", "_", " ", "`", "'")
	return r.Replace(s)
}

// buildKeyboard lays out the session controls: a navigation row with
// prev/next around a non-interactive page indicator, and a close row.
// Prev and next only appear when the corresponding page exists.
func buildKeyboard(query string, page Page) *transport.Markup {
	var nav []transport.Button

	if page.HasPrev() {
		nav = append(nav, transport.Button{
			Text:         "⬅️ Prev",
			CallbackData: transport.Payload{Action: transport.ActionPage, Query: query, Page: page.Number - 1}.Encode(),
		})
	}

	nav = append(nav, transport.Button{
		Text:         fmt.Sprintf("%d/%d", page.Number, page.TotalPages),
		CallbackData: transport.Payload{Action: transport.ActionNoop}.Encode(),
	})

	if page.HasNext() {
		nav = append(nav, transport.Button{
			Text:         "Next ➡️",
			CallbackData: transport.Payload{Action: transport.ActionPage, Query: query, Page: page.Number + 1}.Encode(),
		})
	}

	return &transport.Markup{
		InlineKeyboard: [][]transport.Button{
			nav,
			{{
				Text:         "❌ Close",
				CallbackData: transport.Payload{Action: transport.ActionClose}.Encode(),
			}},
		},
	}
}
