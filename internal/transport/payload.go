package transport

import (
	"fmt"
	"strconv"
	"strings"
)

// Action is the kind of interaction a button carries.
type Action string

const (
	// ActionPage navigates to a page of an existing search.
	ActionPage Action = "page"
	// ActionClose tears the search view down.
	ActionClose Action = "close"
	// ActionNoop is attached to the non-interactive page indicator.
	ActionNoop Action = "noop"
)

// Payload is the decoded body of a button press. The rendered message
// it belongs to is identified by the callback's message reference, not
// by the payload itself.
type Payload struct {
	Action Action
	Query  string
	Page   int
}

// Encode serializes the payload into callback data. Page payloads use
// "page:<query>:<n>"; close and noop are bare action names.
func (p Payload) Encode() string {
	if p.Action == ActionPage {
		return fmt.Sprintf("page:%s:%d", p.Query, p.Page)
	}
	return string(p.Action)
}

// ParsePayload decodes callback data. The query may itself contain
// colons, so the page number is split off at the last separator.
func ParsePayload(data string) (Payload, error) {
	switch data {
	case string(ActionClose):
		return Payload{Action: ActionClose}, nil
	case string(ActionNoop):
		return Payload{Action: ActionNoop}, nil
	}

	rest, ok := strings.CutPrefix(data, "page:")
	if !ok {
		return Payload{}, fmt.Errorf("unrecognized callback data %q", data)
	}

	sep := strings.LastIndex(rest, ":")
	if sep <= 0 || sep == len(rest)-1 {
		return Payload{}, fmt.Errorf("malformed page callback data %q", data)
	}

	page, err := strconv.Atoi(rest[sep+1:])
	if err != nil {
		return Payload{}, fmt.Errorf("malformed page number in callback data %q: %w", data, err)
	}

	return Payload{Action: ActionPage, Query: rest[:sep], Page: page}, nil
}
