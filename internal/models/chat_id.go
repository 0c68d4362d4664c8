package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
)

var ErrInvalidChatID = errors.New("invalid chat id")

var chatIDNoise = regexp.MustCompile(`[^0-9-]`)

// ChatID is an external platform chat identifier (e.g. -1001234567890).
// The zero value means "not provided".
//
// It decodes from JSON numbers or strings and always encodes as a string,
// since channel ids do not fit into a JavaScript number.
type ChatID int64

// ParseChatID strips everything except digits and '-' and parses the rest
// as a 64-bit integer, so "id:-100123", " -100123 " and "-100123" agree.
func ParseChatID(raw string) (ChatID, error) {
	cleaned := chatIDNoise.ReplaceAllString(raw, "")
	if cleaned == "" {
		return 0, fmt.Errorf("%w: %q", ErrInvalidChatID, raw)
	}
	id, err := strconv.ParseInt(cleaned, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidChatID, raw)
	}
	return ChatID(id), nil
}

func (id ChatID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

func (id ChatID) MarshalJSON() ([]byte, error) {
	return json.Marshal(id.String())
}

func (id *ChatID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}

	raw := string(data)
	if len(data) > 0 && data[0] == '"' {
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		if raw == "" {
			*id = 0
			return nil
		}
	}

	parsed, err := ParseChatID(raw)
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// RefID is an internal row id as sent by the dashboard forms: a number, a
// numeric string, or a falsy value ("" / false / 0) meaning "none".
type RefID int64

func (id *RefID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch string(data) {
	case "null", `""`, "false", "0":
		*id = 0
		return nil
	}

	raw := string(data)
	if data[0] == '"' {
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
	}

	parsed, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || parsed < 0 {
		return fmt.Errorf("invalid id %s", string(data))
	}
	*id = RefID(parsed)
	return nil
}
