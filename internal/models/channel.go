package models

import "time"

const (
	ListenTypeDirect = "direct" // every message in the source is a candidate
	ListenTypeLink   = "link"   // only messages carrying t.me links to other posts

	DefaultDailyLimit = 10
)

// TargetChannel is a reusable forwarding destination.
type TargetChannel struct {
	ID        int64     `db:"id" json:"id"`
	ChatID    string    `db:"chat_id" json:"chat_id"`
	Title     string    `db:"title" json:"title"`
	Username  *string   `db:"username" json:"username"`
	IsActive  bool      `db:"is_active" json:"is_active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// SourceChannel is a forwarding rule for one source chat.
//
// When TargetChannelID is set, TargetChatID and TargetTitle mirror the
// referenced TargetChannel as of the last write; they are not re-joined on read.
type SourceChannel struct {
	ID              int64     `db:"id" json:"id"`
	SourceChatID    ChatID    `db:"source_chat_id" json:"source_chat_id"`
	SourceTitle     *string   `db:"source_title" json:"source_title"`
	SourceUsername  *string   `db:"source_username" json:"source_username"`
	TargetChatID    *ChatID   `db:"target_chat_id" json:"target_chat_id"`
	TargetChannelID *int64    `db:"target_channel_id" json:"target_channel_id"`
	TargetTitle     *string   `db:"target_title" json:"target_title"`
	AppendLink      string    `db:"append_link" json:"append_link"`
	AppendLinkText  string    `db:"append_link_text" json:"append_link_text"`
	DailyLimit      int       `db:"daily_limit" json:"daily_limit"`
	RemoveLinks     bool      `db:"remove_links" json:"remove_links"`
	RemoveEmojis    bool      `db:"remove_emojis" json:"remove_emojis"`
	IsActive        bool      `db:"is_active" json:"is_active"`
	ListenType      string    `db:"listen_type" json:"listen_type"`
	TriggerKeywords string    `db:"trigger_keywords" json:"trigger_keywords"`
	SendLinkBack    bool      `db:"send_link_back" json:"send_link_back"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

// SourceChannelView is a SourceChannel as listed on the dashboard: with the
// live target registry labels and success counters from the post ledger.
type SourceChannelView struct {
	SourceChannel
	TargetChannelTitle  *string `db:"target_channel_title" json:"target_channel_title"`
	TargetChannelChatID *string `db:"target_channel_chat_id" json:"target_channel_chat_id"`
	TodayPosts          int64   `db:"today_posts" json:"today_posts"`
	TotalPosts          int64   `db:"total_posts" json:"total_posts"`
}

// CreateTargetChannelInput is the body of POST /api/target-channels.
type CreateTargetChannelInput struct {
	ChatID   ChatID  `json:"chat_id"`
	Title    string  `json:"title"`
	Username *string `json:"username"`
}

// UpdateTargetChannelInput is the body of PUT /api/target-channels.
type UpdateTargetChannelInput struct {
	ID       RefID            `json:"id"`
	Title    Optional[string] `json:"title"`
	Username Optional[string] `json:"username"`
	IsActive Optional[bool]   `json:"is_active"`
}

// CreateSourceChannelInput is the body of POST /api/channels.
// Pointer fields distinguish "not sent" from false/zero where the default
// is not the zero value.
type CreateSourceChannelInput struct {
	SourceChatID    ChatID  `json:"source_chat_id"`
	TargetChannelID RefID   `json:"target_channel_id"`
	TargetChatID    ChatID  `json:"target_chat_id"`
	SourceTitle     *string `json:"source_title"`
	SourceUsername  *string `json:"source_username"`
	TargetTitle     *string `json:"target_title"`
	AppendLink      string  `json:"append_link"`
	AppendLinkText  string  `json:"append_link_text"`
	DailyLimit      *int    `json:"daily_limit"`
	RemoveLinks     *bool   `json:"remove_links"`
	RemoveEmojis    *bool   `json:"remove_emojis"`
	ListenType      string  `json:"listen_type"`
	TriggerKeywords string  `json:"trigger_keywords"`
	SendLinkBack    *bool   `json:"send_link_back"`
}

// UpdateSourceChannelInput is the body of PUT /api/channels.
// SourceChatID is decoded only so that attempts to change it can be refused.
type UpdateSourceChannelInput struct {
	ID              RefID            `json:"id"`
	SourceChatID    Optional[ChatID] `json:"source_chat_id"`
	TargetChannelID Optional[RefID]  `json:"target_channel_id"`
	SourceTitle     Optional[string] `json:"source_title"`
	SourceUsername  Optional[string] `json:"source_username"`
	TargetChatID    Optional[ChatID] `json:"target_chat_id"`
	TargetTitle     Optional[string] `json:"target_title"`
	AppendLink      Optional[string] `json:"append_link"`
	AppendLinkText  Optional[string] `json:"append_link_text"`
	DailyLimit      Optional[int]    `json:"daily_limit"`
	RemoveLinks     Optional[bool]   `json:"remove_links"`
	RemoveEmojis    Optional[bool]   `json:"remove_emojis"`
	IsActive        Optional[bool]   `json:"is_active"`
	ListenType      Optional[string] `json:"listen_type"`
	TriggerKeywords Optional[string] `json:"trigger_keywords"`
	SendLinkBack    Optional[bool]   `json:"send_link_back"`
}

// ChatInfo is what the chat resolver learns about a chat.
type ChatInfo struct {
	Title    string
	Username string
}
