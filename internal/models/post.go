package models

import "time"

const (
	PostStatusSuccess = "success"
	PostStatusFailed  = "failed"
	PostStatusPending = "pending"
)

// Post is one forwarding attempt recorded by the forwarding engine.
// This service only reads the ledger.
type Post struct {
	ID              int64     `db:"id" json:"id"`
	SourceChannelID *int64    `db:"source_channel_id" json:"source_channel_id"`
	SourceLink      string    `db:"source_link" json:"source_link"`
	SourceChatID    *ChatID   `db:"source_chat_id" json:"source_chat_id"`
	SourceMessageID *int64    `db:"source_message_id" json:"source_message_id"`
	TargetChatID    *ChatID   `db:"target_chat_id" json:"target_chat_id"`
	TargetMessageID *int64    `db:"target_message_id" json:"target_message_id"`
	MessageText     *string   `db:"message_text" json:"message_text"`
	HasMedia        bool      `db:"has_media" json:"has_media"`
	MediaType       *string   `db:"media_type" json:"media_type"`
	Status          string    `db:"status" json:"status"`
	ErrorMessage    *string   `db:"error_message" json:"error_message"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`

	// Labels of the owning source channel.
	SourceTitle *string `db:"source_title" json:"source_title"`
	TargetTitle *string `db:"target_title" json:"target_title"`
}

// PostFilter narrows a ledger listing. Zero SourceChannelID means all channels.
type PostFilter struct {
	SourceChannelID int64
	Limit           int
}
