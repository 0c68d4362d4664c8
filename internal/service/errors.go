package service

import "errors"

// Messages are returned to dashboard clients verbatim; keep their wording
// and capitalization.
var (
	ErrChannelIDRequired      = errors.New("Channel ID is required")
	ErrNoFieldsToUpdate       = errors.New("No fields to update")
	ErrChannelNotFound        = errors.New("Channel not found")
	ErrTargetChannelNotFound  = errors.New("target channel not found")
	ErrChatIDAndTitleRequired = errors.New("chat_id and title are required")
	ErrSourceChatIDRequired   = errors.New("source_chat_id is required")
	ErrSourceChatIDImmutable  = errors.New("source_chat_id cannot be changed")
	ErrSettingKeyRequired     = errors.New("key is required")
	ErrInvalidField           = errors.New("invalid field")

	// ErrTargetChannelInUse is shown to the operator as is.
	ErrTargetChannelInUse = errors.New("Bu hedef kanal kullanımda. Önce dinleme kanallarından kaldırın.")
)
