package models

// MergeRule says what re-registering an existing channel does to a column.
type MergeRule int

const (
	// Overwrite always takes the incoming value, null included.
	Overwrite MergeRule = iota
	// KeepIfAbsent keeps the stored value when the incoming one is null.
	KeepIfAbsent
)

// ColumnPolicy binds a column to its MergeRule.
type ColumnPolicy struct {
	Column string
	Rule   MergeRule
}

// SourceChannelUpsertPolicy lists the columns written when a source chat is
// registered again. Display labels learned earlier survive a registration
// that does not carry them. is_active and created_at are never touched.
var SourceChannelUpsertPolicy = []ColumnPolicy{
	{Column: "target_chat_id", Rule: Overwrite},
	{Column: "target_channel_id", Rule: Overwrite},
	{Column: "source_title", Rule: KeepIfAbsent},
	{Column: "source_username", Rule: KeepIfAbsent},
	{Column: "target_title", Rule: KeepIfAbsent},
	{Column: "append_link", Rule: Overwrite},
	{Column: "append_link_text", Rule: Overwrite},
	{Column: "daily_limit", Rule: Overwrite},
	{Column: "remove_links", Rule: Overwrite},
	{Column: "remove_emojis", Rule: Overwrite},
	{Column: "listen_type", Rule: Overwrite},
	{Column: "trigger_keywords", Rule: Overwrite},
	{Column: "send_link_back", Rule: Overwrite},
}

// TargetChannelUpsertPolicy lists the columns written when a target chat is
// registered again.
var TargetChannelUpsertPolicy = []ColumnPolicy{
	{Column: "title", Rule: Overwrite},
	{Column: "username", Rule: KeepIfAbsent},
}

// MergeSourceChannel applies SourceChannelUpsertPolicy: it returns the row
// that results from registering incoming over existing.
func MergeSourceChannel(existing, incoming SourceChannel) SourceChannel {
	merged := incoming
	merged.ID = existing.ID
	merged.SourceChatID = existing.SourceChatID
	merged.IsActive = existing.IsActive
	merged.CreatedAt = existing.CreatedAt
	merged.UpdatedAt = existing.UpdatedAt

	policy := SourceChannelUpsertPolicy
	merged.SourceTitle = apply(ruleFor(policy, "source_title"), incoming.SourceTitle, existing.SourceTitle)
	merged.SourceUsername = apply(ruleFor(policy, "source_username"), incoming.SourceUsername, existing.SourceUsername)
	merged.TargetTitle = apply(ruleFor(policy, "target_title"), incoming.TargetTitle, existing.TargetTitle)
	merged.TargetChatID = apply(ruleFor(policy, "target_chat_id"), incoming.TargetChatID, existing.TargetChatID)
	merged.TargetChannelID = apply(ruleFor(policy, "target_channel_id"), incoming.TargetChannelID, existing.TargetChannelID)
	return merged
}

// MergeTargetChannel applies TargetChannelUpsertPolicy.
func MergeTargetChannel(existing, incoming TargetChannel) TargetChannel {
	merged := existing
	merged.Title = incoming.Title
	merged.Username = apply(ruleFor(TargetChannelUpsertPolicy, "username"), incoming.Username, existing.Username)
	return merged
}

func ruleFor(policy []ColumnPolicy, column string) MergeRule {
	for _, p := range policy {
		if p.Column == column {
			return p.Rule
		}
	}
	return Overwrite
}

func apply[T any](rule MergeRule, incoming, existing *T) *T {
	if rule == KeepIfAbsent && incoming == nil {
		return existing
	}
	return incoming
}
