package events

// Event type constants, format: domain.action

// Message events
const (
	EventTypeMessageCreated = "message.created"
	EventTypeMessageUpdated = "message.updated"
	EventTypeMessageDeleted = "message.deleted"
	EventTypeMessagesRead   = "messages.read"
)

// Derived-state events
const (
	EventTypeUnreadDelta    = "unread.delta"
	EventTypeUnreadSet      = "unread.set"
	EventTypeUnreadReset    = "unread.reset"
	EventTypePreviewUpdated = "preview.updated"
)

// Presence and typing events
const (
	EventTypePresenceChanged = "presence.changed"
	EventTypeTypingChanged   = "typing.changed"
)

// Conversation events
const (
	EventTypeGroupCreated = "group.created"
)

// Connection-scoped events
const (
	EventTypeInitialState = "state.initial"
	EventTypeOnlineUsers  = "state.online_users"
	EventTypeResyncHint   = "state.resync"
)

// Redis channel prefixes
const (
	ChannelPrefixConversation = "channel:conversation:"
	ChannelPrefixUser         = "channel:user:"
	ChannelSystemPresence     = "channel:system:presence"
)

// UserChannel returns the personal channel for a user id.
func UserChannel(userID string) string {
	return ChannelPrefixUser + userID
}

// ConversationChannel returns the room channel for a conversation id.
func ConversationChannel(conversationID string) string {
	return ChannelPrefixConversation + conversationID
}
