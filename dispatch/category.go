package dispatch

// Category is a class of server pushed event local consumers subscribe to.
type Category string

const (
	CategoryNewMessage          Category = "new-message"
	CategoryMessageDelivered    Category = "message-delivered"
	CategoryMessageRead         Category = "message-read"
	CategoryMessageDeleted      Category = "message-deleted"
	CategoryReactionAdded       Category = "reaction-added"
	CategoryReactionRemoved     Category = "reaction-removed"
	CategoryTypingStart         Category = "typing-start"
	CategoryTypingStop          Category = "typing-stop"
	CategoryUserStatusChange    Category = "user-status-change"
	CategoryPresenceBulk        Category = "presence-bulk"
	CategoryMessageNotification Category = "message-notification"
	CategoryUploadProgress      Category = "attachment-upload-progress"
	CategoryNotification        Category = "notification"
)

func (c Category) String() string {
	return string(c)
}

// Subtypes passed along some categories.
const (
	SubtypeNew    = "new"
	SubtypeAdd    = "add"
	SubtypeRemove = "remove"
	SubtypeChange = "change"
	SubtypeBulk   = "bulk"
)
