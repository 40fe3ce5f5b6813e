package types

import "time"

type Notification struct {
	ID        string           `json:"id"`
	UserID    string           `json:"userId"`
	Type      NotificationType `json:"type"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	TaskID    *string          `json:"taskId,omitempty"`
	Read      bool             `json:"read"`
	CreatedAt time.Time        `json:"createdAt"`
}

type NotificationType string

func (t NotificationType) String() string {
	return string(t)
}

const (
	NotificationTypeTaskAssigned        NotificationType = "task-assigned"
	NotificationTypeTaskUpdated         NotificationType = "task-updated"
	NotificationTypeTaskCompleted       NotificationType = "task-completed"
	NotificationTypeDeadlineApproaching NotificationType = "deadline-approaching"
	NotificationTypeTaskOverdue         NotificationType = "task-overdue"
	NotificationTypeCommentAdded        NotificationType = "comment-added"
	NotificationTypeStatusChanged       NotificationType = "status-changed"
	NotificationTypePriorityChanged     NotificationType = "priority-changed"
	NotificationTypeMeetingInvitation   NotificationType = "meeting-invitation"
)

func (t NotificationType) Valid() bool {
	switch t {
	case NotificationTypeTaskAssigned,
		NotificationTypeTaskUpdated,
		NotificationTypeTaskCompleted,
		NotificationTypeDeadlineApproaching,
		NotificationTypeTaskOverdue,
		NotificationTypeCommentAdded,
		NotificationTypeStatusChanged,
		NotificationTypePriorityChanged,
		NotificationTypeMeetingInvitation:
		return true
	}
	return false
}

type ListNotifications struct {
	PageArgs PageArgs
}

func (in *ListNotifications) Validate() error {
	return in.PageArgs.Validate()
}
