package ingest

import (
	"fmt"

	"github.com/nakamauwu/chatsync/ptr"
	"github.com/nakamauwu/chatsync/types"
	"github.com/tidwall/gjson"
)

func Notification(raw []byte) (types.Notification, error) {
	v, err := parse(raw)
	if err != nil {
		return types.Notification{}, err
	}
	if n := v.Get("notification"); n.IsObject() {
		v = n
	}
	return notificationFrom(v)
}

func notificationFrom(v gjson.Result) (types.Notification, error) {
	out := types.Notification{
		ID:        first(v, "id", "_id").String(),
		UserID:    ref(first(v, "userId", "recipient", "user")),
		Type:      types.NotificationType(v.Get("type").String()),
		Title:     v.Get("title").String(),
		Message:   v.Get("message").String(),
		Read:      first(v, "read", "isRead").Bool(),
		CreatedAt: timeOf(v.Get("createdAt")),
	}
	if out.ID == "" {
		return out, fmt.Errorf("%w: notification without id", ErrMalformed)
	}
	if !out.Type.Valid() {
		return out, fmt.Errorf("%w: unknown notification type %q", ErrMalformed, out.Type)
	}
	out.TaskID = ptr.NonZero(ref(first(v, "taskId", "task")))
	return out, nil
}

// Notifications decodes {"notifications": [...], "pagination": {...}}.
// Items of unknown type are skipped rather than failing the whole page.
func Notifications(raw []byte, args types.PageArgs) (types.Page[types.Notification], error) {
	out := types.Page[types.Notification]{Page: args.Page, Limit: args.Limit}

	v, err := parse(raw)
	if err != nil {
		return out, err
	}

	for _, item := range v.Get("notifications").Array() {
		n, err := notificationFrom(item)
		if err != nil {
			continue
		}
		out.Items = append(out.Items, n)
	}

	pagination := v.Get("pagination")
	out.Total = int(first(pagination, "total", "totalItems").Int())
	if hasMore := pagination.Get("hasMore"); hasMore.Exists() {
		out.HasMore = hasMore.Bool()
	} else if pages := first(pagination, "pages", "totalPages"); pages.Exists() {
		out.HasMore = int64(args.Page) < pages.Int()
	} else {
		out.HasMore = uint(len(v.Get("notifications").Array())) >= args.Limit
	}

	return out, nil
}
