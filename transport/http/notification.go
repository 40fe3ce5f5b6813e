package http

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/nakamauwu/chatsync/ingest"
	"github.com/nakamauwu/chatsync/types"
	"github.com/tidwall/gjson"
)

func (c *Client) Notifications(ctx context.Context, in types.ListNotifications) (types.Page[types.Notification], error) {
	var out types.Page[types.Notification]

	if err := in.Validate(); err != nil {
		return out, err
	}

	q := url.Values{}
	q.Set("page", strconv.FormatUint(uint64(in.PageArgs.Page), 10))
	q.Set("limit", strconv.FormatUint(uint64(in.PageArgs.Limit), 10))

	req, err := c.newRequest(ctx, http.MethodGet, "notifications", q, nil)
	if err != nil {
		return out, err
	}

	err = c.do(req, func(b []byte) error {
		out, err = ingest.Notifications(b, in.PageArgs)
		return err
	})
	return out, err
}

func (c *Client) UnreadNotificationsCount(ctx context.Context) (int, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "notifications/unread-count", nil, nil)
	if err != nil {
		return 0, err
	}

	var out int
	err = c.do(req, func(b []byte) error {
		out = int(gjson.GetBytes(b, "count").Int())
		return nil
	})
	return out, err
}

func (c *Client) ReadNotification(ctx context.Context, notificationID string) error {
	req, err := c.newRequest(ctx, http.MethodPut, "notifications/"+url.PathEscape(notificationID)+"/read", nil, nil)
	if err != nil {
		return err
	}
	return c.do(req, nil)
}

func (c *Client) ReadAllNotifications(ctx context.Context) error {
	req, err := c.newRequest(ctx, http.MethodPut, "notifications/mark-all-read", nil, nil)
	if err != nil {
		return err
	}
	return c.do(req, nil)
}

func (c *Client) DeleteNotification(ctx context.Context, notificationID string) error {
	req, err := c.newRequest(ctx, http.MethodDelete, "notifications/"+url.PathEscape(notificationID), nil, nil)
	if err != nil {
		return err
	}
	return c.do(req, nil)
}

func (c *Client) ClearNotifications(ctx context.Context) error {
	req, err := c.newRequest(ctx, http.MethodDelete, "notifications/clear-all", nil, nil)
	if err != nil {
		return err
	}
	return c.do(req, nil)
}
