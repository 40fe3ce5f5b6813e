// Package ingest turns raw server payloads into the canonical types. It is
// the only place that knows the server may send a sender as a bare id or as
// an embedded object, an id as "id" or "_id", or a chat as an id or object.
package ingest

import (
	"errors"
	"fmt"
	"time"

	"github.com/nakamauwu/chatsync/types"
	"github.com/tidwall/gjson"
)

var ErrMalformed = errors.New("malformed payload")

func parse(raw []byte) (gjson.Result, error) {
	if !gjson.ValidBytes(raw) {
		return gjson.Result{}, fmt.Errorf("%w: invalid json", ErrMalformed)
	}
	return gjson.ParseBytes(raw), nil
}

// ref reads an identifier that may be a plain string or an object with an
// id field.
func ref(v gjson.Result) string {
	switch {
	case !v.Exists():
		return ""
	case v.IsObject():
		return first(v, "id", "_id").String()
	default:
		return v.String()
	}
}

func first(v gjson.Result, paths ...string) gjson.Result {
	for _, p := range paths {
		if r := v.Get(p); r.Exists() && r.Type != gjson.Null {
			return r
		}
	}
	return gjson.Result{}
}

func timeOf(v gjson.Result) time.Time {
	switch v.Type {
	case gjson.Number:
		return time.UnixMilli(v.Int()).UTC()
	case gjson.String:
		t, err := time.Parse(time.RFC3339Nano, v.String())
		if err != nil {
			return time.Time{}
		}
		return t.UTC()
	}
	return time.Time{}
}

func optionalTime(v gjson.Result) *time.Time {
	t := timeOf(v)
	if t.IsZero() {
		return nil
	}
	return &t
}

// User normalizes a user reference into {id, name, avatar}.
func User(v gjson.Result) types.User {
	if !v.IsObject() {
		return types.User{ID: v.String()}
	}

	out := types.User{
		ID:     first(v, "id", "_id", "user").String(),
		Name:   first(v, "name", "displayName", "username").String(),
		Avatar: first(v, "avatar", "avatarUrl").String(),
	}
	if nested := v.Get("user"); nested.IsObject() {
		inner := User(nested)
		out.ID = inner.ID
		if out.Name == "" {
			out.Name = inner.Name
		}
		if out.Avatar == "" {
			out.Avatar = inner.Avatar
		}
	}

	switch s := first(v, "status", "onlineStatus", "isOnline"); s.Type {
	case gjson.True:
		out.Status = types.UserStatusOnline
	case gjson.False:
		out.Status = types.UserStatusOffline
	case gjson.String:
		if st := types.UserStatus(s.String()); st.Valid() {
			out.Status = st
		}
	}

	return out
}

func users(v gjson.Result) []types.User {
	var out []types.User
	for _, item := range v.Array() {
		if u := User(item); u.ID != "" {
			out = append(out, u)
		}
	}
	return out
}
