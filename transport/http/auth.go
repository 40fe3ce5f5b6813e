package http

import (
	"context"
	"fmt"
	"net/http"

	"github.com/nakamauwu/chatsync/ingest"
	"github.com/nakamauwu/chatsync/types"
	"github.com/tidwall/gjson"
)

func (c *Client) Login(ctx context.Context, in types.Login) (types.AuthOutput, error) {
	var out types.AuthOutput

	if err := in.Validate(); err != nil {
		return out, err
	}

	req, err := c.newRequest(ctx, http.MethodPost, "auth/login", nil, in)
	if err != nil {
		return out, err
	}

	err = c.do(req, func(b []byte) error {
		out.Token = gjson.GetBytes(b, "token").String()
		out.User = ingest.User(gjson.GetBytes(b, "user"))
		if out.Token == "" {
			return fmt.Errorf("%w: login response without token", ingest.ErrMalformed)
		}
		return nil
	})
	return out, err
}

// Me fetches the profile of the credential holder.
func (c *Client) Me(ctx context.Context) (types.User, error) {
	var out types.User

	req, err := c.newRequest(ctx, http.MethodGet, "users/profile", nil, nil)
	if err != nil {
		return out, err
	}

	err = c.do(req, func(b []byte) error {
		v := gjson.ParseBytes(b)
		if u := v.Get("user"); u.IsObject() {
			v = u
		}
		out = ingest.User(v)
		return nil
	})
	return out, err
}
