package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/and161185/movie-admin/internal/model"
	"github.com/and161185/movie-admin/internal/session"
)

var _ session.Authenticator = (*Client)(nil)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string `json:"accessToken"`
	Token       string `json:"token"`
}

// Login exchanges credentials for an access token.
func (c *Client) Login(ctx context.Context, creds model.Credentials) (string, error) {
	var out loginResponse
	err := c.sendJSON(ctx, http.MethodPost, "/auth/login",
		loginRequest{Username: creds.Username, Password: creds.Password}, &out)
	if err != nil {
		return "", err
	}
	tok := out.AccessToken
	if tok == "" {
		tok = out.Token
	}
	if strings.TrimSpace(tok) == "" {
		return "", errors.New("login response has no token")
	}
	return tok, nil
}

type decodeResponse struct {
	UserID      flexString `json:"userId"`
	Email       string     `json:"email"`
	FullName    string     `json:"fullName"`
	Role        string     `json:"role"`
	Permissions []string   `json:"permissions"`
	ExpiresAt   timestamp  `json:"expiresAt"`
}

// Decode returns the profile behind the current token.
func (c *Client) Decode(ctx context.Context) (model.Profile, error) {
	var out decodeResponse
	if err := c.getJSON(ctx, "/auth/decode", &out); err != nil {
		return model.Profile{}, err
	}
	perms := model.PermissionSet(out.Permissions)
	if perms == nil {
		perms = model.PermissionSet{}
	}
	return model.Profile{
		UserID:      string(out.UserID),
		Email:       out.Email,
		FullName:    out.FullName,
		Role:        out.Role,
		Permissions: perms,
		ExpiresAt:   time.Time(out.ExpiresAt),
	}, nil
}

// flexString accepts a JSON string or number.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if string(b) == "null" {
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}

// timestamp accepts RFC 3339 strings, numeric strings and Unix numbers
// (seconds, or milliseconds when too large to be seconds).
type timestamp time.Time

func (t *timestamp) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if string(b) == "null" || string(b) == `""` {
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			*t = timestamp(fromUnix(n))
			return nil
		}
		v, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return fmt.Errorf("expiresAt: %w", err)
		}
		*t = timestamp(v)
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return fmt.Errorf("expiresAt: %w", err)
	}
	*t = timestamp(fromUnix(int64(f)))
	return nil
}

func fromUnix(n int64) time.Time {
	if n > 1e12 {
		return time.UnixMilli(n).UTC()
	}
	return time.Unix(n, 0).UTC()
}
