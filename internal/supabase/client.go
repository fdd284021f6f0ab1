// Package supabase adapts the Supabase SDKs to the backend contracts:
// GoTrue for identity, Storage for blobs, PostgREST for the procedures and
// edge functions for payment sessions.
package supabase

import (
	"context"
	"fmt"
	"strings"

	supa "github.com/supabase-community/supabase-go"
)

// Client bundles the SDK clients for one project.
type Client struct {
	url string
	key string
	sdk *supa.Client
}

func New(url, key string) (*Client, error) {
	url = strings.TrimRight(url, "/")
	sdk, err := supa.NewClient(url, key, nil)
	if err != nil {
		return nil, fmt.Errorf("create supabase client: %w", err)
	}
	return &Client{url: url, key: key, sdk: sdk}, nil
}

// The SDKs take no context; a cancelled request is at least not started.
func alive(ctx context.Context) error {
	return ctx.Err()
}

func (c *Client) headers() map[string]string {
	return map[string]string{
		"apikey":        c.key,
		"Authorization": "Bearer " + c.key,
	}
}
