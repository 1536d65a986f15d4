package vkontakte

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/spigell/vkinder/internal/profile"
	"go.uber.org/zap"
)

const (
	methodUsersGet         = "users.get"
	methodFriendsGetMutual = "friends.getMutual"
	methodGroupsGet        = "groups.get"
)

// GetUser fetches one profile. id 0 means the token owner.
func (c *Client) GetUser(ctx context.Context, id int64) (*profile.Profile, error) {
	q := url.Values{}
	q.Set("fields", profile.Fields)
	if id != 0 {
		q.Set("user_ids", strconv.FormatInt(id, 10))
	}

	var items []any
	if err := c.call(ctx, methodUsersGet, q, &items); err != nil {
		return nil, fmt.Errorf("getting user %d: %w", id, err)
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("user %d not found", id)
	}

	return c.adapter.Decode(items[0])
}

// MutualFriendCount returns the number of friends source and target share.
func (c *Client) MutualFriendCount(ctx context.Context, source, target int64) (int, error) {
	q := url.Values{}
	q.Set("source_uid", strconv.FormatInt(source, 10))
	q.Set("target_uid", strconv.FormatInt(target, 10))

	var ids []int64
	if err := c.call(ctx, methodFriendsGetMutual, q, &ids); err != nil {
		return 0, fmt.Errorf("getting mutual friends of %d and %d: %w", source, target, err)
	}
	return len(ids), nil
}

// Groups returns the group ids of a user. Results are cached for the life of the client.
func (c *Client) Groups(ctx context.Context, id int64) ([]int64, error) {
	key := "groups:" + strconv.FormatInt(id, 10)

	raw, err := c.groups.GetSet(ctx, key, func(ctx context.Context) ([]byte, error) {
		q := url.Values{}
		q.Set("user_id", strconv.FormatInt(id, 10))
		q.Set("count", "1000")

		return c.callRaw(ctx, methodGroupsGet, q)
	})
	if err != nil {
		return nil, fmt.Errorf("getting groups of %d: %w", id, err)
	}

	var groups itemsResponse[int64]
	if err := json.Unmarshal(raw, &groups); err != nil {
		return nil, fmt.Errorf("decoding groups of %d: %w", id, err)
	}

	c.logger.Debug("got groups", zap.Int64("user_id", id), zap.Int("count", len(groups.Items)))
	return groups.Items, nil
}
