package vkontakte

import (
	"context"
	"fmt"
	"net/url"
	"reflect"
	"strconv"

	"github.com/spigell/vkinder/internal/profile"
	"go.uber.org/zap"
)

const methodUsersSearch = "users.search"

type SearchParams struct {
	// vkparam is custom tag for reflect. Please see buildParams.
	City     int         `vkparam:"city"`
	Sex      profile.Sex `vkparam:"sex"`
	AgeFrom  int         `vkparam:"age_from"`
	AgeTo    int         `vkparam:"age_to"`
	HasPhoto bool        `vkparam:"has_photo"`
	// Status is the relation code to search for. 0 means any.
	Status int `vkparam:"status"`
	// Count is the total number of users wanted. VK never returns more than 1000.
	Count int `vkparam:"-"`
}

// SearchUsers pages through users.search until Count users are collected or results run out.
func (c *Client) SearchUsers(ctx context.Context, params *SearchParams) (*profile.Profiles, error) {
	total := params.Count
	if total <= 0 || total > perPage {
		total = perPage
	}

	pageSize := min(c.PageSize, total)
	if pageSize <= 0 {
		pageSize = total
	}

	q := buildParams(params)
	q.Set("fields", profile.Fields)

	var items []any
	for offset := 0; offset < total; {
		q.Set("offset", strconv.Itoa(offset))
		q.Set("count", strconv.Itoa(min(pageSize, total-offset)))

		var page itemsResponse[any]
		if err := c.call(ctx, methodUsersSearch, q, &page); err != nil {
			return nil, fmt.Errorf("searching users: %w", err)
		}

		items = append(items, page.Items...)
		offset += len(page.Items)

		c.logger.Debug("got search page",
			zap.Int("found", page.Count),
			zap.Int("page items", len(page.Items)),
			zap.Int("collected", len(items)),
		)

		if len(page.Items) == 0 || offset >= page.Count {
			break
		}
	}

	return c.adapter.DecodeAll(items)
}

func buildParams(params *SearchParams) url.Values {
	q := url.Values{}
	value := reflect.ValueOf(params).Elem()

	for _, field := range reflect.VisibleFields(value.Type()) {
		key := field.Tag.Get("vkparam")
		if key == "" || key == "-" {
			continue
		}

		v := value.FieldByIndex(field.Index)
		switch v.Kind() {
		case reflect.Bool:
			if v.Bool() {
				q.Set(key, "1")
			}
		case reflect.Int, reflect.Int64:
			if v.Int() != 0 {
				q.Set(key, strconv.FormatInt(v.Int(), 10))
			}
		case reflect.String:
			if v.String() != "" {
				q.Set(key, v.String())
			}
		}
	}

	return q
}
