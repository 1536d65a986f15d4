package vkontakte

import (
	"cmp"
	"context"
	"fmt"
	"net/url"
	"slices"
	"strconv"

	"github.com/spigell/vkinder/internal/profile"
	"go.uber.org/zap"
)

const (
	methodPhotosGet = "photos.get"

	profileAlbum = "profile"
	maxPhotos    = 1000
)

type rawPhoto struct {
	ID      int64 `json:"id"`
	OwnerID int64 `json:"owner_id"`
	Likes   struct {
		Count int `json:"count"`
	} `json:"likes"`
	Sizes []photoSize `json:"sizes"`
}

type photoSize struct {
	Type   string `json:"type"`
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// sizeOrder ranks VK size letters from smallest to largest. Old photos report zero dimensions.
var sizeOrder = map[string]int{"s": 1, "m": 2, "x": 3, "o": 4, "p": 5, "q": 6, "r": 7, "y": 8, "z": 9, "w": 10}

// ProfilePhotos returns photos of the user's profile album, most liked first.
// Equal like counts keep the album order.
func (c *Client) ProfilePhotos(ctx context.Context, id int64) ([]profile.Photo, error) {
	q := url.Values{}
	q.Set("owner_id", strconv.FormatInt(id, 10))
	q.Set("album_id", profileAlbum)
	q.Set("extended", "1")
	q.Set("count", strconv.Itoa(maxPhotos))

	var page itemsResponse[rawPhoto]
	if err := c.call(ctx, methodPhotosGet, q, &page); err != nil {
		return nil, fmt.Errorf("getting photos of %d: %w", id, err)
	}

	photos := make([]profile.Photo, 0, len(page.Items))
	for _, raw := range page.Items {
		photos = append(photos, profile.Photo{
			ID:      raw.ID,
			OwnerID: raw.OwnerID,
			Likes:   raw.Likes.Count,
			URL:     largest(raw.Sizes),
		})
	}

	slices.SortStableFunc(photos, func(a, b profile.Photo) int {
		return cmp.Compare(b.Likes, a.Likes)
	})

	c.logger.Debug("got photos", zap.Int64("user_id", id), zap.Int("count", len(photos)))
	return photos, nil
}

func largest(sizes []photoSize) string {
	if len(sizes) == 0 {
		return ""
	}
	best := slices.MaxFunc(sizes, func(a, b photoSize) int {
		if c := cmp.Compare(a.Width*a.Height, b.Width*b.Height); c != 0 {
			return c
		}
		return cmp.Compare(sizeOrder[a.Type], sizeOrder[b.Type])
	})
	return best.URL
}
