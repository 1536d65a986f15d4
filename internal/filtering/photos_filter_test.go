package filtering

import (
	"context"
	"errors"
	"testing"

	"github.com/spigell/vkinder/internal/profile"
	"go.uber.org/zap"
)

func photosOf(owner int64, likes ...int) []profile.Photo {
	photos := make([]profile.Photo, 0, len(likes))
	for i, l := range likes {
		photos = append(photos, profile.Photo{ID: int64(i + 1), OwnerID: owner, Likes: l})
	}
	return photos
}

func TestPhotosFilterDropsCandidatesWithFewPhotos(t *testing.T) {
	lookup := func(_ context.Context, id int64) ([]profile.Photo, error) {
		switch id {
		case 1:
			return photosOf(1, 9, 5, 3, 1), nil
		case 2:
			return photosOf(2, 4, 2), nil
		case 3:
			return nil, errors.New("vk photos.get: error 30: This profile is private")
		default:
			return photosOf(id, 1, 1, 1), nil
		}
	}

	f := NewPhotos(&PhotoDeps{Photos: lookup, Min: DefaultMinPhotos, Logger: zap.NewNop()})
	if err := f.Validate(); err != nil {
		t.Fatalf("unexpected validation error: %v", err)
	}

	got, step, err := f.Apply(context.Background(), candidates(1, 2, 3, 4))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	equalIDs(t, got.IDs(), 1, 4)
	if step.Initial != 4 || step.Dropped != 2 || step.Left != 2 {
		t.Fatalf("unexpected step: %+v", step)
	}

	first := got.Items[0].Photos
	if len(first) != 3 || first[0].Likes != 9 || first[2].Likes != 3 {
		t.Fatalf("expected the three most liked photos, got %+v", first)
	}
}

func TestPhotosFilterStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	lookup := func(ctx context.Context, _ int64) ([]profile.Photo, error) {
		return nil, ctx.Err()
	}

	f := NewPhotos(&PhotoDeps{Photos: lookup, Min: 3, Logger: zap.NewNop()})
	if _, _, err := f.Apply(ctx, candidates(1, 2)); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestPhotosFilterValidate(t *testing.T) {
	tests := []struct {
		name string
		deps *PhotoDeps
	}{
		{name: "no deps"},
		{name: "no lookup", deps: &PhotoDeps{Min: 3, Logger: zap.NewNop()}},
		{name: "zero minimum", deps: &PhotoDeps{Photos: func(context.Context, int64) ([]profile.Photo, error) { return nil, nil }, Logger: zap.NewNop()}},
		{name: "no logger", deps: &PhotoDeps{Photos: func(context.Context, int64) ([]profile.Photo, error) { return nil, nil }, Min: 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := NewPhotos(tt.deps).Validate(); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}
