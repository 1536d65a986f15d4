package filtering

import (
	"context"
	"errors"
	"fmt"

	"github.com/spigell/vkinder/internal/profile"
	"go.uber.org/zap"
)

// DefaultMinPhotos is how many profile photos a candidate must have to be shown.
const DefaultMinPhotos = 3

// PhotoLookup returns profile photos of a user, most liked first.
type PhotoLookup func(ctx context.Context, userID int64) ([]profile.Photo, error)

type PhotoDeps struct {
	Photos PhotoLookup
	// Min photos to keep a candidate. The same number of top photos is attached to it.
	Min    int
	Logger *zap.Logger
}

type photosFilter struct {
	deps    *PhotoDeps
	enabled bool
	reason  string
}

// NewPhotos creates a filter that drops candidates with too few profile photos
// and attaches the most liked ones to the rest.
func NewPhotos(deps *PhotoDeps) Filter {
	return &photosFilter{deps: deps, enabled: true}
}

func (f *photosFilter) Name() string { return "photos" }

func (f *photosFilter) Disable(reason string) {
	f.enabled = false
	f.reason = reason
}

func (f *photosFilter) IsEnabled() bool { return f.enabled }

func (f *photosFilter) Reason() string { return f.reason }

func (f *photosFilter) Validate() error {
	if f.deps == nil || f.deps.Photos == nil {
		return errors.New("photo lookup is required")
	}
	if f.deps.Min <= 0 {
		return fmt.Errorf("minimum photos must be positive, got %d", f.deps.Min)
	}
	if f.deps.Logger == nil {
		return errors.New("logger is required")
	}
	return nil
}

func (f *photosFilter) Apply(ctx context.Context, p *profile.Profiles) (*profile.Profiles, Step, error) {
	initial := p.Len()
	short := make(map[int64]struct{})

	for _, candidate := range p.Items {
		photos, err := f.deps.Photos(ctx, candidate.ID)
		if err != nil {
			if ctx.Err() != nil {
				return nil, Step{}, ctx.Err()
			}
			// private albums and deleted pages
			f.deps.Logger.Debug("photos lookup failed",
				zap.Int64("candidate_id", candidate.ID),
				zap.Error(err),
			)
			short[candidate.ID] = struct{}{}
			continue
		}

		if len(photos) < f.deps.Min {
			short[candidate.ID] = struct{}{}
			continue
		}
		candidate.Photos = photos[:f.deps.Min]
	}

	excluded := p.ExcludeFunc(func(item *profile.Profile) bool {
		_, ok := short[item.ID]
		return ok
	})
	if len(excluded) > 0 {
		f.deps.Logger.Info("excluding profiles with few photos",
			zap.Int("min_photos", f.deps.Min),
			zap.Int64s("excluded_profiles", excluded),
			zap.Int("profiles_left", p.Len()),
		)
	}

	return p, Step{Initial: initial, Dropped: len(excluded), Left: p.Len()}, nil
}
