package filtering

import (
	"context"
	"fmt"

	"github.com/spigell/vkinder/internal/lists"
	"github.com/spigell/vkinder/internal/profile"
	"go.uber.org/zap"
)

type listFilter struct {
	kind    lists.Kind
	deps    *ListDeps
	enabled bool
	reason  string
}

type ListDeps struct {
	Lists       *lists.Lists
	RequesterID int64
	Logger      *zap.Logger
}

// NewBlacklist creates a filter that removes candidates the requester has blocked.
func NewBlacklist(deps *ListDeps) Filter {
	return &listFilter{kind: lists.Blacklist, deps: deps, enabled: true}
}

// NewFavourites creates a filter that removes candidates already saved to favourites.
func NewFavourites(deps *ListDeps) Filter {
	return &listFilter{kind: lists.Favourites, deps: deps, enabled: true}
}

func (f *listFilter) Name() string { return string(f.kind) }

func (f *listFilter) Disable(reason string) {
	f.enabled = false
	f.reason = reason
}

func (f *listFilter) IsEnabled() bool { return f.enabled }

func (f *listFilter) Reason() string { return f.reason }

func (f *listFilter) Validate() error {
	if f.deps == nil || f.deps.Lists == nil {
		return fmt.Errorf("lists are required")
	}

	if f.deps.Logger == nil {
		return fmt.Errorf("logger is required")
	}

	return nil
}

func (f *listFilter) Apply(_ context.Context, p *profile.Profiles) (*profile.Profiles, Step, error) {
	initial := p.Len()

	excluded := p.Exclude(f.deps.Lists.IDs(f.deps.RequesterID, f.kind))
	if len(excluded) > 0 {
		f.deps.Logger.Info("excluding listed profiles",
			zap.String("list", string(f.kind)),
			zap.Int64s("excluded_profiles", excluded),
			zap.Int("profiles_left", p.Len()),
		)
	}

	return p, Step{Initial: initial, Dropped: len(excluded), Left: p.Len()}, nil
}
