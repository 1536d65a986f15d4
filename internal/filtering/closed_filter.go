package filtering

import (
	"context"

	"github.com/spigell/vkinder/internal/profile"
	"go.uber.org/zap"
)

type closedFilter struct {
	enabled bool
	reason  string
	logger  *zap.Logger
}

// NewClosed creates a filter that removes private profiles the requester cannot see.
// Their interests are hidden and relation lookups fail for them.
func NewClosed(logger *zap.Logger) Filter {
	return &closedFilter{enabled: true, logger: logger}
}

func (f *closedFilter) Name() string { return "closed" }

func (f *closedFilter) Disable(reason string) {
	f.enabled = false
	f.reason = reason
}

func (f *closedFilter) IsEnabled() bool { return f.enabled }

func (f *closedFilter) Reason() string { return f.reason }

func (f *closedFilter) Validate() error { return nil }

func (f *closedFilter) Apply(_ context.Context, p *profile.Profiles) (*profile.Profiles, Step, error) {
	initial := p.Len()
	excluded := p.ExcludeFunc(func(item *profile.Profile) bool {
		return item.IsClosed && !item.CanAccessClosed
	})

	if f.logger != nil && len(excluded) > 0 {
		f.logger.Debug("excluding closed profiles",
			zap.Int64s("excluded_profiles", excluded),
			zap.Int("profiles_left", p.Len()),
		)
	}

	return p, Step{Initial: initial, Dropped: len(excluded), Left: p.Len()}, nil
}
