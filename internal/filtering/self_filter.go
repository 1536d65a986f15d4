package filtering

import (
	"context"
	"fmt"

	"github.com/spigell/vkinder/internal/profile"
)

type selfFilter struct {
	requesterID int64
}

// NewSelf creates a filter that removes the requester from their own results.
func NewSelf(requesterID int64) Filter {
	return &selfFilter{requesterID: requesterID}
}

func (f *selfFilter) Name() string { return "self" }

func (f *selfFilter) Disable(string) {}

func (f *selfFilter) IsEnabled() bool { return true }

func (f *selfFilter) Validate() error {
	if f.requesterID == 0 {
		return fmt.Errorf("requester id is required")
	}
	return nil
}

func (f *selfFilter) Apply(_ context.Context, p *profile.Profiles) (*profile.Profiles, Step, error) {
	initial := p.Len()
	excluded := p.Exclude([]int64{f.requesterID})

	return p, Step{Initial: initial, Dropped: len(excluded), Left: p.Len()}, nil
}
