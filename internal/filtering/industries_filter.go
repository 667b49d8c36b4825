package filtering

import (
	"context"

	"go.uber.org/zap"

	"github.com/spigell/critique-matcher/internal/queue"
)

type industriesFilter struct {
	disabled bool
	reason   string
}

// NewIndustries creates a filter that removes entries with an empty, duplicated
// or unknown industry list.
func NewIndustries() Filter {
	return &industriesFilter{}
}

func (f *industriesFilter) Name() string { return "industries" }

func (f *industriesFilter) Disable(reason string) {
	f.disabled = true
	f.reason = reason
}

func (f *industriesFilter) IsEnabled() bool { return !f.disabled }

func (f *industriesFilter) Validate(*Config) error { return nil }

func (f *industriesFilter) Apply(_ context.Context, deps Deps, b *queue.Batch) (*queue.Batch, Step, error) {
	initial := b.Len()

	invalid := func(id, industries string) bool {
		err := queue.ValidateIndustries(industries)
		if err != nil && deps.Logger != nil {
			deps.Logger.Warn("excluding entry with invalid industries",
				zap.String("id", id),
				zap.String("industries", industries),
				zap.Error(err),
			)
		}
		return err != nil
	}

	critiques := b.ExcludeCritiques(func(c *queue.Critique) bool { return invalid(c.ID, c.Industries()) })
	requests := b.ExcludeRequests(func(r *queue.CritiquerRequest) bool { return invalid(r.ID, r.Industries) })

	dropped := len(critiques) + len(requests)
	return b, Step{Initial: initial, Dropped: dropped, Left: b.Len()}, nil
}

func (f *industriesFilter) Status() Status {
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason}
}
