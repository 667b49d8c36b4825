package filtering

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/critique-matcher/internal/queue"
)

type excludeFileFilter struct {
	path string
}

// NewExcludeFile creates a filter that removes entries listed in the exclude file.
func NewExcludeFile() Filter {
	return &excludeFileFilter{}
}

func (f *excludeFileFilter) Name() string { return "exclude_file" }

func (f *excludeFileFilter) Disable(string) {}

func (f *excludeFileFilter) IsEnabled() bool { return true }

func (f *excludeFileFilter) Validate(cfg *Config) error {
	f.path = ""
	if cfg != nil {
		f.path = strings.TrimSpace(cfg.ExcludeFile)
	}
	return nil
}

func (f *excludeFileFilter) Apply(_ context.Context, deps Deps, b *queue.Batch) (*queue.Batch, Step, error) {
	initial := b.Len()
	if f.path == "" {
		return b, Step{Initial: initial, Dropped: 0, Left: b.Len()}, nil
	}

	excluded, err := queue.GetExcludedFromFile(f.path)
	if err != nil {
		return b, Step{}, fmt.Errorf("getting excluded entries from file: %w", err)
	}

	critiques := excluded.IDs(queue.KindCritique)
	requests := excluded.IDs(queue.KindCritiquerRequest)

	removed := b.ExcludeCritiques(func(c *queue.Critique) bool {
		_, ok := critiques[c.ID]
		return ok
	})
	removed = append(removed, b.ExcludeRequests(func(r *queue.CritiquerRequest) bool {
		_, ok := requests[r.ID]
		return ok
	})...)

	if deps.Logger != nil && len(removed) > 0 {
		deps.Logger.Info("excluding entries based on exclude file",
			zap.String("path", f.path),
			zap.Strings("excluded_entries", removed),
			zap.Int("entries_left", b.Len()),
		)
	}

	return b, Step{Initial: initial, Dropped: len(removed), Left: b.Len()}, nil
}

func (f *excludeFileFilter) Status() Status {
	details := map[string]string{}
	if f.path != "" {
		details["path"] = f.path
	}
	return Status{Name: f.Name(), Enabled: true, Details: details}
}
