package filtering

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/critique-matcher/internal/queue"
)

type excludedUsersFilter struct {
	users map[string]struct{}
}

// NewExcludedUsers creates a filter that removes critiques uploaded by, and
// critiquer requests of, the users listed in the config.
func NewExcludedUsers() Filter {
	return &excludedUsersFilter{}
}

func (f *excludedUsersFilter) Name() string { return "excluded_users" }

func (f *excludedUsersFilter) Disable(string) {}

func (f *excludedUsersFilter) IsEnabled() bool { return true }

func (f *excludedUsersFilter) Validate(cfg *Config) error {
	f.users = make(map[string]struct{})
	if cfg == nil {
		return nil
	}
	for _, user := range cfg.ExcludedUsers {
		if user = strings.TrimSpace(user); user != "" {
			f.users[user] = struct{}{}
		}
	}
	return nil
}

func (f *excludedUsersFilter) Apply(_ context.Context, deps Deps, b *queue.Batch) (*queue.Batch, Step, error) {
	initial := b.Len()
	if len(f.users) == 0 {
		return b, Step{Initial: initial, Dropped: 0, Left: b.Len()}, nil
	}

	excluded := b.ExcludeCritiques(func(c *queue.Critique) bool { return f.listed(c.Uploader()) })
	excluded = append(excluded, b.ExcludeRequests(func(r *queue.CritiquerRequest) bool {
		return r.Critiquer != nil && f.listed(r.Critiquer.ID)
	})...)

	if deps.Logger != nil && len(excluded) > 0 {
		deps.Logger.Info("excluding entries of excluded users",
			zap.Strings("excluded_entries", excluded),
			zap.Int("entries_left", b.Len()),
		)
	}

	return b, Step{Initial: initial, Dropped: len(excluded), Left: b.Len()}, nil
}

func (f *excludedUsersFilter) listed(user string) bool {
	_, ok := f.users[user]
	return ok
}

func (f *excludedUsersFilter) Status() Status {
	details := map[string]string{}
	if len(f.users) > 0 {
		users := make([]string, 0, len(f.users))
		for user := range f.users {
			users = append(users, user)
		}
		details["users"] = strings.Join(users, ",")
	}
	return Status{Name: f.Name(), Enabled: true, Details: details}
}
