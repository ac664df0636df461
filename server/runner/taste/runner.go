// Package taste re-infers outdated taste profiles in the background. The
// live feed re-infers when a user's order set changes; this runner covers
// users whose profile simply aged out.
package taste

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/soleshop/soleshop/server/service/catalog"
	"github.com/soleshop/soleshop/store"
)

// RunnerStore is the store surface the runner needs.
type RunnerStore interface {
	ListUsers(ctx context.Context, find *store.FindUser) ([]*store.User, error)
	ListOrders(ctx context.Context, find *store.FindOrder) ([]*store.Order, error)
}

type Runner struct {
	store     RunnerStore
	analyzer  *catalog.Analyzer
	prefs     *catalog.Preferences
	interval  time.Duration
	staleness time.Duration
}

// NewRunner creates a taste refresh runner.
func NewRunner(st RunnerStore, analyzer *catalog.Analyzer, prefs *catalog.Preferences) *Runner {
	return &Runner{
		store:     st,
		analyzer:  analyzer,
		prefs:     prefs,
		interval:  1 * time.Hour,
		staleness: catalog.DefaultStaleness,
	}
}

// Run starts the background task.
func (r *Runner) Run(ctx context.Context) {
	// Process once on startup.
	r.RunOnce(ctx)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.RunOnce(ctx)
		case <-ctx.Done():
			slog.Info("taste runner stopped")
			return
		}
	}
}

// RunOnce refreshes every stale profile once.
func (r *Runner) RunOnce(ctx context.Context) {
	role := store.RoleUser
	users, err := r.store.ListUsers(ctx, &store.FindUser{Role: &role})
	if err != nil {
		slog.Error("failed to list users for taste refresh", "error", err)
		return
	}

	refreshed := 0
	for _, user := range users {
		if ctx.Err() != nil {
			return
		}
		if r.refreshUser(ctx, user.ID) {
			refreshed++
		}
	}
	if refreshed > 0 {
		slog.Info("refreshed stale taste profiles", "count", refreshed)
	}
}

func (r *Runner) refreshUser(ctx context.Context, userID string) bool {
	stale, err := r.prefs.IsStale(ctx, userID, r.staleness)
	if err != nil {
		slog.Warn("failed to check preference staleness", "user_id", userID, "error", err)
		return false
	}
	if !stale {
		return false
	}

	orders, err := r.store.ListOrders(ctx, &store.FindOrder{UserID: &userID})
	if err != nil {
		slog.Warn("failed to list orders for taste refresh", "user_id", userID, "error", err)
		return false
	}
	valid := orders[:0:0]
	for _, o := range orders {
		if o.Status != store.OrderStatusCancelled {
			valid = append(valid, o)
		}
	}
	if len(valid) == 0 {
		return false
	}
	sort.SliceStable(valid, func(i, j int) bool { return valid[i].CreatedTs > valid[j].CreatedTs })

	inferred := r.analyzer.Analyze(ctx, valid)
	if inferred.IsZero() {
		// Inference failed or found nothing; leave the stored profile alone.
		return false
	}
	if stored, ok, err := r.prefs.Load(ctx, userID); err == nil && ok && stored.Equal(inferred) {
		// Still stamp it so the profile is not re-inferred every pass.
		if err := r.prefs.Save(ctx, userID, inferred); err != nil {
			slog.Warn("failed to stamp preference", "user_id", userID, "error", err)
		}
		return false
	}
	if err := r.prefs.Save(ctx, userID, inferred); err != nil {
		slog.Warn("failed to persist refreshed preference", "user_id", userID, "error", err)
		return false
	}
	return true
}
