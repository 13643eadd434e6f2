package memory

import (
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// StudyGoal is the in-memory state tracked between study commands. Goals are
// session-scoped, so a cache with eviction is enough.
type StudyGoal struct {
	Id          uuid.UUID
	VaultId     string
	Topic       string
	Description string
	Steps       []string
	CreatedAt   time.Time
}

type GoalRepository struct {
	cache *cache.Cache
}

func NewGoalRepository() *GoalRepository {
	// Goals expire after a day of inactivity, purged every hour
	c := cache.New(24*time.Hour, 1*time.Hour)
	return &GoalRepository{
		cache: c,
	}
}

func (r *GoalRepository) Save(goal *StudyGoal) {
	// Latest orders by CreatedAt; an unstamped goal would sort arbitrarily.
	if goal.CreatedAt.IsZero() {
		goal.CreatedAt = time.Now()
	}
	r.cache.Set(goal.Id.String(), goal, cache.DefaultExpiration)
}

func (r *GoalRepository) Get(goalId uuid.UUID) (*StudyGoal, bool) {
	if x, found := r.cache.Get(goalId.String()); found {
		return x.(*StudyGoal), true
	}
	return nil, false
}

// Latest returns the most recently created goal for a vault. Study commands
// that name no goal fall back to it.
func (r *GoalRepository) Latest(vaultId string) (*StudyGoal, bool) {
	var latest *StudyGoal
	for _, item := range r.cache.Items() {
		goal, ok := item.Object.(*StudyGoal)
		if !ok || goal.VaultId != vaultId {
			continue
		}
		if latest == nil || goal.CreatedAt.After(latest.CreatedAt) {
			latest = goal
		}
	}
	if latest == nil {
		return nil, false
	}
	return latest, true
}

func (r *GoalRepository) Delete(goalId uuid.UUID) {
	r.cache.Delete(goalId.String())
}
