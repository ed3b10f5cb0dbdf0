package services

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/astromatch/astromatch/internal/database"
)

// In-memory stores mirroring the postgres repos' contracts, including
// their sentinel errors, so the services can be tested without a
// database.

type fakeSwipeStore struct {
	mu      sync.Mutex
	records map[string]*database.SwipeRecord
	failAll error
}

func newFakeSwipeStore() *fakeSwipeStore {
	return &fakeSwipeStore{records: make(map[string]*database.SwipeRecord)}
}

func swipeKey(actorID, targetID string) string {
	return actorID + "->" + targetID
}

func (f *fakeSwipeStore) Create(ctx context.Context, rec *database.SwipeRecord) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll != nil {
		return false, f.failAll
	}

	if rec.ActorID == rec.TargetID {
		return false, database.ErrSelfSwipe
	}
	key := swipeKey(rec.ActorID, rec.TargetID)
	if _, exists := f.records[key]; exists {
		return false, database.ErrDuplicateSwipe
	}

	stored := *rec
	f.records[key] = &stored

	if !rec.Action.Positive() {
		return false, nil
	}

	reverse, ok := f.records[swipeKey(rec.TargetID, rec.ActorID)]
	if !ok || !reverse.Action.Positive() {
		return false, nil
	}

	now := time.Now().UTC()
	stored.IsMatch = true
	stored.MatchedAt = &now
	reverse.IsMatch = true
	reverse.MatchedAt = &now
	rec.IsMatch = true
	rec.MatchedAt = &now
	return true, nil
}

func (f *fakeSwipeStore) Get(ctx context.Context, actorID, targetID string) (*database.SwipeRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.records[swipeKey(actorID, targetID)]
	if !ok {
		return nil, database.ErrSwipeNotFound
	}
	copied := *rec
	return &copied, nil
}

func (f *fakeSwipeStore) SwipedTargetIDs(ctx context.Context, actorID string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll != nil {
		return nil, f.failAll
	}

	var ids []string
	for _, rec := range f.records {
		if rec.ActorID == actorID {
			ids = append(ids, rec.TargetID)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (f *fakeSwipeStore) MutualMatchIDs(ctx context.Context, userID string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var matched []*database.SwipeRecord
	for _, rec := range f.records {
		if rec.ActorID == userID && rec.IsMatch {
			matched = append(matched, rec)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].MatchedAt.After(*matched[j].MatchedAt)
	})

	ids := make([]string, 0, len(matched))
	for _, rec := range matched {
		ids = append(ids, rec.TargetID)
	}
	return ids, nil
}

func (f *fakeSwipeStore) PendingLikerIDs(ctx context.Context, userID string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var pending []*database.SwipeRecord
	for _, rec := range f.records {
		if rec.TargetID == userID && rec.Action.Positive() && !rec.IsMatch {
			pending = append(pending, rec)
		}
	}
	sort.Slice(pending, func(i, j int) bool {
		return pending[i].SwipedAt.After(pending[j].SwipedAt)
	})

	ids := make([]string, 0, len(pending))
	for _, rec := range pending {
		ids = append(ids, rec.ActorID)
	}
	return ids, nil
}

func (f *fakeSwipeStore) Stats(ctx context.Context, userID string) (*database.SwipeStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll != nil {
		return nil, f.failAll
	}

	stats := &database.SwipeStats{}
	for _, rec := range f.records {
		if rec.ActorID == userID {
			if rec.IsMatch {
				stats.TotalMatches++
			}
			switch rec.Action {
			case database.ActionLike:
				stats.TotalLikes++
			case database.ActionSuperLike:
				stats.SuperLikes++
			case database.ActionPass:
				stats.TotalPasses++
			}
		}
		if rec.TargetID == userID && rec.Action == database.ActionLike {
			stats.LikesReceived++
		}
	}
	return stats, nil
}

func (f *fakeSwipeStore) DeletePair(ctx context.Context, userA, userB string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll != nil {
		return f.failAll
	}
	delete(f.records, swipeKey(userA, userB))
	delete(f.records, swipeKey(userB, userA))
	return nil
}

func (f *fakeSwipeStore) AreMatched(ctx context.Context, userA, userB string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.records[swipeKey(userA, userB)]
	return ok && rec.IsMatch, nil
}

func (f *fakeSwipeStore) RepairMatchFlags(ctx context.Context, userID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var repaired int64
	for _, rec := range f.records {
		if rec.ActorID != userID && rec.TargetID != userID {
			continue
		}
		if rec.IsMatch || !rec.Action.Positive() {
			continue
		}
		reverse, ok := f.records[swipeKey(rec.TargetID, rec.ActorID)]
		if ok && reverse.IsMatch && reverse.Action.Positive() {
			rec.IsMatch = true
			rec.MatchedAt = reverse.MatchedAt
			repaired++
		}
	}
	return repaired, nil
}

type fakeProfileStore struct {
	mu       sync.Mutex
	profiles map[string]*database.ProfileSnapshot
	failAll  error
}

func newFakeProfileStore(profiles ...*database.ProfileSnapshot) *fakeProfileStore {
	store := &fakeProfileStore{profiles: make(map[string]*database.ProfileSnapshot)}
	for _, p := range profiles {
		store.profiles[p.UserID] = p
	}
	return store
}

func (f *fakeProfileStore) Get(ctx context.Context, userID string) (*database.ProfileSnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll != nil {
		return nil, f.failAll
	}
	p, ok := f.profiles[userID]
	if !ok {
		return nil, database.ErrProfileNotFound
	}
	return p, nil
}

func (f *fakeProfileStore) GetMany(ctx context.Context, userIDs []string) ([]*database.ProfileSnapshot, error) {
	result := make([]*database.ProfileSnapshot, 0, len(userIDs))
	for _, id := range userIDs {
		p, err := f.Get(ctx, id)
		if err == database.ErrProfileNotFound {
			continue
		}
		if err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	return result, nil
}

func (f *fakeProfileStore) List(ctx context.Context, excludeUserID string, limit int) ([]*database.ProfileSnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll != nil {
		return nil, f.failAll
	}

	var all []*database.ProfileSnapshot
	for _, p := range f.profiles {
		if p.UserID != excludeUserID {
			all = append(all, p)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].UserID < all[j].UserID })
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

type fakeBlockStore struct {
	mu     sync.Mutex
	blocks map[string]bool
}

func newFakeBlockStore() *fakeBlockStore {
	return &fakeBlockStore{blocks: make(map[string]bool)}
}

func blockKey(blockerID, blockedID string) string {
	return blockerID + "->" + blockedID
}

func (f *fakeBlockStore) Create(ctx context.Context, blockerID, blockedID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := blockKey(blockerID, blockedID)
	if f.blocks[key] {
		return false, nil
	}
	f.blocks[key] = true
	return true, nil
}

func (f *fakeBlockStore) Delete(ctx context.Context, blockerID, blockedID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := blockKey(blockerID, blockedID)
	if !f.blocks[key] {
		return false, nil
	}
	delete(f.blocks, key)
	return true, nil
}

func (f *fakeBlockStore) IsBlocked(ctx context.Context, userA, userB string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.blocks[blockKey(userA, userB)] || f.blocks[blockKey(userB, userA)], nil
}

func (f *fakeBlockStore) BlockedEitherDirection(ctx context.Context, userID string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	seen := make(map[string]bool)
	for key := range f.blocks {
		var blocker, blocked string
		for i := 0; i < len(key)-1; i++ {
			if key[i] == '-' && key[i+1] == '>' {
				blocker, blocked = key[:i], key[i+2:]
				break
			}
		}
		if blocker == userID {
			seen[blocked] = true
		}
		if blocked == userID {
			seen[blocker] = true
		}
	}

	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (f *fakeBlockStore) BlockedBy(ctx context.Context, userID string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var ids []string
	prefix := blockKey(userID, "")
	for key := range f.blocks {
		if len(key) > len(prefix) && key[:len(prefix)] == prefix {
			ids = append(ids, key[len(prefix):])
		}
	}
	sort.Strings(ids)
	return ids, nil
}

type fakeCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	deletes [][]string
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string][]byte)}
}

func (f *fakeCache) GetJSON(ctx context.Context, key string, dest interface{}) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.entries[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(data, dest)
}

func (f *fakeCache) SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries[key] = data
	return nil
}

func (f *fakeCache) Delete(ctx context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes = append(f.deletes, keys)
	for _, key := range keys {
		delete(f.entries, key)
	}
	return nil
}

type fakeNotifier struct {
	mu    sync.Mutex
	calls []string
	done  chan struct{}
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{done: make(chan struct{}, 16)}
}

func (f *fakeNotifier) NotifyMatch(ctx context.Context, a, b *database.ProfileSnapshot) {
	f.mu.Lock()
	f.calls = append(f.calls, a.UserID+"+"+b.UserID)
	f.mu.Unlock()
	f.done <- struct{}{}
}

func (f *fakeNotifier) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}
