package billing

import (
	"context"
	"sync"
	"time"
)

// Subscription ties a user to a plan and its PayPal subscription, when any.
type Subscription struct {
	UserID         string    `json:"user_id"`
	Plan           Plan      `json:"plan"`
	SubscriptionID string    `json:"subscription_id,omitempty"`
	Status         string    `json:"status"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// SubscriptionStore persists plan assignments. Users without a record are on
// the free plan.
type SubscriptionStore interface {
	Get(ctx context.Context, userID string) (*Subscription, error)
	Upsert(ctx context.Context, sub *Subscription) error
	// FindBySubscriptionID resolves webhook events back to a user.
	FindBySubscriptionID(ctx context.Context, subscriptionID string) (*Subscription, error)
}

// MemoryStore is an in-process SubscriptionStore.
type MemoryStore struct {
	mu   sync.RWMutex
	subs map[string]*Subscription
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{subs: make(map[string]*Subscription)}
}

func (s *MemoryStore) Get(_ context.Context, userID string) (*Subscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if sub, ok := s.subs[userID]; ok {
		cp := *sub
		return &cp, nil
	}
	return &Subscription{UserID: userID, Plan: PlanFree, Status: "none"}, nil
}

func (s *MemoryStore) Upsert(_ context.Context, sub *Subscription) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *sub
	cp.UpdatedAt = time.Now()
	s.subs[sub.UserID] = &cp
	return nil
}

func (s *MemoryStore) FindBySubscriptionID(_ context.Context, subscriptionID string) (*Subscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, sub := range s.subs {
		if sub.SubscriptionID == subscriptionID {
			cp := *sub
			return &cp, nil
		}
	}
	return nil, nil
}
