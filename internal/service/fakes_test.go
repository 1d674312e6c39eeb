package service

import (
	"context"
	"sync"
	"time"

	"app/internal/model"
	"app/internal/repository"
)

// fakeUserStore backs both UserRepository and UsageRepository with an
// in-memory user map so consume and reset behave like the real conditional
// updates.
type fakeUserStore struct {
	mu    sync.Mutex
	users map[string]*model.User

	resetCalls   int
	consumeCalls int
}

func newFakeUserStore(users ...*model.User) *fakeUserStore {
	s := &fakeUserStore{users: make(map[string]*model.User)}
	for _, u := range users {
		s.users[u.UserID] = u
	}
	return s
}

func (s *fakeUserStore) CreateUser(ctx context.Context, u *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.UserID] = u
	return nil
}

func (s *fakeUserStore) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (s *fakeUserStore) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *fakeUserStore) GetUserByStripeCustomerID(ctx context.Context, customerID string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.StripeCustomerID != nil && *u.StripeCustomerID == customerID {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *fakeUserStore) UpdateStripeCustomerID(ctx context.Context, userID, customerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[userID]; ok {
		u.StripeCustomerID = &customerID
	}
	return nil
}

func (s *fakeUserStore) UpdateProfile(ctx context.Context, userID, name, bio, website, avatarURL string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[userID]; ok {
		u.Name, u.Bio, u.Website, u.AvatarURL = name, bio, website, avatarURL
	}
	return nil
}

func (s *fakeUserStore) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[userID]; ok {
		u.PasswordHash = passwordHash
	}
	return nil
}

func (s *fakeUserStore) UpdateLastLogin(ctx context.Context, userID string) error {
	return nil
}

func (s *fakeUserStore) AdjustTotalBlogs(ctx context.Context, userID string, delta int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[userID]; ok {
		u.TotalBlogs += delta
		if u.TotalBlogs < 0 {
			u.TotalBlogs = 0
		}
	}
	return nil
}

// ResetMonthly zeroes the counter only when the stored reset month is older
// than resetAt's month, matching the conditional UPDATE in the real repo.
func (s *fakeUserStore) ResetMonthly(ctx context.Context, userID string, resetAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetCalls++
	u, ok := s.users[userID]
	if !ok {
		return nil
	}
	sy, sm, _ := u.AILastResetAt.UTC().Date()
	ry, rm, _ := resetAt.UTC().Date()
	if sy > ry || (sy == ry && sm >= rm) {
		return nil
	}
	u.AIMonthlyCount = 0
	u.AILastResetAt = resetAt
	return nil
}

func (s *fakeUserStore) ConsumeOne(ctx context.Context, userID string, limit int) (int, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.consumeCalls++
	u, ok := s.users[userID]
	if !ok {
		return 0, 0, repository.ErrUsageLimitReached
	}
	if u.AIMonthlyCount >= limit {
		return 0, 0, repository.ErrUsageLimitReached
	}
	u.AIMonthlyCount++
	u.AITotalCount++
	return u.AIMonthlyCount, u.AITotalCount, nil
}

// fakeSubscriptionRepo records reconciler writes.
type fakeSubscriptionRepo struct {
	mu         sync.Mutex
	applied    []repository.BillingSnapshot
	downgrades int
	cancels    int
}

func (r *fakeSubscriptionRepo) ApplyBillingSnapshot(ctx context.Context, userID string, snap repository.BillingSnapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.applied = append(r.applied, snap)
	return nil
}

func (r *fakeSubscriptionRepo) DowngradeToFree(ctx context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.downgrades++
	return nil
}

func (r *fakeSubscriptionRepo) SetCancelAtPeriodEnd(ctx context.Context, userID string, cancel bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cancels++
	return nil
}
