package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"app/internal/model"
	"app/internal/repository"

	"github.com/rs/zerolog"
)

// QuotaExceededError is returned when a user has used up their monthly AI
// allowance. It carries enough detail for the caller to act on.
type QuotaExceededError struct {
	Limit int
	Used  int
	Plan  string
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("ai usage limit exceeded: %d/%d on plan %s", e.Used, e.Limit, e.Plan)
}

// UsageService gates and meters the per-user monthly AI request counter.
type UsageService interface {
	// CheckAndConsume enforces the monthly ceiling and, when allowed,
	// consumes one request. Returns *QuotaExceededError at the ceiling and
	// ErrUserNotFound for unknown users.
	CheckAndConsume(ctx context.Context, userID string) (*model.UsageSnapshot, error)
	// GetUsage returns the current counters without consuming.
	GetUsage(ctx context.Context, userID string) (*model.UsageSnapshot, error)
}

type usageService struct {
	userRepo  repository.UserRepository
	usageRepo repository.UsageRepository
	plans     *PlanConfig
	logger    zerolog.Logger
	now       func() time.Time
}

// NewUsageService creates a new UsageService with a scoped logger.
func NewUsageService(userRepo repository.UserRepository, usageRepo repository.UsageRepository, plans *PlanConfig, logger zerolog.Logger) UsageService {
	return &usageService{
		userRepo:  userRepo,
		usageRepo: usageRepo,
		plans:     plans,
		logger:    logger.With().Str("service", "UsageService").Logger(),
		now:       time.Now,
	}
}

// resetDue reports whether the calendar month changed since the last reset.
// Strictly month granularity: a request on the 1st resets even if the last
// reset was yesterday, and a multi-month gap still resets exactly once.
func resetDue(lastReset, now time.Time) bool {
	ly, lm, _ := lastReset.UTC().Date()
	ny, nm, _ := now.UTC().Date()
	return ly != ny || lm != nm
}

func (s *usageService) CheckAndConsume(ctx context.Context, userID string) (*model.UsageSnapshot, error) {
	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	used := user.AIMonthlyCount
	now := s.now()
	if resetDue(user.AILastResetAt, now) {
		// Persist the reset before the consume so it survives a rejection.
		if err := s.usageRepo.ResetMonthly(ctx, userID, now); err != nil {
			return nil, err
		}
		used = 0
	}

	limit := s.plans.LimitFor(user.Plan)
	monthly, total, err := s.usageRepo.ConsumeOne(ctx, userID, limit)
	if err != nil {
		if errors.Is(err, repository.ErrUsageLimitReached) {
			// The first read may be stale under concurrent consumes;
			// re-read so the rejection reports the stored count.
			if fresh, rerr := s.userRepo.GetUserByID(ctx, userID); rerr == nil && fresh != nil {
				used = fresh.AIMonthlyCount
			}
			s.logger.Info().Str("user_id", userID).Str("plan", user.Plan).Int("limit", limit).Msg("AI quota exceeded")
			return nil, &QuotaExceededError{Limit: limit, Used: used, Plan: user.Plan}
		}
		return nil, err
	}

	return &model.UsageSnapshot{
		MonthlyCount: monthly,
		TotalCount:   total,
		Limit:        limit,
		Plan:         user.Plan,
	}, nil
}

func (s *usageService) GetUsage(ctx context.Context, userID string) (*model.UsageSnapshot, error) {
	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	used := user.AIMonthlyCount
	if resetDue(user.AILastResetAt, s.now()) {
		used = 0
	}
	return &model.UsageSnapshot{
		MonthlyCount: used,
		TotalCount:   user.AITotalCount,
		Limit:        s.plans.LimitFor(user.Plan),
		Plan:         user.Plan,
	}, nil
}
