package service

import (
	"context"
	"fmt"
	"time"

	"attendance/internal/clock"
	"attendance/internal/dto"
	"attendance/internal/model"
	"attendance/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// RateCache holds the currently active rate per (employee, service item).
// Implementations must treat a miss as (false, nil).
type RateCache interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

type RateService interface {
	// SetRate expires the pair's active rate and inserts a new one effective now.
	SetRate(ctx context.Context, req dto.SetRateRequest) (*model.EmployeeRate, error)
	// GetActiveRate resolves the rate in force at asOf, or now when asOf is nil.
	GetActiveRate(ctx context.Context, employeeID uuid.UUID, serviceItemID int64, asOf *time.Time) (*model.EmployeeRate, error)
	// BulkSetRates applies every SetRate in one transaction. Any failure rolls the batch back.
	BulkSetRates(ctx context.Context, reqs []dto.SetRateRequest) (*dto.BulkRatesResponse, error)
	ListRates(ctx context.Context, employeeID uuid.UUID) ([]model.EmployeeRate, error)
	DeleteRate(ctx context.Context, id int64) error
}

type rateService struct {
	repo     repository.EmployeeRateRepository
	users    repository.UserRepository
	items    repository.ServiceItemRepository
	tx       repository.TxManager
	cache    RateCache
	cacheTTL time.Duration
	clock    clock.Clock
}

// NewRateService builds the resolver. cache may be nil.
func NewRateService(
	repo repository.EmployeeRateRepository,
	users repository.UserRepository,
	items repository.ServiceItemRepository,
	tx repository.TxManager,
	cache RateCache,
	cacheTTL time.Duration,
	clk clock.Clock,
) RateService {
	return &rateService{repo: repo, users: users, items: items, tx: tx, cache: cache, cacheTTL: cacheTTL, clock: clk}
}

func rateKey(employeeID uuid.UUID, serviceItemID int64) string {
	return fmt.Sprintf("rate:%s:%d", employeeID, serviceItemID)
}

func (s *rateService) SetRate(ctx context.Context, req dto.SetRateRequest) (*model.EmployeeRate, error) {
	var rate *model.EmployeeRate
	var key string
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		rate, err = s.setRate(ctx, req)
		if err == nil {
			key = rateKey(rate.EmployeeID, rate.ServiceItemID)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, key)
	return rate, nil
}

// setRate must run inside a transaction.
func (s *rateService) setRate(ctx context.Context, req dto.SetRateRequest) (*model.EmployeeRate, error) {
	employeeID, err := uuid.Parse(req.EmployeeID)
	if err != nil {
		return nil, invalid("employee_id: %v", err)
	}
	if req.PayRate.IsNegative() || req.ChargeRate.IsNegative() || req.CostRate.IsNegative() {
		return nil, invalid("rates must not be negative")
	}
	if _, err := s.users.FindByID(ctx, employeeID); err != nil {
		return nil, lookup(err, "employee", employeeID)
	}
	item, err := s.items.FindByID(ctx, req.ServiceItemID)
	if err != nil {
		return nil, lookup(err, "service item", req.ServiceItemID)
	}

	now := s.clock.Now()
	if _, err := s.repo.Deactivate(ctx, employeeID, item.ID, now); err != nil {
		return nil, fmt.Errorf("expire previous rate: %w", err)
	}
	rate := &model.EmployeeRate{
		EmployeeID:    employeeID,
		ServiceItemID: item.ID,
		PayRate:       req.PayRate,
		ChargeRate:    req.ChargeRate,
		CostRate:      req.CostRate,
		EffectiveDate: now,
		IsActive:      true,
	}
	if err := s.repo.Create(ctx, rate); err != nil {
		if isDuplicate(err) {
			return nil, conflict("a concurrent rate change for %s/%d won", employeeID, item.ID)
		}
		return nil, err
	}
	rate.ServiceItem = item
	return rate, nil
}

func (s *rateService) GetActiveRate(ctx context.Context, employeeID uuid.UUID, serviceItemID int64, asOf *time.Time) (*model.EmployeeRate, error) {
	now := s.clock.Now()
	at := now
	if asOf != nil {
		at = *asOf
	}
	key := rateKey(employeeID, serviceItemID)
	useCache := s.cache != nil && asOf == nil

	if useCache {
		var cached model.EmployeeRate
		hit, err := s.cache.Get(ctx, key, &cached)
		if err != nil {
			log.Warn().Err(err).Str("key", key).Msg("rate cache read failed")
		} else if hit && cached.EffectiveAt(at) {
			return &cached, nil
		}
	}

	rate, err := s.repo.FindEffective(ctx, employeeID, serviceItemID, at)
	if err != nil {
		if isNotFound(err) {
			return nil, notFound("no active rate for employee %s and service item %d", employeeID, serviceItemID)
		}
		return nil, err
	}
	if useCache {
		if err := s.cache.Set(ctx, key, rate, s.cacheTTL); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("rate cache write failed")
		}
	}
	return rate, nil
}

func (s *rateService) BulkSetRates(ctx context.Context, reqs []dto.SetRateRequest) (*dto.BulkRatesResponse, error) {
	resp := &dto.BulkRatesResponse{TotalRecords: len(reqs)}
	if len(reqs) == 0 {
		return nil, invalid("no rates given")
	}
	keys := make([]string, 0, len(reqs))
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		for i, req := range reqs {
			rate, err := s.setRate(ctx, req)
			if err != nil {
				return fmt.Errorf("record %d: %w", i+1, err)
			}
			keys = append(keys, rateKey(rate.EmployeeID, rate.ServiceItemID))
		}
		return nil
	})
	if err != nil {
		log.Warn().Err(err).Int("records", len(reqs)).Msg("bulk rate update rolled back")
		resp.FailedRecords = len(reqs)
		resp.Errors = []string{err.Error()}
		resp.Message = "Bulk update failed; no rates were changed"
		return resp, nil
	}
	s.invalidate(ctx, keys...)
	resp.Success = true
	resp.SuccessfulRecords = len(reqs)
	resp.Message = fmt.Sprintf("Updated %d rates", len(reqs))
	return resp, nil
}

func (s *rateService) ListRates(ctx context.Context, employeeID uuid.UUID) ([]model.EmployeeRate, error) {
	if _, err := s.users.FindByID(ctx, employeeID); err != nil {
		return nil, lookup(err, "employee", employeeID)
	}
	return s.repo.ListActive(ctx, employeeID)
}

func (s *rateService) DeleteRate(ctx context.Context, id int64) error {
	rate, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return lookup(err, "employee rate", id)
	}
	if !rate.IsActive {
		return nil
	}
	now := s.clock.Now()
	rate.IsActive = false
	if rate.ExpiryDate == nil || rate.ExpiryDate.After(now) {
		rate.ExpiryDate = &now
	}
	rate.UpdatedAt = now
	if err := s.repo.Update(ctx, rate); err != nil {
		return err
	}
	s.invalidate(ctx, rateKey(rate.EmployeeID, rate.ServiceItemID))
	return nil
}

func (s *rateService) invalidate(ctx context.Context, keys ...string) {
	if s.cache == nil || len(keys) == 0 {
		return
	}
	if err := s.cache.Delete(ctx, keys...); err != nil {
		log.Warn().Err(err).Strs("keys", keys).Msg("rate cache invalidation failed")
	}
}
