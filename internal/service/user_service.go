package service

import (
	"context"
	"fmt"
	"strings"

	"attendance/internal/clock"
	"attendance/internal/dto"
	"attendance/internal/model"
	"attendance/internal/repository"

	"github.com/google/uuid"
)

type UserService interface {
	Create(ctx context.Context, req dto.CreateUserRequest) (*model.User, error)
	Get(ctx context.Context, id uuid.UUID) (*model.User, error)
	List(ctx context.Context, includeInactive bool) ([]model.User, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
}

type userService struct {
	repo  repository.UserRepository
	seq   SequenceService
	tx    repository.TxManager
	clock clock.Clock
}

func NewUserService(repo repository.UserRepository, seq SequenceService, tx repository.TxManager, clk clock.Clock) UserService {
	return &userService{repo: repo, seq: seq, tx: tx, clock: clk}
}

func (s *userService) Create(ctx context.Context, req dto.CreateUserRequest) (*model.User, error) {
	email := strings.TrimSpace(req.Email)
	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		return nil, conflict("email %s is already registered", email)
	} else if !isNotFound(err) {
		return nil, err
	}

	roles, err := s.repo.FindRoles(ctx, req.Roles)
	if err != nil {
		return nil, fmt.Errorf("load roles: %w", err)
	}
	if len(roles) != len(uniqueStrings(req.Roles)) {
		return nil, invalid("unknown role in %v", req.Roles)
	}

	u := &model.User{
		FirstName:  strings.TrimSpace(req.FirstName),
		LastName:   strings.TrimSpace(req.LastName),
		Email:      email,
		Phone:      req.Phone,
		Department: req.Department,
		JobTitle:   req.JobTitle,
		HireDate:   req.HireDate,
		IsActive:   true,
		Roles:      roles,
	}

	save := func(ctx context.Context, number string) error {
		u.ID = uuid.New()
		u.EmployeeNumber = number
		return s.repo.Create(ctx, u)
	}

	if req.EmployeeNumber != "" {
		err = s.tx.WithinTx(ctx, func(ctx context.Context) error { return save(ctx, req.EmployeeNumber) })
		if isDuplicate(err) {
			return nil, conflict("employee number %s is already in use", req.EmployeeNumber)
		}
	} else {
		err = s.seq.Issue(ctx, KindEmployee, save)
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (s *userService) Get(ctx context.Context, id uuid.UUID) (*model.User, error) {
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookup(err, "user", id)
	}
	return u, nil
}

func (s *userService) List(ctx context.Context, includeInactive bool) ([]model.User, error) {
	return s.repo.List(ctx, !includeInactive)
}

func (s *userService) Deactivate(ctx context.Context, id uuid.UUID) error {
	u, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if !u.IsActive {
		return nil
	}
	u.IsActive = false
	u.UpdatedAt = s.clock.Now()
	return s.repo.Update(ctx, u)
}

func uniqueStrings(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, v := range in {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
