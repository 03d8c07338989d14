// cmd/seed creates the bootstrap administrator and the default service catalog.
// Safe to run repeatedly: existing rows are left untouched.
// Usage: seed [admin-email]
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"attendance/internal/clock"
	"attendance/internal/config"
	"attendance/internal/dto"
	"attendance/internal/infra"
	"attendance/internal/model"
	"attendance/internal/repository"
	"attendance/internal/service"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

func intPtr(v int) *int { return &v }

func defaultServiceItems() []dto.ServiceItemRequest {
	items := []dto.ServiceItemRequest{
		{Name: "Normal time", Type: string(model.ServiceNormalTime), BasePrice: decimal.NewFromInt(45), BaseCost: decimal.NewFromInt(30)},
		{Name: "Overtime", Type: string(model.ServiceOvertime), BasePrice: decimal.NewFromFloat(67.5), BaseCost: decimal.NewFromInt(45)},
		{Name: "Double time", Type: string(model.ServiceDoubleTime), BasePrice: decimal.NewFromInt(90), BaseCost: decimal.NewFromInt(60)},
	}
	for _, h := range []int{6, 8, 10, 12} {
		items = append(items, dto.ServiceItemRequest{
			Name:       fmt.Sprintf("%d hour shift", h),
			Type:       string(model.ServiceShiftHours),
			BasePrice:  decimal.NewFromInt(int64(45 * h)),
			BaseCost:   decimal.NewFromInt(int64(30 * h)),
			ShiftHours: intPtr(h),
		})
	}
	return items
}

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	db, err := infra.NewDatabase(cfg.DatabaseURL, 2)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	if err := infra.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("failed to apply migrations")
	}

	ctx := context.Background()
	clk := clock.System{}
	tx := repository.NewTxManager(db)
	seq := service.NewSequenceService(repository.NewSequenceRepository(db), tx, clk)
	users := service.NewUserService(repository.NewUserRepository(db), seq, tx, clk)
	items := service.NewServiceItemService(repository.NewServiceItemRepository(db), clk)

	email := "admin@attendance.local"
	if len(os.Args) > 1 {
		email = os.Args[1]
	}
	admin, err := users.Create(ctx, dto.CreateUserRequest{
		FirstName: "System",
		LastName:  "Administrator",
		Email:     email,
		Roles:     []string{model.RoleAdministrator, model.RoleManager},
	})
	switch {
	case errors.Is(err, service.ErrConflict):
		log.Info().Str("email", email).Msg("administrator already exists")
	case err != nil:
		log.Fatal().Err(err).Msg("failed to create administrator")
	default:
		log.Info().Str("id", admin.ID.String()).Str("employee_number", admin.EmployeeNumber).Msg("administrator created")
	}

	existing, err := items.List(ctx, true)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to list service items")
	}
	have := make(map[string]bool, len(existing))
	for _, it := range existing {
		have[it.Name] = true
	}
	created := 0
	for _, req := range defaultServiceItems() {
		if have[req.Name] {
			continue
		}
		if _, err := items.Create(ctx, req); err != nil {
			log.Fatal().Err(err).Str("name", req.Name).Msg("failed to create service item")
		}
		created++
	}
	log.Info().Int("created", created).Msg("service catalog seeded")
}
