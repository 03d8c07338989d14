package service

import (
	"context"
	"testing"

	"attendance/internal/dto"
	"attendance/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServiceItem_Validation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	eight, seven := 8, 7

	cases := map[string]dto.ServiceItemRequest{
		"unknown type":        {Name: "X", Type: "Magic"},
		"shift without hours": {Name: "Shift", Type: string(model.ServiceShiftHours)},
		"odd shift length":    {Name: "Shift", Type: string(model.ServiceShiftHours), ShiftHours: &seven},
		"negative base price": {Name: "OT", Type: string(model.ServiceOvertime), BasePrice: dec("-1")},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := env.itemSvc.Create(ctx, req)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}

	item, err := env.itemSvc.Create(ctx, dto.ServiceItemRequest{
		Name: " 8 hour shift ", Type: string(model.ServiceShiftHours), ShiftHours: &eight, BasePrice: dec("320"), BaseCost: dec("200"),
	})
	require.NoError(t, err)
	assert.Equal(t, "8 hour shift", item.Name)

	shifts, err := env.itemSvc.ListShiftHours(ctx)
	require.NoError(t, err)
	assert.Len(t, shifts, 1)

	require.NoError(t, env.itemSvc.Deactivate(ctx, item.ID))
	active, err := env.itemSvc.List(ctx, false)
	require.NoError(t, err)
	assert.Empty(t, active)
	all, err := env.itemSvc.List(ctx, true)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	_, err = env.itemSvc.Update(ctx, 404, dto.ServiceItemRequest{Name: "X", Type: string(model.ServiceOther)})
	assert.ErrorIs(t, err, ErrNotFound)
}
