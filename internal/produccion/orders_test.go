package produccion_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shaiso/produccion/internal/domain"
	"github.com/shaiso/produccion/internal/produccion"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateOrder_RootLot(t *testing.T) {
	f := newFixture(t)
	order := f.createOrder(t, 40, 5)

	require.Len(t, order.Lots, 1)
	lot := order.Lots[0]
	assert.Equal(t, "40.1", lot.Code)
	assert.Equal(t, 5, lot.Quantity)
	assert.Equal(t, domain.LotStatusActive, lot.Status)
	assert.Equal(t, f.product.ID, *lot.ProductID)
	assert.Equal(t, "ACME", order.ClientName)

	// План генерируется после фиксации.
	stored := f.lot(t, lot.ID)
	require.Len(t, stored.History, 4)
	for _, e := range stored.History {
		assert.Equal(t, domain.EntryStatusPending, e.Status)
		assert.Nil(t, e.EntryDate)
		assert.Nil(t, e.ExitDate)
	}

	corte := entryByName(t, stored, "Corte")
	assert.Equal(t, f.workshop, *corte.WorkshopID)
	assert.Equal(t, "Estimated: 1 days", corte.Notes)

	costura := entryByName(t, stored, "Costura")
	assert.True(t, costura.Price.Decimal.Equal(price(100).Decimal))
	assert.True(t, entryByName(t, stored, "Transporte").IsTransport)

	assert.Contains(t, f.events.Reasons(), produccion.ReasonPlanned)
}

func TestCreateOrder_MultipleItems(t *testing.T) {
	f := newFixture(t)

	order, err := f.svc.CreateOrder(context.Background(), produccion.CreateOrderInput{
		Number:     7,
		ClientName: "ACME",
		Items: []produccion.OrderItemInput{
			{ProductID: f.product.ID, Quantity: 3},
			{ProductID: f.product.ID, Quantity: 9},
		},
	})
	require.NoError(t, err)
	f.svc.Wait()

	require.Len(t, order.Lots, 2)
	assert.Equal(t, "7.1", order.Lots[0].Code)
	assert.Equal(t, "7.2", order.Lots[1].Code)
	assert.Equal(t, 9, order.Lots[1].Quantity)
}

func TestCreateOrder_WithoutRootLots(t *testing.T) {
	f := newFixture(t)
	no := false

	order, err := f.svc.CreateOrder(context.Background(), produccion.CreateOrderInput{
		Number:         41,
		ClientName:     "ACME",
		Items:          []produccion.OrderItemInput{{ProductID: f.product.ID, Quantity: 5}},
		CreateRootLots: &no,
	})
	require.NoError(t, err)
	f.svc.Wait()

	assert.Empty(t, order.Lots)
	lots, _ := f.store.Counts()
	assert.Zero(t, lots)
}

func TestCreateOrder_ReusesClientCaseInsensitive(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first := f.createOrder(t, 1, 1)
	second, err := f.svc.CreateOrder(ctx, produccion.CreateOrderInput{
		Number:     2,
		ClientName: "acme",
		Items:      []produccion.OrderItemInput{{ProductID: f.product.ID, Quantity: 1}},
	})
	require.NoError(t, err)
	f.svc.Wait()

	assert.Equal(t, first.ClientID, second.ClientID)
	assert.Equal(t, "ACME", second.ClientName)

	third, err := f.svc.CreateOrder(ctx, produccion.CreateOrderInput{
		Number:   3,
		ClientID: &first.ClientID,
		Items:    []produccion.OrderItemInput{{ProductID: f.product.ID, Quantity: 1}},
	})
	require.NoError(t, err)
	f.svc.Wait()
	assert.Equal(t, first.ClientID, third.ClientID)
}

func TestCreateOrder_Errors(t *testing.T) {
	f := newFixture(t)
	f.createOrder(t, 40, 5)
	unknownClient := uuid.New()

	tests := []struct {
		name    string
		input   produccion.CreateOrderInput
		wantErr error
	}{
		{
			name:    "no client",
			input:   produccion.CreateOrderInput{Number: 1, Items: []produccion.OrderItemInput{{ProductID: f.product.ID, Quantity: 1}}},
			wantErr: domain.ErrValidation,
		},
		{
			name:    "blank client name",
			input:   produccion.CreateOrderInput{Number: 1, ClientName: "  ", Items: []produccion.OrderItemInput{{ProductID: f.product.ID, Quantity: 1}}},
			wantErr: domain.ErrValidation,
		},
		{
			name:    "no items",
			input:   produccion.CreateOrderInput{Number: 1, ClientName: "ACME"},
			wantErr: domain.ErrValidation,
		},
		{
			name:    "zero quantity",
			input:   produccion.CreateOrderInput{Number: 1, ClientName: "ACME", Items: []produccion.OrderItemInput{{ProductID: f.product.ID}}},
			wantErr: domain.ErrValidation,
		},
		{
			name:    "duplicate number",
			input:   produccion.CreateOrderInput{Number: 40, ClientName: "ACME", Items: []produccion.OrderItemInput{{ProductID: f.product.ID, Quantity: 1}}},
			wantErr: domain.ErrValidation,
		},
		{
			name:    "unknown product",
			input:   produccion.CreateOrderInput{Number: 2, ClientName: "ACME", Items: []produccion.OrderItemInput{{ProductID: uuid.New(), Quantity: 1}}},
			wantErr: domain.ErrNotFound,
		},
		{
			name:    "unknown client id",
			input:   produccion.CreateOrderInput{Number: 3, ClientID: &unknownClient, Items: []produccion.OrderItemInput{{ProductID: f.product.ID, Quantity: 1}}},
			wantErr: domain.ErrNotFound,
		},
	}

	lotsBefore, entriesBefore := f.store.Counts()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.CreateOrder(context.Background(), tt.input)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	f.svc.Wait()
	lotsAfter, entriesAfter := f.store.Counts()
	assert.Equal(t, lotsBefore, lotsAfter)
	assert.Equal(t, entriesBefore, entriesAfter)
}

func TestCreateLot(t *testing.T) {
	f := newFixture(t)
	order := f.createOrder(t, 40, 5)

	lot, err := f.svc.CreateLot(context.Background(), produccion.CreateLotInput{
		OrderID:   order.ID,
		Code:      "40.9",
		Quantity:  2,
		ProductID: &f.product.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.LotStatusActive, lot.Status)
	assert.Empty(t, f.lot(t, lot.ID).History)

	_, err = f.svc.CreateLot(context.Background(), produccion.CreateLotInput{
		OrderID: uuid.New(), Code: "x", Quantity: 1,
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.svc.CreateLot(context.Background(), produccion.CreateLotInput{
		OrderID: order.ID, Code: "", Quantity: 1,
	})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestTrackOrderAndWorkshop(t *testing.T) {
	f := newFixture(t)
	order := f.createOrder(t, 40, 5)
	lotID := order.Lots[0].ID

	_, err := f.advance(lotID, "corte", domain.EntryStatusInProgress)
	require.NoError(t, err)

	tracked, err := f.svc.TrackOrder(context.Background(), 40)
	require.NoError(t, err)
	require.Len(t, tracked.Lots, 1)
	assert.Len(t, tracked.Lots[0].History, 4)
	assert.Len(t, tracked.Items, 1)

	inWorkshop, err := f.svc.LotsInWorkshop(context.Background(), f.workshop)
	require.NoError(t, err)
	require.Len(t, inWorkshop, 1)
	assert.Equal(t, lotID, inWorkshop[0].ID)

	_, err = f.svc.TrackOrder(context.Background(), 999)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
