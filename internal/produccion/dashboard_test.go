package produccion_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shaiso/produccion/internal/domain"
	"github.com/shaiso/produccion/internal/produccion"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderDashboard(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	open := f.createOrder(t, 40, 10)
	_, err := f.advance(open.Lots[0].ID, "Corte", domain.EntryStatusCompleted)
	require.NoError(t, err)

	done := f.createOrder(t, 41, 5)
	_, err = f.advance(done.Lots[0].ID, "Planchado", domain.EntryStatusCompleted)
	require.NoError(t, err)

	_, err = f.svc.CreateOrder(ctx, produccion.CreateOrderInput{
		Number:     42,
		ClientName: "Hotel Sol",
		Items:      []produccion.OrderItemInput{{ProductID: f.product.ID, Quantity: 3}},
	})
	require.NoError(t, err)
	f.svc.Wait()

	rows, err := f.svc.OrderDashboard(ctx, produccion.DashboardQuery{})
	require.NoError(t, err)
	require.Len(t, rows, 2, "orders with every lot finished are left out")

	byNumber := map[int]int{}
	for i, row := range rows {
		byNumber[row.Number] = i
	}
	require.Contains(t, byNumber, 40)
	row := rows[byNumber[40]]
	assert.Equal(t, "ACME", row.ClientName)
	assert.InDelta(t, 0.25, row.Progress, 1e-9)
	assert.InDelta(t, 4.0, row.RemainingDays, 1e-9)
	assert.Equal(t, domain.OrderInProcess, row.Status)

	rows, err = f.svc.OrderDashboard(ctx, produccion.DashboardQuery{ClientName: "hotel"})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 42, rows[0].Number)

	rows, err = f.svc.OrderDashboard(ctx, produccion.DashboardQuery{Status: domain.OrderDelayed})
	require.NoError(t, err)
	assert.Empty(t, rows)

	later := time.Now().Add(time.Hour)
	rows, err = f.svc.OrderDashboard(ctx, produccion.DashboardQuery{From: &later})
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestOrderDashboard_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.OrderDashboard(ctx, produccion.DashboardQuery{Status: "LATE"})
	assert.ErrorIs(t, err, domain.ErrValidation)

	from := baseTime
	to := baseTime.Add(-time.Hour)
	_, err = f.svc.OrderDashboard(ctx, produccion.DashboardQuery{From: &from, To: &to})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestSearchOrders(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.createOrder(t, 40, 10)

	orders, err := f.svc.SearchOrders(ctx, "acm")
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, 40, orders[0].Number)
	require.Len(t, orders[0].Lots, 1)
	assert.Len(t, orders[0].Lots[0].History, 4)

	orders, err = f.svc.SearchOrders(ctx, "Hotel")
	require.NoError(t, err)
	assert.Empty(t, orders)

	_, err = f.svc.SearchOrders(ctx, "  ")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestWorkshopDashboard(t *testing.T) {
	f := newFixture(t)
	order := f.createOrder(t, 40, 10)
	lotID := order.Lots[0].ID

	_, err := f.advance(lotID, "Corte", domain.EntryStatusInProgress)
	require.NoError(t, err)

	loads, err := f.svc.WorkshopDashboard(context.Background())
	require.NoError(t, err)
	require.Len(t, loads, 1)
	assert.Equal(t, f.workshop, loads[0].WorkshopID)
	assert.Equal(t, 1, loads[0].ActiveLots)
	assert.Equal(t, 10, loads[0].TotalUnits)

	// Разделённая партия остаётся в цехе вместе с дочерними.
	_, err = f.svc.SplitLot(context.Background(), lotID, []produccion.SubLotInput{
		{Code: "40.1.1", Quantity: 4},
		{Code: "40.1.2", Quantity: 6},
	})
	require.NoError(t, err)

	loads, err = f.svc.WorkshopDashboard(context.Background())
	require.NoError(t, err)
	require.Len(t, loads, 1)
	assert.Equal(t, 3, loads[0].ActiveLots)
	assert.Equal(t, 20, loads[0].TotalUnits)
}

func TestCreateManualRecord(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	order := f.createOrder(t, 40, 10)

	record, err := f.svc.CreateManualRecord(ctx, produccion.RecordInput{
		Kind:        domain.RecordKindPayment,
		Description: "  Pago taller de costura ",
		Amount:      decimal.NewNullDecimal(decimal.RequireFromString("1500.50")),
		User:        "marta",
		OrderID:     &order.ID,
		WorkshopID:  &f.workshop,
	})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, record.ID)
	assert.Equal(t, "Pago taller de costura", record.Description)
	assert.True(t, record.Date.Equal(baseTime))

	tomorrow := baseTime.AddDate(0, 0, 1)
	_, err = f.svc.CreateManualRecord(ctx, produccion.RecordInput{
		Kind:        domain.RecordKindReminder,
		Description: "Recoger telas",
		Date:        &tomorrow,
	})
	require.NoError(t, err)

	summary, err := f.svc.DailySummary(ctx, baseTime, time.UTC)
	require.NoError(t, err)
	require.Len(t, summary.ManualRecords, 1)
	assert.Equal(t, record.ID, summary.ManualRecords[0].ID)
	assert.Equal(t, "1500.5", summary.ManualRecords[0].Amount.Decimal.String())

	next, err := f.svc.DailySummary(ctx, tomorrow, time.UTC)
	require.NoError(t, err)
	require.Len(t, next.ManualRecords, 1)
	assert.Equal(t, domain.RecordKindReminder, next.ManualRecords[0].Kind)

	empty, err := f.svc.DailySummary(ctx, baseTime.AddDate(0, 0, 7), time.UTC)
	require.NoError(t, err)
	assert.NotNil(t, empty.ManualRecords)
	assert.Empty(t, empty.ManualRecords)
}

func TestCreateManualRecord_Errors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	missing := uuid.New()

	tests := []struct {
		name    string
		in      produccion.RecordInput
		wantErr error
	}{
		{
			name:    "unknown kind",
			in:      produccion.RecordInput{Kind: "INVOICE", Description: "x"},
			wantErr: domain.ErrValidation,
		},
		{
			name:    "empty description",
			in:      produccion.RecordInput{Kind: domain.RecordKindNote, Description: " "},
			wantErr: domain.ErrValidation,
		},
		{
			name: "negative amount",
			in: produccion.RecordInput{
				Kind:        domain.RecordKindPayment,
				Description: "x",
				Amount:      decimal.NewNullDecimal(decimal.NewFromInt(-1)),
			},
			wantErr: domain.ErrValidation,
		},
		{
			name:    "unknown order",
			in:      produccion.RecordInput{Kind: domain.RecordKindNote, Description: "x", OrderID: &missing},
			wantErr: domain.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.CreateManualRecord(ctx, tt.in)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
