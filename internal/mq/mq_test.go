package mq

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/shaiso/produccion/internal/domain"
	"github.com/shaiso/produccion/internal/engine"
)

type sent struct {
	exchange   Exchange
	routingKey RoutingKey
	msg        *Message
}

type fakeSender struct {
	sent []sent
	err  error
}

func (f *fakeSender) Publish(_ context.Context, exchange Exchange, routingKey RoutingKey, msg *Message) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sent{exchange, routingKey, msg})
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// roundTrip кодирует исходящее сообщение так, как его увидит consumer.
func roundTrip(t *testing.T, msg *Message) *Delivery {
	t.Helper()
	body, err := json.Marshal(msg)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var d Delivery
	if err := json.Unmarshal(body, &d); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	return &d
}

func TestPublishPlanRequested(t *testing.T) {
	s := &fakeSender{}
	lotID, productID := uuid.New(), uuid.New()

	if err := PublishPlanRequested(context.Background(), s, lotID, productID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(s.sent) != 1 {
		t.Fatalf("expected 1 message, got %d", len(s.sent))
	}

	got := s.sent[0]
	if got.exchange != ExchangeLots || got.routingKey != RoutingKeyPlan {
		t.Errorf("routed to %s/%s", got.exchange, got.routingKey)
	}

	d := roundTrip(t, got.msg)
	if d.Type != MessageTypePlanRequested {
		t.Errorf("expected type %s, got %s", MessageTypePlanRequested, d.Type)
	}
	payload, err := ParsePayload[PlanRequestedPayload](d)
	if err != nil {
		t.Fatalf("parse payload: %v", err)
	}
	if payload.LotID != lotID || payload.ProductID != productID {
		t.Errorf("payload mismatch: %+v", payload)
	}
}

func TestLotEvents(t *testing.T) {
	s := &fakeSender{}
	workshop := uuid.New()
	lot := &domain.Lot{
		ID:                uuid.New(),
		OrderID:           uuid.New(),
		Code:              "40.1",
		Quantity:          5,
		Status:            domain.LotStatusSplit,
		CurrentWorkshopID: &workshop,
	}

	if err := NewLotEvents(s).LotChanged(context.Background(), lot, "split"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	d := roundTrip(t, s.sent[0].msg)
	payload, err := ParsePayload[LotChangedPayload](d)
	if err != nil {
		t.Fatalf("parse payload: %v", err)
	}
	if payload.Code != "40.1" || payload.Status != domain.LotStatusSplit || payload.Reason != "split" {
		t.Errorf("payload mismatch: %+v", payload)
	}
	if payload.CurrentWorkshopID == nil || *payload.CurrentWorkshopID != workshop {
		t.Errorf("expected workshop %s, got %v", workshop, payload.CurrentWorkshopID)
	}
}

func TestPublishDailySummary(t *testing.T) {
	s := &fakeSender{}
	summary := &engine.DailySummary{Total: 3}

	if err := PublishDailySummary(context.Background(), s, summary); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.sent[0].exchange != ExchangeReports || s.sent[0].routingKey != RoutingKeyDaily {
		t.Errorf("routed to %s/%s", s.sent[0].exchange, s.sent[0].routingKey)
	}

	payload, err := ParsePayload[engine.DailySummary](roundTrip(t, s.sent[0].msg))
	if err != nil {
		t.Fatalf("parse payload: %v", err)
	}
	if payload.Total != 3 {
		t.Errorf("expected total 3, got %d", payload.Total)
	}
}

func TestPlanQueue_SwallowsErrors(t *testing.T) {
	s := &fakeSender{err: errors.New("broker down")}
	q := NewPlanQueue(s, discardLogger())

	// Не паникует и не возвращает ошибку.
	q.DispatchPlan(context.Background(), uuid.New(), uuid.New())
	if len(s.sent) != 0 {
		t.Errorf("expected nothing sent, got %d", len(s.sent))
	}
}

func TestParsePayload_Permanent(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{"empty", ""},
		{"malformed", `{"lot_id": 12`},
		{"wrong type", `{"lot_id": 12}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := &Delivery{Payload: json.RawMessage(tt.payload)}
			_, err := ParsePayload[PlanRequestedPayload](d)
			if !errors.Is(err, ErrPermanent) {
				t.Errorf("expected ErrPermanent, got %v", err)
			}
		})
	}
}
