package cli

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_TrackOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/v1/orders/40", r.URL.Path)
		io.WriteString(w, `{"data":{"id":"o1","number":40,"lots":[{"id":"l1","code":"40.1","quantity":10,"status":"ACTIVE"}]}}`)
	}))
	defer srv.Close()

	order, err := NewClient(srv.URL).TrackOrder(40)
	require.NoError(t, err)
	assert.Equal(t, 40, order.Number)
	require.Len(t, order.Lots, 1)
	assert.Equal(t, "40.1", order.Lots[0].Code)
}

func TestClient_ErrorResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		io.WriteString(w, `{"error":{"code":"INVALID_STATE","message":"lot 40.1 is split"}}`)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).AdvanceProcess("l1", AdvanceRequest{ProcessName: "Corte", Target: "COMPLETED"})
	require.Error(t, err)
	assert.Equal(t, "INVALID_STATE: lot 40.1 is split", err.Error())
}

func TestClient_ErrorWithoutBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).GetLot("l1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 502")
}

func TestClient_SplitLot(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/lots/l1/split", r.URL.Path)

		var body map[string][]SubLotRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, []SubLotRequest{{Code: "40.1.1", Quantity: 4}, {Code: "40.1.2", Quantity: 6}}, body["sub_lots"])

		w.WriteHeader(http.StatusCreated)
		io.WriteString(w, `{"data":{"parent":{"code":"40.1","status":"SPLIT"},"children":[{"code":"40.1.1"},{"code":"40.1.2"}]}}`)
	}))
	defer srv.Close()

	result, err := NewClient(srv.URL).SplitLot("l1", []SubLotRequest{{Code: "40.1.1", Quantity: 4}, {Code: "40.1.2", Quantity: 6}})
	require.NoError(t, err)
	assert.Equal(t, "SPLIT", result.Parent.Status)
	assert.Len(t, result.Children, 2)
}

func TestClient_GeneratePlanWithoutProduct(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		assert.Empty(t, raw)
		io.WriteString(w, `{"data":[{"seq":1,"status":"PENDING","process":{"name":"Corte"},"price":"20"}],"total":1}`)
	}))
	defer srv.Close()

	entries, err := NewClient(srv.URL).GeneratePlan("l1", "")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Corte", entries[0].ProcessName())
	require.NotNil(t, entries[0].Price)
	assert.Equal(t, "20", *entries[0].Price)
}

func TestClient_DailyReportQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "2025-03-10", r.URL.Query().Get("date"))
		io.WriteString(w, `{"data":{"day":"2025-03-10T00:00:00Z","total":3}}`)
	}))
	defer srv.Close()

	summary, err := NewClient(srv.URL).DailyReport("2025-03-10")
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Total)
}

func TestClient_OrderDashboardQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/dashboard/orders", r.URL.Path)
		assert.Equal(t, "hotel", r.URL.Query().Get("client"))
		assert.Equal(t, "DELAYED", r.URL.Query().Get("status"))
		assert.False(t, r.URL.Query().Has("from"))
		io.WriteString(w, `{"data":[{"number":40,"client_name":"Hotel Sol","progress":0.5,"remaining_days":0,"status":"DELAYED"}],"total":1}`)
	}))
	defer srv.Close()

	rows, err := NewClient(srv.URL).OrderDashboard(DashboardFilter{Client: "hotel", Status: "DELAYED"})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Hotel Sol", rows[0].ClientName)
	assert.Equal(t, "DELAYED", rows[0].Status)
}

func TestClient_CreateRecord(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/records", r.URL.Path)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "PAYMENT", body["kind"])
		assert.Equal(t, "250", body["amount"])
		assert.NotContains(t, body, "order_id")

		w.WriteHeader(http.StatusCreated)
		io.WriteString(w, `{"data":{"id":"r1","kind":"PAYMENT","description":"Pago","amount":"250","date":"2025-03-10T09:00:00Z"}}`)
	}))
	defer srv.Close()

	record, err := NewClient(srv.URL).CreateRecord(RecordRequest{Kind: "PAYMENT", Description: "Pago", Amount: "250"})
	require.NoError(t, err)
	assert.Equal(t, "r1", record.ID)
	require.NotNil(t, record.Amount)
	assert.Equal(t, "250", *record.Amount)
}

func TestParseItem(t *testing.T) {
	tests := []struct {
		in      string
		want    ItemRequest
		wantErr bool
	}{
		{in: "p1=10", want: ItemRequest{ProductID: "p1", Quantity: 10}},
		{in: "p1", wantErr: true},
		{in: "p1=ten", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseItem(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
