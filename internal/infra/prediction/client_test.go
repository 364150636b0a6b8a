package prediction

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"medchain/internal/domain/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestClient_EquipmentDemandQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "buy@city.test", q.Get("email"))
		assert.Equal(t, "Ventilator", q.Get("equipment_name"))
		assert.Equal(t, "28", q.Get("Day"))
		assert.Equal(t, "2", q.Get("Month"))
		assert.Equal(t, "2024", q.Get("Year"))
		_, _ = w.Write([]byte(`{"result": 42.5}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "", time.Second, 0, discard())

	got, err := client.EquipmentDemand(context.Background(), "buy@city.test", "Ventilator", entity.NormalizeDate(30, 2, 2024))
	require.NoError(t, err)
	assert.InDelta(t, 42.5, got, 1e-9)
}

func TestClient_RawMaterialDemandQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "supply@acme.test", q.Get("supplier_email"))
		assert.Equal(t, "build@medworks.test", q.Get("manufacturer_email"))
		assert.Equal(t, "Latex", q.Get("raw_material_name"))
		assert.Equal(t, "2000", q.Get("year"))
		_, _ = w.Write([]byte(`{"result": 3}`))
	}))
	defer srv.Close()

	client := NewClient("", srv.URL, time.Second, 100, discard())

	got, err := client.RawMaterialDemand(context.Background(), "supply@acme.test", "build@medworks.test", "Latex", entity.NormalizeDate(1, 1, 1990))
	require.NoError(t, err)
	assert.InDelta(t, 3.0, got, 1e-9)
}

func TestClient_Failures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("equipment_name") {
		case "down":
			w.WriteHeader(http.StatusServiceUnavailable)
		case "empty":
			_, _ = w.Write([]byte(`{}`))
		default:
			_, _ = w.Write([]byte(`not json`))
		}
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "", time.Second, 0, discard())
	date := entity.NormalizeDate(1, 1, 2020)

	for _, name := range []string{"down", "empty", "garbled"} {
		_, err := client.EquipmentDemand(context.Background(), "a@b.test", name, date)
		require.Error(t, err, name)
	}

	_, err := client.RawMaterialDemand(context.Background(), "a", "b", "c", date)
	require.Error(t, err, "unconfigured endpoint")
}
