package services

import (
	"math"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rateServer(t *testing.T, body string, status int) (*httptest.Server, *int32) {
	t.Helper()
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

const sampleRates = `{"usd": {"USD": 1, "EUR": 0.92, "GBP": 0.79, "INR": 83}}`

func TestGetRates_FetchesAndCaches(t *testing.T) {
	srv, hits := rateServer(t, sampleRates, http.StatusOK)
	svc := NewCurrencyService(srv.URL, time.Hour)

	rates := svc.GetRates()
	require.NotEmpty(t, rates)
	assert.Equal(t, 0.92, rates["eur"], "codes are stored lowercased")
	assert.Equal(t, 83.0, rates["inr"])

	svc.GetRates()
	svc.GetRates()
	assert.Equal(t, int32(1), atomic.LoadInt32(hits), "fresh table must not refetch")
}

func TestGetRates_ExpiredTTLRefetches(t *testing.T) {
	srv, hits := rateServer(t, sampleRates, http.StatusOK)
	svc := NewCurrencyService(srv.URL, time.Nanosecond)

	svc.GetRates()
	time.Sleep(time.Millisecond)
	svc.GetRates()
	assert.GreaterOrEqual(t, atomic.LoadInt32(hits), int32(2))
}

func TestGetRates_StaleBeatsBroken(t *testing.T) {
	var fail atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fail.Load() {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(sampleRates))
	}))
	defer srv.Close()

	svc := NewCurrencyService(srv.URL, time.Nanosecond)
	first := svc.GetRates()
	require.Equal(t, 0.92, first["eur"])

	fail.Store(true)
	time.Sleep(time.Millisecond)
	second := svc.GetRates()
	assert.Equal(t, first, second, "stale table must be served on refetch failure")
}

func TestGetRates_FallbackWhenNeverFetched(t *testing.T) {
	srv, _ := rateServer(t, "oops", http.StatusInternalServerError)
	svc := NewCurrencyService(srv.URL, time.Hour)

	rates := svc.GetRates()
	assert.Equal(t, fallbackRates, rates)
}

func TestGetRates_RejectsEmptyTable(t *testing.T) {
	srv, _ := rateServer(t, `{"usd": {}}`, http.StatusOK)
	svc := NewCurrencyService(srv.URL, time.Hour)
	assert.Equal(t, fallbackRates, svc.GetRates())
}

func TestConvert_RoundTrip(t *testing.T) {
	srv, _ := rateServer(t, sampleRates, http.StatusOK)
	svc := NewCurrencyService(srv.URL, time.Hour)

	eur := svc.Convert(100, "USD", "EUR")
	assert.InDelta(t, 92, eur, 1e-9)

	back := svc.Convert(eur, "EUR", "USD")
	assert.InDelta(t, 100, back, 1e-6, "round trip must be stable")
}

func TestConvert_FailsOpen(t *testing.T) {
	srv, _ := rateServer(t, sampleRates, http.StatusOK)
	svc := NewCurrencyService(srv.URL, time.Hour)

	assert.Equal(t, 50.0, svc.Convert(50, "USD", "usd"), "same code, any case")
	assert.Equal(t, 50.0, svc.Convert(50, "", "EUR"), "missing from code")
	assert.Equal(t, 50.0, svc.Convert(50, "USD", ""), "missing to code")
	assert.True(t, math.IsNaN(svc.Convert(math.NaN(), "USD", "EUR")))

	// Unknown currencies convert at rate 1 rather than erroring.
	assert.InDelta(t, 92, svc.Convert(100, "XXX", "EUR"), 1e-9)
}
