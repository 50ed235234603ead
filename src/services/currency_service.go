package services

import (
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"sync/atomic"
	"time"

	"github.com/username/pennywise/backend/src/logger"
	"github.com/username/pennywise/backend/src/models"
	"golang.org/x/net/publicsuffix"
)

// fallbackRates is served when no fetch has ever succeeded. Rates are
// units per USD.
var fallbackRates = models.RateTable{
	"usd": 1,
	"inr": 83,
	"eur": 0.92,
	"gbp": 0.79,
	"jpy": 150,
}

// rateSnapshot is the immutable unit of cache replacement: the table is
// swapped wholesale on a successful fetch and never partially updated.
type rateSnapshot struct {
	table     models.RateTable
	fetchedAt time.Time
}

type rateAPIResponse struct {
	USD map[string]float64 `json:"usd"`
}

type currencyServiceImpl struct {
	httpClient *http.Client
	apiURL     string
	ttl        time.Duration

	// snapshot holds a rateSnapshot. Concurrent refreshes may race; the
	// last successful store wins, which is fine since staleness within a
	// TTL is tolerable.
	snapshot atomic.Value
}

// NewCurrencyService builds the process-wide rate cache. apiURL must
// serve a JSON body of the form {"usd": {"eur": 0.92, ...}}.
func NewCurrencyService(apiURL string, ttl time.Duration) CurrencyService {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		logger.L.Error("Failed to create cookie jar for currency client", "error", err)
	}
	return &currencyServiceImpl{
		httpClient: &http.Client{Jar: jar, Timeout: 20 * time.Second},
		apiURL:     apiURL,
		ttl:        ttl,
	}
}

// GetRates returns the cached table while it is fresh, refetching once it
// passes the TTL. A failed refetch logs and serves the last good table,
// or the static fallback when nothing was ever fetched. It never fails
// its caller.
func (s *currencyServiceImpl) GetRates() models.RateTable {
	if snap, ok := s.snapshot.Load().(rateSnapshot); ok && time.Since(snap.fetchedAt) < s.ttl {
		return snap.table
	}

	table, err := s.fetchRates()
	if err != nil {
		logger.L.Warn("Failed to fetch currency rates", "url", s.apiURL, "error", err)
		if snap, ok := s.snapshot.Load().(rateSnapshot); ok {
			return snap.table // stale beats broken
		}
		return fallbackRates
	}

	s.snapshot.Store(rateSnapshot{table: table, fetchedAt: time.Now()})
	return table
}

func (s *currencyServiceImpl) fetchRates() (models.RateTable, error) {
	resp, err := s.httpClient.Get(s.apiURL)
	if err != nil {
		return nil, fmt.Errorf("requesting rate table: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("rate API returned status %d", resp.StatusCode)
	}

	var payload rateAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decoding rate table: %w", err)
	}
	if len(payload.USD) == 0 {
		return nil, fmt.Errorf("rate API returned an empty table")
	}

	table := make(models.RateTable, len(payload.USD))
	for code, rate := range payload.USD {
		table[strings.ToLower(code)] = rate
	}
	return table, nil
}

// Convert routes the amount through USD: (amount / rate[from]) * rate[to].
// It fails open: same or missing codes and non-finite inputs return the
// amount unchanged, and a currency absent from the table converts at
// rate 1 rather than erroring.
func (s *currencyServiceImpl) Convert(amount float64, from, to string) float64 {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return amount
	}
	if from == "" || to == "" || strings.EqualFold(from, to) {
		return amount
	}

	rates := s.GetRates()
	fromRate := rateOrDefault(rates, from)
	toRate := rateOrDefault(rates, to)

	result := (amount / fromRate) * toRate
	if math.IsNaN(result) || math.IsInf(result, 0) {
		return amount
	}
	return result
}

func rateOrDefault(rates models.RateTable, code string) float64 {
	if rate, ok := rates[strings.ToLower(code)]; ok && rate != 0 {
		return rate
	}
	return 1
}
