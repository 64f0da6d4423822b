package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/rxtech-lab/argo-analytics/internal/forecast"
	"github.com/rxtech-lab/argo-analytics/internal/metrics"
	"github.com/rxtech-lab/argo-analytics/internal/portfolio"
	"github.com/rxtech-lab/argo-analytics/internal/strategy"
	"github.com/rxtech-lab/argo-analytics/internal/types"
	"github.com/rxtech-lab/argo-analytics/pkg/errors"
	"github.com/rxtech-lab/argo-analytics/pkg/marketdata"
	"github.com/rxtech-lab/argo-analytics/pkg/marketdata/provider"
)

const (
	defaultStrategyDays  = 365
	defaultPortfolioDays = 90
	defaultForecastDays  = 730
)

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleStrategy handles GET /api/strategy/{symbol}?strategy=&lookback=&interval=&days=
func (s *Server) handleStrategy(w http.ResponseWriter, r *http.Request) {
	symbol := mux.Vars(r)["symbol"]
	query := r.URL.Query()

	interval, err := s.interval(query.Get("interval"))
	if err != nil {
		s.writeError(w, err)
		return
	}

	days, err := intParam(query.Get("days"), defaultStrategyDays)
	if err != nil {
		s.writeError(w, err)
		return
	}

	lookback, err := intParam(query.Get("lookback"), s.cfg.Momentum.Lookback)
	if err != nil {
		s.writeError(w, err)
		return
	}

	prices, err := s.fetch(r, symbol, interval, days)
	if err != nil {
		s.writeError(w, err)
		return
	}

	var table types.EquityCurveTable

	switch name := query.Get("strategy"); name {
	case "", strategy.NameBuyAndHold:
		table = strategy.BuyAndHold(prices, s.cfg.InitialValue)
	case strategy.NameMomentum:
		table, err = strategy.Momentum(prices, lookback, s.cfg.InitialValue)
		if err != nil {
			s.writeError(w, err)
			return
		}
	default:
		s.writeError(w, errors.Newf(errors.ErrCodeInvalidParameter, "unknown strategy %q", name))
		return
	}

	s.writeJSON(w, http.StatusOK, StrategyResponse{
		Symbol:   table.Symbol,
		Strategy: table.Strategy,
		Metrics:  metrics.Compute(table),
		Rows:     toEquityRows(table.Rows),
	})
}

// handlePortfolio handles GET /api/portfolio?assets=A,B&weights=A:0.6,B:0.4&days=
// Without assets the configured portfolio is used. Without weights every asset
// gets the same weight.
func (s *Server) handlePortfolio(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	assets := s.cfg.Assets
	weights := s.cfg.PortfolioWeights()

	if raw := query.Get("assets"); raw != "" {
		assets = splitList(raw)
		weights = portfolio.EqualWeights(assets)
	}

	if raw := query.Get("weights"); raw != "" {
		parsed, err := types.ParseWeightVector(raw)
		if err != nil {
			s.writeError(w, err)
			return
		}

		weights = parsed
	}

	days, err := intParam(query.Get("days"), defaultPortfolioDays)
	if err != nil {
		s.writeError(w, err)
		return
	}

	end := s.now().UTC()

	prices, err := s.fetcher.FetchMany(r.Context(), assets, provider.TimespanOneDay, end.AddDate(0, 0, -days), end)
	if err != nil {
		s.writeError(w, err)
		return
	}

	table, err := portfolio.ComputeEquity(prices, weights, s.cfg.InitialValue)
	if err != nil {
		s.writeError(w, err)
		return
	}

	corr, vol, err := portfolio.ComputeRiskMetrics(prices, weights)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, PortfolioResponse{
		Weights:     table.Weights,
		Metrics:     metrics.Compute(table),
		Rows:        table.Rows,
		Correlation: corr,
		Volatility:  vol,
	})
}

// handleForecast handles GET /api/forecast/{symbol}?alpha=&interval=&days=
// Intraday intervals are reduced to daily closes before fitting.
func (s *Server) handleForecast(w http.ResponseWriter, r *http.Request) {
	symbol := mux.Vars(r)["symbol"]
	query := r.URL.Query()

	cfg := s.cfg.Forecast

	if raw := query.Get("alpha"); raw != "" {
		alpha, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			s.writeError(w, errors.Wrapf(errors.ErrCodeInvalidParameter, err, "invalid alpha %q", raw))
			return
		}

		cfg.Alpha = alpha
	}

	interval, err := s.interval(query.Get("interval"))
	if err != nil {
		s.writeError(w, err)
		return
	}

	days, err := intParam(query.Get("days"), defaultForecastDays)
	if err != nil {
		s.writeError(w, err)
		return
	}

	prices, err := s.fetch(r, symbol, interval, days)
	if err != nil {
		s.writeError(w, err)
		return
	}

	var result types.ForecastResult
	if interval == provider.TimespanOneDay {
		result, err = forecast.Forecast(prices, cfg)
	} else {
		result, err = forecast.ForecastFromIntraday(prices, cfg)
	}

	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, toForecastResponse(result))
}

// handleQuote handles GET /api/quote/{symbol}
func (s *Server) handleQuote(w http.ResponseWriter, r *http.Request) {
	quote, err := s.fetcher.Quote(r.Context(), mux.Vars(r)["symbol"])
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, quote)
}

func (s *Server) fetch(r *http.Request, symbol string, interval provider.Timespan, days int) (types.PriceSeries, error) {
	end := s.now().UTC()

	return s.fetcher.FetchSeries(r.Context(), marketdata.FetchParams{
		Symbol:   symbol,
		Interval: interval,
		Start:    end.AddDate(0, 0, -days),
		End:      end,
	})
}

func (s *Server) interval(raw string) (provider.Timespan, error) {
	if raw == "" {
		return provider.TimespanOneDay, nil
	}

	return provider.ParseTimespan(raw)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error("failed to encode response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", zap.Error(err))
	}

	s.writeJSON(w, status, ErrorResponse{Error: err.Error(), Code: int(errors.GetCode(err)), Category: string(errors.CategoryOf(err))})
}

func statusFor(err error) int {
	if errors.IsInsufficientDataError(err) {
		return http.StatusUnprocessableEntity
	}

	switch code := errors.GetCode(err); code.Category() {
	case errors.CategoryValidation:
		return http.StatusBadRequest
	case errors.CategoryModel:
		return http.StatusUnprocessableEntity
	case errors.CategoryData:
		if code == errors.ErrCodeNoDataFound || code == errors.ErrCodeDataNotFound {
			return http.StatusNotFound
		}

		return http.StatusInternalServerError
	case errors.CategoryMarketData:
		switch code {
		case errors.ErrCodeInvalidTimespan, errors.ErrCodeInvalidProvider:
			return http.StatusBadRequest
		case errors.ErrCodeMarketDataWriteFailed:
			return http.StatusInternalServerError
		default:
			return http.StatusBadGateway
		}
	default:
		return http.StatusInternalServerError
	}
}

func intParam(raw string, fallback int) (int, error) {
	if raw == "" {
		return fallback, nil
	}

	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 {
		return 0, errors.Newf(errors.ErrCodeInvalidParameter, "expected a positive integer, got %q", raw)
	}

	return v, nil
}

func splitList(raw string) []string {
	var out []string

	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}

	return out
}
