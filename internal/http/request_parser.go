package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"spendsmart/internal/analytics"
	"spendsmart/internal/core"
)

const maxBodyBytes = 1 << 20

// requestError is a malformed request. It matches core.ErrValidation so the
// error mapping answers 400.
type requestError string

func (e requestError) Error() string        { return string(e) }
func (e requestError) Is(target error) bool { return target == core.ErrValidation }

func badRequestf(format string, args ...any) error {
	return requestError(fmt.Sprintf(format, args...))
}

// decodeJSON reads a single JSON object from the request body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return badRequestf("request body too large (max %d bytes)", tooLarge.Limit)
		}
		return badRequestf("reading request body: %v", err)
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return badRequestf("request body is empty")
	}

	if err := json.Unmarshal(body, dst); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return badRequestf("invalid value for %s", typeErr.Field)
		}
		var reqErr requestError
		if errors.As(err, &reqErr) {
			return reqErr
		}
		return badRequestf("invalid JSON body: %v", err)
	}
	return nil
}

// flexNumber accepts a JSON number or a numeric string such as "12,50".
type flexNumber struct {
	Value float64
	Set   bool
}

func (n *flexNumber) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err == nil {
		n.Value, n.Set = f, true
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return requestError("amount must be a number")
	}
	if strings.TrimSpace(s) == "" {
		return nil
	}
	f, err := core.ParseDecimal(s)
	if err != nil {
		return requestError("amount must be a number")
	}
	n.Value, n.Set = f, true
	return nil
}

// flexTime accepts RFC 3339 timestamps, YYYY-MM-DD dates and unix
// milliseconds.
type flexTime struct {
	time.Time
}

var dateLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"}

func (t *flexTime) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	var ms int64
	if err := json.Unmarshal(data, &ms); err == nil {
		t.Time = time.UnixMilli(ms).UTC()
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return requestError("date must be a string or unix milliseconds")
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed.UTC()
			return nil
		}
	}
	return requestError("date must be an ISO 8601 date or timestamp")
}

// queryFloat parses an optional float query parameter.
func queryFloat(q url.Values, key string, def float64) (float64, error) {
	v := strings.TrimSpace(q.Get(key))
	if v == "" {
		return def, nil
	}
	f, err := core.ParseDecimal(v)
	if err != nil {
		return 0, badRequestf("%s must be a number", key)
	}
	return f, nil
}

// queryInt parses an optional integer query parameter within [min, max].
func queryInt(q url.Values, key string, def, min, max int) (int, error) {
	v := strings.TrimSpace(q.Get(key))
	if v == "" {
		return def, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, badRequestf("%s must be an integer", key)
	}
	if i < min || i > max {
		return 0, badRequestf("%s must be between %d and %d", key, min, max)
	}
	return i, nil
}

// ForecastQuery holds the parsed forecast parameters.
type ForecastQuery struct {
	Days    int
	Balance float64
}

func parseForecastQuery(q url.Values, defaultDays int, defaultBalance float64) (ForecastQuery, error) {
	days, err := queryInt(q, "days", defaultDays, 1, analytics.MaxDays)
	if err != nil {
		return ForecastQuery{}, err
	}
	balance, err := queryFloat(q, "balance", defaultBalance)
	if err != nil {
		return ForecastQuery{}, err
	}
	return ForecastQuery{Days: days, Balance: balance}, nil
}

// parseCoordinates reads lat and lon. Missing values default to 0.
func parseCoordinates(q url.Values) (core.Location, error) {
	lat, err := queryFloat(q, "lat", 0)
	if err != nil {
		return core.Location{}, err
	}
	lon, err := queryFloat(q, "lon", 0)
	if err != nil {
		return core.Location{}, err
	}
	loc := core.Location{Lat: lat, Lon: lon}
	if err := loc.Validate(); err != nil {
		return core.Location{}, err
	}
	return loc, nil
}

// sanitizeInput drops control characters other than tab and newlines.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}
