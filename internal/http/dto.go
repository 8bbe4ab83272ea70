package http

import (
	"time"

	"spendsmart/internal/analytics"
	"spendsmart/internal/core"
)

type locationDTO struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// transactionDTO carries the id twice: "_id" is what the browser client reads.
type transactionDTO struct {
	LegacyID string       `json:"_id"`
	ID       string       `json:"id"`
	UserID   string       `json:"userId"`
	Amount   float64      `json:"amount"`
	Category string       `json:"category"`
	Date     time.Time    `json:"date"`
	Mood     core.Mood    `json:"mood"`
	Note     string       `json:"note"`
	Location *locationDTO `json:"location,omitempty"`
}

func toTransactionDTO(tx core.Transaction) transactionDTO {
	dto := transactionDTO{
		LegacyID: tx.ID,
		ID:       tx.ID,
		UserID:   tx.UserID,
		Amount:   tx.Amount,
		Category: tx.Category,
		Date:     tx.Date.UTC(),
		Mood:     tx.Mood,
		Note:     tx.Note,
	}
	if tx.Location != nil {
		dto.Location = &locationDTO{Lat: tx.Location.Lat, Lon: tx.Location.Lon}
	}
	return dto
}

type transactionRequest struct {
	UserID   string       `json:"userId"`
	Amount   flexNumber   `json:"amount"`
	Category string       `json:"category"`
	Date     flexTime     `json:"date"`
	Mood     string       `json:"mood"`
	Note     string       `json:"note"`
	Location *locationDTO `json:"location"`
}

// toTransaction converts the body. Unknown moods are rejected here; an
// empty mood becomes Neutral later through ApplyDefaults.
func (req transactionRequest) toTransaction() (core.Transaction, error) {
	if !req.Amount.Set {
		return core.Transaction{}, core.ErrInvalidAmount
	}
	mood := core.Mood("")
	if raw := sanitizeInput(req.Mood); raw != "" {
		m, err := core.ValidateMood(raw)
		if err != nil {
			return core.Transaction{}, err
		}
		mood = m
	}

	tx := core.Transaction{
		UserID:   sanitizeInput(req.UserID),
		Amount:   req.Amount.Value,
		Category: sanitizeInput(req.Category),
		Date:     req.Date.Time,
		Mood:     mood,
		Note:     sanitizeInput(req.Note),
	}
	if req.Location != nil {
		tx.Location = &core.Location{Lat: req.Location.Lat, Lon: req.Location.Lon}
	}
	return tx, nil
}

type zoneDTO struct {
	LegacyID  string    `json:"_id"`
	ID        string    `json:"id"`
	Lat       float64   `json:"lat"`
	Lon       float64   `json:"lon"`
	Radius    float64   `json:"radius"`
	Label     string    `json:"label"`
	CreatedAt time.Time `json:"createdAt"`
}

func toZoneDTO(z core.Zone) zoneDTO {
	return zoneDTO{
		LegacyID:  z.ID,
		ID:        z.ID,
		Lat:       z.Lat,
		Lon:       z.Lon,
		Radius:    z.Radius,
		Label:     z.Label,
		CreatedAt: z.CreatedAt.UTC(),
	}
}

type zoneRequest struct {
	Lat    *float64 `json:"lat"`
	Lon    *float64 `json:"lon"`
	Radius *float64 `json:"radius"`
	Label  string   `json:"label"`
}

func (req zoneRequest) toZone() (core.Zone, error) {
	if req.Lat == nil || req.Lon == nil {
		return core.Zone{}, core.ErrInvalidCoordinates
	}
	z := core.Zone{
		Lat:    *req.Lat,
		Lon:    *req.Lon,
		Radius: core.DefaultZoneRadius,
		Label:  sanitizeInput(req.Label),
	}
	if req.Radius != nil {
		z.Radius = *req.Radius
	}
	return z, nil
}

type alertDTO struct {
	ID            string         `json:"id"`
	Kind          core.AlertKind `json:"kind"`
	Message       string         `json:"message"`
	TransactionID string         `json:"transactionId,omitempty"`
	CreatedAt     time.Time      `json:"createdAt"`
}

func toAlertDTO(a core.Alert) alertDTO {
	return alertDTO{
		ID:            a.ID,
		Kind:          a.Kind,
		Message:       a.Message,
		TransactionID: a.TransactionID,
		CreatedAt:     a.CreatedAt.UTC(),
	}
}

// moodTotalsDTO renders one key per mood plus "total" and "count".
func moodTotalsDTO(t analytics.MoodTotals) map[string]any {
	out := make(map[string]any, len(core.Moods)+2)
	for _, m := range core.Moods {
		out[string(m)] = t.Sum(m)
	}
	out["total"] = t.Total

	count := make(map[string]int, len(t.Count))
	for m, n := range t.Count {
		count[string(m)] = n
	}
	out["count"] = count
	return out
}

type moodPatternsResponse struct {
	Totals                  map[string]any `json:"totals"`
	PercentMoreWhenStressed float64        `json:"percentMoreWhenStressed"`
}

type forecastPointDTO struct {
	Day       int     `json:"day"`
	Projected float64 `json:"projected"`
}

type forecastResponse struct {
	Forecast []forecastPointDTO `json:"forecast"`
	AvgDaily float64            `json:"avgDaily"`
	Warnings []string           `json:"warnings"`
}

func toForecastResponse(r analytics.ForecastReport) forecastResponse {
	points := make([]forecastPointDTO, len(r.Points))
	for i, p := range r.Points {
		points[i] = forecastPointDTO{Day: p.Day, Projected: p.Projected}
	}
	warnings := r.Warnings
	if warnings == nil {
		warnings = []string{}
	}
	return forecastResponse{Forecast: points, AvgDaily: r.AvgDaily, Warnings: warnings}
}

type alternativeDTO struct {
	Name             string  `json:"name"`
	Lat              float64 `json:"lat"`
	Lon              float64 `json:"lon"`
	EstSavingPercent int     `json:"estSavingPercent"`
}
