package core

import (
	"errors"
	"math"
	"strings"
	"time"
)

const (
	MoodStressed Mood = "Stressed"
	MoodHappy    Mood = "Happy"
	MoodBored    Mood = "Bored"
	MoodNeutral  Mood = "Neutral"
)

const (
	AlertStressNudge AlertKind = "stress_nudge"
	AlertShortfall   AlertKind = "shortfall"
)

const (
	DefaultUserID     = "demo"
	DefaultCategory   = "General"
	DefaultZoneRadius = 200.0
	DefaultZoneLabel  = "zone"

	maxNoteLength     = 500
	maxCategoryLength = 100
)

// Moods lists every mood in display order.
var Moods = []Mood{MoodStressed, MoodHappy, MoodBored, MoodNeutral}

type (
	// Mood is the emotional state recorded with a spend.
	Mood string

	AlertKind string

	Location struct {
		Lat float64
		Lon float64
	}

	Transaction struct {
		ID       string
		UserID   string
		Amount   float64
		Category string
		Date     time.Time
		Mood     Mood
		Note     string
		Location *Location // optional
	}

	// Zone is a circular danger zone around a center point.
	Zone struct {
		ID        string
		Lat       float64
		Lon       float64
		Radius    float64 // meters
		Label     string
		CreatedAt time.Time
	}

	Alert struct {
		ID            string
		Kind          AlertKind
		Message       string
		TransactionID string
		CreatedAt     time.Time
	}
)

// ErrValidation matches every input validation failure via errors.Is.
var ErrValidation = errors.New("validation failed")

type validationError string

func (e validationError) Error() string        { return string(e) }
func (e validationError) Is(target error) bool { return target == ErrValidation }

var (
	ErrInvalidAmount      error = validationError("amount must be a positive number")
	ErrInvalidMood        error = validationError("mood must be one of Stressed, Happy, Bored, Neutral")
	ErrInvalidCoordinates error = validationError("lat and lon must be numbers")
	ErrInvalidRadius      error = validationError("radius must not be negative")
	ErrNoteTooLong        error = validationError("note too long (max 500 characters)")
	ErrCategoryTooLong    error = validationError("category too long (max 100 characters)")
)

// ParseMood maps a label to a Mood. Anything outside the closed set is Neutral.
func ParseMood(s string) Mood {
	switch m := Mood(strings.TrimSpace(s)); m {
	case MoodStressed, MoodHappy, MoodBored, MoodNeutral:
		return m
	default:
		return MoodNeutral
	}
}

// ValidateMood is the strict variant used on the write path: empty means
// Neutral, unknown labels are rejected.
func ValidateMood(s string) (Mood, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return MoodNeutral, nil
	}
	m := Mood(s)
	if !m.Valid() {
		return "", ErrInvalidMood
	}
	return m, nil
}

func (m Mood) Valid() bool {
	switch m {
	case MoodStressed, MoodHappy, MoodBored, MoodNeutral:
		return true
	}
	return false
}

func (m Mood) String() string { return string(m) }

func (l Location) Validate() error {
	if !isFinite(l.Lat) || !isFinite(l.Lon) {
		return ErrInvalidCoordinates
	}
	if l.Lat < -90 || l.Lat > 90 || l.Lon < -180 || l.Lon > 180 {
		return ErrInvalidCoordinates
	}
	return nil
}

// ApplyDefaults fills the fields the client may omit.
func (t *Transaction) ApplyDefaults(now time.Time) {
	if strings.TrimSpace(t.UserID) == "" {
		t.UserID = DefaultUserID
	}
	if strings.TrimSpace(t.Category) == "" {
		t.Category = DefaultCategory
	}
	if t.Date.IsZero() {
		t.Date = now
	}
	if t.Mood == "" {
		t.Mood = MoodNeutral
	}
}

func (t Transaction) Validate() error {
	if !isFinite(t.Amount) || t.Amount <= 0 {
		return ErrInvalidAmount
	}
	if !t.Mood.Valid() {
		return ErrInvalidMood
	}
	if len(t.Category) > maxCategoryLength {
		return ErrCategoryTooLong
	}
	if len(t.Note) > maxNoteLength {
		return ErrNoteTooLong
	}
	if t.Location != nil {
		if err := t.Location.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func (z *Zone) ApplyDefaults(now time.Time) {
	if strings.TrimSpace(z.Label) == "" {
		z.Label = DefaultZoneLabel
	}
	if z.CreatedAt.IsZero() {
		z.CreatedAt = now
	}
}

func (z Zone) Validate() error {
	if err := (Location{Lat: z.Lat, Lon: z.Lon}).Validate(); err != nil {
		return err
	}
	if !isFinite(z.Radius) || z.Radius < 0 {
		return ErrInvalidRadius
	}
	return nil
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
