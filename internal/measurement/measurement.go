// Package measurement turns body-measurement snapshots into progress
// summaries: the latest values, deltas against the previous snapshot and one
// chartable series per custom measurement.
package measurement

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/nutrack/nutrack/backend/internal/apperror"
)

// DefaultUnit is used for custom measurements recorded without a unit.
const DefaultUnit = "cm"

// BodyMeasurement is one dated snapshot. Weight is always recorded, body fat
// and muscle mass are optional.
type BodyMeasurement struct {
	ID                uuid.UUID
	Date              time.Time
	Weight            float64
	BodyFatPercentage *float64
	MuscleMass        *float64
	Notes             string
	UserID            uuid.UUID
	Custom            []CustomMeasurement
}

// CustomMeasurement is a named value attached to a snapshot, such as a waist
// circumference.
type CustomMeasurement struct {
	Name  string
	Value float64
	Unit  string
}

// Delta is the change between the latest and the previous snapshot.
// Available is false when either side did not record the field.
type Delta struct {
	Value     float64 `json:"value"`
	Available bool    `json:"available"`
}

// Point is one dated value of a series.
type Point struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// Series is a named time series in ascending date order.
type Series struct {
	Name             string  `json:"name"`
	Unit             string  `json:"unit,omitempty"`
	Points           []Point `json:"points"`
	InsufficientData bool    `json:"insufficient_data"`
}

// Snapshot is the summarized view of one measurement.
type Snapshot struct {
	ID                uuid.UUID `json:"id"`
	Date              time.Time `json:"date"`
	Weight            float64   `json:"weight"`
	BodyFatPercentage *float64  `json:"body_fat_percentage,omitempty"`
	MuscleMass        *float64  `json:"muscle_mass,omitempty"`
}

// MeasurementSummary is the result of Summarize.
type MeasurementSummary struct {
	HasData      bool       `json:"has_data"`
	Count        int        `json:"count"`
	Latest       *Snapshot  `json:"latest,omitempty"`
	PreviousDate *time.Time `json:"previous_date,omitempty"`

	WeightDelta     Delta `json:"weight_delta"`
	BodyFatDelta    Delta `json:"body_fat_delta"`
	MuscleMassDelta Delta `json:"muscle_mass_delta"`

	WeightSeries  Series   `json:"weight_series"`
	BodyFatSeries Series   `json:"body_fat_series"`
	CustomSeries  []Series `json:"custom_series"`
}

// Summarize sorts snapshots most recent first and computes the summary.
// The input slice is not modified. Snapshots sharing a date keep their
// input order.
func Summarize(measurements []BodyMeasurement) (MeasurementSummary, error) {
	summary := MeasurementSummary{
		WeightSeries:  Series{Name: "weight", Unit: "kg", Points: []Point{}, InsufficientData: true},
		BodyFatSeries: Series{Name: "body_fat_percentage", Unit: "%", Points: []Point{}, InsufficientData: true},
		CustomSeries:  []Series{},
	}
	if len(measurements) == 0 {
		return summary, nil
	}

	for _, m := range measurements {
		if err := Validate(m); err != nil {
			return MeasurementSummary{}, err
		}
	}

	ordered := make([]BodyMeasurement, len(measurements))
	copy(ordered, measurements)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Date.After(ordered[j].Date)
	})

	latest := ordered[0]
	summary.HasData = true
	summary.Count = len(ordered)
	summary.Latest = &Snapshot{
		ID:                latest.ID,
		Date:              latest.Date,
		Weight:            latest.Weight,
		BodyFatPercentage: latest.BodyFatPercentage,
		MuscleMass:        latest.MuscleMass,
	}

	if len(ordered) > 1 {
		prev := ordered[1]
		d := prev.Date
		summary.PreviousDate = &d
		summary.WeightDelta = Delta{Value: latest.Weight - prev.Weight, Available: true}
		summary.BodyFatDelta = delta(latest.BodyFatPercentage, prev.BodyFatPercentage)
		summary.MuscleMassDelta = delta(latest.MuscleMass, prev.MuscleMass)
	}

	// Walk oldest first so every series comes out ascending.
	custom := make(map[string]*Series)
	for i := len(ordered) - 1; i >= 0; i-- {
		m := ordered[i]
		summary.WeightSeries.Points = append(summary.WeightSeries.Points, Point{Date: m.Date, Value: m.Weight})
		if m.BodyFatPercentage != nil {
			summary.BodyFatSeries.Points = append(summary.BodyFatSeries.Points, Point{Date: m.Date, Value: *m.BodyFatPercentage})
		}
		for _, c := range m.Custom {
			s, ok := custom[c.Name]
			if !ok {
				s = &Series{Name: c.Name}
				custom[c.Name] = s
			}
			if s.Unit == "" {
				s.Unit = c.Unit
			}
			s.Points = append(s.Points, Point{Date: m.Date, Value: c.Value})
		}
	}

	summary.WeightSeries.InsufficientData = len(summary.WeightSeries.Points) < 2
	summary.BodyFatSeries.InsufficientData = len(summary.BodyFatSeries.Points) < 2

	for _, s := range custom {
		if s.Unit == "" {
			s.Unit = DefaultUnit
		}
		s.InsufficientData = len(s.Points) < 2
		summary.CustomSeries = append(summary.CustomSeries, *s)
	}
	sort.Slice(summary.CustomSeries, func(i, j int) bool {
		return summary.CustomSeries[i].Name < summary.CustomSeries[j].Name
	})

	return summary, nil
}

func delta(latest, previous *float64) Delta {
	if latest == nil || previous == nil {
		return Delta{}
	}
	return Delta{Value: *latest - *previous, Available: true}
}

// Validate checks the ranges a stored measurement must satisfy.
func Validate(m BodyMeasurement) error {
	id := m.ID.String()
	if bad(m.Weight) || m.Weight < 0 {
		return apperror.DataIntegrity("body_measurement", id, "weight must not be negative")
	}
	if p := m.BodyFatPercentage; p != nil && (bad(*p) || *p < 0 || *p > 100) {
		return apperror.DataIntegrity("body_measurement", id, "body fat percentage must be between 0 and 100")
	}
	if mm := m.MuscleMass; mm != nil && (bad(*mm) || *mm < 0) {
		return apperror.DataIntegrity("body_measurement", id, "muscle mass must not be negative")
	}
	for i, c := range m.Custom {
		if c.Name == "" || bad(c.Value) {
			return apperror.DataIntegrity("body_measurement", id, fmt.Sprintf("custom measurement %d is malformed", i))
		}
	}
	return nil
}

func bad(v float64) bool {
	return math.IsNaN(v) || math.IsInf(v, 0)
}
