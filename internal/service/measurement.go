package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nutrack/nutrack/backend/internal/apperror"
	"github.com/nutrack/nutrack/backend/internal/logger"
	"github.com/nutrack/nutrack/backend/internal/measurement"
	"github.com/nutrack/nutrack/backend/internal/model"
	"github.com/nutrack/nutrack/backend/internal/store"
)

// ExportURLExpiry is how long an exported summary link stays valid.
const ExportURLExpiry = 15 * time.Minute

type MeasurementService struct {
	store    *store.GormStore
	exporter ReportExporter
	now      func() time.Time
}

// NewMeasurementService returns the service. exporter may be nil, in which
// case ExportSummary fails.
func NewMeasurementService(s *store.GormStore, exporter ReportExporter) *MeasurementService {
	return &MeasurementService{store: s, exporter: exporter, now: time.Now}
}

// CustomMeasurementInput is one named value. Unit defaults to cm.
type CustomMeasurementInput struct {
	Name  string  `json:"name" binding:"required"`
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}

// RecordMeasurementInput is a new body measurement. Date defaults to now.
type RecordMeasurementInput struct {
	Date              *time.Time               `json:"measurement_date"`
	Weight            float64                  `json:"weight"`
	BodyFatPercentage *float64                 `json:"body_fat_percentage"`
	MuscleMass        *float64                 `json:"muscle_mass"`
	Notes             string                   `json:"notes"`
	Custom            []CustomMeasurementInput `json:"custom_measurements"`
}

// SummaryExport points at an uploaded summary.
type SummaryExport struct {
	Key       string    `json:"key"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Record validates and stores a measurement with its custom values.
func (s *MeasurementService) Record(ctx context.Context, userID uuid.UUID, in RecordMeasurementInput) (*model.BodyMeasurement, error) {
	date := s.now().UTC()
	if in.Date != nil {
		date = *in.Date
	}

	rec := &model.BodyMeasurement{
		MeasurementDate:   date,
		Weight:            in.Weight,
		BodyFatPercentage: in.BodyFatPercentage,
		MuscleMass:        in.MuscleMass,
		Notes:             in.Notes,
		UserID:            userID,
	}
	for _, c := range in.Custom {
		unit := strings.TrimSpace(c.Unit)
		if unit == "" {
			unit = measurement.DefaultUnit
		}
		rec.Custom = append(rec.Custom, model.CustomMeasurement{
			MeasurementName:  strings.TrimSpace(c.Name),
			MeasurementValue: c.Value,
			Unit:             unit,
			UserID:           userID,
		})
	}

	if err := measurement.Validate(rec.ToMeasurement()); err != nil {
		// Bad input is the caller's fault here, not stored data.
		if appErr, ok := err.(*apperror.Error); ok {
			return nil, apperror.Validation(appErr.Message)
		}
		return nil, err
	}

	if err := s.store.Create(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *MeasurementService) List(ctx context.Context, userID uuid.UUID) ([]model.BodyMeasurement, error) {
	return s.store.Measurements(ctx, userID)
}

// Summary computes deltas and series over all of the user's measurements.
func (s *MeasurementService) Summary(ctx context.Context, userID uuid.UUID) (*measurement.MeasurementSummary, error) {
	records, err := s.store.Measurements(ctx, userID)
	if err != nil {
		return nil, err
	}
	in := make([]measurement.BodyMeasurement, len(records))
	for i, r := range records {
		in[i] = r.ToMeasurement()
	}

	summary, err := measurement.Summarize(in)
	if err != nil {
		return nil, err
	}
	return &summary, nil
}

// ExportSummary uploads the summary as JSON and returns a temporary link.
func (s *MeasurementService) ExportSummary(ctx context.Context, userID uuid.UUID) (*SummaryExport, error) {
	if s.exporter == nil {
		return nil, &apperror.Error{
			Kind:    apperror.KindInternal,
			Code:    "EXPORT_DISABLED",
			Message: "summary export is not configured",
		}
	}

	summary, err := s.Summary(ctx, userID)
	if err != nil {
		return nil, err
	}
	body, err := json.Marshal(summary)
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("failed to marshal summary: %w", err))
	}

	now := s.now().UTC()
	key := fmt.Sprintf("exports/%s/measurements-%s.json", userID, now.Format("20060102T150405Z"))
	if err := s.exporter.Upload(ctx, key, body, "application/json"); err != nil {
		return nil, apperror.IO(fmt.Errorf("failed to upload summary: %w", err))
	}
	url, err := s.exporter.GeneratePresignedURL(ctx, key, ExportURLExpiry)
	if err != nil {
		return nil, apperror.IO(fmt.Errorf("failed to presign summary: %w", err))
	}

	logger.Info("Measurement summary exported", "user_id", userID, "key", key)
	return &SummaryExport{Key: key, URL: url, ExpiresAt: now.Add(ExportURLExpiry)}, nil
}
