package measurement

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nutrack/nutrack/backend/internal/apperror"
)

func day(d int) time.Time {
	return time.Date(2025, 1, d, 0, 0, 0, 0, time.UTC)
}

func fp(v float64) *float64 { return &v }

func TestSummarizeWeightDelta(t *testing.T) {
	summary, err := Summarize([]BodyMeasurement{
		{ID: uuid.New(), Date: day(2), Weight: 80},
		{ID: uuid.New(), Date: day(1), Weight: 82},
	})
	require.NoError(t, err)
	require.True(t, summary.HasData)
	assert.Equal(t, 80.0, summary.Latest.Weight)
	assert.Equal(t, day(2), summary.Latest.Date)
	require.NotNil(t, summary.PreviousDate)
	assert.Equal(t, day(1), *summary.PreviousDate)
	assert.True(t, summary.WeightDelta.Available)
	assert.Equal(t, -2.0, summary.WeightDelta.Value)
}

func TestSummarizeSortsInput(t *testing.T) {
	summary, err := Summarize([]BodyMeasurement{
		{Date: day(1), Weight: 82},
		{Date: day(3), Weight: 79},
		{Date: day(2), Weight: 80},
	})
	require.NoError(t, err)
	assert.Equal(t, 79.0, summary.Latest.Weight)
	assert.Equal(t, -1.0, summary.WeightDelta.Value)
	assert.Equal(t, 3, summary.Count)

	require.Len(t, summary.WeightSeries.Points, 3)
	assert.Equal(t, day(1), summary.WeightSeries.Points[0].Date)
	assert.Equal(t, day(3), summary.WeightSeries.Points[2].Date)
	assert.False(t, summary.WeightSeries.InsufficientData)
}

func TestSummarizeSingleSnapshot(t *testing.T) {
	summary, err := Summarize([]BodyMeasurement{{Date: day(5), Weight: 75, BodyFatPercentage: fp(18)}})
	require.NoError(t, err)
	assert.True(t, summary.HasData)
	assert.Nil(t, summary.PreviousDate)
	assert.False(t, summary.WeightDelta.Available)
	assert.False(t, summary.BodyFatDelta.Available)
	assert.False(t, summary.MuscleMassDelta.Available)
	assert.True(t, summary.WeightSeries.InsufficientData)
}

func TestSummarizeOptionalDeltas(t *testing.T) {
	summary, err := Summarize([]BodyMeasurement{
		{Date: day(10), Weight: 70, BodyFatPercentage: fp(15), MuscleMass: fp(33)},
		{Date: day(3), Weight: 71, BodyFatPercentage: fp(16)},
	})
	require.NoError(t, err)

	assert.True(t, summary.BodyFatDelta.Available)
	assert.InDelta(t, -1.0, summary.BodyFatDelta.Value, 1e-9)
	// Previous snapshot had no muscle mass: unavailable, not zero.
	assert.False(t, summary.MuscleMassDelta.Available)
	assert.Zero(t, summary.MuscleMassDelta.Value)
}

func TestSummarizeZeroIsRecorded(t *testing.T) {
	summary, err := Summarize([]BodyMeasurement{
		{Date: day(2), Weight: 70, MuscleMass: fp(0)},
		{Date: day(1), Weight: 70, MuscleMass: fp(30)},
	})
	require.NoError(t, err)
	assert.True(t, summary.MuscleMassDelta.Available)
	assert.Equal(t, -30.0, summary.MuscleMassDelta.Value)
	assert.True(t, summary.WeightDelta.Available)
	assert.Zero(t, summary.WeightDelta.Value)
}

func TestSummarizeCustomSeries(t *testing.T) {
	summary, err := Summarize([]BodyMeasurement{
		{Date: day(20), Weight: 80, Custom: []CustomMeasurement{
			{Name: "waist", Value: 84, Unit: "cm"},
			{Name: "arm", Value: 38},
		}},
		{Date: day(1), Weight: 82, Custom: []CustomMeasurement{
			{Name: "waist", Value: 88, Unit: "cm"},
		}},
		{Date: day(10), Weight: 81, Custom: []CustomMeasurement{
			{Name: "waist", Value: 86, Unit: "cm"},
			{Name: "neck", Value: 15, Unit: "in"},
		}},
	})
	require.NoError(t, err)
	require.Len(t, summary.CustomSeries, 3)

	arm, neck, waist := summary.CustomSeries[0], summary.CustomSeries[1], summary.CustomSeries[2]
	assert.Equal(t, "arm", arm.Name)
	assert.Equal(t, DefaultUnit, arm.Unit)
	assert.True(t, arm.InsufficientData)

	assert.Equal(t, "neck", neck.Name)
	assert.Equal(t, "in", neck.Unit)
	assert.True(t, neck.InsufficientData)

	assert.Equal(t, "waist", waist.Name)
	assert.False(t, waist.InsufficientData)
	assert.Equal(t, []Point{
		{Date: day(1), Value: 88},
		{Date: day(10), Value: 86},
		{Date: day(20), Value: 84},
	}, waist.Points)
}

func TestSummarizeEmpty(t *testing.T) {
	summary, err := Summarize(nil)
	require.NoError(t, err)
	assert.False(t, summary.HasData)
	assert.Nil(t, summary.Latest)
	assert.Empty(t, summary.CustomSeries)
	assert.True(t, summary.WeightSeries.InsufficientData)
}

func TestSummarizeRejectsBadValues(t *testing.T) {
	tests := []struct {
		name string
		m    BodyMeasurement
	}{
		{"negative weight", BodyMeasurement{Date: day(1), Weight: -1}},
		{"body fat over 100", BodyMeasurement{Date: day(1), Weight: 70, BodyFatPercentage: fp(101)}},
		{"negative body fat", BodyMeasurement{Date: day(1), Weight: 70, BodyFatPercentage: fp(-0.5)}},
		{"negative muscle mass", BodyMeasurement{Date: day(1), Weight: 70, MuscleMass: fp(-3)}},
		{"unnamed custom", BodyMeasurement{Date: day(1), Weight: 70, Custom: []CustomMeasurement{{Value: 3}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Summarize([]BodyMeasurement{tt.m})
			assert.ErrorIs(t, err, apperror.ErrDataIntegrity)
		})
	}
}

func TestSummarizeDoesNotReorderInput(t *testing.T) {
	in := []BodyMeasurement{{Date: day(1), Weight: 1}, {Date: day(2), Weight: 2}}
	_, err := Summarize(in)
	require.NoError(t, err)
	assert.Equal(t, day(1), in[0].Date)
}
