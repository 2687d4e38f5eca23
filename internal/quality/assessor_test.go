package quality

import (
	"context"
	"log/slog"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"curatecli/internal/dataset"
	apperrors "curatecli/internal/errors"
)

func sensorRecord(udi int64, torque float64) dataset.Record {
	return dataset.Record{
		UDI:                udi,
		ProductID:          "L47181",
		Type:               "L",
		AirTemperature:     298.0 + float64(udi)*0.1,
		ProcessTemperature: 308.0 + float64(udi)*0.1,
		RotationalSpeed:    1500,
		Torque:             torque,
		ToolWear:           float64(udi),
	}
}

func TestNewAssessor_UnknownMethod(t *testing.T) {
	_, err := NewAssessor(slog.Default(), OutlierRule{Method: "mad", Threshold: 3})
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeQuality))
}

func TestNewAssessor_InvalidThreshold(t *testing.T) {
	_, err := NewAssessor(slog.Default(), OutlierRule{Method: "iqr", Threshold: 0})
	require.Error(t, err)
}

func TestAssess_CleanDataset(t *testing.T) {
	records := []dataset.Record{
		sensorRecord(1, 40), sensorRecord(2, 42), sensorRecord(3, 44),
		sensorRecord(4, 41), sensorRecord(5, 43),
	}
	ds := dataset.New(records, "test.csv")

	assessor, err := NewAssessor(slog.Default(), OutlierRule{Method: "iqr", Threshold: 1.5})
	require.NoError(t, err)

	report, err := assessor.Assess(context.Background(), ds)
	require.NoError(t, err)

	assert.Equal(t, 5, report.RowCount)
	assert.Equal(t, 0, report.TotalMissing)
	assert.Equal(t, 0, report.DuplicateRows)
	assert.Equal(t, 0, report.FailureCount)
	assert.Len(t, report.MissingByField, 14)
	assert.Len(t, report.Summaries, 5)
	// 5 sensor fields -> C(5,2) = 10 correlation pairs
	assert.Len(t, report.Correlations, 10)
}

func TestAssess_DuplicateRows(t *testing.T) {
	rec := sensorRecord(1, 40)
	ds := dataset.New([]dataset.Record{rec, rec, sensorRecord(2, 42)}, "test.csv")

	assessor, err := NewAssessor(slog.Default(), OutlierRule{Method: "iqr", Threshold: 1.5})
	require.NoError(t, err)

	report, err := assessor.Assess(context.Background(), ds)
	require.NoError(t, err)
	assert.Equal(t, 1, report.DuplicateRows)
}

func TestAssess_IQROutlier(t *testing.T) {
	records := []dataset.Record{
		sensorRecord(1, 40), sensorRecord(2, 41), sensorRecord(3, 42),
		sensorRecord(4, 43), sensorRecord(5, 44), sensorRecord(6, 45),
		sensorRecord(7, 46), sensorRecord(8, 47), sensorRecord(9, 95),
	}
	ds := dataset.New(records, "test.csv")

	assessor, err := NewAssessor(slog.Default(), OutlierRule{Method: "iqr", Threshold: 1.5})
	require.NoError(t, err)

	report, err := assessor.Assess(context.Background(), ds)
	require.NoError(t, err)

	var torque FieldOutliers
	for _, fo := range report.Outliers {
		if fo.Field == dataset.ColTorque {
			torque = fo
		}
	}
	assert.Equal(t, 1, torque.Count)
	assert.Equal(t, []int64{9}, torque.RowIDs)
	assert.Contains(t, report.OutlierRows(), int64(9))
}

func TestAssess_ZScoreOutlier(t *testing.T) {
	records := make([]dataset.Record, 0, 20)
	for i := int64(1); i <= 19; i++ {
		records = append(records, sensorRecord(i, 42))
	}
	records = append(records, sensorRecord(20, 90))
	ds := dataset.New(records, "test.csv")

	assessor, err := NewAssessor(slog.Default(), OutlierRule{Method: "zscore", Threshold: 3})
	require.NoError(t, err)

	report, err := assessor.Assess(context.Background(), ds)
	require.NoError(t, err)

	var torque FieldOutliers
	for _, fo := range report.Outliers {
		if fo.Field == dataset.ColTorque {
			torque = fo
		}
	}
	assert.Equal(t, 1, torque.Count)
	assert.Equal(t, []int64{20}, torque.RowIDs)
}

func TestAssess_ClassBalance(t *testing.T) {
	failed := sensorRecord(3, 44)
	failed.MachineFailure = 1
	failed.HDF = 1
	ds := dataset.New([]dataset.Record{
		sensorRecord(1, 40), sensorRecord(2, 42), failed, sensorRecord(4, 43),
	}, "test.csv")

	assessor, err := NewAssessor(slog.Default(), OutlierRule{Method: "iqr", Threshold: 1.5})
	require.NoError(t, err)

	report, err := assessor.Assess(context.Background(), ds)
	require.NoError(t, err)

	assert.Equal(t, 1, report.FailureCount)
	assert.InDelta(t, 25.0, report.FailureRate, 1e-12)
}

func TestAssess_Deterministic(t *testing.T) {
	records := []dataset.Record{
		sensorRecord(1, 40), sensorRecord(2, 42), sensorRecord(3, 95),
	}
	ds := dataset.New(records, "test.csv")

	assessor, err := NewAssessor(slog.Default(), OutlierRule{Method: "iqr", Threshold: 1.5})
	require.NoError(t, err)

	first, err := assessor.Assess(context.Background(), ds)
	require.NoError(t, err)
	second, err := assessor.Assess(context.Background(), ds)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestMean(t *testing.T) {
	assert.Equal(t, 0.0, Mean(nil))
	assert.Equal(t, 2.0, Mean([]float64{1, 2, 3}))
}

func TestStdDev(t *testing.T) {
	assert.Equal(t, 0.0, StdDev(nil))
	assert.InDelta(t, 2.0, StdDev([]float64{2, 4, 4, 4, 5, 5, 7, 9}), 1e-12)
}

func TestQuantile(t *testing.T) {
	values := []float64{1, 2, 3, 4}

	assert.Equal(t, 1.0, Quantile(values, 0))
	assert.Equal(t, 4.0, Quantile(values, 1))
	assert.InDelta(t, 2.5, Quantile(values, 0.5), 1e-12)
	assert.InDelta(t, 1.75, Quantile(values, 0.25), 1e-12)
	assert.Equal(t, 0.0, Quantile(nil, 0.5))
}

func TestPearson(t *testing.T) {
	x := []float64{1, 2, 3, 4, 5}
	y := []float64{2, 4, 6, 8, 10}
	assert.InDelta(t, 1.0, Pearson(x, y), 1e-12)

	inv := []float64{10, 8, 6, 4, 2}
	assert.InDelta(t, -1.0, Pearson(x, inv), 1e-12)

	flat := []float64{3, 3, 3, 3, 3}
	assert.Equal(t, 0.0, Pearson(x, flat))

	assert.Equal(t, 0.0, Pearson(x, []float64{1}))
}

func TestMinMax(t *testing.T) {
	min, max := MinMax([]float64{3, 1, 4, 1, 5})
	assert.Equal(t, 1.0, min)
	assert.Equal(t, 5.0, max)

	min, max = MinMax(nil)
	assert.True(t, math.IsNaN(min) == false && min == 0)
	assert.Equal(t, 0.0, max)
}
