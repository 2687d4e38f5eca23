package transform

import (
	"fmt"

	"curatecli/internal/config"
	"curatecli/internal/errors"
	"curatecli/internal/quality"
)

// fit computes the normalization parameters for one column and returns the
// function applying them. A zero-variance or zero-span column maps to 0 so
// the transformation stays defined; the recorded parameters still allow an
// exact inverse.
func fit(method, field string, column []float64) (NormalizationParams, func(float64) float64, error) {
	switch method {
	case config.NormalizationZScore:
		mean := quality.Mean(column)
		std := quality.StdDev(column)
		params := NormalizationParams{Field: field, Mean: mean, Std: std}
		if std == 0 {
			return params, func(float64) float64 { return 0 }, nil
		}
		return params, func(v float64) float64 { return (v - mean) / std }, nil

	case config.NormalizationMinMax:
		min, max := quality.MinMax(column)
		params := NormalizationParams{Field: field, Min: min, Max: max}
		span := max - min
		if span == 0 {
			return params, func(float64) float64 { return 0 }, nil
		}
		return params, func(v float64) float64 { return (v - min) / span }, nil
	}

	return NormalizationParams{}, nil, errors.NewTransformError(
		fmt.Sprintf("unknown normalization method %q", method), nil)
}

// Invert reconstructs an original value from its normalized form using the
// recorded parameters.
func Invert(method string, params NormalizationParams, normalized float64) float64 {
	switch method {
	case config.NormalizationZScore:
		return normalized*params.Std + params.Mean
	case config.NormalizationMinMax:
		return normalized*(params.Max-params.Min) + params.Min
	}
	return normalized
}
