// Package training fits the per-category statistical models from the current
// feature population. Training is stateless: every pipeline run refits the
// models from scratch and nothing persists between runs.
package training

import (
	"math"
	"time"

	"github.com/hasiripi/insight-engine/internal/models"
	"github.com/rs/zerolog/log"
)

// Model version identifiers stamped onto trained artifacts.
const (
	AnomalyModelVersion  = "insights-anomaly-v1"
	ChurnModelVersion    = "insights-churn-v1"
	CapacityModelVersion = "insights-capacity-v1"
)

// Train computes the three independent models over the non-zero values of
// each metric. Zero values are excluded so entities that do not carry a
// signal cannot bias the thresholds toward zero. Now is optional; when zero
// the trainer reads the current time.
func Train(featureRows []models.InsightFeatureRow, now time.Time) models.InsightModelArtifacts {
	if now.IsZero() {
		now = time.Now()
	}

	var anomalyValues, churnValues, capacityValues []float64
	for _, feature := range featureRows {
		if feature.Metrics.AnomalyScore != 0 {
			anomalyValues = append(anomalyValues, math.Abs(feature.Metrics.AnomalyScore))
		}
		if feature.Metrics.ChurnRiskScore != 0 {
			churnValues = append(churnValues, feature.Metrics.ChurnRiskScore)
		}
		if feature.Metrics.CapacityPressureScore != 0 {
			capacityValues = append(capacityValues, feature.Metrics.CapacityPressureScore)
		}
	}

	anomalyMean := mean(anomalyValues)
	anomalyStdDev := stdDev(anomalyValues, anomalyMean)
	churnMean := mean(churnValues)
	churnStdDev := stdDev(churnValues, churnMean)
	capacityMean := mean(capacityValues)
	capacityStdDev := stdDev(capacityValues, capacityMean)

	churnWeight := 1.0
	if churnStdDev != 0 {
		churnWeight = 1 / churnStdDev
	}
	revenueWeight := 0.0
	if churnMean > 0 {
		revenueWeight = 1 / churnMean
	}
	// An empty churn population falls back to a conservative 0.6 threshold.
	effectiveChurnMean := churnMean
	if effectiveChurnMean == 0 {
		effectiveChurnMean = 0.6
	}

	trend := 0.0
	if len(capacityValues) > 0 {
		trend = capacityValues[len(capacityValues)-1] - capacityMean
	}

	artifacts := models.InsightModelArtifacts{
		Anomaly: models.AnomalyModel{
			Mean:              anomalyMean,
			StdDev:            anomalyStdDev,
			WarningThreshold:  anomalyMean + anomalyStdDev*1.5,
			CriticalThreshold: anomalyMean + anomalyStdDev*2.5,
			FeatureNames:      []string{"anomalyScore", "revenueImpact"},
			Version:           AnomalyModelVersion,
			TrainedAt:         now,
			SampleSize:        len(anomalyValues),
		},
		Churn: models.ChurnModel{
			Coefficients: models.ChurnCoefficients{
				ChurnRiskScore: churnWeight,
				RevenueImpact:  revenueWeight,
			},
			Intercept:  -0.35,
			Threshold:  math.Max(0.45, effectiveChurnMean),
			Version:    ChurnModelVersion,
			TrainedAt:  now,
			SampleSize: len(churnValues),
		},
		Capacity: models.CapacityModel{
			UpperBound:  capacityMean + capacityStdDev*2,
			LowerBound:  math.Max(0, capacityMean-capacityStdDev),
			Trend:       trend,
			Seasonality: capacityStdDev,
			Window:      max(7, len(capacityValues)),
			Version:     CapacityModelVersion,
			TrainedAt:   now,
		},
	}

	log.Debug().
		Int("anomalySamples", len(anomalyValues)).
		Int("churnSamples", len(churnValues)).
		Int("capacitySamples", len(capacityValues)).
		Float64("anomalyCritical", artifacts.Anomaly.CriticalThreshold).
		Float64("churnThreshold", artifacts.Churn.Threshold).
		Float64("capacityUpper", artifacts.Capacity.UpperBound).
		Msg("Insight models trained")

	return artifacts
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// stdDev is the sample standard deviation, zero for fewer than two samples.
func stdDev(values []float64, mean float64) float64 {
	if len(values) < 2 {
		return 0
	}
	sumSq := 0.0
	for _, v := range values {
		diff := v - mean
		sumSq += diff * diff
	}
	return math.Sqrt(sumSq / float64(len(values)-1))
}
