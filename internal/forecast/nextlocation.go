package forecast

import (
	"sort"
	"time"

	"github.com/your-org/sentinel/internal/observability"
)

// LocationObservation is one historical (timestamp, location) row for one
// entity, location non-empty.
type LocationObservation struct {
	Timestamp time.Time `json:"timestamp"`
	Location  string    `json:"location"`
}

type LocationPrediction struct {
	// NoData is set when the entity has no located history at all; a
	// valid empty-result state, not an error.
	NoData     bool                  `json:"no_data,omitempty"`
	Location   string                `json:"location,omitempty"`
	TargetTime time.Time             `json:"target_time"`
	Trained    bool                  `json:"trained"`
	History    []LocationObservation `json:"history,omitempty"`
}

// PredictNextLocation predicts where an entity will most likely be one
// hour from now, from their historical located events. With fewer than two
// distinct locations observed, training is skipped and the most recent
// location is returned deterministically with a zero horizon.
func PredictNextLocation(history []LocationObservation, now time.Time) LocationPrediction {
	if len(history) == 0 {
		return LocationPrediction{NoData: true, TargetTime: now}
	}

	obs := make([]LocationObservation, len(history))
	copy(obs, history)
	sort.SliceStable(obs, func(a, b int) bool { return obs[a].Timestamp.Before(obs[b].Timestamp) })

	labels := distinctLocations(obs)
	if len(labels) < 2 {
		return LocationPrediction{
			Location:   obs[len(obs)-1].Location,
			TargetTime: now,
			History:    obs,
		}
	}

	encode := make(map[string]int, len(labels))
	for i, l := range labels {
		encode[l] = i
	}

	X := make([][]float64, len(obs))
	y := make([]float64, len(obs))
	for i, o := range obs {
		X[i] = LocationFeatures(o.Timestamp)
		y[i] = float64(encode[o.Location])
	}

	started := time.Now()
	forest := TrainClassifier(X, y, len(labels))
	observability.ModelTrainingDuration.WithLabelValues("next_location").Observe(time.Since(started).Seconds())

	target := now.Add(time.Hour)
	predicted := int(forest.Predict(LocationFeatures(target)))

	return LocationPrediction{
		Location:   labels[predicted],
		TargetTime: target,
		Trained:    true,
		History:    obs,
	}
}

// distinctLocations returns the sorted distinct labels, giving a stable
// label encoding across repeated calls over unchanged data.
func distinctLocations(obs []LocationObservation) []string {
	seen := make(map[string]bool)
	var labels []string
	for _, o := range obs {
		if !seen[o.Location] {
			seen[o.Location] = true
			labels = append(labels, o.Location)
		}
	}
	sort.Strings(labels)
	return labels
}
