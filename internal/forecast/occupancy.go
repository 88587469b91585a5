package forecast

import (
	"time"

	"github.com/your-org/sentinel/internal/models"
	"github.com/your-org/sentinel/internal/observability"
)

type OccupancyStatus string

const (
	StatusOvercrowded OccupancyStatus = "Overcrowded"
	StatusUnderused   OccupancyStatus = "Underused"
	StatusNormal      OccupancyStatus = "Normal"
)

type OccupancyForecast struct {
	Location   string          `json:"location"`
	TargetTime time.Time       `json:"target_time"`
	Predicted  int             `json:"predicted_count"`
	Status     OccupancyStatus `json:"status"`
	Samples    int             `json:"training_samples"`
}

// OccupancyForecaster trains a fresh regression forest per request on a
// location's historical counts. capacities is the static per-location
// capacity table; locations absent from it always classify Normal.
type OccupancyForecaster struct {
	capacities map[string]int
}

func NewOccupancyForecaster(capacities map[string]int) *OccupancyForecaster {
	return &OccupancyForecaster{capacities: capacities}
}

// Forecast predicts the head count at location for a future time. A
// location with no historical samples predicts zero; that is a valid
// result, not an error.
func (o *OccupancyForecaster) Forecast(samples []models.OccupancySample, location string, at time.Time) OccupancyForecast {
	fc := OccupancyForecast{
		Location:   location,
		TargetTime: at,
		Status:     StatusNormal,
		Samples:    len(samples),
	}
	if len(samples) == 0 {
		return fc
	}

	X := make([][]float64, len(samples))
	y := make([]float64, len(samples))
	for i, s := range samples {
		X[i] = OccupancyFeatures(s.StartTime)
		y[i] = float64(s.Count)
	}

	started := time.Now()
	forest := TrainRegressor(X, y)
	observability.ModelTrainingDuration.WithLabelValues("occupancy").Observe(time.Since(started).Seconds())

	fc.Predicted = forest.PredictCount(OccupancyFeatures(at))
	fc.Status = o.classify(location, fc.Predicted)
	return fc
}

func (o *OccupancyForecaster) classify(location string, count int) OccupancyStatus {
	capacity, ok := o.capacities[location]
	if !ok || capacity <= 0 {
		return StatusNormal
	}
	ratio := float64(count) / float64(capacity)
	switch {
	case ratio > 0.9:
		return StatusOvercrowded
	case ratio < 0.3:
		return StatusUnderused
	default:
		return StatusNormal
	}
}

// OccupancyAnalysis summarizes how a location's history compares to the
// forecast target time; it is handed as structured facts to the
// explanation generator.
type OccupancyAnalysis struct {
	Location    string  `json:"location"`
	TargetHour  int     `json:"target_hour"`
	TargetDOW   int     `json:"target_day_of_week"`
	IsWeekend   bool    `json:"is_weekend"`
	Period      string  `json:"period"`
	AvgCount    float64 `json:"avg_count"`
	SameHourAvg float64 `json:"same_hour_avg"`
	SameDOWAvg  float64 `json:"same_day_of_week_avg"`
}

func Analyze(samples []models.OccupancySample, location string, at time.Time) *OccupancyAnalysis {
	if len(samples) == 0 {
		return nil
	}

	a := &OccupancyAnalysis{
		Location:   location,
		TargetHour: at.Hour(),
		TargetDOW:  dayOfWeek(at),
		IsWeekend:  isWeekend(at),
		Period:     PeriodName(at.Hour()),
	}

	var total, sameHour, sameDOW float64
	var nHour, nDOW int
	for _, s := range samples {
		total += float64(s.Count)
		if s.StartTime.Hour() == a.TargetHour {
			sameHour += float64(s.Count)
			nHour++
		}
		if dayOfWeek(s.StartTime) == a.TargetDOW {
			sameDOW += float64(s.Count)
			nDOW++
		}
	}
	a.AvgCount = total / float64(len(samples))
	if nHour > 0 {
		a.SameHourAvg = sameHour / float64(nHour)
	}
	if nDOW > 0 {
		a.SameDOWAvg = sameDOW / float64(nDOW)
	}
	return a
}

func PeriodName(hour int) string {
	switch periodOf(hour) {
	case periodNight:
		return "Night"
	case periodMorning:
		return "Morning"
	case periodAfternoon:
		return "Afternoon"
	default:
		return "Evening"
	}
}
