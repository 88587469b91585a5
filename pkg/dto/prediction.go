package dto

type ForecastRequest struct {
	Location   string `json:"location" binding:"required"`
	TargetTime string `json:"target_time" binding:"required"`
}

type ForecastResponse struct {
	Location        string  `json:"location"`
	TargetTime      string  `json:"target_time"`
	PredictedCount  int     `json:"predicted_count"`
	Status          string  `json:"status"`
	TrainingSamples int     `json:"training_samples"`
	Explanation     string  `json:"explanation,omitempty"`
	AvgCount        float64 `json:"avg_count,omitempty"`
	SameHourAvg     float64 `json:"same_hour_avg,omitempty"`
}

type PredictResponse struct {
	EntityID    string `json:"entity_id"`
	NoData      bool   `json:"no_data,omitempty"`
	Location    string `json:"location,omitempty"`
	TargetTime  string `json:"target_time,omitempty"`
	Trained     bool   `json:"trained"`
	History     int    `json:"history_points"`
	Explanation string `json:"explanation,omitempty"`
}

type FaceSearchRequest struct {
	Embedding []float32 `json:"embedding" binding:"required"`
}

type FaceSearchResponse struct {
	FaceID    string  `json:"face_id,omitempty"`
	EntityID  *string `json:"entity_id,omitempty"`
	Distance  float64 `json:"distance,omitempty"`
	Confident bool    `json:"confident"`
}

// WSAlert is the WebSocket broadcast frame for one alert.
type WSAlert struct {
	Category string      `json:"alert_type"`
	Severity int         `json:"severity"`
	Message  string      `json:"message"`
	Details  interface{} `json:"details,omitempty"`
}
