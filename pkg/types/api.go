package types

// PredictRequest is the payload for POST /predict.
type PredictRequest struct {
	// Text to classify.
	// example: 今天天气很好
	Text string `json:"text" example:"今天天气很好"`
}

// PredictResponse is the result of classifying one text.
type PredictResponse struct {
	// Input text echoed back.
	// example: 今天天气很好
	Text string `json:"text" example:"今天天气很好"`
	// Label with the highest probability.
	// example: 天气
	PredictedClass string `json:"predicted_class" example:"天气"`
	// Probability assigned to the predicted label.
	// example: 0.97
	Confidence float64 `json:"confidence" example:"0.97"`
	// Probability for every known label.
	ClassProbabilities map[string]float64 `json:"class_probabilities"`
	// Wall-clock time for tokenize + infer + assemble, in seconds.
	// example: 0.004
	ProcessingTime float64 `json:"processing_time" example:"0.004"`
}

// BatchPredictRequest is the payload for POST /predict/batch.
type BatchPredictRequest struct {
	// Texts to classify, at most 100 per call.
	Texts []string `json:"texts"`
}

// BatchResult is one per-text result inside a batch response. It carries no
// per-text processing time; the batch call reports a single total.
type BatchResult struct {
	Text               string             `json:"text"`
	PredictedClass     string             `json:"predicted_class"`
	Confidence         float64            `json:"confidence"`
	ClassProbabilities map[string]float64 `json:"class_probabilities"`
}

// BatchPredictResponse is returned by POST /predict/batch.
type BatchPredictResponse struct {
	// Per-text results in input order.
	Results []BatchResult `json:"results"`
	// Number of texts processed.
	// example: 3
	TotalTexts int `json:"total_texts" example:"3"`
	// Wall-clock time for the whole batch call, in seconds.
	// example: 0.012
	ProcessingTime float64 `json:"processing_time" example:"0.012"`
	// Server timestamp, RFC 3339.
	Timestamp string `json:"timestamp,omitempty"`
}

// ModelInfo reports the predictor's load state for GET /info.
type ModelInfo struct {
	// "loaded" or "not_loaded".
	// example: loaded
	Status string `json:"status" example:"loaded"`
	// Version identifier of the active model (when loaded).
	// example: v20250812_143055
	Version string `json:"model_version,omitempty" example:"v20250812_143055"`
	// Ordered class labels of the active model (when loaded).
	Classes []string `json:"classes,omitempty"`
	// example: 3
	NumClasses int `json:"num_classes,omitempty" example:"3"`
	// example: 10000
	VocabSize int `json:"vocab_size,omitempty" example:"10000"`
	// example: 128
	MaxSequenceLength int `json:"max_sequence_length,omitempty" example:"128"`
}

// ServiceInfo describes the running service for GET /info.
type ServiceInfo struct {
	// example: textclassd
	Name string `json:"name" example:"textclassd"`
	// example: 1.0.0
	Version string `json:"version" example:"1.0.0"`
	// example: 3600.5
	UptimeSeconds float64 `json:"uptime_seconds" example:"3600.5"`
}

// InfoResponse is returned by GET /info.
type InfoResponse struct {
	Service ServiceInfo `json:"service_info"`
	Model   ModelInfo   `json:"model_info"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	// example: healthy
	Status string `json:"status" example:"healthy"`
	// example: 3600.5
	UptimeSeconds float64 `json:"uptime_seconds" example:"3600.5"`
	// Server timestamp, RFC 3339.
	Timestamp string `json:"timestamp"`
}

// ModelsResponse wraps the registry list returned by GET /models.
type ModelsResponse struct {
	Models []ModelVersion `json:"models"`
	// Identifier of the most recently appended version, if any.
	Latest string `json:"latest,omitempty"`
}

// LoadRequest selects a model for POST /models/load.
type LoadRequest struct {
	// Version to load. Empty means the best-accuracy version.
	// example: v20250812_143055
	Version string `json:"model_version,omitempty" example:"v20250812_143055"`
}

// LoadResponse reports the outcome of POST /models/load.
type LoadResponse struct {
	// example: loaded
	Status string `json:"status" example:"loaded"`
	// example: v20250812_143055
	Version string `json:"model_version" example:"v20250812_143055"`
	// example: 0.92
	ValAccuracy float64 `json:"val_accuracy" example:"0.92"`
}

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	// example: invalid JSON body
	Error string `json:"error" example:"invalid JSON body"`
	// HTTP status code.
	// example: 400
	Code int `json:"code" example:"400"`
}
