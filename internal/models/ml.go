package models

// MLModel is a fraud classifier registered in the backend.
type MLModel struct {
	ID           string   `json:"id"`
	ModelName    string   `json:"modelName"`
	ModelType    string   `json:"modelType"`
	ModelVersion string   `json:"modelVersion,omitempty"`
	IsActive     bool     `json:"isActive"`
	Accuracy     *float64 `json:"accuracy"`
	Precision    *float64 `json:"precision"`
	Recall       *float64 `json:"recall"`
	F1Score      *float64 `json:"f1Score"`
	AUC          *float64 `json:"auc"`
	TrainedAt    string   `json:"trainedAt,omitempty"`
}

// MLPrediction is the output of a model for a statement.
type MLPrediction struct {
	ID                string             `json:"id"`
	StatementID       string             `json:"statementId"`
	ModelID           string             `json:"modelId"`
	ModelName         string             `json:"modelName,omitempty"`
	FraudProbability  *float64           `json:"fraudProbability"`
	PredictionResult  string             `json:"predictionResult"` // FRAUD | NON_FRAUD | UNCERTAIN
	ConfidenceScore   *float64           `json:"confidenceScore"`
	FeatureImportance map[string]float64 `json:"featureImportance,omitempty"`
	PredictedAt       string             `json:"predictedAt,omitempty"`
}

// ModelPerformance holds evaluation details of a model.
type ModelPerformance struct {
	ModelID        string             `json:"modelId"`
	Accuracy       *float64           `json:"accuracy"`
	Precision      *float64           `json:"precision"`
	Recall         *float64           `json:"recall"`
	F1Score        *float64           `json:"f1Score"`
	AUC            *float64           `json:"auc"`
	TruePositives  *int               `json:"truePositives"`
	FalsePositives *int               `json:"falsePositives"`
	TrueNegatives  *int               `json:"trueNegatives"`
	FalseNegatives *int               `json:"falseNegatives"`
	History        []PerformancePoint `json:"history,omitempty"`
}

// PerformancePoint is one evaluation run in a model's history.
type PerformancePoint struct {
	EvaluatedAt string   `json:"evaluatedAt"`
	Accuracy    *float64 `json:"accuracy"`
	F1Score     *float64 `json:"f1Score"`
}
