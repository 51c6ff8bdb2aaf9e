package domain

import (
	"context"
	"time"
)

// Evaluation categories
const (
	CategoryMetals   = "metals"
	CategoryProperty = "property"
	CategoryVehicles = "vehicles"
	CategoryJewelry  = "jewelry"
)

// Evaluation statuses
const (
	EvaluationPending    = "pending"
	EvaluationInProgress = "in-progress"
	EvaluationCompleted  = "completed"
	EvaluationCancelled  = "cancelled"
)

// Client identifies the party an evaluation is performed for
type Client struct {
	Name    string `json:"name"`
	Contact string `json:"contact"`
	Address string `json:"address,omitempty"`
	Email   string `json:"email,omitempty"`
}

// EvaluationDetails holds free-form assessment data
type EvaluationDetails struct {
	Location        string         `json:"location,omitempty"`
	Specifications  map[string]any `json:"specifications,omitempty"`
	Condition       string         `json:"condition,omitempty"`
	MarketValue     float64        `json:"marketValue,omitempty"`
	AdditionalNotes string         `json:"additionalNotes,omitempty"`
}

// Criterion is a single weighted scoring line of an evaluation
type Criterion struct {
	Name     string  `json:"name"`
	Weight   float64 `json:"weight"`
	Score    float64 `json:"score"`
	Comments string  `json:"comments,omitempty"`
}

// Evaluation is an assessment task owned exclusively by its evaluator.
type Evaluation struct {
	ID              string            `json:"id"`
	Title           string            `json:"title"`
	Description     string            `json:"description"`
	Category        string            `json:"category"`
	Evaluator       string            `json:"evaluator"`
	Client          Client            `json:"client"`
	Status          string            `json:"status"`
	Details         EvaluationDetails `json:"details"`
	TotalScore      float64           `json:"totalScore"`
	ReportGenerated bool              `json:"reportGenerated"`
	Criteria        []Criterion       `json:"criteria,omitempty"`
	CreatedAt       time.Time         `json:"createdAt"`
	UpdatedAt       time.Time         `json:"updatedAt"`
}

// ValidEvaluationCategory reports whether c is a known evaluation category
func ValidEvaluationCategory(c string) bool {
	switch c {
	case CategoryMetals, CategoryProperty, CategoryVehicles, CategoryJewelry:
		return true
	}
	return false
}

// ValidEvaluationStatus reports whether s is a known evaluation status
func ValidEvaluationStatus(s string) bool {
	switch s {
	case EvaluationPending, EvaluationInProgress, EvaluationCompleted, EvaluationCancelled:
		return true
	}
	return false
}

// EvaluationRepository defines evaluator-scoped data access for evaluations
type EvaluationRepository interface {
	Create(ctx context.Context, evaluation *Evaluation) error
	GetByID(ctx context.Context, id, evaluatorID string) (*Evaluation, error)
	Update(ctx context.Context, evaluation *Evaluation) error
	Delete(ctx context.Context, id, evaluatorID string) error
	List(ctx context.Context, evaluatorID string) ([]*Evaluation, error)
}
