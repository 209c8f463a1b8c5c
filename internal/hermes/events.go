package hermes

import "time"

const (
	// SubjectReviewsIngested is published by the scraper pipeline after it
	// writes new reviews for a business.
	SubjectReviewsIngested = "reviews.ingested"

	SubjectAnalysisCompleted        = "reviews.analysis.completed"
	SubjectRecommendationsGenerated = "reviews.recommendations.generated"
	SubjectAgentRegistered          = "reviews.agent.registered"
)

// ReviewsIngested names the business whose table changed. Either the catalog
// slug or the exact business name is accepted.
type ReviewsIngested struct {
	Business string `json:"business"`
	Count    int    `json:"count,omitempty"`
}

// AnalysisCompleted summarises a finished analysis run.
type AnalysisCompleted struct {
	Business     string    `json:"business"`
	TotalReviews int       `json:"total_reviews"`
	AvgRating    float64   `json:"avg_rating"`
	ResponseRate float64   `json:"response_rate"`
	Sentiment    float64   `json:"sentiment"`
	TopThemes    []string  `json:"top_themes"`
	Timestamp    time.Time `json:"timestamp"`
}

// RecommendationsGenerated announces a stored recommendation run.
type RecommendationsGenerated struct {
	Business  string    `json:"business"`
	RunID     string    `json:"run_id,omitempty"`
	Provider  string    `json:"provider"`
	Model     string    `json:"model,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type AgentRegistered struct {
	Service    string    `json:"service"`
	Port       int       `json:"port"`
	Businesses int       `json:"businesses"`
	Provider   string    `json:"provider"`
	Timestamp  time.Time `json:"timestamp"`
}
