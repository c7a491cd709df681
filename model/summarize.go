package model

import "time"

// SummarizeRequest is the body of a summarization call
// the api key belongs to the caller and only lives for the duration of the request
type SummarizeRequest struct {
	Text     string `json:"text" binding:"required"`
	APIKey   string `json:"api_key" binding:"required"`
	Provider string `json:"provider" binding:"required,oneof=openai groq"`
}

type SummarizeResponse struct {
	Summary     string    `json:"summary"`
	Provider    string    `json:"provider"`
	GeneratedAt time.Time `json:"generated_at"`
}
