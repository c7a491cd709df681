package model

import "time"

type TrendingRepository struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	FullName    string    `json:"full_name"`
	Description *string   `json:"description,omitempty"` // description can be nil for some repositories, nil is not the same as empty
	Stars       int       `json:"stars"`
	URL         string    `json:"url"`
	Topics      []string  `json:"topics"`
	Language    *string   `json:"language,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// byte count per language, only loaded when enabled in configuration
	Languages map[string]int `json:"languages,omitempty"`
}

type RepositoryLanguages struct {
	RepositoryID int64
	Languages    map[string]int
}
