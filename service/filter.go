package service

import (
	"regexp"
	"strings"

	"github.com/aitrendhub/backend/model"
)

// AIVocabulary holds the static matching data used to decide if a repository is AI related
// it is injected into the github service so tests can substitute their own vocabulary
type AIVocabulary struct {
	Topics   map[string]struct{}
	Keywords *regexp.Regexp
}

// DefaultAIVocabulary returns the vocabulary used in production
// topics are matched case insensitively against repository topic labels
// keywords are matched as whole words against the repository name and description
func DefaultAIVocabulary() AIVocabulary {
	topics := []string{
		"ai",
		"artificial-intelligence",
		"machine-learning",
		"ml",
		"deep-learning",
		"llm",
		"large-language-models",
		"neural-network",
		"nlp",
		"computer-vision",
		"generative-ai",
		"pytorch",
		"tensorflow",
		"keras",
		"scikit-learn",
		"huggingface",
		"transformers",
		"langchain",
	}

	topicSet := make(map[string]struct{}, len(topics))
	for _, t := range topics {
		topicSet[t] = struct{}{}
	}

	return AIVocabulary{
		Topics:   topicSet,
		Keywords: regexp.MustCompile(`(?i)\b(ai|artificial|intelligence|machine|learning|neural|deep|ml|nlp|computer vision|data science)\b`),
	}
}

// Matches return true when the repository carries an AI topic label
// or when its name or description contains an AI adjacent word
func (v AIVocabulary) Matches(repo model.TrendingRepository) bool {
	for _, topic := range repo.Topics {
		if _, found := v.Topics[strings.ToLower(topic)]; found {
			return true
		}
	}

	if v.Keywords.MatchString(repo.Name) {
		return true
	}

	if repo.Description != nil && v.Keywords.MatchString(*repo.Description) {
		return true
	}

	return false
}

// Filter keeps the matching repositories without changing their relative order
// the upstream sort by stars descending survives as is
func (v AIVocabulary) Filter(repos []model.TrendingRepository) []model.TrendingRepository {
	filtered := make([]model.TrendingRepository, 0, len(repos))

	for _, repo := range repos {
		if v.Matches(repo) {
			filtered = append(filtered, repo)
		}
	}

	return filtered
}
