package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aitrendhub/backend/config"
	"github.com/aitrendhub/backend/model"
	"github.com/google/go-github/v66/github"

	"github.com/remeh/sizedwaitgroup"
	log "github.com/sirupsen/logrus"

	"golang.org/x/time/rate"
)

type GithubService interface {
	FetchTrending(ctx context.Context) ([]model.TrendingRepository, error)
	GetRepositoriesLanguages(repos []model.TrendingRepository) ([]model.TrendingRepository, error)
	FetchLanguagesForSingleRepository(r model.TrendingRepository, swg *sizedwaitgroup.SizedWaitGroup, ch chan<- model.RepositoryLanguages) error

	HandleRequestErrors(err error) error
}

type githubService struct {
	githubClient      *github.Client
	githubRateLimiter *rate.Limiter
	vocabulary        AIVocabulary
	config            config.Config
}

// Search rate limit = 10 calls per minute for non-authenticated and 30 calls per minute for authenticated
// ListLanguages rate limit = 60 calls per hour for non-authenticated and 5000 calls for authenticated
// the local limiter mirrors the core limit, which is the tightest one we consume
func NewGithubService(config config.Config, githubClient *github.Client, rateLimiter *rate.Limiter, vocabulary AIVocabulary) GithubService {
	return githubService{
		githubClient:      githubClient,
		githubRateLimiter: rateLimiter,
		vocabulary:        vocabulary,
		config:            config,
	}
}

// FetchTrending search repositories created within the configured window that carry the AI topic
// results arrive sorted by stars descending and are filtered against the vocabulary before returning
// this is a single page fetch, there is no pagination
func (s githubService) FetchTrending(ctx context.Context) ([]model.TrendingRepository, error) {
	if !s.githubRateLimiter.Allow() {
		log.Warning("the Github rate limit has been reached. Use a token or wait until the limit reset")
		return []model.TrendingRepository{}, fmt.Errorf("RATE_LIMIT_REACHED")
	}

	query := model.TrendsQuery{
		Topic:           s.config.Trends.SearchTopic,
		FetchWindowDays: s.config.Trends.FetchWindowDays,
	}.ToGithubQuery(time.Now())

	log.WithFields(log.Fields{
		"query":      query,
		"maxResults": s.config.Trends.MaxResults,
	}).Info("fetch trending repositories from github")

	// search repositories that match the topic and creation date filters
	// using this we can limit the number of results directly using Github search API
	// this will limit the number of loops required to filter afterwards
	repos, _, err := s.githubClient.Search.Repositories(
		ctx,
		query,
		&github.SearchOptions{
			Sort:  "stars",
			Order: "desc",
			ListOptions: github.ListOptions{
				Page:    1,
				PerPage: s.config.Trends.MaxResults,
			},
		},
	)

	if err != nil {
		return []model.TrendingRepository{}, s.HandleRequestErrors(err)
	}

	// build output format for each repo
	repositoriesAggregated := make([]model.TrendingRepository, 0, len(repos.Repositories))

	for _, r := range repos.Repositories {

		if r == nil || r.ID == nil || r.FullName == nil || r.Name == nil || r.HTMLURL == nil {
			log.WithFields(log.Fields{
				"repositoryID": r.GetID(),
			}).Debug("repository found with invalid information. skipped")

			continue
		}

		repositoryAggregated := model.TrendingRepository{
			ID:          *r.ID,
			Name:        *r.Name,
			FullName:    *r.FullName,
			Description: r.Description,
			Stars:       r.GetStargazersCount(),
			URL:         *r.HTMLURL,
			Topics:      r.Topics,
			Language:    r.Language,
			CreatedAt:   r.GetCreatedAt().Time,
			UpdatedAt:   r.GetUpdatedAt().Time,
		}

		if repositoryAggregated.Topics == nil {
			repositoryAggregated.Topics = []string{}
		}

		repositoriesAggregated = append(repositoriesAggregated, repositoryAggregated)
	}

	// keep the AI related repositories only
	// the relative order from the upstream stars sort is preserved
	filtered := s.vocabulary.Filter(repositoriesAggregated)

	log.WithFields(log.Fields{
		"fetched": len(repositoriesAggregated),
		"kept":    len(filtered),
	}).Debug("filtered repositories against AI vocabulary")

	if !s.config.Trends.LoadLanguages {
		return filtered, nil
	}

	// count number of repositories where the languages are available for loading
	// if there is not enought request on rate limiter to load all of them, return an error here
	// this avoid to load the languages not completly
	reposWithLanguagesToLoad := 0

	for _, r := range filtered {
		if r.Language != nil {
			reposWithLanguagesToLoad += 1
		}
	}

	// rate limit check: consume tokens/requests for each repo that we need to load languages from
	// if there is not enought requests, return an error to avoid loading for only a part of repositories
	if !s.githubRateLimiter.AllowN(time.Now(), reposWithLanguagesToLoad) {
		log.WithField("repositoriesToLoad", reposWithLanguagesToLoad).Warning("not enought requests in rate limiter to load languages for all repositories")
		return []model.TrendingRepository{}, fmt.Errorf("RATE_LIMIT_REACHED")
	}

	// aggregate and fetch the languages used for each repo using goroutines
	filtered, err = s.GetRepositoriesLanguages(filtered)

	if err != nil {
		log.WithError(err).Error("unable to get repositories languages")
		return []model.TrendingRepository{}, fmt.Errorf("UPSTREAM_UNAVAILABLE")
	}

	return filtered, nil
}

// GetRepositoriesLanguages will fetch the languages used for each repository in parameters
// this function use wait groups to parallelize the requests for each repository
func (s githubService) GetRepositoriesLanguages(repos []model.TrendingRepository) ([]model.TrendingRepository, error) {

	// create a group to wait for all goroutines to finish
	swg := sizedwaitgroup.New(s.config.Trends.MaxParallelTasksAllowed)

	// create a channel to collect response for all repositories in an map
	// the map contain the repository ID as key and languages as value
	// we will assign together when all tasks are finished
	results := make(chan model.RepositoryLanguages, len(repos))

	for _, r := range repos {

		// to avoid to many requests for nothing
		// check if the main language (most used) is available for the repo
		// if yes, it means at least one language can be found using ListLanguages
		// if not, the ListLanguages willl return nil (or empty) and we can avoid executing the request
		// this will save some requests regarding to the rate limit
		if r.Language == nil {
			log.WithFields(log.Fields{
				"repositoryID": r.ID,
			}).Debug("repository without most used language. skipped from loading languages list")

			results <- model.RepositoryLanguages{RepositoryID: r.ID, Languages: map[string]int{}}
		} else {
			swg.Add()
			go s.FetchLanguagesForSingleRepository(r, &swg, results)
		}
	}

	// wait for all tasks to be finished
	log.Debug("waiting for all threads for loading repositories to be finished")
	swg.Wait()
	log.Debug("all threads for loading repositories languages finished")

	// close the channel
	close(results)

	// associate languages with repositories
	langMap := make(map[int64]map[string]int)
	for result := range results {
		langMap[result.RepositoryID] = result.Languages
	}

	for i := range repos {
		if lang, found := langMap[repos[i].ID]; found {
			repos[i].Languages = lang
		}
	}

	return repos, nil
}

// FetchLanguagesForSingleRepository get the languages for a specific repository
// It will add the results to a channel and use a goroutine
// note: we are not checking the rate limit in this function, because done in the parent function
// note: take care if you call this function from another function
func (s githubService) FetchLanguagesForSingleRepository(r model.TrendingRepository, swg *sizedwaitgroup.SizedWaitGroup, ch chan<- model.RepositoryLanguages) error {
	defer swg.Done()

	owner, repo, found := strings.Cut(r.FullName, "/")
	if !found {
		log.WithField("fullName", r.FullName).Debug("repository with unqualified full name. skipped from loading languages list")
		ch <- model.RepositoryLanguages{RepositoryID: r.ID, Languages: map[string]int{}}
		return nil
	}

	log.WithFields(log.Fields{
		"repositoryID": r.ID,
		"language":     r.Language,
	}).Debug("fetch languages for repository")

	res, _, err := s.githubClient.Repositories.ListLanguages(
		context.Background(),
		owner,
		repo,
	)

	if err != nil {
		return s.HandleRequestErrors(err)
	}

	ch <- model.RepositoryLanguages{RepositoryID: r.ID, Languages: res}
	return nil
}

// HandleRequestErrors manage errors including github rate limit errors at the same location
// If error is a rate limit error, this function will update the local rate limiter to consume all available requests
// this can help us to keep the local rate limiter up to date
func (s githubService) HandleRequestErrors(err error) error {
	if _, ok := err.(*github.RateLimitError); ok {
		if !s.githubRateLimiter.AllowN(time.Now(), s.githubRateLimiter.Burst()) {
			return fmt.Errorf("RATE_LIMITER_ERROR")
		}

		log.Warning("the Github rate limit has been reached. Use a token or wait until the limit reset")
		return fmt.Errorf("RATE_LIMIT_REACHED")
	}

	log.WithError(err).Error("error catched when fetching data from github")
	return fmt.Errorf("UPSTREAM_UNAVAILABLE")
}
