// Package dashboard exposes the creator dashboard endpoints.
package dashboard

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/tubeview/tubeview/internal/api"
	"github.com/tubeview/tubeview/internal/tweets"
	"github.com/tubeview/tubeview/internal/videos"
)

// Stats is the channel-level aggregate the server computes.
type Stats struct {
	TotalVideos      int64 `json:"totalVideos"`
	TotalViews       int64 `json:"totalViews"`
	TotalLikes       int64 `json:"totalLikes"`
	TotalSubscribers int64 `json:"totalSubscribers"`
}

// Overview bundles everything the dashboard screen shows.
type Overview struct {
	Stats  Stats
	Videos []videos.Video
	Tweets []tweets.Tweet
}

// Service wraps the dashboard endpoints.
type Service struct {
	client *api.Client
	tweets *tweets.Service
}

// NewService creates a dashboard service. The tweet service supplies the
// creator's own tweets for the overview.
func NewService(client *api.Client, tweetSvc *tweets.Service) *Service {
	return &Service{client: client, tweets: tweetSvc}
}

// Stats fetches the channel aggregate.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	env, err := s.client.Get(ctx, "/dashboard/stats")
	if err != nil {
		return Stats{}, err
	}
	var stats Stats
	if err := env.Decode(&stats); err != nil {
		return Stats{}, err
	}
	return stats, nil
}

// Videos fetches every video the authenticated user owns, published or not.
func (s *Service) Videos(ctx context.Context) ([]videos.Video, error) {
	env, err := s.client.Get(ctx, "/dashboard/videos")
	if err != nil {
		return nil, err
	}
	var list []videos.Video
	if err := env.Decode(&list); err != nil {
		return nil, err
	}
	return list, nil
}

// Load fetches stats, the creator's videos, and the creator's tweets
// concurrently. userID selects whose tweets to include; any failure aborts
// the whole load.
func (s *Service) Load(ctx context.Context, userID string) (Overview, error) {
	var overview Overview
	group, ctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		stats, err := s.Stats(ctx)
		if err != nil {
			return err
		}
		overview.Stats = stats
		return nil
	})
	group.Go(func() error {
		list, err := s.Videos(ctx)
		if err != nil {
			return err
		}
		overview.Videos = list
		return nil
	})
	group.Go(func() error {
		list, err := s.tweets.ListForUser(ctx, userID, 1)
		if err != nil {
			return err
		}
		overview.Tweets = list
		return nil
	})

	if err := group.Wait(); err != nil {
		return Overview{}, err
	}
	return overview, nil
}
