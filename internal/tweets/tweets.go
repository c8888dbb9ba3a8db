// Package tweets implements the short-post feed.
package tweets

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/tubeview/tubeview/internal/api"
	"github.com/tubeview/tubeview/internal/feed"
	"github.com/tubeview/tubeview/internal/videos"
)

// Tweet mirrors the server's tweet document. LikeCount and IsLiked are
// absent from some list responses and default to zero values.
type Tweet struct {
	ID        string       `json:"_id"`
	Content   string       `json:"content"`
	CreatedAt time.Time    `json:"createdAt"`
	Owner     videos.Owner `json:"owner"`
	LikeCount int64        `json:"likeCount"`
	IsLiked   bool         `json:"isLiked"`
}

// Service wraps the tweet endpoints.
type Service struct {
	client *api.Client
}

// NewService creates a tweet service.
func NewService(client *api.Client) *Service {
	return &Service{client: client}
}

// List fetches one page of the global tweet feed.
func (s *Service) List(ctx context.Context, page int) ([]Tweet, error) {
	path := fmt.Sprintf("/tweets?page=%d&limit=%d", page, feed.DefaultPageSize)
	env, err := s.client.Get(ctx, path)
	if err != nil {
		return nil, err
	}
	return decodeTweets(env)
}

// ListForUser fetches one page of a user's tweets.
func (s *Service) ListForUser(ctx context.Context, userID string, page int) ([]Tweet, error) {
	path := fmt.Sprintf("/tweets/user/%s?page=%d&limit=%d", url.PathEscape(userID), page, feed.DefaultPageSize)
	env, err := s.client.Get(ctx, path)
	if err != nil {
		return nil, err
	}
	return decodeTweets(env)
}

// decodeTweets tolerates both a bare array and a {tweets:[...]} object.
func decodeTweets(env api.Envelope) ([]Tweet, error) {
	var plain []Tweet
	if err := json.Unmarshal(env.Data, &plain); err == nil {
		return plain, nil
	}
	var wrapped struct {
		Tweets []Tweet `json:"tweets"`
	}
	if err := env.Decode(&wrapped); err != nil {
		return nil, err
	}
	return wrapped.Tweets, nil
}

// Create posts a new tweet.
func (s *Service) Create(ctx context.Context, content string) (Tweet, error) {
	env, err := s.client.Post(ctx, "/tweets", map[string]string{"content": content})
	if err != nil {
		return Tweet{}, err
	}
	var tweet Tweet
	if err := env.Decode(&tweet); err != nil {
		return Tweet{}, err
	}
	return tweet, nil
}

// Edit updates a tweet's content.
func (s *Service) Edit(ctx context.Context, tweetID, content string) (Tweet, error) {
	env, err := s.client.Patch(ctx, "/tweets/"+url.PathEscape(tweetID), map[string]string{"content": content})
	if err != nil {
		return Tweet{}, err
	}
	var tweet Tweet
	if err := env.Decode(&tweet); err != nil {
		return Tweet{}, err
	}
	return tweet, nil
}

// Delete removes a tweet.
func (s *Service) Delete(ctx context.Context, tweetID string) error {
	_, err := s.client.Delete(ctx, "/tweets/"+url.PathEscape(tweetID))
	return err
}

// Controller keeps a tweet list in sync with the server. An empty userID
// follows the global feed, otherwise one user's tweets.
type Controller struct {
	svc    *Service
	userID string
	list   *feed.List[Tweet]
}

// NewController creates a controller over the global feed (userID == "")
// or a single user's tweets.
func NewController(svc *Service, userID string) *Controller {
	return &Controller{
		svc:    svc,
		userID: userID,
		list:   feed.NewList[Tweet](feed.DefaultPageSize),
	}
}

// LoadPage fetches a page; page 1 replaces the list, later pages append.
func (c *Controller) LoadPage(ctx context.Context, page int) error {
	var (
		tweets []Tweet
		err    error
	)
	if c.userID == "" {
		tweets, err = c.svc.List(ctx, page)
	} else {
		tweets, err = c.svc.ListForUser(ctx, c.userID, page)
	}
	if err != nil {
		return err
	}
	c.list.SetPage(tweets, page)
	return nil
}

// Create posts a tweet and prepends the server's document on success.
func (c *Controller) Create(ctx context.Context, content string) (Tweet, error) {
	tweet, err := c.svc.Create(ctx, content)
	if err != nil {
		return Tweet{}, err
	}
	c.list.Prepend(tweet)
	return tweet, nil
}

// Edit updates a tweet in place on success.
func (c *Controller) Edit(ctx context.Context, tweetID, content string) error {
	updated, err := c.svc.Edit(ctx, tweetID, content)
	if err != nil {
		return err
	}
	c.list.Update(
		func(tweet Tweet) bool { return tweet.ID == tweetID },
		func(tweet Tweet) Tweet {
			tweet.Content = updated.Content
			return tweet
		},
	)
	return nil
}

// Delete removes a tweet from the list on success.
func (c *Controller) Delete(ctx context.Context, tweetID string) error {
	if err := c.svc.Delete(ctx, tweetID); err != nil {
		return err
	}
	c.list.Remove(func(tweet Tweet) bool { return tweet.ID == tweetID })
	return nil
}

// Tweets returns the assembled list.
func (c *Controller) Tweets() []Tweet { return c.list.Items() }

// HasMore reports whether another page is likely to exist.
func (c *Controller) HasMore() bool { return c.list.HasMore() }

// Page returns the most recently loaded page.
func (c *Controller) Page() int { return c.list.Page() }
