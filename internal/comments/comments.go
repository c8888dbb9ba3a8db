// Package comments implements the paginated comment feed for a video.
package comments

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

// Comment mirrors the server's comment document.
type Comment struct {
	ID        string       `json:"_id"`
	Content   string       `json:"content"`
	CreatedAt time.Time    `json:"createdAt"`
	Owner     videos.Owner `json:"owner"`
	LikeCount int64        `json:"likeCount"`
	IsLiked   bool         `json:"isLiked"`
}

// Service wraps the comment endpoints.
type Service struct {
	client *api.Client
}

// NewService creates a comment service.
func NewService(client *api.Client) *Service {
	return &Service{client: client}
}

// ListForVideo fetches one page of a video's comments.
func (s *Service) ListForVideo(ctx context.Context, videoID string, page int) ([]Comment, error) {
	path := fmt.Sprintf("/comments/%s?page=%d&limit=%d", url.PathEscape(videoID), page, feed.DefaultPageSize)
	env, err := s.client.Get(ctx, path)
	if err != nil {
		return nil, err
	}
	return decodeComments(env)
}

// decodeComments tolerates both a bare array and a {comments:[...]} object.
func decodeComments(env api.Envelope) ([]Comment, error) {
	var plain []Comment
	if err := json.Unmarshal(env.Data, &plain); err == nil {
		return plain, nil
	}
	var wrapped struct {
		Comments []Comment `json:"comments"`
	}
	if err := env.Decode(&wrapped); err != nil {
		return nil, err
	}
	return wrapped.Comments, nil
}

// Add posts a new comment on a video.
func (s *Service) Add(ctx context.Context, videoID, content string) (Comment, error) {
	env, err := s.client.Post(ctx, "/comments/"+url.PathEscape(videoID), map[string]string{"content": content})
	if err != nil {
		return Comment{}, err
	}
	var comment Comment
	if err := env.Decode(&comment); err != nil {
		return Comment{}, err
	}
	return comment, nil
}

// Edit updates a comment's content.
func (s *Service) Edit(ctx context.Context, commentID, content string) (Comment, error) {
	env, err := s.client.Patch(ctx, "/comments/c/"+url.PathEscape(commentID), map[string]string{"content": content})
	if err != nil {
		return Comment{}, err
	}
	var comment Comment
	if err := env.Decode(&comment); err != nil {
		return Comment{}, err
	}
	return comment, nil
}

// Delete removes a comment.
func (s *Service) Delete(ctx context.Context, commentID string) error {
	_, err := s.client.Delete(ctx, "/comments/c/"+url.PathEscape(commentID))
	return err
}

// Controller keeps a video's comment list in sync with the server: loads
// replace or append by page, and create/edit/delete mutate the local list
// only after the server accepted the change.
type Controller struct {
	svc     *Service
	videoID string
	list    *feed.List[Comment]
}

// NewController creates a controller for one video's comments.
func NewController(svc *Service, videoID string) *Controller {
	return &Controller{
		svc:     svc,
		videoID: videoID,
		list:    feed.NewList[Comment](feed.DefaultPageSize),
	}
}

// LoadPage fetches a page; page 1 replaces the list, later pages append.
func (c *Controller) LoadPage(ctx context.Context, page int) error {
	comments, err := c.svc.ListForVideo(ctx, c.videoID, page)
	if err != nil {
		return err
	}
	c.list.SetPage(comments, page)
	return nil
}

// Add posts a comment and prepends the server's document on success.
func (c *Controller) Add(ctx context.Context, content string) (Comment, error) {
	comment, err := c.svc.Add(ctx, c.videoID, content)
	if err != nil {
		return Comment{}, err
	}
	c.list.Prepend(comment)
	return comment, nil
}

// Edit updates a comment in place on success.
func (c *Controller) Edit(ctx context.Context, commentID, content string) error {
	updated, err := c.svc.Edit(ctx, commentID, content)
	if err != nil {
		return err
	}
	c.list.Update(
		func(comment Comment) bool { return comment.ID == commentID },
		func(comment Comment) Comment {
			comment.Content = updated.Content
			return comment
		},
	)
	return nil
}

// Delete removes a comment from the list on success.
func (c *Controller) Delete(ctx context.Context, commentID string) error {
	if err := c.svc.Delete(ctx, commentID); err != nil {
		return err
	}
	c.list.Remove(func(comment Comment) bool { return comment.ID == commentID })
	return nil
}

// Comments returns the assembled list.
func (c *Controller) Comments() []Comment { return c.list.Items() }

// HasMore reports whether another page is likely to exist.
func (c *Controller) HasMore() bool { return c.list.HasMore() }

// Page returns the most recently loaded page.
func (c *Controller) Page() int { return c.list.Page() }
