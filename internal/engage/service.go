// Package engage implements optimistic like and subscribe toggles with
// rollback on failure.
package engage

import (
	"context"
	"encoding/json"
	"net/url"

	"github.com/tubeview/tubeview/internal/api"
	"github.com/tubeview/tubeview/internal/users"
)

// LikeTarget is the kind of entity a like applies to.
type LikeTarget string

const (
	LikeVideo   LikeTarget = "video"
	LikeComment LikeTarget = "comment"
	LikeTweet   LikeTarget = "tweet"
)

// apiCode maps a target to the single-letter code the API uses.
func (t LikeTarget) apiCode() string {
	switch t {
	case LikeVideo:
		return "v"
	case LikeComment:
		return "c"
	case LikeTweet:
		return "t"
	}
	return string(t)
}

// ToggleState is the authoritative on/count pair for a like or subscription.
type ToggleState struct {
	On    bool
	Count int64
}

// Service wraps the like and subscription endpoints.
type Service struct {
	client *api.Client
}

// NewService creates an engagement service.
func NewService(client *api.Client) *Service {
	return &Service{client: client}
}

// toggleReply tolerates the field spellings the backend has used across
// endpoints: liked vs likedBy, likeCount vs likesCount, subscribed and
// subscribersCount for channels.
type toggleReply struct {
	Liked            *bool           `json:"liked"`
	LikedBy          json.RawMessage `json:"likedBy"`
	IsLiked          *bool           `json:"isLiked"`
	LikeCount        *int64          `json:"likeCount"`
	LikesCount       *int64          `json:"likesCount"`
	Subscribed       *bool           `json:"subscribed"`
	SubscribersCount *int64          `json:"subscribersCount"`
}

func (r toggleReply) state() ToggleState {
	var state ToggleState
	switch {
	case r.Liked != nil:
		state.On = *r.Liked
	case r.IsLiked != nil:
		state.On = *r.IsLiked
	case r.Subscribed != nil:
		state.On = *r.Subscribed
	default:
		state.On = len(r.LikedBy) > 0 && string(r.LikedBy) != "null"
	}
	switch {
	case r.LikeCount != nil:
		state.Count = *r.LikeCount
	case r.LikesCount != nil:
		state.Count = *r.LikesCount
	case r.SubscribersCount != nil:
		state.Count = *r.SubscribersCount
	}
	return state
}

// ToggleLike flips the viewer's like on an entity and returns the server's
// authoritative state.
func (s *Service) ToggleLike(ctx context.Context, target LikeTarget, id string) (ToggleState, error) {
	env, err := s.client.Post(ctx, "/likes/toggle/"+target.apiCode()+"/"+url.PathEscape(id), nil)
	if err != nil {
		return ToggleState{}, err
	}
	return decodeToggle(env)
}

// LikeStatus fetches the authoritative like state for an entity.
func (s *Service) LikeStatus(ctx context.Context, target LikeTarget, id string) (ToggleState, error) {
	env, err := s.client.Get(ctx, "/likes/status/"+target.apiCode()+"/"+url.PathEscape(id))
	if err != nil {
		return ToggleState{}, err
	}
	return decodeToggle(env)
}

// ToggleSubscription flips the viewer's subscription to a channel.
func (s *Service) ToggleSubscription(ctx context.Context, channelID string) (ToggleState, error) {
	env, err := s.client.Post(ctx, "/subscriptions/c/"+url.PathEscape(channelID), nil)
	if err != nil {
		return ToggleState{}, err
	}
	return decodeToggle(env)
}

// SubscribedChannels lists the channels a channel owner subscribes to.
func (s *Service) SubscribedChannels(ctx context.Context, channelID string) ([]users.Channel, error) {
	env, err := s.client.Get(ctx, "/subscriptions/c/"+url.PathEscape(channelID))
	if err != nil {
		return nil, err
	}
	var channels []users.Channel
	if err := env.Decode(&channels); err != nil {
		return nil, err
	}
	return channels, nil
}

// ChannelSubscribers lists the subscribers of a channel.
func (s *Service) ChannelSubscribers(ctx context.Context, subscriberID string) ([]users.Channel, error) {
	env, err := s.client.Get(ctx, "/subscriptions/u/"+url.PathEscape(subscriberID))
	if err != nil {
		return nil, err
	}
	var channels []users.Channel
	if err := env.Decode(&channels); err != nil {
		return nil, err
	}
	return channels, nil
}

func decodeToggle(env api.Envelope) (ToggleState, error) {
	var reply toggleReply
	if err := env.Decode(&reply); err != nil {
		return ToggleState{}, err
	}
	return reply.state(), nil
}
