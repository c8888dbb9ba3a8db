package videos

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"github.com/tubeview/tubeview/internal/api"
)

// Service wraps the video endpoints behind the gateway client.
type Service struct {
	client *api.Client
}

// NewService creates a video service.
func NewService(client *api.Client) *Service {
	return &Service{client: client}
}

// List fetches one page of the video feed.
func (s *Service) List(ctx context.Context, opts ListOptions) (ListResult, error) {
	query := url.Values{}
	if opts.Page > 0 {
		query.Set("page", strconv.Itoa(opts.Page))
	}
	if opts.Limit > 0 {
		query.Set("limit", strconv.Itoa(opts.Limit))
	}
	if opts.Query != "" {
		query.Set("query", opts.Query)
	}
	if opts.UserID != "" {
		query.Set("userId", opts.UserID)
	}
	if opts.SortType != "" {
		query.Set("sortType", opts.SortType)
	}
	if opts.IsPublished != nil {
		query.Set("isPublished", strconv.FormatBool(*opts.IsPublished))
	}

	path := "/videos"
	if encoded := query.Encode(); encoded != "" {
		path += "?" + encoded
	}

	env, err := s.client.Get(ctx, path)
	if err != nil {
		return ListResult{}, err
	}
	return decodeListResult(env)
}

// decodeListResult tolerates both list shapes the backend has used: an
// object {videos,totalPages,...} and a bare array of videos.
func decodeListResult(env api.Envelope) (ListResult, error) {
	var result ListResult
	if err := env.Decode(&result); err == nil && result.Videos != nil {
		return result, nil
	}

	var plain []Video
	if err := json.Unmarshal(env.Data, &plain); err != nil {
		return ListResult{}, err
	}
	return ListResult{Videos: plain, TotalPages: 1, Page: 1}, nil
}

// Get fetches a single video by id.
func (s *Service) Get(ctx context.Context, id string) (Video, error) {
	env, err := s.client.Get(ctx, "/videos/"+url.PathEscape(id))
	if err != nil {
		return Video{}, err
	}
	var video Video
	if err := env.Decode(&video); err != nil {
		return Video{}, err
	}
	return video, nil
}

// UploadInput is the multipart video-create form.
type UploadInput struct {
	Title         string
	Description   string
	VideoPath     string
	ThumbnailPath string
}

// Upload publishes a new video with its thumbnail.
func (s *Service) Upload(ctx context.Context, input UploadInput) (Video, error) {
	fields := map[string]string{
		"title":       input.Title,
		"description": input.Description,
	}
	files := []api.FileUpload{
		{Field: "videoFile", Path: input.VideoPath},
		{Field: "thumbnail", Path: input.ThumbnailPath},
	}

	env, err := s.client.RequestMultipart(ctx, http.MethodPost, "/videos", fields, files)
	if err != nil {
		return Video{}, err
	}
	var video Video
	if err := env.Decode(&video); err != nil {
		return Video{}, err
	}
	return video, nil
}

// TogglePublish flips a video's published flag and returns the updated
// document.
func (s *Service) TogglePublish(ctx context.Context, id string) (Video, error) {
	env, err := s.client.Patch(ctx, "/videos/toggle/publish/"+url.PathEscape(id), nil)
	if err != nil {
		return Video{}, err
	}
	var video Video
	if err := env.Decode(&video); err != nil {
		return Video{}, err
	}
	return video, nil
}
