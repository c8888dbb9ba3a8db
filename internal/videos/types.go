// Package videos talks to the video endpoints and caches list pages.
package videos

import "time"

// Owner is the publishing user embedded in a video document.
type Owner struct {
	ID        string `json:"_id"`
	Username  string `json:"username"`
	FullName  string `json:"fullName"`
	AvatarURL string `json:"avatar"`
}

// Video mirrors the server's video document. The like fields are a read
// model; the engage package owns optimistic toggles.
type Video struct {
	ID           string    `json:"_id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	ThumbnailURL string    `json:"thumbnail"`
	VideoFileURL string    `json:"videoFile"`
	Duration     float64   `json:"duration"`
	Views        int64     `json:"views"`
	IsPublished  bool      `json:"isPublished"`
	CreatedAt    time.Time `json:"createdAt"`
	Owner        Owner     `json:"owner"`
	LikeCount    int64     `json:"likeCount"`
	IsLiked      bool      `json:"isLiked"`
}

// ListOptions are the /videos query parameters. Zero values are omitted.
type ListOptions struct {
	Page        int
	Limit       int
	Query       string
	UserID      string
	SortType    string
	IsPublished *bool
}

// ListResult is one page of the video feed.
type ListResult struct {
	Videos      []Video `json:"videos"`
	TotalPages  int     `json:"totalPages"`
	TotalVideos int     `json:"totalVideos"`
	Page        int     `json:"page"`
}
