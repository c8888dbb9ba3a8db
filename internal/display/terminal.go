// Package display provides terminal output formatting for tubeview.
package display

import (
	"fmt"
	"strings"
	"time"

	"github.com/tubeview/tubeview/internal/comments"
	"github.com/tubeview/tubeview/internal/dashboard"
	"github.com/tubeview/tubeview/internal/secureurl"
	"github.com/tubeview/tubeview/internal/tweets"
	"github.com/tubeview/tubeview/internal/users"
	"github.com/tubeview/tubeview/internal/videos"
)

const separator = " • "

// TerminalFormatter formats API documents for terminal display.
type TerminalFormatter struct {
	now func() time.Time
}

// NewTerminalFormatter creates a new terminal formatter.
func NewTerminalFormatter() *TerminalFormatter {
	return &TerminalFormatter{now: time.Now}
}

// FormatVideo formats a single video row.
func (f *TerminalFormatter) FormatVideo(v videos.Video) string {
	var lines []string

	lines = append(lines, fmt.Sprintf("[%s] %s", v.ID, v.Title))

	meta := fmt.Sprintf("  by %s%s%s%s%s",
		v.Owner.Username, separator,
		f.formatEngagement(v.Views, v.LikeCount), separator,
		f.FormatTimestamp(v.CreatedAt))
	lines = append(lines, meta)

	if v.Duration > 0 {
		lines = append(lines, "  "+formatDuration(v.Duration))
	}
	if v.VideoFileURL != "" {
		lines = append(lines, "  "+secureurl.Normalize(v.VideoFileURL))
	}

	return strings.Join(lines, "\n") + "\n"
}

// FormatVideoList formats a page of videos.
func (f *TerminalFormatter) FormatVideoList(list []videos.Video) string {
	if len(list) == 0 {
		return "No videos to display.\n"
	}

	var formatted []string
	for _, v := range list {
		formatted = append(formatted, f.FormatVideo(v))
	}

	return strings.Join(formatted, "\n")
}

// FormatComment formats a single comment row.
func (f *TerminalFormatter) FormatComment(c comments.Comment) string {
	header := fmt.Sprintf("%s%s%s", c.Owner.Username, separator, f.FormatTimestamp(c.CreatedAt))
	body := "  " + f.TruncateText(c.Content, 120)
	footer := fmt.Sprintf("  %d likes  (%s)", c.LikeCount, c.ID)
	return strings.Join([]string{header, body, footer}, "\n") + "\n"
}

// FormatTweet formats a single tweet row.
func (f *TerminalFormatter) FormatTweet(t tweets.Tweet) string {
	header := fmt.Sprintf("@%s%s%s", t.Owner.Username, separator, f.FormatTimestamp(t.CreatedAt))
	body := "  " + f.TruncateText(t.Content, 240)
	footer := fmt.Sprintf("  %d likes  (%s)", t.LikeCount, t.ID)
	return strings.Join([]string{header, body, footer}, "\n") + "\n"
}

// FormatChannel formats a channel header.
func (f *TerminalFormatter) FormatChannel(c users.Channel) string {
	var lines []string

	lines = append(lines, fmt.Sprintf("%s (@%s)", c.FullName, c.Username))
	lines = append(lines, fmt.Sprintf("  %d subscribers%s%d subscribed",
		c.SubscriberCount, separator, c.SubscribedToCount))
	if c.IsSubscribed {
		lines = append(lines, "  subscribed ✓")
	}
	if c.AvatarURL != "" {
		lines = append(lines, "  "+secureurl.Normalize(c.AvatarURL))
	}

	return strings.Join(lines, "\n") + "\n"
}

// FormatStats formats the dashboard aggregate block.
func (f *TerminalFormatter) FormatStats(s dashboard.Stats) string {
	return fmt.Sprintf("videos: %d%sviews: %d%slikes: %d%ssubscribers: %d\n",
		s.TotalVideos, separator, s.TotalViews, separator, s.TotalLikes, separator, s.TotalSubscribers)
}

// formatEngagement formats view and like counts into a single fragment.
func (f *TerminalFormatter) formatEngagement(views, likes int64) string {
	var parts []string

	parts = append(parts, fmt.Sprintf("%d views", views))
	if likes > 0 {
		parts = append(parts, fmt.Sprintf("%d likes", likes))
	}

	return strings.Join(parts, separator)
}

// formatDuration renders seconds as m:ss or h:mm:ss.
func formatDuration(seconds float64) string {
	total := int(seconds)
	h, m, s := total/3600, (total%3600)/60, total%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

// FormatTimestamp formats a timestamp as relative time.
func (f *TerminalFormatter) FormatTimestamp(t time.Time) string {
	diff := f.now().Sub(t)

	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		return pluralize(int(diff.Minutes()), "minute")
	case diff < 24*time.Hour:
		return pluralize(int(diff.Hours()), "hour")
	case diff < 7*24*time.Hour:
		return pluralize(int(diff.Hours()/24), "day")
	default:
		return t.Format("Jan 2, 2006")
	}
}

// pluralize returns "N unit ago" or "N units ago" based on count.
func pluralize(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s ago", unit)
	}
	return fmt.Sprintf("%d %ss ago", n, unit)
}

// TruncateText truncates text to maxLen, adding "..." if truncated.
func (f *TerminalFormatter) TruncateText(text string, maxLen int) string {
	if len(text) <= maxLen {
		return text
	}
	if maxLen <= 3 {
		return "..."
	}
	return text[:maxLen-3] + "..."
}
