// Package main provides the tubeview CLI entry point.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"runtime/debug"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/tubeview/tubeview/internal/api"
	"github.com/tubeview/tubeview/internal/auth"
	"github.com/tubeview/tubeview/internal/comments"
	"github.com/tubeview/tubeview/internal/config"
	"github.com/tubeview/tubeview/internal/dashboard"
	"github.com/tubeview/tubeview/internal/display"
	"github.com/tubeview/tubeview/internal/engage"
	"github.com/tubeview/tubeview/internal/secureurl"
	"github.com/tubeview/tubeview/internal/tweets"
	"github.com/tubeview/tubeview/internal/users"
	"github.com/tubeview/tubeview/internal/videos"
	"github.com/tubeview/tubeview/pkg/browser"
)

// version is injected at build time via -ldflags="-X main.version=...".
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// resolveVersion prefers the ldflags-injected version and falls back to
// module build info so `go install ...@vX.Y.Z` binaries report correctly.
func resolveVersion(ldflagsVersion string, info *debug.BuildInfo) string {
	if ldflagsVersion != "dev" {
		return ldflagsVersion
	}
	if info != nil && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return "dev"
}

// app bundles everything a command needs; built once per invocation.
type app struct {
	cfg       config.Config
	logger    *slog.Logger
	creds     *auth.Store
	client    *api.Client
	users     *users.Service
	videos    *videos.Service
	cache     *videos.Store
	comments  *comments.Service
	tweets    *tweets.Service
	engage    *engage.Service
	dashboard *dashboard.Service
	formatter *display.TerminalFormatter
	notifier  *display.StderrNotifier
}

func newApp(cmd *cobra.Command) *app {
	cfg := config.Load()

	level := slog.LevelWarn
	switch strings.ToLower(cfg.LogLevel) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	creds := auth.NewStore(cfg.ConfigDir)
	clientOpts := []api.ClientOption{
		api.WithLogger(logger),
		api.WithHTTPClient(newHTTPClient(cfg.HTTPTimeout)),
	}
	if cfg.RateLimit > 0 {
		clientOpts = append(clientOpts, api.WithRateLimit(cfg.RateLimit, 1))
	}
	client := api.NewClient(cfg.APIBaseURL, creds, clientOpts...)

	userSvc := users.NewService(client)
	tweetSvc := tweets.NewService(client)

	return &app{
		cfg:       cfg,
		logger:    logger,
		creds:     creds,
		client:    client,
		users:     userSvc,
		videos:    videos.NewService(client),
		cache:     videos.NewStore(userSvc, videos.WithStoreLogger(logger)),
		comments:  comments.NewService(client),
		tweets:    tweetSvc,
		engage:    engage.NewService(client),
		dashboard: dashboard.NewService(client, tweetSvc),
		formatter: display.NewTerminalFormatter(),
		notifier:  display.NewStderrNotifier(cmd.ErrOrStderr()),
	}
}

func newHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}

func (a *app) context() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), a.cfg.HTTPTimeout)
}

// newRootCmd creates the root command for the tubeview CLI.
func newRootCmd() *cobra.Command {
	info, _ := debug.ReadBuildInfo()

	rootCmd := &cobra.Command{
		Use:     "tubeview",
		Short:   "Browse and publish on a video sharing platform",
		Long:    "Tubeview is a terminal client for a video sharing platform: browse the feed, watch, comment, tweet, and manage your channel.",
		Version: resolveVersion(version, info),
	}

	rootCmd.SetVersionTemplate("tubeview version {{.Version}}\n")

	rootCmd.AddCommand(newLoginCmd())
	rootCmd.AddCommand(newSignupCmd())
	rootCmd.AddCommand(newLogoutCmd())
	rootCmd.AddCommand(newWhoamiCmd())
	rootCmd.AddCommand(newAccountCmd())
	rootCmd.AddCommand(newFeedCmd())
	rootCmd.AddCommand(newSearchCmd())
	rootCmd.AddCommand(newWatchCmd())
	rootCmd.AddCommand(newCommentCmd())
	rootCmd.AddCommand(newTweetCmd())
	rootCmd.AddCommand(newLikeCmd())
	rootCmd.AddCommand(newSubscribeCmd())
	rootCmd.AddCommand(newChannelCmd())
	rootCmd.AddCommand(newDashboardCmd())
	rootCmd.AddCommand(newUploadCmd())
	rootCmd.AddCommand(newPublishCmd())
	rootCmd.AddCommand(newHealthCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

// newLoginCmd creates the login subcommand.
func newLoginCmd() *cobra.Command {
	var password string

	cmd := &cobra.Command{
		Use:   "login <username-or-email>",
		Short: "Log in and store the session tokens",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				return fmt.Errorf("missing password: pass it with --password")
			}
			a := newApp(cmd)
			ctx, cancel := a.context()
			defer cancel()

			session, err := a.users.Login(ctx, args[0], password)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s\n", session.User.Username)
			return nil
		},
	}

	cmd.Flags().StringVarP(&password, "password", "p", "", "Account password")

	return cmd
}

// newSignupCmd creates the signup subcommand.
func newSignupCmd() *cobra.Command {
	var input users.RegisterInput

	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create a new account",
		RunE: func(cmd *cobra.Command, args []string) error {
			if input.Username == "" || input.Email == "" || input.Password == "" || input.AvatarPath == "" {
				return fmt.Errorf("missing required flags: --username, --email, --password, and --avatar are required")
			}
			a := newApp(cmd)
			ctx, cancel := a.context()
			defer cancel()

			user, err := a.users.Register(ctx, input)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Account created for %s. Run 'tubeview login %s' to sign in.\n", user.Username, user.Username)
			return nil
		},
	}

	cmd.Flags().StringVar(&input.Username, "username", "", "Unique username")
	cmd.Flags().StringVar(&input.Email, "email", "", "Email address")
	cmd.Flags().StringVar(&input.FullName, "name", "", "Full display name")
	cmd.Flags().StringVar(&input.Password, "password", "", "Account password")
	cmd.Flags().StringVar(&input.AvatarPath, "avatar", "", "Path to an avatar image (required)")
	cmd.Flags().StringVar(&input.CoverPath, "cover", "", "Path to a cover image (optional)")

	return cmd
}

// newLogoutCmd creates the logout subcommand.
func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Discard the stored session tokens",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := newApp(cmd)
			if err := a.users.Logout(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
			return nil
		},
	}
}

// newWhoamiCmd creates the whoami subcommand.
func newWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged-in account",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := newApp(cmd)
			identity, err := a.creds.Inspect()
			if err != nil {
				return fmt.Errorf("not logged in (run 'tubeview login')")
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s <%s>\n", identity.Username, identity.Email)
			if identity.Expired(time.Now()) {
				fmt.Fprintln(cmd.OutOrStdout(), "Access token expired; it will refresh on the next request.")
			}
			return nil
		},
	}
}

// newAccountCmd creates the account subcommand group.
func newAccountCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Manage your account",
	}

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Show your account details",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := newApp(cmd)
			ctx, cancel := a.context()
			defer cancel()

			user, err := a.users.CurrentUser(ctx)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s (@%s)\n", user.FullName, user.Username)
			fmt.Fprintf(out, "  %s\n", user.Email)
			if user.AvatarURL != "" {
				fmt.Fprintf(out, "  avatar: %s\n", secureurl.Normalize(user.AvatarURL))
			}
			if user.CoverImageURL != "" {
				fmt.Fprintf(out, "  cover:  %s\n", secureurl.Normalize(user.CoverImageURL))
			}
			return nil
		},
	}

	var fullName, email string
	updateCmd := &cobra.Command{
		Use:   "update",
		Short: "Update your name and email",
		RunE: func(cmd *cobra.Command, args []string) error {
			if fullName == "" || email == "" {
				return fmt.Errorf("missing required flags: --name and --email are required")
			}
			a := newApp(cmd)
			ctx, cancel := a.context()
			defer cancel()

			user, err := a.users.UpdateAccount(ctx, fullName, email)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Account updated: %s <%s>\n", user.FullName, user.Email)
			return nil
		},
	}
	updateCmd.Flags().StringVar(&fullName, "name", "", "New full name")
	updateCmd.Flags().StringVar(&email, "email", "", "New email address")

	var oldPassword, newPassword string
	passwordCmd := &cobra.Command{
		Use:   "change-password",
		Short: "Change your password",
		RunE: func(cmd *cobra.Command, args []string) error {
			if oldPassword == "" || newPassword == "" {
				return fmt.Errorf("missing required flags: --old and --new are required")
			}
			a := newApp(cmd)
			ctx, cancel := a.context()
			defer cancel()

			if err := a.users.ChangePassword(ctx, oldPassword, newPassword); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Password changed.")
			return nil
		},
	}
	passwordCmd.Flags().StringVar(&oldPassword, "old", "", "Current password")
	passwordCmd.Flags().StringVar(&newPassword, "new", "", "New password")

	avatarCmd := &cobra.Command{
		Use:   "set-avatar <imagePath>",
		Short: "Replace your avatar image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := newApp(cmd)
			ctx, cancel := a.context()
			defer cancel()

			if _, err := a.users.UpdateAvatar(ctx, args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Avatar updated.")
			return nil
		},
	}

	coverCmd := &cobra.Command{
		Use:   "set-cover <imagePath>",
		Short: "Replace your channel cover image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := newApp(cmd)
			ctx, cancel := a.context()
			defer cancel()

			if _, err := a.users.UpdateCoverImage(ctx, args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Cover image updated.")
			return nil
		},
	}

	cmd.AddCommand(showCmd, updateCmd, passwordCmd, avatarCmd, coverCmd)
	return cmd
}

// newFeedCmd creates the feed subcommand.
func newFeedCmd() *cobra.Command {
	var page, limit int
	var more bool

	cmd := &cobra.Command{
		Use:   "feed",
		Short: "Display the video feed",
		Long:  "Display the paginated video feed. Pages are cached for five minutes; --more appends the next page to the current one.",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := newApp(cmd)
			ctx, cancel := a.context()
			defer cancel()

			pages := []int{page}
			if more {
				pages = append(pages, page+1)
			}

			var merged [][]videos.Video
			for _, p := range pages {
				result, err := a.loadFeedPage(ctx, p, limit)
				if err != nil {
					return err
				}
				merged = append(merged, result.Videos)
			}

			fmt.Fprint(cmd.OutOrStdout(), a.formatter.FormatVideoList(videos.MergePages(merged...)))
			a.cache.Wait()
			return nil
		},
	}

	cmd.Flags().IntVar(&page, "page", 1, "Page number")
	cmd.Flags().IntVarP(&limit, "limit", "l", 0, "Videos per page (server default when 0)")
	cmd.Flags().BoolVar(&more, "more", false, "Also load the page after --page")

	return cmd
}

// loadFeedPage serves a feed page from the cache when fresh, otherwise
// fetches and stores it.
func (a *app) loadFeedPage(ctx context.Context, page, limit int) (videos.PageResult, error) {
	if cached, ok := a.cache.GetPage(page); ok {
		return cached, nil
	}

	result, err := a.videos.List(ctx, videos.ListOptions{Page: page, Limit: limit})
	if err != nil {
		return videos.PageResult{}, err
	}
	a.cache.SetPage(ctx, page, result)
	return videos.PageResult{Videos: result.Videos, TotalPages: result.TotalPages}, nil
}

// newSearchCmd creates the search subcommand.
func newSearchCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search videos by title",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := newApp(cmd)
			ctx, cancel := a.context()
			defer cancel()

			result, err := a.videos.List(ctx, videos.ListOptions{Query: args[0], Limit: limit})
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), a.formatter.FormatVideoList(result.Videos))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "l", 0, "Maximum results (server default when 0)")

	return cmd
}

// newWatchCmd creates the watch subcommand.
func newWatchCmd() *cobra.Command {
	var open bool

	cmd := &cobra.Command{
		Use:   "watch <videoId>",
		Short: "Show a video with its comments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := newApp(cmd)
			ctx, cancel := a.context()
			defer cancel()

			video, err := a.videos.Get(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), a.formatter.FormatVideo(video))

			ctrl := comments.NewController(a.comments, video.ID)
			if err := ctrl.LoadPage(ctx, 1); err != nil {
				a.notifier.Error(fmt.Sprintf("comments unavailable: %v", err))
			} else {
				fmt.Fprintln(cmd.OutOrStdout())
				for _, c := range ctrl.Comments() {
					fmt.Fprint(cmd.OutOrStdout(), a.formatter.FormatComment(c))
				}
				if ctrl.HasMore() {
					fmt.Fprintln(cmd.OutOrStdout(), "(more comments: tubeview comment list "+video.ID+" --page 2)")
				}
			}

			if open {
				playbackURL := secureurl.NormalizeEmbed(video.VideoFileURL)
				if err := browser.Open(playbackURL); err != nil {
					fmt.Fprintf(cmd.OutOrStdout(), "Could not open browser. Please visit:\n%s\n", playbackURL)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&open, "open", false, "Open the video in the default browser")

	return cmd
}

// newCommentCmd creates the comment subcommand group.
func newCommentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "comment",
		Short: "Manage comments on a video",
	}

	var page int
	listCmd := &cobra.Command{
		Use:   "list <videoId>",
		Short: "List a video's comments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := newApp(cmd)
			ctx, cancel := a.context()
			defer cancel()

			ctrl := comments.NewController(a.comments, args[0])
			if err := ctrl.LoadPage(ctx, page); err != nil {
				return err
			}
			for _, c := range ctrl.Comments() {
				fmt.Fprint(cmd.OutOrStdout(), a.formatter.FormatComment(c))
			}
			if len(ctrl.Comments()) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No comments yet.")
			}
			return nil
		},
	}
	listCmd.Flags().IntVar(&page, "page", 1, "Page number")

	addCmd := &cobra.Command{
		Use:   "add <videoId> <content>",
		Short: "Comment on a video",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := newApp(cmd)
			ctx, cancel := a.context()
			defer cancel()

			comment, err := a.comments.Add(ctx, args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Comment posted (%s)\n", comment.ID)
			return nil
		},
	}

	editCmd := &cobra.Command{
		Use:   "edit <commentId> <content>",
		Short: "Edit one of your comments",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := newApp(cmd)
			ctx, cancel := a.context()
			defer cancel()

			if _, err := a.comments.Edit(ctx, args[0], args[1]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Comment updated.")
			return nil
		},
	}

	rmCmd := &cobra.Command{
		Use:   "rm <commentId>",
		Short: "Delete one of your comments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := newApp(cmd)
			ctx, cancel := a.context()
			defer cancel()

			if err := a.comments.Delete(ctx, args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Comment deleted.")
			return nil
		},
	}

	cmd.AddCommand(listCmd, addCmd, editCmd, rmCmd)
	return cmd
}

// newTweetCmd creates the tweet subcommand group.
func newTweetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tweet",
		Short: "Post and browse tweets",
	}

	var page int
	var user string
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List the tweet feed",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := newApp(cmd)
			ctx, cancel := a.context()
			defer cancel()

			ctrl := tweets.NewController(a.tweets, user)
			if err := ctrl.LoadPage(ctx, page); err != nil {
				return err
			}
			for _, tw := range ctrl.Tweets() {
				fmt.Fprint(cmd.OutOrStdout(), a.formatter.FormatTweet(tw))
			}
			if len(ctrl.Tweets()) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No tweets to display.")
			}
			return nil
		},
	}
	listCmd.Flags().IntVar(&page, "page", 1, "Page number")
	listCmd.Flags().StringVarP(&user, "user", "u", "", "Only this user's tweets")

	postCmd := &cobra.Command{
		Use:   "post <content>",
		Short: "Post a tweet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := newApp(cmd)
			ctx, cancel := a.context()
			defer cancel()

			tweet, err := a.tweets.Create(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Tweet posted (%s)\n", tweet.ID)
			return nil
		},
	}

	editCmd := &cobra.Command{
		Use:   "edit <tweetId> <content>",
		Short: "Edit one of your tweets",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := newApp(cmd)
			ctx, cancel := a.context()
			defer cancel()

			if _, err := a.tweets.Edit(ctx, args[0], args[1]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Tweet updated.")
			return nil
		},
	}

	rmCmd := &cobra.Command{
		Use:   "rm <tweetId>",
		Short: "Delete one of your tweets",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := newApp(cmd)
			ctx, cancel := a.context()
			defer cancel()

			if err := a.tweets.Delete(ctx, args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Tweet deleted.")
			return nil
		},
	}

	cmd.AddCommand(listCmd, postCmd, editCmd, rmCmd)
	return cmd
}

// outcomeNotifier records a toggle's error message so one-shot commands can
// turn it into a non-zero exit instead of printing it as a toast.
type outcomeNotifier struct {
	engage.NopNotifier
	failure string
}

func (n *outcomeNotifier) Error(message string) {
	n.failure = message
}

// parseLikeTarget maps the CLI spelling to a like target.
func parseLikeTarget(raw string) (engage.LikeTarget, error) {
	switch raw {
	case "v", "video":
		return engage.LikeVideo, nil
	case "c", "comment":
		return engage.LikeComment, nil
	case "t", "tweet":
		return engage.LikeTweet, nil
	}
	return "", fmt.Errorf("invalid target %q: must be 'video', 'comment', or 'tweet'", raw)
}

// newLikeCmd creates the like subcommand.
func newLikeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "like <video|comment|tweet> <id>",
		Short: "Toggle your like on a video, comment, or tweet",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := parseLikeTarget(args[0])
			if err != nil {
				return err
			}
			a := newApp(cmd)
			ctx, cancel := a.context()
			defer cancel()

			initial, err := a.engage.LikeStatus(ctx, target, args[1])
			if err != nil {
				return err
			}

			notifier := &outcomeNotifier{}
			toggler := engage.NewLikeToggler(a.engage, a.creds, notifier, target, args[1], initial)
			toggler.Toggle(ctx)

			if notifier.failure != "" {
				return fmt.Errorf("%s", notifier.failure)
			}
			state := toggler.State()
			if state.On {
				fmt.Fprintf(cmd.OutOrStdout(), "Liked (%d likes)\n", state.Count)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Like removed (%d likes)\n", state.Count)
			}
			return nil
		},
	}
}

// newSubscribeCmd creates the subscribe subcommand.
func newSubscribeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "subscribe <channelId>",
		Short: "Toggle your subscription to a channel",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := newApp(cmd)
			ctx, cancel := a.context()
			defer cancel()

			notifier := &outcomeNotifier{}
			toggler := engage.NewSubscribeToggler(a.engage, a.creds, notifier, args[0], engage.ToggleState{})
			toggler.Toggle(ctx)

			if notifier.failure != "" {
				return fmt.Errorf("%s", notifier.failure)
			}
			state := toggler.State()
			if state.On {
				fmt.Fprintf(cmd.OutOrStdout(), "Subscribed (%d subscribers)\n", state.Count)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Unsubscribed (%d subscribers)\n", state.Count)
			}
			return nil
		},
	}
}

// newChannelCmd creates the channel subcommand. A bare username shows the
// profile; subcommands list subscription relations.
func newChannelCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "channel <username>",
		Short: "Show a channel profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := newApp(cmd)
			ctx, cancel := a.context()
			defer cancel()

			channel, err := a.users.Channel(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), a.formatter.FormatChannel(channel))
			return nil
		},
	}

	subsCmd := &cobra.Command{
		Use:   "subscriptions <channelId>",
		Short: "List the channels a channel subscribes to",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := newApp(cmd)
			ctx, cancel := a.context()
			defer cancel()

			channels, err := a.engage.SubscribedChannels(ctx, args[0])
			if err != nil {
				return err
			}
			printChannels(cmd, a, channels)
			return nil
		},
	}

	fansCmd := &cobra.Command{
		Use:   "subscribers <channelId>",
		Short: "List a channel's subscribers",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := newApp(cmd)
			ctx, cancel := a.context()
			defer cancel()

			channels, err := a.engage.ChannelSubscribers(ctx, args[0])
			if err != nil {
				return err
			}
			printChannels(cmd, a, channels)
			return nil
		},
	}

	cmd.AddCommand(subsCmd, fansCmd)
	return cmd
}

func printChannels(cmd *cobra.Command, a *app, channels []users.Channel) {
	if len(channels) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No channels to display.")
		return
	}
	for _, channel := range channels {
		fmt.Fprint(cmd.OutOrStdout(), a.formatter.FormatChannel(channel))
	}
}

// newDashboardCmd creates the dashboard subcommand.
func newDashboardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show your channel's stats, videos, and tweets",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := newApp(cmd)
			identity, err := a.creds.Inspect()
			if err != nil {
				return fmt.Errorf("not logged in (run 'tubeview login')")
			}
			ctx, cancel := a.context()
			defer cancel()

			overview, err := a.dashboard.Load(ctx, identity.UserID)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprint(out, a.formatter.FormatStats(overview.Stats))
			fmt.Fprintln(out)
			fmt.Fprint(out, a.formatter.FormatVideoList(overview.Videos))
			for _, tw := range overview.Tweets {
				fmt.Fprint(out, a.formatter.FormatTweet(tw))
			}
			return nil
		},
	}
}

// newUploadCmd creates the upload subcommand.
func newUploadCmd() *cobra.Command {
	var input videos.UploadInput

	cmd := &cobra.Command{
		Use:   "upload",
		Short: "Upload a new video",
		RunE: func(cmd *cobra.Command, args []string) error {
			if input.Title == "" || input.VideoPath == "" || input.ThumbnailPath == "" {
				return fmt.Errorf("missing required flags: --title, --video, and --thumbnail are required")
			}
			a := newApp(cmd)
			ctx, cancel := a.context()
			defer cancel()

			video, err := a.videos.Upload(ctx, input)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Uploaded %q (%s)\n", video.Title, video.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&input.Title, "title", "", "Video title")
	cmd.Flags().StringVar(&input.Description, "description", "", "Video description")
	cmd.Flags().StringVar(&input.VideoPath, "video", "", "Path to the video file")
	cmd.Flags().StringVar(&input.ThumbnailPath, "thumbnail", "", "Path to the thumbnail image")

	return cmd
}

// newPublishCmd creates the publish subcommand.
func newPublishCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "publish <videoId>",
		Short: "Toggle a video between published and hidden",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := newApp(cmd)
			ctx, cancel := a.context()
			defer cancel()

			video, err := a.videos.TogglePublish(ctx, args[0])
			if err != nil {
				return err
			}
			if video.IsPublished {
				fmt.Fprintf(cmd.OutOrStdout(), "%q is now published.\n", video.Title)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "%q is now hidden.\n", video.Title)
			}
			return nil
		},
	}
}

// newHealthCmd creates the health subcommand.
func newHealthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check whether the backend is reachable",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := newApp(cmd)
			ctx, cancel := a.context()
			defer cancel()

			if err := a.users.Health(ctx); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Backend is healthy.")
			return nil
		},
	}
}

// newConfigCmd creates the config subcommand.
func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show the active configuration",
		Long:  "View the resolved tubeview configuration (API URL, config directory, timeouts).",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			fmt.Fprintf(cmd.OutOrStdout(), "API URL:          %s\n", cfg.APIBaseURL)
			fmt.Fprintf(cmd.OutOrStdout(), "Config directory: %s\n", cfg.ConfigDir)
			fmt.Fprintf(cmd.OutOrStdout(), "HTTP timeout:     %s\n", cfg.HTTPTimeout)
			return nil
		},
	}
}
