package cli

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bobuk/gtools/internal/google"
)

// YouTubeCommand groups the read-only YouTube Data API commands.
func (a *App) YouTubeCommand() *cobra.Command {
	cmd := group("youtube", "Search YouTube and inspect videos, channels and playlists")

	var (
		kind, searchOrder string
		searchMax         int64
	)
	search := &cobra.Command{
		Use:   "search <query...>",
		Short: "Search videos, channels and playlists",
		Args:  cobra.MinimumNArgs(1),
		RunE: run(func(cmd *cobra.Command, args []string) (any, error) {
			query := strings.Join(args, " ")
			if strings.TrimSpace(query) == "" {
				return nil, errors.New("search query is required")
			}
			g, err := a.youtube(cmd)
			if err != nil {
				return nil, err
			}
			results, err := g.Search(query, kind, searchOrder, searchMax)
			if err != nil {
				return nil, err
			}
			return map[string]any{"results": results}, nil
		}),
	}
	search.Flags().StringVar(&kind, "type", "", "restrict to video, channel or playlist")
	search.Flags().Int64Var(&searchMax, "max", 10, "maximum number of results")
	search.Flags().StringVar(&searchOrder, "order", "relevance", "date, rating, relevance, title or viewCount")

	video := &cobra.Command{
		Use:   "video <video-id>",
		Short: "Show a video with its statistics",
		Args:  cobra.ExactArgs(1),
		RunE: run(func(cmd *cobra.Command, args []string) (any, error) {
			g, err := a.youtube(cmd)
			if err != nil {
				return nil, err
			}
			return g.Video(args[0])
		}),
	}

	var channelQuery google.ChannelQuery
	channel := &cobra.Command{
		Use:   "channel [channel-id]",
		Short: "Show a channel by ID, handle or the signed-in user",
		Example: `  youtube channel UC_x5XG1OV2P6uZZ5FSM9Ttw
  youtube channel --handle=@GoogleDevelopers
  youtube channel --mine`,
		Args: cobra.MaximumNArgs(1),
		RunE: run(func(cmd *cobra.Command, args []string) (any, error) {
			if len(args) == 1 {
				channelQuery.ID = args[0]
			}
			if err := channelQuery.Validate(); err != nil {
				return nil, err
			}
			g, err := a.youtube(cmd)
			if err != nil {
				return nil, err
			}
			return g.Channel(channelQuery)
		}),
	}
	channel.Flags().StringVar(&channelQuery.Handle, "handle", "", "channel handle, e.g. @name")
	channel.Flags().BoolVar(&channelQuery.Mine, "mine", false, "the signed-in user's channel")

	var (
		uploadsQuery google.ChannelQuery
		videosMax    int64
	)
	videos := &cobra.Command{
		Use:   "videos [channel-id]",
		Short: "List a channel's latest uploads",
		Args:  cobra.MaximumNArgs(1),
		RunE: run(func(cmd *cobra.Command, args []string) (any, error) {
			if len(args) == 1 {
				uploadsQuery.ID = args[0]
			}
			if err := uploadsQuery.Validate(); err != nil {
				return nil, err
			}
			g, err := a.youtube(cmd)
			if err != nil {
				return nil, err
			}
			ch, items, err := g.ChannelVideos(uploadsQuery, videosMax)
			if err != nil {
				return nil, err
			}
			return map[string]any{"channelId": ch.ID, "videos": items}, nil
		}),
	}
	videos.Flags().StringVar(&uploadsQuery.Handle, "handle", "", "channel handle, e.g. @name")
	videos.Flags().Int64Var(&videosMax, "max", 10, "maximum number of videos")

	var (
		mine         bool
		playlistsMax int64
	)
	playlists := &cobra.Command{
		Use:   "playlists [channel-id]",
		Short: "List a channel's playlists",
		Args:  cobra.MaximumNArgs(1),
		RunE: run(func(cmd *cobra.Command, args []string) (any, error) {
			var channelID string
			if len(args) == 1 {
				channelID = args[0]
			}
			if (channelID == "") == !mine {
				return nil, errors.New("specify exactly one of a channel ID or --mine")
			}
			g, err := a.youtube(cmd)
			if err != nil {
				return nil, err
			}
			list, err := g.Playlists(channelID, mine, playlistsMax)
			if err != nil {
				return nil, err
			}
			return map[string]any{"playlists": list}, nil
		}),
	}
	playlists.Flags().BoolVar(&mine, "mine", false, "the signed-in user's playlists")
	playlists.Flags().Int64Var(&playlistsMax, "max", 10, "maximum number of playlists")

	var itemsMax int64
	playlist := &cobra.Command{
		Use:   "playlist <playlist-id>",
		Short: "List the items of a playlist",
		Args:  cobra.ExactArgs(1),
		RunE: run(func(cmd *cobra.Command, args []string) (any, error) {
			g, err := a.youtube(cmd)
			if err != nil {
				return nil, err
			}
			items, err := g.PlaylistItems(args[0], itemsMax)
			if err != nil {
				return nil, err
			}
			return map[string]any{"playlistId": args[0], "items": items}, nil
		}),
	}
	playlist.Flags().Int64Var(&itemsMax, "max", 10, "maximum number of items")

	var (
		commentsOrder string
		commentsMax   int64
	)
	comments := &cobra.Command{
		Use:   "comments <video-id>",
		Short: "List top-level comments on a video",
		Args:  cobra.ExactArgs(1),
		RunE: run(func(cmd *cobra.Command, args []string) (any, error) {
			g, err := a.youtube(cmd)
			if err != nil {
				return nil, err
			}
			list, err := g.Comments(args[0], commentsOrder, commentsMax)
			if err != nil {
				return nil, err
			}
			return map[string]any{"videoId": args[0], "comments": list}, nil
		}),
	}
	comments.Flags().Int64Var(&commentsMax, "max", 20, "maximum number of comment threads")
	comments.Flags().StringVar(&commentsOrder, "order", "relevance", "relevance or time")

	cmd.AddCommand(search, video, channel, videos, playlists, playlist, comments)
	return cmd
}

func (a *App) youtube(cmd *cobra.Command) (*google.YouTube, error) {
	opts, err := a.options(cmd.Context())
	if err != nil {
		return nil, err
	}
	return google.NewYouTube(cmd.Context(), opts...)
}
