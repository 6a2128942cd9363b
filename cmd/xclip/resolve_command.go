package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/iconidentify/xclip/internal/domain"
	"github.com/iconidentify/xclip/pkg/twitter"
)

// resolveFlags are the per-request options shared by resolve and batch.
type resolveFlags struct {
	quality     string
	toGif       bool
	alwaysProxy bool
	index       int
}

func (f *resolveFlags) register(cmd *cobra.Command, withIndex bool) {
	cmd.Flags().StringVarP(&f.quality, "quality", "q", "", `Video quality: "best", "worst" or a bitrate/resolution hint`)
	cmd.Flags().BoolVar(&f.toGif, "gif", false, "Plan animated GIFs for conversion to .gif")
	cmd.Flags().BoolVar(&f.alwaysProxy, "proxy", false, "Route every picker item through the proxy")
	if withIndex {
		cmd.Flags().IntVar(&f.index, "index", 0, "Pick a single media item (1-based)")
	}
}

func (f *resolveFlags) options() (domain.ResolveOptions, error) {
	opts := domain.ResolveOptions{
		Quality:     f.quality,
		ToGif:       f.toGif,
		AlwaysProxy: f.alwaysProxy,
	}
	if f.index < 0 {
		return opts, fmt.Errorf("--index must be 1 or greater")
	}
	if f.index > 0 {
		idx := f.index - 1
		opts.MediaIndex = &idx
	}
	return opts, nil
}

func newResolveCommand(ctx *commandContext) *cobra.Command {
	var flags resolveFlags

	cmd := &cobra.Command{
		Use:   "resolve <url>",
		Short: "Resolve a post URL into a download plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := flags.options()
			if err != nil {
				return err
			}
			svc, err := ctx.ensureResolver(cmd)
			if err != nil {
				return err
			}
			plan, err := svc.ResolveMedia(cmd.Context(), args[0], opts)
			if err != nil {
				return ctx.describeError(cmd, err)
			}
			return writeJSON(cmd, domain.NewPlanView(plan))
		},
	}
	flags.register(cmd, true)
	return cmd
}

func newInfoCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "info <url>",
		Short: "List the media attached to a post",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.ensureResolver(cmd)
			if err != nil {
				return err
			}
			postID, media, err := svc.FetchPostMedia(cmd.Context(), args[0])
			if err != nil {
				return ctx.describeError(cmd, err)
			}
			if asJSON {
				return writeJSON(cmd, domain.NewMediaInfo(postID, media))
			}

			rows := make([][]string, 0, len(media))
			for i, m := range media {
				rows = append(rows, []string{
					strconv.Itoa(i + 1),
					string(m.Type),
					dimensions(m),
					formatDuration(m.DurationMillis),
					strconv.Itoa(len(m.Variants)),
				})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Post %s\n", postID)
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"#", "Type", "Size", "Duration", "Variants"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignRight},
			))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the media summary as JSON")
	return cmd
}

func newProbeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "probe <post-id|url>",
		Short: "Check whether a post is visible to the embed endpoint",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			postID := args[0]
			if strings.Contains(postID, "/") {
				ref := twitter.ParsePostURL(postID)
				if !ref.Valid {
					return ctx.describeError(cmd, ref.Err)
				}
				postID = ref.PostID
			}

			svc, err := ctx.ensureResolver(cmd)
			if err != nil {
				return err
			}
			err = svc.Probe(cmd.Context(), postID)
			switch {
			case err == nil:
				fmt.Fprintf(cmd.OutOrStdout(), "%s: available\n", postID)
				return nil
			case errors.Is(err, domain.ErrContentUnavailable):
				fmt.Fprintf(cmd.OutOrStdout(), "%s: unavailable\n", postID)
				return errUnavailable
			default:
				return ctx.describeError(cmd, err)
			}
		},
	}
}

var errUnavailable = errors.New("post is not available")

func dimensions(m domain.MediaDescriptor) string {
	if m.Width == 0 || m.Height == 0 {
		return "-"
	}
	return fmt.Sprintf("%dx%d", m.Width, m.Height)
}

func formatDuration(ms int64) string {
	if ms <= 0 {
		return "-"
	}
	return (time.Duration(ms) * time.Millisecond).Round(100 * time.Millisecond).String()
}
