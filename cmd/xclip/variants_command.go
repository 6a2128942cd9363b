package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/iconidentify/xclip/internal/domain"
	"github.com/iconidentify/xclip/pkg/twitter"
)

func newVariantsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "variants <url>",
		Short: "Show every downloadable variant of a post's media",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.ensureResolver(cmd)
			if err != nil {
				return err
			}
			_, media, err := svc.FetchMedia(cmd.Context(), args[0])
			if err != nil {
				return ctx.describeError(cmd, err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"#", "Type", "Bitrate", "Est. Size", "Container", "URL"},
				variantRows(media),
				[]columnAlignment{alignRight, alignLeft, alignRight, alignRight, alignLeft, alignLeft},
			))
			return nil
		},
	}
}

// variantRows lists photos as a single row and videos as one row per
// variant, highest bitrate first.
func variantRows(media []domain.MediaDescriptor) [][]string {
	var rows [][]string
	for i, m := range media {
		n := strconv.Itoa(i + 1)
		if m.Type == domain.MediaTypePhoto {
			rows = append(rows, []string{n, string(m.Type), "-", "-", "image", twitter.PhotoURL(m.URL)})
			continue
		}
		for _, v := range twitter.SortVariantsByBitrate(m.Variants) {
			rows = append(rows, []string{
				n,
				string(m.Type),
				twitter.FormatBitrate(v.Bitrate),
				twitter.EstimateFileSize(v.Bitrate, m.DurationMillis),
				v.ContentType,
				v.URL,
			})
		}
	}
	return rows
}
