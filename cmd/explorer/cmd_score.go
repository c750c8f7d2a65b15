package main

import (
	"fmt"
	"sort"
	"text/tabwriter"

	"property-explorer/internal/scoremap"

	"github.com/spf13/cobra"
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Print where each property of the feed would be placed",
	Long: `score computes placements without opening a window: composite score, anchor
height and ground position for each property, highest score first.`,
	RunE: runScore,
}

func runScore(cmd *cobra.Command, args []string) error {
	feed, err := loadFeed(feedPath)
	if err != nil {
		return err
	}
	weights := weightsFor(feed, cfg.Weights)
	mapper := scoremap.New(cfg.Scene.MaxHeight)
	ground := scoremap.Layout(feed.Properties, cfg.Scene.LayoutRadius)

	type row struct {
		id, name string
		pl       scoremap.Placement
		located  bool
	}
	rows := make([]row, 0, len(feed.Properties))
	for _, p := range feed.Properties {
		pl := mapper.ComputePlacement(p, weights)
		xz := ground[p.ID]
		pl.X, pl.Z = xz.X, xz.Z
		rows = append(rows, row{id: p.ID, name: p.Name, pl: pl, located: p.HasCoordinate()})
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].pl.Score > rows[j].pl.Score })

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tSCORE\tHEIGHT\tX\tZ\tLOCATED")
	for _, r := range rows {
		fmt.Fprintf(w, "%s\t%s\t%.1f\t%.2f\t%.2f\t%.2f\t%v\n", r.id, r.name, r.pl.Score, r.pl.Height, r.pl.X, r.pl.Z, r.located)
	}
	return w.Flush()
}
