package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/LewisSchmidtke/Formula1-DataEngineering/internal/domain"
	"github.com/LewisSchmidtke/Formula1-DataEngineering/internal/render"
	"github.com/spf13/cobra"
)

var chartOut string

func newChartCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chart <session-key>",
		Short: "Render the fastest lap times of a session as a PNG bar chart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sessionKey, err := parseKey(args[0], "session key")
			if err != nil {
				return err
			}
			return runChart(sessionKey)
		},
	}
	cmd.Flags().StringVar(&chartOut, "out", "fastest_laps.png", "output PNG path")
	return cmd
}

func runChart(sessionKey int) error {
	st, err := buildStack()
	if err != nil {
		return err
	}

	assembled, err := st.store.Get(context.Background(), sessionKey)
	if err != nil {
		return err
	}
	warnIncomplete(st.logger, assembled)

	var report *domain.QualifyingReport
	if assembled.Session.SessionType == domain.SessionTypeQualifying {
		segmented, err := st.qualifying.Segment(assembled)
		if err != nil {
			st.logger.Warn().Err(err).Msg("segmentation failed, charting classification order")
		} else {
			report = segmented
		}
	}

	data, err := render.FastestLapChart(assembled, report)
	if err != nil {
		return err
	}
	if err := os.WriteFile(chartOut, data, 0o644); err != nil {
		return fmt.Errorf("failed to write chart: %w", err)
	}

	st.logger.Info().Str("path", chartOut).Int("bytes", len(data)).Msg("chart written")
	return nil
}
