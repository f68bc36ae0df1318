package cmd

import (
	"context"
	"fmt"

	"github.com/LewisSchmidtke/Formula1-DataEngineering/internal/render"
	"github.com/spf13/cobra"
)

func newQualifyingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "qualifying <session-key>",
		Short: "Reconstruct the Q1/Q2/Q3 classification of a qualifying session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sessionKey, err := parseKey(args[0], "session key")
			if err != nil {
				return err
			}
			return runQualifying(sessionKey)
		},
	}
}

func runQualifying(sessionKey int) error {
	st, err := buildStack()
	if err != nil {
		return err
	}

	assembled, err := st.store.Get(context.Background(), sessionKey)
	if err != nil {
		return err
	}
	warnIncomplete(st.logger, assembled)

	report, err := st.qualifying.Segment(assembled)
	if err != nil {
		return err
	}

	fmt.Println(render.QualifyingTable(report))
	return nil
}
