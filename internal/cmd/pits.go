package cmd

import (
	"context"
	"fmt"

	"github.com/LewisSchmidtke/Formula1-DataEngineering/internal/render"
	"github.com/spf13/cobra"
)

func newPitsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pits <session-key>",
		Short: "Summarize the pit stops of a session per driver",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sessionKey, err := parseKey(args[0], "session key")
			if err != nil {
				return err
			}
			return runPits(sessionKey)
		},
	}
}

func runPits(sessionKey int) error {
	st, err := buildStack()
	if err != nil {
		return err
	}

	summaries, err := st.pits.Summary(context.Background(), sessionKey)
	if err != nil {
		return err
	}

	fmt.Println(render.PitTable(summaries))
	return nil
}
