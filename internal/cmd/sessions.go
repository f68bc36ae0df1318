package cmd

import (
	"context"
	"fmt"

	"github.com/LewisSchmidtke/Formula1-DataEngineering/internal/render"
	"github.com/spf13/cobra"
)

func newSessionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sessions <meeting-key>",
		Short: "List the sessions of a race weekend",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			meetingKey, err := parseKey(args[0], "meeting key")
			if err != nil {
				return err
			}
			return runSessions(meetingKey)
		},
	}
}

func runSessions(meetingKey int) error {
	st, err := buildStack()
	if err != nil {
		return err
	}

	listings, err := st.schedule.Sessions(context.Background(), meetingKey)
	if err != nil {
		return err
	}

	fmt.Println(render.SessionsTable(listings))
	return nil
}
