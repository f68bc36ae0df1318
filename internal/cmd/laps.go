package cmd

import (
	"context"
	"fmt"

	"github.com/LewisSchmidtke/Formula1-DataEngineering/internal/render"
	"github.com/spf13/cobra"
)

var (
	lapsDriver  int
	lapsFastest bool
)

func newLapsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "laps <session-key>",
		Short: "Show the lap table of a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sessionKey, err := parseKey(args[0], "session key")
			if err != nil {
				return err
			}
			return runLaps(sessionKey)
		},
	}
	cmd.Flags().IntVar(&lapsDriver, "driver", 0, "only show laps of this car number")
	cmd.Flags().BoolVar(&lapsFastest, "fastest", false, "show the fastest lap per driver instead")
	return cmd
}

func runLaps(sessionKey int) error {
	st, err := buildStack()
	if err != nil {
		return err
	}

	assembled, err := st.store.Get(context.Background(), sessionKey)
	if err != nil {
		return err
	}
	warnIncomplete(st.logger, assembled)

	if lapsFastest {
		fmt.Println(render.FastestLapTable(assembled))
		return nil
	}

	laps := assembled.CombinedLaps()
	if lapsDriver != 0 {
		entry, ok := assembled.DriverByNumber(lapsDriver)
		if !ok {
			return fmt.Errorf("driver %d is not in session %d", lapsDriver, sessionKey)
		}
		laps = entry.Laps
	}
	fmt.Println(render.LapTable(laps))
	return nil
}
