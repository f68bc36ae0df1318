package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/LewisSchmidtke/Formula1-DataEngineering/internal/render"
	"github.com/spf13/cobra"
)

var calendarYear int

func newCalendarCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "calendar",
		Short: "List the race weekends of a season",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCalendar()
		},
	}
	cmd.Flags().IntVar(&calendarYear, "year", time.Now().Year(), "championship year")
	return cmd
}

func runCalendar() error {
	st, err := buildStack()
	if err != nil {
		return err
	}

	meetings, err := st.schedule.Meetings(context.Background(), calendarYear)
	if err != nil {
		return err
	}

	fmt.Println(render.CalendarTable(meetings))
	return nil
}
