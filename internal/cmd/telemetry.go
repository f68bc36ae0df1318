package cmd

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/LewisSchmidtke/Formula1-DataEngineering/internal/domain"
	"github.com/LewisSchmidtke/Formula1-DataEngineering/internal/render"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

var (
	telemetryLap string
	telemetryOut string
)

func newTelemetryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "telemetry <session-key> <driver-number>",
		Short: "Extract car telemetry for one lap of a driver",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			sessionKey, err := parseKey(args[0], "session key")
			if err != nil {
				return err
			}
			driverNumber, err := parseKey(args[1], "driver number")
			if err != nil {
				return err
			}
			return runTelemetry(sessionKey, driverNumber)
		},
	}
	cmd.Flags().StringVar(&telemetryLap, "lap", "fastest", `lap number or "fastest"`)
	cmd.Flags().StringVar(&telemetryOut, "out", "", "write a speed/throttle/brake chart to this PNG path")
	return cmd
}

func runTelemetry(sessionKey, driverNumber int) error {
	st, err := buildStack()
	if err != nil {
		return err
	}
	ctx := context.Background()

	assembled, err := st.store.Get(ctx, sessionKey)
	if err != nil {
		return err
	}

	entry, ok := assembled.DriverByNumber(driverNumber)
	if !ok {
		return fmt.Errorf("driver %d is not in session %d", driverNumber, sessionKey)
	}

	var lapNumber int
	if telemetryLap == "" || telemetryLap == "fastest" {
		fastest, ok := assembled.FastestLapOf(driverNumber)
		if !ok {
			return fmt.Errorf("driver %d has no timed lap in session %d", driverNumber, sessionKey)
		}
		lapNumber = fastest.LapNumber
	} else {
		lapNumber, err = strconv.Atoi(telemetryLap)
		if err != nil {
			return fmt.Errorf(`lap must be a lap number or "fastest", got %q`, telemetryLap)
		}
	}

	samples, err := st.telemetry.LapTelemetry(ctx, assembled, driverNumber, lapNumber)
	if err != nil {
		return err
	}
	if len(samples) == 0 {
		return fmt.Errorf("no telemetry for driver %d lap %d", driverNumber, lapNumber)
	}

	top := lo.MaxBy(samples, func(a, b domain.TelemetrySample) bool { return a.Speed > b.Speed })
	fmt.Printf("%s lap %d: %d samples over %.1fs, top speed %d km/h\n",
		entry.Driver.Acronym, lapNumber, len(samples),
		samples[len(samples)-1].SecondsFromLapStart, top.Speed)

	if telemetryOut == "" {
		return nil
	}

	data, err := render.TelemetryChart(entry.Driver.Acronym, lapNumber, samples)
	if err != nil {
		return err
	}
	if err := os.WriteFile(telemetryOut, data, 0o644); err != nil {
		return fmt.Errorf("failed to write chart: %w", err)
	}

	st.logger.Info().Str("path", telemetryOut).Msg("telemetry chart written")
	return nil
}
