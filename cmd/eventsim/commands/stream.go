package commands

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"eventsim/internal/eventlog"
	"eventsim/internal/generator"
	"eventsim/internal/sink"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	streamRate  float64
	streamBurst int
	replayRun   string
	replayDir   string
)

var streamCmd = &cobra.Command{
	Use:   "stream",
	Short: "Stream a generated or saved run to stdout as paced JSON lines",
	Run: func(cmd *cobra.Command, args []string) {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		rate := streamRate
		if !cmd.Flags().Changed("rate") {
			rate = cfg.StreamRate
		}

		var events []eventlog.Event
		if replayRun != "" {
			events = loadRun(replayRun)
		} else {
			r, s := setup()
			res, err := generator.Generate(ctx, r, clock(), s, generator.Options{
				Name:      name,
				NumUsers:  numUsers,
				NumEvents: numEvents,
				NumDays:   numDays,
			})
			if err != nil {
				log.Fatal().Err(err).Msg("Generation failed")
			}
			events = res.Events
		}

		log.Info().Float64("rate", rate).Int("burst", streamBurst).Int("events", len(events)).Msg("Streaming events")
		sent, err := sink.NewStream(os.Stdout, rate, streamBurst).Send(ctx, events)
		if err != nil && !errors.Is(err, context.Canceled) {
			log.Fatal().Err(err).Int("sent", sent).Msg("Stream failed")
		}
		log.Info().Int("sent", sent).Msg("Stream finished")
	},
}

// loadRun reads the JSONL event log of a run written by generate.
func loadRun(run string) []eventlog.Event {
	dir := replayDir
	if dir == "" {
		dir = cfg.OutputDir
	}

	store := eventlog.NewStore()
	if err := store.Load(dir, run); err != nil {
		log.Fatal().Err(err).Str("run", run).Msg("Failed to load saved run")
	}
	if store.Count(run) == 0 {
		log.Fatal().Str("run", run).Str("dir", dir).Msg("No saved events for run")
	}

	log.Info().
		Str("run", run).
		Int("events", store.Count(run)).
		Time("latest", store.Latest(run)).
		Msg("Replaying saved run")
	return store.Events(run)
}

func init() {
	streamCmd.Flags().Float64Var(&streamRate, "rate", 10, "events per second, 0 for unpaced (default from STREAM_RATE)")
	streamCmd.Flags().IntVar(&streamBurst, "burst", 1, "maximum burst size")
	streamCmd.Flags().StringVar(&replayRun, "from", "", "replay the saved JSONL run with this name instead of generating")
	streamCmd.Flags().StringVar(&replayDir, "dir", "", "directory of the saved run (default from OUTPUT_DIR)")
}
