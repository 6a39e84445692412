package commands

import (
	"eventsim/internal/config"
	"eventsim/internal/logging"
	"eventsim/internal/rng"
	"eventsim/internal/scenario"
	"eventsim/internal/temporal"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	// Version, Commit, and BuildDate are set at build time via ldflags.
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"

	verbose bool
	cfg     *config.AppConfig

	// Generation flags shared by generate, stream and funnels.
	specPath  string
	seed      string
	name      string
	numUsers  int
	numEvents int
	numDays   int
)

var rootCmd = &cobra.Command{
	Use:   "eventsim",
	Short: "eventsim generates synthetic analytics event streams",
	Long: `A generator of statistically plausible analytics events: users created across a
time window walk weighted funnels with clustered timestamps. Output seeds or
load-tests downstream analytics pipelines.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.Init(verbose)

		var err error
		cfg, err = config.Load()
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to load configuration")
		}

		log.Debug().
			Str("version", Version).
			Str("commit", Commit).
			Str("buildDate", BuildDate).
			Msg("eventsim starting")
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	for _, cmd := range []*cobra.Command{generateCmd, streamCmd, funnelsCmd} {
		cmd.Flags().StringVarP(&specPath, "spec", "s", "", "path to a YAML generation spec (default: built-in catalogue)")
		cmd.Flags().StringVar(&seed, "seed", "", "seed for reproducible output (overridden by SEED)")
		rootCmd.AddCommand(cmd)
	}
	for _, cmd := range []*cobra.Command{generateCmd, streamCmd} {
		cmd.Flags().StringVarP(&name, "name", "n", "", "simulation name used for output files")
		cmd.Flags().IntVarP(&numUsers, "users", "u", 0, "number of users")
		cmd.Flags().IntVarP(&numEvents, "events", "e", 0, "approximate number of events")
		cmd.Flags().IntVarP(&numDays, "days", "d", 0, "days of history to cover")
	}
}

// setup seeds the process generator and resolves the scenario: the spec file,
// or the built-in catalogue when none is given. Config volumes are applied here;
// flags are applied by the generator.
func setup() (*rng.RNG, *scenario.Scenario) {
	// Seed precedence: --seed, then config, then the spec file. SEED in the
	// environment still wins inside rng.Init.
	if seed == "" {
		seed = cfg.Seed
	}
	if seed == "" && specPath != "" {
		seed = scenario.ReadSeed(specPath)
	}
	rng.Init(seed)
	r := rng.Get()

	var s *scenario.Scenario
	if specPath == "" {
		s = scenario.Default()
	} else {
		var err error
		s, err = scenario.Load(r, specPath)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to load generation spec")
		}
	}

	if cfg.SimulationName != "" {
		s.Name = cfg.SimulationName
	}
	if cfg.NumUsers > 0 {
		s.NumUsers = cfg.NumUsers
	}
	if cfg.NumEvents > 0 {
		s.NumEvents = cfg.NumEvents
	}
	if cfg.NumDays > 0 {
		s.NumDays = cfg.NumDays
	}
	return r, s
}

func clock() temporal.Clock {
	return temporal.Clock{Now: cfg.Now}
}
