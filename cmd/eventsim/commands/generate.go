package commands

import (
	"encoding/json"
	"os"
	"path/filepath"

	"eventsim/internal/generator"
	"eventsim/internal/sink"

	"github.com/pkg/browser"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	format  string
	outDir  string
	openDir bool
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a run and write events, users and funnels to disk",
	Run: func(cmd *cobra.Command, args []string) {
		r, s := setup()

		f := format
		if f == "" {
			f = cfg.OutputFormat
		}
		outFormat, err := sink.ParseFormat(f)
		if err != nil {
			log.Fatal().Err(err).Msg("Invalid output format")
		}

		dir := outDir
		if dir == "" {
			dir = cfg.OutputDir
		}

		res, err := generator.Generate(cmd.Context(), r, clock(), s, generator.Options{
			Name:      name,
			NumUsers:  numUsers,
			NumEvents: numEvents,
			NumDays:   numDays,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("Generation failed")
		}

		paths, err := sink.Write(cmd.Context(), dir, res.Name, outFormat, sink.Output{
			Events:  res.Events,
			Users:   res.UserRecords(),
			Funnels: res.Funnels,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to write output")
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(map[string]any{
			"seed":    r.Seed(),
			"files":   paths,
			"summary": res.Summary,
		}); err != nil {
			log.Fatal().Err(err).Msg("Failed to print summary")
		}

		if openDir {
			abs, err := filepath.Abs(dir)
			if err == nil {
				err = browser.OpenFile(abs)
			}
			if err != nil {
				log.Warn().Err(err).Str("dir", dir).Msg("Failed to open output folder")
			}
		}
	},
}

func init() {
	generateCmd.Flags().StringVarP(&format, "format", "f", "", "output format: jsonl, csv or sqlite (default from OUTPUT_FORMAT)")
	generateCmd.Flags().StringVarP(&outDir, "out", "o", "", "output directory (default from OUTPUT_DIR)")
	generateCmd.Flags().BoolVar(&openDir, "open", false, "open the output folder when done")
}
