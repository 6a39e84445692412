package commands

import (
	"encoding/json"
	"os"

	"eventsim/internal/funnel"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var funnelsCmd = &cobra.Command{
	Use:   "funnels",
	Short: "Print the funnels a spec runs with, inferring them when none are declared",
	Run: func(cmd *cobra.Command, args []string) {
		r, s := setup()

		funnels := s.Funnels
		inferred := len(funnels) == 0
		if inferred {
			funnels = funnel.InferFunnels(r, s.Events)
		}

		var pool []*funnel.Funnel
		share := make([]float64, len(funnels))
		for i := range funnels {
			if !funnels[i].IsFirstFunnel {
				pool = funnel.WeighFunnels(pool, &funnels[i])
			}
		}
		for i := range funnels {
			for _, p := range pool {
				if p == &funnels[i] {
					share[i]++
				}
			}
			if len(pool) > 0 {
				share[i] /= float64(len(pool))
			}
		}

		type entry struct {
			funnel.Funnel
			PickShare float64 `json:"pickShare"`
		}
		out := make([]entry, len(funnels))
		for i, f := range funnels {
			out[i] = entry{Funnel: f, PickShare: share[i]}
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(map[string]any{
			"name":     s.Name,
			"inferred": inferred,
			"poolSize": len(pool),
			"funnels":  out,
		}); err != nil {
			log.Fatal().Err(err).Msg("Failed to print funnels")
		}
	},
}
