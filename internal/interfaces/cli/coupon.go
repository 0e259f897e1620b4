package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/brailleforge/brailleforge/internal/application/coupon"
	"github.com/brailleforge/brailleforge/internal/infrastructure/export"
	"github.com/brailleforge/brailleforge/internal/infrastructure/monitoring/logging"
)

// NewCouponCmd creates the "coupon" command. The calibration coupon is a
// small tile carrying a row of dot bosses stepped through heights plus one
// counter recess, printed to dial in printer settings before committing to
// full plates.
func NewCouponCmd() *cobra.Command {
	opts := coupon.DefaultOptions()
	var output string

	cmd := &cobra.Command{
		Use:   "coupon",
		Short: "Generate a printer calibration coupon STL",
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx := GetCLIContext(cmd)

			m, err := coupon.Generate(opts)
			if err != nil {
				return err
			}

			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("creating %s: %w", output, err)
			}
			defer f.Close()

			if err := export.EncodeSTL(f, m, "calibration coupon"); err != nil {
				return err
			}

			cliCtx.Logger.Info("coupon written",
				logging.String("file", output),
				logging.Int("triangles", m.Len()),
				logging.Int("steps", opts.Steps))
			fmt.Fprintln(cmd.OutOrStdout(), output)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&output, "output", "o", "coupon.stl", "output file")
	f.IntVar(&opts.Steps, "steps", opts.Steps, "number of height steps")
	f.Float64Var(&opts.HeightMin, "height-min", opts.HeightMin, "first boss height (mm)")
	f.Float64Var(&opts.HeightMax, "height-max", opts.HeightMax, "last boss height (mm)")

	return cmd
}
