package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	appplate "github.com/brailleforge/brailleforge/internal/application/plate"
	"github.com/brailleforge/brailleforge/internal/domain/assembly"
	"github.com/brailleforge/brailleforge/internal/infrastructure/csg"
	"github.com/brailleforge/brailleforge/internal/infrastructure/monitoring/logging"
	platetypes "github.com/brailleforge/brailleforge/pkg/types/plate"
)

// GenerateOptions holds flags for the "generate" command.
type GenerateOptions struct {
	Lines   []string
	Sources []string
	Plate   string
	Shape   string
	Output  string
	Params  []string
}

// NewGenerateCmd creates the "generate" command building one plate locally,
// without going through the HTTP API.
func NewGenerateCmd() *cobra.Command {
	opts := &GenerateOptions{}

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a braille plate STL from lines of unicode braille",
		Example: `  brailleforge generate --line ⠃⠗⠇ --source braille -o braille.stl
  brailleforge generate --line ⠁⠃ --plate counter --param dot_height=1.2
  brailleforge generate --line ⠁⠃ --shape cylinder --param cylinder_diameter=40`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.StringArrayVar(&opts.Lines, "line", nil, "one braille line per flag, top to bottom (required)")
	f.StringArrayVar(&opts.Sources, "source", nil, "source text per line, used for the output filename")
	f.StringVar(&opts.Plate, "plate", "positive", "plate type (positive, counter)")
	f.StringVar(&opts.Shape, "shape", "", "substrate shape (card, cylinder); default card")
	f.StringVarP(&opts.Output, "output", "o", "", "output file (default: derived from source text)")
	f.StringArrayVar(&opts.Params, "param", nil, "geometry parameter override, key=value (repeatable)")
	_ = cmd.MarkFlagRequired("line")

	return cmd
}

func runGenerate(cmd *cobra.Command, opts *GenerateOptions) error {
	cliCtx := GetCLIContext(cmd)
	cfg := cliCtx.Config
	logger := cliCtx.Logger

	settings, err := parseParams(opts.Params)
	if err != nil {
		return err
	}
	if opts.Shape != "" {
		settings["shape"] = opts.Shape
	}

	engines, err := csg.Engines(cfg.Assembly.Engines)
	if err != nil {
		return err
	}
	assembler := assembly.New(engines, assembly.Config{
		AttemptTimeout: cfg.Assembly.AttemptTimeout,
	}, logger)
	svc := appplate.NewService(assembler, appplate.Options{
		TotalTimeout:   cfg.Assembly.TotalTimeout,
		FeatureWorkers: cfg.Assembly.FeatureWorkers,
		MaxConcurrent:  1,
		MaxGridColumns: cfg.Limits.MaxGridColumns,
		MaxGridRows:    cfg.Limits.MaxGridRows,
	}, logger, nil)

	res, err := svc.Generate(cmd.Context(), platetypes.GenerateRequest{
		Lines:       opts.Lines,
		SourceLines: opts.Sources,
		PlateType:   opts.Plate,
		Settings:    settings,
	})
	if err != nil {
		return err
	}

	out := opts.Output
	if out == "" {
		out = res.Stats.Filename
	}
	if err := os.WriteFile(out, res.STL, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", out, err)
	}

	logger.Info("plate written",
		logging.String("file", out),
		logging.Int("triangles", res.Stats.Triangles),
		logging.Bool("watertight", res.Stats.Watertight),
		logging.Bool("degraded", res.Stats.Degraded),
		logging.String("engine", res.Stats.Engine))
	fmt.Fprintln(cmd.OutOrStdout(), out)
	return nil
}

// parseParams turns repeated key=value flags into the settings map the
// geometry resolver consumes. Values stay strings; the resolver parses them.
func parseParams(params []string) (map[string]interface{}, error) {
	settings := make(map[string]interface{}, len(params))
	for _, p := range params {
		key, value, ok := strings.Cut(p, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --param %q, expected key=value", p)
		}
		settings[key] = value
	}
	return settings, nil
}
