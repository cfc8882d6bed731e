package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Spok95/partcost/internal/costing"
	"github.com/Spok95/partcost/internal/units"
)

var convertCmd = &cobra.Command{
	Use:   "convert VALUE FROM TO",
	Short: "Convert a value between units (best effort)",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		value, err := parseNumber(args[0])
		if err != nil {
			return fmt.Errorf("invalid value %q: %w", args[0], err)
		}
		out := units.Convert(value, args[1], args[2])
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", strconv.FormatFloat(out, 'g', -1, 64), args[2])
		return nil
	},
}

var estimateFlags struct {
	dims        []string
	unit        string
	density     float64
	densityUnit string
	pricePerKg  float64
	volumeUnit  string
}

var estimateCmd = &cobra.Command{
	Use:   "estimate",
	Short: "Print volume, weight and cost of a raw material blank",
	Example: `  partcost estimate --dim length=50 --dim width=30 --dim height=10 \
    --density 7.85 --density-unit g/cm³ --price-per-kg 100`,
	RunE: runEstimate,
}

func init() {
	f := estimateCmd.Flags()
	f.StringArrayVar(&estimateFlags.dims, "dim", nil, "dimension as name=value, repeatable")
	f.StringVar(&estimateFlags.unit, "unit", "mm", "unit of all dimensions")
	f.Float64Var(&estimateFlags.density, "density", 0, "material density")
	f.StringVar(&estimateFlags.densityUnit, "density-unit", "g/cm³", "density unit")
	f.Float64Var(&estimateFlags.pricePerKg, "price-per-kg", 100, "price per kg")
	f.StringVar(&estimateFlags.volumeUnit, "volume-unit", "mm³", "unit to display the volume in")
}

func runEstimate(cmd *cobra.Command, args []string) error {
	dims, err := parseDims(estimateFlags.dims)
	if err != nil {
		return err
	}
	est := costing.NewCalculator(units.Default).Estimate(costing.Input{
		Dimensions: costing.DimensionSet{Unit: estimateFlags.unit, Values: dims},
		Density:    units.Q(estimateFlags.density, estimateFlags.densityUnit),
		PricePerKg: estimateFlags.pricePerKg,
		VolumeUnit: estimateFlags.volumeUnit,
	})

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "volume: %s\n", est.Volume)
	fmt.Fprintf(out, "weight: %s\n", est.Weight)
	fmt.Fprintf(out, "cost:   %s\n", costing.FormatMoney(est.Cost))
	return nil
}

func parseDims(pairs []string) (costing.Dimensions, error) {
	dims := make(costing.Dimensions, len(pairs))
	for _, p := range pairs {
		name, raw, ok := strings.Cut(p, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid --dim %q, want name=value", p)
		}
		v, err := parseNumber(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid --dim %q: %w", p, err)
		}
		dims[name] = v
	}
	return dims, nil
}

// parseNumber принимает и десятичную запятую.
func parseNumber(s string) (float64, error) {
	return strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(s), ",", "."), 64)
}
