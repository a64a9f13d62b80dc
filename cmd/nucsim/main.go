package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/san-kum/nucsim/internal/config"
	"github.com/san-kum/nucsim/internal/library"
	"github.com/san-kum/nucsim/internal/nuclide"
	"github.com/san-kum/nucsim/internal/particle"
	"github.com/san-kum/nucsim/internal/store"
	"github.com/san-kum/nucsim/internal/transport"
)

var (
	libraryFile string
	configFile  string
	verbose     bool

	nuclideName string
	temperature float64
	energy      float64

	eMin   float64
	eMax   float64
	points int
	chanel string

	mt       int
	bounds   string
	flux     string
	dbPath   string
	runID    string
	nWorkers int
)

func main() {
	root := &cobra.Command{
		Use:   "nucsim",
		Short: "microscopic cross-section engine for Monte Carlo neutron transport",
		Long: "nucsim loads per-nuclide reaction data, evaluates microscopic cross\n" +
			"sections for particles in flight, and collapses reaction rates for\n" +
			"depletion coupling.",
	}

	root.PersistentFlags().StringVarP(&libraryFile, "library", "l", "", "nuclear data library (yaml)")
	root.PersistentFlags().StringVarP(&configFile, "config", "c", "", "settings file (yaml)")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log progress")

	inspectCmd := &cobra.Command{
		Use:   "inspect [nuclide...]",
		Short: "summarize the nuclides in a library",
		RunE:  runInspect,
	}
	inspectCmd.Flags().Float64VarP(&temperature, "temperature", "T", 293.6, "nominal temperature (K)")

	xsCmd := &cobra.Command{
		Use:   "xs",
		Short: "evaluate microscopic cross sections at one energy",
		RunE:  runXS,
	}
	xsCmd.Flags().StringVarP(&nuclideName, "nuclide", "n", "", "nuclide name")
	xsCmd.Flags().Float64VarP(&energy, "energy", "E", 1.0, "incident energy (eV)")
	xsCmd.Flags().Float64VarP(&temperature, "temperature", "T", 293.6, "temperature (K)")
	_ = xsCmd.MarkFlagRequired("nuclide")

	plotCmd := &cobra.Command{
		Use:   "plot",
		Short: "plot a cross-section channel over an energy sweep",
		RunE:  runPlot,
	}
	plotCmd.Flags().StringVarP(&nuclideName, "nuclide", "n", "", "nuclide name")
	plotCmd.Flags().Float64Var(&eMin, "emin", 1e-3, "sweep start (eV)")
	plotCmd.Flags().Float64Var(&eMax, "emax", 1e6, "sweep end (eV)")
	plotCmd.Flags().IntVar(&points, "points", 160, "sweep points")
	plotCmd.Flags().StringVar(&chanel, "channel", "total", "total|absorption|fission")
	plotCmd.Flags().Float64VarP(&temperature, "temperature", "T", 293.6, "temperature (K)")
	_ = plotCmd.MarkFlagRequired("nuclide")

	collapseCmd := &cobra.Command{
		Use:   "collapse [nuclide...]",
		Short: "collapse depletion reaction rates over energy groups",
		RunE:  runCollapse,
	}
	collapseCmd.Flags().Float64VarP(&temperature, "temperature", "T", 293.6, "temperature (K)")
	collapseCmd.Flags().IntVar(&mt, "mt", 0, "single MT (default: configured depletion list)")
	collapseCmd.Flags().StringVar(&bounds, "bounds", "1e-5,0.625,1e5,2e7", "group boundaries (eV, comma separated)")
	collapseCmd.Flags().StringVar(&flux, "flux", "", "group fluxes (comma separated, defaults to flat)")
	collapseCmd.Flags().StringVar(&dbPath, "db", "", "persist rates to this sqlite file")

	runsCmd := &cobra.Command{
		Use:   "runs",
		Short: "list collapse runs stored in a database",
		RunE:  runRuns,
	}
	runsCmd.Flags().StringVar(&dbPath, "db", "", "sqlite file")
	runsCmd.Flags().StringVar(&runID, "id", "", "show rates for one run")
	_ = runsCmd.MarkFlagRequired("db")

	browseCmd := &cobra.Command{
		Use:   "browse",
		Short: "interactively explore a nuclide's cross sections",
		RunE:  runBrowse,
	}
	browseCmd.Flags().StringVarP(&nuclideName, "nuclide", "n", "", "nuclide name")
	browseCmd.Flags().Float64VarP(&temperature, "temperature", "T", 293.6, "temperature (K)")
	_ = browseCmd.MarkFlagRequired("nuclide")

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "evaluate a particle batch across workers",
		RunE:  runBench,
	}
	benchCmd.Flags().IntVar(&points, "particles", 10000, "batch size")
	benchCmd.Flags().IntVar(&nWorkers, "workers", 0, "worker goroutines (0 = GOMAXPROCS)")
	benchCmd.Flags().Float64VarP(&temperature, "temperature", "T", 293.6, "temperature (K)")

	root.AddCommand(inspectCmd, xsCmd, plotCmd, collapseCmd, runsCmd, browseCmd, benchCmd)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newLogger() *zap.Logger {
	if !verbose {
		return zap.NewNop()
	}
	log, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}
	return log
}

// openRegistry loads the named nuclides (or the whole library) at the given
// nominal temperature.
func openRegistry(names []string, temps []float64) (*nuclide.Registry, *library.Library, error) {
	if libraryFile == "" {
		return nil, nil, fmt.Errorf("a nuclear data library is required (--library)")
	}

	settings := config.DefaultSettings()
	if configFile != "" {
		var err error
		settings, err = config.Load(configFile)
		if err != nil {
			return nil, nil, err
		}
	}
	opts, err := settings.Options()
	if err != nil {
		return nil, nil, err
	}

	lib, err := library.Open(libraryFile)
	if err != nil {
		return nil, nil, err
	}

	if len(names) == 0 {
		names = lib.Names()
		sort.Strings(names)
	}

	reg := nuclide.NewRegistry(opts, newLogger())
	for _, name := range names {
		if _, err := reg.Load(lib, name, temps); err != nil {
			return nil, nil, err
		}
	}
	return reg, lib, nil
}

func runInspect(cmd *cobra.Command, args []string) error {
	reg, lib, err := openRegistry(args, []float64{temperature})
	if err != nil {
		return err
	}

	fmt.Printf("library %s: %d nuclide(s)\n\n", lib.Path(), reg.Len())

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tZ\tA\tAWR\tTEMPS\tGRID PTS\tREACTIONS\tFISSILE\tURR\tMULTIPOLE")
	for i := 0; i < reg.Len(); i++ {
		n, _ := reg.Get(i)
		pts := 0
		for t := range n.KTs() {
			pts += len(n.Grid(t).Energy)
		}
		fmt.Fprintf(w, "%s\t%d\t%d\t%.3f\t%d\t%s\t%d\t%v\t%v\t%v\n",
			n.Name(), n.Z(), n.A(), n.AWR(), len(n.KTs()),
			humanize.Comma(int64(pts)), n.NReactions(),
			n.Fissionable(), n.URRPresent(), n.HasMultipole())
	}
	if err := w.Flush(); err != nil {
		return err
	}

	lo, hi := reg.TemperatureBounds()
	fmt.Printf("\nloaded temperature span: %.1f K to %.1f K\n", lo, hi)
	return nil
}

func runXS(cmd *cobra.Command, args []string) error {
	reg, _, err := openRegistry([]string{nuclideName}, []float64{temperature})
	if err != nil {
		return err
	}
	n, _ := reg.Get(0)

	p := particle.New(0, 1, reg.Len(), len(reg.Options().DepletionRx))
	p.SetE(energy)
	p.SetSqrtKT(math.Sqrt(nuclide.KBoltzmann * temperature))
	n.CalculateXS(p, nil, 0.0, reg.Options().LogUnionBin(energy))

	micro := p.MicroXS(n.Index())
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "nuclide\t%s\n", n.Name())
	fmt.Fprintf(w, "energy\t%.6g eV\n", energy)
	fmt.Fprintf(w, "temperature\t%.1f K\n", temperature)
	fmt.Fprintf(w, "total\t%.6g b\n", micro.Total)
	fmt.Fprintf(w, "absorption\t%.6g b\n", micro.Absorption)
	fmt.Fprintf(w, "fission\t%.6g b\n", micro.Fission)
	fmt.Fprintf(w, "nu-fission\t%.6g b\n", micro.NuFission)
	fmt.Fprintf(w, "photon production\t%.6g b\n", micro.PhotonProd)
	if micro.UsePtable {
		fmt.Fprintf(w, "probability table\tyes\n")
	}
	if reg.Options().NeedDepletionRx {
		for j, rxMT := range reg.Options().DepletionRx {
			fmt.Fprintf(w, "MT=%d\t%.6g b\n", rxMT, micro.Reaction[j])
		}
	}
	return w.Flush()
}

func runPlot(cmd *cobra.Command, args []string) error {
	reg, _, err := openRegistry([]string{nuclideName}, []float64{temperature})
	if err != nil {
		return err
	}
	n, _ := reg.Get(0)

	_, total, absorption, fission := transport.Scan(
		n, reg.Options(), eMin, eMax, points, temperature, 1)

	var data []float64
	switch chanel {
	case "total":
		data = total
	case "absorption":
		data = absorption
	case "fission":
		data = fission
	default:
		return fmt.Errorf("unknown channel %q", chanel)
	}

	// Cross sections span decades; plot the log.
	logData := make([]float64, len(data))
	for i, v := range data {
		logData[i] = math.Log10(math.Max(v, 1e-10))
	}

	caption := fmt.Sprintf("%s %s, log10(barns) over [%.3g, %.3g] eV at %.1f K",
		n.Name(), chanel, eMin, eMax, temperature)
	graph := asciigraph.Plot(logData,
		asciigraph.Height(15),
		asciigraph.Width(80),
		asciigraph.Caption(caption),
	)
	fmt.Println(graph)
	return nil
}

func parseFloats(s string) ([]float64, error) {
	parts := strings.Split(s, ",")
	out := make([]float64, 0, len(parts))
	for _, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func runCollapse(cmd *cobra.Command, args []string) error {
	reg, lib, err := openRegistry(args, []float64{temperature})
	if err != nil {
		return err
	}

	groupBounds, err := parseFloats(bounds)
	if err != nil {
		return fmt.Errorf("parsing --bounds: %w", err)
	}
	var groupFlux []float64
	if flux == "" {
		groupFlux = make([]float64, len(groupBounds)-1)
		for i := range groupFlux {
			groupFlux[i] = 1.0
		}
	} else {
		groupFlux, err = parseFloats(flux)
		if err != nil {
			return fmt.Errorf("parsing --flux: %w", err)
		}
	}

	mts := reg.Options().DepletionRx
	if mt > 0 {
		mts = []int{mt}
	}

	var rates []store.Rate
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NUCLIDE\tMT\tRATE")
	for i := 0; i < reg.Len(); i++ {
		n, _ := reg.Get(i)
		for _, m := range mts {
			rate, err := n.CollapseRate(m, temperature, groupBounds, groupFlux)
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "%s\t%d\t%.6g\n", n.Name(), m, rate)
			rates = append(rates, store.Rate{Nuclide: n.Name(), MT: m, Value: rate})
		}
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if dbPath == "" {
		return nil
	}

	ctx := context.Background()
	db := store.New(dbPath)
	if err := db.Init(ctx); err != nil {
		return err
	}
	defer db.Close()

	id, err := db.SaveRun(ctx, store.Run{
		Library:     lib.Path(),
		Method:      reg.Options().Method.String(),
		Temperature: temperature,
		Groups:      len(groupFlux),
	}, rates)
	if err != nil {
		return err
	}
	fmt.Printf("\nsaved run %s to %s\n", id, dbPath)
	return nil
}

func runRuns(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	db := store.New(dbPath)
	if err := db.Init(ctx); err != nil {
		return err
	}
	defer db.Close()

	if runID != "" {
		rates, err := db.RatesForRun(ctx, runID)
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "NUCLIDE\tMT\tRATE")
		for _, r := range rates {
			fmt.Fprintf(w, "%s\t%d\t%.6g\n", r.Nuclide, r.MT, r.Value)
		}
		return w.Flush()
	}

	runs, err := db.Runs(ctx)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tCREATED\tLIBRARY\tMETHOD\tTEMP (K)\tGROUPS")
	for _, r := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.1f\t%d\n",
			r.ID, r.CreatedAt.Format("2006-01-02 15:04:05"), r.Library,
			r.Method, r.Temperature, r.Groups)
	}
	return w.Flush()
}

func runBench(cmd *cobra.Command, args []string) error {
	reg, _, err := openRegistry(nil, []float64{temperature})
	if err != nil {
		return err
	}

	sqrtKT := math.Sqrt(nuclide.KBoltzmann * temperature)
	batch := make([]*particle.Particle, points)
	for i := range batch {
		p := particle.New(int64(i), 1, reg.Len(), len(reg.Options().DepletionRx))
		// Spread the batch logarithmically over the union mesh span.
		f := float64(i) / float64(len(batch))
		p.SetE(reg.Options().EnergyMin * math.Exp(f*math.Log(reg.Options().EnergyMax/reg.Options().EnergyMin)))
		p.SetSqrtKT(sqrtKT)
		batch[i] = p
	}

	ens := transport.NewEnsemble(reg, nWorkers)
	if err := ens.Evaluate(context.Background(), batch); err != nil {
		return err
	}
	fmt.Printf("evaluated %s particles x %d nuclide(s)\n",
		humanize.Comma(int64(len(batch))), reg.Len())
	return nil
}
