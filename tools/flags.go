package tools

import (
	"flag"
	"log"
)

const (
	CommandVerify = "verify"
	CommandExport = "export"
	CommandDemo   = "demo"
)

type FlagsGlobal struct {
	Help    *bool `json:"help"`
	Version *bool `json:"version"`
}

// ModelFlags describe the ellipsoid under test. Shared by all commands.
type ModelFlags struct {
	EquatorialRadius *float64 `json:"equatorial_radius"`
	PolarRadius      *float64 `json:"polar_radius"`
}

type FlagsForCommandVerify struct {
	ModelFlags
	ViewSamples     *int
	SurfaceSamples  *int
	Lod             *int
	ThresholdFactor *float64
	MaxHeight       *float64
	Seed            *int
	Workers         *int
	Output          *string
	Silent          *bool
	LogTimestamp    *bool
	Help            *bool
	Version         *bool
}

type FlagsForCommandExport struct {
	ModelFlags
	Lat        *float64
	Lon        *float64
	Height     *float64
	Lod        *int
	GridLod    *int
	FieldCount *int
	FieldScale *float64
	Output     *string
}

type FlagsForCommandDemo struct {
	ModelFlags
	Lat    *float64
	Lon    *float64
	Height *float64
	Lod    *int
}

func ParseFlagsGlobal() FlagsGlobal {
	help := defineBoolFlag("help", "h", false, "Displays this help.")
	version := defineBoolFlag("version", "v", false, "Displays the version of globeprec.")

	flag.Parse()

	return FlagsGlobal{
		Help:    help,
		Version: version,
	}
}

func defineModelFlagsCommand(flagCommand *flag.FlagSet) ModelFlags {
	equatorialRadius := defineFloat64FlagCommand(flagCommand, "equatorial-radius", "a", 6378137.0, "Equatorial radius of the ellipsoid in meters.")
	polarRadius := defineFloat64FlagCommand(flagCommand, "polar-radius", "b", 6356752.314245, "Polar radius of the ellipsoid in meters.")

	return ModelFlags{
		EquatorialRadius: equatorialRadius,
		PolarRadius:      polarRadius,
	}
}

func ParseFlagsForCommandVerify(args []string) FlagsForCommandVerify {
	log.Println(FmtJSONString(args))

	flagCommand := flag.NewFlagSet("command-verify", flag.ExitOnError)

	modelFlags := defineModelFlagsCommand(flagCommand)
	viewSamples := defineIntFlagCommand(flagCommand, "samples", "n", 10000, "Number of random view placements to sample.")
	surfaceSamples := defineIntFlagCommand(flagCommand, "surface-samples", "m", 100, "Number of surface samples around each view.")
	lod := defineIntFlagCommand(flagCommand, "lod", "l", 10, "Origin lod of the approximation under test.")
	thresholdFactor := defineFloat64FlagCommand(flagCommand, "threshold-factor", "f", 0.001, "Sampling radius around each view as a fraction of the body radius.")
	maxHeight := defineFloat64FlagCommand(flagCommand, "height", "z", 1000, "Maximum view height above the surface in meters.")
	seed := defineIntFlagCommand(flagCommand, "seed", "r", 1, "Seed of the sample generator.")
	workers := defineIntFlagCommand(flagCommand, "workers", "w", 0, "Number of concurrent view workers. 0 uses all CPUs.")
	output := defineStringFlagCommand(flagCommand, "output", "o", "", "Optional GeoJSON file for per-view error export.")
	silent := defineBoolFlagCommand(flagCommand, "silent", "s", false, "Use to suppress all the non-error messages.")
	logTimestamp := defineBoolFlagCommand(flagCommand, "timestamp", "t", false, "Adds timestamp to log messages.")
	help := defineBoolFlagCommand(flagCommand, "help", "h", false, "Displays this help.")
	version := defineBoolFlagCommand(flagCommand, "version", "v", false, "Displays the version of globeprec.")

	flagCommand.Parse(args)

	return FlagsForCommandVerify{
		ModelFlags:      modelFlags,
		ViewSamples:     viewSamples,
		SurfaceSamples:  surfaceSamples,
		Lod:             lod,
		ThresholdFactor: thresholdFactor,
		MaxHeight:       maxHeight,
		Seed:            seed,
		Workers:         workers,
		Output:          output,
		Silent:          silent,
		LogTimestamp:    logTimestamp,
		Help:            help,
		Version:         version,
	}
}

func ParseFlagsForCommandExport(args []string) FlagsForCommandExport {
	log.Println(FmtJSONString(args))

	flagCommand := flag.NewFlagSet("command-export", flag.ExitOnError)

	modelFlags := defineModelFlagsCommand(flagCommand)
	lat := defineFloat64FlagCommand(flagCommand, "lat", "", 48.0, "Latitude of the view placement in degrees.")
	lon := defineFloat64FlagCommand(flagCommand, "lon", "", 11.0, "Longitude of the view placement in degrees.")
	height := defineFloat64FlagCommand(flagCommand, "height", "z", 1000, "View height above the surface in meters.")
	lod := defineIntFlagCommand(flagCommand, "lod", "l", 10, "Origin lod of the approximation.")
	gridLod := defineIntFlagCommand(flagCommand, "grid-lod", "g", 3, "Lod of the exported tile grid.")
	fieldCount := defineIntFlagCommand(flagCommand, "field-count", "c", 16, "Half extent of the error field sample grid.")
	fieldScale := defineFloat64FlagCommand(flagCommand, "field-scale", "x", 1.0/32.0, "st extent of the error field around the view.")
	output := defineStringFlagCommand(flagCommand, "output", "o", "", "Specifies the output folder where to write the GeoJSON files.")

	flagCommand.Parse(args)

	return FlagsForCommandExport{
		ModelFlags: modelFlags,
		Lat:        lat,
		Lon:        lon,
		Height:     height,
		Lod:        lod,
		GridLod:    gridLod,
		FieldCount: fieldCount,
		FieldScale: fieldScale,
		Output:     output,
	}
}

func ParseFlagsForCommandDemo(args []string) FlagsForCommandDemo {
	log.Println(FmtJSONString(args))

	flagCommand := flag.NewFlagSet("command-demo", flag.ExitOnError)

	modelFlags := defineModelFlagsCommand(flagCommand)
	lat := defineFloat64FlagCommand(flagCommand, "lat", "", 48.0, "Latitude of the view placement in degrees.")
	lon := defineFloat64FlagCommand(flagCommand, "lon", "", 11.0, "Longitude of the view placement in degrees.")
	height := defineFloat64FlagCommand(flagCommand, "height", "z", 1000, "View height above the surface in meters.")
	lod := defineIntFlagCommand(flagCommand, "lod", "l", 10, "Origin lod of the approximation.")

	flagCommand.Parse(args)

	return FlagsForCommandDemo{
		ModelFlags: modelFlags,
		Lat:        lat,
		Lon:        lon,
		Height:     height,
		Lod:        lod,
	}
}

func defineBoolFlag(name string, shortHand string, defaultValue bool, usage string) *bool {
	var output bool
	flag.BoolVar(&output, name, defaultValue, usage)
	if shortHand != name {
		flag.BoolVar(&output, shortHand, defaultValue, usage+" (shorthand for "+name+")")
	}
	return &output
}

func defineStringFlagCommand(flagCommand *flag.FlagSet, name string, shortHand string, defaultValue string, usage string) *string {
	var output string
	flagCommand.StringVar(&output, name, defaultValue, usage)
	if shortHand != name && shortHand != "" {
		flagCommand.StringVar(&output, shortHand, defaultValue, usage+" (shorthand for "+name+")")
	}

	return &output
}

func defineIntFlagCommand(flagCommand *flag.FlagSet, name string, shortHand string, defaultValue int, usage string) *int {
	var output int
	flagCommand.IntVar(&output, name, defaultValue, usage)
	if shortHand != name && shortHand != "" {
		flagCommand.IntVar(&output, shortHand, defaultValue, usage+" (shorthand for "+name+")")
	}

	return &output
}

func defineFloat64FlagCommand(flagCommand *flag.FlagSet, name string, shortHand string, defaultValue float64, usage string) *float64 {
	var output float64
	flagCommand.Float64Var(&output, name, defaultValue, usage)
	if shortHand != name && shortHand != "" {
		flagCommand.Float64Var(&output, shortHand, defaultValue, usage+" (shorthand for "+name+")")
	}
	return &output
}

func defineBoolFlagCommand(flagCommand *flag.FlagSet, name string, shortHand string, defaultValue bool, usage string) *bool {
	var output bool
	flagCommand.BoolVar(&output, name, defaultValue, usage)
	if shortHand != name && shortHand != "" {
		flagCommand.BoolVar(&output, shortHand, defaultValue, usage+" (shorthand for "+name+")")
	}
	return &output
}
