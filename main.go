package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/s1"

	internalio "github.com/planetviz/globe_precision/internal/io"
	"github.com/planetviz/globe_precision/internal/survey"
	"github.com/planetviz/globe_precision/pkg/approximation"
	"github.com/planetviz/globe_precision/pkg/cubesphere"
	"github.com/planetviz/globe_precision/pkg/ellipsoid"
	"github.com/planetviz/globe_precision/tools"
)

const VERSION = "0.3.1"

const logo = `
       _       _
  __ _| | ___ | |__   ___ _ __  _ __ ___  ___
 / _  | |/ _ \| '_ \ / _ \ '_ \| '__/ _ \/ __|
| (_| | | (_) | |_) |  __/ |_) | | |  __/ (__
 \__, |_|\___/|_.__/ \___| .__/|_|  \___|\___|
 |___/  cube-sphere view | |  precision engine
        Copyright YYYY   |_|
`

func main() {
	log.SetPrefix("[globeprec] ")
	log.SetFlags(log.LUTC | log.Ldate | log.Lmicroseconds | log.Lshortfile)

	flagsGlobal := tools.ParseFlagsGlobal()
	log.Println(tools.FmtJSONString(flagsGlobal))

	args := flag.Args()
	if len(args) == 0 {
		log.Fatal("Please specify a subcommand [verify|export|demo].")
	}
	cmd, args := args[0], args[1:]

	switch cmd {
	case tools.CommandVerify:
		mainCommandVerify(args)
	case tools.CommandExport:
		mainCommandExport(args)
	case tools.CommandDemo:
		mainCommandDemo(args)
	default:
		log.Fatalf("Unrecognized command [%q]. Command must be one of [verify|export|demo]", cmd)
	}
}

func mainCommandVerify(args []string) {
	flags := tools.ParseFlagsForCommandVerify(args)

	if *flags.Help {
		showHelp()
		return
	}

	if *flags.Version {
		printVersion()
		return
	}

	if *flags.Silent {
		tools.DisableLogger()
	} else {
		printLogo()
	}
	if !*flags.LogTimestamp {
		tools.DisableLoggerTimestamp()
	}

	opts := survey.DefaultOptions()
	opts.ViewSamples = *flags.ViewSamples
	opts.SurfaceSamples = *flags.SurfaceSamples
	opts.ViewLOD = int32(*flags.Lod)
	opts.ThresholdFactor = *flags.ThresholdFactor
	opts.MaxHeight = *flags.MaxHeight
	opts.Seed = int64(*flags.Seed)
	opts.PerViewErrors = *flags.Output != ""
	if *flags.Workers > 0 {
		opts.NumWorkers = *flags.Workers
	}

	model := buildModelOrFail(flags.ModelFlags)

	start := time.Now()
	report, err := survey.Run(model, opts)
	if err != nil {
		log.Fatal("Error while surveying: ", err)
	}
	defer timeTrack(start, "survey")

	fmt.Println(report.String())

	if *flags.Output != "" {
		if err := internalio.WriteViewErrors(*flags.Output, model, report.ViewErrors); err != nil {
			log.Fatal("Error writing view errors: ", err)
		}
	}

	tools.LogOutput("Survey Completed")
}

func mainCommandExport(args []string) {
	flags := tools.ParseFlagsForCommandExport(args)

	if msg, res := validateOptionsForCommandExport(&flags); !res {
		log.Fatal("Error parsing input parameters: " + msg)
	}

	model := buildModelOrFail(flags.ModelFlags)

	viewPosition := model.GeodeticPosition(
		s1.Angle(*flags.Lat)*s1.Degree,
		s1.Angle(*flags.Lon)*s1.Degree,
		*flags.Height,
	)

	approx, err := approximation.Compute(model, viewPosition, int32(*flags.Lod))
	if err != nil {
		log.Fatal("Error computing approximation: ", err)
	}

	output := *flags.Output
	if err := internalio.WriteTileGrid(path.Join(output, "tile_grid.geojson"), model, int32(*flags.GridLod)); err != nil {
		log.Fatal("Error writing tile grid: ", err)
	}
	if err := internalio.WriteOrigins(path.Join(output, "origins.geojson"), approx); err != nil {
		log.Fatal("Error writing origins: ", err)
	}
	if err := internalio.WriteErrorField(path.Join(output, "error_field.geojson"), approx, *flags.FieldCount, float32(*flags.FieldScale)); err != nil {
		log.Fatal("Error writing error field: ", err)
	}

	tools.LogOutput("Export Completed")
}

func validateOptionsForCommandExport(flags *tools.FlagsForCommandExport) (string, bool) {
	if *flags.Output == "" {
		return "Output folder not specified", false
	}
	if *flags.Lat < -90 || *flags.Lat > 90 {
		return "Latitude must lie in [-90, 90]", false
	}
	if *flags.GridLod < 0 || *flags.GridLod > 6 {
		return "grid-lod must lie in [0, 6] to keep the export bounded", false
	}
	return "", true
}

// mainCommandDemo walks a small tile neighborhood around the view and prints
// the exact against the approximate reconstruction for each vertex.
func mainCommandDemo(args []string) {
	flags := tools.ParseFlagsForCommandDemo(args)

	printLogo()

	model := buildModelOrFail(flags.ModelFlags)

	viewPosition := model.GeodeticPosition(
		s1.Angle(*flags.Lat)*s1.Degree,
		s1.Angle(*flags.Lon)*s1.Degree,
		*flags.Height,
	)

	lod := int32(*flags.Lod)
	approx, err := approximation.Compute(model, viewPosition, lod)
	if err != nil {
		log.Fatal("Error computing approximation: ", err)
	}

	viewTile, _ := cubesphere.TileFromWorldPosition(viewPosition, lod, model)
	fmt.Printf("view %v on face %d, tile (%d, %d) at lod %d\n",
		viewPosition, viewTile.Face, viewTile.X, viewTile.Y, lod)

	for dx := int32(-1); dx <= 1; dx++ {
		for dy := int32(-1); dy <= 1; dy++ {
			tile := cubesphere.NewTile(viewTile.Face, lod, viewTile.X+dx, viewTile.Y+dy)

			relativeST, err := approx.ApproximateRelativeST(tile, mgl32.Vec2{0.5, 0.5})
			if err != nil {
				log.Fatal("Error on fast path: ", err)
			}

			exact := approx.RelativePosition(relativeST, tile.Face)
			taylor := approx.ApproximateRelativePosition(relativeST, tile.Face)

			errDistance := exact.Sub(mgl64.Vec3{
				float64(taylor.X()), float64(taylor.Y()), float64(taylor.Z()),
			}).Len()

			fmt.Printf("tile (%+d, %+d) center: exact %v approx %v error %s\n",
				dx, dy, exact, taylor, ellipsoid.Length(errDistance))
		}
	}
}

func buildModelOrFail(flags tools.ModelFlags) *ellipsoid.Model {
	model, err := ellipsoid.NewModel(mgl64.Vec3{}, *flags.EquatorialRadius, *flags.PolarRadius)
	if err != nil {
		log.Fatal("Error building ellipsoid model: ", err)
	}
	return model
}

func timeTrack(start time.Time, name string) {
	elapsed := time.Since(start)
	tools.LogOutput(fmt.Sprintf("%s took %s", name, elapsed))
}

func printLogo() {
	fmt.Println(strings.ReplaceAll(logo, "YYYY", strconv.Itoa(time.Now().Year())))
}

func showHelp() {
	printLogo()
	fmt.Println("***")
	fmt.Println("globeprec verifies and visualizes the cube-sphere view-relative precision engine")
	printVersion()
	fmt.Println("***")
	fmt.Println("")
	fmt.Println("Command line flags: ")
	flag.CommandLine.SetOutput(os.Stdout)
	flag.PrintDefaults()
}

func printVersion() {
	fmt.Println("v." + VERSION)
}
