package survey

import "runtime"

// Options controls the extent of the error survey.
type Options struct {
	ViewSamples     int     // number of random view placements
	SurfaceSamples  int     // number of surface samples per view
	ViewLOD         int32   // origin lod of the approximation under test
	ThresholdFactor float64 // sampling radius as a fraction of the body radius
	MaxHeight       float64 // maximum view height above the surface in meters
	Seed            int64   // seed of the sample generator
	NumWorkers      int     // number of concurrent view workers

	PerViewErrors bool // collect per-view maxima for export
}

// DefaultOptions mirrors the survey configuration the error envelope was
// characterized with: at a threshold factor of 0.001 and an origin lod of 10
// the second order approximation stays around one centimeter.
func DefaultOptions() *Options {
	return &Options{
		ViewSamples:     10000,
		SurfaceSamples:  100,
		ViewLOD:         10,
		ThresholdFactor: 0.001,
		MaxHeight:       1000,
		Seed:            1,
		NumWorkers:      runtime.NumCPU(),
		PerViewErrors:   true,
	}
}

func (o *Options) validate() (string, bool) {
	if o.ViewSamples <= 0 || o.SurfaceSamples <= 0 {
		return "sample counts must be positive", false
	}
	if o.ViewLOD < 0 {
		return "view lod cannot be negative", false
	}
	if o.ThresholdFactor <= 0 {
		return "threshold factor must be positive", false
	}
	if o.MaxHeight < 0 {
		return "max height cannot be negative", false
	}
	if o.NumWorkers <= 0 {
		return "worker count must be positive", false
	}
	return "", true
}
