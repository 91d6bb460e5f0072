// Package survey measures the world space error of the view relative
// approximation empirically, by sampling random views on and above the body
// and random surface locations around each view. Four reconstruction methods
// are compared against the exact double precision position: the first and
// second order Taylor evaluation, a pure float32 recomputation, and a plain
// float64 to float32 downcast.
package survey

import (
	"fmt"
	"math/rand"
	"sync"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/glog"
	"github.com/pkg/errors"

	"github.com/planetviz/globe_precision/pkg/approximation"
	"github.com/planetviz/globe_precision/pkg/cubesphere"
	"github.com/planetviz/globe_precision/pkg/ellipsoid"
)

// MethodError aggregates the world space error of one reconstruction method.
type MethodError struct {
	Avg float64
	Max float64
}

func (m *MethodError) add(err float64) {
	m.Avg += err
	if err > m.Max {
		m.Max = err
	}
}

func (m *MethodError) merge(other MethodError) {
	m.Avg += other.Avg
	if other.Max > m.Max {
		m.Max = other.Max
	}
}

// ViewError records the worst second order error observed around one view.
type ViewError struct {
	Position mgl64.Vec3
	MaxError float64
}

// Report is the outcome of one survey run.
type Report struct {
	Taylor1  MethodError
	Taylor2  MethodError
	Float32  MethodError
	Downcast MethodError

	ViewErrors []ViewError

	Threshold float64
	ViewLOD   int32
}

func (r *Report) String() string {
	out := fmt.Sprintf("With a sampling radius of %s and a view LOD of %d, the world space errors look like this.\n",
		ellipsoid.Length(r.Threshold), r.ViewLOD)
	out += fmt.Sprintf("first order taylor:  avg %s, max %s\n", ellipsoid.Length(r.Taylor1.Avg), ellipsoid.Length(r.Taylor1.Max))
	out += fmt.Sprintf("second order taylor: avg %s, max %s\n", ellipsoid.Length(r.Taylor2.Avg), ellipsoid.Length(r.Taylor2.Max))
	out += fmt.Sprintf("pure float32:        avg %s, max %s\n", ellipsoid.Length(r.Float32.Avg), ellipsoid.Length(r.Float32.Max))
	out += fmt.Sprintf("float32 downcast:    avg %s, max %s", ellipsoid.Length(r.Downcast.Avg), ellipsoid.Length(r.Downcast.Max))
	return out
}

// viewResult carries the aggregated errors of a single view placement from a
// worker back to the collector.
type viewResult struct {
	taylor1  MethodError
	taylor2  MethodError
	float32e MethodError
	downcast MethodError
	view     ViewError
}

// Run executes the survey against the given model.
func Run(model *ellipsoid.Model, opts *Options) (*Report, error) {
	if model == nil {
		return nil, errors.New("survey: nil model")
	}
	if msg, ok := opts.validate(); !ok {
		return nil, errors.Errorf("survey: invalid options: %s", msg)
	}

	threshold := opts.ThresholdFactor * model.Scale()
	glog.V(1).Infof("survey: %d views x %d samples, threshold %.4f m, lod %d",
		opts.ViewSamples, opts.SurfaceSamples, threshold, opts.ViewLOD)

	work := make(chan int, opts.NumWorkers)
	results := make(chan *viewResult, opts.NumWorkers)
	errchan := make(chan error, opts.NumWorkers)

	var workerWaitGroup sync.WaitGroup
	for i := 0; i < opts.NumWorkers; i++ {
		workerWaitGroup.Add(1)
		go surveyWorker(model, opts, threshold, work, results, errchan, &workerWaitGroup)
	}

	// Producer: one work unit per view placement. The per-view seed keeps the
	// run reproducible regardless of worker interleaving.
	go func() {
		for view := 0; view < opts.ViewSamples; view++ {
			work <- view
		}
		close(work)
	}()

	go func() {
		workerWaitGroup.Wait()
		close(results)
	}()

	report := &Report{
		Threshold: threshold,
		ViewLOD:   opts.ViewLOD,
	}

	for result := range results {
		report.Taylor1.merge(result.taylor1)
		report.Taylor2.merge(result.taylor2)
		report.Float32.merge(result.float32e)
		report.Downcast.merge(result.downcast)
		if opts.PerViewErrors {
			report.ViewErrors = append(report.ViewErrors, result.view)
		}
	}

	select {
	case err := <-errchan:
		return nil, err
	default:
	}

	count := float64(opts.ViewSamples * opts.SurfaceSamples)
	report.Taylor1.Avg /= count
	report.Taylor2.Avg /= count
	report.Float32.Avg /= count
	report.Downcast.Avg /= count

	return report, nil
}

// surveyWorker consumes view indices until the work channel is closed. On
// error it reports to the error channel and quits.
func surveyWorker(
	model *ellipsoid.Model,
	opts *Options,
	threshold float64,
	work chan int,
	results chan *viewResult,
	errchan chan error,
	waitGroup *sync.WaitGroup,
) {
	for view := range work {
		result, err := surveyView(model, opts, threshold, view)
		if err != nil {
			errchan <- err
			break
		}
		results <- result
	}

	waitGroup.Done()
}

func surveyView(model *ellipsoid.Model, opts *Options, threshold float64, view int) (*viewResult, error) {
	rng := rand.New(rand.NewSource(opts.Seed + int64(view)))

	viewPosition := randomViewPosition(rng, model, opts.MaxHeight)

	approx, err := approximation.Compute(model, viewPosition, opts.ViewLOD)
	if err != nil {
		return nil, err
	}

	result := &viewResult{}

	for sample := 0; sample < opts.SurfaceSamples; sample++ {
		surfacePosition := randomSurfacePosition(rng, model, threshold, viewPosition)

		tile, vertexOffset := cubesphere.TileFromWorldPosition(surfacePosition, opts.ViewLOD, model)

		relativeST, err := approx.ApproximateRelativeST(tile, vertexOffset)
		if err != nil {
			return nil, err
		}

		surface := approx.Surface(tile.Face)
		s := relativeST.X() + surface.DeltaRelativeST.X()
		t := relativeST.Y() + surface.DeltaRelativeST.Y()

		taylor1 := surface.C.Add(surface.CDu.Mul(s)).Add(surface.CDv.Mul(t))
		taylor2 := approx.ApproximateRelativePosition(relativeST, tile.Face)

		taylor1Error := distance(surfacePosition, viewPosition.Add(vec3To64(taylor1)))
		taylor2Error := distance(surfacePosition, viewPosition.Add(vec3To64(taylor2)))
		float32Error := distance(surfacePosition, float32WorldPosition(tile, vertexOffset, model))
		downcastError := distance(surfacePosition, vec3To64(vec3To32(surfacePosition)))

		result.taylor1.add(taylor1Error)
		result.taylor2.add(taylor2Error)
		result.float32e.add(float32Error)
		result.downcast.add(downcastError)

		if taylor2Error > result.view.MaxError {
			result.view.MaxError = taylor2Error
		}
	}

	result.view.Position = viewPosition

	return result, nil
}

// randomViewPosition places a view uniformly over the faces, up to maxHeight
// meters above the surface.
func randomViewPosition(rng *rand.Rand, model *ellipsoid.Model, maxHeight float64) mgl64.Vec3 {
	coordinate := cubesphere.NewCoordinate(
		rng.Intn(cubesphere.FaceCount),
		mgl64.Vec2{rng.Float64(), rng.Float64()},
	)

	return coordinate.WorldPosition(model, rng.Float64()*maxHeight)
}

// randomSurfacePosition perturbs the view by a random vector of length up to
// threshold and projects the result back onto the surface.
func randomSurfacePosition(rng *rand.Rand, model *ellipsoid.Model, threshold float64, viewPosition mgl64.Vec3) mgl64.Vec3 {
	direction := mgl64.Vec3{
		rng.Float64()*2 - 1,
		rng.Float64()*2 - 1,
		rng.Float64()*2 - 1,
	}.Normalize()

	perturbed := viewPosition.Add(direction.Mul(rng.Float64() * threshold))

	return model.PositionLocalToWorld(model.PositionWorldToLocal(perturbed))
}

func distance(a, b mgl64.Vec3) float64 {
	return a.Sub(b).Len()
}

func vec3To32(v mgl64.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{float32(v.X()), float32(v.Y()), float32(v.Z())}
}

func vec3To64(v mgl32.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{float64(v.X()), float64(v.Y()), float64(v.Z())}
}
