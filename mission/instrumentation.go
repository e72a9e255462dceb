package mission

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
)

// tracerName is the instrumentation name reported against every span this
// package starts.
const tracerName = "github.com/ksali98/isr-planner-sub001/mission"

var tracer = otel.Tracer(tracerName)

var (
	// stageDuration observes wall-clock time per pipeline stage of Solve.
	stageDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "isrplan",
		Subsystem: "mission",
		Name:      "stage_duration_seconds",
		Help:      "Wall-clock duration of each pipeline stage of mission.Solve.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"stage"})

	// matrixCacheOutcomes counts distance-matrix builds by outcome: built or
	// error. Cache hits inside distmat are not told apart from fresh builds.
	matrixCacheOutcomes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "isrplan",
		Subsystem: "mission",
		Name:      "matrix_cache_total",
		Help:      "Distance-matrix build outcomes, by built/error.",
	}, []string{"outcome"})

	// vehicleInfeasibleTotal counts orienteering solves that came back
	// infeasible, by reason.
	vehicleInfeasibleTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "isrplan",
		Subsystem: "mission",
		Name:      "vehicle_infeasible_total",
		Help:      "Per-vehicle orienteering solves that returned infeasible, by reason.",
	}, []string{"reason"})

	// postOptOutcomes counts each post-optimizer's accept/reject outcomes.
	postOptOutcomes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "isrplan",
		Subsystem: "mission",
		Name:      "post_optimizer_total",
		Help:      "Post-optimizer accept/reject outcomes, by optimizer and outcome.",
	}, []string{"optimizer", "outcome"})
)

func init() {
	prometheus.MustRegister(stageDuration, matrixCacheOutcomes, vehicleInfeasibleTotal, postOptOutcomes)
}
