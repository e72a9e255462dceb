package orienteer

import (
	"context"
	"time"

	channerics "github.com/niceyeti/channerics/channels"
	"golang.org/x/sync/semaphore"

	"github.com/ksali98/isr-planner-sub001/isrcore"
)

// defaultPerVehicleTimeout bounds a vehicle's exact-solve attempt when the
// policy leaves PerVehicleTimeout unset.
const defaultPerVehicleTimeout = 2 * time.Second

// Job is one vehicle's orienteering work item for the pool.
type Job struct {
	Contract   isrcore.VehicleContract
	Candidates []isrcore.Target
}

// Outcome is one vehicle's pool result.
type Outcome struct {
	VehicleID isrcore.NodeID
	Route     isrcore.Route
	Feasible  bool
	Reason    string
}

// SolveAll dispatches one orienteering solve per job across a worker pool
// bounded to min(8, len(jobs)) concurrent vehicles by default, honoring
// policy.PerVehicleTimeout per vehicle and falling back to a pre-computed
// greedy baseline on expiry.
//
// ctx cancellation stops dispatching further workers and causes any
// in-flight vehicle still waiting on its deadline to return its baseline.
func SolveAll(ctx context.Context, jobs []Job, m isrcore.Matrix, policy isrcore.SolvePolicy, parallelism int) []Outcome {
	if parallelism <= 0 {
		parallelism = 8
	}
	if parallelism > len(jobs) && len(jobs) > 0 {
		parallelism = len(jobs)
	}
	if parallelism == 0 {
		return nil
	}

	sem := semaphore.NewWeighted(int64(parallelism))
	done := ctx.Done()

	chans := make([]<-chan Outcome, 0, len(jobs))
	for _, job := range jobs {
		chans = append(chans, vehicleWorker(ctx, sem, job, m, policy, done))
	}

	merged := channerics.Merge(done, chans...)
	results := make([]Outcome, 0, len(jobs))
	for r := range merged {
		results = append(results, r)
	}
	return results
}

// vehicleWorker runs one vehicle's solve on its own goroutine, gated by sem,
// and emits exactly one Outcome on the returned channel before closing it.
func vehicleWorker(ctx context.Context, sem *semaphore.Weighted, job Job, m isrcore.Matrix, policy isrcore.SolvePolicy, done <-chan struct{}) <-chan Outcome {
	ch := make(chan Outcome, 1)
	go func() {
		defer close(ch)
		if err := sem.Acquire(ctx, 1); err != nil {
			ch <- Outcome{VehicleID: job.Contract.ID, Feasible: false, Reason: "worker pool: " + err.Error()}
			return
		}
		defer sem.Release(1)

		result := solveVehicleWithDeadline(ctx, job, m, policy)
		select {
		case ch <- result:
		case <-done:
		}
	}()
	return ch
}

// solveVehicleWithDeadline computes a fast greedy baseline, then races an
// exact Held-Karp attempt against policy.PerVehicleTimeout (or
// defaultPerVehicleTimeout); the exact result wins if it lands first and
// succeeds, otherwise the baseline is returned.
func solveVehicleWithDeadline(ctx context.Context, job Job, m isrcore.Matrix, policy isrcore.SolvePolicy) Outcome {
	resolved := policy.Resolved()
	timeout := resolved.PerVehicleTimeout
	if timeout <= 0 {
		timeout = defaultPerVehicleTimeout
	}

	baselineRoute, baselineErr := SolveVehicle(job.Contract, job.Candidates, m, Options{MaxExactK: resolved.MaxCandidates, ForceGreedy: true})
	baseline := toOutcome(job.Contract.ID, baselineRoute, baselineErr)

	type exactResult struct {
		route isrcore.Route
		err   error
	}
	exactCh := make(chan exactResult, 1)
	go func() {
		route, err := SolveVehicle(job.Contract, job.Candidates, m, Options{MaxExactK: resolved.MaxCandidates})
		exactCh <- exactResult{route, err}
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case res := <-exactCh:
		if res.err == nil {
			return toOutcome(job.Contract.ID, res.route, nil)
		}
		return baseline
	case <-timer.C:
		return baseline
	case <-ctx.Done():
		return baseline
	}
}

func toOutcome(id isrcore.NodeID, route isrcore.Route, err error) Outcome {
	if err != nil {
		return Outcome{VehicleID: id, Feasible: false, Reason: err.Error()}
	}
	return Outcome{VehicleID: id, Route: route, Feasible: true}
}
