// Package sim provides the core continuous-time simulation engine for the
// queue-reactive limit order book model.
//
// # Reading Guide
//
// Start with these files to understand the simulation kernel:
//   - book.go: BookState, the queue sizes on both sides of the reference price
//   - intensity.go: event intensities as functions of the acted-on queue size
//   - clock.go: exact next-event sampling (Gillespie direct method)
//   - transition.go: event application and reference-price shifts
//   - simulator.go: the run loop, horizon handling and cancellation
//
// # Architecture
//
// The sim package holds the engine; collaborators live in sub-packages:
//   - sim/trace/: trajectory record types and CSV/JSON persistence
//   - sim/calib/: intensity estimation from historical event logs
//
// A single run is strictly sequential: every rate depends on the outcome of
// the previous event. Parallelism exists only across independent runs, see
// montecarlo.go.
package sim
