// Package coordinator runs the full decode: FMT discovery, segment
// planning, parallel dispatch, and timestamp-ordered merge (spec.md §4.5).
package coordinator

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dbehnke/adlog-decoder/pkg/decode"
	"github.com/dbehnke/adlog-decoder/pkg/format"
	"github.com/dbehnke/adlog-decoder/pkg/frame"
	"github.com/dbehnke/adlog-decoder/pkg/logger"
	"github.com/dbehnke/adlog-decoder/pkg/mmapfile"
	"github.com/dbehnke/adlog-decoder/pkg/planner"
	"github.com/dbehnke/adlog-decoder/pkg/wire"
)

// Mode selects how segments are dispatched to workers (spec.md §4.5 step 5).
type Mode int

const (
	// ModeParallelWorker gives each worker its own byte view and a cloned
	// registry: no shared mutable state between workers.
	ModeParallelWorker Mode = iota
	// ModeCooperativeThread shares one byte view and one registry across
	// workers, serializing each segment's decode behind a single mutex to
	// model the "global execution lock" spec.md describes for environments
	// where spawning parallel workers is expensive.
	ModeCooperativeThread
)

// State names the coordinator's position in its run lifecycle
// (spec.md §4.5: "Idle → Discovering → Planning → Dispatched → Merging → Done").
type State int

const (
	StateIdle State = iota
	StateDiscovering
	StatePlanning
	StateDispatched
	StateMerging
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateDiscovering:
		return "Discovering"
	case StatePlanning:
		return "Planning"
	case StateDispatched:
		return "Dispatched"
	case StateMerging:
		return "Merging"
	case StateDone:
		return "Done"
	case StateFailed:
		return "Failed"
	default:
		return "Unknown"
	}
}

// Options configures one run.
type Options struct {
	Workers     int
	Mode        Mode
	RoundFloats bool
	NameFilter  format.NameFilter
	Alphabet    *wire.Alphabet
	// Deadline arms the Watchdog; zero means no timeout (spec.md §5 default).
	Deadline time.Duration
	// SegmentObserver, if non-nil, is called after each segment finishes
	// decoding (the hook the ambient web status server uses to broadcast
	// run.segment.done events). index is 0-based, total is the segment count.
	SegmentObserver func(index, total int)
}

// Result is one completed run's output.
type Result struct {
	Messages []decode.Message
	Warnings []string
	Segments int
}

// PhaseObserver receives state transitions as a run progresses, the hook
// the ambient web status server uses to broadcast run.phase events. It may
// be nil.
type PhaseObserver func(State)

// Coordinator runs full decodes against one configuration. It holds no
// per-run state itself — each Run call is independent — so one Coordinator
// may be reused concurrently for unrelated files.
type Coordinator struct {
	log *logger.Logger
}

// New builds a Coordinator. log may be nil, in which case a discarding
// logger is used.
func New(log *logger.Logger) *Coordinator {
	if log == nil {
		log = logger.New(logger.Config{Level: "error"})
	}
	return &Coordinator{log: log.WithComponent("coordinator")}
}

// Run executes one full decode of path under opts, reporting phase
// transitions to observer (if non-nil).
func (c *Coordinator) Run(ctx context.Context, path string, opts Options, observer PhaseObserver) (*Result, error) {
	notify := func(s State) {
		if observer != nil {
			observer(s)
		}
	}

	watchdog := NewWatchdog()
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	watchdog.Arm(opts.Deadline, cancel)
	defer watchdog.Disarm()

	view, err := mmapfile.Open(path)
	if err != nil {
		notify(StateFailed)
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer view.Close()

	sharedWarnings := decode.NewWarningSink()

	notify(StateDiscovering)
	registry := c.discover(view, opts.Alphabet, sharedWarnings)

	notify(StatePlanning)
	scanner := frame.NewScanner(view.Bytes())
	validSyncs := scanner.ValidSyncs(registry)
	ranges := planner.Plan(validSyncs, opts.Workers, view.Size())

	notify(StateDispatched)
	segments, err := c.dispatch(runCtx, path, view, registry, ranges, opts)
	if err != nil {
		notify(StateFailed)
		return nil, err
	}

	notify(StateMerging)
	result := merge(segments)
	result.Warnings = append(result.Warnings, sharedWarnings.All()...)

	notify(StateDone)
	return result, nil
}

// discover runs the FMT pass and validation (spec.md §4.5 step 2).
func (c *Coordinator) discover(view mmapfile.ByteView, alphabet *wire.Alphabet, warnings *decode.WarningSink) *format.Registry {
	scanner := frame.NewScanner(view.Bytes())
	registry := format.NewRegistry()

	for _, offset := range scanner.FMTStarts() {
		d, ok := scanner.ParseFMTAt(offset, alphabet, warnings.Add)
		if ok {
			registry.Insert(d)
		}
	}
	registry.Validate(warnings.Add)

	if registry.Count() == 0 {
		c.log.Warn("no FMT records discovered", logger.String("detail", "every message will be unknown"))
	}
	return registry
}

// segmentResult is what one worker returns to the coordinator.
type segmentResult struct {
	index    int
	messages []decode.Message
	warnings []string
}

// dispatch runs every planned segment to completion, using errgroup for
// fan-out and first-error propagation — the idiomatic replacement for the
// teacher's hand-rolled errChan pattern in network.Server.Start.
func (c *Coordinator) dispatch(ctx context.Context, path string, sharedView mmapfile.ByteView, sharedRegistry *format.Registry, ranges []planner.Range, opts Options) ([]segmentResult, error) {
	results := make([]segmentResult, len(ranges))
	g, gctx := errgroup.WithContext(ctx)

	var cooperativeLock sync.Mutex

	for i, r := range ranges {
		i, r := i, r
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}

			switch opts.Mode {
			case ModeParallelWorker:
				workerView, err := mmapfile.Open(path)
				if err != nil {
					return fmt.Errorf("segment %d: opening worker view: %w", i, err)
				}
				defer workerView.Close()

				workerRegistry := sharedRegistry.Clone()
				warnings := decode.NewWarningSink()
				d := decode.NewDecoder(workerView.Bytes(), workerRegistry, opts.Alphabet, opts.NameFilter, opts.RoundFloats, warnings)
				messages := d.DecodeSegment(r.Start, r.End)
				results[i] = segmentResult{index: i, messages: messages, warnings: warnings.All()}
				if opts.SegmentObserver != nil {
					opts.SegmentObserver(i, len(ranges))
				}

			case ModeCooperativeThread:
				warnings := decode.NewWarningSink()
				d := decode.NewDecoder(sharedView.Bytes(), sharedRegistry, opts.Alphabet, opts.NameFilter, opts.RoundFloats, warnings)

				cooperativeLock.Lock()
				messages := d.DecodeSegment(r.Start, r.End)
				cooperativeLock.Unlock()

				results[i] = segmentResult{index: i, messages: messages, warnings: warnings.All()}
				if opts.SegmentObserver != nil {
					opts.SegmentObserver(i, len(ranges))
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("segment dispatch: %w", err)
	}
	return results, nil
}

// merge concatenates every segment's messages, in segment order, and
// stable-sorts the whole by TimeUS (spec.md §4.5 step 7 / §5: "ties
// preserve per-segment order").
func merge(segments []segmentResult) *Result {
	total := 0
	for _, s := range segments {
		total += len(s.messages)
	}

	merged := make([]decode.Message, 0, total)
	var warnings []string
	for _, s := range segments {
		merged = append(merged, s.messages...)
		warnings = append(warnings, s.warnings...)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].TimeUS() < merged[j].TimeUS()
	})

	return &Result{Messages: merged, Warnings: warnings, Segments: len(segments)}
}
