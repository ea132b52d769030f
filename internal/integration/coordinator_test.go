// Package integration exercises the full discover→plan→dispatch→merge
// pipeline against synthetic .bin files on disk, the way
// original_source/tests' end-to-end fixtures drive the whole parser rather
// than one function at a time.
package integration

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/dbehnke/adlog-decoder/internal/testhelpers"
	"github.com/dbehnke/adlog-decoder/pkg/coordinator"
	"github.com/dbehnke/adlog-decoder/pkg/format"
	"github.com/dbehnke/adlog-decoder/pkg/logger"
	"github.com/dbehnke/adlog-decoder/pkg/wire"
)

func writeSyntheticLog(t *testing.T, messages []testhelpers.TSTMessage) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "flight.bin")
	data := testhelpers.BuildSyntheticLog(messages)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("failed to write synthetic log: %v", err)
	}
	return path
}

func newAlphabet() *wire.Alphabet {
	arduToStruct, scaleFactors, roundFields := testhelpers.TSTAlphabetConfig()
	return wire.NewAlphabet(arduToStruct, scaleFactors, roundFields)
}

func TestCoordinator_EndToEnd_ParallelWorker(t *testing.T) {
	path := writeSyntheticLog(t, testhelpers.DefaultSyntheticMessages())

	coord := coordinator.New(logger.New(logger.Config{Level: "error"}))
	opts := coordinator.Options{
		Workers:  2,
		Mode:     coordinator.ModeParallelWorker,
		Alphabet: newAlphabet(),
	}

	var phases []coordinator.State
	result, err := coord.Run(context.Background(), path, opts, func(s coordinator.State) {
		phases = append(phases, s)
	})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if len(result.Messages) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(result.Messages))
	}
	for i := 1; i < len(result.Messages); i++ {
		if result.Messages[i].TimeUS() < result.Messages[i-1].TimeUS() {
			t.Errorf("messages not sorted by TimeUS at index %d", i)
		}
	}

	if phases[0] != coordinator.StateDiscovering || phases[len(phases)-1] != coordinator.StateDone {
		t.Errorf("unexpected phase sequence: %v", phases)
	}
}

func TestCoordinator_EndToEnd_CooperativeThread(t *testing.T) {
	path := writeSyntheticLog(t, testhelpers.DefaultSyntheticMessages())

	coord := coordinator.New(logger.New(logger.Config{Level: "error"}))
	opts := coordinator.Options{
		Workers:  3,
		Mode:     coordinator.ModeCooperativeThread,
		Alphabet: newAlphabet(),
	}

	result, err := coord.Run(context.Background(), path, opts, nil)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if len(result.Messages) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(result.Messages))
	}
}

func TestCoordinator_EndToEnd_NameFilterExcludesEverything(t *testing.T) {
	path := writeSyntheticLog(t, testhelpers.DefaultSyntheticMessages())

	coord := coordinator.New(logger.New(logger.Config{Level: "error"}))
	opts := coordinator.Options{
		Workers:    2,
		Mode:       coordinator.ModeParallelWorker,
		Alphabet:   newAlphabet(),
		NameFilter: format.ParseNameFilter("NOPE"),
	}

	result, err := coord.Run(context.Background(), path, opts, nil)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if len(result.Messages) != 0 {
		t.Errorf("expected 0 messages with excluding filter, got %d", len(result.Messages))
	}
}

func TestCoordinator_EndToEnd_SegmentObserverFires(t *testing.T) {
	path := writeSyntheticLog(t, testhelpers.DefaultSyntheticMessages())

	coord := coordinator.New(logger.New(logger.Config{Level: "error"}))
	var doneCount int
	opts := coordinator.Options{
		Workers:  2,
		Mode:     coordinator.ModeParallelWorker,
		Alphabet: newAlphabet(),
		SegmentObserver: func(index, total int) {
			doneCount++
		},
	}

	if _, err := coord.Run(context.Background(), path, opts, nil); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if doneCount == 0 {
		t.Error("expected SegmentObserver to fire at least once")
	}
}
