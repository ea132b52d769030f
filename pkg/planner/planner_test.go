package planner

import "testing"

func TestPlan_EmptySyncsFallsBackToWholeFile(t *testing.T) {
	ranges := Plan(nil, 8, 1234)
	if len(ranges) != 1 || ranges[0] != (Range{Start: 0, End: 1234}) {
		t.Fatalf("Plan(nil, 8, 1234) = %v, want [(0,1234)]", ranges)
	}
}

func TestPlan_MoreWorkersThanSyncs_CapsAtSyncCount(t *testing.T) {
	ranges := Plan([]int{0, 100}, 8, 1000)
	if len(ranges) != 2 {
		t.Fatalf("Plan([0,100], 8, 1000) = %v, want exactly 2 ranges", ranges)
	}
	if ranges[0].Start != 0 || ranges[0].End != 100 {
		t.Errorf("ranges[0] = %+v, want {0,100}", ranges[0])
	}
	if ranges[1].Start != 100 || ranges[1].End != 1000 {
		t.Errorf("ranges[1] = %+v, want {100,1000}", ranges[1])
	}
}

func TestPlan_Balanced_RemainderGoesToLeadingRanges(t *testing.T) {
	syncs := []int{0, 10, 20, 30, 40, 50, 60}
	ranges := Plan(syncs, 3, 1000)
	if len(ranges) != 3 {
		t.Fatalf("got %d ranges, want 3", len(ranges))
	}
	// 7 syncs / 3 parts = 2 each + remainder 1 -> first range takes 3 syncs.
	if ranges[0].Start != 0 || ranges[0].End != 30 {
		t.Errorf("ranges[0] = %+v, want {0,30} (3 syncs: 0,10,20)", ranges[0])
	}
	if ranges[1].Start != 30 || ranges[1].End != 50 {
		t.Errorf("ranges[1] = %+v, want {30,50} (2 syncs: 30,40)", ranges[1])
	}
	if ranges[2].Start != 50 || ranges[2].End != 1000 {
		t.Errorf("ranges[2] = %+v, want {50,1000} (2 syncs: 50,60)", ranges[2])
	}
}

func TestPlan_ContiguousAndCoversFile(t *testing.T) {
	syncs := []int{0, 5, 9, 14, 22, 31, 40, 58, 70, 90}
	fileSize := 1000
	for _, w := range []int{1, 2, 3, 4, 8, 16} {
		ranges := Plan(syncs, w, fileSize)
		if ranges[0].Start != 0 {
			t.Fatalf("w=%d: first range must start at 0, got %+v", w, ranges[0])
		}
		if ranges[len(ranges)-1].End != fileSize {
			t.Fatalf("w=%d: last range must end at file_size, got %+v", w, ranges[len(ranges)-1])
		}
		for i := 0; i < len(ranges)-1; i++ {
			if ranges[i].End != ranges[i+1].Start {
				t.Fatalf("w=%d: ranges[%d].End=%d != ranges[%d].Start=%d", w, i, ranges[i].End, i+1, ranges[i+1].Start)
			}
		}
	}
}

func TestPlan_SingleWorkerReturnsOneRange(t *testing.T) {
	ranges := Plan([]int{0, 10, 20}, 1, 100)
	if len(ranges) != 1 || ranges[0] != (Range{Start: 0, End: 100}) {
		t.Fatalf("Plan(..., 1, 100) = %v, want [(0,100)]", ranges)
	}
}

func TestPlan_ZeroOrNegativeWorkers_TreatedAsOne(t *testing.T) {
	ranges := Plan([]int{0, 10, 20}, 0, 100)
	if len(ranges) != 1 {
		t.Fatalf("Plan(..., 0, 100) = %v, want exactly 1 range", ranges)
	}
	ranges = Plan([]int{0, 10, 20}, -2, 100)
	if len(ranges) != 1 {
		t.Fatalf("Plan(..., -2, 100) = %v, want exactly 1 range", ranges)
	}
}
