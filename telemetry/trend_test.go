package telemetry

import "testing"

func TestTrendAppendAndValues(t *testing.T) {
	tr := NewTrend(3)
	if tr.Len() != 0 || tr.Cap() != 3 {
		t.Fatalf("fresh trend: Len=%d Cap=%d", tr.Len(), tr.Cap())
	}

	tr.Append(1)
	tr.Append(2)
	if got := tr.Values(); len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Errorf("Values() = %v, want [1 2]", got)
	}
	if tr.Last() != 2 {
		t.Errorf("Last() = %v, want 2", tr.Last())
	}
}

func TestTrendEvictsOldest(t *testing.T) {
	tr := NewTrend(3)
	for i := 1; i <= 5; i++ {
		tr.Append(float64(i))
	}

	if tr.Len() != 3 {
		t.Errorf("Len() = %d, want 3", tr.Len())
	}
	got := tr.Values()
	want := []float64{3, 4, 5}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Values() = %v, want %v", got, want)
			break
		}
	}
	if tr.Last() != 5 {
		t.Errorf("Last() = %v, want 5", tr.Last())
	}
}

func TestTrendEmptyLast(t *testing.T) {
	if got := NewTrend(4).Last(); got != 0 {
		t.Errorf("Last() on empty trend = %v, want 0", got)
	}
}

func TestTrendRestore(t *testing.T) {
	tr := NewTrend(3)
	tr.Append(9)

	tr.Restore([]float64{1, 2, 3, 4, 5})
	got := tr.Values()
	want := []float64{3, 4, 5}
	if len(got) != len(want) {
		t.Fatalf("Values() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Values() = %v, want %v", got, want)
		}
	}

	// restoring fewer samples than capacity keeps them all
	tr.Restore([]float64{7})
	if tr.Len() != 1 || tr.Last() != 7 {
		t.Errorf("after short restore: Len=%d Last=%v", tr.Len(), tr.Last())
	}
}

func TestTrendValuesIsACopy(t *testing.T) {
	tr := NewTrend(2)
	tr.Append(1)
	vals := tr.Values()
	vals[0] = 42
	if tr.Values()[0] != 1 {
		t.Error("Values() exposed the internal buffer")
	}
}
