package dipchart

import (
	"os"
	"path/filepath"
	"testing"
)

func mustTable(t *testing.T, depths, volumes []float64) *Table {
	t.Helper()
	tbl, err := New(depths, volumes)
	if err != nil {
		t.Fatalf("New(%v, %v) error: %v", depths, volumes, err)
	}
	return tbl
}

func TestVolumeAt(t *testing.T) {
	tbl := mustTable(t, []float64{0, 10, 20}, []float64{0, 100, 300})

	cases := []struct {
		depth    float64
		expected float64
	}{
		{5, 50.0},
		{15, 200.0},
		{-5, 0},    // below range reads empty
		{25, 300},  // above range saturates, no extrapolation
		{20, 300},  // exact endpoint
		{0, 0},     // exact start
		{10, 100},  // exact interior point
		{12.5, 150},
	}
	for _, tc := range cases {
		if got := tbl.VolumeAt(tc.depth); got != tc.expected {
			t.Fatalf("VolumeAt(%v) expected %v, got %v", tc.depth, tc.expected, got)
		}
	}
}

func TestVolumeAtRounding(t *testing.T) {
	tbl := mustTable(t, []float64{0, 3}, []float64{0, 1})
	// 1/3 of a liter rounds to one decimal place
	if got := tbl.VolumeAt(1); got != 0.3 {
		t.Fatalf("VolumeAt(1) expected 0.3, got %v", got)
	}
}

func TestVolumeAtMonotonic(t *testing.T) {
	tbl := mustTable(t, []float64{0, 50, 120, 400, 900}, []float64{0, 210.5, 800, 3100, 9000})

	prev := -1.0
	for d := -20.0; d <= 1000; d += 7.3 {
		v := tbl.VolumeAt(d)
		if v < prev {
			t.Fatalf("VolumeAt not monotonic: VolumeAt(%v)=%v < previous %v", d, v, prev)
		}
		prev = v
	}
}

func TestVolumeAtInches(t *testing.T) {
	tbl := mustTable(t, []float64{0, 254}, []float64{0, 1000})
	// 5 inches = 127 mm, half the calibrated range
	if got := tbl.VolumeAtInches(5); got != 500 {
		t.Fatalf("VolumeAtInches(5) expected 500, got %v", got)
	}
}

func TestNewRejectsMalformedTables(t *testing.T) {
	cases := []struct {
		name    string
		depths  []float64
		volumes []float64
	}{
		{"too short", []float64{5}, []float64{10}},
		{"length mismatch", []float64{0, 10, 20}, []float64{0, 100}},
		{"descending depths", []float64{0, 20, 10}, []float64{0, 100, 300}},
		{"duplicate depth", []float64{0, 10, 10}, []float64{0, 100, 300}},
		{"flat volumes", []float64{0, 10, 20}, []float64{0, 100, 100}},
	}
	for _, tc := range cases {
		if _, err := New(tc.depths, tc.volumes); err == nil {
			t.Fatalf("New(%s) expected error, got nil", tc.name)
		}
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dipchart.json")
	if err := os.WriteFile(path, []byte(`{"mm":[0,100,200],"ltr":[0,500,1200]}`), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	tbl, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile error: %v", err)
	}
	if tbl.Points() != 3 {
		t.Fatalf("expected 3 points, got %d", tbl.Points())
	}
	if got := tbl.VolumeAt(150); got != 850 {
		t.Fatalf("VolumeAt(150) expected 850, got %v", got)
	}
	if tbl.MaxVolume() != 1200 || tbl.MaxDepth() != 200 {
		t.Fatalf("unexpected bounds: depth %v volume %v", tbl.MaxDepth(), tbl.MaxVolume())
	}
}

func TestLoadFileRejectsBadInput(t *testing.T) {
	dir := t.TempDir()

	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte(`{"mm":[0],"ltr":[0]}`), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	if _, err := LoadFile(bad); err == nil {
		t.Fatal("expected error for single-point table")
	}

	if _, err := LoadFile(filepath.Join(dir, "missing.json")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
