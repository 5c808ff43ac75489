// Package dipchart converts dipstick depth measurements into liquid volume
// using a piecewise-linear calibration table.
package dipchart

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
)

// MMPerInch converts dip readings taken in inches.
const MMPerInch = 25.4

// Table is a fixed calibration table: parallel columns of depth (mm) and
// volume (liters), both strictly increasing. Shared read-only after load.
type Table struct {
	depths  []float64
	volumes []float64
}

// New validates the calibration columns and builds a Table. A malformed
// table is a configuration error and should abort startup.
func New(depths, volumes []float64) (*Table, error) {
	if len(depths) != len(volumes) {
		return nil, fmt.Errorf("calibration columns differ in length: %d depths vs %d volumes", len(depths), len(volumes))
	}
	if len(depths) < 2 {
		return nil, fmt.Errorf("calibration table needs at least 2 points, got %d", len(depths))
	}
	for i := 1; i < len(depths); i++ {
		if depths[i] <= depths[i-1] {
			return nil, fmt.Errorf("calibration depths not strictly increasing at index %d (%.1f <= %.1f)", i, depths[i], depths[i-1])
		}
		if volumes[i] <= volumes[i-1] {
			return nil, fmt.Errorf("calibration volumes not strictly increasing at index %d (%.1f <= %.1f)", i, volumes[i], volumes[i-1])
		}
	}
	t := &Table{
		depths:  append([]float64(nil), depths...),
		volumes: append([]float64(nil), volumes...),
	}
	return t, nil
}

// calibrationFile is the on-disk JSON layout of a calibration table.
type calibrationFile struct {
	MM  []float64 `json:"mm"`
	Ltr []float64 `json:"ltr"`
}

// LoadFile reads a calibration table from a JSON file with "mm" and "ltr"
// arrays. Called once at startup.
func LoadFile(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read calibration file: %w", err)
	}
	var cf calibrationFile
	if err := json.Unmarshal(data, &cf); err != nil {
		return nil, fmt.Errorf("failed to parse calibration file %s: %w", path, err)
	}
	t, err := New(cf.MM, cf.Ltr)
	if err != nil {
		return nil, fmt.Errorf("invalid calibration file %s: %w", path, err)
	}
	return t, nil
}

// VolumeAt maps a dip depth in mm to liters.
//
// Below the calibrated range the tank reads empty; above it the result
// saturates at the last calibrated volume rather than extrapolating.
// Within range the bracketing interval is interpolated linearly. The result
// is rounded to 1 decimal place.
func (t *Table) VolumeAt(depthMM float64) float64 {
	n := len(t.depths)
	if depthMM < t.depths[0] {
		return 0
	}
	if depthMM > t.depths[n-1] {
		return round1(t.volumes[n-1])
	}
	for i := 0; i < n-1; i++ {
		lo, hi := t.depths[i], t.depths[i+1]
		if depthMM > hi {
			continue
		}
		frac := (depthMM - lo) / (hi - lo)
		v := t.volumes[i] + (t.volumes[i+1]-t.volumes[i])*frac
		return round1(v)
	}
	return round1(t.volumes[n-1])
}

// VolumeAtInches is VolumeAt for dip readings taken in inches.
func (t *Table) VolumeAtInches(depthIn float64) float64 {
	return t.VolumeAt(depthIn * MMPerInch)
}

// MaxDepth returns the deepest calibrated point in mm.
func (t *Table) MaxDepth() float64 {
	return t.depths[len(t.depths)-1]
}

// MaxVolume returns the largest calibrated volume in liters.
func (t *Table) MaxVolume() float64 {
	return t.volumes[len(t.volumes)-1]
}

// Points returns the number of calibration points.
func (t *Table) Points() int {
	return len(t.depths)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
