package txmanager

import (
	"sync/atomic"
)

const (
	// feeBumpStep climbs quickly under congestion; feeRelaxStep steps back
	// down slowly to avoid oscillating once congestion subsides.
	feeBumpStep      = 3
	feeRelaxStep     = 1
	minFeeMultiplier = 1
)

// FeeController maintains the process-wide multiplier applied to base
// priority-fee estimates. One controller is constructed at startup and
// shared by every chain adapter; concurrent bumps and relaxes from
// unrelated in-flight transactions interleave freely.
type FeeController struct {
	multiplier atomic.Int64
}

// NewFeeController returns a controller with the multiplier at its floor.
func NewFeeController() *FeeController {
	fc := &FeeController{}
	fc.multiplier.Store(minFeeMultiplier)
	return fc
}

// Bump raises the multiplier after a confirmation timed out. Returns the
// new multiplier.
func (fc *FeeController) Bump() int64 {
	return fc.multiplier.Add(feeBumpStep)
}

// Relax lowers the multiplier after a successful confirmation, never below
// the floor. Returns the new multiplier.
func (fc *FeeController) Relax() int64 {
	for {
		current := fc.multiplier.Load()
		next := current - feeRelaxStep
		if next < minFeeMultiplier {
			next = minFeeMultiplier
		}
		if fc.multiplier.CompareAndSwap(current, next) {
			return next
		}
	}
}

// Multiplier returns the current multiplier, clamped to the floor.
func (fc *FeeController) Multiplier() int64 {
	m := fc.multiplier.Load()
	if m < minFeeMultiplier {
		return minFeeMultiplier
	}
	return m
}

// Effective applies the multiplier to a base fee estimate.
func (fc *FeeController) Effective(baseFee uint64) uint64 {
	return baseFee * uint64(fc.Multiplier())
}
