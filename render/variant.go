// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import "fmt"

// Variant selects which of the two triangle pipelines is bound for a frame.
type Variant uint8

const (
	// VariantA draws the flat-colored triangle.
	VariantA Variant = iota

	// VariantB draws the position-shaded triangle.
	VariantB
)

// Toggle returns the other variant. It is total and cyclic with period 2.
func (v Variant) Toggle() Variant {
	switch v {
	case VariantA:
		return VariantB
	case VariantB:
		return VariantA
	default:
		panic(fmt.Sprintf("render: invalid variant %d", uint8(v)))
	}
}

// String returns "A" or "B".
func (v Variant) String() string {
	switch v {
	case VariantA:
		return "A"
	case VariantB:
		return "B"
	default:
		return fmt.Sprintf("Variant(%d)", uint8(v))
	}
}
