package app

import (
	"context"

	"github.com/gogpu/trishade/render"
)

// Phase names the shell's lifecycle phase.
type Phase uint8

const (
	PhaseUninitialized Phase = iota
	PhaseBootstrapping
	PhaseReady
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseUninitialized:
		return "Uninitialized"
	case PhaseBootstrapping:
		return "Bootstrapping"
	case PhaseReady:
		return "Ready"
	case PhaseFailed:
		return "Failed"
	default:
		return "Unknown"
	}
}

// lifecycle is a closed sum type. Only the variants below implement it, so
// a renderer exists exactly when the shell is ready.
type lifecycle interface {
	phase() Phase
}

type uninitialized struct{}

type bootstrapping struct {
	win    render.Window
	result <-chan bootstrapResult
	cancel context.CancelFunc
	// done is closed once the bootstrap goroutine has stopped touching
	// the event loop.
	done <-chan struct{}
}

type ready struct {
	win      render.Window
	renderer Renderer
}

type failed struct {
	err error
}

type bootstrapResult struct {
	renderer Renderer
	err      error
}

func (uninitialized) phase() Phase  { return PhaseUninitialized }
func (*bootstrapping) phase() Phase { return PhaseBootstrapping }
func (*ready) phase() Phase         { return PhaseReady }
func (*failed) phase() Phase        { return PhaseFailed }
