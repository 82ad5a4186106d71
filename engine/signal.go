package engine

import (
	"os"
	"os/signal"
	"sync/atomic"
)

// CancelState is the cooperative cancellation flag every engine polls at
// macro-step boundaries, per the "signal handling as flag, not interrupt"
// design: a delivered signal never preempts an in-flight step, it only
// sets a flag the engine observes between steps.
type CancelState int32

const (
	// CancelNone is the default, run-as-normal state.
	CancelNone CancelState = iota
	// CancelTerminateRequested asks the engine to stop at the next
	// macro-step boundary.
	CancelTerminateRequested
	// CancelUserHook1Fired asks the engine to invoke a user-registered
	// side effect (e.g. "dump current state") without stopping.
	CancelUserHook1Fired
	// CancelUserHook2Fired is a second, independent user hook.
	CancelUserHook2Fired
)

// SignalController holds the cancellation flag and the handlers invoked
// when Check observes it set. It is safe for concurrent use: Request*
// methods may be called from a signal-handling goroutine while the engine
// calls Check from its own loop.
type SignalController struct {
	flag atomic.Int32

	onTerminate func()
	onUser1     func()
	onUser2     func()
}

// NewSignalController returns a controller in CancelNone.
func NewSignalController() *SignalController {
	return &SignalController{}
}

// OnTerminate registers the hook Check invokes once termination is
// requested, before reporting terminated=true.
func (c *SignalController) OnTerminate(f func()) { c.onTerminate = f }

// OnUserHook1 registers the first user-defined side effect hook.
func (c *SignalController) OnUserHook1(f func()) { c.onUser1 = f }

// OnUserHook2 registers the second user-defined side effect hook.
func (c *SignalController) OnUserHook2(f func()) { c.onUser2 = f }

// RequestTerminate sets the flag asking the engine to stop at the next
// macro-step boundary.
func (c *SignalController) RequestTerminate() { c.flag.Store(int32(CancelTerminateRequested)) }

// FireUserHook1 sets the flag asking the engine to run its first
// user-defined hook at the next macro-step boundary.
func (c *SignalController) FireUserHook1() { c.flag.Store(int32(CancelUserHook1Fired)) }

// FireUserHook2 sets the flag asking the engine to run its second
// user-defined hook at the next macro-step boundary.
func (c *SignalController) FireUserHook2() { c.flag.Store(int32(CancelUserHook2Fired)) }

// State reports the current cancellation state without consuming it.
func (c *SignalController) State() CancelState { return CancelState(c.flag.Load()) }

// Check is called by an engine at a macro-step boundary. It fires any
// pending user hook and clears it, or reports terminated=true without
// clearing the flag (terminate is terminal, it does not reset).
func (c *SignalController) Check() (terminated bool) {
	switch CancelState(c.flag.Load()) {
	case CancelTerminateRequested:
		if c.onTerminate != nil {
			c.onTerminate()
		}
		return true
	case CancelUserHook1Fired:
		if c.onUser1 != nil {
			c.onUser1()
		}
		c.flag.Store(int32(CancelNone))
	case CancelUserHook2Fired:
		if c.onUser2 != nil {
			c.onUser2()
		}
		c.flag.Store(int32(CancelNone))
	}
	return false
}

// InstallOSSignals wires os/signal.Notify to ctrl for process-wide use:
// terminateSig requests termination, user1Sig and user2Sig (either may be
// nil to skip) fire the corresponding user hooks. It returns a stop
// function that undoes the registration.
func InstallOSSignals(ctrl *SignalController, terminateSig, user1Sig, user2Sig os.Signal) func() {
	sigs := make([]os.Signal, 0, 3)
	sigs = append(sigs, terminateSig)
	if user1Sig != nil {
		sigs = append(sigs, user1Sig)
	}
	if user2Sig != nil {
		sigs = append(sigs, user2Sig)
	}

	ch := make(chan os.Signal, 1)
	signal.Notify(ch, sigs...)

	done := make(chan struct{})
	go func() {
		for {
			select {
			case s := <-ch:
				switch s {
				case terminateSig:
					ctrl.RequestTerminate()
				case user1Sig:
					ctrl.FireUserHook1()
				case user2Sig:
					ctrl.FireUserHook2()
				}
			case <-done:
				return
			}
		}
	}()

	return func() {
		signal.Stop(ch)
		close(done)
	}
}
