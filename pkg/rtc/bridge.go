package rtc

import (
	"log"
	"sync/atomic"
)

// CreateDescriptionFunc receives the result of a create-offer or
// create-answer operation. On success desc is non-nil and err is nil;
// on failure desc is nil and err is non-nil. ctx is the opaque value the
// caller passed to the operation, returned untouched.
type CreateDescriptionFunc func(ctx uintptr, desc *SessionDescription, err error)

// SetDescriptionFunc receives the result of a set-description
// operation. err is nil on success. ctx is the caller's opaque value.
type SetDescriptionFunc func(ctx uintptr, err error)

// createDescBridge delivers one create-description outcome to a
// caller-supplied function, exactly once. The engine may signal success
// and failure paths from different threads; the fired flag makes the
// first one win and drops the rest.
type createDescBridge struct {
	fn    CreateDescriptionFunc
	ctx   uintptr
	fired atomic.Bool
}

func newCreateDescBridge(fn CreateDescriptionFunc, ctx uintptr) *createDescBridge {
	return &createDescBridge{fn: fn, ctx: ctx}
}

func (b *createDescBridge) OnSuccess(desc SessionDescription) {
	if !b.fired.CompareAndSwap(false, true) {
		return
	}
	safeInvoke(func() { b.fn(b.ctx, &desc, nil) })
}

func (b *createDescBridge) OnFailure(err error) {
	if !b.fired.CompareAndSwap(false, true) {
		return
	}
	safeInvoke(func() { b.fn(b.ctx, nil, err) })
}

// applyDescBridge is the set-description counterpart of
// createDescBridge.
type applyDescBridge struct {
	fn    SetDescriptionFunc
	ctx   uintptr
	fired atomic.Bool
}

func newApplyDescBridge(fn SetDescriptionFunc, ctx uintptr) *applyDescBridge {
	return &applyDescBridge{fn: fn, ctx: ctx}
}

func (b *applyDescBridge) OnSuccess() {
	if !b.fired.CompareAndSwap(false, true) {
		return
	}
	safeInvoke(func() { b.fn(b.ctx, nil) })
}

func (b *applyDescBridge) OnFailure(err error) {
	if !b.fired.CompareAndSwap(false, true) {
		return
	}
	safeInvoke(func() { b.fn(b.ctx, err) })
}

// safeInvoke runs a caller-supplied callback and contains any panic.
// Completion callbacks fire on engine threads where an escaping panic
// would tear down the process.
func safeInvoke(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[librtc] panic recovered in callback: %v", r)
		}
	}()
	fn()
}
