package rtc

import (
	"errors"
	"sync"
	"testing"
)

func TestCreateDescBridgeSuccess(t *testing.T) {
	var (
		gotCtx  uintptr
		gotDesc *SessionDescription
		gotErr  error
		calls   int
	)
	b := newCreateDescBridge(func(ctx uintptr, desc *SessionDescription, err error) {
		calls++
		gotCtx, gotDesc, gotErr = ctx, desc, err
	}, 42)

	b.OnSuccess(SessionDescription{Type: SDPTypeOffer, SDP: "v=0"})

	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
	if gotCtx != 42 {
		t.Errorf("ctx = %d, want 42", gotCtx)
	}
	if gotErr != nil {
		t.Errorf("err = %v, want nil", gotErr)
	}
	if gotDesc == nil || gotDesc.SDP != "v=0" || gotDesc.Type != SDPTypeOffer {
		t.Errorf("desc = %+v, want offer with v=0", gotDesc)
	}
}

func TestCreateDescBridgeFiresOnce(t *testing.T) {
	tests := []struct {
		name   string
		first  func(b *createDescBridge)
		second func(b *createDescBridge)
	}{
		{
			"success then failure",
			func(b *createDescBridge) { b.OnSuccess(SessionDescription{}) },
			func(b *createDescBridge) { b.OnFailure(errors.New("late")) },
		},
		{
			"failure then success",
			func(b *createDescBridge) { b.OnFailure(errors.New("first")) },
			func(b *createDescBridge) { b.OnSuccess(SessionDescription{}) },
		},
		{
			"double success",
			func(b *createDescBridge) { b.OnSuccess(SessionDescription{}) },
			func(b *createDescBridge) { b.OnSuccess(SessionDescription{}) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			b := newCreateDescBridge(func(uintptr, *SessionDescription, error) {
				calls++
			}, 0)
			tt.first(b)
			tt.second(b)
			if calls != 1 {
				t.Errorf("calls = %d, want 1", calls)
			}
		})
	}
}

func TestApplyDescBridgeFiresOnce(t *testing.T) {
	calls := 0
	var gotErr error
	b := newApplyDescBridge(func(_ uintptr, err error) {
		calls++
		gotErr = err
	}, 7)

	want := errors.New("apply failed")
	b.OnFailure(want)
	b.OnSuccess()
	b.OnFailure(errors.New("other"))

	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
	if !errors.Is(gotErr, want) {
		t.Errorf("err = %v, want %v", gotErr, want)
	}
}

// Concurrent resolution from multiple goroutines must still deliver
// exactly one callback.
func TestBridgeConcurrentResolve(t *testing.T) {
	var mu sync.Mutex
	calls := 0
	b := newApplyDescBridge(func(uintptr, error) {
		mu.Lock()
		calls++
		mu.Unlock()
	}, 0)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				b.OnSuccess()
			} else {
				b.OnFailure(errors.New("race"))
			}
		}(i)
	}
	wg.Wait()

	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

// N in-flight operations each keep their own context.
func TestBridgeDistinctContexts(t *testing.T) {
	const n = 8
	got := make(map[uintptr]bool)
	var mu sync.Mutex

	bridges := make([]*createDescBridge, n)
	for i := range bridges {
		bridges[i] = newCreateDescBridge(func(ctx uintptr, _ *SessionDescription, _ error) {
			mu.Lock()
			got[ctx] = true
			mu.Unlock()
		}, uintptr(i+1))
	}
	for _, b := range bridges {
		b.OnSuccess(SessionDescription{})
	}

	if len(got) != n {
		t.Fatalf("distinct contexts = %d, want %d", len(got), n)
	}
	for i := 1; i <= n; i++ {
		if !got[uintptr(i)] {
			t.Errorf("missing ctx %d", i)
		}
	}
}

// A panicking callback must not escape to the engine thread, and must
// not break the fired guard.
func TestBridgePanicContained(t *testing.T) {
	calls := 0
	b := newCreateDescBridge(func(uintptr, *SessionDescription, error) {
		calls++
		panic("user callback exploded")
	}, 0)

	b.OnSuccess(SessionDescription{})
	b.OnFailure(errors.New("late"))

	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}
