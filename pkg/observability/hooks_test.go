package observability

import (
	"context"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	// Analysis hooks
	a := NoopAnalysisHooks{}
	a.OnEnumerateStart(ctx, 10, 20)
	a.OnEnumerateComplete(ctx, 15, false, time.Second, nil)
	a.OnClusterStart(ctx, 15)
	a.OnClusterComplete(ctx, 3, time.Second, nil)
	a.OnPrioritizeStart(ctx, 15)
	a.OnPrioritizeComplete(ctx, 3, 2, 1, 9, time.Second, nil)
	a.OnRenderStart(ctx, []string{"svg"})
	a.OnRenderComplete(ctx, []string{"svg"}, time.Second, nil)

	// Cache hooks
	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "analysis")
	c.OnCacheMiss(ctx, "artifact")
	c.OnCacheSet(ctx, "artifact", 1024)

	// History hooks
	h := NoopHistoryHooks{}
	h.OnSave(ctx, "file", time.Second, nil)
	h.OnLoad(ctx, "mongo", true, time.Second)
}

func TestGlobalHooksRegistry(t *testing.T) {
	// Reset to known state
	Reset()

	// Verify defaults are noop
	if _, ok := Analysis().(NoopAnalysisHooks); !ok {
		t.Error("Analysis() should return NoopAnalysisHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}
	if _, ok := History().(NoopHistoryHooks); !ok {
		t.Error("History() should return NoopHistoryHooks by default")
	}

	// Set custom hooks
	customAnalysis := &testAnalysisHooks{}
	SetAnalysisHooks(customAnalysis)
	if Analysis() != customAnalysis {
		t.Error("SetAnalysisHooks should set custom hooks")
	}

	customCache := &testCacheHooks{}
	SetCacheHooks(customCache)
	if Cache() != customCache {
		t.Error("SetCacheHooks should set custom hooks")
	}

	customHistory := &testHistoryHooks{}
	SetHistoryHooks(customHistory)
	if History() != customHistory {
		t.Error("SetHistoryHooks should set custom hooks")
	}

	// Reset and verify
	Reset()
	if _, ok := Analysis().(NoopAnalysisHooks); !ok {
		t.Error("Reset() should restore NoopAnalysisHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()

	custom := &testAnalysisHooks{}
	SetAnalysisHooks(custom)

	// Setting nil should be ignored
	SetAnalysisHooks(nil)

	if Analysis() != custom {
		t.Error("SetAnalysisHooks(nil) should be ignored")
	}

	Reset()
}

// Test implementations
type testAnalysisHooks struct{ NoopAnalysisHooks }
type testCacheHooks struct{ NoopCacheHooks }
type testHistoryHooks struct{ NoopHistoryHooks }
