package observability

import (
	"context"
	"testing"
	"time"
)

func TestNoopHooks(t *testing.T) {
	ctx := context.Background()

	p := NoopPipelineHooks{}
	p.OnLoadStart(ctx, "GA.json")
	p.OnLoadComplete(ctx, "GA.json", 2679, time.Second, nil)
	p.OnDrawStart(ctx, 2679, 14)
	p.OnDrawComplete(ctx, DrawOutcome{Reason: "converged", Deviation: 512}, time.Second, nil)

	d := NoopDistrictingHooks{}
	d.OnPhaseStart(ctx, PhaseGrowth)
	d.OnPhaseComplete(ctx, PhaseBalance, 7, time.Millisecond)

	c := NoopCacheHooks{}
	c.OnCacheMiss(ctx, "plan")
	c.OnCacheSet(ctx, "plan", 1024)

	h := NoopAPIHooks{}
	h.OnRequest(ctx, "POST", "/v1/plans")
	h.OnResponse(ctx, "POST", "/v1/plans", 201, time.Second)
}

type testPipelineHooks struct{ NoopPipelineHooks }
type testDistrictingHooks struct{ NoopDistrictingHooks }
type testCacheHooks struct{ NoopCacheHooks }
type testAPIHooks struct{ NoopAPIHooks }

func TestRegistry(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("Pipeline() should default to no-op hooks")
	}
	if _, ok := Districting().(NoopDistrictingHooks); !ok {
		t.Error("Districting() should default to no-op hooks")
	}

	pipeline := &testPipelineHooks{}
	SetPipelineHooks(pipeline)
	SetPipelineHooks(nil)
	if Pipeline() != pipeline {
		t.Error("SetPipelineHooks(nil) should keep the registered hooks")
	}

	cache, api := &testCacheHooks{}, &testAPIHooks{}
	SetCacheHooks(cache)
	SetAPIHooks(api)
	if Cache() != cache || API() != api {
		t.Error("custom cache and API hooks should be registered")
	}

	Reset()
	if _, ok := API().(NoopAPIHooks); !ok {
		t.Error("Reset() should restore no-op hooks")
	}
}

func TestSetDistrictingHooksReturnsPrevious(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	first, second := &testDistrictingHooks{}, &testDistrictingHooks{}
	if _, ok := SetDistrictingHooks(first).(NoopDistrictingHooks); !ok {
		t.Error("first registration should return the no-op hooks")
	}
	if prev := SetDistrictingHooks(second); prev != first {
		t.Error("registration should return the hooks it replaced")
	}
	SetDistrictingHooks(first)
	if Districting() != first {
		t.Error("restoring the previous hooks should take effect")
	}
}
