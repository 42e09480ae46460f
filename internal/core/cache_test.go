package core

import (
	"fmt"
	"testing"

	"carenova/pkg"
)

func TestCachePutGet(t *testing.T) {
	c := NewCache(4)
	report := pkg.AnalysisReport{PossibleConditions: []string{"Flu"}, Disclaimer: "d"}

	if _, ok := c.Get("q1"); ok {
		t.Fatal("unexpected hit on empty cache")
	}
	c.Put("q1", report)
	got, ok := c.Get("q1")
	if !ok {
		t.Fatal("expected hit after Put")
	}
	if got.PossibleConditions[0] != "Flu" {
		t.Errorf("cached report = %+v", got)
	}
}

func TestCacheEvictsLeastRecentlyUsed(t *testing.T) {
	c := NewCache(3)
	for i := 0; i < 3; i++ {
		c.Put(fmt.Sprintf("q%d", i), pkg.AnalysisReport{Confidence: i})
	}
	// Touch q0 so q1 becomes the eviction candidate.
	c.Get("q0")
	c.Put("q3", pkg.AnalysisReport{Confidence: 3})

	if _, ok := c.Get("q1"); ok {
		t.Error("q1 should have been evicted")
	}
	for _, key := range []string{"q0", "q2", "q3"} {
		if _, ok := c.Get(key); !ok {
			t.Errorf("%s should still be cached", key)
		}
	}
	if c.Len() != 3 {
		t.Errorf("Len() = %d, want 3", c.Len())
	}
}

func TestCacheUpdateExisting(t *testing.T) {
	c := NewCache(2)
	c.Put("q", pkg.AnalysisReport{Confidence: 1})
	c.Put("q", pkg.AnalysisReport{Confidence: 2})
	got, _ := c.Get("q")
	if got.Confidence != 2 {
		t.Errorf("Confidence = %d, want 2", got.Confidence)
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1", c.Len())
	}
}
