package cache

import (
	"errors"
	"testing"
	"time"
)

func TestGetOrLoadMissThenHit(t *testing.T) {
	s := NewStore[int](time.Hour)
	calls := 0
	loader := func() (int, error) {
		calls++
		return 42, nil
	}

	v, err := s.GetOrLoad("k", loader)
	if err != nil || v != 42 {
		t.Fatalf("first load: got %d err=%v", v, err)
	}
	v, err = s.GetOrLoad("k", loader)
	if err != nil || v != 42 {
		t.Fatalf("second load: got %d err=%v", v, err)
	}
	if calls != 1 {
		t.Fatalf("loader called %d times, expected 1", calls)
	}
}

func TestGetOrLoadErrorNotCached(t *testing.T) {
	s := NewStore[int](time.Hour)
	boom := errors.New("boom")
	_, err := s.GetOrLoad("k", func() (int, error) { return 0, boom })
	if !errors.Is(err, boom) {
		t.Fatalf("expected loader error, got %v", err)
	}
	if s.Size() != 0 {
		t.Fatalf("failed load must not populate cache, size=%d", s.Size())
	}
}

func TestExpiry(t *testing.T) {
	s := NewStore[string](10 * time.Millisecond)
	s.Set("k", "v")
	if _, ok := s.Get("k"); !ok {
		t.Fatal("expected hit before expiry")
	}
	time.Sleep(20 * time.Millisecond)
	if _, ok := s.Get("k"); ok {
		t.Fatal("expected miss after expiry")
	}
}

func TestDeletePrefix(t *testing.T) {
	s := NewStore[int](time.Hour)
	s.Set("report_1_a", 1)
	s.Set("report_1_b", 2)
	s.Set("report_2_a", 3)

	s.DeletePrefix("report_1_")

	if _, ok := s.Get("report_1_a"); ok {
		t.Fatal("report_1_a should be gone")
	}
	if _, ok := s.Get("report_1_b"); ok {
		t.Fatal("report_1_b should be gone")
	}
	if _, ok := s.Get("report_2_a"); !ok {
		t.Fatal("report_2_a should survive")
	}
}

func TestCleanExpired(t *testing.T) {
	s := NewStore[int](5 * time.Millisecond)
	s.Set("a", 1)
	s.Set("b", 2)
	time.Sleep(10 * time.Millisecond)
	if n := s.CleanExpired(); n != 2 {
		t.Fatalf("expected 2 reaped, got %d", n)
	}
	if s.Size() != 0 {
		t.Fatalf("expected empty store, size=%d", s.Size())
	}
}

func TestJanitor(t *testing.T) {
	s := NewStore[int](time.Millisecond)
	s.Set("a", 1)
	j := NewJanitor(s)
	j.Start(5 * time.Millisecond)
	time.Sleep(30 * time.Millisecond)
	j.Stop()
	if s.Size() != 0 {
		t.Fatalf("janitor did not reap expired entry, size=%d", s.Size())
	}
}
