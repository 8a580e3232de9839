package view

import (
	"bytes"
	"lifegrid/src/universe"
	"strings"
	"sync"
	"testing"
	"time"
)

//syncBuffer is written by the progress bar goroutine and read by the test
type syncBuffer struct {
	mu sync.Mutex
	b  bytes.Buffer
}

func (s *syncBuffer) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.Write(p)
}

func (s *syncBuffer) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.String()
}

func TestConsoleOutReportsFinishedRun(t *testing.T) {
	o := universe.DefaultOptions
	o.Interval = time.Millisecond
	o.MaxGenerations = 20
	o.RandSeed = 3
	u, err := universe.New(&o)
	if err != nil {
		t.Fatal(err)
	}
	defer u.Close()

	var out syncBuffer
	c := NewConsoleOut(&out, u.Options())
	c.Start()
	u.RegisterViewer(c)
	if err := u.Seed(); err != nil {
		t.Fatal(err)
	}
	if err := u.Play(); err != nil {
		t.Fatal(err)
	}

	select {
	case <-c.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("run did not finish")
	}

	s := out.String()
	for _, want := range []string{"Running configuration:", "Dimension: 50 x 30", "Max generations: 20", "Finished:", "Generations: 20"} {
		if !strings.Contains(s, want) {
			t.Errorf("output is missing %q:\n%s", want, s)
		}
	}
}

func TestConsoleOutFinishesOnFirstGeneration(t *testing.T) {
	o := universe.DefaultOptions
	o.MaxGenerations = 1
	o.RandSeed = 3
	u, err := universe.New(&o)
	if err != nil {
		t.Fatal(err)
	}
	defer u.Close()

	var out syncBuffer
	c := NewConsoleOut(&out, u.Options())
	c.Start()
	u.RegisterViewer(c)
	if err := u.Play(); err != nil {
		t.Fatal(err)
	}

	select {
	case <-c.Done():
	case <-time.After(5 * time.Second):
		s := u.Snapshot()
		t.Fatalf("run did not finish, generation %v playing %v", s.Generation, s.Playing)
	}
	if s := out.String(); !strings.Contains(s, "Generations: 1") {
		t.Errorf("output is missing the summary:\n%s", s)
	}
}

func TestConsoleOutIgnoresRefreshBeforeRun(t *testing.T) {
	o := universe.DefaultOptions
	o.MaxGenerations = 5
	c := NewConsoleOut(&syncBuffer{}, o)
	c.Refresh(universe.Snapshot{})
	c.Start()
	c.Refresh(universe.Snapshot{Generation: 0})
	select {
	case <-c.Done():
		t.Fatal("Done closed before the simulation ran")
	default:
	}
	c.Refresh(universe.Snapshot{Playing: true, Generation: 1})
	c.Refresh(universe.Snapshot{Generation: 1})
	select {
	case <-c.Done():
	default:
		t.Fatal("Done not closed after the simulation stopped")
	}
}

func TestSpeedName(t *testing.T) {
	tests := map[time.Duration]string{
		1000 * time.Millisecond: "Slow",
		500 * time.Millisecond:  "Medium",
		100 * time.Millisecond:  "Fast",
		50 * time.Millisecond:   "Lightning",
		70 * time.Millisecond:   "custom",
	}
	for d, want := range tests {
		if got := speedName(d); got != want {
			t.Errorf("speedName(%v) = %q, expected %q", d, got, want)
		}
	}
}
