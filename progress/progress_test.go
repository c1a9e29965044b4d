package progress

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"
)

func TestReporter_FillsIdentity(t *testing.T) {
	col := &Collector{}
	fixed := time.Date(2026, 8, 24, 10, 0, 0, 0, time.UTC)
	r := NewReporter("cmd_1", "scan_text_nodes", []Sink{col},
		WithClock(func() time.Time { return fixed }))

	r.Emit(context.Background(), Event{Status: StatusInProgress, Progress: 40})

	events := col.Events()
	ev := events[0]
	if ev.CommandID != "cmd_1" || ev.CommandType != "scan_text_nodes" {
		t.Fatalf("identity: %+v", ev)
	}
	if !ev.Timestamp.Equal(fixed) {
		t.Fatalf("timestamp: %v", ev.Timestamp)
	}
}

func TestReporter_MonotonicProgress(t *testing.T) {
	col := &Collector{}
	r := NewReporter("cmd_1", "t", []Sink{col})
	ctx := context.Background()

	r.Emit(ctx, Event{Status: StatusInProgress, Progress: 50})
	r.Emit(ctx, Event{Status: StatusInProgress, Progress: 30}) // late event, clamped
	r.Emit(ctx, Event{Status: StatusInProgress, Progress: 80})

	events := col.Events()
	if events[1].Progress != 50 {
		t.Fatalf("regressing progress not clamped: %d", events[1].Progress)
	}
	if events[2].Progress != 80 {
		t.Fatalf("forward progress blocked: %d", events[2].Progress)
	}
}

func TestReporter_ErrorKeepsProgress(t *testing.T) {
	col := &Collector{}
	r := NewReporter("cmd_1", "t", []Sink{col})
	ctx := context.Background()

	r.Emit(ctx, Event{Status: StatusInProgress, Progress: 60})
	r.Error(ctx, "host went away")

	events := col.Events()
	last := events[len(events)-1]
	if last.Status != StatusError || last.Progress != 60 {
		t.Fatalf("error event: %+v", last)
	}
	if last.Message != "host went away" {
		t.Fatalf("message: %q", last.Message)
	}
}

func TestReporter_Lifecycle(t *testing.T) {
	col := &Collector{}
	r := NewReporter("cmd_1", "t", []Sink{col})
	ctx := context.Background()

	r.Started(ctx, 12, "begin")
	r.Completed(ctx, 12, 12, map[string]int{"n": 12}, "done")

	events := col.Events()
	if events[0].Status != StatusStarted || events[0].Progress != 0 || events[0].TotalItems != 12 {
		t.Fatalf("started: %+v", events[0])
	}
	if events[1].Status != StatusCompleted || events[1].Progress != 100 || events[1].ProcessedItems != 12 {
		t.Fatalf("completed: %+v", events[1])
	}
	if events[1].Payload == nil {
		t.Fatal("completed payload dropped")
	}
}

func TestStdout_Envelope(t *testing.T) {
	var buf bytes.Buffer
	s := NewStdout(&buf)
	r := NewReporter("cmd_1", "t", []Sink{s})

	r.Started(context.Background(), 1, "begin")

	var env struct {
		Type string `json:"type"`
		Data Event  `json:"data"`
	}
	if err := json.Unmarshal(buf.Bytes(), &env); err != nil {
		t.Fatalf("unmarshal stdout line: %v", err)
	}
	if env.Type != "command_progress" {
		t.Fatalf("envelope type: %q", env.Type)
	}
	if env.Data.CommandID != "cmd_1" {
		t.Fatalf("event: %+v", env.Data)
	}
}

func TestCallback(t *testing.T) {
	var got Event
	cb := Callback(func(_ context.Context, ev Event) error {
		got = ev
		return nil
	})
	r := NewReporter("cmd_1", "t", []Sink{cb})
	r.Started(context.Background(), 2, "x")
	if got.CommandID != "cmd_1" || got.TotalItems != 2 {
		t.Fatalf("callback event: %+v", got)
	}
}
