package dispatch

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/jmylchreest/monotint/internal/colour"
	"github.com/jmylchreest/monotint/internal/recolor"
	"github.com/jmylchreest/monotint/internal/scene"
)

func testTree() (*scene.Element, []*scene.Element) {
	kids := []*scene.Element{
		{NodeID: "a", FillSlot: &scene.Slot{scene.Solid(colour.RGB{R: 0.9, G: 0.9, B: 0.9})}},
		{NodeID: "b", FillSlot: &scene.Slot{scene.Solid(colour.RGB{R: 0.1, G: 0.1, B: 0.1})}},
		{NodeID: "c", FillSlot: &scene.Slot{{Type: scene.PaintImage}}},
	}
	return &scene.Element{NodeID: "root", Nodes: kids}, kids
}

func eventTypes(events []Event) []EventType {
	types := make([]EventType, len(events))
	for i, ev := range events {
		types[i] = ev.Type
	}
	return types
}

func TestHandleRecolor(t *testing.T) {
	root, kids := testTree()
	d := New(recolor.DefaultConfig(), scene.StaticSelection{root})

	events := d.Handle(Message{Type: MsgRecolor})
	if diff := cmp.Diff([]EventType{EventNotify, EventResult}, eventTypes(events)); diff != "" {
		t.Fatalf("event types mismatch (-want +got):\n%s", diff)
	}
	if events[0].Message != "Recoloured objects: 2" {
		t.Errorf("notify = %q", events[0].Message)
	}
	if res := events[1].Result; res.Count != 2 || res.Strategy != "flat" {
		t.Errorf("result = %+v, want flat with count 2", res)
	}
	for _, k := range kids[:2] {
		if got := *(*k.FillSlot)[0].Color; got != colour.DefaultBase {
			t.Errorf("%s fill = %v, want base", k.NodeID, got)
		}
	}
}

func TestHandleRecolorShaded(t *testing.T) {
	root, _ := testTree()
	d := New(recolor.DefaultConfig(), scene.StaticSelection{root})

	events := d.Handle(Message{Type: MsgRecolorShaded})
	res := events[len(events)-1].Result
	if res == nil || res.Strategy != "shaded" || res.Count != 2 {
		t.Fatalf("result = %+v, want shaded with count 2", res)
	}
	if res.Assignments[0].NodeID != "b" {
		t.Errorf("rank 0 = %s, want darkest original b", res.Assignments[0].NodeID)
	}
}

func TestHandleEmptySelection(t *testing.T) {
	d := New(recolor.DefaultConfig(), scene.StaticSelection{})

	events := d.Handle(Message{Type: MsgRecolorShaded})
	if diff := cmp.Diff([]EventType{EventNotify, EventResult}, eventTypes(events)); diff != "" {
		t.Fatalf("event types mismatch (-want +got):\n%s", diff)
	}
	if events[1].Result.Status != recolor.StatusEmptySelection {
		t.Errorf("status = %v, want empty selection", events[1].Result.Status)
	}
}

func TestHandleIDs(t *testing.T) {
	root, kids := testTree()
	byID := map[string]scene.Node{}
	for _, k := range kids {
		byID[k.NodeID] = k
	}
	resolve := func(ids []string) ([]scene.Node, error) {
		var nodes []scene.Node
		for _, id := range ids {
			n, ok := byID[id]
			if !ok {
				return nil, fmt.Errorf("unknown node id: %s", id)
			}
			nodes = append(nodes, n)
		}
		return nodes, nil
	}

	t.Run("without resolver", func(t *testing.T) {
		d := New(recolor.DefaultConfig(), scene.StaticSelection{root})
		events := d.Handle(Message{Type: MsgRecolor, IDs: []string{"a"}})
		if diff := cmp.Diff([]EventType{EventError}, eventTypes(events)); diff != "" {
			t.Errorf("event types mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("known ids", func(t *testing.T) {
		d := New(recolor.DefaultConfig(), scene.StaticSelection{root}, WithResolver(resolve))
		events := d.Handle(Message{Type: MsgRecolor, IDs: []string{"a"}})
		if res := events[len(events)-1].Result; res == nil || res.Count != 1 {
			t.Errorf("result = %+v, want count 1", res)
		}
	})

	t.Run("unknown id", func(t *testing.T) {
		d := New(recolor.DefaultConfig(), scene.StaticSelection{root}, WithResolver(resolve))
		events := d.Handle(Message{Type: MsgRecolor, IDs: []string{"zz"}})
		if len(events) != 1 || events[0].Type != EventError || !strings.Contains(events[0].Message, "zz") {
			t.Errorf("events = %+v, want one error naming zz", events)
		}
	})
}

func TestHandleAfterWrite(t *testing.T) {
	root, _ := testTree()
	calls := 0
	d := New(recolor.DefaultConfig(), scene.StaticSelection{root}, WithAfterWrite(func() error {
		calls++
		return nil
	}))

	d.Handle(Message{Type: MsgRecolor})
	if calls != 1 {
		t.Errorf("afterWrite called %d times, want 1", calls)
	}

	empty := New(recolor.DefaultConfig(), scene.StaticSelection{}, WithAfterWrite(func() error {
		calls++
		return nil
	}))
	empty.Handle(Message{Type: MsgRecolor})
	if calls != 1 {
		t.Errorf("afterWrite ran for a run that changed nothing")
	}

	failing := New(recolor.DefaultConfig(), scene.StaticSelection{root}, WithAfterWrite(func() error {
		return errors.New("disk full")
	}))
	events := failing.Handle(Message{Type: MsgRecolor})
	if last := events[len(events)-1]; last.Type != EventError || !strings.Contains(last.Message, "disk full") {
		t.Errorf("last event = %+v, want save error", last)
	}
}

func TestHandlePreview(t *testing.T) {
	d := New(recolor.DefaultConfig(), nil)

	tests := []struct {
		name      string
		count     int
		wantType  EventType
		wantCount int
	}{
		{name: "default count", count: 0, wantType: EventPalette, wantCount: 5},
		{name: "explicit count", count: 3, wantType: EventPalette, wantCount: 3},
		{name: "too many", count: 1000, wantType: EventError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events := d.Handle(Message{Type: MsgPreview, Count: tt.count})
			if len(events) != 1 || events[0].Type != tt.wantType {
				t.Fatalf("events = %+v, want one %s", events, tt.wantType)
			}
			if len(events[0].Colours) != tt.wantCount {
				t.Errorf("colours = %d, want %d", len(events[0].Colours), tt.wantCount)
			}
		})
	}
}

func TestHandleCancelAndUnknown(t *testing.T) {
	d := New(recolor.DefaultConfig(), nil)

	if ev := d.Handle(Message{Type: "explode"}); ev[0].Type != EventError {
		t.Errorf("unknown type event = %+v, want error", ev[0])
	}
	if ev := d.Handle(Message{Type: MsgResize, Height: 400}); ev[0].Type != EventAck {
		t.Errorf("resize event = %+v, want ack", ev[0])
	}
	if ev := d.Handle(Message{Type: MsgCancel}); ev[0].Type != EventClosed || !d.Closed() {
		t.Errorf("cancel event = %+v closed=%v, want closed", ev[0], d.Closed())
	}
	if ev := d.Handle(Message{Type: MsgPreview}); ev[0].Type != EventError {
		t.Errorf("event after cancel = %+v, want error", ev[0])
	}
}

func TestServe(t *testing.T) {
	root, _ := testTree()
	d := New(recolor.DefaultConfig(), scene.StaticSelection{root})

	input := strings.Join([]string{
		`{"type":"preview","count":2}`,
		``,
		`not json`,
		`{"type":"recolor-shaded"}`,
		`{"type":"cancel"}`,
		`{"type":"recolor"}`,
	}, "\n")

	var out strings.Builder
	if err := d.Serve(context.Background(), strings.NewReader(input), &out); err != nil {
		t.Fatalf("Serve() error = %v", err)
	}

	var got []EventType
	scanner := bufio.NewScanner(strings.NewReader(out.String()))
	for scanner.Scan() {
		var ev Event
		if err := json.Unmarshal(scanner.Bytes(), &ev); err != nil {
			t.Fatalf("output line %q is not an event: %v", scanner.Text(), err)
		}
		got = append(got, ev.Type)
	}

	// Nothing after cancel is processed.
	want := []EventType{EventPalette, EventError, EventNotify, EventResult, EventClosed}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("event stream mismatch (-want +got):\n%s", diff)
	}
}

func TestServeContextCancelled(t *testing.T) {
	d := New(recolor.DefaultConfig(), nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out strings.Builder
	err := d.Serve(ctx, strings.NewReader(`{"type":"preview"}`+"\n"), &out)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Serve() error = %v, want context.Canceled", err)
	}
	if out.Len() != 0 {
		t.Errorf("Serve() wrote %q after cancellation", out.String())
	}
}

func TestServeCancelWhileReading(t *testing.T) {
	d := New(recolor.DefaultConfig(), nil)
	pr, pw := io.Pipe()
	defer pw.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- d.Serve(ctx, pr, io.Discard)
	}()

	// Nothing is ever written, so the read stays blocked.
	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Serve() error = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Serve() did not return after cancellation")
	}
}
