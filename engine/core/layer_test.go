package core

import (
	"io"
	"os"
	"reflect"
	"testing"
)

func TestMain(m *testing.M) {
	SetLogOutput(io.Discard)
	os.Exit(m.Run())
}

type recordingLayer struct {
	BaseLayer
	name    string
	log     *[]string
	handles bool
}

func (l *recordingLayer) OnUpdate(float64, InputReader) {
	*l.log = append(*l.log, l.name+".update")
}

func (l *recordingLayer) OnPhysicsUpdate(float64) {
	*l.log = append(*l.log, l.name+".physics")
}

func (l *recordingLayer) OnRender(DrawContext) {
	*l.log = append(*l.log, l.name+".render")
}

func (l *recordingLayer) OnEvent(EventContext) bool {
	*l.log = append(*l.log, l.name+".event")
	return l.handles
}

func (l *recordingLayer) OnClose() {
	*l.log = append(*l.log, l.name+".close")
}

func newStack(log *[]string, handles ...bool) *LayerStack {
	ls := NewLayerStack()
	for i, h := range handles {
		ls.Push(&recordingLayer{name: string(rune('A' + i)), log: log, handles: h})
	}
	return ls
}

func TestLayerStackForwardOrder(t *testing.T) {
	var log []string
	ls := newStack(&log, false, false, false)

	ls.Update(0.016, NewInputState())
	ls.PhysicsUpdate(1.0 / 60.0)
	ls.Render(nil)

	want := []string{
		"A.update", "B.update", "C.update",
		"A.physics", "B.physics", "C.physics",
		"A.render", "B.render", "C.render",
	}
	if !reflect.DeepEqual(log, want) {
		t.Errorf("call order = %v, want %v", log, want)
	}
}

func TestLayerStackDispatchStopsAtHandler(t *testing.T) {
	tests := []struct {
		name        string
		handles     []bool
		wantLog     []string
		wantHandled bool
	}{
		{
			name:        "top layer handles",
			handles:     []bool{false, false, true},
			wantLog:     []string{"C.event"},
			wantHandled: true,
		},
		{
			name:        "middle layer handles",
			handles:     []bool{false, true, false},
			wantLog:     []string{"C.event", "B.event"},
			wantHandled: true,
		},
		{
			name:        "nobody handles",
			handles:     []bool{false, false, false},
			wantLog:     []string{"C.event", "B.event", "A.event"},
			wantHandled: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var log []string
			ls := newStack(&log, tt.handles...)
			handled := ls.Dispatch(EventContext{Type: EVENT_CODE_KEY_PRESSED, Data: &KeyEvent{KeyCode: KEY_A}})
			if handled != tt.wantHandled {
				t.Errorf("handled = %v, want %v", handled, tt.wantHandled)
			}
			if !reflect.DeepEqual(log, tt.wantLog) {
				t.Errorf("dispatch order = %v, want %v", log, tt.wantLog)
			}
		})
	}
}

func TestLayerStackCloseAndClear(t *testing.T) {
	var log []string
	ls := newStack(&log, false, false)
	ls.Close()
	ls.Clear()

	if want := []string{"A.close", "B.close"}; !reflect.DeepEqual(log, want) {
		t.Errorf("close order = %v, want %v", log, want)
	}
	if ls.Len() != 0 {
		t.Errorf("Len after Clear = %d, want 0", ls.Len())
	}
}

func TestLayerStackIDs(t *testing.T) {
	ls := NewLayerStack()
	a := &recordingLayer{name: "A", log: new([]string)}
	id := ls.Push(a)

	got, err := ls.ID(a)
	if err != nil {
		t.Fatalf("ID: %v", err)
	}
	if got != id {
		t.Errorf("ID = %s, want %s", got, id)
	}
	if _, err := ls.ID(&recordingLayer{}); err == nil {
		t.Error("ID of a layer that was never pushed should fail")
	}
}

type pushingLayer struct {
	BaseLayer
	stack   *LayerStack
	pushed  bool
	updates *int
}

func (l *pushingLayer) OnUpdate(float64, InputReader) {
	*l.updates++
	if !l.pushed {
		l.pushed = true
		l.stack.Push(&pushingLayer{stack: l.stack, pushed: true, updates: l.updates})
	}
}

func TestLayerStackPushDuringIteration(t *testing.T) {
	ls := NewLayerStack()
	updates := 0
	ls.Push(&pushingLayer{stack: ls, updates: &updates})

	ls.Update(0, NewInputState())
	if updates != 1 {
		t.Errorf("updates on first pass = %d, want 1", updates)
	}
	ls.Update(0, NewInputState())
	if updates != 3 {
		t.Errorf("updates after second pass = %d, want 3", updates)
	}
}
