package thumbnail

import "testing"

func TestClassForSize(t *testing.T) {
	cases := []struct {
		size uint16
		want sizeClass
	}{
		{1, normalClass},
		{128, normalClass},
		{129, largeClass},
		{256, largeClass},
		{512, largeClass}, // above 256 still reuses the large class, no third tier
	}
	for _, c := range cases {
		if got := classForSize(c.size); got != c.want {
			t.Errorf("classForSize(%d) = %v, want %v", c.size, got, c.want)
		}
	}
}

func TestTaskAttachTracksNeededClasses(t *testing.T) {
	task := &Task{}
	h1 := &RequestHandle{size: 64}
	h2 := &RequestHandle{size: 256}

	task.attach(h1)
	if !task.needNormal || task.needLarge {
		t.Fatalf("after attaching size 64: needNormal=%v needLarge=%v", task.needNormal, task.needLarge)
	}

	task.attach(h2)
	if !task.needNormal || !task.needLarge {
		t.Fatalf("after attaching size 256: needNormal=%v needLarge=%v", task.needNormal, task.needLarge)
	}
	if h1.task != task || h2.task != task {
		t.Error("attach did not set handle.task back-reference")
	}
}

func TestTaskAllCancelled(t *testing.T) {
	task := &Task{}
	h1 := &RequestHandle{size: 32}
	h2 := &RequestHandle{size: 32}
	task.attach(h1)
	task.attach(h2)

	if task.allCancelled() {
		t.Fatal("allCancelled() = true before any handle was cancelled")
	}
	h1.cancelled.Store(true)
	if task.allCancelled() {
		t.Fatal("allCancelled() = true with only one of two handles cancelled")
	}
	h2.cancelled.Store(true)
	if !task.allCancelled() {
		t.Fatal("allCancelled() = false once every attached handle is cancelled")
	}
}

func TestTaskIsOpen(t *testing.T) {
	task := &Task{}
	if !task.isOpen() {
		t.Fatal("a fresh task should be open")
	}
	task.locked.Store(true)
	if task.isOpen() {
		t.Fatal("a locked task should not be open")
	}
	task.locked.Store(false)
	task.cancelled.Store(true)
	if task.isOpen() {
		t.Fatal("a cancelled task should not be open")
	}
}

func TestRequestHandleGetDataBeforeCompletion(t *testing.T) {
	h := &RequestHandle{}
	if _, ok := h.GetData(); ok {
		t.Fatal("GetData() ok=true before the handle completed")
	}
}

func TestRequestHandleSetResultNil(t *testing.T) {
	h := &RequestHandle{}
	h.setResult(nil)
	if !h.done.Load() {
		t.Fatal("setResult should mark the handle done even on failure")
	}
	if _, ok := h.GetData(); ok {
		t.Fatal("GetData() ok=true for a handle whose result is nil")
	}
}
