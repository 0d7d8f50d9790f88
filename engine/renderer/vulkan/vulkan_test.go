package vulkan

import (
	"testing"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/tessera/engine/renderer"
)

func TestDeletionQueueWaitsForSubmissions(t *testing.T) {
	var q deletionQueue
	var released []int
	q.push(0, func() { released = append(released, 0) })
	q.push(1, func() { released = append(released, 1) })
	q.push(3, func() { released = append(released, 3) })

	if n := q.flush(0); n != 0 {
		t.Errorf("flush(0) released %d, want 0", n)
	}
	if n := q.flush(2); n != 2 {
		t.Errorf("flush(2) released %d, want 2", n)
	}
	if q.len() != 1 {
		t.Errorf("queue holds %d, want 1", q.len())
	}
	if n := q.drain(); n != 1 || len(released) != 3 || released[2] != 3 {
		t.Errorf("drain = %d, released = %v", n, released)
	}
}

func TestGrownSize(t *testing.T) {
	cases := []struct{ current, need, want uint64 }{
		{64, 10, 64},
		{64, 65, 128},
		{64, 1000, 1024},
		{0, 3, 4},
	}
	for _, c := range cases {
		if got := grownSize(c.current, c.need); got != c.want {
			t.Errorf("grownSize(%d, %d) = %d, want %d", c.current, c.need, got, c.want)
		}
	}
}

func TestChoosePresentMode(t *testing.T) {
	modes := []vk.PresentMode{vk.PresentModeImmediate, vk.PresentModeMailbox, vk.PresentModeFifo}
	if got := choosePresentMode(modes, true); got != vk.PresentModeFifo {
		t.Errorf("vsync mode = %d, want fifo", got)
	}
	if got := choosePresentMode(modes, false); got != vk.PresentModeMailbox {
		t.Errorf("mode = %d, want mailbox", got)
	}
	if got := choosePresentMode([]vk.PresentMode{vk.PresentModeImmediate}, false); got != vk.PresentModeFifo {
		t.Errorf("fallback mode = %d, want fifo", got)
	}
}

func TestPresentStatus(t *testing.T) {
	cases := []struct {
		result vk.Result
		want   renderer.PresentStatus
	}{
		{vk.Success, renderer.PresentOK},
		{vk.Suboptimal, renderer.PresentSuboptimal},
		{vk.ErrorOutOfDate, renderer.PresentOutOfDate},
	}
	for _, c := range cases {
		got, err := presentStatus(c.result)
		if err != nil || got != c.want {
			t.Errorf("presentStatus(%d) = %s, %v; want %s", c.result, got, err, c.want)
		}
	}
	if _, err := presentStatus(vk.ErrorDeviceLost); err == nil {
		t.Error("device lost should be an error")
	}
}

func TestSliceBytes(t *testing.T) {
	if b := sliceBytes([]uint32{1, 2, 3}); len(b) != 12 || b[0] != 1 || b[4] != 2 {
		t.Errorf("sliceBytes = %v", b)
	}
	if sliceBytes([]uint32(nil)) != nil {
		t.Error("empty slice should give nil")
	}
}

func TestVulkanName(t *testing.T) {
	raw := make([]byte, 16)
	copy(raw, "VK_LAYER_X")
	if got := vulkanName(raw); got != "VK_LAYER_X" {
		t.Errorf("vulkanName = %q", got)
	}
	if got := VulkanSafeString("main"); got != "main\x00" {
		t.Errorf("VulkanSafeString = %q", got)
	}
}
