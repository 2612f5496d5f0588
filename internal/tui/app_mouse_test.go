package tui

import (
	"testing"

	"github.com/theirongolddev/adburn/internal/tui/components"
)

func TestTabAtXMatchesTabWidths(t *testing.T) {
	n := len(components.Tabs)
	for active := 0; active < n; active++ {
		a := App{activeTab: active}
		pos := 0

		for i := 0; i < n; i++ {
			w := tabWidthForTest(i, active)
			x := pos + w/2 // midpoint inside this tab
			if got := a.tabAtX(x); got != i {
				t.Fatalf("active=%d x=%d -> tab=%d, want %d", active, x, got, i)
			}
			pos += w + 1 // separator
		}
		if got := a.tabAtX(pos + 10); got != -1 {
			t.Fatalf("active=%d: click past the last tab -> %d, want -1", active, got)
		}
	}
}

func tabWidthForTest(tabIdx, activeIdx int) int {
	nameWidths := []int{
		len("Overview"),
		len("Accounts"),
		len("Products"),
	}

	w := nameWidths[tabIdx] + 2 // horizontal padding
	if tabIdx != activeIdx {
		w += 2 // "[" and "]" around the shortcut
	}
	return w
}
