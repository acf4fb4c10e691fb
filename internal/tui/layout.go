// pattern: Functional Core

package tui

// Region defines a rectangular area within the terminal.
type Region struct {
	X      int // Left position (0-indexed)
	Y      int // Top position (0-indexed)
	Width  int // Width in cells
	Height int // Height in lines
}

// Layout holds computed regions for all UI components.
type Layout struct {
	Header    Region // App title + catalog summary
	List      Region // Project list (dynamic)
	Progress  Region // Detection progress bar (1 line while detecting)
	Separator Region // Separator above the log panel (1 line when open)
	Logs      Region // Log panel when open (60% of the content area)
	StatusBar Region // Status bar (1 line)
}

// Fixed heights for chrome elements
const (
	headerHeight    = 2 // Title + summary
	statusBarHeight = 1
	marginHeight    = 1 // Bottom margin
	progressHeight  = 1
	separatorHeight = 1
	minListHeight   = 4
)

// ComputeLayout calculates regions based on terminal dimensions.
// When logPanelOpen is true, the content area splits 40/60 vertically
// (list/logs). The progress row is carved out only while detecting.
func ComputeLayout(width, height int, logPanelOpen, detecting bool) Layout {
	fixedHeight := headerHeight + statusBarHeight + marginHeight
	if detecting {
		fixedHeight += progressHeight
	}
	if logPanelOpen {
		fixedHeight += separatorHeight
	}
	availableHeight := height - fixedHeight
	if availableHeight < minListHeight {
		availableHeight = minListHeight
	}

	listHeight, logsHeight := availableHeight, 0
	if logPanelOpen {
		listHeight = int(float64(availableHeight) * 0.4)
		if listHeight < 1 {
			listHeight = 1
		}
		logsHeight = availableHeight - listHeight
	}

	y := 0
	header := Region{X: 0, Y: y, Width: width, Height: headerHeight}
	y += headerHeight

	list := Region{X: 0, Y: y, Width: width, Height: listHeight}
	y += listHeight

	var progress Region
	if detecting {
		progress = Region{X: 0, Y: y, Width: width, Height: progressHeight}
		y += progressHeight
	}

	var separator, logs Region
	if logPanelOpen {
		separator = Region{X: 0, Y: y, Width: width, Height: separatorHeight}
		y += separatorHeight
		logs = Region{X: 0, Y: y, Width: width, Height: logsHeight}
		y += logsHeight
	}

	return Layout{
		Header:    header,
		List:      list,
		Progress:  progress,
		Separator: separator,
		Logs:      logs,
		StatusBar: Region{X: 0, Y: y, Width: width, Height: statusBarHeight},
	}
}

// ListHeight returns the height available to the list component.
func (l Layout) ListHeight() int {
	if l.List.Height < 1 {
		return 1
	}
	return l.List.Height
}
