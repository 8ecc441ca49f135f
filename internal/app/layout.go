package app

// layoutDims holds computed layout dimensions for the UI.
type layoutDims struct {
	width        int
	height       int
	bodyHeight   int
	leftWidth    int
	rightWidth   int
	unstagedH    int
	stagedH      int
	commitH      int
	consoleH     int
	leftInnerW   int
	rightInnerW  int
	consoleInner int
}

const (
	headerHeight = 1
	footerHeight = 2
	// border plus horizontal padding of a pane
	paneFrameW  = 4
	paneFrameH  = 2
	commitPaneH = 4
)

// setWindowSize updates the window dimensions and applies the layout.
func (m *Model) setWindowSize(width, height int) {
	m.width = width
	m.height = height
	m.applyLayout(m.computeLayout())
}

func (m *Model) computeLayout() layoutDims {
	width := m.width
	height := m.height
	if width <= 0 {
		width = 120
	}
	if height <= 0 {
		height = 40
	}

	body := maxInt(height-headerHeight-footerHeight, 8)
	left := maxInt(width/2, 20)
	right := maxInt(width-left, 20)

	unstaged := body / 2
	staged := body - unstaged
	commit := commitPaneH
	console := maxInt(body-commit, 3)

	return layoutDims{
		width:        width,
		height:       height,
		bodyHeight:   body,
		leftWidth:    left,
		rightWidth:   right,
		unstagedH:    unstaged,
		stagedH:      staged,
		commitH:      commit,
		consoleH:     console,
		leftInnerW:   maxInt(left-paneFrameW, 1),
		rightInnerW:  maxInt(right-paneFrameW, 1),
		consoleInner: maxInt(console-paneFrameH-1, 1),
	}
}

func (m *Model) applyLayout(layout layoutDims) {
	m.commitInput.Width = maxInt(layout.rightInnerW-3, 1)
	m.branchInput.Width = maxInt(layout.width/2, 20)
	resized := m.console.Width != layout.rightInnerW
	m.console.Width = layout.rightInnerW
	m.console.Height = layout.consoleInner
	if resized {
		m.syncConsole()
	}
}
