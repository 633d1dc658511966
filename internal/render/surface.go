package render

import (
	"sync/atomic"

	"gocv.io/x/gocv"
)

// WindowTitle is the title of the preview window.
const WindowTitle = "Hand Steering Control"

// Surface displays annotated frames and reports when the user asked to quit.
type Surface interface {
	// Show displays frame. The frame may be modified.
	Show(frame *gocv.Mat) error

	// Quit is polled once per frame.
	Quit() bool

	Close() error
}

// Window shows frames in an OpenCV window, mirrored like a selfie view.
// Pressing q requests quit.
type Window struct {
	window  *gocv.Window
	mirror  bool
	flipped gocv.Mat
	quit    bool
}

// NewWindow opens the preview window.
func NewWindow(mirror bool) *Window {
	return &Window{
		window:  gocv.NewWindow(WindowTitle),
		mirror:  mirror,
		flipped: gocv.NewMat(),
	}
}

// Show displays frame and pumps window events for 5 ms.
func (w *Window) Show(frame *gocv.Mat) error {
	if w.mirror {
		gocv.Flip(*frame, &w.flipped, 1)
		w.window.IMShow(w.flipped)
	} else {
		w.window.IMShow(*frame)
	}

	if key := w.window.WaitKey(5); key&0xFF == 'q' {
		w.quit = true
	}
	return nil
}

// Quit reports whether q was pressed.
func (w *Window) Quit() bool {
	return w.quit
}

// Close destroys the window.
func (w *Window) Close() error {
	w.flipped.Close()
	return w.window.Close()
}

// Headless discards frames. It quits only when RequestQuit is called.
type Headless struct {
	shown atomic.Int64
	quit  atomic.Bool
}

// NewHeadless creates a surface for running without a window.
func NewHeadless() *Headless {
	return &Headless{}
}

// Show counts the frame.
func (h *Headless) Show(*gocv.Mat) error {
	h.shown.Add(1)
	return nil
}

// Quit reports whether RequestQuit was called.
func (h *Headless) Quit() bool {
	return h.quit.Load()
}

// RequestQuit asks the loop to stop after the current frame.
func (h *Headless) RequestQuit() {
	h.quit.Store(true)
}

// Shown returns the number of frames shown.
func (h *Headless) Shown() int64 {
	return h.shown.Load()
}

// Close is a no-op.
func (h *Headless) Close() error {
	return nil
}
