package presenter

// CaptureModel provides enabled state access.
type CaptureModel interface {
	Enabled() bool
	SetEnabled(bool) bool
}

// LifecycleContract narrows what presenter needs from the capture layer.
type LifecycleContract interface {
	Start()
	Stop()
}

// OverlayClearer empties the overlay when capture stops.
type OverlayClearer interface{ Clear() }

// CaptureView updates UI elements affected by capture toggling.
type CaptureView interface {
	PreviewReset()
	SetRunning(bool)
}

// CapturePresenter owns presentation logic for toggling the frame source.
type CapturePresenter struct {
	model   CaptureModel
	service LifecycleContract
	overlay OverlayClearer
	view    CaptureView
}

// NewCapturePresenter wires the presenter. overlay may be nil.
func NewCapturePresenter(model CaptureModel, service LifecycleContract, overlay OverlayClearer, view CaptureView) *CapturePresenter {
	return &CapturePresenter{model: model, service: service, overlay: overlay, view: view}
}

func (c *CapturePresenter) ready() bool {
	return c != nil && c.model != nil && c.service != nil && c.view != nil
}

// Enable starts the frame source. Idempotent.
func (c *CapturePresenter) Enable() {
	if !c.ready() || c.model.Enabled() {
		return
	}
	c.service.Start()
	c.model.SetEnabled(true)
	c.view.SetRunning(true)
}

// Disable stops the frame source, clears the overlay and resets the
// preview. Idempotent.
func (c *CapturePresenter) Disable() {
	if !c.ready() || !c.model.Enabled() {
		return
	}
	c.service.Stop()
	c.model.SetEnabled(false)
	if c.overlay != nil {
		c.overlay.Clear()
	}
	c.view.PreviewReset()
	c.view.SetRunning(false)
}

// Toggle flips enabled state delegating to Enable/Disable.
func (c *CapturePresenter) Toggle() {
	if !c.ready() {
		return
	}
	if c.model.Enabled() {
		c.Disable()
		return
	}
	c.Enable()
}
