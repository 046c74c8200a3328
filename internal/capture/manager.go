package capture

import (
	"log"

	"lecturecast/internal/opresult"
)

// Manager owns the recorders for the two hardware inputs backing a
// lecture: the professor camera and the screen capture. It is constructed
// once by the composition root and injected wherever recording control is
// needed.
type Manager struct {
	camera *Recorder
	screen *Recorder
	hub    *StatusHub
}

func NewManager(camera, screen *Recorder, hub *StatusHub) *Manager {
	return &Manager{camera: camera, screen: screen, hub: hub}
}

// Status describes the live state of both recorders.
type Status struct {
	CameraActive bool `json:"camera_active"`
	ScreenActive bool `json:"screen_active"`
	Recording    bool `json:"recording"`
}

func (m *Manager) Status() Status {
	camera := m.camera.IsActive()
	screen := m.screen.IsActive()
	return Status{
		CameraActive: camera,
		ScreenActive: screen,
		Recording:    camera || screen,
	}
}

// IsRecording reports whether any capture process is active.
func (m *Manager) IsRecording() bool {
	return m.camera.IsActive() || m.screen.IsActive()
}

// Start launches both feeds into dir. If the screen capture fails to
// start, the already-running camera capture is stopped so no half
// recording is left behind.
func (m *Manager) Start(dir, cameraFile, screenFile string) opresult.Result {
	if res := m.camera.Start(dir, cameraFile); !res.Ok() {
		return res
	}

	if res := m.screen.Start(dir, screenFile); !res.Ok() {
		log.Printf("CaptureManager: screen capture failed to start, stopping camera: %s", res.Message)
		m.camera.Stop()
		return res
	}

	m.notify()
	return opresult.Successf("recording started")
}

// Stop stops both feeds. A recorder that is already idle reports success,
// so a partial prior failure does not block cleanup of the other feed.
func (m *Manager) Stop() opresult.Result {
	cameraRes := m.camera.Stop()
	screenRes := m.screen.Stop()
	m.notify()

	if !cameraRes.Ok() {
		return cameraRes
	}
	if !screenRes.Ok() {
		return screenRes
	}
	return opresult.Successf("recording stopped")
}

func (m *Manager) notify() {
	if m.hub != nil {
		m.hub.BroadcastStatus(m.Status())
	}
}
