// Package display abstracts the photo frame's screen. The agent only needs
// to show images, a status line, and an offline indicator; how those are
// rendered depends on the build.
package display

import (
	log "github.com/sirupsen/logrus"
)

// Display is where the agent surfaces slideshow frames and status text.
type Display interface {
	// ShowImage renders the image stored at path.
	ShowImage(path string)
	// ShowPlaceholder renders the empty frame shown when no image is available.
	ShowPlaceholder()
	// SetStatus shows status text in the corner of the frame.
	SetStatus(status string)
	// ClearStatus hides the status text.
	ClearStatus()
	// SetOffline toggles the offline indicator.
	SetOffline(offline bool)
}

// LogDisplay writes display transitions to the log instead of rendering
// them. Used on headless hosts and in tests.
type LogDisplay struct{}

// NewLogDisplay creates a new LogDisplay instance.
func NewLogDisplay() *LogDisplay {
	return &LogDisplay{}
}

func (d *LogDisplay) ShowImage(path string) {
	log.Infof("Showing image: %s", path)
}

func (d *LogDisplay) ShowPlaceholder() {
	log.Info("Showing empty image")
}

func (d *LogDisplay) SetStatus(status string) {
	log.Infof("Status: %s", status)
}

func (d *LogDisplay) ClearStatus() {
	log.Debug("Status cleared")
}

func (d *LogDisplay) SetOffline(offline bool) {
	log.Debugf("Offline indicator visible: %t", offline)
}
