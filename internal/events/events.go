// package events contains message types shared between the web, tui and cli packages.
package events

import "projdex/internal/project"

// DetectProgressMsg reports batch classification progress as a percentage.
type DetectProgressMsg struct {
	Percent int
}

// CatalogUpdatedMsg is sent after the catalog has been written.
type CatalogUpdatedMsg struct {
	Projects []project.Project
}

// ScanFinishedMsg is sent when a rescan completes. Err is nil on success.
type ScanFinishedMsg struct {
	Projects []project.Project
	Err      error
}

// DetectFinishedMsg is sent when a batch classification pass completes.
type DetectFinishedMsg struct {
	Projects []project.Project
	Err      error
}

// WebListenURLMsg is sent when the web server starts listening.
type WebListenURLMsg struct{ URL string }
