// Package services defines the shared error taxonomy used across the
// transcription pipeline. Failures are tagged with sentinel markers so the
// orchestrator and batch scheduler can classify them without inspecting
// message text.
package services
