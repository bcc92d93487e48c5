package batch

import "xscribe/internal/result"

// Listener receives scheduler events. Calls arrive on the worker
// goroutine; events for one file always arrive in stage order.
type Listener interface {
	FileStarted(index int, name string)
	FileProgress(index int, stage, message string, percent float64)
	FileCompleted(index int, res *result.Result)
	FileFailed(index int, message string)
	BatchCompleted()
}

// NopListener discards every event.
type NopListener struct{}

func (NopListener) FileStarted(int, string)                   {}
func (NopListener) FileProgress(int, string, string, float64) {}
func (NopListener) FileCompleted(int, *result.Result)         {}
func (NopListener) FileFailed(int, string)                    {}
func (NopListener) BatchCompleted()                           {}
