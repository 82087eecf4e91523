package nes

import "github.com/golang/glog"

// Logger is the seam the core emulator logs runtime anomalies through
// (illegal opcodes executed as NOP, PPU register writes ignored before the
// ready gate, OAM DMA). Library code should never hard-wire a concrete
// logging backend's global flags, so Console accepts any Logger and
// defaults to one backed by glog, the logging library jyane-jnes (in the
// same retrieval pack) uses for its own CPU/PPU trace output.
type Logger interface {
	Infof(format string, args ...interface{})
	Warningf(format string, args ...interface{})
}

// glogLogger adapts glog's leveled, global logger to the Logger seam.
type glogLogger struct{}

func (glogLogger) Infof(format string, args ...interface{})    { glog.V(1).Infof(format, args...) }
func (glogLogger) Warningf(format string, args ...interface{}) { glog.Warningf(format, args...) }

// DefaultLogger is the glog-backed Logger used when a Console is created
// without an explicit one.
var DefaultLogger Logger = glogLogger{}

// nopLogger discards everything; used by tests that don't want glog's
// flag-parsing requirements in play.
type nopLogger struct{}

func (nopLogger) Infof(string, ...interface{})    {}
func (nopLogger) Warningf(string, ...interface{}) {}
