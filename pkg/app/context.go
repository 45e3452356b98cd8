package app

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/grailbio/base/log"
	"github.com/spf13/afero"
)

// Context holds application-wide configuration and state
type Context struct {
	context.Context

	// Filesystem the handlers read databases and write artifacts on
	Fs afero.Fs

	// Output preferences
	OutputFormat string
	Verbose      bool
	Quiet        bool

	// Diagnostics go to Stderr, results go to Stdout
	Stdout io.Writer
	Stderr io.Writer

	// Progress reporting
	ProgressCallback func(update ProgressUpdate)
}

// NewContext creates a new application context
func NewContext() *Context {
	return &Context{
		Context:      context.Background(),
		Fs:           afero.NewOsFs(),
		OutputFormat: "table",
		Stdout:       os.Stdout,
		Stderr:       os.Stderr,
	}
}

// WithContext returns a copy of c bound to ctx
func (c *Context) WithContext(ctx context.Context) *Context {
	newCtx := *c
	newCtx.Context = ctx
	return &newCtx
}

// SetProgress sets the progress callback function
func (c *Context) SetProgress(callback func(ProgressUpdate)) {
	c.ProgressCallback = callback
}

// Progress reports progress if callback is set
func (c *Context) Progress(update ProgressUpdate) {
	if c.ProgressCallback != nil {
		c.ProgressCallback(update)
	}
}

// Log outputs a message based on verbosity settings
func (c *Context) Log(message string) {
	log.Debug.Print(message)
}

// LogLevel returns the most detailed log level the verbosity settings let through
func (c *Context) LogLevel() log.Level {
	switch {
	case c.Quiet:
		return log.Error
	case c.Verbose:
		return log.Debug
	default:
		return log.Info
	}
}

// InstallLogger routes the log package to c.Stderr at c.LogLevel and returns
// a function restoring the previous outputter.
func (c *Context) InstallLogger() func() {
	prev := log.SetOutputter(&outputter{w: c.Stderr, level: c.LogLevel()})
	return func() { log.SetOutputter(prev) }
}

// outputter writes leveled log lines to a writer
type outputter struct {
	w     io.Writer
	level log.Level
}

func (o *outputter) Level() log.Level {
	return o.level
}

func (o *outputter) Output(calldepth int, level log.Level, s string) error {
	if level > o.level {
		return nil
	}
	var err error
	switch level {
	case log.Info:
		_, err = fmt.Fprintf(o.w, "[*] %s\n", s)
	case log.Error:
		_, err = fmt.Fprintf(o.w, "[!] %s\n", s)
	default:
		_, err = fmt.Fprintf(o.w, "[%s] %s\n", level, s)
	}
	return err
}
