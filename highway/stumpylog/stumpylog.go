// Package stumpylog wires github.com/joeycumines/stumpy as the default
// logging backend for highway.Logger, the way the teacher pairs logiface
// with a concrete backend rather than a bespoke logging interface.
package stumpylog

import (
	"io"

	"github.com/joeycumines/logiface"
	"github.com/joeycumines/stumpy"

	highway "github.com/highwaygo/highways/highway"
)

// New constructs a highway.Logger that writes newline-delimited JSON to w
// (or os.Stderr, via stumpy's own default, if w is nil).
func New(w io.Writer) *highway.Logger {
	opts := []stumpy.Option{}
	if w != nil {
		opts = append(opts, stumpy.WithWriter(w))
	}
	return stumpy.L.New(
		stumpy.L.WithStumpy(opts...),
		stumpy.L.WithLevel(logiface.LevelInformational),
	)
}
