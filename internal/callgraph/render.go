// Copyright (C) 2025 Sideface Authors
// SPDX-License-Identifier: BSD-3-Clause

package callgraph

import (
	"bytes"
	"context"
	"log/slog"
	"os/exec"
	"slices"
	"strings"

	"github.com/pkg/errors"
)

// ErrRenderer is returned when the graph renderer is missing or reports an
// error.
var ErrRenderer = errors.New("graph renderer failed")

// Format is an image format the renderer can produce.
type Format string

const (
	JPG Format = "jpg"
	GIF Format = "gif"
	PNG Format = "png"
	SVG Format = "svg"
	PS  Format = "ps"
)

// Formats lists the supported formats.
var Formats = []Format{JPG, GIF, PNG, SVG, PS}

// ParseFormat validates a format name.
func ParseFormat(name string) (Format, error) {
	format := Format(strings.ToLower(name))
	if !slices.Contains(Formats, format) {
		return "", errors.Errorf("unsupported image format %q", name)
	}
	return format, nil
}

// MIMEType returns the content type of images in the format.
func (f Format) MIMEType() string {
	switch f {
	case JPG:
		return "image/jpeg"
	case GIF:
		return "image/gif"
	case PNG:
		return "image/png"
	case SVG:
		return "image/svg+xml"
	case PS:
		return "application/postscript"
	}
	return "application/octet-stream"
}

// IsText reports whether images in the format are plain text.
func (f Format) IsText() bool {
	return f == SVG || f == PS
}

// DefaultDotBinary is the Graphviz executable looked up on PATH.
const DefaultDotBinary = "dot"

// Renderer runs Graphviz dot to turn scripts into images.
type Renderer struct {
	Binary string
}

// NewRenderer returns a renderer running the given dot binary, or
// DefaultDotBinary when empty.
func NewRenderer(binary string) *Renderer {
	if binary == "" {
		binary = DefaultDotBinary
	}
	return &Renderer{Binary: binary}
}

// Render pipes the script through dot and returns the image. Anything dot
// writes to stderr is treated as a failure. The context bounds how long dot
// may run.
func (r *Renderer) Render(ctx context.Context, script string, format Format) ([]byte, error) {
	cmd := exec.CommandContext(ctx, r.Binary, "-T"+string(format)) // #nosec G204
	cmd.Stdin = strings.NewReader(script)
	var outbuf bytes.Buffer
	var errbuf strings.Builder
	cmd.Stdout = &outbuf
	cmd.Stderr = &errbuf
	slog.Debug("running graph renderer", slog.String("cmd", cmd.String()), slog.Int("script bytes", len(script)))
	err := cmd.Run()
	if errbuf.Len() > 0 {
		slog.Warn("graph renderer reported errors", slog.String("stderr", errbuf.String()))
		return nil, errors.Wrapf(ErrRenderer, "%s: %s", r.Binary, strings.TrimSpace(errbuf.String()))
	}
	if err != nil {
		return nil, errors.Wrapf(ErrRenderer, "%s: %v", r.Binary, err)
	}
	return outbuf.Bytes(), nil
}
