// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Command threecubes renders the rotating cubes scene headlessly for a
// fixed number of frames.
package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/gogpu/rhi"
	"github.com/gogpu/rhi/backend"
	_ "github.com/gogpu/rhi/backend/native" // registers vulkan and noop
	"github.com/gogpu/rhi/render"
)

func main() {
	var (
		name     = flag.String("backend", backend.NameNoop, `backend name, or "auto" for the best available`)
		frames   = flag.Int("frames", 60, "number of frames to render")
		width    = flag.Uint("width", 800, "frame width")
		height   = flag.Uint("height", 600, "frame height")
		resize   = flag.String("resize", "", "resize to WxH halfway through")
		interval = flag.Duration("interval", 16*time.Millisecond, "delay between frames")
		verbose  = flag.Bool("v", false, "enable debug logging")
	)
	flag.Parse()

	if *verbose {
		rhi.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	cfg := backend.Config{Width: uint32(*width), Height: uint32(*height)} //nolint:gosec // flag values are small
	if err := run(*name, cfg, *frames, *resize, *interval); err != nil {
		log.Fatal(err)
	}
}

func run(name string, cfg backend.Config, frames int, resize string, interval time.Duration) error {
	var (
		p   backend.Platform
		err error
	)
	if name == "auto" {
		p, err = backend.Default(cfg)
	} else {
		p, err = backend.Open(name, cfg)
	}
	if err != nil {
		return err
	}
	defer p.Close()

	r, err := render.NewRunner(p)
	if err != nil {
		return err
	}
	defer r.Teardown()
	if err := r.Initialize(); err != nil {
		return err
	}

	start := time.Now()
	for i := range frames {
		if resize != "" && i == frames/2 {
			var w, h uint32
			if _, err := fmt.Sscanf(resize, "%dx%d", &w, &h); err != nil {
				return fmt.Errorf("bad -resize %q: %w", resize, err)
			}
			if err := p.Resize(w, h); err != nil {
				return err
			}
			log.Printf("resized to %dx%d", w, h)
		}
		if err := r.Update(); err != nil {
			log.Printf("frame %d skipped: %v", i, err)
		}
		time.Sleep(interval)
	}

	s := r.Session()
	log.Printf("rendered %d frames (%d skipped) in %v", s.FrameIndex(), r.Skipped(), time.Since(start).Round(time.Millisecond))
	for i, c := range s.Cubes() {
		log.Printf("cube %d at %v: angle %.3f rad", i, c.Position, c.Angle)
	}
	return nil
}
