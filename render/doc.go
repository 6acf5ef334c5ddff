// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package render draws an animated scene of three rotating cubes through
// the rhi resource layer.
//
// # Session
//
// A Session moves through three states:
//
//	Uninitialized --Initialize--> Ready --Teardown--> TornDown
//
// Initialize creates the resources that live as long as the session: the
// cube vertex and index buffers, the vertex layout, the WGSL shader stages
// and a command queue. Each Render call then:
//
//  1. advances every cube's angle by speed times the wall-clock delta
//  2. creates the framebuffer, or rebinds it to this frame's textures
//  3. looks up the pipeline for the textures' formats, building it on a miss
//  4. records a render pass that clears color and depth
//  5. draws each cube with its own MVP uniform buffer at UniformSlot
//  6. presents the color texture and submits
//
// Frame textures are borrowed: the session never destroys them.
//
// # Runner
//
// Runner binds a Session to a Platform that owns the device and hands out
// frame textures. It is the loop body of an application:
//
//	r, err := render.NewRunner(platform)
//	if err != nil {
//	    return err
//	}
//	defer r.Teardown()
//	if err := r.Initialize(); err != nil {
//	    return err
//	}
//	for running {
//	    if err := r.Update(); err != nil {
//	        log.Printf("frame skipped: %v", err)
//	    }
//	}
//
// # Errors
//
// Session and Runner errors match rhi.ErrSessionCreationFailed,
// rhi.ErrSessionInitializationFailed or rhi.ErrFrameUpdateFailed, and
// wrap the underlying rhi error.
package render
