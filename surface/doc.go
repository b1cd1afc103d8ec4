// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package surface provides the 2D drawing target used for compositing.
//
// Surface is the rendering target abstraction that decouples drawing
// operations from their implementation:
//
//   - ImageSurface: CPU rendering to *image.RGBA on golang.org/x/image
//   - Other backends via the registry
//
// # Drawing model
//
// A surface has a current affine transform and alpha, saved and restored
// with Push and Pop. Paths are filled or stroked, images are stretched
// into a destination rectangle and text is drawn top-anchored. All of them
// go through the transform and alpha, so a rotated, half-transparent layer
// looks the same whatever it contains.
//
// # Registry
//
// Backends register under a name and priority:
//
//	surface.Register(surface.Backend{
//	    Name:     "custom",
//	    Priority: 50,
//	    Factory:  newCustomSurface,
//	})
//
//	s, err := surface.NewSurfaceByNameWithOptions("custom", surface.Options{Width: 800, Height: 600})
//
// The "image" backend is registered at init. Backends lists what is
// available, preferred first.
//
// # Usage
//
//	s := surface.NewImageSurface(800, 600)
//	defer s.Close()
//
//	s.Clear(color.White)
//
//	path := surface.NewPath()
//	path.MoveTo(100, 100)
//	path.LineTo(200, 100)
//	path.LineTo(150, 200)
//	path.Close()
//
//	s.Fill(path, surface.FillStyle{Color: color.RGBA{255, 0, 0, 255}})
//
//	img := s.Snapshot()
package surface
