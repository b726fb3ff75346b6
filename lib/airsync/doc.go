// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package airsync declares the ActiveSync code pages and model types
// the codec ships with: Ping (page 13), FolderHierarchy (page 7), and
// the AirSync command fragments (page 0).
//
// The token tables live in pages.yaml (embedded) and the Go bindings
// in bindings.go; [Registry] assembles and seals them once. The
// registry is immutable and safe to share:
//
//	m := marshal.New(airsync.Registry())
//
// The model types mirror the command bodies a sync client exchanges:
// requests are built directly, responses decode into the same types.
package airsync
