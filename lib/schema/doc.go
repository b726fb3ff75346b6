// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package schema defines the declarative binding model the codec
// consumes: which code page and element token a Go type maps to, and
// how each of its members is laid out on the wire.
//
// Bindings are precompiled at startup — there is no call-time
// reflection. [Bind] captures typed accessor closures for a struct
// type and registers them in a [Registry]; the registry is immutable
// after [Registry.Seal] and safe to share across concurrent codec
// calls.
//
// Code pages can additionally be declared in YAML (see
// [ParseCodePages]) to name tokens the Go bindings do not own —
// useful for XML capture of foreign elements and for model overrides
// on polymorphic collections.
//
// A member bound with [NoToken] is a ghost: it emits no element
// bracket of its own, and its children are written directly inside
// the surrounding element. Ghosts are how repeated bracketed items
// (ActiveSync's Add/Update/Delete command elements) are modeled.
package schema
