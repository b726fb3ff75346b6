// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package wbxml holds the shared core types of the WBXML codec: the
// wire-format constants, the per-call [Context], the generic [Value]
// element carrier, and the structured [Error] taxonomy.
//
// The codec is split into layers that each depend only on the layers
// below:
//
//   - lib/wbxml (this package): constants, context, errors. Depends on
//     nothing else in the module.
//   - lib/wire: byte-level WBXML 1.2 primitives — the pull decoder and
//     the token encoder.
//   - lib/schema: the declarative binding model mapping Go types to
//     code pages and element tokens.
//   - lib/marshal: the recursive encoder engine and the event-driven
//     decoder engine that tie the layers together.
//
// A [Context] is owned by exactly one in-flight marshal or unmarshal
// call. It carries the document version and charset, the emission
// flags, the code-page stack, and the optional XML capture buffer.
// Contexts are not safe for concurrent use; construct one per call or
// call [Context.Reset] between calls on the same goroutine.
package wbxml
