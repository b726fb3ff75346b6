// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package marshal implements the two codec engines: the recursive
// encoder that walks an object graph and emits a WBXML byte stream,
// and the event-driven decoder that rebuilds a typed object graph
// from one.
//
// Both engines consume a sealed [schema.Registry] and a per-call
// [wbxml.Context]:
//
//	registry := airsync.Registry()
//	m := marshal.New(registry)
//
//	var ctx wbxml.Context
//	if err := m.Marshal(&ctx, &buffer, ping); err != nil { ... }
//
//	var reply airsync.Ping
//	if err := m.Unmarshal(&ctx, &buffer, &reply); err != nil { ... }
//
// A Marshaller is stateless and safe for concurrent use; every call
// carries its own Context and stream. Failures surface as
// [*wbxml.Error] with a member-name breadcrumb from the root down to
// the failing member.
package marshal
