// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec provides the standard inner codec for typed opaque
// members: CBOR with Core Deterministic Encoding.
//
// WBXML carries uninterpreted byte payloads (OPAQUE) for members
// whose content is not part of the element token space. When such a
// member is a typed object rather than a string or raw bytes, the
// marshalling engine defers to a registered [schema.OpaqueCodec].
// This package supplies the default: [Standard], a CBOR codec
// configured for Core Deterministic Encoding (RFC 8949 §4.2) so the
// same logical value always produces identical payload bytes.
//
// Wire it at schema declaration time:
//
//	schema.OpaqueObject("DeviceInformation", 0x0E, codec.Standard,
//	    func(s *Settings) **DeviceInformation { return &s.DeviceInformation })
package codec
