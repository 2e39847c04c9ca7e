// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package storage provides the vector storage abstraction for versefinder.
//
// The VectorStore interface decouples the retrieval pipeline from the
// storage backend. The shipped implementation lives in storage/badger; tests
// use the same implementation in in-memory mode.
//
// # Constructor Return Type Pattern
//
// Public constructors return the storage.VectorStore interface rather than a
// concrete type:
//
//	store, err := badger.NewVectorStore(path)  // returns storage.VectorStore
//
// This keeps callers decoupled from BadgerDB specifics and makes alternative
// backends drop-in replacements.
//
// # Consistency
//
// BulkUpsert is all-or-nothing: readers observe either the pre-upsert or the
// post-upsert state, never a partial one. Search runs against an immutable
// in-memory cache that is loaded once and only replaced after a bulk load
// commits, so concurrent queries never need locking against writers.
//
// # Wire Format
//
// Records are serialized with MUS codecs defined in the core package:
// varint-length-prefixed strings and fixed-size little-endian 32-bit floats
// for vector elements, so stored vectors round-trip bit-exactly.
package storage
