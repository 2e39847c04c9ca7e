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


// Package bible loads and serves the verse corpus.
//
// A Corpus is built from one or more JSON version documents (version → books
// → chapters → verses) and is immutable afterwards. It provides lookup by
// verse key and by embedding text (the join key from vector store matches
// back to verses), exact-substring keyword search, chapter reads, and
// per-version statistics. Version filters are alias-aware: KRV, 개역개정 and
// 개역한글 name the same translation, as do ASV and American Standard
// Version.
package bible
