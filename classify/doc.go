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


// Package classify routes and scopes search queries.
//
// Two classifiers share one technique, few-shot classification via
// embeddings: curated prototype phrases per category are embedded once at
// startup, and each query is compared to every set by mean cosine
// similarity.
//
//   - IntentClassifier decides whether a query wants exact keyword matching
//     (KEYWORD), meaning-based matching (SEMANTIC), or both (HYBRID).
//   - ContextClassifier detects a scope constraint in the query phrasing —
//     testament, book group, single or multiple books — strips it, and
//     returns a cleaned query plus a verse-matching predicate.
//
// Both support Korean and English queries. Classification results are
// tagged-union style values (Intent, Context) whose constructors keep the
// tag and payload consistent.
package classify
