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


package bible

import "errors"

var (
	// ErrCorpusRead indicates a corpus file could not be opened or read.
	ErrCorpusRead = errors.New("corpus file unreadable")

	// ErrMalformedCorpus indicates a corpus document failed to parse or
	// contained invalid verse data.
	ErrMalformedCorpus = errors.New("malformed corpus document")
)
