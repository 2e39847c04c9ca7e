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


package core

import "errors"

// Domain validation errors
var (
	// ErrInvalidVerse indicates a Verse failed validation.
	ErrInvalidVerse = errors.New("invalid verse")

	// ErrInvalidRecord indicates a VectorRecord failed validation.
	ErrInvalidRecord = errors.New("invalid vector record")

	// ErrEmptyText indicates a required text field is empty.
	ErrEmptyText = errors.New("text cannot be empty")

	// ErrEmptyVersion indicates the Version field is empty.
	ErrEmptyVersion = errors.New("version cannot be empty")

	// ErrInvalidTestament indicates a testament value outside {1, 2}.
	ErrInvalidTestament = errors.New("invalid testament")

	// ErrEmptyID indicates a record has no ID.
	ErrEmptyID = errors.New("id cannot be empty")

	// ErrEmptyVector indicates a record has no embedding vector.
	ErrEmptyVector = errors.New("vector cannot be empty")
)
