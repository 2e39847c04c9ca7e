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

import "fmt"

// ValidateVerse validates a Verse according to domain rules.
//
// Validation rules:
//   - Version, BookName, BookShort and Text must not be empty
//   - Testament must be TestamentOld or TestamentNew
//   - Chapter and VerseNumber must be positive
//
// NOT validated:
//   - Title (optional)
//   - BookNumber (0 is valid for corpora that don't carry it)
func ValidateVerse(verse *Verse) error {
	if verse == nil {
		return fmt.Errorf("%w: verse is nil", ErrInvalidVerse)
	}

	if verse.Version == "" {
		return fmt.Errorf("%w: %w", ErrInvalidVerse, ErrEmptyVersion)
	}

	if verse.BookName == "" || verse.BookShort == "" {
		return fmt.Errorf("%w: book name and short code are required", ErrInvalidVerse)
	}

	if verse.Testament != TestamentOld && verse.Testament != TestamentNew {
		return fmt.Errorf("%w: %w: value %d", ErrInvalidVerse, ErrInvalidTestament, verse.Testament)
	}

	if verse.Chapter < 1 || verse.VerseNumber < 1 {
		return fmt.Errorf("%w: chapter %d, verse %d", ErrInvalidVerse, verse.Chapter, verse.VerseNumber)
	}

	if verse.Text == "" {
		return fmt.Errorf("%w: %w", ErrInvalidVerse, ErrEmptyText)
	}

	return nil
}

// ValidateVectorRecord validates a VectorRecord before it is persisted.
//
// Validation rules:
//   - Id and Text must not be empty
//   - Vector must not be empty
//
// Dimensionality agreement with the rest of the store is checked by the
// store itself, which is the only place that knows the store dimension.
func ValidateVectorRecord(record *VectorRecord) error {
	if record == nil {
		return fmt.Errorf("%w: record is nil", ErrInvalidRecord)
	}

	if record.Id == "" {
		return fmt.Errorf("%w: %w", ErrInvalidRecord, ErrEmptyID)
	}

	if record.Text == "" {
		return fmt.Errorf("%w: %w", ErrInvalidRecord, ErrEmptyText)
	}

	if len(record.Vector) == 0 {
		return fmt.Errorf("%w: %w", ErrInvalidRecord, ErrEmptyVector)
	}

	return nil
}
