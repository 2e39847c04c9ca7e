package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validVerse() *Verse {
	return &Verse{
		Version:     "ASV",
		BookName:    "Genesis",
		BookShort:   "Gen",
		Testament:   TestamentOld,
		BookNumber:  1,
		Chapter:     1,
		VerseNumber: 1,
		Text:        "In the beginning God created the heavens and the earth.",
	}
}

func TestValidateVerse(t *testing.T) {
	t.Run("valid verse", func(t *testing.T) {
		require.NoError(t, ValidateVerse(validVerse()))
	})

	t.Run("nil verse", func(t *testing.T) {
		err := ValidateVerse(nil)
		assert.ErrorIs(t, err, ErrInvalidVerse)
	})

	tests := []struct {
		name    string
		mutate  func(*Verse)
		wantErr error
	}{
		{"empty version", func(v *Verse) { v.Version = "" }, ErrEmptyVersion},
		{"empty book name", func(v *Verse) { v.BookName = "" }, ErrInvalidVerse},
		{"empty book short", func(v *Verse) { v.BookShort = "" }, ErrInvalidVerse},
		{"zero testament", func(v *Verse) { v.Testament = 0 }, ErrInvalidTestament},
		{"testament out of range", func(v *Verse) { v.Testament = 3 }, ErrInvalidTestament},
		{"zero chapter", func(v *Verse) { v.Chapter = 0 }, ErrInvalidVerse},
		{"zero verse number", func(v *Verse) { v.VerseNumber = 0 }, ErrInvalidVerse},
		{"empty text", func(v *Verse) { v.Text = "" }, ErrEmptyText},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verse := validVerse()
			tt.mutate(verse)
			err := ValidateVerse(verse)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestValidateVectorRecord(t *testing.T) {
	t.Run("valid record", func(t *testing.T) {
		record := &VectorRecord{Id: "id", Text: "text", Vector: []float32{0.1}}
		require.NoError(t, ValidateVectorRecord(record))
	})

	tests := []struct {
		name    string
		record  *VectorRecord
		wantErr error
	}{
		{"nil record", nil, ErrInvalidRecord},
		{"empty id", &VectorRecord{Text: "text", Vector: []float32{0.1}}, ErrEmptyID},
		{"empty text", &VectorRecord{Id: "id", Vector: []float32{0.1}}, ErrEmptyText},
		{"empty vector", &VectorRecord{Id: "id", Text: "text"}, ErrEmptyVector},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateVectorRecord(tt.record)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
