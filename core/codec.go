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

import (
	"github.com/mus-format/mus-go"
	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
)

// MUS serializers for persisted domain types. Strings use varint length
// prefixes; vector elements use the raw fixed-size little-endian float32
// encoding so a stored vector round-trips bit-exactly.
var (
	MetadataMUS     = metadataMUS{}
	VectorRecordMUS = vectorRecordMUS{}
)

type metadataMUS struct{}

func (metadataMUS) Marshal(m Metadata, bs []byte) (n int) {
	n = ord.String.Marshal(m.Version, bs)
	n += ord.String.Marshal(m.Reference, bs[n:])
	return
}

func (metadataMUS) Unmarshal(bs []byte) (m Metadata, n int, err error) {
	m.Version, n, err = ord.String.Unmarshal(bs)
	if err != nil {
		return
	}
	var n1 int
	m.Reference, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	return
}

func (metadataMUS) Size(m Metadata) int {
	return ord.String.Size(m.Version) + ord.String.Size(m.Reference)
}

type vectorRecordMUS struct{}

func (vectorRecordMUS) Marshal(r VectorRecord, bs []byte) (n int) {
	n = ord.String.Marshal(r.Id, bs)
	n += ord.String.Marshal(r.Text, bs[n:])
	n += MetadataMUS.Marshal(r.Meta, bs[n:])
	n += varint.PositiveInt.Marshal(len(r.Vector), bs[n:])
	for _, f := range r.Vector {
		n += raw.Float32.Marshal(f, bs[n:])
	}
	return
}

func (vectorRecordMUS) Unmarshal(bs []byte) (r VectorRecord, n int, err error) {
	var n1 int
	r.Id, n, err = ord.String.Unmarshal(bs)
	if err != nil {
		return
	}
	r.Text, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	r.Meta, n1, err = MetadataMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	var length int
	length, n1, err = varint.PositiveInt.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	if length*4 > len(bs)-n {
		err = mus.ErrTooSmallByteSlice
		return
	}
	if length > 0 {
		r.Vector = make([]float32, length)
		for i := 0; i < length; i++ {
			r.Vector[i], n1, err = raw.Float32.Unmarshal(bs[n:])
			n += n1
			if err != nil {
				return
			}
		}
	}
	return
}

func (vectorRecordMUS) Size(r VectorRecord) int {
	return ord.String.Size(r.Id) +
		ord.String.Size(r.Text) +
		MetadataMUS.Size(r.Meta) +
		varint.PositiveInt.Size(len(r.Vector)) +
		len(r.Vector)*4
}
