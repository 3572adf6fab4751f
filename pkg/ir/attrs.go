// Copyright 2025 KrakLabs
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
//
// SPDX-License-Identifier: Apache-2.0

package ir

// Attr is a tagged value held in a Node or Expression's heterogeneous
// attribute bag. Only one of the fields is meaningful, selected by Kind.
type Attr struct {
	Kind AttrKind
	Str  string
	Int  int64
	Flt  float64
	Bln  bool
	List []Attr
	Map  map[string]Attr
}

// AttrKind tags the active field of an Attr.
type AttrKind uint8

const (
	AttrKindString AttrKind = iota
	AttrKindInt
	AttrKindFloat
	AttrKindBool
	AttrKindList
	AttrKindMap
)

// StringAttr, IntAttr, ... are constructors for the common attribute shapes
// extracted by structural generators (decorators, generics, return types,
// hook categories, exception-handling summaries, body-statement digests).
func StringAttr(s string) Attr   { return Attr{Kind: AttrKindString, Str: s} }
func IntAttr(i int64) Attr       { return Attr{Kind: AttrKindInt, Int: i} }
func FloatAttr(f float64) Attr   { return Attr{Kind: AttrKindFloat, Flt: f} }
func BoolAttr(b bool) Attr       { return Attr{Kind: AttrKindBool, Bln: b} }
func ListAttr(v ...Attr) Attr    { return Attr{Kind: AttrKindList, List: v} }
func MapAttr(m map[string]Attr) Attr {
	if m == nil {
		m = map[string]Attr{}
	}
	return Attr{Kind: AttrKindMap, Map: m}
}

// Attrs is the attribute bag type embedded on Node and Expression.
type Attrs map[string]Attr

// String returns the string value for key, with ok=false on absence or
// type mismatch. Callers must go through typed accessors like this one
// rather than reaching into the tagged union directly.
func (a Attrs) String(key string) (string, bool) {
	v, ok := a[key]
	if !ok || v.Kind != AttrKindString {
		return "", false
	}
	return v.Str, true
}

// StringOr returns the string attribute or a fallback default.
func (a Attrs) StringOr(key, def string) string {
	if v, ok := a.String(key); ok {
		return v
	}
	return def
}

func (a Attrs) Int(key string) (int64, bool) {
	v, ok := a[key]
	if !ok || v.Kind != AttrKindInt {
		return 0, false
	}
	return v.Int, true
}

func (a Attrs) Bool(key string) (bool, bool) {
	v, ok := a[key]
	if !ok || v.Kind != AttrKindBool {
		return false, false
	}
	return v.Bln, true
}

func (a Attrs) BoolOr(key string, def bool) bool {
	if v, ok := a.Bool(key); ok {
		return v
	}
	return def
}

func (a Attrs) List(key string) ([]Attr, bool) {
	v, ok := a[key]
	if !ok || v.Kind != AttrKindList {
		return nil, false
	}
	return v.List, true
}

func (a Attrs) Map(key string) (map[string]Attr, bool) {
	v, ok := a[key]
	if !ok || v.Kind != AttrKindMap {
		return nil, false
	}
	return v.Map, true
}

// Set stores an attribute, creating the map lazily is the caller's job
// (Attrs is a plain map type, never nil-initialized implicitly here).
func (a Attrs) Set(key string, v Attr) {
	a[key] = v
}
