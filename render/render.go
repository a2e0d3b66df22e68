/*
 * ECAL
 *
 * Copyright 2020 Matthias Ladkau. All rights reserved.
 *
 * This Source Code Form is subject to the terms of the MIT
 * License, If a copy of the MIT License was not distributed with this
 * file, You can obtain one at https://opensource.org/licenses/MIT.
 */

/*
Package render turns arbitrary ECAL runtime values into bounded textual
form and enumerates their children for a debugger's variables view.
*/
package render

import (
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/krotik/ecal/util"
)

/*
Format controls how a value is rendered.
*/
type Format struct {
	MaxLength         int    // Hard upper bound on returned characters (0 means unbounded)
	Hex               bool   // Render integers in 0x... form
	TruncationMarker  string // Marker appended when output is truncated
	CircularRefMarker string // Marker emitted for a value already on the render path (empty disables cycle detection)
}

/*
DefaultFormat is used when no explicit format is given.
*/
func DefaultFormat() Format {
	return Format{
		MaxLength:        0,
		TruncationMarker: "...",
		CircularRefMarker: "<circular reference>",
	}
}

/*
buffer is a bounded-output accumulator. Formatters append to it and it
rewinds and appends the truncation marker itself once the remaining-space
counter goes negative.
*/
type buffer struct {
	format    Format
	remaining int // remaining space; only meaningful when format.MaxLength > 0
	bounded   bool
	sb        strings.Builder
	truncated bool
}

func newBuffer(format Format) *buffer {
	return &buffer{
		format:    format,
		remaining: format.MaxLength,
		bounded:   format.MaxLength > 0,
	}
}

/*
write appends s to the buffer. Once the buffer is truncated further writes
are no-ops; the caller should stop producing output as soon as Truncated()
returns true, but correctness does not depend on that - write is safe to
call regardless.
*/
func (b *buffer) write(s string) {
	if b.truncated {
		return
	}

	if !b.bounded {
		b.sb.WriteString(s)
		return
	}

	if len(s) <= b.remaining {
		b.sb.WriteString(s)
		b.remaining -= len(s)
		return
	}

	// Would overflow: rewind to MaxLength-len(marker) and append the marker.

	marker := b.format.TruncationMarker
	target := b.format.MaxLength - len(marker)
	if target < 0 {
		target = 0
	}

	cur := b.sb.String()
	if len(cur) > target {
		cur = cur[:target]
	} else {
		// There is still room between len(cur) and target; fill what we can
		// of s before the marker.
		room := target - len(cur)
		if room > len(s) {
			room = len(s)
		}
		cur = cur + s[:room]
	}

	b.sb.Reset()
	b.sb.WriteString(cur)
	b.sb.WriteString(marker)
	b.truncated = true
}

func (b *buffer) Truncated() bool {
	return b.truncated
}

func (b *buffer) String() string {
	s := b.sb.String()
	if b.bounded && len(s) > b.format.MaxLength {
		s = s[:b.format.MaxLength]
	}
	return s
}

/*
Render produces a bounded textual representation of v using format.
*/
func Render(v interface{}, format Format) string {
	if format.TruncationMarker == "" {
		format.TruncationMarker = "..."
	}

	b := newBuffer(format)
	renderValue(v, format, b, nil)

	return b.String()
}

/*
renderValue dispatches by exact type first, then falls back to structural
categories. path carries the values currently being rendered (by pointer
identity, for the reference-like categories) so cycles can be detected
without a permanent visited set.
*/
func renderValue(v interface{}, format Format, b *buffer, path []interface{}) {
	if format.CircularRefMarker != "" && onPath(v, path) {
		b.write(format.CircularRefMarker)
		return
	}

	defer func() {
		if r := recover(); r != nil {
			b.write(fmt.Sprintf("<repr error: %v>", r))
		}
	}()

	switch tv := v.(type) {

	case nil:
		b.write("null")

	case bool:
		if tv {
			b.write("true")
		} else {
			b.write("false")
		}

	case float64:
		renderNumber(tv, format, b)

	case string:
		renderString(tv, b)

	case []interface{}:
		renderList(tv, format, b, append(path, v))

	case map[interface{}]interface{}:
		renderMap(tv, format, b, append(path, v))

	case util.ECALFunction:
		doc, err := tv.DocString()
		if err != nil {
			b.write("<function>")
		} else {
			b.write(fmt.Sprintf("<function: %v>", doc))
		}

	case fmt.Stringer:
		b.write(tv.String())

	case error:
		b.write(tv.Error())

	default:
		b.write(fmt.Sprintf("%v", v))
	}
}

func onPath(v interface{}, path []interface{}) bool {
	for _, p := range path {
		if identical(p, v) {
			return true
		}
	}
	return false
}

/*
identical compares two values by reference identity for the reference-like
categories the renderer recurses into (lists and maps); other types are
compared by value since they are never pushed onto the render path.
*/
func identical(a, b interface{}) bool {
	switch av := a.(type) {
	case []interface{}:
		if bv, ok := b.([]interface{}); ok {
			return sameSlice(av, bv)
		}
	case map[interface{}]interface{}:
		if bv, ok := b.(map[interface{}]interface{}); ok {
			return sameMap(av, bv)
		}
	}
	return false
}

/*
sameSlice reports whether two slices share the same backing array, which
is the closest Go equivalent of reference identity for []interface{}.
*/
func sameSlice(a, b []interface{}) bool {
	if len(a) != len(b) {
		return false
	}
	if len(a) == 0 {
		return false
	}
	return reflect.ValueOf(a).Pointer() == reflect.ValueOf(b).Pointer()
}

/*
sameMap reports whether two maps are the same underlying map value.
*/
func sameMap(a, b map[interface{}]interface{}) bool {
	return reflect.ValueOf(a).Pointer() == reflect.ValueOf(b).Pointer()
}

func renderNumber(n float64, format Format, b *buffer) {
	if format.Hex && n == math.Trunc(n) {
		b.write("0x" + strconv.FormatInt(int64(n), 16))
		return
	}

	if n == math.Trunc(n) && !math.IsInf(n, 0) {
		b.write(strconv.FormatInt(int64(n), 10))
		return
	}

	b.write(strconv.FormatFloat(n, 'g', -1, 64))
}

func renderString(s string, b *buffer) {
	b.write("'")
	b.write(strings.ReplaceAll(s, "'", "\\'"))
	b.write("'")
}

func renderList(l []interface{}, format Format, b *buffer, path []interface{}) {
	b.write("[")
	for i, item := range l {
		if i > 0 {
			b.write(", ")
		}
		renderValue(item, format, b, path)
	}
	if len(l) == 1 {
		b.write(",")
	}
	b.write("]")
}

func renderMap(m map[interface{}]interface{}, format Format, b *buffer, path []interface{}) {
	keys := sortedKeys(m)

	b.write("{")
	for i, k := range keys {
		if i > 0 {
			b.write(", ")
		}
		renderValue(k, format, b, path)
		b.write(": ")
		renderValue(m[k], format, b, path)
	}
	b.write("}")
}

/*
sortedKeys returns the keys of m in a deterministic (string-sorted) order.
*/
func sortedKeys(m map[interface{}]interface{}) []interface{} {
	keys := make([]interface{}, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return fmt.Sprint(keys[i]) < fmt.Sprint(keys[j])
	})
	return keys
}

/*
TypeName returns the ECAL-visible type name of a runtime value.
*/
func TypeName(v interface{}) string {
	switch tv := v.(type) {
	case nil:
		return "null"
	case bool:
		return "bool"
	case float64:
		if tv == math.Trunc(tv) && !math.IsInf(tv, 0) {
			return "int"
		}
		return "float"
	case string:
		return "string"
	case []interface{}:
		return "list"
	case map[interface{}]interface{}:
		return "map"
	case util.ECALFunction:
		return "function"
	case error:
		return "exception"
	default:
		return fmt.Sprintf("%T", v)
	}
}
