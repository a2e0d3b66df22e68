/*
 * ECAL
 *
 * Copyright 2020 Matthias Ladkau. All rights reserved.
 *
 * This Source Code Form is subject to the terms of the MIT
 * License, If a copy of the MIT License was not distributed with this
 * file, You can obtain one at https://opensource.org/licenses/MIT.
 */

package render

import (
	"fmt"
	"sort"

	"github.com/krotik/ecal/util"
)

/*
Child is a single named or indexed child of an inspected value.
*/
type Child struct {
	Name  string      // Accessor string (attribute name, index, or key)
	Value interface{} // Child value (may itself be an error captured from a raising accessor)
}

/*
NamedChildren returns the accessor-reachable members of v: for a map, its
non-underscore string keys whose values are not functions, sorted
alphabetically, plus a synthetic len() child when v has a length.
*/
func NamedChildren(v interface{}) (children []Child) {
	defer func() {
		if r := recover(); r != nil {
			children = []Child{{Name: "<error>", Value: fmt.Errorf("%v", r)}}
		}
	}()

	switch tv := v.(type) {

	case map[interface{}]interface{}:
		names := make([]string, 0, len(tv))
		for k := range tv {
			name, ok := k.(string)
			if !ok || name == "" || name[0] == '_' {
				continue
			}
			if _, isFunc := tv[k].(util.ECALFunction); isFunc {
				continue
			}
			names = append(names, name)
		}
		sort.Strings(names)
		for _, n := range names {
			children = append(children, Child{Name: n, Value: tv[n]})
		}
		children = append(children, Child{Name: "len()", Value: float64(len(tv))})

	case []interface{}:
		children = append(children, Child{Name: "len()", Value: float64(len(tv))})

	case string:
		children = append(children, Child{Name: "len()", Value: float64(len(tv))})
	}

	return children
}

/*
IndexedChildren returns the positionally/key reachable elements of v: map
entries keyed by their stringified key, list items by index, and string
characters by codepoint (ordinal) value rather than one-character
substrings.
*/
func IndexedChildren(v interface{}) (children []Child) {
	defer func() {
		if r := recover(); r != nil {
			children = append(children, Child{Name: "<error>", Value: fmt.Errorf("%v", r)})
		}
	}()

	switch tv := v.(type) {

	case map[interface{}]interface{}:
		keys := sortedKeys(tv)
		for _, k := range keys {
			children = append(children, Child{Name: fmt.Sprint(k), Value: tv[k]})
		}

	case []interface{}:
		for i, item := range tv {
			children = append(children, Child{Name: fmt.Sprint(i), Value: item})
		}

	case string:
		for i, r := range tv {
			children = append(children, Child{Name: fmt.Sprint(i), Value: float64(r)})
		}
	}

	return children
}
