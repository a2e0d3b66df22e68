/*
 * ECAL
 *
 * Copyright 2020 Matthias Ladkau. All rights reserved.
 *
 * This Source Code Form is subject to the terms of the MIT
 * License, If a copy of the MIT License was not distributed with this
 * file, You can obtain one at https://opensource.org/licenses/MIT.
 */

package debug

import (
	"path/filepath"
	"strconv"
	"strings"
)

/*
Breakpoint is a user-declared stop point, optionally gated by a
condition, a hit-count expression, or a log message.
*/
type Breakpoint struct {
	ID           int
	Path         string // Canonicalized absolute path
	Line         int
	Enabled      bool
	Condition    string
	HitCondition string
	LogMessage   string

	hits int // number of times Condition has passed, used to evaluate HitCondition
}

/*
isHit returns true when this breakpoint should stop the given frame. The
condition, when present, is evaluated by eval - a raising condition is
treated as a hit so the error surfaces to the user rather than silently
hiding the breakpoint. When a hit-count expression is also present, the
condition passing only increments the hit counter; the breakpoint stops
the thread when the counter satisfies that expression.
*/
func (bp *Breakpoint) isHit(line int, path string, eval func(expr string) (interface{}, error)) bool {
	if !bp.Enabled || bp.Line != line {
		return false
	}

	// Path check is last since canonicalized-path comparison is the most
	// expensive part of the hit test.
	if bp.Path != path {
		return false
	}

	if bp.Condition != "" {
		result, err := eval(bp.Condition)
		if err != nil {
			return true
		}

		if truth, ok := result.(bool); ok && !truth {
			return false
		}
	}

	if bp.HitCondition == "" {
		return true
	}

	bp.hits++

	op, n, err := parseHitCondition(bp.HitCondition)
	if err != nil {
		return true
	}

	switch op {
	case "%":
		return n != 0 && bp.hits%n == 0
	case ">":
		return bp.hits > n
	case ">=":
		return bp.hits >= n
	case "<":
		return bp.hits < n
	case "<=":
		return bp.hits <= n
	default: // "==", or a bare count
		return bp.hits == n
	}
}

/*
parseHitCondition parses a DAP hitCondition string into a comparison
operator and an operand: a bare number or "==x" means "hit exactly x
times", ">x"/">=x"/"<x"/"<=x" compare the running hit count, and "%x"
means "every xth hit".
*/
func parseHitCondition(expr string) (string, int, error) {
	expr = strings.TrimSpace(expr)

	for _, op := range []string{">=", "<=", "==", ">", "<", "%"} {
		if strings.HasPrefix(expr, op) {
			n, err := strconv.Atoi(strings.TrimSpace(expr[len(op):]))
			return op, n, err
		}
	}

	n, err := strconv.Atoi(expr)
	return "==", n, err
}

/*
breakpointRegistry stores breakpoints indexed path -> line -> []*Breakpoint.
It is always accessed while the owning Session's coordination monitor is
held.
*/
type breakpointRegistry struct {
	byPath map[string]map[int][]*Breakpoint
	nextID int
}

func newBreakpointRegistry() *breakpointRegistry {
	return &breakpointRegistry{
		byPath: make(map[string]map[int][]*Breakpoint),
	}
}

/*
canonicalize resolves a source path the way the registry indexes paths:
absolute, symlinks resolved, case-normalized on case-insensitive
filesystems. Either step may fail (the file may not exist yet); the raw
normalized form is used as a fallback.
*/
func canonicalize(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}

	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		abs = resolved
	}

	return strings.ToLower(filepath.Clean(abs))
}

/*
BreakpointSpec describes one requested breakpoint line within a
setBreakpoints call.
*/
type BreakpointSpec struct {
	Line         int
	Condition    string
	HitCondition string
	LogMessage   string
}

/*
set replaces all breakpoints for source's canonicalized path atomically.
*/
func (r *breakpointRegistry) set(source string, specs []BreakpointSpec) []*Breakpoint {
	path := canonicalize(source)

	delete(r.byPath, path)

	byLine := make(map[int][]*Breakpoint)
	result := make([]*Breakpoint, 0, len(specs))

	for _, spec := range specs {
		r.nextID++
		bp := &Breakpoint{
			ID:           r.nextID,
			Path:         path,
			Line:         spec.Line,
			Enabled:      true,
			Condition:    spec.Condition,
			HitCondition: spec.HitCondition,
			LogMessage:   spec.LogMessage,
		}
		byLine[spec.Line] = append(byLine[spec.Line], bp)
		result = append(result, bp)
	}

	if len(byLine) > 0 {
		r.byPath[path] = byLine
	}

	return result
}

/*
at returns the breakpoints registered for path/line. This is the hot-path
query, called on every LINE event.
*/
func (r *breakpointRegistry) at(path string, line int) []*Breakpoint {
	byLine, ok := r.byPath[canonicalize(path)]
	if !ok {
		return nil
	}
	return byLine[line]
}

/*
hasAny reports whether path has any registered breakpoint at all,
regardless of line - used for the DISABLE-equivalent fast path.
*/
func (r *breakpointRegistry) hasAny(path string) bool {
	byLine, ok := r.byPath[canonicalize(path)]
	return ok && len(byLine) > 0
}

/*
clear removes all breakpoints (used on disconnect).
*/
func (r *breakpointRegistry) clear() {
	r.byPath = make(map[string]map[int][]*Breakpoint)
}
