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
	"strings"

	"github.com/krotik/ecal/parser"
)

/*
frameRegistry assigns stable, never-reused ids to stack frames and maps
ids back to the live frame object while a thread is suspended. Always
accessed under the owning Session's coordination monitor.
*/
type frameRegistry struct {
	frames map[int]*Frame
	nextID int
}

func newFrameRegistry() *frameRegistry {
	return &frameRegistry{frames: make(map[int]*Frame)}
}

/*
isInternal filters frames whose source is produced by the debugger itself
(evaluated expressions), so they never show up in a stack trace.
*/
func isInternal(source string) bool {
	return strings.HasPrefix(source, "InjectValueExpression") ||
		strings.HasPrefix(source, "EvaluateExpression")
}

/*
capture builds Frame records for a thread's current call stack, outer to
inner, skipping internal frames.
*/
func (r *frameRegistry) capture(threadID uint64, callStack []*parser.ASTNode, scopes []parser.Scope) []*Frame {
	result := make([]*Frame, 0, len(callStack))

	for i, node := range callStack {
		if node.Token == nil || isInternal(node.Token.Lsource) {
			continue
		}

		r.nextID++
		f := &Frame{
			ID:       r.nextID,
			ThreadID: threadID,
			Node:     node,
			Source:   node.Token.Lsource,
			Line:     node.Token.Lline,
		}
		if i < len(scopes) {
			f.Scope = scopes[i]
		}

		r.frames[f.ID] = f
		result = append(result, f)
	}

	return result
}

func (r *frameRegistry) get(id int) (*Frame, bool) {
	f, ok := r.frames[id]
	return f, ok
}

/*
invalidate removes every frame owned by threadID - called whenever that
thread resumes (continue, step, kill).
*/
func (r *frameRegistry) invalidate(threadID uint64) []int {
	var removed []int
	for id, f := range r.frames {
		if f.ThreadID == threadID {
			removed = append(removed, id)
			delete(r.frames, id)
		}
	}
	return removed
}

/*
containerRegistry assigns stable ids to VariableContainers (scopes and
variables) and invalidates them when their owning frame is invalidated.
*/
type containerRegistry struct {
	containers map[int]*Container
	nextID     int
}

func newContainerRegistry() *containerRegistry {
	return &containerRegistry{containers: make(map[int]*Container)}
}

func (r *containerRegistry) createScope(frameID int, global bool) *Container {
	r.nextID++
	kind := containerScopeLocal
	if global {
		kind = containerScopeGlobal
	}
	c := &Container{ID: r.nextID, FrameID: frameID, kind: kind}
	r.containers[c.ID] = c
	return c
}

func (r *containerRegistry) createVariable(frameID int, name string, value interface{}) *Container {
	r.nextID++
	c := &Container{ID: r.nextID, FrameID: frameID, kind: containerVariable, Name: name, Value: value}
	r.containers[c.ID] = c
	return c
}

func (r *containerRegistry) lookup(id int) (*Container, bool) {
	c, ok := r.containers[id]
	return c, ok
}

/*
invalidate removes every container whose owning frame is in frameIDs.
*/
func (r *containerRegistry) invalidate(frameIDs []int) {
	if len(frameIDs) == 0 {
		return
	}
	dead := make(map[int]bool, len(frameIDs))
	for _, id := range frameIDs {
		dead[id] = true
	}
	for id, c := range r.containers {
		if dead[c.FrameID] {
			delete(r.containers, id)
		}
	}
}

/*
threadRegistry enumerates traced ECAL threads: those with an active call
stack entry in the tracing core, minus any flagged internal.
*/
type threadRegistry struct {
	names    map[uint64]string
	internal map[uint64]bool
}

func newThreadRegistry() *threadRegistry {
	return &threadRegistry{
		names:    make(map[uint64]string),
		internal: make(map[uint64]bool),
	}
}

func (r *threadRegistry) setName(id uint64, name string) {
	r.names[id] = name
}

func (r *threadRegistry) markInternal(id uint64) {
	r.internal[id] = true
}

func (r *threadRegistry) nameOf(id uint64) string {
	if name, ok := r.names[id]; ok {
		return name
	}
	return "ecal-thread"
}

func (r *threadRegistry) isInternal(id uint64) bool {
	return r.internal[id]
}
