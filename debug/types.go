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
Package debug implements the tracing core, registries, and evaluator of
the ECAL debug adapter: stable ids for threads/frames/variable containers,
a breakpoint registry keyed by canonicalized path and line, and the single
coordination monitor that serializes every state change visible to a
debug client.
*/
package debug

import (
	"errors"

	"github.com/krotik/ecal/parser"
)

/*
ErrReferenceExpired is returned when a client addresses a frame or
variable container id that is no longer valid - the owning thread has
resumed since the id was handed out.
*/
var ErrReferenceExpired = errors.New("reference has expired")

/*
StepKind is a step command variant.
*/
type StepKind int

/*
Step command variants.
*/
const (
	StepNone StepKind = iota
	StepIn
	StepOver
	StepOut
)

/*
Thread is a traced ECAL execution thread.
*/
type Thread struct {
	ID       uint64 // Native interpreter thread id
	Name     string
	Internal bool // Excluded from enumeration (e.g. evaluator helper threads)
}

/*
Frame is a single activation record captured while its owning thread is
suspended. It borrows node/scope from the tracing core's call stack and
must not be used once its owning thread resumes.
*/
type Frame struct {
	ID       int
	ThreadID uint64
	Node     *parser.ASTNode
	Scope    parser.Scope
	Source   string
	Line     int
}

/*
containerKind distinguishes the two VariableContainer variants.
*/
type containerKind int

const (
	containerScopeLocal containerKind = iota
	containerScopeGlobal
	containerVariable
)

/*
Container is a node the client can expand in the variables view: either a
Scope (local/global) bound to a Frame, or a Variable captured at a point
in that frame.
*/
type Container struct {
	ID      int
	FrameID int
	kind    containerKind
	Name    string      // Variable accessor name; unused for scopes
	Value   interface{} // Variable value; unused for scopes
}

/*
IsScope reports whether this container is a Scope (as opposed to a
Variable).
*/
func (c *Container) IsScope() bool {
	return c.kind == containerScopeLocal || c.kind == containerScopeGlobal
}

/*
ScopeName returns "local" or "global" for a Scope container.
*/
func (c *Container) ScopeName() string {
	if c.kind == containerScopeGlobal {
		return "global"
	}
	return "local"
}

/*
StepState is the per-thread step-in-progress record. OriginPopulated is
false from the moment a step command is issued until the next line event,
at which point the tracing core fills Origin/OriginLine from the event
that starts the step.
*/
type StepState struct {
	Kind            StepKind
	Origin          *parser.ASTNode
	OriginLine      int
	OriginDepth     int // Call stack depth observed when Origin was populated
	OriginPopulated bool
}

/*
StopReason identifies why a thread suspended.
*/
type StopReason string

/*
Stop reasons.
*/
const (
	ReasonPause      StopReason = "pause"
	ReasonStep       StopReason = "step"
	ReasonBreakpoint StopReason = "breakpoint"
	ReasonException  StopReason = "exception"
)

/*
StoppedEvent describes a thread suspension to out-of-band listeners (the
DAP dispatcher).
*/
type StoppedEvent struct {
	Reason            StopReason
	ThreadID          uint64
	HitBreakpointIDs  []int
	Text              string
}

/*
ThreadEvent describes a thread lifecycle transition.
*/
type ThreadEvent struct {
	ThreadID uint64
	Started  bool
}

/*
OutputEvent carries program output (log/error/debug statements) to the
client.
*/
type OutputEvent struct {
	Category string // "stdout", "stderr", "console"
	Text     string
}
