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
	"fmt"
	"regexp"
	"runtime"
	"sync"
	"time"

	"github.com/krotik/ecal/parser"
	"github.com/krotik/ecal/render"
	"github.com/krotik/ecal/scope"
	"github.com/krotik/ecal/util"
)

/*
frameEntry is one entry of a thread's live call stack, pushed on
VisitStepInState and popped on VisitStepOutState. Unlike a frozen
snapshot, Scope is the live variable scope, so inspecting an outer frame
while the thread is suspended shows current values, not values-at-call.
*/
type frameEntry struct {
	Node  *parser.ASTNode
	Scope parser.Scope
}

/*
suspendState holds what the tracing core knows about a thread currently
blocked inside its LINE callback.
*/
type suspendState struct {
	node       *parser.ASTNode
	vs         parser.Scope
	hitIDs     []int
	reason     StopReason
	suspended  bool // true while the thread is inside cond.Wait()
}

/*
Session is a debug session: process-wide state from adapter connect to
disconnect, guarded by one coordination monitor (mu/cond below). It
implements util.ECALDebugger so it can be plugged directly into an
ECALRuntimeProvider, and additionally exposes the DAP-shaped operations
the dispatcher needs.

The monitor is not a true reentrant lock - Go's sync.Mutex has no portable
notion of the owning goroutine - but every method that might be called
while the monitor is already held (emitting a stopped event while
VisitState holds the lock, for instance) is written as an unexported
"*Locked" helper that assumes the caller already holds mu; the exported
entry points are the only ones that call mu.Lock directly.
*/
type Session struct {
	mu   sync.Mutex
	cond *sync.Cond

	breakpoints *breakpointRegistry
	frames      *frameRegistry
	containers  *containerRegistry
	threads     *threadRegistry

	pauseSet   map[uint64]bool
	stepStates map[uint64]*StepState
	callStacks map[uint64][]frameEntry
	suspended  map[uint64]*suspendState

	breakOnStart bool
	breakOnError bool

	globalScope parser.Scope
	logger      util.Logger

	lastVisit int64
	killed    map[uint64]bool

	events chan interface{}
}

/*
NewSession creates a new debug session bound to a global scope (used for
ExtractValue/InjectValue and as the "global" scope shown to clients) and a
logger for tracing-callback failure reporting.
*/
func NewSession(globalScope parser.Scope, logger util.Logger) *Session {
	if logger == nil {
		logger = util.NewNullLogger()
	}

	s := &Session{
		breakpoints: newBreakpointRegistry(),
		frames:      newFrameRegistry(),
		containers:  newContainerRegistry(),
		threads:     newThreadRegistry(),
		pauseSet:    make(map[uint64]bool),
		stepStates:  make(map[uint64]*StepState),
		callStacks:  make(map[uint64][]frameEntry),
		suspended:   make(map[uint64]*suspendState),
		killed:      make(map[uint64]bool),
		globalScope: globalScope,
		logger:      logger,
		breakOnError: true,
		events:      make(chan interface{}, 64),
	}
	s.cond = sync.NewCond(&s.mu)

	return s
}

/*
Events returns the channel on which the session publishes StoppedEvent,
ThreadEvent and OutputEvent values out of band. The dispatcher drains it.
*/
func (s *Session) Events() <-chan interface{} {
	return s.events
}

func (s *Session) publish(ev interface{}) {
	select {
	case s.events <- ev:
	default:
		// Never block a traced thread because the dispatcher is slow to drain.
	}
}

// --- util.ECALDebugger -------------------------------------------------

/*
HandleInput is not used by the DAP front end; everything goes through the
typed operations below. Kept to satisfy util.ECALDebugger.
*/
func (s *Session) HandleInput(input string) (interface{}, error) {
	return nil, fmt.Errorf("the DAP debug session does not accept text commands")
}

/*
StopThreads continues all suspended threads and marks them to be killed.
*/
func (s *Session) StopThreads(d time.Duration) bool {
	s.mu.Lock()
	ret := false
	for tid := range s.suspended {
		s.killed[tid] = true
		delete(s.pauseSet, tid)
		ret = true
	}
	s.cond.Broadcast()
	s.mu.Unlock()

	if ret && d > 0 {
		var lastVisit int64 = -1
		for lastVisit != s.lastVisit {
			lastVisit = s.lastVisit
			time.Sleep(d)
		}
	}

	return ret
}

/*
BreakOnStart breaks on the start of the next execution.
*/
func (s *Session) BreakOnStart(flag bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.breakOnStart = flag
}

/*
BreakOnError breaks if an error occurs.
*/
func (s *Session) BreakOnError(flag bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.breakOnError = flag
}

/*
RecordThreadFinished lets the session know a thread has finished.
*/
func (s *Session) RecordThreadFinished(tid uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.callStacks, tid)
	delete(s.stepStates, tid)
	delete(s.suspended, tid)
	delete(s.pauseSet, tid)
	delete(s.killed, tid)

	s.publishLocked(ThreadEvent{ThreadID: tid, Started: false})
}

/*
SetBreakPoint sets a single-line breakpoint the console-style way. The DAP
front end uses SetBreakpoints instead.
*/
func (s *Session) SetBreakPoint(source string, line int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := canonicalize(source)
	byLine, ok := s.breakpoints.byPath[path]
	if !ok {
		byLine = make(map[int][]*Breakpoint)
		s.breakpoints.byPath[path] = byLine
	}

	s.breakpoints.nextID++
	bp := &Breakpoint{ID: s.breakpoints.nextID, Path: path, Line: line, Enabled: true}
	byLine[line] = append(byLine[line], bp)
}

/*
DisableBreakPoint disables (without removing) a breakpoint.
*/
func (s *Session) DisableBreakPoint(source string, line int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, bp := range s.breakpoints.at(source, line) {
		bp.Enabled = false
	}
}

/*
RemoveBreakPoint removes a breakpoint (or all breakpoints for source if
line <= 0).
*/
func (s *Session) RemoveBreakPoint(source string, line int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := canonicalize(source)
	if line > 0 {
		if byLine, ok := s.breakpoints.byPath[path]; ok {
			delete(byLine, line)
		}
		return
	}
	delete(s.breakpoints.byPath, path)
}

/*
ExtractValue copies a value from a suspended thread into the global scope.
*/
func (s *Session) ExtractValue(threadID uint64, varName string, destVarName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.suspended[threadID]
	if !ok {
		return fmt.Errorf("thread %v is not suspended", threadID)
	}

	val, found, err := st.vs.GetValue(varName)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("no such value %v", varName)
	}

	return s.globalScope.SetValue(destVarName, val)
}

/*
InjectValue copies the result of evaluating expression (against the
global scope) into a suspended thread's scope.
*/
func (s *Session) InjectValue(threadID uint64, varName string, expression string) error {
	s.mu.Lock()
	st, ok := s.suspended[threadID]
	s.mu.Unlock()

	if !ok {
		return fmt.Errorf("thread %v is not suspended", threadID)
	}

	val, err := evalExpression(expression, s.globalScope)
	if err != nil {
		return err
	}

	return st.vs.SetValue(varName, val)
}

/*
Continue resumes a suspended thread. This satisfies util.ECALDebugger; the
DAP-facing ContinueThread/StepIn/StepOver/StepOut wrap it.
*/
func (s *Session) Continue(threadID uint64, contType util.ContType) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.continueLocked(threadID, contType)
}

func (s *Session) continueLocked(threadID uint64, contType util.ContType) {
	switch contType {
	case util.Resume:
		delete(s.stepStates, threadID)
	case util.StepIn:
		s.stepStates[threadID] = &StepState{Kind: StepIn}
	case util.StepOver:
		s.stepStates[threadID] = &StepState{Kind: StepOver}
	case util.StepOut:
		s.stepStates[threadID] = &StepState{Kind: StepOut}
	}

	delete(s.pauseSet, threadID)
	removed := s.frames.invalidate(threadID)
	s.containers.invalidate(removed)

	s.cond.Broadcast()
}

/*
Status returns a snapshot of the session for introspection.
*/
func (s *Session) Status() interface{} {
	s.mu.Lock()
	defer s.mu.Unlock()

	threads := make(map[string]interface{})
	for tid, st := range s.suspended {
		threads[fmt.Sprint(tid)] = map[string]interface{}{
			"suspended": st.suspended,
			"reason":    st.reason,
		}
	}

	return map[string]interface{}{
		"breakOnStart": s.breakOnStart,
		"breakOnError": s.breakOnError,
		"threads":      threads,
	}
}

/*
Describe describes a thread currently observed by the session.
*/
func (s *Session) Describe(threadID uint64) interface{} {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.suspended[threadID]
	if !ok {
		return nil
	}

	res := map[string]interface{}{
		"reason":    st.reason,
		"suspended": st.suspended,
	}

	if st.node != nil {
		pp, _ := parser.PrettyPrint(st.node)
		res["code"] = pp
		res["line"] = st.node.Token.Lline
	}

	return res
}

// --- tracing callbacks ---------------------------------------------------

/*
VisitState is called for every AST node with a token during execution -
the line event that drives pausing, stepping, and breakpoints.
*/
func (s *Session) VisitState(node *parser.ASTNode, vs parser.Scope, tid uint64) util.TraceableRuntimeError {
	s.mu.Lock()
	defer func() {
		if r := recover(); r != nil {
			s.logger.LogError(fmt.Sprintf("tracing callback panic: %v", r))
		}
		s.mu.Unlock()
	}()

	s.lastVisit = time.Now().UnixNano()

	if node.Token == nil {
		return nil
	}

	if s.killed[tid] {
		runtime.Goexit()
	}

	line := node.Token.Lline
	source := node.Token.Lsource

	s.ensureThreadKnownLocked(tid)

	if s.breakOnStart {
		s.breakOnStart = false
		s.pauseSet[tid] = true
	}

	if s.pauseSet[tid] {
		s.stopLocked(tid, node, vs, ReasonPause, nil)
		return nil
	}

	if ss, ok := s.stepStates[tid]; ok && ss.OriginPopulated {
		if s.stepPredicateSatisfied(tid, ss, node) {
			delete(s.stepStates, tid)
			s.pauseSet[tid] = true
			s.stopLocked(tid, node, vs, ReasonStep, nil)
		}
		return nil
	}

	if !s.breakpoints.hasAny(source) {
		return nil
	}

	path := canonicalize(source)
	var hitIDs []int

	for _, bp := range s.breakpoints.at(path, line) {
		eval := func(expr string) (interface{}, error) { return evalExpression(expr, vs) }
		if bp.isHit(line, path, eval) {
			if bp.LogMessage != "" {
				s.publishLocked(OutputEvent{Category: "console", Text: s.renderLogMessage(bp.LogMessage, vs)})
				continue
			}
			hitIDs = append(hitIDs, bp.ID)
		}
	}

	if len(hitIDs) > 0 {
		s.pauseSet[tid] = true
		s.stopLocked(tid, node, vs, ReasonBreakpoint, hitIDs)
	}

	return nil
}

/*
logMessageExpr finds {expr} segments inside a log point message.
*/
var logMessageExpr = regexp.MustCompile(`\{([^}]*)\}`)

func (s *Session) renderLogMessage(msg string, vs parser.Scope) string {
	return logMessageExpr.ReplaceAllStringFunc(msg, func(m string) string {
		expr := m[1 : len(m)-1]
		val, err := evalExpression(expr, vs)
		if err != nil {
			return fmt.Sprintf("<error: %v>", err)
		}
		return render.Render(val, render.DefaultFormat())
	})
}

/*
stepPredicateSatisfied decides whether a line event satisfies the active
step request: StepIn stops as soon as frame or line differs from origin;
StepOut stops once the origin frame is off the call chain; StepOver stops
there too, or when back at the origin's depth on a different line - a
deeper recursive call into the same code does not count as stepped over.
*/
func (s *Session) stepPredicateSatisfied(tid uint64, ss *StepState, node *parser.ASTNode) bool {
	depth := len(s.callStacks[tid])

	switch ss.Kind {
	case StepIn:
		return depth != ss.OriginDepth || node.Token.Lline != ss.OriginLine
	case StepOut:
		return depth < ss.OriginDepth
	case StepOver:
		if depth < ss.OriginDepth {
			return true
		}
		return depth == ss.OriginDepth && node.Token.Lline != ss.OriginLine
	}
	return false
}

/*
stopLocked publishes a stopped event, blocks until the thread leaves
PauseSet, then (if a step was requested while stopped) populates its
origin from this same event.
*/
func (s *Session) stopLocked(tid uint64, node *parser.ASTNode, vs parser.Scope, reason StopReason, hitIDs []int) {
	st := &suspendState{node: node, vs: vs, hitIDs: hitIDs, reason: reason, suspended: true}
	s.suspended[tid] = st

	s.publishLocked(StoppedEvent{Reason: reason, ThreadID: tid, HitBreakpointIDs: hitIDs})

	for s.pauseSet[tid] {
		s.cond.Wait()
	}

	st.suspended = false
	delete(s.suspended, tid)

	if s.killed[tid] {
		runtime.Goexit()
	}

	if ss, ok := s.stepStates[tid]; ok && !ss.OriginPopulated {
		ss.Origin = node
		ss.OriginLine = node.Token.Lline
		ss.OriginDepth = len(s.callStacks[tid])
		ss.OriginPopulated = true
	}
}

func (s *Session) publishLocked(ev interface{}) {
	s.publish(ev)
}

/*
VisitStepInState is called before entering a function call - the CALL
event.
*/
func (s *Session) VisitStepInState(node *parser.ASTNode, vs parser.Scope, tid uint64) util.TraceableRuntimeError {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.callStacks[tid] = append(s.callStacks[tid], frameEntry{Node: node, Scope: vs})

	s.ensureThreadKnownLocked(tid)

	return nil
}

/*
ensureThreadKnownLocked registers tid in the thread registry and publishes
a ThreadEvent the first time it is observed, whether that is a LINE event
(top-level script execution) or a CALL event (a function invocation).
Must be called with mu held.
*/
func (s *Session) ensureThreadKnownLocked(tid uint64) {
	if s.threads.isInternal(tid) {
		return
	}
	if _, known := s.threads.names[tid]; !known {
		s.threads.setName(tid, fmt.Sprintf("ecal-thread-%d", tid))
		s.publishLocked(ThreadEvent{ThreadID: tid, Started: true})
	}
}

/*
VisitStepOutState is called after returning from a function call - the
RETURN event.
*/
func (s *Session) VisitStepOutState(node *parser.ASTNode, vs parser.Scope, tid uint64, soErr error) util.TraceableRuntimeError {
	s.mu.Lock()
	defer s.mu.Unlock()

	stack := s.callStacks[tid]
	if len(stack) > 0 {
		s.callStacks[tid] = stack[:len(stack)-1]
	}

	if s.breakOnError && soErr != nil {
		s.pauseSet[tid] = true
		s.stopLocked(tid, node, vs, ReasonException, nil)
	}

	return nil
}

// --- DAP-facing operations -----------------------------------------------

/*
Threads enumerates currently known traced threads.
*/
func (s *Session) Threads() []Thread {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make([]Thread, 0, len(s.threads.names))
	for tid, name := range s.threads.names {
		if s.threads.isInternal(tid) {
			continue
		}
		result = append(result, Thread{ID: tid, Name: name})
	}
	return result
}

/*
StackTrace returns the frames of threadID, outer to inner, if it is
currently suspended; an empty slice otherwise.
*/
func (s *Session) StackTrace(threadID uint64) []*Frame {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.suspended[threadID]
	if !ok {
		return nil
	}

	stack := s.callStacks[threadID]
	nodes := make([]*parser.ASTNode, 0, len(stack)+1)
	scopes := make([]parser.Scope, 0, len(stack)+1)
	for _, e := range stack {
		nodes = append(nodes, e.Node)
		scopes = append(scopes, e.Scope)
	}
	nodes = append(nodes, st.node)
	scopes = append(scopes, st.vs)

	frames := s.frames.capture(threadID, nodes, scopes)

	// capture() returns outer-to-inner already; reverse isn't needed since
	// nodes was built outer-to-inner above, but DAP wants innermost first.
	reversed := make([]*Frame, len(frames))
	for i, f := range frames {
		reversed[len(frames)-1-i] = f
	}
	return reversed
}

/*
Scopes returns the local and global Scope containers for frameID.
*/
func (s *Session) Scopes(frameID int) ([]*Container, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.frames.get(frameID); !ok {
		return nil, ErrReferenceExpired
	}

	return []*Container{
		s.containers.createScope(frameID, false),
		s.containers.createScope(frameID, true),
	}, nil
}

/*
Variables returns the children of container id as rendered Variable
descriptions.
*/
func (s *Session) Variables(id int, format render.Format) ([]VariableView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.containers.lookup(id)
	if !ok {
		return nil, ErrReferenceExpired
	}

	frame, ok := s.frames.get(c.FrameID)
	if !ok {
		return nil, ErrReferenceExpired
	}

	var children []render.Child

	switch {
	case c.kind == containerScopeLocal:
		children = localChildren(frame.Scope)
	case c.kind == containerScopeGlobal:
		children = localChildren(s.globalScope)
	default:
		children = append(render.NamedChildren(c.Value), render.IndexedChildren(c.Value)...)
	}

	result := make([]VariableView, 0, len(children))
	for _, child := range children {
		childContainer := s.containers.createVariable(c.FrameID, child.Name, child.Value)
		result = append(result, newVariableView(childContainer, format))
	}
	return result, nil
}

/*
VariableView is the rendered, DAP-ready form of a Container.
*/
type VariableView struct {
	Reference int
	Name      string
	Value     string
	Type      string
}

func newVariableView(c *Container, format render.Format) VariableView {
	return VariableView{
		Reference: c.ID,
		Name:      c.Name,
		Value:     render.Render(c.Value, format),
		Type:      render.TypeName(c.Value),
	}
}

/*
localChildren lists the bindings of a scope as render.Child values,
excluding parent-scope bindings.
*/
func localChildren(vs parser.Scope) []render.Child {
	if vs == nil {
		return nil
	}
	obj := scope.ToObject(vs)
	children := make([]render.Child, 0, len(obj))
	for k, v := range obj {
		children = append(children, render.Child{Name: fmt.Sprint(k), Value: v})
	}
	return children
}

/*
PauseThread adds threadID (or all known threads if 0) to the PauseSet.
*/
func (s *Session) PauseThread(threadID uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if threadID == 0 {
		for tid := range s.threads.names {
			s.pauseSet[tid] = true
		}
		return
	}
	s.pauseSet[threadID] = true
}

/*
ContinueThread resumes threadID.
*/
func (s *Session) ContinueThread(threadID uint64) {
	s.Continue(threadID, util.Resume)
}

/*
StepIn, StepOver, StepOut resume threadID with the matching step mode.
*/
func (s *Session) StepIn(threadID uint64)   { s.Continue(threadID, util.StepIn) }
func (s *Session) StepOverThread(threadID uint64) { s.Continue(threadID, util.StepOver) }
func (s *Session) StepOut(threadID uint64)  { s.Continue(threadID, util.StepOut) }

/*
SetBreakpoints replaces all breakpoints for source atomically and returns
the resulting records.
*/
func (s *Session) SetBreakpoints(source string, specs []BreakpointSpec) []*Breakpoint {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.breakpoints.set(source, specs)
}

/*
Disconnect clears all breakpoints and wakes every suspended thread,
resuming the program to completion.
*/
func (s *Session) Disconnect() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.breakpoints.clear()
	for tid := range s.pauseSet {
		delete(s.pauseSet, tid)
	}
	s.cond.Broadcast()
}

/*
FrameByID exposes frame lookup to the evaluator.
*/
func (s *Session) FrameByID(id int) (*Frame, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frames.get(id)
}
