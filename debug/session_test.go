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
	"errors"
	"testing"
	"time"

	"github.com/krotik/ecal/render"
	"github.com/krotik/ecal/scope"
)

/*
waitForEvent drains s.Events() until it sees a value matching want, or
fails the test after a short timeout. Kept generous since VisitState runs
on its own goroutine in these tests.
*/
func waitForEvent(t *testing.T, s *Session, want func(interface{}) bool) interface{} {
	t.Helper()
	timeout := time.After(2 * time.Second)
	for {
		select {
		case ev := <-s.Events():
			if want(ev) {
				return ev
			}
		case <-timeout:
			t.Fatal("timed out waiting for expected event")
		}
	}
}

func TestSessionBreakOnStartStopsAndResumes(t *testing.T) {
	s := NewSession(scope.NewScope("global"), nil)
	s.BreakOnStart(true)

	done := make(chan struct{})
	go func() {
		s.VisitState(node("main.ecal", 1), scope.NewScope("main"), 7)
		close(done)
	}()

	ev := waitForEvent(t, s, func(ev interface{}) bool {
		se, ok := ev.(StoppedEvent)
		return ok && se.ThreadID == 7
	})
	if se := ev.(StoppedEvent); se.Reason != ReasonPause {
		t.Errorf("expected a pause stop, got %v", se.Reason)
	}

	s.ContinueThread(7)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for VisitState to return after continue")
	}
}

func TestSessionThreadsReportsFirstObservedLineEvent(t *testing.T) {
	s := NewSession(scope.NewScope("global"), nil)

	// A top-level script that never calls a function must still register
	// as a traced thread - this is the fix for the bug where only
	// VisitStepInState (a CALL event) used to register threads.
	s.VisitState(node("main.ecal", 1), scope.NewScope("main"), 11)

	threads := s.Threads()
	if len(threads) != 1 || threads[0].ID != 11 {
		t.Fatalf("expected thread 11 to be registered from a bare LINE event, got %+v", threads)
	}
}

func TestSessionBreakpointHit(t *testing.T) {
	s := NewSession(scope.NewScope("global"), nil)
	s.SetBreakpoints("main.ecal", []BreakpointSpec{{Line: 3}})

	done := make(chan struct{})
	go func() {
		s.VisitState(node("main.ecal", 3), scope.NewScope("main"), 1)
		close(done)
	}()

	ev := waitForEvent(t, s, func(ev interface{}) bool {
		_, ok := ev.(StoppedEvent)
		return ok
	})
	se := ev.(StoppedEvent)
	if se.Reason != ReasonBreakpoint {
		t.Errorf("expected a breakpoint stop, got %v", se.Reason)
	}

	s.ContinueThread(1)
	<-done
}

func TestSessionPauseThreadAll(t *testing.T) {
	s := NewSession(scope.NewScope("global"), nil)

	// register the thread via a non-breaking line event first
	s.VisitState(node("main.ecal", 1), scope.NewScope("main"), 5)

	s.PauseThread(0)

	done := make(chan struct{})
	go func() {
		s.VisitState(node("main.ecal", 2), scope.NewScope("main"), 5)
		close(done)
	}()

	waitForEvent(t, s, func(ev interface{}) bool {
		se, ok := ev.(StoppedEvent)
		return ok && se.Reason == ReasonPause
	})

	s.ContinueThread(5)
	<-done
}

func TestSessionStackTraceAndScopesAndVariables(t *testing.T) {
	s := NewSession(scope.NewScope("global"), nil)
	s.BreakOnStart(true)

	vs := scope.NewScope("main")
	vs.SetValue("x", float64(42))

	done := make(chan struct{})
	go func() {
		s.VisitState(node("main.ecal", 1), vs, 3)
		close(done)
	}()

	waitForEvent(t, s, func(ev interface{}) bool {
		_, ok := ev.(StoppedEvent)
		return ok
	})

	frames := s.StackTrace(3)
	if len(frames) != 1 {
		t.Fatalf("expected a single frame, got %v", len(frames))
	}

	containers, err := s.Scopes(frames[0].ID)
	if err != nil {
		t.Fatal("unexpected error:", err)
	}
	if len(containers) != 2 {
		t.Fatalf("expected local and global scope containers, got %v", len(containers))
	}

	var localID int
	for _, c := range containers {
		if c.ScopeName() == "local" {
			localID = c.ID
		}
	}

	vars, err := s.Variables(localID, render.DefaultFormat())
	if err != nil {
		t.Fatal("unexpected error:", err)
	}

	found := false
	for _, v := range vars {
		if v.Name == "x" {
			found = true
			if v.Value != "42" {
				t.Errorf("expected rendered value 42, got %v", v.Value)
			}
		}
	}
	if !found {
		t.Error("expected to find variable x among the local scope's children")
	}

	s.ContinueThread(3)
	<-done

	// the frame was invalidated by the continue above
	if _, err := s.Scopes(frames[0].ID); err != ErrReferenceExpired {
		t.Errorf("expected ErrReferenceExpired after continue, got %v", err)
	}
}

func TestSessionDisconnectResumesSuspendedThreads(t *testing.T) {
	s := NewSession(scope.NewScope("global"), nil)
	s.BreakOnStart(true)
	s.SetBreakpoints("main.ecal", []BreakpointSpec{{Line: 9}})

	done := make(chan struct{})
	go func() {
		s.VisitState(node("main.ecal", 1), scope.NewScope("main"), 4)
		close(done)
	}()

	waitForEvent(t, s, func(ev interface{}) bool {
		_, ok := ev.(StoppedEvent)
		return ok
	})

	s.Disconnect()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for thread to resume after disconnect")
	}

	if s.breakpoints.hasAny("main.ecal") {
		t.Error("expected disconnect to clear breakpoints")
	}
}

func TestSessionStepPredicates(t *testing.T) {
	s := NewSession(scope.NewScope("global"), nil)

	origin := node("main.ecal", 5)

	stepIn := &StepState{Kind: StepIn, Origin: origin, OriginLine: 5, OriginDepth: 0, OriginPopulated: true}
	if s.stepPredicateSatisfied(1, stepIn, node("main.ecal", 5)) {
		t.Error("expected StepIn not to be satisfied by the same line/depth")
	}
	if !s.stepPredicateSatisfied(1, stepIn, node("main.ecal", 6)) {
		t.Error("expected StepIn to be satisfied once the line changes")
	}

	s.callStacks[2] = []frameEntry{{Node: origin}}
	stepOver := &StepState{Kind: StepOver, Origin: origin, OriginLine: 5, OriginDepth: 1, OriginPopulated: true}
	if s.stepPredicateSatisfied(2, stepOver, node("main.ecal", 5)) {
		t.Error("expected StepOver not to be satisfied at the same depth and line")
	}
	if !s.stepPredicateSatisfied(2, stepOver, node("main.ecal", 6)) {
		t.Error("expected StepOver to be satisfied at the same depth on a new line")
	}

	stepOut := &StepState{Kind: StepOut, OriginDepth: 1, OriginPopulated: true}
	if s.stepPredicateSatisfied(2, stepOut, node("main.ecal", 6)) {
		t.Error("expected StepOut not to be satisfied while still at/above the origin depth")
	}
	delete(s.callStacks, 2)
	if !s.stepPredicateSatisfied(2, stepOut, node("main.ecal", 6)) {
		t.Error("expected StepOut to be satisfied once the call stack unwinds past the origin")
	}
}

func TestSessionEvaluateSuccessAndException(t *testing.T) {
	global := scope.NewScope("global")
	global.SetValue("x", float64(1))

	s := NewSession(global, nil)

	v, err := s.Evaluate("x + 1", 0)
	if err != nil {
		t.Fatal("unexpected error:", err)
	}
	if v.Value != "2" {
		t.Errorf("expected rendered result 2, got %v", v.Value)
	}

	// a raised expression is still success:true material - the result is
	// rendered as the exception rather than propagated as a Go error.
	v, err = s.Evaluate("noexistingfunctioncall()", 0)
	if err != nil {
		t.Fatal("expected a raised expression to come back as a value, not an error:", err)
	}
	if v.Type != "exception" {
		t.Errorf("expected the exception type name, got %v", v.Type)
	}
}

func TestSessionEvaluateMalformedExpressionIsAnError(t *testing.T) {
	s := NewSession(scope.NewScope("global"), nil)

	if _, err := s.Evaluate("x +", 0); err == nil {
		t.Error("expected a malformed expression to return a Go error")
	}
}

func TestSessionVisitStepOutBreaksOnError(t *testing.T) {
	s := NewSession(scope.NewScope("global"), nil)
	s.BreakOnError(true)

	done := make(chan struct{})
	go func() {
		s.VisitStepOutState(node("main.ecal", 4), scope.NewScope("main"), 9, errors.New("boom"))
		close(done)
	}()

	ev := waitForEvent(t, s, func(ev interface{}) bool {
		se, ok := ev.(StoppedEvent)
		return ok && se.ThreadID == 9
	})
	if se := ev.(StoppedEvent); se.Reason != ReasonException {
		t.Errorf("expected an exception stop, got %v", se.Reason)
	}

	s.ContinueThread(9)
	<-done
}
