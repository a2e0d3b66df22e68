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
	"github.com/krotik/ecal/interpreter"
	"github.com/krotik/ecal/parser"
	"github.com/krotik/ecal/render"
	"github.com/krotik/ecal/scope"
)

/*
evalExpression parses and evaluates expression against parent, the way
InjectValue evaluates an expression against the global scope: a fresh
child scope so the expression cannot leak bindings back into parent.

A failure to parse or validate expression is a genuine error (the
expression never ran). A failure raised while running it is returned as
the result value instead - per §7 error kind 3, evaluation errors are
rendered inline for the caller rather than propagated.
*/
func evalExpression(expression string, parent parser.Scope) (interface{}, error) {
	ast, err := parser.ParseWithRuntime("EvaluateExpression", expression,
		interpreter.NewECALRuntimeProvider("EvaluateExpression", nil, nil))
	if err != nil {
		return nil, err
	}

	if err := ast.Runtime.Validate(); err != nil {
		return nil, err
	}

	evs := scope.NewScopeWithParent("EvaluateExpressionScope", parent)

	val, err := ast.Runtime.Eval(evs, make(map[string]interface{}), 999)
	if err != nil {
		return err, nil
	}

	return val, nil
}

/*
Evaluate implements the "evaluate" request: an expression typed into a
watch/repl, evaluated against the scope of frameID if given, or the
global scope otherwise. The result is returned already rendered and typed
for display, plus a container id if it has children worth expanding.
*/
func (s *Session) Evaluate(expression string, frameID int) (VariableView, error) {
	s.mu.Lock()
	parent := s.globalScope
	ownerFrame := 0

	if frameID != 0 {
		if f, ok := s.frames.get(frameID); ok && f.Scope != nil {
			parent = f.Scope
			ownerFrame = frameID
		}
	}
	s.mu.Unlock()

	val, err := evalExpression(expression, parent)
	if err != nil {
		return VariableView{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.containers.createVariable(ownerFrame, expression, val)
	return newVariableView(c, render.DefaultFormat()), nil
}
