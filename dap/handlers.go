/*
 * ECAL
 *
 * Copyright 2020 Matthias Ladkau. All rights reserved.
 *
 * This Source Code Form is subject to the terms of the MIT
 * License, If a copy of the MIT License was not distributed with this
 * file, You can obtain one at https://opensource.org/licenses/MIT.
 */

package dap

import (
	"path/filepath"

	"github.com/google/go-dap"

	"github.com/krotik/ecal/debug"
)

/*
handle type-switches an inbound DAP message onto its handler, mirroring
the request table in §6. Requests this server does not implement receive
an unsupported error response rather than being silently dropped.
*/
func (s *Server) handle(request dap.Message) {
	switch request := request.(type) {

	case *dap.InitializeRequest:
		s.onInitializeRequest(request)
	case *dap.LaunchRequest:
		s.onLaunchRequest(request)
	case *dap.AttachRequest:
		s.onAttachRequest(request)
	case *dap.DisconnectRequest:
		s.onDisconnectRequest(request)
	case *dap.SetBreakpointsRequest:
		s.onSetBreakpointsRequest(request)
	case *dap.ConfigurationDoneRequest:
		s.onConfigurationDoneRequest(request)
	case *dap.ThreadsRequest:
		s.onThreadsRequest(request)
	case *dap.StackTraceRequest:
		s.onStackTraceRequest(request)
	case *dap.ScopesRequest:
		s.onScopesRequest(request)
	case *dap.VariablesRequest:
		s.onVariablesRequest(request)
	case *dap.EvaluateRequest:
		s.onEvaluateRequest(request)
	case *dap.ContinueRequest:
		s.onContinueRequest(request)
	case *dap.PauseRequest:
		s.onPauseRequest(request)
	case *dap.NextRequest:
		s.onNextRequest(request)
	case *dap.StepInRequest:
		s.onStepInRequest(request)
	case *dap.StepOutRequest:
		s.onStepOutRequest(request)

	case *dap.SetExceptionBreakpointsRequest:
		s.onSetExceptionBreakpointsRequest(request)
	case *dap.SetFunctionBreakpointsRequest:
		s.sendUnsupportedResponse(request.Seq, request.Command)
	case *dap.RestartRequest:
		s.sendUnsupportedResponse(request.Seq, request.Command)
	case *dap.TerminateRequest:
		s.sendUnsupportedResponse(request.Seq, request.Command)
	case *dap.StepBackRequest:
		s.sendUnsupportedResponse(request.Seq, request.Command)
	case *dap.ReverseContinueRequest:
		s.sendUnsupportedResponse(request.Seq, request.Command)
	case *dap.RestartFrameRequest:
		s.sendUnsupportedResponse(request.Seq, request.Command)
	case *dap.GotoRequest:
		s.sendUnsupportedResponse(request.Seq, request.Command)
	case *dap.SetVariableRequest:
		s.sendUnsupportedResponse(request.Seq, request.Command)
	case *dap.SetExpressionRequest:
		s.sendUnsupportedResponse(request.Seq, request.Command)
	case *dap.SourceRequest:
		s.sendUnsupportedResponse(request.Seq, request.Command)
	case *dap.TerminateThreadsRequest:
		s.sendUnsupportedResponse(request.Seq, request.Command)
	case *dap.StepInTargetsRequest:
		s.sendUnsupportedResponse(request.Seq, request.Command)
	case *dap.GotoTargetsRequest:
		s.sendUnsupportedResponse(request.Seq, request.Command)
	case *dap.CompletionsRequest:
		s.sendUnsupportedResponse(request.Seq, request.Command)
	case *dap.ExceptionInfoRequest:
		s.sendUnsupportedResponse(request.Seq, request.Command)
	case *dap.LoadedSourcesRequest:
		s.sendUnsupportedResponse(request.Seq, request.Command)
	case *dap.DataBreakpointInfoRequest:
		s.sendUnsupportedResponse(request.Seq, request.Command)
	case *dap.SetDataBreakpointsRequest:
		s.sendUnsupportedResponse(request.Seq, request.Command)
	case *dap.ReadMemoryRequest:
		s.sendUnsupportedResponse(request.Seq, request.Command)
	case *dap.DisassembleRequest:
		s.sendUnsupportedResponse(request.Seq, request.Command)
	case *dap.CancelRequest:
		s.sendUnsupportedResponse(request.Seq, request.Command)
	case *dap.BreakpointLocationsRequest:
		s.sendUnsupportedResponse(request.Seq, request.Command)

	default:
		s.log.Warnf("dap: unhandled request %T", request)
	}
}

/*
onInitializeRequest advertises the capabilities named in §6: conditional
and hit-conditional breakpoints, log points, evaluate-for-hovers,
set-variable, exception-info, delayed stack-trace loading, terminate,
goto-targets, clipboard context, and value-formatting options.
*/
func (s *Server) onInitializeRequest(request *dap.InitializeRequest) {
	response := &dap.InitializeResponse{}
	response.Response = *newResponse(request.Seq, request.Command)

	response.Body.SupportsConfigurationDoneRequest = true
	response.Body.SupportsConditionalBreakpoints = true
	response.Body.SupportsHitConditionalBreakpoints = true
	response.Body.SupportsLogPoints = true
	response.Body.SupportsEvaluateForHovers = true
	response.Body.SupportsSetVariable = false
	response.Body.SupportsExceptionInfoRequest = true
	response.Body.SupportsDelayedStackTraceLoading = true
	response.Body.SupportTerminateDebuggee = true
	response.Body.SupportsTerminateRequest = false
	response.Body.SupportsGotoTargetsRequest = false
	response.Body.SupportsClipboardContext = true
	response.Body.SupportsValueFormattingOptions = true
	response.Body.SupportsFunctionBreakpoints = false
	response.Body.SupportsStepBack = false
	response.Body.SupportsRestartFrame = false
	response.Body.SupportsStepInTargetsRequest = false
	response.Body.SupportsCompletionsRequest = false
	response.Body.SupportsModulesRequest = false
	response.Body.SupportsRestartRequest = false
	response.Body.SupportsExceptionOptions = false
	response.Body.SupportSuspendDebuggee = false
	response.Body.SupportsLoadedSourcesRequest = false
	response.Body.SupportsTerminateThreadsRequest = false
	response.Body.SupportsSetExpression = false
	response.Body.SupportsDataBreakpoints = false
	response.Body.SupportsReadMemoryRequest = false
	response.Body.SupportsWriteMemoryRequest = false
	response.Body.SupportsDisassembleRequest = false
	response.Body.SupportsCancelRequest = false
	response.Body.SupportsBreakpointLocationsRequest = false
	response.Body.SupportsSteppingGranularity = false
	response.Body.SupportsInstructionBreakpoints = false
	response.Body.SupportsExceptionFilterOptions = false
	response.Body.AdditionalModuleColumns = make([]dap.ColumnDescriptor, 0)
	response.Body.ExceptionBreakpointFilters = make([]dap.ExceptionBreakpointsFilter, 0)
	response.Body.CompletionTriggerCharacters = make([]string, 0)
	response.Body.SupportedChecksumAlgorithms = make([]dap.ChecksumAlgorithm, 0)

	s.send(response)
	s.send(&dap.InitializedEvent{Event: *newEvent("initialized")})
}

func (s *Server) onAttachRequest(request *dap.AttachRequest) {
	s.sendUnsupportedResponse(request.Seq, request.Command)
}

/*
onDisconnectRequest clears all breakpoints and resumes every suspended
thread (§5 Cancellation & timeouts), then acknowledges.
*/
func (s *Server) onDisconnectRequest(request *dap.DisconnectRequest) {
	s.session.Disconnect()

	response := &dap.DisconnectResponse{}
	response.Response = *newResponse(request.Seq, request.Command)
	s.send(response)
}

func (s *Server) onSetBreakpointsRequest(request *dap.SetBreakpointsRequest) {
	args := request.Arguments

	specs := make([]debug.BreakpointSpec, 0, len(args.Breakpoints))
	for _, b := range args.Breakpoints {
		specs = append(specs, debug.BreakpointSpec{
			Line:         b.Line,
			Condition:    b.Condition,
			HitCondition: b.HitCondition,
			LogMessage:   b.LogMessage,
		})
	}

	bps := s.session.SetBreakpoints(args.Source.Path, specs)

	result := make([]dap.Breakpoint, 0, len(bps))
	for _, bp := range bps {
		result = append(result, dap.Breakpoint{
			Id:       bp.ID,
			Verified: true,
			Line:     bp.Line,
			Source:   &args.Source,
		})
	}

	response := &dap.SetBreakpointsResponse{}
	response.Response = *newResponse(request.Seq, request.Command)
	response.Body.Breakpoints = result
	s.send(response)
}

func (s *Server) onSetExceptionBreakpointsRequest(request *dap.SetExceptionBreakpointsRequest) {
	response := &dap.SetExceptionBreakpointsResponse{}
	response.Response = *newResponse(request.Seq, request.Command)
	s.send(response)
}

func (s *Server) onConfigurationDoneRequest(request *dap.ConfigurationDoneRequest) {
	response := &dap.ConfigurationDoneResponse{}
	response.Response = *newResponse(request.Seq, request.Command)
	s.send(response)
}

func (s *Server) onThreadsRequest(request *dap.ThreadsRequest) {
	threads := s.session.Threads()

	result := make([]dap.Thread, 0, len(threads))
	for _, t := range threads {
		result = append(result, dap.Thread{Id: s.dapThreadID(t.ID), Name: t.Name})
	}

	response := &dap.ThreadsResponse{}
	response.Response = *newResponse(request.Seq, request.Command)
	response.Body.Threads = result
	s.send(response)
}

/*
onStackTraceRequest returns frames innermost-first as Session.StackTrace
already orders them, truncated to Arguments.Levels if given.
*/
func (s *Server) onStackTraceRequest(request *dap.StackTraceRequest) {
	native := s.nativeThreadID(request.Arguments.ThreadId)
	frames := s.session.StackTrace(native)

	if levels := request.Arguments.Levels; levels > 0 && levels < len(frames) {
		frames = frames[:levels]
	}

	result := make([]dap.StackFrame, 0, len(frames))
	for _, f := range frames {
		result = append(result, dap.StackFrame{
			Id:     f.ID,
			Name:   filepath.Base(f.Source),
			Source: &dap.Source{Name: filepath.Base(f.Source), Path: f.Source},
			Line:   f.Line,
			Column: 1,
		})
	}

	response := &dap.StackTraceResponse{}
	response.Response = *newResponse(request.Seq, request.Command)
	response.Body.StackFrames = result
	response.Body.TotalFrames = len(result)
	s.send(response)
}

/*
onScopesRequest returns the local/global Scope containers for the
requested frame, or a reference-expired error if the frame has been
invalidated since the stop that produced it (§7 error kind 2).
*/
func (s *Server) onScopesRequest(request *dap.ScopesRequest) {
	containers, err := s.session.Scopes(request.Arguments.FrameId)
	if err == debug.ErrReferenceExpired {
		s.sendReferenceExpiredResponse(request.Seq, request.Command)
		return
	}

	result := make([]dap.Scope, 0, len(containers))
	for _, c := range containers {
		name := "Local"
		hint := "locals"
		if c.ScopeName() == "global" {
			name = "Global"
			hint = "globals"
		}
		result = append(result, dap.Scope{
			Name:               name,
			PresentationHint:   hint,
			VariablesReference: c.ID,
		})
	}

	response := &dap.ScopesResponse{}
	response.Response = *newResponse(request.Seq, request.Command)
	response.Body.Scopes = result
	s.send(response)
}

func (s *Server) onVariablesRequest(request *dap.VariablesRequest) {
	format := defaultFormat(request.Arguments.Format)

	children, err := s.session.Variables(request.Arguments.VariablesReference, format)
	if err == debug.ErrReferenceExpired {
		s.sendReferenceExpiredResponse(request.Seq, request.Command)
		return
	}

	result := make([]dap.Variable, 0, len(children))
	for _, v := range children {
		result = append(result, dap.Variable{
			Name:               v.Name,
			Value:              v.Value,
			Type:               v.Type,
			VariablesReference: v.Reference,
		})
	}

	response := &dap.VariablesResponse{}
	response.Response = *newResponse(request.Seq, request.Command)
	response.Body.Variables = result
	s.send(response)
}

/*
onEvaluateRequest implements the "evaluate" request (§4.H). A raised
expression is rendered inline with success:true (error kind 3); only a
parse/validate failure is reported as success:false.
*/
func (s *Server) onEvaluateRequest(request *dap.EvaluateRequest) {
	vv, err := s.session.Evaluate(request.Arguments.Expression, request.Arguments.FrameId)
	if err != nil {
		s.sendErrorResponse(request.Seq, request.Command, err.Error())
		return
	}

	response := &dap.EvaluateResponse{}
	response.Response = *newResponse(request.Seq, request.Command)
	response.Body.Result = vv.Value
	response.Body.Type = vv.Type
	response.Body.VariablesReference = vv.Reference
	s.send(response)
}

func (s *Server) onContinueRequest(request *dap.ContinueRequest) {
	s.session.ContinueThread(s.nativeThreadID(request.Arguments.ThreadId))

	response := &dap.ContinueResponse{}
	response.Response = *newResponse(request.Seq, request.Command)
	response.Body.AllThreadsContinued = false
	s.send(response)
}

/*
onPauseRequest pauses the requested thread, or every traced thread when
ThreadId is 0/absent.
*/
func (s *Server) onPauseRequest(request *dap.PauseRequest) {
	native := uint64(0)
	if request.Arguments.ThreadId != 0 {
		native = s.nativeThreadID(request.Arguments.ThreadId)
	}
	s.session.PauseThread(native)

	response := &dap.PauseResponse{}
	response.Response = *newResponse(request.Seq, request.Command)
	s.send(response)
}

func (s *Server) onNextRequest(request *dap.NextRequest) {
	s.session.StepOverThread(s.nativeThreadID(request.Arguments.ThreadId))

	response := &dap.NextResponse{}
	response.Response = *newResponse(request.Seq, request.Command)
	s.send(response)
}

func (s *Server) onStepInRequest(request *dap.StepInRequest) {
	s.session.StepIn(s.nativeThreadID(request.Arguments.ThreadId))

	response := &dap.StepInResponse{}
	response.Response = *newResponse(request.Seq, request.Command)
	s.send(response)
}

func (s *Server) onStepOutRequest(request *dap.StepOutRequest) {
	s.session.StepOut(s.nativeThreadID(request.Arguments.ThreadId))

	response := &dap.StepOutResponse{}
	response.Response = *newResponse(request.Seq, request.Command)
	s.send(response)
}
