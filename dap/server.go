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
Package dap implements the Debug Adapter Protocol front end for the ECAL
debug core (package debug): it decodes DAP requests off a JSON message
stream, invokes the matching debug.Session operation, encodes the
response, and relays the session's out-of-band stopped/thread/output
events as DAP events.
*/
package dap

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"io/ioutil"
	"path/filepath"
	"sync"

	"github.com/google/go-dap"
	"github.com/sirupsen/logrus"

	"github.com/krotik/ecal/debug"
	"github.com/krotik/ecal/interpreter"
	"github.com/krotik/ecal/parser"
	"github.com/krotik/ecal/render"
)

/*
Server is one DAP session bound to a single debug.Session and
ECALRuntimeProvider. It owns the request-read loop and the event-relay
goroutine; both write to the same connection under sendMu.
*/
type Server struct {
	session  *debug.Session
	provider *interpreter.ECALRuntimeProvider
	globalVS parser.Scope
	dir      string

	r io.Reader
	w io.Writer

	sendMu sync.Mutex
	seq    int

	log *logrus.Logger

	threadMu  sync.Mutex
	threadIDs map[int]uint64 // DAP thread id -> native ECAL thread id

	done chan struct{}
}

/*
NewServer creates a DAP server that reads requests from r and writes
responses/events to w. globalVS is the scope programs launched by this
server execute against; dir resolves relative launch "program" paths.
*/
func NewServer(session *debug.Session, provider *interpreter.ECALRuntimeProvider,
	globalVS parser.Scope, dir string, r io.Reader, w io.Writer, log *logrus.Logger) *Server {

	if log == nil {
		log = logrus.New()
	}

	return &Server{
		session:   session,
		provider:  provider,
		globalVS:  globalVS,
		dir:       dir,
		r:         r,
		w:         w,
		log:       log,
		threadIDs: make(map[int]uint64),
		done:      make(chan struct{}),
	}
}

/*
Serve reads DAP requests until the connection is closed (io.EOF) or a
transport error occurs. Per §7 error kind 6, any read/decode error is
treated as a disconnect: breakpoints are cleared and every suspended
thread is resumed before Serve returns.
*/
func (s *Server) Serve() error {
	go s.pumpEvents()
	defer close(s.done)

	reader := bufio.NewReader(s.r)
	for {
		request, err := dap.ReadProtocolMessage(reader)
		if err != nil {
			s.session.Disconnect()
			if err == io.EOF {
				return nil
			}
			return err
		}
		s.handle(request)
	}
}

/*
pumpEvents relays debug.Session out-of-band events as DAP events until
Serve returns.
*/
func (s *Server) pumpEvents() {
	for {
		select {
		case <-s.done:
			return
		case ev := <-s.session.Events():
			s.relayEvent(ev)
		}
	}
}

func (s *Server) relayEvent(ev interface{}) {
	switch e := ev.(type) {

	case debug.StoppedEvent:
		s.send(&dap.StoppedEvent{
			Event: *newEvent("stopped"),
			Body: dap.StoppedEventBody{
				Reason:           string(e.Reason),
				ThreadId:         s.dapThreadID(e.ThreadID),
				HitBreakpointIds: e.HitBreakpointIDs,
				Text:             e.Text,
				AllThreadsStopped: false,
			},
		})

	case debug.ThreadEvent:
		reason := "exited"
		if e.Started {
			reason = "started"
		}
		s.send(&dap.ThreadEvent{
			Event: *newEvent("thread"),
			Body:  dap.ThreadEventBody{Reason: reason, ThreadId: s.dapThreadID(e.ThreadID)},
		})

	case debug.OutputEvent:
		s.send(&dap.OutputEvent{
			Event: *newEvent("output"),
			Body:  dap.OutputEventBody{Category: e.Category, Output: e.Text},
		})
	}
}

/*
dapThreadID maps a native ECAL thread id to the 32-bit id handed to DAP
clients (§3 Thread), remembering the mapping so requests referencing the
DAP id can be translated back.
*/
func (s *Server) dapThreadID(native uint64) int {
	id := int(int32(uint32(native)))

	s.threadMu.Lock()
	s.threadIDs[id] = native
	s.threadMu.Unlock()

	return id
}

/*
nativeThreadID reverses dapThreadID. If the id was never handed out (the
client guessed or replayed one from before a restart) the id is used
as-is, which is correct for the common case of small, never-reused
native ids.
*/
func (s *Server) nativeThreadID(dapID int) uint64 {
	s.threadMu.Lock()
	defer s.threadMu.Unlock()

	if native, ok := s.threadIDs[dapID]; ok {
		return native
	}
	return uint64(dapID)
}

func (s *Server) send(message dap.Message) {
	s.sendMu.Lock()
	defer s.sendMu.Unlock()

	s.seq++
	dap.WriteProtocolMessage(s.w, message)
	s.log.WithField("seq", s.seq).Debugf("dap: sent %T", message)
}

const (
	errUnsupported = 1000
	errFailed      = 1001
	errReference   = 1002
)

func (s *Server) sendErrorResponse(requestSeq int, command string, message string) {
	r := &dap.ErrorResponse{}
	r.Response = *newResponse(requestSeq, command)
	r.Success = false
	r.Message = message
	r.Body.Error = &dap.ErrorMessage{Format: message, Id: errFailed, ShowUser: true}
	s.send(r)
}

func (s *Server) sendReferenceExpiredResponse(requestSeq int, command string) {
	r := &dap.ErrorResponse{}
	r.Response = *newResponse(requestSeq, command)
	r.Success = false
	r.Message = "reference is no longer valid"
	r.Body.Error = &dap.ErrorMessage{Format: r.Message, Id: errReference, ShowUser: false}
	s.send(r)
}

func (s *Server) sendUnsupportedResponse(requestSeq int, command string) {
	r := &dap.ErrorResponse{}
	r.Response = *newResponse(requestSeq, command)
	r.Success = false
	r.Message = fmt.Sprintf("%v is not supported", command)
	r.Body.Error = &dap.ErrorMessage{Format: r.Message, Id: errUnsupported, ShowUser: false}
	s.send(r)
}

func newResponse(requestSeq int, command string) *dap.Response {
	return &dap.Response{
		ProtocolMessage: dap.ProtocolMessage{Seq: 0, Type: "response"},
		Command:         command,
		RequestSeq:      requestSeq,
		Success:         true,
	}
}

func newEvent(event string) *dap.Event {
	return &dap.Event{
		ProtocolMessage: dap.ProtocolMessage{Seq: 0, Type: "event"},
		Event:           event,
	}
}

/*
LaunchArguments is the subset of the DAP "launch" request body this
server understands. §6 lists launch/attach as added beyond the base DAP
request set: launch starts the ECAL program on a managed goroutine
instead of assuming it is already running.
*/
type LaunchArguments struct {
	Program     string `json:"program"`
	StopOnEntry bool   `json:"stopOnEntry"`
}

func (s *Server) onLaunchRequest(request *dap.LaunchRequest) {
	var cfg LaunchArguments
	if err := json.Unmarshal(request.Arguments, &cfg); err != nil {
		s.sendErrorResponse(request.Seq, request.Command, fmt.Sprintf("malformed launch arguments: %v", err))
		return
	}
	if cfg.Program == "" {
		s.sendErrorResponse(request.Seq, request.Command, "launch requires a non-empty program path")
		return
	}

	program := cfg.Program
	if !filepath.IsAbs(program) {
		program = filepath.Join(s.dir, program)
	}

	s.session.BreakOnStart(cfg.StopOnEntry)
	go s.runProgram(program)

	response := &dap.LaunchResponse{}
	response.Response = *newResponse(request.Seq, request.Command)
	s.send(response)
}

/*
runProgram loads and evaluates program on a fresh thread id, the same way
CLIInterpreter.LoadInitialFile does for the console/telnet front ends,
then emits terminated/exited once it returns.
*/
func (s *Server) runProgram(program string) {
	exitCode := 0

	src, err := ioutil.ReadFile(program)
	if err == nil {
		var ast *parser.ASTNode
		if ast, err = parser.ParseWithRuntime(program, string(src), s.provider); err == nil {
			if err = ast.Runtime.Validate(); err == nil {
				tid := s.provider.NewThreadID()
				_, err = ast.Runtime.Eval(s.globalVS, make(map[string]interface{}), tid)
				s.session.RecordThreadFinished(tid)
			}
		}
	}

	if err != nil {
		exitCode = 1
		s.send(&dap.OutputEvent{
			Event: *newEvent("output"),
			Body:  dap.OutputEventBody{Category: "stderr", Output: err.Error() + "\n"},
		})
	}

	s.send(&dap.TerminatedEvent{Event: *newEvent("terminated")})
	s.send(&dap.ExitedEvent{Event: *newEvent("exited"), Body: dap.ExitedEventBody{ExitCode: exitCode}})
}

/*
defaultFormat adapts a DAP ValueFormat into a render.Format.
*/
func defaultFormat(f dap.ValueFormat) render.Format {
	format := render.DefaultFormat()
	format.Hex = f.Hex
	return format
}
