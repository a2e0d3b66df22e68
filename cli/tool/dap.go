/*
 * ECAL
 *
 * Copyright 2020 Matthias Ladkau. All rights reserved.
 *
 * This Source Code Form is subject to the terms of the MIT
 * License, If a copy of the MIT License was not distributed with this
 * file, You can obtain one at https://opensource.org/licenses/MIT.
 */

package tool

import (
	"flag"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/krotik/ecal/dap"
	"github.com/krotik/ecal/debug"
)

/*
CLIDapInterpreter is a commandline interpreter that exposes ECAL through
the Debug Adapter Protocol. It speaks DAP over stdio, the way an editor
expects to launch a debug adapter as a child process.
*/
type CLIDapInterpreter struct {
	*CLIInterpreter

	BreakOnError *bool // Flag if the debugger should stop when encountering an error
}

/*
NewCLIDapInterpreter wraps an existing CLIInterpreter object with DAP
capabilities.
*/
func NewCLIDapInterpreter(i *CLIInterpreter) *CLIDapInterpreter {
	return &CLIDapInterpreter{i, nil}
}

/*
ParseArgs parses the command line arguments.
*/
func (i *CLIDapInterpreter) ParseArgs() bool {
	if i.BreakOnError != nil {
		return false
	}

	i.BreakOnError = flag.Bool("breakonerror", false, "Stop the execution when encountering an error")

	return i.CLIInterpreter.ParseArgs()
}

/*
Interpret starts the ECAL DAP server on stdio. No program is loaded up
front - the client starts execution via a "launch" request once it has
finished configuring breakpoints.
*/
func (i *CLIDapInterpreter) Interpret() error {

	if i.ParseArgs() {
		return nil
	}

	err := i.CreateRuntimeProvider("dap")

	if err == nil {
		session := debug.NewSession(i.GlobalVS, i.RuntimeProvider.Logger)
		session.BreakOnError(*i.BreakOnError)

		i.RuntimeProvider.Debugger = session

		dapLog := logrus.New()
		dapLog.SetOutput(os.Stderr)

		server := dap.NewServer(session, i.RuntimeProvider, i.GlobalVS, *i.Dir, os.Stdin, os.Stdout, dapLog)

		err = server.Serve()
	}

	return err
}
