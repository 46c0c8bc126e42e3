package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"jitscript/internal/compiler"
	"jitscript/internal/driver"
	"jitscript/internal/ui"
)

// wantProgressUI resolves --ui. Auto shows the view only when stderr is a
// terminal; stdout may be carrying the emitted IR.
func wantProgressUI(mode string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "on":
		return true, nil
	case "off":
		return false, nil
	case "", "auto":
		return isTerminal(os.Stderr), nil
	}
	return false, fmt.Errorf("invalid --ui value %q (expected auto|on|off)", mode)
}

type compileOutcome struct {
	result *driver.Result
	err    error
}

// runCompileWithUI runs driver.Compile in the background while a progress
// view renders its method events on stderr.
func runCompileWithUI(ctx context.Context, title, path string, opts driver.Options) (*driver.Result, error) {
	events := make(chan compiler.Event, 256)
	outcomeCh := make(chan compileOutcome, 1)

	go func() {
		opts.Progress = compiler.ChannelSink(events)
		res, err := driver.Compile(ctx, path, opts)
		close(events)
		outcomeCh <- compileOutcome{result: res, err: err}
	}()

	program := tea.NewProgram(ui.NewProgressModel(title, events), tea.WithOutput(os.Stderr))
	_, uiErr := program.Run()
	if uiErr != nil {
		// keep the compiler from blocking on a full channel
		go func() {
			for range events {
			}
		}()
	}
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.result, uiErr
	}
	return outcome.result, outcome.err
}
