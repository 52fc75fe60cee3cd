package fakes

import (
	"context"
	"fmt"
	"strings"
)

// FakeRunner is a scripted command runner for tests that stand in for the
// az CLI. Responses are keyed by the full command line, and unscripted
// commands return an error so tests fail loudly on unexpected invocations.
type FakeRunner struct {
	// Responses maps full command lines to scripted results
	Responses map[string]RunnerResponse
	// Calls records every command line in invocation order
	Calls []string
	// RunFunc allows custom behavior for Run
	RunFunc func(ctx context.Context, name string, args ...string) (string, error)
}

// RunnerResponse is one scripted command result
type RunnerResponse struct {
	Stdout string
	Err    error
}

// NewFakeRunner creates a new scripted runner
func NewFakeRunner() *FakeRunner {
	return &FakeRunner{
		Responses: make(map[string]RunnerResponse),
	}
}

// On scripts the result for a full command line, e.g. "az account show"
func (r *FakeRunner) On(command string, stdout string, err error) {
	r.Responses[command] = RunnerResponse{Stdout: stdout, Err: err}
}

// Run records the invocation and returns the scripted result
func (r *FakeRunner) Run(ctx context.Context, name string, args ...string) (string, error) {
	command := strings.Join(append([]string{name}, args...), " ")
	r.Calls = append(r.Calls, command)

	if r.RunFunc != nil {
		return r.RunFunc(ctx, name, args...)
	}

	if resp, ok := r.Responses[command]; ok {
		return resp.Stdout, resp.Err
	}

	return "", fmt.Errorf("no scripted response for command: %s", command)
}
