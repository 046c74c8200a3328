package fsclient

import (
	"io"
	"log"
	"os"
	"os/exec"
	"runtime"
	"strings"

	"github.com/pkg/errors"

	"lecturecast/internal/opresult"
)

// Client executes external commands on behalf of the recording and export
// pipeline. All commands go through the platform shell so configured
// invocations can carry their own flags.
type Client struct{}

func New() *Client {
	return &Client{}
}

// Process is a handle to a command launched with Execute. Its stdin pipe
// stays open so a graceful-stop keystroke can be delivered later.
type Process struct {
	cmd     *exec.Cmd
	stdin   io.WriteCloser
	done    chan struct{}
	waitErr error
}

// Pid returns the process id of the launched command.
func (p *Process) Pid() int {
	return p.cmd.Process.Pid
}

// Alive reports whether the process has started and its exit status has
// not been observed yet.
func (p *Process) Alive() bool {
	select {
	case <-p.done:
		return false
	default:
		return true
	}
}

// Done is closed once the process exit status has been collected.
func (p *Process) Done() <-chan struct{} {
	return p.done
}

func shellCommand(command string) *exec.Cmd {
	if runtime.GOOS == "windows" {
		return exec.Command("cmd", "/C", command)
	}
	return exec.Command("sh", "-c", command)
}

// Execute launches command through the shell with a writable stdin pipe
// attached and returns immediately.
func (c *Client) Execute(command string) (opresult.Result, *Process) {
	cmd := shellCommand(command)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return opresult.FromError(errors.Wrap(err, "failed to attach stdin pipe")), nil
	}

	if err := cmd.Start(); err != nil {
		return opresult.FromError(errors.Wrapf(err, "failed to start command %q", command)), nil
	}

	p := &Process{cmd: cmd, stdin: stdin, done: make(chan struct{})}
	go func() {
		p.waitErr = cmd.Wait()
		close(p.done)
	}()

	return opresult.Successf("command started (PID %d)", p.Pid()), p
}

// ExecuteSync runs command to completion. Exit code 0 is success;
// allowableCode is tolerated as success-equivalent because some tools
// return it on normal completion.
func (c *Client) ExecuteSync(command string, allowableCode int) opresult.Result {
	cmd := shellCommand(command)
	err := cmd.Run()
	if err == nil {
		return opresult.Successf("command completed")
	}

	if exitErr, ok := err.(*exec.ExitError); ok && exitErr.ExitCode() == allowableCode {
		return opresult.Successf("command completed with allowable code %d", allowableCode)
	}

	return opresult.FromError(errors.Wrapf(err, "command failed: %q", command))
}

// SendQuitSignal delivers the capture tool's quit keystroke over the
// stdin pipe of a running process.
func (c *Client) SendQuitSignal(p *Process) opresult.Result {
	if p == nil || p.stdin == nil {
		return opresult.Fatalf("no process to signal")
	}

	if _, err := io.WriteString(p.stdin, "q"); err != nil {
		return opresult.FromError(errors.Wrapf(err, "failed to send quit signal to PID %d", p.Pid()))
	}

	return opresult.Successf("quit signal sent to PID %d", p.Pid())
}

// KillProcess force-kills a process by its id.
func (c *Client) KillProcess(pid int) opresult.Result {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return opresult.FromError(errors.Wrapf(err, "process %d not found", pid))
	}

	if err := proc.Kill(); err != nil {
		log.Printf("FSClient: failed to kill process %d: %v", pid, err)
		return opresult.FromError(errors.Wrapf(err, "failed to kill process %d", pid))
	}

	log.Printf("FSClient: killed process %d", pid)
	return opresult.Successf("process %d killed", pid)
}

// ProcessWithNameExists probes the process table for a process whose
// display name contains name.
func (c *Client) ProcessWithNameExists(name string) bool {
	var cmd *exec.Cmd
	if runtime.GOOS == "windows" {
		cmd = exec.Command("tasklist", "/FI", "IMAGENAME eq "+name)
	} else {
		cmd = exec.Command("ps", "-e", "-o", "comm=")
	}

	output, err := cmd.Output()
	if err != nil {
		log.Printf("FSClient: process probe for %q failed: %v", name, err)
		return false
	}

	return strings.Contains(string(output), name)
}
