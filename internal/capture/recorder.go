package capture

import (
	"log"
	"path/filepath"
	"sync"
	"time"

	"lecturecast/internal/fsclient"
	"lecturecast/internal/opresult"
	"lecturecast/internal/scheduler"
)

// killDelay is the grace period between sending the quit keystroke and
// force-killing a capture process that ignored it.
const killDelay = 3 * time.Second

// Process is the surface the recorder needs from a launched capture
// process.
type Process interface {
	Pid() int
	Alive() bool
	Done() <-chan struct{}
}

// ProcessClient is the surface the recorder needs from the external
// process client.
type ProcessClient interface {
	Execute(command string) (opresult.Result, Process)
	SendQuitSignal(p Process) opresult.Result
	KillProcess(pid int) opresult.Result
}

// Client adapts fsclient.Client to the ProcessClient interface.
type Client struct {
	fs *fsclient.Client
}

func NewClient(fs *fsclient.Client) *Client {
	return &Client{fs: fs}
}

func (c *Client) Execute(command string) (opresult.Result, Process) {
	res, p := c.fs.Execute(command)
	if p == nil {
		return res, nil
	}
	return res, p
}

func (c *Client) SendQuitSignal(p Process) opresult.Result {
	fp, ok := p.(*fsclient.Process)
	if !ok {
		return opresult.Fatalf("unknown process handle")
	}
	return c.fs.SendQuitSignal(fp)
}

func (c *Client) KillProcess(pid int) opresult.Result {
	return c.fs.KillProcess(pid)
}

// Recorder owns at most one active capture process for a single hardware
// input. Callers are serialized by the request-handling layer; the mutex
// only guards against overlapping handler invocations.
type Recorder struct {
	input     string // hardware input this recorder is bound to
	command   string // configured capture-tool invocation
	client    ProcessClient
	scheduler *scheduler.Scheduler
	pipe      *Pipeline

	mu       sync.Mutex
	process  Process
	lastPath string
	lastFile string
}

func NewRecorder(input, command string, client ProcessClient, sched *scheduler.Scheduler, pipe *Pipeline) *Recorder {
	return &Recorder{
		input:     input,
		command:   command,
		client:    client,
		scheduler: sched,
		pipe:      pipe,
	}
}

func (r *Recorder) Input() string {
	return r.input
}

// Start launches the capture tool against the destination file. Starting
// while a capture is already active is rejected without side effects.
func (r *Recorder) Start(path, filename string) opresult.Result {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.isActiveLocked() {
		log.Printf("Recorder[%s]: can't start capture for file %s: camera is actually recording (PID %d)",
			r.input, filepath.Join(path, filename), r.process.Pid())
		return opresult.Fatalf("camera is actually recording")
	}

	command := r.command + " " + filepath.Join(path, filename)
	res, proc := r.client.Execute(command)
	if !res.Ok() {
		log.Printf("Recorder[%s]: capture start failed: %s; command: %s", r.input, res.Message, command)
		return res
	}

	r.process = proc
	r.lastPath = path
	r.lastFile = filename
	log.Printf("Recorder[%s]: capture started (PID %d; command: %s)", r.input, proc.Pid(), command)
	return res
}

// Stop sends the graceful quit keystroke and always schedules a forced
// kill after the grace period, because the capture tool may ignore the
// keystroke. Stopping an idle recorder is not an error.
func (r *Recorder) Stop() opresult.Result {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.isActiveLocked() {
		pid := 0
		if r.process != nil {
			pid = r.process.Pid()
			r.process = nil
		}
		log.Printf("Recorder[%s]: not active, can't stop non-existing capture process (PID %d)", r.input, pid)
		return opresult.Successf("recorder isn't active: can't stop non existing capture process")
	}

	proc := r.process
	res := r.client.SendQuitSignal(proc)

	kill := r.scheduler.RunWithDelay(func() {
		r.client.KillProcess(proc.Pid())
	}, killDelay)
	go func() {
		// A clean exit before the deadline cancels the forced kill so a
		// reused pid is never killed spuriously.
		<-proc.Done()
		kill.Cancel()
	}()

	if !res.Ok() {
		log.Printf("Recorder[%s]: problems while stopping capture (PID %d): %s", r.input, proc.Pid(), res.Message)
		return res
	}

	log.Printf("Recorder[%s]: capture stopped (PID %d)", r.input, proc.Pid())
	r.process = nil
	if r.pipe != nil {
		go r.pipe.Apply(r.lastPath, r.lastFile)
	}
	return res
}

// IsActive reports whether a capture process is live: a handle exists and
// its exit status has not been observed.
func (r *Recorder) IsActive() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.isActiveLocked()
}

func (r *Recorder) isActiveLocked() bool {
	return r.process != nil && r.process.Alive()
}
