// © 2025 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

/*
Package server runs and inspects the Node.js server that the desktop app
wraps.

[Run] supervises the server as a child process for development: it passes
the app's environment variables through, captures the server output into a
bounded log buffer, optionally restarts the server when its sources change,
and stops it when the context is canceled.

[Detect] answers whether a server is already running on a port, no matter
who started it, the way the desktop app does it: by asking the health
endpoint.
*/
package server

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.astrophena.name/base/logger"

	"github.com/caarlos0/env/v11"
	"github.com/fsnotify/fsnotify"
)

// Possible errors, used in tests.
var (
	errAlreadyRunning = errors.New("server already running")
	errServerExited   = errors.New("server exited unexpectedly")
	errServerNotFound = errors.New("could not find server directory with src/index.js")
)

// How long to wait after an interrupt before killing the server outright.
const stopTimeout = 5 * time.Second

// Config represents a supervisor configuration.
type Config struct {
	// Dir is the directory containing the server sources (src/index.js). If
	// empty, it is located by walking up from the current directory.
	Dir string
	// Port is the port the server listens on.
	Port int `env:"PORT" envDefault:"3001"`
	// AuthToken is passed to the server as AUTH_TOKEN when set.
	AuthToken string `env:"AUTH_TOKEN"`
	// ConfigPath is passed to the server as CONFIG_PATH when set.
	ConfigPath string `env:"CONFIG_PATH"`
	// Watch determines whether the server sources are watched and the
	// server restarted on change.
	Watch bool
	// Logs collects the server output. If nil, a fresh buffer is used.
	Logs *Logs
	// Output is where the server output is echoed. If nil, os.Stdout.
	Output io.Writer
	// HTTPClient is an HTTP client used for health checks.
	HTTPClient *http.Client

	command    []string // used in tests, replaces the node invocation
	readyHook  func()   // used in tests, called once the server process is up
	runCommand func(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ConfigFromEnv returns a configuration populated from the environment
// variables the desktop app itself understands (PORT, AUTH_TOKEN,
// CONFIG_PATH).
func ConfigFromEnv() (*Config, error) {
	c := new(Config)
	if err := env.Parse(c); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return c, nil
}

func (c *Config) setDefaults() {
	if c.Port == 0 {
		c.Port = 3001
	}
	if c.Logs == nil {
		c.Logs = new(Logs)
	}
	if c.Output == nil {
		c.Output = os.Stdout
	}
	if c.runCommand == nil {
		c.runCommand = runCommand
	}
}

func runCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// Run starts the server and supervises it until ctx is canceled.
//
// It refuses to start when something already answers on the health URL of
// the configured port. If the server exits on its own, Run returns an error
// that includes the recent error output.
func Run(ctx context.Context, c *Config) error {
	if c == nil {
		c = &Config{}
	}
	c.setDefaults()

	if c.Dir == "" {
		dir, err := locate(".")
		if err != nil {
			return err
		}
		c.Dir = dir
	}

	if Health(ctx, c.HTTPClient, c.Port) {
		return fmt.Errorf("port %d: %w", c.Port, errAlreadyRunning)
	}

	restart := make(chan struct{}, 1)
	if c.Watch {
		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			return err
		}
		defer watcher.Close()

		dir := filepath.Join(c.Dir, "src")
		if err := watchRecursive(watcher, dir); err != nil {
			return err
		}

		// It's better to have a bit of delay, so that we don't restart the
		// server on each keystroke.
		debouncer := newDebouncer(250*time.Millisecond, func() {
			select {
			case restart <- struct{}{}:
			default:
			}
		})

		go func() {
			logger.Info(ctx, "watching for changes", slog.String("dir", dir))
			for {
				select {
				case event, ok := <-watcher.Events:
					if !ok {
						return
					}
					if !shouldRestart(event.Name, event.Op) {
						continue
					}
					logger.Info(ctx, "detected change, scheduling restart",
						slog.String("name", event.Name),
						slog.Any("op", event.Op),
					)
					debouncer.Do()
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	for {
		cmd, exited, err := c.start(ctx)
		if err != nil {
			return err
		}
		logger.Info(ctx, "server started",
			slog.Int("pid", cmd.Process.Pid),
			slog.String("url", healthURL(c.Port)),
		)
		if c.readyHook != nil {
			c.readyHook()
		}

		select {
		case <-ctx.Done():
			logger.Info(ctx, "shutting down")
			stop(cmd, exited)
			return nil
		case <-restart:
			logger.Info(ctx, "restarting server")
			stop(cmd, exited)
		case err := <-exited:
			status := "exit status 0"
			if err != nil {
				status = err.Error()
			}
			return fmt.Errorf("%w: %s%s", errServerExited, status, recentErrors(c.Logs))
		}
	}
}

// start spawns the server process and begins capturing its output. The
// returned channel receives the result of waiting for the process, once,
// after the output streams are drained.
func (c *Config) start(ctx context.Context) (*exec.Cmd, <-chan error, error) {
	argv := c.command
	if len(argv) == 0 {
		argv = []string{"node", filepath.Join("src", "index.js")}
	}

	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Dir = c.Dir
	cmd.Env = append(os.Environ(), "PORT="+strconv.Itoa(c.Port))
	if c.AuthToken != "" {
		cmd.Env = append(cmd.Env, "AUTH_TOKEN="+c.AuthToken)
	}
	if c.ConfigPath != "" {
		cmd.Env = append(cmd.Env, "CONFIG_PATH="+c.ConfigPath)
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, nil, err
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, nil, err
	}

	if err := cmd.Start(); err != nil {
		return nil, nil, fmt.Errorf("starting server: %w", err)
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go c.stream(&wg, stdout, false)
	go c.stream(&wg, stderr, true)

	exited := make(chan error, 1)
	go func() {
		// Wait must not be called before both streams are drained.
		wg.Wait()
		exited <- cmd.Wait()
	}()

	return cmd, exited, nil
}

// stream reads the server output line by line, recording each line in the
// log buffer and echoing it. Everything on stderr counts as an error; for
// stdout the level is guessed from the line itself.
func (c *Config) stream(wg *sync.WaitGroup, r io.Reader, stderr bool) {
	defer wg.Done()
	// Not a bufio.Scanner: the server is free to log lines longer than
	// any fixed token limit, and losing the rest of the stream would also
	// leave the pipe undrained.
	br := bufio.NewReader(r)
	for {
		line, err := br.ReadString('\n')
		// The last line before EOF may lack a newline.
		if line != "" {
			text := strings.TrimRight(line, "\r\n")
			level := sniffLevel(text)
			if stderr {
				level = levelError
			}
			c.Logs.Append(level, text)
			fmt.Fprintln(c.Output, text)
		}
		if err != nil {
			if err != io.EOF {
				c.Logs.Append(levelError, fmt.Sprintf("reading server output: %v", err))
			}
			return
		}
	}
}

// stop asks the server to exit and kills it if it doesn't within
// stopTimeout.
func stop(cmd *exec.Cmd, exited <-chan error) {
	if err := cmd.Process.Signal(os.Interrupt); err != nil {
		cmd.Process.Kill()
	}
	select {
	case <-exited:
	case <-time.After(stopTimeout):
		cmd.Process.Kill()
		<-exited
	}
}

// recentErrors summarizes the last error-level entries of the log buffer,
// for inclusion in the error returned when the server dies.
func recentErrors(l *Logs) string {
	var errs []string
	for _, e := range l.Entries() {
		if e.Level == levelError {
			errs = append(errs, e.Message)
		}
	}
	if len(errs) == 0 {
		return ""
	}
	if len(errs) > 5 {
		errs = errs[len(errs)-5:]
	}
	return "; recent errors:\n\t" + strings.Join(errs, "\n\t")
}

// locate finds the server directory by walking up from dir, looking for
// server/src/index.js.
func locate(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	for {
		candidate := filepath.Join(dir, "server")
		if _, err := os.Stat(filepath.Join(candidate, "src", "index.js")); err == nil {
			return candidate, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errServerNotFound
		}
		dir = parent
	}
}

func watchRecursive(w *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if d.Name() == "node_modules" {
			return filepath.SkipDir
		}
		return w.Add(path)
	})
}

// shouldRestart reports whether a file change under the server sources
// warrants a restart.
func shouldRestart(path string, op fsnotify.Op) bool {
	base := filepath.Base(path)

	// Mac OS' worst mistake.
	if base == ".DS_Store" {
		return false
	}

	// Vim creates this temporary file to see whether it can write into a
	// target directory, and leaves backup files ending with a tilde.
	if base == "4913" || strings.HasSuffix(base, "~") {
		return false
	}

	// The server writes its own logs under the source tree; restarting on
	// those would loop forever.
	if strings.HasSuffix(base, ".log") {
		return false
	}
	if slices.Contains(strings.Split(filepath.ToSlash(path), "/"), "node_modules") {
		return false
	}

	if op&(fsnotify.Create|fsnotify.Remove|fsnotify.Write) != 0 {
		return true
	}

	// Ignore everything else: chmod won't affect the running server, and
	// rename produces a following create event, so just listen for that
	// instead.
	return false
}

// debouncer delays execution of a function until a specified duration has
// passed without any new events.
type debouncer struct {
	d  time.Duration
	mu sync.Mutex
	f  func()
	t  *time.Timer
}

func newDebouncer(d time.Duration, f func()) *debouncer {
	return &debouncer{d: d, f: f}
}

// Do schedules the function to be executed.
func (d *debouncer) Do() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.t != nil {
		d.t.Stop()
	}
	d.t = time.AfterFunc(d.d, d.f)
}
