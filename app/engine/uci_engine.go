// Package engine starts UCI engine processes, speaks UCI over stdin/stdout and
// hands engines out to one search at a time.
package engine

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"
	"time"

	"example/fair-chess-api/app/models"

	"github.com/pkg/errors"
)

var ErrNotReady = errors.New("engine not ready")

const stopDrainTimeout = 500 * time.Millisecond

type UCIEngine struct {
	cmd   *exec.Cmd
	in    *bufio.Writer
	out   *bufio.Scanner
	mu    sync.Mutex
	ready bool
}

func NewUCIEngine(path string) (*UCIEngine, error) {
	cmd := exec.Command(path)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, errors.Wrap(err, "stdin pipe")
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, errors.Wrap(err, "stdout pipe")
	}

	out := bufio.NewScanner(stdout)
	out.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	e := &UCIEngine{
		cmd: cmd,
		in:  bufio.NewWriter(stdin),
		out: out,
	}
	if err := cmd.Start(); err != nil {
		return nil, errors.Wrapf(err, "start %s", path)
	}
	// Handshake: "uci" -> wait for "uciok"; also "isready" -> "readyok"
	if err := e.send("uci"); err != nil {
		_ = cmd.Process.Kill()
		return nil, err
	}
	if err := e.waitFor("uciok"); err != nil {
		_ = cmd.Process.Kill()
		return nil, err
	}
	if err := e.sync(); err != nil {
		_ = cmd.Process.Kill()
		return nil, err
	}
	e.ready = true
	return e, nil
}

// Ready reports whether the engine can take another request. An engine that
// failed a read or write, or whose output could not be drained after a
// cancelled search, is never ready again.
func (e *UCIEngine) Ready() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ready
}

func (e *UCIEngine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.ready = false
	_ = e.send("quit")
	if e.cmd == nil {
		return nil
	}
	return e.cmd.Wait()
}

// SetOption sends a UCI option such as Threads or Hash.
func (e *UCIEngine) SetOption(name string, value any) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.ready {
		return ErrNotReady
	}
	if err := e.send(fmt.Sprintf("setoption name %s value %v", name, value)); err != nil {
		return e.broken(err)
	}
	return e.broken(e.sync())
}

func (e *UCIEngine) NewGame() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.ready {
		return ErrNotReady
	}
	if err := e.send("ucinewgame"); err != nil {
		return e.broken(err)
	}
	return e.broken(e.sync())
}

// Analyse searches fen to a fixed depth and returns up to multiPV lines ordered
// by the engine's own ranking. Lines the engine never reported are left out.
func (e *UCIEngine) Analyse(ctx context.Context, fen string, depth, multiPV int) ([]models.PVLine, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.ready {
		return nil, ErrNotReady
	}
	if strings.ContainsAny(fen, "\r\n") {
		return nil, errors.New("fen must be single-line")
	}
	if multiPV < 1 {
		multiPV = 1
	}

	if err := e.send(fmt.Sprintf("setoption name MultiPV value %d", multiPV)); err != nil {
		return nil, e.broken(err)
	}
	if err := e.sync(); err != nil {
		return nil, e.broken(err)
	}
	if err := e.send("position fen " + strings.TrimSpace(fen)); err != nil {
		return nil, e.broken(err)
	}
	if err := e.send(fmt.Sprintf("go depth %d", depth)); err != nil {
		return nil, e.broken(err)
	}

	type analysis struct {
		lines []models.PVLine
		err   error
	}

	// Read until "bestmove ..." or context cancels
	readDone := make(chan analysis, 1)
	go func() {
		linesByPV := make(map[int]models.PVLine, multiPV)
		for e.out.Scan() {
			line := strings.TrimSpace(e.out.Text())
			if _, ok := parseBestMoveLine(line); ok {
				readDone <- analysis{lines: sortedLines(linesByPV)}
				return
			}
			if update, ok := parseInfoLine(line); ok {
				mergeInfo(linesByPV, update, multiPV)
			}
		}
		err := e.out.Err()
		if err == nil {
			err = io.ErrUnexpectedEOF
		}
		readDone <- analysis{err: errors.Wrap(err, "read engine output")}
	}()

	select {
	case <-ctx.Done():
		if err := e.send("stop"); err != nil {
			e.ready = false
		}
		select {
		case res := <-readDone:
			_ = e.broken(res.err)
		case <-time.After(stopDrainTimeout):
			e.ready = false
		}
		return nil, ctx.Err()
	case res := <-readDone:
		return res.lines, e.broken(res.err)
	}
}

// broken marks the engine as not ready when err is a transport failure and
// returns err unchanged. Callers hold e.mu.
func (e *UCIEngine) broken(err error) error {
	if err != nil {
		e.ready = false
	}
	return err
}

func (e *UCIEngine) send(cmd string) error {
	if _, err := fmt.Fprintln(e.in, cmd); err != nil {
		return errors.Wrapf(err, "write %q", cmd)
	}
	return errors.Wrapf(e.in.Flush(), "flush %q", cmd)
}

// sync sends "isready" and waits for "readyok".
func (e *UCIEngine) sync() error {
	if err := e.send("isready"); err != nil {
		return err
	}
	return e.waitFor("readyok")
}

func (e *UCIEngine) waitFor(token string) error {
	for e.out.Scan() {
		if strings.TrimSpace(e.out.Text()) == token {
			return nil
		}
	}
	err := e.out.Err()
	if err == nil {
		err = io.ErrUnexpectedEOF
	}
	return errors.WithMessagef(err, "waiting for %s", token)
}
