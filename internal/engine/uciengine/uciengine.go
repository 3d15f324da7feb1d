// Package uciengine provides an Evaluator backed by a UCI engine subprocess
// such as Stockfish.
package uciengine

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/discochess/drillbook/internal/engine"
	"github.com/discochess/drillbook/internal/fen"
)

// DefaultDepth is the search depth used when none is configured.
const DefaultDepth = 16

// Engine drives a UCI chess engine over stdin/stdout.
// Requests are serialized; wrap it in an engine.Pool for concurrency and an
// engine.Cached to avoid re-searching known positions.
type Engine struct {
	mu     sync.Mutex
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	reader *bufio.Reader
	depth  int
	logger *zap.Logger
	closed bool
}

// Compile-time check that Engine implements engine.Evaluator.
var _ engine.Evaluator = (*Engine)(nil)

// New starts the engine binary at path and completes the UCI handshake.
func New(path string, depth int, logger *zap.Logger) (*Engine, error) {
	if depth <= 0 {
		depth = DefaultDepth
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	cmd := exec.Command(path)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("opening engine stdin: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("opening engine stdout: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("starting engine %q: %w", path, err)
	}

	e := &Engine{
		cmd:    cmd,
		stdin:  stdin,
		reader: bufio.NewReader(stdout),
		depth:  depth,
		logger: logger,
	}

	if err := e.handshake(); err != nil {
		e.Close()
		return nil, err
	}

	logger.Debug("engine started", zap.String("path", path), zap.Int("depth", depth))
	return e, nil
}

func (e *Engine) handshake() error {
	if err := e.send("uci"); err != nil {
		return err
	}
	if err := e.waitFor("uciok"); err != nil {
		return err
	}
	if err := e.send("isready"); err != nil {
		return err
	}
	return e.waitFor("readyok")
}

// Evaluate searches the position to the configured depth and returns the
// score and best move. The score is reported from White's perspective
// regardless of the side to move.
func (e *Engine) Evaluate(ctx context.Context, fenStr string) (*engine.Evaluation, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil, engine.ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := e.send("position fen " + fenStr); err != nil {
		return nil, fmt.Errorf("%w: %v", engine.ErrUnavailable, err)
	}
	if err := e.send(fmt.Sprintf("go depth %d", e.depth)); err != nil {
		return nil, fmt.Errorf("%w: %v", engine.ErrUnavailable, err)
	}

	eval, err := e.readEvaluation()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", engine.ErrUnavailable, err)
	}

	// UCI scores are from the side to move; normalize to White's view.
	side, err := fen.SideToMove(fenStr)
	if err == nil && side == "b" {
		if eval.CP != nil {
			flipped := -*eval.CP
			eval.CP = &flipped
		}
		if eval.Mate != nil {
			flipped := -*eval.Mate
			eval.Mate = &flipped
		}
	}

	return eval, nil
}

// readEvaluation consumes engine output until "bestmove", keeping the score
// from the deepest "info" line seen.
func (e *Engine) readEvaluation() (*engine.Evaluation, error) {
	eval := &engine.Evaluation{}

	for {
		line, err := e.reader.ReadString('\n')
		if err != nil {
			return nil, err
		}
		line = strings.TrimSpace(line)

		if strings.HasPrefix(line, "info ") {
			parseInfo(line, eval)
			continue
		}
		if strings.HasPrefix(line, "bestmove") {
			fields := strings.Fields(line)
			if len(fields) > 1 && fields[1] != "(none)" {
				eval.BestMove = fields[1]
			}
			return eval, nil
		}
	}
}

// parseInfo extracts depth and score from a UCI info line.
func parseInfo(line string, eval *engine.Evaluation) {
	fields := strings.Fields(line)
	for i := 0; i < len(fields)-1; i++ {
		switch fields[i] {
		case "depth":
			if d, err := strconv.Atoi(fields[i+1]); err == nil {
				eval.Depth = d
			}
		case "cp":
			if cp, err := strconv.Atoi(fields[i+1]); err == nil {
				eval.CP = &cp
				eval.Mate = nil
			}
		case "mate":
			if m, err := strconv.Atoi(fields[i+1]); err == nil {
				eval.Mate = &m
				eval.CP = nil
			}
		}
	}
}

func (e *Engine) send(cmd string) error {
	_, err := io.WriteString(e.stdin, cmd+"\n")
	return err
}

func (e *Engine) waitFor(token string) error {
	for {
		line, err := e.reader.ReadString('\n')
		if err != nil {
			return err
		}
		if strings.Contains(line, token) {
			return nil
		}
	}
}

// Close shuts the engine process down.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return engine.ErrClosed
	}
	e.closed = true

	_ = e.send("quit")
	_ = e.stdin.Close()
	return e.cmd.Wait()
}
