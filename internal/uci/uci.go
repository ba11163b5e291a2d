// Package uci drives a thread pool over the Universal Chess Interface
// text protocol.
package uci

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/hailam/chesscore/internal/board"
	"github.com/hailam/chesscore/internal/engine"
)

// UCI implements the Universal Chess Interface protocol.
type UCI struct {
	pool     *engine.ThreadPool
	position *board.Position
	in       io.Reader
	out      *lockedWriter
}

// lockedWriter serializes the driver's replies with the primary
// searcher's info and bestmove lines.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (lw *lockedWriter) Write(p []byte) (int, error) {
	lw.mu.Lock()
	defer lw.mu.Unlock()
	return lw.w.Write(p)
}

// New creates a UCI handler reading commands from in and replying on out.
// The pool's search output is redirected to out.
func New(pool *engine.ThreadPool, in io.Reader, out io.Writer) *UCI {
	lw := &lockedWriter{w: out}
	pool.SetOutput(lw)
	pool.SetStdout(true)
	return &UCI{
		pool:     pool,
		position: board.NewPosition(),
		in:       in,
		out:      lw,
	}
}

func (u *UCI) println(args ...any) {
	fmt.Fprintln(u.out, args...)
}

func (u *UCI) printf(format string, args ...any) {
	fmt.Fprintf(u.out, format, args...)
}

// Run reads commands until quit or end of input. A running search is
// stopped and joined before Run returns.
func (u *UCI) Run() error {
	scanner := bufio.NewScanner(u.in)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		parts := strings.Fields(line)
		cmd := parts[0]
		args := parts[1:]
		log.Debug().Str("cmd", line).Msg("uci-command")

		switch cmd {
		case "uci":
			u.handleUCI()
		case "isready":
			u.println("readyok")
		case "ucinewgame":
			u.handleNewGame()
		case "position":
			u.handlePosition(args)
		case "go":
			u.handleGo(args)
		case "stop":
			u.handleStop()
		case "quit":
			u.handleStop()
			return nil
		case "setoption":
			u.handleSetOption(args)
		// Debug commands
		case "d":
			u.println(u.position.String())
		case "perft":
			u.handlePerft(args)
		default:
			u.printf("info string unknown command: %s\n", cmd)
		}
	}
	u.handleStop()
	return scanner.Err()
}

// handleUCI responds to the "uci" command.
func (u *UCI) handleUCI() {
	u.println("id name chesscore")
	u.println("id author the chesscore authors")
	u.println()
	u.printf("option name Hash type spin default %d min 1 max 4096\n", engine.DefaultHashMB)
	u.printf("option name Threads type spin default 1 min 1 max %d\n", engine.MaxThreads)
	u.println("option name Clear Hash type button")
	u.println("option name Algorithm type combo default alphabeta var alphabeta var minimax")
	u.println("uciok")
}

// handleNewGame resets the engine for a new game.
func (u *UCI) handleNewGame() {
	u.pool.ClearHash()
	u.position = board.NewPosition()
}

// handlePosition parses and sets up a position.
// Formats:
//   - position startpos
//   - position startpos moves e2e4 e7e5
//   - position fen <fen>
//   - position fen <fen> moves e2e4
func (u *UCI) handlePosition(args []string) {
	pos, err := ParsePosition(args)
	if err != nil {
		log.Warn().Err(err).Msg("uci-position")
		u.printf("info string %v\n", err)
		return
	}
	u.position = pos
}

// ParsePosition builds the position described by the arguments of a
// "position" command.
func ParsePosition(args []string) (*board.Position, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("position: missing startpos or fen")
	}

	movesAt := len(args)
	for i, arg := range args {
		if arg == "moves" {
			movesAt = i
			break
		}
	}

	var pos *board.Position
	switch args[0] {
	case "startpos":
		pos = board.NewPosition()
	case "fen":
		var err error
		pos, err = board.ParseFEN(strings.Join(args[1:movesAt], " "))
		if err != nil {
			return nil, fmt.Errorf("position: %w", err)
		}
	default:
		return nil, fmt.Errorf("position: unknown source %q", args[0])
	}

	if movesAt < len(args) {
		for _, s := range args[movesAt+1:] {
			m, err := board.ParseMove(s, pos)
			if err != nil {
				return nil, fmt.Errorf("position: %w", err)
			}
			pos.ApplyMove(m)
		}
	}
	return pos, nil
}

// handleGo starts a search and returns at once. The pool's primary
// prints bestmove when the search ends. A search still running from an
// earlier go is stopped first.
func (u *UCI) handleGo(args []string) {
	limits := ParseGo(args)
	u.handleStop()
	if u.position.GenerateMoves().Len() == 0 {
		u.println("bestmove 0000")
		return
	}
	u.pool.UCISearch(u.position, limits)
}

// ParseGo converts the arguments of a "go" command to search limits.
// Unknown tokens and malformed numbers are ignored.
func ParseGo(args []string) engine.Limits {
	limits := engine.Limits{Start: time.Now()}

	ms := func(v string) time.Duration {
		n, _ := strconv.Atoi(v)
		return time.Duration(n) * time.Millisecond
	}
	for i := 0; i < len(args); i++ {
		key := args[i]
		if key == "infinite" {
			limits.Infinite = true
			continue
		}
		if i+1 == len(args) {
			break
		}
		v := args[i+1]
		switch key {
		case "depth":
			limits.Depth, _ = strconv.Atoi(v)
		case "nodes":
			limits.Nodes, _ = strconv.ParseUint(v, 10, 64)
		case "movetime":
			limits.MoveTime = ms(v)
		case "wtime":
			limits.Time[board.White] = ms(v)
		case "btime":
			limits.Time[board.Black] = ms(v)
		case "winc":
			limits.Inc[board.White] = ms(v)
		case "binc":
			limits.Inc[board.Black] = ms(v)
		case "movestogo":
			limits.MovesToGo, _ = strconv.Atoi(v)
		default:
			continue
		}
		i++
	}
	return limits
}

// handleStop stops the current search and waits for its bestmove.
func (u *UCI) handleStop() {
	u.pool.Stop()
	u.pool.WaitForFinish()
}

// handleSetOption processes "setoption" commands.
func (u *UCI) handleSetOption(args []string) {
	// Format: setoption name <name> value <value>
	var name, value []string
	var target *[]string
	for _, arg := range args {
		switch arg {
		case "name":
			target = &name
		case "value":
			target = &value
		default:
			if target != nil {
				*target = append(*target, arg)
			}
		}
	}
	key := strings.ToLower(strings.Join(name, " "))
	val := strings.Join(value, " ")

	switch key {
	case "threads":
		n, err := strconv.Atoi(val)
		if err != nil {
			u.printf("info string invalid Threads value %q\n", val)
			return
		}
		if err := u.pool.SetThreadCount(n); err != nil {
			log.Error().Err(err).Msg("uci-threads")
		}
	case "hash":
		mb, err := strconv.Atoi(val)
		if err != nil || mb < 1 {
			u.printf("info string invalid Hash value %q\n", val)
			return
		}
		u.pool.SetHashSize(mb)
	case "clear hash":
		u.pool.ClearHash()
	case "algorithm":
		switch strings.ToLower(val) {
		case "alphabeta":
			u.pool.SetAlgorithm(engine.AlphaBeta{})
		case "minimax":
			u.pool.SetAlgorithm(engine.Minimax{})
		default:
			u.printf("info string unknown algorithm %q\n", val)
		}
	default:
		u.printf("info string unknown option %q\n", strings.Join(name, " "))
	}
}

// handlePerft prints the per-move divide and the total node count.
func (u *UCI) handlePerft(args []string) {
	depth := 5
	if len(args) > 0 {
		if d, err := strconv.Atoi(args[0]); err == nil {
			depth = d
		}
	}

	start := time.Now()
	divide := u.position.Divide(depth)
	elapsed := time.Since(start)

	moves := make([]string, 0, len(divide))
	var nodes uint64
	for m, n := range divide {
		moves = append(moves, m)
		nodes += n
	}
	sort.Strings(moves)
	for _, m := range moves {
		u.printf("%s: %d\n", m, divide[m])
	}
	u.printf("\nNodes searched: %d\n", nodes)
	log.Debug().Int("depth", depth).Uint64("nodes", nodes).Dur("elapsed", elapsed).Msg("perft")
}
