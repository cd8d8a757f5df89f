// Package main is a runnable demo of the prosehist engine's selective
// undo/redo history. It reads commands from stdin, one per line, driving
// an EditorState and a history.Engine directly, and reports the resulting
// undo/redo depth after each one.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-prosehist/prosehist/internal/engine/history"
	"github.com/go-prosehist/prosehist/internal/engine/state"
	"github.com/go-prosehist/prosehist/internal/engine/stepmap"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	os.Exit(run())
}

// session bundles the mutable state a line of input acts on: the engine's
// configuration, the current document/selection, the undo/redo branches,
// and whether the next recorded edit should be forced into a new event.
type session struct {
	cfg       history.Config
	engine    *history.Engine
	st        *state.EditorState
	h         history.HistoryState
	closeNext bool
}

func run() int {
	opts := parseFlags()

	cfg := history.Config{Depth: opts.Depth, NewGroupDelay: 500}
	s := &session{
		cfg:    cfg,
		engine: history.NewEngine(cfg),
		st:     state.NewEditorState(opts.Content),
		h:      history.NewHistoryState(),
	}

	fmt.Printf("prosehist %s (depth=%d)\n", version, opts.Depth)
	fmt.Printf("doc: %q\n", s.st.Doc)
	fmt.Println("commands: insert <offset> <text> | delete <start> <end> | replace <start> <end> <text> | :undo | :redo | :close | :print | :quit")

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == ":quit" {
			break
		}
		if err := s.dispatch(line); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			continue
		}
		fmt.Printf("doc: %q  undoDepth=%d redoDepth=%d\n", s.st.Doc, s.h.UndoDepth(), s.h.RedoDepth())
	}
	if err := scanner.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: reading stdin: %v\n", err)
		return 1
	}
	return 0
}

func (s *session) dispatch(line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}

	switch fields[0] {
	case ":undo":
		return s.dispatchHistory(false)
	case ":redo":
		return s.dispatchHistory(true)
	case ":close":
		s.closeNext = true
		return nil
	case ":print":
		fmt.Println(s.st.Doc)
		return nil
	case "insert":
		if len(fields) < 3 {
			return fmt.Errorf("usage: insert <offset> <text>")
		}
		offset, err := parseOffset(fields[1])
		if err != nil {
			return err
		}
		return s.applyStep(stepmap.NewEditStep(offset, "", strings.Join(fields[2:], " ")))
	case "delete":
		if len(fields) != 3 {
			return fmt.Errorf("usage: delete <start> <end>")
		}
		start, end, err := parseRange(fields[1], fields[2], s.st.Doc)
		if err != nil {
			return err
		}
		return s.applyStep(stepmap.NewEditStep(start, s.st.Doc[start:end], ""))
	case "replace":
		if len(fields) < 4 {
			return fmt.Errorf("usage: replace <start> <end> <text>")
		}
		start, end, err := parseRange(fields[1], fields[2], s.st.Doc)
		if err != nil {
			return err
		}
		return s.applyStep(stepmap.NewEditStep(start, s.st.Doc[start:end], strings.Join(fields[3:], " ")))
	default:
		return fmt.Errorf("unknown command %q", fields[0])
	}
}

// applyStep wraps step in a Transform over the current state, runs it
// through the engine, and advances the session's state and history.
func (s *session) applyStep(step stepmap.EditStep) error {
	tr := s.st.Tr()
	tr.Time = time.Now().UnixMilli()
	if _, ok := tr.MaybeStep(step); !ok {
		return fmt.Errorf("step did not apply: %s", tr.Failed())
	}
	if s.closeNext {
		history.CloseHistory(tr)
		s.closeNext = false
	}
	s.h = s.engine.ApplyTransaction(s.st, tr, s.h)
	s.st = s.st.Apply(tr)
	return nil
}

// dispatchHistory runs Undo or Redo against the session's HistoryState and
// feeds the resulting transform back through the engine, mirroring the
// apply loop a real host editor runs on every transaction.
func (s *session) dispatchHistory(redo bool) error {
	var tr *stepmap.Transform
	var ok bool
	if redo {
		tr, ok = history.Redo(s.cfg, s.h, s.st)
	} else {
		tr, ok = history.Undo(s.cfg, s.h, s.st)
	}
	if !ok {
		if redo {
			return fmt.Errorf("nothing to redo")
		}
		return fmt.Errorf("nothing to undo")
	}
	s.h = s.engine.ApplyTransaction(s.st, tr, s.h)
	s.st = s.st.Apply(tr)
	return nil
}

func parseRange(startField, endField, doc string) (start, end int64, err error) {
	start, err = parseOffset(startField)
	if err != nil {
		return 0, 0, err
	}
	end, err = parseOffset(endField)
	if err != nil {
		return 0, 0, err
	}
	if end < start || end > int64(len(doc)) {
		return 0, 0, fmt.Errorf("invalid range [%d,%d)", start, end)
	}
	return start, end, nil
}

func parseOffset(field string) (int64, error) {
	n, err := strconv.ParseInt(field, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid offset %q: %w", field, err)
	}
	return n, nil
}

type options struct {
	Content string
	Depth   int
}

func parseFlags() options {
	var opts options
	var showVersion bool

	flag.StringVar(&opts.Content, "content", "", "Initial document content")
	flag.IntVar(&opts.Depth, "depth", 100, "Maximum number of undoable events retained per branch")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "prosehist - selective undo/redo history demo\n\n")
		fmt.Fprintf(os.Stderr, "Usage: prosehist [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}

	flag.Parse()

	if showVersion {
		fmt.Printf("prosehist %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		os.Exit(0)
	}

	return opts
}
