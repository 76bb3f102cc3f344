package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/gogpu/tilesheet"
)

// command is one parsed editing line.
type command struct {
	name string
	arg  string
	pos  tilesheet.Coord
}

var errQuit = errors.New("quit")

// commandHelp lists the editing commands.
const commandHelp = `commands:
  select <name>    select a source by basename
  next             select the next source no tile uses yet
  rotate           rotate the selection 90 degrees counter-clockwise
  fliph | flipv    toggle the horizontal or vertical flip
  place <col> <row>
  remove <col> <row>
  info [<col> <row>]
  sources          list sources, marking those in use
  rescan           rescan the source directory
  save
  quit`

// parseCommand parses one input line. Coordinates may be given as
// "3 4" or "3,4". Blank lines and #-comments parse to a zero command.
func parseCommand(line string) (command, error) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return command{}, nil
	}
	name, rest, _ := strings.Cut(line, " ")
	cmd := command{name: strings.ToLower(name), arg: strings.TrimSpace(rest)}

	switch cmd.name {
	case "place", "remove":
		pos, err := parseCoord(cmd.arg)
		if err != nil {
			return command{}, fmt.Errorf("%s: %w", cmd.name, err)
		}
		cmd.pos = pos
	case "info":
		if cmd.arg != "" {
			pos, err := parseCoord(cmd.arg)
			if err != nil {
				return command{}, fmt.Errorf("info: %w", err)
			}
			cmd.pos = pos
		}
	case "select":
		if cmd.arg == "" {
			return command{}, errors.New("select: missing source name")
		}
	case "next", "rotate", "fliph", "flipv", "sources", "rescan", "save", "quit", "exit", "help":
	default:
		return command{}, fmt.Errorf("unknown command %q", name)
	}
	return cmd, nil
}

func parseCoord(s string) (tilesheet.Coord, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' || r == '\t' })
	if len(fields) != 2 {
		return tilesheet.Coord{}, fmt.Errorf("want <col> <row>, got %q", s)
	}
	col, err := strconv.Atoi(fields[0])
	if err != nil {
		return tilesheet.Coord{}, fmt.Errorf("column: %w", err)
	}
	row, err := strconv.Atoi(fields[1])
	if err != nil {
		return tilesheet.Coord{}, fmt.Errorf("row: %w", err)
	}
	return tilesheet.Coord{Col: col, Row: row}, nil
}

// repl drives a session from line commands.
type repl struct {
	s   *tilesheet.Session
	out io.Writer
}

// run reads commands from in until quit or EOF. Command errors are
// reported and the loop continues; only read errors end it early.
func (r *repl) run(in io.Reader) error {
	sc := bufio.NewScanner(in)
	for sc.Scan() {
		cmd, err := parseCommand(sc.Text())
		if err != nil {
			fmt.Fprintln(r.out, "error:", err)
			continue
		}
		if cmd.name == "" {
			continue
		}
		if err := r.exec(cmd); err != nil {
			if errors.Is(err, errQuit) {
				return nil
			}
			fmt.Fprintln(r.out, "error:", err)
		}
	}
	return sc.Err()
}

func (r *repl) exec(cmd command) error {
	s := r.s
	switch cmd.name {
	case "select":
		if err := s.Select(cmd.arg); err != nil {
			return err
		}
		r.printSelection()
	case "next":
		if _, ok := s.NextUnused(); !ok {
			fmt.Fprintln(r.out, "every source is in use")
			return nil
		}
		r.printSelection()
	case "rotate":
		s.Rotate()
		r.printSelection()
	case "fliph":
		s.ToggleFlipH()
		r.printSelection()
	case "flipv":
		s.ToggleFlipV()
		r.printSelection()
	case "place":
		a, err := s.PlaceSelected(cmd.pos)
		if err != nil {
			return err
		}
		fmt.Fprintf(r.out, "placed %s at %v covering %d tiles\n", a.Source, a.Pos, len(a.Dependents)+1)
	case "remove":
		res, err := s.RemoveAt(cmd.pos)
		if err != nil {
			return err
		}
		fmt.Fprintf(r.out, "removed %d tiles\n", len(res.Cells))
		if len(res.Missing) > 0 {
			fmt.Fprintf(r.out, "warning: tiles %v were already missing\n", res.Missing)
		}
	case "info":
		r.info(cmd)
	case "sources":
		for _, name := range s.Names.Names() {
			mark := " "
			if s.Grid.IsUsed(name) {
				mark = "*"
			}
			fmt.Fprintf(r.out, "%s %s\n", mark, name)
		}
	case "rescan":
		if err := s.Rescan(); err != nil {
			return err
		}
		fmt.Fprintf(r.out, "%d sources\n", s.Names.Len())
	case "save":
		if err := s.Save(); err != nil {
			return err
		}
		fmt.Fprintf(r.out, "saved %s\n", s.ImagePath)
	case "help":
		fmt.Fprintln(r.out, commandHelp)
	case "quit", "exit":
		return errQuit
	}
	return nil
}

func (r *repl) printSelection() {
	name, ok := r.s.Selected()
	if !ok {
		fmt.Fprintln(r.out, "no selection")
		return
	}
	_, label, err := r.s.Preview()
	if err != nil {
		fmt.Fprintf(r.out, "selected %s (%v)\n", name, err)
		return
	}
	fmt.Fprintf(r.out, "selected %s %s\n", name, label)
}

func (r *repl) info(cmd command) {
	s := r.s
	if cmd.arg == "" {
		fmt.Fprintf(r.out, "%s: %d tiles used, %d sources\n", s.Name, s.Grid.Len(), s.Names.Len())
		if hl := s.Highlighted(); len(hl) > 0 {
			fmt.Fprintf(r.out, "selection used at %v\n", hl)
		}
		return
	}
	e, ok := s.Grid.Cell(cmd.pos)
	if !ok {
		fmt.Fprintf(r.out, "%v: empty\n", cmd.pos)
		return
	}
	fmt.Fprintf(r.out, "%v: %s %s", cmd.pos, e.Role, e.Source)
	if e.IsAnchor() {
		fmt.Fprintf(r.out, " %dx%d", e.Width, e.Height)
	} else {
		fmt.Fprintf(r.out, " anchor %v", e.AnchorPos)
	}
	if d := e.Transform.String(); d != "" {
		fmt.Fprintf(r.out, "  %s", d)
	}
	fmt.Fprintln(r.out)
}
