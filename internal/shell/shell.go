//
// FrankyGo - UCI chess engine in GO for learning purposes
//
// MIT License
//
// Copyright (c) 2018-2020 Frank Kopp
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.
//

// Package shell implements an interactive line-based front end for playing
// and inspecting games without a UCI-speaking GUI attached. Commands begin
// with '-'; anything else is parsed as a long-algebraic move.
package shell

import (
	"bufio"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/op/go-logging"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/b-mclemore/computer-chess/internal/evaluator"
	myLogging "github.com/b-mclemore/computer-chess/internal/logging"
	"github.com/b-mclemore/computer-chess/internal/movegen"
	"github.com/b-mclemore/computer-chess/internal/position"
	"github.com/b-mclemore/computer-chess/internal/search"
	. "github.com/b-mclemore/computer-chess/internal/types"
)

var out = message.NewPrinter(language.German)

// Shell is an interactive text front end wrapping a position, a move
// generator and a search instance. Create one with NewShell().
type Shell struct {
	InIo  *bufio.Scanner
	OutIo *bufio.Writer

	position *position.Position
	mg       *movegen.Movegen
	eval     *evaluator.Evaluator
	search   *search.Search

	log *logging.Logger
}

// NewShell creates a new Shell reading from stdin and writing to stdout,
// starting from the standard chess position.
func NewShell() *Shell {
	return &Shell{
		InIo:     bufio.NewScanner(os.Stdin),
		OutIo:    bufio.NewWriter(os.Stdout),
		position: position.NewPosition(),
		mg:       movegen.NewMoveGen(),
		eval:     evaluator.NewEvaluator(),
		search:   search.NewSearch(),
		log:      myLogging.GetLog(),
	}
}

// Loop reads lines from InIo until "-quit" is received or input ends.
func (s *Shell) Loop() {
	s.printHelp()
	s.prompt()
	for s.InIo.Scan() {
		if s.handleLine(strings.TrimSpace(s.InIo.Text())) {
			return
		}
		s.prompt()
	}
}

func (s *Shell) prompt() {
	s.send(out.Sprintf("\n%s > ", s.position.NextPlayer().String()))
}

// handleLine processes one line of input and reports whether the shell
// should terminate.
func (s *Shell) handleLine(line string) bool {
	if len(line) == 0 {
		return false
	}
	s.log.Debugf("shell received: %s", line)

	if !strings.HasPrefix(line, "-") {
		s.playMove(line)
		return false
	}

	fields := strings.Fields(line)
	cmd := fields[0]
	switch {
	case matches(cmd, "-quit"):
		s.send("Quitting program...")
		return true
	case matches(cmd, "-help"):
		s.printHelp()
	case matches(cmd, "-cb"):
		s.send(s.position.StringBoard())
	case matches(cmd, "-ab"):
		s.printBitboards()
	case matches(cmd, "-ex"):
		s.printExtras()
	case matches(cmd, "-moves"):
		s.printLegalMoves()
	case matches(cmd, "-setup"):
		s.setup(strings.TrimSpace(strings.TrimPrefix(line, cmd)))
	case matches(cmd, "-perft"):
		s.perft(fields)
	case matches(cmd, "-eval"):
		s.printEvaluation()
	case matches(cmd, "-auto"):
		s.autoPlay(fields)
	default:
		s.send(out.Sprintf("Not a valid command: %s (try -help)", cmd))
	}
	return false
}

// matches reports whether typed is a non-empty, unambiguous prefix of cmd,
// mirroring the strncmp-on-a-short-prefix matching of the original shell.
func matches(typed, cmd string) bool {
	return len(typed) >= 3 && strings.HasPrefix(cmd, typed)
}

func (s *Shell) printHelp() {
	var sb strings.Builder
	sb.WriteString("To make a legal move, use long algebraic notation, e.g. e2e4 or a7a8q\n")
	sb.WriteString("\nUtilities:\n")
	sb.WriteString("-setup [FEN]\t:\tstarts a new game from a given FEN string\n")
	sb.WriteString("-quit\t\t:\tquits out of the program\n")
	sb.WriteString("-help\t\t:\tprints this message\n")
	sb.WriteString("\nDebugging flags:\n")
	sb.WriteString("-cb\t\t:\tprints the current board\n")
	sb.WriteString("-ab\t\t:\tprints all piece bitboards\n")
	sb.WriteString("-ex\t\t:\tlists the extras: whose move, castling rights, en-passant square, move number\n")
	sb.WriteString("-moves\t\t:\tlists legal moves, ordered by move generator sort value\n")
	sb.WriteString("-perft <depth>\t:\truns perft from the current position to the given depth\n")
	sb.WriteString("-eval\t\t:\tprints the static evaluation of the current position\n")
	sb.WriteString("-auto <depth>\t:\tsearches and plays the best move found, repeating until no legal move remains\n")
	s.send(sb.String())
}

func (s *Shell) printBitboards() {
	var sb strings.Builder
	for c := White; c <= Black; c++ {
		for pt := King; pt < PtLength; pt++ {
			bb := s.position.PiecesBb(c, pt)
			if bb == BbZero {
				continue
			}
			sb.WriteString(out.Sprintf("%s %s:\n%s\n", c.String(), pt.String(), bb.StringBoard()))
		}
	}
	sb.WriteString(out.Sprintf("occupied:\n%s\n", s.position.OccupiedAll().StringBoard()))
	s.send(sb.String())
}

func (s *Shell) printExtras() {
	s.send(out.Sprintf(
		"next to move    : %s\ncastling rights : %s\nen passant      : %s\nhalf move clock : %d\nmove number     : %d\nin check        : %t",
		s.position.NextPlayer().String(),
		s.position.CastlingRights().String(),
		s.position.GetEnPassantSquare().String(),
		s.position.HalfMoveClock(),
		(s.position.NextHalfMoveNumber()+1)/2,
		s.position.HasCheck()))
}

func (s *Shell) printLegalMoves() {
	moves := s.mg.GenerateLegalMoves(s.position, movegen.GenAll)
	if moves.Len() == 0 {
		if s.position.HasCheck() {
			s.send("No legal moves - checkmate.")
		} else {
			s.send("No legal moves - stalemate.")
		}
		return
	}
	s.send(out.Sprintf("%d legal moves: %s", moves.Len(), moves.StringUci()))
}

func (s *Shell) setup(fen string) {
	if len(fen) == 0 {
		s.send("No FEN was given, starting from the standard position.")
		s.position = position.NewPosition()
		return
	}
	p, err := position.NewPositionFen(fen)
	if err != nil {
		s.send(out.Sprintf("Not a valid FEN string (%s), starting from the standard position.", err))
		s.position = position.NewPosition()
		return
	}
	s.position = p
	s.send(s.position.StringBoard())
}

func (s *Shell) perft(fields []string) {
	depth := 4
	if len(fields) > 1 {
		d, err := strconv.Atoi(fields[1])
		if err != nil {
			s.send(out.Sprintf("Not a valid perft depth: %s", fields[1]))
			return
		}
		depth = d
	}
	var p movegen.Perft
	p.StartPerft(s.position.StringFen(), depth, true)
}

func (s *Shell) printEvaluation() {
	value := s.eval.Evaluate(s.position)
	s.send(out.Sprintf("Evaluation (%s to move): %s", s.position.NextPlayer().String(), value.String()))
}

func (s *Shell) autoPlay(fields []string) {
	depth := 4
	if len(fields) > 1 {
		d, err := strconv.Atoi(fields[1])
		if err != nil {
			s.send(out.Sprintf("Not a valid search depth: %s", fields[1]))
			return
		}
		depth = d
	}
	for {
		if s.mg.GenerateLegalMoves(s.position, movegen.GenAll).Len() == 0 {
			if s.position.HasCheck() {
				s.send("Checkmate.")
			} else {
				s.send("Stalemate.")
			}
			return
		}
		sl := search.NewSearchLimits()
		sl.Depth = depth
		s.search.StartSearch(*s.position, *sl)
		s.search.WaitWhileSearching()
		result := s.search.LastSearchResult()
		if result.BestMove == MoveNone {
			s.send("Search returned no move - stopping.")
			return
		}
		s.position.DoMove(result.BestMove)
		s.send(out.Sprintf("%s played %s (%s)\n%s", s.position.NextPlayer().Flip().String(),
			result.BestMove.StringUci(), result.BestValue.String(), s.position.StringBoard()))
		time.Sleep(10 * time.Millisecond)
	}
}

func (s *Shell) playMove(uciMove string) {
	move := s.mg.GetMoveFromUci(s.position, uciMove)
	if !move.IsValid() {
		s.send(out.Sprintf("Not a valid command or legal move: %s", uciMove))
		return
	}
	s.position.DoMove(move)
	s.send(s.position.StringBoard())
}

func (s *Shell) send(msg string) {
	_, _ = s.OutIo.WriteString(msg)
	_, _ = s.OutIo.WriteString("\n")
	_ = s.OutIo.Flush()
}
