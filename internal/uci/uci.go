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

// Package uci contains the UciHandler data structure and functionality to
// handle the UCI protocol communication between the Chess User Interface
// and the chess engine.
package uci

import (
	"bufio"
	"bytes"
	"fmt"
	golog "log"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/op/go-logging"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/b-mclemore/computer-chess/internal/config"
	myLogging "github.com/b-mclemore/computer-chess/internal/logging"
	"github.com/b-mclemore/computer-chess/internal/movegen"
	"github.com/b-mclemore/computer-chess/internal/moveslice"
	"github.com/b-mclemore/computer-chess/internal/position"
	"github.com/b-mclemore/computer-chess/internal/search"
	. "github.com/b-mclemore/computer-chess/internal/types"
	"github.com/b-mclemore/computer-chess/internal/uciInterface"
	"github.com/b-mclemore/computer-chess/internal/util"
	"github.com/b-mclemore/computer-chess/internal/version"
)

var out = message.NewPrinter(language.German)
var log *logging.Logger

// UciHandler handles all communication with the chess ui via UCI
// and controls options and search. Create an instance with NewUciHandler().
type UciHandler struct {
	InIo       *bufio.Scanner
	OutIo      *bufio.Writer
	myMoveGen  *movegen.Movegen
	mySearch   *search.Search
	myPosition *position.Position
	myPerft    *movegen.Perft
	uciLog     *logging.Logger
	commands   map[string]func(*tokenCursor) bool
}

// NewUciHandler creates a new UciHandler instance. Input / Output io can be
// replaced by changing the instance's InIo and OutIo members, e.g.
//
//	u.InIo = bufio.NewScanner(os.Stdin)
//	u.OutIo = bufio.NewWriter(os.Stdout)
func NewUciHandler() *UciHandler {
	if log == nil {
		log = myLogging.GetLog()
	}
	u := &UciHandler{
		InIo:       bufio.NewScanner(os.Stdin),
		OutIo:      bufio.NewWriter(os.Stdout),
		myMoveGen:  movegen.NewMoveGen(),
		mySearch:   search.NewSearch(),
		myPosition: position.NewPosition(),
		myPerft:    movegen.NewPerft(),
		uciLog:     getUciLog(),
	}
	u.commands = u.buildCommandTable()
	var uciDriver uciInterface.UciDriver = u
	u.mySearch.SetUciHandler(uciDriver)
	return u
}

// buildCommandTable maps each known first token of a UCI command line to the
// handler that processes its remaining tokens. A handler returns true only
// for "quit", signalling the read loop to stop.
func (u *UciHandler) buildCommandTable() map[string]func(*tokenCursor) bool {
	return map[string]func(*tokenCursor) bool{
		"quit":       func(*tokenCursor) bool { return true },
		"uci":        func(*tokenCursor) bool { u.uciCommand(); return false },
		"setoption":  func(c *tokenCursor) bool { u.setOptionCommand(c); return false },
		"isready":    func(*tokenCursor) bool { u.mySearch.IsReady(); return false },
		"ucinewgame": func(*tokenCursor) bool { u.uciNewGameCommand(); return false },
		"position":   func(c *tokenCursor) bool { u.positionCommand(c); return false },
		"go":         func(c *tokenCursor) bool { u.goCommand(c); return false },
		"stop":       func(*tokenCursor) bool { u.mySearch.StopSearch(); u.myPerft.Stop(); return false },
		"ponderhit":  func(*tokenCursor) bool { u.mySearch.PonderHit(); return false },
		"register":   func(*tokenCursor) bool { u.notImplemented("register"); return false },
		"debug":      func(*tokenCursor) bool { u.notImplemented("debug"); return false },
		"perft":      func(c *tokenCursor) bool { u.perftCommand(c); return false },
		"noop":       func(*tokenCursor) bool { return false },
	}
}

// Loop starts the main loop to receive commands through input stream (pipe
// or user).
func (u *UciHandler) Loop() {
	u.loop()
}

// Command handles a single line of UCI protocol aka command. Returns the
// uci response as string output. Mostly useful for debugging and unit
// testing.
func (u *UciHandler) Command(cmd string) string {
	tmp := u.OutIo
	buffer := new(bytes.Buffer)
	u.OutIo = bufio.NewWriter(buffer)
	u.handleReceivedCommand(cmd)
	_ = u.OutIo.Flush()
	u.OutIo = tmp
	return buffer.String()
}

// SendReadyOk tells the UciDriver to send the uci response "readyok" to the UCI user interface.
func (u *UciHandler) SendReadyOk() {
	u.send("readyok")
}

// SendInfoString sends an arbitrary string to the UCI user interface.
func (u *UciHandler) SendInfoString(info string) {
	u.send(out.Sprintf("info string %s", info))
}

// SendIterationEndInfo sends information about the last search depth iteration to the UCI ui.
func (u *UciHandler) SendIterationEndInfo(depth int, seldepth int, value Value, nodes uint64, nps uint64, time time.Duration, pv moveslice.MoveSlice) {
	u.send(fmt.Sprintf("info depth %d seldepth %d multipv 1 score %s nodes %d nps %d time %d pv %s",
		depth, seldepth, value.String(), nodes, nps, time.Milliseconds(), pv.StringUci()))
}

// SendSearchUpdate sends a periodic update about search stats to the UCI ui.
func (u *UciHandler) SendSearchUpdate(depth int, seldepth int, nodes uint64, nps uint64, time time.Duration, hashfull int) {
	u.send(fmt.Sprintf("info depth %d seldepth %d nodes %d nps %d time %d hashfull %d",
		depth, seldepth, nodes, nps, time.Milliseconds(), hashfull))
}

// SendAspirationResearchInfo sends information about aspiration window researches to the UCI ui.
func (u *UciHandler) SendAspirationResearchInfo(depth int, seldepth int, value Value, bound string, nodes uint64, nps uint64, time time.Duration, pv moveslice.MoveSlice) {
	u.send(fmt.Sprintf("info depth %d seldepth %d %s multipv 1 score %s nodes %d nps %d time %d pv %s",
		depth, seldepth, value.String(), bound, nodes, nps, time.Milliseconds(), pv.StringUci()))
}

// SendCurrentRootMove sends the currently searched root move to the UCI ui.
func (u *UciHandler) SendCurrentRootMove(currMove Move, moveNumber int) {
	u.send(fmt.Sprintf("info currmove %s currmovenumber %d", currMove.StringUci(), moveNumber))
}

// SendCurrentLine sends a periodic update about the currently searched variation to the UCI ui.
func (u *UciHandler) SendCurrentLine(moveList moveslice.MoveSlice) {
	u.send(fmt.Sprintf("info currline %s", moveList.StringUci()))
}

// SendResult sends the search result to the UCI ui after the search has ended or been stopped.
func (u *UciHandler) SendResult(bestMove Move, ponderMove Move) {
	var resultStr strings.Builder
	resultStr.WriteString("bestmove ")
	resultStr.WriteString(bestMove.StringUci())
	if ponderMove != MoveNone {
		resultStr.WriteString(" ponder ")
		resultStr.WriteString(ponderMove.StringUci())
	}
	u.send(resultStr.String())
}

func (u *UciHandler) loop() {
	for {
		log.Debugf("Waiting for command:")
		for u.InIo.Scan() {
			if u.handleReceivedCommand(u.InIo.Text()) {
				return
			}
			log.Debugf("Waiting for command:")
		}
	}
}

var regexWhiteSpace = regexp.MustCompile(`\s+`)

// tokenCursor walks a whitespace-split UCI command line one token at a
// time, so the per-command parsers below read "the next thing" instead of
// juggling an index variable by hand.
type tokenCursor struct {
	tokens []string
	pos    int
}

// newTokenCursor builds a cursor positioned just after the command word
// itself (tokens[0]).
func newTokenCursor(tokens []string) *tokenCursor {
	return &tokenCursor{tokens: tokens, pos: 1}
}

func (c *tokenCursor) atEnd() bool {
	return c.pos >= len(c.tokens)
}

// peek returns the next token without consuming it, or "" past the end.
func (c *tokenCursor) peek() string {
	if c.atEnd() {
		return ""
	}
	return c.tokens[c.pos]
}

// next consumes and returns the next token, or "" past the end.
func (c *tokenCursor) next() string {
	t := c.peek()
	if !c.atEnd() {
		c.pos++
	}
	return t
}

// raw returns the tokens this cursor was built from, for error messages.
func (c *tokenCursor) raw() []string {
	return c.tokens
}

func (u *UciHandler) handleReceivedCommand(cmd string) bool {
	if len(cmd) == 0 {
		return false
	}
	log.Debugf("Received command: %s", cmd)
	u.uciLog.Infof("<< %s", cmd)

	tokens := regexWhiteSpace.Split(cmd, -1)
	firstToken := strings.TrimSpace(tokens[0])
	handler, found := u.commands[firstToken]
	if !found {
		log.Warningf("Error: Unknown command: %s", cmd)
		return false
	}
	quit := handler(newTokenCursor(tokens))

	log.Debugf("Processed command: %s", cmd)
	return quit
}

// uciCommand responds with engine identity and the current option set.
func (u *UciHandler) uciCommand() {
	u.send("id name computer-chess " + version.Version())
	u.send("id author Frank Kopp, Germany")
	for _, o := range *uciOptions.GetOptions() {
		u.send(o)
	}
	u.send("uciok")
}

// setOptionCommand reads "name <words...> [value <word>]" and, if the named
// option exists, stores its new value and invokes the option's handler.
func (u *UciHandler) setOptionCommand(c *tokenCursor) {
	if c.peek() != "name" {
		u.malformed("setoption", "missing 'name'", c.raw())
		return
	}
	c.next()
	var nameWords []string
	for !c.atEnd() && c.peek() != "value" {
		nameWords = append(nameWords, c.next())
	}
	name := strings.TrimSpace(strings.Join(nameWords, " "))
	value := ""
	if c.peek() == "value" {
		c.next()
		value = c.next()
	}

	o, found := uciOptions[name]
	if !found {
		u.SendInfoString(out.Sprintf("Command 'setoption': No such option '%s'", name))
		log.Warningf("Command 'setoption': No such option '%s'", name)
		return
	}
	o.CurrentValue = value
	o.HandlerFunc(u, o)
}

// perftCommand runs a perft test, optionally over a [depth, depth2] range.
func (u *UciHandler) perftCommand(c *tokenCursor) {
	depth := u.intTokenOrDefault(c.peek(), 4, "perft depth")
	if !c.atEnd() {
		c.next()
	}
	depth2 := depth
	if !c.atEnd() {
		depth2 = u.intTokenOrDefault(c.next(), depth, "perft depth2")
	}
	go u.myPerft.StartPerftMulti(position.StartFen, depth, depth2, true)
}

// intTokenOrDefault parses tok as a base-10 int, logging and falling back
// to def on failure instead of aborting the command.
func (u *UciHandler) intTokenOrDefault(tok string, def int, what string) int {
	if tok == "" {
		return def
	}
	v, err := strconv.Atoi(tok)
	if err != nil {
		log.Warningf("Can't parse %s='%s'", what, tok)
		return def
	}
	return v
}

// goCommand reads the search limits for a "go" command and starts a search.
func (u *UciHandler) goCommand(c *tokenCursor) {
	searchLimits, failed := u.readSearchLimits(c.raw())
	if failed {
		return
	}
	u.mySearch.StartSearch(*u.myPosition, *searchLimits)
}

// positionCommand sets the current position from "startpos" or "fen ..."
// and then replays any trailing "moves ..." onto it.
func (u *UciHandler) positionCommand(c *tokenCursor) {
	fen, ok := u.readPositionFen(c)
	if !ok {
		return
	}
	u.myPosition, _ = position.NewPositionFen(fen)
	if c.peek() == "moves" {
		c.next()
		if !u.replayMoves(c) {
			return
		}
	} else if !c.atEnd() {
		u.malformed("position", "moves", c.raw())
		return
	}
	log.Debugf("New position: %s", u.myPosition.StringFen())
}

// readPositionFen consumes either "startpos" or "fen <words...>" and
// returns the resulting FEN string.
func (u *UciHandler) readPositionFen(c *tokenCursor) (string, bool) {
	switch c.next() {
	case "startpos":
		return position.StartFen, true
	case "fen":
		var fenWords []string
		for !c.atEnd() && c.peek() != "moves" {
			fenWords = append(fenWords, c.next())
		}
		fen := strings.TrimSpace(strings.Join(fenWords, " "))
		if fen == "" {
			u.malformed("position", "empty fen", c.raw())
			return "", false
		}
		return fen, true
	default:
		u.malformed("position", "", c.raw())
		return "", false
	}
}

// replayMoves applies each remaining uci move token to u.myPosition,
// stopping and reporting an error on the first invalid move.
func (u *UciHandler) replayMoves(c *tokenCursor) bool {
	for !c.atEnd() {
		tok := c.next()
		move := u.myMoveGen.GetMoveFromUci(u.myPosition, tok)
		if !move.IsValid() {
			u.SendInfoString(out.Sprintf("Command 'position' malformed. Invalid move '%s' (%s)", tok, c.raw()))
			log.Warningf("Command 'position' malformed. Invalid move '%s' (%s)", tok, c.raw())
			return false
		}
		u.myPosition.DoMove(move)
	}
	return true
}

// uciNewGameCommand resets the board and tells search a new game starts.
func (u *UciHandler) uciNewGameCommand() {
	u.myPosition = position.NewPosition()
	u.mySearch.NewGame()
}

// notImplemented reports that cmdName is accepted but has no behavior.
func (u *UciHandler) notImplemented(cmdName string) {
	msg := out.Sprintf("Command '%s' not implemented", cmdName)
	u.SendInfoString(msg)
	log.Warning(msg)
}

// malformed reports a parse failure for cmdName, including the offending
// token list and an optional detail.
func (u *UciHandler) malformed(cmdName string, detail string, tokens []string) {
	msg := out.Sprintf("Command '%s' malformed. %s %s", cmdName, detail, tokens)
	u.SendInfoString(msg)
	log.Warning(msg)
}

// goOption is one recognized "go" subcommand: it consumes whatever
// arguments it needs from the cursor and reports whether parsing succeeded.
type goOption func(u *UciHandler, c *tokenCursor, limits *search.Limits) bool

// goOptions maps each "go" subcommand keyword to its parser. Declared once
// at package scope since none of the parsers close over per-call state.
var goOptions = map[string]goOption{
	"infinite":  func(_ *UciHandler, _ *tokenCursor, l *search.Limits) bool { l.Infinite = true; return true },
	"ponder":    func(_ *UciHandler, _ *tokenCursor, l *search.Limits) bool { l.Ponder = true; return true },
	"depth":     func(u *UciHandler, c *tokenCursor, l *search.Limits) bool { return u.readGoInt(c, "Depth", &l.Depth) },
	"mate":      func(u *UciHandler, c *tokenCursor, l *search.Limits) bool { return u.readGoInt(c, "Mate", &l.Mate) },
	"movestogo": func(u *UciHandler, c *tokenCursor, l *search.Limits) bool { return u.readGoInt(c, "Movestogo", &l.MovesToGo) },
	"nodes":     func(u *UciHandler, c *tokenCursor, l *search.Limits) bool { return u.readGoUint64(c, "Nodes", &l.Nodes) },
	"movetime":  func(u *UciHandler, c *tokenCursor, l *search.Limits) bool { return u.readGoMoveTime(c, l) },
	"moveTime":  func(u *UciHandler, c *tokenCursor, l *search.Limits) bool { return u.readGoMoveTime(c, l) },
	"wtime":     func(u *UciHandler, c *tokenCursor, l *search.Limits) bool { return u.readGoTimeControl(c, "WhiteTime", &l.WhiteTime, l) },
	"btime":     func(u *UciHandler, c *tokenCursor, l *search.Limits) bool { return u.readGoTimeControl(c, "BlackTime", &l.BlackTime, l) },
	"winc":      func(u *UciHandler, c *tokenCursor, l *search.Limits) bool { return u.readGoDuration(c, "WhiteInc", &l.WhiteInc) },
	"binc":      func(u *UciHandler, c *tokenCursor, l *search.Limits) bool { return u.readGoDuration(c, "BlackInc", &l.BlackInc) },
}

// readSearchLimits reads the tokens of a "go" command line (tokens[0] is
// "go") into a search.Limits, dispatching each subcommand keyword through
// goOptions. "moves" is handled inline since it reads a run of move tokens
// rather than a single value. The second result is true when the command
// was malformed; the limits are then nil.
func (u *UciHandler) readSearchLimits(tokens []string) (*search.Limits, bool) {
	c := newTokenCursor(tokens)
	limits := search.NewSearchLimits()
	for !c.atEnd() {
		keyword := c.next()
		if keyword == "moves" {
			u.readGoMoves(c, limits)
			continue
		}
		opt, known := goOptions[keyword]
		if !known {
			u.malformed("go", out.Sprintf("Invalid subcommand: %s", keyword), c.raw())
			return nil, true
		}
		if !opt(u, c, limits) {
			return nil, true
		}
	}
	if !u.validateSearchLimits(limits, c.raw()) {
		return nil, true
	}
	return limits, false
}

// readGoMoves consumes a run of uci move tokens, appending each valid one
// to limits.Moves until an invalid or absent token ends the run.
func (u *UciHandler) readGoMoves(c *tokenCursor, limits *search.Limits) {
	for !c.atEnd() {
		move := u.myMoveGen.GetMoveFromUci(u.myPosition, c.peek())
		if !move.IsValid() {
			return
		}
		c.next()
		limits.Moves.PushBack(move)
	}
}

func (u *UciHandler) readGoInt(c *tokenCursor, field string, dst *int) bool {
	v, err := strconv.Atoi(c.next())
	if err != nil {
		u.malformed("go", out.Sprintf("%s value not a number:", field), c.raw())
		return false
	}
	*dst = v
	return true
}

func (u *UciHandler) readGoUint64(c *tokenCursor, field string, dst *uint64) bool {
	v, err := strconv.ParseInt(c.next(), 10, 64)
	if err != nil {
		u.malformed("go", out.Sprintf("%s value not a number:", field), c.raw())
		return false
	}
	*dst = uint64(v)
	return true
}

func (u *UciHandler) readGoDuration(c *tokenCursor, field string, dst *time.Duration) bool {
	ms, err := strconv.ParseInt(c.next(), 10, 64)
	if err != nil {
		u.malformed("go", out.Sprintf("%s value not a number:", field), c.raw())
		return false
	}
	*dst = time.Duration(ms * 1_000_000)
	return true
}

func (u *UciHandler) readGoMoveTime(c *tokenCursor, limits *search.Limits) bool {
	if !u.readGoDuration(c, "MoveTime", &limits.MoveTime) {
		return false
	}
	limits.TimeControl = true
	return true
}

func (u *UciHandler) readGoTimeControl(c *tokenCursor, field string, dst *time.Duration, limits *search.Limits) bool {
	if !u.readGoDuration(c, field, dst) {
		return false
	}
	limits.TimeControl = true
	return true
}

// validateSearchLimits rejects a "go" command that set no effective limit,
// and one that relies on a clock without a nonzero time for the side to move.
func (u *UciHandler) validateSearchLimits(limits *search.Limits, tokens []string) bool {
	hasLimit := limits.Infinite || limits.Ponder || limits.Depth > 0 ||
		limits.Nodes > 0 || limits.Mate > 0 || limits.TimeControl
	if !hasLimit {
		u.malformed("go", "No effective limits set", tokens)
		return false
	}
	if limits.TimeControl && limits.MoveTime == 0 {
		if u.myPosition.NextPlayer() == White && limits.WhiteTime == 0 {
			u.SendInfoString(out.Sprintf("UCI command go invalid. White to move but time for white is zero! %s", tokens))
			log.Warningf("UCI command go invalid. White to move but time for white is zero! %s", tokens)
			return false
		}
		if u.myPosition.NextPlayer() == Black && limits.BlackTime == 0 {
			u.SendInfoString(out.Sprintf("UCI command go invalid. Black to move but time for black is zero! %s", tokens))
			log.Warningf("UCI command go invalid. Black to move but time for black is zero! %s", tokens)
			return false
		}
	}
	return true
}

// getUciLog returns an instance of a special Logger preconfigured for
// logging all UCI protocol communication to os.Stdout and to a log file.
// Format is a simple "time UCI <uci command>".
func getUciLog() *logging.Logger {
	uciLog := logging.MustGetLogger("UCI ")

	uciFormat := logging.MustStringFormatter(`%{time:15:04:05.000} UCI %{message}`)
	backend1 := logging.NewLogBackend(os.Stdout, "", golog.Lmsgprefix)
	backend1Formatter := logging.NewBackendFormatter(backend1, uciFormat)
	uciBackEnd1 := logging.AddModuleLevel(backend1Formatter)
	uciBackEnd1.SetLevel(logging.DEBUG, "")
	uciLog.SetBackend(uciBackEnd1)

	programName, _ := os.Executable()
	exeName := strings.TrimSuffix(filepath.Base(programName), ".exe")

	logPath, err := util.ResolveFolder(config.Settings.Log.LogPath)
	if err != nil {
		golog.Println("Log folder could not be found:", err)
		return uciLog
	}
	logFilePath := filepath.Join(logPath, exeName+"_uci.log")

	uciLogFile, err := os.OpenFile(logFilePath, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		golog.Println("Logfile could not be created:", err)
		return uciLog
	}
	backend2 := logging.NewLogBackend(uciLogFile, "", golog.Lmsgprefix)
	backend2Formatter := logging.NewBackendFormatter(backend2, uciFormat)
	uciBackEnd2 := logging.AddModuleLevel(backend2Formatter)
	uciBackEnd2.SetLevel(logging.DEBUG, "")
	uciLog.SetBackend(uciBackEnd2)
	uciLog.Infof("Log %s started at %s:", uciLogFile.Name(), time.Now().String())
	return uciLog
}

// send writes s to the UCI user interface and logs it.
func (u *UciHandler) send(s string) {
	u.uciLog.Infof(">> %s", s)
	_, _ = u.OutIo.WriteString(s + "\n")
	_ = u.OutIo.Flush()
}
