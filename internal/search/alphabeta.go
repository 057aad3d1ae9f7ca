/*
 * FrankyGo - UCI chess engine in GO for learning purposes
 *
 * MIT License
 *
 * Copyright (c) 2018-2020 Frank Kopp
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 */

package search

import (
	"fmt"
	golog "log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/op/go-logging"

	"github.com/b-mclemore/computer-chess/internal/config"
	"github.com/b-mclemore/computer-chess/internal/movegen"
	"github.com/b-mclemore/computer-chess/internal/moveslice"
	"github.com/b-mclemore/computer-chess/internal/position"
	. "github.com/b-mclemore/computer-chess/internal/types"
	"github.com/b-mclemore/computer-chess/internal/util"
)

var trace = false

// rootSearch drives the first ply explicitly instead of folding it into
// search's ply>0 handling: root moves are re-sorted from the values stashed
// on them here, which would need an "if ply==0" at every branch of search
// if the two were merged.
func (s *Search) rootSearch(pos *position.Position, depth int, alpha Value, beta Value) Value {
	if trace {
		s.slog.Debugf("Ply %-2.d Depth %-2.d start: %s", 0, depth, s.statistics.CurrentVariation.StringUci())
		defer s.slog.Debugf("Ply %-2.d Depth %-2.d end: %s", 0, depth, s.statistics.CurrentVariation.StringUci())
	}

	bestNodeValue := ValueNA

	for i, m := range *s.rootMoves {
		value, stop := s.searchRootMove(pos, m, i, depth, alpha, beta)
		if stop && depth > 1 {
			return bestNodeValue
		}

		s.rootMoves.Set(i, m.SetValue(value))
		if value > bestNodeValue {
			bestNodeValue = value
			savePV(m, s.pv[1], s.pv[0])
		}
	}

	return bestNodeValue
}

// searchRootMove plays one root move, searches the reply with the PVS
// window appropriate to its position in the move list, and unmakes it. The
// bool result reports whether the search was told to stop while this move
// was being searched (root search still wants at least a depth-1 pass, so
// the caller decides whether that matters).
func (s *Search) searchRootMove(pos *position.Position, m Move, index int, depth int, alpha, beta Value) (Value, bool) {
	pos.DoMove(m)
	defer pos.UndoMove()

	s.nodesVisited++
	s.statistics.CurrentVariation.PushBack(m)
	defer s.statistics.CurrentVariation.PopBack()
	s.statistics.CurrentRootMoveIndex = index
	s.statistics.CurrentRootMove = m

	var value Value
	switch {
	case s.checkDrawRepAnd50(pos, 2):
		value = ValueDraw
	case !config.Settings.Search.UsePVS || index == 0:
		value = -s.search(pos, depth-1, 1, -beta, -alpha, true, true)
	default:
		value = -s.search(pos, depth-1, 1, -alpha-1, -alpha, false, true)
		if value > alpha && value < beta && !s.stopConditions() {
			s.statistics.RootPvsResearches++
			value = -s.search(pos, depth-1, 1, -beta, -alpha, true, true)
		}
	}

	return value, s.stopConditions()
}

// search is the alpha-beta search below the root (ply > 0), recursing until
// the remaining depth reaches zero and quiescence search takes over. It
// spends the bulk of the engine's time and hosts every major pruning
// technique; qsearch below shares its TT-cutoff and mate-distance-pruning
// logic but runs its own, much narrower, move loop.
func (s *Search) search(p *position.Position, depth int, ply int, alpha Value, beta Value, isPV bool, doNull bool) Value {
	if trace {
		s.slog.Debugf("%0*s Ply %-2.d Depth %-2.d a:%-6.d b:%-6.d pv:%-6.v start:  %s", ply, "", ply, depth, alpha, beta, isPV, s.statistics.CurrentVariation.StringUci())
		defer s.slog.Debugf("%0*s Ply %-2.d Depth %-2.d a:%-6.d b:%-6.d pv:%-6.v end  :  %s", ply, "", ply, depth, alpha, beta, isPV, s.statistics.CurrentVariation.StringUci())
	}

	if s.stopConditions() {
		return ValueNA
	}
	if depth == 0 || ply >= MaxDepth {
		return s.qsearch(p, ply, alpha, beta, isPV)
	}

	var cutValue Value
	var cut bool
	alpha, beta, cutValue, cut = s.mateDistancePrune(alpha, beta, ply)
	if cut {
		return cutValue
	}

	us := p.NextPlayer()
	bestNodeValue := ValueNA
	bestNodeMove := MoveNone
	ttType := ALPHA
	hasCheck := p.HasCheck()
	matethreat := false

	// TODO : Some engines treat the cut for alpha and beta nodes
	//  differently for PV and non PV nodes - needs more testing
	//  if this is relevant
	ttMove, cutValue, cut := s.probeMainTT(p, depth, ply, alpha, beta)
	if cut {
		return cutValue
	}

	if v, cut := s.reverseFutilityPrune(p, depth, ply, isPV, doNull, hasCheck, beta); cut {
		return v
	}

	nmValue, nmCut, stopped, mt := s.nullMovePrune(p, depth, ply, isPV, doNull, hasCheck, us, beta, ttMove)
	if stopped {
		return ValueNA
	}
	matethreat = mt
	if nmCut {
		return nmValue
	}

	var iidStopped bool
	ttMove, iidStopped = s.internalIterativeDeepening(p, depth, ply, alpha, beta, isPV, doNull, ttMove)
	if iidStopped {
		return ValueNA
	}

	// !important to reset the move generator after IID, which reused it
	myMg := s.mg[ply]
	myMg.ResetOnDemand()
	s.pv[ply].Clear()

	if config.Settings.Search.UseTTMove {
		if ttMove != MoveNone {
			s.statistics.TTMoveUsed++
			myMg.SetPvMove(ttMove)
		} else {
			s.statistics.NoTTMove++
		}
	}

	var value Value
	movesSearched := 0

	for move := myMg.GetNextMove(p, movegen.GenAll); move != MoveNone; move = myMg.GetNextMove(p, movegen.GenAll) {
		from := move.From()
		to := move.To()

		s.debugCheckMove(p, move, depth, ply, alpha, beta, isPV, doNull, movesSearched, ttMove, bestNodeMove, myMg)

		newDepth := depth - 1
		extension := s.searchExtension(move, p.GivesCheck(move), matethreat)
		newDepth += extension

		pruneRes := s.forwardPrune(p, move, us, depth, newDepth, movesSearched, alpha, beta, isPV,
			extension, ttMove, *myMg.KillerMoves(), hasCheck, p.GivesCheck(move), matethreat, &bestNodeValue)
		if pruneRes.skip {
			continue
		}
		lmrDepth := pruneRes.lmrDepth

		p.DoMove(move)
		if !p.WasLegalMove() {
			p.UndoMove()
			continue
		}

		s.nodesVisited++
		s.statistics.CurrentVariation.PushBack(move)
		s.sendSearchUpdateToUci()

		if s.checkDrawRepAnd50(p, 2) {
			value = ValueDraw
		} else {
			value = s.searchMoveWithPvs(p, movesSearched, newDepth, lmrDepth, ply, alpha, beta)
		}

		movesSearched++
		s.statistics.CurrentVariation.PopBack()
		p.UndoMove()

		if s.stopConditions() {
			return ValueNA
		}

		if value > bestNodeValue {
			bestNodeValue = value
			bestNodeMove = move
			if value > alpha {
				savePV(move, s.pv[ply+1], s.pv[ply])
				if value >= beta {
					s.recordBetaCutoff(p, move, us, from, to, movesSearched, depth, true, myMg)
					ttType = BETA
					break
				}
				alpha = value
				ttType = EXACT
			}
		}
		s.decayHistory(us, from, to, depth)
	}

	if movesSearched == 0 && !s.stopConditions() {
		if p.HasCheck() {
			s.statistics.Checkmates++
			bestNodeValue = -ValueCheckMate + Value(ply)
		} else {
			s.statistics.Stalemates++
			bestNodeValue = ValueDraw
		}
		ttType = EXACT
	}

	if config.Settings.Search.UseTT {
		s.storeTT(p, depth, ply, bestNodeMove, bestNodeValue, ttType)
	}

	return bestNodeValue
}

// mateDistancePrune tightens alpha/beta so a shorter mate already found
// elsewhere is never abandoned in favor of a longer one at this ply, and
// reports whether the window has collapsed, cutting the node off entirely.
// Shared between search and qsearch, which applied the identical logic.
func (s *Search) mateDistancePrune(alpha, beta Value, ply int) (Value, Value, Value, bool) {
	if !config.Settings.Search.UseMDP {
		return alpha, beta, ValueNA, false
	}
	if alpha < -ValueCheckMate+Value(ply) {
		alpha = -ValueCheckMate + Value(ply)
	}
	if beta > ValueCheckMate-Value(ply) {
		beta = ValueCheckMate - Value(ply)
	}
	if alpha >= beta {
		s.statistics.Mdp++
		return alpha, beta, alpha, true
	}
	return alpha, beta, ValueNA, false
}

// ttCutApplies reports whether a stored value of the given bound type lets
// the caller trust it as an exact cutoff for the current window. Shared
// between the main search's and qsearch's TT probes.
func ttCutApplies(vtype ValueType, value, alpha, beta Value) bool {
	if !value.IsValid() {
		return false
	}
	switch vtype {
	case EXACT:
		return true
	case ALPHA:
		return value <= alpha
	case BETA:
		return value >= beta
	default:
		return false
	}
}

// probeMainTT looks up the current position in the transposition table and
// reports a usable move (for ordering) and, if the stored result is deep
// enough and its bound lets us trust the window, a value to cut the node
// off with.
func (s *Search) probeMainTT(p *position.Position, depth, ply int, alpha, beta Value) (Move, Value, bool) {
	if !config.Settings.Search.UseTT {
		return MoveNone, ValueNA, false
	}
	ttEntry := s.tt.Probe(p.ZobristKey())
	if ttEntry == nil {
		s.statistics.TTMiss++
		return MoveNone, ValueNA, false
	}
	s.statistics.TTHit++
	ttMove := ttEntry.Move().MoveOf()
	if int(ttEntry.Depth()) < depth {
		return ttMove, ValueNA, false
	}
	ttValue := valueFromTT(ttEntry.Value(), ply)
	if !ttCutApplies(ttEntry.Vtype(), ttValue, alpha, beta) || !config.Settings.Search.UseTTValue {
		s.statistics.TTNoCuts++
		return ttMove, ValueNA, false
	}
	s.getPVLine(p, s.pv[ply], depth)
	s.statistics.TTCuts++
	return ttMove, ttValue, true
}

// reverseFutilityPrune (static null move pruning) anticipates that a
// position already far above beta by static evaluation alone will stay
// above beta once a move is played, and cuts the node off without
// searching any move. https://www.chessprogramming.org/Reverse_Futility_Pruning
func (s *Search) reverseFutilityPrune(p *position.Position, depth, ply int, isPV, doNull, hasCheck bool, beta Value) (Value, bool) {
	if !(config.Settings.Search.UseRFP && doNull && depth <= 3 && !isPV && !hasCheck) {
		return ValueNA, false
	}
	staticEval := s.evaluate(p, ply)
	margin := rfp[depth]
	if staticEval-margin >= beta {
		s.statistics.RfpPrunings++
		return staticEval - margin, true
	}
	return ValueNA, false
}

// nullMovePrune tries passing the move entirely: if the resulting value is
// still at least beta, a real move would very likely do at least as well,
// so the node can be cut off. It also flags a mate threat when passing
// loses badly, which search uses to avoid pruning the real reply too
// aggressively. https://www.chessprogramming.org/Null_Move_Pruning
func (s *Search) nullMovePrune(p *position.Position, depth, ply int, isPV, doNull, hasCheck bool, us Color, beta Value, ttMove Move) (value Value, cut bool, stopped bool, matethreat bool) {
	if !(config.Settings.Search.UseNullMove && doNull && !isPV && depth >= config.Settings.Search.NmpDepth && p.MaterialNonPawn(us) > 0 && !hasCheck) {
		return ValueNA, false, false, false
	}

	// ICCA Journal, Vol. 22, No. 3 - Ernst A. Heinz, Adaptive Null-Move Pruning
	r := config.Settings.Search.NmpReduction
	if depth > 8 || (depth > 6 && p.GamePhase() >= 3) {
		r++
	}
	newDepth := depth - r - 1
	if newDepth < 0 {
		newDepth = 0
	}

	p.DoNullMove()
	s.nodesVisited++
	nValue := -s.search(p, newDepth, ply+1, -beta, -beta+1, false, false)
	p.UndoNullMove()

	if s.stopConditions() {
		return ValueNA, false, true, false
	}

	switch {
	case nValue > ValueCheckMateThreshold:
		s.statistics.NMPMateBeta++
		nValue = ValueCheckMateThreshold
	case nValue < -ValueCheckMateThreshold:
		s.statistics.NMPMateAlpha++
		matethreat = true
	}

	if nValue >= beta {
		s.statistics.NullMoveCuts++
		if config.Settings.Search.UseTT {
			s.storeTT(p, depth, ply, ttMove, nValue, BETA)
		}
		return nValue, true, false, matethreat
	}
	return ValueNA, false, false, matethreat
}

// internalIterativeDeepening searches the current node to a reduced depth
// to discover a move worth trying first, used when move ordering would
// otherwise have nothing to go on. https://www.chessprogramming.org/Internal_Iterative_Deepening
func (s *Search) internalIterativeDeepening(p *position.Position, depth, ply int, alpha, beta Value, isPV, doNull bool, ttMove Move) (Move, bool) {
	if !(config.Settings.Search.UseIID && depth >= config.Settings.Search.IIDDepth && ttMove == MoveNone && doNull && isPV) {
		return ttMove, false
	}

	newDepth := depth - config.Settings.Search.IIDReduction
	if newDepth < 0 {
		newDepth = 0
	}
	s.search(p, newDepth, ply, alpha, beta, isPV, true)
	s.statistics.IIDsearches++

	if s.stopConditions() {
		return ttMove, true
	}
	if s.pv[ply].Len() > 0 {
		s.statistics.IIDmoves++
		ttMove = (*s.pv[ply])[0].MoveOf()
	}
	return ttMove, false
}

// searchExtension decides by how much to extend search past the normal
// depth-1 for a move, when doing so looks likely to resolve a tactical
// sequence the normal pruning would otherwise cut short.
func (s *Search) searchExtension(move Move, givesCheck, matethreat bool) int {
	if !config.Settings.Search.UseExt {
		return 0
	}
	if config.Settings.Search.UseCheckExt && givesCheck {
		s.statistics.CheckExtension++
		return 1
	}
	if config.Settings.Search.UseThreatExt && matethreat {
		s.statistics.ThreatExtension++
		return 1
	}
	return 0
}

// forwardPruneResult reports what forwardPrune decided for one candidate
// move: either skip it outright, or search it to (possibly reduced) lmrDepth.
type forwardPruneResult struct {
	skip     bool
	lmrDepth int
}

// forwardPrune applies futility pruning, late move pruning and late move
// reduction to moves that aren't otherwise interesting (no check given or
// received, not a capture or promotion, not the tt/killer move, no mate
// threat in the air). A move judged uninteresting by every one of those
// tests is a candidate to skip or search at reduced depth; anything else
// is searched in full.
func (s *Search) forwardPrune(p *position.Position, move Move, us Color, depth, newDepth, movesSearched int, alpha, beta Value, isPV bool, extension int, ttMove Move, killers [2]Move, hasCheck, givesCheck, matethreat bool, bestNodeValue *Value) forwardPruneResult {
	lmrDepth := newDepth

	interesting := isPV || extension != 0 || move == ttMove || move == killers[0] || move == killers[1] ||
		move.IsPromotion() || move.IsCapture() || hasCheck || givesCheck || matethreat
	if interesting {
		return forwardPruneResult{lmrDepth: lmrDepth}
	}

	to := move.To()
	materialEval := p.Material(us) - p.Material(us.Flip())
	moveGain := p.GetPiece(to).ValueOf()

	// Futility Pruning / Limited Razoring / Extended FP
	// TODO: needs testing and tuning; Crafty excepts moves where passed pawns are far ahead.
	if config.Settings.Search.UseFP && depth < 7 {
		futilityMargin := fp[depth]
		if materialEval+moveGain+futilityMargin <= alpha {
			if materialEval+moveGain > *bestNodeValue {
				*bestNodeValue = materialEval + moveGain
			}
			s.statistics.FpPrunings++
			return forwardPruneResult{skip: true}
		}
	}

	// LMP - Late Move Pruning aka Move Count Based Pruning
	// TODO: dangerous, needs testing and tuning
	if config.Settings.Search.UseLmp && movesSearched >= LmpMovesSearched(depth) {
		s.statistics.LmpCuts++
		return forwardPruneResult{skip: true}
	}

	// LMR - Late Move Reduction
	// TODO: needs testing and tuning
	if config.Settings.Search.UseLmr && depth >= config.Settings.Search.LmrDepth && movesSearched >= config.Settings.Search.LmrMovesSearched {
		lmrDepth -= LmrReduction(depth, movesSearched)
		s.statistics.LmrReductions++
	}
	if lmrDepth < 0 {
		lmrDepth = 0
	}
	return forwardPruneResult{lmrDepth: lmrDepth}
}

// searchMoveWithPvs searches one already-made move using a principal
// variation search window: the first move searched gets the full window,
// later moves get a cheap null-window probe and only pay for a full
// re-search if that probe suggests they might beat alpha.
// https://www.chessprogramming.org/Principal_Variation_Search
func (s *Search) searchMoveWithPvs(p *position.Position, movesSearched, newDepth, lmrDepth, ply int, alpha, beta Value) Value {
	if !config.Settings.Search.UsePVS || movesSearched == 0 {
		return -s.search(p, newDepth, ply+1, -beta, -alpha, true, true)
	}

	value := -s.search(p, lmrDepth, ply+1, -alpha-1, -alpha, false, true)
	if value <= alpha || s.stopConditions() {
		return value
	}
	if lmrDepth < newDepth {
		s.statistics.LmrResearches++
		return -s.search(p, newDepth, ply+1, -beta, -alpha, true, true)
	}
	if value < beta {
		s.statistics.PvsResearches++
		return -s.search(p, newDepth, ply+1, -beta, -alpha, true, true)
	}
	return value
}

// recordBetaCutoff updates move-ordering hints after a move proved good
// enough to cut the node off: a killer-move slot in the main search and a
// history-counter bump in both the main search and qsearch, plus a counter
// move entry for the position's previous move either way.
func (s *Search) recordBetaCutoff(p *position.Position, move Move, us Color, from, to Square, movesSearched int, depth int, storeKiller bool, myMg *movegen.Movegen) {
	s.statistics.BetaCuts++
	if movesSearched == 1 {
		s.statistics.BetaCuts1st++
	}
	if storeKiller && config.Settings.Search.UseKiller && !move.IsCapture() {
		myMg.StoreKiller(move)
	}
	if config.Settings.Search.UseHistoryCounter {
		s.history.Count(us, from, to, depth)
	}
	if config.Settings.Search.UseCounterMoves {
		if lastMove := p.LastMove(); lastMove != MoveNone {
			s.history.SetCounterMove(lastMove.From(), lastMove.To(), move)
		}
	}
}

// decayHistory reduces a move's history-counter reward when it didn't cause
// a beta cutoff this time, so moves that only occasionally cut off don't
// keep a permanently inflated ordering score.
func (s *Search) decayHistory(us Color, from, to Square, depth int) {
	if !config.Settings.Search.UseHistoryCounter {
		return
	}
	s.history.Decay(us, from, to, depth)
}

// debugCheckMove is a disabled-by-default consistency check retained from
// the original engine's debugging harness: flip the `false` below to chase
// down illegal pseudo-moves reaching the move loop.
func (s *Search) debugCheckMove(p *position.Position, move Move, depth, ply int, alpha, beta Value, isPV, doNull bool, movesSearched int, ttMove, bestNodeMove Move, myMg *movegen.Movegen) {
	if true {
		return
	}
	from := move.From()
	us := p.NextPlayer()
	err := false
	msg := ""
	switch {
	case !move.IsValid():
		msg = fmt.Sprintf("Position DoMove: Invalid move %s", move.String())
		err = true
	case p.GetPiece(from) == PieceNone:
		msg = fmt.Sprintf("Position DoMove: No piece on %s for move %s", p.GetPiece(from).String(), move.StringUci())
		err = true
	case p.GetPiece(from).ColorOf() != us:
		msg = fmt.Sprintf("Position DoMove: Piece to move does not belong to next player %s", p.GetPiece(from).String())
		err = true
	case p.GetPiece(move.To()).KindOf() == King:
		msg = "Position DoMove: King cannot be captured!"
		err = true
	}
	if !err {
		return
	}
	s.log.Criticalf("Search              : Depth %d Ply %d alpha %d beta %d isPv %t doNull %t\n", depth, ply, alpha, beta, isPV, doNull)
	s.log.Criticalf("Position            : %s\n", p.StringFen())
	s.log.Criticalf("Move                : %s\n", move.String())
	s.log.Criticalf("Moves Searched      : %d\n", movesSearched)
	s.log.Criticalf("ttMove              : %s\n", ttMove.String())
	s.log.Criticalf("bestMove            : %s\n", bestNodeMove.String())
	s.log.Criticalf("MoveGen PV          : %s\n", myMg.PvMove())
	s.log.Criticalf("MoveGen K1          : %s\n", myMg.KillerMoves()[0])
	s.log.Criticalf("MoveGen K2          : %s\n", myMg.KillerMoves()[1])
	s.log.Criticalf("MoveGen Moves       : %s\n", myMg.GeneratePseudoLegalMoves(p, movegen.GenAll).StringUci())
	s.log.Criticalf(msg)
	panic(msg)
}

// qsearch continues the search past depth zero along non-quiet lines
// (captures, checks, promotions) to avoid misjudging a position whose
// material is about to change right at the search horizon. Only when a
// position is quiet does it fall back to the static evaluation.
func (s *Search) qsearch(p *position.Position, ply int, alpha Value, beta Value, isPV bool) Value {
	if trace {
		s.slog.Debugf("%0*s Ply %-2.d QSearch     a:%-6.d b:%-6.d pv:%-6.v start:  %s", ply, "", ply, alpha, beta, isPV, s.statistics.CurrentVariation.StringUci())
		defer s.slog.Debugf("%0*s Ply %-2.d QSearch     a:%-6.d b:%-6.d pv:%-6.v end  :  %s", ply, "", ply, alpha, beta, isPV, s.statistics.CurrentVariation.StringUci())
	}

	if s.statistics.CurrentExtraSearchDepth < ply {
		s.statistics.CurrentExtraSearchDepth = ply
	}
	if !config.Settings.Search.UseQuiescence || ply >= MaxDepth {
		return s.evaluate(p, ply)
	}

	var cutValue Value
	var cut bool
	alpha, beta, cutValue, cut = s.mateDistancePrune(alpha, beta, ply)
	if cut {
		return cutValue
	}

	bestNodeValue := ValueNA
	ttType := ALPHA
	hasCheck := p.HasCheck()

	if !hasCheck {
		staticEval := s.evaluate(p, ply)
		// Quiescence standing pat: assume at least one move improves the
		// position, so a static eval already >= beta cuts the node off.
		// https://www.chessprogramming.org/Quiescence_Search#Standing_Pat
		if config.Settings.Search.UseQSStandpat && staticEval > alpha {
			if staticEval >= beta {
				s.statistics.StandpatCuts++
				return staticEval
			}
			alpha = staticEval
		}
		bestNodeValue = staticEval
	}

	ttMove, ttCutValue, ttCut := s.probeQsTT(p, ply, alpha, beta)
	if ttCut {
		return ttCutValue
	}

	bestNodeMove := MoveNone
	myMg := s.mg[ply]
	myMg.ResetOnDemand()
	s.pv[ply].Clear()

	if config.Settings.Search.UseQSTT {
		if ttMove != MoveNone {
			s.statistics.TTMoveUsed++
			myMg.SetPvMove(ttMove)
		} else {
			s.statistics.NoTTMove++
		}
	}

	var value Value
	movesSearched := 0

	// In check, search all moves - an implicit search extension, since the
	// normal search's check extension doesn't reach into qsearch.
	mode := movegen.GenCap
	if hasCheck {
		s.statistics.CheckInQS++
		mode = movegen.GenAll
	}

	for move := myMg.GetNextMove(p, mode); move != MoveNone; move = myMg.GetNextMove(p, mode) {
		if !hasCheck && !s.goodCapture(p, move) {
			continue
		}

		p.DoMove(move)
		if !p.WasLegalMove() {
			p.UndoMove()
			continue
		}

		s.nodesVisited++
		s.statistics.CurrentVariation.PushBack(move)
		s.sendSearchUpdateToUci()

		if hasCheck && s.checkDrawRepAnd50(p, 2) {
			value = ValueDraw
		} else {
			value = -s.qsearch(p, ply+1, -beta, -alpha, isPV)
		}

		movesSearched++
		s.statistics.CurrentVariation.PopBack()
		p.UndoMove()

		if s.stopConditions() {
			return ValueNA
		}

		if value > bestNodeValue {
			bestNodeValue = value
			bestNodeMove = move
			if value > alpha {
				savePV(move, s.pv[ply+1], s.pv[ply])
				if value >= beta {
					s.recordBetaCutoff(p, move, p.NextPlayer(), move.From(), move.To(), movesSearched, 1, false, myMg)
					ttType = BETA
					break
				}
				alpha = value
				ttType = EXACT
			}
		}
	}

	// Without at least one legal move we either found mate (we only reach
	// here having generated all moves when in check) or a quiet position
	// whose standing-pat value in bestNodeValue already stands.
	if movesSearched == 0 && !s.stopConditions() && p.HasCheck() {
		s.statistics.Checkmates++
		bestNodeValue = -ValueCheckMate + Value(ply)
		ttType = EXACT
	}

	if config.Settings.Search.UseQSTT {
		s.storeTT(p, 1, ply, bestNodeMove, bestNodeValue, ttType)
	}

	return bestNodeValue
}

// probeQsTT is qsearch's narrower counterpart to probeMainTT: it ignores
// stored depth (qsearch has no depth ladder of its own) and never refreshes
// the principal variation, since a qsearch cutoff never needs one.
func (s *Search) probeQsTT(p *position.Position, ply int, alpha, beta Value) (Move, Value, bool) {
	if !config.Settings.Search.UseQSTT {
		return MoveNone, ValueNA, false
	}
	ttEntry := s.tt.Probe(p.ZobristKey())
	if ttEntry == nil {
		s.statistics.TTMiss++
		return MoveNone, ValueNA, false
	}
	s.statistics.TTHit++
	ttMove := ttEntry.Move().MoveOf()
	ttValue := valueFromTT(ttEntry.Value(), ply)
	if !ttCutApplies(ttEntry.Vtype(), ttValue, alpha, beta) || !config.Settings.Search.UseTTValue {
		s.statistics.TTNoCuts++
		return ttMove, ValueNA, false
	}
	s.statistics.TTCuts++
	return ttMove, ttValue, true
}

// evaluate returns a static evaluation for p, preferring a cached value
// from the transposition table over a fresh call to the evaluator.
func (s *Search) evaluate(p *position.Position, ply int) Value {
	s.statistics.LeafPositionsEvaluated++

	value := ValueNA
	if config.Settings.Search.UseTT && config.Settings.Search.UseEvalTT {
		if ttEntry := s.tt.Probe(p.ZobristKey()); ttEntry != nil {
			s.statistics.TTHit++
			s.statistics.EvaluationsFromTT++
			value = valueFromTT(ttEntry.Value(), ply)
		}
	}

	if value == ValueNA {
		s.statistics.Evaluations++
		value = s.eval.Evaluate(p)
	}

	if config.Settings.Search.UseTT && config.Settings.Search.UseEvalTT {
		s.storeTT(p, 0, ply, MoveNone, value, EXACT)
	}

	return value
}

// goodCapture decides whether a capture in quiescence search is worth
// looking at, either via SEE or a cheaper set of heuristics (lower takes
// higher, recaptures, captures of undefended pieces).
func (s *Search) goodCapture(p *position.Position, move Move) bool {
	if config.Settings.Search.UseSEE {
		return see(p, move) > 0
	}
	lastMove := p.LastMove()
	isRecapture := lastMove != MoveNone && lastMove.To() == move.To() && p.LastCapturedPiece() != PieceNone
	// If the defender is "behind" the attacker this goes unnoticed; not too
	// bad, it only adds a move to qsearch that could otherwise be skipped.
	isUndefended := !p.IsAttacked(move.To(), p.NextPlayer().Flip())
	return p.GetPiece(move.From()).ValueOf()+50 < p.GetPiece(move.To()).ValueOf() || isRecapture || isUndefended
}

// savePV makes move the new first move of dest, followed by the rest of
// the line already found one ply deeper (src).
func savePV(move Move, src *moveslice.MoveSlice, dest *moveslice.MoveSlice) {
	dest.Clear()
	dest.PushBack(move)
	*dest = append(*dest, *src...)
}

// storeTT records a search result under the position's Zobrist key.
func (s *Search) storeTT(p *position.Position, depth int, ply int, move Move, value Value, valueType ValueType) {
	s.tt.Put(p.ZobristKey(), move, int8(depth), valueToTT(value, ply), valueType, ValueNA)
}

// getPVLine reconstructs the principal variation from depth by walking the
// chain of TT entries reachable from p, replaying each move to follow the
// chain and then undoing them all again.
func (s *Search) getPVLine(p *position.Position, pv *moveslice.MoveSlice, depth int) {
	pv.Clear()
	counter := 0
	ttMatch := s.tt.GetEntry(p.ZobristKey())
	for ttMatch != nil && ttMatch.Move() != MoveNone && counter < depth {
		pv.PushBack(ttMatch.Move().MoveOf())
		p.DoMove(ttMatch.Move().MoveOf())
		counter++
		ttMatch = s.tt.GetEntry(p.ZobristKey())
	}
	for i := 0; i < counter; i++ {
		p.UndoMove()
	}
}

// valueToTT adjusts a mate value by ply before storing it, so a mate found
// deeper in the tree doesn't get confused with the same mate found closer
// to the root when read back from a shallower position.
func valueToTT(value Value, ply int) Value {
	if value.IsCheckMateValue() {
		if value > 0 {
			value += Value(ply)
		} else {
			value -= Value(ply)
		}
	}
	return value
}

// valueFromTT reverses valueToTT's adjustment when reading a stored value
// back in at the current ply.
func valueFromTT(value Value, ply int) Value {
	if value.IsCheckMateValue() {
		if value > 0 {
			value -= Value(ply)
		} else {
			value += Value(ply)
		}
	}
	return value
}

// getSearchTraceLog returns a Logger with a time/level/message format, for
// use by the search package itself. It writes to os.Stdout unless the log
// folder and its <executable>_search.log file can be opened; then the file
// backend replaces the os.Stdout one.
func getSearchTraceLog() *logging.Logger {
	searchLog := logging.MustGetLogger("search")

	searchLogFormat := logging.MustStringFormatter(`%{time:15:04:05.000} %{level:-7.7s}:  %{message}`)

	backend1 := logging.NewLogBackend(os.Stdout, "", golog.Lmsgprefix)
	backend1Formatter := logging.NewBackendFormatter(backend1, searchLogFormat)
	searchBackEnd := logging.AddModuleLevel(backend1Formatter)
	searchBackEnd.SetLevel(logging.Level(config.SearchLogLevel), "")
	searchLog.SetBackend(searchBackEnd)

	programName, _ := os.Executable()
	exeName := strings.TrimSuffix(filepath.Base(programName), ".exe")

	logPath, err := util.ResolveFolder(config.Settings.Log.LogPath)
	if err != nil {
		golog.Println("Log folder could not be found:", err)
		return searchLog
	}
	searchLogFilePath := filepath.Join(logPath, exeName+"_search.log")

	searchLogFile, err := os.OpenFile(searchLogFilePath, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		golog.Println("Logfile could not be created:", err)
		return searchLog
	}
	backend2 := logging.NewLogBackend(searchLogFile, "", golog.Lmsgprefix)
	backend2Formatter := logging.NewBackendFormatter(backend2, searchLogFormat)
	searchBackEnd2 := logging.AddModuleLevel(backend2Formatter)
	searchBackEnd2.SetLevel(logging.DEBUG, "")
	searchLog.SetBackend(searchBackEnd2)
	searchLog.Infof("Log %s started at %s:", searchLogFile.Name(), time.Now().String())
	return searchLog
}
