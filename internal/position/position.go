//
// FrankyGo - UCI chess engine in GO for learning purposes
//
// MIT License
//
// Copyright (c) 2018-2020 Frank Kopp
//

// Package position represents a chess board and its position: piece
// placement via both an 8x8 array and bitboards, a fixed-depth history
// stack for make/unmake, an incrementally maintained Zobrist key, and
// running material/piece-square sums for the evaluator.
package position

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/b-mclemore/computer-chess/assert"
	. "github.com/b-mclemore/computer-chess/internal/types"
)

func init() {
	initZobrist()
}

// StartFen is the FEN of the standard chess starting position.
const StartFen = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// Position is the engine's board representation.
type Position struct {
	zobristKey Key
	pawnKey    Key

	board           [SqLength]Piece
	castlingRights  CastlingRights
	enPassantSquare Square
	halfMoveClock   int
	nextPlayer      Color

	kingSquare         [ColorLength]Square
	nextHalfMoveNumber int

	piecesBb   [ColorLength][PtLength]Bitboard
	occupiedBb [ColorLength]Bitboard

	historyCounter int
	history        [MaxMoves]historyEntry

	material        [ColorLength]Value
	materialNonPawn [ColorLength]Value
	psqMidValue     [ColorLength]Value
	psqEndValue     [ColorLength]Value
	gamePhase       int
}

// historyEntry is a snapshot of everything make/unmake needs to restore
// besides the board and bitboards, which are reversed symbolically from
// the move itself.
type historyEntry struct {
	zobristKey      Key
	pawnKey         Key
	move            Move
	capturedPiece   Piece
	castlingRights  CastlingRights
	enPassantSquare Square
	halfMoveClock   int
}

// NewPosition returns a Position set up at the standard chess start, or
// from fen[0] when a FEN is given. It panics if that FEN does not parse;
// NewPositionFen returns the error instead.
func NewPosition(fen ...string) *Position {
	f := StartFen
	if len(fen) > 0 {
		f = fen[0]
	}
	p, err := NewPositionFen(f)
	if err != nil {
		panic("NewPosition: " + err.Error())
	}
	return p
}

// NewPositionFen creates a Position from a FEN string. On a malformed FEN
// it returns nil and an error; no partial Position escapes on failure.
func NewPositionFen(fen string) (*Position, error) {
	p := &Position{}
	if err := p.setupFromFen(fen); err != nil {
		return nil, fmt.Errorf("parsing fen %q: %w", fen, err)
	}
	return p, nil
}

// DoMove applies m to the position. The caller is responsible for m being
// at least pseudo-legal; DoMove does not re-validate piece ownership.
func (p *Position) DoMove(m Move) {
	src, dst := m.Src(), m.Dst()
	movingPc := p.board[src]
	color := movingPc.ColorOf()
	capturedPc := PieceNone
	switch {
	case m.IsEnPassant():
		capturedPc = MakePiece(color.Flip(), Pawn)
	case m.IsCapture():
		capturedPc = p.board[dst]
	}

	h := &p.history[p.historyCounter]
	h.zobristKey = p.zobristKey
	h.pawnKey = p.pawnKey
	h.move = m
	h.capturedPiece = capturedPc
	h.castlingRights = p.castlingRights
	h.enPassantSquare = p.enPassantSquare
	h.halfMoveClock = p.halfMoveClock
	p.historyCounter++

	p.clearCastlingRightsTouching(src, dst)
	p.clearEnPassant()

	switch {
	case m.IsCastling():
		p.doCastling(color, src, dst)
		p.halfMoveClock++
	case m.IsEnPassant():
		capSq := dst.To(color.Flip().MoveDirection())
		p.removePiece(capSq)
		p.movePiece(src, dst)
		p.halfMoveClock = 0
	case m.IsPromotion():
		if m.IsCapture() {
			p.removePiece(dst)
		}
		p.removePiece(src)
		p.putPiece(MakePiece(color, m.Promotion()), dst)
		p.halfMoveClock = 0
	default:
		if m.IsCapture() {
			p.removePiece(dst)
			p.halfMoveClock = 0
		} else if movingPc.KindOf() == Pawn {
			p.halfMoveClock = 0
		} else {
			p.halfMoveClock++
		}
		p.movePiece(src, dst)
		if m.IsDoublePush() {
			p.enPassantSquare = dst.To(color.Flip().MoveDirection())
			p.zobristKey ^= zobristBase.enPassantFile[p.enPassantSquare.FileOf()]
		}
	}

	if color == Black {
		p.nextHalfMoveNumber++
	}
	p.nextPlayer = p.nextPlayer.Flip()
	p.zobristKey ^= zobristBase.nextPlayer
}

// UndoMove reverts the most recent DoMove.
func (p *Position) UndoMove() {
	if assert.DEBUG {
		assert.Assert(p.historyCounter > 0, "UndoMove: no move to undo")
	}
	p.historyCounter--
	h := &p.history[p.historyCounter]
	m := h.move
	src, dst := m.Src(), m.Dst()

	p.nextPlayer = p.nextPlayer.Flip()
	if p.nextPlayer == Black {
		p.nextHalfMoveNumber--
	}
	color := p.nextPlayer

	switch {
	case m.IsCastling():
		p.movePiece(dst, src)
		side := CastlingKingSide
		if dst == CastlingKingTo[color][CastlingQueenSide] {
			side = CastlingQueenSide
		}
		p.movePiece(CastlingRookTo[color][side], CastlingRookFrom[color][side])
	case m.IsEnPassant():
		p.movePiece(dst, src)
		p.putPiece(h.capturedPiece, dst.To(color.Flip().MoveDirection()))
	case m.IsPromotion():
		p.removePiece(dst)
		p.putPiece(MakePiece(color, Pawn), src)
		if h.capturedPiece != PieceNone {
			p.putPiece(h.capturedPiece, dst)
		}
	default:
		p.movePiece(dst, src)
		if h.capturedPiece != PieceNone {
			p.putPiece(h.capturedPiece, dst)
		}
	}

	p.castlingRights = h.castlingRights
	p.enPassantSquare = h.enPassantSquare
	p.halfMoveClock = h.halfMoveClock
	p.zobristKey = h.zobristKey
	p.pawnKey = h.pawnKey
}

func (p *Position) doCastling(color Color, src, dst Square) {
	side := CastlingKingSide
	if dst == CastlingKingTo[color][CastlingQueenSide] {
		side = CastlingQueenSide
	}
	p.movePiece(src, dst)
	p.movePiece(CastlingRookFrom[color][side], CastlingRookTo[color][side])
}

func (p *Position) clearCastlingRightsTouching(squares ...Square) {
	if p.castlingRights == CastlingNone {
		return
	}
	var cr CastlingRights
	for _, sq := range squares {
		cr |= GetCastlingRights(sq)
	}
	if cr == CastlingNone {
		return
	}
	p.zobristKey ^= zobristBase.castlingRights[p.castlingRights]
	p.castlingRights = p.castlingRights.Remove(cr)
	p.zobristKey ^= zobristBase.castlingRights[p.castlingRights]
}

func (p *Position) clearEnPassant() {
	if p.enPassantSquare != SqNone {
		p.zobristKey ^= zobristBase.enPassantFile[p.enPassantSquare.FileOf()]
		p.enPassantSquare = SqNone
	}
}

func (p *Position) movePiece(from, to Square) {
	p.putPiece(p.removePiece(from), to)
}

func (p *Position) putPiece(piece Piece, sq Square) {
	color, kind := piece.ColorOf(), piece.KindOf()
	if assert.DEBUG {
		assert.Assert(p.board[sq] == PieceNone, "putPiece: square %s already occupied", sq.String())
	}
	p.board[sq] = piece
	if kind == King {
		p.kingSquare[color] = sq
	}
	p.piecesBb[color][kind].PushSquare(sq)
	p.occupiedBb[color].PushSquare(sq)
	p.zobristKey ^= zobristBase.pieces[piece][sq]
	if kind == Pawn {
		p.pawnKey ^= zobristBase.pieces[piece][sq]
	}
	p.gamePhase += kind.GamePhaseValue()
	if p.gamePhase > GamePhaseMax {
		p.gamePhase = GamePhaseMax
	}
	p.material[color] += kind.Value()
	if kind != Pawn && kind != King {
		p.materialNonPawn[color] += kind.Value()
	}
	p.psqMidValue[color] += PosMidValue(piece, sq)
	p.psqEndValue[color] += PosEndValue(piece, sq)
}

func (p *Position) removePiece(sq Square) Piece {
	piece := p.board[sq]
	color, kind := piece.ColorOf(), piece.KindOf()
	if assert.DEBUG {
		assert.Assert(piece != PieceNone, "removePiece: square %s is empty", sq.String())
	}
	p.board[sq] = PieceNone
	p.piecesBb[color][kind].PopSquare(sq)
	p.occupiedBb[color].PopSquare(sq)
	p.zobristKey ^= zobristBase.pieces[piece][sq]
	if kind == Pawn {
		p.pawnKey ^= zobristBase.pieces[piece][sq]
	}
	p.gamePhase -= kind.GamePhaseValue()
	if p.gamePhase < 0 {
		p.gamePhase = 0
	}
	p.material[color] -= kind.Value()
	if kind != Pawn && kind != King {
		p.materialNonPawn[color] -= kind.Value()
	}
	p.psqMidValue[color] -= PosMidValue(piece, sq)
	p.psqEndValue[color] -= PosEndValue(piece, sq)
	return piece
}

// IsAttacked reports whether sq is attacked by any piece of color by, via
// the super-piece reverse-attack predicate: place each piece kind's
// template on sq and ask whether it intersects a real piece of that kind
// belonging to by. A pawn on sq that can be taken en passant counts as
// attacked by the pawns of by that could take it.
func (p *Position) IsAttacked(sq Square, by Color) bool {
	if GetPawnAttacks(by.Flip(), sq)&p.piecesBb[by][Pawn] != 0 {
		return true
	}
	if ep := p.enPassantSquare; ep != SqNone && ep.To(by.Flip().MoveDirection()) == sq &&
		p.board[sq] == MakePiece(by.Flip(), Pawn) &&
		sq.NeighbourFilesMask()&sq.RankOf().Bb()&p.piecesBb[by][Pawn] != 0 {
		return true
	}
	if GetPseudoAttacks(Knight, sq)&p.piecesBb[by][Knight] != 0 {
		return true
	}
	if GetPseudoAttacks(King, sq)&p.piecesBb[by][King] != 0 {
		return true
	}
	occ := p.OccupiedAll()
	if GetAttacksBb(Bishop, sq, occ)&(p.piecesBb[by][Bishop]|p.piecesBb[by][Queen]) != 0 {
		return true
	}
	if GetAttacksBb(Rook, sq, occ)&(p.piecesBb[by][Rook]|p.piecesBb[by][Queen]) != 0 {
		return true
	}
	return false
}

// HasCheck reports whether the side to move is currently in check.
func (p *Position) HasCheck() bool {
	return p.IsAttacked(p.kingSquare[p.nextPlayer], p.nextPlayer.Flip())
}

// HasInsufficientMaterial reports whether neither side has enough material
// left to force a mate (a helpmate by mistake is not excluded).
func (p *Position) HasInsufficientMaterial() bool {
	// bare kings on both sides
	if p.material[White]+p.material[Black] == 2*King.Value() {
		return true
	}

	// no pawns left on the board
	if p.piecesBb[White][Pawn].PopCount() == 0 && p.piecesBb[Black][Pawn].PopCount() == 0 {
		// king and a minor piece each, or one side bare
		if p.materialNonPawn[White] < 400 && p.materialNonPawn[Black] < 400 {
			return true
		}
		// the weaker side has a minor piece against two knights
		if (p.materialNonPawn[White] == 2*Knight.ValueOf() && p.materialNonPawn[Black] <= Bishop.ValueOf()) ||
			(p.materialNonPawn[Black] == 2*Knight.ValueOf() && p.materialNonPawn[White] <= Bishop.ValueOf()) {
			return true
		}
		// two bishops draw against a single bishop
		if (p.materialNonPawn[White] == 2*Bishop.ValueOf() && p.materialNonPawn[Black] == Bishop.ValueOf()) ||
			(p.materialNonPawn[Black] == 2*Bishop.ValueOf() && p.materialNonPawn[White] == Bishop.ValueOf()) {
			return true
		}
		// a bishop pair can force mate
		if p.materialNonPawn[White] == 2*Bishop.ValueOf() || p.materialNonPawn[Black] == 2*Bishop.ValueOf() {
			return false
		}
		// two minor pieces against one draw, unless the stronger side has the bishop pair
		if (p.materialNonPawn[White] < 2*Bishop.ValueOf() && p.materialNonPawn[Black] <= Bishop.ValueOf()) ||
			(p.materialNonPawn[White] <= Bishop.ValueOf() && p.materialNonPawn[Black] < 2*Bishop.ValueOf()) {
			return true
		}
	}
	return false
}

// WasLegalMove reports whether the move just applied via DoMove left its
// mover's own king safe, and for castling also whether the king's start
// and crossed squares were not attacked. Must be called after DoMove and
// before UndoMove.
func (p *Position) WasLegalMove() bool {
	mover := p.nextPlayer.Flip()
	if p.IsAttacked(p.kingSquare[mover], mover.Flip()) {
		return false
	}
	if last := p.LastMove(); last.IsCastling() {
		transit := (last.From() + last.To()) / 2
		return !p.IsAttacked(last.From(), mover.Flip()) && !p.IsAttacked(transit, mover.Flip())
	}
	return true
}

// CheckRepetitions reports whether the current position occurred at least
// reps times before with the same side to move, looking back no further
// than the last capture or pawn move.
func (p *Position) CheckRepetitions(reps int) bool {
	count := 0
	for i := p.historyCounter - 2; i >= 0 && i >= p.historyCounter-p.halfMoveClock; i -= 2 {
		if p.history[i].zobristKey == p.zobristKey {
			count++
			if count >= reps {
				return true
			}
		}
	}
	return false
}

// IsLegalMove reports whether m is legal in the current position: it is
// applied, checked with WasLegalMove, then unapplied.
func (p *Position) IsLegalMove(m Move) bool {
	p.DoMove(m)
	legal := p.WasLegalMove()
	p.UndoMove()
	return legal
}

// CastlingPathSafe reports whether none of a king's source, transit and
// destination squares are attacked by the opposing color - the check-path
// admissibility condition for a castling move, evaluated at generation
// time rather than by trial make/unmake.
func (p *Position) CastlingPathSafe(color Color, src, transit, dst Square) bool {
	opp := color.Flip()
	return !p.IsAttacked(src, opp) && !p.IsAttacked(transit, opp) && !p.IsAttacked(dst, opp)
}

// ZobristKey returns the position's current Zobrist hash.
func (p *Position) ZobristKey() Key { return p.zobristKey }

// PawnKey returns a Zobrist hash of the pawn structure alone, unaffected
// by non-pawn piece placement. Used to key the pawn evaluation cache.
func (p *Position) PawnKey() Key { return p.pawnKey }

// NextPlayer returns the side to move.
func (p *Position) NextPlayer() Color { return p.nextPlayer }

// GetPiece returns the piece on sq, or PieceNone if empty.
func (p *Position) GetPiece(sq Square) Piece { return p.board[sq] }

// PiecesBb returns the bitboard of pieces of kind k belonging to c.
func (p *Position) PiecesBb(c Color, k PieceKind) Bitboard { return p.piecesBb[c][k] }

// OccupiedBb returns the bitboard of all pieces belonging to c.
func (p *Position) OccupiedBb(c Color) Bitboard { return p.occupiedBb[c] }

// OccupiedAll returns the bitboard of every occupied square.
func (p *Position) OccupiedAll() Bitboard { return p.occupiedBb[White] | p.occupiedBb[Black] }

// CastlingRights returns the position's current castling rights.
func (p *Position) CastlingRights() CastlingRights { return p.castlingRights }

// GetEnPassantSquare returns the en passant target square, or SqNone.
func (p *Position) GetEnPassantSquare() Square { return p.enPassantSquare }

// KingSquare returns the square of c's king.
func (p *Position) KingSquare(c Color) Square { return p.kingSquare[c] }

// HalfMoveClock returns the position's 50-move-rule counter.
func (p *Position) HalfMoveClock() int { return p.halfMoveClock }

// NextHalfMoveNumber returns the half-move counter of the move about to be played.
func (p *Position) NextHalfMoveNumber() int { return p.nextHalfMoveNumber }

// GamePhase returns the current game-phase weight, in [0, GamePhaseMax].
func (p *Position) GamePhase() int { return p.gamePhase }

// GamePhaseFactor returns the game phase as a factor between 0 and 1,
// the ratio of the current phase to GamePhaseMax.
func (p *Position) GamePhaseFactor() float64 { return float64(p.gamePhase) / GamePhaseMax }

// Material returns c's total material value.
func (p *Position) Material(c Color) Value { return p.material[c] }

// MaterialNonPawn returns c's non-pawn material value.
func (p *Position) MaterialNonPawn(c Color) Value { return p.materialNonPawn[c] }

// PsqMidValue returns c's accumulated middlegame piece-square value.
func (p *Position) PsqMidValue(c Color) Value { return p.psqMidValue[c] }

// PsqEndValue returns c's accumulated endgame piece-square value.
func (p *Position) PsqEndValue(c Color) Value { return p.psqEndValue[c] }

// LastMove returns the most recently made move, or MoveNone if none.
func (p *Position) LastMove() Move {
	if p.historyCounter == 0 {
		return MoveNone
	}
	return p.history[p.historyCounter-1].move
}

// LastCapturedPiece returns the piece taken by the most recently made move,
// or PieceNone if there is no history or the move was not a capture.
func (p *Position) LastCapturedPiece() Piece {
	if p.historyCounter == 0 {
		return PieceNone
	}
	return p.history[p.historyCounter-1].capturedPiece
}

// DoNullMove passes the move without changing the board: only the side to
// move and en passant state change, which null move pruning relies on to
// probe "what if I got a free move here" without the cost of a real DoMove.
// UndoNullMove must be called before any other move is made.
func (p *Position) DoNullMove() {
	h := &p.history[p.historyCounter]
	h.zobristKey = p.zobristKey
	h.pawnKey = p.pawnKey
	h.move = MoveNone
	h.capturedPiece = PieceNone
	h.castlingRights = p.castlingRights
	h.enPassantSquare = p.enPassantSquare
	h.halfMoveClock = p.halfMoveClock
	p.historyCounter++

	p.clearEnPassant()
	p.nextHalfMoveNumber++
	p.nextPlayer = p.nextPlayer.Flip()
	p.zobristKey ^= zobristBase.nextPlayer
}

// UndoNullMove reverts the most recent DoNullMove.
func (p *Position) UndoNullMove() {
	p.historyCounter--
	h := &p.history[p.historyCounter]
	p.nextPlayer = p.nextPlayer.Flip()
	if p.nextPlayer == Black {
		p.nextHalfMoveNumber--
	}
	p.castlingRights = h.castlingRights
	p.enPassantSquare = h.enPassantSquare
	p.halfMoveClock = h.halfMoveClock
	p.zobristKey = h.zobristKey
	p.pawnKey = h.pawnKey
}

// GivesCheck reports whether playing move against the current position
// would check the opponent's king, without actually making the move. It
// covers both a direct check from the moved piece on its destination
// square and a check revealed by the piece having moved off its origin
// square. For castling only a check from the rook on its new square is
// detected.
func (p *Position) GivesCheck(move Move) bool {
	us := p.nextPlayer
	them := us.Flip()
	kingSq := p.kingSquare[them]

	from, to := move.From(), move.To()
	pt := move.PieceKind()
	epCaptureSq := SqNone

	switch {
	case move.IsPromotion():
		pt = move.Promotion()
	case move.IsCastling():
		side := CastlingKingSide
		if to == CastlingKingTo[us][CastlingQueenSide] {
			side = CastlingQueenSide
		}
		rookTo := CastlingRookTo[us][side]
		occ := p.OccupiedAll()
		occ.PopSquare(from)
		occ.PopSquare(CastlingRookFrom[us][side])
		occ.PushSquare(to)
		occ.PushSquare(rookTo)
		return GetAttacksBb(Rook, rookTo, occ).Has(kingSq)
	case move.IsEnPassant():
		epCaptureSq = to.To(them.MoveDirection())
	}

	occAfter := p.OccupiedAll()
	occAfter.PopSquare(from)
	occAfter.PushSquare(to)
	if epCaptureSq != SqNone {
		occAfter.PopSquare(epCaptureSq)
	}

	switch pt {
	case Pawn:
		if GetPawnAttacks(us, to).Has(kingSq) {
			return true
		}
	case King:
		// the king itself can never give check
	default:
		if GetAttacksBb(pt, to, occAfter).Has(kingSq) {
			return true
		}
	}

	switch {
	case GetAttacksBb(Bishop, kingSq, occAfter)&p.piecesBb[us][Bishop] != 0:
		return true
	case GetAttacksBb(Rook, kingSq, occAfter)&p.piecesBb[us][Rook] != 0:
		return true
	case GetAttacksBb(Queen, kingSq, occAfter)&p.piecesBb[us][Queen] != 0:
		return true
	}
	return false
}

// String renders the FEN followed by an ASCII board.
func (p *Position) String() string {
	var sb strings.Builder
	sb.WriteString(p.StringFen())
	sb.WriteString("\n")
	sb.WriteString(p.StringBoard())
	return sb.String()
}

// StringBoard renders an 8x8 ASCII board, rank 8 first, file a first.
func (p *Position) StringBoard() string {
	var sb strings.Builder
	sb.WriteString("+---+---+---+---+---+---+---+---+\n")
	for r := Rank8; ; r-- {
		for f := FileA; f <= FileH; f++ {
			sb.WriteString("| ")
			sb.WriteString(p.board[SquareOf(f, r)].String())
			sb.WriteString(" ")
		}
		sb.WriteString("|\n+---+---+---+---+---+---+---+---+\n")
		if r == Rank1 {
			break
		}
	}
	return sb.String()
}

// StringFen renders the position's current Forsyth-Edwards string.
func (p *Position) StringFen() string {
	var sb strings.Builder
	for r := Rank8; ; r-- {
		empty := 0
		for f := FileA; f <= FileH; f++ {
			pc := p.board[SquareOf(f, r)]
			if pc == PieceNone {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteString(strconv.Itoa(empty))
				empty = 0
			}
			sb.WriteString(pc.String())
		}
		if empty > 0 {
			sb.WriteString(strconv.Itoa(empty))
		}
		if r > Rank1 {
			sb.WriteString("/")
		}
		if r == Rank1 {
			break
		}
	}
	sb.WriteString(" ")
	sb.WriteString(p.nextPlayer.String())
	sb.WriteString(" ")
	sb.WriteString(p.castlingRights.String())
	sb.WriteString(" ")
	sb.WriteString(p.enPassantSquare.String())
	sb.WriteString(" ")
	sb.WriteString(strconv.Itoa(p.halfMoveClock))
	sb.WriteString(" ")
	sb.WriteString(strconv.Itoa((p.nextHalfMoveNumber + 1) / 2))
	return sb.String()
}

var errEmptyFen = errors.New("fen must not be empty")

// setupFromFen parses fen into p. Callers (NewPositionFen) allocate a
// fresh Position per attempt, so a parse failure never leaves a
// previously-valid Position half mutated.
func (p *Position) setupFromFen(fen string) error {
	fen = strings.TrimSpace(fen)
	parts := strings.Fields(fen)
	if len(parts) == 0 {
		return errEmptyFen
	}

	file, rank := FileA, Rank8
	for _, c := range parts[0] {
		switch {
		case c >= '1' && c <= '8':
			file += File(c - '0')
		case c == '/':
			if rank == Rank1 {
				return fmt.Errorf("invalid piece placement %q: too many ranks", parts[0])
			}
			rank--
			file = FileA
		default:
			piece := pieceFromFenChar(c)
			if piece == PieceNone {
				return fmt.Errorf("invalid piece character %q", c)
			}
			if !file.IsValid() {
				return fmt.Errorf("invalid piece placement %q: rank overflow", parts[0])
			}
			p.putPiece(piece, SquareOf(file, rank))
			file++
		}
	}

	p.nextHalfMoveNumber = 1
	p.enPassantSquare = SqNone
	p.nextPlayer = White

	if len(parts) >= 2 {
		switch parts[1] {
		case "w":
			p.nextPlayer = White
		case "b":
			p.nextPlayer = Black
			p.zobristKey ^= zobristBase.nextPlayer
			p.nextHalfMoveNumber++
		default:
			return fmt.Errorf("invalid side to move %q", parts[1])
		}
	}

	if len(parts) >= 3 && parts[2] != "-" {
		for _, c := range parts[2] {
			switch c {
			case 'K':
				p.castlingRights = p.castlingRights.Add(CastlingWhiteOO)
			case 'Q':
				p.castlingRights = p.castlingRights.Add(CastlingWhiteOOO)
			case 'k':
				p.castlingRights = p.castlingRights.Add(CastlingBlackOO)
			case 'q':
				p.castlingRights = p.castlingRights.Add(CastlingBlackOOO)
			default:
				return fmt.Errorf("invalid castling availability %q", parts[2])
			}
		}
	}
	p.zobristKey ^= zobristBase.castlingRights[p.castlingRights]

	if len(parts) >= 4 && parts[3] != "-" {
		p.enPassantSquare = MakeSquare(parts[3])
		if p.enPassantSquare == SqNone {
			return fmt.Errorf("invalid en passant square %q", parts[3])
		}
		p.zobristKey ^= zobristBase.enPassantFile[p.enPassantSquare.FileOf()]
	}

	if len(parts) >= 5 {
		n, err := strconv.Atoi(parts[4])
		if err != nil {
			return fmt.Errorf("invalid halfmove clock: %w", err)
		}
		p.halfMoveClock = n
	}

	if len(parts) >= 6 {
		n, err := strconv.Atoi(parts[5])
		if err != nil {
			return fmt.Errorf("invalid fullmove number: %w", err)
		}
		if n == 0 {
			n = 1
		}
		p.nextHalfMoveNumber = 2*n - (1 - int(p.nextPlayer))
	}

	return nil
}

func pieceFromFenChar(c rune) Piece {
	switch c {
	case 'K':
		return WhiteKing
	case 'Q':
		return WhiteQueen
	case 'R':
		return WhiteRook
	case 'B':
		return WhiteBishop
	case 'N':
		return WhiteKnight
	case 'P':
		return WhitePawn
	case 'k':
		return BlackKing
	case 'q':
		return BlackQueen
	case 'r':
		return BlackRook
	case 'b':
		return BlackBishop
	case 'n':
		return BlackKnight
	case 'p':
		return BlackPawn
	default:
		return PieceNone
	}
}
