//
// FrankyGo - UCI chess engine in GO for learning purposes
//
// MIT License
//
// Copyright (c) 2018-2020 Frank Kopp
//

package types

import (
	"fmt"
	"strings"

	"github.com/b-mclemore/computer-chess/assert"
)

// Move is a packed move word. The low 29 bits hold the move itself; bits
// 29-44 carry an out-of-band sort value used by move generation/ordering
// and never compared when two moves are tested for equality as moves.
//  bits   field
//  0-5    source square
//  6-11   destination square
//  12-15  moving piece kind
//  16-19  promotion piece kind (PtNone when not a promotion)
//  20     capture flag
//  21     double-pawn-push flag
//  22     en-passant capture flag
//  23     castling flag
//  24     side-to-move at the time of the move
//  25-28  captured piece kind (valid when capture flag set)
//  29-44  sort value (biased by -ValueNA so it stores as unsigned)
type Move uint64

// MoveNone is the zero value: an empty, invalid move.
const MoveNone Move = 0

const (
	srcShift      = 0
	dstShift      = 6
	pieceShift    = 12
	promShift     = 16
	captureBit    = 20
	doublePushBit = 21
	epBit         = 22
	castlingBit   = 23
	colorShift    = 24
	capturedShift = 25
	valueShift    = 29

	squareMask6 Move = 0x3F
	pieceMask4  Move = 0xF
	valueMask16 Move = 0xFFFF
)

// MoveFields groups the arguments needed to encode a move, so callers don't
// thread eight positional parameters through move generation.
type MoveFields struct {
	Src, Dst     Square
	Piece        PieceKind
	Promotion    PieceKind
	Capture      bool
	DoublePush   bool
	EnPassant    bool
	Castling     bool
	Color        Color
	CapturedKind PieceKind
}

// CreateMove packs f into a Move word with a zero sort value.
func CreateMove(f MoveFields) Move {
	if assert.DEBUG {
		assert.Assert(f.Src.IsValid(), "invalid source square")
		assert.Assert(f.Dst.IsValid(), "invalid destination square")
	}
	m := Move(f.Src)<<srcShift |
		Move(f.Dst)<<dstShift |
		Move(f.Piece)<<pieceShift |
		Move(f.Promotion)<<promShift |
		Move(f.Color)<<colorShift |
		Move(f.CapturedKind)<<capturedShift
	if f.Capture {
		m |= 1 << captureBit
	}
	if f.DoublePush {
		m |= 1 << doublePushBit
	}
	if f.EnPassant {
		m |= 1 << epBit
	}
	if f.Castling {
		m |= 1 << castlingBit
	}
	return m
}

// Src returns the source square.
func (m Move) Src() Square { return Square((m >> srcShift) & squareMask6) }

// Dst returns the destination square.
func (m Move) Dst() Square { return Square((m >> dstShift) & squareMask6) }

// From returns the source square. Alias of Src, matching long-algebraic
// terminology used by search and move-generation code.
func (m Move) From() Square { return m.Src() }

// To returns the destination square. Alias of Dst.
func (m Move) To() Square { return m.Dst() }

// PieceKind returns the kind of the piece making the move.
func (m Move) PieceKind() PieceKind { return PieceKind((m >> pieceShift) & pieceMask4) }

// Promotion returns the promotion piece kind, or PtNone if this is not a
// promoting move.
func (m Move) Promotion() PieceKind { return PieceKind((m >> promShift) & pieceMask4) }

// IsCapture reports whether this move captures a piece (including en
// passant captures).
func (m Move) IsCapture() bool { return m&(1<<captureBit) != 0 }

// IsDoublePush reports whether this move is a pawn double push.
func (m Move) IsDoublePush() bool { return m&(1<<doublePushBit) != 0 }

// IsEnPassant reports whether this move is an en passant capture.
func (m Move) IsEnPassant() bool { return m&(1<<epBit) != 0 }

// IsCastling reports whether this move is a castling move.
func (m Move) IsCastling() bool { return m&(1<<castlingBit) != 0 }

// IsPromotion reports whether this move promotes a pawn.
func (m Move) IsPromotion() bool { return m.Promotion() != PtNone }

// Color returns the side to move at the time the move was generated.
func (m Move) Color() Color { return Color((m >> colorShift) & 1) }

// CapturedKind returns the kind of piece captured; only meaningful when
// IsCapture is true.
func (m Move) CapturedKind() PieceKind { return PieceKind((m >> capturedShift) & pieceMask4) }

// MoveOf strips the sort value, returning just the move identity bits -
// used when comparing or hashing moves, since two encodings of the same
// move may carry different sort values.
func (m Move) MoveOf() Move { return m & ((1 << valueShift) - 1) }

// Value returns the move's sort value, biased back from its stored form.
func (m Move) Value() Value {
	return Value((m>>valueShift)&valueMask16) + ValueNA
}

// ValueOf is an alias of Value, matching the accessor name move generation
// and search use elsewhere (PieceKind.ValueOf, Piece.ValueOf) for symmetry.
func (m Move) ValueOf() Value { return m.Value() }

// SetValue encodes v as m's sort value in place and also returns the
// updated move, so callers can use it either as m.SetValue(v) for the
// side effect or capture the return value directly.
func (m *Move) SetValue(v Value) Move {
	if assert.DEBUG {
		assert.Assert(v == ValueNA || v.IsValid(), "invalid sort value %d", v)
	}
	if *m == MoveNone {
		return *m
	}
	*m = m.MoveOf() | Move(v-ValueNA)<<valueShift
	return *m
}

// WithValue returns m with its sort value set to v - used by move
// generation to carry a preliminary ordering score alongside the move.
func (m Move) WithValue(v Value) Move {
	if assert.DEBUG {
		assert.Assert(v == ValueNA || v.IsValid(), "invalid sort value %d", v)
	}
	if m == MoveNone {
		return m
	}
	return m.MoveOf() | Move(v-ValueNA)<<valueShift
}

// IsValid reports whether m decodes to sane, in-range fields. MoveNone is
// never valid.
func (m Move) IsValid() bool {
	return m != MoveNone &&
		m.Src().IsValid() &&
		m.Dst().IsValid() &&
		m.PieceKind().IsValid() &&
		(m.Promotion() == PtNone || m.Promotion().IsValid())
}

// StringUci renders m in long algebraic notation, e.g. "e2e4", "e7e8q".
func (m Move) StringUci() string {
	if m == MoveNone {
		return "0000"
	}
	var sb strings.Builder
	sb.WriteString(m.Src().String())
	sb.WriteString(m.Dst().String())
	if m.IsPromotion() {
		sb.WriteString(strings.ToLower(m.Promotion().String()))
	}
	return sb.String()
}

// String renders a debug-friendly description of m.
func (m Move) String() string {
	if m == MoveNone {
		return "Move{none}"
	}
	return fmt.Sprintf("Move{%s piece:%s cap:%v prom:%s value:%d}",
		m.StringUci(), m.PieceKind(), m.IsCapture(), m.Promotion(), m.Value())
}
