//
// FrankyGo - UCI chess engine in GO for learning purposes
//
// MIT License
//
// Copyright (c) 2018-2020 Frank Kopp
//

package types

// Piece is a colored piece as it sits on the board (e.g. WhiteKnight).
type Piece int8

const (
	PieceNone   Piece = 0
	WhiteKing   Piece = iota
	WhitePawn
	WhiteKnight
	WhiteBishop
	WhiteRook
	WhiteQueen
	_
	_
	BlackKing
	BlackPawn
	BlackKnight
	BlackBishop
	BlackRook
	BlackQueen
	_
	PieceLength
)

var pieceToChar = "-KPNBRQ--kpnbrq-"

// MakePiece combines a color and piece kind into a colored Piece.
func MakePiece(c Color, k PieceKind) Piece {
	return Piece(int(c)<<3 + int(k))
}

// ColorOf returns the color of p.
func (p Piece) ColorOf() Color {
	if p >= BlackKing {
		return Black
	}
	return White
}

// KindOf returns the piece kind of p, stripped of color.
func (p Piece) KindOf() PieceKind {
	return PieceKind(p & 7)
}

// IsValid reports whether p is a real colored piece (excludes PieceNone).
func (p Piece) IsValid() bool {
	return p.KindOf().IsValid()
}

// ValueOf returns the static material value of p's kind, or 0 for
// PieceNone - used by move generation to score captures.
func (p Piece) ValueOf() Value {
	return p.KindOf().Value()
}

// String renders p as its FEN letter (uppercase=white), or "-" for none.
func (p Piece) String() string {
	if p < 0 || p >= PieceLength {
		return "-"
	}
	return string(pieceToChar[p])
}
