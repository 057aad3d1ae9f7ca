//
// FrankyGo - UCI chess engine in GO for learning purposes
//
// MIT License
//
// Copyright (c) 2018-2020 Frank Kopp
//

package types

import (
	"github.com/b-mclemore/computer-chess/assert"
)

// PosMidValue returns the precomputed positional value for the piece on
// the given square in the middlegame.
func PosMidValue(p Piece, sq Square) Value {
	if assert.DEBUG {
		assert.Assert(initialized, "position values have not been initialized")
	}
	return posMidValue[p][sq]
}

// PosEndValue returns the precomputed positional value for the piece on
// the given square in the endgame.
func PosEndValue(p Piece, sq Square) Value {
	if assert.DEBUG {
		assert.Assert(initialized, "position values have not been initialized")
	}
	return posEndValue[p][sq]
}

// PosValue returns the positional value for the piece on the given
// square, interpolated between middlegame and endgame by gamePhase.
func PosValue(p Piece, sq Square, gamePhase int) Value {
	if assert.DEBUG {
		assert.Assert(initialized, "position values have not been initialized")
	}
	s := Score{MidGameValue: int16(posMidValue[p][sq]), EndGameValue: int16(posEndValue[p][sq])}
	return s.ValueFromScore(gamePhase)
}

var posMidValue [PieceLength][SqLength]Value
var posEndValue [PieceLength][SqLength]Value

// pieceTables maps each piece kind to its raster (rank8-to-rank1,
// a-to-h) middlegame/endgame piece-square tables.
var pieceTables = map[PieceKind]*[2][SqLength]Value{
	King:   &kingTables,
	Pawn:   &pawnTables,
	Knight: &knightTables,
	Bishop: &bishopTables,
	Rook:   &rookTables,
	Queen:  &queenTables,
}

// whiteRasterIndex maps a square to its index in a raster table that lists
// rank8 first and file a leftmost within each rank - the conventional
// orientation for a table printed as it reads on the board, valid as-is
// for White's perspective.
func whiteRasterIndex(sq Square) int {
	return (7-int(sq.RankOf()))*8 + int(sq.FileOf())
}

// blackRasterIndex is the same table read with ranks mirrored, giving
// Black the same relative square values on its side of the board.
func blackRasterIndex(sq Square) int {
	return int(sq.RankOf())*8 + int(sq.FileOf())
}

func initPosValues() {
	for kind, tables := range pieceTables {
		mid, end := &tables[0], &tables[1]
		for sq := SqH1; sq < SqNone; sq++ {
			wp := MakePiece(White, kind)
			posMidValue[wp][sq] = mid[whiteRasterIndex(sq)]
			posEndValue[wp][sq] = end[whiteRasterIndex(sq)]

			bp := MakePiece(Black, kind)
			posMidValue[bp][sq] = mid[blackRasterIndex(sq)]
			posEndValue[bp][sq] = end[blackRasterIndex(sq)]
		}
	}
}

// Piece-square tables, each printed rank8 (top) to rank1 (bottom), file a
// (left) to file h (right) - the conventional orientation, valid as-is for
// White and mirrored for Black by blackRasterIndex.
var pawnTables = [2][SqLength]Value{
	{
		0, 0, 0, 0, 0, 0, 0, 0,
		0, 0, 0, 0, 0, 0, 0, 0,
		0, 5, 5, 5, 5, 5, 5, 0,
		5, 5, 10, 30, 30, 10, 5, 5,
		0, 0, 0, 30, 30, 0, 0, 0,
		5, -5, -10, 0, 0, -10, -5, 5,
		5, 10, 10, -30, -30, 10, 10, 5,
		0, 0, 0, 0, 0, 0, 0, 0,
	},
	{
		0, 0, 0, 0, 0, 0, 0, 0,
		90, 90, 90, 90, 90, 90, 90, 90,
		40, 50, 50, 60, 60, 50, 50, 40,
		20, 30, 30, 40, 40, 30, 30, 20,
		10, 10, 20, 20, 20, 10, 10, 10,
		5, 10, 10, 10, 10, 10, 10, 5,
		5, 10, 10, 10, 10, 10, 10, 5,
		0, 0, 0, 0, 0, 0, 0, 0,
	},
}

var knightTables = [2][SqLength]Value{
	{
		-50, -40, -30, -30, -30, -30, -40, -50,
		-40, -20, 0, 0, 0, 0, -20, -40,
		-30, 0, 10, 15, 15, 10, 0, -30,
		-30, 5, 15, 20, 20, 15, 5, -30,
		-30, 0, 15, 20, 20, 15, 0, -30,
		-30, 5, 10, 15, 15, 10, 5, -30,
		-40, -20, 0, 5, 5, 0, -20, -40,
		-50, -25, -20, -30, -30, -20, -25, -50,
	},
	{
		-50, -40, -30, -30, -30, -30, -40, -50,
		-40, -20, 0, 0, 0, 0, -20, -40,
		-30, 0, 10, 15, 15, 10, 0, -30,
		-30, 0, 15, 20, 20, 15, 0, -30,
		-30, 0, 15, 20, 20, 15, 0, -30,
		-30, 0, 10, 15, 15, 10, 0, -30,
		-40, -20, 0, 0, 0, 0, -20, -40,
		-50, -40, -20, -30, -30, -20, -40, -50,
	},
}

var bishopTables = [2][SqLength]Value{
	{
		-20, -10, -10, -10, -10, -10, -10, -20,
		-10, 0, 0, 0, 0, 0, 0, -10,
		-10, 0, 5, 10, 10, 5, 0, -10,
		-10, 5, 5, 10, 10, 5, 5, -10,
		-10, 0, 10, 10, 10, 10, 0, -10,
		-10, 10, 10, 10, 10, 10, 10, -10,
		-10, 5, 0, 0, 0, 0, 5, -10,
		-20, -10, -40, -10, -10, -40, -10, -20,
	},
	{
		-20, -10, -10, -10, -10, -10, -10, -20,
		-10, 0, 0, 0, 0, 0, 0, -10,
		-10, 0, 5, 5, 5, 5, 0, -10,
		-10, 0, 5, 10, 10, 5, 0, -10,
		-10, 0, 5, 10, 10, 5, 0, -10,
		-10, 0, 5, 5, 5, 5, 0, -10,
		-10, 0, 0, 0, 0, 0, 0, -10,
		-20, -10, -10, -10, -10, -10, -10, -20,
	},
}

var rookTables = [2][SqLength]Value{
	{
		5, 5, 5, 5, 5, 5, 5, 5,
		10, 10, 10, 10, 10, 10, 10, 10,
		0, 0, 0, 0, 0, 0, 0, 0,
		0, 0, 0, 0, 0, 0, 0, 0,
		0, 0, 0, 0, 0, 0, 0, 0,
		0, 0, 0, 0, 0, 0, 0, 0,
		0, 0, 0, 0, 0, 0, 0, 0,
		-15, -10, 15, 15, 15, 15, -10, -15,
	},
	{
		5, 5, 5, 5, 5, 5, 5, 5,
		0, 0, 0, 0, 0, 0, 0, 0,
		0, 0, 0, 0, 0, 0, 0, 0,
		0, 0, 0, 0, 0, 0, 0, 0,
		0, 0, 0, 0, 0, 0, 0, 0,
		0, 0, 0, 0, 0, 0, 0, 0,
		0, 0, 0, 0, 0, 0, 0, 0,
		0, 0, 0, 0, 0, 0, 0, 0,
	},
}

var queenTables = [2][SqLength]Value{
	{
		-20, -10, -10, -5, -5, -10, -10, -20,
		-10, 0, 0, 0, 0, 0, 0, -10,
		-10, 0, 0, 0, 0, 0, 0, -10,
		-5, 0, 2, 2, 2, 2, 0, -5,
		-5, 0, 5, 5, 5, 5, 0, -5,
		-10, 0, 5, 5, 5, 5, 0, -10,
		-10, 0, 5, 5, 5, 5, 0, -10,
		-20, -10, -10, -5, -5, -10, -10, -20,
	},
	{
		-20, -10, -10, -5, -5, -10, -10, -20,
		-10, 0, 0, 0, 0, 0, 0, -10,
		-10, 0, 5, 5, 5, 5, 0, -10,
		-5, 0, 5, 5, 5, 5, 0, -5,
		-5, 0, 5, 5, 5, 5, 0, -5,
		-10, 0, 5, 5, 5, 5, 0, -10,
		-10, 0, 0, 0, 0, 0, 0, -10,
		-20, -10, -10, -5, -5, -10, -10, -20,
	},
}

var kingTables = [2][SqLength]Value{
	{
		-30, -40, -40, -50, -50, -40, -40, -30,
		-30, -40, -40, -50, -50, -40, -40, -30,
		-30, -40, -40, -50, -50, -40, -40, -30,
		-30, -40, -40, -50, -50, -40, -40, -30,
		-20, -30, -30, -40, -40, -30, -30, -20,
		-10, -20, -20, -30, -30, -30, -20, -10,
		0, 0, -20, -20, -20, -20, 0, 0,
		20, 50, 0, -20, -20, 0, 50, 20,
	},
	{
		-50, -30, -30, -20, -20, -30, -30, -50,
		-30, -20, -10, 0, 0, -10, -20, -30,
		-30, -10, 20, 30, 30, 20, -10, -30,
		-30, -10, 30, 40, 40, 30, -10, -30,
		-30, -10, 30, 40, 40, 30, -10, -30,
		-30, -10, 20, 30, 30, 20, -10, -30,
		-30, -30, 0, 0, 0, 0, -30, -30,
		-50, -30, -30, -30, -30, -30, -30, -50,
	},
}
