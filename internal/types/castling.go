//
// FrankyGo - UCI chess engine in GO for learning purposes
//
// MIT License
//
// Copyright (c) 2018-2020 Frank Kopp
//

package types

// castlingRightsMask maps a square that was just touched (as source or
// destination of a move) to the castling rights it invalidates: a king's
// home square clears both of its side's rights, a rook's home square
// clears the matching single right.
var castlingRightsMask [SqLength]CastlingRights

func initCastlingMasks() {
	castlingRightsMask[SqE1] = CastlingWhiteOO | CastlingWhiteOOO
	castlingRightsMask[SqH1] = CastlingWhiteOO
	castlingRightsMask[SqA1] = CastlingWhiteOOO
	castlingRightsMask[SqE8] = CastlingBlackOO | CastlingBlackOOO
	castlingRightsMask[SqH8] = CastlingBlackOO
	castlingRightsMask[SqA8] = CastlingBlackOOO
}

// GetCastlingRights returns the castling rights invalidated by a move
// touching sq (as either its source or destination square).
func GetCastlingRights(sq Square) CastlingRights {
	return castlingRightsMask[sq]
}

// CastlingKingTo, CastlingRookFrom and CastlingRookTo describe, per color
// and side, the squares involved in a castling move beyond the king's own
// source/destination.
var CastlingKingTo = [ColorLength][2]Square{
	White: {SqG1, SqC1},
	Black: {SqG8, SqC8},
}

var CastlingRookFrom = [ColorLength][2]Square{
	White: {SqH1, SqA1},
	Black: {SqH8, SqA8},
}

var CastlingRookTo = [ColorLength][2]Square{
	White: {SqF1, SqD1},
	Black: {SqF8, SqD8},
}

// CastlingKingSide and CastlingQueenSide index the two sides of the board
// for the arrays above.
const (
	CastlingKingSide = 0
	CastlingQueenSide = 1
)
