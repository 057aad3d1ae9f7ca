//
// FrankyGo - UCI chess engine in GO for learning purposes
//
// MIT License
//
// Copyright (c) 2018-2020 Frank Kopp
//

package position

import (
	. "github.com/b-mclemore/computer-chess/internal/types"
)

// zobrist holds the random 64-bit codes XORed together to produce a
// position's hash key: one per (piece, square), one per castling-rights
// value, one per en-passant file, and one for side to move.
type zobrist struct {
	pieces         [PieceLength][SqLength]Key
	castlingRights [CastlingAny + 1]Key
	enPassantFile  [FileLength]Key
	nextPlayer     Key
}

var zobristBase zobrist

// zobristSeed is fixed so hash keys are reproducible across runs, matching
// the engine's reproducible-initialization requirement for magic search.
const zobristSeed uint64 = 1070372

func initZobrist() {
	r := newRandom(zobristSeed)
	for pc := PieceNone; pc < PieceLength; pc++ {
		for sq := SqH1; sq < SqNone; sq++ {
			zobristBase.pieces[pc][sq] = Key(r.rand64())
		}
	}
	for cr := CastlingNone; cr <= CastlingAny; cr++ {
		zobristBase.castlingRights[cr] = Key(r.rand64())
	}
	for f := FileA; f < FileLength; f++ {
		zobristBase.enPassantFile[f] = Key(r.rand64())
	}
	zobristBase.nextPlayer = Key(r.rand64())
}
