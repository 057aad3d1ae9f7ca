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

package search

import (
	"github.com/b-mclemore/computer-chess/internal/position"
	. "github.com/b-mclemore/computer-chess/internal/types"
)

// attackerKinds lists piece kinds in increasing value order, the order
// Static Exchange Evaluation must consider attackers in: the cheapest
// possible recapture is always the right one to assume.
var attackerKinds = [6]PieceKind{Pawn, Knight, Bishop, Rook, Queen, King}

// see runs a Static Exchange Evaluation of move: it plays out the full
// capture sequence on the destination square, from both sides, each side
// always recapturing with its least valuable attacker, and returns the
// net material swing for the side making the first capture. A positive
// result means the initial capture wins material even after every
// recapture; qsearch uses this to skip captures that merely lose
// material. https://www.chessprogramming.org/Static_Exchange_Evaluation
func see(p *position.Position, move Move) Value {
	if move.IsEnPassant() {
		// the move preceding an en passant capture is never itself a
		// capture, so the exchange always nets at least a pawn.
		return Pawn.ValueOf()
	}

	toSquare := move.To()
	fromSquare := move.From()
	movedPiece := p.GetPiece(fromSquare)
	side := p.NextPlayer()

	occupied := p.OccupiedAll()
	attackers := seeAttacksTo(p, toSquare, White) | seeAttacksTo(p, toSquare, Black)

	var gain [32]Value
	ply := 0
	gain[ply] = p.GetPiece(toSquare).ValueOf()

	for {
		ply++
		side = side.Flip()

		if move.IsPromotion() && ply == 1 {
			gain[ply] = move.Promotion().ValueOf() - Pawn.ValueOf() - gain[ply-1]
		} else {
			gain[ply] = movedPiece.ValueOf() - gain[ply-1]
		}

		// a defended piece stops the exchange early: recapturing here
		// can never improve the side-to-move's score beyond what's
		// already guaranteed, so there's nothing left worth computing.
		if maxValue(-gain[ply-1], gain[ply]) < 0 {
			break
		}

		attackers.PopSquare(fromSquare)
		occupied.PopSquare(fromSquare)
		attackers |= seeRevealedAttacks(p, toSquare, occupied, White) | seeRevealedAttacks(p, toSquare, occupied, Black)

		fromSquare = seeLeastValuableAttacker(p, attackers, side)
		if fromSquare == SqNone {
			break
		}
		movedPiece = p.GetPiece(fromSquare)
	}

	for ply--; ply > 0; ply-- {
		gain[ply-1] = -maxValue(-gain[ply-1], gain[ply])
	}
	return gain[0]
}

// seeAttacksTo returns every piece of color that attacks square, used to
// seed the exchange sequence. Unlike attacks.AttacksTo this ignores en
// passant: the capture preceding an exchange is never itself en passant.
func seeAttacksTo(p *position.Position, square Square, color Color) Bitboard {
	occ := p.OccupiedAll()
	attackers := GetPawnAttacks(color.Flip(), square) & p.PiecesBb(color, Pawn)
	for _, pt := range [2]PieceKind{Knight, King} {
		attackers |= GetAttacksBb(pt, square, occ) & p.PiecesBb(color, pt)
	}
	for _, pt := range [2]PieceKind{Rook, Bishop} {
		attackers |= GetAttacksBb(pt, square, occ) & (p.PiecesBb(color, pt) | p.PiecesBb(color, Queen))
	}
	return attackers
}

// seeRevealedAttacks returns slider attacks on square that only exist
// because occupied has already had an earlier attacker removed from it.
func seeRevealedAttacks(p *position.Position, square Square, occupied Bitboard, color Color) Bitboard {
	return (GetAttacksBb(Rook, square, occupied) & (p.PiecesBb(color, Rook) | p.PiecesBb(color, Queen)) & occupied) |
		(GetAttacksBb(Bishop, square, occupied) & (p.PiecesBb(color, Bishop) | p.PiecesBb(color, Queen)) & occupied)
}

// seeLeastValuableAttacker returns the square of color's cheapest piece in
// bitboard, or SqNone if color has no attacker left in it.
func seeLeastValuableAttacker(p *position.Position, bitboard Bitboard, color Color) Square {
	for _, pt := range attackerKinds {
		if attackersOfKind := bitboard & p.PiecesBb(color, pt); attackersOfKind != BbZero {
			return attackersOfKind.Lsb()
		}
	}
	return SqNone
}

func maxValue(x, y Value) Value {
	if x > y {
		return x
	}
	return y
}
