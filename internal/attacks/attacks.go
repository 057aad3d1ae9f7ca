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

package attacks

import (
	"github.com/op/go-logging"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	myLogging "github.com/b-mclemore/computer-chess/internal/logging"
	"github.com/b-mclemore/computer-chess/internal/position"
	. "github.com/b-mclemore/computer-chess/internal/types"
)

var out = message.NewPrinter(language.German)

// nonPawnKinds lists the piece kinds handled by the shared magic/pseudo
// attack lookup, in no particular order - pawns follow a push/capture rule
// instead and are handled separately in pawnAttacks.
var nonPawnKinds = [5]PieceKind{King, Knight, Bishop, Rook, Queen}

// sliderKinds are the two piece kinds whose attacks can be blocked, and
// therefore revealed again once a blocker is removed.
var sliderKinds = [2]PieceKind{Rook, Bishop}

// Attacks is a data structure to store all attacks and defends of a position.
type Attacks struct {
	log *logging.Logger

	// the position key for which the attacks have been calculated
	Zobrist Key
	// bitboards of attacked/defended squares for each color and each from square
	// to get attackers us &^ ownPieces or & ownPieces for defenders
	From [ColorLength][SqLength]Bitboard
	// bitboards of attackers/defenders for each color and to square
	// to get attackers us &^ ownPieces or & ownPieces for defenders
	To [ColorLength][SqLength]Bitboard
	// bitboards for all attacked/defended squares of a color
	// to get attackers us &^ ownPieces or & ownPieces for defenders
	All [ColorLength]Bitboard
	// bitboards of attacked/defended squares for each color and each piece type
	// to get attackers us &^ ownPieces or & ownPieces for defenders
	Piece [ColorLength][PtLength]Bitboard
	// sum of possible moves for each color (moves to ownPieces already excluded)
	Mobility [ColorLength]int
	// pawn attacks - squares attacked by pawn of the given color
	Pawns [ColorLength]Bitboard
	// pawn double - squares which are attacked twice by pawns of the given color
	PawnsDouble [ColorLength]Bitboard
}

// NewAttacks creates a new instance of Attacks.
func NewAttacks() *Attacks {
	return &Attacks{
		log: myLogging.GetLog(),
	}
}

// Clear resets a to its zero value, keeping only its logger. Rebuilding the
// whole struct literal is a single allocation-free assignment and never
// drifts out of sync when a new field is added, unlike a hand-maintained
// field-by-field reset.
func (a *Attacks) Clear() {
	log := a.log
	*a = Attacks{log: log}
}

// Compute calculates all attacks on the position.
// Stores the positions zobrist key to be able to
// check if the position is already computed.
// if a position is called twice the already
// stored attacks are untouched.
func (a *Attacks) Compute(p *position.Position) {
	if p.ZobristKey() == a.Zobrist {
		a.log.Debugf("attacks compute: position was already computed")
		return
	}
	a.Zobrist = p.ZobristKey()
	a.nonPawnAttacks(p)
	a.pawnAttacks(p)
}

// nonPawnAttacks calculates all attacks of non pawn pieces including king,
// one piece kind at a time via accumulateKindAttacks.
func (a *Attacks) nonPawnAttacks(p *position.Position) {
	allPieces := p.OccupiedAll()
	for c := White; c <= Black; c++ {
		myPieces := p.OccupiedBb(c)
		for _, pt := range nonPawnKinds {
			a.accumulateKindAttacks(p, c, pt, myPieces, allPieces)
		}
	}
}

// accumulateKindAttacks folds the attack set of every piece of kind pt and
// color c into the From/To/Piece/All/Mobility fields.
func (a *Attacks) accumulateKindAttacks(p *position.Position, c Color, pt PieceKind, myPieces, allPieces Bitboard) {
	for pieces := p.PiecesBb(c, pt); pieces != BbZero; {
		psq := pieces.PopLsb()
		// attacks include attacks on opponent pieces and defense of own pieces
		atk := GetAttacksBb(pt, psq, allPieces)
		a.From[c][psq] = atk
		a.Piece[c][pt] |= atk
		a.All[c] |= atk
		for tmp := atk; tmp != BbZero; {
			toSq := tmp.PopLsb()
			a.To[c][toSq].PushSquare(psq)
		}
		a.Mobility[c] += (atk &^ myPieces).PopCount()
	}
}

// pawnAttacks calculate all attacks for pawns.
func (a *Attacks) pawnAttacks(p *position.Position) {
	for _, c := range [2]Color{White, Black} {
		pawns := p.PiecesBb(c, Pawn)
		dirs := c.PawnCaptureDirs()
		east := ShiftBitboard(pawns, dirs[0])
		west := ShiftBitboard(pawns, dirs[1])
		a.Pawns[c] = east | west
		a.PawnsDouble[c] = east & west
	}
}

// AttacksTo determines all attacks to the given square for the given color,
// folding pawn, non-sliding and sliding contributions over their own piece
// kind lists rather than one fixed-shape expression.
func AttacksTo(p *position.Position, square Square, color Color) Bitboard {
	occupiedAll := p.OccupiedAll()

	attackers := GetPawnAttacks(color.Flip(), square) & p.PiecesBb(color, Pawn)
	for _, pt := range [2]PieceKind{Knight, King} {
		attackers |= GetAttacksBb(pt, square, occupiedAll) & p.PiecesBb(color, pt)
	}
	for _, pt := range sliderKinds {
		attackers |= GetAttacksBb(pt, square, occupiedAll) & (p.PiecesBb(color, pt) | p.PiecesBb(color, Queen))
	}
	attackers |= enPassantAttackTo(p, square, color)
	return attackers
}

// enPassantAttackTo returns the pawn bitboard of color that could capture
// en passant onto square, or BbZero if no en passant capture applies there.
func enPassantAttackTo(p *position.Position, square Square, color Color) Bitboard {
	epSquare := p.GetEnPassantSquare()
	if epSquare == SqNone || epSquare != square {
		return BbZero
	}
	pawnSquare := epSquare.To(color.Flip().MoveDirection())
	if pawnSquare.NeighbourFilesMask()&pawnSquare.RankOf().Bb()&p.PiecesBb(color, Pawn) == BbZero {
		return BbZero
	}
	return pawnSquare.Bb()
}

// RevealedAttacks returns sliding attacks after a piece has been removed to
// reveal new attacks. Only slider kinds are considered since only their
// attacks can be blocked and therefore revealed.
func RevealedAttacks(p *position.Position, square Square, occupied Bitboard, color Color) Bitboard {
	var revealed Bitboard
	for _, pt := range sliderKinds {
		revealed |= GetAttacksBb(pt, square, occupied) & (p.PiecesBb(color, pt) | p.PiecesBb(color, Queen)) & occupied
	}
	return revealed
}
