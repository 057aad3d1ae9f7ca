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

// Package types holds the fundamental value types shared by every other
// package of the engine: squares, bitboards, pieces, colors, moves and
// values. They are kept dependency free so any package can dot-import them.
package types

import (
	"fmt"

	"github.com/b-mclemore/computer-chess/assert"
)

// Square represents exactly one square on the chess board.
//
// The numbering runs h1=0, g1=1, ..., a1=7, h2=8, ..., a8=63: within a
// rank the square number increases from file h to file a. This is the
// reverse of the more common a1=0 numbering and means East/West (and the
// diagonal directions) carry the opposite sign from what a reader used to
// the common numbering would expect - see Direction below.
type Square uint8

const (
	SqH1 Square = iota
	SqG1
	SqF1
	SqE1
	SqD1
	SqC1
	SqB1
	SqA1
	SqH2
	SqG2
	SqF2
	SqE2
	SqD2
	SqC2
	SqB2
	SqA2
	SqH3
	SqG3
	SqF3
	SqE3
	SqD3
	SqC3
	SqB3
	SqA3
	SqH4
	SqG4
	SqF4
	SqE4
	SqD4
	SqC4
	SqB4
	SqA4
	SqH5
	SqG5
	SqF5
	SqE5
	SqD5
	SqC5
	SqB5
	SqA5
	SqH6
	SqG6
	SqF6
	SqE6
	SqD6
	SqC6
	SqB6
	SqA6
	SqH7
	SqG7
	SqF7
	SqE7
	SqD7
	SqC7
	SqB7
	SqA7
	SqH8
	SqG8
	SqF8
	SqE8
	SqD8
	SqC8
	SqB8
	SqA8
	SqNone
)

// SqLength is the number of valid squares.
const SqLength = 64

// IsValid reports whether sq is one of the 64 real board squares.
func (sq Square) IsValid() bool {
	return sq < SqNone
}

// FileOf returns the file of sq (FileA=0 ... FileH=7).
func (sq Square) FileOf() File {
	return File(7 - (sq & 7))
}

// RankOf returns the rank of sq (Rank1=0 ... Rank8=7).
func (sq Square) RankOf() Rank {
	return Rank(sq >> 3)
}

// SquareOf returns the square for the given file and rank, or SqNone if
// either is out of range.
func SquareOf(f File, r Rank) Square {
	if !f.IsValid() || !r.IsValid() {
		return SqNone
	}
	return Square(int(r)<<3 + (7 - int(f)))
}

// MakeSquare parses an algebraic square string ("e4") into a Square, or
// SqNone if the string does not describe a valid square.
func MakeSquare(s string) Square {
	if assert.DEBUG {
		assert.Assert(len(s) == 2, "square string is not 2 characters long")
	}
	if len(s) != 2 {
		return SqNone
	}
	f := File(s[0] - 'a')
	r := Rank(s[1] - '1')
	if !f.IsValid() || !r.IsValid() {
		return SqNone
	}
	return SquareOf(f, r)
}

// String renders sq as an algebraic square string, or "-" if invalid.
func (sq Square) String() string {
	if !sq.IsValid() {
		return "-"
	}
	return sq.FileOf().String() + sq.RankOf().String()
}

// To returns the square reached by moving one step in direction d from sq,
// or SqNone if that step would leave the board. Edge wrap is detected by
// checking file/rank before the step, not by range-checking after it.
func (sq Square) To(d Direction) Square {
	switch d {
	case North:
		if sq.RankOf() == Rank8 {
			return SqNone
		}
	case South:
		if sq.RankOf() == Rank1 {
			return SqNone
		}
	case East:
		if sq.FileOf() == FileH {
			return SqNone
		}
	case West:
		if sq.FileOf() == FileA {
			return SqNone
		}
	case Northeast:
		if sq.RankOf() == Rank8 || sq.FileOf() == FileH {
			return SqNone
		}
	case Northwest:
		if sq.RankOf() == Rank8 || sq.FileOf() == FileA {
			return SqNone
		}
	case Southeast:
		if sq.RankOf() == Rank1 || sq.FileOf() == FileH {
			return SqNone
		}
	case Southwest:
		if sq.RankOf() == Rank1 || sq.FileOf() == FileA {
			return SqNone
		}
	default:
		panic(fmt.Sprintf("invalid direction %d", d))
	}
	return sq + Square(d)
}

// SquareDistance returns the Chebyshev distance between two squares.
func SquareDistance(a, b Square) int {
	fd := int(a.FileOf()) - int(b.FileOf())
	if fd < 0 {
		fd = -fd
	}
	rd := int(a.RankOf()) - int(b.RankOf())
	if rd < 0 {
		rd = -rd
	}
	if fd > rd {
		return fd
	}
	return rd
}
