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

// Package history provides data structures updated during search to give
// the move generator move-ordering hints (history counters, counter moves).
// The search contract of §4.6 does not depend on move ordering for
// correctness; this package only affects how quickly alpha-beta converges.
package history

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	. "github.com/b-mclemore/computer-chess/internal/types"
)

var out = message.NewPrinter(language.German)

// History holds move-ordering statistics accumulated during one search.
// HistoryCount rewards moves that caused a beta cutoff, indexed by
// [color][from][to]. CounterMoves remembers, for each (from, to) pair of
// the opponent's last move, the move that refuted it best.
type History struct {
	HistoryCount [2][64][64]int64
	CounterMoves [64][64]Move
}

// NewHistory creates a new, zeroed History instance.
func NewHistory() *History {
	return &History{}
}

// Count adds depth*depth to the history counter for a quiet move that
// caused a beta cutoff at the given depth, on the theory that cutoffs at
// greater depth are stronger evidence the move is good.
func (h *History) Count(c Color, from Square, to Square, depth int) {
	h.HistoryCount[c][from][to] += int64(depth) * int64(depth)
}

// SetCounterMove remembers move as the best reply seen so far to the
// opponent's (from, to) move.
func (h *History) SetCounterMove(from Square, to Square, move Move) {
	h.CounterMoves[from][to] = move
}

// Decay reduces the history counter for a quiet move that was searched but
// did not cause a beta cutoff, so a move that only occasionally cuts off
// doesn't keep a permanently inflated ordering score.
func (h *History) Decay(c Color, from Square, to Square, depth int) {
	h.HistoryCount[c][from][to] -= int64(depth) * int64(depth)
	if h.HistoryCount[c][from][to] < 0 {
		h.HistoryCount[c][from][to] = 0
	}
}

func (h History) String() string {
	sb := strings.Builder{}
	for sf := SqA1; sf < SqNone; sf++ {
		for st := SqA1; st < SqNone; st++ {
			sb.WriteString(out.Sprintf("Move=%s%s: ", sf.String(), st.String()))
			for c := White; c <= 1; c++ {
				count := h.HistoryCount[c][sf][st]
				sb.WriteString(out.Sprintf("%s=%-7d ", c.String(), count))
			}
			m := h.CounterMoves[sf][st]
			sb.WriteString(out.Sprintf("cm=%s\n", m.StringUci()))
		}
	}
	return sb.String()
}
