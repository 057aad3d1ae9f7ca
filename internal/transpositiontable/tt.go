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

// Package transpositiontable implements a fixed-size hash table caching
// previously searched positions for a chess engine search. TtTable is not
// thread safe; Resize and Clear must not run concurrently with a search.
package transpositiontable

import (
	"math"
	"sync"
	"time"
	"unsafe"

	"github.com/op/go-logging"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	myLogging "github.com/b-mclemore/computer-chess/internal/logging"
	. "github.com/b-mclemore/computer-chess/internal/types"
	"github.com/b-mclemore/computer-chess/internal/util"
)

var out = message.NewPrinter(language.German)

// MaxSizeInMB is the largest table size Resize will honor.
const MaxSizeInMB = 65_536

// ageingGoroutines is how many workers AgeEntries splits its slice across.
const ageingGoroutines = 32

// TtTable is a fixed-size, always-addressed-by-hash cache of search results,
// keyed by Zobrist key modulo a power-of-two table size.
type TtTable struct {
	log                *logging.Logger
	data               []TtEntry
	sizeInByte         uint64
	hashKeyMask        uint64
	maxNumberOfEntries uint64
	numberOfEntries    uint64
	Stats              TtStats
}

// TtStats holds statistical data on tt usage.
type TtStats struct {
	numberOfPuts       uint64
	numberOfCollisions uint64
	numberOfOverwrites uint64
	numberOfUpdates    uint64
	numberOfProbes     uint64
	numberOfHits       uint64
	numberOfMisses     uint64
}

// slotState classifies a hash bucket relative to an incoming key, which
// drives how Put merges a result into it.
type slotState int

const (
	slotEmpty slotState = iota
	slotCollision
	slotSameKey
)

// NewTtTable creates a TtTable sized to fit within sizeInMByte bytes.
func NewTtTable(sizeInMByte int) *TtTable {
	tt := &TtTable{log: myLogging.GetLog()}
	tt.Resize(sizeInMByte)
	return tt
}

// Resize rebuilds the table so its entry count is the largest power of two
// fitting within sizeInMByte, clearing all existing entries.
func (tt *TtTable) Resize(sizeInMByte int) {
	if sizeInMByte > MaxSizeInMB {
		tt.log.Error(out.Sprintf("Requested size for TT of %d MB reduced to max of %d MB", sizeInMByte, MaxSizeInMB))
		sizeInMByte = MaxSizeInMB
	}

	requestedBytes := uint64(sizeInMByte) * MB
	entries := uint64(0)
	if requestedBytes >= TtEntrySize {
		entries = 1 << uint64(math.Floor(math.Log2(float64(requestedBytes/TtEntrySize))))
	}

	tt.maxNumberOfEntries = entries
	tt.hashKeyMask = 0
	if entries > 0 {
		tt.hashKeyMask = entries - 1
	}
	tt.sizeInByte = entries * TtEntrySize
	tt.data = make([]TtEntry, entries)

	tt.log.Info(out.Sprintf("TT Size %d MByte, Capacity %d entries (size=%dByte) (Requested were %d MBytes)",
		tt.sizeInByte/MB, tt.maxNumberOfEntries, unsafe.Sizeof(TtEntry{}), sizeInMByte))
	tt.log.Debug(util.MemStat())
}

// GetEntry returns the bucket for key if its stored key matches, else nil.
// Does not touch statistics.
func (tt *TtTable) GetEntry(key Key) *TtEntry {
	if e := &tt.data[tt.hash(key)]; e.key == key {
		return e
	}
	return nil
}

// Probe looks up key, ages the entry on a hit (it survived being replaced),
// and records a hit/miss in Stats.
func (tt *TtTable) Probe(key Key) *TtEntry {
	tt.Stats.numberOfProbes++
	e := &tt.data[tt.hash(key)]
	if e.key != key {
		tt.Stats.numberOfMisses++
		return nil
	}
	e.decreaseAge()
	tt.Stats.numberOfHits++
	return e
}

// classify reports how the bucket for key relates to an incoming store.
func (e *TtEntry) classify(key Key) slotState {
	switch {
	case e.key == 0:
		return slotEmpty
	case e.key != key:
		return slotCollision
	default:
		return slotSameKey
	}
}

// shouldReplace reports whether a collided entry should be overwritten by a
// candidate of the given depth: a deeper search is always worth keeping, and
// an equal-depth entry still loses out once it has aged past one generation.
func (e *TtEntry) shouldReplace(depth int8) bool {
	return depth > e.Depth() || (depth == e.Depth() && e.Age() > 1)
}

// fill writes a full new entry, overwriting any previous content.
func (e *TtEntry) fill(key Key, move Move, depth int8, value, eval Value, vtype ValueType) {
	e.key = key
	e.move = uint32(move.MoveOf())
	e.eval = int16(eval)
	e.value = int16(value)
	e.vmeta = uint16(depth)<<depthShift + uint16(vtype)<<vtypeShift + 1
}

// merge folds a re-probe of an already-resident key into e, keeping
// whichever fields the caller didn't explicitly refresh (MoveNone/ValueNA
// mean "leave as is").
func (e *TtEntry) merge(move Move, depth int8, value, eval Value, vtype ValueType) {
	if move != MoveNone {
		e.move = uint32(move.MoveOf())
	}
	if eval != ValueNA {
		e.eval = int16(eval)
	}
	if value != ValueNA {
		e.value = int16(value)
		e.vmeta = uint16(depth)<<depthShift + uint16(vtype)<<vtypeShift + 1
	}
}

// Put records a search result for key, replacing whatever previously
// occupied its bucket according to the table's replacement policy: an empty
// bucket is always filled, a colliding key is overwritten only when the new
// result is at least as deep and the old one has aged, and a re-probe of the
// same key is merged field by field.
func (tt *TtTable) Put(key Key, move Move, depth int8, value Value, vtype ValueType, eval Value) {
	if tt.maxNumberOfEntries == 0 {
		return
	}
	tt.Stats.numberOfPuts++
	e := &tt.data[tt.hash(key)]

	switch e.classify(key) {
	case slotEmpty:
		tt.numberOfEntries++
		e.fill(key, move, depth, value, eval, vtype)
	case slotCollision:
		tt.Stats.numberOfCollisions++
		if e.shouldReplace(depth) {
			tt.Stats.numberOfOverwrites++
			e.fill(key, move, depth, value, eval, vtype)
		}
	case slotSameKey:
		tt.Stats.numberOfUpdates++
		e.merge(move, depth, value, eval, vtype)
	}
}

// Clear discards all entries, resetting usage statistics with them.
func (tt *TtTable) Clear() {
	tt.data = make([]TtEntry, tt.maxNumberOfEntries)
	tt.numberOfEntries = 0
	tt.Stats = TtStats{}
}

// Hashfull reports table occupancy in permill, as required by the UCI
// "hashfull" info field.
func (tt *TtTable) Hashfull() int {
	if tt.maxNumberOfEntries == 0 {
		return 0
	}
	return int((1000 * tt.numberOfEntries) / tt.maxNumberOfEntries)
}

// String renders a human-readable summary of table size and usage stats.
func (tt *TtTable) String() string {
	hitRate := (tt.Stats.numberOfHits * 100) / (1 + tt.Stats.numberOfProbes)
	missRate := (tt.Stats.numberOfMisses * 100) / (1 + tt.Stats.numberOfProbes)
	return out.Sprintf("TT: size %d MB max entries %d of size %d Bytes entries %d (%d%%) puts %d "+
		"updates %d collisions %d overwrites %d probes %d hits %d (%d%%) misses %d (%d%%)",
		tt.sizeInByte/MB, tt.maxNumberOfEntries, unsafe.Sizeof(TtEntry{}), tt.numberOfEntries, tt.Hashfull()/10,
		tt.Stats.numberOfPuts, tt.Stats.numberOfUpdates, tt.Stats.numberOfCollisions, tt.Stats.numberOfOverwrites,
		tt.Stats.numberOfProbes, tt.Stats.numberOfHits, hitRate, tt.Stats.numberOfMisses, missRate)
}

// Len returns the number of occupied entries.
func (tt *TtTable) Len() uint64 {
	return tt.numberOfEntries
}

// AgeEntries increments the age of every occupied entry, splitting the
// table into ageingGoroutines contiguous slices processed concurrently.
func (tt *TtTable) AgeEntries() {
	startTime := time.Now()
	if tt.numberOfEntries > 0 {
		var wg sync.WaitGroup
		for _, bounds := range tt.ageingSlices(ageingGoroutines) {
			wg.Add(1)
			go func(start, end uint64) {
				defer wg.Done()
				for n := start; n < end; n++ {
					if tt.data[n].key != 0 {
						tt.data[n].increaseAge()
					}
				}
			}(bounds[0], bounds[1])
		}
		wg.Wait()
	}
	tt.log.Debug(out.Sprintf("Aged %d entries of %d in %d ms\n",
		tt.numberOfEntries, len(tt.data), time.Since(startTime).Milliseconds()))
}

// ageingSlices partitions the table's index range into n contiguous
// [start, end) bounds, folding any remainder into the final slice.
func (tt *TtTable) ageingSlices(n uint64) [][2]uint64 {
	bounds := make([][2]uint64, n)
	chunk := tt.maxNumberOfEntries / n
	for i := uint64(0); i < n; i++ {
		start := i * chunk
		end := start + chunk
		if i == n-1 {
			end = tt.maxNumberOfEntries
		}
		bounds[i] = [2]uint64{start, end}
	}
	return bounds
}

func (tt *TtTable) hash(key Key) uint64 {
	return uint64(key) & tt.hashKeyMask
}
