//
// corvid - a UCI chess engine in Go
//
// MIT License
//
// Copyright (c) 2024 The Corvid Authors
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
// Package openingbook reads game databases of different formats into an
// internal data structure keyed by Zobrist hash. It can then be probed by
// the search for a book move at the root before the search tree is entered.
//
// Supported formats are:
//
// Simple - one game per line, moves given as plain from-square/to-square
// UCI pairs ("e2e4 e7e5 ...")
//
// San - one game per line, moves given in short algebraic notation
//
// Pgn - full PGN game collections (tag pairs and comments are stripped)
package openingbook

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/mkern-dev/corvid/internal/logging"
	"github.com/mkern-dev/corvid/internal/movegen"
	"github.com/mkern-dev/corvid/internal/position"
	"github.com/mkern-dev/corvid/internal/types"
	"github.com/mkern-dev/corvid/internal/util"
)

var out = message.NewPrinter(language.German)
var log = logging.GetLog()

// run line processing concurrently - disable for debugging
const parallel = true

// BookFormat identifies the textual format of an opening book source file.
type BookFormat uint8

// Supported book formats.
const (
	Simple BookFormat = iota
	San
	Pgn
)

// FormatFromString maps the UCI/config option string to a BookFormat.
var FormatFromString = map[string]BookFormat{
	"Simple": Simple,
	"San":    San,
	"Pgn":    Pgn,
}

// Successor is a move together with the Zobrist key of the position it
// leads to.
type Successor struct {
	Move      uint32
	NextEntry uint64
}

// BookEntry describes exactly one position reached while reading a book:
// its Zobrist key, how often it was reached and the moves known to follow
// it.
type BookEntry struct {
	ZobristKey uint64
	Counter    int
	Moves      []Successor
}

// Book is an in-memory opening book built from one or more source files.
// It may optionally be persisted to an on-disk badger key-value cache
// alongside the source to avoid re-parsing large PGN collections on every
// startup.
type Book struct {
	bookMap     map[uint64]BookEntry
	rootEntry   uint64
	initialized bool
}

var bookLock sync.Mutex

// NewBook creates an empty, uninitialized Book.
func NewBook() *Book {
	return &Book{bookMap: map[uint64]BookEntry{}}
}

// Initialize reads bookFile (or, if empty, the last path element of
// bookPath) from bookPath and builds the in-memory book. When useCache is
// set and a readable ".bookcache" directory exists next to the source it is used
// instead of re-parsing, unless recreateCache forces a rebuild. Calling
// Initialize a second time on an already initialized Book is a no-op.
func (b *Book) Initialize(bookPath string, bookFile string, bookFormat BookFormat, useCache bool, recreateCache bool) error {
	if b.initialized {
		return nil
	}

	log.Info("Initializing Opening Book")
	startTotal := time.Now()

	file, err := b.resolveFile(bookPath, bookFile)
	if err != nil {
		log.Errorf("Book file could not be found: %s", err)
		return err
	}

	if useCache && !recreateCache {
		startReading := time.Now()
		hasCache, cacheErr := b.loadFromCache(file)
		elapsedReading := time.Since(startReading)
		if cacheErr != nil {
			log.Warningf("Cache could not be loaded. Reading original data from \"%s\": %s", file, cacheErr)
		}
		if hasCache {
			log.Infof("Finished reading cache from file in: %d ms", elapsedReading.Milliseconds())
			log.Infof("Book from cache file contains %d entries", len(b.bookMap))
			b.initialized = true
			return nil
		}
	}

	log.Infof("Reading opening book file: %s", file)
	startReading := time.Now()
	lines, err := b.readFile(file)
	if err != nil {
		log.Errorf("File \"%s\" could not be read: %s", file, err)
		return err
	}
	elapsedReading := time.Since(startReading)
	log.Infof("Finished reading %d lines from file in: %d ms", len(*lines), elapsedReading.Milliseconds())

	startPosition := position.NewPosition()
	b.bookMap = make(map[uint64]BookEntry)
	b.rootEntry = uint64(startPosition.ZobristKey())
	b.bookMap[b.rootEntry] = BookEntry{ZobristKey: b.rootEntry, Counter: 0, Moves: []Successor{}}

	if parallel {
		log.Infof("Processing %d lines in parallel with format: %v", len(*lines), bookFormat)
	} else {
		log.Infof("Processing %d lines sequential with format: %v", len(*lines), bookFormat)
	}
	startProcessing := time.Now()
	if err = b.process(lines, bookFormat); err != nil {
		log.Errorf("Error while processing: %s", err)
		return err
	}
	elapsedProcessing := time.Since(startProcessing)
	log.Infof("Finished processing %d lines in: %d ms", len(*lines), elapsedProcessing.Milliseconds())

	elapsedTotal := time.Since(startTotal)
	log.Infof("Book contains %d entries", len(b.bookMap))
	log.Infof("Total initialization time: %d ms", elapsedTotal.Milliseconds())

	if useCache {
		log.Info("Saving to cache...")
		startSave := time.Now()
		cacheFile, nBytes, cacheErr := b.saveToCache(file)
		if cacheErr != nil {
			log.Errorf("Error while saving to cache: %s", cacheErr)
		}
		elapsedSave := time.Since(startSave)
		log.Infof("Saved %s kB to cache %s in %d ms", out.Sprintf("%d", nBytes/1_024), cacheFile, elapsedSave.Milliseconds())
	}

	b.initialized = true
	return nil
}

// resolveFile turns a configured book path/file pair into an absolute file
// path, trying bookPath as a folder containing bookFile first and falling
// back to treating bookPath itself as the file.
func (b *Book) resolveFile(bookPath string, bookFile string) (string, error) {
	if bookFile == "" {
		if folder, err := util.ResolveFolder(filepath.Dir(bookPath)); err == nil {
			return filepath.Join(folder, filepath.Base(bookPath)), nil
		}
		return util.ResolveFile(bookPath)
	}
	if folder, err := util.ResolveFolder(bookPath); err == nil {
		return filepath.Join(folder, bookFile), nil
	}
	return util.ResolveFile(filepath.Join(bookPath, bookFile))
}

// NumberOfEntries returns the number of positions currently stored in the
// book.
func (b *Book) NumberOfEntries() int {
	return len(b.bookMap)
}

// GetEntry returns a copy of the book entry for the given Zobrist key.
func (b *Book) GetEntry(key types.Key) (BookEntry, bool) {
	entry, ok := b.bookMap[uint64(key)]
	return entry, ok
}

// Reset clears the book so it can be re-initialized, e.g. on a UCI
// "ucinewgame" command with a different book configured.
func (b *Book) Reset() {
	b.bookMap = map[uint64]BookEntry{}
	b.rootEntry = 0
	b.initialized = false
}

// readFile reads a complete file into a slice of lines.
func (b *Book) readFile(file string) (*[]string, error) {
	f, err := os.Open(file)
	if err != nil {
		log.Errorf("File \"%s\" could not be read: %s", file, err)
		return nil, err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			log.Errorf("File \"%s\" could not be closed: %s", file, cerr)
		}
	}()
	var lines []string
	s := bufio.NewScanner(f)
	buf := make([]byte, 0, 64*1024)
	s.Buffer(buf, 1024*1024)
	for s.Scan() {
		lines = append(lines, s.Text())
	}
	if err = s.Err(); err != nil {
		log.Errorf("Error while reading file \"%s\": %s", file, err)
		return nil, err
	}
	return &lines, nil
}

// process dispatches to the format specific line processor.
func (b *Book) process(lines *[]string, format BookFormat) error {
	switch format {
	case Simple:
		b.processSimple(lines)
	case San:
		b.processSan(lines)
	case Pgn:
		b.processPgn(lines)
	default:
		return errors.New("unknown book format")
	}
	return nil
}

func (b *Book) processSimple(lines *[]string) {
	if parallel {
		var wg sync.WaitGroup
		wg.Add(len(*lines))
		for _, line := range *lines {
			go func(line string) {
				defer wg.Done()
				b.processSimpleLine(line)
			}(line)
		}
		wg.Wait()
	} else {
		for _, line := range *lines {
			b.processSimpleLine(line)
		}
	}
}

var regexSimpleUciMove = regexp.MustCompile(`([a-h][1-8][a-h][1-8])`)

func (b *Book) processSimpleLine(line string) {
	line = strings.TrimSpace(line)
	matches := regexSimpleUciMove.FindAllString(line, -1)
	if len(matches) == 0 {
		return
	}
	pos := position.NewPosition()
	b.bumpRootCounter()
	mg := movegen.NewMoveGen()
	for _, moveString := range matches {
		if err := b.processSingleMove(moveString, mg, pos); err != nil {
			break
		}
	}
}

func (b *Book) processSan(lines *[]string) {
	if parallel {
		var wg sync.WaitGroup
		wg.Add(len(*lines))
		for _, line := range *lines {
			go func(line string) {
				defer wg.Done()
				b.processSanLine(line)
			}(line)
		}
		wg.Wait()
	} else {
		for _, line := range *lines {
			b.processSanLine(line)
		}
	}
}

var regexResult = regexp.MustCompile(`((1-0)|(0-1)|(1/2-1/2)|(\*))$`)

// processPgn slices a PGN collection into individual games by locating
// result markers and processes each game's move text.
func (b *Book) processPgn(lines *[]string) {
	var gameSlices [][]string
	start := 0
	for i, l := range *lines {
		l = strings.TrimSpace(l)
		if regexResult.MatchString(l) {
			end := i + 1
			gameSlices = append(gameSlices, (*lines)[start:end])
			start = end
		}
	}
	log.Infof("Finished finding %d games in book file", len(gameSlices))

	if parallel {
		var wg sync.WaitGroup
		wg.Add(len(gameSlices))
		for _, gs := range gameSlices {
			go func(gs []string) {
				defer wg.Done()
				b.processPgnGame(gs)
			}(gs)
		}
		wg.Wait()
	} else {
		for _, gs := range gameSlices {
			b.processPgnGame(gs)
		}
	}
}

var (
	regexTrailingComments = regexp.MustCompile(`;.*$`)
	regexTagPairs         = regexp.MustCompile(`\[\w+ +".*?"\]`)
	regexNagAnnotation    = regexp.MustCompile(`(\$\d{1,3})`)
	regexBracketComments  = regexp.MustCompile(`{[^{}]*}`)
	regexReservedSymbols  = regexp.MustCompile(`<[^<>]*>`)
	regexRavVariants      = regexp.MustCompile(`\([^()]*\)`)
)

func (b *Book) processPgnGame(gameSlice []string) {
	var moveLine strings.Builder
	for _, l := range gameSlice {
		l = strings.TrimSpace(l)
		if strings.HasPrefix(l, "%") {
			continue
		}
		l = regexTagPairs.ReplaceAllString(l, "")
		l = regexResult.ReplaceAllString(l, "")
		l = regexTrailingComments.ReplaceAllString(l, "")
		l = strings.TrimSpace(l)
		if len(l) == 0 {
			continue
		}
		moveLine.WriteString(" ")
		moveLine.WriteString(l)
	}
	line := moveLine.String()
	line = regexNagAnnotation.ReplaceAllString(line, " ")
	line = regexBracketComments.ReplaceAllString(line, " ")
	line = regexReservedSymbols.ReplaceAllString(line, " ")
	for regexRavVariants.MatchString(line) {
		line = regexRavVariants.ReplaceAllString(line, " ")
	}
	b.processSanLine(line)
}

var (
	regexSanLineStart          = regexp.MustCompile(`^\d+\. ?`)
	regexSanLineCleanUpNumbers = regexp.MustCompile(`(\d+\.{1,3} ?)`)
	regexSanLineCleanUpResults = regexp.MustCompile(`(1/2|1|0)-(1/2|1|0)`)
	regexWhiteSpace            = regexp.MustCompile(`\s+`)
)

func (b *Book) processSanLine(line string) {
	line = strings.TrimSpace(line)
	if !regexSanLineStart.MatchString(line) {
		return
	}

	line = regexSanLineCleanUpNumbers.ReplaceAllString(line, "")
	line = regexSanLineCleanUpResults.ReplaceAllString(line, "")
	line = strings.TrimSpace(line)

	moveStrings := regexWhiteSpace.Split(line, -1)
	if len(moveStrings) == 0 {
		return
	}

	pos := position.NewPosition()
	b.bumpRootCounter()
	mg := movegen.NewMoveGen()
	for _, moveString := range moveStrings {
		if err := b.processSingleMove(moveString, mg, pos); err != nil {
			log.Warningf("Move not valid %s on %s", moveString, pos.StringFen())
			break
		}
	}
}

func (b *Book) bumpRootCounter() {
	bookLock.Lock()
	defer bookLock.Unlock()
	e, found := b.bookMap[b.rootEntry]
	if !found {
		panic("root entry of book map not found")
	}
	e.Counter++
	b.bookMap[b.rootEntry] = e
}

var (
	regexUciMove = regexp.MustCompile(`([a-h][1-8][a-h][1-8])([NBRQnbrq])?`)
	regexSanMove = regexp.MustCompile(`([NBRQK])?([a-h])?([1-8])?x?([a-h][1-8]|O-O-O|O-O)(=?([NBRQ]))?([!?+#]*)?`)
)

// processSingleMove parses one move token in either UCI or SAN notation,
// applies it to pos and records the resulting transition in the book.
func (b *Book) processSingleMove(s string, mg *movegen.Movegen, pos *position.Position) error {
	move := types.MoveNone
	switch {
	case regexUciMove.MatchString(s):
		move = mg.GetMoveFromUci(pos, s)
	case regexSanMove.MatchString(s):
		move = mg.GetMoveFromSan(pos, s)
	}
	if !move.IsValid() {
		return errors.New("invalid move " + s)
	}
	curPosKey := uint64(pos.ZobristKey())
	pos.DoMove(move)
	nextPosKey := uint64(pos.ZobristKey())
	b.addToBook(curPosKey, nextPosKey, uint32(move))
	return nil
}

// addToBook records the move and its resulting position; safe for
// concurrent use from the parallel line processors.
func (b *Book) addToBook(curPosKey uint64, nextPosKey uint64, move uint32) {
	bookLock.Lock()
	defer bookLock.Unlock()

	currentPosEntry, found := b.bookMap[curPosKey]
	if !found {
		log.Error("Could not find current position in book")
		return
	}

	if nextPosEntry, found := b.bookMap[nextPosKey]; found {
		nextPosEntry.Counter++
		b.bookMap[nextPosKey] = nextPosEntry
		return
	}

	b.bookMap[nextPosKey] = BookEntry{ZobristKey: nextPosKey, Counter: 1, Moves: nil}
	currentPosEntry.Moves = append(currentPosEntry.Moves, Successor{Move: move, NextEntry: nextPosKey})
	b.bookMap[curPosKey] = currentPosEntry
}

// cacheDir returns the badger database directory used to cache the parsed
// contents of file.
func cacheDir(file string) string {
	return file + ".bookcache"
}

// loadFromCache opens the badger cache directory for file, if it exists,
// and replays every stored entry back into the in-memory book map. Each
// value is a gob-encoded BookEntry keyed by its big-endian Zobrist key so
// the store can be scanned without decoding an unbounded single blob.
func (b *Book) loadFromCache(file string) (bool, error) {
	cachePath := cacheDir(file)
	if _, err := os.Stat(cachePath); err != nil {
		return false, err
	}

	opts := badger.DefaultOptions(cachePath)
	opts.Logger = nil
	db, err := badger.Open(opts)
	if err != nil {
		return false, err
	}
	defer func() {
		if cerr := db.Close(); cerr != nil {
			log.Errorf("Could not close book cache %s: %s", cachePath, cerr)
		}
	}()

	bookMap := make(map[uint64]BookEntry)
	err = db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			verr := item.Value(func(val []byte) error {
				var entry BookEntry
				if derr := gob.NewDecoder(bytes.NewReader(val)).Decode(&entry); derr != nil {
					return derr
				}
				bookMap[entry.ZobristKey] = entry
				return nil
			})
			if verr != nil {
				return verr
			}
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	if len(bookMap) == 0 {
		return false, errors.New("book cache contains no entries")
	}

	bookLock.Lock()
	b.bookMap = bookMap
	bookLock.Unlock()
	b.rootEntry = uint64(position.NewPosition().ZobristKey())
	return true, nil
}

// saveToCache writes the current book map to a badger key-value store next
// to file so future startups can skip re-parsing the source file.
func (b *Book) saveToCache(file string) (string, int64, error) {
	cachePath := cacheDir(file)
	_ = os.RemoveAll(cachePath)

	opts := badger.DefaultOptions(cachePath)
	opts.Logger = nil
	db, err := badger.Open(opts)
	if err != nil {
		return cachePath, 0, err
	}
	defer func() {
		if cerr := db.Close(); cerr != nil {
			log.Errorf("Could not close book cache %s: %s", cachePath, cerr)
		}
	}()

	bookLock.Lock()
	entries := make([]BookEntry, 0, len(b.bookMap))
	for _, e := range b.bookMap {
		entries = append(entries, e)
	}
	bookLock.Unlock()

	var totalBytes int64
	wb := db.NewWriteBatch()
	defer wb.Cancel()
	for _, e := range entries {
		var buf bytes.Buffer
		if err = gob.NewEncoder(&buf).Encode(e); err != nil {
			return cachePath, totalBytes, err
		}
		key := make([]byte, 8)
		binary.BigEndian.PutUint64(key, e.ZobristKey)
		if err = wb.Set(key, buf.Bytes()); err != nil {
			return cachePath, totalBytes, err
		}
		totalBytes += int64(buf.Len())
	}
	if err = wb.Flush(); err != nil {
		return cachePath, totalBytes, err
	}

	return cachePath, totalBytes, nil
}
