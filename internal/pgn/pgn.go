// Package pgn imports games from PGN streams into the move records the
// analysis pipeline consumes.
package pgn

import (
	"bufio"
	"errors"
	"fmt"
	"hash/fnv"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/notnil/chess"
)

// ErrNoMoves is returned when a PGN game contains no moves.
var ErrNoMoves = errors.New("pgn: game has no moves")

// Move is one half-move with everything the classifier needs: both
// notations, the positions around the move, and the legal move count.
type Move struct {
	Number     int    // fullmove number
	Ply        int    // 1-based half-move index
	Color      string // "w" or "b"
	SAN        string
	UCI        string
	FENBefore  string
	FENAfter   string
	LegalMoves int

	// Clock is the mover's remaining time from a [%clk] comment, as
	// emitted by Lichess and chess.com exports. Nil when the PGN carries
	// no clock annotations.
	Clock *time.Duration
}

// Game is one imported game.
type Game struct {
	ID          string
	Fingerprint string
	Tags        map[string]string
	Moves       []Move
}

// Parse imports a single PGN game.
func Parse(r io.Reader) (*Game, error) {
	pgnFunc, err := chess.PGN(r)
	if err != nil {
		return nil, fmt.Errorf("parse pgn: %w", err)
	}
	return fromGame(chess.NewGame(pgnFunc))
}

// ParseAll imports every game in a PGN stream. Games that fail to parse are
// skipped; an error is returned only when the stream itself cannot be read.
func ParseAll(r io.Reader) ([]*Game, error) {
	var games []*Game

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024)

	var gameText strings.Builder
	inGame := false

	flush := func() {
		if gameText.Len() == 0 {
			return
		}
		g, err := Parse(strings.NewReader(gameText.String()))
		if err == nil {
			games = append(games, g)
		}
		gameText.Reset()
	}

	for scanner.Scan() {
		line := scanner.Text()

		// Detect game boundaries.
		if strings.HasPrefix(line, "[Event ") {
			if inGame {
				flush()
			}
			inGame = true
		}

		if inGame {
			gameText.WriteString(line)
			gameText.WriteString("\n")
		}
	}
	flush()

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading pgn: %w", err)
	}
	return games, nil
}

func fromGame(g *chess.Game) (*Game, error) {
	moves := g.Moves()
	if len(moves) == 0 {
		return nil, ErrNoMoves
	}
	positions := g.Positions()

	tags := make(map[string]string)
	for _, tp := range g.TagPairs() {
		tags[tp.Key] = tp.Value
	}

	out := &Game{Tags: tags, Moves: make([]Move, 0, len(moves))}

	san := chess.AlgebraicNotation{}
	uci := chess.UCINotation{}
	comments := g.Comments()
	h := fnv.New64a()

	for i, mv := range moves {
		before := positions[i]
		after := positions[i+1]

		encoded := uci.Encode(before, mv)
		h.Write([]byte(encoded))

		color := "w"
		if before.Turn() == chess.Black {
			color = "b"
		}

		var clock *time.Duration
		if i < len(comments) {
			clock = parseClock(comments[i])
		}

		out.Moves = append(out.Moves, Move{
			Number:     i/2 + 1,
			Ply:        i + 1,
			Color:      color,
			SAN:        san.Encode(before, mv),
			UCI:        encoded,
			FENBefore:  before.String(),
			FENAfter:   after.String(),
			LegalMoves: len(before.ValidMoves()),
			Clock:      clock,
		})
	}

	out.Fingerprint = strconv.FormatUint(h.Sum64(), 16)
	out.ID = gameID(tags, out.Fingerprint)
	return out, nil
}

var clockPattern = regexp.MustCompile(`\[%clk\s+(\d+):(\d{1,2}):(\d{1,2}(?:\.\d+)?)\]`)

// parseClock extracts the remaining time from a move's [%clk H:MM:SS]
// annotation.
func parseClock(comments []string) *time.Duration {
	for _, c := range comments {
		m := clockPattern.FindStringSubmatch(c)
		if m == nil {
			continue
		}
		hours, _ := strconv.Atoi(m[1])
		minutes, _ := strconv.Atoi(m[2])
		seconds, _ := strconv.ParseFloat(m[3], 64)

		d := time.Duration(hours)*time.Hour +
			time.Duration(minutes)*time.Minute +
			time.Duration(seconds*float64(time.Second))
		return &d
	}
	return nil
}

// gameID prefers the PGN's own identifiers over the move fingerprint: a
// Lichess or chess.com Site URL already names the game uniquely.
func gameID(tags map[string]string, fingerprint string) string {
	if site, ok := tags["Site"]; ok && strings.Contains(site, "://") {
		if idx := strings.LastIndex(site, "/"); idx >= 0 && idx < len(site)-1 {
			return site[idx+1:]
		}
	}
	if id, ok := tags["GameId"]; ok && id != "" {
		return id
	}
	return fingerprint
}
