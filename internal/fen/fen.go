// Package fen provides FEN (Forsyth-Edwards Notation) parsing utilities.
package fen

import (
	"errors"
	"strconv"
	"strings"
)

// ErrInvalidFEN indicates the FEN string is malformed.
var ErrInvalidFEN = errors.New("invalid FEN notation")

// Standard piece values in pawns, used for material accounting.
const (
	PawnValue   = 1
	KnightValue = 3
	BishopValue = 3
	RookValue   = 5
	QueenValue  = 9
)

// Material represents the piece counts for both sides.
type Material struct {
	WhitePawns   int
	WhiteKnights int
	WhiteBishops int
	WhiteRooks   int
	WhiteQueens  int

	BlackPawns   int
	BlackKnights int
	BlackBishops int
	BlackRooks   int
	BlackQueens  int
}

// WhitePoints returns White's total material in pawns.
func (m Material) WhitePoints() int {
	return m.WhitePawns*PawnValue +
		m.WhiteKnights*KnightValue +
		m.WhiteBishops*BishopValue +
		m.WhiteRooks*RookValue +
		m.WhiteQueens*QueenValue
}

// BlackPoints returns Black's total material in pawns.
func (m Material) BlackPoints() int {
	return m.BlackPawns*PawnValue +
		m.BlackKnights*KnightValue +
		m.BlackBishops*BishopValue +
		m.BlackRooks*RookValue +
		m.BlackQueens*QueenValue
}

// Points returns the material total for the given side ("w" or "b").
func (m Material) Points(side string) int {
	if side == "b" {
		return m.BlackPoints()
	}
	return m.WhitePoints()
}

// Balance returns White's material minus Black's, in pawns.
func (m Material) Balance() int {
	return m.WhitePoints() - m.BlackPoints()
}

// Normalize returns a normalized FEN string suitable for fingerprinting.
// It keeps the position, side to move, castling rights, and en passant
// square, dropping the halfmove clock and fullmove number.
func Normalize(fen string) (string, error) {
	parts := strings.Fields(fen)
	if len(parts) < 4 {
		return "", ErrInvalidFEN
	}
	if !validPlacement(parts[0]) {
		return "", ErrInvalidFEN
	}
	if parts[1] != "w" && parts[1] != "b" {
		return "", ErrInvalidFEN
	}
	return strings.Join(parts[:4], " "), nil
}

// SideToMove returns "w" or "b" from a FEN string.
func SideToMove(fen string) (string, error) {
	parts := strings.Fields(fen)
	if len(parts) < 2 {
		return "", ErrInvalidFEN
	}
	if parts[1] != "w" && parts[1] != "b" {
		return "", ErrInvalidFEN
	}
	return parts[1], nil
}

// FullMoveNumber returns the fullmove counter from a 6-field FEN.
// Returns 1 when the field is absent, matching the starting position default.
func FullMoveNumber(fen string) (int, error) {
	parts := strings.Fields(fen)
	if len(parts) < 4 {
		return 0, ErrInvalidFEN
	}
	if len(parts) < 6 {
		return 1, nil
	}
	n, err := strconv.Atoi(parts[5])
	if err != nil || n < 1 {
		return 0, ErrInvalidFEN
	}
	return n, nil
}

// ParseMaterial extracts material counts from a FEN string.
func ParseMaterial(fen string) (Material, error) {
	parts := strings.Fields(fen)
	if len(parts) == 0 {
		return Material{}, ErrInvalidFEN
	}

	var m Material
	for _, ch := range parts[0] {
		switch ch {
		case 'P':
			m.WhitePawns++
		case 'N':
			m.WhiteKnights++
		case 'B':
			m.WhiteBishops++
		case 'R':
			m.WhiteRooks++
		case 'Q':
			m.WhiteQueens++
		case 'p':
			m.BlackPawns++
		case 'n':
			m.BlackKnights++
		case 'b':
			m.BlackBishops++
		case 'r':
			m.BlackRooks++
		case 'q':
			m.BlackQueens++
		case 'K', 'k':
			// Kings are always present, don't count.
		case '/', '1', '2', '3', '4', '5', '6', '7', '8':
			// Valid FEN characters, ignore.
		default:
			return Material{}, ErrInvalidFEN
		}
	}

	return m, nil
}

// validPlacement validates the piece placement field of a FEN.
func validPlacement(placement string) bool {
	ranks := strings.Split(placement, "/")
	if len(ranks) != 8 {
		return false
	}

	for _, rank := range ranks {
		squares := 0
		for _, ch := range rank {
			switch {
			case ch >= '1' && ch <= '8':
				squares += int(ch - '0')
			case strings.ContainsRune("PNBRQKpnbrqk", ch):
				squares++
			default:
				return false
			}
		}
		if squares != 8 {
			return false
		}
	}

	return true
}
