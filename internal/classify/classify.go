// Package classify turns raw engine evaluations into per-move quality labels
// and centipawn-loss figures.
package classify

import (
	"math"
	"time"

	"github.com/discochess/drillbook/internal/engine"
	"github.com/discochess/drillbook/internal/fen"
	"github.com/discochess/drillbook/internal/phase"
)

// Config holds the tunable classification constants.
// All centipawn thresholds are ascending cp-loss bands.
type Config struct {
	// GoodBelow, InaccuracyBelow, MistakeBelow, BlunderBelow bound the
	// quality bands: cp_loss 0 is Best/Excellent, values below GoodBelow are
	// Good, below InaccuracyBelow Inaccuracy, below MistakeBelow Mistake,
	// below BlunderBelow blunder-adjacent, and everything above a Blunder.
	GoodBelow       int
	InaccuracyBelow int
	MistakeBelow    int
	BlunderBelow    int

	// MateCap and MateStep normalize mate-in-N scores into the centipawn
	// scale: a mate in N maps to MateCap - N*MateStep so that shorter mates
	// score higher and ordering stays monotonic. The same cap is used across
	// the whole pipeline so cp-loss figures stay comparable between games
	// with and without forced mates.
	MateCap  int
	MateStep int

	// SacrificeEpsilon and SacrificeMinPoints drive the Brilliant heuristic:
	// the played move is the best move, loses at most SacrificeEpsilon
	// centipawns, and leaves the mover at least SacrificeMinPoints pawns of
	// material behind while the evaluation holds.
	SacrificeEpsilon   int
	SacrificeMinPoints int

	// HangingPieceLoss is the cp-loss at which an error is tagged as a
	// hanging piece rather than a missed tactic.
	HangingPieceLoss int

	// TimeTroubleBelow tags errors played with less clock time than this as
	// time-trouble errors.
	TimeTroubleBelow time.Duration

	// PhaseWeights scale cp-loss per phase for the weighted loss figure.
	PhaseWeights map[phase.Phase]float64
}

// DefaultConfig returns the default classification constants.
func DefaultConfig() Config {
	return Config{
		GoodBelow:          10,
		InaccuracyBelow:    25,
		MistakeBelow:       50,
		BlunderBelow:       150,
		MateCap:            20000,
		MateStep:           100,
		SacrificeEpsilon:   10,
		SacrificeMinPoints: 2,
		HangingPieceLoss:   300,
		TimeTroubleBelow:   30 * time.Second,
		PhaseWeights: map[phase.Phase]float64{
			phase.Opening:    0.9,
			phase.Middlegame: 1.0,
			phase.Endgame:    1.1,
		},
	}
}

// Input carries everything the classifier needs for one half-move.
type Input struct {
	MoveNumber int    // fullmove number, 1-based
	Side       string // "w" or "b", the side that moved
	SAN        string
	UCI        string
	FENBefore  string
	FENAfter   string

	// Before and After are the evaluations of the position before and after
	// the move, from White's perspective. Either may be nil when the
	// evaluator failed for that position.
	Before *engine.Evaluation
	After  *engine.Evaluation

	LegalMoves    int
	TimeRemaining *time.Duration // nil when the clock is unknown
}

// MoveEvaluation is the classified record for one half-move.
// Immutable once produced; owned by the game it belongs to.
type MoveEvaluation struct {
	MoveNumber int         `json:"move_number"`
	Side       string      `json:"side"`
	SAN        string      `json:"san"`
	UCI        string      `json:"uci"`
	FENBefore  string      `json:"fen_before"`
	Phase      phase.Phase `json:"phase"`

	// EvalBefore and EvalAfter are normalized centipawn scores from White's
	// perspective; mate scores are folded in via the mate cap.
	EvalBefore int  `json:"eval_before"`
	EvalAfter  int  `json:"eval_after"`
	MateBefore bool `json:"is_mate_before"`
	MateAfter  bool `json:"is_mate_after"`

	BestMove       string  `json:"best_move"`
	CPLoss         int     `json:"cp_loss"`
	CPLossWeighted float64 `json:"cp_loss_weighted"`

	Quality        Quality        `json:"move_quality"`
	BlunderType    BlunderType    `json:"blunder_type,omitempty"`
	BlunderSubtype BlunderSubtype `json:"blunder_subtype,omitempty"`

	WinProbBefore float64 `json:"win_prob_before"`
	WinProbAfter  float64 `json:"win_prob_after"`

	TimeRemaining *time.Duration `json:"time_remaining,omitempty"`
}

// Classified reports whether both evaluations were available for this move.
func (m *MoveEvaluation) Classified() bool {
	return m.Quality != QualityUnclassified
}

// Classifier labels moves according to a Config. Classifiers are pure and
// safe for concurrent use.
type Classifier struct {
	cfg Config
}

// New creates a classifier with the given config.
func New(cfg Config) *Classifier {
	return &Classifier{cfg: cfg}
}

// Classify produces the MoveEvaluation for one half-move.
// If either evaluation is missing the move comes back unclassified; it is
// never defaulted to a good move.
func (c *Classifier) Classify(in Input) MoveEvaluation {
	m := MoveEvaluation{
		MoveNumber:    in.MoveNumber,
		Side:          in.Side,
		SAN:           in.SAN,
		UCI:           in.UCI,
		FENBefore:     in.FENBefore,
		Phase:         phase.ForMove(in.MoveNumber),
		Quality:       QualityUnclassified,
		TimeRemaining: in.TimeRemaining,
	}

	if in.Before == nil || in.After == nil {
		return m
	}

	m.EvalBefore = c.normalize(in.Before)
	m.EvalAfter = c.normalize(in.After)
	m.MateBefore = in.Before.IsMate()
	m.MateAfter = in.After.IsMate()
	m.BestMove = in.Before.BestMove

	// Both scores expressed as advantage for the side who just moved.
	// EvalBefore assumes best play, so it stands in for the best
	// continuation; the loss is measured against it, never against the
	// played move's own aftermath.
	povBest := pov(m.EvalBefore, in.Side)
	povAfter := pov(m.EvalAfter, in.Side)

	cpLoss := povBest - povAfter
	if cpLoss < 0 {
		cpLoss = 0
	}
	if in.UCI != "" && in.UCI == m.BestMove {
		cpLoss = 0
	}
	m.CPLoss = cpLoss
	m.CPLossWeighted = float64(cpLoss) * c.phaseWeight(m.Phase)

	m.WinProbBefore = WinProbability(povBest)
	m.WinProbAfter = WinProbability(povAfter)

	m.Quality = c.quality(in, m)

	if m.Quality.IsError() {
		m.BlunderType, m.BlunderSubtype = c.blunderTags(in, m)
	}

	return m
}

// quality applies the cp-loss bands and the overriding rules.
func (c *Classifier) quality(in Input, m MoveEvaluation) Quality {
	// A single legal move is forced no matter what it costs.
	if in.LegalMoves == 1 {
		return QualityForced
	}

	// Losing a mate the mover had is always a missed win.
	moverHadMate := in.Before.IsMate() && mateFavors(in.Before, in.Side)
	moverKeptMate := in.After.IsMate() && mateFavors(in.After, in.Side)
	if moverHadMate && !moverKeptMate {
		return QualityMissedWin
	}

	switch {
	case m.CPLoss == 0:
		if c.isSacrifice(in, m) {
			return QualityBrilliant
		}
		if in.UCI != "" && in.UCI == m.BestMove {
			return QualityBest
		}
		return QualityExcellent
	case m.CPLoss < c.cfg.GoodBelow:
		return QualityGood
	case m.CPLoss < c.cfg.InaccuracyBelow:
		return QualityInaccuracy
	case m.CPLoss < c.cfg.MistakeBelow:
		return QualityMistake
	case m.CPLoss < c.cfg.BlunderBelow:
		return QualityBlunderAdjacent
	default:
		return QualityBlunder
	}
}

// isSacrifice implements the Brilliant heuristic: a zero-loss best move made
// while the mover stands materially behind.
func (c *Classifier) isSacrifice(in Input, m MoveEvaluation) bool {
	if in.UCI == "" || in.UCI != m.BestMove || m.CPLoss > c.cfg.SacrificeEpsilon {
		return false
	}
	material, err := fen.ParseMaterial(in.FENAfter)
	if err != nil {
		return false
	}
	deficit := -povBalance(material, in.Side)
	return deficit >= c.cfg.SacrificeMinPoints
}

// blunderTags infers the tactical category for mistakes, blunders, and
// missed wins.
func (c *Classifier) blunderTags(in Input, m MoveEvaluation) (BlunderType, BlunderSubtype) {
	var sub BlunderSubtype
	if in.TimeRemaining != nil && *in.TimeRemaining < c.cfg.TimeTroubleBelow {
		sub = SubtypeTimeTrouble
	}

	// Allowing a forced mate against the mover is a king-safety failure.
	if in.After.IsMate() && !mateFavors(in.After, in.Side) {
		return BlunderKingSafety, sub
	}
	if m.CPLoss >= c.cfg.HangingPieceLoss {
		return BlunderHangingPiece, sub
	}
	return BlunderMissedTactic, sub
}

// normalize folds a mate score into the centipawn scale.
func (c *Classifier) normalize(e *engine.Evaluation) int {
	if e.Mate != nil {
		n := *e.Mate
		mag := c.cfg.MateCap - abs(n)*c.cfg.MateStep
		if mag < c.cfg.MateCap/2 {
			mag = c.cfg.MateCap / 2
		}
		if n < 0 {
			return -mag
		}
		return mag
	}
	if e.CP != nil {
		return *e.CP
	}
	return 0
}

// phaseWeight returns the configured weight for a phase, defaulting to 1.
func (c *Classifier) phaseWeight(p phase.Phase) float64 {
	if w, ok := c.cfg.PhaseWeights[p]; ok {
		return w
	}
	return 1
}

// WinProbability converts a centipawn score (from the scoring side's
// perspective) to a win probability via the standard logistic transform.
func WinProbability(cp int) float64 {
	return 1 / (1 + math.Pow(10, -float64(cp)/400))
}

// pov converts a White-perspective score to the given side's perspective.
func pov(score int, side string) int {
	if side == "b" {
		return -score
	}
	return score
}

// povBalance converts a material balance to the given side's perspective.
func povBalance(m fen.Material, side string) int {
	if side == "b" {
		return -m.Balance()
	}
	return m.Balance()
}

// mateFavors reports whether a mate evaluation favors the given side.
func mateFavors(e *engine.Evaluation, side string) bool {
	if e.Mate == nil {
		return false
	}
	if side == "b" {
		return *e.Mate < 0
	}
	return *e.Mate > 0
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
