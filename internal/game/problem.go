package game

import (
	"fmt"
	"math/rand"
)

// Operation is one arithmetic operator.
type Operation string

const (
	OpAdd Operation = "+"
	OpSub Operation = "-"
	OpMul Operation = "*"
	OpDiv Operation = "/"
)

var allOperations = []Operation{OpAdd, OpSub, OpMul, OpDiv}

// Apply computes a op b. Division is integer division; the generator only
// builds exact quotients.
func (op Operation) Apply(a, b int) int {
	switch op {
	case OpAdd:
		return a + b
	case OpSub:
		return a - b
	case OpMul:
		return a * b
	case OpDiv:
		if b == 0 {
			return 0
		}
		return a / b
	default:
		return 0
	}
}

// Problem is one arithmetic challenge falling toward the defense line.
type Problem struct {
	ID         uint64    `json:"id"`
	Expression string    `json:"expression"`
	Answer     int       `json:"-"`
	Y          float64   `json:"y"` // Logical units, grows downward
	Active     bool      `json:"active"`
	Op         Operation `json:"op"`
	Left       int       `json:"left"`   // Dividend for division
	Right      int       `json:"right"`  // Divisor for division
	Locked     bool      `json:"locked"` // Laser hit pending, no longer moving
}

// MediumCase selects the operand shape for the medium tier.
type MediumCase int

const (
	MediumMixed  MediumCase = iota // One single-digit and one double-digit operand
	MediumDouble                   // Both operands double-digit
)

// Generator produces problems from a seeded RNG so sessions replay
// deterministically.
type Generator struct {
	rng    *rand.Rand
	spawnY float64
}

// NewGenerator creates a generator whose problems start at spawnY.
func NewGenerator(seed int64, spawnY float64) *Generator {
	return &Generator{
		rng:    rand.New(rand.NewSource(seed)),
		spawnY: spawnY,
	}
}

// Generate returns a new inactive problem for the category. The caller
// assigns the ID.
func (g *Generator) Generate(filter OperationFilter, tier Tier) Problem {
	op := g.pickOperation(filter)
	mc := MediumCase(g.rng.Intn(2))
	return g.build(op, tier, mc)
}

func (g *Generator) pickOperation(filter OperationFilter) Operation {
	switch filter {
	case FilterAdd:
		return OpAdd
	case FilterSub:
		return OpSub
	case FilterMul:
		return OpMul
	case FilterDiv:
		return OpDiv
	default:
		return allOperations[g.rng.Intn(len(allOperations))]
	}
}

// build creates a problem for a fixed operation and medium sub-case.
// mc is ignored outside the medium tier.
func (g *Generator) build(op Operation, tier Tier, mc MediumCase) Problem {
	var a, b int
	if op == OpDiv {
		a, b = g.divisionOperands(tier, mc)
	} else {
		a, b = g.operands(tier, mc)
	}
	return Problem{
		Expression: fmt.Sprintf("%d %s %d", a, op, b),
		Answer:     op.Apply(a, b),
		Y:          g.spawnY,
		Op:         op,
		Left:       a,
		Right:      b,
	}
}

func (g *Generator) operands(tier Tier, mc MediumCase) (int, int) {
	switch tier {
	case TierMedium:
		if mc == MediumDouble {
			return g.between(10, 99), g.between(10, 99)
		}
		small, big := g.between(1, 9), g.between(10, 99)
		if g.rng.Intn(2) == 0 {
			return small, big
		}
		return big, small
	case TierHard:
		return g.between(100, 999), g.between(100, 999)
	default:
		return g.between(1, 9), g.between(1, 9)
	}
}

// divisionOperands returns (dividend, divisor). The dividend is built as
// divisor*quotient so the answer is always whole and the divisor is never 0.
func (g *Generator) divisionOperands(tier Tier, mc MediumCase) (int, int) {
	var divisor, quotient int
	switch tier {
	case TierMedium:
		if mc == MediumDouble {
			divisor, quotient = g.between(10, 99), g.between(1, 9)
		} else {
			divisor, quotient = g.between(1, 9), g.between(1, 9)
		}
	case TierHard:
		divisor, quotient = g.between(10, 99), g.between(10, 99)
	default:
		divisor, quotient = g.between(1, 9), g.between(1, 9)
	}
	return divisor * quotient, divisor
}

// between returns a uniform integer in [lo, hi].
func (g *Generator) between(lo, hi int) int {
	return lo + g.rng.Intn(hi-lo+1)
}
