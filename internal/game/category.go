package game

import (
	"errors"
	"fmt"
	"strings"
)

// OperationFilter restricts which operations the generator may pick.
type OperationFilter string

const (
	FilterAll OperationFilter = "all"
	FilterAdd OperationFilter = "+"
	FilterSub OperationFilter = "-"
	FilterMul OperationFilter = "*"
	FilterDiv OperationFilter = "/"
)

// Tier controls operand magnitude.
type Tier string

const (
	TierEasy   Tier = "easy"
	TierMedium Tier = "medium"
	TierHard   Tier = "hard"
)

var (
	// ErrUnknownFilter is returned for filters outside + - * / all.
	ErrUnknownFilter = errors.New("unknown operation filter")
	// ErrUnknownTier is returned for tiers other than easy, medium and hard.
	ErrUnknownTier = errors.New("unknown difficulty tier")
)

// Filters lists every filter in menu order.
func Filters() []OperationFilter {
	return []OperationFilter{FilterAll, FilterAdd, FilterSub, FilterMul, FilterDiv}
}

// Tiers lists every tier from easiest to hardest.
func Tiers() []Tier {
	return []Tier{TierEasy, TierMedium, TierHard}
}

// Valid reports whether f is a known filter.
func (f OperationFilter) Valid() bool {
	return indexOf(Filters(), f) >= 0
}

// Label returns a human-readable name.
func (f OperationFilter) Label() string {
	switch f {
	case FilterAll:
		return "All"
	case FilterAdd:
		return "Addition"
	case FilterSub:
		return "Subtraction"
	case FilterMul:
		return "Multiplication"
	case FilterDiv:
		return "Division"
	default:
		return "?"
	}
}

// Cycle returns the filter delta steps away in menu order, wrapping around.
func (f OperationFilter) Cycle(delta int) OperationFilter {
	return cycle(Filters(), f, delta)
}

// Valid reports whether t is a known tier.
func (t Tier) Valid() bool {
	return indexOf(Tiers(), t) >= 0
}

// Label returns a human-readable name.
func (t Tier) Label() string {
	switch t {
	case TierEasy:
		return "Easy"
	case TierMedium:
		return "Medium"
	case TierHard:
		return "Hard"
	default:
		return "?"
	}
}

// Cycle returns the tier delta steps away, wrapping around.
func (t Tier) Cycle(delta int) Tier {
	return cycle(Tiers(), t, delta)
}

// ParseFilter parses a filter name. Accepts the operator symbol or its word.
func ParseFilter(s string) (OperationFilter, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "all", "":
		return FilterAll, nil
	case "+", "add", "addition", "plus":
		return FilterAdd, nil
	case "-", "sub", "subtraction", "minus":
		return FilterSub, nil
	case "*", "x", "mul", "multiplication", "times":
		return FilterMul, nil
	case "/", "div", "division":
		return FilterDiv, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFilter, s)
}

// ParseTier parses a tier name.
func ParseTier(s string) (Tier, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "easy", "":
		return TierEasy, nil
	case "medium", "normal":
		return TierMedium, nil
	case "hard":
		return TierHard, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownTier, s)
}

// Category is the high-score key: one filter at one tier.
type Category struct {
	Filter OperationFilter `json:"filter"`
	Tier   Tier            `json:"tier"`
}

// String returns the canonical "filter/tier" form, e.g. "+/easy".
func (c Category) String() string {
	return string(c.Filter) + "/" + string(c.Tier)
}

// Categories lists every category, filters outermost.
func Categories() []Category {
	var out []Category
	for _, f := range Filters() {
		for _, t := range Tiers() {
			out = append(out, Category{Filter: f, Tier: t})
		}
	}
	return out
}

// ParseCategory parses the "filter/tier" form produced by Category.String.
func ParseCategory(s string) (Category, error) {
	i := strings.LastIndex(s, "/")
	if i <= 0 {
		return Category{}, fmt.Errorf("%w: %q", ErrUnknownFilter, s)
	}
	f, err := ParseFilter(s[:i])
	if err != nil {
		return Category{}, err
	}
	t, err := ParseTier(s[i+1:])
	if err != nil {
		return Category{}, err
	}
	return Category{Filter: f, Tier: t}, nil
}

func indexOf[T comparable](list []T, v T) int {
	for i, x := range list {
		if x == v {
			return i
		}
	}
	return -1
}

func cycle[T comparable](list []T, v T, delta int) T {
	i := indexOf(list, v)
	if i < 0 {
		return list[0]
	}
	n := len(list)
	return list[((i+delta)%n+n)%n]
}
