package game

import (
	"fmt"
	"testing"
)

func TestGeneratedAnswersAreExact(t *testing.T) {
	g := NewGenerator(7, -8)

	for _, f := range Filters() {
		for _, tier := range Tiers() {
			for i := 0; i < 500; i++ {
				p := g.Generate(f, tier)

				if p.Active {
					t.Fatalf("generated problem should be inactive: %+v", p)
				}
				if p.Y != -8 {
					t.Fatalf("generated problem should start at spawn Y, got %v", p.Y)
				}
				if want := fmt.Sprintf("%d %s %d", p.Left, p.Op, p.Right); p.Expression != want {
					t.Fatalf("expression %q, expected %q", p.Expression, want)
				}
				if f != FilterAll && string(p.Op) != string(f) {
					t.Fatalf("filter %s produced operation %s", f, p.Op)
				}

				if p.Op == OpDiv {
					if p.Right < 1 {
						t.Fatalf("divisor must be at least 1: %+v", p)
					}
					if p.Left%p.Right != 0 {
						t.Fatalf("%d is not a multiple of %d", p.Left, p.Right)
					}
					if p.Answer*p.Right != p.Left {
						t.Fatalf("answer %d does not divide back: %+v", p.Answer, p)
					}
				} else if p.Answer != p.Op.Apply(p.Left, p.Right) {
					t.Fatalf("answer %d wrong for %q", p.Answer, p.Expression)
				}
			}
		}
	}
}

func TestEasyAdditionOperands(t *testing.T) {
	g := NewGenerator(1, -8)

	for i := 0; i < 1000; i++ {
		p := g.Generate(FilterAdd, TierEasy)

		var a, b int
		if n, err := fmt.Sscanf(p.Expression, "%d + %d", &a, &b); n != 2 || err != nil {
			t.Fatalf("expression %q should parse as \"<a> + <b>\": %v", p.Expression, err)
		}
		if a < 1 || a > 9 || b < 1 || b > 9 {
			t.Fatalf("easy operands out of range: %q", p.Expression)
		}
		if p.Answer != a+b {
			t.Fatalf("answer %d, expected %d", p.Answer, a+b)
		}
	}
}

func TestMediumDoubleDigitDivision(t *testing.T) {
	g := NewGenerator(2, -8)

	for i := 0; i < 1000; i++ {
		p := g.build(OpDiv, TierMedium, MediumDouble)

		if p.Left < 10 || p.Left > 891 {
			t.Fatalf("dividend %d outside [10, 891]", p.Left)
		}
		if p.Right < 10 || p.Right > 99 {
			t.Fatalf("divisor %d outside [10, 99]", p.Right)
		}
		if p.Left%p.Right != 0 {
			t.Fatalf("dividend %d is not a multiple of %d", p.Left, p.Right)
		}
	}
}

func TestOperandRangesByTier(t *testing.T) {
	inRange := func(v, lo, hi int) bool { return v >= lo && v <= hi }
	single := func(v int) bool { return inRange(v, 1, 9) }
	double := func(v int) bool { return inRange(v, 10, 99) }

	tests := []struct {
		name  string
		tier  Tier
		mc    MediumCase
		check func(a, b int) bool
	}{
		{"easy", TierEasy, MediumMixed, func(a, b int) bool { return single(a) && single(b) }},
		{"medium mixed", TierMedium, MediumMixed, func(a, b int) bool {
			return (single(a) && double(b)) || (double(a) && single(b))
		}},
		{"medium double", TierMedium, MediumDouble, func(a, b int) bool { return double(a) && double(b) }},
		{"hard", TierHard, MediumMixed, func(a, b int) bool { return inRange(a, 100, 999) && inRange(b, 100, 999) }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			g := NewGenerator(3, -8)
			for _, op := range []Operation{OpAdd, OpSub, OpMul} {
				for i := 0; i < 300; i++ {
					p := g.build(op, tc.tier, tc.mc)
					if !tc.check(p.Left, p.Right) {
						t.Fatalf("operands out of range for %s: %q", tc.name, p.Expression)
					}
				}
			}
		})
	}
}

func TestMediumMixedOrderIsRandomized(t *testing.T) {
	g := NewGenerator(4, -8)
	smallFirst, bigFirst := 0, 0

	for i := 0; i < 500; i++ {
		p := g.build(OpAdd, TierMedium, MediumMixed)
		if p.Left < 10 {
			smallFirst++
		} else {
			bigFirst++
		}
	}

	if smallFirst == 0 || bigFirst == 0 {
		t.Errorf("mixed case should put the single digit operand on both sides, got %d/%d", smallFirst, bigFirst)
	}
}

func TestDivisionOperandsByTier(t *testing.T) {
	g := NewGenerator(5, -8)

	for i := 0; i < 500; i++ {
		easy := g.build(OpDiv, TierEasy, MediumMixed)
		if easy.Right < 1 || easy.Right > 9 || easy.Answer < 1 || easy.Answer > 9 {
			t.Fatalf("easy division out of range: %q", easy.Expression)
		}

		mixed := g.build(OpDiv, TierMedium, MediumMixed)
		if mixed.Right < 1 || mixed.Right > 9 || mixed.Answer < 1 || mixed.Answer > 9 {
			t.Fatalf("medium mixed division out of range: %q", mixed.Expression)
		}

		hard := g.build(OpDiv, TierHard, MediumMixed)
		if hard.Right < 10 || hard.Right > 99 || hard.Answer < 10 || hard.Answer > 99 {
			t.Fatalf("hard division out of range: %q", hard.Expression)
		}
	}
}

func TestFilterAllUsesEveryOperation(t *testing.T) {
	g := NewGenerator(6, -8)
	seen := make(map[Operation]int)

	for i := 0; i < 400; i++ {
		seen[g.Generate(FilterAll, TierEasy).Op]++
	}

	for _, op := range allOperations {
		if seen[op] == 0 {
			t.Errorf("operation %s never chosen with filter all", op)
		}
	}
}

func TestGeneratorDeterminism(t *testing.T) {
	g1 := NewGenerator(99, -8)
	g2 := NewGenerator(99, -8)

	for i := 0; i < 100; i++ {
		p1 := g1.Generate(FilterAll, TierMedium)
		p2 := g2.Generate(FilterAll, TierMedium)
		if p1 != p2 {
			t.Fatalf("same seed should produce same problems: %+v vs %+v", p1, p2)
		}
	}
}

func TestSubtractionMayGoNegative(t *testing.T) {
	g := NewGenerator(8, -8)
	negative := false

	for i := 0; i < 200 && !negative; i++ {
		negative = g.Generate(FilterSub, TierEasy).Answer < 0
	}

	if !negative {
		t.Error("subtraction answers should include negative values")
	}
}
