package tui

import (
	"strings"
	"testing"

	"github.com/vovakirdan/math-defender/internal/core"
	"github.com/vovakirdan/math-defender/internal/game"
)

func baseSnapshot(phase game.Phase) game.Snapshot {
	return game.Snapshot{
		Tick:      100,
		Phase:     phase,
		Filter:    game.FilterAdd,
		Tier:      game.TierEasy,
		Score:     4,
		Lives:     2,
		MaxLives:  3,
		HighScore: 9,
		Height:    100,
		Threshold: 86,
		SpawnY:    -8,
	}
}

func findRow(s *core.Screen, text string) int {
	for y := 0; y < s.Height(); y++ {
		if strings.Contains(s.Row(y), text) {
			return y
		}
	}
	return -1
}

func TestLayoutScaling(t *testing.T) {
	l := newLayout(80, 23, 100)

	if l.top != 2 || l.rows != 20 {
		t.Fatalf("layout top %d rows %d, expected 2 and 20", l.top, l.rows)
	}

	tests := []struct {
		y        float64
		expected int
	}{
		{0, 2},
		{4.9, 2},
		{5, 3},
		{50, 12},
		{99.9, 21},
		{-8, 0}, // Above the field, clipped by callers
	}
	for _, tc := range tests {
		if got := l.row(tc.y); got != tc.expected {
			t.Errorf("row(%v) = %d, expected %d", tc.y, got, tc.expected)
		}
	}

	if !l.inside(l.row(50)) || l.inside(l.row(-8)) || l.inside(l.row(100)) {
		t.Error("only rows inside the box should count as inside")
	}
	if l.col(0) != 1 || l.col(0.5) != 40 {
		t.Errorf("col(0)=%d col(0.5)=%d, expected 1 and 40", l.col(0), l.col(0.5))
	}
}

func TestDrawSnapshotHUD(t *testing.T) {
	s := core.NewScreen(80, 23)
	DrawSnapshot(s, baseSnapshot(game.PhasePlaying))

	hud := s.Row(0)
	for _, want := range []string{"SCORE 4", "Addition · Easy", "♥♥·", "BEST 9"} {
		if !strings.Contains(hud, want) {
			t.Errorf("HUD %q should contain %q", hud, want)
		}
	}
}

func TestDrawSnapshotProblems(t *testing.T) {
	snap := baseSnapshot(game.PhasePlaying)
	snap.Problems = []game.Problem{
		{ID: 1, Expression: "3 + 4", Y: 50, Active: true},
		{ID: 2, Expression: "8 + 1", Y: 10},
		{ID: 3, Expression: "2 + 2", Y: -8}, // Not visible yet
	}

	s := core.NewScreen(80, 23)
	DrawSnapshot(s, snap)

	row := findRow(s, "3 + 4")
	if row != newLayout(80, 23, 100).row(50) {
		t.Fatalf("active problem drawn on row %d", row)
	}
	x := strings.Index(s.Row(row), "3")
	if c := s.GetCell(len([]rune(s.Row(row)[:x])), row).Color; c != core.ColorBrightYellow {
		t.Errorf("active problem color = %d, expected bright yellow", c)
	}
	if findRow(s, "8 + 1") < 0 {
		t.Error("queued problem should be drawn")
	}
	if findRow(s, "2 + 2") >= 0 {
		t.Error("problem above the field should not be drawn")
	}

	line := findRow(s, "═══")
	if line != newLayout(80, 23, 100).row(86) {
		t.Errorf("defense line on row %d", line)
	}
	if findRow(s, "/▲\\") < 0 {
		t.Error("rocket should be drawn while playing")
	}
}

func TestDrawSnapshotTerminalHidesRocket(t *testing.T) {
	snap := baseSnapshot(game.PhasePlaying)
	snap.Terminal = true
	snap.Lives = 0

	s := core.NewScreen(80, 23)
	DrawSnapshot(s, snap)
	if findRow(s, "/▲\\") >= 0 {
		t.Error("rocket should be gone in the terminal window")
	}
}

func TestDrawSnapshotEffects(t *testing.T) {
	snap := baseSnapshot(game.PhasePlaying)
	snap.Effects = []game.Effect{
		{ID: 1, Kind: game.EffectLaser, X: 0.5, Y: 40, CreatedTick: 99, TTL: 18},
		{ID: 2, Kind: game.EffectLifeLoss, X: 0.5, Y: 86, Text: "-1", CreatedTick: 99, TTL: 60},
		{ID: 3, Kind: game.EffectShake, X: 0.5, Y: 100, CreatedTick: 99, TTL: 30},
	}

	s := core.NewScreen(80, 23)
	DrawSnapshot(s, snap)

	l := newLayout(80, 23, 100)
	if s.Get(l.col(0.5), l.row(40)+1) != '│' {
		t.Error("laser should be drawn below its target")
	}
	if findRow(s, "-1 ♥") < 0 {
		t.Error("life loss marker should be drawn")
	}
	if s.GetCell(0, hudRows).Color != core.ColorRed {
		t.Error("frame should turn red while the shake effect lives")
	}
}

func TestDrawSnapshotIdleAndGameOver(t *testing.T) {
	s := core.NewScreen(80, 23)

	DrawSnapshot(s, baseSnapshot(game.PhaseIdle))
	if findRow(s, "M A T H") < 0 {
		t.Error("idle screen should show the title")
	}
	if findRow(s, "[+]") < 0 || findRow(s, "[Easy]") < 0 {
		t.Error("idle screen should bracket the selected filter and tier")
	}

	over := baseSnapshot(game.PhaseGameOver)
	over.NewRecord = true
	DrawSnapshot(s, over)
	if findRow(s, "G A M E   O V E R") < 0 || findRow(s, "New record!") < 0 {
		t.Error("game over screen should show the result")
	}
}

func TestRenderScreenKeepsText(t *testing.T) {
	s := core.NewScreen(10, 2)
	s.DrawTextColored(0, 0, "ab", core.ColorRed)
	s.DrawTextColored(2, 0, "cd", core.ColorGreen)
	s.DrawText(0, 1, "xyz")

	out := RenderScreen(s)
	if strings.Count(out, "\n") != 1 {
		t.Errorf("expected 2 lines, got %q", out)
	}
	for _, want := range []string{"ab", "cd", "xyz"} {
		if !strings.Contains(out, want) {
			t.Errorf("rendered output should contain %q", want)
		}
	}
}
