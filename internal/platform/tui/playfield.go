package tui

import (
	"fmt"
	"strings"

	"github.com/vovakirdan/math-defender/internal/core"
	"github.com/vovakirdan/math-defender/internal/game"
)

// Rows above the playfield box.
const hudRows = 1

// layout maps logical playfield coordinates onto screen cells. Logical y runs
// from 0 at the top to the playfield height at the bottom; effect x is a
// fraction of the width.
type layout struct {
	field  core.Rect
	top    int
	rows   int
	left   int
	cols   int
	height float64
}

func newLayout(w, h int, height float64) layout {
	field := core.NewRect(0, hudRows, w, core.Max(h-hudRows, 3))
	return layout{
		field:  field,
		top:    field.Y + 1,
		rows:   core.Max(field.H-2, 1),
		left:   field.X + 1,
		cols:   core.Max(field.W-2, 1),
		height: height,
	}
}

func (l layout) row(y float64) int {
	return l.top + core.ScaleToCells(y, l.height, l.rows)
}

func (l layout) col(x float64) int {
	return l.left + core.ScaleToCells(x, 1, l.cols)
}

func (l layout) bottom() int {
	return l.top + l.rows - 1
}

func (l layout) inside(row int) bool {
	return row >= l.top && row <= l.bottom()
}

// DrawSnapshot renders a full frame for the snapshot onto s.
func DrawSnapshot(s *core.Screen, snap game.Snapshot) {
	s.Clear()
	l := newLayout(s.Width(), s.Height(), snap.Height)

	drawHUD(s, snap)

	if snap.Phase == game.PhaseIdle {
		s.DrawBox(l.field, core.ColorGray)
		drawCategoryPicker(s, l, snap)
		return
	}

	frame := core.ColorGray
	if hasEffect(snap, game.EffectShake) {
		frame = core.ColorRed
	}
	s.DrawBox(l.field, frame)

	drawDefenseLine(s, l, snap)
	drawProblems(s, l, snap)
	if snap.Phase == game.PhasePlaying && !snap.Terminal {
		drawRocket(s, l)
	}
	drawEffects(s, l, snap)

	if snap.Phase == game.PhaseGameOver {
		drawGameOver(s, snap)
	}
}

func drawHUD(s *core.Screen, snap game.Snapshot) {
	score := fmt.Sprintf(" SCORE %d", snap.Score)
	s.DrawTextColored(0, 0, score, core.ColorBrightYellow)

	category := fmt.Sprintf("%s · %s", snap.Filter.Label(), snap.Tier.Label())
	s.DrawTextCentered(0, category, core.ColorCyan)

	lives := strings.Repeat("♥", snap.Lives) + strings.Repeat("·", core.Max(snap.MaxLives-snap.Lives, 0))
	best := fmt.Sprintf("BEST %d ", snap.HighScore)
	right := s.Width() - len([]rune(best))
	s.DrawTextColored(right, 0, best, core.ColorWhite)
	s.DrawTextColored(right-len([]rune(lives))-2, 0, lives, core.ColorBrightRed)
}

func drawCategoryPicker(s *core.Screen, l layout, snap game.Snapshot) {
	y := l.top + core.Max(l.rows/2-5, 0)

	s.DrawTextCentered(y, "M A T H   D E F E N D E R", core.ColorBrightYellow)
	s.DrawTextCentered(y+1, "solve the problems before they reach the line", core.ColorGray)

	s.DrawTextCentered(y+3, "Operation", core.ColorWhite)
	filters := make([]string, 0, len(game.Filters()))
	for _, f := range game.Filters() {
		filters = append(filters, pickerItem(string(f), f == snap.Filter))
	}
	drawPickerRow(s, y+4, filters)

	s.DrawTextCentered(y+6, "Difficulty", core.ColorWhite)
	tiers := make([]string, 0, len(game.Tiers()))
	for _, t := range game.Tiers() {
		tiers = append(tiers, pickerItem(t.Label(), t == snap.Tier))
	}
	drawPickerRow(s, y+7, tiers)

	s.DrawTextCentered(y+9, fmt.Sprintf("Best in %s: %d", snap.Category(), snap.HighScore), core.ColorBrightGreen)
}

func pickerItem(label string, selected bool) string {
	if selected {
		return "[" + label + "]"
	}
	return " " + label + " "
}

// drawPickerRow centers the items and highlights the bracketed one.
func drawPickerRow(s *core.Screen, y int, items []string) {
	line := strings.Join(items, "  ")
	x := (s.Width() - len([]rune(line))) / 2
	for _, item := range items {
		c := core.ColorGray
		if strings.HasPrefix(item, "[") {
			c = core.ColorBrightYellow
		}
		s.DrawTextColored(x, y, item, c)
		x += len([]rune(item)) + 2
	}
}

func drawDefenseLine(s *core.Screen, l layout, snap game.Snapshot) {
	row := core.Clamp(l.row(snap.Threshold), l.top, l.bottom())
	s.DrawHLine(l.left, row, l.cols, '═', core.ColorRed)
}

func drawProblems(s *core.Screen, l layout, snap game.Snapshot) {
	for _, p := range snap.Problems {
		row := l.row(p.Y)
		if !l.inside(row) {
			continue
		}
		label := "‹ " + p.Expression + " ›"
		c := core.ColorWhite
		switch {
		case p.Locked:
			c = core.ColorGray
		case p.Active:
			c = core.ColorBrightYellow
		}
		x := l.left + (l.cols-len([]rune(label)))/2
		s.DrawTextColored(x, row, label, c)
	}
}

func drawRocket(s *core.Screen, l layout) {
	x := l.left + l.cols/2
	s.DrawTextColored(x-1, l.bottom(), "/▲\\", core.ColorBrightCyan)
}

func drawEffects(s *core.Screen, l layout, snap game.Snapshot) {
	for _, e := range snap.Effects {
		progress := e.Progress(snap.Tick)
		x := l.col(e.X)
		row := core.Clamp(l.row(e.Y), l.top, l.bottom())

		switch e.Kind {
		case game.EffectLaser:
			// Beam from just above the rocket up to the target
			from := l.bottom() - 1
			if from >= row {
				s.DrawVLine(x, row+1, from-row, '│', core.ColorBrightCyan)
			}

		case game.EffectScore:
			rise := int(progress * 2)
			s.DrawTextColored(x+3, row-rise, e.Text, core.ColorBrightGreen)

		case game.EffectLifeLoss:
			s.DrawTextColored(x-3, row-1, e.Text+" ♥", core.ColorBrightRed)

		case game.EffectExplosion:
			drawExplosion(s, x, row, progress)

		case game.EffectConfetti:
			fall := int(progress * float64(l.rows) / 3)
			glyphs := []rune{'*', '+', '•', '✦'}
			r := glyphs[e.Variant%len(glyphs)]
			s.SetColored(x, core.Clamp(row+fall, l.top, l.bottom()), r, core.PaletteColor(core.ConfettiPalette, e.Variant))
		}
	}
}

// drawExplosion draws a ring that widens over the effect's lifetime.
func drawExplosion(s *core.Screen, x, y int, progress float64) {
	radius := 1 + int(progress*3)
	c := core.ColorOrange
	if progress > 0.6 {
		c = core.ColorRed
	}
	s.SetColored(x, y, '✸', core.ColorBrightYellow)
	s.SetColored(x-radius*2, y, '*', c)
	s.SetColored(x+radius*2, y, '*', c)
	s.SetColored(x, y-radius, '*', c)
	s.SetColored(x, y+radius, '*', c)
	s.SetColored(x-radius, y-1, '·', c)
	s.SetColored(x+radius, y-1, '·', c)
	s.SetColored(x-radius, y+1, '·', c)
	s.SetColored(x+radius, y+1, '·', c)
}

func drawGameOver(s *core.Screen, snap game.Snapshot) {
	box := core.CenteredRect(s.Width(), s.Height(), 30, 7)
	for y := box.Y + 1; y < box.Bottom()-1; y++ {
		s.DrawHLine(box.X+1, y, box.W-2, ' ', core.ColorDefault)
	}
	s.DrawBox(box, core.ColorBrightRed)

	s.DrawTextCentered(box.Y+1, "G A M E   O V E R", core.ColorBrightRed)
	s.DrawTextCentered(box.Y+3, fmt.Sprintf("Score %d", snap.Score), core.ColorWhite)
	if snap.NewRecord {
		s.DrawTextCentered(box.Y+4, "New record!", core.ColorBrightGreen)
	} else {
		s.DrawTextCentered(box.Y+4, fmt.Sprintf("Best %d", snap.HighScore), core.ColorGray)
	}
}

func hasEffect(snap game.Snapshot, kind game.EffectKind) bool {
	for _, e := range snap.Effects {
		if e.Kind == kind {
			return true
		}
	}
	return false
}
