package core

// Action represents a semantic command, abstracted from physical key presses.
// Answer text is not an action: it flows through the input widget and is
// submitted as a whole.
type Action int

const (
	ActionNone       Action = iota
	ActionSubmit            // Enter - submit the typed answer
	ActionStart             // Enter/Space on the category screen
	ActionNextFilter        // Right, l - next operation filter
	ActionPrevFilter        // Left, h - previous operation filter
	ActionNextTier          // Down, j - next difficulty tier
	ActionPrevTier          // Up, k - previous difficulty tier
	ActionRestart           // R key - restart after game over
	ActionBack              // B, Escape - back to the category screen
	ActionScoreboard        // Tab - open the scoreboard
	ActionQuit              // Q, Ctrl+C - exit
)

// String returns a human-readable name for the action.
func (a Action) String() string {
	switch a {
	case ActionNone:
		return "None"
	case ActionSubmit:
		return "Submit"
	case ActionStart:
		return "Start"
	case ActionNextFilter:
		return "NextFilter"
	case ActionPrevFilter:
		return "PrevFilter"
	case ActionNextTier:
		return "NextTier"
	case ActionPrevTier:
		return "PrevTier"
	case ActionRestart:
		return "Restart"
	case ActionBack:
		return "Back"
	case ActionScoreboard:
		return "Scoreboard"
	case ActionQuit:
		return "Quit"
	default:
		return "Unknown"
	}
}
