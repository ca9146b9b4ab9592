package wizard

// Action is one navigation control.
type Action string

const (
	ActionPrevious Action = "previous"
	ActionNext     Action = "next"
	ActionFinish   Action = "finish"
	ActionCancel   Action = "cancel"
)

// Labels shown for each action.
const (
	LabelBack   = "Back"
	LabelNext   = "Next"
	LabelFinish = "Finish"
	LabelCancel = "Cancel"
)

// ActionSet is the set of currently legal navigation actions. It is derived
// from the position and state, never stored.
type ActionSet struct {
	Previous bool `json:"previous"`
	Next     bool `json:"next"`
	Cancel   bool `json:"cancel"`
	// Finish is true when the forward action completes the run.
	Finish bool `json:"finish"`
}

// DeriveActions computes the legal actions for a position. index and length
// are only meaningful in StateActive.
func DeriveActions(index, length int, state State) ActionSet {
	switch state {
	case StateIdle:
		return ActionSet{Cancel: true}
	case StateActive:
		return ActionSet{
			Previous: index > 0,
			Next:     true,
			Cancel:   true,
			Finish:   index == length-1,
		}
	default:
		return ActionSet{}
	}
}

// Forward returns the action the forward control triggers.
func (a ActionSet) Forward() Action {
	if a.Finish {
		return ActionFinish
	}
	return ActionNext
}

// Allows reports whether act is currently legal.
func (a ActionSet) Allows(act Action) bool {
	switch act {
	case ActionPrevious:
		return a.Previous
	case ActionNext:
		return a.Next && !a.Finish
	case ActionFinish:
		return a.Next && a.Finish
	case ActionCancel:
		return a.Cancel
	default:
		return false
	}
}

// LegendItem describes one control for a rendering layer.
type LegendItem struct {
	Action  Action `json:"action"`
	Label   string `json:"label"`
	Enabled bool   `json:"enabled"`
}

// Legend returns the controls in display order: Back, Next or Finish, Cancel.
func (a ActionSet) Legend() []LegendItem {
	forward := LegendItem{Action: ActionNext, Label: LabelNext, Enabled: a.Next}
	if a.Finish {
		forward = LegendItem{Action: ActionFinish, Label: LabelFinish, Enabled: a.Next}
	}
	return []LegendItem{
		{Action: ActionPrevious, Label: LabelBack, Enabled: a.Previous},
		forward,
		{Action: ActionCancel, Label: LabelCancel, Enabled: a.Cancel},
	}
}

// Labels returns the legend labels joined with "/", e.g. "Back/Finish/Cancel".
func (a ActionSet) Labels() string {
	items := a.Legend()
	out := items[0].Label
	for _, it := range items[1:] {
		out += "/" + it.Label
	}
	return out
}
