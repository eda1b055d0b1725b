package entry

// PagePath maps a form type to the page that renders it.
func PagePath(t FormType) string {
	switch t {
	case Habit:
		return "/daily-habit-builder"
	case Pain:
		return "/pain-scale"
	case Sleep:
		return "/sleep-scale"
	case Stress:
		return "/stress-scale"
	}
	return ""
}
