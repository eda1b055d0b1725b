package entry

// FormType names one of the closed set of check-in forms.
type FormType string

const (
	Pain   FormType = "pain"
	Sleep  FormType = "sleep"
	Stress FormType = "stress"
	Habit  FormType = "habit"
)

// FormTypes lists every supported form type in display order.
var FormTypes = []FormType{Habit, Pain, Sleep, Stress}

func (t FormType) Valid() bool {
	switch t {
	case Pain, Sleep, Stress, Habit:
		return true
	}
	return false
}

func (t FormType) String() string { return string(t) }

// ParseFormType validates untrusted input (query string, path param, JSON body).
func ParseFormType(s string) (FormType, error) {
	t := FormType(s)
	if !t.Valid() {
		return "", &InvalidTypeError{Value: s}
	}
	return t, nil
}
