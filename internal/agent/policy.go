package agent

// ShouldRespond decides whether an inbound event deserves a reply. Direct
// messages and explicit mentions always do; otherwise the odds scale with how
// interested the agent currently is. roll supplies randomness so the policy is
// reproducible under test.
func ShouldRespond(ev Event, interest float64, roll func() float64) bool {
	if ev.IsDM {
		return true
	}
	if ev.Mentioned {
		return true
	}
	if interest > 0.5 {
		chance := (interest - 0.5) * 0.8
		return roll() < chance
	}
	return false
}
