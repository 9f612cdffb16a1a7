package manager

// ModState is where a mod is in its install lifecycle. Installing and Uninstalling only exist
// while a request for that mod is running.
type ModState int

const (
	Disabled ModState = iota
	Installing
	Enabled
	Uninstalling
)

func (s ModState) String() string {
	switch s {
	case Installing:
		return "installing"
	case Enabled:
		return "enabled"
	case Uninstalling:
		return "uninstalling"
	default:
		return "disabled"
	}
}

func stateOf(enabled bool) ModState {
	if enabled {
		return Enabled
	}
	return Disabled
}
