package models

// Condition is a named pipeline variant; each variant toggles state-building
// and verify/repair.
type Condition string

const (
	ConditionA0 Condition = "A0"
	ConditionA1 Condition = "A1"
	ConditionA2 Condition = "A2"
	ConditionA3 Condition = "A3"
)

// Capabilities models a Condition as a flags record so pipeline stages
// branch on flags rather than switching on the condition string directly.
type Capabilities struct {
	HasState       bool
	HasVerifyRepair bool
}

// CapabilitiesFor returns the capability flags for a known condition. Unknown
// conditions yield the zero value (no state, no verify/repair).
func CapabilitiesFor(c Condition) Capabilities {
	switch c {
	case ConditionA0:
		return Capabilities{HasState: false, HasVerifyRepair: false}
	case ConditionA1:
		return Capabilities{HasState: true, HasVerifyRepair: false}
	case ConditionA2:
		return Capabilities{HasState: false, HasVerifyRepair: true}
	case ConditionA3:
		return Capabilities{HasState: true, HasVerifyRepair: true}
	default:
		return Capabilities{}
	}
}

// ValidConditions is the complete set of recognized conditions.
var ValidConditions = map[Condition]bool{
	ConditionA0: true,
	ConditionA1: true,
	ConditionA2: true,
	ConditionA3: true,
}
