package alerts

// impliedStatus maps each alert type to the status it implies on its own.
// Adding a new severity means adding a Status value and a row here.
var impliedStatus = map[Type]Status{
	TypeSafe:      StatusSafe,
	TypeDeviation: StatusDeviation,
	TypeHighRisk:  StatusHighRisk,
}

// highestStatus is the top of the severity order; the fold stops there.
const highestStatus = statusCount - 1

// Implied returns the status a single alert type implies. Unknown types
// imply StatusSafe.
func Implied(t Type) Status {
	if s, ok := impliedStatus[t]; ok {
		return s
	}
	return StatusSafe
}

// Classify folds the non-dismissed alerts into the most severe status they
// imply. The result does not depend on input order, and an empty or fully
// dismissed list yields StatusSafe.
func Classify(list []Alert) Status {
	status := StatusSafe
	for _, a := range list {
		if a.Dismissed {
			continue
		}
		if s := Implied(a.Type); s > status {
			status = s
			if status == highestStatus {
				break
			}
		}
	}
	return status
}

// Active returns the non-dismissed alerts in their original order.
func Active(list []Alert) []Alert {
	var result []Alert
	for _, a := range list {
		if !a.Dismissed {
			result = append(result, a)
		}
	}
	return result
}
