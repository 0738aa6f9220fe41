package plates

// Entry is one available truck: a plate parked at an origin plant.
type Entry struct {
	Origin string
	Plate  string
	// Reusable is emitted as 0 in the roster; the planner does not
	// reuse trucks within a day.
	Reusable int64
}

// CarrierGroup is the drivers group whose plates are eligible for the
// roster.
const CarrierGroup = "Transportadoras"
