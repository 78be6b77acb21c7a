package models

// Axis selects the independent variable a loader returns.
type Axis int

const (
	AxisFrequency Axis = iota
	AxisWavelength
)

func (a Axis) String() string {
	if a == AxisWavelength {
		return "wavelength"
	}
	return "frequency"
}
