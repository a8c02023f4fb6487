package arm

import "math"

// Controller-native units are meters and radians; the normalized model uses
// millimeters and degrees. Torque is newton-meters on both sides.

func RadToDeg(v float64) float64 { return v * 180 / math.Pi }

func DegToRad(v float64) float64 { return v * math.Pi / 180 }

func MetersToMillimeters(v float64) float64 { return v * 1000 }

func MillimetersToMeters(v float64) float64 { return v / 1000 }
