package arm

// NumJoints is the axis count of the supported arm.
const NumJoints = 6

// Pose is a Cartesian pose in millimeters and degrees.
type Pose struct {
	X     float64
	Y     float64
	Z     float64
	Roll  float64
	Pitch float64
	Yaw   float64
}

// CartesianVelocity is a Cartesian velocity in mm/s and deg/s.
type CartesianVelocity struct {
	VX float64
	VY float64
	VZ float64
	WX float64
	WY float64
	WZ float64
}

// State is one normalized controller snapshot. Values are immutable once
// constructed: joint angles and rates in degrees, pose in millimeters and
// degrees, torques in newton-meters as reported.
type State struct {
	Connected bool
	Enabled   bool
	Moving    bool
	Error     string

	JointPositions  [NumJoints]float64
	JointVelocities [NumJoints]float64
	JointTorques    [NumJoints]float64

	Pose     Pose
	Velocity CartesianVelocity
}
