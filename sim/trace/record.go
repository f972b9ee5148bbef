// Package trace provides decision-trace recording for swarm simulations.
// This package has no dependencies on sim/; it stores pure data types.
package trace

// BatchRecord captures one batch of simultaneous events applied by the engine.
type BatchRecord struct {
	Clock    float64 `json:"clock"`
	Type     string  `json:"type"` // event type name, e.g. "START_COMPUTE"
	RobotIDs []int   `json:"robot_ids"`
}

// ComputeRecord captures a single algorithm invocation.
type ComputeRecord struct {
	RobotID    int     `json:"robot_id"`
	Clock      float64 `json:"clock"`
	Visible    int     `json:"visible"`  // robots in the snapshot handed to the algorithm, itself included
	TargetX    float64 `json:"target_x"` // global end point of the computed path
	TargetY    float64 `json:"target_y"`
	PathLength float64 `json:"path_length"`
	Null       bool    `json:"null"` // the robot decided not to move
}
