package project

// Position is the spatial placement of a project on the map canvas.
// Coordinates may be negative. Radius is optional; nil means the renderer
// picks a default, and an explicit 0 is a valid (degenerate) radius.
type Position struct {
	X      float64  `json:"x"`
	Y      float64  `json:"y"`
	Radius *float64 `json:"radius,omitempty"`
}

// Subtask is a node on a project's mind-map. Only the completion flag
// participates in progress derivation; the rest is carried opaquely for the
// presentation layer.
type Subtask struct {
	ID        string `json:"id,omitempty"`
	Title     string `json:"title,omitempty"`
	Completed bool   `json:"completed"`
}
