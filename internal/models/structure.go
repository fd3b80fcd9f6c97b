package models

// StructureEntry pairs a position with the active members holding it.
type StructureEntry struct {
	Position Position `json:"position"`
	Members  []Member `json:"members"`
}

// Structure is the assembled hierarchy for one period.
type Structure struct {
	Period    *Period          `json:"period"`
	Hierarchy []StructureEntry `json:"structure"`
}
