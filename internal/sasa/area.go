package sasa

// Area is the six-component SASA aggregate attached to a node.
// main_chain + side_chain is not guaranteed to equal total exactly;
// the engine rounds each component independently.
type Area struct {
	Total     float64 `json:"total"`
	MainChain float64 `json:"main_chain"`
	SideChain float64 `json:"side_chain"`
	Polar     float64 `json:"polar"`
	Apolar    float64 `json:"apolar"`
	Unknown   float64 `json:"unknown"`
}

// Add returns the pointwise sum of a and b.
func (a Area) Add(b Area) Area {
	return Area{
		Total:     a.Total + b.Total,
		MainChain: a.MainChain + b.MainChain,
		SideChain: a.SideChain + b.SideChain,
		Polar:     a.Polar + b.Polar,
		Apolar:    a.Apolar + b.Apolar,
		Unknown:   a.Unknown + b.Unknown,
	}
}

// Sub returns the pointwise difference a - b.
func (a Area) Sub(b Area) Area {
	return Area{
		Total:     a.Total - b.Total,
		MainChain: a.MainChain - b.MainChain,
		SideChain: a.SideChain - b.SideChain,
		Polar:     a.Polar - b.Polar,
		Apolar:    a.Apolar - b.Apolar,
		Unknown:   a.Unknown - b.Unknown,
	}
}
