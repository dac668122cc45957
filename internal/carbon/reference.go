package carbon

// Reference topologies in GtC and GtC/yr. Flux names read Fab = flow from
// box a to box b, with boxes numbered as in the nine-box layout.

func fourBox() TopologyDef {
	const (
		f12 = 90
		f21 = 90
		f15 = 110
		f51 = 55
		f57 = 55
		f71 = 55 // detritus decomposition
		f72 = 0
	)
	return TopologyDef{
		Name:  "4box",
		Boxes: []string{"atmosphere", "surface_water", "short_lived_biota", "litter"},
		Flux: [][]float64{
			{0, f21, f51, f71},
			{f12, 0, 0, f72},
			{f15, 0, 0, 0},
			{0, 0, f57, 0},
		},
		Mass: []float64{725, 725, 110, 60},
	}
}

func nineBox() TopologyDef {
	const (
		f12 = 89
		f15 = 110
		f21 = 90
		f23 = 40
		f24 = 38
		f32 = 36
		f34 = 4 // detritus
		f42 = 42
		f51 = 55
		f56 = 15
		f57 = 40
		f61 = 0 // deforestation
		f67 = 15
		f71 = 50 // detritus decomposition
		f72 = 1
		f78 = 3
		f79 = 1
		f81 = 3
		f91 = 1
	)
	return TopologyDef{
		Name: "9box",
		Boxes: []string{
			"atmosphere", "surface_water", "surface_biota", "deep_water",
			"short_lived_biota", "long_lived_biota", "litter", "soil", "peat",
		},
		Flux: [][]float64{
			{0, f21, 0, 0, f51, f61, f71, f81, f91},
			{f12, 0, f32, f42, 0, 0, f72, 0, 0},
			{0, f23, 0, 0, 0, 0, 0, 0, 0},
			{0, f24, f34, 0, 0, 0, 0, 0, 0},
			{f15, 0, 0, 0, 0, 0, 0, 0, 0},
			{0, 0, 0, 0, f56, 0, 0, 0, 0},
			{0, 0, 0, 0, f57, f67, 0, 0, 0},
			{0, 0, 0, 0, 0, 0, f78, 0, 0},
			{0, 0, 0, 0, 0, 0, f79, 0, 0},
		},
		Mass: []float64{725, 725, 3, 37675, 110, 450, 60, 1350, 160},
	}
}

// FourBox is the atmosphere / surface water / short-lived biota / litter
// layout.
func FourBox() *Topology { return mustBuild(fourBox()) }

// NineBox adds surface biota, deep water, long-lived biota, soil and peat.
func NineBox() *Topology { return mustBuild(nineBox()) }

func mustBuild(d TopologyDef) *Topology {
	t, err := d.Build()
	if err != nil {
		panic(err)
	}
	return t
}
