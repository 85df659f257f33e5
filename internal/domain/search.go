package domain

// FilterOptions describes the filter values currently present among available
// cards, for populating marketplace filter controls.
type FilterOptions struct {
	Categories    []string
	Parallels     []string
	Conditions    []string
	MinPriceCents int64
	MaxPriceCents int64
}

// NameCount pairs a name with how many available cards carry it.
type NameCount struct {
	Name  string
	Count int64
}

// PopularNames lists the most common player and set names among available
// cards, most frequent first.
type PopularNames struct {
	Players []NameCount
	Sets    []NameCount
}
