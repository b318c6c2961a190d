package normalize

type Dimension string

const (
	DimMass    Dimension = "mass"
	DimVolume  Dimension = "volume"
	DimCount   Dimension = "count"
	DimLength  Dimension = "length"
	DimPackage Dimension = "package"
)

// unitLibrary lists the canonical units we can measure.
var unitLibrary = map[string]Dimension{
	"kg":      DimMass,
	"g":       DimMass,
	"ons":     DimMass,
	"l":       DimVolume,
	"ml":      DimVolume,
	"piece":   DimCount,
	"dozen":   DimCount,
	"tail":    DimCount,
	"m":       DimLength,
	"cm":      DimLength,
	"pack":    DimPackage,
	"box":     DimPackage,
	"bottle":  DimPackage,
	"bunch":   DimPackage,
	"sack":    DimPackage,
	"can":     DimPackage,
	"tray":    DimPackage,
	"sachet":  DimPackage,
	"roll":    DimPackage,
	"portion": DimPackage,
}

func DimensionOf(unit string) (Dimension, bool) {
	d, ok := unitLibrary[unit]
	return d, ok
}
