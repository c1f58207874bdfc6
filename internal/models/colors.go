package models

// DefaultColorName is reported when a row has no color id or an unknown one.
const DefaultColorName = "default color"

// colorNames maps calendar palette ids to the names used in reports.
var colorNames = map[string]string{
	"1":  "default",
	"2":  "light green",
	"3":  "purple",
	"4":  "orange",
	"5":  "yellow",
	"6":  "dark orange",
	"7":  "sky blue",
	"8":  "gray",
	"9":  "navy",
	"10": "green",
	"11": "red",
}

// ColorName returns the display name for a palette color id.
func ColorName(id string) string {
	if name, ok := colorNames[id]; ok {
		return name
	}
	return DefaultColorName
}

// KnownColor reports whether id is one of the palette ids.
func KnownColor(id string) bool {
	_, ok := colorNames[id]
	return ok
}
