package cluster

// moduleColors is the display palette for module labels, ordered so
// the largest modules receive the most recognizable colors. Grey is
// not in the palette; it stays reserved for unassigned genes.
var moduleColors = []string{
	"turquoise",
	"blue",
	"brown",
	"yellow",
	"green",
	"red",
	"black",
	"pink",
	"magenta",
	"purple",
	"greenyellow",
	"tan",
	"salmon",
	"cyan",
	"midnightblue",
	"lightcyan",
	"lightgreen",
	"lightyellow",
	"royalblue",
	"darkred",
	"darkgreen",
	"darkturquoise",
	"darkgrey",
	"orange",
	"darkorange",
	"skyblue",
	"saddlebrown",
	"steelblue",
	"paleturquoise",
	"violet",
}

// ColorFor maps a module label to a display color. The mapping is a
// pure function of the label, so the same module is colored the same
// way on every run. Labels past the palette wrap around.
func ColorFor(label int) string {
	if label < 0 {
		return "grey"
	}
	return moduleColors[label%len(moduleColors)]
}
