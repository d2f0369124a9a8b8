package scene

// Palette holds the chain colors. Chain i uses Palette[i mod len(Palette)].
var Palette = [...]string{
	"#FF6B6B",
	"#4ECDC4",
	"#45B7D1",
	"#96CEB4",
	"#FFEEAD",
	"#D4A5A5",
	"#9B59B6",
	"#3498DB",
	"#2ECC71",
	"#F1C40F",
	"#E67E22",
	"#1ABC9C",
}

// ColorFor returns the color of chain i.
func ColorFor(i int) string {
	n := len(Palette)
	return Palette[((i%n)+n)%n]
}
