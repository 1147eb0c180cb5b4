package tui

import (
	"fmt"

	"github.com/muesli/termenv"
)

// PrintBanner outputs the FormFlow ASCII banner with the version tag.
func PrintBanner(version string) {
	p := termenv.ColorProfile()
	// Indigo-to-rose gradient, one color per row
	s1 := termenv.String("  ______                   ______ _").Foreground(p.Color("#818cf8"))
	s2 := termenv.String(" |  ____|                 |  ____| |").Foreground(p.Color("#a78bfa"))
	s3 := termenv.String(" | |__ ___  _ __ _ __ ___ | |__  | | _____      __").Foreground(p.Color("#c084fc"))
	s4 := termenv.String(" |  __/ _ \\| '__| '_ ` _ \\|  __| | |/ _ \\ \\ /\\ / /").Foreground(p.Color("#e879f9"))
	s5 := termenv.String(" | | | (_) | |  | | | | | | |    | | (_) \\ V  V /").Foreground(p.Color("#f472b6"))
	s6 := termenv.String(" |_|  \\___/|_|  |_| |_| |_|_|    |_|\\___/ \\_/\\_/").Foreground(p.Color("#fb7185"))

	fmt.Println()
	fmt.Println(s1)
	fmt.Println(s2)
	fmt.Println(s3)
	fmt.Println(s4)
	fmt.Println(s5)
	fmt.Println(s6)
	fmt.Println()
	fmt.Println(termenv.String("  "+version).Foreground(p.Color("#94a3b8")).Italic())
	fmt.Println()
}
