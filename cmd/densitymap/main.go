package main

import (
	"flag"
	"fmt"
	"time"

	"github.com/annelo/rwsim/internal/noisegeneration"
)

var (
	seed   = flag.Int64("seed", 0, "Сид карты плотности (0 = случайный)")
	width  = flag.Int("width", 60, "Ширина карты в символах")
	height = flag.Int("height", 24, "Высота карты в символах")
	step   = flag.Float64("step", 8, "Мировых единиц на символ")
)

func main() {
	flag.Parse()
	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}
	fmt.Printf("Seed: %d\n", *seed)

	density := noisegeneration.NewDensityMap(*seed)

	fmt.Println("\nКарта зон:")
	visualizeZones(density)

	fmt.Println("\nПлотность машин:")
	visualizeField(density.Vehicles)

	fmt.Println()
	for k, v := range density.CacheStats() {
		fmt.Printf("%s: %v\n", k, v)
	}
}

// worldCoords переводит символ карты в мировые координаты, центр карты в (0,0)
func worldCoords(x, y int) (float64, float64) {
	return float64(x-*width/2) * *step, float64(*height/2-y) * *step
}

func visualizeZones(d *noisegeneration.DensityMap) {
	zoneChars := map[noisegeneration.ZoneType]rune{
		noisegeneration.ZoneEmpty:      ' ',
		noisegeneration.ZoneSuburb:     '.',
		noisegeneration.ZoneCommercial: '+',
		noisegeneration.ZoneDowntown:   '#',
	}
	for y := 0; y < *height; y++ {
		for x := 0; x < *width; x++ {
			wx, wy := worldCoords(x, y)
			fmt.Print(string(zoneChars[d.Zone(wx, wy)]))
		}
		fmt.Println()
	}
	fmt.Println("' ' empty  '.' suburb  '+' commercial  '#' downtown")
}

func visualizeField(field func(x, y float64) float64) {
	chars := []rune{' ', '.', ':', '-', '=', '+', '*', '#', '%', '@'}
	for y := 0; y < *height; y++ {
		for x := 0; x < *width; x++ {
			wx, wy := worldCoords(x, y)
			idx := int(field(wx, wy) * float64(len(chars)-1))
			if idx < 0 {
				idx = 0
			}
			if idx >= len(chars) {
				idx = len(chars) - 1
			}
			fmt.Print(string(chars[idx]))
		}
		fmt.Println()
	}
}
