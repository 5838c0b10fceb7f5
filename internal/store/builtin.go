package store

import "github.com/MJE43/life-tick-go/internal/life"

// builtinPatterns are inserted by Migrate when missing.
var builtinPatterns = []Pattern{
	{
		Name:        "glider",
		Description: "Smallest spaceship; travels diagonally one cell every four generations",
		Cells:       []life.Point{{Row: 0, Col: 1}, {Row: 1, Col: 2}, {Row: 2, Col: 0}, {Row: 2, Col: 1}, {Row: 2, Col: 2}},
	},
	{
		Name:        "blinker",
		Description: "Period 2 oscillator",
		Cells:       []life.Point{{Row: 0, Col: 0}, {Row: 0, Col: 1}, {Row: 0, Col: 2}},
	},
	{
		Name:        "block",
		Description: "Still life",
		Cells:       []life.Point{{Row: 0, Col: 0}, {Row: 0, Col: 1}, {Row: 1, Col: 0}, {Row: 1, Col: 1}},
	},
	{
		Name:        "beacon",
		Description: "Period 2 oscillator",
		Cells:       []life.Point{{Row: 0, Col: 0}, {Row: 0, Col: 1}, {Row: 1, Col: 0}, {Row: 2, Col: 3}, {Row: 3, Col: 2}, {Row: 3, Col: 3}},
	},
	{
		Name:        "toad",
		Description: "Period 2 oscillator",
		Cells:       []life.Point{{Row: 0, Col: 1}, {Row: 0, Col: 2}, {Row: 0, Col: 3}, {Row: 1, Col: 0}, {Row: 1, Col: 1}, {Row: 1, Col: 2}},
	},
	{
		Name:        "r-pentomino",
		Description: "Methuselah that stabilises after 1103 generations on an unbounded board",
		Cells:       []life.Point{{Row: 0, Col: 1}, {Row: 0, Col: 2}, {Row: 1, Col: 0}, {Row: 1, Col: 1}, {Row: 2, Col: 1}},
	},
	{
		Name:        "lwss",
		Description: "Lightweight spaceship",
		Cells:       []life.Point{{Row: 0, Col: 1}, {Row: 0, Col: 4}, {Row: 1, Col: 0}, {Row: 2, Col: 0}, {Row: 2, Col: 4}, {Row: 3, Col: 0}, {Row: 3, Col: 1}, {Row: 3, Col: 2}, {Row: 3, Col: 3}},
	},
}
