// Package fped names the Food Patterns Equivalents Database components available as
// predictors and the component hierarchies used to build candidate variable lists.
package fped

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"
)

// LabelSeafoodMeal is the binary classification target, 1 when the meal contained seafood
const LabelSeafoodMeal = "seafood_meal"

const (
	FCitrusMelonBerries = "F_CITMLB"
	FOther              = "F_OTHER"
	FJuice              = "F_JUICE"
	FTotal              = "F_TOTAL"

	VDarkGreen     = "V_DRKGR"
	VRedOrTomato   = "V_REDOR_TOMATO"
	VRedOrOther    = "V_REDOR_OTHER"
	VRedOrTotal    = "V_REDOR_TOTAL"
	VStarchyPotato = "V_STARCHY_POTATO"
	VStarchyOther  = "V_STARCHY_OTHER"
	VStarchyTotal  = "V_STARCHY_TOTAL"
	VOther         = "V_OTHER"
	VTotal         = "V_TOTAL"
	VLegumes       = "V_LEGUMES"

	GWhole   = "G_WHOLE"
	GRefined = "G_REFINED"
	GTotal   = "G_TOTAL"

	PFEggs    = "PF_EGGS"
	PFSoy     = "PF_SOY"
	PFNutsSds = "PF_NUTSDS"
	PFLegumes = "PF_LEGUMES"

	DMilk   = "D_MILK"
	DYogurt = "D_YOGURT"
	DCheese = "D_CHEESE"
	DTotal  = "D_TOTAL"

	Oils      = "OILS"
	SolidFats = "SOLID_FATS"
	AddSugars = "ADD_SUGARS"
	AlcDrinks = "A_DRINKS"
)

// Level names accepted by Lookup
const (
	LevelAll         = "all"
	LevelOne         = "level1"
	LevelTwo         = "level2"
	LevelThree       = "level3"
	LevelExploratory = "exploratory"
)

var (
	ErrUnknownLevel  = errors.New("unknown fped component level")
	ErrNoVariables   = errors.New("no variables listed")
	ErrDuplicateName = errors.New("variable listed more than once")
)

var allVariables = []string{
	FCitrusMelonBerries, FOther, FJuice, FTotal,
	VDarkGreen, VRedOrTomato, VRedOrOther, VRedOrTotal,
	VStarchyPotato, VStarchyOther, VStarchyTotal, VOther,
	VTotal, VLegumes,
	GWhole, GRefined, GTotal,
	PFEggs, PFSoy, PFNutsSds, PFLegumes,
	DMilk, DYogurt, DCheese, DTotal,
	Oils, SolidFats, AddSugars, AlcDrinks,
}

// high level components: fruit, vegetable, grain and dairy totals plus oils, fats and sugars
var level1 = []string{
	FTotal, VTotal, GTotal, DTotal, Oils,
	SolidFats, AddSugars,
}

// subcomponents of vegetables, grains, non meat proteins and dairy with fruit kept at total
var level2 = []string{
	FTotal,
	VDarkGreen, VRedOrTomato, VRedOrOther, VStarchyPotato,
	VStarchyOther, VOther, VLegumes,
	GWhole, GRefined,
	PFEggs, PFSoy, PFNutsSds, PFLegumes,
	DMilk, DYogurt, DCheese,
	Oils, SolidFats, AddSugars,
}

// level2 with total fruit broken into subcomponents
var level3 = []string{
	FCitrusMelonBerries, FOther, FJuice,
	VDarkGreen, VRedOrTomato, VRedOrOther, VStarchyPotato,
	VStarchyOther, VOther, VLegumes,
	GWhole, GRefined,
	PFEggs, PFSoy, PFNutsSds, PFLegumes,
	DMilk, DYogurt, DCheese,
	Oils, SolidFats, AddSugars,
}

var exploratory = []string{
	FTotal, VTotal, GTotal, VDarkGreen,
	VRedOrTomato, VRedOrOther, VStarchyPotato,
}

var levels = map[string][]string{
	LevelAll:         allVariables,
	LevelOne:         level1,
	LevelTwo:         level2,
	LevelThree:       level3,
	LevelExploratory: exploratory,
}

// AllVariables returns every FPED predictor in dataset column order
func AllVariables() []string { return slices.Clone(allVariables) }

// Level1 returns the top level food components
func Level1() []string { return slices.Clone(level1) }

// Level2 returns the component subgroups with fruit at the total level
func Level2() []string { return slices.Clone(level2) }

// Level3 returns Level2 with fruit split into its subcomponents
func Level3() []string { return slices.Clone(level3) }

// Exploratory returns the small candidate list used for quick sweeps
func Exploratory() []string { return slices.Clone(exploratory) }

// Lookup returns a copy of the named component level
func Lookup(level string) ([]string, error) {
	vars, exists := levels[level]
	if !exists {
		return nil, fmt.Errorf("%q, valid levels are %v, %w", level, Levels(), ErrUnknownLevel)
	}
	return slices.Clone(vars), nil
}

// Levels lists the names accepted by Lookup
func Levels() []string {
	names := make([]string, 0, len(levels))
	for name := range levels {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsVariable reports whether name is a known FPED predictor
func IsVariable(name string) bool {
	return slices.Contains(allVariables, name)
}

// Resolve interprets a level name or a comma separated list of column names. Names outside
// the FPED universe are allowed so other survey columns can be tested.
func Resolve(spec string) ([]string, error) {
	spec = strings.TrimSpace(spec)
	if vars, exists := levels[spec]; exists {
		return slices.Clone(vars), nil
	}

	var vars []string
	seen := make(map[string]struct{})
	for _, name := range strings.Split(spec, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, exists := seen[name]; exists {
			return nil, fmt.Errorf("%s, %w", name, ErrDuplicateName)
		}
		seen[name] = struct{}{}
		vars = append(vars, name)
	}
	if len(vars) == 0 {
		return nil, ErrNoVariables
	}
	return vars, nil
}
