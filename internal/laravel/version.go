// Package laravel covers the application-source concerns of a run:
// the Laravel version menu, source-tree materialization through a
// throwaway composer container, composer.json inspection, and .env
// seeding.
package laravel

import (
	"strconv"
	"strings"
)

// Version is one entry of the Laravel version menu.
type Version struct {
	// Choice is the 1-based menu number.
	Choice int

	// Label is the display name shown in the menu.
	Label string

	// Constraint is the composer version constraint passed to
	// create-project.
	Constraint string
}

// Versions is the fixed version menu, in display order. Older majors are
// kept selectable because their PHP requirements differ (see the PHP
// compatibility notes in the README) and teams pinned to an older PHP
// still need them.
var Versions = []Version{
	{Choice: 1, Label: "Laravel 7", Constraint: "^7.0"},
	{Choice: 2, Label: "Laravel 8", Constraint: "^8.0"},
	{Choice: 3, Label: "Laravel 9", Constraint: "^9.0"},
	{Choice: 4, Label: "Laravel 10", Constraint: "^10.0"},
	{Choice: 5, Label: "Laravel 11", Constraint: "^11.0"},
	{Choice: 6, Label: "Laravel 12", Constraint: "^12.0"},
}

// DefaultVersion is the menu default: the latest supported major.
// An empty answer selects it silently; an out-of-range answer falls back
// to it with a warning.
var DefaultVersion = Versions[len(Versions)-1]

// ResolveChoice maps raw menu input to a Version.
//
// The returned bool reports whether the input was invalid and the
// default was substituted (the caller prints a warning in that case).
// An empty answer is a valid way to accept the default, not a fallback.
func ResolveChoice(input string) (Version, bool) {
	input = strings.TrimSpace(input)
	if input == "" {
		return DefaultVersion, false
	}

	choice, err := strconv.Atoi(input)
	if err != nil || choice < 1 || choice > len(Versions) {
		return DefaultVersion, true
	}
	return Versions[choice-1], false
}

// VersionByConstraint returns the menu entry matching a constraint
// string, for resolving the --laravel flag. Unknown constraints are
// passed through as-is so operators can request e.g. "11.x-dev".
func VersionByConstraint(constraint string) Version {
	for _, v := range Versions {
		if v.Constraint == constraint {
			return v
		}
	}
	return Version{Label: "Laravel (" + constraint + ")", Constraint: constraint}
}
