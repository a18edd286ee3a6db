package main

import "strings"

// globList accumulates repeated -runs GLOB flag values.
type globList []string

func (g *globList) String() string {
	if g == nil {
		return ""
	}
	return strings.Join(*g, ",")
}

func (g *globList) Set(value string) error {
	*g = append(*g, value)
	return nil
}
