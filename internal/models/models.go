// Package models defines the closed set of chat models the token counter
// knows how to price and label.
package models

import (
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// ID identifies a chat model. Only the values in Supported are ever produced
// by this module, but reports received from elsewhere may carry other keys.
type ID string

const (
	GPT4oMini    ID = openai.GPT4oMini
	GPT4o        ID = openai.GPT4o
	GPT4Dot1Mini ID = openai.GPT4Dot1Mini
)

// Fallback is used whenever no model has been chosen or a requested model
// is not supported.
const Fallback = GPT4oMini

// Supported lists the selectable models in display order.
var Supported = []ID{GPT4oMini, GPT4o, GPT4Dot1Mini}

var labels = map[ID]string{
	GPT4oMini:    "GPT-4o Mini",
	GPT4o:        "GPT-4o",
	GPT4Dot1Mini: "GPT-4.1 Mini",
}

// Price is a per-million-token price pair in USD.
type Price struct {
	Input  float64 `yaml:"input" json:"input"`
	Output float64 `yaml:"output" json:"output"`
}

var prices = map[ID]Price{
	GPT4oMini:    {Input: 0.15, Output: 0.60},
	GPT4o:        {Input: 5.00, Output: 15.00},
	GPT4Dot1Mini: {Input: 0.30, Output: 1.20},
}

// Known reports whether id belongs to the supported set.
func (id ID) Known() bool {
	_, ok := labels[id]
	return ok
}

// Label returns the human readable name, or "" for unknown identifiers.
func (id ID) Label() string {
	return labels[id]
}

// String implements fmt.Stringer
func (id ID) String() string {
	return string(id)
}

// Parse converts s into a supported ID.
func Parse(s string) (ID, error) {
	id := ID(s)
	if !id.Known() {
		return "", fmt.Errorf("unsupported model %q (must be one of %v)", s, Supported)
	}
	return id, nil
}

// Normalize returns id when supported and Fallback otherwise.
func Normalize(id ID) ID {
	if id.Known() {
		return id
	}
	return Fallback
}

// PriceFor returns the price of id, falling back to the Fallback price.
func PriceFor(id ID) Price {
	if p, ok := prices[id]; ok {
		return p
	}
	return prices[Fallback]
}

// Index returns the display position of id, or len(Supported) for unknown ids.
func Index(id ID) int {
	for i, s := range Supported {
		if s == id {
			return i
		}
	}
	return len(Supported)
}

// Next returns the model after id in display order, wrapping around.
func Next(id ID) ID {
	i := Index(id)
	if i >= len(Supported) {
		return Supported[0]
	}
	return Supported[(i+1)%len(Supported)]
}
