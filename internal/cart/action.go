package cart

import (
	"fmt"
	"strings"
)

// Kind names a consumer action.
type Kind string

const (
	KindAdd       Kind = "add"
	KindRemove    Kind = "remove"
	KindIncrement Kind = "inc"
	KindDecrement Kind = "dec"
	KindClear     Kind = "clear" // dismiss the auto-bundled notice
)

var kindAliases = map[string]Kind{
	"add":       KindAdd,
	"remove":    KindRemove,
	"rm":        KindRemove,
	"inc":       KindIncrement,
	"increment": KindIncrement,
	"dec":       KindDecrement,
	"decrement": KindDecrement,
	"clear":     KindClear,
	"dismiss":   KindClear,
}

// Action is one input event from the consumer.
type Action struct {
	Kind   Kind
	ItemID string // empty for KindClear
}

// Mutates reports whether the action edits cart lines.
func (a Action) Mutates() bool {
	return a.Kind != KindClear
}

// String renders the action in the form ParseAction reads, e.g. "add:sg1".
func (a Action) String() string {
	if a.ItemID == "" {
		return string(a.Kind)
	}
	return string(a.Kind) + ":" + a.ItemID
}

// ParseError reports unparseable action text.
type ParseError struct {
	Input   string
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid action %q: %s", e.Input, e.Message)
}

// ParseAction reads "add:sg1", "add sg1", "increment:ln1" or "clear".
// Item ids are not checked against a catalog; unknown ids are no-ops in
// the engine.
func ParseAction(input string) (Action, error) {
	text := strings.TrimSpace(input)
	if text == "" {
		return Action{}, &ParseError{Input: input, Message: "empty"}
	}

	verb, item, _ := strings.Cut(text, ":")
	if !strings.Contains(text, ":") {
		fields := strings.Fields(text)
		verb = fields[0]
		item = ""
		if len(fields) > 2 {
			return Action{}, &ParseError{Input: input, Message: "too many fields"}
		}
		if len(fields) == 2 {
			item = fields[1]
		}
	}
	verb = strings.ToLower(strings.TrimSpace(verb))
	item = strings.TrimSpace(item)

	kind, ok := kindAliases[verb]
	if !ok {
		return Action{}, &ParseError{Input: input, Message: fmt.Sprintf("unknown verb %q", verb)}
	}
	if kind == KindClear {
		if item != "" {
			return Action{}, &ParseError{Input: input, Message: "clear takes no item"}
		}
		return Action{Kind: kind}, nil
	}
	if item == "" {
		return Action{}, &ParseError{Input: input, Message: fmt.Sprintf("%s needs an item id", kind)}
	}
	return Action{Kind: kind, ItemID: item}, nil
}

// ParseActions parses each input in order, stopping at the first error.
func ParseActions(inputs []string) ([]Action, error) {
	out := make([]Action, 0, len(inputs))
	for _, in := range inputs {
		a, err := ParseAction(in)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}
