package catalog

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/solaris/internal/money"
)

//go:embed schema.cue
var schemaSource string

//go:embed solaris.cue
var defaultSource []byte

// Error is a catalog definition or validation failure.
type Error struct {
	Field   string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *Error) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Load reads a catalog override from a .cue file.
func Load(path string) (*Catalog, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Compile(filepath.Base(path), src)
}

// Compile parses CUE source, unifies it with the catalog schema and
// builds a validated Catalog.
func Compile(filename string, src []byte) (*Catalog, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaSource, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("catalog schema: %w", err)
	}

	data := ctx.CompileBytes(src, cue.Filename(filename))
	if err := data.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	v := schema.LookupPath(cue.ParsePath("#Catalog")).Unify(data)
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return nil, formatCUEError(err)
	}

	list, err := v.LookupPath(cue.ParsePath("items")).List()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var items []Item
	for list.Next() {
		it, err := parseItem(list.Value())
		if err != nil {
			return nil, err
		}
		items = append(items, it)
	}

	c, err := New(items...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return c, nil
}

func parseItem(v cue.Value) (Item, error) {
	var it Item
	var err error

	if it.ID, err = requiredString(v, "id"); err != nil {
		return Item{}, err
	}
	if it.Name, err = requiredString(v, "name"); err != nil {
		return Item{}, err
	}
	role, err := requiredString(v, "role")
	if err != nil {
		return Item{}, err
	}
	it.Role = Role(role)

	price, err := requiredString(v, "price")
	if err != nil {
		return Item{}, err
	}
	if it.Price, err = money.Parse(price); err != nil {
		return Item{}, &Error{Field: "price", Message: err.Error(), Pos: v.Pos()}
	}

	it.Tagline = optionalString(v, "tagline")
	it.Description = optionalString(v, "description")
	return it, nil
}

func requiredString(v cue.Value, field string) (string, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return "", &Error{Field: field, Message: field + " is required", Pos: v.Pos()}
	}
	s, err := fv.String()
	if err != nil {
		return "", formatCUEError(err)
	}
	return s, nil
}

func optionalString(v cue.Value, field string) string {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return ""
	}
	s, err := fv.String()
	if err != nil {
		return ""
	}
	return s
}

// formatCUEError keeps the first CUE error and its position.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}
	first := errs[0]
	if positions := errors.Positions(first); len(positions) > 0 {
		return &Error{Field: "cue", Message: first.Error(), Pos: positions[0]}
	}
	return &Error{Field: "cue", Message: first.Error()}
}
