package extract

import (
	"fmt"

	"github.com/goliatone/go-managed/pkg/schema"
)

// Validator runs after a schema has been assembled.
type Validator func(ctx *Context) error

// Context tracks the type under extraction and the validators registered
// while extracting it.
type Context struct {
	typ        schema.Type
	parent     *Context
	property   string
	validators []Validator
}

// NewContext starts extraction of typ.
func NewContext(typ schema.Type) *Context {
	return &Context{typ: typ}
}

// Child starts extraction of the type of property within c.
func (c *Context) Child(property string, typ schema.Type) *Context {
	return &Context{typ: typ, parent: c, property: property}
}

// Type returns the type under extraction.
func (c *Context) Type() schema.Type {
	return c.typ
}

// Parent returns the enclosing context, or nil.
func (c *Context) Parent() *Context {
	return c.parent
}

// AddValidator registers fn to run once the schema is assembled.
func (c *Context) AddValidator(fn Validator) {
	if fn != nil {
		c.validators = append(c.validators, fn)
	}
}

// Validate runs validators in registration order and stops at the first
// failure.
func (c *Context) Validate() error {
	for _, fn := range c.validators {
		if err := fn(c); err != nil {
			return err
		}
	}
	return nil
}

// Describe renders the extraction path for error messages, such as
// "Address (type of property address of Person)".
func (c *Context) Describe() string {
	if c.parent == nil {
		return c.typ.Name
	}
	return fmt.Sprintf("%s (type of property %s of %s)", c.typ.Name, c.property, c.parent.Describe())
}

func (c *Context) invalid(property, rule string, err error) error {
	return &schema.InvalidSchemaError{
		Context:  c.Describe(),
		Type:     c.typ.Name,
		Property: property,
		Rule:     rule,
		Err:      err,
	}
}
