package prompt

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/goliatone/go-managed/pkg/extract"
	"github.com/goliatone/go-managed/pkg/instance"
	"github.com/goliatone/go-managed/pkg/provider"
	"github.com/goliatone/go-managed/pkg/schema"
)

// Annotation kinds read while prompting.
const (
	// AnnotationDescription supplies help text through its "text" parameter.
	AnnotationDescription = "description"
	// AnnotationOptions restricts a string property to the comma separated
	// "values" parameter.
	AnnotationOptions = "options"
	// AnnotationRequired rejects empty answers.
	AnnotationRequired = "required"
)

type valueKind int

const (
	kindUnsupported valueKind = iota
	kindString
	kindBool
	kindInt
	kindInt64
	kindFloat
)

func kindOf(valueType string) valueKind {
	switch valueType {
	case "string":
		return kindString
	case "bool", "boolean":
		return kindBool
	case "int", "integer":
		return kindInt
	case "int64":
		return kindInt64
	case "float64", "number":
		return kindFloat
	default:
		return kindUnsupported
	}
}

// Option configures a Filler.
type Option func(*Filler)

// WithDriver overrides the prompt driver.
func WithDriver(driver Driver) Option {
	return func(f *Filler) {
		if driver != nil {
			f.driver = driver
		}
	}
}

// WithSanitizer normalises string answers before they are stored.
func WithSanitizer(sanitizer provider.Sanitizer) Option {
	return func(f *Filler) {
		if sanitizer != nil {
			f.sanitizer = sanitizer
		}
	}
}

// WithLogger injects a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Filler) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// Filler asks for the writable scalar properties of an instance and stores
// the answers through it.
type Filler struct {
	driver    Driver
	sanitizer provider.Sanitizer
	logger    *slog.Logger
}

// NewFiller constructs a Filler. The survey driver is used unless another
// is supplied.
func NewFiller(options ...Option) *Filler {
	f := &Filler{
		sanitizer: provider.IdentitySanitizer,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range options {
		if opt != nil {
			opt(f)
		}
	}
	if f.driver == nil {
		f.driver = NewSurveyDriver(nil)
	}
	return f
}

// Fill prompts for every writable property of p using driver.
func Fill(ctx context.Context, driver Driver, p *instance.Proxy) ([]string, error) {
	return NewFiller(WithDriver(driver)).Fill(ctx, p)
}

// Fill prompts for every writable scalar property of p in schema order and
// returns the names of the properties it set.
func (f *Filler) Fill(ctx context.Context, p *instance.Proxy) ([]string, error) {
	if p == nil {
		return nil, ErrInstanceRequired
	}
	s := p.Schema()
	var constraints extract.ConstraintAspect
	if aspect, ok := s.Aspect(extract.ConstraintAspect{}.Name()); ok {
		constraints, _ = aspect.(extract.ConstraintAspect)
	}

	var filled []string
	for _, property := range s.Properties() {
		if !property.Writable() {
			continue
		}
		kind := kindOf(property.ValueType)
		if kind == kindUnsupported {
			f.logger.Debug("skipping property", "instance", p.DisplayName(), "property", property.Name, "type", property.ValueType)
			continue
		}

		q := question{
			owner:       provider.Describable(p.DisplayName() + "." + property.Name),
			property:    property,
			kind:        kind,
			constraints: constraints.For(property.Name),
			sanitizer:   f.sanitizer,
		}
		value, ok, err := f.ask(ctx, p, q)
		if err != nil {
			return filled, err
		}
		if !ok {
			continue
		}
		if err := p.Set(property.Name, value); err != nil {
			return filled, fmt.Errorf("prompt: set %s: %w", property.Name, err)
		}
		filled = append(filled, property.Name)
	}
	return filled, nil
}

func (f *Filler) ask(ctx context.Context, p *instance.Proxy, q question) (any, bool, error) {
	current := currentValue(p, q.property.Name)
	help := ""
	if a, ok := q.property.Annotations.Get(AnnotationDescription); ok {
		help = a.Params["text"]
	}
	message := q.property.Name

	if q.kind == kindBool {
		def, _ := current.(bool)
		answer, err := f.driver.Confirm(ctx, ConfirmConfig{Message: message, Default: def, Help: help})
		if err != nil {
			return nil, false, err
		}
		return answer, true, nil
	}

	if choices := q.options(); len(choices) > 0 {
		def := indexOf(choices, fmt.Sprint(current))
		if def < 0 {
			def = 0
		}
		idx, err := f.driver.Select(ctx, SelectConfig{Message: message, Options: choices, DefaultIndex: def, Help: help})
		if err != nil {
			return nil, false, err
		}
		if idx < 0 || idx >= len(choices) {
			return nil, false, fmt.Errorf("prompt: %s: selection %d out of range", q.property.Name, idx)
		}
		value, err := q.parse(choices[idx])
		return value, err == nil, err
	}

	def := ""
	if current != nil {
		def = fmt.Sprint(current)
	}
	for {
		raw, err := f.driver.Input(ctx, InputConfig{
			Message:   message,
			Default:   def,
			Help:      help,
			Validator: q.validate,
		})
		if err != nil {
			return nil, false, err
		}
		raw = strings.TrimSpace(raw)
		if raw == "" && !q.required() {
			return nil, false, nil
		}
		value, err := q.parse(raw)
		if err != nil {
			_ = f.driver.Info(ctx, fmt.Sprintf("Invalid %s: %v", q.property.Name, err))
			continue
		}
		return value, true, nil
	}
}

func currentValue(p *instance.Proxy, name string) any {
	supplier, err := p.Get(name)
	if err != nil {
		return nil
	}
	value, _ := supplier.Value()
	return value
}

// question holds everything needed to turn one answer into a property value.
type question struct {
	owner       provider.DisplayName
	property    *schema.Property
	kind        valueKind
	constraints []extract.Constraint
	sanitizer   provider.Sanitizer
}

func (q question) required() bool {
	return q.property.Annotations.Has(AnnotationRequired)
}

func (q question) options() []string {
	a, ok := q.property.Annotations.Get(AnnotationOptions)
	if !ok {
		return nil
	}
	var out []string
	for _, v := range strings.Split(a.Params["values"], ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func (q question) validate(raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" && !q.required() {
		return nil
	}
	_, err := q.parse(raw)
	return err
}

// parse converts raw into the property's value type and checks constraints.
func (q question) parse(raw string) (any, error) {
	if raw == "" {
		return nil, errors.New("a value is required")
	}
	switch q.kind {
	case kindString:
		supplier, err := provider.FixedOf[string](q.owner, raw, q.sanitizer)
		if err != nil {
			return nil, err
		}
		value, err := supplier.Get()
		if err != nil {
			return nil, err
		}
		return value, q.check(value, float64(utf8.RuneCountInString(value)), false)
	case kindInt:
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("%q is not an integer", raw)
		}
		return n, q.check(raw, float64(n), true)
	case kindInt64:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%q is not an integer", raw)
		}
		return n, q.check(raw, float64(n), true)
	case kindFloat:
		n, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("%q is not a number", raw)
		}
		return n, q.check(raw, n, true)
	default:
		return nil, fmt.Errorf("unsupported value type %s", q.property.ValueType)
	}
}

// check applies constraints. size is the numeric value for numbers and the
// rune count for strings.
func (q question) check(text string, size float64, numeric bool) error {
	for _, c := range q.constraints {
		bound, _ := strconv.ParseFloat(c.Value, 64)
		switch c.Kind {
		case extract.AnnotationMin:
			if numeric && size < bound {
				return fmt.Errorf("must be at least %s", c.Value)
			}
		case extract.AnnotationMax:
			if numeric && size > bound {
				return fmt.Errorf("must be at most %s", c.Value)
			}
		case extract.AnnotationMinLength:
			if !numeric && size < bound {
				return fmt.Errorf("must be at least %s characters", c.Value)
			}
		case extract.AnnotationMaxLength:
			if !numeric && size > bound {
				return fmt.Errorf("must be at most %s characters", c.Value)
			}
		case extract.AnnotationPattern:
			re, err := regexp.Compile(c.Value)
			if err != nil {
				return err
			}
			if !re.MatchString(text) {
				return fmt.Errorf("must match %s", c.Value)
			}
		}
	}
	return nil
}
