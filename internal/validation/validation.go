package validation

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// FieldError describes a single constraint violation on an input field.
// The JSON shape (campo/mensagem/valorRecebido) is part of the public API.
type FieldError struct {
	Campo         string `json:"campo"`
	Mensagem      string `json:"mensagem"`
	ValorRecebido any    `json:"valorRecebido"`
}

// Errors accumulates every violation found in a payload, in field order,
// so one response can report all problems at once.
type Errors []FieldError

func (e Errors) Error() string {
	if len(e) == 0 {
		return "dados inválidos"
	}
	campos := make([]string, len(e))
	for i, fe := range e {
		campos[i] = fe.Campo
	}
	return fmt.Sprintf("dados inválidos: %s", strings.Join(campos, ", "))
}

func (e *Errors) Add(campo, mensagem string, valorRecebido any) {
	*e = append(*e, FieldError{Campo: campo, Mensagem: mensagem, ValorRecebido: valorRecebido})
}

// Mode selects full-payload or partial-payload validation.
type Mode int

const (
	// Full requires every required field to be present.
	Full Mode = iota
	// Partial validates only the fields present in the payload.
	Partial
)

// StringRule is the trim -> length-check pipeline shared by every textual
// field of the API.
type StringRule struct {
	Campo     string
	Min       int
	Max       int
	Required  string // message when the field is missing in Full mode
	TooShort  string
	TooLong   string
	Lowercase bool
}

// Apply runs the rule over an optional raw value. It returns the normalized
// value and whether it should be written by the caller. nil raw means the
// field was absent from the payload.
func (r StringRule) Apply(errs *Errors, raw *string, mode Mode) (string, bool) {
	if raw == nil {
		if mode == Full {
			errs.Add(r.Campo, r.Required, nil)
		}
		return "", false
	}
	v := strings.TrimSpace(*raw)
	if r.Lowercase {
		v = strings.ToLower(v)
	}
	if len([]rune(v)) < r.Min {
		errs.Add(r.Campo, r.TooShort, *raw)
		return "", false
	}
	if len([]rune(v)) > r.Max {
		errs.Add(r.Campo, r.TooLong, *raw)
		return "", false
	}
	return v, true
}

// dateLayouts accepted for dataDeIncorporacao, tried in order.
var dateLayouts = []string{"2006-01-02", time.RFC3339}

// ParseDate coerces a raw date string into a time value, trying the
// accepted layouts in order.
func ParseDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// IsUUID reports whether raw is a canonical 36-character UUID string.
func IsUUID(raw string) bool {
	if len(raw) != 36 {
		return false
	}
	_, err := uuid.Parse(raw)
	return err == nil
}
