package resources

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"hr-portal/internal/domain/apperr"
)

// ErrInvalidIdentifier es un error de validación: se mapea a 400.
var ErrInvalidIdentifier = fmt.Errorf("%w: invalid identifier", apperr.ErrInvalidInput)

type prefixDef struct {
	Type   Type
	Prefix string
	Pad    int // dígitos mínimos al codificar; 0 = sin padding
}

var prefixTable = []prefixDef{
	{Type: TypeDepartment, Prefix: "D-", Pad: 2},
	{Type: TypeEmployee, Prefix: "E-", Pad: 0},
	{Type: TypeCandidate, Prefix: "C-", Pad: 3},
	{Type: TypeJobApplication, Prefix: "APP-", Pad: 3},
	{Type: TypeLeaveRequest, Prefix: "L-", Pad: 0},
}

// decodeOrder: prefijo más largo primero.
var decodeOrder = func() []prefixDef {
	out := append([]prefixDef(nil), prefixTable...)
	sort.SliceStable(out, func(i, j int) bool {
		return len(out[i].Prefix) > len(out[j].Prefix)
	})
	return out
}()

func defFor(t Type) (prefixDef, bool) {
	for _, s := range prefixTable {
		if s.Type == t {
			return s, true
		}
	}
	return prefixDef{}, false
}

// Prefix devuelve el prefijo externo del tipo ("" si no existe).
func Prefix(t Type) string {
	s, _ := defFor(t)
	return s.Prefix
}

// Encode arma el id externo (D-07, E-132, C-004, APP-021, L-9).
// El padding es cosmético; Decode acepta cualquier cantidad de ceros.
func Encode(t Type, id int64) string {
	s, ok := defFor(t)
	if !ok {
		return strconv.FormatInt(id, 10)
	}
	if s.Pad > 0 {
		return fmt.Sprintf("%s%0*d", s.Prefix, s.Pad, id)
	}
	return s.Prefix + strconv.FormatInt(id, 10)
}

// Decode separa prefijo y número. Falla con ErrInvalidIdentifier si no hay
// prefijo conocido o el resto no es un entero no negativo.
func Decode(external string) (Type, int64, error) {
	external = strings.TrimSpace(external)
	if external == "" {
		return "", 0, ErrInvalidIdentifier
	}
	upper := strings.ToUpper(external)
	for _, s := range decodeOrder {
		if !strings.HasPrefix(upper, s.Prefix) {
			continue
		}
		id, err := parseNumber(external[len(s.Prefix):])
		if err != nil {
			return "", 0, err
		}
		return s.Type, id, nil
	}
	return "", 0, ErrInvalidIdentifier
}

// ParseID acepta el formato externo del tipo esperado o un número pelado.
// Un prefijo de otro tipo se rechaza.
func ParseID(t Type, raw string) (int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, ErrInvalidIdentifier
	}
	if id, err := parseNumber(raw); err == nil {
		return id, nil
	}
	got, id, err := Decode(raw)
	if err != nil {
		return 0, err
	}
	if got != t {
		return 0, fmt.Errorf("%w: %s is not a %s identifier", apperr.ErrInvalidInput, raw, t)
	}
	return id, nil
}

// ParseRef: tipo + id (externo o numérico), como llegan en el body de un access request.
func ParseRef(rawType, rawID string) (Ref, error) {
	rawID = strings.TrimSpace(rawID)
	if strings.TrimSpace(rawType) == "" {
		// Sin tipo explícito: el prefijo manda.
		if rawID == "" {
			return Ref{}, apperr.Invalid("resource type and id required")
		}
		t, id, err := Decode(rawID)
		if err != nil {
			return Ref{}, err
		}
		return Ref{Type: t, ID: id}, nil
	}

	t, err := ParseType(rawType)
	if err != nil {
		return Ref{}, err
	}
	if rawID == "" {
		return Ref{}, apperr.Invalid("resource id required")
	}
	id, err := ParseID(t, rawID)
	if err != nil {
		return Ref{}, err
	}
	return Ref{Type: t, ID: id}, nil
}

func parseNumber(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidIdentifier
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, ErrInvalidIdentifier
		}
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		// overflow
		return 0, ErrInvalidIdentifier
	}
	return id, nil
}
