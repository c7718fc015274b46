package unitmod

import (
	"fmt"
	"strings"
	"sync"
)

// ParamDef declares one parameter: its name, type, default value, permission
// and a human-readable description.
type ParamDef struct {
	Name        string
	Type        ParamType
	Default     Value
	Perm        Permission
	Description string
}

// IntParam declares an integer parameter.
func IntParam(name string, def int64, perm Permission, description string) ParamDef {
	return ParamDef{Name: name, Type: ParamInt, Default: IntValue(def), Perm: perm, Description: description}
}

// StringParam declares a string parameter.
func StringParam(name, def string, perm Permission, description string) ParamDef {
	return ParamDef{Name: name, Type: ParamString, Default: StringValue(def), Perm: perm, Description: description}
}

// ParamInfo is a point-in-time description of a parameter and its value.
type ParamInfo struct {
	Name        string
	Type        ParamType
	Perm        Permission
	Description string
	Value       Value
}

// ParamReader reads parameters while the store lock is already held. It is
// only valid inside the View callback that produced it.
type ParamReader interface {
	Read(name string) (Value, error)
	Int(name string) (int64, error)
	Text(name string) (string, error)
}

type param struct {
	def   ParamDef
	value Value
}

// Store holds a fixed set of parameters. A single mutex guards every
// parameter; it is held for the duration of one call only.
type Store struct {
	mu     sync.Mutex
	params map[string]*param
	order  []string
}

// NewStore builds a store from the given definitions. Each value starts at
// its default, so a unit's Init always sees a fully populated store.
func NewStore(defs ...ParamDef) (*Store, error) {
	s := &Store{
		params: make(map[string]*param, len(defs)),
		order:  make([]string, 0, len(defs)),
	}
	for _, def := range defs {
		if strings.TrimSpace(def.Name) == "" {
			return nil, paramErr(def.Name, "define", ErrInvalidParamName)
		}
		if _, exists := s.params[def.Name]; exists {
			return nil, paramErr(def.Name, "define", ErrDuplicateParam)
		}
		if def.Type != ParamInt && def.Type != ParamString {
			return nil, paramErr(def.Name, "define", fmt.Errorf("%w: unsupported type %d", ErrTypeMismatch, def.Type))
		}
		if def.Default.Type() != def.Type {
			return nil, paramErr(def.Name, "define", fmt.Errorf("%w: default is %s, parameter is %s",
				ErrTypeMismatch, def.Default.Type(), def.Type))
		}
		def.Default = def.Default.clone()
		s.params[def.Name] = &param{def: def, value: def.Default.clone()}
		s.order = append(s.order, def.Name)
	}
	return s, nil
}

// Read returns a copy of the named parameter's value.
func (s *Store) Read(name string) (Value, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readLocked(name)
}

// ReadInt reads an integer parameter.
func (s *Store) ReadInt(name string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.intLocked(name)
}

// ReadText reads a string parameter as text. Bytes that are not valid UTF-8
// yield ErrEncoding, which is distinct from ErrParamNotFound.
func (s *Store) ReadText(name string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.textLocked(name)
}

// View runs fn with the store lock held once, for reading several parameters
// consistently. The lock is released on every exit path. fn must not call
// back into the store or keep the reader after it returns.
func (s *Store) View(fn func(ParamReader) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(lockedReader{s})
}

// Write replaces a parameter's value. It fails with ErrPermissionDenied if the
// parameter's permission has no write bit, and with ErrTypeMismatch if v has
// a different type. On error the stored value is unchanged.
func (s *Store) Write(name string, v Value) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.params[name]
	if !ok {
		return paramErr(name, "write", ErrParamNotFound)
	}
	if !p.def.Perm.Writable() {
		return paramErr(name, "write", ErrPermissionDenied)
	}
	if v.Type() != p.def.Type {
		return paramErr(name, "write", ErrTypeMismatch)
	}
	p.value = v.clone()
	return nil
}

// WriteText parses text into the parameter's type and writes it.
func (s *Store) WriteText(name, text string) error {
	def, err := s.Describe(name)
	if err != nil {
		return err
	}
	v, err := ParseValue(def.Type, text)
	if err != nil {
		return paramErr(name, "write", err)
	}
	return s.Write(name, v)
}

// Describe returns the definition of the named parameter.
func (s *Store) Describe(name string) (ParamDef, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.params[name]
	if !ok {
		return ParamDef{}, paramErr(name, "describe", ErrParamNotFound)
	}
	def := p.def
	def.Default = def.Default.clone()
	return def, nil
}

// Names returns the parameter names in definition order.
func (s *Store) Names() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Len returns the number of parameters.
func (s *Store) Len() int {
	return len(s.order)
}

// Snapshot returns every parameter and its current value, taken under a
// single lock acquisition.
func (s *Store) Snapshot() []ParamInfo {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]ParamInfo, 0, len(s.order))
	for _, name := range s.order {
		p := s.params[name]
		out = append(out, ParamInfo{
			Name:        name,
			Type:        p.def.Type,
			Perm:        p.def.Perm,
			Description: p.def.Description,
			Value:       p.value.clone(),
		})
	}
	return out
}

func (s *Store) readLocked(name string) (Value, error) {
	p, ok := s.params[name]
	if !ok {
		return Value{}, paramErr(name, "read", ErrParamNotFound)
	}
	return p.value.clone(), nil
}

func (s *Store) intLocked(name string) (int64, error) {
	p, ok := s.params[name]
	if !ok {
		return 0, paramErr(name, "read int", ErrParamNotFound)
	}
	n, err := p.value.Int()
	if err != nil {
		return 0, paramErr(name, "read int", err)
	}
	return n, nil
}

func (s *Store) textLocked(name string) (string, error) {
	p, ok := s.params[name]
	if !ok {
		return "", paramErr(name, "read text", ErrParamNotFound)
	}
	text, err := p.value.Text()
	if err != nil {
		return "", paramErr(name, "read text", err)
	}
	return text, nil
}

type lockedReader struct {
	s *Store
}

func (r lockedReader) Read(name string) (Value, error)  { return r.s.readLocked(name) }
func (r lockedReader) Int(name string) (int64, error)   { return r.s.intLocked(name) }
func (r lockedReader) Text(name string) (string, error) { return r.s.textLocked(name) }

// applyOverrides returns a copy of defs with defaults replaced by the given
// text values. Unknown names are passed to unknown and otherwise ignored.
func applyOverrides(defs []ParamDef, overrides map[string]string, unknown func(name string)) ([]ParamDef, error) {
	out := make([]ParamDef, len(defs))
	copy(out, defs)
	if len(overrides) == 0 {
		return out, nil
	}

	index := make(map[string]int, len(out))
	for i, def := range out {
		index[def.Name] = i
	}
	for name, text := range overrides {
		i, ok := index[name]
		if !ok {
			if unknown != nil {
				unknown(name)
			}
			continue
		}
		v, err := ParseValue(out[i].Type, text)
		if err != nil {
			return nil, paramErr(name, "override", err)
		}
		out[i].Default = v
	}
	return out, nil
}
