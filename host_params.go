package unitmod

import "fmt"

// The methods below are the operator-facing parameter surface. Unlike the
// unit's own Store calls they honour read permissions: a parameter without a
// read bit is invisible to operators.

// unknownParamLabel stands in for caller-supplied names that do not resolve
// to a visible parameter, keeping metric cardinality bounded.
const unknownParamLabel = "unknown"

// describeVisible returns the definition of a parameter operators may see. A
// parameter with permission 0 is reported as not found.
func describeVisible(store *Store, param string) (ParamDef, error) {
	def, err := store.Describe(param)
	if err != nil {
		return ParamDef{}, err
	}
	if def.Perm == 0 {
		return ParamDef{}, paramErr(param, "describe", ErrParamNotFound)
	}
	return def, nil
}

// ReadParam returns a parameter's value for an operator.
func (h *Host) ReadParam(unit, param string) (Value, error) {
	store, err := h.store(unit)
	if err != nil {
		return Value{}, err
	}
	def, err := describeVisible(store, param)
	if err != nil {
		return Value{}, err
	}
	if !def.Perm.Readable() {
		return Value{}, paramErr(param, "read", ErrPermissionDenied)
	}
	return store.Read(param)
}

// ListParams returns the operator-readable parameters of a unit.
func (h *Host) ListParams(unit string) ([]ParamInfo, error) {
	store, err := h.store(unit)
	if err != nil {
		return nil, err
	}
	all := store.Snapshot()
	out := make([]ParamInfo, 0, len(all))
	for _, info := range all {
		if info.Perm.Readable() {
			out = append(out, info)
		}
	}
	return out, nil
}

// WriteParam parses text into the parameter's type and writes it, subject to
// the parameter's write permission.
func (h *Host) WriteParam(unit, param, text string) error {
	store, err := h.store(unit)
	if err != nil {
		return err
	}
	def, err := describeVisible(store, param)
	if err != nil {
		h.metrics.paramWrite(unit, unknownParamLabel, err)
		h.logger.Debug("Parameter write refused", "unit", unit, "error", err)
		return err
	}
	err = store.WriteText(param, text)
	h.metrics.paramWrite(unit, param, err)
	if err != nil {
		h.logger.Debug("Parameter write refused", "unit", unit, "param", param, "error", err)
		return err
	}

	if !def.Perm.Readable() {
		h.logger.Info("Parameter changed", "unit", unit, "param", param)
		h.emitEvent(EventTypeParamChanged, ParamEventData{Unit: unit, Param: param})
		return nil
	}
	value, _ := store.Read(param)
	h.logger.Info("Parameter changed", "unit", unit, "param", param, "value", value.String())
	h.emitEvent(EventTypeParamChanged, ParamEventData{Unit: unit, Param: param, Value: value.String()})
	return nil
}

// Audit writes every loaded unit's operator-readable parameters to the host
// log.
func (h *Host) Audit() {
	for _, info := range h.Units() {
		store, err := h.store(info.Name)
		if err != nil {
			continue
		}
		for _, p := range store.Snapshot() {
			if !p.Perm.Readable() {
				continue
			}
			h.logger.Info("Parameter", "unit", info.Name, "param", p.Name, "type", p.Type, "perm", p.Perm, "value", p.Value.String())
		}
	}
}

func (h *Host) store(unit string) (*Store, error) {
	handle, ok := h.Unit(unit)
	if !ok {
		return nil, fmt.Errorf("unit %q: %w", unit, ErrUnitNotLoaded)
	}
	return handle.params, nil
}
