package plugin

/*
#include <stdlib.h>
#include "bridge.h"
*/
import "C"

import (
	"fmt"
	"unsafe"
)

// ParamInfo is an owned copy of one clap_param_info record.
type ParamInfo struct {
	ID      uint32
	Flags   uint32
	Cookie  unsafe.Pointer
	Name    string
	Module  string
	Min     float64
	Max     float64
	Default float64
}

// IsStepped reports whether the parameter only takes integer values.
func (pi ParamInfo) IsStepped() bool { return pi.Flags&ParamIsStepped != 0 }

// IsReadonly reports whether the host must not change the parameter.
func (pi ParamInfo) IsReadonly() bool { return pi.Flags&ParamIsReadonly != 0 }

// Params wraps the plugin-side params extension.
type Params struct {
	plugin *Plugin
	ext    *C.clap_plugin_params_t
}

// Count returns the number of parameters.
func (p *Params) Count() uint32 {
	return uint32(C.clapval_params_count(p.ext, p.plugin.raw))
}

// Info copies the info record at index.
func (p *Params) Info(index uint32) (ParamInfo, error) {
	var raw C.clap_param_info_t
	if !bool(C.clapval_params_get_info(p.ext, p.plugin.raw, C.uint32_t(index), &raw)) {
		return ParamInfo{}, fmt.Errorf("get_info failed for parameter index %d", index)
	}
	return ParamInfo{
		ID:      uint32(raw.id),
		Flags:   uint32(raw.flags),
		Cookie:  raw.cookie,
		Name:    C.GoString(&raw.name[0]),
		Module:  C.GoString(&raw.module[0]),
		Min:     float64(raw.min_value),
		Max:     float64(raw.max_value),
		Default: float64(raw.default_value),
	}, nil
}

// Infos copies every info record, index order.
func (p *Params) Infos() ([]ParamInfo, error) {
	count := p.Count()
	infos := make([]ParamInfo, 0, count)
	for i := uint32(0); i < count; i++ {
		info, err := p.Info(i)
		if err != nil {
			return nil, err
		}
		infos = append(infos, info)
	}
	return infos, nil
}

// Value reads the current value of a parameter by id.
func (p *Params) Value(id uint32) (float64, error) {
	var out C.double
	if !bool(C.clapval_params_get_value(p.ext, p.plugin.raw, C.clap_id(id), &out)) {
		return 0, fmt.Errorf("get_value failed for parameter %d", id)
	}
	return float64(out), nil
}

// Values reads the current value of every parameter in infos, keyed by id.
func (p *Params) Values(infos []ParamInfo) (map[uint32]float64, error) {
	values := make(map[uint32]float64, len(infos))
	for _, info := range infos {
		v, err := p.Value(info.ID)
		if err != nil {
			return nil, err
		}
		values[info.ID] = v
	}
	return values, nil
}

// ValueToText formats a value, reporting whether the plugin supports the
// conversion at all.
func (p *Params) ValueToText(id uint32, value float64) (string, bool) {
	buf := (*C.char)(C.calloc(C.CLAP_NAME_SIZE, 1))
	defer C.free(unsafe.Pointer(buf))
	if !bool(C.clapval_params_value_to_text(p.ext, p.plugin.raw, C.clap_id(id), C.double(value), buf, C.CLAP_NAME_SIZE)) {
		return "", false
	}
	return C.GoString(buf), true
}

// TextToValue parses a display string back into a value.
func (p *Params) TextToValue(id uint32, text string) (float64, bool) {
	cText := C.CString(text)
	defer C.free(unsafe.Pointer(cText))
	var out C.double
	if !bool(C.clapval_params_text_to_value(p.ext, p.plugin.raw, C.clap_id(id), cText, &out)) {
		return 0, false
	}
	return float64(out), true
}

// Flush delivers queued parameter events outside of process. Legal on the
// main thread while the plugin is not processing.
func (p *Params) Flush(in *EventQueue, out *OutEventQueue) {
	C.clapval_params_flush(p.ext, p.plugin.raw, in.clapList(), out.clapList())
}
