package plugin

/*
#include "clap.h"
*/
import "C"

import (
	"fmt"
	"unsafe"
)

// Version is a CLAP ABI version triple.
type Version struct {
	Major    uint32
	Minor    uint32
	Revision uint32
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Revision)
}

// IsCompatible reports whether a plugin compiled against this ABI version can
// be driven by the validator. Any 1.x version is compatible.
func (v Version) IsCompatible() bool {
	return v.Major >= 1
}

// Metadata is an owned snapshot of a single plugin descriptor. All strings
// are copied out of plugin memory at scan time.
type Metadata struct {
	ID          string
	Name        string
	Version     string
	Vendor      string
	Description string
	ManualURL   string
	SupportURL  string
	Features    []string
}

// LibraryMetadata is the scan result for one plugin library.
type LibraryMetadata struct {
	Version Version
	Plugins []Metadata
}

// Plugin returns the metadata entry with the given id, or nil.
func (m *LibraryMetadata) Plugin(id string) *Metadata {
	for i := range m.Plugins {
		if m.Plugins[i].ID == id {
			return &m.Plugins[i]
		}
	}
	return nil
}

// metadataFromDescriptor copies a clap_plugin_descriptor into owned Go
// strings. The descriptor's id and name are required by the ABI; the rest
// may be null or empty.
func metadataFromDescriptor(desc *C.clap_plugin_descriptor_t) (Metadata, error) {
	if desc == nil {
		return Metadata{}, fmt.Errorf("plugin returned a null descriptor")
	}
	if desc.id == nil || C.GoString(desc.id) == "" {
		return Metadata{}, fmt.Errorf("plugin descriptor has an empty id")
	}

	return Metadata{
		ID:          C.GoString(desc.id),
		Name:        cstrOr(desc.name),
		Version:     cstrOr(desc.version),
		Vendor:      cstrOr(desc.vendor),
		Description: cstrOr(desc.description),
		ManualURL:   cstrOr(desc.manual_url),
		SupportURL:  cstrOr(desc.support_url),
		Features:    cstrArray(desc.features),
	}, nil
}

// cstrOr converts a possibly-null C string, returning "" for null.
func cstrOr(s *C.char) string {
	if s == nil {
		return ""
	}
	return C.GoString(s)
}

// cstrArray converts a null-terminated array of C strings.
func cstrArray(arr **C.char) []string {
	if arr == nil {
		return nil
	}
	var out []string
	for p := arr; *p != nil; p = (**C.char)(unsafe.Add(unsafe.Pointer(p), unsafe.Sizeof(*p))) {
		out = append(out, C.GoString(*p))
	}
	return out
}
