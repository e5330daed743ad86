package plugin

/*
#cgo linux LDFLAGS: -ldl
#cgo darwin LDFLAGS: -framework CoreFoundation

#include <stdlib.h>
#include "bridge.h"
*/
import "C"

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"unsafe"
)

// ErrNoFactory is returned when a library does not expose the standard
// plugin factory.
var ErrNoFactory = errors.New("the plugin does not expose the plugin factory")

// LoadError describes why a plugin library could not be loaded. A path that
// produces a LoadError is reported once and skipped for further tests.
type LoadError struct {
	Path   string
	Reason string
	Err    error
}

func (e *LoadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("could not load %s: %s: %v", e.Path, e.Reason, e.Err)
	}
	return fmt.Sprintf("could not load %s: %s", e.Path, e.Reason)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Library owns a loaded CLAP shared object and its live entry point.
//
// clap_entry.init has been called exactly once by the time Load returns;
// Close calls clap_entry.deinit and then releases the OS handle, in that
// order. A Library must outlive every Plugin it created.
type Library struct {
	path   string
	handle unsafe.Pointer
	entry  *C.clap_plugin_entry_t
}

// Load opens the shared object at path, resolves clap_entry, and runs
// clap_entry.init with the absolute path. On any failure after the handle is
// opened, the handle is closed before returning.
func Load(path string) (*Library, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, &LoadError{Path: path, Reason: "could not resolve absolute path", Err: err}
	}
	if _, err := os.Stat(absPath); err != nil {
		return nil, &LoadError{Path: absPath, Reason: "path does not exist", Err: err}
	}

	handle, err := openNative(absPath, false)
	if err != nil {
		return nil, err
	}

	entry := C.clapval_lib_entry(handle)
	if entry == nil {
		C.clapval_lib_close(handle)
		return nil, &LoadError{Path: absPath, Reason: "the library does not expose a 'clap_entry' symbol"}
	}

	cPath := C.CString(absPath)
	defer C.free(unsafe.Pointer(cPath))
	if !bool(C.clapval_entry_init(entry, cPath)) {
		C.clapval_lib_close(handle)
		return nil, &LoadError{Path: absPath, Reason: "clap_plugin_entry::init() returned false"}
	}

	return &Library{path: absPath, handle: handle, entry: entry}, nil
}

// StrictBindingSupported reports whether the platform loader can resolve all
// symbols eagerly at open time. False on Windows, where imports are always
// resolved at load.
func StrictBindingSupported() bool {
	return C.clapval_lib_strict_supported() != 0
}

// OpenStrict re-opens the library at path with eager symbol binding and
// immediately closes it again. An error means the object carries unresolved
// symbols that lazy binding would only surface at call time.
func OpenStrict(path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return &LoadError{Path: path, Reason: "could not resolve absolute path", Err: err}
	}
	handle, err := openNative(absPath, true)
	if err != nil {
		return err
	}
	C.clapval_lib_close(handle)
	return nil
}

// openNative resolves macOS bundle paths and opens the shared object.
func openNative(absPath string, strict bool) (unsafe.Pointer, error) {
	libPath := absPath
	if runtime.GOOS == "darwin" && filepath.Ext(absPath) == ".clap" {
		cBundle := C.CString(absPath)
		exe := C.clapval_bundle_executable(cBundle)
		C.free(unsafe.Pointer(cBundle))
		if exe == nil {
			return nil, &LoadError{Path: absPath, Reason: "could not resolve the bundle executable"}
		}
		libPath = C.GoString(exe)
		C.free(unsafe.Pointer(exe))
	}

	cPath := C.CString(libPath)
	defer C.free(unsafe.Pointer(cPath))

	errBuf := make([]byte, 512)
	var handle unsafe.Pointer
	if strict {
		handle = C.clapval_lib_open_strict(cPath, (*C.char)(unsafe.Pointer(&errBuf[0])), C.size_t(len(errBuf)))
	} else {
		handle = C.clapval_lib_open(cPath, (*C.char)(unsafe.Pointer(&errBuf[0])), C.size_t(len(errBuf)))
	}
	if handle == nil {
		msg := string(errBuf[:clen(errBuf)])
		return nil, &LoadError{Path: absPath, Reason: fmt.Sprintf("OS loader refused the library: %s", msg)}
	}
	return handle, nil
}

// Path returns the absolute path the library was loaded from.
func (l *Library) Path() string { return l.path }

// Version returns the ABI version declared by the entry point.
func (l *Library) Version() Version {
	return Version{
		Major:    uint32(l.entry.clap_version.major),
		Minor:    uint32(l.entry.clap_version.minor),
		Revision: uint32(l.entry.clap_version.revision),
	}
}

// FactoryExists queries the entry point for a factory id and reports whether
// a non-null table came back.
func (l *Library) FactoryExists(factoryID string) bool {
	cID := C.CString(factoryID)
	defer C.free(unsafe.Pointer(cID))
	return C.clapval_entry_get_factory(l.entry, cID) != nil
}

// pluginFactory returns the standard plugin factory table, or nil.
func (l *Library) pluginFactory() *C.clap_plugin_factory_t {
	cID := C.CString(PluginFactoryID)
	defer C.free(unsafe.Pointer(cID))
	return (*C.clap_plugin_factory_t)(C.clapval_entry_get_factory(l.entry, cID))
}

// Metadata enumerates the factory's descriptors into an owned snapshot.
// Duplicate plugin ids are a hard error: a factory advertising the same id
// twice is unscannable.
func (l *Library) Metadata() (*LibraryMetadata, error) {
	factory := l.pluginFactory()
	if factory == nil {
		return nil, ErrNoFactory
	}

	meta := &LibraryMetadata{Version: l.Version()}
	seen := make(map[string]struct{})

	count := uint32(C.clapval_factory_count(factory))
	for i := uint32(0); i < count; i++ {
		desc := C.clapval_factory_descriptor(factory, C.uint32_t(i))
		if desc == nil {
			return nil, fmt.Errorf("the plugin returned a null descriptor for plugin index %d", i)
		}
		pm, err := metadataFromDescriptor(desc)
		if err != nil {
			return nil, fmt.Errorf("plugin index %d: %w", i, err)
		}
		if _, dup := seen[pm.ID]; dup {
			return nil, fmt.Errorf("the plugin factory contains multiple entries for the same plugin ID: %q", pm.ID)
		}
		seen[pm.ID] = struct{}{}
		meta.Plugins = append(meta.Plugins, pm)
	}

	return meta, nil
}

// CreatePlugin instantiates the plugin with the given id against host. The
// returned Plugin is registered as the host's current callback target.
func (l *Library) CreatePlugin(id string, host *Host) (*Plugin, error) {
	factory := l.pluginFactory()
	if factory == nil {
		return nil, ErrNoFactory
	}

	cID := C.CString(id)
	defer C.free(unsafe.Pointer(cID))

	raw := C.clapval_factory_create(factory, host.clapHost(), cID)
	if raw == nil {
		return nil, fmt.Errorf("the factory returned a null plugin for id %q", id)
	}

	return newPlugin(raw, host, id), nil
}

// Close deinitializes the entry point and releases the OS handle. Must be
// called after every Plugin created from this library has been destroyed.
func (l *Library) Close() {
	if l.handle == nil {
		return
	}
	C.clapval_entry_deinit(l.entry)
	C.clapval_lib_close(l.handle)
	l.handle = nil
	l.entry = nil
}

// clen returns the length of a NUL-terminated byte buffer.
func clen(b []byte) int {
	for i, c := range b {
		if c == 0 {
			return i
		}
	}
	return len(b)
}
