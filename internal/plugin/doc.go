// Package plugin wraps the native CLAP plugin ABI for the validator.
//
// All cgo interop lives in this package: the shared-library loader, the
// library facade around clap_entry, the validator host with its pinned
// host-side function tables, the plugin instance state machine, and the
// builders for event queues, audio buffers, and state streams that the
// conformance tests feed to clap_plugin.process and clap_plugin_state.
//
// Ownership is strict. A Library owns the OS handle and must outlive every
// Plugin it created; a Host must outlive every Plugin constructed against
// it. Teardown runs in reverse: Plugin.Destroy, then Host.Close, then
// Library.Close (clap_entry.deinit followed by the dlclose equivalent).
package plugin
