// Package runtime bundles the Echo runtime support library — the
// echo_runtime.h/.c pair every emitted translation unit includes and
// links against — into the echoc binary via go:embed, so the driver can
// write them out alongside a compiled program without depending on a
// separate install step.
package runtime

import "embed"

//go:embed echo_runtime.h echo_runtime.c
var assets embed.FS

// Header returns the contents of echo_runtime.h.
func Header() []byte {
	data, err := assets.ReadFile("echo_runtime.h")
	if err != nil {
		panic("runtime: embedded echo_runtime.h missing: " + err.Error())
	}
	return data
}

// Source returns the contents of echo_runtime.c.
func Source() []byte {
	data, err := assets.ReadFile("echo_runtime.c")
	if err != nil {
		panic("runtime: embedded echo_runtime.c missing: " + err.Error())
	}
	return data
}
