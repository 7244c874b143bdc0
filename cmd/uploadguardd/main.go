// Package main implements the UploadGuard daemon. UploadGuard scans
// file uploads for content-security risks before they leave the machine:
// a browser extension slices files into chunks and streams them to this
// daemon, which runs the analysis engine and returns an allow/block
// verdict per file.
package main

import (
	"fmt"
	"os"
	"runtime"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := Execute(); err != nil {
		os.Exit(1)
	}
}
