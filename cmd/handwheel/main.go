package main

import (
	"fmt"
	"os"
	"runtime"
)

func init() {
	// OpenCV windows and the tray must run on the process's main thread.
	runtime.LockOSThread()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "handwheel:", err)
		os.Exit(1)
	}
}
