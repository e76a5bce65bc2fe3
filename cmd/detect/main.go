// Command detect decodes YOLO output tensors into labeled, suppressed detections.
//
// Usage:
//
//	detect decode --width 1920 --height 1080 output.bin
//	detect decode --config detect.yaml frames/
//	detect run --config detect.yaml --width 1920 --height 1080 input.bin
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newApp().RunContext(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "detect: %v\n", err)
		stop()
		os.Exit(1)
	}
}
