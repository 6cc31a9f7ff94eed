package cmd

import (
	"fmt"

	evdev "github.com/holoplot/go-evdev"
	"github.com/spf13/cobra"

	"github.com/nathanchance/op5/internal/backlight"
	"github.com/nathanchance/op5/internal/display"
	"github.com/nathanchance/op5/internal/input"
)

// CreateProbeCmd creates the probe command.
func CreateProbeCmd() *cobra.Command {
	var backlightNode string

	cmd := &cobra.Command{
		Use:   "probe",
		Short: "Probe touch-key hardware",
		Long: `Shows what the daemon would bind to on this device: the touch-key backlight ` +
			`LED node, the display brightness node, and every input device that contributes ` +
			`touch or key events.`,
		Run: func(_ *cobra.Command, _ []string) {
			runProbe(backlightNode)
		},
	}

	cmd.Flags().StringVar(&backlightNode, "backlight-node", "",
		"LED class node name to probe (empty tries the known names)")

	return cmd
}

func runProbe(backlightNode string) {
	driver := backlight.New(backlightNode, nil)
	if path := driver.Path(); path != "" {
		fmt.Println("Touch-key backlight:", path)
	} else {
		fmt.Println("Touch-key backlight: not found, LED writes would be no-ops")
	}

	if path := display.Discover(); path != "" {
		fmt.Println("Display brightness:", path)
	} else {
		fmt.Println("Display brightness: not found, display events would be disabled")
	}

	fmt.Println()
	fmt.Println("Input devices:")

	paths, err := evdev.ListDevicePaths()
	if err != nil {
		fmt.Println("  cannot list /dev/input:", err)
		return
	}

	found := 0
	for _, p := range paths {
		dev, err := evdev.Open(p.Path)
		if err != nil {
			continue
		}
		caps := input.Classify(dev.CapableEvents(evdev.EV_KEY))
		dev.Close()
		if !caps.TouchSurface && !caps.TouchKeys {
			continue
		}

		found++
		fmt.Printf("  %s  %q", p.Path, p.Name)
		if caps.TouchSurface {
			fmt.Print("  [touch surface]")
		}
		if caps.TouchKeys {
			fmt.Print("  [touch keys]")
		}
		fmt.Println()
	}

	if found == 0 {
		fmt.Println("  none contribute touch or key events")
	}
}
