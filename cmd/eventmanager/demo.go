package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/vango-dev/eventmanager/pkg/dom"
	"github.com/vango-dev/eventmanager/pkg/tracker"
)

func demoCmd() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Walk through the registry operations on in-memory elements",
		RunE: func(cmd *cobra.Command, args []string) error {
			level := slog.LevelWarn
			if verbose {
				level = slog.LevelDebug
			}
			logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
			return runDemo(cmd.OutOrStdout(), logger)
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Log every registry change")

	return cmd
}

func runDemo(out io.Writer, logger *slog.Logger) error {
	t := tracker.New(tracker.WithLogger(logger))
	save := dom.NewElement("button", "save")
	form := dom.NewElement("form", "profile")

	onSave := tracker.NewCallback(func(tracker.Event) {})
	onHover := tracker.NewCallback(func(tracker.Event) {})
	onInput := tracker.NewCallback(func(tracker.Event) {})

	step(out, "add click (save) and mouseenter on button#save")
	if err := t.AddNamed(save, dom.Click, onSave, "save"); err != nil {
		return err
	}
	if err := t.Add(save, dom.MouseEnter, onHover); err != nil {
		return err
	}
	printRegistry(out, t)

	step(out, "remove by name \"save\"")
	if err := t.RemoveNamed("save"); err != nil {
		return err
	}
	printRegistry(out, t)

	step(out, "add input on form#profile twice")
	for i := 0; i < 2; i++ {
		if err := t.Add(form, dom.Input, onInput); err != nil {
			return err
		}
	}
	printRegistry(out, t)
	fmt.Fprintf(out, "  form#profile has %d input listener(s) attached\n", form.ListenerCount(dom.Input))

	step(out, "remove input on form#profile")
	if err := t.Remove(form, dom.Input, onInput); err != nil {
		return err
	}
	printRegistry(out, t)

	step(out, "add input on form#profile, destroy it, then remove all")
	if err := t.Add(form, dom.Input, onInput); err != nil {
		return err
	}
	form.Destroy()
	if err := t.RemoveAll(); err != nil {
		fmt.Fprintf(out, "  remove all: %v\n", err)
	}
	printRegistry(out, t)
	return nil
}

func step(out io.Writer, msg string) {
	fmt.Fprintf(out, "\n\033[36m→\033[0m %s\n", msg)
}

func printRegistry(out io.Writer, t *tracker.Tracker) {
	all := t.All()
	if len(all) == 0 {
		fmt.Fprintln(out, "  (registry empty)")
		return
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "  ID\tTARGET\tEVENT\tNAME")
	for _, r := range all {
		fmt.Fprintf(tw, "  %d\t%v\t%s\t%s\n", r.ID, r.Target, r.EventType, r.Name)
	}
	tw.Flush()
}
