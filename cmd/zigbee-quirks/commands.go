package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"text/tabwriter"

	"zigbee-quirks/internal/quirk"
	"zigbee-quirks/internal/quirks"
	"zigbee-quirks/internal/store"
	"zigbee-quirks/internal/zdo"
)

func runList(reg *quirk.Registry, stdout io.Writer) int {
	tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "QUIRK\tOVERLAYS\tENTITIES\tIDENTITY")
	for _, q := range reg.All() {
		ids := make([]string, 0, len(q.Entities))
		for i := range q.Entities {
			ids = append(ids, q.Entities[i].ID())
		}
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n", q.ID(), len(q.Overlays), dashIfEmpty(strings.Join(ids, ",")), identitySummary(q))
	}
	tw.Flush()
	return exitSuccess
}

func identitySummary(q *quirk.Quirk) string {
	var parts []string
	if q.NodeDescriptor != nil {
		parts = append(parts, fmt.Sprintf("node_descriptor(mfr=%d)", q.NodeDescriptor.ManufacturerCode))
	}
	if q.ManufacturerID != nil {
		parts = append(parts, fmt.Sprintf("manufacturer_id=%d", *q.ManufacturerID))
	}
	return dashIfEmpty(strings.Join(parts, " "))
}

func dashIfEmpty(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func runMatch(args []string, reg *quirk.Registry, stdout, stderr io.Writer) int {
	if len(args) != 2 {
		fmt.Fprintln(stderr, "Error: usage: match <manufacturer> <model>")
		return exitCommandError
	}
	q, ok := reg.Match(args[0], args[1], nil)
	if !ok {
		fmt.Fprintf(stdout, "no quirk for %s/%s\n", args[0], args[1])
		return exitValidation
	}
	printQuirk(stdout, q)
	return exitSuccess
}

func printQuirk(w io.Writer, q *quirk.Quirk) {
	fmt.Fprintf(w, "quirk: %s\n", q.ID())
	for _, s := range q.Signatures[1:] {
		fmt.Fprintf(w, "  alias: %s\n", s)
	}

	if len(q.Overlays) > 0 {
		fmt.Fprintln(w, "overlays:")
		for _, o := range q.Overlays {
			fmt.Fprintf(w, "  ep %d %s 0x%04X %s", o.Endpoint, o.Side, o.ClusterID, o.Mode)
			if o.Mode != quirk.Remove {
				fmt.Fprintf(w, " %s (%d attributes, %d commands)", o.Def.Name, len(o.Def.Attributes), len(o.Def.Commands))
			}
			if o.ManufacturerID != nil {
				fmt.Fprintf(w, " manufacturer_id=%d", *o.ManufacturerID)
			}
			fmt.Fprintln(w)
		}
	}

	nd := quirk.CorrectedNodeDescriptor(q, zdo.NodeDescriptor{})
	if q.NodeDescriptor != nil {
		fmt.Fprintf(w, "node descriptor: %s, manufacturer code %d\n", nd.LogicalType, nd.ManufacturerCode)
	}
	if id := quirk.ManufacturerIDForCommands(q, nd); id != 0 {
		fmt.Fprintf(w, "manufacturer id: %d\n", id)
	} else {
		fmt.Fprintln(w, "manufacturer id: as reported")
	}

	if len(q.Entities) == 0 {
		return
	}
	fmt.Fprintln(w, "entities:")
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for i := range q.Entities {
		e := &q.Entities[i]
		fmt.Fprintf(tw, "  %s\t%s\tep %d 0x%04X/0x%04X\t%s\n", e.ID(), e.Platform, e.Endpoint, e.ClusterID, e.AttributeID, entityDetail(e))
	}
	tw.Flush()
}

func entityDetail(e *quirk.Entity) string {
	var parts []string
	switch {
	case e.Number != nil:
		parts = append(parts, fmt.Sprintf("%g..%g step %g", e.Number.Min, e.Number.Max, e.Number.Step))
	case e.Enum != nil:
		parts = append(parts, strings.Join(e.Enum.Names(), "|"))
	}
	if e.Unit != "" {
		parts = append(parts, e.Unit)
	}
	if e.Category != quirk.CategoryStandard {
		parts = append(parts, string(e.Category))
	}
	if e.InitiallyDisabled {
		parts = append(parts, "disabled")
	}
	if r := e.Reporting; r != nil {
		parts = append(parts, fmt.Sprintf("report %d-%ds", r.MinInterval, r.MaxInterval))
	}
	return strings.Join(parts, " ")
}

// runCheck loads each directory into a registry holding only the built-in
// quirks, so collisions with them are reported too.
func runCheck(args []string, logger *slog.Logger, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(stderr, "Error: usage: check <dir>...")
		return exitCommandError
	}
	code := exitSuccess
	for _, dir := range args {
		_, reg := newRegistries(logger)
		if err := quirks.RegisterBuiltin(reg); err != nil {
			fmt.Fprintf(stderr, "Error: builtin quirks: %v\n", err)
			return exitCommandError
		}
		n, err := quirks.LoadDir(dir, reg, logger)
		if err != nil {
			fmt.Fprintf(stdout, "%s: %d quirks ok, errors:\n", dir, n)
			for _, line := range strings.Split(err.Error(), "\n") {
				fmt.Fprintf(stdout, "  %s\n", line)
			}
			code = exitValidation
			continue
		}
		fmt.Fprintf(stdout, "%s: %d quirks ok\n", dir, n)
	}
	return code
}

func runDevices(args []string, cfg *Config, reg *quirk.Registry, stdout, stderr io.Writer) int {
	flags := flag.NewFlagSet("devices", flag.ContinueOnError)
	flags.SetOutput(stderr)
	quirkID := flags.String("quirk", "", `only devices with this quirk applied ("Manufacturer/Model", "-" for none)`)
	if err := flags.Parse(args); err != nil {
		return exitCommandError
	}

	db, err := store.NewBoltStore(cfg.Store.Path)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCommandError
	}
	defer db.Close()

	var devices []*store.Device
	switch *quirkID {
	case "":
		devices, err = db.ListDevices()
	case "-":
		devices, err = db.ListDevicesWithQuirk("")
	default:
		devices, err = db.ListDevicesWithQuirk(*quirkID)
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error: list devices: %v\n", err)
		return exitCommandError
	}

	tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "IEEE\tNAME\tQUIRK\tMANUFACTURER ID\tENTITIES")
	for _, dev := range devices {
		var q *quirk.Quirk
		if dev.QuirkID != "" {
			q, _ = reg.Lookup(dev.QuirkID)
		}
		mfr := "-"
		if dev.NodeDescriptor != nil {
			nd := quirk.CorrectedNodeDescriptor(q, *dev.NodeDescriptor)
			mfr = fmt.Sprint(quirk.ManufacturerIDForCommands(q, nd))
		}
		applied, entities := "-", 0
		switch {
		case q != nil:
			applied, entities = q.ID(), len(q.Entities)
		case dev.QuirkID != "":
			applied = dev.QuirkID + " (missing)"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\n", dev.IEEEAddress, dev.Name(), applied, mfr, entities)
	}
	tw.Flush()
	return exitSuccess
}
