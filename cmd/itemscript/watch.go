package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/gops/agent"
	"github.com/scott-cotton/cli"
	"github.com/signadot/itemscript/encode"
	"github.com/signadot/itemscript/value"
)

func watch(cfg *WatchConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Watch.Parse(cc, args)
	if err != nil {
		return err
	}
	if err := nArgs(args, 1, 1, "one locator"); err != nil {
		return err
	}

	// Start gops agent for debugging
	if err := agent.Listen(agent.Options{}); err != nil {
		fmt.Fprintf(cc.Out, "gops agent failed: %v\n", err)
	}
	defer agent.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	sys, err := cfg.system(ctx)
	if err != nil {
		return err
	}
	theLog.Info("watching", "locator", args[0])
	return sys.Watch(ctx, args[0], func(ev value.Event) {
		fmt.Fprintln(cc.Out, eventLine(ev))
	})
}

func eventLine(ev value.Event) string {
	src := ""
	if ev.Item != nil {
		src = ev.Item.Source()
	}
	if ev.Value == nil {
		return fmt.Sprintf("%s %s%s", ev.Kind, src, ev.Fragment)
	}
	return fmt.Sprintf("%s %s%s %s", ev.Kind, src, ev.Fragment,
		encode.MustString(ev.Value.StripNative()))
}
