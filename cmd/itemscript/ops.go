package main

import (
	"context"
	"fmt"

	"github.com/scott-cotton/cli"
	"github.com/signadot/itemscript/connector"
	"github.com/signadot/itemscript/value"
)

func get(cfg *GetConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Get.Parse(cc, args)
	if err != nil {
		return err
	}
	if err := nArgs(args, 1, 1, "one locator"); err != nil {
		return err
	}
	ctx := context.Background()
	sys, err := cfg.system(ctx)
	if err != nil {
		return err
	}
	v, err := sys.Get(ctx, args[0])
	if err != nil {
		return err
	}
	if v == nil {
		return fmt.Errorf("%w: %s", connector.ErrNotFound, args[0])
	}
	return cfg.write(cc, v)
}

func put(cfg *PutConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Put.Parse(cc, args)
	if err != nil {
		return err
	}
	if err := nArgs(args, 2, 2, "a locator and a value"); err != nil {
		return err
	}
	ctx := context.Background()
	sys, err := cfg.system(ctx)
	if err != nil {
		return err
	}
	v, err := cfg.readValue(cc, args[1], cfg.File)
	if err != nil {
		return err
	}
	if _, err := sys.Put(ctx, args[0], v); err != nil {
		return err
	}
	return cfg.save(ctx)
}

func post(cfg *PostConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Post.Parse(cc, args)
	if err != nil {
		return err
	}
	if err := nArgs(args, 2, 2, "a locator and a value"); err != nil {
		return err
	}
	ctx := context.Background()
	sys, err := cfg.system(ctx)
	if err != nil {
		return err
	}
	v, err := cfg.readValue(cc, args[1], cfg.File)
	if err != nil {
		return err
	}
	stored, err := sys.Post(ctx, args[0], v)
	if err != nil {
		return err
	}
	if it := stored.Item(); it != nil {
		fmt.Fprintln(cc.Out, it.Source())
	}
	return cfg.save(ctx)
}

func remove(cfg *RemoveConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Remove.Parse(cc, args)
	if err != nil {
		return err
	}
	if err := nArgs(args, 1, 1, "one locator"); err != nil {
		return err
	}
	ctx := context.Background()
	sys, err := cfg.system(ctx)
	if err != nil {
		return err
	}
	old, err := sys.Remove(ctx, args[0])
	if err != nil {
		return err
	}
	if old != nil {
		if err := cfg.write(cc, old.StripNative()); err != nil {
			return err
		}
	}
	return cfg.save(ctx)
}

func dump(cfg *DumpConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Dump.Parse(cc, args)
	if err != nil {
		return err
	}
	if err := nArgs(args, 0, 1, "at most one locator"); err != nil {
		return err
	}
	loc := "mem:/"
	if len(args) == 1 {
		loc = args[0]
	}
	ctx := context.Background()
	sys, err := cfg.system(ctx)
	if err != nil {
		return err
	}
	d, err := sys.Dump(ctx, loc)
	if err != nil {
		return err
	}
	if d == nil {
		return fmt.Errorf("%w: %s", connector.ErrNotFound, loc)
	}
	return cfg.write(cc, d)
}

func load(cfg *LoadConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Load.Parse(cc, args)
	if err != nil {
		return err
	}
	if err := nArgs(args, 2, 2, "a locator and a dump file"); err != nil {
		return err
	}
	ctx := context.Background()
	sys, err := cfg.system(ctx)
	if err != nil {
		return err
	}
	d, err := cfg.readValue(cc, args[1], true)
	if err != nil {
		return err
	}
	if err := sys.Load(ctx, args[0], d); err != nil {
		return err
	}
	return cfg.save(ctx)
}

func patch(cfg *PatchConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Patch.Parse(cc, args)
	if err != nil {
		return err
	}
	if err := nArgs(args, 2, 2, "a locator and a patch file"); err != nil {
		return err
	}
	ctx := context.Background()
	sys, err := cfg.system(ctx)
	if err != nil {
		return err
	}
	p, err := cfg.readValue(cc, args[1], true)
	if err != nil {
		return err
	}
	d, err := p.MarshalJSON()
	if err != nil {
		return err
	}
	var res *value.Value
	if cfg.Merge {
		res, err = sys.MergePatch(ctx, args[0], d)
	} else {
		res, err = sys.Patch(ctx, args[0], d)
	}
	if err != nil {
		return err
	}
	if err := cfg.write(cc, res); err != nil {
		return err
	}
	return cfg.save(ctx)
}
