package main

import (
	"github.com/scott-cotton/cli"
)

func MainCommand() *cli.Command {
	cfg := &MainConfig{}
	sOpts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	opts := append(sOpts, &cli.Opt{
		Name:        "o",
		Description: "output file (default stdout)",
		Type:        cli.NamedFuncOpt(cfg.outOpt, "(filepath)"),
	})

	return cli.NewCommandAt(&cfg.Main, "itemscript").
		WithSynopsis("itemscript [opts] command [opts]").
		WithDescription("itemscript reads and writes json values addressed by locators.").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return itemscriptMain(cfg, cc, args)
		}).
		WithSubs(
			GetCommand(cfg),
			PutCommand(cfg),
			PostCommand(cfg),
			RemoveCommand(cfg),
			DumpCommand(cfg),
			LoadCommand(cfg),
			PatchCommand(cfg),
			DiffCommand(cfg),
			WatchCommand(cfg))
}

func GetCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &GetConfig{MainConfig: mainCfg}
	return cli.NewCommandAt(&cfg.Get, "get").
		WithAliases("g").
		WithSynopsis("get <locator>").
		WithDescription("get the value at a locator, e.g. mem:/a/b#c or mem:/a?pagedKeys&numRows=5").
		WithRun(func(cc *cli.Context, args []string) error {
			return get(cfg, cc, args)
		})
}

func PutCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &PutConfig{MainConfig: mainCfg}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	return cli.NewCommandAt(&cfg.Put, "put").
		WithAliases("p").
		WithSynopsis("put <locator> <value> | put -f <locator> <file>").
		WithDescription("store a value at a locator").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return put(cfg, cc, args)
		})
}

func PostCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &PostConfig{MainConfig: mainCfg}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	return cli.NewCommandAt(&cfg.Post, "post").
		WithSynopsis("post <locator> <value> | post -f <locator> <file>").
		WithDescription("store a value under a generated id below a locator and print its locator").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return post(cfg, cc, args)
		})
}

func RemoveCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &RemoveConfig{MainConfig: mainCfg}
	return cli.NewCommandAt(&cfg.Remove, "rm").
		WithAliases("remove").
		WithSynopsis("rm <locator>").
		WithDescription("remove the value at a locator and print it").
		WithRun(func(cc *cli.Context, args []string) error {
			return remove(cfg, cc, args)
		})
}

func DumpCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &DumpConfig{MainConfig: mainCfg}
	return cli.NewCommandAt(&cfg.Dump, "dump").
		WithSynopsis("dump [locator]").
		WithDescription("dump the tree below a locator (default mem:/)").
		WithRun(func(cc *cli.Context, args []string) error {
			return dump(cfg, cc, args)
		})
}

func LoadCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &LoadConfig{MainConfig: mainCfg}
	return cli.NewCommandAt(&cfg.Load, "load").
		WithSynopsis("load <locator> <dumpfile>").
		WithDescription("load a dump below a locator").
		WithRun(func(cc *cli.Context, args []string) error {
			return load(cfg, cc, args)
		})
}

func PatchCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &PatchConfig{MainConfig: mainCfg}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	return cli.NewCommandAt(&cfg.Patch, "patch").
		WithSynopsis("patch [-merge] <locator> <patchfile>").
		WithDescription("apply a json patch (rfc 6902) or merge patch to the value at a locator").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return patch(cfg, cc, args)
		})
}

func DiffCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &DiffConfig{MainConfig: mainCfg}
	return cli.NewCommandAt(&cfg.Diff, "diff").
		WithAliases("d").
		WithSynopsis("diff <locator> <locator>").
		WithDescription("show a line diff of the values at two locators").
		WithRun(func(cc *cli.Context, args []string) error {
			return diff(cfg, cc, args)
		})
}

func WatchCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &WatchConfig{MainConfig: mainCfg}
	return cli.NewCommandAt(&cfg.Watch, "watch").
		WithAliases("w").
		WithSynopsis("watch <locator>").
		WithDescription("print change events at a locator until interrupted").
		WithRun(func(cc *cli.Context, args []string) error {
			return watch(cfg, cc, args)
		})
}
