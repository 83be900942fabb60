package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/scott-cotton/cli"
	"github.com/signadot/itemscript/encode"
	"github.com/signadot/itemscript/format"
	"github.com/signadot/itemscript/parse"
	"github.com/signadot/itemscript/system"
	"github.com/signadot/itemscript/value"
)

type MainConfig struct {
	State   string `cli:"name=state desc='dump file holding the mem: tree between runs'"`
	Config  string `cli:"name=config desc='configuration file (yaml)'"`
	Color   bool   `cli:"name=color desc='encode with color'"`
	WireOut bool   `cli:"name=wire desc='output in compact format'"`
	Verbose bool   `cli:"name=v desc='log debug messages'"`

	J bool `cli:"name=j aliases=json desc='do i/o in json'"`
	Y bool `cli:"name=y aliases=yaml desc='do i/o in yaml'"`

	Out      string
	CloseOut func() error

	Main *cli.Command

	sys *system.System
}

func (cfg *MainConfig) format() format.Format {
	if cfg.Y {
		return format.YAMLFormat
	}
	return format.JSONFormat
}

func (cfg *MainConfig) encOpts(w io.Writer) []encode.EncodeOption {
	res := []encode.EncodeOption{
		encode.EncodeFormat(cfg.format()),
		encode.EncodeWire(cfg.WireOut),
	}
	if cfg.useColor(w) {
		res = append(res, encode.EncodeColors(encode.NewColors()))
	}
	return res
}

func (cfg *MainConfig) useColor(w io.Writer) bool {
	if cfg.Color {
		return true
	}
	for _, opt := range cfg.Main.Opts {
		if opt.Name == "color" && opt.Value != nil {
			return false
		}
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd())
}

// system builds the System on first use, loading the state file into
// mem:/ when there is one.
func (cfg *MainConfig) system(ctx context.Context) (*system.System, error) {
	if cfg.sys != nil {
		return cfg.sys, nil
	}
	if cfg.Verbose {
		logLevel.Set(slog.LevelDebug)
	}
	sysCfg := system.DefaultConfig()
	if cfg.Config != "" {
		c, err := system.LoadConfig(cfg.Config)
		if err != nil {
			return nil, err
		}
		sysCfg = c
		if !cfg.Verbose {
			lvl, _ := c.LogLevel()
			logLevel.Set(lvl)
		}
	}
	sys, err := system.New(system.WithConfig(sysCfg), system.WithLogger(theLog))
	if err != nil {
		return nil, err
	}
	if cfg.State != "" {
		d, err := readState(cfg.State)
		if err != nil {
			return nil, err
		}
		if err := sys.Load(ctx, "mem:/", d); err != nil {
			return nil, fmt.Errorf("loading %s: %w", cfg.State, err)
		}
	}
	cfg.sys = sys
	return sys, nil
}

func readState(p string) (*value.Value, error) {
	d, err := os.ReadFile(p)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return parse.Parse(d, parse.ParseFormat(format.FromPath(p)))
}

// save writes mem:/ back to the state file.
func (cfg *MainConfig) save(ctx context.Context) error {
	if cfg.State == "" || cfg.sys == nil {
		return nil
	}
	d, err := cfg.sys.Dump(ctx, "mem:/")
	if err != nil {
		return err
	}
	tmp := cfg.State + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if err := encode.Encode(d, f, encode.EncodeFormat(format.FromPath(cfg.State))); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	theLog.Debug("saved state", "file", cfg.State)
	return os.Rename(tmp, cfg.State)
}

// readValue parses a value given on the command line, or the contents
// of the file it names when fromFile is set ("-" is stdin).
func (cfg *MainConfig) readValue(cc *cli.Context, arg string, fromFile bool) (*value.Value, error) {
	if !fromFile {
		return parse.Parse([]byte(arg), parse.ParseFormat(cfg.format()))
	}
	var (
		d   []byte
		err error
	)
	f := cfg.format()
	if arg == "-" {
		d, err = io.ReadAll(cc.In)
	} else {
		d, err = os.ReadFile(arg)
		if !cfg.J && !cfg.Y {
			f = format.FromPath(arg)
		}
	}
	if err != nil {
		return nil, err
	}
	return parse.Parse(d, parse.ParseFormat(f))
}

func (cfg *MainConfig) write(cc *cli.Context, v *value.Value) error {
	return encode.Encode(v, cc.Out, cfg.encOpts(cc.Out)...)
}

type GetConfig struct {
	*MainConfig
	Get *cli.Command
}

type PutConfig struct {
	*MainConfig
	File bool `cli:"name=f desc='value arg is a file'"`
	Put  *cli.Command
}

type PostConfig struct {
	*MainConfig
	File bool `cli:"name=f desc='value arg is a file'"`
	Post *cli.Command
}

type RemoveConfig struct {
	*MainConfig
	Remove *cli.Command
}

type DumpConfig struct {
	*MainConfig
	Dump *cli.Command
}

type LoadConfig struct {
	*MainConfig
	Load *cli.Command
}

type PatchConfig struct {
	*MainConfig
	Merge bool `cli:"name=merge desc='apply a json merge patch (rfc 7386)'"`
	Patch *cli.Command
}

type DiffConfig struct {
	*MainConfig
	Diff *cli.Command
}

type WatchConfig struct {
	*MainConfig
	Watch *cli.Command
}
