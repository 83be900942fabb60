package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/scott-cotton/cli"
	"github.com/signadot/itemscript/connector"
	"github.com/signadot/itemscript/encode"
	"github.com/signadot/itemscript/value"
	diffpatch "github.com/sergi/go-diff/diffmatchpatch"
)

func diff(cfg *DiffConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Diff.Parse(cc, args)
	if err != nil {
		return err
	}
	if err := nArgs(args, 2, 2, "two locators"); err != nil {
		return err
	}
	ctx := context.Background()
	sys, err := cfg.system(ctx)
	if err != nil {
		return err
	}
	texts := make([]string, 2)
	for i, loc := range args {
		v, err := sys.Get(ctx, loc)
		if err != nil {
			return err
		}
		if v == nil {
			return fmt.Errorf("%w: %s", connector.ErrNotFound, loc)
		}
		if texts[i], err = text(v, cfg.MainConfig); err != nil {
			return err
		}
	}
	return writeDiff(cc.Out, lineDiff(texts[0], texts[1]), cfg.useColor(cc.Out))
}

// text renders v for diffing: one line per scalar, never compact.
func text(v *value.Value, cfg *MainConfig) (string, error) {
	buf := bytes.NewBuffer(nil)
	if err := encode.Encode(v.StripNative(), buf, encode.EncodeFormat(cfg.format())); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func lineDiff(a, b string) []diffpatch.Diff {
	dmp := diffpatch.New()
	ca, cb, lines := dmp.DiffLinesToChars(a, b)
	return dmp.DiffCharsToLines(dmp.DiffMain(ca, cb, false), lines)
}

func writeDiff(w io.Writer, diffs []diffpatch.Diff, colors bool) error {
	del, ins := fmt.Sprint, fmt.Sprint
	if colors {
		del = color.New(color.FgRed).Sprint
		ins = color.New(color.FgGreen).Sprint
	}
	for _, d := range diffs {
		var (
			prefix string
			paint  = fmt.Sprint
		)
		switch d.Type {
		case diffpatch.DiffDelete:
			prefix, paint = "-", del
		case diffpatch.DiffInsert:
			prefix, paint = "+", ins
		default:
			prefix = " "
		}
		for _, line := range strings.SplitAfter(d.Text, "\n") {
			if line == "" {
				continue
			}
			if !strings.HasSuffix(line, "\n") {
				line += "\n"
			}
			if _, err := io.WriteString(w, paint(prefix+line)); err != nil {
				return err
			}
		}
	}
	return nil
}
