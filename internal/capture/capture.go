// Package capture builds capture commands, which store the object text of
// a sentence into a named collection of the command's bin.
package capture

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/intensifier/ishell/internal/command"
	"github.com/intensifier/ishell/internal/nountype"
	"github.com/intensifier/ishell/internal/storage"
)

// ErrEmpty is returned when there is nothing to capture.
var ErrEmpty = errors.New("nothing to capture")

// Entry is one captured item.
type Entry struct {
	Text     string    `json:"text"`
	Captured time.Time `json:"captured"`
}

// Collection returns the entries stored under name in bin.
func Collection(ctx context.Context, bin command.Bin, name string) ([]Entry, error) {
	var entries []Entry
	if err := bin.Get(ctx, name, &entries); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return []Entry{}, nil
		}
		return nil, err
	}
	return entries, nil
}

// Options completes a capture declaration with a preview describing the
// capture and an execute handler appending to the collection.
func Options(opts command.CaptureOptions) command.Options {
	o := opts.Options
	o.Kind = command.KindCapture
	if o.Arguments == nil && o.Argument == nil {
		o.Arguments = command.RoleMap{"object text": nountype.ArbText}
	}

	collection := opts.Collection
	if collection == "" {
		collection = o.Name
		if collection == "" && len(o.Names) > 0 {
			collection = o.Names[0]
		}
	}
	text := func(args command.Args) string {
		t := strings.TrimSpace(args.Object())
		if opts.Transform != nil {
			t = opts.Transform(t)
		}
		return t
	}

	if o.Preview == nil {
		o.Preview = func(_ context.Context, args command.Args, display command.Display, _ command.Bin) error {
			if t := text(args); t != "" {
				display.Set(fmt.Sprintf("Capture %q into %s", t, collection))
			} else {
				display.Set(fmt.Sprintf("Capture text into %s", collection))
			}
			return nil
		}
	}
	if o.Execute == nil {
		o.Execute = func(ctx context.Context, args command.Args, bin command.Bin) error {
			t := text(args)
			if t == "" {
				return ErrEmpty
			}
			entries, err := Collection(ctx, bin, collection)
			if err != nil {
				return err
			}
			entries = append(entries, Entry{Text: t, Captured: time.Now().UTC()})
			return bin.Set(ctx, collection, entries)
		}
	}
	return o
}
