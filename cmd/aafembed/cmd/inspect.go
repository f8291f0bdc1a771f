// SPDX-License-Identifier: EPL-2.0

package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ik5/aafembed/container"
)

// fileView is the serialized form of a container file.
type fileView struct {
	Path            string               `json:"path" yaml:"path"`
	Identifications []identificationView `json:"identifications" yaml:"identifications"`
	Mobs            []mobView            `json:"mobs" yaml:"mobs"`
}

type identificationView struct {
	Generation     string    `json:"generation" yaml:"generation"`
	ProductName    string    `json:"product_name" yaml:"product_name"`
	ProductVersion string    `json:"product_version" yaml:"product_version"`
	Platform       string    `json:"platform" yaml:"platform"`
	Date           time.Time `json:"date" yaml:"date"`
}

type mobView struct {
	ID          string            `json:"id" yaml:"id"`
	Name        string            `json:"name" yaml:"name"`
	Comments    []commentView     `json:"comments,omitempty" yaml:"comments,omitempty"`
	Descriptors []descriptorView  `json:"descriptors" yaml:"descriptors"`
	Essences    []essenceView     `json:"essences" yaml:"essences"`
}

type commentView struct {
	Name  string `json:"name" yaml:"name"`
	Value string `json:"value" yaml:"value"`
}

type descriptorView struct {
	Kind          string   `json:"kind" yaml:"kind"`
	SampleRate    int      `json:"sample_rate" yaml:"sample_rate"`
	Channels      int      `json:"channels" yaml:"channels"`
	BitsPerSample int      `json:"bits_per_sample" yaml:"bits_per_sample"`
	Length        int64    `json:"length" yaml:"length"`
	SummaryBytes  int      `json:"summary_bytes" yaml:"summary_bytes"`
	Locators      []string `json:"locators,omitempty" yaml:"locators,omitempty"`
}

type essenceView struct {
	Slot       uint32 `json:"slot" yaml:"slot"`
	Codec      string `json:"codec" yaml:"codec"`
	Compressor string `json:"compressor" yaml:"compressor"`
	Frames     int64  `json:"frames" yaml:"frames"`
	Bytes      int64  `json:"bytes" yaml:"bytes"`
	Segments   int    `json:"segments" yaml:"segments"`
}

func newInspectCommand(a *app) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "inspect <file.aaf>",
		Short: "List the mobs, descriptors and essence of a container file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			rt, err := a.loadRuntime()
			if err != nil {
				return err
			}
			defer func() { err = errors.Join(err, rt.Unload()) }()

			view, err := describe(cmd.Context(), rt, args[0])
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), view, format)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "text", "output format (text, json, yaml)")
	return cmd
}

func describe(ctx context.Context, rt *container.Runtime, path string) (view *fileView, err error) {
	f, err := rt.OpenFile(ctx, path)
	if err != nil {
		return nil, err
	}
	defer func() { err = errors.Join(err, f.Close()) }()

	hdr, err := f.Header()
	if err != nil {
		return nil, err
	}
	defer func() { err = errors.Join(err, hdr.Release()) }()

	mobs, err := hdr.Mobs(ctx)
	if err != nil {
		return nil, err
	}
	ids, err := f.Identifications(ctx)
	if err != nil {
		return nil, err
	}

	view = &fileView{Path: f.Path()}
	for _, id := range ids {
		view.Identifications = append(view.Identifications, identificationView{
			Generation:     id.Generation,
			ProductName:    id.ProductName,
			ProductVersion: id.ProductVersion,
			Platform:       id.Platform,
			Date:           id.Date,
		})
	}
	for _, m := range mobs {
		mv := mobView{ID: m.ID.String(), Name: m.Name}
		for _, c := range m.Comments {
			mv.Comments = append(mv.Comments, commentView{Name: c.Name, Value: c.Value})
		}
		for _, d := range m.Descriptors {
			mv.Descriptors = append(mv.Descriptors, descriptorView{
				Kind:          string(d.Kind),
				SampleRate:    d.SampleRate,
				Channels:      d.Channels,
				BitsPerSample: d.BitsPerSample,
				Length:        d.Length,
				SummaryBytes:  len(d.Summary),
				Locators:      d.Locators,
			})
		}
		for _, e := range m.Essences {
			mv.Essences = append(mv.Essences, essenceView{
				Slot:       uint32(e.Slot),
				Codec:      string(e.Codec),
				Compressor: e.Compressor,
				Frames:     e.Frames,
				Bytes:      e.Length,
				Segments:   e.Segments,
			})
		}
		view.Mobs = append(view.Mobs, mv)
	}
	return view, nil
}

func render(w io.Writer, v *fileView, format string) error {
	switch strings.ToLower(format) {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	case "text":
		renderText(w, v)
		return nil
	}
	return fmt.Errorf("unknown format %q (text, json, yaml)", format)
}

func renderText(w io.Writer, v *fileView) {
	fmt.Fprintf(w, "%s\n", v.Path)
	for _, id := range v.Identifications {
		fmt.Fprintf(w, "  saved %s by %s %s (%s)\n",
			id.Date.Format(time.RFC3339), id.ProductName, id.ProductVersion, id.Platform)
	}
	for _, m := range v.Mobs {
		fmt.Fprintf(w, "mob %q %s\n", m.Name, m.ID)
		for _, c := range m.Comments {
			fmt.Fprintf(w, "  comment %s: %s\n", c.Name, c.Value)
		}
		for _, d := range m.Descriptors {
			fmt.Fprintf(w, "  descriptor %s %d Hz %d-bit %d ch, %d frames\n",
				d.Kind, d.SampleRate, d.BitsPerSample, d.Channels, d.Length)
			for _, l := range d.Locators {
				fmt.Fprintf(w, "    locator %s\n", l)
			}
		}
		for _, e := range m.Essences {
			fmt.Fprintf(w, "  essence slot %d %s, %d frames, %s in %d segments (%s)\n",
				e.Slot, e.Codec, e.Frames, humanize.IBytes(uint64(e.Bytes)), e.Segments, e.Compressor)
		}
	}
}
