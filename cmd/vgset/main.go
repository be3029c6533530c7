//                           _       _
// __      _____  __ ___   ___  __ _| |_ ___
// \ \ /\ / / _ \/ _` \ \ / / |/ _` | __/ _ \
//  \ V  V /  __/ (_| |\ V /| | (_| | ||  __/
//   \_/\_/ \___|\__,_| \_/ |_|\__,_|\__\___|
//
//  Copyright © 2016 - 2025 Weaviate B.V. All rights reserved.
//
//  CONTACT: hello@weaviate.io
//

// Command vgset operates on sets of variation graph files as one logical
// graph: it unifies their id spaces, indexes their k-mers into a
// persistent store and exports k-mer records for suffix-array index
// construction.
package main

import (
	"fmt"
	"os"
	"regexp"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/weaviate/vgset/adapters/repos/kmeridx"
	"github.com/weaviate/vgset/entities/vgraph"
	"github.com/weaviate/vgset/usecases/graphset"
	"github.com/weaviate/vgset/usecases/monitoring"
)

func main() {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)

	app := &cli.App{
		Name:  "vgset",
		Usage: "operate on a set of variation graph files as one graph",
		Commands: []*cli.Command{
			idsCommand(logger),
			indexCommand(logger),
			storeCommand(logger),
			gcsaCommand(logger),
			pathsCommand(logger),
		},
	}

	if err := app.Run(os.Args); err != nil {
		logger.WithError(err).Fatal("vgset failed")
	}
}

func newSet(c *cli.Context, logger logrus.FieldLogger) (*graphset.Set, error) {
	files := c.Args().Slice()
	if len(files) == 0 {
		return nil, fmt.Errorf("no graph files given")
	}
	cfg := graphset.Config{
		Logger:  logger,
		Metrics: monitoring.NewMetrics(prometheus.NewRegistry()),
	}
	if c.Bool("progress") {
		cfg.Progress = graphset.LogProgress{Logger: logger}
	}
	return graphset.NewSet(files, cfg), nil
}

func progressFlag() cli.Flag {
	return &cli.BoolFlag{
		Name:  "progress",
		Usage: "log per-graph progress",
	}
}

func idsCommand(logger logrus.FieldLogger) *cli.Command {
	return &cli.Command{
		Name:      "ids",
		Usage:     "rewrite node ids so all graphs of the set are disjoint",
		ArgsUsage: "graph.vg [graph.vg ...]",
		Flags:     []cli.Flag{progressFlag()},
		Action: func(c *cli.Context) error {
			s, err := newSet(c, logger)
			if err != nil {
				return err
			}
			maxID, err := s.MergeIDSpace()
			if err != nil {
				return err
			}
			fmt.Fprintln(c.App.Writer, maxID)
			return nil
		},
	}
}

func indexCommand(logger logrus.FieldLogger) *cli.Command {
	return &cli.Command{
		Name:      "index",
		Usage:     "extract kmers of every graph into a persistent index",
		ArgsUsage: "graph.vg [graph.vg ...]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "db",
				Usage:    "directory of the kmer index",
				Required: true,
			},
			&cli.IntFlag{
				Name:    "kmer-size",
				Aliases: []string{"k"},
				Value:   16,
			},
			&cli.IntFlag{
				Name:  "edge-max",
				Usage: "max edges a single kmer may cross, 0 is unbounded",
			},
			&cli.IntFlag{
				Name:  "stride",
				Value: 1,
			},
			&cli.BoolFlag{
				Name:  "path-only",
				Usage: "only follow edges that lie on stored paths",
			},
			&cli.BoolFlag{
				Name:  "allow-negatives",
				Usage: "also index reverse-strand occurrences",
			},
			&cli.IntFlag{
				Name:  "workers",
				Usage: "worker pool size per graph, 0 means GOMAXPROCS",
			},
			progressFlag(),
		},
		Action: func(c *cli.Context) error {
			s, err := newSet(c, logger)
			if err != nil {
				return err
			}
			idx, err := kmeridx.New(kmeridx.Config{
				Path:       c.String("db"),
				SyncWrites: true,
				Logger:     logger,
			})
			if err != nil {
				return err
			}
			defer idx.Close()

			return s.IndexKmers(idx, graphset.IndexKmersConfig{
				KmerSize:       c.Int("kmer-size"),
				EdgeMax:        c.Int("edge-max"),
				Stride:         c.Int("stride"),
				PathOnly:       c.Bool("path-only"),
				AllowNegatives: c.Bool("allow-negatives"),
				Workers:        c.Int("workers"),
			})
		},
	}
}

func storeCommand(logger logrus.FieldLogger) *cli.Command {
	return &cli.Command{
		Name:      "store",
		Usage:     "persist graph topology and paths into the index",
		ArgsUsage: "graph.vg [graph.vg ...]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "db",
				Usage:    "directory of the kmer index",
				Required: true,
			},
			&cli.BoolFlag{
				Name:  "paths",
				Usage: "also store path mappings",
			},
			progressFlag(),
		},
		Action: func(c *cli.Context) error {
			s, err := newSet(c, logger)
			if err != nil {
				return err
			}
			idx, err := kmeridx.New(kmeridx.Config{
				Path:       c.String("db"),
				SyncWrites: true,
				Logger:     logger,
			})
			if err != nil {
				return err
			}
			defer idx.Close()

			if err := s.StoreInIndex(idx); err != nil {
				return err
			}
			if c.Bool("paths") {
				return s.StorePathsInIndex(idx)
			}
			return nil
		},
	}
}

func gcsaCommand(logger logrus.FieldLogger) *cli.Command {
	return &cli.Command{
		Name:      "gcsa",
		Usage:     "export annotated kmer records for gcsa construction",
		ArgsUsage: "graph.vg [graph.vg ...]",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "kmer-size",
				Aliases: []string{"k"},
				Value:   16,
			},
			&cli.BoolFlag{
				Name:  "path-only",
				Usage: "only follow edges that lie on stored paths",
			},
			&cli.BoolFlag{
				Name:  "forward-only",
				Usage: "skip reverse-strand traversals",
			},
			&cli.BoolFlag{
				Name:  "binary",
				Usage: "emit binary records instead of text lines",
			},
			&cli.BoolFlag{
				Name:  "tmp",
				Usage: "write one temp file per graph, print the names",
			},
			&cli.Int64Flag{
				Name:  "head-id",
				Usage: "id of the sentinel head node",
			},
			&cli.Int64Flag{
				Name:  "tail-id",
				Usage: "id of the sentinel tail node",
			},
			&cli.IntFlag{
				Name:  "workers",
				Usage: "worker pool size per graph, 0 means GOMAXPROCS",
			},
			progressFlag(),
		},
		Action: func(c *cli.Context) error {
			s, err := newSet(c, logger)
			if err != nil {
				return err
			}
			cfg := graphset.GCSAConfig{
				KmerSize:    c.Int("kmer-size"),
				PathOnly:    c.Bool("path-only"),
				ForwardOnly: c.Bool("forward-only"),
				HeadID:      c.Int64("head-id"),
				TailID:      c.Int64("tail-id"),
				Workers:     c.Int("workers"),
			}
			switch {
			case c.Bool("tmp"):
				names, err := s.WriteGCSAKmersToTmpFiles(cfg)
				if err != nil {
					return err
				}
				for _, name := range names {
					fmt.Fprintln(c.App.Writer, name)
				}
				return nil
			case c.Bool("binary"):
				return s.WriteGCSAKmersBinary(os.Stdout, cfg)
			default:
				return s.WriteGCSAOut(os.Stdout, cfg)
			}
		},
	}
}

func pathsCommand(logger logrus.FieldLogger) *cli.Command {
	return &cli.Command{
		Name:      "paths",
		Usage:     "splice matching paths out of the chunk stream and print them",
		ArgsUsage: "graph.vg [graph.vg ...]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "pattern",
				Usage:    "paths whose name matches are extracted",
				Required: true,
			},
			progressFlag(),
		},
		Action: func(c *cli.Context) error {
			pattern, err := regexp.Compile(c.String("pattern"))
			if err != nil {
				return fmt.Errorf("invalid path pattern: %w", err)
			}
			s, err := newSet(c, logger)
			if err != nil {
				return err
			}
			removed, err := s.ToSuccinct(discardBuilder{}, pattern)
			if err != nil {
				return err
			}
			for name, p := range removed {
				fmt.Fprintf(c.App.Writer, "%s\t%d mappings\n", name, len(p.Mappings))
			}
			return nil
		},
	}
}

// discardBuilder consumes the fragment stream without building anything;
// used when only the spliced paths are of interest.
type discardBuilder struct{}

func (discardBuilder) FromCallback(load func(emit func(*vgraph.Fragment) error) error) error {
	return load(func(*vgraph.Fragment) error { return nil })
}
