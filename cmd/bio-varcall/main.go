package main

/*
bio-varcall runs region-parallel small variant calling over the samples of
a JSON manifest: each sample fans out per configured caller and per
assigned genomic region, the per-region outputs are concatenated back
together, and the per-caller results merge into one record per sample
carrying an ordered variants list. The updated manifest is written as
JSON.
*/

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/varcall/caller"
	"github.com/grailbio/varcall/genotype"
	"github.com/grailbio/varcall/interval"
	"github.com/grailbio/varcall/runner"
	"github.com/grailbio/varcall/sample"
)

var (
	outPath      = flag.String("out", "", "Output manifest path; default stdout")
	parallelism  = flag.Int("parallelism", 0, "Maximum number of simultaneous (local) calling jobs to launch; 0 = runtime.NumCPU()")
	splitContigs = flag.Bool("split-contigs", false, "Assign one calling region per reference contig (from <sam_ref>.fai) to samples that have none")
	noCombine    = flag.Bool("no-combine", false, "Leave one record per caller instead of combining them per sample")
	noFilter     = flag.Bool("no-filter", false, "Skip caller-specific soft filtering of call outputs")
)

func bioVarcallUsage() {
	fmt.Printf("Usage: %s [OPTIONS] manifest.json\n", os.Args[0])
	fmt.Printf("Other options:\n")
	flag.PrintDefaults()
}

func main() {
	flag.Usage = bioVarcallUsage
	shutdown := grail.Init()
	defer shutdown()

	if flag.NArg() != 1 {
		log.Fatalf("Exactly one positional argument (manifest path) expected; please check flag syntax: %q", flag.Args())
	}
	ctx := vcontext.Background()
	samples, err := sample.LoadManifest(ctx, flag.Arg(0))
	if err != nil {
		log.Fatalf("%v", err)
	}
	e := errors.Once{}
	for _, s := range samples {
		e.Set(caller.ValidateNames(s))
	}
	if err := e.Err(); err != nil {
		log.Fatalf("%v", err)
	}
	if *splitContigs {
		if err := assignContigRegions(ctx, samples); err != nil {
			log.Fatalf("%v", err)
		}
	}

	local := &runner.Local{
		Parallelism: *parallelism,
		Worker: func(ctx context.Context, u runner.Unit) (*sample.Sample, error) {
			return genotype.CallRegion(ctx, u.Items, u.Region, u.Bams, u.Out)
		},
	}
	out, err := genotype.RunRegionParallel(ctx, samples, local)
	if err != nil {
		log.Panicf("%v", err)
	}
	if !*noFilter {
		for _, s := range out {
			if s.VrnFile.Empty() {
				continue
			}
			filtered, err := genotype.VariantFiltration(ctx, s.VrnFile.String(), s)
			if err != nil {
				log.Panicf("%v", err)
			}
			s.VrnFile = sample.PathOf(filtered)
		}
	}
	if !*noCombine {
		if out, err = genotype.CombineMultipleCallers(out); err != nil {
			log.Panicf("%v", err)
		}
	}

	js, err := json.MarshalIndent(sample.Manifest{Samples: out}, "", "  ")
	if err != nil {
		log.Panic(err)
	}
	if *outPath == "" {
		fmt.Println(string(js))
		return
	}
	w, err := file.Create(ctx, *outPath)
	if err != nil {
		log.Panicf("%v", err)
	}
	if _, err := w.Writer(ctx).Write(append(js, '\n')); err != nil {
		log.Panicf("%v", err)
	}
	if err := w.Close(ctx); err != nil {
		log.Panicf("%v", err)
	}
	log.Debug.Printf("exiting")
}

// assignContigRegions gives every regionless sample with aligned input one
// calling region per contig of its reference, read from the faidx index
// beside the FASTA. References are read once each.
func assignContigRegions(ctx context.Context, samples []*sample.Sample) error {
	byRef := map[string][]interval.Region{}
	for _, s := range samples {
		if len(s.Regions) > 0 || len(s.AlignBams) == 0 || s.Reference == "" {
			continue
		}
		regions, ok := byRef[s.Reference]
		if !ok {
			var err error
			if regions, err = interval.ContigRegions(ctx, s.Reference+".fai"); err != nil {
				return err
			}
			byRef[s.Reference] = regions
		}
		s.Regions = append([]interval.Region(nil), regions...)
	}
	return nil
}
