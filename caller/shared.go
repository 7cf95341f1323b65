package caller

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/log"
	"github.com/grailbio/varcall/encoding/vcf"
	"github.com/grailbio/varcall/interval"
	"github.com/grailbio/varcall/sample"
	"github.com/grailbio/varcall/util"
)

// pipelineFunc assembles the bash pipeline writing calls for one region to
// tmpOut. Assembly is pure; sharedCall runs the result.
type pipelineFunc func(ctx context.Context, in CallInput, target interval.Target, tmpOut string) (string, error)

// sharedCall wraps a calling pipeline with the bookkeeping every caller
// shares: default output naming, the existence short-circuit, region
// subsetting, the no-coverage stub, atomic staging, and annotation.
func sharedCall(ctx context.Context, name Name, pipeline pipelineFunc, in CallInput) (string, error) {
	if len(in.AlignBams) == 0 {
		return "", errors.New(fmt.Sprintf("%s: no BAMs to call", name))
	}
	out := in.OutFile
	if out == "" {
		out = DefaultOutFile(in)
	}
	if _, err := file.Stat(ctx, out); err == nil {
		log.Debug.Printf("%s: %s exists, skipping", name, out)
		return Annotate(ctx, out, in.AssocFiles["dbsnp"], in.RefFile)
	}
	log.Printf("Genotyping with %s: %s %s", name, regionLabel(in.Region), filepath.Base(in.AlignBams[0]))
	variantRegions := ""
	if len(in.Items) > 0 {
		variantRegions = in.Items[0].Config.Algorithm.VariantRegions
	}
	outBase, _ := util.Splitext(out)
	target, err := interval.SubsetToRegion(ctx, variantRegions, in.Region, outBase)
	if err != nil {
		return "", errors.E(err, fmt.Sprintf("%s: subset regions for %s", name, out))
	}
	if variantRegions != "" && !target.Usable() {
		// Calling target configured but nothing of it overlaps this
		// region: a header-only output stands in for the caller run.
		if err := vcf.WriteEmpty(ctx, out, sampleNames(in.Items)); err != nil {
			return "", err
		}
	} else {
		tmp := out + ".tmp"
		cmdline, err := pipeline(ctx, in, target, tmp)
		if err != nil {
			return "", err
		}
		if err := runBash(ctx, cmdline); err != nil {
			return "", errors.E(err, fmt.Sprintf("%s: calling %s", name, out))
		}
		if err := os.Rename(tmp, out); err != nil {
			return "", err
		}
	}
	return Annotate(ctx, out, in.AssocFiles["dbsnp"], in.RefFile)
}

// DefaultOutFile places caller output next to the first BAM, or under the
// batch name in the work directory for tumor/normal pairs.
func DefaultOutFile(in CallInput) string {
	if sample.IsPairedAnalysis(in.Items) {
		s := in.Items[0]
		return filepath.Join(s.Dirs.Work, s.Batch()+"-paired-variants.vcf.gz")
	}
	base, _ := util.Splitext(in.AlignBams[0])
	return base + "-variants.vcf.gz"
}

func regionLabel(r *interval.Region) string {
	if r == nil {
		return "whole genome"
	}
	return r.String()
}

func sampleNames(items []*sample.Sample) []string {
	var names []string
	for _, s := range items {
		names = append(names, s.Name)
	}
	return names
}

// transform runs a command that writes tmp, then publishes tmp as out. An
// existing out short-circuits.
func transform(ctx context.Context, out string, build func(tmp string) string) error {
	if _, err := file.Stat(ctx, out); err == nil {
		log.Debug.Printf("%s exists, skipping", out)
		return nil
	}
	tmp := out + ".tmp"
	if err := runBash(ctx, build(tmp)); err != nil {
		return err
	}
	return os.Rename(tmp, out)
}

// runBash executes a shell pipeline with pipefail so a failure anywhere in
// the chain fails the command.
func runBash(ctx context.Context, cmdline string) error {
	log.Debug.Printf("run: %s", cmdline)
	cmd := exec.CommandContext(ctx, "bash", "-c", "set -euo pipefail; "+cmdline)
	output, err := cmd.CombinedOutput()
	if len(output) > 0 {
		log.Debug.Printf("%s", strings.TrimSpace(string(output)))
	}
	if err != nil {
		return errors.E(err, fmt.Sprintf("%s: %s", cmdline, lastLines(output, 5)))
	}
	return nil
}

// lastLines keeps error messages readable when a tool dumps pages of
// output before dying.
func lastLines(b []byte, n int) string {
	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}
