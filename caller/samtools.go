package caller

import (
	"bytes"
	"context"
	"strconv"
	"strings"
	"text/template"

	"github.com/grailbio/varcall/interval"
)

// maxReadDepth caps mpileup depth and the per-BAM read limit; the value is
// the long-standing default for germline calling.
const maxReadDepth = 1000

// samtoolsCall implements CallFunc with the samtools mpileup plus bcftools
// call pipeline.
func samtoolsCall(ctx context.Context, in CallInput) (string, error) {
	return sharedCall(ctx, Samtools, samtoolsPipeline, in)
}

func samtoolsPipeline(ctx context.Context, in CallInput, target interval.Target, tmpOut string) (string, error) {
	if err := checkSamtoolsVersion(ctx); err != nil {
		return "", err
	}
	return SamtoolsCmdline(in, target, tmpOut)
}

// callTemplate pipes raw genotype likelihoods into bcftools and repairs
// two header quirks of older samtools: a stray ",Version=3" on FORMAT
// lines and R-typed counts that break downstream VCF parsers.
var callTemplate = template.Must(template.New("samtools").Parse(
	`{{.Mpileup}} | bcftools call -v -m - ` +
		`| sed 's/,Version=3>/>/' | sed 's/Number=R/Number=./'` +
		`{{if .Bgzip}} | bgzip -c{{end}} > {{.Out}}`))

// SamtoolsCmdline assembles the full calling pipeline for one region.
// Assembly is pure, so tests can check commands without the tools
// installed.
func SamtoolsCmdline(in CallInput, target interval.Target, out string) (string, error) {
	var buf bytes.Buffer
	err := callTemplate.Execute(&buf, struct {
		Mpileup string
		Bgzip   bool
		Out     string
	}{
		Mpileup: PrepMpileup(in.AlignBams, in.RefFile, target, true),
		Bgzip:   strings.HasSuffix(out, ".gz"),
		Out:     out,
	})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}

// PrepMpileup builds the mpileup half of the pipeline. wantBCF adds the
// genotype-likelihood flags that bcftools call consumes.
func PrepMpileup(alignBams []string, refFile string, target interval.Target, wantBCF bool) string {
	cl := []string{"samtools", "mpileup", "-f", refFile,
		"-d", strconv.Itoa(maxReadDepth), "-L", strconv.Itoa(maxReadDepth),
		"-m", "3", "-F", "0.0002"}
	if wantBCF {
		cl = append(cl, "-t", "DP", "-t", "SP", "-u", "-g")
	}
	switch {
	case target.IsFile():
		cl = append(cl, "-l", target.Path())
	case target.IsRegion():
		cl = append(cl, "-r", target.Region().String())
	}
	return strings.Join(append(cl, alignBams...), " ")
}
