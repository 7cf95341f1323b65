package caller

import (
	"context"
	"fmt"
	"strings"

	"github.com/grailbio/varcall/sample"
	"github.com/grailbio/varcall/util"
)

// Annotate adds dbSNP identifiers to calls from callers that do not
// annotate their own output. Without a dbSNP resource the input passes
// through unchanged.
func Annotate(ctx context.Context, vrnFile, dbsnp, refFile string) (string, error) {
	if dbsnp == "" {
		return vrnFile, nil
	}
	base, ext := util.Splitext(vrnFile)
	out := base + "-annotated" + ext
	err := transform(ctx, out, func(tmp string) string {
		return fmt.Sprintf("bcftools annotate -a %s -c ID -O %s -o %s %s",
			dbsnp, outputMode(out), tmp, vrnFile)
	})
	if err != nil {
		return "", err
	}
	return out, nil
}

// NormalizeSex removes Y-chromosome calls from female samples so every
// caller's output follows one ploidy convention before filtering.
func NormalizeSex(ctx context.Context, callFile string, s *sample.Sample) (string, error) {
	switch strings.ToLower(s.Metadata.Sex) {
	case "female", "f":
	default:
		return callFile, nil
	}
	base, ext := util.Splitext(callFile)
	out := base + "-ploidyfix" + ext
	err := transform(ctx, out, func(tmp string) string {
		return fmt.Sprintf(`bcftools view -e 'CHROM=="chrY" || CHROM=="Y"' -O %s -o %s %s`,
			outputMode(out), tmp, callFile)
	})
	if err != nil {
		return "", err
	}
	return out, nil
}

// ReadBackedPhasing phases called variants against their source reads with
// GATK, for configurations that ask for gatk phasing after calling.
func ReadBackedPhasing(ctx context.Context, vrnFile string, bams []string, refFile string) (string, error) {
	base, ext := util.Splitext(vrnFile)
	out := base + "-phased" + ext
	err := transform(ctx, out, func(tmp string) string {
		cl := []string{"gatk3", "-T", "ReadBackedPhasing",
			"-R", refFile, "--variant", vrnFile, "-o", tmp}
		for _, bam := range bams {
			cl = append(cl, "-I", bam)
		}
		return strings.Join(cl, " ")
	})
	if err != nil {
		return "", err
	}
	return out, nil
}

// outputMode selects bcftools' output type from the file extension.
func outputMode(path string) string {
	if strings.HasSuffix(path, ".gz") {
		return "z"
	}
	return "v"
}
