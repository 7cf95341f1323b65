package caller

import (
	"context"
	"fmt"
	"strings"

	"github.com/grailbio/varcall/util"
)

// Soft filters follow the cutoff conventions established for each caller:
// failing records are marked in FILTER, never removed.

func samtoolsFilter(ctx context.Context, in FilterInput) (string, error) {
	return bcftoolsFilter(ctx, in.CallFile, "stdFilter", "QUAL < 20 || DP < 4")
}

func freebayesFilter(ctx context.Context, in FilterInput) (string, error) {
	return bcftoolsFilter(ctx, in.CallFile, "FBQualDepth", "QUAL < 20 || INFO/DP < 5")
}

func platypusFilter(ctx context.Context, in FilterInput) (string, error) {
	return bcftoolsFilter(ctx, in.CallFile, "PlatQualDepth", "QUAL < 20 || INFO/TC < 5")
}

// bcftoolsFilter marks records failing expr with the named soft filter,
// writing <base>-filter<ext> beside the input.
func bcftoolsFilter(ctx context.Context, callFile, name, expr string) (string, error) {
	base, ext := util.Splitext(callFile)
	out := base + "-filter" + ext
	err := transform(ctx, out, func(tmp string) string {
		return fmt.Sprintf("bcftools filter -e '%s' -s %s -m + -O %s -o %s %s",
			expr, name, outputMode(out), tmp, callFile)
	})
	if err != nil {
		return "", err
	}
	return out, nil
}

// gatkFilter applies the recommended hard-filter cutoffs to GATK output.
// SNP and indel cutoffs run in one VariantFiltration pass.
func gatkFilter(ctx context.Context, in FilterInput) (string, error) {
	base, ext := util.Splitext(in.CallFile)
	out := base + "-filter" + ext
	err := transform(ctx, out, func(tmp string) string {
		return strings.Join([]string{
			"gatk3", "-T", "VariantFiltration",
			"-R", in.RefFile,
			"--variant", in.CallFile,
			"-o", tmp,
			"--filterExpression", `'QD < 2.0 || MQ < 40.0 || FS > 60.0'`,
			"--filterName", "GATKCutoffSNP",
			"--filterExpression", `'ReadPosRankSum < -20.0 || FS > 200.0'`,
			"--filterName", "GATKCutoffIndel",
		}, " ")
	})
	if err != nil {
		return "", err
	}
	return out, nil
}
