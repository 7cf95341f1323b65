package interval

import (
	"bufio"
	"context"
	"strconv"
	"strings"

	"github.com/grailbio/base/file"
	"github.com/pkg/errors"
)

// ContigRegions reads a samtools faidx index (.fai) and returns one
// whole-contig region per sequence, in reference order. The index format
// is five tab-separated columns per sequence, of which only the name and
// length matter here.
func ContigRegions(ctx context.Context, faiPath string) (regions []Region, err error) {
	in, err := file.Open(ctx, faiPath)
	if err != nil {
		return nil, errors.Wrapf(err, "reference index %s", faiPath)
	}
	defer file.CloseAndReport(ctx, in, &err)

	scanner := bufio.NewScanner(in.Reader(ctx))
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) < 2 {
			return nil, errors.Errorf("%s: malformed index line %q", faiPath, line)
		}
		length, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil || length <= 0 || length > PosTypeMax {
			return nil, errors.Errorf("%s: bad length for contig %s: %q", faiPath, fields[0], fields[1])
		}
		regions = append(regions, Region{Chrom: fields[0], End: PosType(length)})
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrapf(err, "reference index %s", faiPath)
	}
	if len(regions) == 0 {
		return nil, errors.Errorf("%s: empty reference index", faiPath)
	}
	return regions, nil
}
