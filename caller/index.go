package caller

import (
	"context"
	"fmt"
	"os"

	"github.com/grailbio/base/log"
)

// IndexBam ensures bam carries a BAM index, invoking samtools index when
// the sidecar is missing. Callers expect indexed inputs for region
// restriction.
func IndexBam(ctx context.Context, bam string) error {
	if _, err := os.Stat(bam + ".bai"); err == nil {
		return nil
	}
	log.Debug.Printf("indexing %s", bam)
	return runBash(ctx, fmt.Sprintf("samtools index %s", bam))
}
