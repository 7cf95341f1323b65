package caller

import (
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strings"
	"sync"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
)

// versionRE matches the version token in both htslib-era banners
// ("samtools 1.9") and legacy ones ("Version: 0.1.19 (r96)").
var versionRE = regexp.MustCompile(`(?m)(?:^[a-z]+ |Version: )([0-9][^\s,]*)`)

var versionCache = struct {
	sync.Mutex
	m map[string]string
}{m: map[string]string{}}

// Version probes an external tool's version, once per process per tool.
// The probe tolerates legacy tools that print usage and exit nonzero when
// given --version.
func Version(ctx context.Context, tool string) (string, error) {
	versionCache.Lock()
	defer versionCache.Unlock()
	if v, ok := versionCache.m[tool]; ok {
		return v, nil
	}
	if _, err := exec.LookPath(tool); err != nil {
		return "", errors.E(err, fmt.Sprintf("%s not found on PATH", tool))
	}
	out, _ := exec.CommandContext(ctx, tool, "--version").CombinedOutput()
	m := versionRE.FindSubmatch(out)
	if m == nil {
		return "", errors.New(fmt.Sprintf("cannot parse %s version from %q", tool, firstLine(out)))
	}
	v := string(m[1])
	log.Debug.Printf("%s version %s", tool, v)
	versionCache.m[tool] = v
	return v, nil
}

// minSamtools is the last release of the pre-htslib command interface.
// Anything at or below it cannot drive the genotype-likelihood pipeline.
const minSamtools = "0.1.19"

func checkSamtoolsVersion(ctx context.Context) error {
	v, err := Version(ctx, "samtools")
	if err != nil {
		return err
	}
	if !versionLess(minSamtools, v) {
		return errors.New(fmt.Sprintf(
			"samtools %s cannot run the calling pipeline; need a release after %s", v, minSamtools))
	}
	return nil
}

// versionLess reports a < b, comparing dotted components numerically.
// Components are read up to the first non-digit, so "0.1.19-44428cd"
// compares as 0.1.19; missing components compare as zero.
func versionLess(a, b string) bool {
	sa, sb := versionSegments(a), versionSegments(b)
	for i := 0; i < len(sa) || i < len(sb); i++ {
		va, vb := 0, 0
		if i < len(sa) {
			va = sa[i]
		}
		if i < len(sb) {
			vb = sb[i]
		}
		if va != vb {
			return va < vb
		}
	}
	return false
}

func versionSegments(v string) []int {
	var segs []int
	for _, part := range strings.Split(v, ".") {
		n, ok := 0, false
		for _, r := range part {
			if r < '0' || r > '9' {
				break
			}
			n = n*10 + int(r-'0')
			ok = true
		}
		if !ok {
			break
		}
		segs = append(segs, n)
	}
	return segs
}

func firstLine(b []byte) string {
	s := strings.TrimSpace(string(b))
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return s
}
