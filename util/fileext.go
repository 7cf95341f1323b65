package util

import "path/filepath"

// Splitext splits a path into base and extension, keeping compound
// compressed extensions together: "x.vcf.gz" splits into ("x", ".vcf.gz")
// rather than ("x.vcf", ".gz").
func Splitext(path string) (base, ext string) {
	ext = filepath.Ext(path)
	base = path[:len(path)-len(ext)]
	switch ext {
	case ".gz", ".bz2", ".zip":
		if ext2 := filepath.Ext(base); ext2 != "" {
			base = base[:len(base)-len(ext2)]
			ext = ext2 + ext
		}
	}
	return base, ext
}
