/*Package interval represents the genomic regions used to partition
  variant-calling work, and interval-union operations over sets of regions
  represented by BED files.
  (Note the 'union'. Overlapping intervals are merged, not tracked
  separately.)
  It assumes every position fits in a PosType, which is currently defined as
  int32 since that's what BAM files are limited to.
*/
package interval
