// Package lockfile reads and writes dependency lockfiles.
//
// A lockfile pins every module of a previously resolved graph to its exact
// version. Feeding it back into resolution turns each entry into a strict
// version constraint, making the build reproducible: the graph either comes
// out identical or resolution fails with a conflict that names the drifted
// module.
//
// The format is plain text, one "group:name:version=usages" line per
// module, sorted for stable diffs. Comment lines start with '#'.
package lockfile
