// Package assemble concatenates the day's article audio into one composite
// track, inserting the jingle before every included article and stamping each
// included article with its start point.
//
// Articles whose cached audio cannot be decoded are skipped: they get no
// start point and do not advance the running offset.
package assemble
