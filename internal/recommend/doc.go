// Package recommend implements the item-similarity recommendation engine.
//
// A recommendation session runs three pure steps over a snapshot of grade
// records:
//
//  1. BuildGradeMatrix turns the records into a dense student×course matrix
//     with zero for every course a student has not taken.
//  2. ComputeSimilarity derives the symmetric student-to-student cosine
//     similarity matrix.
//  3. Recommend aggregates the grades of the k most similar students for
//     every course the target student has not taken and returns the top N.
//
// Nothing in this package performs I/O or keeps state between calls. The
// caller owns the matrices and rebuilds them whenever grade data changes.
package recommend
