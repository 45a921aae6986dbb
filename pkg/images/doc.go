// Package images finds the highest-resolution variant of every image in archived posts.
//
// Each <img srcset="..."> is handled on its own: the candidate with the largest
// density descriptor wins and ties go to the last candidate listed.
//
//	ParseSrcset("a.jpg 1x, b.jpg 2x, c.jpg")  // b.jpg wins at 2x
//	ParseSrcset("a.jpg notanumberx")          // a.jpg at 1x
package images
