// Package extract turns bill PDFs into named fields.
//
// A [TextSource] produces the concatenated text of a document; [PDFText]
// is the implementation backed by github.com/ledongthuc/pdf. An [Engine]
// then applies an ordered list of [Rule] values to that text. Each rule
// tries its matchers from most specific to most general and stops at the
// first match:
//
//	eng := extract.Gas()
//	res := eng.ExtractFile(ctx, extract.PDFText{}, "Gas_Bill.pdf")
//	fmt.Println(res.Get(extract.TotalAmount)) // "$123.45", "Not Found" or "Parse Error"
//
// Extraction never fails. A field no matcher found is [NotFound]; every
// field of a document that could not be read is [ParseError], and the
// read error is kept in [Result.Err].
package extract
