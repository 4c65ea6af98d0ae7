// Package loader turns raw document bytes into ordered chunk sequences.
//
// Loaders are polymorphic over document families: PDFLoader handles
// paginated text, ExcelLoader handles tabular workbooks. A Registry
// dispatches on the lower-cased file extension; adding a document type
// means adding a Loader implementation and a Register call, with no
// change to call sites.
//
// Loading is never fatal: parse problems, unsupported extensions, and
// empty uploads all come back as a failed core.LoadResult rather than an
// error or panic.
//
//	registry := loader.NewDefaultRegistry()
//	result := registry.LoadDocument(content, "report.pdf")
//	if !result.Success {
//	    // result.Err explains what went wrong
//	}
package loader
