// Package dataprocessing reads price/volume tables and exported label
// tables from CSV or Excel input.
//
// Load dispatches on the file extension. Both readers check the header
// before any row is decoded, so a file missing time, Price or Volume fails
// with an analysis.ValidationError naming every absent column.
//
// CSV text is accepted as UTF-8 (with or without BOM) and falls back to
// Windows-1252 when the bytes are not valid UTF-8. Excel cells are read raw;
// numeric date serials become calendar dates.
//
// Rows whose numbers cannot be parsed are not fatal: they are counted and
// reported as data quality warnings on the LoadResult.
//
//	res, err := dataprocessing.Load("prices.csv", f)
//	if err != nil {
//	    return err
//	}
//	fmt.Println(len(res.Rows), res.Encoding)
package dataprocessing
