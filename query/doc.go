// Package query parses the pagination, sorting and filtering parameters of
// a request's query string into descriptors.
//
// The descriptors say what a client asked for; applying them to a data
// source is left to the caller.
//
//	limit=8&offset=16
//	sort=title,-year
//	filter=author==John,author==Jake;year>=1890
//
// In a filter, ';' separates groups that must all match and ',' separates
// clauses of which any may match. Read parameters with Values rather than
// url.ParseQuery, which drops any pair containing ';'.
//
// Query strings decode '+' as a space, so an explicit ascending prefix must
// be sent as %2B (sort=%2Btitle). An unescaped sort=+title names the field
// " title".
package query
