// Package lineage tracks column lineage through a data-flow pipeline.
//
// A pipeline is a set of components, each classified as a source, a
// transform or a sink. Every column a source or transform produces gets a
// lineage id and lives in the in-memory table of its producer. Sinks refer to
// their input columns by lineage id only, so the tracker keeps an index from
// lineage id to the producing table and the column's position in it.
//
// # Processing order
//
// Components are processed sources first, then transforms, then sinks,
// whatever their document order. Within a role, document order is kept.
//
// # Basic Usage
//
//	res := lineage.Analyze(pipelineNode, sess.Registry)
//	for _, c := range res.Columns {
//	    fmt.Printf("%s -> %s[%d]\n", c.LineageID, c.Table, c.Ordinal)
//	}
//	for _, d := range res.Diagnostics {
//	    fmt.Println(d)
//	}
package lineage
