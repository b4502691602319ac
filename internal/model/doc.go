// Package model defines the data produced by a sitegrep crawl.
//
// The types here are shared by the crawler, which fills them in, and by the
// report and database packages, which render and store them. They carry no
// behavior beyond small accessors.
package model
