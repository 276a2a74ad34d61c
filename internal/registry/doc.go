// Package registry supplies descriptor metadata for the symbols a pipeline
// may reference: steps, agent types, tool types, options, triggers, build
// parameters and post conditions. The model parser and validator depend on
// the Lookup interface only, taking it as a constructor argument, so hosts
// can swap the built-in static tables for an adapter over a live extension
// registry, or for a reduced offline view.
package registry
