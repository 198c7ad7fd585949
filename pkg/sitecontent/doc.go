// Package sitecontent is the content engine of the club website: typed page
// bodies built from a closed vocabulary of blocks, validated on every save
// and augmented at read time with data from the event and page stores.
//
// A Service is built with New from a Repository (pages and events) and
// optional collaborators: a MediaResolver for image URLs, a Prometheus
// registry for metrics and a circuit breaker around the event store. The
// block schemas are constructed once by NewSchemas and are read-only
// afterwards, so one Service may be shared by any number of goroutines.
//
// Read paths never fail because a collaborator is down. A failing
// augmentation rule yields an empty collection and is named in
// PageContext.Degraded.
package sitecontent
