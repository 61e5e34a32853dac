package model

// WriteBack is a one-shot callable returned from a ComponentDescriptorLookup
// layer on cache-miss, so that a hit at a lower-priority layer can populate
// the layers above it (spec §3 "WriteBack", §4.1 "on hit, invokes every
// WriteBack collected from earlier-missed layers").
type WriteBack func(identity ComponentIdentity, descriptor ComponentDescriptor) error
