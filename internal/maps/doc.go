// Package maps answers place, geocoding and routing questions through the
// Google Maps web services.
//
// Every operation returns text ready to hand to the language model. Vendor
// failures are returned as *Error values whose message names the failed
// operation, for example "Geocoding failed: maps: REQUEST_DENIED - ...".
package maps
