// Package websearch finds current information on the web.
//
// Tavily is the primary provider. When only Google Programmable Search
// credentials are configured, the Custom Search JSON API is used instead.
package websearch
