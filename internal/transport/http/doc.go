// Package http exposes the screening pipeline over a chi router: the
// screen runs, per-code history, the analysis note log and the exchange
// close comparison. Handlers translate service errors into JSON error
// bodies with the status mapping the error package defines.
package http
