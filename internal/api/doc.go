// Package api serves the local HTTP interface of vidbatch.
//
// POST /run accepts the JSON body sent by the web GUI and
// runs the pipeline synchronously; omitted fields fall back to the
// configured folders and options. Failures keep the partial reports and map
// to 400 (bad body or validation), 409 (output folder locked), 422 (no
// eligible videos) or 500.
//
// Read-only routes expose dependency status, recorded runs and Prometheus
// metrics. CORS and a body size limit come from the [server] config section.
package api
